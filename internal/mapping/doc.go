// Package mapping holds the editable mapping model and the import
// definition it is saved as.
//
// A Model binds fields of a destination type to properties of a Notion
// database. In Normal mode every page becomes one asset; selecting an array
// or list field with SelectCollection switches the model to Array or List
// mode over the element type, where pages are collected, optionally grouped
// by a key property and sorted.
//
// Serialize turns a model into a Definition, the JSON document stored under
// <definitions dir>/ScriptableObject/<name>.json:
//
//	{
//	  "definitionName": "Items",
//	  "targetDb": {"id": "...", "objectType": "Database"},
//	  "outputPath": "assets/items",
//	  "mappingMode": "Array",
//	  "targetScriptableObject": "notion-importer/examples/gamedata.ItemTable",
//	  "targetFieldType": {"typeName": "Item", "typeId": "notion-importer/examples/gamedata.Item"},
//	  "targetFieldName": "Items",
//	  "mappingData": [
//	    {"targetFieldName": "Name", "targetPropertyId": "title", "targetPropertyName": "Name", "targetPropertyType": "title"}
//	  ],
//	  "sortKey": "Price",
//	  "sortOrder": "Ascending"
//	}
//
// Properties are referenced by id only; names are kept for display.
// Loading a definition back into a model is done by package plan.
package mapping
