package mapping

import (
	"errors"
	"fmt"
	"strings"

	"notion-importer/internal/analyze"
	"notion-importer/internal/notion"
)

// Kind is the definition kind; definitions are stored in a directory of
// this name.
const Kind = "ScriptableObject"

// GroupKeyPlaceholder in a definition name is replaced by the group key
// when naming grouped output.
const GroupKeyPlaceholder = "$K"

// TargetDB references the Notion object a definition imports from.
type TargetDB struct {
	ID         string            `json:"id" yaml:"id"`
	ObjectType notion.ObjectType `json:"objectType" yaml:"objectType"`
	Title      string            `json:"title,omitempty" yaml:"title,omitempty"`
}

// TypeRef names the element type of a collection mapping.
type TypeRef struct {
	TypeName string         `json:"typeName" yaml:"typeName"`
	TypeID   analyze.TypeID `json:"typeId" yaml:"typeId"`
}

// Correspondence binds a destination field to a Notion property by id.
// The property name and kind are kept for display only.
type Correspondence struct {
	TargetFieldName    string              `json:"targetFieldName" yaml:"targetFieldName"`
	TargetPropertyID   string              `json:"targetPropertyId" yaml:"targetPropertyId"`
	TargetPropertyName string              `json:"targetPropertyName" yaml:"targetPropertyName"`
	TargetPropertyType notion.PropertyType `json:"targetPropertyType" yaml:"targetPropertyType"`
}

// Definition is a saved import definition.
type Definition struct {
	DefinitionName string   `json:"definitionName" yaml:"definitionName"`
	TargetDB       TargetDB `json:"targetDb" yaml:"targetDb"`
	OutputPath     string   `json:"outputPath" yaml:"outputPath"`
	MappingMode    Mode     `json:"mappingMode" yaml:"mappingMode"`

	// TargetScriptableObject is the root destination type.
	TargetScriptableObject analyze.TypeID `json:"targetScriptableObject" yaml:"targetScriptableObject"`

	// KeyProperty is the id of the grouping property, empty when ungrouped.
	KeyProperty     string `json:"keyProperty" yaml:"keyProperty"`
	UseKeyFiltering bool   `json:"useKeyFiltering" yaml:"useKeyFiltering"`

	// TargetFieldType and TargetFieldName are set in collection modes.
	TargetFieldType *TypeRef `json:"targetFieldType,omitempty" yaml:"targetFieldType,omitempty"`
	TargetFieldName string   `json:"targetFieldName,omitempty" yaml:"targetFieldName,omitempty"`

	MappingData []Correspondence `json:"mappingData" yaml:"mappingData"`

	SortKey   string    `json:"sortKey,omitempty" yaml:"sortKey,omitempty"`
	SortOrder SortOrder `json:"sortOrder" yaml:"sortOrder"`
}

// IsCollection reports whether the definition collects pages into one field.
func (d *Definition) IsCollection() bool {
	return d.MappingMode.IsCollection()
}

// TargetTypeName returns the type records are coerced into: the element
// type in collection modes, the root type otherwise.
func (d *Definition) TargetTypeName() analyze.TypeID {
	if d.IsCollection() && d.TargetFieldType != nil && d.TargetFieldType.TypeID != "" {
		return d.TargetFieldType.TypeID
	}

	return d.TargetScriptableObject
}

// Correspondence returns the row for a field.
func (d *Definition) Correspondence(field string) (Correspondence, bool) {
	for _, c := range d.MappingData {
		if c.TargetFieldName == field {
			return c, true
		}
	}

	return Correspondence{}, false
}

// AssetName names grouped output: the group key itself, or the definition
// name with GroupKeyPlaceholder replaced when the name contains it.
// Ungrouped output (empty key) uses the definition name.
func (d *Definition) AssetName(groupKey string) string {
	if groupKey == "" {
		return d.DefinitionName
	}

	if strings.Contains(d.DefinitionName, GroupKeyPlaceholder) {
		return strings.ReplaceAll(d.DefinitionName, GroupKeyPlaceholder, groupKey)
	}

	return groupKey
}

// Validate checks the definition for structural errors before it is
// written or run. Fields and properties are not resolved here.
func (d *Definition) Validate() error {
	var errs []error

	if strings.TrimSpace(d.DefinitionName) == "" {
		errs = append(errs, errors.New("definitionName is required"))
	}

	if strings.TrimSpace(d.OutputPath) == "" {
		errs = append(errs, errors.New("outputPath is required"))
	}

	if strings.TrimSpace(d.TargetDB.ID) == "" {
		errs = append(errs, errors.New("targetDb.id is required"))
	}

	if d.TargetScriptableObject == "" {
		errs = append(errs, errors.New("targetScriptableObject is required"))
	}

	switch d.MappingMode {
	case ModeNormal:
		if d.KeyProperty != "" || d.SortKey != "" {
			errs = append(errs, fmt.Errorf("keyProperty and sortKey: %w", ErrCollectionOnly))
		}
	case ModeArray, ModeList:
		if d.TargetFieldName == "" {
			errs = append(errs, errors.New("targetFieldName is required in collection mode"))
		}

		if d.TargetFieldType == nil || d.TargetFieldType.TypeID == "" {
			errs = append(errs, errors.New("targetFieldType is required in collection mode"))
		}
	case ModeDictionary:
		errs = append(errs, &UnsupportedModeError{Mode: d.MappingMode, Field: d.TargetFieldName})
	default:
		errs = append(errs, fmt.Errorf("invalid mappingMode %d", d.MappingMode))
	}

	seen := make(map[string]bool, len(d.MappingData))

	for i, c := range d.MappingData {
		switch {
		case c.TargetFieldName == "":
			errs = append(errs, fmt.Errorf("mappingData[%d]: targetFieldName is required", i))
		case c.TargetPropertyID == "":
			errs = append(errs, fmt.Errorf("mappingData[%d]: targetPropertyId is required for %s", i, c.TargetFieldName))
		case seen[c.TargetFieldName]:
			errs = append(errs, fmt.Errorf("mappingData[%d]: field %s mapped twice", i, c.TargetFieldName))
		}

		seen[c.TargetFieldName] = true
	}

	return errors.Join(errs...)
}
