package mapping_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notion-importer/internal/mapping"
	"notion-importer/internal/notion"
)

func collectionDefinition() *mapping.Definition {
	return &mapping.Definition{
		DefinitionName:         "Items_$K",
		TargetDB:               mapping.TargetDB{ID: "db-items", ObjectType: notion.ObjectDatabase, Title: "Items"},
		OutputPath:             "assets/items",
		MappingMode:            mapping.ModeArray,
		TargetScriptableObject: itemTableID,
		KeyProperty:            "reg",
		TargetFieldType:        &mapping.TypeRef{TypeName: "Item", TypeID: itemID},
		TargetFieldName:        "Items",
		MappingData: []mapping.Correspondence{
			{TargetFieldName: "Name", TargetPropertyID: "title", TargetPropertyName: "Name", TargetPropertyType: notion.TypeTitle},
			{TargetFieldName: "Price", TargetPropertyID: "prc", TargetPropertyName: "Price", TargetPropertyType: notion.TypeNumber},
		},
		SortKey:   "Price",
		SortOrder: mapping.SortDescending,
	}
}

func TestParse(t *testing.T) {
	data := []byte(`{
		"definitionName": "Items",
		"targetDb": {"id": "db-items", "objectType": "Database"},
		"outputPath": "assets",
		"mappingMode": "List",
		"targetScriptableObject": "` + string(questLogID) + `",
		"targetFieldType": {"typeName": "Quest", "typeId": "x.Quest"},
		"targetFieldName": "Quests",
		"mappingData": [{"targetFieldName": "Title", "targetPropertyId": "title", "targetPropertyName": "Name", "targetPropertyType": "title"}],
		"sortOrder": "Descending"
	}`)

	def, err := mapping.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, mapping.ModeList, def.MappingMode)
	assert.Equal(t, mapping.SortDescending, def.SortOrder)
	assert.Equal(t, notion.ObjectDatabase, def.TargetDB.ObjectType)
	assert.Equal(t, "x.Quest", string(def.TargetTypeName()))

	c, ok := def.Correspondence("Title")
	require.True(t, ok)
	assert.Equal(t, "title", c.TargetPropertyID)
	require.NoError(t, def.Validate())
}

func TestParse_ByteOrderMark(t *testing.T) {
	body := `{"definitionName":"Samples","targetDb":{"id":"db"},"outputPath":"out","targetScriptableObject":"x.Sample"}`

	def, err := mapping.Parse(append([]byte("\xef\xbb\xbf"), body...))
	require.NoError(t, err)
	assert.Equal(t, "Samples", def.DefinitionName)
	assert.NotNil(t, def.MappingData)
	assert.Empty(t, def.MappingData)
}

func TestParse_LegacyOrdinals(t *testing.T) {
	def, err := mapping.Parse([]byte(`{
		"definitionName": "Items",
		"targetDb": {"id": "db", "objectType": 1},
		"outputPath": "out",
		"mappingMode": 1,
		"targetScriptableObject": "x.ItemTable",
		"targetFieldType": {"typeName": "Item", "typeId": "x.Item"},
		"targetFieldName": "Items",
		"mappingData": [{"targetFieldName": "Price", "targetPropertyId": "prc", "targetPropertyType": 5}],
		"sortOrder": 1
	}`))
	require.NoError(t, err)

	assert.Equal(t, mapping.ModeArray, def.MappingMode)
	assert.Equal(t, mapping.SortDescending, def.SortOrder)
	assert.Equal(t, notion.ObjectDatabase, def.TargetDB.ObjectType)
	assert.Equal(t, notion.TypeNumber, def.MappingData[0].TargetPropertyType)
}

func TestParse_NormalDropsElementType(t *testing.T) {
	def, err := mapping.Parse([]byte(`{
		"definitionName": "Samples",
		"mappingMode": "Normal",
		"targetFieldType": {"typeName": "", "typeId": ""},
		"targetFieldName": "Leftover"
	}`))
	require.NoError(t, err)
	assert.Nil(t, def.TargetFieldType)
	assert.Empty(t, def.TargetFieldName)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"not json":      `{`,
		"unknown mode":  `{"mappingMode": "Table"}`,
		"ordinal range": `{"mappingMode": 7}`,
		"unknown order": `{"sortOrder": "Sideways"}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := mapping.Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestDefinition_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *mapping.Definition)
		wantErr string
	}{
		{name: "valid", mutate: func(*mapping.Definition) {}},
		{
			name:    "missing name",
			mutate:  func(d *mapping.Definition) { d.DefinitionName = " " },
			wantErr: "definitionName is required",
		},
		{
			name:    "missing database",
			mutate:  func(d *mapping.Definition) { d.TargetDB.ID = "" },
			wantErr: "targetDb.id is required",
		},
		{
			name:    "missing element type",
			mutate:  func(d *mapping.Definition) { d.TargetFieldType = nil },
			wantErr: "targetFieldType is required",
		},
		{
			name:    "dictionary",
			mutate:  func(d *mapping.Definition) { d.MappingMode = mapping.ModeDictionary },
			wantErr: "Dictionary",
		},
		{
			name: "normal with sort key",
			mutate: func(d *mapping.Definition) {
				d.MappingMode = mapping.ModeNormal
				d.TargetFieldType = nil
			},
			wantErr: mapping.ErrCollectionOnly.Error(),
		},
		{
			name: "duplicate field",
			mutate: func(d *mapping.Definition) {
				d.MappingData = append(d.MappingData, d.MappingData[0])
			},
			wantErr: "field Name mapped twice",
		},
		{
			name: "row without property",
			mutate: func(d *mapping.Definition) {
				d.MappingData[1].TargetPropertyID = ""
			},
			wantErr: "targetPropertyId is required for Price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := collectionDefinition()
			tt.mutate(def)

			err := def.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefinition_AssetName(t *testing.T) {
	def := collectionDefinition()
	assert.Equal(t, "Items_North", def.AssetName("North"))
	assert.Equal(t, "Items_$K", def.AssetName(""))

	def.DefinitionName = "Items"
	assert.Equal(t, "North", def.AssetName("North"))
	assert.Equal(t, "Items", def.AssetName(""))
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Items", "Items"},
		{" Items ", "Items"},
		{"Beta/Gamma", "Beta／Gamma"},
		{`Beta\Gamma`, "Beta＼Gamma"},
		{`../..\x`, "..／..＼x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapping.SanitizeName(tt.name))
		})
	}
}

func TestWriteFile_List(t *testing.T) {
	dir := t.TempDir()

	paths, err := mapping.List(dir)
	require.NoError(t, err)
	assert.Empty(t, paths)

	def := collectionDefinition()
	def.DefinitionName = "Items/Weapons"

	path := mapping.DefinitionPath(dir, def.DefinitionName)
	assert.Equal(t, filepath.Join(dir, mapping.Kind, "Items／Weapons.json"), path)

	require.NoError(t, mapping.WriteFile(def, path))

	second := collectionDefinition()
	second.DefinitionName = "Armor"
	require.NoError(t, mapping.WriteFile(second, mapping.DefinitionPath(dir, second.DefinitionName)))

	require.NoError(t, os.WriteFile(filepath.Join(dir, mapping.Kind, "notes.txt"), []byte("x"), 0o600))

	paths, err = mapping.List(dir)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "Armor.json", filepath.Base(paths[0]))

	loaded, err := mapping.Find(dir, "Items/Weapons")
	require.NoError(t, err)
	assert.Equal(t, def, loaded)
}

func TestWriteFile_RejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	def := collectionDefinition()
	def.TargetDB.ID = ""

	path := mapping.DefinitionPath(dir, def.DefinitionName)
	require.Error(t, mapping.WriteFile(def, path))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestMarshal(t *testing.T) {
	def := collectionDefinition()

	data, err := mapping.Marshal(def)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"mappingMode": "Array"`)
	assert.Contains(t, string(data), `"sortOrder": "Descending"`)
	assert.Contains(t, string(data), `"objectType": "Database"`)

	back, err := mapping.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, def, back)

	out, err := mapping.MarshalYAML(def)
	require.NoError(t, err)
	assert.Contains(t, string(out), "mappingMode: Array")
	assert.Contains(t, string(out), "targetPropertyId: prc")
}
