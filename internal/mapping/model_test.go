package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notion-importer/examples/gamedata"
	"notion-importer/internal/analyze"
	"notion-importer/internal/mapping"
	"notion-importer/internal/notion"
)

var (
	itemTableID = analyze.TypeIDOf(gamedata.ItemTable{})
	itemID      = analyze.TypeIDOf(gamedata.Item{})
	questLogID  = analyze.TypeIDOf(gamedata.QuestLog{})
	sampleID    = analyze.TypeIDOf(gamedata.Sample{})
)

func newRegistry(t *testing.T) *analyze.Registry {
	t.Helper()

	r := analyze.NewRegistry()
	require.NoError(t, gamedata.Register(r))

	return r
}

// itemProps is the schema of an items database.
func itemProps() []notion.PropertyDescriptor {
	return []notion.PropertyDescriptor{
		{ID: "title", Name: "Name", Type: notion.TypeTitle},
		{ID: "prc", Name: "Price", Type: notion.TypeNumber},
		{ID: "wgt", Name: "Weight", Type: notion.TypeNumber},
		{ID: "stk", Name: "Stackable", Type: notion.TypeCheckbox},
		{ID: "rar", Name: "Rarity", Type: notion.TypeSelect},
		{ID: "trt", Name: "Traits", Type: notion.TypeMultiSelect},
		{ID: "icn", Name: "Icon", Type: notion.TypeFiles},
		{ID: "wik", Name: "Wiki", Type: notion.TypeURL},
		{ID: "als", Name: "Aliases", Type: notion.TypeMultiSelect},
		{ID: "reg", Name: "Region", Type: notion.TypeSelect},
		{ID: "upd", Name: "Updated", Type: notion.TypeLastEditedTime},
		{ID: "uid", Name: "ID", Type: notion.TypeUniqueID},
	}
}

func boundProperty(t *testing.T, m *mapping.Model, field string) string {
	t.Helper()

	it, ok := m.Item(field)
	require.True(t, ok, "field %s", field)

	p, ok := it.Property()
	if !ok {
		return ""
	}

	return p.ID
}

func TestNewModel(t *testing.T) {
	m, err := mapping.NewModel(newRegistry(t), sampleID, []notion.PropertyDescriptor{
		{ID: "title", Name: "Test String", Type: notion.TypeTitle},
		{ID: "n", Name: "Test Int", Type: notion.TypeNumber},
		{ID: "f", Name: "Test Float", Type: notion.TypeNumber},
		{ID: "b", Name: "Test Bool", Type: notion.TypeCheckbox},
	})
	require.NoError(t, err)

	assert.Equal(t, mapping.ModeNormal, m.Mode)
	assert.Equal(t, sampleID, m.Target().ID)
	require.Len(t, m.Items, 4)

	assert.Equal(t, "title", boundProperty(t, m, "TestString"))
	assert.Equal(t, "n", boundProperty(t, m, "TestInt"))
	assert.Equal(t, "f", boundProperty(t, m, "TestFloat"))
	assert.Equal(t, "b", boundProperty(t, m, "TestBool"))
	assert.Len(t, m.Bound(), 4)
}

func TestNewModel_UnknownType(t *testing.T) {
	_, err := mapping.NewModel(newRegistry(t), "example.com/nowhere.Thing", itemProps())

	var unresolved *mapping.UnresolvedTypeError
	require.ErrorAs(t, err, &unresolved)
	assert.True(t, analyze.IsTypeNotFound(err))
}

func TestNewModel_CollectionFieldsAreNotBoundInNormalMode(t *testing.T) {
	m, err := mapping.NewModel(newRegistry(t), itemTableID, itemProps())
	require.NoError(t, err)

	items, ok := m.Item("Items")
	require.True(t, ok)
	assert.True(t, items.NonMatchable)
	assert.False(t, items.DoMatch)
	assert.Contains(t, items.Reason, "collection target")
}

func TestModel_SelectCollection(t *testing.T) {
	m, err := mapping.NewModel(newRegistry(t), itemTableID, itemProps())
	require.NoError(t, err)

	require.NoError(t, m.SelectCollection("Items"))
	assert.Equal(t, mapping.ModeArray, m.Mode)
	assert.Equal(t, "Items", m.CollectionField)
	assert.Equal(t, itemID, m.Target().ID)
	require.Len(t, m.Items, 12)

	tests := map[string]string{
		"Name":      "title",
		"Price":     "prc",
		"Weight":    "wgt",
		"Stackable": "stk",
		"Rarity":    "rar",
		"Traits":    "trt",
		"Icon":      "icn",
		"Wiki":      "wik",
		"Aliases":   "als",
		"region":    "reg",
		"ID":        "uid",
		"UpdatedAt": "upd",
	}

	for field, want := range tests {
		t.Run(field, func(t *testing.T) {
			assert.Equal(t, want, boundProperty(t, m, field))
		})
	}
}

func TestModel_SelectCollection_List(t *testing.T) {
	m, err := mapping.NewModel(newRegistry(t), questLogID, []notion.PropertyDescriptor{
		{ID: "title", Name: "Title", Type: notion.TypeTitle},
		{ID: "rw", Name: "Reward", Type: notion.TypeNumber},
		{ID: "st", Name: "Steps", Type: notion.TypeRelation},
	})
	require.NoError(t, err)

	require.NoError(t, m.SelectCollection("Quests"))
	assert.Equal(t, mapping.ModeList, m.Mode)

	steps, ok := m.Item("Steps")
	require.True(t, ok)
	assert.True(t, steps.NonMatchable)
	assert.Equal(t, "nested collections are not supported", steps.Reason)

	err = m.Bind("Steps", "st")
	assert.ErrorIs(t, err, mapping.ErrNonMatchable)
}

func TestModel_SelectCollection_Errors(t *testing.T) {
	r := newRegistry(t)

	log, err := mapping.NewModel(r, questLogID, nil)
	require.NoError(t, err)

	var unsupported *mapping.UnsupportedModeError
	require.ErrorAs(t, log.SelectCollection("Bounties"), &unsupported)
	assert.Equal(t, mapping.ModeDictionary, unsupported.Mode)
	assert.Equal(t, mapping.ModeNormal, log.Mode)

	var unresolved *mapping.UnresolvedFieldError
	require.ErrorAs(t, log.SelectCollection("Missing"), &unresolved)
	assert.Equal(t, "Missing", unresolved.Field)

	table, err := mapping.NewModel(r, itemTableID, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, table.SelectCollection("Version"), mapping.ErrNotCollection)
}

func TestModel_Bind(t *testing.T) {
	m, err := mapping.NewModel(newRegistry(t), itemTableID, itemProps())
	require.NoError(t, err)
	require.NoError(t, m.SelectCollection("Items"))

	require.NoError(t, m.Bind("Name", "reg"))
	assert.Equal(t, "reg", boundProperty(t, m, "Name"))

	assert.ErrorIs(t, m.Bind("Price", "title"), mapping.ErrIncompatible)
	assert.Error(t, m.Bind("Price", "gone"))

	var fieldErr *mapping.FieldError
	assert.ErrorAs(t, m.Bind("Nope", "title"), &fieldErr)

	require.NoError(t, m.Unbind("Weight"))
	assert.Empty(t, boundProperty(t, m, "Weight"))

	m.UnbindAll()
	assert.Empty(t, m.Bound())
}

func TestModel_GroupAndSort(t *testing.T) {
	m, err := mapping.NewModel(newRegistry(t), itemTableID, itemProps())
	require.NoError(t, err)

	assert.ErrorIs(t, m.SetGroupKey("reg", true), mapping.ErrCollectionOnly)
	assert.ErrorIs(t, m.SetSort("Price", mapping.SortAscending), mapping.ErrCollectionOnly)

	require.NoError(t, m.SelectCollection("Items"))
	require.NoError(t, m.SetGroupKey("reg", true))
	require.NoError(t, m.SetSort("Price", mapping.SortDescending))
	assert.Equal(t, "reg", m.GroupKeyPropertyID)
	assert.True(t, m.UseGroupFiltering)

	assert.Error(t, m.SetGroupKey("gone", false))

	var fieldErr *mapping.FieldError
	assert.ErrorAs(t, m.SetSort("Nope", mapping.SortAscending), &fieldErr)

	// a promoted field of the embedded Record is a valid sort key
	require.NoError(t, m.SetSort("UpdatedAt", mapping.SortAscending))

	m.SelectNormal()
	assert.Empty(t, m.GroupKeyPropertyID)
	assert.Empty(t, m.SortFieldName)
}

func TestSerialize(t *testing.T) {
	m, err := mapping.NewModel(newRegistry(t), itemTableID, itemProps())
	require.NoError(t, err)
	require.NoError(t, m.SelectCollection("Items"))
	require.NoError(t, m.Unbind("Weight"))
	require.NoError(t, m.SetGroupKey("reg", false))
	require.NoError(t, m.SetSort("Price", mapping.SortDescending))

	target := &notion.Object{ID: "db-items", ObjectType: notion.ObjectDatabase, Title: []notion.Text{{PlainText: "Items"}}}

	def := mapping.Serialize(m, mapping.SerializeContext{
		DefinitionName: "Items_$K",
		OutputPath:     "assets/items",
		Target:         target,
	})

	assert.Equal(t, "Items_$K", def.DefinitionName)
	assert.Equal(t, mapping.TargetDB{ID: "db-items", ObjectType: notion.ObjectDatabase, Title: "Items"}, def.TargetDB)
	assert.Equal(t, mapping.ModeArray, def.MappingMode)
	assert.Equal(t, itemTableID, def.TargetScriptableObject)
	assert.Equal(t, &mapping.TypeRef{TypeName: "Item", TypeID: itemID}, def.TargetFieldType)
	assert.Equal(t, itemID, def.TargetTypeName())
	assert.Equal(t, "Items", def.TargetFieldName)
	assert.Equal(t, "reg", def.KeyProperty)
	assert.Equal(t, "Price", def.SortKey)
	assert.Equal(t, mapping.SortDescending, def.SortOrder)

	require.Len(t, def.MappingData, 11)
	assert.Equal(t, mapping.Correspondence{
		TargetFieldName:    "Name",
		TargetPropertyID:   "title",
		TargetPropertyName: "Name",
		TargetPropertyType: notion.TypeTitle,
	}, def.MappingData[0])

	_, ok := def.Correspondence("Weight")
	assert.False(t, ok)
	require.NoError(t, def.Validate())
}

func TestSerialize_Normal(t *testing.T) {
	m, err := mapping.NewModel(newRegistry(t), sampleID, []notion.PropertyDescriptor{
		{ID: "title", Name: "Name", Type: notion.TypeTitle},
	})
	require.NoError(t, err)

	def := mapping.Serialize(m, mapping.SerializeContext{DefinitionName: "Samples", OutputPath: "out"})
	assert.Equal(t, sampleID, def.TargetTypeName())
	assert.Nil(t, def.TargetFieldType)
	assert.Empty(t, def.KeyProperty)
	require.Len(t, def.MappingData, 1)
	assert.Equal(t, "TestString", def.MappingData[0].TargetFieldName)
}
