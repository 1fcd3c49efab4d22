package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notion-importer/examples/gamedata"
	"notion-importer/internal/analyze"
	"notion-importer/internal/diagnostic"
	"notion-importer/internal/mapping"
	"notion-importer/internal/notion"
	"notion-importer/internal/plan"
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

func itemProps() []notion.PropertyDescriptor {
	return []notion.PropertyDescriptor{
		{ID: "title", Name: "Name", Type: notion.TypeTitle},
		{ID: "prc", Name: "Price", Type: notion.TypeNumber},
		{ID: "wgt", Name: "Weight", Type: notion.TypeNumber},
		{ID: "stk", Name: "Stackable", Type: notion.TypeCheckbox},
		{ID: "rar", Name: "Rarity", Type: notion.TypeSelect},
		{ID: "reg", Name: "Region", Type: notion.TypeSelect},
	}
}

func itemsDefinition(t *testing.T, r *analyze.Registry) *mapping.Definition {
	t.Helper()

	m, err := mapping.NewModel(r, itemTableID, itemProps())
	require.NoError(t, err)
	require.NoError(t, m.SelectCollection("Items"))
	require.NoError(t, m.SetGroupKey("reg", true))
	require.NoError(t, m.SetSort("Price", mapping.SortDescending))

	return mapping.Serialize(m, mapping.SerializeContext{
		DefinitionName: "Items_$K",
		OutputPath:     "assets",
		Target:         &notion.Object{ID: "db-items", ObjectType: notion.ObjectDatabase},
	})
}

func codes(diags []diagnostic.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Code
	}

	return out
}

func TestResolve_RoundTrip(t *testing.T) {
	r := newRegistry(t)
	def := itemsDefinition(t, r)

	m, diags, err := plan.NewResolver(r).Resolve(def, itemProps())
	require.NoError(t, err)
	assert.Empty(t, diags.Errors)
	assert.Empty(t, diags.Warnings)

	assert.Equal(t, mapping.ModeArray, m.Mode)
	assert.Equal(t, itemID, m.Element.ID)
	assert.Equal(t, "reg", m.GroupKeyPropertyID)
	assert.True(t, m.UseGroupFiltering)
	assert.Equal(t, "Price", m.SortFieldName)
	assert.Equal(t, mapping.SortDescending, m.SortOrder)

	again := mapping.Serialize(m, mapping.SerializeContext{
		DefinitionName: def.DefinitionName,
		OutputPath:     def.OutputPath,
		Target:         &notion.Object{ID: "db-items", ObjectType: notion.ObjectDatabase},
	})
	assert.Equal(t, def, again)
}

func TestResolve_OnlySavedBindingsAreRestored(t *testing.T) {
	r := newRegistry(t)
	def := itemsDefinition(t, r)
	def.MappingData = def.MappingData[:1]

	m, _, err := plan.NewResolver(r).Resolve(def, itemProps())
	require.NoError(t, err)

	require.Len(t, m.Bound(), 1)
	assert.Equal(t, "Name", m.Bound()[0].Field.Name)
}

func TestResolve_RemovedProperty(t *testing.T) {
	r := newRegistry(t)
	def := itemsDefinition(t, r)

	live := itemProps()
	live = append(live[:1], live[2:]...) // drop Price

	m, diags, err := plan.NewResolver(r).Resolve(def, live)
	require.NoError(t, err)

	price, ok := m.Item("Price")
	require.True(t, ok)
	assert.False(t, price.DoMatch)

	require.Len(t, diags.Warnings, 1)
	assert.Equal(t, diagnostic.CodePropertyRemoved, diags.Warnings[0].Code)
	assert.Equal(t, "ItemTable.Items[].Price", diags.Warnings[0].FieldPath)

	name, ok := m.Item("Name")
	require.True(t, ok)
	assert.True(t, name.DoMatch)
}

func TestResolve_BindsByCurrentPosition(t *testing.T) {
	r := newRegistry(t)
	def := itemsDefinition(t, r)

	live := itemProps()
	live[0], live[1] = live[1], live[0]
	live[1].Name = "Item Name"

	m, diags, err := plan.NewResolver(r).Resolve(def, live)
	require.NoError(t, err)

	name, ok := m.Item("Name")
	require.True(t, ok)
	p, ok := name.Property()
	require.True(t, ok)
	assert.Equal(t, "title", p.ID)
	assert.Equal(t, "Item Name", p.Name)

	var stale []diagnostic.Diagnostic

	for _, d := range diags.Infos {
		if d.Code == diagnostic.CodeStalePropertyName {
			stale = append(stale, d)
		}
	}

	require.Len(t, stale, 1)
	assert.Equal(t, "ItemTable.Items[].Name", stale[0].FieldPath)
	assert.Empty(t, diags.Warnings)
}

func TestResolve_RemovedFieldAndChangedKind(t *testing.T) {
	r := newRegistry(t)
	def := itemsDefinition(t, r)
	def.MappingData = append(def.MappingData, mapping.Correspondence{
		TargetFieldName: "Durability", TargetPropertyID: "dur", TargetPropertyName: "Durability", TargetPropertyType: notion.TypeNumber,
	})

	live := itemProps()
	live[1].Type = notion.TypeRichText // Price is now text

	m, diags, err := plan.NewResolver(r).Resolve(def, live)
	require.NoError(t, err)

	price, _ := m.Item("Price")
	assert.False(t, price.DoMatch)

	assert.ElementsMatch(t,
		[]string{diagnostic.CodeIncompatible, diagnostic.CodeFieldRemoved},
		codes(diags.Warnings))
}

func TestResolve_GroupAndSortNoLongerResolve(t *testing.T) {
	r := newRegistry(t)
	def := itemsDefinition(t, r)
	def.KeyProperty = "gone"
	def.SortKey = "Durability"

	m, diags, err := plan.NewResolver(r).Resolve(def, itemProps())
	require.NoError(t, err)

	assert.Empty(t, m.GroupKeyPropertyID)
	assert.False(t, m.UseGroupFiltering)
	assert.Empty(t, m.SortFieldName)
	assert.Equal(t, []string{diagnostic.CodePropertyRemoved, diagnostic.CodeFieldRemoved}, codes(diags.Warnings))
}

func TestResolve_Fatal(t *testing.T) {
	r := newRegistry(t)

	t.Run("unknown root type", func(t *testing.T) {
		def := itemsDefinition(t, r)
		def.TargetScriptableObject = "example.com/gone.Table"

		_, _, err := plan.NewResolver(r).Resolve(def, itemProps())

		var unresolved *mapping.UnresolvedTypeError
		require.ErrorAs(t, err, &unresolved)
		assert.True(t, analyze.IsTypeNotFound(err))
	})

	t.Run("unknown collection field", func(t *testing.T) {
		def := itemsDefinition(t, r)
		def.TargetFieldName = "Entries"

		_, _, err := plan.NewResolver(r).Resolve(def, itemProps())

		var unresolved *mapping.UnresolvedFieldError
		require.ErrorAs(t, err, &unresolved)
		assert.Equal(t, "Entries", unresolved.Field)
	})

	t.Run("dictionary", func(t *testing.T) {
		def := &mapping.Definition{
			DefinitionName:         "Bounties",
			MappingMode:            mapping.ModeDictionary,
			TargetScriptableObject: questLogID,
			TargetFieldName:        "Bounties",
		}

		_, _, err := plan.NewResolver(r).Resolve(def, nil)

		var unsupported *mapping.UnsupportedModeError
		assert.ErrorAs(t, err, &unsupported)
	})

	t.Run("not a collection", func(t *testing.T) {
		def := itemsDefinition(t, r)
		def.TargetFieldName = "Version"

		_, _, err := plan.NewResolver(r).Resolve(def, itemProps())
		assert.ErrorIs(t, err, mapping.ErrNotCollection)
	})
}

func TestResolve_ModeAndElementChanged(t *testing.T) {
	r := newRegistry(t)

	def := &mapping.Definition{
		DefinitionName:         "Quests",
		MappingMode:            mapping.ModeArray,
		TargetScriptableObject: questLogID,
		TargetFieldName:        "Quests",
		TargetFieldType:        &mapping.TypeRef{TypeName: "Mission", TypeID: "example.com/old.Mission"},
	}

	m, diags, err := plan.NewResolver(r).Resolve(def, nil)
	require.NoError(t, err)
	assert.Equal(t, mapping.ModeList, m.Mode)
	assert.Equal(t, []string{diagnostic.CodeCollectionChanged, diagnostic.CodeCollectionChanged}, codes(diags.Warnings))

	// Steps is a nested collection of Quest
	assert.Contains(t, codes(diags.Infos), diagnostic.CodeNestedCollection)
}

func TestResolve_ShortTypeNames(t *testing.T) {
	r := newRegistry(t)

	tests := []string{"gamedata.Sample", "Sample", string(sampleID)}

	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			def := &mapping.Definition{DefinitionName: "Samples", TargetScriptableObject: analyze.TypeID(name)}

			m, _, err := plan.NewResolver(r).Resolve(def, nil)
			require.NoError(t, err)
			assert.Equal(t, sampleID, m.Root.ID)
		})
	}
}
