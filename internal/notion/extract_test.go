package notion

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func prop(typ PropertyType, raw string) PageProperty {
	return PageProperty{Name: string(typ), ID: string(typ), Type: typ, Raw: json.RawMessage(raw)}
}

func TestPropertyString_Plain(t *testing.T) {
	tests := []struct {
		name   string
		prop   PageProperty
		want   string
		wantOK bool
	}{
		{
			name:   "title",
			prop:   prop(TypeTitle, `{"id":"title","type":"title","title":[{"plain_text":"Iron "},{"plain_text":"Sword"}]}`),
			want:   "Iron Sword",
			wantOK: true,
		},
		{
			name: "empty title",
			prop: prop(TypeTitle, `{"id":"title","type":"title","title":[]}`),
		},
		{
			name:   "rich text",
			prop:   prop(TypeRichText, `{"type":"rich_text","rich_text":[{"plain_text":"sharp"}]}`),
			want:   "sharp",
			wantOK: true,
		},
		{
			name:   "number",
			prop:   prop(TypeNumber, `{"type":"number","number":12.5}`),
			want:   "12.5",
			wantOK: true,
		},
		{
			name:   "integral number",
			prop:   prop(TypeNumber, `{"type":"number","number":40}`),
			want:   "40",
			wantOK: true,
		},
		{
			name:   "checkbox",
			prop:   prop(TypeCheckbox, `{"type":"checkbox","checkbox":true}`),
			want:   "true",
			wantOK: true,
		},
		{
			name:   "select",
			prop:   prop(TypeSelect, `{"type":"select","select":{"id":"x","name":"Rare","color":"blue"}}`),
			want:   "Rare",
			wantOK: true,
		},
		{
			name:   "multi select",
			prop:   prop(TypeMultiSelect, `{"type":"multi_select","multi_select":[{"name":"Consumable"},{"name":"QuestItem"}]}`),
			want:   "Consumable,QuestItem",
			wantOK: true,
		},
		{
			name:   "url",
			prop:   prop(TypeURL, `{"type":"url","url":"https://wiki.example.com/sword"}`),
			want:   "https://wiki.example.com/sword",
			wantOK: true,
		},
		{
			name:   "email",
			prop:   prop(TypeEmail, `{"type":"email","email":"smith@example.com"}`),
			want:   "smith@example.com",
			wantOK: true,
		},
		{
			name:   "date",
			prop:   prop(TypeDate, `{"type":"date","date":{"start":"2024-03-01","end":null}}`),
			want:   "2024-03-01",
			wantOK: true,
		},
		{
			name:   "null date",
			prop:   prop(TypeDate, `{"type":"date","date":null}`),
			wantOK: true,
		},
		{
			name:   "unique id with prefix",
			prop:   prop(TypeUniqueID, `{"type":"unique_id","unique_id":{"prefix":"ITM","number":7}}`),
			want:   "ITM-7",
			wantOK: true,
		},
		{
			name:   "unique id",
			prop:   prop(TypeUniqueID, `{"type":"unique_id","unique_id":{"prefix":null,"number":7}}`),
			want:   "7",
			wantOK: true,
		},
		{
			name:   "string formula",
			prop:   prop(TypeFormula, `{"type":"formula","formula":{"type":"string","string":"ok"}}`),
			want:   "ok",
			wantOK: true,
		},
		{
			name:   "number formula",
			prop:   prop(TypeFormula, `{"type":"formula","formula":{"type":"number","number":3}}`),
			want:   "3",
			wantOK: true,
		},
		{
			name:   "external file",
			prop:   prop(TypeFiles, `{"type":"files","files":[{"name":"icon","type":"external","external":{"url":"https://cdn.example.com/icon.png"}}]}`),
			want:   "https://cdn.example.com/icon.png",
			wantOK: true,
		},
		{
			name: "unknown kind",
			prop: prop(PropertyType("button"), `{"type":"button","button":{}}`),
		},
	}

	client := NewClient("secret")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := client.PropertyString(context.Background(), tt.prop)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPropertyString_Rollup(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{
			name:   "number",
			raw:    `{"type":"rollup","rollup":{"type":"number","number":9,"function":"sum"}}`,
			want:   "9",
			wantOK: true,
		},
		{
			name:   "date",
			raw:    `{"type":"rollup","rollup":{"type":"date","date":{"start":"2024-01-02"}}}`,
			want:   "2024-01-02",
			wantOK: true,
		},
		{
			name:   "array takes the first element",
			raw:    `{"type":"rollup","rollup":{"type":"array","array":[{"type":"rich_text","rich_text":[{"plain_text":"first"}]},{"type":"rich_text","rich_text":[{"plain_text":"second"}]}]}}`,
			want:   "first",
			wantOK: true,
		},
		{
			name: "empty array",
			raw:  `{"type":"rollup","rollup":{"type":"array","array":[]}}`,
		},
	}

	client := NewClient("secret")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := client.PropertyString(context.Background(), prop(TypeRollup, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func pageJSON(id, title string) string {
	return `{"object":"page","id":"` + id + `","parent":{"type":"database_id","database_id":"db"},` +
		`"properties":{"Name":{"id":"title","type":"title","title":[{"plain_text":"` + title + `"}]}}}`
}

func TestPropertyString_Relation(t *testing.T) {
	api, client := newFakeAPI(t)
	api.json("GET /v1/pages/rel-a", pageJSON("rel-a", "Alpha"))
	api.json("GET /v1/pages/rel-b", pageJSON("rel-b", "Beta"))
	api.json("GET /v1/pages/rel-c", pageJSON("rel-c", "Gamma"))

	p := prop(TypeRelation, `{"type":"relation","relation":[{"id":"rel-c"},{"id":"rel-a"},{"id":"rel-b"}],"has_more":false}`)

	got, ok, err := client.PropertyString(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Gamma\tAlpha\tBeta", got)
}

func TestPropertyString_RelationMissingPage(t *testing.T) {
	_, client := newFakeAPI(t)

	p := prop(TypeRelation, `{"type":"relation","relation":[{"id":"gone"}]}`)

	_, _, err := client.PropertyString(context.Background(), p)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestParsePage_KeepsPropertyOrder(t *testing.T) {
	page, err := parsePage([]byte(`{"object":"page","id":"p","properties":{
		"Zeta":{"id":"z","type":"number","number":1},
		"Alpha":{"id":"a","type":"checkbox","checkbox":false},
		"Name":{"id":"title","type":"title","title":[{"plain_text":"Row"}]}}}`))
	require.NoError(t, err)

	names := make([]string, len(page.Properties))
	for i, p := range page.Properties {
		names[i] = p.Name
	}

	assert.Equal(t, []string{"Zeta", "Alpha", "Name"}, names)
	assert.Equal(t, "Row", page.Title())

	got, ok := page.Property("a")
	require.True(t, ok)
	assert.Equal(t, TypeCheckbox, got.Type)
}
