package notion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj(id, parent string, typ ObjectType) Object {
	o := Object{ID: id, ObjectType: typ, Title: []Text{{PlainText: id}}}
	if parent != "" {
		o.Parent = &Parent{Type: "page_id", PageID: parent}
	}

	return o
}

func TestNewForest(t *testing.T) {
	objects := []Object{
		obj("root", "", ObjectContainer),
		obj("db1", "root", ObjectDatabase),
		obj("db2", "root", ObjectDatabase),
		obj("orphan", "gone", ObjectDatabase),
	}
	objects[1].Properties = []PropertyDescriptor{{ID: "title", Name: "Name", Type: TypeTitle}}

	f, err := NewForest(objects)
	require.NoError(t, err)

	roots := f.Roots()
	require.Len(t, roots, 2)
	assert.Equal(t, "root", roots[0].ID)
	assert.Equal(t, "orphan", roots[1].ID)

	children := f.Children("root")
	require.Len(t, children, 2)
	assert.Equal(t, "db1", children[0].ID)

	// a container reports the schema of its first child database
	assert.Equal(t, objects[1].Properties, f.Properties("root"))
	assert.Nil(t, f.Properties("missing"))

	var visited []string

	f.Walk(func(o *Object, depth int) {
		visited = append(visited, o.ID)
		if o.ID == "db2" {
			assert.Equal(t, 1, depth)
		}
	})
	assert.Equal(t, []string{"root", "db1", "db2", "orphan"}, visited)
}

func TestNewForest_Cycle(t *testing.T) {
	objects := []Object{
		obj("a", "c", ObjectContainer),
		obj("b", "a", ObjectContainer),
		obj("c", "b", ObjectContainer),
	}

	_, err := NewForest(objects)

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "c", "b", "a"}, cycle.Chain)
}

func TestNewForest_SelfParent(t *testing.T) {
	_, err := NewForest([]Object{obj("a", "a", ObjectPage)})

	var cycle *CycleError
	assert.ErrorAs(t, err, &cycle)
}

func TestObjectType_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want ObjectType
	}{
		{`"Database"`, ObjectDatabase},
		{`"Container"`, ObjectContainer},
		{`1`, ObjectDatabase},
		{`3`, ObjectContainer},
		{`0`, ObjectGeneric},
		{`null`, ObjectGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got ObjectType
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad ObjectType
	assert.Error(t, json.Unmarshal([]byte(`9`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`"Table"`), &bad))

	out, err := json.Marshal(ObjectContainer)
	require.NoError(t, err)
	assert.JSONEq(t, `"Container"`, string(out))
}

func TestPropertyType_JSON(t *testing.T) {
	var p PropertyDescriptor
	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","name":"A","type":5}`), &p))
	assert.Equal(t, TypeNumber, p.Type)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","name":"A","type":"relation"}`), &p))
	assert.Equal(t, TypeRelation, p.Type)
	assert.True(t, p.Type.Known())
	assert.False(t, PropertyType("button").Known())

	assert.Error(t, json.Unmarshal([]byte(`{"type":99}`), &p))
}

func TestParent_ID(t *testing.T) {
	var nilParent *Parent
	assert.Empty(t, nilParent.ID())
	assert.Equal(t, "db", (&Parent{DatabaseID: "db"}).ID())
	assert.Equal(t, "pg", (&Parent{PageID: "pg", DatabaseID: "db"}).ID())
}
