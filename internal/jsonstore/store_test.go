package jsonstore

import (
	"encoding/json"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

const usersSchema = `{
	"type": "object",
	"required": ["name", "tags", "address"],
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string", "default": ""},
		"tags": {"type": "array", "items": {"type": "string", "default": ""}},
		"address": {
			"type": "object",
			"required": ["city"],
			"additionalProperties": false,
			"properties": {"city": {"type": "string", "default": "nowhere"}}
		}
	}
}`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func newUsersStore(t *testing.T) *Store {
	t.Helper()
	schema, err := ParseSchema([]byte(usersSchema))
	require.NoError(t, err)
	st := NewStore(schema)
	st.Bind("a", decode(t, `{"name":"a","tags":["x","y"],"address":{"city":"Paris"}}`))
	st.Bind("b", decode(t, `{"name":"b","tags":[],"address":{"city":"Oslo"}}`))
	return st
}

func TestRoundTrip(t *testing.T) {
	schema, err := ParseSchema([]byte(usersSchema))
	require.NoError(t, err)

	for _, doc := range []string{
		`{"name":"a","tags":["x","y"],"address":{"city":"Paris"}}`,
		`{"name":"","tags":[],"address":{"city":""}}`,
	} {
		plain := decode(t, doc)
		assert.Equal(t, plain, FromPlain(schema, plain).Plain())
	}
}

func TestFromPlainFillsDefaults(t *testing.T) {
	schema, err := ParseSchema([]byte(usersSchema))
	require.NoError(t, err)

	got := FromPlain(schema, decode(t, `{"name":"a"}`)).Plain()
	assert.Equal(t, decode(t, `{"name":"a","tags":[],"address":{"city":"nowhere"}}`), got)
}

func TestRequiredMustBeDeclared(t *testing.T) {
	_, err := ParseSchema([]byte(`{"type":"object","required":["missing"],"properties":{},"additionalProperties":false}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))

	var verr *revisionerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "(root)", verr.Details[0].Field)
}

func TestEveryPropertyMustBeRequired(t *testing.T) {
	// b would come back from FromPlain with its default and break the round trip.
	_, err := ParseSchema([]byte(`{
		"type":"object","additionalProperties":false,"required":["a"],
		"properties":{"a":{"type":"string","default":""},"b":{"type":"number","default":0}}
	}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))

	var verr *revisionerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Details[0].Message, `"b"`)

	_, err = ParseSchema([]byte(`{
		"type":"object","additionalProperties":false,"required":[],
		"properties":{"list":{"type":"array","items":{
			"type":"object","additionalProperties":false,"required":[],
			"properties":{"x":{"type":"string","default":""}}
		}}}
	}`))
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
}

func TestAddPropertyUsesDefault(t *testing.T) {
	st := newUsersStore(t)
	node, err := st.Schema().Build(decode(t, `{"type":"number","default":7}`))
	require.NoError(t, err)

	require.NoError(t, st.AddProperty(st.Schema().Root(), "age", node))

	assert.Equal(t, float64(7), st.Plain("a").(map[string]any)["age"])
	assert.Equal(t, float64(7), st.Plain("b").(map[string]any)["age"])
	assert.Contains(t, st.Schema().Node(st.Schema().Root()).Required, "age")
	assert.Equal(t, 2, st.BoundCount(node))
}

func TestRemoveThenAddSameShapeInherits(t *testing.T) {
	st := newUsersStore(t)
	root := st.Schema().Root()

	_, err := st.RemoveProperty(root, "name")
	require.NoError(t, err)
	assert.NotContains(t, st.Plain("a").(map[string]any), "name")

	node, err := st.Schema().Build(decode(t, `{"type":"string","default":""}`))
	require.NoError(t, err)
	require.NoError(t, st.AddProperty(root, "name", node))

	assert.Equal(t, "a", st.Plain("a").(map[string]any)["name"])
	assert.Equal(t, "b", st.Plain("b").(map[string]any)["name"])
}

func TestMigratePropertyResetsToDefault(t *testing.T) {
	st := newUsersStore(t)
	st.Bind("c", decode(t, `{"name":"12","tags":[],"address":{"city":"Rome"}}`))
	root := st.Schema().Root()

	next, err := st.Schema().Build(decode(t, `{"type":"number","default":0}`))
	require.NoError(t, err)
	require.NoError(t, st.MigrateProperty(root, "name", next))

	assert.Equal(t, float64(0), st.Plain("a").(map[string]any)["name"])
	assert.Equal(t, float64(12), st.Plain("c").(map[string]any)["name"])
	assert.Equal(t, "number", st.Schema().Plain()["properties"].(map[string]any)["name"].(map[string]any)["type"])
}

func TestMigrateItems(t *testing.T) {
	st := newUsersStore(t)
	tags, err := st.Schema().Resolve(Path{{Name: "tags"}})
	require.NoError(t, err)

	next, err := st.Schema().Build(decode(t, `{"type":"boolean","default":false}`))
	require.NoError(t, err)
	require.NoError(t, st.MigrateItems(tags, next))

	assert.Equal(t, []any{false, false}, st.Plain("a").(map[string]any)["tags"])
	assert.Equal(t, 2, st.BoundCount(next))
}

func TestChangeName(t *testing.T) {
	st := newUsersStore(t)
	require.NoError(t, st.ChangeName(st.Schema().Root(), "name", "title"))

	row := st.Plain("a").(map[string]any)
	assert.Equal(t, "a", row["title"])
	assert.NotContains(t, row, "name")
	assert.Contains(t, st.Schema().Node(st.Schema().Root()).Required, "title")

	err := st.ChangeName(st.Schema().Root(), "title", "tags")
	assert.True(t, errors.Is(err, revisionerrors.MalformedPatch))
}

func TestTransform(t *testing.T) {
	assert.Equal(t, "1.5", Transform(Number, String, 1.5, ""))
	assert.Equal(t, float64(3), Transform(String, Number, " 3 ", float64(0)))
	assert.Equal(t, float64(0), Transform(String, Number, "a", float64(0)))
	for _, special := range []string{"NaN", "Inf", "-Infinity", "+inf"} {
		assert.Equal(t, float64(4), Transform(String, Number, special, float64(4)), special)
	}
	assert.Equal(t, true, Transform(String, Boolean, "true", false))
	assert.Equal(t, []any{"x"}, Transform(String, Array, "x", []any{}))
	assert.Equal(t, "x", Transform(Array, String, []any{"x", "y"}, ""))
	assert.Equal(t, "", Transform(Object, String, map[string]any{}, ""))
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("/properties/a/items/properties/b~1c")
	require.NoError(t, err)
	assert.Equal(t, Path{{Name: "a"}, {Items: true}, {Name: "b/c"}}, p)
	assert.Equal(t, "/properties/a/items/properties/b~1c", p.String())

	for _, bad := range []string{"properties/a", "/props/a", "/properties", "/properties/"} {
		_, err := ParsePath(bad)
		assert.True(t, errors.Is(err, revisionerrors.MalformedPatch), bad)
	}
}

func TestReferences(t *testing.T) {
	schema, err := ParseSchema([]byte(`{
		"type":"object","additionalProperties":false,"required":["author","links"],
		"properties":{
			"author":{"type":"string","default":"","foreignKey":"users"},
			"links":{"type":"array","items":{"type":"string","default":"","reference":"users"}}
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, schema.ForeignKeyTables())
	assert.Len(t, schema.Declarations(), 2)

	st := NewStore(schema)
	st.Bind("p1", decode(t, `{"author":"a","links":["a","b"]}`))
	st.Bind("p2", decode(t, `{"author":"","links":[]}`))

	refs := st.References("p1")
	assert.Equal(t, []RowReference{
		{Kind: ForeignKey, Table: "users", RowID: "a", Path: "/author"},
		{Kind: Reference, Table: "users", RowID: "a", Path: "/links/0"},
		{Kind: Reference, Table: "users", RowID: "b", Path: "/links/1"},
	}, refs)
	assert.Empty(t, st.References("p2"))
	assert.Equal(t, 2, st.CountReferences("users", "a"))

	assert.Equal(t, []string{"p1"}, st.ReplaceReferences("users", "a", "z"))
	assert.Equal(t, "z", st.Plain("p1").(map[string]any)["author"])
	assert.Equal(t, []any{"a", "b"}, st.Plain("p1").(map[string]any)["links"])
}

func TestCountReferencesCountsEachValueOnce(t *testing.T) {
	schema, err := ParseSchema([]byte(`{
		"type":"object","additionalProperties":false,"required":["owner"],
		"properties":{"owner":{"type":"string","default":"","foreignKey":"users","reference":"users"}}
	}`))
	require.NoError(t, err)
	assert.Len(t, schema.Declarations(), 2)

	st := NewStore(schema)
	st.Bind("p1", decode(t, `{"owner":"a"}`))
	st.Bind("p2", decode(t, `{"owner":"a"}`))

	assert.Equal(t, 2, st.CountReferences("users", "a"))
	assert.Len(t, st.References("p1"), 2)
}

func TestHashIgnoresKeyOrder(t *testing.T) {
	a, err := Hash(decode(t, `{"a":1,"b":{"c":2,"d":3}}`))
	require.NoError(t, err)
	b, err := Hash(decode(t, `{"b":{"d":3,"c":2},"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}
