package migration

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/jam-build-revdb/internal/jsonstore"
	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

var testTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const peopleSchema = `{
	"type": "object",
	"required": ["name", "address"],
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string", "default": ""},
		"address": {
			"type": "object",
			"required": ["city"],
			"additionalProperties": false,
			"properties": {"city": {"type": "string", "default": ""}}
		}
	}
}`

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func newStore(t *testing.T) *jsonstore.Store {
	t.Helper()
	schema, err := jsonstore.ParseSchema([]byte(peopleSchema))
	require.NoError(t, err)
	st := jsonstore.NewStore(schema)
	st.Bind("a", decode(t, `{"name":"a","address":{"city":"Paris"}}`))
	st.Bind("b", decode(t, `{"name":"b","address":{"city":"Oslo"}}`))
	return st
}

func row(st *jsonstore.Store, id string) map[string]any {
	return st.Plain(id).(map[string]any)
}

func TestReplaceChangesTypeAndRecords(t *testing.T) {
	st := newStore(t)
	log, err := NewLog("lineage-1", "users", st.Schema(), testTime)
	require.NoError(t, err)

	hash, err := ApplyAndRecord(log, st, []Patch{
		{Op: OpReplace, Path: "/properties/name", Value: decode(t, `{"type":"number","default":0}`)},
	}, testTime)
	require.NoError(t, err)

	assert.Equal(t, float64(0), row(st, "a")["name"])
	assert.Equal(t, float64(0), row(st, "b")["name"])
	require.Len(t, log.Migrations, 1)
	assert.Equal(t, ChangeUpdate, log.Migrations[0].ChangeType)
	assert.Equal(t, hash, log.LastHash())
	assert.NotEqual(t, log.InitMigration.Hash, hash)
}

func TestAddAndRemove(t *testing.T) {
	st := newStore(t)
	require.NoError(t, Apply(st, []Patch{
		{Op: OpAdd, Path: "/properties/address/properties/zip", Value: decode(t, `{"type":"string","default":"00000"}`)},
		{Op: OpRemove, Path: "/properties/name"},
	}))

	assert.Equal(t, decode(t, `{"address":{"city":"Paris","zip":"00000"}}`), st.Plain("a"))
	assert.Contains(t, st.Schema().Plain()["properties"].(map[string]any)["address"].(map[string]any)["required"], "zip")
}

func TestRemoveThenAddSameShapeKeepsValues(t *testing.T) {
	st := newStore(t)
	require.NoError(t, Apply(st, []Patch{
		{Op: OpRemove, Path: "/properties/name"},
		{Op: OpAdd, Path: "/properties/name", Value: decode(t, `{"type":"string","default":""}`)},
	}))
	assert.Equal(t, "a", row(st, "a")["name"])
}

func TestMoveWithinObjectRenames(t *testing.T) {
	st := newStore(t)
	require.NoError(t, Apply(st, []Patch{
		{Op: OpMove, From: "/properties/name", Path: "/properties/fullName"},
	}))
	assert.Equal(t, decode(t, `{"fullName":"b","address":{"city":"Oslo"}}`), st.Plain("b"))
}

func TestMoveAcrossObjectsKeepsValues(t *testing.T) {
	st := newStore(t)
	require.NoError(t, Apply(st, []Patch{
		{Op: OpMove, From: "/properties/address/properties/city", Path: "/properties/city"},
	}))

	assert.Equal(t, decode(t, `{"name":"a","city":"Paris","address":{}}`), st.Plain("a"))
	assert.Equal(t, decode(t, `{"name":"b","city":"Oslo","address":{}}`), st.Plain("b"))

	id, err := st.Schema().Resolve(jsonstore.Path{{Name: "city"}})
	require.NoError(t, err)
	assert.Equal(t, jsonstore.Path{{Name: "city"}}, st.Schema().PathOf(id))
	assert.Equal(t, 2, st.BoundCount(id))
}

func listStore(t *testing.T, schema string, rows map[string]string) *jsonstore.Store {
	t.Helper()
	parsed, err := jsonstore.ParseSchema([]byte(schema))
	require.NoError(t, err)
	st := jsonstore.NewStore(parsed)
	for _, id := range []string{"r1", "r2"} {
		st.Bind(id, decode(t, rows[id]))
	}
	return st
}

// Values follow a moved property by row and ordinal, so only the first
// element of an array lines up with the single value of its parent row.
func TestMoveOutOfItemsKeepsFirstElement(t *testing.T) {
	st := listStore(t, `{
		"type":"object","additionalProperties":false,"required":["list"],
		"properties":{"list":{"type":"array","items":{
			"type":"object","additionalProperties":false,"required":["x"],
			"properties":{"x":{"type":"string","default":"none"}}
		}}}
	}`, map[string]string{
		"r1": `{"list":[{"x":"one"},{"x":"two"},{"x":"three"}]}`,
		"r2": `{"list":[]}`,
	})

	require.NoError(t, Apply(st, []Patch{
		{Op: OpMove, From: "/properties/list/items/properties/x", Path: "/properties/x"},
	}))

	assert.Equal(t, decode(t, `{"x":"one","list":[{},{},{}]}`), st.Plain("r1"))
	assert.Equal(t, decode(t, `{"x":"none","list":[]}`), st.Plain("r2"))

	id, err := st.Schema().Resolve(jsonstore.Path{{Name: "x"}})
	require.NoError(t, err)
	assert.Equal(t, 2, st.BoundCount(id))
}

func TestMoveIntoItemsSeedsFirstElement(t *testing.T) {
	st := listStore(t, `{
		"type":"object","additionalProperties":false,"required":["x","list"],
		"properties":{
			"x":{"type":"string","default":"none"},
			"list":{"type":"array","items":{
				"type":"object","additionalProperties":false,"required":[],"properties":{}
			}}
		}
	}`, map[string]string{
		"r1": `{"x":"one","list":[{},{}]}`,
		"r2": `{"x":"two","list":[]}`,
	})

	require.NoError(t, Apply(st, []Patch{
		{Op: OpMove, From: "/properties/x", Path: "/properties/list/items/properties/x"},
	}))

	assert.Equal(t, decode(t, `{"list":[{"x":"one"},{"x":"none"}]}`), st.Plain("r1"))
	assert.Equal(t, decode(t, `{"list":[]}`), st.Plain("r2"))

	root := st.Schema().Node(st.Schema().Root())
	assert.Equal(t, []string{"list"}, root.Required)
}

func TestMoveIntoItselfIsRejected(t *testing.T) {
	st := newStore(t)
	err := Apply(st, []Patch{
		{Op: OpMove, From: "/properties/address", Path: "/properties/address/properties/inner"},
	})
	assert.True(t, errors.Is(err, revisionerrors.MalformedPatch))
}

func TestMalformedBatchIsNotApplied(t *testing.T) {
	for name, patches := range map[string][]Patch{
		"unknown op": {
			{Op: OpRemove, Path: "/properties/name"},
			{Op: "copy", Path: "/properties/x"},
		},
		"bad segment": {
			{Op: OpRemove, Path: "/properties/name"},
			{Op: OpRemove, Path: "/fields/x"},
		},
		"missing value": {
			{Op: OpRemove, Path: "/properties/name"},
			{Op: OpAdd, Path: "/properties/x"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			st := newStore(t)
			before := st.Schema().Plain()

			err := Apply(st, patches)
			require.Error(t, err)
			assert.True(t, errors.Is(err, revisionerrors.MalformedPatch))
			assert.Equal(t, before, st.Schema().Plain())
			assert.Equal(t, "a", row(st, "a")["name"])
		})
	}
}

func TestArrayItemsMigrate(t *testing.T) {
	schema, err := jsonstore.ParseSchema([]byte(`{
		"type":"object","required":["scores"],"additionalProperties":false,
		"properties":{"scores":{"type":"array","items":{"type":"number","default":0}}}
	}`))
	require.NoError(t, err)
	st := jsonstore.NewStore(schema)
	st.Bind("r", decode(t, `{"scores":[1,2.5]}`))

	require.NoError(t, Apply(st, []Patch{
		{Op: OpReplace, Path: "/properties/scores/items", Value: decode(t, `{"type":"string","default":""}`)},
	}))
	assert.Equal(t, []any{"1", "2.5"}, row(st, "r")["scores"])
}

func TestReplayReproducesSchema(t *testing.T) {
	st := newStore(t)
	log, err := NewLog("lineage-1", "people", st.Schema(), testTime)
	require.NoError(t, err)

	batches := [][]Patch{
		{{Op: OpAdd, Path: "/properties/age", Value: decode(t, `{"type":"number","default":18}`)}},
		{{Op: OpMove, From: "/properties/address/properties/city", Path: "/properties/city"}},
		{{Op: OpReplace, Path: "/properties/age", Value: decode(t, `{"type":"string","default":""}`)}},
	}
	for _, b := range batches {
		_, err := ApplyAndRecord(log, st, b, testTime)
		require.NoError(t, err)
	}
	log.AppendRename("persons", testTime)

	raw, err := json.Marshal(log)
	require.NoError(t, err)
	stored, err := ParseLog(raw)
	require.NoError(t, err)

	replayed, err := Replay(stored)
	require.NoError(t, err)
	assert.Equal(t, st.Schema().Plain(), replayed.Plain())
	assert.Equal(t, "persons", stored.CurrentTableID())

	hash, err := jsonstore.Hash(replayed.Plain())
	require.NoError(t, err)
	assert.Equal(t, stored.LastHash(), hash)
}

func TestRetargetForeignKeys(t *testing.T) {
	schema, err := jsonstore.ParseSchema([]byte(`{
		"type":"object","required":["owner","tags"],"additionalProperties":false,
		"properties":{
			"owner":{"type":"string","default":"","foreignKey":"users"},
			"tags":{"type":"array","items":{"type":"string","default":"","reference":"users"}}
		}
	}`))
	require.NoError(t, err)
	st := jsonstore.NewStore(schema)
	st.Bind("p", decode(t, `{"owner":"u1","tags":["u2"]}`))

	patches := RetargetForeignKeys(schema, "users", "people")
	require.Len(t, patches, 2)
	require.NoError(t, Apply(st, patches))

	assert.Equal(t, []string{"people"}, st.Schema().ForeignKeyTables())
	assert.Equal(t, decode(t, `{"owner":"u1","tags":["u2"]}`), st.Plain("p"))
	assert.Empty(t, RetargetForeignKeys(st.Schema(), "users", "people"))
}

func TestLogWireFormat(t *testing.T) {
	schema, err := jsonstore.ParseSchema([]byte(peopleSchema))
	require.NoError(t, err)
	log, err := NewLog("lineage-1", "people", schema, testTime)
	require.NoError(t, err)
	log.AppendRename("persons", testTime)

	raw, err := json.Marshal(log)
	require.NoError(t, err)
	wire := decode(t, string(raw)).(map[string]any)

	assert.Equal(t, "lineage-1", wire["createdId"])
	assert.Equal(t, "init", wire["initMigration"].(map[string]any)["changeType"])
	rename := wire["migrations"].([]any)[0].(map[string]any)
	assert.Equal(t, "rename", rename["changeType"])
	assert.Equal(t, "persons", rename["tableId"])
	assert.NotContains(t, rename, "patches")
}
