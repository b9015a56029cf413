package validation

import (
	"encoding/json"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/localnerve/jam-build-revdb/internal/revisionerrors"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func newService(t *testing.T) *Service {
	t.Helper()
	s, err := New(0, zap.NewNop())
	require.NoError(t, err)
	return s
}

const usersSchema = `{
	"type": "object",
	"required": ["name", "manager", "tags"],
	"additionalProperties": false,
	"properties": {
		"name": {"type": "string", "default": ""},
		"manager": {"type": "string", "default": "", "foreignKey": "users"},
		"tags": {"type": "array", "items": {"type": "string", "default": ""}}
	}
}`

func TestValidateSchema(t *testing.T) {
	s := newService(t)

	schema, err := s.ValidateSchema(decode(t, usersSchema))
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, schema.ForeignKeyTables())

	for name, doc := range map[string]string{
		"unknown type":        `{"type":"integer","default":0}`,
		"missing required":    `{"type":"object","properties":{},"additionalProperties":false}`,
		"open object":         `{"type":"object","required":[],"properties":{},"additionalProperties":true}`,
		"array without items": `{"type":"array"}`,
		"bad foreign key":     `{"type":"string","default":"","foreignKey":"1bad"}`,
		"undeclared required": `{"type":"object","required":["x"],"properties":{},"additionalProperties":false}`,
		"optional property":   `{"type":"object","required":[],"properties":{"x":{"type":"string","default":""}},"additionalProperties":false}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.ValidateSchema(decode(t, doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
		})
	}
}

func TestValidateSchemaNode(t *testing.T) {
	s := newService(t)

	require.NoError(t, s.ValidateSchemaNode("patch 0", decode(t, `{"type":"string","default":""}`)))

	err := s.ValidateSchemaNode("patch 1", decode(t, `{"type":"string","default":"","minLength":3}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
	var verr *revisionerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "patch 1", verr.Subject)
	assert.NotEmpty(t, verr.Details)

	err = s.ValidateSchemaNode("patch 2", decode(t, `{"type":"object"}`))
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
}

func TestValidateData(t *testing.T) {
	s := newService(t)
	schema := decode(t, usersSchema).(map[string]any)

	require.NoError(t, s.ValidateData(schema, "a", decode(t, `{"name":"a","manager":"","tags":["x"]}`)))

	err := s.ValidateData(schema, "b", decode(t, `{"name":1,"extra":true}`))
	require.Error(t, err)
	var verr *revisionerrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "row b", verr.Subject)
	assert.GreaterOrEqual(t, len(verr.Details), 2)

	err = s.ValidateData(schema, "c", decode(t, `{}`))
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
}

func TestCompileCachesByContent(t *testing.T) {
	s := newService(t)

	first, err := s.Compile(decode(t, `{"type":"object","required":[],"properties":{},"additionalProperties":false}`).(map[string]any))
	require.NoError(t, err)
	second, err := s.Compile(decode(t, `{"additionalProperties":false,"properties":{},"required":[],"type":"object"}`).(map[string]any))
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestValidateViews(t *testing.T) {
	s := newService(t)

	require.NoError(t, s.ValidateViews(decode(t, `{
		"version": 1,
		"defaultViewId": "default",
		"views": [{"id":"default","name":"Default","columns":[{"field":"name","width":120}],"sorts":[{"field":"name","direction":"asc"}]}]
	}`)))

	err := s.ValidateViews(decode(t, `{"version":0,"views":[{"name":"x"}]}`))
	assert.True(t, errors.Is(err, revisionerrors.ValidationFailed))
}
