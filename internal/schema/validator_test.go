package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const listSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id"],
		"properties": {"id": {"type": "string", "minLength": 1}}
	}
}`

func TestValidate_Valid(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.Validate(listSchema, []byte(`[{"id":"a"},{"id":"b"}]`)))
	assert.NoError(t, v.Validate(listSchema, []byte(`[]`)))
}

func TestValidate_Invalid(t *testing.T) {
	v := NewValidator()

	err := v.Validate(listSchema, []byte(`{"id":"a"}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")

	err = v.Validate(listSchema, []byte(`[{"name":"x"}]`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "id")
}

func TestValidate_NotJSON(t *testing.T) {
	v := NewValidator()
	err := v.Validate(listSchema, []byte(`not json`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation execution failed")
}

func TestValidate_MapSchemaIsCached(t *testing.T) {
	v := NewValidator()
	s := map[string]any{"type": "string"}

	assert.NoError(t, v.Validate(s, []byte(`"x"`)))
	assert.Error(t, v.Validate(s, []byte(`1`)))

	n := 0
	v.cache.Range(func(_, _ any) bool { n++; return true })
	assert.Equal(t, 1, n)
}

func TestDumpErrors_Truncates(t *testing.T) {
	out := dumpErrors([]string{"a", "b", "c", "d", "e"})
	assert.Equal(t, "a\n- b\n- c\n... and 2 more", out)
	assert.Equal(t, "", dumpErrors(nil))
}
