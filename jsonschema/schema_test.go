package jsonschema

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_IsDeep(t *testing.T) {
	orig := &Schema{
		Type:       "object",
		Properties: map[string]*Schema{"name": {Type: "string", MinLength: Int(1)}},
		Required:   []string{"name"},
		Enum:       []any{"a", map[string]any{"k": []any{1}}},
		Default:    map[string]any{"x": 1},
		AllOf:      []*Schema{{If: &Schema{Required: []string{"a"}}, Then: &Schema{Required: []string{"b"}}}},
		Defs:       map[string]*Schema{"N": {Type: "integer", Minimum: Float(0)}},
		DependentRequired: map[string][]string{
			"a": {"b"},
		},
		AdditionalProperties: false,
	}
	cp := orig.Clone()
	require.Equal(t, orig, cp)

	*cp.Properties["name"].MinLength = 9
	cp.Required[0] = "zzz"
	cp.Enum[1].(map[string]any)["k"] = nil
	cp.Default.(map[string]any)["x"] = 2
	cp.AllOf[0].Then.Required[0] = "c"
	*cp.Defs["N"].Minimum = 5
	cp.DependentRequired["a"][0] = "q"

	assert.Equal(t, 1, *orig.Properties["name"].MinLength)
	assert.Equal(t, "name", orig.Required[0])
	assert.Equal(t, []any{1}, orig.Enum[1].(map[string]any)["k"])
	assert.Equal(t, 1, orig.Default.(map[string]any)["x"])
	assert.Equal(t, "b", orig.AllOf[0].Then.Required[0])
	assert.Equal(t, 0.0, *orig.Defs["N"].Minimum)
	assert.Equal(t, "b", orig.DependentRequired["a"][0])
}

func TestSchema_JSONKeywords(t *testing.T) {
	s := &Schema{
		Schema:       Draft,
		Type:         "object",
		Properties:   map[string]*Schema{"n": {Ref: "#/$defs/N"}},
		XConstraints: []string{"gtfield=Start"},
	}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"$schema":"`+Draft+`","type":"object","properties":{"n":{"$ref":"#/$defs/N"}},"x-constraints":["gtfield=Start"]}`, string(b))
}
