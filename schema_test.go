package tagskema_test

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reoring/tagskema"
	js "github.com/reoring/tagskema/jsonschema"
)

func TestSchema_Order(t *testing.T) {
	sc, err := tagskema.Schema[Order](tagskema.New())
	require.NoError(t, err)
	assert.Equal(t, js.Draft, sc.Schema)
	assert.Equal(t, "object", sc.Type)
	assert.Equal(t, []string{"id", "customer"}, sc.Required)

	id := sc.Properties["id"]
	assert.Equal(t, "string", id.Type)
	assert.Equal(t, "uuid4", id.Format)

	tags := sc.Properties["tags"]
	assert.Equal(t, "array", tags.Type)
	assert.Equal(t, js.Int(3), tags.MaxItems)
	require.NotNil(t, tags.Items)
	assert.Equal(t, js.Int(2), tags.Items.MinLength)

	labels := sc.Properties["labels"]
	require.NotNil(t, labels.PropertyNames)
	assert.Equal(t, js.Int(2), labels.PropertyNames.MinLength)
	assert.Equal(t, &js.Schema{Type: "string", MaxLength: js.Int(8)}, labels.AdditionalProperties)

	status := sc.Properties["status"]
	assert.Equal(t, "pending", status.Default)
	assert.Equal(t, []any{"pending", "paid", "shipped"}, status.Enum)

	lines := sc.Properties["lines"]
	assert.Equal(t, []string{"unique=SKU"}, lines.XConstraints)
	line := lines.Items
	assert.Equal(t, "object", line.Type)
	assert.Equal(t, js.Float(0), line.Properties["price"].ExclusiveMinimum)
	assert.Equal(t, js.Float(0.01), line.Properties["price"].MultipleOf)
	assert.Equal(t, "integer", line.Properties["qty"].Type)

	customer := sc.Properties["customer"]
	assert.Equal(t, "email", customer.Properties["email"].Format)
	assert.Nil(t, sc.Defs, "inline mode has no definitions for acyclic types")
}

func TestSchema_CachedAndIsolated(t *testing.T) {
	v := tagskema.New()
	a, err := tagskema.Schema[Order](v)
	require.NoError(t, err)
	b, err := tagskema.Schema[Order](v)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, tagskema.Stats{DescriptorBuilds: 1, SchemaHits: 1, SchemaMisses: 1}, v.Stats())

	a.Properties["id"].Format = "mutated"
	a.Required = append(a.Required, "x")
	c, err := tagskema.Schema[Order](v)
	require.NoError(t, err)
	assert.Equal(t, b, c)
}

func TestSchemaJSON_Stable(t *testing.T) {
	v := tagskema.New()
	a, err := tagskema.SchemaJSON[Order](v)
	require.NoError(t, err)
	b, err := tagskema.SchemaJSON[Order](v)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(a, &doc))
	assert.Equal(t, js.Draft, doc["$schema"])
	assert.Contains(t, doc, "properties")
}

func TestSchemaYAML(t *testing.T) {
	out, err := tagskema.SchemaYAML[Customer](tagskema.New())
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, []any{"name", "email"}, doc["required"])
}

func TestSchema_RefsMode(t *testing.T) {
	v := tagskema.New()
	sc, err := tagskema.Schema[Order](v, tagskema.WithSchemaMode(tagskema.SchemaRefs))
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/Customer", sc.Properties["customer"].Ref)
	assert.Equal(t, "#/$defs/Line", sc.Properties["lines"].Items.Ref)
	require.Contains(t, sc.Defs, "Customer")
	require.Contains(t, sc.Defs, "Line")
	assert.Equal(t, []string{"name", "email"}, sc.Defs["Customer"].Required)

	_, err = tagskema.Schema[Order](v)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Stats().SchemaMisses, "modes are cached separately")
}

type TreeNode struct {
	Name     string     `json:"name" validate:"required"`
	Children []TreeNode `json:"children" validate:"max=10"`
}

func TestSchema_RecursiveTypeUsesDefs(t *testing.T) {
	sc, err := tagskema.Schema[TreeNode](tagskema.New())
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/TreeNode", sc.Properties["children"].Items.Ref)
	require.Contains(t, sc.Defs, "TreeNode")
}

func TestSchema_RejectExtra(t *testing.T) {
	sc, err := tagskema.Schema[Customer](tagskema.New(tagskema.WithExtraFields(tagskema.ExtraReject)))
	require.NoError(t, err)
	assert.Equal(t, false, sc.AdditionalProperties)

	sc, err = tagskema.Schema[Customer](tagskema.New())
	require.NoError(t, err)
	assert.Nil(t, sc.AdditionalProperties)
}

func TestSchema_RegenerateAfterRegistration(t *testing.T) {
	v := tagskema.New()
	_, err := tagskema.Schema[Customer](v)
	require.NoError(t, err)
	require.NoError(t, tagskema.RegisterDefaultFactory(v, "now", func() int { return 0 }))
	_, err = tagskema.Schema[Customer](v)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v.Stats().SchemaMisses)
}

func TestSchema_NotStruct(t *testing.T) {
	_, err := tagskema.Schema[int](tagskema.New())
	assert.ErrorIs(t, err, tagskema.ErrNotStruct)
}
