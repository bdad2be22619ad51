package schemagen

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tagskema/format"
	"github.com/reoring/tagskema/internal/descriptor"
	js "github.com/reoring/tagskema/jsonschema"
)

func build[T any](t *testing.T) *descriptor.Struct {
	t.Helper()
	s, err := descriptor.Build(reflect.TypeFor[T](), descriptor.Options{Formats: format.NewRegistry()})
	require.NoError(t, err)
	return s
}

type scalars struct {
	Code    string         `json:"code" validate:"gt=2,lt=6"`
	Fixed   string         `json:"fixed" validate:"len=4"`
	Count   int            `json:"count" validate:"len=3"`
	Not     int            `json:"not" validate:"ne=0"`
	Step    int            `json:"step" validate:"multiple_of=5"`
	Amount  float64        `json:"amount" validate:"precision=3,max_digits=8"`
	Link    string         `json:"link" validate:"url"`
	When    string         `json:"when" validate:"datetime"`
	Slug    string         `json:"slug" validate:"pattern=^[a-z-]+$"`
	Set     []int          `json:"set" validate:"unique"`
	Note    *string        `json:"note" validate:"notnull,title=Note,description=Free text,examples=hi|there,deprecated"`
	Ratio   float64        `json:"ratio" validate:"default=0.5,examples=0.25"`
	Weights []string       `json:"weights" validate:"default=[\"a\"]"`
	Props   map[string]int `json:"props" validate:"min=1,max=4"`
}

func TestGenerate_ScalarMapping(t *testing.T) {
	sc, err := Generate(build[scalars](t), Options{})
	require.NoError(t, err)
	p := sc.Properties

	assert.Equal(t, js.Int(3), p["code"].MinLength)
	assert.Equal(t, js.Int(5), p["code"].MaxLength)
	assert.Equal(t, js.Int(4), p["fixed"].MinLength)
	assert.Equal(t, js.Int(4), p["fixed"].MaxLength)
	assert.Equal(t, int64(3), p["count"].Const)
	assert.Equal(t, &js.Schema{Const: int64(0)}, p["not"].Not)
	assert.Equal(t, js.Float(5), p["step"].MultipleOf)
	assert.Equal(t, js.Float(0.001), p["amount"].MultipleOf)
	assert.Equal(t, []string{"max_digits=8"}, p["amount"].XConstraints)
	assert.Equal(t, "uri", p["link"].Format)
	assert.Equal(t, "date-time", p["when"].Format)
	assert.Equal(t, "^[a-z-]+$", p["slug"].Pattern)
	assert.True(t, p["set"].UniqueItems)
	assert.Equal(t, "integer", p["set"].Items.Type)

	note := p["note"]
	assert.Equal(t, "string", note.Type)
	assert.Equal(t, "Note", note.Title)
	assert.Equal(t, "Free text", note.Description)
	assert.True(t, note.Deprecated)
	assert.Equal(t, []any{"hi", "there"}, note.Examples)
	assert.Equal(t, []string{"notnull"}, note.XConstraints)

	assert.Equal(t, 0.5, p["ratio"].Default)
	assert.Equal(t, []any{0.25}, p["ratio"].Examples)
	assert.Equal(t, []any{"a"}, p["weights"].Default)

	assert.Equal(t, js.Int(1), p["props"].MinProperties)
	assert.Equal(t, js.Int(4), p["props"].MaxProperties)
	assert.Equal(t, &js.Schema{Type: "integer"}, p["props"].AdditionalProperties)

	assert.Empty(t, sc.Required)
}

type account struct {
	Password string `json:"password" validate:"required"`
	Confirm  string `json:"confirm" validate:"required,eqfield=Password"`
	Plan     string `json:"plan" validate:"oneof=free|pro"`
	Card     string `json:"card" validate:"required_if=Plan|pro"`
	Coupon   string `json:"coupon" validate:"excluded_if=Plan|free"`
	Email    string `json:"email"`
	Phone    string `json:"phone" validate:"required_without=Email"`
	Street   string `json:"street"`
	City     string `json:"city" validate:"required_with=Street"`
}

func TestGenerate_CrossFieldAndConditionals(t *testing.T) {
	sc, err := Generate(build[account](t), Options{RejectExtra: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"password", "confirm"}, sc.Required)
	assert.Equal(t, []string{"eqfield=Password"}, sc.Properties["confirm"].XConstraints)
	assert.Equal(t, map[string][]string{"street": {"city"}}, sc.DependentRequired)
	assert.Equal(t, false, sc.AdditionalProperties)

	require.Len(t, sc.AllOf, 3)
	reqIf := sc.AllOf[0]
	assert.Equal(t, []string{"plan"}, reqIf.If.Required)
	assert.Equal(t, "pro", reqIf.If.Properties["plan"].Const)
	assert.Equal(t, []string{"card"}, reqIf.Then.Required)
	assert.Nil(t, reqIf.Else)

	exclIf := sc.AllOf[1]
	require.NotNil(t, exclIf.Then)
	require.NotNil(t, exclIf.Then.Not)
	assert.Equal(t, []string{"coupon"}, exclIf.Then.Not.Required)

	without := sc.AllOf[2]
	assert.Equal(t, []string{"email"}, without.If.Required)
	assert.Nil(t, without.Then)
	assert.Equal(t, []string{"phone"}, without.Else.Required)
}

type leaf struct {
	V int `json:"v"`
}

type branch struct {
	A leaf  `json:"a"`
	B *leaf `json:"b"`
}

type node struct {
	Next *node `json:"next"`
}

func TestGenerate_Modes(t *testing.T) {
	s := build[branch](t)

	inline, err := Generate(s, Options{})
	require.NoError(t, err)
	assert.Equal(t, "object", inline.Properties["a"].Type)
	assert.Nil(t, inline.Defs)

	refs, err := Generate(s, Options{Mode: Refs})
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/leaf", refs.Properties["a"].Ref)
	assert.Equal(t, "#/$defs/leaf", refs.Properties["b"].Ref)
	assert.Len(t, refs.Defs, 1)

	cyc, err := Generate(build[node](t), Options{})
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/node", cyc.Properties["next"].Ref)
	assert.Equal(t, "#/$defs/node", cyc.Defs["node"].Properties["next"].Ref)
}

func TestGenerator_SharedDefs(t *testing.T) {
	g := New(Options{Mode: Refs})
	a, err := g.Object(build[branch](t))
	require.NoError(t, err)
	b, err := g.Object(build[branch](t))
	require.NoError(t, err)
	assert.Equal(t, "#/$defs/leaf", a.Properties["a"].Ref)
	assert.Equal(t, "#/$defs/leaf", b.Properties["a"].Ref, "one definition per type")
	assert.Len(t, g.Defs(), 1)
}

type impossible struct {
	Name  string   `json:"name" validate:"lt=0"`
	Items []int    `json:"items" validate:"lt=0"`
	Tags  []string `json:"tags" validate:"lt=1"`
}

func TestGenerate_StrictUpperBoundOfZero(t *testing.T) {
	sc, err := Generate(build[impossible](t), Options{})
	require.NoError(t, err)
	p := sc.Properties

	assert.Equal(t, &js.Schema{}, p["name"].Not, "no string is shorter than zero")
	assert.Nil(t, p["name"].MaxLength)
	assert.Equal(t, &js.Schema{}, p["items"].Not)
	assert.Nil(t, p["items"].MaxItems)
	assert.Nil(t, p["tags"].Not)
	assert.Equal(t, js.Int(0), p["tags"].MaxItems)
}

func TestFormatKeyword(t *testing.T) {
	assert.Equal(t, "uri", FormatKeyword("url"))
	assert.Equal(t, "email", FormatKeyword("email"))
}
