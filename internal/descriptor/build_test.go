package descriptor

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tagskema/constraint"
	"github.com/reoring/tagskema/format"
)

type Address struct {
	City string `json:"city" validate:"required,min=2"`
}

type Base struct {
	ID string `json:"id" validate:"required,uuid"`
}

type Order struct {
	Base
	Tags     []string          `json:"tags" validate:"min=1,max=3,dive,min=2"`
	Labels   map[string]string `json:"labels" validate:"dive,keys,min=2,endkeys,max=10"`
	Ship     *Address          `json:"ship"`
	Lines    []Line            `json:"lines" validate:"unique=SKU"`
	Start    time.Time         `json:"start"`
	End      time.Time         `json:"end" validate:"gtfield=Start"`
	Priority int               `json:"priority" validate:"default=3,lte=5"`
	Note     string            `json:"note" validate:"omitempty,title=Note,examples=a|b,deprecated"`
	Internal string            `json:"-"`
	Extra    map[string]any    `json:"-" validate:"extras"`
	hidden   string
}

type Line struct {
	SKU string `json:"sku" validate:"required"`
	Qty int    `json:"qty" validate:"gt=0"`
}

func opts() Options { return Options{Formats: format.NewRegistry()} }

func TestBuild_Order(t *testing.T) {
	s, err := Build(reflect.TypeFor[Order](), opts())
	require.NoError(t, err)

	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "tags", "labels", "ship", "lines", "start", "end", "priority", "note"}, names)

	id, ok := s.Lookup("id")
	require.True(t, ok)
	assert.True(t, id.Required)
	assert.Equal(t, []int{0, 0}, id.Index)

	tags, _ := s.Lookup("tags")
	assert.Equal(t, constraint.ShapeCollection, tags.Shape)
	require.Len(t, tags.Rules, 2)
	assert.Equal(t, constraint.KindSize, tags.Rules[0].Kind())
	require.NotNil(t, tags.Elem)
	assert.Equal(t, constraint.KindLength, tags.Elem.Rules[0].Kind())

	labels, _ := s.Lookup("labels")
	require.NotNil(t, labels.Key)
	require.NotNil(t, labels.Elem)
	assert.Equal(t, constraint.KindLength, labels.Key.Rules[0].Kind())

	ship, _ := s.Lookup("ship")
	require.NotNil(t, ship.Nested)
	assert.Equal(t, reflect.TypeFor[Address](), ship.Nested.Type)

	lines, _ := s.Lookup("lines")
	require.NotNil(t, lines.Elem)
	require.NotNil(t, lines.Elem.Nested)

	start, _ := s.Lookup("start")
	assert.Equal(t, constraint.ShapeScalar, start.Shape)

	prio, _ := s.Lookup("priority")
	require.True(t, prio.HasDefault)
	assert.EqualValues(t, 3, prio.Default.Int())

	note, _ := s.Lookup("note")
	assert.True(t, note.OmitEmpty)
	assert.Equal(t, "Note", note.Meta.Title)
	assert.Equal(t, []string{"a", "b"}, note.Meta.Examples)
	assert.True(t, note.Meta.Deprecated)

	require.NotNil(t, s.Capture)
	assert.Equal(t, "Extra", s.Capture.GoName)
	assert.True(t, s.Known("tags"))
	assert.False(t, s.Known("Extra"), "the extras field has no wire name")
	assert.False(t, s.Known("-"))
	assert.False(t, s.Known("Internal"))

	end, _ := s.Sibling("End")
	assert.Equal(t, "end", end.Name)
	assert.NotZero(t, s.Fingerprint)
}

type Node struct {
	Name     string `json:"name" validate:"required"`
	Children []Node `json:"children" validate:"max=4"`
}

func TestBuild_Recursive(t *testing.T) {
	s, err := Build(reflect.TypeFor[Node](), opts())
	require.NoError(t, err)
	children, _ := s.Lookup("children")
	require.NotNil(t, children.Elem)
	assert.Same(t, s, children.Elem.Nested)
}

func TestBuild_Errors(t *testing.T) {
	type badFormat struct {
		N int `validate:"email"`
	}
	type badSibling struct {
		A int `validate:"gtfield=Nope"`
	}
	type badDive struct {
		S string `validate:"dive,min=1"`
	}
	type badParam struct {
		S string `validate:"min=abc"`
	}
	type badDefault struct {
		N int `validate:"default=x"`
	}
	type badUnique struct {
		L []Line `validate:"unique=Nope"`
	}
	type badExtras struct {
		E map[string]string `validate:"extras"`
	}
	type crossOnElem struct {
		A []int `validate:"dive,eqfield=B"`
		B int
	}
	type condLiteral struct {
		Kind int    `json:"kind"`
		Ref  string `validate:"required_if=Kind|abc"`
	}

	cases := []struct {
		typ reflect.Type
		err error
	}{
		{reflect.TypeFor[badFormat](), constraint.ErrShapeMismatch},
		{reflect.TypeFor[badSibling](), ErrUnknownField},
		{reflect.TypeFor[badDive](), constraint.ErrBadMarker},
		{reflect.TypeFor[badParam](), constraint.ErrBadParam},
		{reflect.TypeFor[badDefault](), ErrDefault},
		{reflect.TypeFor[badUnique](), ErrUnknownField},
		{reflect.TypeFor[badExtras](), ErrCapture},
		{reflect.TypeFor[crossOnElem](), ErrFieldOnly},
		{reflect.TypeFor[condLiteral](), constraint.ErrBadParam},
		{reflect.TypeFor[int](), ErrNotStruct},
	}
	for _, tc := range cases {
		t.Run(tc.typ.String(), func(t *testing.T) {
			_, err := Build(tc.typ, opts())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.err)
			var be *BuildError
			assert.True(t, errors.As(err, &be))
		})
	}
}

func TestBuild_RequireCapture(t *testing.T) {
	o := opts()
	o.RequireCapture = true
	_, err := Build(reflect.TypeFor[Address](), o)
	assert.ErrorIs(t, err, ErrCapture)

	_, err = Build(reflect.TypeFor[Order](), o)
	assert.NoError(t, err)
}

func TestBuild_DefaultFactory(t *testing.T) {
	type withFactory struct {
		At time.Time `validate:"default_factory=now"`
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	o := opts()
	o.Factory = func(name string) (func() any, reflect.Type, bool) {
		if name != "now" {
			return nil, nil, false
		}
		return func() any { return now }, reflect.TypeFor[time.Time](), true
	}
	s, err := Build(reflect.TypeFor[withFactory](), o)
	require.NoError(t, err)
	require.NotNil(t, s.Fields[0].Factory)
	assert.Equal(t, now, s.Fields[0].Factory())

	type wrongFactory struct {
		At string `validate:"default_factory=now"`
	}
	_, err = Build(reflect.TypeFor[wrongFactory](), o)
	assert.ErrorIs(t, err, ErrDefault)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint(reflect.TypeFor[Order](), "validate")
	assert.Equal(t, a, Fingerprint(reflect.TypeFor[Order](), "validate"))
	assert.NotEqual(t, a, Fingerprint(reflect.TypeFor[Order](), "binding"))
	assert.NotEqual(t, a, Fingerprint(reflect.TypeFor[Node](), "validate"))
}

func TestCache_BuildOnceAndVersion(t *testing.T) {
	var c Cache
	var calls atomic.Int32
	build := func() (*Struct, error) {
		calls.Add(1)
		return Build(reflect.TypeFor[Address](), opts())
	}
	typ := reflect.TypeFor[Address]()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := c.Get(typ, 1, build)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, calls.Load())

	_, built, _ := c.Get(typ, 1, build)
	assert.False(t, built)

	_, built, _ = c.Get(typ, 2, build)
	assert.True(t, built)
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, 1, c.Len())

	c.Invalidate()
	assert.Equal(t, 0, c.Len())
}

func TestCache_ErrorIsSticky(t *testing.T) {
	var c Cache
	var calls int
	build := func() (*Struct, error) {
		calls++
		return nil, errors.New("boom")
	}
	typ := reflect.TypeFor[Address]()
	_, _, err1 := c.Get(typ, 0, build)
	_, _, err2 := c.Get(typ, 0, build)
	assert.Equal(t, err1, err2)
	assert.Equal(t, 1, calls)
}
