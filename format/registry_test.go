package format_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tagskema/constraint"
	"github.com/reoring/tagskema/format"
)

func TestBuiltins(t *testing.T) {
	r := format.NewRegistry()
	cases := []struct {
		name  string
		in    string
		match bool
	}{
		{"email", "a@example.com", true},
		{"email", "nope", false},
		{"uuid", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{"uuid", "6ba7b8109dad11d180b400c04fd430c8", false},
		{"uuid4", "f47ac10b-58cc-4372-a567-0e02b2c3d479", true},
		{"uuid4", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"datetime", "2024-05-01T10:00:00Z", true},
		{"date", "2024-05-01", true},
		{"date", "05/01/2024", false},
		{"ipv4", "10.0.0.1", true},
		{"iso4217", "EUR", true},
		{"alphanum", "abc123", true},
		{"alphanum", "abc-123", false},
	}
	for _, tc := range cases {
		got, ok := r.Match(tc.name, tc.in)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.match, got, "%s(%q)", tc.name, tc.in)
	}
}

func TestRegister(t *testing.T) {
	r := format.NewRegistry()
	v0 := r.Version()

	require.NoError(t, r.Register("upper3", func(s string) bool { return len(s) == 3 && strings.ToUpper(s) == s }))
	assert.Greater(t, r.Version(), v0)
	assert.True(t, r.HasFormat("upper3"))

	err := r.Register("upper3", func(string) bool { return true })
	assert.ErrorIs(t, err, format.ErrDuplicateName)

	err = r.Register("min", func(string) bool { return true })
	assert.ErrorIs(t, err, constraint.ErrReservedName)

	err = r.Register("email", func(string) bool { return true })
	assert.ErrorIs(t, err, format.ErrDuplicateName)
}

func TestRegisterAlias(t *testing.T) {
	r := format.NewRegistry()
	require.NoError(t, r.RegisterAlias("username", "min=3,max=32,alphanum"))

	rules, err := constraint.Parse("required,username", r)
	require.NoError(t, err)
	assert.Len(t, rules.Constraints, 4)

	assert.ErrorIs(t, r.RegisterAlias("required", "min=1"), constraint.ErrReservedName)
	assert.ErrorIs(t, r.RegisterAlias("username", "min=1"), format.ErrDuplicateName)
	assert.ErrorIs(t, r.RegisterAlias("broken", "min=x"), constraint.ErrBadParam)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := format.NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Register("custom"+string(rune('a'+i)), func(string) bool { return true })
			_, _ = r.Match("email", "x@y.z")
		}(i)
	}
	wg.Wait()
	assert.Len(t, r.Names(), len(format.NewRegistry().Names())+8)
}
