package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tagskema/constraint"
)

const lintSource = `package models

type User struct {
	Name  string ` + "`json:\"name\" validate:\"required,min=2\"`" + `
	Age   int    ` + "`json:\"age\" validate:\"min=abc\"`" + `
	Email string ` + "`json:\"email\" validate:\"corpmail\"`" + `
	Note  string ` + "`json:\"note\"`" + `
}
`

func writeModels(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "user.go"), []byte(lintSource), 0o644))
	return dir
}

func TestLintDir(t *testing.T) {
	dir := writeModels(t)
	problems, err := lintDir(filepath.Join(dir, "models"), "validate", registry(""))
	require.NoError(t, err)
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "User.Age")
	assert.Contains(t, problems[1], "User.Email")

	problems, err = lintDir(filepath.Join(dir, "models"), "validate", registry("corpmail"))
	require.NoError(t, err)
	assert.Len(t, problems, 1)
}

func TestExpandDir(t *testing.T) {
	dir := writeModels(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "testdata"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "_skip"), 0o755))

	got := expandDir(dir + "/...")
	assert.ElementsMatch(t, []string{dir, filepath.Join(dir, "models")}, got)
	assert.Equal(t, []string{dir}, expandDir(dir))
}

func TestView(t *testing.T) {
	r, err := constraint.Parse("max=3,dive,keys,min=2,endkeys,email", registry(""))
	require.NoError(t, err)
	v := view(r)
	require.Len(t, v.Rules, 1)
	assert.Equal(t, ruleView{Name: "max", Kind: "range", Params: []string{"3"}}, v.Rules[0])
	require.NotNil(t, v.Keys)
	assert.Equal(t, "min", v.Keys.Rules[0].Name)
	require.NotNil(t, v.Elem)
	assert.Equal(t, "email", v.Elem.Rules[0].Name)
	assert.Nil(t, view(nil))
}
