package main

import (
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reoring/tagskema/constraint"
	"github.com/reoring/tagskema/format"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "lint":
		os.Exit(lintCmd(os.Args[2:]))
	case "explain":
		os.Exit(explainCmd(os.Args[2:]))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "tagskema CLI\n\nUsage:\n  tagskema lint [-tag validate] [-formats a,b] dir[/...] ...\n  tagskema explain [-formats a,b] 'min=1,dive,email'\n\nNotes:\n  - lint parses Go sources only; formats registered at runtime must be named with -formats.")
}

// lintCmd checks every struct tag under the given directories and prints one
// line per tag that does not parse. It returns the process exit code.
func lintCmd(args []string) int {
	fset := flag.NewFlagSet("lint", flag.ExitOnError)
	var tagKey, formats string
	fset.StringVar(&tagKey, "tag", "validate", "struct tag key holding constraints")
	fset.StringVar(&formats, "formats", "", "comma-separated custom format names to accept")
	_ = fset.Parse(args)
	dirs := fset.Args()
	if len(dirs) == 0 {
		dirs = []string{"."}
	}
	reg := registry(formats)

	var problems []string
	for _, d := range dirs {
		for _, dir := range expandDir(d) {
			found, err := lintDir(dir, tagKey, reg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", dir, err)
				return 2
			}
			problems = append(problems, found...)
		}
	}
	for _, p := range problems {
		fmt.Println(p)
	}
	if len(problems) > 0 {
		return 1
	}
	return 0
}

// expandDir resolves "dir/..." into dir and all its subdirectories.
func expandDir(d string) []string {
	root, recursive := strings.CutSuffix(d, "/...")
	if !recursive {
		return []string{d}
	}
	if root == "" {
		root = "."
	}
	var out []string
	_ = filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil || !e.IsDir() {
			return nil
		}
		name := e.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "testdata" || name == "vendor") {
			return filepath.SkipDir
		}
		out = append(out, path)
		return nil
	})
	return out
}

func lintDir(dir, tagKey string, reg *format.Registry) ([]string, error) {
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, nil, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	var out []string
	names := make([]string, 0, len(pkgs))
	for name := range pkgs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		files := make([]string, 0, len(pkgs[name].Files))
		for fn := range pkgs[name].Files {
			files = append(files, fn)
		}
		sort.Strings(files)
		for _, fn := range files {
			ast.Inspect(pkgs[name].Files[fn], func(n ast.Node) bool {
				ts, ok := n.(*ast.TypeSpec)
				if !ok {
					return true
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok || st.Fields == nil {
					return true
				}
				for _, field := range st.Fields.List {
					if field.Tag == nil {
						continue
					}
					lit, err := strconv.Unquote(field.Tag.Value)
					if err != nil {
						continue
					}
					tag, ok := reflect.StructTag(lit).Lookup(tagKey)
					if !ok {
						continue
					}
					if _, err := constraint.Parse(tag, reg); err != nil {
						out = append(out, fmt.Sprintf("%s: %s.%s: %v",
							fset.Position(field.Pos()), ts.Name.Name, fieldName(field), err))
					}
				}
				return true
			})
		}
	}
	return out, nil
}

func fieldName(f *ast.Field) string {
	if len(f.Names) > 0 {
		return f.Names[0].Name
	}
	switch t := f.Type.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name
		}
	case *ast.SelectorExpr:
		return t.Sel.Name
	}
	return "?"
}

// registry returns the default format registry extended with placeholder
// predicates for names only known at runtime.
func registry(csv string) *format.Registry {
	reg := format.NewRegistry()
	for _, name := range strings.Split(csv, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if err := reg.Register(name, func(string) bool { return true }); err != nil {
			fmt.Fprintf(os.Stderr, "format %s: %v\n", name, err)
		}
	}
	return reg
}

type ruleView struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Params []string `json:"params,omitempty"`
}

type rulesView struct {
	Rules     []ruleView `json:"rules,omitempty"`
	OmitEmpty bool       `json:"omitempty,omitempty"`
	Extras    bool       `json:"extras,omitempty"`
	Skip      bool       `json:"skip,omitempty"`
	Keys      *rulesView `json:"keys,omitempty"`
	Elem      *rulesView `json:"elem,omitempty"`
}

func view(r *constraint.Rules) *rulesView {
	if r == nil {
		return nil
	}
	v := &rulesView{OmitEmpty: r.OmitEmpty, Extras: r.Extras, Skip: r.Skip, Keys: view(r.Keys), Elem: view(r.Elem)}
	for _, c := range r.Constraints {
		v.Rules = append(v.Rules, ruleView{Name: c.Name(), Kind: c.Kind().String(), Params: c.Params()})
	}
	return v
}

// explainCmd prints the parsed structure of a tag as JSON.
func explainCmd(args []string) int {
	fset := flag.NewFlagSet("explain", flag.ExitOnError)
	var formats string
	fset.StringVar(&formats, "formats", "", "comma-separated custom format names to accept")
	_ = fset.Parse(args)
	if fset.NArg() != 1 {
		fset.Usage()
		return 2
	}
	r, err := constraint.Parse(fset.Arg(0), registry(formats))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	out, err := json.MarshalIndent(view(r), "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}
