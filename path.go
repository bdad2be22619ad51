package tagskema

import (
	"fmt"

	"github.com/reoring/tagskema/internal/engine"
)

// PathRef builds dotted issue paths in a chain-safe way and creates Issues.
// The zero value is the root.
type PathRef struct{ s string }

// Root returns the empty path.
func Root() PathRef { return PathRef{} }

// Field appends an object member.
func (p PathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return PathRef{s: engine.JoinField(p.s, name)}
}

// Index appends a collection index.
func (p PathRef) Index(i int) PathRef { return PathRef{s: engine.JoinIndex(p.s, i)} }

// Key appends a map key.
func (p PathRef) Key(k string) PathRef { return PathRef{s: engine.JoinKey(p.s, k)} }

func (p PathRef) String() string { return p.s }

// Issue creates an Issue at this path. kv are alternating Params keys and values.
func (p PathRef) Issue(code, msg string, kv ...any) Issue {
	var m map[string]any
	if len(kv) > 1 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			m[fmt.Sprint(kv[i])] = kv[i+1]
		}
	}
	return Issue{Path: p.s, Code: code, Message: msg, Params: m}
}
