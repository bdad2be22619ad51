package constraint

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Resolver supplies the names that extend the built-in catalog.
type Resolver interface {
	HasFormat(name string) bool
	Alias(name string) (string, bool)
}

// Rules is the parsed form of one tag.
type Rules struct {
	// Constraints apply to the field value itself (collection-level for slices and maps).
	Constraints []Constraint
	OmitEmpty   bool
	// Extras marks the capture sink for unknown keys.
	Extras bool
	// Skip is set by the "-" tag.
	Skip bool
	// Keys holds the keys...endkeys block of a map dive.
	Keys *Rules
	// Elem holds the rules after dive.
	Elem *Rules
}

// Find returns the first constraint named name.
func (r *Rules) Find(name string) (Constraint, bool) {
	if r == nil {
		return Constraint{}, false
	}
	for _, c := range r.Constraints {
		if c.name == name {
			return c, true
		}
	}
	return Constraint{}, false
}

// Has reports whether a constraint named name is present.
func (r *Rules) Has(name string) bool {
	_, ok := r.Find(name)
	return ok
}

const maxAliasDepth = 8

// Parse turns a tag value into Rules. It fails fast on the first bad token.
func Parse(tag string, res Resolver) (*Rules, error) {
	toks, err := expand(splitTokens(tag), res, 0)
	if err != nil {
		return nil, &ParseError{Tag: tag, Token: tokenOf(err), Err: unwrapToken(err)}
	}
	r, err := parseLevel(toks, res)
	if err != nil {
		return nil, &ParseError{Tag: tag, Token: tokenOf(err), Err: unwrapToken(err)}
	}
	return r, nil
}

// MustParse is Parse that panics on error.
func MustParse(tag string, res Resolver) *Rules {
	r, err := Parse(tag, res)
	if err != nil {
		panic(err)
	}
	return r
}

type tokenError struct {
	token string
	err   error
}

func (e *tokenError) Error() string { return e.token + ": " + e.err.Error() }

func tokenOf(err error) string {
	if te, ok := err.(*tokenError); ok {
		return te.token
	}
	return ""
}

func unwrapToken(err error) error {
	if te, ok := err.(*tokenError); ok {
		return te.err
	}
	return err
}

func splitTokens(tag string) []string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}
	parts := strings.Split(tag, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func expand(toks []string, res Resolver, depth int) ([]string, error) {
	if res == nil {
		return toks, nil
	}
	out := make([]string, 0, len(toks))
	for _, tok := range toks {
		if strings.Contains(tok, "=") || IsReserved(tok) {
			out = append(out, tok)
			continue
		}
		def, ok := res.Alias(tok)
		if !ok {
			out = append(out, tok)
			continue
		}
		if depth >= maxAliasDepth {
			return nil, &tokenError{tok, fmt.Errorf("%w: alias expansion too deep", ErrBadParam)}
		}
		sub, err := expand(splitTokens(def), res, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func parseLevel(toks []string, res Resolver) (*Rules, error) {
	r := &Rules{}
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		name, param, hasParam := strings.Cut(tok, "=")
		if markers[name] && hasParam {
			return nil, &tokenError{tok, fmt.Errorf("%w: %s takes no parameter", ErrBadMarker, name)}
		}
		switch name {
		case "":
			return nil, &tokenError{tok, fmt.Errorf("%w: empty token", ErrBadParam)}
		case markerSkip:
			if len(toks) != 1 {
				return nil, &tokenError{tok, fmt.Errorf("%w: \"-\" must be the only token", ErrBadMarker)}
			}
			r.Skip = true
		case markerOmitEmpty:
			r.OmitEmpty = true
		case markerExtras:
			r.Extras = true
		case markerKeys:
			return nil, &tokenError{tok, fmt.Errorf("%w: keys must directly follow dive", ErrBadMarker)}
		case markerEndKeys:
			return nil, &tokenError{tok, fmt.Errorf("%w: endkeys without keys", ErrBadMarker)}
		case markerDive:
			rest := toks[i+1:]
			if len(rest) > 0 && rest[0] == markerKeys {
				end := -1
				for j := 1; j < len(rest); j++ {
					if rest[j] == markerEndKeys {
						end = j
						break
					}
				}
				if end < 0 {
					return nil, &tokenError{markerKeys, fmt.Errorf("%w: keys without endkeys", ErrBadMarker)}
				}
				kr, err := parseLevel(rest[1:end], res)
				if err != nil {
					return nil, err
				}
				r.Keys = kr
				rest = rest[end+1:]
			}
			er, err := parseLevel(rest, res)
			if err != nil {
				return nil, err
			}
			r.Elem = er
			return r, nil
		default:
			c, err := newConstraint(name, param, hasParam, res)
			if err != nil {
				return nil, &tokenError{tok, err}
			}
			r.Constraints = append(r.Constraints, c)
		}
	}
	return r, nil
}

func newConstraint(name, param string, hasParam bool, res Resolver) (Constraint, error) {
	e, ok := catalog[name]
	if !ok {
		if res != nil && res.HasFormat(name) {
			if hasParam {
				return Constraint{}, fmt.Errorf("%w: format %s takes no parameter", ErrBadParam, name)
			}
			return Constraint{name: name, kind: KindFormat}, nil
		}
		return Constraint{}, fmt.Errorf("%w: %s", ErrUnknownConstraint, name)
	}

	var params []string
	if hasParam {
		if e.whole {
			params = []string{unescapeParam(param)}
		} else {
			for _, p := range strings.Split(param, "|") {
				params = append(params, unescapeParam(strings.TrimSpace(p)))
			}
		}
	}
	if len(params) < e.minArgs || (e.maxArgs >= 0 && len(params) > e.maxArgs) {
		return Constraint{}, fmt.Errorf("%w: %s expects %s, got %d", ErrBadParam, name, arity(e), len(params))
	}
	for _, p := range params {
		if p == "" && e.kind != KindDefault {
			return Constraint{}, fmt.Errorf("%w: %s has an empty parameter", ErrBadParam, name)
		}
	}

	c := Constraint{name: name, kind: e.kind, params: params}
	for _, p := range params {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			if e.numeric {
				return Constraint{}, fmt.Errorf("%w: %s needs a number, got %q", ErrBadParam, name, p)
			}
			c.nums = nil
			break
		}
		c.nums = append(c.nums, f)
	}
	if e.integer && (c.nums[0] < 0 || c.nums[0] != math.Trunc(c.nums[0])) {
		return Constraint{}, fmt.Errorf("%w: %s needs a non-negative integer", ErrBadParam, name)
	}

	switch e.kind {
	case KindPattern:
		re, err := regexp.Compile(params[0])
		if err != nil {
			return Constraint{}, fmt.Errorf("%w: pattern: %v", ErrBadParam, err)
		}
		c.re = re
	case KindDivisibility:
		if c.nums[0] <= 0 {
			return Constraint{}, fmt.Errorf("%w: %s must be positive", ErrBadParam, name)
		}
	}
	return c, nil
}

func arity(e entry) string {
	switch {
	case e.maxArgs < 0:
		return fmt.Sprintf("at least %d parameter(s)", e.minArgs)
	case e.minArgs == e.maxArgs:
		return fmt.Sprintf("%d parameter(s)", e.minArgs)
	default:
		return fmt.Sprintf("%d to %d parameter(s)", e.minArgs, e.maxArgs)
	}
}
