package engine

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// State is the completeness verdict for a buffer.
type State int

const (
	Incomplete State = iota
	Complete
	Malformed
)

func (s State) String() string {
	switch s {
	case Complete:
		return "complete"
	case Malformed:
		return "malformed"
	default:
		return "incomplete"
	}
}

var (
	ErrUnexpectedEnd = errors.New("unexpected end of JSON input")
	ErrTrailingData  = errors.New("trailing data after JSON value")
	ErrMaxDepth      = errors.New("max depth exceeded")
)

// SyntaxError locates a structural JSON failure.
type SyntaxError struct {
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string { return fmt.Sprintf("%v at offset %d", e.Err, e.Offset) }
func (e *SyntaxError) Unwrap() error { return e.Err }

// ScanOptions tunes Scan.
type ScanOptions struct {
	MaxDepth int
	// Final treats the end of the buffer as the end of input, so a bare
	// top-level number is complete rather than possibly truncated.
	Final bool
}

// ScanResult is the outcome of Scan.
type ScanResult struct {
	State State
	// End is the offset just past the first top-level value when Complete.
	End int
	// Err is a *SyntaxError when Malformed.
	Err error
}

// Scan reports whether buf holds a complete JSON value, a prefix of one, or
// something that can never become valid JSON.
func Scan(buf []byte, opt ScanOptions) ScanResult {
	s := scanner{buf: buf, opt: opt}
	return s.run()
}

// Repair returns the longest prefix of a truncated buffer closed into valid
// JSON: open containers are closed, an unterminated string value is cut and
// terminated, and a dangling key or partial scalar is dropped. ok is false
// when the buffer is malformed or no container has been opened yet.
func Repair(buf []byte) (out []byte, ok bool) {
	s := scanner{buf: buf}
	res := s.run()
	switch res.State {
	case Complete:
		return append([]byte(nil), buf[:res.End]...), true
	case Malformed:
		return nil, false
	}
	if s.partial != nil {
		return s.partial, true
	}
	if !s.hasSafe {
		return nil, false
	}
	out = make([]byte, 0, s.safe+len(s.safeClose))
	out = append(out, buf[:s.safe]...)
	return append(out, s.safeClose...), true
}

const (
	stObjStart = iota
	stObjKey
	stObjColon
	stObjValue
	stObjNext
	stArrStart
	stArrValue
	stArrNext
)

type scanFrame struct {
	obj bool
	st  int
}

type scanner struct {
	buf    []byte
	opt    ScanOptions
	pos    int
	frames []scanFrame
	done   bool
	end    int

	safe      int
	safeClose []byte
	hasSafe   bool
	partial   []byte
}

var errNeedMore = errors.New("need more input")

func (s *scanner) run() ScanResult {
	for !s.done {
		s.skipWS()
		if s.pos >= len(s.buf) {
			return ScanResult{State: Incomplete}
		}
		if err := s.step(); err != nil {
			if errors.Is(err, errNeedMore) {
				return ScanResult{State: Incomplete}
			}
			return ScanResult{State: Malformed, Err: err}
		}
	}
	return ScanResult{State: Complete, End: s.end}
}

func (s *scanner) step() error {
	if len(s.frames) == 0 {
		return s.value()
	}
	c := s.buf[s.pos]
	f := &s.frames[len(s.frames)-1]
	switch f.st {
	case stObjStart, stObjKey:
		if c == '}' && f.st == stObjStart {
			s.pos++
			s.pop()
			return nil
		}
		if c != '"' {
			return s.fail("expected object key")
		}
		if err := s.str(false); err != nil {
			return err
		}
		f.st = stObjColon
	case stObjColon:
		if c != ':' {
			return s.fail("expected ':' after object key")
		}
		s.pos++
		f.st = stObjValue
	case stObjValue:
		f.st = stObjNext
		return s.value()
	case stObjNext:
		switch c {
		case ',':
			s.pos++
			f.st = stObjKey
		case '}':
			s.pos++
			s.pop()
		default:
			return s.fail("expected ',' or '}' in object")
		}
	case stArrStart, stArrValue:
		if c == ']' && f.st == stArrStart {
			s.pos++
			s.pop()
			return nil
		}
		f.st = stArrNext
		return s.value()
	case stArrNext:
		switch c {
		case ',':
			s.pos++
			f.st = stArrValue
		case ']':
			s.pos++
			s.pop()
		default:
			return s.fail("expected ',' or ']' in array")
		}
	}
	return nil
}

func (s *scanner) value() error {
	switch c := s.buf[s.pos]; {
	case c == '{':
		return s.push(true)
	case c == '[':
		return s.push(false)
	case c == '"':
		if err := s.str(true); err != nil {
			return err
		}
	case c == 't':
		return s.literal("true")
	case c == 'f':
		return s.literal("false")
	case c == 'n':
		return s.literal("null")
	case c == '-' || (c >= '0' && c <= '9'):
		return s.number()
	default:
		return s.fail(fmt.Sprintf("invalid character %q looking for value", c))
	}
	s.valueDone()
	return nil
}

func (s *scanner) push(obj bool) error {
	if s.opt.MaxDepth > 0 && len(s.frames) >= s.opt.MaxDepth {
		return &SyntaxError{Offset: int64(s.pos), Err: ErrMaxDepth}
	}
	st := stArrStart
	if obj {
		st = stObjStart
	}
	s.frames = append(s.frames, scanFrame{obj: obj, st: st})
	s.pos++
	s.checkpoint()
	return nil
}

func (s *scanner) pop() {
	s.frames = s.frames[:len(s.frames)-1]
	s.valueDone()
}

func (s *scanner) valueDone() {
	if len(s.frames) == 0 {
		s.done = true
		s.end = s.pos
		return
	}
	s.checkpoint()
}

func (s *scanner) closers() []byte {
	out := make([]byte, 0, len(s.frames))
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].obj {
			out = append(out, '}')
		} else {
			out = append(out, ']')
		}
	}
	return out
}

func (s *scanner) checkpoint() {
	s.safe = s.pos
	s.safeClose = s.closers()
	s.hasSafe = true
}

func (s *scanner) literal(want string) error {
	n := len(s.buf) - s.pos
	if n > len(want) {
		n = len(want)
	}
	if string(s.buf[s.pos:s.pos+n]) != want[:n] {
		return s.fail("invalid literal")
	}
	if n < len(want) {
		return errNeedMore
	}
	s.pos += len(want)
	s.valueDone()
	return nil
}

func (s *scanner) number() error {
	i := s.pos
	end := func() error {
		if s.opt.Final && len(s.frames) == 0 {
			s.pos = i
			s.valueDone()
			return nil
		}
		return errNeedMore
	}
	digits := func() int {
		n := 0
		for i < len(s.buf) && s.buf[i] >= '0' && s.buf[i] <= '9' {
			i++
			n++
		}
		return n
	}
	if s.buf[i] == '-' {
		i++
	}
	if i >= len(s.buf) {
		return errNeedMore
	}
	if s.buf[i] == '0' {
		i++
	} else if digits() == 0 {
		return s.failAt(i, "invalid number")
	}
	if i >= len(s.buf) {
		return end()
	}
	if s.buf[i] == '.' {
		i++
		if i >= len(s.buf) {
			return errNeedMore
		}
		if digits() == 0 {
			return s.failAt(i, "invalid number")
		}
		if i >= len(s.buf) {
			return end()
		}
	}
	if s.buf[i] == 'e' || s.buf[i] == 'E' {
		i++
		if i < len(s.buf) && (s.buf[i] == '+' || s.buf[i] == '-') {
			i++
		}
		if i >= len(s.buf) {
			return errNeedMore
		}
		if digits() == 0 {
			return s.failAt(i, "invalid number exponent")
		}
		if i >= len(s.buf) {
			return end()
		}
	}
	s.pos = i
	s.valueDone()
	return nil
}

// str scans a string starting at the opening quote.
func (s *scanner) str(isValue bool) error {
	start := s.pos
	i := s.pos + 1
	for i < len(s.buf) {
		c := s.buf[i]
		switch {
		case c == '"':
			s.pos = i + 1
			return nil
		case c == '\\':
			if i+1 >= len(s.buf) {
				s.truncatedString(isValue, start, i)
				return errNeedMore
			}
			switch s.buf[i+1] {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
				i += 2
			case 'u':
				if i+6 > len(s.buf) {
					for j := i + 2; j < len(s.buf); j++ {
						if !isHex(s.buf[j]) {
							return s.failAt(j, "invalid unicode escape")
						}
					}
					s.truncatedString(isValue, start, i)
					return errNeedMore
				}
				for j := i + 2; j < i+6; j++ {
					if !isHex(s.buf[j]) {
						return s.failAt(j, "invalid unicode escape")
					}
				}
				i += 6
			default:
				return s.failAt(i+1, "invalid escape character")
			}
		case c < 0x20:
			return s.failAt(i, "control character in string")
		default:
			i++
		}
	}
	s.truncatedString(isValue, start, i)
	return errNeedMore
}

// truncatedString records a repair that terminates a cut string value.
func (s *scanner) truncatedString(isValue bool, start, cut int) {
	if !isValue {
		return
	}
	body := s.buf[start+1 : cut]
	for k := 0; k < utf8.UTFMax && len(body) > 0; k++ {
		r, size := utf8.DecodeLastRune(body)
		if r != utf8.RuneError || size != 1 {
			break
		}
		body = body[:len(body)-1]
	}
	closers := []byte{'"'}
	if len(s.frames) > 0 {
		closers = append(closers, s.closers()...)
	}
	out := make([]byte, 0, start+1+len(body)+len(closers))
	out = append(out, s.buf[:start+1]...)
	out = append(out, body...)
	s.partial = append(out, closers...)
}

func (s *scanner) skipWS() {
	for s.pos < len(s.buf) {
		switch s.buf[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) fail(msg string) error { return s.failAt(s.pos, msg) }

func (s *scanner) failAt(off int, msg string) error {
	return &SyntaxError{Offset: int64(off), Err: errors.New(msg)}
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// TrailingOffset returns the offset of the first non-whitespace byte at or
// after from, or -1.
func TrailingOffset(buf []byte, from int) int {
	for i := from; i < len(buf); i++ {
		switch buf[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return i
		}
	}
	return -1
}
