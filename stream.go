package tagskema

import (
	"log/slog"
	"reflect"

	"github.com/reoring/tagskema/internal/engine"
)

// StreamState describes an accumulator after a Feed.
type StreamState struct {
	// Buffered is a read-only view of the bytes received so far.
	Buffered []byte
	// Attempts counts the chunks appended since construction or Reset.
	Attempts int
	Complete bool
	LastErr  error
}

// StreamOption configures an accumulator.
type StreamOption func(*streamOptions)

type streamOptions struct{ maxBytes int }

// WithMaxBytes bounds the buffered input. Exceeding it fails the Feed with a
// DecodeError wrapping ErrBufferLimit. Zero means unbounded.
func WithMaxBytes(n int) StreamOption {
	return func(o *streamOptions) { o.maxBytes = n }
}

// StreamAccumulator collects chunks of one JSON object, typically streamed
// model output, and decodes and validates it once the object is complete.
//
// An accumulator serves a single stream and a single producer. It does not
// reset itself after completion: feeding more bytes without Reset makes the
// buffer hold trailing data, which is reported as a DecodeError.
type StreamAccumulator[T any] struct {
	v        *Validator
	opts     streamOptions
	finish   func(raw any, pre Issues) (T, error)
	buf      []byte
	attempts int
	complete bool
	lastErr  error
}

// NewStreamAccumulator returns an accumulator producing T. The descriptor of T
// is built immediately so that tag errors surface here.
func NewStreamAccumulator[T any](v *Validator, opts ...StreamOption) (*StreamAccumulator[T], error) {
	t := reflect.TypeFor[T]()
	if _, err := v.descriptor(t); err != nil {
		return nil, err
	}
	finish := func(raw any, pre Issues) (T, error) {
		var out T
		// registrations made after construction apply to later values
		s, err := v.descriptor(t)
		if err != nil {
			return out, err
		}
		err = v.apply(s, alloc(reflect.ValueOf(&out).Elem()), raw, "", pre)
		return out, err
	}
	return newAccumulator(v, finish, opts), nil
}

// NewUnionStreamAccumulator returns an accumulator that resolves the completed
// object through r.
func NewUnionStreamAccumulator[T any](r *UnionResolver[T], opts ...StreamOption) *StreamAccumulator[Resolved[T]] {
	return newAccumulator(r.v, r.resolve, opts)
}

func newAccumulator[T any](v *Validator, finish func(any, Issues) (T, error), opts []StreamOption) *StreamAccumulator[T] {
	a := &StreamAccumulator[T]{v: v, finish: finish}
	for _, opt := range opts {
		opt(&a.opts)
	}
	return a
}

// Feed appends chunk and tries to complete the value. While the buffer is a
// prefix of a JSON object it returns (nil, state, nil). Malformed input,
// trailing data and an exceeded byte budget return a *DecodeError. Once the
// object is complete the value is returned with Complete set; validation
// failures come back as Issues alongside it.
func (a *StreamAccumulator[T]) Feed(chunk []byte) (*T, StreamState, error) {
	a.v.recordFeed()
	if a.opts.maxBytes > 0 && len(a.buf)+len(chunk) > a.opts.maxBytes {
		return a.fail(&DecodeError{Offset: int64(a.opts.maxBytes), Err: ErrBufferLimit})
	}
	a.buf = append(a.buf, chunk...)
	a.attempts++

	res := engine.Scan(a.buf, engine.ScanOptions{MaxDepth: a.v.opts.maxDepth})
	switch res.State {
	case engine.Incomplete:
		a.lastErr = nil
		return nil, a.state(), nil
	case engine.Malformed:
		return a.fail(toDecodeError(res.Err))
	}
	if off := engine.TrailingOffset(a.buf, res.End); off >= 0 {
		return a.fail(&DecodeError{Offset: int64(off), Err: engine.ErrTrailingData})
	}

	raw, pre, err := a.v.decodeRaw(a.buf)
	if err != nil {
		return a.fail(err)
	}
	out, err := a.finish(raw, pre)
	a.complete = true
	a.lastErr = err
	return &out, a.state(), err
}

func (a *StreamAccumulator[T]) fail(err error) (*T, StreamState, error) {
	a.lastErr = err
	a.v.log.Debug("stream feed failed", slog.Int("attempts", a.attempts),
		slog.Int("buffered", len(a.buf)), slog.Any("error", err))
	return nil, a.state(), err
}

func (a *StreamAccumulator[T]) state() StreamState {
	return StreamState{
		Buffered: a.buf[:len(a.buf):len(a.buf)],
		Attempts: a.attempts,
		Complete: a.complete,
		LastErr:  a.lastErr,
	}
}

// CurrentState reports the state without feeding.
func (a *StreamAccumulator[T]) CurrentState() StreamState { return a.state() }

// Reset discards the buffer so the accumulator can serve the next object.
func (a *StreamAccumulator[T]) Reset() {
	a.buf = nil
	a.attempts = 0
	a.complete = false
	a.lastErr = nil
}

// Partial returns a best-effort view of the incomplete object: open
// containers are closed and a dangling key or cut scalar is dropped. The
// result is not validated.
func (a *StreamAccumulator[T]) Partial() (map[string]any, error) {
	fixed, ok := engine.Repair(a.buf)
	if !ok {
		return nil, &DecodeError{Offset: int64(len(a.buf)), Err: engine.ErrUnexpectedEnd}
	}
	raw, err := engine.Decode(fixed, engine.EnforceOptions{MaxDepth: a.v.opts.maxDepth})
	if err != nil {
		return nil, toDecodeError(err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &DecodeError{Offset: 0, Err: errNotObject}
	}
	return obj, nil
}
