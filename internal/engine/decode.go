package engine

// Decode parses exactly one JSON value from data into a generic tree. Syntax
// problems, truncation and trailing data come back as *SyntaxError; the scan
// runs first so offsets are exact regardless of the token decoder.
func Decode(data []byte, opt EnforceOptions) (any, error) {
	res := Scan(data, ScanOptions{MaxDepth: opt.MaxDepth, Final: true})
	switch res.State {
	case Incomplete:
		return nil, &SyntaxError{Offset: int64(len(data)), Err: ErrUnexpectedEnd}
	case Malformed:
		return nil, res.Err
	}
	if off := TrailingOffset(data, res.End); off >= 0 {
		return nil, &SyntaxError{Offset: int64(off), Err: ErrTrailingData}
	}
	var src TokenSource = NewBytes(data[:res.End])
	if opt.OnDuplicate != DupIgnore {
		src = WrapWithEnforcement(src, opt)
	}
	return DecodeAny(src)
}
