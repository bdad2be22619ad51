package engine

import (
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_States(t *testing.T) {
	cases := []struct {
		in    string
		state State
	}{
		{``, Incomplete},
		{`   `, Incomplete},
		{`{`, Incomplete},
		{`{"role":"assis`, Incomplete},
		{`{"role":"assistant","content":"hi"`, Incomplete},
		{`{"role":"assistant","content":"hi"}`, Complete},
		{`{"a":[1,2,{"b":null}],"c":true}`, Complete},
		{`{"a":tru`, Incomplete},
		{`{"a":1.`, Incomplete},
		{`{"a":"\u00`, Incomplete},
		{`{"a" 1}`, Malformed},
		{`{"a":1,}`, Malformed},
		{`[1 2]`, Malformed},
		{`{"a":nul1}`, Malformed},
		{`{"a":"\q"}`, Malformed},
		{`}`, Malformed},
		{`{"a":01}`, Malformed},
	}
	for _, tc := range cases {
		res := Scan([]byte(tc.in), ScanOptions{})
		assert.Equal(t, tc.state, res.State, "input %q", tc.in)
		if tc.state == Malformed {
			var se *SyntaxError
			assert.True(t, errors.As(res.Err, &se), "input %q", tc.in)
		}
	}
}

func TestScan_EndAndTrailing(t *testing.T) {
	buf := []byte(`{"a":1}  {"b":2}`)
	res := Scan(buf, ScanOptions{})
	require.Equal(t, Complete, res.State)
	assert.Equal(t, 7, res.End)
	assert.Equal(t, 9, TrailingOffset(buf, res.End))
	assert.Equal(t, -1, TrailingOffset([]byte(`{} `), 2))
}

func TestScan_TopLevelNumberNeedsFinal(t *testing.T) {
	assert.Equal(t, Incomplete, Scan([]byte(`42`), ScanOptions{}).State)
	res := Scan([]byte(`42`), ScanOptions{Final: true})
	assert.Equal(t, Complete, res.State)
	assert.Equal(t, 2, res.End)
}

func TestScan_MaxDepth(t *testing.T) {
	res := Scan([]byte(`[[[1]]]`), ScanOptions{MaxDepth: 2})
	require.Equal(t, Malformed, res.State)
	assert.ErrorIs(t, res.Err, ErrMaxDepth)
}

func TestRepair(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"role":"assis`, `{"role":"assis"}`, true},
		{`{"a":"x","b`, `{"a":"x"}`, true},
		{`{"a":"x",`, `{"a":"x"}`, true},
		{`{"a":[1,2`, `{"a":[1]}`, true},
		{`{"a":{"b":"hel`, `{"a":{"b":"hel"}}`, true},
		{`{"a":tr`, `{}`, true},
		{`{"a":1}`, `{"a":1}`, true},
		{``, ``, false},
		{`{"a" 1`, ``, false},
	}
	for _, tc := range cases {
		out, ok := Repair([]byte(tc.in))
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, string(out), "input %q", tc.in)
			assert.True(t, json.Valid(out), "repaired %q", out)
		}
	}
}

func TestRepair_DoesNotSplitRunes(t *testing.T) {
	in := []byte(`{"a":"日本`)
	in = in[:len(in)-1]
	out, ok := Repair(in)
	require.True(t, ok)
	assert.Equal(t, `{"a":"日"}`, string(out))
}

func TestDecode(t *testing.T) {
	v, err := Decode([]byte(`{"n":1.5,"s":"x","l":[true,null]}`), EnforceOptions{})
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, json.Number("1.5"), m["n"])
	assert.Equal(t, []any{true, nil}, m["l"])
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte(`{"a":1} x`), EnforceOptions{})
	assert.ErrorIs(t, err, ErrTrailingData)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.EqualValues(t, 8, se.Offset)

	_, err = Decode([]byte(`{"a":`), EnforceOptions{})
	assert.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestDecode_DuplicateKeys(t *testing.T) {
	var got []SimpleIssue
	opt := EnforceOptions{OnDuplicate: DupReport, IssueSink: func(si SimpleIssue) { got = append(got, si) }}
	v, err := Decode([]byte(`{"a":1,"m":{"k":1,"k":2},"a":3}`), opt)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m.k", got[0].Path)
	assert.Equal(t, "a", got[1].Path)
	assert.Equal(t, json.Number("3"), v.(map[string]any)["a"])

	_, err = Decode([]byte(`{"a":1,"a":2}`), EnforceOptions{OnDuplicate: DupError})
	var ie IssueError
	assert.ErrorAs(t, err, &ie)
}

func TestJoinPaths(t *testing.T) {
	p := JoinIndex(JoinField("", "items"), 2)
	assert.Equal(t, "items[2].price", JoinField(p, "price"))
	assert.Equal(t, "labels[env]", JoinKey("labels", "env"))
}
