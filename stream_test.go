package tagskema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/tagskema"
)

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user|assistant|system"`
	Content string `json:"content" validate:"required,min=1"`
}

func TestStream_CompletesAcrossChunks(t *testing.T) {
	acc, err := tagskema.NewStreamAccumulator[ChatMessage](tagskema.New())
	require.NoError(t, err)

	out, st, err := acc.Feed([]byte(`{"role":"user"`))
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, st.Complete)
	assert.Equal(t, 1, st.Attempts)
	assert.Equal(t, `{"role":"user"`, string(st.Buffered))

	out, st, err = acc.Feed([]byte(`,"content":"hi"}`))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, st.Complete)
	assert.Equal(t, 2, st.Attempts)
	assert.Equal(t, ChatMessage{Role: "user", Content: "hi"}, *out)
}

func TestStream_SplitInsideTokens(t *testing.T) {
	acc, err := tagskema.NewStreamAccumulator[ChatMessage](tagskema.New())
	require.NoError(t, err)
	chunks := []string{`{"ro`, `le":"assis`, `tant","content":"a \"quoted\" {`, ` brace}"`, `}`}
	var out *ChatMessage
	for i, c := range chunks {
		out, _, err = acc.Feed([]byte(c))
		require.NoError(t, err, "chunk %d", i)
		if i < len(chunks)-1 {
			assert.Nil(t, out, "chunk %d", i)
		}
	}
	require.NotNil(t, out)
	assert.Equal(t, `a "quoted" { brace}`, out.Content)
}

func TestStream_ValidationIssuesOnComplete(t *testing.T) {
	acc, err := tagskema.NewStreamAccumulator[ChatMessage](tagskema.New())
	require.NoError(t, err)

	out, st, err := acc.Feed([]byte(`{"role":"robot"}`))
	require.NotNil(t, out, "value is returned alongside issues")
	assert.True(t, st.Complete)
	iss, ok := tagskema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 2)
	assert.Equal(t, "role", iss[0].Path)
	assert.Equal(t, "content", iss[1].Path)
	assert.Equal(t, err, st.LastErr)
}

func TestStream_FeedAfterCompleteIsTrailingData(t *testing.T) {
	acc, err := tagskema.NewStreamAccumulator[ChatMessage](tagskema.New())
	require.NoError(t, err)
	_, _, err = acc.Feed([]byte(`{"role":"user","content":"hi"}`))
	require.NoError(t, err)

	out, _, err := acc.Feed([]byte(`{"role":"user"`))
	assert.Nil(t, out)
	var de *tagskema.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, int64(len(`{"role":"user","content":"hi"}`)), de.Offset)

	acc.Reset()
	st := acc.CurrentState()
	assert.Zero(t, st.Attempts)
	assert.Empty(t, st.Buffered)
	assert.False(t, st.Complete)

	out, _, err = acc.Feed([]byte(`{"role":"system","content":"ok"}`))
	require.NoError(t, err)
	assert.Equal(t, "system", out.Role)
}

func TestStream_Malformed(t *testing.T) {
	acc, err := tagskema.NewStreamAccumulator[ChatMessage](tagskema.New())
	require.NoError(t, err)
	_, st, err := acc.Feed([]byte(`{"role" "user"`))
	var de *tagskema.DecodeError
	require.ErrorAs(t, err, &de)
	assert.False(t, st.Complete)
	assert.Equal(t, err, st.LastErr)
}

func TestStream_WhitespaceStaysIncomplete(t *testing.T) {
	acc, err := tagskema.NewStreamAccumulator[ChatMessage](tagskema.New())
	require.NoError(t, err)
	out, st, err := acc.Feed([]byte("  \n"))
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.False(t, st.Complete)
}

func TestStream_MaxBytes(t *testing.T) {
	acc, err := tagskema.NewStreamAccumulator[ChatMessage](tagskema.New(), tagskema.WithMaxBytes(16))
	require.NoError(t, err)
	_, _, err = acc.Feed([]byte(`{"role":"user"`))
	require.NoError(t, err)

	_, st, err := acc.Feed([]byte(`,"content":"hi"}`))
	assert.ErrorIs(t, err, tagskema.ErrBufferLimit)
	assert.Equal(t, `{"role":"user"`, string(st.Buffered), "rejected chunk is not buffered")
}

func TestStream_Partial(t *testing.T) {
	acc, err := tagskema.NewStreamAccumulator[ChatMessage](tagskema.New())
	require.NoError(t, err)
	_, _, err = acc.Feed([]byte(`{"role":"user","content":"hel`))
	require.NoError(t, err)

	got, err := acc.Partial()
	require.NoError(t, err)
	assert.Equal(t, "user", got["role"])
}

func TestStream_BadTargetFailsConstruction(t *testing.T) {
	type Bad struct {
		N int `json:"n" validate:"min=x"`
	}
	_, err := tagskema.NewStreamAccumulator[Bad](tagskema.New())
	var be *tagskema.BuildError
	assert.ErrorAs(t, err, &be)
}

func TestStream_HookRegisteredAfterConstruction(t *testing.T) {
	type Note struct {
		Text string `json:"text" validate:"required"`
	}
	v := tagskema.New()
	acc, err := tagskema.NewStreamAccumulator[Note](v)
	require.NoError(t, err)
	tagskema.RegisterHook(v, func(n *Note) error {
		if n.Text == "spam" {
			return errors.New("spam rejected")
		}
		return nil
	})

	out, _, err := acc.Feed([]byte(`{"text":"spam"}`))
	require.NotNil(t, out)
	iss, ok := tagskema.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, tagskema.CodeCustom, iss[0].Code)
	assert.Equal(t, "spam rejected", iss[0].Message)
}
