package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naerbnic/sci-compiler-sub002/pkg/source"
)

func TestKindOf(t *testing.T) {
	pos := Position{}
	tests := []struct {
		err  error
		kind string
	}{
		{AlreadyExists(pos, "x"), "AlreadyExists"},
		{NotFound(pos, "x"), "NotFound"},
		{InvalidArgument(pos, "x"), "InvalidArgument"},
		{FailedPrecondition(pos, "x"), "FailedPrecondition"},
		{fmt.Errorf("module rm001: %w", NotFound(pos, "x")), "NotFound"},
		{stderrors.New("plain"), ""},
		{nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), "%v", tt.err)
	}
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", NotFound(pos, "x"))))
	assert.False(t, IsAlreadyExists(NotFound(pos, "x")))
}

func TestCausedBy(t *testing.T) {
	cause := NotFound(Position{}, "no selector %q", "init")
	err := InvalidArgument(Position{}, "bad profile").CausedBy(cause)
	assert.True(t, IsInvalidArgument(err))

	var nf *NotFoundError
	require.True(t, stderrors.As(err, &nf))
	assert.Equal(t, `no selector "init"`, nf.Message())
}

func TestErrorMessages(t *testing.T) {
	src := source.NewSourceFile("rm001.sc", "", "(procedure (Foo)\n  (Bar 1))\n")
	tests := []struct {
		err  error
		want string
	}{
		{NotFound(Position{}, "unknown %q", "Bar"), `NotFound: unknown "Bar"`},
		{NotFound(Position{Line: 2, Column: 4}, "unknown"), "NotFound at 2:4: unknown"},
		{NotFound(Position{Line: 2, Column: 4, Source: src}, "unknown"), "NotFound at rm001.sc:2:4: unknown"},
		{NotFound(Position{Source: src}, "unknown"), "NotFound at rm001.sc: unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestDisplayErrors(t *testing.T) {
	src := source.NewSourceFile("rm001.sc", "", "(procedure (Foo)\n  (Bar 1))\n")
	var buf bytes.Buffer
	DisplayErrors(&buf, []CompilerError{
		NotFound(Position{Line: 2, Column: 4, Source: src}, "unknown procedure %q", "Bar"),
		AlreadyExists(Position{}, "duplicate"),
	})
	assert.Equal(t,
		"NotFound at rm001.sc:2:4: unknown procedure \"Bar\"\n"+
			"    (Bar 1))\n"+
			"     ^\n"+
			"\n"+
			"AlreadyExists: duplicate\n",
		buf.String())
}
