package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkListing(t *testing.T) {
	c := NewChunk("test")
	done := c.NewLabel("done")
	c.AddLink(2)
	c.AddLoadImmediate(Int(1))
	c.AddPush()
	c.AddLoadImmediate(c.AddText("hello"))
	c.AddPushImmediate(c.AddText("hello"))
	c.AddBinOp(BinAdd)
	c.AddBranch(BranchFalse, done)
	c.AddVarAccess(VarLoad, VarParam, 1, false)
	c.AddVarAccess(VarStore, VarTemp, 0, true)
	c.AddVarAccess(VarInc, VarLocal, 3, false)
	c.AddPropAccess(PropLoad, 9)
	c.AddLoadAddress(VarGlobal, 4, true)
	c.AddKernelCall(5, 1)
	c.AddExternCall(0, 2, 0)
	c.AddExternCall(12, 1, 3)
	c.AddSuperSend(4, 3)
	c.BindLabel(done)
	c.AddReturn()

	assert.Equal(t, []string{
		"link 2",
		"ldi 1",
		"push",
		`lofsa text#0("hello")`,
		`lofss text#0("hello")`,
		"add",
		"bnt L0",
		"lap 1",
		"sati 0",
		"+al 3",
		"pToa 9",
		"lea global 4 indexed",
		"callk 5 1",
		"callb 2 0",
		"calle 12 1 3",
		"super 4 3",
		"L0:",
		"ret",
	}, c.Listing())
	assert.Equal(t, 1, c.Len(), "texts are pooled once")
	assert.Empty(t, c.UnboundLabels())
}

func TestVarOpCode(t *testing.T) {
	tests := []struct {
		op      VarOp
		kind    VarKind
		indexed bool
		toStack bool
		want    OpCode
		name    string
	}{
		{VarLoad, VarGlobal, false, false, 0x40, "lag"},
		{VarLoad, VarParam, false, false, 0x43, "lap"},
		{VarStore, VarLocal, true, false, 0x59, "sali"},
		{VarInc, VarTemp, false, true, 0x66, "+st"},
		{VarDec, VarParam, true, true, 0x7F, "-spi"},
	}
	for _, tt := range tests {
		got := VarOpCode(tt.op, tt.kind, tt.indexed, tt.toStack)
		assert.Equal(t, tt.want, got, tt.name)
		assert.Equal(t, tt.name, got.String())
	}
}

func TestBindLabelTwicePanics(t *testing.T) {
	c := NewChunk("test")
	l := c.NewLabel("x")
	c.BindLabel(l)
	assert.True(t, l.IsBound())
	assert.Panics(t, func() { c.BindLabel(l) })
}

func TestUnboundLabels(t *testing.T) {
	c := NewChunk("test")
	a := c.NewLabel("a")
	b := c.NewLabel("b")
	c.AddBranch(BranchAlways, b)
	c.BindLabel(a)
	require.Len(t, c.UnboundLabels(), 1)
	assert.Same(t, b, c.UnboundLabels()[0])
}

func TestDisassembleChunk(t *testing.T) {
	c := NewChunk("script 7")
	l := c.NewLabel("proc:Foo")
	c.BindLabel(l)
	c.SetLine(12)
	c.AddLoadImmediate(c.AddText("msg"))
	c.AddReturn()

	out := c.DisassembleChunk()
	assert.True(t, strings.HasPrefix(out, "== script 7 ==\n"), out)
	assert.Contains(t, out, "; proc:Foo")
	assert.Contains(t, out, "  12   lofsa")
	assert.Contains(t, out, "=== Texts ===")
	assert.Contains(t, out, `0 "msg"`)
}
