package compiler

import (
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// --- Instruction Emission Helpers ---

func (c *ExprContext) setLine(pos errors.Position) {
	if pos.IsValid() {
		c.gen.SetLine(pos.Line)
	}
}

func (c *ExprContext) emitLoadInt(n int) {
	c.gen.AddLoadImmediate(codegen.Int(n))
}

func (c *ExprContext) emitPushInt(n int) {
	c.gen.AddPushImmediate(codegen.Int(n))
}

func (c *ExprContext) emitLoadText(text string) {
	c.gen.AddLoadImmediate(c.gen.AddText(text))
}

func (c *ExprContext) emitPush() {
	c.gen.AddPush()
}

func (c *ExprContext) emitTosses(n int) {
	for i := 0; i < n; i++ {
		c.gen.AddToss()
	}
}

func (c *ExprContext) emitJump(target *codegen.Label) {
	c.gen.AddBranch(codegen.BranchAlways, target)
}

func (c *ExprContext) emitJumpIfFalse(target *codegen.Label) {
	c.gen.AddBranch(codegen.BranchFalse, target)
}

func (c *ExprContext) emitJumpIfTrue(target *codegen.Label) {
	c.gen.AddBranch(codegen.BranchTrue, target)
}

// emitVarOp emits op on a variable or property symbol. Indexed accesses expect the
// index in the accumulator.
func (c *ExprContext) emitVarOp(op codegen.VarOp, sym Symbol, indexed bool) {
	if kind, ok := sym.Kind.varKind(); ok {
		c.gen.AddVarAccess(op, kind, sym.Offset, indexed)
		return
	}
	switch op {
	case codegen.VarLoad:
		c.gen.AddPropAccess(codegen.PropLoad, sym.Offset)
	case codegen.VarStore:
		c.gen.AddPropAccess(codegen.PropStore, sym.Offset)
	case codegen.VarInc:
		c.gen.AddPropAccess(codegen.PropInc, sym.Offset)
	case codegen.VarDec:
		c.gen.AddPropAccess(codegen.PropDec, sym.Offset)
	}
}

// newLabels allocates one label per name.
func (c *ExprContext) newLabels(names ...string) []*codegen.Label {
	out := make([]*codegen.Label, len(names))
	for i, n := range names {
		out[i] = c.gen.NewLabel(n)
	}
	return out
}
