package compiler

import (
	"github.com/naerbnic/sci-compiler-sub002/pkg/ast"
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

type builtinShape int

const (
	shapeFold    builtinShape = iota // two or more operands, folded left
	shapeBinary                      // exactly two operands
	shapeMinus                       // negate one operand or subtract two
	shapeUnary                       // exactly one operand
	shapeCompare                     // two or more operands, chained
	shapeAnd                         // short-circuit
	shapeOr                          // short-circuit
)

type builtinOp struct {
	shape builtinShape
	bin   codegen.BinOp
	un    codegen.UnOp
}

// builtinOps are the call targets that lower to operators instead of calls. They
// take precedence over procedures of the same name.
var builtinOps = map[string]builtinOp{
	"+": {shape: shapeFold, bin: codegen.BinAdd},
	"*": {shape: shapeFold, bin: codegen.BinMul},
	"|": {shape: shapeFold, bin: codegen.BinOr},
	"&": {shape: shapeFold, bin: codegen.BinAnd},
	"^": {shape: shapeFold, bin: codegen.BinXor},

	"-": {shape: shapeMinus, bin: codegen.BinSub, un: codegen.UnNeg},

	"/":   {shape: shapeBinary, bin: codegen.BinDiv},
	"mod": {shape: shapeBinary, bin: codegen.BinMod},
	"<<":  {shape: shapeBinary, bin: codegen.BinShl},
	">>":  {shape: shapeBinary, bin: codegen.BinShr},

	"not": {shape: shapeUnary, un: codegen.UnNot},
	"~":   {shape: shapeUnary, un: codegen.UnBnot},

	"==":  {shape: shapeCompare, bin: codegen.BinEq},
	"!=":  {shape: shapeCompare, bin: codegen.BinNe},
	"<":   {shape: shapeCompare, bin: codegen.BinLt},
	"<=":  {shape: shapeCompare, bin: codegen.BinLe},
	">":   {shape: shapeCompare, bin: codegen.BinGt},
	">=":  {shape: shapeCompare, bin: codegen.BinGe},
	"u<":  {shape: shapeCompare, bin: codegen.BinUlt},
	"u<=": {shape: shapeCompare, bin: codegen.BinUle},
	"u>":  {shape: shapeCompare, bin: codegen.BinUgt},
	"u>=": {shape: shapeCompare, bin: codegen.BinUge},

	"and": {shape: shapeAnd},
	"or":  {shape: shapeOr},
}

func (c *ExprContext) compileBuiltin(op builtinOp, e *ast.CallExpr) error {
	args := e.Args
	arity := func(ok bool, want string) error {
		if ok {
			return nil
		}
		return errors.InvalidArgument(e.Loc, "%q takes %s operands, got %d", e.Target.Value, want, len(args))
	}

	switch op.shape {
	case shapeFold:
		if err := arity(len(args) >= 2, "at least 2"); err != nil {
			return err
		}
		return c.compileFold(op.bin, args)
	case shapeBinary:
		if err := arity(len(args) == 2, "exactly 2"); err != nil {
			return err
		}
		return c.compileFold(op.bin, args)
	case shapeMinus:
		if err := arity(len(args) == 1 || len(args) == 2, "1 or 2"); err != nil {
			return err
		}
		if len(args) == 1 {
			return c.compileUnary(op.un, args[0])
		}
		return c.compileFold(op.bin, args)
	case shapeUnary:
		if err := arity(len(args) == 1, "exactly 1"); err != nil {
			return err
		}
		return c.compileUnary(op.un, args[0])
	case shapeCompare:
		if err := arity(len(args) >= 2, "at least 2"); err != nil {
			return err
		}
		return c.compileCompare(op.bin, args)
	case shapeAnd, shapeOr:
		if err := arity(len(args) >= 1, "at least 1"); err != nil {
			return err
		}
		return c.compileShortCircuit(op.shape == shapeAnd, args)
	}
	return nil
}

func (c *ExprContext) compileUnary(op codegen.UnOp, arg ast.Expr) error {
	if err := c.Compile(arg); err != nil {
		return err
	}
	c.gen.AddUnOp(op)
	return nil
}

// compileFold lowers ((a op b) op c) ...: each partial result is pushed and
// combined with the next operand. No constants are folded.
func (c *ExprContext) compileFold(op codegen.BinOp, args []ast.Expr) error {
	if err := c.Compile(args[0]); err != nil {
		return err
	}
	for _, arg := range args[1:] {
		c.emitPush()
		if err := c.Compile(arg); err != nil {
			return err
		}
		c.gen.AddBinOp(op)
	}
	return nil
}

// compileCompare lowers (op a b c ...) as (and (op a b) (op b c) ...), evaluating
// every operand once. After each comparison the VM's prev register holds its right
// operand; pprev pushes it as the left operand of the next comparison. Each step
// starts and ends at the same stack depth.
func (c *ExprContext) compileCompare(op codegen.BinOp, args []ast.Expr) error {
	if err := c.Compile(args[0]); err != nil {
		return err
	}
	c.emitPush()
	if err := c.Compile(args[1]); err != nil {
		return err
	}
	c.gen.AddBinOp(op)
	if len(args) == 2 {
		return nil
	}

	done := c.gen.NewLabel("compare-done")
	for _, arg := range args[2:] {
		c.emitJumpIfFalse(done)
		c.gen.AddPushPrev()
		if err := c.Compile(arg); err != nil {
			return err
		}
		c.gen.AddBinOp(op)
	}
	c.gen.BindLabel(done)
	return nil
}

// compileShortCircuit branches to a shared end label as soon as an operand decides
// the result, leaving that operand's value in the accumulator.
func (c *ExprContext) compileShortCircuit(isAnd bool, args []ast.Expr) error {
	name := "or-done"
	if isAnd {
		name = "and-done"
	}
	end := c.gen.NewLabel(name)
	for i, arg := range args {
		if err := c.Compile(arg); err != nil {
			return err
		}
		if i == len(args)-1 {
			break
		}
		if isAnd {
			c.emitJumpIfFalse(end)
		} else {
			c.emitJumpIfTrue(end)
		}
	}
	c.gen.BindLabel(end)
	return nil
}
