package compiler

import (
	"github.com/naerbnic/sci-compiler-sub002/pkg/ast"
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// --- Conditionals ---

func (c *ExprContext) compileIf(e *ast.IfExpr) error {
	if err := c.Compile(e.Cond); err != nil {
		return err
	}
	if e.Else == nil {
		done := c.gen.NewLabel("if-done")
		c.emitJumpIfFalse(done)
		if err := c.compileOptional(e.Then); err != nil {
			return err
		}
		c.gen.BindLabel(done)
		return nil
	}

	labels := c.newLabels("if-else", "if-done")
	elseLabel, done := labels[0], labels[1]
	c.emitJumpIfFalse(elseLabel)
	if err := c.compileOptional(e.Then); err != nil {
		return err
	}
	c.emitJump(done)
	c.gen.BindLabel(elseLabel)
	if err := c.Compile(e.Else); err != nil {
		return err
	}
	c.gen.BindLabel(done)
	return nil
}

func (c *ExprContext) compileCond(e *ast.CondExpr) error {
	done := c.gen.NewLabel("cond-done")
	for _, branch := range e.Branches {
		next := c.gen.NewLabel("cond-next")
		if err := c.Compile(branch.Cond); err != nil {
			return err
		}
		c.emitJumpIfFalse(next)
		if err := c.compileOptional(branch.Body); err != nil {
			return err
		}
		c.emitJump(done)
		c.gen.BindLabel(next)
	}
	if err := c.compileOptional(e.Else); err != nil {
		return err
	}
	c.gen.BindLabel(done)
	return nil
}

// switchCase is one arm of a switch after its constant has been converted.
type switchCase struct {
	value codegen.LiteralValue
	body  ast.Expr
}

// compileDispatch keeps the switch value on the stack while each case compares a
// copy of it with its constant. The value is tossed once at the shared exit; a
// break or continue leaving the switch tosses it itself.
func (c *ExprContext) compileDispatch(value ast.Expr, cases []switchCase, elseBody ast.Expr) error {
	if err := c.Compile(value); err != nil {
		return err
	}
	c.emitPush()
	c.switches++
	defer func() { c.switches-- }()

	done := c.gen.NewLabel("switch-done")
	for _, sc := range cases {
		next := c.gen.NewLabel("switch-next")
		c.gen.AddDup()
		c.gen.AddLoadImmediate(sc.value)
		c.gen.AddBinOp(codegen.BinEq)
		c.emitJumpIfFalse(next)
		if err := c.compileOptional(sc.body); err != nil {
			return err
		}
		c.emitJump(done)
		c.gen.BindLabel(next)
	}
	if err := c.compileOptional(elseBody); err != nil {
		return err
	}
	c.gen.BindLabel(done)
	c.gen.AddToss()
	return nil
}

func (c *ExprContext) compileSwitch(e *ast.SwitchExpr) error {
	cases := make([]switchCase, len(e.Cases))
	for i, sc := range e.Cases {
		var v codegen.LiteralValue
		switch val := sc.Value.(type) {
		case *ast.NumberValue:
			v = codegen.Int(val.Value)
		case *ast.StringValue:
			v = c.gen.AddText(val.Value)
		default:
			return errors.InvalidArgument(e.Loc, "switch case %d is not a constant", i)
		}
		cases[i] = switchCase{value: v, body: sc.Body}
	}
	return c.compileDispatch(e.Value, cases, e.Else)
}

// compileSwitchTo dispatches on the ordinal of each case.
func (c *ExprContext) compileSwitchTo(e *ast.SwitchToExpr) error {
	cases := make([]switchCase, len(e.Cases))
	for i, body := range e.Cases {
		cases[i] = switchCase{value: codegen.Int(i), body: body}
	}
	return c.compileDispatch(e.Value, cases, e.Else)
}

// --- Loops ---

func (c *ExprContext) pushLoop(next, done *codegen.Label) {
	c.loops = append(c.loops, &loopContext{next: next, done: done, switches: c.switches})
}

func (c *ExprContext) popLoop() {
	c.loops = c.loops[:len(c.loops)-1]
}

func (c *ExprContext) compileWhile(e *ast.WhileExpr) error {
	labels := c.newLabels("while-next", "while-done")
	next, done := labels[0], labels[1]

	c.gen.BindLabel(next)
	if err := c.Compile(e.Cond); err != nil {
		return err
	}
	c.emitJumpIfFalse(done)

	c.pushLoop(next, done)
	err := c.compileOptional(e.Body)
	c.popLoop()
	if err != nil {
		return err
	}
	c.emitJump(next)
	c.gen.BindLabel(done)
	return nil
}

func (c *ExprContext) compileRepeat(e *ast.RepeatExpr) error {
	labels := c.newLabels("repeat-next", "repeat-done")
	next, done := labels[0], labels[1]

	c.gen.BindLabel(next)
	c.pushLoop(next, done)
	err := c.compileOptional(e.Body)
	c.popLoop()
	if err != nil {
		return err
	}
	c.emitJump(next)
	c.gen.BindLabel(done)
	return nil
}

// compileFor continues at the update expression, not the condition.
func (c *ExprContext) compileFor(e *ast.ForExpr) error {
	if err := c.compileOptional(e.Init); err != nil {
		return err
	}
	labels := c.newLabels("for-start", "for-next", "for-done")
	start, next, done := labels[0], labels[1], labels[2]

	c.gen.BindLabel(start)
	if err := c.Compile(e.Cond); err != nil {
		return err
	}
	c.emitJumpIfFalse(done)

	c.pushLoop(next, done)
	err := c.compileOptional(e.Body)
	c.popLoop()
	if err != nil {
		return err
	}

	c.gen.BindLabel(next)
	if err := c.compileOptional(e.Update); err != nil {
		return err
	}
	c.emitJump(start)
	c.gen.BindLabel(done)
	return nil
}

// compileBreak lowers break/continue and their conditional forms. Level 1 is the
// innermost loop; 0 is taken as 1. Switch values pushed inside the target loop are
// tossed before the jump.
func (c *ExprContext) compileBreak(level int, cond ast.Expr, pos errors.Position, isContinue bool) error {
	if level == 0 {
		level = 1
	}
	kw := "break"
	if isContinue {
		kw = "continue"
	}
	if level < 1 || level > len(c.loops) {
		return errors.FailedPrecondition(pos, "%s %d with %d enclosing loops", kw, level, len(c.loops))
	}

	loop := c.loops[len(c.loops)-level]
	target := loop.done
	if isContinue {
		target = loop.next
	}

	open := c.switches - loop.switches

	if cond != nil {
		if err := c.Compile(cond); err != nil {
			return err
		}
		if open == 0 {
			c.emitJumpIfTrue(target)
			return nil
		}
		skip := c.gen.NewLabel(kw + "-skip")
		c.emitJumpIfFalse(skip)
		c.emitTosses(open)
		c.emitJump(target)
		c.gen.BindLabel(skip)
		return nil
	}
	c.emitTosses(open)
	c.emitJump(target)
	return nil
}
