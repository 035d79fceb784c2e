package compiler

import (
	"github.com/naerbnic/sci-compiler-sub002/pkg/ast"
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// compileSend pushes every clause as (selector, argc, args..., [&rest]) and then
// dispatches once with the total word count. The receiver of an expression target
// is evaluated last, into the accumulator.
func (c *ExprContext) compileSend(e *ast.SendExpr) error {
	if len(e.Clauses) == 0 {
		return errors.InvalidArgument(e.Loc, "send has no message")
	}

	words := 0
	for _, clause := range e.Clauses {
		if err := c.compileSelectorPush(clause.Selector); err != nil {
			return err
		}
		n, err := c.compileArgs(clause.Args, clause.Rest)
		if err != nil {
			return err
		}
		words += n + 2
	}

	switch t := e.Target.(type) {
	case *ast.SelfTarget:
		c.gen.AddSelfSend(words)
	case *ast.SuperTarget:
		if c.owner == nil {
			return errors.FailedPrecondition(t.Loc, "super send outside a method")
		}
		super := c.owner.super()
		if super == nil {
			return errors.FailedPrecondition(t.Loc, "%q has no super class", c.owner.name())
		}
		c.gen.AddSuperSend(int(super.Species()), words)
	case *ast.ExprTarget:
		if err := c.Compile(t.Expr); err != nil {
			return err
		}
		c.gen.AddSend(words)
	}
	return nil
}

// compileSelectorPush pushes a message selector. A variable (not a property) with
// the selector's name shadows it and supplies the selector at run time.
func (c *ExprContext) compileSelectorPush(name ast.Name) error {
	if sym, _, ok := c.scope.Resolve(name.Value); ok && sym.Kind != SymProperty {
		c.emitVarOp(codegen.VarLoad, sym, false)
		c.emitPush()
		return nil
	}
	sel, ok := c.env.Global.Selectors.LookupByName(name.Value)
	if !ok {
		return errors.NotFound(name.Loc, "%q is not a selector", name.Value)
	}
	c.emitPushInt(int(sel.Num()))
	return nil
}
