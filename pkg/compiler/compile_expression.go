package compiler

import (
	"fmt"

	"github.com/naerbnic/sci-compiler-sub002/pkg/ast"
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// Compile lowers e, leaving its value in the accumulator. The stack depth after
// Compile equals the depth before it.
func (c *ExprContext) Compile(e ast.Expr) error {
	c.setLine(e.Pos())
	switch e := e.(type) {
	case *ast.NumberExpr:
		c.emitLoadInt(e.Value)
	case *ast.StringExpr:
		c.emitLoadText(e.Value)
	case *ast.SelfExpr:
		c.gen.AddSelfID()
	case *ast.SelectorLitExpr:
		sel, ok := c.env.Global.Selectors.LookupByName(e.Selector.Value)
		if !ok {
			return errors.NotFound(e.Selector.Loc, "%q is not a selector", e.Selector.Value)
		}
		c.emitLoadInt(int(sel.Num()))
	case *ast.VarExpr:
		return c.compileVarLoad(e)
	case *ast.AddrOfExpr:
		return c.compileAddrOf(e)
	case *ast.CallExpr:
		return c.compileCall(e)
	case *ast.SendExpr:
		return c.compileSend(e)
	case *ast.ExprList:
		for _, sub := range e.Exprs {
			if err := c.Compile(sub); err != nil {
				return err
			}
		}
	case *ast.AssignExpr:
		return c.compileAssign(e)
	case *ast.IncDecExpr:
		return c.compileIncDec(e)
	case *ast.ReturnExpr:
		if e.Value != nil {
			if err := c.Compile(e.Value); err != nil {
				return err
			}
		}
		c.gen.AddReturn()
	case *ast.BreakExpr:
		return c.compileBreak(e.Level, e.Cond, e.Loc, false)
	case *ast.ContinueExpr:
		return c.compileBreak(e.Level, e.Cond, e.Loc, true)
	case *ast.IfExpr:
		return c.compileIf(e)
	case *ast.CondExpr:
		return c.compileCond(e)
	case *ast.SwitchExpr:
		return c.compileSwitch(e)
	case *ast.SwitchToExpr:
		return c.compileSwitchTo(e)
	case *ast.WhileExpr:
		return c.compileWhile(e)
	case *ast.RepeatExpr:
		return c.compileRepeat(e)
	case *ast.ForExpr:
		return c.compileFor(e)
	default:
		panic(fmt.Sprintf("compiler: unhandled expression %T", e))
	}
	return nil
}

// compileOptional compiles e when it is present.
func (c *ExprContext) compileOptional(e ast.Expr) error {
	if e == nil {
		return nil
	}
	return c.Compile(e)
}

// --- Variables ---

// lookupVar resolves a variable or property reference, rejecting an index on a
// property.
func (c *ExprContext) lookupVar(v *ast.VarExpr) (Symbol, error) {
	sym, _, ok := c.scope.Resolve(v.Name.Value)
	if !ok {
		if c.isNonVariable(v.Name.Value) {
			return Symbol{}, errors.InvalidArgument(v.Name.Loc, "%q is not a variable", v.Name.Value)
		}
		return Symbol{}, errors.NotFound(v.Name.Loc, "unknown variable %q", v.Name.Value)
	}
	if v.Index != nil && sym.Kind == SymProperty {
		return Symbol{}, errors.InvalidArgument(v.Name.Loc, "property %q cannot be indexed", v.Name.Value)
	}
	return sym, nil
}

// isNonVariable reports whether name is an object, class or procedure.
func (c *ExprContext) isNonVariable(name string) bool {
	if _, ok := c.env.Objects.LookupByName(name); ok {
		return true
	}
	if _, ok := c.env.Global.Classes.LookupByName(name); ok {
		return true
	}
	_, ok := c.env.Procs.LookupByName(name)
	return ok
}

func (c *ExprContext) compileVarLoad(v *ast.VarExpr) error {
	if _, _, ok := c.scope.Resolve(v.Name.Value); !ok && v.Index == nil {
		// Bare names of objects, classes and procedures evaluate to their address.
		if obj, ok := c.env.Objects.LookupByName(v.Name.Value); ok {
			c.gen.AddLoadOffset(obj.Label())
			return nil
		}
		if cls, ok := c.env.Global.Classes.LookupByName(v.Name.Value); ok {
			c.gen.AddClass(int(cls.Species()))
			return nil
		}
		if proc, ok := c.env.Procs.LookupByName(v.Name.Value); ok {
			c.gen.AddLoadOffset(proc.Label())
			return nil
		}
	}

	sym, err := c.lookupVar(v)
	if err != nil {
		return err
	}
	if v.Index != nil {
		if err := c.Compile(v.Index); err != nil {
			return err
		}
	}
	c.emitVarOp(codegen.VarLoad, sym, v.Index != nil)
	return nil
}

func (c *ExprContext) compileAddrOf(e *ast.AddrOfExpr) error {
	sym, err := c.lookupVar(e.Target)
	if err != nil {
		return err
	}
	kind, ok := sym.Kind.varKind()
	if !ok {
		return errors.InvalidArgument(e.Loc, "cannot take the address of property %q", sym.Name)
	}
	if e.Target.Index != nil {
		if err := c.Compile(e.Target.Index); err != nil {
			return err
		}
	}
	c.gen.AddLoadAddress(kind, sym.Offset, e.Target.Index != nil)
	return nil
}

// --- Assignment ---

var assignOps = map[ast.AssignOp]codegen.BinOp{
	ast.AssignAdd: codegen.BinAdd,
	ast.AssignSub: codegen.BinSub,
	ast.AssignMul: codegen.BinMul,
	ast.AssignDiv: codegen.BinDiv,
	ast.AssignMod: codegen.BinMod,
	ast.AssignAnd: codegen.BinAnd,
	ast.AssignOr:  codegen.BinOr,
	ast.AssignXor: codegen.BinXor,
	ast.AssignShr: codegen.BinShr,
	ast.AssignShl: codegen.BinShl,
}

// compileAssign stores the new value and leaves it in the accumulator. Compound
// forms on an array element evaluate the index expression twice.
func (c *ExprContext) compileAssign(e *ast.AssignExpr) error {
	sym, err := c.lookupVar(e.Target)
	if err != nil {
		return err
	}
	indexed := e.Target.Index != nil

	// value computes the stored value into the accumulator.
	value := func() error { return c.Compile(e.Value) }
	if e.Op != ast.AssignSet {
		op, ok := assignOps[e.Op]
		if !ok {
			panic(fmt.Sprintf("compiler: unknown assignment operator %d", e.Op))
		}
		value = func() error {
			if indexed {
				if err := c.Compile(e.Target.Index); err != nil {
					return err
				}
			}
			c.emitVarOp(codegen.VarLoad, sym, indexed)
			c.emitPush()
			if err := c.Compile(e.Value); err != nil {
				return err
			}
			c.gen.AddBinOp(op)
			return nil
		}
	}

	if err := value(); err != nil {
		return err
	}
	if indexed {
		c.emitPush()
		if err := c.Compile(e.Target.Index); err != nil {
			return err
		}
	}
	c.emitVarOp(codegen.VarStore, sym, indexed)
	return nil
}

func (c *ExprContext) compileIncDec(e *ast.IncDecExpr) error {
	sym, err := c.lookupVar(e.Target)
	if err != nil {
		return err
	}
	op := codegen.VarInc
	if e.Decrement {
		op = codegen.VarDec
	}
	if e.Target.Index != nil {
		if err := c.Compile(e.Target.Index); err != nil {
			return err
		}
	}
	c.emitVarOp(op, sym, e.Target.Index != nil)
	return nil
}

// --- Calls ---

// compileArgs pushes the argument count, then each argument, then an optional rest
// forward. It returns the number of explicit arguments.
func (c *ExprContext) compileArgs(args []ast.Expr, rest *ast.RestArg) (int, error) {
	c.emitPushInt(len(args))
	for _, a := range args {
		if err := c.Compile(a); err != nil {
			return 0, err
		}
		c.emitPush()
	}
	if rest != nil {
		if err := c.compileRest(rest); err != nil {
			return 0, err
		}
	}
	return len(args), nil
}

func (c *ExprContext) compileRest(rest *ast.RestArg) error {
	if rest.Param == nil {
		c.gen.AddRest(c.numParams + 1)
		return nil
	}
	sym, _, ok := c.scope.Resolve(rest.Param.Value)
	if !ok || sym.Kind != SymParam || sym.Offset == 0 {
		return errors.InvalidArgument(rest.Param.Loc, "&rest needs a parameter, %q is not one", rest.Param.Value)
	}
	c.gen.AddRest(sym.Offset)
	return nil
}

func (c *ExprContext) compileCall(e *ast.CallExpr) error {
	name := e.Target.Value
	if op, ok := builtinOps[name]; ok {
		if e.Rest != nil {
			return errors.InvalidArgument(e.Rest.Loc, "&rest cannot be passed to %q", name)
		}
		return c.compileBuiltin(op, e)
	}

	if proc, ok := c.env.Procs.LookupByName(name); ok {
		n, err := c.compileArgs(e.Args, e.Rest)
		if err != nil {
			return err
		}
		c.gen.AddCall(proc.Label(), n)
		return nil
	}

	if ext, ok := c.env.Externs.LookupByName(name); ok {
		n, err := c.compileArgs(e.Args, e.Rest)
		if err != nil {
			return err
		}
		if ext.IsKernel() {
			c.gen.AddKernelCall(ext.Index(), n)
		} else {
			c.gen.AddExternCall(int(ext.Script()), ext.Index(), n)
		}
		return nil
	}

	return errors.NotFound(e.Target.Loc, "unknown procedure %q", name)
}
