// Package compiler lowers procedure and method bodies to instructions for the
// stack machine, resolving identifiers against a module's tables.
package compiler

import (
	"fmt"

	"github.com/naerbnic/sci-compiler-sub002/pkg/ast"
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
	"github.com/naerbnic/sci-compiler-sub002/pkg/sem"
)

const debugCompiler = false

func debugPrintf(format string, args ...interface{}) {
	if debugCompiler {
		fmt.Printf(format, args...)
	}
}

// loopContext holds the branch targets of one enclosing loop.
type loopContext struct {
	next     *codegen.Label // continue target
	done     *codegen.Label // break target
	switches int            // switch values on the stack when the loop was entered
}

// Owner is the class or instance whose method is being compiled. Exactly one of
// the fields is set.
type Owner struct {
	Class  *sem.Class
	Object *sem.Object
}

func (o Owner) name() string {
	if o.Object != nil {
		return o.Object.Name()
	}
	return o.Class.Name()
}

func (o Owner) properties() *sem.PropertyList {
	if o.Object != nil {
		return o.Object.Properties()
	}
	return o.Class.Properties()
}

// super returns the class super sends dispatch to: an instance's class, or a
// class's super class.
func (o Owner) super() *sem.Class {
	if o.Object != nil {
		return o.Object.Parent()
	}
	return o.Class.Super()
}

// ExprContext lowers the expressions of one body.
type ExprContext struct {
	env       *sem.ModuleEnvironment
	gen       codegen.Builder
	scope     *SymbolTable
	owner     *Owner // nil inside a procedure
	numParams int
	numTemps  int
	loops     []*loopContext
	switches  int // switch values currently held on the stack
}

// NewExprContext prepares a context for proc. owner is nil for procedures. The scope
// chain, innermost first, is parameters, temporaries, the owner's properties, the
// module's locals, and the program's globals.
func NewExprContext(env *sem.ModuleEnvironment, proc *ast.ProcDef, owner *Owner) (*ExprContext, error) {
	globals := NewSymbolTable()
	for _, d := range env.Global.Globals.Decls() {
		globals.Define(Symbol{Name: d.Name, Kind: SymGlobal, Offset: d.Index, Length: d.Length})
	}
	for _, v := range env.GlobalDefs.Variables() {
		globals.Define(Symbol{Name: v.Name(), Kind: SymGlobal, Offset: v.Index(), Length: v.Length()})
	}

	locals := NewEnclosedSymbolTable(globals)
	for _, v := range env.Locals.Variables() {
		locals.Define(Symbol{Name: v.Name(), Kind: SymLocal, Offset: v.Index(), Length: v.Length()})
	}

	scope := locals
	if owner != nil {
		scope = NewEnclosedSymbolTable(scope)
		for _, p := range owner.properties().Entries() {
			scope.Define(Symbol{Name: p.Name, Kind: SymProperty, Offset: p.Index, Length: 1})
		}
	}

	temps := NewEnclosedSymbolTable(scope)
	offset := 0
	for _, t := range proc.Temps {
		if !temps.Define(Symbol{Name: t.Name.Value, Kind: SymTemp, Offset: offset, Length: t.Size()}) {
			return nil, errors.AlreadyExists(t.Name.Loc, "temporary %q defined twice", t.Name.Value)
		}
		offset += t.Size()
	}

	params := NewEnclosedSymbolTable(temps)
	params.Define(Symbol{Name: "argc", Kind: SymParam, Offset: 0, Length: 1})
	for i, p := range proc.Params {
		if !params.Define(Symbol{Name: p.Value, Kind: SymParam, Offset: i + 1, Length: 1}) {
			return nil, errors.AlreadyExists(p.Loc, "parameter %q defined twice", p.Value)
		}
	}

	return &ExprContext{
		env:       env,
		gen:       env.Gen,
		scope:     params,
		owner:     owner,
		numParams: len(proc.Params),
		numTemps:  offset,
	}, nil
}

// CompileBody emits a full body at entry: the label, the temporary frame, every
// expression in order, and a final return. The value of the last expression is
// the return value.
func (c *ExprContext) CompileBody(entry *codegen.Label, body []ast.Expr) error {
	c.gen.BindLabel(entry)
	if c.numTemps > 0 {
		c.gen.AddLink(c.numTemps)
	}
	for _, e := range body {
		if err := c.Compile(e); err != nil {
			return err
		}
	}
	c.gen.AddReturn()
	return nil
}

// Entry is the code label of one compiled body.
type Entry struct {
	Owner string // Empty for procedures
	Name  string
	Label *codegen.Label
}

// CompileModule compiles every procedure and method body of env in source order.
// Procedure entries use the labels of the procedure table; methods get fresh labels.
func CompileModule(env *sem.ModuleEnvironment) ([]Entry, error) {
	var entries []Entry

	for _, proc := range env.ProcDefs() {
		p, ok := env.Procs.LookupByName(proc.Name.Value)
		if !ok {
			return nil, errors.NotFound(proc.Name.Loc, "procedure %q not in table", proc.Name.Value)
		}
		if err := compileProc(env, proc, nil, p.Label()); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: p.Name(), Label: p.Label()})
	}

	for _, def := range env.ClassDefs() {
		var owner Owner
		if def.Kind == ast.KindInstance {
			obj, ok := env.Objects.LookupByName(def.Name.Value)
			if !ok {
				return nil, errors.NotFound(def.Loc, "instance %q not in table", def.Name.Value)
			}
			owner.Object = obj
		} else {
			cls, ok := env.Global.Classes.LookupByName(def.Name.Value)
			if !ok {
				return nil, errors.NotFound(def.Loc, "class %q not in table", def.Name.Value)
			}
			owner.Class = cls
		}
		for _, m := range def.Methods {
			label := env.Gen.NewLabel(owner.name() + "::" + m.Name.Value)
			if err := compileProc(env, m, &owner, label); err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Owner: owner.name(), Name: m.Name.Value, Label: label})
		}
	}

	debugPrintf("[compiler] script %d: %d bodies\n", env.Script, len(entries))
	return entries, nil
}

func compileProc(env *sem.ModuleEnvironment, proc *ast.ProcDef, owner *Owner, entry *codegen.Label) error {
	ctx, err := NewExprContext(env, proc, owner)
	if err != nil {
		return err
	}
	if proc.Loc.IsValid() {
		env.Gen.SetLine(proc.Loc.Line)
	}
	return ctx.CompileBody(entry, proc.Body)
}
