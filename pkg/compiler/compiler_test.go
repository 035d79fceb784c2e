package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naerbnic/sci-compiler-sub002/pkg/ast"
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

func TestSymbolTableShadowing(t *testing.T) {
	outer := NewSymbolTable()
	require.True(t, outer.Define(Symbol{Name: "x", Kind: SymGlobal, Offset: 3}))
	require.False(t, outer.Define(Symbol{Name: "x", Kind: SymGlobal, Offset: 4}))

	inner := NewEnclosedSymbolTable(outer)
	sym, table, ok := inner.Resolve("x")
	require.True(t, ok)
	assert.Same(t, outer, table)
	assert.Equal(t, 3, sym.Offset)

	require.True(t, inner.Define(Symbol{Name: "x", Kind: SymTemp, Offset: 0}))
	sym, table, ok = inner.Resolve("x")
	require.True(t, ok)
	assert.Same(t, inner, table)
	assert.Equal(t, SymTemp, sym.Kind)

	_, _, ok = inner.Resolve("y")
	assert.False(t, ok)
}

func TestDuplicateParametersAndTemps(t *testing.T) {
	env := fixture(t)
	_, err := NewExprContext(env, &ast.ProcDef{Name: nm("p"), Params: []ast.Name{nm("a"), nm("a")}}, nil)
	assert.True(t, errors.IsAlreadyExists(err), "params: %v", err)

	_, err = NewExprContext(env, &ast.ProcDef{Name: nm("p"), Temps: []ast.VarDef{{Name: nm("t")}, {Name: nm("t")}}}, nil)
	assert.True(t, errors.IsAlreadyExists(err), "temps: %v", err)

	_, err = NewExprContext(env, &ast.ProcDef{Name: nm("p"), Params: []ast.Name{nm("v")}, Temps: []ast.VarDef{{Name: nm("v")}}}, nil)
	assert.NoError(t, err, "a parameter may shadow a temporary")
}

func TestCompileBody(t *testing.T) {
	env := fixture(t)
	ctx, err := NewExprContext(env, testProc(), nil)
	require.NoError(t, err)

	entry := env.Gen.NewLabel("test")
	require.NoError(t, ctx.CompileBody(entry, []ast.Expr{
		&ast.AssignExpr{Target: ast.Ident("t1"), Value: ast.Ident("a")},
		ast.Call("+", ast.Ident("t1"), ast.Ident("b")),
	}))
	assert.Equal(t, []string{
		"L2:",
		"link 4",
		"lap 1", "sat 0",
		"lat 0", "push", "lap 2", "add",
		"ret",
	}, env.Gen.(*codegen.Chunk).Listing())
}

func TestCompileBodyWithoutTemps(t *testing.T) {
	env := fixture(t)
	ctx, err := NewExprContext(env, &ast.ProcDef{Name: nm("p")}, nil)
	require.NoError(t, err)
	require.NoError(t, ctx.CompileBody(env.Gen.NewLabel("p"), nil))
	assert.Equal(t, []string{"L2:", "ret"}, env.Gen.(*codegen.Chunk).Listing())
}

func TestCompileModule(t *testing.T) {
	env := fixture(t, &ast.ProcDefItem{Proc: &ast.ProcDef{
		Name:   nm("Other"),
		Params: []ast.Name{nm("n")},
		Body:   []ast.Expr{ast.Call("Helper", ast.Ident("n"))},
	}})

	entries, err := CompileModule(env)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		if e.Owner != "" {
			names = append(names, e.Owner+"::"+e.Name)
		} else {
			names = append(names, e.Name)
		}
	}
	assert.Equal(t, []string{"Helper", "Other", "Actor::init", "Actor::doit", "Sub::init", "ego::doit"}, names)

	helper, _ := env.Procs.LookupByName("Helper")
	assert.Same(t, helper.Label(), entries[0].Label)

	chunk := env.Gen.(*codegen.Chunk)
	listing := chunk.Listing()
	assert.Equal(t, []string{"L1:", "ret", "L2:", "pushi 1", "lap 1", "push", "call L1 1", "ret"}, listing[:8])

	// Only the object label is left for the object emitter to bind.
	unbound := chunk.UnboundLabels()
	require.Len(t, unbound, 1)
	assert.Equal(t, "obj:ego", unbound[0].Name())
}

func TestCompileModuleReportsBodyErrors(t *testing.T) {
	env := fixture(t, &ast.ProcDefItem{Proc: &ast.ProcDef{
		Name: nm("Broken"),
		Body: []ast.Expr{ast.Ident("missing")},
	}})
	_, err := CompileModule(env)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err), "got %v", err)
	assert.Contains(t, err.Error(), "missing")
}
