package compiler

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/naerbnic/sci-compiler-sub002/pkg/ast"
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/config"
	"github.com/naerbnic/sci-compiler-sub002/pkg/sem"
)

const (
	selX    = 1
	selY    = 2
	selInit = 110
	selDoit = 111
)

func nm(s string) ast.Name { return ast.NewName(s) }

func nmp(s string) *ast.Name {
	n := ast.NewName(s)
	return &n
}

func idx(name string, index ast.Expr) *ast.VarExpr {
	return &ast.VarExpr{Name: nm(name), Index: index}
}

func str(s string) *ast.StringExpr { return &ast.StringExpr{Value: s} }

func clause(sel string, args ...ast.Expr) *ast.SendClause {
	return &ast.SendClause{Selector: nm(sel), Args: args}
}

func send(target ast.SendTarget, clauses ...*ast.SendClause) *ast.SendExpr {
	return &ast.SendExpr{Target: target, Clauses: clauses}
}

func to(e ast.Expr) *ast.ExprTarget { return &ast.ExprTarget{Expr: e} }

// testProc has parameters a and b, a temporary t1 and a three-slot array tarr.
func testProc() *ast.ProcDef {
	return &ast.ProcDef{
		Name:   nm("test"),
		Params: []ast.Name{nm("a"), nm("b")},
		Temps:  []ast.VarDef{{Name: nm("t1")}, {Name: nm("tarr"), Length: 3}},
	}
}

// fixture builds script 5 of a small program. The instance ego and the procedure
// Helper are allocated labels L0 and L1 while the tables are built, and the name
// "ego" is text 0 of the script, so bodies start allocating at L2 and text 1.
func fixture(t *testing.T, extra ...ast.Item) *sem.ModuleEnvironment {
	t.Helper()
	globals := []ast.Item{
		&ast.SelectorsItem{Entries: []ast.SelectorEntry{
			{Name: nm("x"), Num: selX},
			{Name: nm("y"), Num: selY},
			{Name: nm("init"), Num: selInit},
			{Name: nm("doit"), Num: selDoit},
		}},
		&ast.GlobalDeclItem{Entries: []ast.VarDef{
			{Name: nm("gEgo"), Index: 0},
			{Name: nm("flags"), Index: 1, Length: 10},
		}},
		&ast.ExternItem{Entries: []ast.ExternEntry{
			{Name: nm("Print"), Script: 255, Index: 0},
			{Name: nm("Proc0"), Script: 0, Index: 3},
		}},
	}
	items := []ast.Item{
		&ast.ScriptNumItem{Num: 5},
		&ast.ClassDefItem{
			Kind: ast.KindClass,
			Name: nm("Actor"),
			Properties: []ast.PropertyDef{
				{Name: nm("x"), Value: ast.Num(0)},
				{Name: nm("y"), Value: ast.Num(0)},
			},
			Methods: []*ast.ProcDef{{Name: nm("init")}, {Name: nm("doit")}},
		},
		&ast.ClassDefItem{
			Kind:    ast.KindClass,
			Name:    nm("Sub"),
			Super:   nmp("Actor"),
			Methods: []*ast.ProcDef{{Name: nm("init")}},
		},
		&ast.ClassDefItem{
			Kind:    ast.KindInstance,
			Name:    nm("ego"),
			Super:   nmp("Sub"),
			Methods: []*ast.ProcDef{{Name: nm("doit")}},
		},
		&ast.ProcDefItem{Proc: &ast.ProcDef{Name: nm("Helper"), Params: []ast.Name{nm("p")}}},
		&ast.VarDefItem{Scope: ast.ScopeLocal, Entries: []ast.VarDef{
			{Name: nm("counter")},
			{Name: nm("buf"), Length: 4},
		}},
	}
	items = append(items, extra...)

	profile := config.Default()
	profile.Kernels = []string{"Load", "UnLoad", "Random"}
	env, err := sem.BuildCompilationEnvironment(globals, []sem.Module{{Name: "test", Items: items}}, sem.Options{Profile: profile})
	require.NoError(t, err)
	return env.Modules[0]
}

// ownerOf returns the class or instance named name, or nil for "".
func ownerOf(t *testing.T, env *sem.ModuleEnvironment, name string) *Owner {
	t.Helper()
	if name == "" {
		return nil
	}
	if obj, ok := env.Objects.LookupByName(name); ok {
		return &Owner{Object: obj}
	}
	cls, ok := env.Global.Classes.LookupByName(name)
	require.True(t, ok, "no class or instance %q", name)
	return &Owner{Class: cls}
}

// lower compiles exprs inside testProc, as a method of owner when it is set, and
// returns the listing of everything emitted by them.
func lower(t *testing.T, owner string, exprs ...ast.Expr) ([]string, error) {
	t.Helper()
	return lowerIn(t, testProc(), owner, exprs...)
}

func lowerIn(t *testing.T, proc *ast.ProcDef, owner string, exprs ...ast.Expr) ([]string, error) {
	t.Helper()
	env := fixture(t)
	ctx, err := NewExprContext(env, proc, ownerOf(t, env, owner))
	require.NoError(t, err)
	for _, e := range exprs {
		if err := ctx.Compile(e); err != nil {
			return nil, err
		}
	}
	return env.Gen.(*codegen.Chunk).Listing(), nil
}

// mustLower is lower for inputs that compile.
func mustLower(t *testing.T, owner string, exprs ...ast.Expr) []string {
	t.Helper()
	out, err := lower(t, owner, exprs...)
	require.NoError(t, err, "lowering %s", spew.Sdump(exprs))
	return out
}
