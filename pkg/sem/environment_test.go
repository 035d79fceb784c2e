package sem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naerbnic/sci-compiler-sub002/pkg/ast"
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/config"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

func name(s string) ast.Name { return ast.NewName(s) }

func namep(s string) *ast.Name {
	n := ast.NewName(s)
	return &n
}

func proc(n string) *ast.ProcDefItem {
	return &ast.ProcDefItem{Proc: &ast.ProcDef{Name: name(n)}}
}

func public(entries ...any) *ast.PublicItem {
	item := &ast.PublicItem{}
	for i := 0; i < len(entries); i += 2 {
		item.Entries = append(item.Entries, ast.PublicEntry{Name: name(entries[i].(string)), Index: entries[i+1].(int)})
	}
	return item
}

func actorClass() *ast.ClassDefItem {
	return &ast.ClassDefItem{
		Kind:       ast.KindClass,
		Name:       name("Actor"),
		Properties: []ast.PropertyDef{{Name: name("x"), Value: ast.Num(0)}},
		Methods:    []*ast.ProcDef{{Name: name("init")}},
	}
}

func instance(n, class string, props ...ast.PropertyDef) *ast.ClassDefItem {
	return &ast.ClassDefItem{Kind: ast.KindInstance, Name: name(n), Super: namep(class), Properties: props}
}

func TestBuildCompilationEnvironment(t *testing.T) {
	globals := []ast.Item{
		&ast.SelectorsItem{Entries: []ast.SelectorEntry{{Name: name("init"), Num: 110}}},
		&ast.ExternItem{Entries: []ast.ExternEntry{{Name: name("Print"), Script: 255, Index: 0}}},
		&ast.GlobalDeclItem{Entries: []ast.VarDef{{Name: name("ego"), Index: 0}}},
	}
	modules := []Module{
		{Name: "main", Items: []ast.Item{
			&ast.ScriptNumItem{Num: 0},
			&ast.VarDefItem{Scope: ast.ScopeGlobal, Entries: []ast.VarDef{{Name: name("ego"), Index: 0}, {Name: name("score"), Index: 1}}},
			actorClass(),
			proc("Foo"),
			public("Actor", 0, "Foo", 1),
		}},
		{Name: "room", Items: []ast.Item{
			&ast.ScriptNumItem{Num: 10},
			&ast.VarDefItem{Scope: ast.ScopeLocal, Entries: []ast.VarDef{
				{Name: name("a"), Init: []ast.Value{ast.Str("hi")}},
				{Name: name("arr"), Length: 3},
				{Name: name("b")},
			}},
			&ast.ExternItem{Entries: []ast.ExternEntry{{Name: name("Helper"), Script: 0, Index: 1}}},
			instance("hero", "Actor", ast.PropertyDef{Name: name("x"), Value: ast.Num(100)}),
			proc("Bar"),
			public("hero", 0, "Bar", 1),
		}},
	}
	profile := config.Default()
	profile.Kernels = []string{"Load", "UnLoad"}

	env, err := BuildCompilationEnvironment(globals, modules, Options{Profile: profile})
	require.NoError(t, err)
	require.Len(t, env.Modules, 2)

	sels := env.Global.Selectors
	initSel, _ := sels.LookupByName("init")
	assert.Equal(t, SelectorNum(110), initSel.Num())
	_, ok := sels.LookupByName("x")
	assert.True(t, ok, "class properties become selectors")

	actor, ok := env.Global.Classes.LookupByName("Actor")
	require.True(t, ok)
	assert.Equal(t, ScriptNum(0), actor.Script())

	unload, ok := env.Global.Externs.LookupByName("UnLoad")
	require.True(t, ok)
	assert.True(t, unload.IsKernel())
	assert.Equal(t, 1, unload.Index())

	score, ok := env.Global.Globals.LookupByName("score")
	require.True(t, ok, "defined globals are visible program-wide")
	assert.Equal(t, 1, score.Index)

	main, _ := env.LookupModule(0)
	pub, ok := main.Publics.LookupByIndex(0)
	require.True(t, ok)
	assert.Equal(t, "class", pub.Kind())
	_, ok = main.Externs.LookupByName("Helper")
	assert.False(t, ok, "script externs stay in their script")

	room, ok := env.LookupModule(10)
	require.True(t, ok)
	assert.Equal(t, "room", room.Name)
	hero, ok := room.Objects.LookupByName("hero")
	require.True(t, ok)
	assert.Same(t, actor, hero.Parent())
	assert.Equal(t, codegen.Int(100), propValue(t, hero.Properties(), "x"))

	pub, ok = room.Publics.LookupByName("Bar")
	require.True(t, ok)
	assert.Equal(t, "procedure", pub.Kind())
	assert.Equal(t, 1, pub.Index)

	arr, ok := room.Locals.LookupByName("arr")
	require.True(t, ok)
	assert.Equal(t, 1, arr.Index())
	assert.Equal(t, 3, arr.Length())
	b, _ := room.Locals.LookupByName("b")
	assert.Equal(t, 4, b.Index())
	a, _ := room.Locals.LookupByName("a")
	text, ok := a.InitialValues()[0].(*codegen.TextRef)
	require.True(t, ok)
	assert.Equal(t, "hi", text.Text())

	helper, ok := room.Externs.LookupByName("Helper")
	require.True(t, ok)
	assert.Equal(t, ScriptNum(0), helper.Script())
	_, ok = room.Externs.LookupByName("Load")
	assert.True(t, ok, "kernels are visible in every script")

	chunk, ok := room.Gen.(*codegen.Chunk)
	require.True(t, ok)
	assert.Equal(t, "room", chunk.Name)
	assert.Len(t, room.ProcDefs(), 1)
	assert.Len(t, room.ClassDefs(), 1)
}

func TestPublicUnknownName(t *testing.T) {
	modules := []Module{{Name: "m", Items: []ast.Item{
		&ast.ScriptNumItem{Num: 1},
		proc("foo"),
		public("foo", 1, "bar", 2),
	}}}
	_, err := BuildCompilationEnvironment(nil, modules, Options{})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err), "got %v", err)
	assert.Contains(t, err.Error(), `"bar"`)
}

func TestPublicAmbiguousName(t *testing.T) {
	modules := []Module{{Name: "m", Items: []ast.Item{
		&ast.ScriptNumItem{Num: 1},
		actorClass(),
		instance("ego", "Actor"),
		proc("ego"),
		public("ego", 0),
	}}}
	_, err := BuildCompilationEnvironment(nil, modules, Options{})
	assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
}

func TestPublicClassOfOtherScript(t *testing.T) {
	modules := []Module{
		{Name: "a", Items: []ast.Item{&ast.ScriptNumItem{Num: 1}, actorClass()}},
		{Name: "b", Items: []ast.Item{&ast.ScriptNumItem{Num: 2}, public("Actor", 0)}},
	}
	_, err := BuildCompilationEnvironment(nil, modules, Options{})
	assert.True(t, errors.IsNotFound(err), "got %v", err)
}

func TestScriptNumberRequiredOnce(t *testing.T) {
	_, err := BuildCompilationEnvironment(nil, []Module{{Name: "none", Items: []ast.Item{proc("Foo")}}}, Options{})
	assert.True(t, errors.IsInvalidArgument(err), "missing: %v", err)

	_, err = BuildCompilationEnvironment(nil, []Module{{Name: "two", Items: []ast.Item{
		&ast.ScriptNumItem{Num: 1},
		&ast.ScriptNumItem{Num: 2},
	}}}, Options{})
	assert.True(t, errors.IsInvalidArgument(err), "twice: %v", err)

	_, err = BuildCompilationEnvironment(nil, []Module{
		{Name: "a", Items: []ast.Item{&ast.ScriptNumItem{Num: 1}}},
		{Name: "b", Items: []ast.Item{&ast.ScriptNumItem{Num: 1}}},
	}, Options{})
	assert.True(t, errors.IsAlreadyExists(err), "shared: %v", err)
}

func TestGlobalItemsRestricted(t *testing.T) {
	_, err := BuildCompilationEnvironment([]ast.Item{proc("Foo")}, nil, Options{})
	assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
}

func TestStrictClassDecls(t *testing.T) {
	globals := []ast.Item{
		&ast.ClassDeclItem{Name: name("Actor"), Script: 1, Species: 0, Properties: []ast.PropertyDef{{Name: name("y"), Value: ast.Num(0)}}},
	}
	modules := []Module{{Name: "m", Items: []ast.Item{&ast.ScriptNumItem{Num: 1}, actorClass()}}}

	_, err := BuildCompilationEnvironment(globals, modules, Options{})
	require.NoError(t, err)

	profile := config.Default()
	profile.StrictClassDecls = true
	_, err = BuildCompilationEnvironment(globals, modules, Options{Profile: profile})
	assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
}

func TestBuilderFactory(t *testing.T) {
	var made []ScriptNum
	modules := []Module{
		{Name: "a", Items: []ast.Item{&ast.ScriptNumItem{Num: 3}}},
		{Name: "b", Items: []ast.Item{&ast.ScriptNumItem{Num: 7}}},
	}
	env, err := BuildCompilationEnvironment(nil, modules, Options{
		NewBuilder: func(name string, script ScriptNum) codegen.Builder {
			made = append(made, script)
			return codegen.NewChunk(name)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []ScriptNum{3, 7}, made)
	assert.Len(t, env.Modules, 2)
}

func TestBadProfile(t *testing.T) {
	profile := &config.Profile{MaxSelector: -1}
	_, err := BuildCompilationEnvironment(nil, nil, Options{Profile: profile})
	assert.True(t, errors.IsInvalidArgument(err), "got %v", err)
}
