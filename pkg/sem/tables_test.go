package sem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

func TestProcTable(t *testing.T) {
	gen := codegen.NewChunk("t")
	b := NewProcTableBuilder(gen)
	require.NoError(t, b.AddProcedure("Foo", noPos))
	require.NoError(t, b.AddProcedure("Bar", noPos))
	err := b.AddProcedure("Foo", noPos)
	assert.True(t, errors.IsAlreadyExists(err), "got %v", err)

	table := b.Build()
	bar, ok := table.LookupByName("Bar")
	require.True(t, ok)
	assert.Equal(t, 1, bar.Index())
	byIdx, ok := table.LookupByIndex(1)
	require.True(t, ok)
	assert.Same(t, bar, byIdx)
	_, ok = table.LookupByIndex(2)
	assert.False(t, ok)

	foo, _ := table.LookupByName("Foo")
	assert.NotSame(t, foo.Label(), bar.Label())
	assert.Equal(t, "proc:Foo", foo.Label().Name())
}

func TestExternTable(t *testing.T) {
	b := NewExternTableBuilder()
	require.NoError(t, b.AddExtern("Load", KernelScript, 0, noPos))
	require.NoError(t, b.AddExtern("Print", 255, 0, noPos))
	require.NoError(t, b.AddExtern("Print", 255, 0, noPos), "identical redeclaration is allowed")

	err := b.AddExtern("Print", 255, 1, noPos)
	assert.True(t, errors.IsAlreadyExists(err), "got %v", err)
	err = b.AddExtern("Show", 255, 0, noPos)
	assert.True(t, errors.IsAlreadyExists(err), "got %v", err)

	table := b.Build()
	load, ok := table.LookupByName("Load")
	require.True(t, ok)
	assert.True(t, load.IsKernel())

	p, ok := table.LookupByEntry(255, 0)
	require.True(t, ok)
	assert.Equal(t, "Print", p.Name())
	assert.False(t, p.IsKernel())
	assert.Len(t, table.Externs(), 2)

	copyB := NewExternTableBuilder()
	require.NoError(t, copyB.AddAll(table))
	require.NoError(t, copyB.AddExtern("Local", 3, 2, noPos))
	assert.Len(t, copyB.Build().Externs(), 3)
}

func TestVarTable(t *testing.T) {
	b := NewVarTableBuilder()
	require.NoError(t, b.AddVar("a", 0, 1, []codegen.LiteralValue{codegen.Int(5)}, noPos))
	require.NoError(t, b.AddVar("arr", b.NextIndex(), 4, nil, noPos))
	require.NoError(t, b.AddVar("c", b.NextIndex(), 1, nil, noPos))

	tests := []struct {
		name   string
		index  int
		length int
		init   []codegen.LiteralValue
		kind   string
	}{
		{"a", 10, 1, nil, "AlreadyExists"},
		{"overlap", 3, 1, nil, "AlreadyExists"},
		{"straddle", 5, 2, nil, "AlreadyExists"},
		{"empty", 10, 0, nil, "InvalidArgument"},
		{"too many values", 10, 1, []codegen.LiteralValue{codegen.Int(1), codegen.Int(2)}, "InvalidArgument"},
	}
	for _, tt := range tests {
		err := b.AddVar(tt.name, tt.index, tt.length, tt.init, noPos)
		assert.Equal(t, tt.kind, errors.KindOf(err), "%s: %v", tt.name, err)
	}

	table := b.Build()
	assert.Equal(t, 6, table.Size())
	arr, ok := table.LookupByIndex(3)
	require.True(t, ok)
	assert.Equal(t, "arr", arr.Name())
	assert.Equal(t, 1, arr.Index())
	_, ok = table.LookupByIndex(6)
	assert.False(t, ok)

	a, _ := table.LookupByName("a")
	assert.Equal(t, []codegen.LiteralValue{codegen.Int(5)}, a.InitialValues())
}

func TestDeclareVarIdempotent(t *testing.T) {
	b := NewVarDeclTableBuilder()
	require.NoError(t, b.DeclareVar("ego", 0, 1, noPos))
	require.NoError(t, b.DeclareVar("ego", 0, 1, noPos))
	require.NoError(t, b.DeclareVar("flags", 5, 10, noPos))
	require.NoError(t, b.DeclareVar("flags", 5, 10, noPos))

	for _, tt := range []struct {
		name          string
		index, length int
	}{
		{"ego", 1, 1},
		{"ego", 0, 2},
		{"hero", 0, 1},
		{"flags", 5, 1},
	} {
		err := b.DeclareVar(tt.name, tt.index, tt.length, noPos)
		assert.True(t, errors.IsAlreadyExists(err), "%s %d %d: %v", tt.name, tt.index, tt.length, err)
	}

	table := b.Build()
	assert.Equal(t, 2, table.Len())
	d, ok := table.LookupByIndex(5)
	require.True(t, ok)
	assert.Equal(t, "flags", d.Name)
	assert.Equal(t, 10, d.Length)

	var names []string
	for _, d := range table.Decls() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"ego", "flags"}, names)
}

func TestPublicTable(t *testing.T) {
	gen := codegen.NewChunk("t")
	procs := NewProcTableBuilder(gen)
	require.NoError(t, procs.AddProcedure("Foo", noPos))
	require.NoError(t, procs.AddProcedure("Bar", noPos))
	ptable := procs.Build()
	foo, _ := ptable.LookupByName("Foo")
	bar, _ := ptable.LookupByName("Bar")

	sels, classes := buildActorClass(t)
	objects := NewObjectTableBuilder(classes, sels, gen)
	require.NoError(t, objects.AddObject(ObjectDef{Name: "ego", Parent: "Actor"}))
	ego, _ := objects.Build().LookupByName("ego")
	actor, _ := classes.LookupByName("Actor")

	b := NewPublicTableBuilder()
	require.NoError(t, b.AddProcedure(2, foo, noPos))
	require.NoError(t, b.AddObject(0, ego, noPos))
	require.NoError(t, b.AddClass(5, actor, noPos))

	err := b.AddProcedure(2, bar, noPos)
	assert.True(t, errors.IsAlreadyExists(err), "duplicate index: %v", err)
	err = b.AddProcedure(3, foo, noPos)
	assert.True(t, errors.IsAlreadyExists(err), "duplicate name: %v", err)

	table := b.Build()
	assert.Equal(t, 6, table.Size())
	var kinds []string
	for _, e := range table.Entries() {
		kinds = append(kinds, e.Kind())
	}
	assert.Equal(t, []string{"object", "procedure", "class"}, kinds)

	e, ok := table.LookupByName("Actor")
	require.True(t, ok)
	assert.Equal(t, 5, e.Index)
	_, ok = table.LookupByIndex(1)
	assert.False(t, ok)
}
