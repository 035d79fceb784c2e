package sem

import (
	"sort"

	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// Variable is a module-defined variable (or array) with its initial values.
type Variable struct {
	name   string
	pos    errors.Position
	index  int
	length int
	init   []codegen.LiteralValue
}

func (v *Variable) Name() string         { return v.name }
func (v *Variable) Pos() errors.Position { return v.pos }
func (v *Variable) Index() int           { return v.index }
func (v *Variable) Length() int          { return v.length }

// InitialValues returns the declared initial values; slots beyond them start at 0.
func (v *Variable) InitialValues() []codegen.LiteralValue {
	out := make([]codegen.LiteralValue, len(v.init))
	copy(out, v.init)
	return out
}

type VarTableBuilder struct {
	vars   []*Variable
	byName map[string]*Variable
}

func NewVarTableBuilder() *VarTableBuilder {
	return &VarTableBuilder{byName: make(map[string]*Variable)}
}

// NextIndex returns the first index past every variable added so far.
func (b *VarTableBuilder) NextIndex() int {
	next := 0
	for _, v := range b.vars {
		if end := v.index + v.length; end > next {
			next = end
		}
	}
	return next
}

func (b *VarTableBuilder) AddVar(name string, index, length int, init []codegen.LiteralValue, pos errors.Position) error {
	if length < 1 {
		return errors.InvalidArgument(pos, "variable %q has length %d", name, length)
	}
	if index < 0 {
		return errors.InvalidArgument(pos, "variable %q has negative index %d", name, index)
	}
	if len(init) > length {
		return errors.InvalidArgument(pos, "variable %q has %d initial values for %d slots", name, len(init), length)
	}
	if prev, ok := b.byName[name]; ok {
		return errors.AlreadyExists(pos, "variable %q already defined at %s", name, prev.pos)
	}
	for _, v := range b.vars {
		if index < v.index+v.length && v.index < index+length {
			return errors.AlreadyExists(pos, "variable %q at %d overlaps %q", name, index, v.name)
		}
	}
	v := &Variable{name: name, pos: pos, index: index, length: length, init: init}
	b.vars = append(b.vars, v)
	b.byName[name] = v
	return nil
}

func (b *VarTableBuilder) Build() *VarTable {
	vars := make([]*Variable, len(b.vars))
	copy(vars, b.vars)
	sort.Slice(vars, func(i, j int) bool { return vars[i].index < vars[j].index })
	byName := make(map[string]*Variable, len(vars))
	for _, v := range vars {
		byName[v.name] = v
	}
	return &VarTable{vars: vars, byName: byName}
}

// VarTable is the frozen set of variables a module defines.
type VarTable struct {
	vars   []*Variable
	byName map[string]*Variable
}

func (t *VarTable) LookupByName(name string) (*Variable, bool) {
	v, ok := t.byName[name]
	return v, ok
}

// LookupByIndex returns the variable whose slots include index.
func (t *VarTable) LookupByIndex(index int) (*Variable, bool) {
	i := sort.Search(len(t.vars), func(i int) bool { return t.vars[i].index+t.vars[i].length > index })
	if i < len(t.vars) && t.vars[i].index <= index {
		return t.vars[i], true
	}
	return nil, false
}

// Variables returns the variables ordered by index.
func (t *VarTable) Variables() []*Variable {
	out := make([]*Variable, len(t.vars))
	copy(out, t.vars)
	return out
}

// Size is the number of slots the table spans.
func (t *VarTable) Size() int {
	if len(t.vars) == 0 {
		return 0
	}
	last := t.vars[len(t.vars)-1]
	return last.index + last.length
}

// VarDecl is a declaration of a global defined elsewhere.
type VarDecl struct {
	Name   string
	Index  int
	Length int
	Pos    errors.Position
}

type VarDeclTableBuilder struct {
	decls  []*VarDecl
	byName map[string]*VarDecl
	byIdx  map[int]*VarDecl
}

func NewVarDeclTableBuilder() *VarDeclTableBuilder {
	return &VarDeclTableBuilder{
		byName: make(map[string]*VarDecl),
		byIdx:  make(map[int]*VarDecl),
	}
}

// DeclareVar records a global. Repeating an identical declaration is allowed, since
// headers reach a script along several include paths; any partial mismatch is not.
func (b *VarDeclTableBuilder) DeclareVar(name string, index, length int, pos errors.Position) error {
	if length < 1 {
		length = 1
	}
	byName, nameOK := b.byName[name]
	byIdx, idxOK := b.byIdx[index]
	if nameOK && idxOK && byName == byIdx && byName.Length == length {
		return nil
	}
	if nameOK {
		return errors.AlreadyExists(pos, "global %q already declared as [%d %d] at %s", name, byName.Index, byName.Length, byName.Pos)
	}
	if idxOK {
		return errors.AlreadyExists(pos, "global index %d already declared as %q at %s", index, byIdx.Name, byIdx.Pos)
	}
	d := &VarDecl{Name: name, Index: index, Length: length, Pos: pos}
	b.decls = append(b.decls, d)
	b.byName[name] = d
	b.byIdx[index] = d
	return nil
}

func (b *VarDeclTableBuilder) Build() *VarDeclTable {
	t := &VarDeclTable{
		byName: make(map[string]VarDecl, len(b.decls)),
		byIdx:  make(map[int]VarDecl, len(b.decls)),
	}
	for _, d := range b.decls {
		t.byName[d.Name] = *d
		t.byIdx[d.Index] = *d
	}
	return t
}

type VarDeclTable struct {
	byName map[string]VarDecl
	byIdx  map[int]VarDecl
}

func (t *VarDeclTable) LookupByName(name string) (VarDecl, bool) {
	d, ok := t.byName[name]
	return d, ok
}

func (t *VarDeclTable) LookupByIndex(index int) (VarDecl, bool) {
	d, ok := t.byIdx[index]
	return d, ok
}

// Decls returns the declarations ordered by index.
func (t *VarDeclTable) Decls() []VarDecl {
	out := make([]VarDecl, 0, len(t.byIdx))
	for _, d := range t.byIdx {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

func (t *VarDeclTable) Len() int { return len(t.byName) }
