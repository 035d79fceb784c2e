package ast

import (
	"fmt"
	"strings"

	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// Item is a top-level form of a script or header.
type Item interface {
	Node
	itemNode()
}

// ScriptNumItem is `(script# n)`; every module carries exactly one.
type ScriptNumItem struct {
	Num int
	Loc errors.Position
}

func (i *ScriptNumItem) Pos() errors.Position { return i.Loc }
func (i *ScriptNumItem) String() string       { return fmt.Sprintf("(script# %d)", i.Num) }
func (i *ScriptNumItem) itemNode()            {}

type SelectorEntry struct {
	Name Name
	Num  int
}

// SelectorsItem is `(selectors name num ...)`, the program-wide selector vocabulary.
type SelectorsItem struct {
	Entries []SelectorEntry
	Loc     errors.Position
}

func (i *SelectorsItem) Pos() errors.Position { return i.Loc }
func (i *SelectorsItem) String() string {
	var b strings.Builder
	b.WriteString("(selectors")
	for _, e := range i.Entries {
		fmt.Fprintf(&b, " %s %d", e.Name, e.Num)
	}
	b.WriteString(")")
	return b.String()
}
func (i *SelectorsItem) itemNode() {}

// PropertyDef is one `name value` pair of a properties block.
type PropertyDef struct {
	Name  Name
	Value Value
}

func (p PropertyDef) String() string { return p.Name.Value + " " + p.Value.String() }

// ClassDeclItem is a forward declaration from a class header:
// `(classdef Name script# s class# species super# super (properties ...) (methods ...))`.
type ClassDeclItem struct {
	Name         Name
	Script       int
	Species      int
	SuperSpecies *int // nil for a root class
	Properties   []PropertyDef
	Methods      []Name
	Loc          errors.Position
}

func (i *ClassDeclItem) Pos() errors.Position { return i.Loc }
func (i *ClassDeclItem) String() string {
	super := -1
	if i.SuperSpecies != nil {
		super = *i.SuperSpecies
	}
	return fmt.Sprintf("(classdef %s script# %d class# %d super# %d (properties %s) (methods %s))",
		i.Name, i.Script, i.Species, super, joinNodes(i.Properties), joinNodes(i.Methods))
}
func (i *ClassDeclItem) itemNode() {}

type ClassKind int

const (
	KindClass    ClassKind = iota // (class Name of Super ...)
	KindInstance                  // (instance name of Class ...)
)

// ClassDefItem is a full class or instance definition with method bodies.
type ClassDefItem struct {
	Kind       ClassKind
	Name       Name
	Super      *Name // required for instances
	Properties []PropertyDef
	Methods    []*ProcDef
	Loc        errors.Position
}

func (i *ClassDefItem) Pos() errors.Position { return i.Loc }
func (i *ClassDefItem) String() string {
	kw := "class"
	if i.Kind == KindInstance {
		kw = "instance"
	}
	of := ""
	if i.Super != nil {
		of = " of " + i.Super.Value
	}
	return fmt.Sprintf("(%s %s%s (properties %s) %s)", kw, i.Name, of, joinNodes(i.Properties), joinNodes(i.Methods))
}
func (i *ClassDefItem) itemNode() {}

// VarDef names a variable slot, optionally an array, with optional initial values.
// Index is only meaningful for globals; locals and temps are laid out in order.
type VarDef struct {
	Name   Name
	Index  int
	Length int // 0 or 1 for a scalar
	Init   []Value
}

func (v VarDef) Size() int {
	if v.Length < 1 {
		return 1
	}
	return v.Length
}

func (v VarDef) String() string {
	if v.Size() > 1 {
		return fmt.Sprintf("[%s %d]", v.Name, v.Length)
	}
	return v.Name.Value
}

// ProcDef is a procedure or method: `(procedure (Name p1 p2 &tmp t1 [t2 5]) body...)`.
type ProcDef struct {
	Name   Name
	Params []Name
	Temps  []VarDef
	Body   []Expr
	Loc    errors.Position
}

func (p *ProcDef) Pos() errors.Position { return p.Loc }
func (p *ProcDef) String() string {
	return fmt.Sprintf("(%s %s &tmp %s) %s", p.Name, joinNodes(p.Params), joinNodes(p.Temps), joinNodes(p.Body))
}

type ProcDefItem struct {
	Proc *ProcDef
	Loc  errors.Position
}

func (i *ProcDefItem) Pos() errors.Position { return i.Loc }
func (i *ProcDefItem) String() string       { return "(procedure " + i.Proc.String() + ")" }
func (i *ProcDefItem) itemNode()            {}

type PublicEntry struct {
	Name  Name
	Index int
}

// PublicItem is `(public name index ...)`, the module's export list.
type PublicItem struct {
	Entries []PublicEntry
	Loc     errors.Position
}

func (i *PublicItem) Pos() errors.Position { return i.Loc }
func (i *PublicItem) String() string {
	var b strings.Builder
	b.WriteString("(public")
	for _, e := range i.Entries {
		fmt.Fprintf(&b, " %s %d", e.Name, e.Index)
	}
	b.WriteString(")")
	return b.String()
}
func (i *PublicItem) itemNode() {}

type ExternEntry struct {
	Name   Name
	Script int // KernelScript for kernel functions
	Index  int
}

// ExternItem is `(extern name script index ...)`.
type ExternItem struct {
	Entries []ExternEntry
	Loc     errors.Position
}

func (i *ExternItem) Pos() errors.Position { return i.Loc }
func (i *ExternItem) String() string {
	var b strings.Builder
	b.WriteString("(extern")
	for _, e := range i.Entries {
		fmt.Fprintf(&b, " %s %d %d", e.Name, e.Script, e.Index)
	}
	b.WriteString(")")
	return b.String()
}
func (i *ExternItem) itemNode() {}

// GlobalDeclItem is `(globaldecl name index [arr n] index ...)`: a reference to
// globals defined elsewhere.
type GlobalDeclItem struct {
	Entries []VarDef
	Loc     errors.Position
}

func (i *GlobalDeclItem) Pos() errors.Position { return i.Loc }
func (i *GlobalDeclItem) String() string       { return "(globaldecl " + joinNodes(i.Entries) + ")" }
func (i *GlobalDeclItem) itemNode()            {}

type VarScope int

const (
	ScopeLocal VarScope = iota
	ScopeGlobal
)

// VarDefItem is `(local ...)` or `(global ...)`: variables defined by this module.
type VarDefItem struct {
	Scope   VarScope
	Entries []VarDef
	Loc     errors.Position
}

func (i *VarDefItem) Pos() errors.Position { return i.Loc }
func (i *VarDefItem) String() string {
	kw := "local"
	if i.Scope == ScopeGlobal {
		kw = "global"
	}
	return "(" + kw + " " + joinNodes(i.Entries) + ")"
}
func (i *VarDefItem) itemNode() {}
