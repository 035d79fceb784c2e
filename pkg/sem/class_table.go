package sem

import (
	"sort"

	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// ClassSpecies is the number of a class. It is a namespace distinct from selectors.
type ClassSpecies int

// ScriptNum identifies a module.
type ScriptNum int

// Values stamped into the fixed slots.
const (
	objIDMagic = 0x1234
	noSuper    = 0xFFFF
	infoClass  = 0x8000
	infoObject = 0x0000
	unresolved = 0xFFFF
)

// PropertyInit sets a property's initial value in a class or object body.
type PropertyInit struct {
	Name  string
	Value codegen.LiteralValue
	Pos   errors.Position
}

// MethodDecl names a method implemented by a class or object.
type MethodDecl struct {
	Name string
	Pos  errors.Position
}

// Method is a resolved method name. Bodies are compiled separately.
type Method struct {
	Name     string
	Selector *Selector
}

// ClassDecl is a forward declaration with a fixed species.
type ClassDecl struct {
	Name         string
	Pos          errors.Position
	Script       ScriptNum
	Species      ClassSpecies
	SuperSpecies *ClassSpecies
	Properties   []PropertyInit
	Methods      []MethodDecl
}

// ClassDef is a full definition; its super class is named rather than numbered.
type ClassDef struct {
	Name       string
	Pos        errors.Position
	Script     ScriptNum
	Super      *string
	SuperPos   errors.Position
	Properties []PropertyInit
	Methods    []MethodDecl
}

// Class is a resolved class. Its property list starts with the nine fixed slots
// followed by inherited and then own properties.
type Class struct {
	name    string
	pos     errors.Position
	script  ScriptNum
	species ClassSpecies
	super   *Class
	decl    *Class
	defined bool
	props   *PropertyList
	methods []Method
}

func (c *Class) Name() string              { return c.name }
func (c *Class) Pos() errors.Position      { return c.pos }
func (c *Class) Script() ScriptNum         { return c.script }
func (c *Class) Species() ClassSpecies     { return c.species }
func (c *Class) Properties() *PropertyList { return c.props }
func (c *Class) PriorDeclaration() *Class  { return c.decl }

// Super returns the super class, or nil for a root class.
func (c *Class) Super() *Class { return c.super }

// IsDefined reports whether the class came from a definition rather than a
// carried-over declaration.
func (c *Class) IsDefined() bool { return c.defined }

// Methods returns the class's own methods in declaration order.
func (c *Class) Methods() []Method {
	out := make([]Method, len(c.methods))
	copy(out, c.methods)
	return out
}

// LookupMethod finds a method implemented by this class or an ancestor.
func (c *Class) LookupMethod(name string) (Method, *Class, bool) {
	for cls := c; cls != nil; cls = cls.super {
		for _, m := range cls.methods {
			if m.Name == name {
				return m, cls, true
			}
		}
	}
	return Method{}, nil, false
}

// classSpec is one class awaiting resolution within a layer.
type classSpec struct {
	name         string
	pos          errors.Position
	script       ScriptNum
	species      ClassSpecies
	superSpecies *ClassSpecies
	superName    *string
	superPos     errors.Position
	props        []PropertyInit
	methods      []MethodDecl
	decl         *Class
	defined      bool
}

// ClassTableBuilder accumulates declarations and definitions for one program.
type ClassTableBuilder struct {
	selectors *SelectorTable
	texts     codegen.TextPool
	decls     []*classSpec
	defs      []*classSpec
}

// NewClassTableBuilder creates a builder resolving selectors against selectors and
// boxing class names into texts.
func NewClassTableBuilder(selectors *SelectorTable, texts codegen.TextPool) *ClassTableBuilder {
	return &ClassTableBuilder{selectors: selectors, texts: texts}
}

func (b *ClassTableBuilder) AddClassDecl(d ClassDecl) {
	b.decls = append(b.decls, &classSpec{
		name:         d.Name,
		pos:          d.Pos,
		script:       d.Script,
		species:      d.Species,
		superSpecies: d.SuperSpecies,
		props:        d.Properties,
		methods:      d.Methods,
	})
}

func (b *ClassTableBuilder) AddClassDef(d ClassDef) {
	b.defs = append(b.defs, &classSpec{
		name:      d.Name,
		pos:       d.Pos,
		script:    d.Script,
		species:   -1,
		superName: d.Super,
		superPos:  d.SuperPos,
		props:     d.Properties,
		methods:   d.Methods,
		defined:   true,
	})
}

// Build resolves the declaration layer, then the definition layer on top of it.
func (b *ClassTableBuilder) Build() (*ClassTable, error) {
	declLayer, err := b.resolveLayer(b.decls)
	if err != nil {
		return nil, err
	}

	used := make(map[ClassSpecies]bool, len(declLayer.classes))
	for _, c := range declLayer.classes {
		used[c.species] = true
	}

	defNames := make(map[string]bool, len(b.defs))
	var specs []*classSpec
	next := ClassSpecies(0)
	for _, d := range b.defs {
		spec := *d
		if prior, ok := declLayer.byName[d.name]; ok {
			spec.species = prior.species
			spec.decl = prior
		} else {
			for used[next] {
				next++
			}
			spec.species = next
			used[next] = true
		}
		defNames[d.name] = true
		specs = append(specs, &spec)
	}
	for _, decl := range b.decls {
		if defNames[decl.name] {
			continue
		}
		spec := *decl
		spec.decl = declLayer.byName[decl.name]
		specs = append(specs, &spec)
	}

	defLayer, err := b.resolveLayer(specs)
	if err != nil {
		return nil, err
	}
	return &ClassTable{decl: declLayer, def: defLayer}, nil
}

// resolveLayer indexes specs, links supers, and resolves property lists supers-first.
func (b *ClassTableBuilder) resolveLayer(specs []*classSpec) (*classLayer, error) {
	nameIdx := make(map[string]int, len(specs))
	speciesIdx := make(map[ClassSpecies]int, len(specs))
	for i, s := range specs {
		if prev, ok := nameIdx[s.name]; ok {
			return nil, errors.AlreadyExists(s.pos, "class %q already defined at %s", s.name, specs[prev].pos)
		}
		if prev, ok := speciesIdx[s.species]; ok {
			return nil, errors.AlreadyExists(s.pos, "class species %d of %q already used by %q", s.species, s.name, specs[prev].name)
		}
		nameIdx[s.name] = i
		speciesIdx[s.species] = i
	}

	// Supers are linked only after every class is indexed, so input order is free.
	supers := make([]int, len(specs))
	for i, s := range specs {
		supers[i] = -1
		switch {
		case s.superSpecies != nil:
			idx, ok := speciesIdx[*s.superSpecies]
			if !ok {
				return nil, errors.NotFound(s.pos, "super class species %d of %q not found", *s.superSpecies, s.name)
			}
			supers[i] = idx
		case s.superName != nil:
			idx, ok := nameIdx[*s.superName]
			if !ok {
				return nil, errors.NotFound(s.superPos, "super class %q of %q not found", *s.superName, s.name)
			}
			supers[i] = idx
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(specs))
	classes := make([]*Class, len(specs))

	var resolve func(i int) error
	resolve = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return errors.InvalidArgument(specs[i].pos, "class %q is its own ancestor", specs[i].name)
		}
		state[i] = visiting
		var super *Class
		if supers[i] >= 0 {
			if err := resolve(supers[i]); err != nil {
				return err
			}
			super = classes[supers[i]]
		}
		cls, err := b.resolveClass(specs[i], super)
		if err != nil {
			return err
		}
		classes[i] = cls
		state[i] = done
		return nil
	}

	for i := range specs {
		if err := resolve(i); err != nil {
			return nil, err
		}
	}

	layer := &classLayer{
		classes:   classes,
		byName:    make(map[string]*Class, len(classes)),
		bySpecies: make(map[ClassSpecies]*Class, len(classes)),
	}
	for _, c := range classes {
		layer.byName[c.name] = c
		layer.bySpecies[c.species] = c
	}
	return layer, nil
}

func (b *ClassTableBuilder) resolveClass(s *classSpec, super *Class) (*Class, error) {
	var props *PropertyList
	if super == nil {
		seeded, err := seedFixedSlots(b.selectors, s.pos)
		if err != nil {
			return nil, err
		}
		props = seeded
	} else {
		props = super.props.Clone()
	}

	// The name slot defaults to the class name; an explicit name property wins.
	props.setValue(SelName, b.texts.AddText(s.name))

	if err := applyPropertyInits(b.selectors, props, s.props, true); err != nil {
		return nil, err
	}
	methods, err := resolveMethods(b.selectors, s.methods)
	if err != nil {
		return nil, err
	}

	superSpecies := codegen.Int(noSuper)
	if super != nil {
		superSpecies = codegen.Int(super.species)
	}
	props.setValue(SelObjID, codegen.Int(objIDMagic))
	props.setValue(SelSize, codegen.Int(props.Len()))
	props.setValue(SelClassScript, codegen.Int(s.script))
	props.setValue(SelScript, codegen.Int(s.species))
	props.setValue(SelSuper, superSpecies)
	props.setValue(SelInfo, codegen.Int(infoClass))

	debugPrintf("[classes] resolved %q species=%d props=%d\n", s.name, s.species, props.Len())
	return &Class{
		name:    s.name,
		pos:     s.pos,
		script:  s.script,
		species: s.species,
		super:   super,
		decl:    s.decl,
		defined: s.defined,
		props:   props,
		methods: methods,
	}, nil
}

// seedFixedSlots builds the nine-slot layout every root class starts with.
func seedFixedSlots(selectors *SelectorTable, pos errors.Position) (*PropertyList, error) {
	pl := NewPropertyList()
	for _, name := range SystemSelectors {
		sel, err := selectors.lookup(name, pos)
		if err != nil {
			return nil, err
		}
		pl.UpdatePropertyDef(name, sel, codegen.Int(0))
	}
	return pl, nil
}

// applyPropertyInits applies inits in order. When allowNew is false every init
// must name a property already present.
func applyPropertyInits(selectors *SelectorTable, props *PropertyList, inits []PropertyInit, allowNew bool) error {
	for _, p := range inits {
		if _, ok := props.LookupByName(p.Name); !ok && !allowNew {
			return errors.InvalidArgument(p.Pos, "%q is not a property of the parent class", p.Name)
		}
		sel, err := selectors.lookup(p.Name, p.Pos)
		if err != nil {
			return err
		}
		props.UpdatePropertyDef(p.Name, sel, p.Value)
	}
	return nil
}

func resolveMethods(selectors *SelectorTable, decls []MethodDecl) ([]Method, error) {
	methods := make([]Method, 0, len(decls))
	seen := make(map[string]bool, len(decls))
	for _, m := range decls {
		if seen[m.Name] {
			return nil, errors.AlreadyExists(m.Pos, "method %q defined twice", m.Name)
		}
		seen[m.Name] = true
		sel, err := selectors.lookup(m.Name, m.Pos)
		if err != nil {
			return nil, err
		}
		methods = append(methods, Method{Name: m.Name, Selector: sel})
	}
	return methods, nil
}

type classLayer struct {
	classes   []*Class
	byName    map[string]*Class
	bySpecies map[ClassSpecies]*Class
}

func (l *classLayer) sorted() []*Class {
	out := make([]*Class, len(l.classes))
	copy(out, l.classes)
	sort.Slice(out, func(i, j int) bool { return out[i].species < out[j].species })
	return out
}

// ClassTable holds the two resolved views of the class hierarchy: the declared
// contract (decl layer) and the final program (def layer).
type ClassTable struct {
	decl *classLayer
	def  *classLayer
}

func (t *ClassTable) LookupByName(name string) (*Class, bool) {
	c, ok := t.def.byName[name]
	return c, ok
}

func (t *ClassTable) LookupBySpecies(species ClassSpecies) (*Class, bool) {
	c, ok := t.def.bySpecies[species]
	return c, ok
}

func (t *ClassTable) LookupDeclByName(name string) (*Class, bool) {
	c, ok := t.decl.byName[name]
	return c, ok
}

func (t *ClassTable) LookupDeclBySpecies(species ClassSpecies) (*Class, bool) {
	c, ok := t.decl.bySpecies[species]
	return c, ok
}

// Classes returns the def layer ordered by species.
func (t *ClassTable) Classes() []*Class { return t.def.sorted() }

// DeclaredClasses returns the decl layer ordered by species.
func (t *ClassTable) DeclaredClasses() []*Class { return t.decl.sorted() }

// CheckDeclaredLayouts verifies that every defined class with a forward declaration
// keeps the declared property layout, so code compiled against the declaration
// still addresses the right slots.
func (t *ClassTable) CheckDeclaredLayouts() error {
	for _, c := range t.def.sorted() {
		if !c.defined || c.decl == nil {
			continue
		}
		declared := c.decl.props.Entries()
		defined := c.props.Entries()
		if len(declared) != len(defined) {
			return errors.InvalidArgument(c.pos, "class %q has %d properties but its declaration has %d",
				c.name, len(defined), len(declared))
		}
		for i := range declared {
			if declared[i].Name != defined[i].Name {
				return errors.InvalidArgument(c.pos, "class %q property %d is %q but its declaration has %q",
					c.name, i, defined[i].Name, declared[i].Name)
			}
		}
		if (c.super == nil) != (c.decl.super == nil) ||
			(c.super != nil && c.super.species != c.decl.super.species) {
			return errors.InvalidArgument(c.pos, "class %q changes the super class of its declaration", c.name)
		}
	}
	return nil
}
