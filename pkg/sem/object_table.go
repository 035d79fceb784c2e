package sem

import (
	"sort"

	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// ObjectDef is an instance definition: a leaf object of exactly one class.
type ObjectDef struct {
	Name       string
	Pos        errors.Position
	Script     ScriptNum
	Parent     string
	ParentPos  errors.Position
	Properties []PropertyInit
	Methods    []MethodDecl
}

// Object is a resolved instance. Its layout is its parent's layout with values
// overridden; objects never add properties.
type Object struct {
	name    string
	pos     errors.Position
	script  ScriptNum
	parent  *Class
	props   *PropertyList
	methods []Method
	label   *codegen.Label
}

func (o *Object) Name() string              { return o.name }
func (o *Object) Pos() errors.Position      { return o.pos }
func (o *Object) Script() ScriptNum         { return o.script }
func (o *Object) Parent() *Class            { return o.parent }
func (o *Object) Properties() *PropertyList { return o.props }

// Label is the code position of the object's definition, used to load its address.
func (o *Object) Label() *codegen.Label { return o.label }

func (o *Object) Methods() []Method {
	out := make([]Method, len(o.methods))
	copy(out, o.methods)
	return out
}

// ObjectTableBuilder resolves instances against a built class table.
type ObjectTableBuilder struct {
	classes   *ClassTable
	selectors *SelectorTable
	gen       codegen.Builder
	objects   []*Object
	byName    map[string]*Object
}

// NewObjectTableBuilder creates a builder that boxes object names and allocates object
// labels through gen.
func NewObjectTableBuilder(classes *ClassTable, selectors *SelectorTable, gen codegen.Builder) *ObjectTableBuilder {
	return &ObjectTableBuilder{
		classes:   classes,
		selectors: selectors,
		gen:       gen,
		byName:    make(map[string]*Object),
	}
}

func (b *ObjectTableBuilder) AddObject(d ObjectDef) error {
	if prev, ok := b.byName[d.Name]; ok {
		return errors.AlreadyExists(d.Pos, "object %q already defined at %s", d.Name, prev.pos)
	}
	parent, ok := b.classes.LookupByName(d.Parent)
	if !ok {
		return errors.NotFound(d.ParentPos, "class %q of object %q not found", d.Parent, d.Name)
	}

	props := parent.Properties().Clone()
	props.setValue(SelScript, codegen.Int(unresolved))
	props.setValue(SelName, b.gen.AddText(d.Name))
	props.setValue(SelSuper, codegen.Int(parent.Species()))
	props.setValue(SelInfo, codegen.Int(infoObject))

	if err := applyPropertyInits(b.selectors, props, d.Properties, false); err != nil {
		return err
	}
	methods, err := resolveMethods(b.selectors, d.Methods)
	if err != nil {
		return err
	}

	obj := &Object{
		name:    d.Name,
		pos:     d.Pos,
		script:  d.Script,
		parent:  parent,
		props:   props,
		methods: methods,
		label:   b.gen.NewLabel("obj:" + d.Name),
	}
	b.objects = append(b.objects, obj)
	b.byName[d.Name] = obj
	debugPrintf("[objects] %q of %q\n", d.Name, d.Parent)
	return nil
}

func (b *ObjectTableBuilder) Build() *ObjectTable {
	objects := make([]*Object, len(b.objects))
	copy(objects, b.objects)
	byName := make(map[string]*Object, len(objects))
	for _, o := range objects {
		byName[o.name] = o
	}
	return &ObjectTable{objects: objects, byName: byName}
}

// ObjectTable is the frozen set of a module's instances.
type ObjectTable struct {
	objects []*Object
	byName  map[string]*Object
}

func (t *ObjectTable) LookupByName(name string) (*Object, bool) {
	o, ok := t.byName[name]
	return o, ok
}

// Objects returns the objects in definition order.
func (t *ObjectTable) Objects() []*Object {
	out := make([]*Object, len(t.objects))
	copy(out, t.objects)
	return out
}

// Names returns the object names sorted.
func (t *ObjectTable) Names() []string {
	names := make([]string, 0, len(t.byName))
	for n := range t.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
