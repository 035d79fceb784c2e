package sem

import (
	"github.com/naerbnic/sci-compiler-sub002/pkg/ast"
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/config"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// Module is the parsed item set of one script.
type Module struct {
	Name  string // Used for diagnostics and builder naming
	Items []ast.Item
}

// BuilderFactory creates the code builder a module's labels, texts and bodies go to.
type BuilderFactory func(name string, script ScriptNum) codegen.Builder

// Options configures BuildCompilationEnvironment.
type Options struct {
	Profile    *config.Profile // nil means config.Default()
	NewBuilder BuilderFactory  // nil means a codegen.Chunk per module
}

// GlobalEnvironment holds the program-wide tables shared by every module.
type GlobalEnvironment struct {
	Profile   *config.Profile
	Selectors *SelectorTable
	Classes   *ClassTable
	Globals   *VarDeclTable      // Globals visible to every module
	Externs   *ExternTable       // Program-wide externs and kernel functions
	Texts     *codegen.TextTable // Boxed class names and class property strings
}

// ModuleEnvironment holds the tables of one script.
type ModuleEnvironment struct {
	Global *GlobalEnvironment

	Name       string
	Script     ScriptNum
	Objects    *ObjectTable
	Procs      *ProcTable
	Publics    *PublicTable
	Locals     *VarTable
	GlobalDefs *VarTable    // Globals this script defines storage for
	Externs    *ExternTable // Global externs plus this script's own
	Gen        codegen.Builder

	procDefs  []*ast.ProcDef
	classDefs []*ast.ClassDefItem
}

// ProcDefs returns the procedure bodies of the module in source order.
func (m *ModuleEnvironment) ProcDefs() []*ast.ProcDef {
	out := make([]*ast.ProcDef, len(m.procDefs))
	copy(out, m.procDefs)
	return out
}

// ClassDefs returns the class and instance definitions of the module in source order.
func (m *ModuleEnvironment) ClassDefs() []*ast.ClassDefItem {
	out := make([]*ast.ClassDefItem, len(m.classDefs))
	copy(out, m.classDefs)
	return out
}

// CompilationEnvironment is the resolved form of a whole program.
type CompilationEnvironment struct {
	Global  *GlobalEnvironment
	Modules []*ModuleEnvironment
}

// LookupModule finds a module by script number.
func (c *CompilationEnvironment) LookupModule(script ScriptNum) (*ModuleEnvironment, bool) {
	for _, m := range c.Modules {
		if m.Script == script {
			return m, true
		}
	}
	return nil, false
}

// BuildCompilationEnvironment resolves globals, the items shared by every script, and
// then each module. Selector and species numbering is done once over all of them so
// it agrees across modules. The first failure stops the build.
func BuildCompilationEnvironment(globals []ast.Item, modules []Module, opts Options) (*CompilationEnvironment, error) {
	profile := opts.Profile
	if profile == nil {
		profile = config.Default()
	}
	if err := profile.Validate(); err != nil {
		return nil, errors.InvalidArgument(errors.Position{}, "bad profile: %s", err).CausedBy(err)
	}
	newBuilder := opts.NewBuilder
	if newBuilder == nil {
		newBuilder = func(name string, _ ScriptNum) codegen.Builder { return codegen.NewChunk(name) }
	}

	for _, item := range globals {
		switch item.(type) {
		case *ast.SelectorsItem, *ast.ClassDeclItem, *ast.ExternItem, *ast.GlobalDeclItem:
		default:
			return nil, errors.InvalidArgument(item.Pos(), "%T is only allowed inside a script", item)
		}
	}

	scripts := make([]ScriptNum, len(modules))
	seenScripts := make(map[ScriptNum]string, len(modules))
	for i, m := range modules {
		num, err := scriptNumber(m)
		if err != nil {
			return nil, err
		}
		if prev, ok := seenScripts[num]; ok {
			return nil, errors.AlreadyExists(errors.Position{}, "script %d used by both %q and %q", num, prev, m.Name)
		}
		seenScripts[num] = m.Name
		scripts[i] = num
	}

	global, err := buildGlobalEnvironment(globals, modules, scripts, profile)
	if err != nil {
		return nil, err
	}

	env := &CompilationEnvironment{Global: global}
	for i, m := range modules {
		gen := newBuilder(m.Name, scripts[i])
		menv, err := buildModuleEnvironment(global, m, scripts[i], gen)
		if err != nil {
			return nil, err
		}
		env.Modules = append(env.Modules, menv)
	}
	return env, nil
}

func scriptNumber(m Module) (ScriptNum, error) {
	var found *ast.ScriptNumItem
	for _, item := range m.Items {
		sn, ok := item.(*ast.ScriptNumItem)
		if !ok {
			continue
		}
		if found != nil {
			return 0, errors.InvalidArgument(sn.Loc, "script %q has a second script number (first at %s)", m.Name, found.Loc)
		}
		found = sn
	}
	if found == nil {
		return 0, errors.InvalidArgument(errors.Position{}, "script %q has no script number", m.Name)
	}
	return ScriptNum(found.Num), nil
}

// allItems walks globals and then every module, passing the owning script
// (unresolved for globals).
func allItems(globals []ast.Item, modules []Module, scripts []ScriptNum, fn func(item ast.Item, script ScriptNum) error) error {
	for _, item := range globals {
		if err := fn(item, unresolved); err != nil {
			return err
		}
	}
	for i, m := range modules {
		for _, item := range m.Items {
			if err := fn(item, scripts[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildGlobalEnvironment(globals []ast.Item, modules []Module, scripts []ScriptNum, profile *config.Profile) (*GlobalEnvironment, error) {
	selectors, err := buildSelectors(globals, modules, scripts, profile)
	if err != nil {
		return nil, err
	}

	texts := codegen.NewTextTable()
	classes := NewClassTableBuilder(selectors, texts)
	varDecls := NewVarDeclTableBuilder()
	externs := NewExternTableBuilder()

	for i, name := range profile.Kernels {
		if name == "" {
			continue
		}
		if err := externs.AddExtern(name, KernelScript, i, errors.Position{}); err != nil {
			return nil, err
		}
	}

	err = allItems(globals, modules, scripts, func(item ast.Item, script ScriptNum) error {
		switch item := item.(type) {
		case *ast.ClassDeclItem:
			var super *ClassSpecies
			if item.SuperSpecies != nil {
				s := ClassSpecies(*item.SuperSpecies)
				super = &s
			}
			classes.AddClassDecl(ClassDecl{
				Name:         item.Name.Value,
				Pos:          item.Loc,
				Script:       ScriptNum(item.Script),
				Species:      ClassSpecies(item.Species),
				SuperSpecies: super,
				Properties:   propertyInits(item.Properties, texts),
				Methods:      methodNames(item.Methods),
			})
		case *ast.ClassDefItem:
			if item.Kind != ast.KindClass {
				return nil
			}
			def := ClassDef{
				Name:       item.Name.Value,
				Pos:        item.Loc,
				Script:     script,
				Properties: propertyInits(item.Properties, texts),
				Methods:    methodDecls(item.Methods),
			}
			if item.Super != nil {
				name := item.Super.Value
				def.Super = &name
				def.SuperPos = item.Super.Loc
			}
			classes.AddClassDef(def)
		case *ast.GlobalDeclItem:
			for _, v := range item.Entries {
				if err := varDecls.DeclareVar(v.Name.Value, v.Index, v.Size(), v.Name.Loc); err != nil {
					return err
				}
			}
		case *ast.VarDefItem:
			if item.Scope != ast.ScopeGlobal {
				return nil
			}
			for _, v := range item.Entries {
				if err := varDecls.DeclareVar(v.Name.Value, v.Index, v.Size(), v.Name.Loc); err != nil {
					return err
				}
			}
		case *ast.ExternItem:
			// Externs inside a script stay local to it.
			if script != unresolved {
				return nil
			}
			for _, e := range item.Entries {
				if err := externs.AddExtern(e.Name.Value, ScriptNum(e.Script), e.Index, e.Name.Loc); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	classTable, err := classes.Build()
	if err != nil {
		return nil, err
	}
	if profile.StrictClassDecls {
		if err := classTable.CheckDeclaredLayouts(); err != nil {
			return nil, err
		}
	}
	debugPrintf("[env] global: %d selectors, %d classes\n", selectors.Len(), len(classTable.Classes()))

	return &GlobalEnvironment{
		Profile:   profile,
		Selectors: selectors,
		Classes:   classTable,
		Globals:   varDecls.Build(),
		Externs:   externs.Build(),
		Texts:     texts,
	}, nil
}

// buildSelectors declares every explicitly numbered selector first, so a later
// mention of the same name never queues it, and then queues the property and
// method names of class declarations and definitions.
func buildSelectors(globals []ast.Item, modules []Module, scripts []ScriptNum, profile *config.Profile) (*SelectorTable, error) {
	b := NewSelectorTableBuilder()
	b.SetMaxSelector(profile.MaxSelector)

	err := allItems(globals, modules, scripts, func(item ast.Item, _ ScriptNum) error {
		if sels, ok := item.(*ast.SelectorsItem); ok {
			for _, e := range sels.Entries {
				if err := b.DeclareSelector(e.Name.Value, SelectorNum(e.Num), e.Name.Loc); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	AddSystemSelectors(b)

	err = allItems(globals, modules, scripts, func(item ast.Item, _ ScriptNum) error {
		switch item := item.(type) {
		case *ast.ClassDeclItem:
			for _, p := range item.Properties {
				b.AddNewSelector(p.Name.Value, p.Name.Loc)
			}
			for _, m := range item.Methods {
				b.AddNewSelector(m.Value, m.Loc)
			}
		case *ast.ClassDefItem:
			// Instances can only override inherited properties, so their names are
			// never new selectors.
			if item.Kind == ast.KindClass {
				for _, p := range item.Properties {
					b.AddNewSelector(p.Name.Value, p.Name.Loc)
				}
			}
			for _, m := range item.Methods {
				b.AddNewSelector(m.Name.Value, m.Name.Loc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.Build()
}

func buildModuleEnvironment(global *GlobalEnvironment, m Module, script ScriptNum, gen codegen.Builder) (*ModuleEnvironment, error) {
	objects := NewObjectTableBuilder(global.Classes, global.Selectors, gen)
	procs := NewProcTableBuilder(gen)
	locals := NewVarTableBuilder()
	globalDefs := NewVarTableBuilder()
	externs := NewExternTableBuilder()
	if err := externs.AddAll(global.Externs); err != nil {
		return nil, err
	}

	menv := &ModuleEnvironment{Global: global, Name: m.Name, Script: script, Gen: gen}
	var publics []*ast.PublicItem

	for _, item := range m.Items {
		switch item := item.(type) {
		case *ast.ClassDefItem:
			menv.classDefs = append(menv.classDefs, item)
			if item.Kind != ast.KindInstance {
				continue
			}
			if item.Super == nil {
				return nil, errors.InvalidArgument(item.Loc, "instance %q has no class", item.Name.Value)
			}
			err := objects.AddObject(ObjectDef{
				Name:       item.Name.Value,
				Pos:        item.Loc,
				Script:     script,
				Parent:     item.Super.Value,
				ParentPos:  item.Super.Loc,
				Properties: propertyInits(item.Properties, gen),
				Methods:    methodDecls(item.Methods),
			})
			if err != nil {
				return nil, err
			}
		case *ast.ProcDefItem:
			if err := procs.AddProcedure(item.Proc.Name.Value, item.Proc.Name.Loc); err != nil {
				return nil, err
			}
			menv.procDefs = append(menv.procDefs, item.Proc)
		case *ast.VarDefItem:
			for _, v := range item.Entries {
				init := literalValues(v.Init, gen)
				var err error
				if item.Scope == ast.ScopeLocal {
					err = locals.AddVar(v.Name.Value, locals.NextIndex(), v.Size(), init, v.Name.Loc)
				} else {
					err = globalDefs.AddVar(v.Name.Value, v.Index, v.Size(), init, v.Name.Loc)
				}
				if err != nil {
					return nil, err
				}
			}
		case *ast.ExternItem:
			for _, e := range item.Entries {
				if err := externs.AddExtern(e.Name.Value, ScriptNum(e.Script), e.Index, e.Name.Loc); err != nil {
					return nil, err
				}
			}
		case *ast.PublicItem:
			publics = append(publics, item)
		}
	}

	menv.Objects = objects.Build()
	menv.Procs = procs.Build()
	menv.Locals = locals.Build()
	menv.GlobalDefs = globalDefs.Build()
	menv.Externs = externs.Build()

	pubs := NewPublicTableBuilder()
	for _, item := range publics {
		for _, e := range item.Entries {
			if err := menv.addPublic(pubs, e); err != nil {
				return nil, err
			}
		}
	}
	menv.Publics = pubs.Build()

	debugPrintf("[env] script %d %q: %d objects, %d procedures, %d publics\n",
		script, m.Name, len(menv.Objects.objects), len(menv.Procs.procs), len(menv.Publics.entries))
	return menv, nil
}

// addPublic resolves an export name to exactly one procedure, object, or class of
// this script.
func (m *ModuleEnvironment) addPublic(b *PublicTableBuilder, e ast.PublicEntry) error {
	var candidates []PublicValue
	if p, ok := m.Procs.LookupByName(e.Name.Value); ok {
		candidates = append(candidates, p)
	}
	if o, ok := m.Objects.LookupByName(e.Name.Value); ok {
		candidates = append(candidates, o)
	}
	if c, ok := m.Global.Classes.LookupByName(e.Name.Value); ok && c.IsDefined() && c.Script() == m.Script {
		candidates = append(candidates, c)
	}

	switch len(candidates) {
	case 0:
		return errors.NotFound(e.Name.Loc, "public %q is not a procedure, object or class of script %d", e.Name.Value, m.Script)
	case 1:
	default:
		return errors.InvalidArgument(e.Name.Loc, "public %q is ambiguous", e.Name.Value)
	}

	switch v := candidates[0].(type) {
	case *Procedure:
		return b.AddProcedure(e.Index, v, e.Name.Loc)
	case *Object:
		return b.AddObject(e.Index, v, e.Name.Loc)
	case *Class:
		return b.AddClass(e.Index, v, e.Name.Loc)
	}
	return nil
}

// LiteralValue converts a parsed literal, boxing strings into texts.
func LiteralValue(v ast.Value, texts codegen.TextPool) codegen.LiteralValue {
	switch v := v.(type) {
	case *ast.NumberValue:
		return codegen.Int(v.Value)
	case *ast.StringValue:
		return texts.AddText(v.Value)
	}
	panic("unexpected literal value")
}

func literalValues(vs []ast.Value, texts codegen.TextPool) []codegen.LiteralValue {
	out := make([]codegen.LiteralValue, len(vs))
	for i, v := range vs {
		out[i] = LiteralValue(v, texts)
	}
	return out
}

func propertyInits(props []ast.PropertyDef, texts codegen.TextPool) []PropertyInit {
	out := make([]PropertyInit, len(props))
	for i, p := range props {
		out[i] = PropertyInit{Name: p.Name.Value, Value: LiteralValue(p.Value, texts), Pos: p.Name.Loc}
	}
	return out
}

func methodNames(names []ast.Name) []MethodDecl {
	out := make([]MethodDecl, len(names))
	for i, n := range names {
		out[i] = MethodDecl{Name: n.Value, Pos: n.Loc}
	}
	return out
}

func methodDecls(procs []*ast.ProcDef) []MethodDecl {
	out := make([]MethodDecl, len(procs))
	for i, p := range procs {
		out[i] = MethodDecl{Name: p.Name.Value, Pos: p.Name.Loc}
	}
	return out
}
