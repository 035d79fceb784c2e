package sem

import (
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// Procedure is a module-local procedure.
type Procedure struct {
	name  string
	pos   errors.Position
	index int
	label *codegen.Label
}

func (p *Procedure) Name() string          { return p.name }
func (p *Procedure) Pos() errors.Position  { return p.pos }
func (p *Procedure) Index() int            { return p.index }
func (p *Procedure) Label() *codegen.Label { return p.label }

type ProcTableBuilder struct {
	gen    codegen.Builder
	procs  []*Procedure
	byName map[string]*Procedure
}

func NewProcTableBuilder(gen codegen.Builder) *ProcTableBuilder {
	return &ProcTableBuilder{gen: gen, byName: make(map[string]*Procedure)}
}

func (b *ProcTableBuilder) AddProcedure(name string, pos errors.Position) error {
	if prev, ok := b.byName[name]; ok {
		return errors.AlreadyExists(pos, "procedure %q already defined at %s", name, prev.pos)
	}
	p := &Procedure{
		name:  name,
		pos:   pos,
		index: len(b.procs),
		label: b.gen.NewLabel("proc:" + name),
	}
	b.procs = append(b.procs, p)
	b.byName[name] = p
	return nil
}

func (b *ProcTableBuilder) Build() *ProcTable {
	procs := make([]*Procedure, len(b.procs))
	copy(procs, b.procs)
	byName := make(map[string]*Procedure, len(procs))
	for _, p := range procs {
		byName[p.name] = p
	}
	return &ProcTable{procs: procs, byName: byName}
}

type ProcTable struct {
	procs  []*Procedure
	byName map[string]*Procedure
}

func (t *ProcTable) LookupByName(name string) (*Procedure, bool) {
	p, ok := t.byName[name]
	return p, ok
}

func (t *ProcTable) LookupByIndex(index int) (*Procedure, bool) {
	if index < 0 || index >= len(t.procs) {
		return nil, false
	}
	return t.procs[index], true
}

func (t *ProcTable) Procedures() []*Procedure {
	out := make([]*Procedure, len(t.procs))
	copy(out, t.procs)
	return out
}
