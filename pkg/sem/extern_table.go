package sem

import (
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// KernelScript marks an extern as a kernel function; its index is the kernel number.
const KernelScript ScriptNum = -1

// Extern is a procedure exported by another script, or a kernel function.
type Extern struct {
	name   string
	pos    errors.Position
	script ScriptNum
	index  int
}

func (e *Extern) Name() string         { return e.name }
func (e *Extern) Pos() errors.Position { return e.pos }
func (e *Extern) Script() ScriptNum    { return e.script }
func (e *Extern) Index() int           { return e.index }
func (e *Extern) IsKernel() bool       { return e.script == KernelScript }

type externKey struct {
	script ScriptNum
	index  int
}

type ExternTableBuilder struct {
	externs []*Extern
	byName  map[string]*Extern
	byKey   map[externKey]*Extern
}

func NewExternTableBuilder() *ExternTableBuilder {
	return &ExternTableBuilder{
		byName: make(map[string]*Extern),
		byKey:  make(map[externKey]*Extern),
	}
}

func (b *ExternTableBuilder) AddExtern(name string, script ScriptNum, index int, pos errors.Position) error {
	if prev, ok := b.byName[name]; ok {
		if prev.script == script && prev.index == index {
			return nil
		}
		return errors.AlreadyExists(pos, "extern %q already declared as script %d entry %d", name, prev.script, prev.index)
	}
	key := externKey{script, index}
	if prev, ok := b.byKey[key]; ok {
		return errors.AlreadyExists(pos, "script %d entry %d already declared as %q", script, index, prev.name)
	}
	e := &Extern{name: name, pos: pos, script: script, index: index}
	b.externs = append(b.externs, e)
	b.byName[name] = e
	b.byKey[key] = e
	return nil
}

// AddAll copies every extern of t into the builder.
func (b *ExternTableBuilder) AddAll(t *ExternTable) error {
	for _, e := range t.externs {
		if err := b.AddExtern(e.name, e.script, e.index, e.pos); err != nil {
			return err
		}
	}
	return nil
}

func (b *ExternTableBuilder) Build() *ExternTable {
	t := &ExternTable{
		externs: make([]*Extern, len(b.externs)),
		byName:  make(map[string]*Extern, len(b.externs)),
		byKey:   make(map[externKey]*Extern, len(b.externs)),
	}
	copy(t.externs, b.externs)
	for _, e := range t.externs {
		t.byName[e.name] = e
		t.byKey[externKey{e.script, e.index}] = e
	}
	return t
}

type ExternTable struct {
	externs []*Extern
	byName  map[string]*Extern
	byKey   map[externKey]*Extern
}

func (t *ExternTable) LookupByName(name string) (*Extern, bool) {
	e, ok := t.byName[name]
	return e, ok
}

func (t *ExternTable) LookupByEntry(script ScriptNum, index int) (*Extern, bool) {
	e, ok := t.byKey[externKey{script, index}]
	return e, ok
}

func (t *ExternTable) Externs() []*Extern {
	out := make([]*Extern, len(t.externs))
	copy(out, t.externs)
	return out
}
