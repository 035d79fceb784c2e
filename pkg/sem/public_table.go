package sem

import (
	"fmt"
	"sort"

	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// PublicValue is what a public entry exports: *Procedure, *Object or *Class.
type PublicValue interface {
	Name() string
	Pos() errors.Position
}

// PublicEntry maps an export index to a procedure, object or class.
type PublicEntry struct {
	Index int
	Value PublicValue
	Pos   errors.Position
}

func (e PublicEntry) Name() string { return e.Value.Name() }

// Kind names the exported value's variant.
func (e PublicEntry) Kind() string {
	switch e.Value.(type) {
	case *Procedure:
		return "procedure"
	case *Object:
		return "object"
	case *Class:
		return "class"
	}
	panic(fmt.Sprintf("unexpected public value %T", e.Value))
}

type PublicTableBuilder struct {
	entries []PublicEntry
	byIndex map[int]int
	byName  map[string]int
}

func NewPublicTableBuilder() *PublicTableBuilder {
	return &PublicTableBuilder{
		byIndex: make(map[int]int),
		byName:  make(map[string]int),
	}
}

func (b *PublicTableBuilder) add(index int, value PublicValue, pos errors.Position) error {
	if index < 0 {
		return errors.InvalidArgument(pos, "public index %d of %q is negative", index, value.Name())
	}
	if prev, ok := b.byIndex[index]; ok {
		return errors.AlreadyExists(pos, "public index %d already exports %q", index, b.entries[prev].Name())
	}
	if prev, ok := b.byName[value.Name()]; ok {
		return errors.AlreadyExists(pos, "%q already exported at index %d", value.Name(), b.entries[prev].Index)
	}
	b.byIndex[index] = len(b.entries)
	b.byName[value.Name()] = len(b.entries)
	b.entries = append(b.entries, PublicEntry{Index: index, Value: value, Pos: pos})
	return nil
}

func (b *PublicTableBuilder) AddProcedure(index int, p *Procedure, pos errors.Position) error {
	return b.add(index, p, pos)
}

func (b *PublicTableBuilder) AddObject(index int, o *Object, pos errors.Position) error {
	return b.add(index, o, pos)
}

func (b *PublicTableBuilder) AddClass(index int, c *Class, pos errors.Position) error {
	return b.add(index, c, pos)
}

func (b *PublicTableBuilder) Build() *PublicTable {
	entries := make([]PublicEntry, len(b.entries))
	copy(entries, b.entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	t := &PublicTable{
		entries: entries,
		byIndex: make(map[int]PublicEntry, len(entries)),
		byName:  make(map[string]PublicEntry, len(entries)),
	}
	for _, e := range entries {
		t.byIndex[e.Index] = e
		t.byName[e.Name()] = e
	}
	return t
}

// PublicTable is a module's frozen export list.
type PublicTable struct {
	entries []PublicEntry
	byIndex map[int]PublicEntry
	byName  map[string]PublicEntry
}

func (t *PublicTable) LookupByIndex(index int) (PublicEntry, bool) {
	e, ok := t.byIndex[index]
	return e, ok
}

func (t *PublicTable) LookupByName(name string) (PublicEntry, bool) {
	e, ok := t.byName[name]
	return e, ok
}

// Entries returns the exports ordered by index.
func (t *PublicTable) Entries() []PublicEntry {
	out := make([]PublicEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Size is one past the highest export index; gaps are empty slots.
func (t *PublicTable) Size() int {
	if len(t.entries) == 0 {
		return 0
	}
	return t.entries[len(t.entries)-1].Index + 1
}
