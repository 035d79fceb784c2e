package sem

import (
	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
)

// PropertyEntry is one slot of an object layout.
type PropertyEntry struct {
	Name     string
	Selector *Selector
	Value    codegen.LiteralValue
	Index    int
}

// PropertyList is an ordered property layout. A slot's index is fixed when it is
// first appended; later updates change only the value.
//
// Lists reachable from a built Class or Object are shared. Callers wanting to derive
// a layout must Clone first.
type PropertyList struct {
	entries    []*PropertyEntry
	byName     map[string]*PropertyEntry
	bySelector map[SelectorNum]*PropertyEntry
}

func NewPropertyList() *PropertyList {
	return &PropertyList{
		byName:     make(map[string]*PropertyEntry),
		bySelector: make(map[SelectorNum]*PropertyEntry),
	}
}

// UpdatePropertyDef overwrites the value of an existing property, or appends a new
// one. It returns the property's index either way.
func (pl *PropertyList) UpdatePropertyDef(name string, sel *Selector, value codegen.LiteralValue) int {
	if entry, ok := pl.byName[name]; ok {
		entry.Value = value
		return entry.Index
	}
	entry := &PropertyEntry{
		Name:     name,
		Selector: sel,
		Value:    value,
		Index:    len(pl.entries),
	}
	pl.entries = append(pl.entries, entry)
	pl.byName[name] = entry
	pl.bySelector[sel.Num()] = entry
	return entry.Index
}

// Clone returns an independent copy with identical entries in identical order.
func (pl *PropertyList) Clone() *PropertyList {
	out := &PropertyList{
		entries:    make([]*PropertyEntry, len(pl.entries)),
		byName:     make(map[string]*PropertyEntry, len(pl.entries)),
		bySelector: make(map[SelectorNum]*PropertyEntry, len(pl.entries)),
	}
	for i, e := range pl.entries {
		cp := *e
		out.entries[i] = &cp
		out.byName[cp.Name] = &cp
		out.bySelector[cp.Selector.Num()] = &cp
	}
	return out
}

// LookupByName returns a copy of the named entry.
func (pl *PropertyList) LookupByName(name string) (PropertyEntry, bool) {
	e, ok := pl.byName[name]
	if !ok {
		return PropertyEntry{}, false
	}
	return *e, true
}

// LookupBySelector returns a copy of the entry for sel.
func (pl *PropertyList) LookupBySelector(sel SelectorNum) (PropertyEntry, bool) {
	e, ok := pl.bySelector[sel]
	if !ok {
		return PropertyEntry{}, false
	}
	return *e, true
}

// Entries returns copies of all entries in index order.
func (pl *PropertyList) Entries() []PropertyEntry {
	out := make([]PropertyEntry, len(pl.entries))
	for i, e := range pl.entries {
		out[i] = *e
	}
	return out
}

func (pl *PropertyList) Len() int { return len(pl.entries) }

// setValue overwrites an existing slot; used when stamping the fixed slots.
func (pl *PropertyList) setValue(name string, value codegen.LiteralValue) bool {
	e, ok := pl.byName[name]
	if ok {
		e.Value = value
	}
	return ok
}
