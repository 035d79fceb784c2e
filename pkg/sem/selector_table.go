package sem

import (
	"sort"

	"github.com/naerbnic/sci-compiler-sub002/pkg/config"
	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// SelectorNum is the program-wide number of a message or property name.
type SelectorNum int

// Selector is an interned message/property name.
type Selector struct {
	name string
	num  SelectorNum
	pos  errors.Position
}

func (s *Selector) Name() string         { return s.name }
func (s *Selector) Num() SelectorNum     { return s.num }
func (s *Selector) Pos() errors.Position { return s.pos }

// System selectors name the fixed slots at the start of every property layout.
const (
	SelObjID       = "-objID-"
	SelSize        = "-size-"
	SelPropDict    = "-propDict-"
	SelMethDict    = "-methDict-"
	SelClassScript = "-classScript-"
	SelScript      = "-script-"
	SelSuper       = "-super-"
	SelInfo        = "-info-"
	SelName        = "name"
)

// systemSelectorBase is the number of -objID-; the other dash selectors follow it.
const systemSelectorBase SelectorNum = 0x1000

// SystemSelectors lists the fixed slots in layout order.
var SystemSelectors = [...]string{
	SelObjID, SelSize, SelPropDict, SelMethDict, SelClassScript, SelScript, SelSuper, SelInfo, SelName,
}

type pendingSelector struct {
	name string
	pos  errors.Position
}

// SelectorTableBuilder collects declared and newly introduced selectors.
type SelectorTableBuilder struct {
	byName  map[string]*Selector
	byNum   map[SelectorNum]*Selector
	queued  map[string]bool
	pending []pendingSelector
	max     SelectorNum
}

func NewSelectorTableBuilder() *SelectorTableBuilder {
	return &SelectorTableBuilder{
		byName: make(map[string]*Selector),
		byNum:  make(map[SelectorNum]*Selector),
		queued: make(map[string]bool),
		max:    config.MaxSelectorNum,
	}
}

// SetMaxSelector lowers the largest number Build may assign.
func (b *SelectorTableBuilder) SetMaxSelector(limit int) {
	b.max = SelectorNum(limit)
}

// DeclareSelector binds name to an explicit number.
func (b *SelectorTableBuilder) DeclareSelector(name string, num SelectorNum, pos errors.Position) error {
	if num < 0 || num > config.MaxSelectorNum {
		return errors.InvalidArgument(pos, "selector number %d for %q out of range", num, name)
	}
	if prev, ok := b.byName[name]; ok {
		return errors.AlreadyExists(pos, "selector %q already declared as %d", name, prev.num)
	}
	if b.queued[name] {
		return errors.AlreadyExists(pos, "selector %q already introduced without a number", name)
	}
	if prev, ok := b.byNum[num]; ok {
		return errors.AlreadyExists(pos, "selector number %d already taken by %q", num, prev.name)
	}
	sel := &Selector{name: name, num: num, pos: pos}
	b.byName[name] = sel
	b.byNum[num] = sel
	return nil
}

// AddNewSelector queues name for automatic numbering unless it is already known.
func (b *SelectorTableBuilder) AddNewSelector(name string, pos errors.Position) {
	if _, ok := b.byName[name]; ok {
		return
	}
	if b.queued[name] {
		return
	}
	b.queued[name] = true
	b.pending = append(b.pending, pendingSelector{name: name, pos: pos})
}

// AddSystemSelectors makes sure the selectors of the fixed property slots exist.
// Dash selectors missing from the program take their customary numbers when free;
// `name` is numbered like any other new selector.
func AddSystemSelectors(b *SelectorTableBuilder) {
	for i, name := range SystemSelectors[:len(SystemSelectors)-1] {
		if _, ok := b.byName[name]; ok || b.queued[name] {
			continue
		}
		num := systemSelectorBase + SelectorNum(i)
		if _, taken := b.byNum[num]; taken {
			b.AddNewSelector(name, errors.Position{})
			continue
		}
		sel := &Selector{name: name, num: num}
		b.byName[name] = sel
		b.byNum[num] = sel
	}
	b.AddNewSelector(SelName, errors.Position{})
}

// Build numbers queued selectors in queue order, each taking the lowest free number.
func (b *SelectorTableBuilder) Build() (*SelectorTable, error) {
	byName := make(map[string]*Selector, len(b.byName)+len(b.pending))
	byNum := make(map[SelectorNum]*Selector, len(b.byName)+len(b.pending))
	for name, sel := range b.byName {
		byName[name] = sel
		byNum[sel.num] = sel
	}

	next := SelectorNum(0)
	for _, p := range b.pending {
		for {
			if _, taken := byNum[next]; !taken {
				break
			}
			next++
		}
		if next > b.max {
			return nil, errors.InvalidArgument(p.pos, "out of selector numbers assigning %q (limit %d)", p.name, b.max)
		}
		sel := &Selector{name: p.name, num: next, pos: p.pos}
		byName[p.name] = sel
		byNum[next] = sel
		debugPrintf("[selectors] %q -> %d\n", p.name, next)
	}
	return &SelectorTable{byName: byName, byNum: byNum}, nil
}

// SelectorTable is the frozen name/number bijection.
type SelectorTable struct {
	byName map[string]*Selector
	byNum  map[SelectorNum]*Selector
}

func (t *SelectorTable) LookupByName(name string) (*Selector, bool) {
	sel, ok := t.byName[name]
	return sel, ok
}

func (t *SelectorTable) LookupByNumber(num SelectorNum) (*Selector, bool) {
	sel, ok := t.byNum[num]
	return sel, ok
}

// Selectors returns all selectors ordered by number.
func (t *SelectorTable) Selectors() []*Selector {
	out := make([]*Selector, 0, len(t.byNum))
	for _, sel := range t.byNum {
		out = append(out, sel)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].num < out[j].num })
	return out
}

func (t *SelectorTable) Len() int { return len(t.byNum) }

// lookup wraps LookupByName with a NotFound error at pos.
func (t *SelectorTable) lookup(name string, pos errors.Position) (*Selector, error) {
	sel, ok := t.byName[name]
	if !ok {
		return nil, errors.NotFound(pos, "%q is not a selector", name)
	}
	return sel, nil
}
