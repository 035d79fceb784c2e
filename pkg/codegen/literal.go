package codegen

import "fmt"

// LiteralValue is an immediate operand or property initializer: either a number
// or a reference to text boxed in a constant pool. Text references are resolved to
// heap offsets when the pool is laid out, after code generation.
type LiteralValue interface {
	literalValue()
	String() string
}

// Int is a numeric literal.
type Int int

func (Int) literalValue()    {}
func (v Int) String() string { return fmt.Sprintf("%d", int(v)) }

// TextRef is a backpatchable reference to a pooled string.
type TextRef struct {
	text  string
	index int
}

func (*TextRef) literalValue() {}

// Text returns the referenced string.
func (t *TextRef) Text() string { return t.text }

// Index returns the position of the text in its pool.
func (t *TextRef) Index() int { return t.index }

func (t *TextRef) String() string { return fmt.Sprintf("text#%d(%q)", t.index, t.text) }

// TextPool boxes strings into a constant pool.
type TextPool interface {
	AddText(text string) *TextRef
}

// TextTable is a deduplicating TextPool.
type TextTable struct {
	texts  []*TextRef
	byText map[string]*TextRef
}

func NewTextTable() *TextTable {
	return &TextTable{byText: make(map[string]*TextRef)}
}

// AddText returns the existing reference for text or appends a new one.
func (t *TextTable) AddText(text string) *TextRef {
	if ref, ok := t.byText[text]; ok {
		return ref
	}
	ref := &TextRef{text: text, index: len(t.texts)}
	t.texts = append(t.texts, ref)
	t.byText[text] = ref
	return ref
}

// Texts returns the pooled references in insertion order.
func (t *TextTable) Texts() []*TextRef {
	out := make([]*TextRef, len(t.texts))
	copy(out, t.texts)
	return out
}

func (t *TextTable) Len() int { return len(t.texts) }
