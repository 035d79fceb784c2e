package codegen

import (
	"fmt"
	"strings"
)

const debugChunk = false

// Instruction is one recorded builder call.
type Instruction struct {
	Op       OpCode
	Operands []int
	Label    *Label       // branch target, call target, or the label bound by OpLabel
	Literal  LiteralValue // ldi/pushi/lofsa immediate
	Line     int          // Source line active when the instruction was added
}

// Chunk is a Builder that records instructions in order, together with the text
// constants they reference.
type Chunk struct {
	*TextTable
	Name         string
	Instructions []Instruction
	labels       []*Label
	line         int
}

// NewChunk creates a new, empty Chunk.
func NewChunk(name string) *Chunk {
	return &Chunk{
		TextTable:    NewTextTable(),
		Name:         name,
		Instructions: make([]Instruction, 0),
	}
}

var _ Builder = (*Chunk)(nil)

func (c *Chunk) write(ins Instruction) {
	ins.Line = c.line
	if debugChunk {
		fmt.Printf("[chunk %s] %s\n", c.Name, formatInstruction(ins))
	}
	c.Instructions = append(c.Instructions, ins)
}

func (c *Chunk) writeOp(op OpCode, operands ...int) {
	c.write(Instruction{Op: op, Operands: operands})
}

func (c *Chunk) NewLabel(name string) *Label {
	l := &Label{id: len(c.labels), name: name}
	c.labels = append(c.labels, l)
	return l
}

// BindLabel marks the current position as the label's target. Binding twice panics:
// the generator never does so for a well-formed body.
func (c *Chunk) BindLabel(l *Label) {
	if l.bound {
		panic(fmt.Sprintf("label %s (%s) bound twice", l, l.name))
	}
	l.bound = true
	c.write(Instruction{Op: OpLabel, Label: l})
}

func (c *Chunk) SetLine(line int) { c.line = line }

func (c *Chunk) AddLink(numTemps int) { c.writeOp(OpLink, numTemps) }

func (c *Chunk) AddLoadImmediate(v LiteralValue) {
	if _, ok := v.(*TextRef); ok {
		c.write(Instruction{Op: OpLofsa, Literal: v})
		return
	}
	c.write(Instruction{Op: OpLdi, Literal: v})
}

func (c *Chunk) AddPushImmediate(v LiteralValue) {
	if _, ok := v.(*TextRef); ok {
		c.write(Instruction{Op: OpLofss, Literal: v})
		return
	}
	c.write(Instruction{Op: OpPushi, Literal: v})
}

func (c *Chunk) AddPush()     { c.writeOp(OpPush) }
func (c *Chunk) AddPushPrev() { c.writeOp(OpPprev) }
func (c *Chunk) AddDup()      { c.writeOp(OpDup) }
func (c *Chunk) AddToss()     { c.writeOp(OpToss) }
func (c *Chunk) AddSelfID()   { c.writeOp(OpSelfID) }
func (c *Chunk) AddReturn()   { c.writeOp(OpRet) }

func (c *Chunk) AddUnOp(op UnOp)   { c.writeOp(OpCode(op)) }
func (c *Chunk) AddBinOp(op BinOp) { c.writeOp(OpCode(op)) }

func (c *Chunk) AddBranch(op BranchOp, target *Label) {
	c.write(Instruction{Op: OpCode(op), Label: target})
}

func (c *Chunk) AddVarAccess(op VarOp, kind VarKind, offset int, indexed bool) {
	c.writeOp(VarOpCode(op, kind, indexed, false), offset)
}

func (c *Chunk) AddPropAccess(op PropOp, index int) { c.writeOp(OpCode(op), index) }

func (c *Chunk) AddLoadAddress(kind VarKind, offset int, indexed bool) {
	flag := 0
	if indexed {
		flag = 1
	}
	c.writeOp(OpLea, int(kind), offset, flag)
}

func (c *Chunk) AddLoadOffset(target *Label) {
	c.write(Instruction{Op: OpLofsa, Label: target})
}

func (c *Chunk) AddClass(species int) { c.writeOp(OpClass, species) }

func (c *Chunk) AddCall(target *Label, numArgs int) {
	c.write(Instruction{Op: OpCall, Label: target, Operands: []int{numArgs}})
}

func (c *Chunk) AddKernelCall(kernel int, numArgs int) { c.writeOp(OpCallk, kernel, numArgs) }

// AddExternCall uses the short callb form for public procedures of script 0.
func (c *Chunk) AddExternCall(script int, index int, numArgs int) {
	if script == 0 {
		c.writeOp(OpCallb, index, numArgs)
		return
	}
	c.writeOp(OpCalle, script, index, numArgs)
}

func (c *Chunk) AddSend(numArgs int)                   { c.writeOp(OpSend, numArgs) }
func (c *Chunk) AddSelfSend(numArgs int)               { c.writeOp(OpSelf, numArgs) }
func (c *Chunk) AddSuperSend(species int, numArgs int) { c.writeOp(OpSuper, species, numArgs) }
func (c *Chunk) AddRest(param int)                     { c.writeOp(OpRest, param) }

// UnboundLabels returns the labels that were created but never bound.
func (c *Chunk) UnboundLabels() []*Label {
	var out []*Label
	for _, l := range c.labels {
		if !l.bound {
			out = append(out, l)
		}
	}
	return out
}

// --- Disassembly ---

func formatInstruction(ins Instruction) string {
	switch ins.Op {
	case OpLabel:
		return ins.Label.String() + ":"
	case OpLea:
		s := fmt.Sprintf("lea %s %d", VarKind(ins.Operands[0]), ins.Operands[1])
		if ins.Operands[2] != 0 {
			s += " indexed"
		}
		return s
	}

	parts := []string{ins.Op.String()}
	if ins.Literal != nil {
		parts = append(parts, ins.Literal.String())
	}
	if ins.Label != nil {
		parts = append(parts, ins.Label.String())
	}
	for _, o := range ins.Operands {
		parts = append(parts, fmt.Sprintf("%d", o))
	}
	return strings.Join(parts, " ")
}

// Listing returns one line per recorded instruction, labels rendered as "L<n>:".
func (c *Chunk) Listing() []string {
	out := make([]string, len(c.Instructions))
	for i, ins := range c.Instructions {
		out[i] = formatInstruction(ins)
	}
	return out
}

// DisassembleChunk returns a human-readable string representation of the chunk.
func (c *Chunk) DisassembleChunk() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("== %s ==\n", c.Name))
	for i, ins := range c.Instructions {
		if ins.Op == OpLabel {
			builder.WriteString(fmt.Sprintf("%-10s; %s\n", formatInstruction(ins), ins.Label.Name()))
			continue
		}
		builder.WriteString(fmt.Sprintf("%04d %4d   %s\n", i, ins.Line, formatInstruction(ins)))
	}
	if c.TextTable.Len() > 0 {
		builder.WriteString("\n=== Texts ===\n")
		for _, t := range c.TextTable.Texts() {
			builder.WriteString(fmt.Sprintf("%4d %q\n", t.Index(), t.Text()))
		}
	}
	return builder.String()
}
