// Package codegen is the boundary between the semantic core and the low-level
// instruction builder. The core only calls through Builder; Chunk is the recording
// implementation used by tests and by callers that post-process the listing.
package codegen

import "fmt"

// Label is a code position: a branch target, or the entry of a procedure or object.
type Label struct {
	id    int
	name  string
	bound bool
}

func (l *Label) ID() int        { return l.id }
func (l *Label) Name() string   { return l.name }
func (l *Label) IsBound() bool  { return l.bound }
func (l *Label) String() string { return fmt.Sprintf("L%d", l.id) }

// Builder receives the instruction stream for one script.
//
// Binary operations pop their left operand and take the right operand from the
// accumulator. Call operand counts are argument counts, not including the argc
// word. Send operand counts are the stack words pushed by all clauses. The builder
// scales both to bytes when it encodes.
type Builder interface {
	TextPool

	NewLabel(name string) *Label
	BindLabel(l *Label)
	SetLine(line int)

	// AddLink reserves temporaries at procedure entry.
	AddLink(numTemps int)

	AddLoadImmediate(v LiteralValue)
	AddPushImmediate(v LiteralValue)
	AddPush()
	AddPushPrev()
	AddDup()
	AddToss()
	AddUnOp(op UnOp)
	AddBinOp(op BinOp)
	AddBranch(op BranchOp, target *Label)

	// AddVarAccess emits a variable access. For indexed access the index is in the
	// accumulator; an indexed store takes its value from the stack.
	AddVarAccess(op VarOp, kind VarKind, offset int, indexed bool)
	AddPropAccess(op PropOp, index int)
	AddLoadAddress(kind VarKind, offset int, indexed bool)
	AddLoadOffset(target *Label)
	AddClass(species int)
	AddSelfID()

	AddCall(target *Label, numArgs int)
	AddKernelCall(kernel int, numArgs int)
	AddExternCall(script int, index int, numArgs int)
	AddSend(numArgs int)
	AddSelfSend(numArgs int)
	AddSuperSend(species int, numArgs int)
	AddRest(param int)
	AddReturn()
}
