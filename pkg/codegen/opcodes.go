package codegen

import "fmt"

// OpCode defines the type for stack machine instructions.
type OpCode uint8

// Opcodes of the SCI PMachine. Values are the instruction numbers before the
// byte/word operand-size bit is folded in.
const (
	// Arithmetic and logic: left operand popped from the stack, right operand in
	// the accumulator, result in the accumulator.
	OpBnot OpCode = 0x00 // acc = ~acc
	OpAdd  OpCode = 0x01
	OpSub  OpCode = 0x02
	OpMul  OpCode = 0x03
	OpDiv  OpCode = 0x04
	OpMod  OpCode = 0x05
	OpShr  OpCode = 0x06
	OpShl  OpCode = 0x07
	OpXor  OpCode = 0x08
	OpAnd  OpCode = 0x09
	OpOr   OpCode = 0x0A
	OpNeg  OpCode = 0x0B // acc = -acc
	OpNot  OpCode = 0x0C // acc = !acc

	// Comparison. Also latch the right operand into prev for OpPprev.
	OpEq  OpCode = 0x0D
	OpNe  OpCode = 0x0E
	OpGt  OpCode = 0x0F
	OpGe  OpCode = 0x10
	OpLt  OpCode = 0x11
	OpLe  OpCode = 0x12
	OpUgt OpCode = 0x13
	OpUge OpCode = 0x14
	OpUlt OpCode = 0x15
	OpUle OpCode = 0x16

	// Control Flow
	OpBt  OpCode = 0x17 // Label: branch if acc is non-zero
	OpBnt OpCode = 0x18 // Label: branch if acc is zero
	OpJmp OpCode = 0x19 // Label: unconditional branch

	// Stack and accumulator
	OpLdi   OpCode = 0x1A // Value: acc = value
	OpPush  OpCode = 0x1B // push acc
	OpPushi OpCode = 0x1C // Value: push value
	OpToss  OpCode = 0x1D // pop and discard
	OpDup   OpCode = 0x1E // push top of stack
	OpLink  OpCode = 0x1F // N: reserve N temporaries

	// Calls
	OpCall  OpCode = 0x20 // Label N: call local procedure
	OpCallk OpCode = 0x21 // Kernel N: call kernel function
	OpCallb OpCode = 0x22 // Index N: call public procedure of script 0
	OpCalle OpCode = 0x23 // Script Index N: call public procedure of another script
	OpRet   OpCode = 0x24
	OpSend  OpCode = 0x25 // N: send to the object in acc

	OpClass  OpCode = 0x28 // Species: acc = class object
	OpSelf   OpCode = 0x2A // N: send to self
	OpSuper  OpCode = 0x2B // Species N: send to super class
	OpRest   OpCode = 0x2C // Param: push params from Param onward
	OpLea    OpCode = 0x2D // Kind Offset: acc = address of variable
	OpSelfID OpCode = 0x2E // acc = self
	OpPprev  OpCode = 0x30 // push prev

	// Property access; operand is the property index.
	OpPToA  OpCode = 0x31 // acc = property
	OpAToP  OpCode = 0x32 // property = acc
	OpPToS  OpCode = 0x33 // push property
	OpSToP  OpCode = 0x34 // property = pop
	OpIPToA OpCode = 0x35 // acc = ++property
	OpDPToA OpCode = 0x36 // acc = --property
	OpIPToS OpCode = 0x37
	OpDPToS OpCode = 0x38

	OpLofsa OpCode = 0x39 // Label: acc = address of object, procedure or text
	OpLofss OpCode = 0x3A // Label: push address

	OpPush0    OpCode = 0x3B
	OpPush1    OpCode = 0x3C
	OpPush2    OpCode = 0x3D
	OpPushSelf OpCode = 0x3E

	// Variable access occupies 0x40-0x7F; see VarOpCode.
	opVarBase OpCode = 0x40

	// OpLabel is not a machine instruction: it marks where a label is bound.
	OpLabel OpCode = 0xFF
)

var opNames = map[OpCode]string{
	OpBnot: "bnot", OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpMod: "mod",
	OpShr: "shr", OpShl: "shl", OpXor: "xor", OpAnd: "and", OpOr: "or", OpNeg: "neg", OpNot: "not",
	OpEq: "eq?", OpNe: "ne?", OpGt: "gt?", OpGe: "ge?", OpLt: "lt?", OpLe: "le?",
	OpUgt: "ugt?", OpUge: "uge?", OpUlt: "ult?", OpUle: "ule?",
	OpBt: "bt", OpBnt: "bnt", OpJmp: "jmp",
	OpLdi: "ldi", OpPush: "push", OpPushi: "pushi", OpToss: "toss", OpDup: "dup", OpLink: "link",
	OpCall: "call", OpCallk: "callk", OpCallb: "callb", OpCalle: "calle", OpRet: "ret", OpSend: "send",
	OpClass: "class", OpSelf: "self", OpSuper: "super", OpRest: "&rest", OpLea: "lea",
	OpSelfID: "selfID", OpPprev: "pprev",
	OpPToA: "pToa", OpAToP: "aTop", OpPToS: "pTos", OpSToP: "sTop",
	OpIPToA: "ipToa", OpDPToA: "dpToa", OpIPToS: "ipTos", OpDPToS: "dpTos",
	OpLofsa: "lofsa", OpLofss: "lofss",
	OpPush0: "push0", OpPush1: "push1", OpPush2: "push2", OpPushSelf: "pushSelf",
	OpLabel: "label",
}

// VarKind selects one of the four variable spaces.
type VarKind uint8

const (
	VarGlobal VarKind = iota
	VarLocal
	VarTemp
	VarParam
)

func (k VarKind) String() string {
	switch k {
	case VarGlobal:
		return "global"
	case VarLocal:
		return "local"
	case VarTemp:
		return "temp"
	case VarParam:
		return "param"
	}
	return fmt.Sprintf("VarKind(%d)", int(k))
}

// VarOp is the access performed on a variable.
type VarOp uint8

const (
	VarLoad  VarOp = iota // acc = var
	VarStore              // var = acc
	VarInc                // acc = ++var
	VarDec                // acc = --var
)

// VarOpCode computes the opcode for a variable access. Indexed forms add the
// accumulator to the offset; indexed stores take the value from the stack.
func VarOpCode(op VarOp, kind VarKind, indexed, toStack bool) OpCode {
	code := opVarBase | OpCode(op)<<4 | OpCode(kind)
	if indexed {
		code |= 0x08
	}
	if toStack {
		code |= 0x04
	}
	return code
}

func varOpName(op OpCode) string {
	prefix := [...]string{"l", "s", "+", "-"}[(op>>4)&0x3]
	dest := "a"
	if op&0x04 != 0 {
		dest = "s"
	}
	kind := "gltp"[op&0x3]
	name := prefix + dest + string(kind)
	if op&0x08 != 0 {
		name += "i"
	}
	return name
}

// String makes OpCode satisfy the Stringer interface.
func (op OpCode) String() string {
	if op >= opVarBase && op < 0x80 {
		return varOpName(op)
	}
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UnknownOpcode(%d)", op)
}

// UnOp is a single-operand accumulator operation.
type UnOp OpCode

const (
	UnBnot = UnOp(OpBnot)
	UnNeg  = UnOp(OpNeg)
	UnNot  = UnOp(OpNot)
)

// BinOp is a two-operand operation: popped left operand, accumulator right operand.
type BinOp OpCode

const (
	BinAdd = BinOp(OpAdd)
	BinSub = BinOp(OpSub)
	BinMul = BinOp(OpMul)
	BinDiv = BinOp(OpDiv)
	BinMod = BinOp(OpMod)
	BinShr = BinOp(OpShr)
	BinShl = BinOp(OpShl)
	BinXor = BinOp(OpXor)
	BinAnd = BinOp(OpAnd)
	BinOr  = BinOp(OpOr)
	BinEq  = BinOp(OpEq)
	BinNe  = BinOp(OpNe)
	BinGt  = BinOp(OpGt)
	BinGe  = BinOp(OpGe)
	BinLt  = BinOp(OpLt)
	BinLe  = BinOp(OpLe)
	BinUgt = BinOp(OpUgt)
	BinUge = BinOp(OpUge)
	BinUlt = BinOp(OpUlt)
	BinUle = BinOp(OpUle)
)

// BranchOp is one of bt, bnt or jmp.
type BranchOp OpCode

const (
	BranchTrue   = BranchOp(OpBt)
	BranchFalse  = BranchOp(OpBnt)
	BranchAlways = BranchOp(OpJmp)
)

// PropOp is the access performed on a property of self.
type PropOp OpCode

const (
	PropLoad  = PropOp(OpPToA)
	PropStore = PropOp(OpAToP)
	PropInc   = PropOp(OpIPToA)
	PropDec   = PropOp(OpDPToA)
)
