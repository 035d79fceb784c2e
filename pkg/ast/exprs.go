package ast

import (
	"fmt"
	"strings"

	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// Expr is a node of a procedure or method body.
type Expr interface {
	Node
	exprNode()
}

// --- Values and variables ---

type NumberExpr struct {
	Value int
	Loc   errors.Position
}

func (e *NumberExpr) Pos() errors.Position { return e.Loc }
func (e *NumberExpr) String() string       { return fmt.Sprintf("%d", e.Value) }
func (e *NumberExpr) exprNode()            {}

type StringExpr struct {
	Value string
	Loc   errors.Position
}

func (e *StringExpr) Pos() errors.Position { return e.Loc }
func (e *StringExpr) String() string       { return fmt.Sprintf("%q", e.Value) }
func (e *StringExpr) exprNode()            {}

// VarExpr references a named value; with Index set it is `[name index]`.
// The name may resolve to a variable, a property, an object, a class or a procedure.
type VarExpr struct {
	Name  Name
	Index Expr
	Loc   errors.Position
}

func (e *VarExpr) Pos() errors.Position { return e.Loc }
func (e *VarExpr) String() string {
	if e.Index != nil {
		return fmt.Sprintf("[%s %s]", e.Name, e.Index)
	}
	return e.Name.Value
}
func (e *VarExpr) exprNode() {}

// SelfExpr is `self`.
type SelfExpr struct {
	Loc errors.Position
}

func (e *SelfExpr) Pos() errors.Position { return e.Loc }
func (e *SelfExpr) String() string       { return "self" }
func (e *SelfExpr) exprNode()            {}

// SelectorLitExpr is `#name`, the numeric value of a selector.
type SelectorLitExpr struct {
	Selector Name
	Loc      errors.Position
}

func (e *SelectorLitExpr) Pos() errors.Position { return e.Loc }
func (e *SelectorLitExpr) String() string       { return "#" + e.Selector.Value }
func (e *SelectorLitExpr) exprNode()            {}

// AddrOfExpr is `@name` or `@[name index]`.
type AddrOfExpr struct {
	Target *VarExpr
	Loc    errors.Position
}

func (e *AddrOfExpr) Pos() errors.Position { return e.Loc }
func (e *AddrOfExpr) String() string       { return "@" + e.Target.String() }
func (e *AddrOfExpr) exprNode()            {}

// --- Calls and sends ---

// RestArg is `&rest` or `&rest param`, forwarding the caller's trailing arguments.
// A nil Param forwards everything after the last named parameter.
type RestArg struct {
	Param *Name
	Loc   errors.Position
}

func (r *RestArg) String() string {
	if r.Param != nil {
		return "&rest " + r.Param.Value
	}
	return "&rest"
}

// CallExpr is `(name args...)`: a builtin operator or a procedure call.
type CallExpr struct {
	Target Name
	Args   []Expr
	Rest   *RestArg
	Loc    errors.Position
}

func (e *CallExpr) Pos() errors.Position { return e.Loc }
func (e *CallExpr) String() string {
	var b strings.Builder
	b.WriteString("(" + e.Target.Value)
	for _, a := range e.Args {
		b.WriteString(" " + a.String())
	}
	if e.Rest != nil {
		b.WriteString(" " + e.Rest.String())
	}
	b.WriteString(")")
	return b.String()
}
func (e *CallExpr) exprNode() {}

// SendTarget is the receiver shape of a send.
type SendTarget interface {
	Node
	sendTarget()
}

type SelfTarget struct {
	Loc errors.Position
}

func (t *SelfTarget) Pos() errors.Position { return t.Loc }
func (t *SelfTarget) String() string       { return "self" }
func (t *SelfTarget) sendTarget()          {}

type SuperTarget struct {
	Loc errors.Position
}

func (t *SuperTarget) Pos() errors.Position { return t.Loc }
func (t *SuperTarget) String() string       { return "super" }
func (t *SuperTarget) sendTarget()          {}

type ExprTarget struct {
	Expr Expr
}

func (t *ExprTarget) Pos() errors.Position { return t.Expr.Pos() }
func (t *ExprTarget) String() string       { return t.Expr.String() }
func (t *ExprTarget) sendTarget()          {}

// SendClause is one message of a send: `selector: args...`. A property read is a
// clause with no arguments.
type SendClause struct {
	Selector Name
	Args     []Expr
	Rest     *RestArg
	Loc      errors.Position
}

func (c *SendClause) String() string {
	var b strings.Builder
	b.WriteString(c.Selector.Value + ":")
	for _, a := range c.Args {
		b.WriteString(" " + a.String())
	}
	if c.Rest != nil {
		b.WriteString(" " + c.Rest.String())
	}
	return b.String()
}

// SendExpr is `(target clause clause ...)`.
type SendExpr struct {
	Target  SendTarget
	Clauses []*SendClause
	Loc     errors.Position
}

func (e *SendExpr) Pos() errors.Position { return e.Loc }
func (e *SendExpr) String() string {
	return fmt.Sprintf("(%s %s)", e.Target, joinNodes(e.Clauses))
}
func (e *SendExpr) exprNode() {}

// --- Sequencing and assignment ---

type ExprList struct {
	Exprs []Expr
	Loc   errors.Position
}

func (e *ExprList) Pos() errors.Position { return e.Loc }
func (e *ExprList) String() string       { return "(" + joinNodes(e.Exprs) + ")" }
func (e *ExprList) exprNode()            {}

type AssignOp int

const (
	AssignSet AssignOp = iota // =
	AssignAdd                 // +=
	AssignSub                 // -=
	AssignMul                 // *=
	AssignDiv                 // /=
	AssignMod                 // mod=
	AssignAnd                 // &=
	AssignOr                  // |=
	AssignXor                 // ^=
	AssignShr                 // >>=
	AssignShl                 // <<=
)

var assignOpNames = [...]string{"=", "+=", "-=", "*=", "/=", "mod=", "&=", "|=", "^=", ">>=", "<<="}

func (op AssignOp) String() string {
	if int(op) < len(assignOpNames) {
		return assignOpNames[op]
	}
	return fmt.Sprintf("AssignOp(%d)", int(op))
}

type AssignExpr struct {
	Op     AssignOp
	Target *VarExpr
	Value  Expr
	Loc    errors.Position
}

func (e *AssignExpr) Pos() errors.Position { return e.Loc }
func (e *AssignExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Op, e.Target, e.Value)
}
func (e *AssignExpr) exprNode() {}

// IncDecExpr is `(++ var)` or `(-- var)`.
type IncDecExpr struct {
	Decrement bool
	Target    *VarExpr
	Loc       errors.Position
}

func (e *IncDecExpr) Pos() errors.Position { return e.Loc }
func (e *IncDecExpr) String() string {
	if e.Decrement {
		return "(-- " + e.Target.String() + ")"
	}
	return "(++ " + e.Target.String() + ")"
}
func (e *IncDecExpr) exprNode() {}

// --- Control flow ---

type ReturnExpr struct {
	Value Expr // may be nil
	Loc   errors.Position
}

func (e *ReturnExpr) Pos() errors.Position { return e.Loc }
func (e *ReturnExpr) String() string {
	if e.Value == nil {
		return "(return)"
	}
	return "(return " + e.Value.String() + ")"
}
func (e *ReturnExpr) exprNode() {}

// BreakExpr is `(break n)`, or `(breakif cond n)` when Cond is set.
// Level counts enclosing loops outward from 1.
type BreakExpr struct {
	Level int
	Cond  Expr
	Loc   errors.Position
}

func (e *BreakExpr) Pos() errors.Position { return e.Loc }
func (e *BreakExpr) String() string {
	if e.Cond != nil {
		return fmt.Sprintf("(breakif %s %d)", e.Cond, e.Level)
	}
	return fmt.Sprintf("(break %d)", e.Level)
}
func (e *BreakExpr) exprNode() {}

// ContinueExpr is `(continue n)`, or `(contif cond n)` when Cond is set.
type ContinueExpr struct {
	Level int
	Cond  Expr
	Loc   errors.Position
}

func (e *ContinueExpr) Pos() errors.Position { return e.Loc }
func (e *ContinueExpr) String() string {
	if e.Cond != nil {
		return fmt.Sprintf("(contif %s %d)", e.Cond, e.Level)
	}
	return fmt.Sprintf("(continue %d)", e.Level)
}
func (e *ContinueExpr) exprNode() {}

type IfExpr struct {
	Cond Expr
	Then Expr
	Else Expr // may be nil
	Loc  errors.Position
}

func (e *IfExpr) Pos() errors.Position { return e.Loc }
func (e *IfExpr) String() string {
	if e.Else == nil {
		return fmt.Sprintf("(if %s %s)", e.Cond, e.Then)
	}
	return fmt.Sprintf("(if %s %s else %s)", e.Cond, e.Then, e.Else)
}
func (e *IfExpr) exprNode() {}

type CondBranch struct {
	Cond Expr
	Body Expr
}

type CondExpr struct {
	Branches []CondBranch
	Else     Expr // may be nil
	Loc      errors.Position
}

func (e *CondExpr) Pos() errors.Position { return e.Loc }
func (e *CondExpr) String() string {
	var b strings.Builder
	b.WriteString("(cond")
	for _, br := range e.Branches {
		fmt.Fprintf(&b, " (%s %s)", br.Cond, br.Body)
	}
	if e.Else != nil {
		fmt.Fprintf(&b, " (else %s)", e.Else)
	}
	b.WriteString(")")
	return b.String()
}
func (e *CondExpr) exprNode() {}

type SwitchCase struct {
	Value Value
	Body  Expr
}

// SwitchExpr dispatches on equality with each case's constant.
type SwitchExpr struct {
	Value Expr
	Cases []SwitchCase
	Else  Expr // may be nil
	Loc   errors.Position
}

func (e *SwitchExpr) Pos() errors.Position { return e.Loc }
func (e *SwitchExpr) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(switch %s", e.Value)
	for _, c := range e.Cases {
		fmt.Fprintf(&b, " (%s %s)", c.Value, c.Body)
	}
	if e.Else != nil {
		fmt.Fprintf(&b, " (else %s)", e.Else)
	}
	b.WriteString(")")
	return b.String()
}
func (e *SwitchExpr) exprNode() {}

// SwitchToExpr dispatches on the ordinal of each case, starting at 0.
type SwitchToExpr struct {
	Value Expr
	Cases []Expr
	Else  Expr // may be nil
	Loc   errors.Position
}

func (e *SwitchToExpr) Pos() errors.Position { return e.Loc }
func (e *SwitchToExpr) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "(switchto %s", e.Value)
	for _, c := range e.Cases {
		fmt.Fprintf(&b, " (%s)", c)
	}
	if e.Else != nil {
		fmt.Fprintf(&b, " (else %s)", e.Else)
	}
	b.WriteString(")")
	return b.String()
}
func (e *SwitchToExpr) exprNode() {}

type WhileExpr struct {
	Cond Expr
	Body Expr
	Loc  errors.Position
}

func (e *WhileExpr) Pos() errors.Position { return e.Loc }
func (e *WhileExpr) String() string       { return fmt.Sprintf("(while %s %s)", e.Cond, e.Body) }
func (e *WhileExpr) exprNode()            {}

type RepeatExpr struct {
	Body Expr
	Loc  errors.Position
}

func (e *RepeatExpr) Pos() errors.Position { return e.Loc }
func (e *RepeatExpr) String() string       { return fmt.Sprintf("(repeat %s)", e.Body) }
func (e *RepeatExpr) exprNode()            {}

// ForExpr is `(for (init) cond (update) body...)`.
type ForExpr struct {
	Init   Expr // may be nil
	Cond   Expr
	Update Expr // may be nil
	Body   Expr
	Loc    errors.Position
}

func (e *ForExpr) Pos() errors.Position { return e.Loc }
func (e *ForExpr) String() string {
	return fmt.Sprintf("(for (%v) %s (%v) %s)", e.Init, e.Cond, e.Update, e.Body)
}
func (e *ForExpr) exprNode() {}

// --- Construction helpers ---

// Ident builds an unindexed variable reference.
func Ident(name string) *VarExpr {
	return &VarExpr{Name: NewName(name)}
}

// Int builds a number expression.
func Int(n int) *NumberExpr {
	return &NumberExpr{Value: n}
}

// Call builds a call expression with no rest argument.
func Call(target string, args ...Expr) *CallExpr {
	return &CallExpr{Target: NewName(target), Args: args}
}

// List wraps exprs in an ExprList.
func List(exprs ...Expr) *ExprList {
	return &ExprList{Exprs: exprs}
}
