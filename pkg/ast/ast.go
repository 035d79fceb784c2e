// Package ast holds the parsed form of SCI script consumed by the semantic core:
// top-level items (selector tables, class declarations and definitions, procedures,
// variable and export tables) and the expressions making up procedure and method
// bodies.
//
// Variants are closed: every item implements Item through the unexported itemNode
// marker and every expression implements Expr through exprNode, so a type switch over
// the exported types is exhaustive.
package ast

import (
	"fmt"
	"strings"

	"github.com/naerbnic/sci-compiler-sub002/pkg/errors"
)

// Node is the base interface for all AST nodes.
type Node interface {
	Pos() errors.Position
	String() string
}

// Name is an identifier together with where it appeared.
type Name struct {
	Value string
	Loc   errors.Position
}

func (n Name) Pos() errors.Position { return n.Loc }
func (n Name) String() string       { return n.Value }

// NewName builds a Name with no position information.
func NewName(value string) Name {
	return Name{Value: value}
}

// --- Literal values ---

// Value is a compile-time literal: a number or a string.
type Value interface {
	Node
	valueNode()
}

type NumberValue struct {
	Value int
	Loc   errors.Position
}

func (v *NumberValue) Pos() errors.Position { return v.Loc }
func (v *NumberValue) String() string       { return fmt.Sprintf("%d", v.Value) }
func (v *NumberValue) valueNode()           {}

type StringValue struct {
	Value string
	Loc   errors.Position
}

func (v *StringValue) Pos() errors.Position { return v.Loc }
func (v *StringValue) String() string       { return fmt.Sprintf("%q", v.Value) }
func (v *StringValue) valueNode()           {}

// Num and Str build literal values with no position.
func Num(n int) *NumberValue    { return &NumberValue{Value: n} }
func Str(s string) *StringValue { return &StringValue{Value: s} }

func joinNodes[T fmt.Stringer](nodes []T) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, " ")
}
