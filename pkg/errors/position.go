package errors

import (
	"fmt"

	"github.com/naerbnic/sci-compiler-sub002/pkg/source"
)

// Position represents a specific location in the source code.
// Line and Column are 1-based; a zero Line means the location is unknown.
type Position struct {
	Line   int                // 1-based line number
	Column int                // 1-based column number
	Source *source.SourceFile // Reference to the source file, may be nil
}

// IsValid reports whether the position carries a line number.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	name := ""
	if p.Source != nil {
		name = p.Source.DisplayPath() + ":"
	}
	if !p.IsValid() {
		if name == "" {
			return "<unknown>"
		}
		return name[:len(name)-1]
	}
	return fmt.Sprintf("%s%d:%d", name, p.Line, p.Column)
}
