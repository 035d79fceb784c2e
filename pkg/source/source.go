package source

import (
	"path/filepath"
	"strings"
)

// SourceFile identifies the script or header an AST node was parsed from.
// The core never reads files; the parser hands these in alongside the items.
type SourceFile struct {
	Name    string // Display name (e.g., "rm001.sc", "system.sh")
	Path    string // Full file path (empty for synthesized input)
	Content string // The source text, if the caller kept it
	lines   []string
}

// NewSourceFile creates a new source file
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// FromFile creates a SourceFile from a file path and content
func FromFile(filePath, content string) *SourceFile {
	return NewSourceFile(filepath.Base(filePath), filePath, content)
}

// Synthetic creates a source for items built in memory (tests, generated headers).
func Synthetic(name string) *SourceFile {
	return &SourceFile{Name: "<" + name + ">"}
}

// Lines returns the source split into lines (cached)
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// Line returns the 1-based line n, or "" when out of range.
func (sf *SourceFile) Line(n int) string {
	lines := sf.Lines()
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name)
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

// IsFile returns true if this represents an actual file (has a path)
func (sf *SourceFile) IsFile() bool {
	return sf.Path != ""
}
