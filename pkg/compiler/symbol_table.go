package compiler

import (
	"fmt"

	"github.com/naerbnic/sci-compiler-sub002/pkg/codegen"
)

// SymbolKind is the storage class of a resolved identifier.
type SymbolKind int

const (
	SymParam SymbolKind = iota
	SymTemp
	SymLocal
	SymGlobal
	SymProperty
)

func (k SymbolKind) String() string {
	switch k {
	case SymParam:
		return "param"
	case SymTemp:
		return "temp"
	case SymLocal:
		return "local"
	case SymGlobal:
		return "global"
	case SymProperty:
		return "property"
	}
	return fmt.Sprintf("SymbolKind(%d)", int(k))
}

// varKind maps a variable symbol kind to its access space. Properties have none.
func (k SymbolKind) varKind() (codegen.VarKind, bool) {
	switch k {
	case SymParam:
		return codegen.VarParam, true
	case SymTemp:
		return codegen.VarTemp, true
	case SymLocal:
		return codegen.VarLocal, true
	case SymGlobal:
		return codegen.VarGlobal, true
	}
	return 0, false
}

// Symbol represents an entry in the symbol table.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Offset int // Slot within the variable space, or property index
	Length int // Slots spanned; arrays are longer than 1
}

// SymbolTable manages symbols for a single scope.
type SymbolTable struct {
	Outer *SymbolTable      // Pointer to the symbol table of the enclosing scope
	store map[string]Symbol // Stores symbols defined in *this* scope
}

// NewSymbolTable creates a new, outermost symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{store: make(map[string]Symbol)}
}

// NewEnclosedSymbolTable creates a new symbol table enclosed by an outer scope.
func NewEnclosedSymbolTable(outer *SymbolTable) *SymbolTable {
	return &SymbolTable{
		Outer: outer,
		store: make(map[string]Symbol),
	}
}

// Define adds a symbol to the *current* scope's table. It reports false if the name
// is already defined in this scope; outer scopes are not checked.
func (st *SymbolTable) Define(sym Symbol) bool {
	if _, exists := st.store[sym.Name]; exists {
		return false
	}
	st.store[sym.Name] = sym
	return true
}

// Resolve looks up a symbol name starting from the current scope and traversing
// up through outer scopes until found.
// It returns the found symbol, the table it was found in, and a boolean indicating success.
func (st *SymbolTable) Resolve(name string) (Symbol, *SymbolTable, bool) {
	for table := st; table != nil; table = table.Outer {
		if symbol, ok := table.store[name]; ok {
			return symbol, table, true
		}
	}
	return Symbol{}, nil, false
}
