// Package symtab implements CPL's lexically scoped symbol table: a stack
// of scope frames mapping identifiers to declared type and assignment
// state.
package symtab

import (
	"github.com/pkg/errors"

	"github.com/uriyay/CPLCompiler/quad"
)

// Symbol is a declared variable: its name, declared type, and whether it
// has been assigned a value yet. Assigned transitions false->true once, on
// the first assignment or input read targeting the symbol, and never
// reverts.
type Symbol struct {
	Name     string
	Type     quad.Type
	Assigned bool
}

// MarkAssigned idempotently marks the symbol as assigned.
func (s *Symbol) MarkAssigned() { s.Assigned = true }

// ErrAlreadyDeclared is returned by Insert when name already exists in the
// innermost scope.
var ErrAlreadyDeclared = errors.New("already declared")

// ErrNotFound is returned by Lookup when name is not visible in any scope.
var ErrNotFound = errors.New("not found")

// Table is a stack of scope frames. The top of the stack (frames[len-1])
// is the innermost scope. It is constructed with one frame already pushed
// for the program's top-level declarations.
type Table struct {
	frames []map[string]*Symbol
}

// New returns a Table with a single, initial (global) scope frame.
func New() *Table {
	return &Table{frames: []map[string]*Symbol{make(map[string]*Symbol)}}
}

// PushScope opens a new, innermost scope frame.
func (t *Table) PushScope() {
	t.frames = append(t.frames, make(map[string]*Symbol))
}

// PopScope closes the innermost scope frame, discarding its symbols.
func (t *Table) PopScope() {
	t.frames = t.frames[:len(t.frames)-1]
}

// Insert adds sym to the innermost scope. It fails with ErrAlreadyDeclared
// if a symbol with the same name already exists in that scope.
func (t *Table) Insert(sym *Symbol) error {
	top := t.frames[len(t.frames)-1]
	if _, exists := top[sym.Name]; exists {
		return errors.Wrapf(ErrAlreadyDeclared, "symbol %q", sym.Name)
	}
	top[sym.Name] = sym
	return nil
}

// Lookup searches scopes from innermost to outermost and returns the first
// match. It fails with ErrNotFound if name is not visible anywhere.
func (t *Table) Lookup(name string) (*Symbol, error) {
	for idx := len(t.frames) - 1; idx >= 0; idx-- {
		if sym, ok := t.frames[idx][name]; ok {
			return sym, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "symbol %q", name)
}
