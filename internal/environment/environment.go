/*
Package environment implements the lexically scoped binding store: an
ordered list of (name, value, mutable) bindings plus accumulated
sections, with an optional outer frame. It generalizes the teacher
interpreter's scope.go (which tracks two separate Consts/LetVars maps
keyed by declared type) into this language's simpler single-map,
mutable-bit-per-binding model, since this language has no static type
system to key bindings by.
*/
package environment

import (
	"fmt"

	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/value"
)

type binding struct {
	value   value.Value
	mutable bool
}

// Section is one accumulated `NAME: { BODY }` declaration.
type Section struct {
	Name string
	Body *ast.BlockStatement
}

// Environment is a single lexical frame. The zero value is not usable;
// construct with New or NewChild.
type Environment struct {
	outer    *Environment
	bindings map[string]*binding
	order    []string // declaration order, for Variables()
	sections []Section
}

// New builds a root frame with no outer scope.
func New() *Environment {
	return &Environment{bindings: make(map[string]*binding)}
}

// NewChild builds a frame whose lookups fall back to outer.
func NewChild(outer *Environment) *Environment {
	return &Environment{outer: outer, bindings: make(map[string]*binding)}
}

// Declare binds name to v in the current frame. Re-declaring an
// already-declared name in the same frame is an error; shadowing an
// outer frame's binding is allowed.
func (e *Environment) Declare(name string, v value.Value, mutable bool) error {
	if _, exists := e.bindings[name]; exists {
		return fmt.Errorf("%q is already declared in this scope", name)
	}
	e.bindings[name] = &binding{value: v, mutable: mutable}
	e.order = append(e.order, name)
	return nil
}

// Get walks outward through frames looking for name.
func (e *Environment) Get(name string) (value.Value, bool) {
	for f := e; f != nil; f = f.outer {
		if b, ok := f.bindings[name]; ok {
			return b.value, true
		}
	}
	return nil, false
}

// Assign walks outward to find name's declaring frame and overwrites its
// value there; it errors if name was never declared or was declared
// immutable.
func (e *Environment) Assign(name string, v value.Value) error {
	for f := e; f != nil; f = f.outer {
		if b, ok := f.bindings[name]; ok {
			if !b.mutable {
				return fmt.Errorf("%q is not mutable", name)
			}
			b.value = v
			return nil
		}
	}
	return fmt.Errorf("%q is not declared", name)
}

// AddSection appends a section to this frame's accumulated list.
func (e *Environment) AddSection(name string, body *ast.BlockStatement) {
	e.sections = append(e.sections, Section{Name: name, Body: body})
}

// GetSections returns every section named name declared directly in this
// frame, in declaration order.
func (e *Environment) GetSections(name string) []Section {
	var out []Section
	for _, s := range e.sections {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// Variables returns this frame's own bindings (not outer frames') in
// declaration order, for introspection / debugging.
func (e *Environment) Variables() []struct {
	Name  string
	Value value.Value
} {
	out := make([]struct {
		Name  string
		Value value.Value
	}, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, struct {
			Name  string
			Value value.Value
		}{Name: name, Value: e.bindings[name].value})
	}
	return out
}
