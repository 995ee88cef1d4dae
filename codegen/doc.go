// Package codegen implements the CPL code generator: an attribute-grammar
// walk over an ast.Program that emits a quad.Program.
//
// The walk is bottom-up for expressions and top-down for statements.
// Every expression synthesizes a (value, type) pair, where value is
// always a leaf quad.Operand -- arithmetic never produces a tree, because
// every binary operation is immediately materialized into an
// instruction writing to one of two shared temporaries, one Int and one
// Float (codegen.go). Protecting a value from being overwritten by a
// sibling expression's use of that same shared slot is the job of
// spillIfShared, which is the direct implementation of what the language
// calls the shared-temporary discipline.
//
// Labels are allocated eagerly and bound lazily: newLabel reserves a
// symbolic name before its target is known (needed for forward jumps like
// the else/after branches of an if), and bindLabel records the
// instruction index once it is. Generate's final backpatch pass rewrites
// every quad.Label operand left in the emitted program into the
// concrete index recorded for it.
package codegen
