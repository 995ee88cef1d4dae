// Package vm implements the Quad virtual machine.
//
// A Quad program is a flat list of typed three-address instructions
// produced by the CPL compiler (package codegen) or hand-written directly
// in Quad text and loaded with quad.Load. The VM executes it with a
// 1-based program counter and a flat name-to-value environment: the
// first write to a name fixes its value type for the remainder of the
// run, and every later read or write disagreeing with that type is a
// TypeMismatch citing the line the name was first declared at.
//
// Execution is fail-fast: Run returns the first *RuntimeError it
// encounters and leaves the program counter pointing at the offending
// instruction. There is no recovery; the caller is expected to report the
// error and exit, mirroring the compiler's own fail-fast VM policy even
// though the compiler itself recovers at statement granularity.
//
// Trace mode (the Trace option) prints each instruction to the given
// writer as "#pc inst_text" immediately before it executes, which is
// useful for diagnosing control-flow or backpatching bugs in generated
// code.
package vm
