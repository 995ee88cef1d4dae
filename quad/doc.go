// Package quad defines the Quad three-address intermediate
// representation shared by the CPL compiler and the VM: its operand and
// instruction types (quad.go), and the text-format loader used to read a
// Quad program back in, whether compiler-generated or hand-written
// (load.go).
//
// A Quad program is a flat, 1-based-indexed list of typed instructions.
// Every typed opcode is prefixed with its operand type, "I" for Int or "R"
// for Float (Real); the VM (package vm) enforces that prefix against the
// runtime type of every operand it reads. JUMP, JMPZ and HALT carry no
// type prefix.
package quad
