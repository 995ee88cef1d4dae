package vm

import "github.com/uriyay/CPLCompiler/quad"

// cellValue is an untagged payload; the caller always knows which field is
// meaningful from the quad.Type it requested.
type cellValue struct {
	ival int64
	fval float64
}

// identOf reports the environment key for any operand that names a
// storage location: a Name (source variable) and a Temp (compiler
// temporary) are indistinguishable once instructions leave the compiler
// -- a Temp written to Quad text and reloaded comes back as a Name with
// the same identifier, so the VM treats both identically here rather
// than requiring a round trip through text to unify them.
func identOf(op quad.Operand) (string, bool) {
	switch o := op.(type) {
	case quad.Name:
		return o.Ident, true
	case quad.Temp:
		return o.String(), true
	default:
		return "", false
	}
}

// readOperand resolves an operand to a value of the expected type. A
// Literal is checked against the expected type directly; a Name or Temp
// is looked up in the environment and its declared type is checked
// against the expected type.
func (i *Instance) readOperand(op quad.Operand, want quad.Type, line int) (cellValue, error) {
	if lit, ok := op.(quad.Literal); ok {
		if lit.Type != want {
			return cellValue{}, rerr(line, "TypeMismatch", "expected %s literal, got %s", want, lit.Type)
		}
		return cellValue{ival: lit.IVal, fval: lit.FVal}, nil
	}
	ident, ok := identOf(op)
	if !ok {
		return cellValue{}, rerr(line, "InvalidOperand", "operand %v cannot be read at runtime", op)
	}
	c, ok := i.ns[ident]
	if !ok {
		return cellValue{}, rerr(line, "TypeMismatch", "undeclared name %q", ident)
	}
	if c.typ != want {
		return cellValue{}, rerr(line, "TypeMismatch", "variable %q declared at line %d as %s, expected %s", ident, c.declLine, c.typ, want)
	}
	return cellValue{ival: c.ival, fval: c.fval}, nil
}

// write stores a value of type t into the named destination operand,
// declaring the name on its first write and enforcing the declared type on
// every subsequent write.
func (i *Instance) write(dst quad.Operand, t quad.Type, v cellValue, line int) error {
	ident, ok := identOf(dst)
	if !ok {
		return rerr(line, "InvalidOperand", "write destination must be a name")
	}
	c, ok := i.ns[ident]
	if !ok {
		i.ns[ident] = &cell{declLine: line, typ: t, ival: v.ival, fval: v.fval}
		return nil
	}
	if c.typ != t {
		return rerr(line, "TypeMismatch", "variable %q declared at line %d as %s, cannot assign %s", ident, c.declLine, c.typ, t)
	}
	c.ival, c.fval = v.ival, v.fval
	return nil
}
