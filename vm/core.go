package vm

import (
	"fmt"
	"math"

	"github.com/uriyay/CPLCompiler/quad"
)

// Run executes the loaded program from the current PC until HALT. If a
// runtime error occurs, pc stays pointed at the offending instruction and
// the error is returned; execution never resumes after an error (VM errors
// are fail-fast, per the language's error propagation policy).
func (i *Instance) Run() error {
	for i.pc-1 < len(i.Program.Code) {
		in := i.Program.Code[i.pc-1]
		if i.trace != nil {
			fmt.Fprintf(i.trace, "#%d %s\n", i.pc, in.String())
		}
		i.pc++
		if err := i.exec(in); err != nil {
			i.pc--
			return err
		}
		i.insCnt++
		if in.Op == quad.HALT {
			return nil
		}
	}
	return nil
}

func (i *Instance) exec(in quad.Instruction) error {
	switch in.Op {
	case quad.HALT:
		return nil
	case quad.IASN:
		return i.execAsn(in, quad.Int)
	case quad.RASN:
		return i.execAsn(in, quad.Float)
	case quad.IPRT:
		return i.execPrt(in, quad.Int)
	case quad.RPRT:
		return i.execPrt(in, quad.Float)
	case quad.IINP:
		return i.execInp(in, quad.Int)
	case quad.RINP:
		return i.execInp(in, quad.Float)
	case quad.IEQL:
		return i.execCmp(in, quad.Int, func(a, b float64) bool { return a == b })
	case quad.REQL:
		return i.execCmp(in, quad.Float, func(a, b float64) bool { return a == b })
	case quad.INQL:
		return i.execCmp(in, quad.Int, func(a, b float64) bool { return a != b })
	case quad.RNQL:
		return i.execCmp(in, quad.Float, func(a, b float64) bool { return a != b })
	case quad.ILSS:
		return i.execCmp(in, quad.Int, func(a, b float64) bool { return a < b })
	case quad.RLSS:
		return i.execCmp(in, quad.Float, func(a, b float64) bool { return a < b })
	case quad.IGRT:
		return i.execCmp(in, quad.Int, func(a, b float64) bool { return a > b })
	case quad.RGRT:
		return i.execCmp(in, quad.Float, func(a, b float64) bool { return a > b })
	case quad.IADD:
		return i.execArithInt(in, func(a, b int64) (int64, error) { return a + b, nil })
	case quad.RADD:
		return i.execArithFloat(in, func(a, b float64) float64 { return a + b })
	case quad.ISUB:
		return i.execArithInt(in, func(a, b int64) (int64, error) { return a - b, nil })
	case quad.RSUB:
		return i.execArithFloat(in, func(a, b float64) float64 { return a - b })
	case quad.IMLT:
		return i.execArithInt(in, func(a, b int64) (int64, error) { return a * b, nil })
	case quad.RMLT:
		return i.execArithFloat(in, func(a, b float64) float64 { return a * b })
	case quad.IDIV:
		return i.execArithInt(in, func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, rerr(in.Lineno, "DivisionByZero", "integer division by zero")
			}
			return floorDiv(a, b), nil
		})
	case quad.RDIV:
		return i.execArithFloat(in, func(a, b float64) float64 { return a / b })
	case quad.ITOR:
		return i.execCast(in, quad.Int, quad.Float)
	case quad.RTOI:
		return i.execCast(in, quad.Float, quad.Int)
	case quad.JUMP:
		return i.execJump(in)
	case quad.JMPZ:
		return i.execJmpz(in)
	default:
		return rerr(in.Lineno, "InvalidOp", "unknown opcode %q", in.Op)
	}
}

// floorDiv computes integer division truncated toward negative infinity,
// matching the original interpreter's Python "//" semantics.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (i *Instance) execAsn(in quad.Instruction, t quad.Type) error {
	v, err := i.readOperand(in.Args[1], t, in.Lineno)
	if err != nil {
		return err
	}
	return i.write(in.Args[0], t, v, in.Lineno)
}

func (i *Instance) execPrt(in quad.Instruction, t quad.Type) error {
	v, err := i.readOperand(in.Args[0], t, in.Lineno)
	if err != nil {
		return err
	}
	if t == quad.Float {
		fmt.Fprintln(i.out, quad.FormatFloat(v.fval))
	} else {
		fmt.Fprintln(i.out, v.ival)
	}
	return nil
}

func (i *Instance) execInp(in quad.Instruction, t quad.Type) error {
	name, ok := in.Args[0].(quad.Name)
	if !ok {
		return rerr(in.Lineno, "InvalidOperand", "IINP/RINP destination must be a name")
	}
	var v cellValue
	if t == quad.Float {
		var f float64
		if _, err := fmt.Fscan(i.in, &f); err != nil {
			return rerr(in.Lineno, "InvalidOperand", "failed to read float: %v", err)
		}
		v = cellValue{fval: f}
	} else {
		var n int64
		if _, err := fmt.Fscan(i.in, &n); err != nil {
			return rerr(in.Lineno, "InvalidOperand", "failed to read int: %v", err)
		}
		v = cellValue{ival: n}
	}
	return i.write(quad.Name{Ident: name.Ident}, t, v, in.Lineno)
}

func (i *Instance) execCmp(in quad.Instruction, t quad.Type, cmp func(a, b float64) bool) error {
	a, err := i.readOperand(in.Args[1], t, in.Lineno)
	if err != nil {
		return err
	}
	b, err := i.readOperand(in.Args[2], t, in.Lineno)
	if err != nil {
		return err
	}
	var af, bf float64
	if t == quad.Float {
		af, bf = a.fval, b.fval
	} else {
		af, bf = float64(a.ival), float64(b.ival)
	}
	result := int64(0)
	if cmp(af, bf) {
		result = 1
	}
	return i.write(in.Args[0], quad.Int, cellValue{ival: result}, in.Lineno)
}

func (i *Instance) execArithInt(in quad.Instruction, op func(a, b int64) (int64, error)) error {
	a, err := i.readOperand(in.Args[1], quad.Int, in.Lineno)
	if err != nil {
		return err
	}
	b, err := i.readOperand(in.Args[2], quad.Int, in.Lineno)
	if err != nil {
		return err
	}
	r, err := op(a.ival, b.ival)
	if err != nil {
		return err
	}
	return i.write(in.Args[0], quad.Int, cellValue{ival: r}, in.Lineno)
}

func (i *Instance) execArithFloat(in quad.Instruction, op func(a, b float64) float64) error {
	a, err := i.readOperand(in.Args[1], quad.Float, in.Lineno)
	if err != nil {
		return err
	}
	b, err := i.readOperand(in.Args[2], quad.Float, in.Lineno)
	if err != nil {
		return err
	}
	return i.write(in.Args[0], quad.Float, cellValue{fval: op(a.fval, b.fval)}, in.Lineno)
}

func (i *Instance) execCast(in quad.Instruction, from, to quad.Type) error {
	v, err := i.readOperand(in.Args[1], from, in.Lineno)
	if err != nil {
		return err
	}
	var out cellValue
	if to == quad.Float {
		out = cellValue{fval: float64(v.ival)}
	} else {
		out = cellValue{ival: truncToInt(v.fval)}
	}
	return i.write(in.Args[0], to, out, in.Lineno)
}

// truncToInt truncates toward zero, matching Python's int() conversion
// used by the reference interpreter for RTOI.
func truncToInt(f float64) int64 {
	return int64(math.Trunc(f))
}

func (i *Instance) execJump(in quad.Instruction) error {
	target, err := i.jumpTarget(in.Args[0], in.Lineno)
	if err != nil {
		return err
	}
	i.pc = target
	return nil
}

func (i *Instance) execJmpz(in quad.Instruction) error {
	target, err := i.jumpTarget(in.Args[0], in.Lineno)
	if err != nil {
		return err
	}
	v, err := i.readOperand(in.Args[1], quad.Int, in.Lineno)
	if err != nil {
		return err
	}
	if v.ival == 0 {
		i.pc = target
	}
	return nil
}

func (i *Instance) jumpTarget(op quad.Operand, line int) (int, error) {
	lit, ok := op.(quad.Literal)
	if !ok || lit.Type != quad.Int {
		return 0, rerr(line, "InvalidJumpTarget", "jump target must be an integer literal")
	}
	target := int(lit.IVal)
	if target < 1 || target > len(i.Program.Code)+1 {
		return 0, rerr(line, "InvalidJumpTarget", "target %d out of range [1,%d]", target, len(i.Program.Code)+1)
	}
	return target, nil
}
