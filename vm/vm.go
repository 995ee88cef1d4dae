package vm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/uriyay/CPLCompiler/quad"
)

// RuntimeError reports a Quad execution failure, always attributable to a
// specific Quad source line.
type RuntimeError struct {
	Line int
	Kind string
	Msg  string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%d: error: %s: %s", e.Line, e.Kind, e.Msg)
}

func rerr(line int, kind, format string, args ...interface{}) error {
	return &RuntimeError{Line: line, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// cell holds one environment entry: the line its name was first written at
// and its value, type-tagged by which field is meaningful.
type cell struct {
	declLine int
	typ      quad.Type
	ival     int64
	fval     float64
}

// Option configures an Instance at construction time.
type Option func(*Instance)

// Input sets the stream input()/read instructions consume from.
func Input(r *bufio.Reader) Option {
	return func(i *Instance) { i.in = r }
}

// Output sets the stream output()/print instructions write to.
func Output(w io.Writer) Option {
	return func(i *Instance) { i.out = w }
}

// Trace enables instruction tracing to the given writer: each instruction
// is printed as "#pc inst_text" immediately before it executes.
func Trace(w io.Writer) Option {
	return func(i *Instance) { i.trace = w }
}

// Instance is a Quad VM execution context.
type Instance struct {
	Program *quad.Program
	pc      int // 1-based
	ns      map[string]*cell
	in      *bufio.Reader
	out     io.Writer
	trace   io.Writer
	insCnt  int64
}

// New creates a Quad VM instance ready to run the given program from its
// first instruction.
func New(p *quad.Program, opts ...Option) *Instance {
	i := &Instance{
		Program: p,
		pc:      1,
		ns:      make(map[string]*cell),
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InstructionCount returns the number of instructions executed so far.
func (i *Instance) InstructionCount() int64 { return i.insCnt }

// PC returns the current 1-based program counter.
func (i *Instance) PC() int { return i.pc }
