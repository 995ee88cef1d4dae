package codegen

import (
	"github.com/uriyay/CPLCompiler/ast"
	"github.com/uriyay/CPLCompiler/quad"
	"github.com/uriyay/CPLCompiler/symtab"
)

// Generator holds the ambient state threaded through a single codegen
// pass: the symbol table, the shared and fresh temporaries, the
// loop-exit label stack used by break, and the accumulated label
// bindings consumed by the final backpatch pass.
type Generator struct {
	prog   *quad.Program
	syms   *symtab.Table
	errs   []error

	sharedInt   quad.Temp
	sharedFloat quad.Temp
	tempSeq     int

	labelSeq int
	labels   map[int]int // label ID -> bound 1-based instruction index

	loopExit []quad.Label
}

// New returns a Generator ready to compile a single program.
func New() *Generator {
	return &Generator{
		prog:        &quad.Program{},
		syms:        symtab.New(),
		sharedInt:   quad.Temp{ID: 0, Type: quad.Int},
		sharedFloat: quad.Temp{ID: 1, Type: quad.Float},
		tempSeq:     2,
		labels:      make(map[int]int),
	}
}

// Generate compiles prog into a quad.Program. The returned errors, if
// any, are *CompileError values; when len(errs) > 0 the caller must not
// write the returned program to disk (per the compiler's
// no-output-on-error policy) -- the partially emitted program is
// returned anyway for inspection/testing.
func Generate(prog *ast.Program) (*quad.Program, []error) {
	g := New()
	g.genProgram(prog)
	g.prog.Emit(quad.HALT, prog.Line())
	g.backpatch()
	return g.prog, g.errs
}

func (g *Generator) error(line int, kind, format string, args ...interface{}) {
	g.errs = append(g.errs, newError(line, kind, format, args...))
}

func (g *Generator) newTemp(t quad.Type) quad.Temp {
	id := g.tempSeq
	g.tempSeq++
	return quad.Temp{ID: id, Type: t}
}

func (g *Generator) newLabel() quad.Label {
	id := g.labelSeq
	g.labelSeq++
	return quad.Label{ID: id}
}

func (g *Generator) bindLabel(l quad.Label) {
	g.labels[l.ID] = g.prog.Len() + 1
}

// backpatch rewrites every quad.Label operand in the emitted program into
// the Literal instruction index recorded by bindLabel.
func (g *Generator) backpatch() {
	for i, in := range g.prog.Code {
		for j, a := range in.Args {
			lbl, ok := a.(quad.Label)
			if !ok {
				continue
			}
			idx, bound := g.labels[lbl.ID]
			if !bound {
				g.error(in.Lineno, "InternalError", "label l%d never bound", lbl.ID)
				continue
			}
			g.prog.Code[i].Args[j] = quad.IntLiteral(int64(idx))
		}
	}
}

func declType(t ast.TypeName) quad.Type {
	if t == ast.FloatType {
		return quad.Float
	}
	return quad.Int
}

func (g *Generator) sharedOperand(t quad.Type) quad.Operand {
	if t == quad.Float {
		return g.sharedFloat
	}
	return g.sharedInt
}

func (g *Generator) genProgram(p *ast.Program) {
	for _, d := range p.Decls {
		g.genDecl(d)
	}
	g.genStmt(p.Body)
}

func (g *Generator) genDecl(d *ast.Decl) {
	t := declType(d.Type)
	for _, name := range d.Names {
		sym := &symtab.Symbol{Name: name, Type: t}
		if err := g.syms.Insert(sym); err != nil {
			g.error(d.Line(), "AlreadyDeclared", "%q already declared in this scope", name)
		}
	}
}

func (g *Generator) genStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.Block:
		g.genBlock(s)
	case *ast.Assign:
		g.genAssign(s)
	case *ast.Input:
		g.genInput(s)
	case *ast.Output:
		g.genOutput(s)
	case *ast.If:
		g.genIf(s)
	case *ast.While:
		g.genWhile(s)
	case *ast.Switch:
		g.genSwitch(s)
	case *ast.Break:
		g.genBreak(s)
	default:
		g.error(n.Line(), "InternalError", "unhandled statement node %T", n)
	}
}

func (g *Generator) genStmtList(stmts []ast.Node) {
	for _, s := range stmts {
		g.genStmt(s)
	}
}

func (g *Generator) genBlock(b *ast.Block) {
	g.syms.PushScope()
	g.genStmtList(b.Stmts)
	g.syms.PopScope()
}

func (g *Generator) genAssign(a *ast.Assign) {
	sym, err := g.syms.Lookup(a.Name)
	if err != nil {
		g.error(a.Line(), "NotFound", "%q is not declared", a.Name)
		return
	}
	val, typ, ok := g.genExpr(a.Expr)
	if !ok {
		return
	}
	if typ != sym.Type {
		if sym.Type == quad.Float {
			val = g.emitITOR(val, a.Line())
		} else {
			g.error(a.Line(), "TypeMismatch", "cannot assign float to int variable %q without an explicit cast", a.Name)
			return
		}
	}
	g.emitAsn(quad.Name{Ident: sym.Name}, val, sym.Type, a.Line())
	sym.MarkAssigned()
}

func (g *Generator) genInput(in *ast.Input) {
	sym, err := g.syms.Lookup(in.Name)
	if err != nil {
		g.error(in.Line(), "NotFound", "%q is not declared", in.Name)
		return
	}
	op := quad.IINP
	if sym.Type == quad.Float {
		op = quad.RINP
	}
	g.prog.Emit(op, in.Line(), quad.Name{Ident: sym.Name})
	sym.MarkAssigned()
}

func (g *Generator) genOutput(o *ast.Output) {
	val, typ, ok := g.genExpr(o.Expr)
	if !ok {
		return
	}
	op := quad.IPRT
	if typ == quad.Float {
		op = quad.RPRT
	}
	g.prog.Emit(op, o.Line(), val)
}

func (g *Generator) genIf(s *ast.If) {
	lElse := g.newLabel()
	lAfter := g.newLabel()
	if !g.genBool(s.Cond) {
		return
	}
	g.prog.Emit(quad.JMPZ, s.Line(), lElse, g.sharedInt)
	g.genStmt(s.Then)
	g.prog.Emit(quad.JUMP, s.Line(), lAfter)
	g.bindLabel(lElse)
	g.genStmt(s.Else)
	g.bindLabel(lAfter)
}

func (g *Generator) genWhile(s *ast.While) {
	lTop := g.newLabel()
	lExit := g.newLabel()
	g.bindLabel(lTop)
	if !g.genBool(s.Cond) {
		return
	}
	g.prog.Emit(quad.JMPZ, s.Line(), lExit, g.sharedInt)
	g.loopExit = append(g.loopExit, lExit)
	g.genStmt(s.Body)
	g.loopExit = g.loopExit[:len(g.loopExit)-1]
	g.prog.Emit(quad.JUMP, s.Line(), lTop)
	g.bindLabel(lExit)
}

func (g *Generator) genBreak(s *ast.Break) {
	if len(g.loopExit) == 0 {
		g.error(s.Line(), "BreakOutsideLoop", "break outside of any enclosing loop")
		return
	}
	top := g.loopExit[len(g.loopExit)-1]
	g.prog.Emit(quad.JUMP, s.Line(), top)
}

// genSwitch desugars "switch (e) { case n1: S1 ... default: Sd }" into a
// right-associated if/else-if chain evaluated against a copy of e held in
// a fresh Int temporary. It never touches the loop-exit stack: a break
// inside a case body targets the nearest enclosing while.
func (g *Generator) genSwitch(s *ast.Switch) {
	val, typ, ok := g.genExpr(s.Expr)
	if !ok {
		return
	}
	if typ != quad.Int {
		g.error(s.Line(), "TypeMismatch", "switch expression must be int")
		return
	}
	t := g.newTemp(quad.Int)
	g.emitAsn(t, val, quad.Int, s.Line())
	g.genSwitchChain(t, s.Cases, s.Default, s.Line())
}

func (g *Generator) genSwitchChain(t quad.Operand, cases []ast.Case, def []ast.Node, line int) {
	if len(cases) == 0 {
		g.genStmtList(def)
		return
	}
	c := cases[0]
	lElse := g.newLabel()
	lAfter := g.newLabel()
	g.prog.Emit(quad.IEQL, line, g.sharedInt, t, quad.IntLiteral(c.Value))
	g.prog.Emit(quad.JMPZ, line, lElse, g.sharedInt)
	g.genStmtList(c.Stmts)
	g.prog.Emit(quad.JUMP, line, lAfter)
	g.bindLabel(lElse)
	g.genSwitchChain(t, cases[1:], def, line)
	g.bindLabel(lAfter)
}

// emitAsn emits IASN/RASN storing v (of type t) into dst.
func (g *Generator) emitAsn(dst, v quad.Operand, t quad.Type, line int) {
	op := quad.IASN
	if t == quad.Float {
		op = quad.RASN
	}
	g.prog.Emit(op, line, dst, v)
}

// emitITOR and emitRTOI cast into a freshly allocated temporary rather
// than the shared slot of the result type: a sibling operand (e.g. the
// left operand of a binary expression) may already be materialized in
// that shared slot, and casting into it would clobber it out from under
// the caller. This mirrors the original compiler's cast(..., alloc_temp=True).
func (g *Generator) emitITOR(v quad.Operand, line int) quad.Operand {
	t := g.newTemp(quad.Float)
	g.prog.Emit(quad.ITOR, line, t, v)
	return t
}

func (g *Generator) emitRTOI(v quad.Operand, line int) quad.Operand {
	t := g.newTemp(quad.Int)
	g.prog.Emit(quad.RTOI, line, t, v)
	return t
}

func (g *Generator) coerce(v quad.Operand, from, to quad.Type, line int) quad.Operand {
	if from == to {
		return v
	}
	if to == quad.Float {
		return g.emitITOR(v, line)
	}
	return g.emitRTOI(v, line)
}

func promote(a, b quad.Type) quad.Type {
	if a == quad.Float || b == quad.Float {
		return quad.Float
	}
	return quad.Int
}

// spillIfShared protects v from being clobbered by the emission of a
// sibling expression: it is only at risk if it IS the shared temporary of
// its type, since nothing else emission ever overwrites a Name, Literal
// or already-fresh Temp.
func (g *Generator) spillIfShared(v quad.Operand, t quad.Type, line int) quad.Operand {
	temp, ok := v.(quad.Temp)
	if !ok {
		return v
	}
	shared := g.sharedInt
	if t == quad.Float {
		shared = g.sharedFloat
	}
	if temp.ID != shared.ID {
		return v
	}
	fresh := g.newTemp(t)
	g.emitAsn(fresh, v, t, line)
	return fresh
}
