package codegen

import (
	"github.com/uriyay/CPLCompiler/ast"
	"github.com/uriyay/CPLCompiler/quad"
)

var arithOps = map[ast.BinOp]map[quad.Type]quad.Op{
	ast.OpAdd: {quad.Int: quad.IADD, quad.Float: quad.RADD},
	ast.OpSub: {quad.Int: quad.ISUB, quad.Float: quad.RSUB},
	ast.OpMul: {quad.Int: quad.IMLT, quad.Float: quad.RMLT},
	ast.OpDiv: {quad.Int: quad.IDIV, quad.Float: quad.RDIV},
}

var cmpOps = map[ast.BinOp]map[quad.Type]quad.Op{
	ast.OpEq: {quad.Int: quad.IEQL, quad.Float: quad.REQL},
	ast.OpNe: {quad.Int: quad.INQL, quad.Float: quad.RNQL},
	ast.OpLt: {quad.Int: quad.ILSS, quad.Float: quad.RLSS},
	ast.OpGt: {quad.Int: quad.IGRT, quad.Float: quad.RGRT},
}

// genBool lowers a boolexpr and leaves its 0/1 result in the shared Int
// temporary; it reports whether generation succeeded.
func (g *Generator) genBool(e ast.Expr) bool {
	_, _, ok := g.genExpr(e)
	return ok
}

// genExpr lowers any expression node and returns its value operand and
// synthesized type, per the attribute-grammar design: every node's value
// is a leaf operand, never a tree, because arithmetic always materializes
// into a temporary.
func (g *Generator) genExpr(e ast.Expr) (quad.Operand, quad.Type, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		return g.genIdent(n)
	case *ast.IntLit:
		return quad.IntLiteral(n.Value), quad.Int, true
	case *ast.FloatLit:
		return quad.FloatLiteral(n.Value), quad.Float, true
	case *ast.BinExpr:
		return g.genBinExpr(n)
	case *ast.LogExpr:
		return g.genLogExpr(n)
	case *ast.Cast:
		return g.genCast(n)
	default:
		g.error(e.Line(), "InternalError", "unhandled expression node %T", e)
		return quad.IntLiteral(0), quad.Int, false
	}
}

func (g *Generator) genIdent(n *ast.Ident) (quad.Operand, quad.Type, bool) {
	sym, err := g.syms.Lookup(n.Name)
	if err != nil {
		g.error(n.Line(), "NotFound", "%q is not declared", n.Name)
		return quad.IntLiteral(0), quad.Int, false
	}
	if !sym.Assigned {
		g.error(n.Line(), "UsedBeforeAssigned", "%q is read before being assigned", n.Name)
		return quad.IntLiteral(0), quad.Int, false
	}
	return quad.Name{Ident: sym.Name}, sym.Type, true
}

// genBinExpr implements the shared-temporary discipline: the right
// operand is emitted first and spilled to a fresh temp if it landed in
// the shared slot, then the left operand is emitted (free to reuse the
// shared slot), then the binary instruction reads (left, spilled-right)
// into the shared result slot.
func (g *Generator) genBinExpr(n *ast.BinExpr) (quad.Operand, quad.Type, bool) {
	rv, rt, ok := g.genExpr(n.Right)
	if !ok {
		return quad.IntLiteral(0), quad.Int, false
	}
	rv = g.spillIfShared(rv, rt, n.Line())

	lv, lt, ok := g.genExpr(n.Left)
	if !ok {
		return quad.IntLiteral(0), quad.Int, false
	}

	switch n.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv:
		resType := promote(lt, rt)
		lv = g.coerce(lv, lt, resType, n.Line())
		rv = g.coerce(rv, rt, resType, n.Line())
		dest := g.sharedOperand(resType)
		g.prog.Emit(arithOps[n.Op][resType], n.Line(), dest, lv, rv)
		return dest, resType, true
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpGt:
		resType := promote(lt, rt)
		lv = g.coerce(lv, lt, resType, n.Line())
		rv = g.coerce(rv, rt, resType, n.Line())
		g.prog.Emit(cmpOps[n.Op][resType], n.Line(), g.sharedInt, lv, rv)
		return g.sharedInt, quad.Int, true
	case ast.OpLe:
		// lowered independently as "not (a > b)"
		resType := promote(lt, rt)
		lv = g.coerce(lv, lt, resType, n.Line())
		rv = g.coerce(rv, rt, resType, n.Line())
		g.prog.Emit(cmpOps[ast.OpGt][resType], n.Line(), g.sharedInt, lv, rv)
		g.emitNot(n.Line())
		return g.sharedInt, quad.Int, true
	case ast.OpGe:
		// lowered independently as "not (a < b)"
		resType := promote(lt, rt)
		lv = g.coerce(lv, lt, resType, n.Line())
		rv = g.coerce(rv, rt, resType, n.Line())
		g.prog.Emit(cmpOps[ast.OpLt][resType], n.Line(), g.sharedInt, lv, rv)
		g.emitNot(n.Line())
		return g.sharedInt, quad.Int, true
	default:
		g.error(n.Line(), "InternalError", "unhandled binary operator %v", n.Op)
		return quad.IntLiteral(0), quad.Int, false
	}
}

// emitNot flips the canonical 0/1 value in the shared Int temp.
func (g *Generator) emitNot(line int) {
	g.prog.Emit(quad.IEQL, line, g.sharedInt, g.sharedInt, quad.IntLiteral(0))
}

// genLogExpr lowers &&/||/! without short-circuiting, per the boolean
// lowering rules: each operand leaves a canonical 0/1 in the shared Int
// temp, which is what the arithmetic-style combinators below consume.
func (g *Generator) genLogExpr(n *ast.LogExpr) (quad.Operand, quad.Type, bool) {
	if n.Op == ast.LogNot {
		if !g.genBool(n.Right) {
			return quad.IntLiteral(0), quad.Int, false
		}
		g.emitNot(n.Line())
		return g.sharedInt, quad.Int, true
	}

	if !g.genBool(n.Left) {
		return quad.IntLiteral(0), quad.Int, false
	}
	t := g.newTemp(quad.Int)
	g.emitAsn(t, g.sharedInt, quad.Int, n.Line())

	if !g.genBool(n.Right) {
		return quad.IntLiteral(0), quad.Int, false
	}
	g.prog.Emit(quad.IADD, n.Line(), g.sharedInt, t, g.sharedInt)

	switch n.Op {
	case ast.LogOr:
		g.prog.Emit(quad.IGRT, n.Line(), g.sharedInt, g.sharedInt, quad.IntLiteral(0))
	case ast.LogAnd:
		g.prog.Emit(quad.IEQL, n.Line(), g.sharedInt, g.sharedInt, quad.IntLiteral(2))
	default:
		g.error(n.Line(), "InternalError", "unhandled logical operator %v", n.Op)
		return quad.IntLiteral(0), quad.Int, false
	}
	return g.sharedInt, quad.Int, true
}

func (g *Generator) genCast(n *ast.Cast) (quad.Operand, quad.Type, bool) {
	v, t, ok := g.genExpr(n.Expr)
	if !ok {
		return quad.IntLiteral(0), quad.Int, false
	}
	target := declType(n.Type)
	if t == target {
		return v, target, true
	}
	if target == quad.Float {
		return g.emitITOR(v, n.Line()), quad.Float, true
	}
	return g.emitRTOI(v, n.Line()), quad.Int, true
}
