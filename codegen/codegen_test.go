package codegen_test

import (
	"testing"

	"github.com/uriyay/CPLCompiler/ast"
	"github.com/uriyay/CPLCompiler/codegen"
	"github.com/uriyay/CPLCompiler/quad"
)

func genProgram(decls []*ast.Decl, stmts []ast.Node) (*quad.Program, []error) {
	prog := ast.NewProgram(1, decls, ast.NewBlock(1, stmts))
	return codegen.Generate(prog)
}

func TestGenerateEndsWithHalt(t *testing.T) {
	p, errs := genProgram(nil, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if p.Len() == 0 || p.Code[p.Len()-1].Op != quad.HALT {
		t.Fatalf("last instruction = %+v, want HALT", p.Code[p.Len()-1])
	}
}

func TestAssignNarrowingWithoutCastFails(t *testing.T) {
	decls := []*ast.Decl{
		ast.NewDecl(1, []string{"x"}, ast.IntType),
		ast.NewDecl(1, []string{"y"}, ast.FloatType),
	}
	stmts := []ast.Node{
		ast.NewAssign(2, "y", ast.NewFloatLit(2, 1.5)),
		ast.NewAssign(3, "x", ast.NewIdent(3, "y")),
	}
	_, errs := genProgram(decls, stmts)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	ce, ok := errs[0].(*codegen.CompileError)
	if !ok || ce.Kind != "TypeMismatch" {
		t.Fatalf("error = %v, want TypeMismatch", errs[0])
	}
}

func TestAssignWideningInsertsCast(t *testing.T) {
	decls := []*ast.Decl{
		ast.NewDecl(1, []string{"y"}, ast.IntType),
		ast.NewDecl(1, []string{"x"}, ast.FloatType),
	}
	stmts := []ast.Node{
		ast.NewAssign(2, "y", ast.NewIntLit(2, 3)),
		ast.NewAssign(3, "x", ast.NewIdent(3, "y")),
	}
	p, errs := genProgram(decls, stmts)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	found := false
	for _, in := range p.Code {
		if in.Op == quad.ITOR {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an ITOR cast instruction, got %v", p.Code)
	}
}

func TestUsedBeforeAssigned(t *testing.T) {
	decls := []*ast.Decl{ast.NewDecl(1, []string{"a"}, ast.IntType)}
	stmts := []ast.Node{ast.NewOutput(2, ast.NewIdent(2, "a"))}
	_, errs := genProgram(decls, stmts)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if ce := errs[0].(*codegen.CompileError); ce.Kind != "UsedBeforeAssigned" {
		t.Fatalf("Kind = %q, want UsedBeforeAssigned", ce.Kind)
	}
}

func TestBreakOutsideLoopFails(t *testing.T) {
	_, errs := genProgram(nil, []ast.Node{ast.NewBreak(1)})
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if ce := errs[0].(*codegen.CompileError); ce.Kind != "BreakOutsideLoop" {
		t.Fatalf("Kind = %q, want BreakOutsideLoop", ce.Kind)
	}
}

func TestSwitchOnNonIntFails(t *testing.T) {
	decls := []*ast.Decl{ast.NewDecl(1, []string{"x"}, ast.FloatType)}
	stmts := []ast.Node{
		ast.NewAssign(2, "x", ast.NewFloatLit(2, 1.0)),
		ast.NewSwitch(3, ast.NewIdent(3, "x"), nil, nil),
	}
	_, errs := genProgram(decls, stmts)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
	}
	if ce := errs[0].(*codegen.CompileError); ce.Kind != "TypeMismatch" {
		t.Fatalf("Kind = %q, want TypeMismatch", ce.Kind)
	}
}

func TestErrorRecoveryContinuesAfterStatement(t *testing.T) {
	decls := []*ast.Decl{ast.NewDecl(1, []string{"a"}, ast.IntType)}
	stmts := []ast.Node{
		ast.NewOutput(2, ast.NewIdent(2, "undeclared")),
		ast.NewAssign(3, "a", ast.NewIntLit(3, 1)),
		ast.NewOutput(4, ast.NewIdent(4, "a")),
	}
	_, errs := genProgram(decls, stmts)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1 (only the undeclared read): %v", len(errs), errs)
	}
}

func TestBackpatchResolvesAllLabels(t *testing.T) {
	decls := []*ast.Decl{ast.NewDecl(1, []string{"i"}, ast.IntType)}
	stmts := []ast.Node{
		ast.NewAssign(2, "i", ast.NewIntLit(2, 0)),
		ast.NewWhile(3, ast.NewBinExpr(3, ast.OpLt, ast.NewIdent(3, "i"), ast.NewIntLit(3, 5)),
			ast.NewBlock(3, []ast.Node{ast.NewOutput(4, ast.NewIdent(4, "i"))})),
	}
	p, errs := genProgram(decls, stmts)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for _, in := range p.Code {
		for _, a := range in.Args {
			if _, isLabel := a.(quad.Label); isLabel {
				t.Fatalf("unresolved label left in instruction %v", in)
			}
			if lit, ok := a.(quad.Literal); ok && (in.Op == quad.JUMP || in.Op == quad.JMPZ) {
				target := int(lit.IVal)
				if lit.Type != quad.Int || target < 1 || target > p.Len()+1 {
					t.Errorf("jump target %v out of range in %v", lit, in)
				}
			}
		}
	}
}
