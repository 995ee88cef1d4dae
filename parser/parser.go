// Package parser implements a hand-written recursive-descent parser over
// the CPL surface grammar, producing an ast.Program.
package parser

import (
	"github.com/pkg/errors"

	"github.com/uriyay/CPLCompiler/ast"
	"github.com/uriyay/CPLCompiler/lexer"
)

// SyntaxError reports an unexpected token at a source line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string { return errors.Errorf("line %d: %s", e.Line, e.Msg).Error() }

// Parser consumes a token stream from a lexer.Lexer, buffering a single
// token of lookahead.
type Parser struct {
	lx  *lexer.Lexer
	tok lexer.Token
	err error
}

// New returns a Parser reading tokens from lx.
func New(lx *lexer.Lexer) *Parser {
	p := &Parser{lx: lx}
	p.advance()
	return p
}

func (p *Parser) advance() {
	if p.err != nil {
		return
	}
	tok, err := p.lx.Next()
	if err != nil {
		p.err = err
		return
	}
	p.tok = tok
}

func (p *Parser) fail(format string, args ...interface{}) {
	if p.err == nil {
		p.err = &SyntaxError{Line: p.tok.Line, Msg: errors.Errorf(format, args...).Error()}
	}
}

func (p *Parser) expect(tag lexer.Tag, what string) lexer.Token {
	tok := p.tok
	if p.err != nil {
		return tok
	}
	if tok.Tag != tag {
		p.fail("expected %s, got %q", what, tok.Lexeme)
		return tok
	}
	p.advance()
	return tok
}

// ParseProgram parses a full CPL program. It returns the first error
// encountered (this parser does not attempt error recovery; the spec
// scopes syntactic recovery out of the compiler's error-recovery
// guarantee, which applies only to semantic errors).
func ParseProgram(lx *lexer.Lexer) (*ast.Program, error) {
	p := New(lx)
	prog := p.parseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

func (p *Parser) parseProgram() *ast.Program {
	line := p.tok.Line
	var decls []*ast.Decl
	for p.err == nil && p.tok.Tag == lexer.Ident {
		decls = append(decls, p.parseDeclaration())
	}
	body := p.parseBlock()
	if p.err == nil && p.tok.Tag != lexer.EOF {
		p.fail("unexpected trailing token %q", p.tok.Lexeme)
	}
	return ast.NewProgram(line, decls, body)
}

func (p *Parser) parseDeclaration() *ast.Decl {
	line := p.tok.Line
	var names []string
	names = append(names, p.expect(lexer.Ident, "identifier").Lexeme)
	for p.err == nil && p.tok.Tag == lexer.Comma {
		p.advance()
		names = append(names, p.expect(lexer.Ident, "identifier").Lexeme)
	}
	p.expect(lexer.Colon, "':'")
	t := p.parseType()
	p.expect(lexer.Semicolon, "';'")
	return ast.NewDecl(line, names, t)
}

func (p *Parser) parseType() ast.TypeName {
	switch p.tok.Tag {
	case lexer.KwInt:
		p.advance()
		return ast.IntType
	case lexer.KwFloat:
		p.advance()
		return ast.FloatType
	default:
		p.fail("expected type, got %q", p.tok.Lexeme)
		return ast.IntType
	}
}

func (p *Parser) parseBlock() *ast.Block {
	line := p.tok.Line
	p.expect(lexer.LBrace, "'{'")
	var stmts []ast.Node
	for p.err == nil && p.tok.Tag != lexer.RBrace && p.tok.Tag != lexer.EOF {
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(lexer.RBrace, "'}'")
	return ast.NewBlock(line, stmts)
}

func (p *Parser) parseStmt() ast.Node {
	line := p.tok.Line
	switch p.tok.Tag {
	case lexer.LBrace:
		return p.parseBlock()
	case lexer.KwInput:
		return p.parseInput()
	case lexer.KwOutput:
		return p.parseOutput()
	case lexer.KwIf:
		return p.parseIf()
	case lexer.KwWhile:
		return p.parseWhile()
	case lexer.KwSwitch:
		return p.parseSwitch()
	case lexer.KwBreak:
		p.advance()
		p.expect(lexer.Semicolon, "';'")
		return ast.NewBreak(line)
	case lexer.Ident:
		return p.parseAssign()
	default:
		p.fail("unexpected token %q at start of statement", p.tok.Lexeme)
		return ast.NewBreak(line)
	}
}

func (p *Parser) parseAssign() ast.Node {
	line := p.tok.Line
	name := p.expect(lexer.Ident, "identifier").Lexeme
	p.expect(lexer.Assign, "'='")
	e := p.parseExpression()
	p.expect(lexer.Semicolon, "';'")
	return ast.NewAssign(line, name, e)
}

func (p *Parser) parseInput() ast.Node {
	line := p.tok.Line
	p.expect(lexer.KwInput, "'input'")
	p.expect(lexer.LParen, "'('")
	name := p.expect(lexer.Ident, "identifier").Lexeme
	p.expect(lexer.RParen, "')'")
	p.expect(lexer.Semicolon, "';'")
	return ast.NewInput(line, name)
}

func (p *Parser) parseOutput() ast.Node {
	line := p.tok.Line
	p.expect(lexer.KwOutput, "'output'")
	p.expect(lexer.LParen, "'('")
	e := p.parseExpression()
	p.expect(lexer.RParen, "')'")
	p.expect(lexer.Semicolon, "';'")
	return ast.NewOutput(line, e)
}

func (p *Parser) parseIf() ast.Node {
	line := p.tok.Line
	p.expect(lexer.KwIf, "'if'")
	p.expect(lexer.LParen, "'('")
	cond := p.parseBoolExpr()
	p.expect(lexer.RParen, "')'")
	then := p.parseStmt()
	p.expect(lexer.KwElse, "'else'")
	els := p.parseStmt()
	return ast.NewIf(line, cond, then, els)
}

func (p *Parser) parseWhile() ast.Node {
	line := p.tok.Line
	p.expect(lexer.KwWhile, "'while'")
	p.expect(lexer.LParen, "'('")
	cond := p.parseBoolExpr()
	p.expect(lexer.RParen, "')'")
	body := p.parseStmt()
	return ast.NewWhile(line, cond, body)
}

func (p *Parser) parseSwitch() ast.Node {
	line := p.tok.Line
	p.expect(lexer.KwSwitch, "'switch'")
	p.expect(lexer.LParen, "'('")
	e := p.parseExpression()
	p.expect(lexer.RParen, "')'")
	p.expect(lexer.LBrace, "'{'")
	var cases []ast.Case
	for p.err == nil && p.tok.Tag == lexer.KwCase {
		p.advance()
		v := p.expect(lexer.IntNumber, "integer").IVal
		p.expect(lexer.Colon, "':'")
		stmts := p.parseStmtList()
		cases = append(cases, ast.Case{Value: v, Stmts: stmts})
	}
	p.expect(lexer.KwDefault, "'default'")
	p.expect(lexer.Colon, "':'")
	def := p.parseStmtList()
	p.expect(lexer.RBrace, "'}'")
	return ast.NewSwitch(line, e, cases, def)
}

// parseStmtList parses the statements of a case/default arm, stopping at
// the next "case", "default" or the closing brace.
func (p *Parser) parseStmtList() []ast.Node {
	var stmts []ast.Node
	for p.err == nil && p.tok.Tag != lexer.KwCase && p.tok.Tag != lexer.KwDefault && p.tok.Tag != lexer.RBrace {
		stmts = append(stmts, p.parseStmt())
	}
	return stmts
}

// parseBoolExpr parses boolexpr = boolterm { "||" boolterm }.
func (p *Parser) parseBoolExpr() ast.Expr {
	left := p.parseBoolTerm()
	for p.err == nil && p.tok.Tag == lexer.OrOr {
		line := p.tok.Line
		p.advance()
		right := p.parseBoolTerm()
		left = ast.NewLogExpr(line, ast.LogOr, left, right)
	}
	return left
}

// parseBoolTerm parses boolterm = boolfactor { "&&" boolfactor }.
func (p *Parser) parseBoolTerm() ast.Expr {
	left := p.parseBoolFactor()
	for p.err == nil && p.tok.Tag == lexer.AndAnd {
		line := p.tok.Line
		p.advance()
		right := p.parseBoolFactor()
		left = ast.NewLogExpr(line, ast.LogAnd, left, right)
	}
	return left
}

// parseBoolFactor parses boolfactor = "!" "(" boolexpr ")" | expression RELOP expression.
func (p *Parser) parseBoolFactor() ast.Expr {
	line := p.tok.Line
	if p.tok.Tag == lexer.Not {
		p.advance()
		p.expect(lexer.LParen, "'('")
		e := p.parseBoolExpr()
		p.expect(lexer.RParen, "')'")
		return ast.NewLogExpr(line, ast.LogNot, nil, e)
	}
	left := p.parseExpression()
	op, ok := relop(p.tok.Tag)
	if !ok {
		p.fail("expected relational operator, got %q", p.tok.Lexeme)
		return left
	}
	p.advance()
	right := p.parseExpression()
	return ast.NewBinExpr(line, op, left, right)
}

func relop(tag lexer.Tag) (ast.BinOp, bool) {
	switch tag {
	case lexer.Eq:
		return ast.OpEq, true
	case lexer.Ne:
		return ast.OpNe, true
	case lexer.Lt:
		return ast.OpLt, true
	case lexer.Gt:
		return ast.OpGt, true
	case lexer.Le:
		return ast.OpLe, true
	case lexer.Ge:
		return ast.OpGe, true
	default:
		return 0, false
	}
}

// parseExpression parses expression = term { ("+"|"-") term }.
func (p *Parser) parseExpression() ast.Expr {
	left := p.parseTerm()
	for p.err == nil && (p.tok.Tag == lexer.Plus || p.tok.Tag == lexer.Minus) {
		line := p.tok.Line
		op := ast.OpAdd
		if p.tok.Tag == lexer.Minus {
			op = ast.OpSub
		}
		p.advance()
		right := p.parseTerm()
		left = ast.NewBinExpr(line, op, left, right)
	}
	return left
}

// parseTerm parses term = factor { ("*"|"/") factor }.
func (p *Parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.err == nil && (p.tok.Tag == lexer.Star || p.tok.Tag == lexer.Slash) {
		line := p.tok.Line
		op := ast.OpMul
		if p.tok.Tag == lexer.Slash {
			op = ast.OpDiv
		}
		p.advance()
		right := p.parseFactor()
		left = ast.NewBinExpr(line, op, left, right)
	}
	return left
}

// parseFactor parses factor, including the static_cast<T>(expr) form,
// which is recognized here as the identifier "static_cast" followed by
// "<" type ">" rather than as dedicated lexer tokens.
func (p *Parser) parseFactor() ast.Expr {
	line := p.tok.Line
	switch p.tok.Tag {
	case lexer.LParen:
		p.advance()
		e := p.parseExpression()
		p.expect(lexer.RParen, "')'")
		return e
	case lexer.IntNumber:
		v := p.tok.IVal
		p.advance()
		return ast.NewIntLit(line, v)
	case lexer.FloatNumber:
		v := p.tok.FVal
		p.advance()
		return ast.NewFloatLit(line, v)
	case lexer.Ident:
		if p.tok.Lexeme == "static_cast" {
			return p.parseCast()
		}
		name := p.tok.Lexeme
		p.advance()
		return ast.NewIdent(line, name)
	default:
		p.fail("unexpected token %q in expression", p.tok.Lexeme)
		return ast.NewIntLit(line, 0)
	}
}

func (p *Parser) parseCast() ast.Expr {
	line := p.tok.Line
	p.advance() // "static_cast"
	p.expect(lexer.Lt, "'<'")
	t := p.parseType()
	p.expect(lexer.Gt, "'>'")
	p.expect(lexer.LParen, "'('")
	e := p.parseExpression()
	p.expect(lexer.RParen, "')'")
	return ast.NewCast(line, t, e)
}
