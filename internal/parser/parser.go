/*
Package parser implements a Pratt (precedence-climbing) parser that turns a
token stream into the typed ast.Node tree, following the precedence ladder
and statement/expression grammar of the language specification. It mirrors
the teacher interpreter's parser in spirit — a cursor over (cur, peek)
tokens, prefix/infix parse-function tables keyed by token kind — generalised
to this language's expression-oriented grammar (no `var`/`while`/`for`;
`let`, `match`, pipelines, composition, and partial application instead).
*/
package parser

import (
	"strconv"
	"strings"

	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/lexer"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/token"
)

type prefixParseFn func() (ast.Expression, error)
type infixParseFn func(ast.Expression) (ast.Expression, error)

// Parser consumes tokens from a Lexer and builds an ast.BlockStatement
// (the Program). It never mutates source text; every node it produces
// carries a Span into the original string.
type Parser struct {
	src string
	lex *lexer.Lexer

	cur  token.Token
	peek token.Token

	prefixFns map[token.Kind]prefixParseFn
	infixFns  map[token.Kind]infixParseFn
}

// New builds a Parser over src, ready to call ParseProgram.
func New(src string) *Parser {
	p := &Parser{src: src, lex: lexer.New(src)}
	p.prefixFns = make(map[token.Kind]prefixParseFn)
	p.infixFns = make(map[token.Kind]infixParseFn)
	p.registerPrefix()
	p.registerInfix()

	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

// ParseProgram parses the entire source as a file-scope block and returns
// it, or the first parse error encountered.
func (p *Parser) ParseProgram() (*ast.BlockStatement, error) {
	start := p.cur.Span
	statements, err := p.parseStatements(token.EOF)
	if err != nil {
		return nil, err
	}
	end := p.cur.Span
	return &ast.BlockStatement{Base: ast.NewBase(span.Cover(start, end)), Statements: statements}, nil
}

// parseStatements parses statements until the cursor sits on `until`
// (RBRACE for a nested block, EOF for the program), consuming stray `;`
// statement terminators along the way.
func (p *Parser) parseStatements(until token.Kind) ([]ast.Statement, error) {
	var statements []ast.Statement
	for p.cur.Kind != until && p.cur.Kind != token.EOF {
		if p.cur.Kind == token.SEMICOLON {
			p.next()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
		if p.cur.Kind == token.SEMICOLON {
			p.next()
		}
	}
	return statements, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch {
	case p.cur.Kind == token.COMMENT:
		stmt := &ast.CommentStatement{Base: ast.NewBase(p.cur.Span), Text: p.cur.Literal}
		p.next()
		return stmt, nil
	case p.cur.Kind == token.RETURN:
		return p.parseReturnStatement()
	case p.cur.Kind == token.BREAK:
		return p.parseBreakStatement()
	case p.cur.Kind == token.IDENT && p.peek.Kind == token.COLON:
		return p.parseSectionStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseReturnStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.next()
	if p.atStatementEnd() {
		return &ast.ReturnStatement{Base: ast.NewBase(start), Value: &ast.NilLiteral{Base: ast.NewBase(start)}}, nil
	}
	val, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStatement{Base: ast.NewBase(span.Cover(start, val.Span())), Value: val}, nil
}

func (p *Parser) parseBreakStatement() (ast.Statement, error) {
	start := p.cur.Span
	p.next()
	if p.atStatementEnd() {
		return &ast.BreakStatement{Base: ast.NewBase(start), Value: &ast.NilLiteral{Base: ast.NewBase(start)}}, nil
	}
	val, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	return &ast.BreakStatement{Base: ast.NewBase(span.Cover(start, val.Span())), Value: val}, nil
}

func (p *Parser) atStatementEnd() bool {
	switch p.cur.Kind {
	case token.SEMICOLON, token.RBRACE, token.EOF:
		return true
	}
	return false
}

func (p *Parser) parseSectionStatement() (ast.Statement, error) {
	start := p.cur.Span
	name := p.cur.Literal
	p.next() // consume name
	p.next() // consume ':'
	if p.cur.Kind != token.LBRACE {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected '{' to open section %q body, found %q", name, p.cur.Literal)
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.SectionStatement{Base: ast.NewBase(span.Cover(start, body.Span())), Name: name, Body: body}, nil
}

func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	expr, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if ident, ok := expr.(*ast.Identifier); ok && p.cur.Kind == token.ASSIGN {
		p.next()
		val, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		assign := &ast.AssignExpression{
			Base:  ast.NewBase(span.Cover(ident.Span(), val.Span())),
			Name:  ident.Name,
			Value: val,
		}
		return &ast.ExpressionStatement{Base: ast.NewBase(assign.Span()), Value: assign}, nil
	}
	return &ast.ExpressionStatement{Base: ast.NewBase(expr.Span()), Value: expr}, nil
}

// parseBlock parses `{ statements... }`, consuming both braces.
func (p *Parser) parseBlock() (*ast.BlockStatement, error) {
	start := p.cur.Span
	if p.cur.Kind != token.LBRACE {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected '{', found %q", p.cur.Literal)
	}
	p.next()
	statements, err := p.parseStatements(token.RBRACE)
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.RBRACE {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected '}' to close block, found EOF")
	}
	end := p.cur.Span
	p.next()
	return &ast.BlockStatement{Base: ast.NewBase(span.Cover(start, end)), Statements: statements}, nil
}

func parseInt(lit string) (int64, error) {
	clean := strings.ReplaceAll(lit, "_", "")
	return strconv.ParseInt(clean, 10, 64)
}

func parseFloat(lit string) (float64, error) {
	clean := strings.ReplaceAll(lit, "_", "")
	return strconv.ParseFloat(clean, 64)
}
