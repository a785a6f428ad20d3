package parser

import (
	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/token"
)

// operatorIdentTokens are tokens that, in prefix (expression-start)
// position, always parse as an Identifier naming the corresponding
// builtin (e.g. `fold(0, +)`, `xs |> +`). `-` and `!` are not listed:
// they do so only when no operand follows (see parseMinusOrIdentifier).
var operatorIdentTokens = []token.Kind{
	token.PLUS, token.STAR, token.SLASH, token.PERCENT,
	token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
	token.AND, token.OR,
}

func (p *Parser) registerPrefix() {
	p.prefixFns[token.INT] = p.parseIntegerLiteral
	p.prefixFns[token.DECIMAL] = p.parseDecimalLiteral
	p.prefixFns[token.STRING] = p.parseStringLiteral
	p.prefixFns[token.TRUE] = p.parseBooleanLiteral
	p.prefixFns[token.FALSE] = p.parseBooleanLiteral
	p.prefixFns[token.NIL] = p.parseNilLiteral
	p.prefixFns[token.UNDERSCORE] = p.parsePlaceholder
	p.prefixFns[token.IDENT] = p.parseIdentifier
	p.prefixFns[token.DOTDOT] = p.parseSpreadExpression
	p.prefixFns[token.LET] = p.parseLetExpression
	p.prefixFns[token.LPAREN] = p.parseGroupedExpression
	p.prefixFns[token.LBRACKET] = p.parseListLiteral
	p.prefixFns[token.LBRACE] = p.parseSetLiteral
	p.prefixFns[token.HASH_LBRACE] = p.parseDictLiteral
	p.prefixFns[token.PIPE_CHAR] = p.parseFunctionLiteral
	p.prefixFns[token.IF] = p.parseIfExpression
	p.prefixFns[token.MATCH] = p.parseMatchExpression
	p.prefixFns[token.MINUS] = p.parseMinusOrIdentifier
	p.prefixFns[token.BANG] = p.parseBangOrIdentifier
	for _, k := range operatorIdentTokens {
		p.prefixFns[k] = p.parseOperatorIdentifier
	}
}

func (p *Parser) registerInfix() {
	for _, k := range []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.AND, token.OR,
	} {
		p.infixFns[k] = p.parseInfixExpression
	}
	p.infixFns[token.LPAREN] = p.parseCallExpression
	p.infixFns[token.LBRACKET] = p.parseIndexExpression
	p.infixFns[token.DOTDOT] = p.parseRangeExpression
	p.infixFns[token.DOTDOTEQ] = p.parseRangeExpression
	p.infixFns[token.BACKTICK] = p.parseBacktickInfix
	p.infixFns[token.PIPE] = p.parsePipeline
	p.infixFns[token.COMPOSE] = p.parseComposition
}

// parseExpression is the Pratt-parser driver: parse a prefix (nud), then
// keep folding in infix (led) operators while the upcoming operator binds
// tighter than minPrec.
func (p *Parser) parseExpression(minPrec precedence) (ast.Expression, error) {
	prefix, ok := p.prefixFns[p.cur.Kind]
	if !ok {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "no prefix parse function for %q", p.cur.Literal)
	}
	left, err := prefix()
	if err != nil {
		return nil, err
	}

	for !p.atExpressionEnd() && minPrec < p.curPrecedence() {
		infix, ok := p.infixFns[p.cur.Kind]
		if !ok {
			return left, nil
		}
		left, err = infix(left)
		if err != nil {
			return nil, err
		}
	}

	// A trailing closure: `each(xs) |x| { ... }` — if a call expression is
	// immediately followed by a lambda, append it as the final argument.
	if call, ok := left.(*ast.CallExpression); ok && p.cur.Kind == token.PIPE_CHAR {
		fn, err := p.parseFunctionLiteral()
		if err != nil {
			return nil, err
		}
		call.Arguments = append(call.Arguments, fn)
		call.Base = ast.NewBase(span.Cover(call.Span(), fn.Span()))
		left = call
	}

	return left, nil
}

func (p *Parser) atExpressionEnd() bool {
	switch p.cur.Kind {
	case token.SEMICOLON, token.RBRACE, token.RPAREN, token.RBRACKET,
		token.COMMA, token.EOF, token.COLON, token.ELSE, token.IF:
		return true
	}
	return false
}

func (p *Parser) parseIntegerLiteral() (ast.Expression, error) {
	v, err := parseInt(p.cur.Literal)
	if err != nil {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "invalid integer literal %q", p.cur.Literal)
	}
	lit := &ast.IntegerLiteral{Base: ast.NewBase(p.cur.Span), Value: v}
	p.next()
	return lit, nil
}

func (p *Parser) parseDecimalLiteral() (ast.Expression, error) {
	v, err := parseFloat(p.cur.Literal)
	if err != nil {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "invalid decimal literal %q", p.cur.Literal)
	}
	lit := &ast.DecimalLiteral{Base: ast.NewBase(p.cur.Span), Value: v}
	p.next()
	return lit, nil
}

func (p *Parser) parseStringLiteral() (ast.Expression, error) {
	if p.cur.Span.End > len(p.src) {
		return nil, langerr.New(langerr.Lex, span.New(p.cur.Span.Start, len(p.src)), "unterminated string literal")
	}
	lit := &ast.StringLiteral{Base: ast.NewBase(p.cur.Span), Value: p.cur.Literal}
	p.next()
	return lit, nil
}

func (p *Parser) parseBooleanLiteral() (ast.Expression, error) {
	lit := &ast.BooleanLiteral{Base: ast.NewBase(p.cur.Span), Value: p.cur.Kind == token.TRUE}
	p.next()
	return lit, nil
}

func (p *Parser) parseNilLiteral() (ast.Expression, error) {
	lit := &ast.NilLiteral{Base: ast.NewBase(p.cur.Span)}
	p.next()
	return lit, nil
}

func (p *Parser) parsePlaceholder() (ast.Expression, error) {
	lit := &ast.Placeholder{Base: ast.NewBase(p.cur.Span)}
	p.next()
	return lit, nil
}

func (p *Parser) parseIdentifier() (ast.Expression, error) {
	lit := &ast.Identifier{Base: ast.NewBase(p.cur.Span), Name: p.cur.Literal}
	p.next()
	return lit, nil
}

func (p *Parser) parseOperatorIdentifier() (ast.Expression, error) {
	lit := &ast.Identifier{Base: ast.NewBase(p.cur.Span), Name: string(p.cur.Kind)}
	p.next()
	return lit, nil
}

// parseMinusOrIdentifier disambiguates unary negation from the bare `-`
// builtin-naming identifier: if what follows can't start an operand, `-`
// names the subtraction builtin instead of negating something.
func (p *Parser) parseMinusOrIdentifier() (ast.Expression, error) {
	if !p.canStartOperand(p.peek.Kind) {
		return p.parseOperatorIdentifier()
	}
	start := p.cur.Span
	p.next()
	right, err := p.parseExpression(prefix)
	if err != nil {
		return nil, err
	}
	return &ast.PrefixExpression{Base: ast.NewBase(span.Cover(start, right.Span())), Operator: "-", Right: right}, nil
}

func (p *Parser) parseBangOrIdentifier() (ast.Expression, error) {
	if !p.canStartOperand(p.peek.Kind) {
		return p.parseOperatorIdentifier()
	}
	start := p.cur.Span
	p.next()
	right, err := p.parseExpression(prefix)
	if err != nil {
		return nil, err
	}
	return &ast.PrefixExpression{Base: ast.NewBase(span.Cover(start, right.Span())), Operator: "!", Right: right}, nil
}

func (p *Parser) canStartOperand(k token.Kind) bool {
	_, ok := p.prefixFns[k]
	return ok
}

func (p *Parser) parseGroupedExpression() (ast.Expression, error) {
	p.next() // consume '('
	expr, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.RPAREN {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected ')', found %q", p.cur.Literal)
	}
	p.next()
	return expr, nil
}

// parseSpreadExpression handles a leading `..EXPR` in expression position —
// splatting a collection's elements into a list/set literal or call's
// argument list. The `..name` rest-binding forms used in function
// parameters and list/dict patterns are parsed directly by their own
// dedicated grammar and never reach this function.
func (p *Parser) parseSpreadExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.next() // consume '..'
	expr, err := p.parseExpression(prefix)
	if err != nil {
		return nil, err
	}
	return &ast.SpreadExpression{Base: ast.NewBase(span.Cover(start, expr.Span())), Value: expr}, nil
}

func (p *Parser) parseLetExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.next() // consume 'let'
	mutable := false
	if p.cur.Kind == token.MUT {
		mutable = true
		p.next()
	}
	pat, err := p.parsePattern()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.ASSIGN {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected '=' in let binding, found %q", p.cur.Literal)
	}
	p.next()
	val, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	return &ast.LetExpression{
		Base:    ast.NewBase(span.Cover(start, val.Span())),
		Mutable: mutable,
		Pattern: pat,
		Value:   val,
	}, nil
}

func (p *Parser) parseListLiteral() (ast.Expression, error) {
	start := p.cur.Span
	p.next() // consume '['
	elems, err := p.parseExpressionList(token.RBRACKET)
	if err != nil {
		return nil, err
	}
	end := p.cur.Span
	p.next() // consume ']'
	return &ast.ListLiteral{Base: ast.NewBase(span.Cover(start, end)), Elements: elems}, nil
}

func (p *Parser) parseSetLiteral() (ast.Expression, error) {
	start := p.cur.Span
	p.next() // consume '{'
	elems, err := p.parseExpressionList(token.RBRACE)
	if err != nil {
		return nil, err
	}
	end := p.cur.Span
	p.next() // consume '}'
	return &ast.SetLiteral{Base: ast.NewBase(span.Cover(start, end)), Elements: elems}, nil
}

func (p *Parser) parseExpressionList(terminator token.Kind) ([]ast.Expression, error) {
	var elems []ast.Expression
	if p.cur.Kind == terminator {
		return elems, nil
	}
	for {
		el, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		elems = append(elems, el)
		if p.cur.Kind == token.COMMA {
			p.next()
			if p.cur.Kind == terminator {
				break
			}
			continue
		}
		break
	}
	if p.cur.Kind != terminator {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected %q, found %q", terminator, p.cur.Literal)
	}
	return elems, nil
}

// parseDictLiteral parses `#{ k1: v1, k2, ..spread }`, where a bare `k2`
// entry is shorthand for `k2: k2` and a spread merges another dictionary.
func (p *Parser) parseDictLiteral() (ast.Expression, error) {
	start := p.cur.Span
	p.next() // consume '#{'
	var entries []ast.DictEntry
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		keyExpr, err := p.parseExpression(lowest)
		if err != nil {
			return nil, err
		}
		if p.cur.Kind == token.COLON {
			p.next()
			valExpr, err := p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ast.DictEntry{Key: keyExpr, Value: valExpr})
		} else if ident, ok := keyExpr.(*ast.Identifier); ok {
			entries = append(entries, ast.DictEntry{
				Key:   &ast.StringLiteral{Base: ast.NewBase(ident.Span()), Value: ident.Name},
				Value: ident,
			})
		} else {
			entries = append(entries, ast.DictEntry{Key: keyExpr, Value: keyExpr})
		}
		if p.cur.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if p.cur.Kind != token.RBRACE {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected '}' to close dictionary literal, found %q", p.cur.Literal)
	}
	end := p.cur.Span
	p.next()
	return &ast.DictLiteral{Base: ast.NewBase(span.Cover(start, end)), Entries: entries}, nil
}

// parseFunctionLiteral parses `|p1, p2, ..rest| BODY`, where BODY is a
// brace-delimited block or, for a single-statement body, a bare expression.
func (p *Parser) parseFunctionLiteral() (ast.Expression, error) {
	start := p.cur.Span
	p.next() // consume opening '|'
	var params []ast.Pattern
	rest := ""
	for p.cur.Kind != token.PIPE_CHAR && p.cur.Kind != token.EOF {
		if p.cur.Kind == token.DOTDOT {
			p.next()
			if p.cur.Kind != token.IDENT {
				return nil, langerr.New(langerr.Parse, p.cur.Span, "expected rest parameter name, found %q", p.cur.Literal)
			}
			rest = p.cur.Literal
			p.next()
			break // rest must be last
		}
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		params = append(params, pat)
		if p.cur.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if p.cur.Kind != token.PIPE_CHAR {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected '|' to close parameter list, found %q", p.cur.Literal)
	}
	p.next() // consume closing '|'

	var body ast.Statement
	var err error
	if p.cur.Kind == token.LBRACE {
		body, err = p.parseBlock()
	} else {
		body, err = p.parseExpressionStatement()
	}
	if err != nil {
		return nil, err
	}
	return &ast.FunctionLiteral{
		Base:   ast.NewBase(span.Cover(start, body.Span())),
		Params: params,
		Rest:   rest,
		Body:   body,
	}, nil
}

func (p *Parser) parseIfExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.next() // consume 'if'
	cond, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBlock *ast.BlockStatement
	end := then.Span()
	if p.cur.Kind == token.ELSE {
		p.next()
		if p.cur.Kind == token.IF {
			nested, err := p.parseIfExpression()
			if err != nil {
				return nil, err
			}
			elseBlock = &ast.BlockStatement{
				Base:       ast.NewBase(nested.Span()),
				Statements: []ast.Statement{&ast.ExpressionStatement{Base: ast.NewBase(nested.Span()), Value: nested}},
			}
		} else {
			elseBlock, err = p.parseBlock()
			if err != nil {
				return nil, err
			}
		}
		end = elseBlock.Span()
	}
	return &ast.IfExpression{
		Base:      ast.NewBase(span.Cover(start, end)),
		Condition: cond,
		Then:      then,
		Else:      elseBlock,
	}, nil
}

// parseMatchExpression parses `match SUBJECT { PATTERN [if GUARD] { BODY }... }`.
func (p *Parser) parseMatchExpression() (ast.Expression, error) {
	start := p.cur.Span
	p.next() // consume 'match'
	subject, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.LBRACE {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected '{' to open match arms, found %q", p.cur.Literal)
	}
	p.next()
	var arms []ast.MatchArm
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		pat, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		var guard ast.Expression
		if p.cur.Kind == token.IF {
			p.next()
			guard, err = p.parseExpression(lowest)
			if err != nil {
				return nil, err
			}
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body})
	}
	if p.cur.Kind != token.RBRACE {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected '}' to close match, found EOF")
	}
	end := p.cur.Span
	p.next()
	return &ast.MatchExpression{Base: ast.NewBase(span.Cover(start, end)), Subject: subject, Arms: arms}, nil
}

func (p *Parser) parseInfixExpression(left ast.Expression) (ast.Expression, error) {
	op := p.cur.Literal
	prec := p.curPrecedence()
	p.next()
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}
	return &ast.InfixExpression{
		Base:     ast.NewBase(span.Cover(left.Span(), right.Span())),
		Operator: op,
		Left:     left,
		Right:    right,
	}, nil
}

// parseBacktickInfix desugars `` a `name` b `` into `name(a, b)`, letting any
// two-argument function be used as an infix operator.
func (p *Parser) parseBacktickInfix(left ast.Expression) (ast.Expression, error) {
	start := left.Span()
	p.next() // consume opening '`'
	if p.cur.Kind != token.IDENT {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected identifier inside backtick call, found %q", p.cur.Literal)
	}
	name := &ast.Identifier{Base: ast.NewBase(p.cur.Span), Name: p.cur.Literal}
	p.next()
	if p.cur.Kind != token.BACKTICK {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected closing '`', found %q", p.cur.Literal)
	}
	p.next() // consume closing '`'
	right, err := p.parseExpression(product)
	if err != nil {
		return nil, err
	}
	return &ast.CallExpression{
		Base:      ast.NewBase(span.Cover(start, right.Span())),
		Callee:    name,
		Arguments: []ast.Expression{left, right},
	}, nil
}

func (p *Parser) parseCallExpression(callee ast.Expression) (ast.Expression, error) {
	start := callee.Span()
	p.next() // consume '('
	args, err := p.parseExpressionList(token.RPAREN)
	if err != nil {
		return nil, err
	}
	end := p.cur.Span
	p.next() // consume ')'
	return &ast.CallExpression{Base: ast.NewBase(span.Cover(start, end)), Callee: callee, Arguments: args}, nil
}

func (p *Parser) parseIndexExpression(left ast.Expression) (ast.Expression, error) {
	start := left.Span()
	p.next() // consume '['
	idx, err := p.parseExpression(lowest)
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != token.RBRACKET {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected ']', found %q", p.cur.Literal)
	}
	end := p.cur.Span
	p.next()
	return &ast.IndexExpression{Base: ast.NewBase(span.Cover(start, end)), Left: left, Index: idx}, nil
}

func (p *Parser) parseRangeExpression(left ast.Expression) (ast.Expression, error) {
	kind := ast.RangeExclusive
	if p.cur.Kind == token.DOTDOTEQ {
		kind = ast.RangeInclusive
	}
	start := left.Span()
	p.next() // consume '..' / '..='

	if _, ok := p.prefixFns[p.cur.Kind]; !ok {
		return &ast.RangeExpression{Base: ast.NewBase(start), Start: left, End: nil, Kind: ast.RangeUnbounded}, nil
	}
	right, err := p.parseExpression(sum)
	if err != nil {
		return nil, err
	}
	return &ast.RangeExpression{Base: ast.NewBase(span.Cover(start, right.Span())), Start: left, End: right, Kind: kind}, nil
}

// parsePipeline parses `source |> stage1 |> stage2 ...`.
func (p *Parser) parsePipeline(left ast.Expression) (ast.Expression, error) {
	stages := []ast.Expression{}
	source := left
	if pl, ok := left.(*ast.PipelineExpression); ok {
		source = pl.Source
		stages = append(stages, pl.Stages...)
	}
	p.next() // consume '|>'
	stage, err := p.parseExpression(composition)
	if err != nil {
		return nil, err
	}
	stages = append(stages, stage)
	return &ast.PipelineExpression{Base: ast.NewBase(span.Cover(source.Span(), stage.Span())), Source: source, Stages: stages}, nil
}

// parseComposition parses `f >> g >> h`, producing a Composition function
// value (never applies anything itself).
func (p *Parser) parseComposition(left ast.Expression) (ast.Expression, error) {
	stages := []ast.Expression{left}
	if comp, ok := left.(*ast.CompositionExpression); ok {
		stages = comp.Stages
	}
	p.next()
	stage, err := p.parseExpression(composition)
	if err != nil {
		return nil, err
	}
	stages = append(stages, stage)
	return &ast.CompositionExpression{Base: ast.NewBase(span.Cover(left.Span(), stage.Span())), Stages: stages}, nil
}
