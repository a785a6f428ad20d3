package parser

import (
	"github.com/eddmann/santa-lang-go/internal/ast"
	"github.com/eddmann/santa-lang-go/internal/langerr"
	"github.com/eddmann/santa-lang-go/internal/span"
	"github.com/eddmann/santa-lang-go/internal/token"
)

// parsePattern parses the restricted grammar legal in binding contexts:
// let bindings, function parameters, and match arms. Patterns share surface
// syntax with list/dict literals but only ever bind names or match shape.
func (p *Parser) parsePattern() (ast.Pattern, error) {
	switch p.cur.Kind {
	case token.UNDERSCORE:
		pat := &ast.PlaceholderPattern{Base: ast.NewBase(p.cur.Span)}
		p.next()
		return pat, nil
	case token.IDENT:
		return p.parseIdentifierOrRangePattern()
	case token.INT, token.DECIMAL, token.STRING, token.TRUE, token.FALSE, token.NIL, token.MINUS:
		return p.parseLiteralOrRangePattern()
	case token.LBRACKET:
		return p.parseListPattern()
	case token.HASH_LBRACE:
		return p.parseDictPattern()
	default:
		return nil, langerr.New(langerr.Parse, p.cur.Span, "unexpected token %q in pattern", p.cur.Literal)
	}
}

func (p *Parser) parseIdentifierOrRangePattern() (ast.Pattern, error) {
	start := p.cur.Span
	name := p.cur.Literal
	ident := &ast.IdentifierPattern{Base: ast.NewBase(start), Name: name}
	p.next()
	if p.cur.Kind == token.DOTDOT || p.cur.Kind == token.DOTDOTEQ {
		return p.finishRangePattern(&ast.Identifier{Base: ast.NewBase(start), Name: name})
	}
	return ident, nil
}

// parseLiteralOrRangePattern parses a literal pattern (int/decimal/string/
// bool/nil, with optional leading `-`), promoting it to a RangePattern if a
// `..`/`..=` follows (e.g. `1..=5`, `-3..0`).
func (p *Parser) parseLiteralOrRangePattern() (ast.Pattern, error) {
	start := p.cur.Span
	lit, err := p.parsePatternLiteralValue()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind == token.DOTDOT || p.cur.Kind == token.DOTDOTEQ {
		return p.finishRangePattern(lit)
	}
	return &ast.LiteralPattern{Base: ast.NewBase(span.Cover(start, lit.Span())), Value: lit}, nil
}

func (p *Parser) finishRangePattern(startExpr ast.Expression) (ast.Pattern, error) {
	kind := ast.RangeExclusive
	if p.cur.Kind == token.DOTDOTEQ {
		kind = ast.RangeInclusive
	}
	p.next() // consume '..' / '..='
	var endExpr ast.Expression
	if _, ok := p.prefixFns[p.cur.Kind]; ok {
		var err error
		endExpr, err = p.parsePatternLiteralValue()
		if err != nil {
			return nil, err
		}
	} else {
		kind = ast.RangeUnbounded
	}
	end := startExpr.Span()
	if endExpr != nil {
		end = endExpr.Span()
	}
	rng := &ast.RangeExpression{
		Base:  ast.NewBase(span.Cover(startExpr.Span(), end)),
		Start: startExpr,
		End:   endExpr,
		Kind:  kind,
	}
	return &ast.RangePattern{Base: ast.NewBase(rng.Span()), Value: rng}, nil
}

// parsePatternLiteralValue parses the literal-expression forms legal as a
// pattern value or range endpoint, handling a leading unary `-`.
func (p *Parser) parsePatternLiteralValue() (ast.Expression, error) {
	if p.cur.Kind == token.MINUS {
		start := p.cur.Span
		p.next()
		inner, err := p.parsePatternLiteralValue()
		if err != nil {
			return nil, err
		}
		return &ast.PrefixExpression{Base: ast.NewBase(span.Cover(start, inner.Span())), Operator: "-", Right: inner}, nil
	}
	switch p.cur.Kind {
	case token.INT:
		return p.parseIntegerLiteral()
	case token.DECIMAL:
		return p.parseDecimalLiteral()
	case token.STRING:
		return p.parseStringLiteral()
	case token.TRUE, token.FALSE:
		return p.parseBooleanLiteral()
	case token.NIL:
		return p.parseNilLiteral()
	default:
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected a literal value in pattern, found %q", p.cur.Literal)
	}
}

// parseListPattern parses `[p1, p2, ..rest, p3]`, a single rest element
// legal anywhere in the element list (RestIndex marks its position, -1 if
// absent).
func (p *Parser) parseListPattern() (ast.Pattern, error) {
	start := p.cur.Span
	p.next() // consume '['
	var elements []ast.Pattern
	restIndex := -1
	restName := ""
	for p.cur.Kind != token.RBRACKET && p.cur.Kind != token.EOF {
		if p.cur.Kind == token.DOTDOT {
			if restIndex != -1 {
				return nil, langerr.New(langerr.Parse, p.cur.Span, "a list pattern may have only one rest element")
			}
			restIndex = len(elements)
			p.next()
			switch p.cur.Kind {
			case token.IDENT:
				restName = p.cur.Literal
				p.next()
			case token.UNDERSCORE:
				p.next()
			default:
				return nil, langerr.New(langerr.Parse, p.cur.Span, "expected identifier or '_' after '..' in list pattern, found %q", p.cur.Literal)
			}
		} else {
			pat, err := p.parsePattern()
			if err != nil {
				return nil, err
			}
			elements = append(elements, pat)
		}
		if p.cur.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if p.cur.Kind != token.RBRACKET {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected ']' to close list pattern, found %q", p.cur.Literal)
	}
	end := p.cur.Span
	p.next()
	return &ast.ListPattern{
		Base:      ast.NewBase(span.Cover(start, end)),
		Elements:  elements,
		RestIndex: restIndex,
		RestName:  restName,
	}, nil
}

// parseDictPattern parses `#{k1, k2: p2, ..rest}` with subset-match
// semantics: a bare `k` entry binds the value at key `k` to the name `k`.
func (p *Parser) parseDictPattern() (ast.Pattern, error) {
	start := p.cur.Span
	p.next() // consume '#{'
	var entries []ast.DictPatternEntry
	restName := ""
	hasRest := false
	for p.cur.Kind != token.RBRACE && p.cur.Kind != token.EOF {
		if p.cur.Kind == token.DOTDOT {
			if hasRest {
				return nil, langerr.New(langerr.Parse, p.cur.Span, "a dictionary pattern may have only one rest element")
			}
			hasRest = true
			p.next()
			if p.cur.Kind != token.IDENT {
				return nil, langerr.New(langerr.Parse, p.cur.Span, "expected identifier after '..' in dictionary pattern, found %q", p.cur.Literal)
			}
			restName = p.cur.Literal
			p.next()
		} else {
			if p.cur.Kind != token.IDENT && p.cur.Kind != token.STRING && p.cur.Kind != token.INT {
				return nil, langerr.New(langerr.Parse, p.cur.Span, "expected a key in dictionary pattern, found %q", p.cur.Literal)
			}
			keyLiteral := p.cur.Literal
			keySpan := p.cur.Span
			var keyExpr ast.Expression
			switch p.cur.Kind {
			case token.IDENT:
				keyExpr = &ast.StringLiteral{Base: ast.NewBase(keySpan), Value: keyLiteral}
			case token.STRING:
				keyExpr = &ast.StringLiteral{Base: ast.NewBase(keySpan), Value: keyLiteral}
			case token.INT:
				v, err := parseInt(keyLiteral)
				if err != nil {
					return nil, langerr.New(langerr.Parse, keySpan, "invalid integer key %q", keyLiteral)
				}
				keyExpr = &ast.IntegerLiteral{Base: ast.NewBase(keySpan), Value: v}
			}
			p.next()
			if p.cur.Kind == token.COLON {
				p.next()
				pat, err := p.parsePattern()
				if err != nil {
					return nil, err
				}
				entries = append(entries, ast.DictPatternEntry{Key: keyExpr, Pattern: pat})
			} else {
				entries = append(entries, ast.DictPatternEntry{
					Key:     keyExpr,
					Pattern: &ast.IdentifierPattern{Base: ast.NewBase(keySpan), Name: keyLiteral},
				})
			}
		}
		if p.cur.Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	if p.cur.Kind != token.RBRACE {
		return nil, langerr.New(langerr.Parse, p.cur.Span, "expected '}' to close dictionary pattern, found %q", p.cur.Literal)
	}
	end := p.cur.Span
	p.next()
	return &ast.DictPattern{
		Base:     ast.NewBase(span.Cover(start, end)),
		Entries:  entries,
		RestName: restName,
		HasRest:  hasRest,
	}, nil
}
