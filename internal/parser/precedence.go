package parser

import "github.com/eddmann/santa-lang-go/internal/token"

// precedence is the Pratt-parser binding power ladder, lowest first, as
// specified: Lowest < AndOr < Equals < LessGreater < Composition < Sum <
// Product < Prefix < Call < Index.
type precedence int

const (
	lowest precedence = iota
	andOr
	equals
	lessGreater
	composition
	sum
	product
	prefix
	call
	index
)

var precedences = map[token.Kind]precedence{
	token.AND:      andOr,
	token.OR:       andOr,
	token.EQ:       equals,
	token.NE:       equals,
	token.LT:       lessGreater,
	token.GT:       lessGreater,
	token.LE:       lessGreater,
	token.GE:       lessGreater,
	token.COMPOSE:  composition,
	token.PIPE:     composition,
	token.PLUS:     sum,
	token.MINUS:    sum,
	token.STAR:     product,
	token.SLASH:    product,
	token.PERCENT:  product,
	token.BACKTICK: product,
	token.LPAREN:   call,
	token.LBRACKET: index,
	token.DOTDOT:   sum,
	token.DOTDOTEQ: sum,
}

func (p *Parser) peekPrecedence() precedence {
	if pr, ok := precedences[p.peek.Kind]; ok {
		return pr
	}
	return lowest
}

func (p *Parser) curPrecedence() precedence {
	if pr, ok := precedences[p.cur.Kind]; ok {
		return pr
	}
	return lowest
}
