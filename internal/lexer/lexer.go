/*
Package lexer turns UTF-8 source text into a stream of tokens with precise
byte-offset spans. It follows the scan-by-byte, peek-ahead style of the
teacher interpreter's lexer: a cursor over the raw source bytes, a current
byte held in a field, and a big switch in NextToken dispatching on that byte.
*/
package lexer

import (
	"strings"

	"github.com/eddmann/santa-lang-go/internal/token"
)

// Lexer scans a source string one byte at a time, tracking the current
// position so every emitted Token can carry an exact Span.
type Lexer struct {
	src      string
	pos      int  // index of Lexer.current in src
	readPos  int  // index of the next byte to read
	current  byte // byte at pos, or 0 at EOF
	buffered *token.Token
}

// New creates a Lexer ready to scan src.
func New(src string) *Lexer {
	l := &Lexer{src: src}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if l.readPos >= len(l.src) {
		l.current = 0
	} else {
		l.current = l.src[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peek() byte {
	if l.readPos >= len(l.src) {
		return 0
	}
	return l.src[l.readPos]
}

func (l *Lexer) peekAt(offset int) byte {
	idx := l.pos + offset
	if idx >= len(l.src) {
		return 0
	}
	return l.src[idx]
}

// NextToken returns the next token in the stream, or an EOF token once the
// source is exhausted. Comments are surfaced as their own COMMENT token
// (rather than silently skipped) so the formatter can preserve them.
func (l *Lexer) NextToken() token.Token {
	if l.buffered != nil {
		tok := *l.buffered
		l.buffered = nil
		return tok
	}

	l.skipWhitespace()

	if l.current == '/' && l.peek() == '/' {
		return l.readComment()
	}

	start := l.pos
	var tok token.Token

	switch {
	case l.current == 0:
		tok = token.New(token.EOF, "", start, start)
	case l.current == '"':
		return l.readString()
	case isDigit(l.current):
		return l.readNumber()
	case isIdentStart(l.current):
		return l.readIdentifier()
	default:
		tok = l.readOperator()
	}
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.current == ' ' || l.current == '\t' || l.current == '\n' || l.current == '\r' {
		l.advance()
	}
}

func (l *Lexer) readComment() token.Token {
	start := l.pos
	for l.current != '\n' && l.current != 0 {
		l.advance()
	}
	return token.New(token.COMMENT, l.src[start:l.pos], start, l.pos)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '?'
}

func (l *Lexer) readIdentifier() token.Token {
	start := l.pos
	for isIdentPart(l.current) {
		l.advance()
	}
	lit := l.src[start:l.pos]
	if lit == "_" {
		return token.New(token.UNDERSCORE, lit, start, l.pos)
	}
	return token.New(token.Lookup(lit), lit, start, l.pos)
}

// readNumber scans an integer or decimal literal. Digit separators (`_`)
// are permitted and stripped from the Literal's numeric value by the
// parser, not here; the lexer only needs to recognise the shape.
//
// The tricky case: a trailing `.` that actually begins `..` or `..=` must
// NOT be folded into the number. Before consuming a `.` we peek at the
// byte after it: only a digit makes the `.` a decimal point, so in `1..5`
// and `1..=5` the `..` is left for the range operator.
func (l *Lexer) readNumber() token.Token {
	start := l.pos
	for isDigit(l.current) || l.current == '_' {
		l.advance()
	}
	isDecimal := false
	if l.current == '.' && isDigit(l.peek()) {
		isDecimal = true
		l.advance() // consume '.'
		for isDigit(l.current) || l.current == '_' {
			l.advance()
		}
	}
	lit := l.src[start:l.pos]
	if isDecimal {
		return token.New(token.DECIMAL, lit, start, l.pos)
	}
	return token.New(token.INT, lit, start, l.pos)
}

// readString scans a double-quoted string literal, honouring `\\ \" \r \n
// \t` escapes. The returned Literal has escapes already resolved.
func (l *Lexer) readString() token.Token {
	start := l.pos
	l.advance() // opening quote
	var b strings.Builder
	for l.current != '"' && l.current != 0 {
		if l.current == '\\' {
			l.advance()
			switch l.current {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			default:
				b.WriteByte(l.current)
			}
			l.advance()
			continue
		}
		b.WriteByte(l.current)
		l.advance()
	}
	l.advance() // closing quote (or EOF, which the parser turns into an
	// "unterminated string" error by noticing the span runs past src)
	return token.New(token.STRING, b.String(), start, l.pos)
}

// readOperator scans punctuation and operators, including two-character
// forms. Any byte that begins no valid token yields ILLEGAL.
func (l *Lexer) readOperator() token.Token {
	start := l.pos
	ch := l.current

	two := func(next byte, kind token.Kind) (token.Token, bool) {
		if l.peek() == next {
			l.advance()
			l.advance()
			return token.New(kind, l.src[start:l.pos], start, l.pos), true
		}
		return token.Token{}, false
	}

	switch ch {
	case '=':
		if t, ok := two('=', token.EQ); ok {
			return t
		}
		l.advance()
		return token.New(token.ASSIGN, "=", start, l.pos)
	case '!':
		if t, ok := two('=', token.NE); ok {
			return t
		}
		l.advance()
		return token.New(token.BANG, "!", start, l.pos)
	case '<':
		if t, ok := two('=', token.LE); ok {
			return t
		}
		l.advance()
		return token.New(token.LT, "<", start, l.pos)
	case '>':
		if t, ok := two('=', token.GE); ok {
			return t
		}
		if t, ok := two('>', token.COMPOSE); ok {
			return t
		}
		l.advance()
		return token.New(token.GT, ">", start, l.pos)
	case '&':
		if t, ok := two('&', token.AND); ok {
			return t
		}
	case '|':
		if t, ok := two('>', token.PIPE); ok {
			return t
		}
		l.advance()
		return token.New(token.PIPE_CHAR, "|", start, l.pos)
	case '.':
		if l.peek() == '.' {
			l.advance() // first '.'
			l.advance() // second '.'
			if l.current == '=' {
				l.advance()
				return token.New(token.DOTDOTEQ, l.src[start:l.pos], start, l.pos)
			}
			return token.New(token.DOTDOT, l.src[start:l.pos], start, l.pos)
		}
		l.advance()
		return token.New(token.DOT, ".", start, l.pos)
	case '#':
		if t, ok := two('{', token.HASH_LBRACE); ok {
			return t
		}
	case '+':
		l.advance()
		return token.New(token.PLUS, "+", start, l.pos)
	case '-':
		l.advance()
		return token.New(token.MINUS, "-", start, l.pos)
	case '*':
		l.advance()
		return token.New(token.STAR, "*", start, l.pos)
	case '/':
		l.advance()
		return token.New(token.SLASH, "/", start, l.pos)
	case '%':
		l.advance()
		return token.New(token.PERCENT, "%", start, l.pos)
	case ',':
		l.advance()
		return token.New(token.COMMA, ",", start, l.pos)
	case ':':
		l.advance()
		return token.New(token.COLON, ":", start, l.pos)
	case ';':
		l.advance()
		return token.New(token.SEMICOLON, ";", start, l.pos)
	case '(':
		l.advance()
		return token.New(token.LPAREN, "(", start, l.pos)
	case ')':
		l.advance()
		return token.New(token.RPAREN, ")", start, l.pos)
	case '{':
		l.advance()
		return token.New(token.LBRACE, "{", start, l.pos)
	case '}':
		l.advance()
		return token.New(token.RBRACE, "}", start, l.pos)
	case '[':
		l.advance()
		return token.New(token.LBRACKET, "[", start, l.pos)
	case ']':
		l.advance()
		return token.New(token.RBRACKET, "]", start, l.pos)
	case '`':
		l.advance()
		return token.New(token.BACKTICK, "`", start, l.pos)
	}

	l.advance()
	return token.New(token.ILLEGAL, string(ch), start, l.pos)
}
