package token

import (
	"strings"
)

type Type int

const (
	Ident Type = iota
	Number
	String
	Punct
	Directive
	Invalid
)

func (t Type) String() string {
	switch t {
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Punct:
		return "punctuation"
	case Directive:
		return "directive"
	case Invalid:
		return "invalid character"
	}
	return "unknown"
}

// Token is one lexeme. Offset and End delimit its bytes in the source.
// String tokens carry the literal body without quotes; Directive tokens
// carry the whole logical line with continuations joined and comments
// removed.
type Token struct {
	Value  string
	Type   Type
	Line   int
	Column int
	Offset int
	End    int
}

// Is reports whether the token is the given punctuation or identifier.
func (t Token) Is(value string) bool {
	return (t.Type == Punct || t.Type == Ident) && t.Value == value
}

// Tokenize splits header text into tokens. It never fails; characters no
// production can use come back as Invalid tokens.
func Tokenize(input string) []Token {
	l := &lexer{src: input, line: 1, col: 1}
	return l.run()
}

type lexer struct {
	src    string
	tokens []Token
	pos    int
	line   int
	col    int
	// only whitespace and comments seen since the last newline
	atLineStart bool
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
			l.atLineStart = true
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) emit(typ Type, value string, start, line, col int) {
	l.tokens = append(l.tokens, Token{
		Value:  value,
		Type:   typ,
		Line:   line,
		Column: col,
		Offset: start,
		End:    l.pos,
	})
}

func (l *lexer) run() []Token {
	l.atLineStart = true
	for l.pos < len(l.src) {
		c := l.src[l.pos]

		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == '\v' {
			l.advance(1)
			continue
		}
		if c == '/' && l.peekAt(1) == '/' {
			l.skipLineComment()
			continue
		}
		if c == '/' && l.peekAt(1) == '*' {
			l.skipBlockComment()
			continue
		}

		start, line, col := l.pos, l.line, l.col
		if c == '#' && l.atLineStart {
			l.emit(Directive, l.directive(), start, line, col)
			continue
		}
		l.atLineStart = false

		switch {
		case c == '"':
			l.emit(String, l.str(), start, line, col)
		case isDigit(c) || (c == '.' && isDigit(l.peekAt(1))):
			l.number()
			l.emit(Number, l.src[start:l.pos], start, line, col)
		case isIdentStart(c):
			for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
				l.advance(1)
			}
			l.emit(Ident, l.src[start:l.pos], start, line, col)
		case c == '.' && strings.HasPrefix(l.src[l.pos:], "..."):
			l.advance(3)
			l.emit(Punct, "...", start, line, col)
		case (c == '<' || c == '>') && l.peekAt(1) == c:
			l.advance(2)
			l.emit(Punct, l.src[start:l.pos], start, line, col)
		case strings.IndexByte("{}()[];,*=<>|&~+-/%^!?:.", c) >= 0:
			l.advance(1)
			l.emit(Punct, l.src[start:l.pos], start, line, col)
		default:
			// keep multi-byte characters whole
			n := 1
			for l.pos+n < len(l.src) && l.src[l.pos+n]&0xC0 == 0x80 {
				n++
			}
			l.advance(n)
			l.emit(Invalid, l.src[start:l.pos], start, line, col)
		}
	}
	return l.tokens
}

func (l *lexer) skipLineComment() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.advance(1)
	}
}

func (l *lexer) skipBlockComment() {
	end := strings.Index(l.src[l.pos+2:], "*/")
	if end < 0 {
		l.advance(len(l.src) - l.pos)
		return
	}
	l.advance(end + 4)
}

// str consumes a string literal and returns its body. An unterminated
// literal runs to the end of the line.
func (l *lexer) str() string {
	l.advance(1)
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '"' && l.src[l.pos] != '\n' {
		if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
			l.advance(1)
		}
		l.advance(1)
	}
	body := l.src[start:l.pos]
	if l.pos < len(l.src) && l.src[l.pos] == '"' {
		l.advance(1)
	}
	return body
}

func (l *lexer) number() {
	start := l.pos
	hex := l.peekAt(0) == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X')
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if isIdentPart(c) || c == '.' {
			l.advance(1)
			continue
		}
		if (c == '+' || c == '-') && !hex && l.pos > start && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E') {
			l.advance(1)
			continue
		}
		break
	}
}

// directive consumes a preprocessor logical line starting at '#'.
func (l *lexer) directive() string {
	var b strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\' && l.peekAt(1) == '\n':
			l.advance(2)
			b.WriteByte(' ')
			continue
		case c == '\\' && l.peekAt(1) == '\r' && l.peekAt(2) == '\n':
			l.advance(3)
			b.WriteByte(' ')
			continue
		case c == '\n':
			return strings.TrimSpace(b.String())
		case c == '/' && l.peekAt(1) == '/':
			l.skipLineComment()
			continue
		case c == '/' && l.peekAt(1) == '*':
			l.skipBlockComment()
			b.WriteByte(' ')
			continue
		case c == '"':
			start := l.pos
			l.str()
			b.WriteString(l.src[start:l.pos])
			continue
		}
		b.WriteByte(c)
		l.advance(1)
	}
	return strings.TrimSpace(b.String())
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
