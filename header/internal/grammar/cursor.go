package grammar

import (
	"github.com/wippyai/fmodgen/errors"
	"github.com/wippyai/fmodgen/header/internal/token"
)

// cursor walks the token stream of one file and remembers the furthest
// position any production reached before failing.
type cursor struct {
	src      string
	file     string
	excluded map[string]bool
	tokens   []token.Token
	expected []string
	pos      int
	far      int
	linkage  int // open extern "C" blocks
}

func newCursor(file, src string, excluded []string) *cursor {
	c := &cursor{
		src:      src,
		file:     file,
		tokens:   token.Tokenize(src),
		excluded: make(map[string]bool, len(excluded)),
	}
	for _, name := range excluded {
		c.excluded[name] = true
	}
	return c
}

func (c *cursor) done() bool {
	return c.pos >= len(c.tokens)
}

func (c *cursor) peek() (token.Token, bool) {
	if c.pos < len(c.tokens) {
		return c.tokens[c.pos], true
	}
	return token.Token{}, false
}

func (c *cursor) peekAt(off int) (token.Token, bool) {
	if c.pos+off < len(c.tokens) {
		return c.tokens[c.pos+off], true
	}
	return token.Token{}, false
}

// fail records that what was expected at the current position.
func (c *cursor) fail(what string) {
	switch {
	case c.pos > c.far:
		c.far = c.pos
		c.expected = []string{what}
	case c.pos == c.far:
		for _, e := range c.expected {
			if e == what {
				return
			}
		}
		c.expected = append(c.expected, what)
	}
}

// is reports whether the current token is the given identifier or
// punctuation without consuming or recording anything.
func (c *cursor) is(value string) bool {
	t, ok := c.peek()
	return ok && t.Is(value)
}

// accept consumes the token if it matches.
func (c *cursor) accept(value string) bool {
	if c.is(value) {
		c.pos++
		return true
	}
	return false
}

// expect consumes the token or records the expectation.
func (c *cursor) expect(value string) bool {
	if c.accept(value) {
		return true
	}
	c.fail("'" + value + "'")
	return false
}

func (c *cursor) ident() (token.Token, bool) {
	t, ok := c.peek()
	if ok && t.Type == token.Ident && !reserved[t.Value] {
		c.pos++
		return t, true
	}
	c.fail("identifier")
	return token.Token{}, false
}

func (c *cursor) directive() (token.Token, bool) {
	t, ok := c.peek()
	if ok && t.Type == token.Directive {
		c.pos++
		return t, true
	}
	c.fail("directive")
	return token.Token{}, false
}

// slice returns the verbatim source between two token indexes, inclusive.
func (c *cursor) slice(from, to int) string {
	return c.src[c.tokens[from].Offset:c.tokens[to].End]
}

// parseError builds the error for the furthest failure.
func (c *cursor) parseError() *errors.ParseError {
	pos := c.far
	err := &errors.ParseError{File: c.file, Expected: c.expected}
	if pos < len(c.tokens) {
		t := c.tokens[pos]
		err.Found, err.Line, err.Column = t.Value, t.Line, t.Column
		return err
	}
	err.Line, err.Column = endPosition(c.src)
	return err
}

func endPosition(src string) (line, col int) {
	line, col = 1, 1
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// reserved words that never name a declaration, field or argument.
var reserved = map[string]bool{
	"typedef": true,
	"struct":  true,
	"union":   true,
	"enum":    true,
	"const":   true,
	"static":  true,
	"extern":  true,
	"return":  true,
	"switch":  true,
	"case":    true,
	"default": true,
}
