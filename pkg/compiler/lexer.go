package compiler

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

// eofRune marks an exhausted input in the lookahead slot.
const eofRune rune = -1

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"def":    DEF,
	"extern": EXTERN,
}

// Lexer turns a character stream into tokens. It holds exactly one rune of
// lookahead between calls, so it can be fed from an interactive source one
// line at a time.
type Lexer struct {
	r    *bufio.Reader
	last rune // next unconsumed rune, eofRune once the input is exhausted
	line int  // current 1-based source line
}

// NewLexer returns a Lexer reading from r.
func NewLexer(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r), last: ' ', line: 1}
}

// read pulls the next rune from the underlying reader. Any read error is
// treated as end of input; the tokenizer never reports errors.
func (l *Lexer) read() rune {
	if l.last == eofRune {
		return eofRune
	}
	r, _, err := l.r.ReadRune()
	if err != nil {
		return eofRune
	}
	if r == '\n' {
		l.line++
	}
	return r
}

// Letters and spaces are ASCII only; any other rune lexes as a CHAR token.
func isAlpha(r rune) bool { return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' }

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isAlnum(r rune) bool { return isAlpha(r) || isDigit(r) }

// skipLineComment discards everything up to the end of the line.
// The opening '#' must still be in l.last.
func (l *Lexer) skipLineComment() {
	for l.last != eofRune && l.last != '\n' && l.last != '\r' {
		l.last = l.read()
	}
}

// scanIdent collects an identifier or keyword. The first letter is in l.last.
func (l *Lexer) scanIdent() Token {
	line := l.line
	var sb strings.Builder
	for isAlnum(l.last) {
		sb.WriteRune(l.last)
		l.last = l.read()
	}
	lexeme := sb.String()
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Line: line}
}

// scanNumber greedily collects digits and dots. Placement is not validated:
// "1.2.3" is one NUMBER token whose value is whatever parseNumber recovers.
func (l *Lexer) scanNumber() Token {
	line := l.line
	var sb strings.Builder
	for isDigit(l.last) || l.last == '.' {
		sb.WriteRune(l.last)
		l.last = l.read()
	}
	lexeme := sb.String()
	return Token{Type: NUMBER, Lexeme: lexeme, Num: parseNumber(lexeme), Line: line}
}

// parseNumber converts the longest prefix of s that is a valid float, the
// way strtod does. A run with no valid prefix (e.g. ".") yields 0.
func parseNumber(s string) float64 {
	for end := len(s); end > 0; end-- {
		v, err := strconv.ParseFloat(s[:end], 64)
		if err == nil || errors.Is(err, strconv.ErrRange) {
			return v
		}
	}
	return 0
}

// NextToken skips whitespace and '#' comments and returns the next Token.
// At end of input it returns EOF, and keeps returning EOF on later calls.
func (l *Lexer) NextToken() Token {
	for {
		for isSpace(l.last) {
			l.last = l.read()
		}
		if l.last != '#' {
			break
		}
		l.skipLineComment()
	}

	switch {
	case l.last == eofRune:
		return Token{Type: EOF, Line: l.line}
	case isAlpha(l.last):
		return l.scanIdent()
	case isDigit(l.last) || l.last == '.':
		return l.scanNumber()
	}

	ch, line := l.last, l.line
	l.last = l.read()
	return Token{Type: CHAR, Lexeme: string(ch), Char: ch, Line: line}
}

// Lex tokenises src and returns all tokens including the final EOF token.
func Lex(src string) []Token {
	l := NewLexer(strings.NewReader(src))
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
