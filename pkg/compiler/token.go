package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Keywords
	DEF    // "def"
	EXTERN // "extern"

	// Literals
	IDENTIFIER // function or parameter name
	NUMBER     // numeric literal, value in Token.Num

	// CHAR is any other single character, returned as itself: operators,
	// parentheses, comma, semicolon. The character is in Token.Char.
	CHAR
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	DEF:        "DEF",
	EXTERN:     "EXTERN",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	CHAR:       "CHAR",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string  // the exact source text that was matched
	Num    float64 // parsed value for NUMBER tokens
	Char   rune    // the character for CHAR tokens
	Line   int     // 1-based source line
}

// Is reports whether t is the single-character token ch.
func (t Token) Is(ch rune) bool {
	return t.Type == CHAR && t.Char == ch
}

func (t Token) String() string {
	if t.Type == NUMBER {
		return fmt.Sprintf("%-10s %-14q  line %d  (%v)", t.Type, t.Lexeme, t.Line, t.Num)
	}
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
