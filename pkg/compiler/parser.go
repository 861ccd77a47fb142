package compiler

import (
	"fmt"
	"maps"
)

// Parser consumes tokens from a Lexer one at a time and builds AST nodes.
//
// Grammar:
//
//	construct  = definition | external | expression | ";"
//	definition = "def" prototype expression
//	external   = "extern" prototype
//	prototype  = IDENTIFIER "(" IDENTIFIER* ")"
//	expression = primary (binop primary)*        climbed by precedence
//	primary    = IDENTIFIER
//	           | IDENTIFIER "(" (expression ("," expression)*)? ")"
//	           | NUMBER
//	           | "(" expression ")"
//
// On error the parser returns a *SyntaxError and leaves the current token
// where the problem was found. It never resynchronizes by itself.
type Parser struct {
	lex        *Lexer
	cur        Token
	precedence map[rune]int
}

// defaultPrecedence holds the built-in binary operators; higher binds tighter.
var defaultPrecedence = map[rune]int{
	'<': 10,
	'+': 20,
	'-': 20,
	'*': 40,
}

// NewParser returns a Parser reading from lex, primed with the first token.
func NewParser(lex *Lexer) *Parser {
	p := &Parser{lex: lex, precedence: maps.Clone(defaultPrecedence)}
	p.Next()
	return p
}

// Next discards the current token and reads the next one.
func (p *Parser) Next() Token {
	p.cur = p.lex.NextToken()
	return p.cur
}

// Current returns the current token without consuming it.
func (p *Parser) Current() Token {
	return p.cur
}

// SetPrecedence installs op as a binary operator with the given precedence.
// A precedence <= 0 removes it.
func (p *Parser) SetPrecedence(op rune, prec int) {
	if prec <= 0 {
		delete(p.precedence, op)
		return
	}
	p.precedence[op] = prec
}

// tokPrecedence returns the precedence of the pending binary operator, or -1
// if the current token is not one.
func (p *Parser) tokPrecedence() int {
	if p.cur.Type != CHAR {
		return -1
	}
	prec, ok := p.precedence[p.cur.Char]
	if !ok || prec <= 0 {
		return -1
	}
	return prec
}

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.cur.Line, Msg: fmt.Sprintf(format, args...)}
}

// parseNumberExpr handles NUMBER.
func (p *Parser) parseNumberExpr() (Expr, error) {
	n := &NumberExpr{Value: p.cur.Num}
	p.Next() // consume number
	return n, nil
}

// parseParenExpr handles "(" expression ")".
func (p *Parser) parseParenExpr() (Expr, error) {
	p.Next() // consume '('
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.cur.Is(')') {
		return nil, p.errorf("expected ')'")
	}
	p.Next() // consume ')'
	return e, nil
}

// parseIdentExpr handles a variable reference or a call.
func (p *Parser) parseIdentExpr() (Expr, error) {
	name := p.cur.Lexeme
	p.Next() // consume identifier

	if !p.cur.Is('(') {
		return &VariableExpr{Name: name}, nil
	}

	p.Next() // consume '('
	var args []Expr
	if !p.cur.Is(')') {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if p.cur.Is(')') {
				break
			}
			if !p.cur.Is(',') {
				return nil, p.errorf("expected ')' or ',' in argument list")
			}
			p.Next()
		}
	}
	p.Next() // consume ')'

	return &CallExpr{Callee: name, Args: args}, nil
}

// parsePrimary dispatches on the current token.
func (p *Parser) parsePrimary() (Expr, error) {
	switch {
	case p.cur.Type == IDENTIFIER:
		return p.parseIdentExpr()
	case p.cur.Type == NUMBER:
		return p.parseNumberExpr()
	case p.cur.Is('('):
		return p.parseParenExpr()
	default:
		return nil, p.errorf("unknown token %q when expecting an expression", p.cur.Lexeme)
	}
}

// parseBinOpRHS folds (binop primary)* onto lhs. Only operators binding at
// least as tightly as exprPrec are consumed; a strictly tighter operator
// after the right operand makes it recurse, so equal precedence associates
// to the left.
func (p *Parser) parseBinOpRHS(exprPrec int, lhs Expr) (Expr, error) {
	for {
		tokPrec := p.tokPrecedence()
		if tokPrec < exprPrec {
			return lhs, nil
		}

		op := p.cur.Char
		p.Next() // consume operator

		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}

		if tokPrec < p.tokPrecedence() {
			rhs, err = p.parseBinOpRHS(tokPrec+1, rhs)
			if err != nil {
				return nil, err
			}
		}

		lhs = &BinaryExpr{Op: op, LHS: lhs, RHS: rhs}
	}
}

// parseExpression is the entry point for expression parsing.
func (p *Parser) parseExpression() (Expr, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parseBinOpRHS(0, lhs)
}

// parsePrototype handles IDENTIFIER "(" IDENTIFIER* ")".
func (p *Parser) parsePrototype() (*Prototype, error) {
	if p.cur.Type != IDENTIFIER {
		return nil, p.errorf("expected function name in prototype")
	}
	name := p.cur.Lexeme
	p.Next()

	if !p.cur.Is('(') {
		return nil, p.errorf("expected '(' in prototype")
	}

	var params []string
	for p.Next().Type == IDENTIFIER {
		params = append(params, p.cur.Lexeme)
	}

	if !p.cur.Is(')') {
		return nil, p.errorf("expected ')' in prototype")
	}
	p.Next() // consume ')'

	return &Prototype{Name: name, Params: params}, nil
}

// ParseDefinition parses "def" prototype expression. The current token must
// be DEF.
func (p *Parser) ParseDefinition() (*Function, error) {
	p.Next() // consume 'def'
	proto, err := p.parsePrototype()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Function{Proto: proto, Body: body}, nil
}

// ParseExtern parses "extern" prototype. The current token must be EXTERN.
func (p *Parser) ParseExtern() (*Prototype, error) {
	p.Next() // consume 'extern'
	return p.parsePrototype()
}

// ParseTopLevelExpr parses a bare expression and wraps it in a
// zero-parameter function named AnonExprName.
func (p *Parser) ParseTopLevelExpr() (*Function, error) {
	body, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &Function{Proto: &Prototype{Name: AnonExprName}, Body: body}, nil
}

// ConstructKind says which top-level form a Construct came from.
type ConstructKind int

const (
	ConstructDef ConstructKind = iota
	ConstructExtern
	ConstructExpr
)

// Construct is one parsed top-level unit. Func is set for ConstructDef and
// ConstructExpr, Proto for ConstructExtern.
type Construct struct {
	Kind  ConstructKind
	Func  *Function
	Proto *Prototype
}

func (c *Construct) String() string {
	if c.Kind == ConstructExtern {
		return fmt.Sprintf("(extern %s)", c.Proto)
	}
	if c.Func.IsAnonymous() {
		return fmt.Sprintf("(expr %s)", c.Func.Body)
	}
	return c.Func.String()
}

// ParseConstruct skips top-level ';' separators and parses the next
// construct. It returns nil, nil at end of input. After an error the caller
// must advance past the offending token before calling it again.
func (p *Parser) ParseConstruct() (*Construct, error) {
	for p.cur.Is(';') {
		p.Next()
	}

	switch p.cur.Type {
	case EOF:
		return nil, nil
	case DEF:
		f, err := p.ParseDefinition()
		if err != nil {
			return nil, err
		}
		return &Construct{Kind: ConstructDef, Func: f}, nil
	case EXTERN:
		proto, err := p.ParseExtern()
		if err != nil {
			return nil, err
		}
		return &Construct{Kind: ConstructExtern, Proto: proto}, nil
	default:
		f, err := p.ParseTopLevelExpr()
		if err != nil {
			return nil, err
		}
		return &Construct{Kind: ConstructExpr, Func: f}, nil
	}
}
