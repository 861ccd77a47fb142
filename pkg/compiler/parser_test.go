package compiler

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func newTestParser(src string) *Parser {
	return NewParser(NewLexer(strings.NewReader(src)))
}

func num(v float64) *NumberExpr { return &NumberExpr{Value: v} }

func ref(name string) *VariableExpr { return &VariableExpr{Name: name} }

func bin(op rune, lhs, rhs Expr) *BinaryExpr { return &BinaryExpr{Op: op, LHS: lhs, RHS: rhs} }

// TestParseExpression verifies precedence climbing and associativity.
func TestParseExpression(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Expr
	}{
		{
			name:     "Number",
			input:    "4",
			expected: num(4),
		},
		{
			name:     "Variable",
			input:    "x",
			expected: ref("x"),
		},
		{
			name:     "Precedence",
			input:    "1+2*3",
			expected: bin('+', num(1), bin('*', num(2), num(3))),
		},
		{
			name:     "Left Associativity",
			input:    "1-2-3",
			expected: bin('-', bin('-', num(1), num(2)), num(3)),
		},
		{
			name:     "Tighter Then Looser",
			input:    "a*b+c",
			expected: bin('+', bin('*', ref("a"), ref("b")), ref("c")),
		},
		{
			name:     "Climb Back Down",
			input:    "a+b*c-d",
			expected: bin('-', bin('+', ref("a"), bin('*', ref("b"), ref("c"))), ref("d")),
		},
		{
			name:     "Comparison Binds Loosest",
			input:    "a<b+c",
			expected: bin('<', ref("a"), bin('+', ref("b"), ref("c"))),
		},
		{
			name:     "Chained Comparison",
			input:    "a<b<c",
			expected: bin('<', bin('<', ref("a"), ref("b")), ref("c")),
		},
		{
			name:     "Parentheses",
			input:    "(1+2)*3",
			expected: bin('*', bin('+', num(1), num(2)), num(3)),
		},
		{
			name:     "Call Without Arguments",
			input:    "foo()",
			expected: &CallExpr{Callee: "foo"},
		},
		{
			name:  "Call With Arguments",
			input: "foo(1, x+1, bar())",
			expected: &CallExpr{Callee: "foo", Args: []Expr{
				num(1),
				bin('+', ref("x"), num(1)),
				&CallExpr{Callee: "bar"},
			}},
		},
		{
			name:     "Slash Is Not A Default Operator",
			input:    "a/b",
			expected: ref("a"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.input)
			got, err := p.parseExpression()
			if err != nil {
				t.Fatalf("parseExpression(%q) failed: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("parseExpression(%q)\n got: %s\nwant: %s", tt.input, got, tt.expected)
			}
			if err := CheckOwnership(got); err != nil {
				t.Errorf("ownership: %v", err)
			}
		})
	}
}

func TestParseExpression_StopsAtUnknownOperator(t *testing.T) {
	p := newTestParser("a/b")
	if _, err := p.parseExpression(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Current().Is('/') {
		t.Errorf("expected parser to stop at '/', got %v", p.Current())
	}
}

func TestSetPrecedence(t *testing.T) {
	p := newTestParser("a/b+c")
	p.SetPrecedence('/', 40)
	got, err := p.parseExpression()
	if err != nil {
		t.Fatalf("parseExpression failed: %v", err)
	}
	want := bin('+', bin('/', ref("a"), ref("b")), ref("c"))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %s, want %s", got, want)
	}

	p = newTestParser("a+b")
	p.SetPrecedence('+', 0)
	got, err = p.parseExpression()
	if err != nil {
		t.Fatalf("parseExpression failed: %v", err)
	}
	if !reflect.DeepEqual(got, ref("a")) {
		t.Errorf("expected '+' to be removed, got %s", got)
	}
}

// TestParseConstruct verifies the top-level forms.
func TestParseConstruct(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *Construct
	}{
		{
			name:  "Definition",
			input: "def foo(x y) x+y",
			expected: &Construct{Kind: ConstructDef, Func: &Function{
				Proto: &Prototype{Name: "foo", Params: []string{"x", "y"}},
				Body:  bin('+', ref("x"), ref("y")),
			}},
		},
		{
			name:  "Definition Without Params",
			input: "def one() 1",
			expected: &Construct{Kind: ConstructDef, Func: &Function{
				Proto: &Prototype{Name: "one"},
				Body:  num(1),
			}},
		},
		{
			name:  "Extern",
			input: "extern sin(x)",
			expected: &Construct{Kind: ConstructExtern, Proto: &Prototype{
				Name: "sin", Params: []string{"x"},
			}},
		},
		{
			name:  "Duplicate Params Are Kept",
			input: "extern dup(x x)",
			expected: &Construct{Kind: ConstructExtern, Proto: &Prototype{
				Name: "dup", Params: []string{"x", "x"},
			}},
		},
		{
			name:  "Top Level Expression",
			input: "1+1",
			expected: &Construct{Kind: ConstructExpr, Func: &Function{
				Proto: &Prototype{Name: AnonExprName},
				Body:  bin('+', num(1), num(1)),
			}},
		},
		{
			name:  "Leading Semicolons",
			input: ";; 2",
			expected: &Construct{Kind: ConstructExpr, Func: &Function{
				Proto: &Prototype{Name: AnonExprName},
				Body:  num(2),
			}},
		},
		{
			name:     "Empty",
			input:    "",
			expected: nil,
		},
		{
			name:     "Only Separators And Comments",
			input:    "; # nothing\n;",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.input)
			got, err := p.ParseConstruct()
			if err != nil {
				t.Fatalf("ParseConstruct(%q) failed: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseConstruct(%q)\n got: %v\nwant: %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseConstruct_Sequence(t *testing.T) {
	p := newTestParser("def a() 1 extern b() a()")
	var kinds []ConstructKind
	for {
		c, err := p.ParseConstruct()
		if err != nil {
			t.Fatalf("ParseConstruct failed: %v", err)
		}
		if c == nil {
			break
		}
		kinds = append(kinds, c.Kind)
	}
	want := []ConstructKind{ConstructDef, ConstructExtern, ConstructExpr}
	if !reflect.DeepEqual(kinds, want) {
		t.Errorf("got kinds %v, want %v", kinds, want)
	}
}

// TestParseErrors verifies that malformed input yields a syntax error and no node.
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"Missing Close Paren", "(1+2", "expected ')'"},
		{"Bad Argument Separator", "foo(1 2)", "expected ')' or ',' in argument list"},
		{"Unexpected Token", ")", "unknown token \")\" when expecting an expression"},
		{"Missing Operand", "1+", "when expecting an expression"},
		{"Prototype Without Name", "def 1(x) x", "expected function name in prototype"},
		{"Prototype Without Paren", "def foo x", "expected '(' in prototype"},
		{"Comma In Prototype", "def foo(x, y) x", "expected ')' in prototype"},
		{"Extern Without Name", "extern (x)", "expected function name in prototype"},
		{"Definition With Bad Body", "def foo(x) )", "when expecting an expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestParser(tt.input)
			c, err := p.ParseConstruct()
			if err == nil {
				t.Fatalf("expected error for %q, got %v", tt.input, c)
			}
			if c != nil {
				t.Errorf("expected nil construct on error, got %v", c)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("expected ErrSyntax, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestParseErrors_LineNumber(t *testing.T) {
	p := newTestParser("def ok() 1\n\ndef bad x")
	if _, err := p.ParseConstruct(); err != nil {
		t.Fatalf("first construct failed: %v", err)
	}
	_, err := p.ParseConstruct()
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %v", err)
	}
	if se.Line != 3 {
		t.Errorf("expected line 3, got %d", se.Line)
	}
}

func TestParseErrors_NoResync(t *testing.T) {
	p := newTestParser("foo(1 2)")
	if _, err := p.ParseConstruct(); err == nil {
		t.Fatal("expected error")
	}
	// The parser leaves the offending token in place for the caller.
	if tok := p.Current(); tok.Type != NUMBER || tok.Num != 2 {
		t.Errorf("expected current token to be the number 2, got %v", tok)
	}
}

func TestCheckOwnership_SharedNode(t *testing.T) {
	shared := ref("x")
	e := bin('+', shared, shared)
	if err := CheckOwnership(e); err == nil {
		t.Error("expected error for a node with two parents")
	}
}

func TestExprString(t *testing.T) {
	e := &CallExpr{Callee: "f", Args: []Expr{bin('*', num(2), ref("x")), num(0.5)}}
	if got, want := e.String(), "(call f (* 2 x) 0.5)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	f := &Function{Proto: &Prototype{Name: "g", Params: []string{"a", "b"}}, Body: ref("a")}
	if got, want := f.String(), "(def g(a b) a)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConstructString(t *testing.T) {
	p := newTestParser("extern sin(x) def one() 1 2*3")
	want := []string{"(extern sin(x))", "(def one() 1)", "(expr (* 2 3))"}
	for _, w := range want {
		c, err := p.ParseConstruct()
		if err != nil {
			t.Fatalf("ParseConstruct failed: %v", err)
		}
		if got := c.String(); got != w {
			t.Errorf("got %q, want %q", got, w)
		}
	}
}
