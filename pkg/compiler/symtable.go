package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// FuncState records how far a function has got.
type FuncState int

const (
	FuncDeclared FuncState = iota + 1 // signature only
	FuncDefined                       // has a verified body
)

func (s FuncState) String() string {
	switch s {
	case FuncDeclared:
		return "declared"
	case FuncDefined:
		return "defined"
	}
	return fmt.Sprintf("FuncState(%d)", int(s))
}

// FuncSymbol is an entry of the declared-functions table.
type FuncSymbol struct {
	Name   string
	Params []string
	State  FuncState
	Fn     *ir.Func
}

// Arity returns the declared parameter count.
func (f *FuncSymbol) Arity() int { return len(f.Params) }

// SymbolTable maps names to emitted values.
//
// Functions persist for the lifetime of the table. Locals hold the parameter
// bindings of the function being generated; they are replaced wholesale by
// EnterFunction, never pushed or merged.
type SymbolTable struct {
	funcs  map[string]*FuncSymbol
	locals map[string]value.Value
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		funcs: make(map[string]*FuncSymbol),
	}
}

// EnterFunction starts a fresh, empty set of locals.
func (s *SymbolTable) EnterFunction() {
	s.locals = make(map[string]value.Value)
}

func (s *SymbolTable) ExitFunction() {
	s.locals = nil
}

// DefineParam binds name to v. A later binding of the same name wins.
func (s *SymbolTable) DefineParam(name string, v value.Value) {
	if s.locals == nil {
		panic("DefineParam called outside function scope")
	}
	s.locals[name] = v
}

// Lookup returns the value bound to name in the current function.
func (s *SymbolTable) Lookup(name string) (value.Value, bool) {
	v, ok := s.locals[name]
	return v, ok
}

// DeclareFunction adds a declared-only entry for fn. An existing entry of
// the same name is returned unchanged.
func (s *SymbolTable) DeclareFunction(name string, params []string, fn *ir.Func) (*FuncSymbol, bool) {
	if sym, ok := s.funcs[name]; ok {
		return sym, true
	}
	sym := &FuncSymbol{
		Name:   name,
		Params: append([]string(nil), params...),
		State:  FuncDeclared,
		Fn:     fn,
	}
	s.funcs[name] = sym
	return sym, false
}

// LookupFunction returns the table entry for name.
func (s *SymbolTable) LookupFunction(name string) (*FuncSymbol, bool) {
	sym, ok := s.funcs[name]
	return sym, ok
}

// RemoveFunction forgets name entirely.
func (s *SymbolTable) RemoveFunction(name string) {
	delete(s.funcs, name)
}

// Functions returns every entry sorted by name.
func (s *SymbolTable) Functions() []*FuncSymbol {
	out := make([]*FuncSymbol, 0, len(s.funcs))
	for _, sym := range s.funcs {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// inFunction returns true while a function body is being generated.
func (s *SymbolTable) inFunction() bool {
	return s.locals != nil
}

// String returns a deterministically ordered dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	if len(s.funcs) > 0 {
		sb.WriteString("Functions:\n")
		for _, sym := range s.Functions() {
			fmt.Fprintf(&sb, "  %-20s  %s (params: %s)\n", sym.Name, sym.State, strings.Join(sym.Params, ", "))
		}
	} else {
		sb.WriteString("Functions: (empty)\n")
	}

	if s.inFunction() {
		sb.WriteString("Locals:\n")
		names := make([]string, 0, len(s.locals))
		for name := range s.locals {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "  %-20s  %s\n", name, s.locals[name].Ident())
		}
	}
	return sb.String()
}
