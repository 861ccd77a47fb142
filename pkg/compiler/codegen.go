package compiler

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// CodeGen walks AST nodes and emits LLVM IR into one module. It is the whole
// compilation context: nothing is shared between two CodeGen values.
type CodeGen struct {
	module *ir.Module
	syms   *SymbolTable
	block  *ir.Block       // insertion point, nil outside a function body
	used   map[string]bool // local names taken in the current function
}

// NewCodeGen returns a CodeGen emitting into a fresh module whose source
// filename is name.
func NewCodeGen(name string, syms *SymbolTable) *CodeGen {
	m := ir.NewModule()
	m.SourceFilename = name
	return &CodeGen{module: m, syms: syms}
}

// Module returns the module being built.
func (cg *CodeGen) Module() *ir.Module { return cg.module }

// Symbols returns the symbol table shared with the generator.
func (cg *CodeGen) Symbols() *SymbolTable { return cg.syms }

// String returns the textual IR of the whole module.
func (cg *CodeGen) String() string { return cg.module.String() }

// uniqueName returns base, or base with the smallest numeric suffix not yet
// in used, and marks the result as used.
func uniqueName(used map[string]bool, base string) string {
	name := base
	for i := 1; used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	used[name] = true
	return name
}

func (cg *CodeGen) tmp(base string) string {
	return uniqueName(cg.used, base)
}

// GenExpr lowers e at the current insertion point. On failure it returns a
// nil value; instructions already emitted for sub-expressions stay in the
// block until the enclosing GenFunction rolls the body back.
func (cg *CodeGen) GenExpr(e Expr) (value.Value, error) {
	switch n := e.(type) {
	case *NumberExpr:
		return constant.NewFloat(types.Double, n.Value), nil

	case *VariableExpr:
		v, ok := cg.syms.Lookup(n.Name)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownVariable, n.Name)
		}
		return v, nil

	case *BinaryExpr:
		return cg.genBinary(n)

	case *CallExpr:
		return cg.genCall(n)

	default:
		return nil, fmt.Errorf("codegen: unknown expression node %T", e)
	}
}

func (cg *CodeGen) genBinary(n *BinaryExpr) (value.Value, error) {
	if cg.block == nil {
		return nil, fmt.Errorf("codegen: binary %c outside a function body", n.Op)
	}
	// Both operands are generated even if the left one fails, so each
	// reports its own error.
	l, lerr := cg.GenExpr(n.LHS)
	r, rerr := cg.GenExpr(n.RHS)
	switch {
	case lerr != nil && rerr != nil:
		return nil, errors.Join(lerr, rerr)
	case lerr != nil:
		return nil, lerr
	case rerr != nil:
		return nil, rerr
	}

	switch n.Op {
	case '+':
		inst := cg.block.NewFAdd(l, r)
		inst.SetName(cg.tmp("addtmp"))
		return inst, nil
	case '-':
		inst := cg.block.NewFSub(l, r)
		inst.SetName(cg.tmp("subtmp"))
		return inst, nil
	case '*':
		inst := cg.block.NewFMul(l, r)
		inst.SetName(cg.tmp("multmp"))
		return inst, nil
	case '/':
		inst := cg.block.NewFDiv(l, r)
		inst.SetName(cg.tmp("divtmp"))
		return inst, nil
	case '<':
		return cg.genCompare(enum.FPredULT, l, r), nil
	case '>':
		return cg.genCompare(enum.FPredUGT, l, r), nil
	default:
		return nil, fmt.Errorf("%w '%c'", ErrUnsupportedOperator, n.Op)
	}
}

// genCompare emits an unordered float comparison and widens the i1 result
// back to 0.0 or 1.0.
func (cg *CodeGen) genCompare(pred enum.FPred, l, r value.Value) value.Value {
	cmp := cg.block.NewFCmp(pred, l, r)
	cmp.SetName(cg.tmp("cmptmp"))
	b := cg.block.NewUIToFP(cmp, types.Double)
	b.SetName(cg.tmp("booltmp"))
	return b
}

func (cg *CodeGen) genCall(n *CallExpr) (value.Value, error) {
	if cg.block == nil {
		return nil, fmt.Errorf("codegen: call to %q outside a function body", n.Callee)
	}
	callee, ok := cg.syms.LookupFunction(n.Callee)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFunction, n.Callee)
	}
	if callee.Arity() != len(n.Args) {
		return nil, fmt.Errorf("%w to %q: want %d, got %d", ErrArityMismatch, n.Callee, callee.Arity(), len(n.Args))
	}

	// Left to right, stopping at the first failing argument.
	args := make([]value.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := cg.GenExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	call := cg.block.NewCall(callee.Fn, args...)
	call.SetName(cg.tmp("calltmp"))
	return call, nil
}

// GenPrototype declares p as double(double, ...). If the name is already
// declared or defined, the existing function is returned as long as the
// parameter count agrees.
func (cg *CodeGen) GenPrototype(p *Prototype) (*ir.Func, error) {
	if sym, ok := cg.syms.LookupFunction(p.Name); ok {
		if sym.Arity() != p.Arity() {
			return nil, fmt.Errorf("%w: %q redeclared with %d params, previously %d",
				ErrArityMismatch, p.Name, p.Arity(), sym.Arity())
		}
		return sym.Fn, nil
	}

	used := make(map[string]bool)
	params := make([]*ir.Param, len(p.Params))
	for i, name := range p.Params {
		params[i] = ir.NewParam(uniqueName(used, name), types.Double)
	}
	fn := cg.module.NewFunc(p.Name, types.Double, params...)
	cg.syms.DeclareFunction(p.Name, p.Params, fn)
	return fn, nil
}

// GenFunction emits the body of f.
//
// A name that is already defined fails with ErrFunctionRedefinition and the
// module is left untouched. If the body fails to generate or verify, every
// block emitted for it is dropped and the function stays declared, so a
// corrected definition can still succeed later.
func (cg *CodeGen) GenFunction(f *Function) (*ir.Func, error) {
	if sym, ok := cg.syms.LookupFunction(f.Proto.Name); ok && sym.State == FuncDefined {
		return nil, fmt.Errorf("%w %q", ErrFunctionRedefinition, f.Proto.Name)
	}

	fn, err := cg.GenPrototype(f.Proto)
	if err != nil {
		return nil, err
	}
	sym, _ := cg.syms.LookupFunction(f.Proto.Name)

	oldNames := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		oldNames[i] = param.Name()
	}

	cg.used = make(map[string]bool)
	entry := cg.tmp("entry")
	cg.syms.EnterFunction()
	for i, name := range f.Proto.Params {
		param := fn.Params[i]
		param.SetName(cg.tmp(name))
		cg.syms.DefineParam(name, param)
	}
	cg.block = fn.NewBlock(entry)

	ret, err := cg.GenExpr(f.Body)
	if err == nil {
		cg.block.NewRet(ret)
		err = verifyFunction(fn)
	}

	cg.block = nil
	cg.used = nil
	cg.syms.ExitFunction()

	if err != nil {
		fn.Blocks = nil
		for i, param := range fn.Params {
			param.SetName(oldNames[i])
		}
		return nil, err
	}

	sym.State = FuncDefined
	sym.Params = slices.Clone(f.Proto.Params)
	return fn, nil
}

// verifyFunction checks the structural invariants of a defined function.
func verifyFunction(fn *ir.Func) error {
	if len(fn.Blocks) == 0 {
		return fmt.Errorf("%w %q: no basic blocks", ErrInvalidFunction, fn.Name())
	}
	if !fn.Sig.RetType.Equal(types.Double) {
		return fmt.Errorf("%w %q: return type %s", ErrInvalidFunction, fn.Name(), fn.Sig.RetType)
	}
	for _, b := range fn.Blocks {
		if b.Term == nil {
			return fmt.Errorf("%w %q: block %q has no terminator", ErrInvalidFunction, fn.Name(), b.Name())
		}
	}
	return nil
}

// Discard removes name from the module and the declared-functions table.
func (cg *CodeGen) Discard(name string) {
	sym, ok := cg.syms.LookupFunction(name)
	if !ok {
		return
	}
	funcs := cg.module.Funcs[:0]
	for _, fn := range cg.module.Funcs {
		if fn != sym.Fn {
			funcs = append(funcs, fn)
		}
	}
	cg.module.Funcs = funcs
	cg.syms.RemoveFunction(name)
}
