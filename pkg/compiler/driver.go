package compiler

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/llir/llvm/ir"
)

// Driver runs the top-level loop: it parses one construct at a time, lowers
// it, and reports every failure as "Error: <message>" on the diagnostic
// writer the moment it is seen. No error stops the loop; only end of input
// does.
type Driver struct {
	parser *Parser
	cg     *CodeGen
	diag   io.Writer
	trace  *log.Logger
	errs   ErrorList
}

// NewDriver returns a Driver reading source from r and emitting into cg.
func NewDriver(r io.Reader, cg *CodeGen, diag io.Writer) *Driver {
	return &Driver{
		parser: NewParser(NewLexer(r)),
		cg:     cg,
		diag:   diag,
	}
}

// SetTrace makes the driver echo the IR of every construct it reads to w.
// A nil w turns the echo off.
func (d *Driver) SetTrace(w io.Writer) {
	if w == nil {
		d.trace = nil
		return
	}
	d.trace = log.New(w, "", 0)
}

// Parser returns the driver's parser, e.g. to install extra operators.
func (d *Driver) Parser() *Parser { return d.parser }

// Run processes constructs until end of input.
func (d *Driver) Run() {
	for {
		c, err := d.parser.ParseConstruct()
		if err != nil {
			d.report(err)
			// Skip the offending token before trying the next construct.
			d.parser.Next()
			continue
		}
		if c == nil {
			return
		}
		d.handle(c)
	}
}

func (d *Driver) handle(c *Construct) {
	switch c.Kind {
	case ConstructDef:
		fn, err := d.cg.GenFunction(c.Func)
		if err != nil {
			d.report(err)
			return
		}
		d.echo("Read function definition:", fn)

	case ConstructExtern:
		fn, err := d.cg.GenPrototype(c.Proto)
		if err != nil {
			d.report(err)
			return
		}
		d.echo("Read extern:", fn)

	case ConstructExpr:
		fn, err := d.cg.GenFunction(c.Func)
		if err != nil {
			d.report(err)
		} else {
			d.echo("Read top-level expression:", fn)
		}
		d.cg.Discard(AnonExprName)
	}
}

// report prints err, one "Error:" line per error when err is a join.
func (d *Driver) report(err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			d.report(e)
		}
		return
	}
	d.errs.Add(err)
	fmt.Fprintf(d.diag, "Error: %s\n", err)
}

func (d *Driver) echo(header string, fn *ir.Func) {
	if d.trace == nil {
		return
	}
	d.trace.Printf("%s\n%s", header, fn.LLString())
}

// Errors returns every diagnostic reported so far.
func (d *Driver) Errors() []error { return d.errs.Errors() }

// Err joins every diagnostic reported so far.
func (d *Driver) Err() error { return d.errs.Err() }

// Compile runs the whole pipeline over src and returns the resulting module
// together with every diagnostic, in the order they were reported.
func Compile(src string) (*ir.Module, []error) {
	cg := NewCodeGen("<string>", NewSymbolTable())
	d := NewDriver(strings.NewReader(src), cg, io.Discard)
	d.Run()
	return cg.Module(), d.Errors()
}
