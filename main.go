//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gokld/pkg/compiler"
	"gokld/pkg/utils"
)

type options struct {
	inPath      string
	outPath     string
	interactive bool
	verbose     bool
	name        string
}

func main() {
	var opts options
	flag.StringVar(&opts.inPath, "in", "", "input source file (default: stdin)")
	flag.StringVar(&opts.outPath, "out", "", "output IR file (default: stdout)")
	flag.BoolVar(&opts.interactive, "i", false, "read source from an interactive prompt")
	flag.BoolVar(&opts.verbose, "v", false, "echo the IR of every construct to stderr")
	flag.StringVar(&opts.name, "name", "", "module source filename (default: input path)")
	flag.Parse()

	if opts.interactive && opts.inPath != "" {
		fmt.Fprintln(os.Stderr, "use either -i or -in, not both")
		os.Exit(2)
	}

	if err := run(opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run compiles one input to the end and writes the module once. Source
// diagnostics go to stderr and never fail the run; only I/O does.
func run(opts options, stdin io.Reader, stdout, stderr io.Writer) error {
	var src io.Reader
	name := "<stdin>"

	switch {
	case opts.interactive:
		p := newPrompt()
		defer p.Close()
		src = p
	case opts.inPath != "":
		fullPath, _, err := utils.GetPathInfo(opts.inPath)
		if err != nil {
			return fmt.Errorf("failed to resolve input path %q: %w", opts.inPath, err)
		}
		f, err := os.Open(fullPath)
		if err != nil {
			return fmt.Errorf("failed to read input file %q: %w", opts.inPath, err)
		}
		defer f.Close()
		src = f
		name = opts.inPath
	default:
		src = stdin
	}
	if opts.name != "" {
		name = opts.name
	}

	cg := compiler.NewCodeGen(name, compiler.NewSymbolTable())
	d := compiler.NewDriver(src, cg, stderr)
	if opts.verbose || opts.interactive {
		d.SetTrace(stderr)
	}
	d.Run()

	return writeModule(opts.outPath, stdout, cg.String())
}

func writeModule(path string, stdout io.Writer, text string) error {
	if path == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file %q: %w", path, err)
	}
	return nil
}
