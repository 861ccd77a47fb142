package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/llir/llvm/asm"

	"gokld/pkg/compiler"
	"gokld/pkg/utils"
)

const testSource = `extern sin(x);
def sq(x) x * x;
def f(a b) sq(a) + b < 4;
f(sin(1), 2);
`

func main() {
	stage := flag.String("stage", "all", "stage to dump: tokens, ast, ir, syms or all")
	emit := flag.Bool("emit", false, "also write the IR next to the input as <name>.ll")
	flag.Parse()

	src := testSource
	name := "<builtin>"
	fullPath := ""
	if flag.NArg() > 0 {
		var err error
		fullPath, _, err = utils.GetPathInfo(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "path error:", err)
			os.Exit(1)
		}
		data, err := os.ReadFile(fullPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
		name = flag.Arg(0)
	}

	all := *stage == "all"
	switch *stage {
	case "all", "tokens", "ast", "ir", "syms":
	default:
		fmt.Fprintf(os.Stderr, "unknown stage %q\n", *stage)
		os.Exit(2)
	}

	if all {
		fmt.Printf("Source:\n%s\n", src)
	}

	// Lex
	if all || *stage == "tokens" {
		tokens := compiler.Lex(src)
		fmt.Printf("Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			fmt.Println(" ", tok)
		}
		fmt.Println()
	}

	// Parse
	if all || *stage == "ast" {
		fmt.Println("AST")
		p := compiler.NewParser(compiler.NewLexer(strings.NewReader(src)))
		for {
			c, err := p.ParseConstruct()
			if err != nil {
				fmt.Println("  parse error:", err)
				p.Next()
				continue
			}
			if c == nil {
				break
			}
			fmt.Println(" ", c)
		}
		fmt.Println()
	}

	if *stage == "tokens" || *stage == "ast" {
		return
	}

	// Code generation
	syms := compiler.NewSymbolTable()
	cg := compiler.NewCodeGen(name, syms)
	d := compiler.NewDriver(strings.NewReader(src), cg, os.Stderr)
	d.Run()

	if all || *stage == "ir" {
		ir := cg.String()
		fmt.Println("Generated IR")
		fmt.Print(ir)
		fmt.Println()

		if _, err := asm.ParseString(name, ir); err != nil {
			fmt.Fprintln(os.Stderr, "IR does not re-parse:", err)
			os.Exit(1)
		}

		if *emit && fullPath != "" {
			out := utils.WithExt(fullPath, ".ll")
			if err := os.WriteFile(out, []byte(ir), 0o644); err != nil {
				fmt.Fprintln(os.Stderr, "write error:", err)
				os.Exit(1)
			}
			fmt.Printf("wrote %s\n\n", out)
		}
	}

	if all || *stage == "syms" {
		fmt.Print(syms)
	}

	if n := len(d.Errors()); n > 0 {
		fmt.Fprintf(os.Stderr, "%d error(s)\n", n)
	}
}
