// Package compiler provides the lexer, parser and code generator for a small
// expression language with one numeric type, lowering it to LLVM IR.
//
// Pipeline: source → Lexer → Parser → CodeGen → *ir.Module (textual LLVM IR)
//
// Source is processed one top-level construct at a time ("def", "extern", a
// bare expression, or ";"), so the same pipeline serves files and an
// interactive prompt. Driver runs that loop and reports diagnostics.
package compiler
