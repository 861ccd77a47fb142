//go:build !js

package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

const (
	promptText  = "kld> "
	historyFile = ".kld_history"
)

// prompt adapts a line editor to io.Reader so the lexer can pull source one
// line at a time. A construct may span several lines. Ctrl+C or Ctrl+D end
// the input.
type prompt struct {
	ln       *liner.State
	histPath string
	pending  []byte
	done     bool
}

func newPrompt() *prompt {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)

	p := &prompt{ln: ln}
	if home, err := os.UserHomeDir(); err == nil {
		p.histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(p.histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}
	return p
}

func (p *prompt) Read(b []byte) (int, error) {
	for len(p.pending) == 0 {
		if p.done {
			return 0, io.EOF
		}
		line, err := p.ln.Prompt(promptText)
		if err != nil {
			// io.EOF on Ctrl+D, liner.ErrPromptAborted on Ctrl+C.
			p.done = true
			continue
		}
		if strings.TrimSpace(line) != "" {
			p.ln.AppendHistory(line)
		}
		p.pending = append(p.pending, line...)
		p.pending = append(p.pending, '\n')
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

// Close saves the history and restores the terminal.
func (p *prompt) Close() error {
	if p.histPath != "" {
		if f, err := os.Create(p.histPath); err == nil {
			_, _ = p.ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return p.ln.Close()
}
