package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiReset = "\x1b[0m"
)

// colorEnabled reports whether w is a terminal that wants color.
func colorEnabled(w io.Writer, disabled bool) bool {
	if disabled {
		return false
	}
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type painter struct {
	on bool
}

func (p painter) paint(code, s string) string {
	if !p.on {
		return s
	}
	return code + s + ansiReset
}

func (p painter) header(s string) string  { return p.paint(ansiBold+ansiCyan, s) }
func (p painter) added(s string) string   { return p.paint(ansiGreen, s) }
func (p painter) removed(s string) string { return p.paint(ansiRed, s) }
