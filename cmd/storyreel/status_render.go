package main

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"storyreel/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusStyles = [...]struct {
	tag  string
	ansi string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

// labelColumn is the padded width of "Label:" in doctor output.
const labelColumn = 22

func (k statusKind) style() (string, string) {
	if int(k) < 0 || int(k) >= len(statusStyles) {
		k = statusInfo
	}
	st := statusStyles[k]
	return st.tag, st.ansi
}

func (k statusKind) String() string {
	tag, _ := k.style()
	return tag
}

func paint(text, ansi string, on bool) string {
	if !on || ansi == "" {
		return text
	}
	return ansi + text + ansiReset
}

// renderStatusLine formats "  Label:   [TAG] message".
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag, ansi := kind.style()
	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(label)
	b.WriteByte(':')
	if pad := labelColumn - len(label) - 1; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(" [")
	b.WriteString(tag)
	b.WriteByte(']')
	if message != "" {
		b.WriteByte(' ')
		b.WriteString(message)
	}
	return paint(b.String(), ansi, colorize)
}

// preflightKind maps a check result to a status. Optional tools that are
// missing pass but are still worth a warning.
func preflightKind(result preflight.Result) statusKind {
	switch {
	case !result.Passed:
		return statusError
	case strings.HasSuffix(result.Detail, "(optional)"):
		return statusWarn
	default:
		return statusOK
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	_, ansi := statusInfo.style()
	heading := "== " + strings.TrimSpace(title) + " =="
	return []string{
		paint(heading, ansi, colorize),
		paint(strings.Repeat("-", len(heading)), ansi, colorize),
	}
}

// shouldColorize reports whether w is an interactive terminal.
func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
