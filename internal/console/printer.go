package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const ruleWidth = 80

var (
	titleColor   = lipgloss.Color("#366092")
	warningColor = lipgloss.Color("#FFC107")
	errorColor   = lipgloss.Color("#e53935")
	successColor = lipgloss.Color("#8BC34A")
)

// Printer writes the user-facing progress lines. Output is plain text unless
// the destination is a terminal.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	styled bool

	title   lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
}

func NewPrinter(out, errOut io.Writer) *Printer {
	return &Printer{
		out:     out,
		errOut:  errOut,
		styled:  IsTerminal(out),
		title:   lipgloss.NewStyle().Bold(true).Foreground(titleColor),
		warning: lipgloss.NewStyle().Foreground(warningColor),
		failure: lipgloss.NewStyle().Bold(true).Foreground(errorColor),
		success: lipgloss.NewStyle().Foreground(successColor),
		muted:   lipgloss.NewStyle().Faint(true),
	}
}

// Stdio is a Printer bound to the process's stdout and stderr.
func Stdio() *Printer {
	return NewPrinter(os.Stdout, os.Stderr)
}

// Discard drops everything.
func Discard() *Printer {
	return NewPrinter(io.Discard, io.Discard)
}

func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) Out() io.Writer {
	return p.out
}

func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

// Token writes a streamed fragment as-is, without a newline.
func (p *Printer) Token(s string) {
	_, _ = io.WriteString(p.out, s)
}

func (p *Printer) Rule() {
	p.Println(p.style(p.muted, strings.Repeat("=", ruleWidth)))
}

// Banner prints title between two rules.
func (p *Printer) Banner(title string) {
	p.Rule()
	p.Println(p.style(p.title, title))
	p.Rule()
}

func (p *Printer) Successf(format string, args ...any) {
	p.Println(p.style(p.success, fmt.Sprintf(format, args...)))
}

func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintln(p.errOut, p.style(p.warning, "Warning: "+fmt.Sprintf(format, args...)))
}

// Notef writes a plain diagnostic line to stderr.
func (p *Printer) Notef(format string, args ...any) {
	fmt.Fprintf(p.errOut, format+"\n", args...)
}

func (p *Printer) Tipf(format string, args ...any) {
	fmt.Fprintln(p.errOut, "Tip: "+fmt.Sprintf(format, args...))
}

func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.errOut, p.style(p.failure, "error: "+fmt.Sprintf(format, args...)))
}

func (p *Printer) style(s lipgloss.Style, text string) string {
	if !p.styled {
		return text
	}
	return s.Render(text)
}
