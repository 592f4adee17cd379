package prompt

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes editor output line by line. Colors are dropped
// automatically when w is not a terminal.
type Printer struct {
	w            io.Writer
	errorStyle   lipgloss.Style
	successStyle lipgloss.Style
}

// NewPrinter returns a printer bound to w.
func NewPrinter(w io.Writer) *Printer {
	renderer := lipgloss.NewRenderer(w)
	return &Printer{
		w:            w,
		errorStyle:   renderer.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true),
		successStyle: renderer.NewStyle().Foreground(lipgloss.Color("#04B575")),
	}
}

// Println writes the operands followed by a newline.
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}

// Printf writes formatted text as is.
func (p *Printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.w, format, a...)
}

// Success writes a highlighted confirmation line.
func (p *Printer) Success(format string, a ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, a...), "\n")
	fmt.Fprintln(p.w, p.successStyle.Render(msg))
}

// Error writes err as a highlighted line. Nil errors are ignored.
func (p *Printer) Error(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(p.w, p.errorStyle.Render(err.Error()))
}
