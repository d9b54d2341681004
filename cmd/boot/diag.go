package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/boot-runtime/errors"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD166"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// diag writes fatal errors and warnings to stderr, styled on a terminal.
type diag struct {
	w      io.Writer
	styled bool
}

func newDiag(w io.Writer) *diag {
	d := &diag{w: w}
	if f, ok := w.(*os.File); ok {
		d.styled = term.IsTerminal(int(f.Fd()))
	}
	return d
}

func (d *diag) fatal(err error) {
	d.print(errorStyle, "ERROR", err)
}

func (d *diag) warn(err error) {
	d.print(warnStyle, "WARNING", err)
}

func (d *diag) print(style lipgloss.Style, label string, err error) {
	msg := err.Error()
	where := ""
	if e, ok := errors.As(err); ok {
		msg = e.Message()
		where = string(e.Phase)
	}

	if !d.styled {
		fmt.Fprintf(d.w, "%s: %s\n", label, msg)
		return
	}
	if where != "" {
		fmt.Fprintf(d.w, "%s %s %s\n", style.Render(label+":"), msg, detailStyle.Render("("+where+")"))
		return
	}
	fmt.Fprintf(d.w, "%s %s\n", style.Render(label+":"), msg)
}
