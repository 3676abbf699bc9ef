// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui prints short status lines. Colour is decided per writer, so
// output captured by tests or pipes stays plain.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled lines to one writer.
type Printer struct {
	w       io.Writer
	success lipgloss.Style
	warning lipgloss.Style
	dim     lipgloss.Style
}

// NewPrinter returns a printer whose colour profile matches w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		warning: r.NewStyle().Foreground(lipgloss.Color("208")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Plain prints s unstyled.
func (p *Printer) Plain(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}

// Success prints s in the success colour.
func (p *Printer) Success(s string) {
	_, _ = fmt.Fprintln(p.w, p.success.Render(s))
}

// Warn prints s in the warning colour.
func (p *Printer) Warn(s string) {
	_, _ = fmt.Fprintln(p.w, p.warning.Render(s))
}

// Note prints s dimmed.
func (p *Printer) Note(s string) {
	_, _ = fmt.Fprintln(p.w, p.dim.Render(s))
}
