// Package printer writes styled status lines for CLI commands.
package printer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hay-kot/toastq/internal/core/styles"
)

type ctxKey struct{}

// Printer writes styled lines to an output writer.
type Printer struct {
	w io.Writer
}

// New creates a printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx returns the printer stored in ctx, or a stdout printer when none is set.
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stdout)
}

func (p *Printer) line(icon string, style func(...string) string, msg string) {
	_, _ = fmt.Fprintln(p.w, style(icon)+" "+msg)
}

// Success prints a success line followed by an optional muted detail.
func (p *Printer) Success(msg, detail string) {
	p.line(styles.IconSuccess, styles.SuccessStyle.Render, msg)
	if detail != "" {
		_, _ = fmt.Fprintln(p.w, "  "+styles.MutedStyle.Render(detail))
	}
}

func (p *Printer) Successf(format string, args ...any) {
	p.line(styles.IconSuccess, styles.SuccessStyle.Render, fmt.Sprintf(format, args...))
}

func (p *Printer) Infof(format string, args ...any) {
	p.line(styles.IconInfo, styles.InfoStyle.Render, fmt.Sprintf(format, args...))
}

func (p *Printer) Warnf(format string, args ...any) {
	p.line(styles.IconWarning, styles.WarningStyle.Render, fmt.Sprintf(format, args...))
}

func (p *Printer) Errorf(format string, args ...any) {
	p.line(styles.IconError, styles.ErrorStyle.Render, fmt.Sprintf(format, args...))
}

// Printf prints an unstyled line.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}
