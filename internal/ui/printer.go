package ui

import (
	"fmt"
	"io"
	"strings"
)

// Printer writes styled status lines for CLI commands.
type Printer struct {
	w       io.Writer
	palette *Palette
}

func NewPrinter(w io.Writer, plain bool) *Printer {
	if plain {
		return &Printer{w: w, palette: PlainPalette(w)}
	}
	return &Printer{w: w, palette: NewPalette(w)}
}

func (p *Printer) Palette() *Palette { return p.palette }

func (p *Printer) Title(format string, args ...any) {
	fmt.Fprintln(p.w, p.palette.Title(fmt.Sprintf(format, args...)))
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.palette.OK("✓"), fmt.Sprintf(format, args...))
}

func (p *Printer) Failure(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.palette.Err("✗"), fmt.Sprintf(format, args...))
}

func (p *Printer) Warning(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.palette.Warn("!"), fmt.Sprintf(format, args...))
}

func (p *Printer) Note(format string, args ...any) {
	fmt.Fprintln(p.w, p.palette.Muted(fmt.Sprintf(format, args...)))
}

// Fields prints key/value pairs with the keys padded to a common width.
// Pairs with an empty value are skipped.
func (p *Printer) Fields(kv ...string) {
	width := 0
	for i := 0; i+1 < len(kv); i += 2 {
		width = max(width, len(kv[i]))
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		pad := strings.Repeat(" ", width-len(kv[i]))
		fmt.Fprintf(p.w, "  %s%s %s\n", p.palette.Key(kv[i]+":"), pad, kv[i+1])
	}
}

// Line prints a numbered entry with an optional muted suffix.
func (p *Printer) Line(n int, text, suffix string) {
	if suffix != "" {
		suffix = "  " + p.palette.Muted(suffix)
	}
	fmt.Fprintf(p.w, "%3d. %s%s\n", n, text, suffix)
}

func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.w, a...)
}
