package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Spotify brand green plus status colors.
const (
	Green  = "#1DB954"
	Red    = "#E22134"
	Orange = "#FFA42B"
	Grey   = "#727272"
	White  = "#FFFFFF"
)

// Palette is a small stylesheet of named [lipgloss.Style]s bound to one renderer.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
	key   lipgloss.Style
}

// NewPalette builds the default palette for w, detecting its color support.
func NewPalette(w io.Writer) *Palette {
	return newPalette(lipgloss.NewRenderer(w))
}

// PlainPalette renders without any escape codes.
func PlainPalette(w io.Writer) *Palette {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(termenv.Ascii)
	return newPalette(r)
}

func newPalette(r *lipgloss.Renderer) *Palette {
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }
	return &Palette{
		title: fg(Green).Bold(true),
		ok:    fg(Green).Bold(true),
		err:   fg(Red).Bold(true),
		warn:  fg(Orange),
		muted: fg(Grey).Italic(true),
		key:   fg(White).Bold(true),
	}
}

func (p *Palette) Title(s string) string { return p.title.Render(s) }
func (p *Palette) OK(s string) string    { return p.ok.Render(s) }
func (p *Palette) Err(s string) string   { return p.err.Render(s) }
func (p *Palette) Warn(s string) string  { return p.warn.Render(s) }
func (p *Palette) Muted(s string) string { return p.muted.Render(s) }
func (p *Palette) Key(s string) string   { return p.key.Render(s) }
