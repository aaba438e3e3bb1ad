package ui

import (
	"bytes"
	"testing"
)

func TestPrinter(t *testing.T) {
	t.Run("Plain output", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, true)

		p.Success("saved %d albums", 2)
		p.Failure("not found")
		p.Warning("rate limited")

		want := "✓ saved 2 albums\n✗ not found\n! rate limited\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
	})

	t.Run("Fields are aligned and empty values skipped", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, true)

		p.Fields("Name", "Una", "Country", "", "Product", "premium")

		want := "  Name:    Una\n  Product: premium\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
	})

	t.Run("Line", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewPrinter(&buf, true)

		p.Line(1, "Artist - Song", "3:00")
		p.Line(12, "Artist - Other", "")

		want := "  1. Artist - Song  3:00\n 12. Artist - Other\n"
		if buf.String() != want {
			t.Errorf("expected %q, got %q", want, buf.String())
		}
	})
}
