// Package ui styles the CLI's terminal output with lipgloss.
//
// A [Printer] writes status lines (successes, failures, key/value fields, numbered listings)
// through a [Palette]. Color support is detected from the writer; [PlainPalette] turns styling off for
// pipes and tests.
package ui
