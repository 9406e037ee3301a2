package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown renders t as a GitHub flavoured markdown table.
func Markdown(t Table) string {
	var b strings.Builder
	b.WriteString("| " + strings.Join(t.Header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(t.Header)) + "\n")
	for _, r := range t.Rows {
		cells := r.Cells()
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// RenderTerminal renders the table followed by the balance line for a
// terminal. style is a glamour standard style name such as "dark" or
// "notty".
func RenderTerminal(t Table, balance, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	md := "# Transactions\n\n" + Markdown(t) + "\n**Balance:** " + balance + "\n"
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}
	return out, nil
}
