// Package report renders aligned plain-text tables for CLI summaries.
package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table accumulates rows and renders them with display-width-aligned columns.
type Table struct {
	header []string
	rows   [][]string
}

// NewTable creates a table with the given header columns.
func NewTable(header ...string) *Table {
	return &Table{header: header}
}

// AddRow appends a data row. Short rows are padded with empty cells.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// String renders the table with a separator row under the header.
func (t *Table) String() string {
	all := make([][]string, 0, len(t.rows)+1)
	if len(t.header) > 0 {
		all = append(all, t.header)
	}

	all = append(all, t.rows...)

	if len(all) == 0 {
		return ""
	}

	colCount := 0
	for _, row := range all {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	// Column widths use display width so CJK and combining characters align.
	colWidths := make([]int, colCount)

	for _, row := range all {
		for i := 0; i < len(row) && i < colCount; i++ {
			width := runewidth.StringWidth(row[i])
			if width > colWidths[i] {
				colWidths[i] = width
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	var sb strings.Builder

	writeRow := func(row []string) {
		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			content := ""
			if j < len(row) {
				content = row[j]
			}

			sb.WriteString(" ")
			sb.WriteString(content)

			padding := colWidths[j] - runewidth.StringWidth(content)
			if padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}

			sb.WriteString(" |")
		}

		sb.WriteString("\n")
	}

	writeRow(all[0])

	if len(t.header) > 0 {
		sb.WriteString("|")

		for j := 0; j < colCount; j++ {
			sb.WriteString(" ")
			sb.WriteString(strings.Repeat("-", colWidths[j]))
			sb.WriteString(" |")
		}

		sb.WriteString("\n")
	}

	for _, row := range all[1:] {
		writeRow(row)
	}

	return sb.String()
}
