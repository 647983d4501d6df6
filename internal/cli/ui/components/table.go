package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dagknows/dkproxyctl/internal/cli/ui/styles"
)

// TableColumn defines a table column. Width 0 lets the cell size itself.
type TableColumn struct {
	Title string
	Width int
}

// TableModel renders a bordered table for command output.
type TableModel struct {
	columns     []TableColumn
	rows        [][]string
	border      lipgloss.Border
	borderStyle lipgloss.Style
	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
}

// TableOption configures a TableModel.
type TableOption func(*TableModel)

// NewTable creates a styled table.
func NewTable(opts ...TableOption) *TableModel {
	t := &TableModel{
		border:      lipgloss.RoundedBorder(),
		borderStyle: styles.Theme.TableBorder,
		headerStyle: styles.Theme.TableHeader.Padding(0, 1),
		cellStyle:   styles.Theme.TableRow.Padding(0, 1),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithColumns sets the table columns.
func WithColumns(cols ...TableColumn) TableOption {
	return func(t *TableModel) { t.columns = cols }
}

// WithRows sets the table rows.
func WithRows(rows [][]string) TableOption {
	return func(t *TableModel) { t.rows = rows }
}

// AddRow appends one row.
func (t *TableModel) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table as a string.
func (t *TableModel) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = truncateCell(col.Title, col.Width)
	}

	rows := make([][]string, len(t.rows))
	for rowIdx, row := range t.rows {
		rows[rowIdx] = make([]string, len(row))
		for colIdx, cell := range row {
			width := 0
			if colIdx < len(t.columns) {
				width = t.columns[colIdx].Width
			}
			rows[rowIdx][colIdx] = truncateCell(cell, width)
		}
	}

	return table.New().
		Border(t.border).
		BorderStyle(t.borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := t.cellStyle
			if row == table.HeaderRow {
				style = t.headerStyle
			}
			if col >= 0 && col < len(t.columns) && t.columns[col].Width > 0 {
				width := t.columns[col].Width
				return style.Width(width).MaxWidth(width)
			}
			return style
		}).
		String()
}

// SimpleTable renders headers and rows with default styling.
func SimpleTable(headers []string, rows [][]string) string {
	cols := make([]TableColumn, len(headers))
	for i, h := range headers {
		cols[i] = TableColumn{Title: h}
	}
	return NewTable(WithColumns(cols...), WithRows(rows)).Render()
}

// truncateCell shortens a cell to maxWidth terminal columns, ellipsized.
// Cells carrying ANSI sequences are passed through untouched since their
// visible width cannot be measured naively.
func truncateCell(value string, maxWidth int) string {
	if strings.Contains(value, "\x1b[") {
		return value
	}
	if maxWidth <= 0 || runewidth.StringWidth(value) <= maxWidth {
		return value
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	targetWidth := maxWidth - 3
	var b strings.Builder
	currentWidth := 0
	graphemes := uniseg.NewGraphemes(value)
	for graphemes.Next() {
		grapheme := graphemes.Str()
		width := runewidth.StringWidth(grapheme)
		if currentWidth+width > targetWidth {
			break
		}
		b.WriteString(grapheme)
		currentWidth += width
	}
	if b.Len() == 0 {
		return strings.Repeat(".", maxWidth)
	}
	return b.String() + "..."
}
