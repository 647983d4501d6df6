package components

import (
	"regexp"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRender_TruncatesToColumnWidth(t *testing.T) {
	tableModel := NewTable(
		WithColumns(TableColumn{Title: "Tag", Width: 6}),
		WithRows([][]string{{"1.42.7-hotfix"}}),
	)

	rendered := stripANSI(tableModel.Render())

	assert.Contains(t, rendered, "1.4...")
	assert.NotContains(t, rendered, "1.42.7-hotfix")
}

func TestTableRender_EmptyWithoutColumns(t *testing.T) {
	assert.Equal(t, "", NewTable().Render())
}

func TestSimpleTable_IncludesHeadersAndRows(t *testing.T) {
	rendered := stripANSI(SimpleTable(
		[]string{"Service", "Tag"},
		[][]string{
			{"outpost", "1.43"},
			{"vault", "latest"},
		},
	))

	for _, want := range []string{"Service", "Tag", "outpost", "1.43", "vault", "latest"} {
		assert.Contains(t, rendered, want)
	}

	lines := strings.Split(rendered, "\n")
	require.GreaterOrEqual(t, len(lines), 4, "bordered table should span several lines")
}

func TestAddRow(t *testing.T) {
	tableModel := NewTable(WithColumns(TableColumn{Title: "Service"}))
	tableModel.AddRow("outpost")
	tableModel.AddRow("cmd_exec")

	rendered := stripANSI(tableModel.Render())
	assert.Contains(t, rendered, "outpost")
	assert.Contains(t, rendered, "cmd_exec")
}

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		maxWidth int
		expected string
	}{
		{name: "zero width passthrough", value: "abcdef", maxWidth: 0, expected: "abcdef"},
		{name: "fits untouched", value: "1.43", maxWidth: 6, expected: "1.43"},
		{name: "narrow column all dots", value: "abcdef", maxWidth: 3, expected: "..."},
		{name: "ellipsized", value: "sha256:11aa22bb", maxWidth: 10, expected: "sha256:..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateCell(tt.value, tt.maxWidth)
			assert.Equal(t, tt.expected, got)
			if tt.maxWidth > 0 {
				assert.LessOrEqual(t, runewidth.StringWidth(got), tt.maxWidth)
			}
		})
	}
}

func TestTruncateCell_AnsiPassthrough(t *testing.T) {
	styled := "\x1b[32mcurrent\x1b[0m"
	assert.Equal(t, styled, truncateCell(styled, 3))
}

func stripANSI(input string) string {
	ansiPattern := regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	return ansiPattern.ReplaceAllString(input, "")
}
