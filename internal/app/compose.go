package app

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// placeBlock draws block over base with its top-left corner at row, col.
// Lines of block that fall outside base are dropped. ANSI styling on both
// sides is preserved.
func placeBlock(base, block string, row, col, width int) string {
	baseLines := strings.Split(base, "\n")
	for i, line := range strings.Split(block, "\n") {
		target := row + i
		if target < 0 || target >= len(baseLines) {
			continue
		}
		lineWidth := ansi.StringWidth(line)
		if lineWidth == 0 {
			continue
		}
		end := min(col+lineWidth, width)
		line = ansi.Truncate(line, end-col, "")

		baseLine := baseLines[target]
		if w := ansi.StringWidth(baseLine); w < width {
			baseLine += strings.Repeat(" ", width-w)
		}
		result := ansi.Cut(baseLine, 0, col) + line
		if end < width {
			result += ansi.Cut(baseLine, end, width)
		}
		baseLines[target] = result
	}
	return strings.Join(baseLines, "\n")
}
