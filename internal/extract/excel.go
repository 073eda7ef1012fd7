package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel flattens a workbook into searchable text: one line per
// non-empty row, cells tab-joined. When the workbook has more than one sheet,
// each sheet's block is headed by its name so hits stay attributable.
func extractExcel(content []byte) (string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	var b strings.Builder
	for _, name := range sheets {
		rows, err := wb.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", name, err)
		}
		var lines []string
		for _, cells := range rows {
			line := strings.TrimSpace(strings.Join(cells, "\t"))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		if len(sheets) > 1 {
			b.WriteString(name)
			b.WriteByte('\n')
		}
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}
