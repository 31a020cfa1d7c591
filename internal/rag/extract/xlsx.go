package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXlsx renders every sheet as tab-separated rows, with a sheet
// heading so chunk boundaries tend to fall between sheets. Sheets whose rows
// cannot be read are skipped.
func extractXlsx(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		b.WriteString(sheet)
		b.WriteString("\n")
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
