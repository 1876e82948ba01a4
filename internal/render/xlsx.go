package render

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/lojatax/api/internal/services/vatreturn"
)

// XLSXMIMEType is the content type of the workbook export.
const XLSXMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXFilename suggests the download name for a period's workbook.
func XLSXFilename(data vatreturn.ReturnData) string {
	return fmt.Sprintf("vat-return-%s.xlsx", data.Period)
}

// ReturnXLSX renders the return as a single-sheet workbook. It walks
// the same Document as the text and HTML renderers.
func ReturnXLSX(data vatreturn.ReturnData) ([]byte, error) {
	doc, err := ReturnDocument(data)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "VAT Return"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "B", 16)

	_ = f.SetCellValue(sheet, "A1", doc.Title)
	_ = f.SetCellValue(sheet, "A2", doc.Subtitle)

	row := 4
	for _, section := range doc.Sections {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), section.Heading)
		row++
		for _, r := range section.Rows {
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.Label)
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Value)
			row++
		}
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
