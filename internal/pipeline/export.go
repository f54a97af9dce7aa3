package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"builtwith/internal"
	"builtwith/internal/util"
)

const (
	TechnologySheet = "Technology Stack"
	AnalysisSheet   = "LLM Analysis"

	analysisSeparator = "---"
	analysisHeading   = "Ollama Analysis"
	headerFill        = "366092"
	maxColumnWidth    = 50
)

// ExportOptions controls optional workbook content.
type ExportOptions struct {
	// InlineAnalysis appends the analysis, one line per row, below the
	// technology records.
	InlineAnalysis bool
}

// ExportToXLSX writes records to outputPath. A non-empty analysis also gets
// its own sheet.
func ExportToXLSX(records []internal.TechnologyRecord, analysis, outputPath string, opts ExportOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetName(sheet, TechnologySheet); err != nil {
		return errors.Wrap(err, "rename sheet")
	}
	sheet = TechnologySheet

	rows := make([][]any, 0, len(records)+1)
	header := make([]any, len(internal.TechnologyColumns))
	for i, name := range internal.TechnologyColumns {
		header[i] = name
	}
	rows = append(rows, header)
	for _, record := range records {
		rows = append(rows, record.Values())
	}
	if opts.InlineAnalysis {
		rows = append(rows, AnalysisRows(analysis)...)
	}

	widths := make([]int, len(internal.TechnologyColumns))
	for i, row := range rows {
		r := i + 1
		for j, value := range row {
			if s, ok := value.(string); ok && s == "" {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, r)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return errors.Wrapf(err, "set %s", cell)
			}
			if n := utf8.RuneCountInString(fmt.Sprint(value)); n > widths[j] {
				widths[j] = n
			}
		}
	}

	for j, width := range widths {
		col, _ := excelize.ColumnNumberToName(j + 1)
		if err := f.SetColWidth(sheet, col, col, float64(min(width+2, maxColumnWidth))); err != nil {
			return errors.Wrapf(err, "width %s", col)
		}
	}
	if err := styleHeader(f, sheet); err != nil {
		return err
	}

	if analysis != "" {
		if _, err := f.NewSheet(AnalysisSheet); err != nil {
			return errors.Wrap(err, "add analysis sheet")
		}
		if err := f.SetCellValue(AnalysisSheet, "A1", AnalysisSheet); err != nil {
			return errors.Wrap(err, "set analysis header")
		}
		if err := f.SetCellValue(AnalysisSheet, "A2", analysis); err != nil {
			return errors.Wrap(err, "set analysis text")
		}
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	return errors.Wrapf(f.SaveAs(outputPath), "save %s", outputPath)
}

func styleHeader(f *excelize.File, sheet string) error {
	style, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return errors.Wrap(err, "header style")
	}
	last, _ := excelize.CoordinatesToCellName(len(internal.TechnologyColumns), 1)
	return errors.Wrap(f.SetCellStyle(sheet, "A1", last, style), "style header")
}

// AnalysisRows lays out analysis text as sheet rows: a separator row, then one
// row per non-blank line in the Subcategory column. Blank text yields nil.
func AnalysisRows(analysis string) [][]any {
	lines := util.NonBlankLines(analysis)
	if len(lines) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(lines)+1)
	rows = append(rows, analysisRow(analysisSeparator, analysisHeading))
	for _, line := range lines {
		rows = append(rows, analysisRow("", line))
	}
	return rows
}

func analysisRow(category, text string) []any {
	row := make([]any, len(internal.TechnologyColumns))
	for i := range row {
		row[i] = ""
	}
	row[0] = category
	row[1] = text
	return row
}
