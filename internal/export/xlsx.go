package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prn-tf/taskflow/internal/domain"
)

// TasksSheet is the sheet name of the task table workbook.
const TasksSheet = "Tasks"

const maxSheetNameLen = 31

// TasksXLSX renders the task table as a single-sheet workbook.
// The caller must Close the returned file.
func TasksXLSX(rows []TaskRow) (*excelize.File, error) {
	body := make([][]string, len(rows))
	for i, r := range rows {
		body[i] = r.Values()
	}
	return newWorkbook(TasksSheet, TaskHeaders, body)
}

// ReportXLSX renders a custom report as a single-sheet workbook named
// after its title. Cells missing from a row are left empty.
func ReportXLSX(report domain.CustomReport) (*excelize.File, error) {
	headers := make([]string, len(report.Columns))
	for i, c := range report.Columns {
		headers[i] = c.Name
	}

	body := make([][]string, len(report.Rows))
	for i, row := range report.Rows {
		values := make([]string, len(report.Columns))
		for j, c := range report.Columns {
			values[j] = row.Data[c.ID]
		}
		body[i] = values
	}
	return newWorkbook(SheetName(report.Title), headers, body)
}

// WriteXLSX writes f to w and closes it.
func WriteXLSX(w io.Writer, f *excelize.File) error {
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SheetName makes a valid worksheet name from a title.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	name = strings.Trim(name, "'")
	if runes := []rune(name); len(runes) > maxSheetNameLen {
		name = string(runes[:maxSheetNameLen])
	}
	if name == "" {
		return "Report"
	}
	return name
}

func newWorkbook(sheet string, headers []string, rows [][]string) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := setRow(f, sheet, 1, headers); err != nil {
		f.Close()
		return nil, err
	}
	if len(headers) > 0 {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to style header row: %w", err)
		}
	}

	for i, values := range rows {
		if err := setRow(f, sheet, i+2, values); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("invalid row %d: %w", row, err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
