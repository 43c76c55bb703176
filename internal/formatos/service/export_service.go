package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/checosdovalina/gelag-sub002/internal/formatos/entity"
	"github.com/checosdovalina/gelag-sub002/internal/formatos/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService builds the consolidated read-model over a template's entries
// and renders it as a spreadsheet. It never mutates an entry.
type ExportService struct {
	templates *repository.FormTemplateRepository
}

func NewExportService(templates *repository.FormTemplateRepository) *ExportService {
	return &ExportService{templates: templates}
}

// ConsolidatedView is one template's entries projected onto a selected and
// ordered subset of field ids. Cells hold rendered strings; missing fields
// render as the empty string, never an error.
type ConsolidatedView struct {
	Columns []string
	Rows    [][]string
}

// BuildView projects entries onto selected field ids. fieldOrder ranks the
// selected ids; ids without a rank keep their position in selected. The input
// entries are read only.
func BuildView(entries []entity.FormEntry, selected []string, fieldOrder map[string]int) ConsolidatedView {
	cols := make([]string, len(selected))
	copy(cols, selected)
	if len(fieldOrder) > 0 {
		sort.SliceStable(cols, func(i, j int) bool {
			ri, iok := fieldOrder[cols[i]]
			rj, jok := fieldOrder[cols[j]]
			if iok && jok {
				return ri < rj
			}
			// Ranked columns sort ahead of unranked ones.
			return iok && !jok
		})
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := make([]string, len(cols))
		for i, id := range cols {
			if v, ok := e.Data[id]; ok {
				row[i] = renderCell(v)
			}
		}
		rows = append(rows, row)
	}
	return ConsolidatedView{Columns: cols, Rows: rows}
}

// ExportEntries renders the consolidated view of one template as xlsx.
func (s *ExportService) ExportEntries(ctx context.Context, templateID string, selected []string, fieldOrder map[string]int) (*excelize.File, string, error) {
	tpl, err := s.templates.FindByID(ctx, templateID)
	if err != nil {
		return nil, "", fmt.Errorf("load template: %w", err)
	}
	if tpl == nil {
		return nil, "", notFoundf("template %s not found", templateID)
	}
	entries, err := s.templates.ListEntries(ctx, templateID, "")
	if err != nil {
		return nil, "", fmt.Errorf("list entries: %w", err)
	}

	view := BuildView(entries, selected, fieldOrder)

	f := excelize.NewFile()
	sheet := "Export"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range view.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
		f.SetColWidth(sheet, col, col, 18)
	}
	for r, row := range view.Rows {
		for c, v := range row {
			col, _ := excelize.ColumnNumberToName(c + 1)
			f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, r+2), v)
		}
	}

	summaryRow := len(view.Rows) + 2
	summaryStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellValue(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("Registros: %d", len(view.Rows)))
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", summaryRow), fmt.Sprintf("A%d", summaryRow), summaryStyle)

	filename := fmt.Sprintf("%s_%s.xlsx", tpl.Title, time.Now().Format("20060102"))
	return f, filename, nil
}

// renderCell flattens a stored JSON value into the string that goes in the
// exported cell.
func renderCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []interface{}:
		out := ""
		for i, item := range x {
			if i > 0 {
				out += ", "
			}
			out += renderCell(item)
		}
		return out
	default:
		return fmt.Sprintf("%v", x)
	}
}
