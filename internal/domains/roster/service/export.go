package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"lw-rpg-backend/internal/domains/character/model"
)

const rosterSheet = "Roster"

var exportHeaders = []string{
	"#", "Name", "Subclass", "Health", "Attack", "Defense", "Will", "Speed",
	"Flying", "Attacks", "Companions", "Description",
}

// BuildWorkbook tạo file Excel cho roster; một dòng cho mỗi record
func BuildWorkbook(list []model.Character) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", rosterSheet); err != nil {
		return nil, err
	}

	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(rosterSheet, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		f.SetCellStyle(rosterSheet, "A1", last, headerStyle)
	}

	for i, c := range list {
		row := i + 2
		values := []interface{}{
			i, c.Name, c.Subclass, c.Health, c.Attack, c.Defense, c.Will, c.Speed,
			c.IsFlying, strings.Join(c.Attacks, "\n"), companionNames(c), c.Description,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(rosterSheet, cell, v); err != nil {
				return nil, fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}

	f.SetColWidth(rosterSheet, "B", "C", 24)
	f.SetColWidth(rosterSheet, "J", "L", 48)
	return f, nil
}

// ExportXLSX trả về workbook của roster hiện tại dưới dạng bytes
func (s *RosterService) ExportXLSX() ([]byte, error) {
	return WorkbookBytes(s.Characters())
}

func WorkbookBytes(list []model.Character) ([]byte, error) {
	f, err := BuildWorkbook(list)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func companionNames(c model.Character) string {
	list := c.CompanionList()
	names := make([]string, len(list))
	for i, comp := range list {
		names[i] = comp.Name
	}
	return strings.Join(names, ", ")
}
