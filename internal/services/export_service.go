package services

import (
	"fmt"
	"strings"

	"github.com/alimgiray/familytree/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	membersSheet = "Members"
	storiesSheet = "Stories"
)

type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// Workbook builds a printable spreadsheet with one sheet for members and one for stories
func (s *ExportService) Workbook(members []*models.Person, notes []*models.Note) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", membersSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(storiesSheet); err != nil {
		f.Close()
		return nil, err
	}

	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	memberRows := [][]interface{}{
		{"Name", "Gender", "Born", "Birthplace", "Died", "Place of death", "Spouse", "Parents", "Children"},
	}
	for _, m := range members {
		memberRows = append(memberRows, []interface{}{
			m.Name,
			string(m.Gender),
			m.BirthDate,
			m.BirthPlace,
			m.DeathDate,
			m.DeathPlace,
			names[m.SpouseID],
			joinNames(names, m.ParentIDs),
			joinNames(names, m.ChildIDs),
		})
	}

	storyRows := [][]interface{}{{"Title", "Related member", "Story"}}
	for _, n := range notes {
		storyRows = append(storyRows, []interface{}{n.Title, names[n.RelatedPersonID], n.Content})
	}

	if err := writeRows(f, membersSheet, memberRows); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeRows(f, storiesSheet, storyRows); err != nil {
		f.Close()
		return nil, err
	}

	if err := styleHeader(f, membersSheet, len(memberRows[0])); err != nil {
		f.Close()
		return nil, err
	}
	if err := styleHeader(f, storiesSheet, len(storyRows[0])); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, columns int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	lastCell, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCell, style); err != nil {
		return err
	}

	lastColumn, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastColumn, 22)
}

// joinNames resolves ids to names, unknown ids are skipped
func joinNames(names map[string]string, ids []string) string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok {
			out = append(out, name)
		}
	}
	return strings.Join(out, ", ")
}
