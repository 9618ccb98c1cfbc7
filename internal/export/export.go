package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/docket/internal/hearing"
	"github.com/MikeSquared-Agency/docket/internal/summary"
)

// Columns is the header of the flat row table.
var Columns = []string{"Court", "Session", "Label", "Time", "Hearing Type", "Accused", "Mention", "Hearing", "Unknown"}

var boardColumns = []string{"Court", "AM M/H", "PM M/H"}

const (
	sheetBoard    = "Court Data"
	sheetFollowUp = "PM Courts"
	sheetAM       = "AM Detail"
	sheetPM       = "PM Detail"
)

// Table flattens rows into string cells, header first.
func Table(rows []hearing.AggregatedRow) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, append([]string(nil), Columns...))
	for _, r := range rows {
		out = append(out, []string{
			r.Court,
			string(r.Session),
			r.Label,
			r.Times,
			r.HearingTypes,
			r.Accused,
			strconv.Itoa(r.MentionCount),
			strconv.Itoa(r.HearingCount),
			strconv.Itoa(r.UnknownCount),
		})
	}
	return out
}

// WriteCSV writes the flat table for rows.
func WriteCSV(w io.Writer, rows []hearing.AggregatedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Table(rows)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Workbook is the content of a spreadsheet export for one listing date.
type Workbook struct {
	Board    []summary.BoardRow
	FollowUp []hearing.AggregatedRow
	AM       []hearing.AggregatedRow
	PM       []hearing.AggregatedRow
}

// WriteWorkbook renders wb as an .xlsx file.
func WriteWorkbook(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetBoard); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	board := [][]string{boardColumns}
	for _, b := range wb.Board {
		board = append(board, []string{b.Court, b.AMLabel, b.PMLabel})
	}
	if err := writeSheet(f, sheetBoard, board); err != nil {
		return err
	}

	for _, s := range []struct {
		name string
		rows []hearing.AggregatedRow
	}{
		{sheetFollowUp, wb.FollowUp},
		{sheetAM, wb.AM},
		{sheetPM, wb.PM},
	} {
		if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s.name, Table(s.rows)); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, table [][]string) error {
	for i, row := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
