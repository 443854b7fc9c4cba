// Package exporter writes aligned indicator outputs as CSV, XLSX, or JSON.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "ta-kernels/internal/errors"
	"ta-kernels/internal/models"
	"ta-kernels/pkg/utils"
)

// TimeLayout formats the index column.
const TimeLayout = "2006-01-02 15:04:05"

// SheetName is the worksheet written by WriteXLSX.
const SheetName = "Indicators"

// Table is the union of several outputs over one shared index.
type Table struct {
	Index   []time.Time
	Names   []string
	Columns [][]float64
}

// FromOutputs joins outputs column-wise. Every output must share the index length,
// and output names must be unique across the table.
func FromOutputs(outputs ...*models.Output) (*Table, error) {
	t := &Table{}
	seen := make(map[string]bool)
	for i, out := range outputs {
		if out == nil {
			continue
		}
		if t.Index == nil {
			t.Index = out.Index
		} else if len(out.Index) != len(t.Index) {
			return nil, fmt.Errorf("%w: output %d has %d rows, table has %d",
				apperrors.ErrLengthMismatch, i, len(out.Index), len(t.Index))
		}
		for j, name := range out.Names {
			if seen[name] {
				return nil, apperrors.NewValidationError("output", name, "duplicate output column")
			}
			seen[name] = true
			t.Names = append(t.Names, name)
			t.Columns = append(t.Columns, out.Columns[j])
		}
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Index)
}

// WriteCSV writes a header of "Date" plus the column names, then one row per bar.
// NaN cells are empty. precision -1 uses the shortest representation.
func WriteCSV(w io.Writer, t *Table, precision int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"Date"}, t.Names...)); err != nil {
		return err
	}
	record := make([]string, len(t.Names)+1)
	for i, ts := range t.Index {
		record[0] = ts.Format(TimeLayout)
		for j, col := range t.Columns {
			record[j+1] = utils.FormatValue(col[i], precision)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX saves the table as a workbook at path. NaN cells are left blank.
func WriteXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(t.Names)+1)
	header = append(header, "Date")
	for _, name := range t.Names {
		header = append(header, name)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	row := make([]interface{}, len(t.Names)+1)
	for i, ts := range t.Index {
		row[0] = ts.Format(TimeLayout)
		for j, col := range t.Columns {
			v := col[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row[j+1] = nil
			} else {
				row[j+1] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	return f.SaveAs(path)
}

type jsonRow struct {
	Date   string              `json:"date"`
	Values map[string]*float64 `json:"values"`
}

// WriteJSON writes the table as an array of rows. NaN values are null.
func WriteJSON(w io.Writer, t *Table) error {
	rows := make([]jsonRow, len(t.Index))
	for i, ts := range t.Index {
		values := make(map[string]*float64, len(t.Names))
		for j, name := range t.Names {
			v := t.Columns[j][i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				values[name] = nil
				continue
			}
			values[name] = &v
		}
		rows[i] = jsonRow{Date: ts.Format(time.RFC3339), Values: values}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// WriteFile picks the format from the path extension: .csv or .xlsx.
func WriteFile(path string, t *Table, precision int) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := WriteCSV(file, t, precision); err != nil {
			file.Close()
			return err
		}
		return file.Close()
	case ".xlsx":
		return WriteXLSX(path, t)
	default:
		return fmt.Errorf("%w: %q (want .csv or .xlsx)", apperrors.ErrUnsupportedFormat, filepath.Ext(path))
	}
}
