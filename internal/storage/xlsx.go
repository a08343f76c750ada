package storage

import (
	"fmt"
	"sort"

	"github.com/san-kum/mrilab/internal/dynamo"
	"github.com/san-kum/mrilab/internal/models"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func newWorkbook(first string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", first); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func addSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, rows)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ExportXLSX writes a summary sheet and one sheet per recorded channel.
func ExportXLSX(path string, result *dynamo.Result) error {
	f, err := newWorkbook(summarySheet)
	if err != nil {
		return err
	}
	defer f.Close()

	summary := [][]interface{}{
		{"demo", result.Demo},
		{"mode", result.Mode},
		{"steps", result.StepsTaken},
		{"frame_rate", result.Timing.FrameRate},
		{"time_factor", result.Timing.TimeFactor},
		{"time_unit", result.Timing.Unit},
	}
	for _, k := range sortedKeys(result.Params) {
		summary = append(summary, []interface{}{"param." + k, result.Params[k]})
	}
	for _, k := range sortedKeys(result.Metrics) {
		summary = append(summary, []interface{}{"metric." + k, result.Metrics[k]})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}

	for _, ch := range result.Channels {
		rows := [][]interface{}{{result.Timing.Caption(), ch}}
		vals := result.Series[ch]
		for i, t := range result.Times {
			v := 0.0
			if i < len(vals) {
				v = vals[i]
			}
			rows = append(rows, []interface{}{t, v})
		}
		if err := addSheet(f, ch, rows); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

// ExportFourierXLSX writes the sampled approximation and its coefficients.
func ExportFourierXLSX(path string, a models.Approximation) error {
	const sheet = "Approximation"
	f, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := [][]interface{}{{"x", "f(x)", fmt.Sprintf("s_%d(x)", a.Terms)}}
	for i, x := range a.X {
		rows = append(rows, []interface{}{x, a.F[i], a.S[i]})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}

	coeffs := [][]interface{}{{"n", "c_n"}}
	for i, n := range a.N {
		coeffs = append(coeffs, []interface{}{n, a.Coefficients[i]})
	}
	if err := addSheet(f, "Coefficients", coeffs); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// ExportGradientXLSX writes the lattice samples and any iso-lines.
func ExportGradientXLSX(path string, field models.Field) error {
	const sheet = "Samples"
	f, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	rows := [][]interface{}{{"x", "y", "z", "offset_mT", "length", "emphasis"}}
	for _, s := range field.Samples {
		rows = append(rows, []interface{}{
			s.Position.X, s.Position.Y, s.Position.Z, s.Offset, s.Length, s.Emphasis,
		})
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}

	if len(field.IsoLines) > 0 {
		lines := [][]interface{}{{"offset_mT", "case", "x0", "y0", "z0", "x1", "y1", "z1"}}
		for _, seg := range field.IsoLines {
			lines = append(lines, []interface{}{
				seg.Offset, seg.Case,
				seg.Start.X, seg.Start.Y, seg.Start.Z,
				seg.End.X, seg.End.Y, seg.End.Z,
			})
		}
		if err := addSheet(f, "IsoLines", lines); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
