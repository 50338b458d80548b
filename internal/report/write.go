package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/shpitdev/contact-outreach/internal/outreach"
	"github.com/shpitdev/contact-outreach/internal/workflow"
)

// StampLayout is the filename-safe run timestamp.
const StampLayout = "2006-01-02_150405"

const sheetName = "Sheet1"

// Write stores t at path in the given format.
func Write(path string, format Format, t Table) error {
	switch format {
	case FormatCSV:
		return writeCSV(path, t)
	case FormatXLSX, "":
		return writeXLSX(path, t)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

func writeCSV(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return err
	}
	return f.Close()
}

func writeXLSX(path string, t Table) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := setRow(f, 1, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheetName, cell, &row)
}

// Results is everything a run produced.
type Results struct {
	Columns []string
	Records []workflow.Record
	Sent    []outreach.LogEntry
}

// Paths lists the files WriteAll created. Empty fields were not written.
type Paths struct {
	Main          string
	DispatchLog   string
	Effectiveness string
}

// WriteAll writes the three reports into dir, creating it if needed. Reports
// with no rows are skipped, and no file is written when no person completed;
// dir is still created.
func WriteAll(dir, stamp string, format Format, res Results) (Paths, error) {
	var paths Paths
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return paths, fmt.Errorf("create reports dir: %w", err)
	}
	if len(res.Records) == 0 {
		return paths, nil
	}
	if format == "" {
		format = FormatXLSX
	}

	name := func(prefix string) string {
		return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", prefix, stamp, format))
	}

	mainPath := name("output_with_contacts")
	if err := Write(mainPath, format, MainReport(res.Columns, res.Records)); err != nil {
		return paths, fmt.Errorf("write main report: %w", err)
	}
	paths.Main = mainPath

	if log := DispatchLog(res.Sent); !log.Empty() {
		p := name("emails_sent_log")
		if err := Write(p, format, log); err != nil {
			return paths, fmt.Errorf("write dispatch log: %w", err)
		}
		paths.DispatchLog = p
	}

	if eff := Effectiveness(res.Records); !eff.Empty() {
		p := name("platform_effectiveness_report")
		if err := Write(p, format, eff); err != nil {
			return paths, fmt.Errorf("write effectiveness report: %w", err)
		}
		paths.Effectiveness = p
	}
	return paths, nil
}
