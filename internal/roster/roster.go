// Package roster reads the list of people to process from a CSV or XLSX file.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	NameColumn = "NAME"
	CityColumn = "CITY"
)

// Person is one input row. Fields holds every original column by header name
// so reports can pass them through untouched.
type Person struct {
	Name   string
	City   string
	Fields map[string]string
}

// Roster is the parsed input file.
type Roster struct {
	// Columns is the input header in file order.
	Columns []string
	People  []Person
}

// Values returns p's original cells in the given column order.
func (p Person) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = p.Fields[c]
	}
	return out
}

// ReadFile reads a roster, choosing the parser from the file extension.
func ReadFile(path string) (Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return Roster{}, err
	}
	defer func() {
		_ = f.Close()
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f)
	default:
		return Roster{}, fmt.Errorf("unsupported roster format %q (want .csv or .xlsx)", filepath.Ext(path))
	}
}

// ReadCSV reads a roster from CSV. The header must contain a NAME column
// (case-insensitive); CITY is optional.
func ReadCSV(r io.Reader) (Roster, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Roster{}, fmt.Errorf("read header: %w", err)
	}
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Roster{}, fmt.Errorf("read row: %w", err)
		}
		rows = append(rows, rec)
	}
	return fromRecords(header, rows)
}

// ReadXLSX reads a roster from the first sheet of a workbook.
func ReadXLSX(r io.Reader) (Roster, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return Roster{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = wb.Close()
	}()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return Roster{}, fmt.Errorf("workbook has no sheets")
	}
	records, err := wb.GetRows(sheets[0])
	if err != nil {
		return Roster{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(records) == 0 {
		return Roster{}, fmt.Errorf("read header: sheet %q is empty", sheets[0])
	}
	return fromRecords(records[0], records[1:])
}

func fromRecords(header []string, rows [][]string) (Roster, error) {
	columns := make([]string, len(header))
	nameIdx, cityIdx := -1, -1
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
		switch {
		case nameIdx < 0 && strings.EqualFold(columns[i], NameColumn):
			nameIdx = i
		case cityIdx < 0 && strings.EqualFold(columns[i], CityColumn):
			cityIdx = i
		}
	}
	if nameIdx < 0 {
		return Roster{}, fmt.Errorf("missing required column %q", NameColumn)
	}

	out := Roster{Columns: columns}
	for _, rec := range rows {
		if blank(rec) {
			continue
		}
		p := Person{Fields: make(map[string]string, len(columns))}
		for i, col := range columns {
			if i < len(rec) {
				p.Fields[col] = rec[i]
			} else {
				p.Fields[col] = ""
			}
		}
		p.Name = strings.TrimSpace(cell(rec, nameIdx))
		p.City = strings.TrimSpace(cell(rec, cityIdx))
		out.People = append(out.People, p)
	}
	return out, nil
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}
	return rec[idx]
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
