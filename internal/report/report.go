// Package report builds and writes the run's output tables.
package report

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/shpitdev/contact-outreach/internal/outreach"
	"github.com/shpitdev/contact-outreach/internal/workflow"
)

// Columns appended to the input roster in the main report.
const (
	EmailsColumn  = "Emails"
	PhonesColumn  = "Phones"
	SourcesColumn = "Contact Sources"
)

// Table is a header plus string rows, written as one sheet or one CSV file.
type Table struct {
	Header []string
	Rows   [][]string
}

// Empty reports whether t has no data rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// MainReport returns the input columns followed by the discovered contacts,
// one row per completed person in processing order.
func MainReport(columns []string, records []workflow.Record) Table {
	header := slices.Clone(columns)
	header = append(header, EmailsColumn, PhonesColumn, SourcesColumn)

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := rec.Person.Values(columns)
		row = append(row, rec.Contacts.Emails, rec.Contacts.Phones, rec.Contacts.Sources)
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}
}

// DispatchLog returns one row per delivered email.
func DispatchLog(entries []outreach.LogEntry) Table {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Timestamp.Format(outreach.TimestampLayout),
			e.Name,
			e.Email,
			e.Source,
		})
	}
	return Table{
		Header: []string{"Timestamp", "Name", "Email Sent To", "Source of Email"},
		Rows:   rows,
	}
}

// Effectiveness counts contact values per source across all records, most
// productive source first.
func Effectiveness(records []workflow.Record) Table {
	counts := map[string]int{}
	for _, rec := range records {
		for _, source := range rec.Provenance {
			counts[source]++
		}
	}

	sources := slices.SortedFunc(maps.Keys(counts), func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []string{s, strconv.Itoa(counts[s])})
	}
	return Table{Header: []string{"Platform", "Contacts Found"}, Rows: rows}
}

// Format is the on-disk encoding of a report.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv", case-insensitively. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported report format %q (want xlsx or csv)", s)
	}
}
