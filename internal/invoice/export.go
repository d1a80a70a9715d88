package invoice

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

var csvHeader = []string{
	"Employee Name",
	"Employee Email",
	"Invoice Date",
	"Due Date",
	"Status",
	"Total Hours",
	"Total Cost",
	"Submitted Date",
	"Approved Date",
}

// WriteCSV writes one row per invoice. Fields are quoted by encoding/csv when they
// contain commas, quotes or line breaks.
func WriteCSV(w io.Writer, rows []View) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, v := range rows {
		record := []string{
			v.EmployeeDisplayName(),
			v.EmployeeEmail,
			formatDate(&v.InvoiceDate),
			formatDate(&v.DueDate),
			string(v.Status),
			v.TotalHours.String(),
			v.TotalCost.StringFixed(2),
			formatDate(v.SubmittedDate),
			formatDate(v.ApprovedDate),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", v.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

// ExportFilename names the download after the export day.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("invoices-%s.csv", now.UTC().Format("20060102"))
}
