// Package tabular reads URL lists from CSV and XLSX files and writes
// extracted contacts back out, one row per contact.
package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/use-agent/prospect/models"
)

// urlHeaders are the header fragments that mark the URL column.
var urlHeaders = []string{"url", "website", "link", "site"}

// ReadURLs loads the URL column from a .csv or .xlsx file. The column is
// located by header, the first one containing url, website, link, or
// site, case-insensitive. Blank cells are skipped.
func ReadURLs(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("tabular: unsupported input %q, want .csv or .xlsx", filepath.Ext(path))
	}
}

func readCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tabular: read %s: %w", path, err)
	}
	return urlColumn(rows, path)
}

func readXLSX(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("tabular: open %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("tabular: read sheet %q: %w", sheet, err)
	}
	return urlColumn(rows, path)
}

func urlColumn(rows [][]string, path string) ([]string, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("tabular: %s is empty", path)
	}
	col := -1
	for i, h := range rows[0] {
		lower := strings.ToLower(strings.TrimSpace(h))
		for _, want := range urlHeaders {
			if strings.Contains(lower, want) {
				col = i
				break
			}
		}
		if col >= 0 {
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("tabular: no URL column in %s, want a header containing url, website, link, or site", path)
	}

	var urls []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		u := strings.TrimSpace(row[col])
		if u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("tabular: URL column of %s has no values", path)
	}
	return urls, nil
}

var resultHeaders = []string{
	"URL", "Status", "Email", "Name", "Title", "Phone", "Confidence", "Alternate Emails",
}

// rowsFor flattens results into output rows: one per contact, plus a
// bare row for contactless results so failed URLs stay visible.
func rowsFor(results []models.ScrapeResult) [][]string {
	var rows [][]string
	for _, res := range results {
		if len(res.Contacts) == 0 {
			rows = append(rows, []string{res.URL, string(res.Status), "", "", "", "", "", ""})
			continue
		}
		for _, c := range res.Contacts {
			rows = append(rows, []string{
				res.URL,
				string(res.Status),
				c.Email,
				c.Name,
				c.Title,
				c.Phone,
				string(c.Confidence),
				strings.Join(c.AlternateEmails, "; "),
			})
		}
	}
	return rows
}

// WriteCSV writes results to path, one row per contact.
func WriteCSV(path string, results []models.ScrapeResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write(resultHeaders); err != nil {
		return err
	}
	for _, row := range rowsFor(results) {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes the same layout as WriteCSV to the default sheet.
func WriteXLSX(path string, results []models.ScrapeResult) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range resultHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rowsFor(results) {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	for i := 1; i <= len(resultHeaders); i++ {
		col, _ := excelize.ColumnNumberToName(i)
		_ = f.SetColWidth(sheet, col, col, 28)
	}
	return f.SaveAs(path)
}
