package workbook

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/cinemetric/boxoffice/internal/movies"
)

// The CNC workbook carries one sheet per release-year batch plus exactly two
// non-data sheets. Both must be present: their absence signals the source
// layout has drifted from what this loader assumes.
const (
	summarySheet  = "Sommaire"
	geoIndexSheet = "ESRI_MAPINFO_SHEET"
)

// Sheet geometry: workbook rows 1-5 are banner rows, row 6 is a spacer,
// row 7 is the column header and data starts at row 8.
const (
	headerRow    = 7
	firstDataRow = 8
)

// Folded header labels of the columns consumed downstream. The admissions
// label is matched by prefix because the source decorates it ("entrées
// (millions)") and the decoration is not stable across encodings.
const (
	rankHeader        = "rang"
	titleHeader       = "titre"
	admissionsHeader  = "entrees"
	nationalityHeader = "nationalite"
	dateHeader        = "sortie"
)

// ErrMissingSheet is returned when a required non-data sheet is absent
var ErrMissingSheet = errors.New("required non-data sheet missing")

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldHeader lowercases a header cell and strips accents so that decorated
// source labels compare reliably
func foldHeader(s string) string {
	folded, _, _ := transform.String(stripAccents, s)
	return strings.ToLower(strings.TrimSpace(folded))
}

// columns holds the per-sheet column indexes of the consumed fields
type columns struct {
	rank        int
	title       int
	admissions  int
	nationality int
	date        int
}

// Parse loads all data sheets of the workbook into one flat row table,
// preserving row order within and across sheets. The two known non-data
// sheets are discarded; every other sheet is assumed to be a year batch.
func Parse(f *excelize.File) ([]movies.RawRow, error) {
	sheets := f.GetSheetList()

	var hasSummary, hasGeoIndex bool
	dataSheets := make([]string, 0, len(sheets))
	for _, name := range sheets {
		switch name {
		case summarySheet:
			hasSummary = true
		case geoIndexSheet:
			hasGeoIndex = true
		default:
			dataSheets = append(dataSheets, name)
		}
	}
	if !hasSummary {
		return nil, fmt.Errorf("%w: %q", ErrMissingSheet, summarySheet)
	}
	if !hasGeoIndex {
		return nil, fmt.Errorf("%w: %q", ErrMissingSheet, geoIndexSheet)
	}

	var all []movies.RawRow
	for _, sheet := range dataSheets {
		rows, err := parseSheet(f, sheet)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
	}

	return all, nil
}

// parseSheet reads one year-batch sheet into raw rows
func parseSheet(f *excelize.File, sheet string) ([]movies.RawRow, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < firstDataRow {
		return nil, fmt.Errorf("sheet %q: no data below header row %d", sheet, headerRow)
	}

	cols, err := locateColumns(rows[headerRow-1])
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}

	parsed := make([]movies.RawRow, 0, len(rows)-firstDataRow+1)
	for i := firstDataRow - 1; i < len(rows); i++ {
		cells := rows[i]

		title := strings.TrimSpace(cell(cells, cols.title))
		if title == "" {
			// Trailing footnote or padding row
			continue
		}

		parsed = append(parsed, movies.RawRow{
			Sheet:       sheet,
			Line:        i + 1,
			Rank:        cell(cells, cols.rank),
			Title:       title,
			Admissions:  cell(cells, cols.admissions),
			Nationality: cell(cells, cols.nationality),
			ReleaseDate: cell(cells, cols.date),
		})
	}

	return parsed, nil
}

// locateColumns resolves field positions from a header row. An unlabeled
// first column is the rank column: some sheets leave that header cell blank
// and the position is the only way to identify it.
func locateColumns(header []string) (columns, error) {
	cols := columns{rank: -1, title: -1, admissions: -1, nationality: -1, date: -1}

	for i, raw := range header {
		switch label := foldHeader(raw); {
		case label == "" && i == 0, label == rankHeader:
			cols.rank = i
		case label == titleHeader:
			cols.title = i
		case strings.HasPrefix(label, admissionsHeader):
			cols.admissions = i
		case label == nationalityHeader:
			cols.nationality = i
		case label == dateHeader:
			cols.date = i
		}
	}

	missing := []string{}
	if cols.title < 0 {
		missing = append(missing, titleHeader)
	}
	if cols.admissions < 0 {
		missing = append(missing, admissionsHeader)
	}
	if cols.nationality < 0 {
		missing = append(missing, nationalityHeader)
	}
	if cols.date < 0 {
		missing = append(missing, dateHeader)
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("unexpected column layout, missing %s", strings.Join(missing, ", "))
	}

	return cols, nil
}

// cell returns the trimmed cell at index i, tolerating the short rows
// excelize produces when trailing cells are empty
func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}
