package movies

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one data line as read from a workbook sheet, cells untouched.
// Rank is sheet-local and discarded downstream.
type RawRow struct {
	Sheet string
	Line  int // 1-indexed workbook row, kept for error messages

	Rank        string
	Title       string
	Admissions  string
	Nationality string
	ReleaseDate string
}

// Row is a normalized row: parsed date, exact-decimal admissions and an
// encoded nationality. The title is the deduplication key and must stay
// byte-identical across appearances of the same film.
type Row struct {
	Title       string
	Admissions  decimal.Decimal
	Nationality string
	ReleaseDate time.Time
}

// Year returns the release year of the row
func (r Row) Year() int {
	return r.ReleaseDate.Year()
}

// Movie is one entry of an aggregated ranking table: a distinct title with
// its summed admissions and the metadata of its first appearance.
type Movie struct {
	Title       string          `json:"title"`
	Admissions  decimal.Decimal `json:"admissions"`
	Nationality string          `json:"nationality"`
	ReleaseDate time.Time       `json:"release_date"`
}
