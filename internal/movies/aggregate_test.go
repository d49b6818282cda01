package movies

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(title, admissions, nationality, date string) Row {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		panic(err)
	}
	return Row{
		Title:       title,
		Admissions:  decimal.RequireFromString(admissions),
		Nationality: nationality,
		ReleaseDate: d,
	}
}

func TestAggregateSumsDuplicateTitles(t *testing.T) {
	rows := []Row{
		row("AVATAR", "0.1", "US", "16/12/2009"),
		row("AVATAR", "0.2", "US", "16/12/2009"),
		row("AVATAR", "0.3", "US", "16/12/2009"),
	}

	result := Aggregate(rows)

	require.Len(t, result, 1)
	// Exact decimal arithmetic: 0.1 + 0.2 + 0.3 is exactly 0.6
	assert.True(t, result[0].Admissions.Equal(decimal.RequireFromString("0.6")),
		"admissions = %s, want 0.6", result[0].Admissions)
}

func TestAggregateFirstSeenWins(t *testing.T) {
	rows := []Row{
		row("AVATAR", "8.0", "US", "16/12/2009"),
		row("AVATAR", "2.0", "US / GB", "10/01/2010"),
	}

	result := Aggregate(rows)

	require.Len(t, result, 1)
	assert.Equal(t, "US", result[0].Nationality, "nationality must come from the first occurrence")
	assert.Equal(t, 2009, result[0].ReleaseDate.Year(), "release date must come from the first occurrence")
}

func TestAggregateSortsDescending(t *testing.T) {
	rows := []Row{
		row("SMALL", "1.1", "FR", "01/03/2010"),
		row("BIG", "9.9", "US", "01/04/2010"),
		row("MEDIUM", "5.0", "GB", "01/05/2010"),
	}

	result := Aggregate(rows)

	require.Len(t, result, 3)
	assert.Equal(t, "BIG", result[0].Title)
	assert.Equal(t, "MEDIUM", result[1].Title)
	assert.Equal(t, "SMALL", result[2].Title)
}

// Equal admissions keep the grouping order (stable sort)
func TestAggregateStableTies(t *testing.T) {
	rows := []Row{
		row("FIRST TIE", "3.0", "FR", "01/03/2010"),
		row("TOP", "7.0", "US", "01/04/2010"),
		row("SECOND TIE", "3.0", "GB", "01/05/2010"),
		row("THIRD TIE", "3.0", "DE", "01/06/2010"),
	}

	result := Aggregate(rows)

	require.Len(t, result, 4)
	assert.Equal(t, "TOP", result[0].Title)
	assert.Equal(t, "FIRST TIE", result[1].Title)
	assert.Equal(t, "SECOND TIE", result[2].Title)
	assert.Equal(t, "THIRD TIE", result[3].Title)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
}

// A film straddling a year boundary keeps only the in-range admissions in a
// decade view, while the all-time table carries the summed total.
func TestPartitionYearsSplitsYearBoundary(t *testing.T) {
	rows := []Row{
		row("AVATAR", "3.0", "US", "15/12/2009"),
		row("AVATAR", "2.0", "US", "10/01/2010"),
	}

	allTime := Aggregate(rows)
	require.Len(t, allTime, 1)
	assert.True(t, allTime[0].Admissions.Equal(decimal.RequireFromString("5.0")),
		"all-time admissions = %s, want 5.0", allTime[0].Admissions)

	noughties := PartitionYears(rows, 2000, 2009)
	require.Len(t, noughties, 1)
	assert.True(t, noughties[0].Admissions.Equal(decimal.RequireFromString("3.0")),
		"2000s admissions = %s, want 3.0", noughties[0].Admissions)

	tens := PartitionYears(rows, 2010, 2019)
	require.Len(t, tens, 1)
	assert.True(t, tens[0].Admissions.Equal(decimal.RequireFromString("2.0")),
		"2010s admissions = %s, want 2.0", tens[0].Admissions)
}

func TestPartitionYearsInclusiveBounds(t *testing.T) {
	rows := []Row{
		row("EDGE LOW", "1.0", "FR", "01/01/2000"),
		row("EDGE HIGH", "1.0", "FR", "31/12/2009"),
		row("OUTSIDE", "1.0", "FR", "01/01/2010"),
	}

	result := PartitionYears(rows, 2000, 2009)

	require.Len(t, result, 2)
	titles := []string{result[0].Title, result[1].Title}
	assert.Contains(t, titles, "EDGE LOW")
	assert.Contains(t, titles, "EDGE HIGH")
}

// End-to-end normalization + aggregation of the three-sheet sample:
// Movie A appears in both the 2009 and 2010 batches and must collapse into a
// single 2009 entry with summed admissions.
func TestNormalizeAggregateScenario(t *testing.T) {
	raws := []RawRow{
		{Sheet: "2009", Line: 8, Rank: "1", Title: "MOVIE A", Admissions: "8.0", Nationality: "ETATS UNIS", ReleaseDate: "15/12/2009"},
		{Sheet: "2010", Line: 8, Rank: "1", Title: "MOVIE A", Admissions: "2.0", Nationality: "US", ReleaseDate: "10/01/2010"},
		{Sheet: "2010", Line: 9, Rank: "2", Title: "MOVIE B", Admissions: "5.0", Nationality: "FRANCE", ReleaseDate: "01/06/2010"},
	}

	rows, err := Normalize(raws)
	require.NoError(t, err)

	result := Aggregate(rows)
	require.Len(t, result, 2)

	assert.Equal(t, "MOVIE A", result[0].Title)
	assert.True(t, result[0].Admissions.Equal(decimal.RequireFromString("10.0")))
	assert.Equal(t, "US", result[0].Nationality)
	assert.Equal(t, time.Date(2009, 12, 15, 0, 0, 0, 0, time.UTC), result[0].ReleaseDate)

	assert.Equal(t, "MOVIE B", result[1].Title)
	assert.True(t, result[1].Admissions.Equal(decimal.RequireFromString("5.0")))
	assert.Equal(t, "FR", result[1].Nationality)
	assert.Equal(t, time.Date(2010, 6, 1, 0, 0, 0, 0, time.UTC), result[1].ReleaseDate)
}
