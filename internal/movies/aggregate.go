package movies

import "sort"

// Aggregate collapses normalized rows into one entry per distinct title.
//
// Films released near year-end appear once per calendar year batch in the
// source, so duplicates are expected: the admissions of a group are summed
// exactly, while nationality and release date are taken from the first group
// member in input order. The earliest sheet listing is trusted as
// authoritative for descriptive fields; admissions are the only additive
// quantity.
//
// The result is sorted descending by admissions with a stable sort, so ties
// keep the grouping order.
func Aggregate(rows []Row) []Movie {
	index := make(map[string]int, len(rows))
	result := make([]Movie, 0, len(rows))

	for _, row := range rows {
		if i, ok := index[row.Title]; ok {
			result[i].Admissions = result[i].Admissions.Add(row.Admissions)
			continue
		}
		index[row.Title] = len(result)
		result = append(result, Movie{
			Title:       row.Title,
			Admissions:  row.Admissions,
			Nationality: row.Nationality,
			ReleaseDate: row.ReleaseDate,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Admissions.GreaterThan(result[j].Admissions)
	})

	return result
}

// PartitionYears derives a ranking scoped to release years in the inclusive
// [start, end] range. It filters the PRE-aggregation rows and re-aggregates
// the subset: a film whose total spans a year boundary must count only the
// admissions recorded inside the range, not its all-time total. A partial
// decade is expressed with end = current year, there is no special path.
func PartitionYears(rows []Row, start, end int) []Movie {
	filtered := make([]Row, 0, len(rows))
	for _, row := range rows {
		if year := row.Year(); year >= start && year <= end {
			filtered = append(filtered, row)
		}
	}
	return Aggregate(filtered)
}
