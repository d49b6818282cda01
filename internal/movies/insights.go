package movies

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// YearCount is the number of distinct millionaire movies released in a year
type YearCount struct {
	Year   int `json:"year"`
	Movies int `json:"movies"`
}

// CountByYear counts distinct titles per release year, ascending by year
func CountByYear(items []Movie) []YearCount {
	byYear := make(map[int]int)
	for _, m := range items {
		byYear[m.ReleaseDate.Year()]++
	}

	counts := make([]YearCount, 0, len(byYear))
	for year, n := range byYear {
		counts = append(counts, YearCount{Year: year, Movies: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Year < counts[j].Year })

	return counts
}

// NationalityShare is one slice of the nationality distribution of a row set
type NationalityShare struct {
	Nationality string          `json:"nationality"`
	Admissions  decimal.Decimal `json:"admissions"`
	Share       float64         `json:"share"`
}

// TopNationalities ranks nationality composites ("US", "FR / BE", ...) by
// summed admissions and returns the top n with their share of the set total.
// Composites are not exploded: a co-production counts as its own label, the
// way the source tables present it.
func TopNationalities(items []Movie, n int) []NationalityShare {
	index := make(map[string]int, len(items))
	shares := make([]NationalityShare, 0, len(items))
	total := decimal.Zero

	for _, m := range items {
		total = total.Add(m.Admissions)
		if i, ok := index[m.Nationality]; ok {
			shares[i].Admissions = shares[i].Admissions.Add(m.Admissions)
			continue
		}
		index[m.Nationality] = len(shares)
		shares = append(shares, NationalityShare{
			Nationality: m.Nationality,
			Admissions:  m.Admissions,
		})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Admissions.GreaterThan(shares[j].Admissions)
	})

	if n > 0 && len(shares) > n {
		shares = shares[:n]
	}

	if !total.IsZero() {
		for i := range shares {
			shares[i].Share = shares[i].Admissions.Div(total).InexactFloat64()
		}
	}

	return shares
}

// FilterTitle returns the movies whose title contains substr, sorted by
// title. Matching is case-sensitive: source titles are uppercase and so are
// the themes searched for ("SECRET", "MONDE", ...).
func FilterTitle(items []Movie, substr string) []Movie {
	matched := make([]Movie, 0)
	for _, m := range items {
		if strings.Contains(m.Title, substr) {
			matched = append(matched, m)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })
	return matched
}

// FilterReleasedBetween returns the movies released in [from, to] inclusive,
// keeping the ranking order of the input
func FilterReleasedBetween(items []Movie, from, to time.Time) []Movie {
	matched := make([]Movie, 0)
	for _, m := range items {
		if m.ReleaseDate.Before(from) || m.ReleaseDate.After(to) {
			continue
		}
		matched = append(matched, m)
	}
	return matched
}

// titleStopWords are French articles and connectors stripped from titles
// before word-frequency display
var titleStopWords = map[string]struct{}{
	"LE": {}, "LA": {}, "LES": {},
	"DE": {}, "DU": {}, "DES": {},
	"AU": {}, "UN": {}, "ET": {},
	"(LE)": {}, "(LA)": {}, "(LES)": {},
}

// WordCount is one entry of a title word-frequency table
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// TitleWords builds the word-frequency table of a movie set's titles, with
// stop words removed and elided articles ("L'OURS") stripped of their prefix.
// The result is sorted by descending count, then alphabetically, which is the
// order the word-cloud consumer draws in.
func TitleWords(items []Movie) []WordCount {
	freq := make(map[string]int)
	for _, m := range items {
		for _, word := range strings.Fields(m.Title) {
			word = strings.TrimPrefix(word, "L'")
			if _, stop := titleStopWords[word]; stop || word == "" {
				continue
			}
			freq[word]++
		}
	}

	words := make([]WordCount, 0, len(freq))
	for word, count := range freq {
		words = append(words, WordCount{Word: word, Count: count})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	return words
}
