package movies

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DateLayout is the strict day/month/year form used by the source sheets
const DateLayout = "02/01/2006"

// nationalitySeparator joins the components of a co-production
const nationalitySeparator = " / "

// nationalityCodes maps uppercased country labels found in the source to a
// canonical 2-3 letter code. The keys are looked up accent-folded; labels not
// in the table pass through unchanged, so the table does not have to be a
// closed enumeration.
var nationalityCodes = map[string]string{
	"ETATS UNIS": "US",
	"USA":        "US",
	"US":         "US",

	"GRANDE BRETAGNE": "GB",
	"GB":              "GB",
	"FRANCE":          "FR",
	"FR":              "FR",

	"CANADA":       "CA",
	"CA":           "CA",
	"AUSTRALIE":    "AU",
	"AU":           "AU",
	"COREE DU SUD": "KS",
	"KS":           "KS",

	"ITALIE":           "IT",
	"IT":               "IT",
	"MAROC":            "MA",
	"NOUVELLE ZELANDE": "NZ",
	"ALLEMAGNE":        "DE",
	"DE":               "DE",
	"BELGIQUE":         "BE",
	"BE":               "BE",

	"LUXEMBOURG":         "LUX",
	"LUX":                "LUX",
	"REPUBLIQUE TCHEQUE": "CZ",
	"HONGRIE":            "HU",
	"ESPAGNE":            "ES",
	"ROUMANIE":           "RO",
	"SUEDE":              "SE",
	"SUISSE":             "CH",
	"PAYS-BAS":           "NL",
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldKey uppercases s and strips accents for table lookup
func foldKey(s string) string {
	folded, _, _ := transform.String(stripAccents, s)
	return strings.ToUpper(folded)
}

// EncodeNationality canonicalizes a free-text nationality field. The value is
// uppercased, split on "/" into co-production components, each component is
// mapped through the code table, and the results are rejoined with " / ".
// Unknown components are preserved verbatim; already-canonical codes map to
// themselves, so the encoding is idempotent.
func EncodeNationality(value string) string {
	components := strings.Split(strings.ToUpper(value), "/")
	for i, component := range components {
		component = strings.TrimSpace(component)
		if code, ok := nationalityCodes[foldKey(component)]; ok {
			components[i] = code
		} else {
			components[i] = component
		}
	}
	return strings.Join(components, nationalitySeparator)
}

// NormalizeRow converts one raw sheet row into a normalized row.
// A malformed date or admissions cell is an error, not a skip: the source is
// assumed well-formed and there is no partial-row tolerance.
func NormalizeRow(raw RawRow) (Row, error) {
	releaseDate, err := time.Parse(DateLayout, strings.TrimSpace(raw.ReleaseDate))
	if err != nil {
		return Row{}, fmt.Errorf("sheet %q row %d: invalid release date %q: %w",
			raw.Sheet, raw.Line, raw.ReleaseDate, err)
	}

	admissions, err := decimal.NewFromString(strings.TrimSpace(raw.Admissions))
	if err != nil {
		return Row{}, fmt.Errorf("sheet %q row %d: invalid admissions %q: %w",
			raw.Sheet, raw.Line, raw.Admissions, err)
	}
	if admissions.IsNegative() {
		return Row{}, fmt.Errorf("sheet %q row %d: negative admissions %q",
			raw.Sheet, raw.Line, raw.Admissions)
	}

	return Row{
		Title:       strings.TrimSpace(raw.Title),
		Admissions:  admissions,
		Nationality: EncodeNationality(raw.Nationality),
		ReleaseDate: releaseDate,
	}, nil
}

// Normalize converts all raw rows, preserving order. The first malformed row
// fails the whole batch.
func Normalize(raws []RawRow) ([]Row, error) {
	rows := make([]Row, 0, len(raws))
	for _, raw := range raws {
		row, err := NormalizeRow(raw)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
