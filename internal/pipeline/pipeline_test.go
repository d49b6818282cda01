package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cinemetric/boxoffice/internal/catalog"
	"github.com/cinemetric/boxoffice/internal/workbook"
	"github.com/cinemetric/boxoffice/pkg/config"
	"github.com/cinemetric/boxoffice/pkg/httputil"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// testWorkbook builds a CNC-shaped extract with a 2009 and a 2010 batch and
// a film (MOVIE A) straddling the year boundary
func testWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Sommaire"))

	header := []interface{}{"rang", "titre", "entrées (millions)", "nationalité", "sortie"}
	sheets := map[string][][]interface{}{
		"2009": {
			{"1", "MOVIE A", "8.0", "ETATS UNIS", "15/12/2009"},
		},
		"2010": {
			{"1", "MOVIE A", "2.0", "US", "10/01/2010"},
			{"2", "MOVIE B", "5.0", "FRANCE", "01/06/2010"},
		},
	}

	for _, name := range []string{"2009", "2010", "ESRI_MAPINFO_SHEET"} {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	for name, rows := range sheets {
		for i, v := range header {
			cellName, err := excelize.CoordinatesToCellName(i+1, 7)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(name, cellName, v))
		}
		for ri, row := range rows {
			for ci, v := range row {
				cellName, err := excelize.CoordinatesToCellName(ci+1, 8+ri)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cellName, v))
			}
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

// newTestPipeline wires a pipeline against an httptest server playing both
// the catalog endpoint and the static file host
func newTestPipeline(t *testing.T, workbookBytes []byte) *Pipeline {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/api/1/datasets/films-ayant-realise-plus-dun-million-dentrees/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"resources": [{"title": "entrees.xlsx", "extras": {"check:url": %q}}]}`,
			srv.URL+"/files/entrees.xlsx")
	})
	mux.HandleFunc("/files/entrees.xlsx", func(w http.ResponseWriter, r *http.Request) {
		w.Write(workbookBytes)
	})

	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "json",
		Dataset: config.DatasetConfig{
			BaseURL:      srv.URL,
			Slug:         "films-ayant-realise-plus-dun-million-dentrees",
			FetchTimeout: 5 * time.Second,
			RateLimit:    100,
		},
	}
	log := logger.New(cfg)
	client := catalog.NewClient(httputil.New(cfg, log), cfg, log)

	return New(client, log).WithClock(func() time.Time {
		return time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	})
}

func TestRun(t *testing.T) {
	p := newTestPipeline(t, testWorkbook(t))

	snap, err := p.Run(context.Background())
	require.NoError(t, err)

	// Three normalized rows survive the load
	require.Len(t, snap.Rows, 3)

	// Canonical table: MOVIE A collapsed across the year boundary
	require.Len(t, snap.AllTime, 2)
	assert.Equal(t, "MOVIE A", snap.AllTime[0].Title)
	assert.True(t, snap.AllTime[0].Admissions.Equal(decimal.RequireFromString("10.0")))
	assert.Equal(t, "US", snap.AllTime[0].Nationality)
	assert.Equal(t, 2009, snap.AllTime[0].ReleaseDate.Year())
	assert.Equal(t, "MOVIE B", snap.AllTime[1].Title)
	assert.Equal(t, "FR", snap.AllTime[1].Nationality)

	// Standing decade views, partial 2020s bounded by the injected clock
	require.Len(t, snap.Decades, 3)
	assert.Equal(t, 2009, snap.Decades[0].End)
	assert.Equal(t, 2023, snap.Decades[2].End)

	// Decade views re-aggregate the pre-aggregation rows
	noughties := snap.Decade(2000)
	require.NotNil(t, noughties)
	require.Len(t, noughties.Movies, 1)
	assert.True(t, noughties.Movies[0].Admissions.Equal(decimal.RequireFromString("8.0")),
		"2000s MOVIE A = %s, want 8.0 (not the all-time 10.0)", noughties.Movies[0].Admissions)

	tens := snap.Decade(2010)
	require.NotNil(t, tens)
	require.Len(t, tens.Movies, 2)
	assert.Equal(t, "MOVIE B", tens.Movies[0].Title, "MOVIE B (5.0) outranks MOVIE A's 2010 remainder (2.0)")

	assert.Nil(t, snap.Decade(1990))
}

func TestRunFailsOnMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	// A workbook with data but no Sommaire/ESRI_MAPINFO_SHEET
	require.NoError(t, f.SetSheetName("Sheet1", "2009"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	p := newTestPipeline(t, buf.Bytes())

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, workbook.ErrMissingSheet), "want ErrMissingSheet, got %v", err)
}

func TestStore(t *testing.T) {
	store := NewStore()

	_, err := store.Latest()
	assert.True(t, errors.Is(err, ErrNoSnapshot))

	snap := &Snapshot{FetchedAt: time.Now()}
	store.Swap(snap)

	got, err := store.Latest()
	require.NoError(t, err)
	assert.Same(t, snap, got)

	// A refresh replaces the snapshot wholesale
	newer := &Snapshot{FetchedAt: time.Now()}
	store.Swap(newer)
	got, err = store.Latest()
	require.NoError(t, err)
	assert.Same(t, newer, got)
}
