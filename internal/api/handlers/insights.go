package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cinemetric/boxoffice/internal/movies"
	"github.com/cinemetric/boxoffice/internal/pipeline"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// defaultTopNationalities mirrors the ten-slice pie the dashboard draws
const defaultTopNationalities = 10

// InsightsHandler serves the derived aggregate views
type InsightsHandler struct {
	store  *pipeline.Store
	logger *logger.Logger
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(store *pipeline.Store, log *logger.Logger) *InsightsHandler {
	return &InsightsHandler{
		store:  store,
		logger: log,
	}
}

// GetYears returns the per-year count of distinct millionaire movies.
// An optional start/end year pair narrows the set by release date.
// GET /api/insights/years?decade=2000
// GET /api/insights/years?start=2005&end=2015
func (h *InsightsHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	items, scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	items, ok = h.yearRange(w, r, items)
	if !ok {
		return
	}

	respondData(w, map[string]interface{}{
		"scope": scope,
		"years": movies.CountByYear(items),
	})
}

// yearRange applies the optional start/end release-year bounds, both inclusive
func (h *InsightsHandler) yearRange(w http.ResponseWriter, r *http.Request, items []movies.Movie) ([]movies.Movie, bool) {
	rawStart := r.URL.Query().Get("start")
	rawEnd := r.URL.Query().Get("end")
	if rawStart == "" && rawEnd == "" {
		return items, true
	}

	startYear, endYear := 1, 9999
	if rawStart != "" {
		y, err := strconv.Atoi(rawStart)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid start parameter")
			return nil, false
		}
		startYear = y
	}
	if rawEnd != "" {
		y, err := strconv.Atoi(rawEnd)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid end parameter")
			return nil, false
		}
		endYear = y
	}

	from := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC)
	return movies.FilterReleasedBetween(items, from, to), true
}

// GetDecadeCounts returns the number of distinct movies per standing decade
// GET /api/insights/decades
func (h *InsightsHandler) GetDecadeCounts(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Latest()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Dataset not loaded yet")
		return
	}

	counts := make([]map[string]interface{}, 0, len(snap.Decades))
	for _, d := range snap.Decades {
		counts = append(counts, map[string]interface{}{
			"label":  d.Label,
			"movies": len(d.Movies),
		})
	}

	respondData(w, map[string]interface{}{
		"decades": counts,
	})
}

// GetNationalities returns the top nationality shares by summed admissions
// GET /api/insights/nationalities?top=10&decade=2010
func (h *InsightsHandler) GetNationalities(w http.ResponseWriter, r *http.Request) {
	items, scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	top := defaultTopNationalities
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid top parameter")
			return
		}
		top = n
	}

	respondData(w, map[string]interface{}{
		"scope":         scope,
		"nationalities": movies.TopNationalities(items, top),
	})
}

// GetWords returns the stop-word-stripped title word frequencies
// GET /api/insights/words?decade=2020
func (h *InsightsHandler) GetWords(w http.ResponseWriter, r *http.Request) {
	items, scope, ok := h.scope(w, r)
	if !ok {
		return
	}

	respondData(w, map[string]interface{}{
		"scope": scope,
		"words": movies.TitleWords(items),
	})
}

// scope resolves the optional decade query parameter to a movie set:
// absent means the all-time table, otherwise the standing view starting at
// that year
func (h *InsightsHandler) scope(w http.ResponseWriter, r *http.Request) ([]movies.Movie, string, bool) {
	snap, err := h.store.Latest()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Dataset not loaded yet")
		return nil, "", false
	}

	raw := r.URL.Query().Get("decade")
	if raw == "" {
		return snap.AllTime, "all-time", true
	}

	start, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid decade parameter")
		return nil, "", false
	}
	decade := snap.Decade(start)
	if decade == nil {
		respondError(w, http.StatusNotFound, "Unknown decade")
		return nil, "", false
	}

	return decade.Movies, decade.Label, true
}
