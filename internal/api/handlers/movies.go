package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cinemetric/boxoffice/internal/movies"
	"github.com/cinemetric/boxoffice/internal/pipeline"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// MoviesHandler serves the ranking tables
type MoviesHandler struct {
	store  *pipeline.Store
	logger *logger.Logger
}

// NewMoviesHandler creates a new movies handler
func NewMoviesHandler(store *pipeline.Store, log *logger.Logger) *MoviesHandler {
	return &MoviesHandler{
		store:  store,
		logger: log,
	}
}

// GetAllTime returns the canonical all-time ranking
// GET /api/movies?title=SECRET&limit=50
func (h *MoviesHandler) GetAllTime(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	items := snap.AllTime
	if title := r.URL.Query().Get("title"); title != "" {
		items = movies.FilterTitle(items, title)
	}
	items = limitMovies(items, r.URL.Query().Get("limit"))

	respondData(w, map[string]interface{}{
		"count":      len(items),
		"movies":     items,
		"fetched_at": snap.FetchedAt,
	})
}

// GetDecades lists the standing decade views
// GET /api/movies/decades
func (h *MoviesHandler) GetDecades(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	summaries := make([]map[string]interface{}, 0, len(snap.Decades))
	for _, d := range snap.Decades {
		summaries = append(summaries, map[string]interface{}{
			"label": d.Label,
			"start": d.Start,
			"end":   d.End,
			"count": len(d.Movies),
		})
	}

	respondData(w, map[string]interface{}{
		"decades": summaries,
	})
}

// GetDecade returns one standing decade view
// GET /api/movies/decades/{start}
func (h *MoviesHandler) GetDecade(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w)
	if !ok {
		return
	}

	start, err := strconv.Atoi(mux.Vars(r)["start"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid decade start")
		return
	}

	decade := snap.Decade(start)
	if decade == nil {
		respondError(w, http.StatusNotFound, "Unknown decade")
		return
	}

	items := decade.Movies
	if title := r.URL.Query().Get("title"); title != "" {
		items = movies.FilterTitle(items, title)
	}
	items = limitMovies(items, r.URL.Query().Get("limit"))

	respondData(w, map[string]interface{}{
		"label":  decade.Label,
		"start":  decade.Start,
		"end":    decade.End,
		"count":  len(items),
		"movies": items,
	})
}

// snapshot fetches the current snapshot, answering 503 when none is loaded
func (h *MoviesHandler) snapshot(w http.ResponseWriter) (*pipeline.Snapshot, bool) {
	snap, err := h.store.Latest()
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Dataset not loaded yet")
		return nil, false
	}
	return snap, true
}

// limitMovies truncates items when the limit parameter parses to a positive n
func limitMovies(items []movies.Movie, limitParam string) []movies.Movie {
	if limitParam == "" {
		return items
	}
	n, err := strconv.Atoi(limitParam)
	if err != nil || n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}
