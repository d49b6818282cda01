package handlers

import (
	"net/http"

	"github.com/cinemetric/boxoffice/internal/pipeline"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// PipelineHandler exposes pipeline state and the manual refresh trigger
type PipelineHandler struct {
	pipeline *pipeline.Pipeline
	store    *pipeline.Store
	logger   *logger.Logger
}

// NewPipelineHandler creates a new pipeline handler
func NewPipelineHandler(p *pipeline.Pipeline, store *pipeline.Store, log *logger.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipeline: p,
		store:    store,
		logger:   log,
	}
}

// GetStatus returns the state of the current snapshot
// GET /api/status
func (h *PipelineHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Latest()
	if err != nil {
		respondData(w, map[string]interface{}{
			"loaded": false,
		})
		return
	}

	respondData(w, map[string]interface{}{
		"loaded":     true,
		"source_url": snap.SourceURL,
		"fetched_at": snap.FetchedAt,
		"rows":       len(snap.Rows),
		"movies":     len(snap.AllTime),
	})
}

// Refresh re-runs the pipeline synchronously and swaps the snapshot
// POST /api/refresh
func (h *PipelineHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.pipeline.Run(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Manual refresh failed")
		respondError(w, http.StatusBadGateway, "Refresh failed: "+err.Error())
		return
	}

	h.store.Swap(snap)

	respondData(w, map[string]interface{}{
		"fetched_at": snap.FetchedAt,
		"rows":       len(snap.Rows),
		"movies":     len(snap.AllTime),
	})
}
