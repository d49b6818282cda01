package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cinemetric/boxoffice/internal/api/handlers"
	"github.com/cinemetric/boxoffice/pkg/logger"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	moviesHandler *handlers.MoviesHandler,
	insightsHandler *handlers.InsightsHandler,
	pipelineHandler *handlers.PipelineHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Ranking tables
	api.HandleFunc("/movies", moviesHandler.GetAllTime).Methods("GET")
	api.HandleFunc("/movies/decades", moviesHandler.GetDecades).Methods("GET")
	api.HandleFunc("/movies/decades/{start:[0-9]+}", moviesHandler.GetDecade).Methods("GET")

	// Derived views
	api.HandleFunc("/insights/years", insightsHandler.GetYears).Methods("GET")
	api.HandleFunc("/insights/decades", insightsHandler.GetDecadeCounts).Methods("GET")
	api.HandleFunc("/insights/nationalities", insightsHandler.GetNationalities).Methods("GET")
	api.HandleFunc("/insights/words", insightsHandler.GetWords).Methods("GET")

	// Pipeline state
	api.HandleFunc("/status", pipelineHandler.GetStatus).Methods("GET")
	api.HandleFunc("/refresh", pipelineHandler.Refresh).Methods("POST")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "boxoffice-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
