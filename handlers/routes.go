package handlers

import (
	"net/http"

	"dispodeals/middleware"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouterConfig holds the cross-cutting HTTP settings
type RouterConfig struct {
	AllowedOrigins []string
	APIKey         string  // required on ingest routes when set
	RateLimit      float64 // requests per second per client, 0 disables
}

// NewRouter builds the API router wrapped in CORS
func NewRouter(h *Handlers, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimit))

	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	requireKey := middleware.APIKeyMiddleware(cfg.APIKey)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/deals/ingest", requireKey(http.HandlerFunc(h.IngestDeal))).Methods("POST")
	api.HandleFunc("/deals/enhanced", h.GetEnhancedDeals).Methods("GET")
	api.Handle("/ingest/extension", requireKey(http.HandlerFunc(h.IngestExtension))).Methods("POST")
	api.HandleFunc("/analyze", h.Analyze).Methods("POST")

	// Live scans
	api.HandleFunc("/scans", h.SubmitScan).Methods("POST")
	api.HandleFunc("/scans/stats", h.GetScanStats).Methods("GET")
	api.HandleFunc("/scans/{taskId}", h.GetScanTask).Methods("GET")

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-API-Key", "X-DDD-Install-Id", "X-DDD-Extension-Version"},
	})

	return c.Handler(r)
}
