package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Analysts
	mux.HandleFunc("/api/analysts", s.app.AnalystHandler.HandleAnalysts)     // GET (list), POST (create)
	mux.HandleFunc("/api/analysts/", s.app.AnalystHandler.HandleAnalystByID) // GET/DELETE /{id}

	// API routes - Recommendations
	mux.HandleFunc("/api/recommendations", s.app.RecommendationHandler.HandleRecommendations) // GET (query), POST (record)

	// API routes - Consensus and evaluation
	mux.HandleFunc("/api/consensus", s.app.ConsensusHandler.GetConsensusHandler) // GET ?ticker=X
	mux.HandleFunc("/api/evaluate", s.app.EvaluateHandler.RunEvaluationHandler)  // POST - sweep or single ID

	// API routes - Update orchestration
	mux.HandleFunc("/api/update", s.app.UpdateHandler.HandleUpdate) // GET (status), POST (trigger)

	// API routes - Scheduled jobs
	mux.HandleFunc("/api/jobs", s.app.SchedulerHandler.ListJobsHandler)
	mux.HandleFunc("/api/jobs/", s.app.SchedulerHandler.JobActionHandler) // POST /{name}/trigger|enable|disable

	// API routes - System
	mux.HandleFunc("/api/status", s.app.StatusHandler.GetStatusHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
