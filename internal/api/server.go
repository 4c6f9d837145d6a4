package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lumiread/lumiread/internal/answer"
	"github.com/lumiread/lumiread/internal/config"
	"github.com/lumiread/lumiread/internal/history"
	"github.com/lumiread/lumiread/internal/pipeline"
	"github.com/lumiread/lumiread/internal/session"
)

// Server is the HTTP API server for lumiread.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	answers      *answer.Service
	sessions     *session.Manager
	history      *history.Store
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, svc *answer.Service, sessions *session.Manager, hist *history.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		answers:      svc,
		sessions:     sessions,
		history:      hist,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/import", s.handleImport)
		r.Get("/api/import/{jobID}/status", s.handleImportStatus)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
		r.Get("/api/documents/{docID}/summaries", s.handleSummaries)
		r.Get("/api/documents/{docID}/concepts", s.handleConcepts)

		r.Post("/api/documents/{docID}/answers", s.handleAskAnswer)
		r.Get("/api/documents/{docID}/answers", s.handleListAnswers)
		r.Delete("/api/documents/{docID}/answers/{answerID}", s.handleDeleteAnswer)

		r.Get("/api/documents/{docID}/highlights", s.handleGetHighlights)
		r.Post("/api/documents/{docID}/highlights", s.handleAddHighlight)
		r.Delete("/api/documents/{docID}/highlights", s.handleClearHighlights)
		r.Delete("/api/documents/{docID}/highlights/{spanID}", s.handleRemoveHighlight)
		r.Post("/api/documents/{docID}/highlights/images", s.handleToggleImageHighlight)

		r.Post("/api/documents/{docID}/view/sections/{sectionID}/toggle", s.handleToggleSection)
		r.Post("/api/documents/{docID}/view/collapse-all", s.handleCollapseAll)
		r.Post("/api/documents/{docID}/view/expand-all", s.handleExpandAll)
		r.Post("/api/documents/{docID}/view/answers/{answerID}/toggle", s.handleToggleAnswer)

		r.Get("/api/settings", s.handleGetSettings)
		r.Put("/api/settings", s.handlePutSettings)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// session looks up the session for a docID and writes a 404 when missing.
func (s *Server) session(w http.ResponseWriter, docID string) (*session.Session, bool) {
	sess, ok := s.sessions.Get(docID)
	if !ok {
		jsonError(w, "document not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}
