package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/riposte/riposte/internal/processor"
)

// maxFormBytes caps inbound webhook payloads
const maxFormBytes = 10 << 20

// Server exposes the HTTP surface: provider webhooks, telemetry
// ingestion and the conversation read API
type Server struct {
	processor *processor.Processor
	srv       *http.Server
	logger    zerolog.Logger
}

// NewServer creates the webhook server
func NewServer(port int, p *processor.Processor, logger zerolog.Logger) *Server {
	s := &Server{
		processor: p,
		logger:    logger.With().Str("component", "webhook").Logger(),
	}

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	return s
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/webhooks/inbound", s.handleInbound).Methods("POST")
	r.HandleFunc("/webhooks/events", s.handleEvent).Methods("POST")
	r.HandleFunc("/api/conversations/{trackingId}", s.handleConversation).Methods("GET")
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	return r
}

// Start begins serving HTTP requests, blocking until shutdown
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("HTTP server starting")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("HTTP server stopping")
	return s.srv.Shutdown(ctx)
}
