package webhook

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/riposte/riposte/internal/conversation"
	"github.com/riposte/riposte/internal/email"
	"github.com/riposte/riposte/internal/event"
)

// handleInbound accepts a provider webhook delivery of an inbound email
// (form-encoded, Mailgun style) and runs it through the pipeline.
// Pipeline failures return 500 so the provider retries; dedup absorbs
// the replays.
func (s *Server) handleInbound(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeBadRequest(w, "invalid form payload")
		return
	}

	inbound, err := email.FromForm(r.PostForm)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := s.processor.Process(r.Context(), inbound)
	if err != nil {
		s.logger.Error().Err(err).
			Str("from", inbound.From.Address).
			Msg("Inbound processing failed")
		writeInternalError(w, "processing failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outcome":     string(result.Outcome),
		"tracking_id": result.TrackingID,
		"intent":      string(result.Intent),
	})
}

// handleEvent ingests a telemetry or message event
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackingID string            `json:"tracking_id"`
		Type       string            `json:"type"`
		Actor      string            `json:"actor"`
		Message    string            `json:"message,omitempty"`
		Metadata   map[string]string `json:"metadata,omitempty"`
		Timestamp  *time.Time        `json:"timestamp,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON")
		return
	}

	if req.TrackingID == "" {
		writeBadRequest(w, "tracking_id is required")
		return
	}
	typ, ok := event.ParseType(req.Type)
	if !ok {
		writeBadRequest(w, "unknown event type: "+req.Type)
		return
	}

	ev := event.New(req.TrackingID, typ, req.Actor)
	if req.Message != "" {
		ev = ev.WithMessage(req.Message)
	}
	for k, v := range req.Metadata {
		ev = ev.WithMetadata(k, v)
	}
	if req.Timestamp != nil {
		ev.Timestamp = req.Timestamp.UTC()
	}

	stored, err := s.processor.RecordEvent(r.Context(), ev)
	if err != nil {
		s.logger.Error().Err(err).
			Str("tracking_id", req.TrackingID).
			Msg("Event ingestion failed")
		writeInternalError(w, "event not recorded")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stored": stored,
		"id":     ev.ID,
	})
}

// handleConversation returns the reconstructed conversation for a
// tracking id
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	trackingID := mux.Vars(r)["trackingId"]

	turns, err := s.processor.Conversation(r.Context(), trackingID)
	if err != nil {
		writeInternalError(w, err.Error())
		return
	}
	if turns == nil {
		turns = []conversation.Turn{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tracking_id": trackingID,
		"stage":       conversation.Stage(turns),
		"turns":       turns,
		"count":       len(turns),
	})
}

// handleHealth handles GET /healthz
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "UP",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// errorResponse represents a standard error response
type errorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, message)
}
