package ingest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/splitcast/splitcast/go/internal/models"
)

// WebhookPath is the fixed ingestion endpoint for the vendor relay.
const WebhookPath = "/api/v1/webhooks/rfid"

const maxWebhookBody = 1 << 20 // 1MB

// IngestApp defines what the service layer needs from the ingestion app
type IngestApp interface {
	Ingest(ctx context.Context, read RawReadEvent) (*models.SplitTime, error)
}

// Service is the HTTP transport for the ingestion pipeline. It owns
// signature verification: the raw body must be read before any
// decoding, and nothing else runs on a mismatch.
type Service struct {
	app    IngestApp
	secret string
}

// NewService creates a new webhook service
func NewService(app IngestApp, secret string) *Service {
	return &Service{
		app:    app,
		secret: secret,
	}
}

type webhookRequest struct {
	EventID   int64           `json:"event_id"`
	ChipID    string          `json:"chip_id"`
	Timestamp string          `json:"timestamp"`
	ReaderID  string          `json:"reader_id"`
	RSSI      json.RawMessage `json:"rssi,omitempty"`
}

type rejectionBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandleRFIDWebhook handles POST /api/v1/webhooks/rfid.
func (s *Service) HandleRFIDWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	if !VerifySignature(s.secret, body, r.Header.Get(SignatureHeader)) {
		log.Warn().
			Str("remote_addr", r.RemoteAddr).
			Msg("webhook signature mismatch")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid signature"})
		return
	}

	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeRejections(w, http.StatusBadRequest, rejectionBody{
			Code:    "invalid_payload",
			Message: "body is not valid JSON",
		})
		return
	}

	ts, err := time.Parse(time.RFC3339, req.Timestamp)
	if err != nil {
		writeRejections(w, http.StatusBadRequest, rejectionBody{
			Code:    "invalid_timestamp",
			Message: "timestamp must be ISO-8601",
		})
		return
	}

	record, err := s.app.Ingest(r.Context(), RawReadEvent{
		EventID:   req.EventID,
		ChipID:    req.ChipID,
		ReaderID:  req.ReaderID,
		Timestamp: ts,
		RSSI:      req.RSSI,
	})
	if err != nil {
		s.writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"id":     record.ID.String(),
	})
}

// writeIngestError maps the pipeline's rejection taxonomy onto HTTP
// statuses: caller faults get 401, data gaps and benign duplicates get
// 422 with structured reasons, and only system faults get 500.
func (s *Service) writeIngestError(w http.ResponseWriter, err error) {
	rej, ok := AsRejection(err)
	if !ok {
		log.Error().Err(err).Msg("ingest failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	switch rej.Kind {
	case RejectionUnauthorized:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": rej.Reason})
	case RejectionPersistenceFailure:
		log.Error().Err(rej).Msg("ingest failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "storage failure"})
	default:
		writeRejections(w, http.StatusUnprocessableEntity, rejectionBody{
			Code:    string(rej.Kind),
			Message: rej.Reason,
		})
	}
}

// RegisterRoutes registers webhook routes with an HTTP mux
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(WebhookPath, s.HandleRFIDWebhook)
}

func writeRejections(w http.ResponseWriter, status int, rejections ...rejectionBody) {
	writeJSON(w, status, map[string]interface{}{
		"status": "error",
		"errors": rejections,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
