package echo

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Handler answers GET and POST on every path with the fixture's identity
// JSON. It holds no mutable state; each request is served independently.
type Handler struct {
	identity Identity
	logger   *slog.Logger
	now      func() time.Time
}

func NewHandler(identity Identity, logger *slog.Logger) *Handler {
	return &Handler{
		identity: identity,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.RequestURI()),
		slog.String("from", r.RemoteAddr))

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, getResponse{
		Backend:   h.identity.Name,
		Port:      h.identity.Port,
		Path:      r.URL.RequestURI(),
		Timestamp: epochSeconds(h.now()),
		Message:   "Hello from " + h.identity.DisplayName,
	})
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	// r.Body is already capped at Content-Length by net/http.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Warn("failed to read request body",
			slog.String("path", r.URL.RequestURI()),
			slog.String("error", err.Error()))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var received *string
	if len(body) > 0 {
		s := string(body)
		received = &s
	}

	h.writeJSON(w, postResponse{
		Backend:      h.identity.Name,
		Port:         h.identity.Port,
		Path:         r.URL.RequestURI(),
		Timestamp:    epochSeconds(h.now()),
		ReceivedData: received,
		Message:      "POST received by " + h.identity.DisplayName,
	})
}

// writeJSON serializes v with two-space indentation to match the
// reference fixtures byte for byte.
func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf)
}
