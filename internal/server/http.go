package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"github.com/linecardbot/line-card-bot/internal/biz/domain"
)

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	Port          int
	Platform      domain.Platform
	ChannelSecret string // LINE only
}

// HTTPServer serves the LINE webhook and the status endpoints
type HTTPServer struct {
	config  HTTPConfig
	handler EventHandler
	pending PendingCounter
	seen    *seenCache
	logger  *slog.Logger
	now     func() time.Time

	server *http.Server
}

// NewHTTPServer creates a new HTTP server
func NewHTTPServer(config HTTPConfig, handler EventHandler, pending PendingCounter, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &HTTPServer{
		config:  config,
		handler: handler,
		pending: pending,
		seen:    newSeenCache(seenTTL),
		logger:  logger,
		now:     time.Now,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Routes returns the HTTP handler
func (s *HTTPServer) Routes() http.Handler {
	mux := http.NewServeMux()
	if s.config.Platform == domain.PlatformLINE {
		mux.HandleFunc("POST /callback", s.handleCallback)
	}
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("LINE Bot server is running!"))
	})
	return mux
}

// Start listens until Shutdown is called
func (s *HTTPServer) Start() error {
	s.logger.Info("[SERVER] Starting HTTP server", "addr", s.server.Addr, "platform", s.config.Platform)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)
	w.Header().Set("X-Request-Id", requestID)

	cb, err := webhook.ParseRequest(s.config.ChannelSecret, r)
	if err != nil {
		if errors.Is(err, webhook.ErrInvalidSignature) {
			logger.Warn("[WEBHOOK] Invalid signature")
			http.Error(w, "Invalid signature", http.StatusBadRequest)
			return
		}
		logger.Error("[WEBHOOK] Failed to parse request", "error", err)
		http.Error(w, "Internal server error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Debug("[WEBHOOK] Received events", "count", len(cb.Events))
	// Keep handling events if LINE drops the connection mid-batch
	ctx := context.WithoutCancel(r.Context())
	var failed error
	for _, event := range cb.Events {
		ev, ok := convertLINEEvent(event, s.now())
		if !ok {
			logger.Debug("[WEBHOOK] Ignoring event without message or sender", "type", fmt.Sprintf("%T", event))
			continue
		}
		if s.seen.markSeen(ev.EventID, ev.ReceivedAt) {
			logger.Info("[WEBHOOK] Duplicate event ignored", "event_id", ev.EventID)
			continue
		}
		if _, err := s.handler.Handle(ctx, ev); err != nil {
			logger.Error("[WEBHOOK] Failed to handle event", "event_id", ev.EventID, "error", err)
			// Let LINE's redelivery of this event through
			s.seen.forget(ev.EventID)
			if failed == nil {
				failed = err
			}
		}
	}

	if failed != nil {
		http.Error(w, "Internal server error: "+failed.Error(), http.StatusInternalServerError)
		return
	}
	w.Write([]byte("OK"))
}

// healthResponse is the body of GET /healthz
type healthResponse struct {
	Status          string          `json:"status"`
	Platform        domain.Platform `json:"platform"`
	PendingTriggers int             `json:"pending_triggers"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Platform: s.config.Platform}
	if s.pending != nil {
		resp.PendingTriggers = s.pending.Len()
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
