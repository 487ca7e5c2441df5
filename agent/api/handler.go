// Package api exposes the gateway over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	gatewayx "github.com/tanpawarit/Chative-Policy-Gateway/agent/agents/gateway"
	contractx "github.com/tanpawarit/Chative-Policy-Gateway/agent/contract"
)

const (
	defaultMaxRequestBodySize = 1 << 16

	msgMissingFields = "Missing 'query' or 'session_id' in request body"
	msgRateLimited   = "rate limit exceeded"
	msgTimeout       = "request timed out"
	msgInternal      = "internal server error"
)

// MessageHandler runs one conversational turn.
type MessageHandler interface {
	HandleMessage(ctx context.Context, sessionID string, text string) (gatewayx.Reply, error)
}

// ReadinessChecker reports whether the assistant backend can serve requests.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Checks is ready when every member is.
type Checks []ReadinessChecker

func (c Checks) Ready(ctx context.Context) error {
	for _, check := range c {
		if check == nil {
			continue
		}
		if err := check.Ready(ctx); err != nil {
			return err
		}
	}
	return nil
}

type Config struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type AskRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

type AskResponse struct {
	Response      string `json:"response"`
	Authenticated bool   `json:"authenticated"`
	Agent         string `json:"agent"`
	Needs         string `json:"needs,omitempty"`
}

type Handler struct {
	gateway     MessageHandler
	readiness   ReadinessChecker
	rateLimiter *RateLimiter
	cfg         Config
}

// NewHandler wires the HTTP surface. readiness and rateLimiter may be nil.
func NewHandler(gateway MessageHandler, readiness ReadinessChecker, rateLimiter *RateLimiter, cfg Config) *Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxRequestBodySize
	}
	return &Handler{
		gateway:     gateway,
		readiness:   readiness,
		rateLimiter: rateLimiter,
		cfg:         cfg,
	}
}

// Router builds the chi router with logging and recovery middleware.
func (h *Handler) Router(logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Get("/readyz", h.HandleReady)

	r.Group(func(r chi.Router) {
		if h.cfg.RequestTimeout > 0 {
			r.Use(chiMiddleware.Timeout(h.cfg.RequestTimeout))
		}
		r.Post("/ask", h.HandleAsk)
	})

	return r
}

func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(clientKey(r)) {
		Error(w, http.StatusTooManyRequests, msgRateLimited)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodyBytes)

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, msgMissingFields)
		return
	}
	if strings.TrimSpace(req.Query) == "" || strings.TrimSpace(req.SessionID) == "" {
		Error(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	reply, err := h.gateway.HandleMessage(r.Context(), req.SessionID, req.Query)
	if err != nil {
		status, message := classify(err)
		if status >= http.StatusInternalServerError {
			hlog.FromRequest(r).Error().Err(err).Int("status", status).Msg("ask failed")
		}
		Error(w, status, message)
		return
	}

	JSON(w, http.StatusOK, AskResponse{
		Response:      reply.Response,
		Authenticated: reply.Authenticated,
		Agent:         reply.Agent,
		Needs:         string(reply.Needs),
	})
}

func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.readiness == nil {
		JSON(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	if err := h.readiness.Ready(r.Context()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("backend not ready")
		Error(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// classify maps a turn error to an HTTP status and client message.
func classify(err error) (int, string) {
	var collab *contractx.CollaboratorError
	switch {
	case errors.Is(err, gatewayx.ErrInvalidSession), errors.Is(err, gatewayx.ErrInvalidMessage):
		return http.StatusBadRequest, msgMissingFields
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, msgTimeout
	case errors.As(err, &collab):
		return http.StatusInternalServerError, collab.Error()
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chiMiddleware.GetReqID(r.Context()); id != "" {
			hlog.FromRequest(r).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}
