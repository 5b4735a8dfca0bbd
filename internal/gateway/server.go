// Package gateway is the client-facing process: it validates payloads and
// identity headers, throttles callers and forwards to the core server.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/httputil"
	"shareit/internal/metrics"
	"shareit/internal/models"
	"shareit/internal/ratelimit"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const maxRequestBody = 1 << 20

// Forwarder sends a request on to the core server.
type Forwarder interface {
	Forward(ctx context.Context, r *http.Request, body []byte) (*Response, error)
}

// check inspects an inbound request and its body before forwarding.
type check func(r *http.Request, body []byte) error

type Server struct {
	userHeader string
	upstream   Forwarder
	limiter    ratelimit.Limiter
	validator  *Validator
	logger     *zerolog.Logger
	server     *http.Server
}

// NewServer wires the gateway. limiter may be nil to disable throttling.
func NewServer(cfg config.GatewayConfig, userHeader string, upstream Forwarder, limiter ratelimit.Limiter, validator *Validator, logger *zerolog.Logger) *Server {
	s := &Server{
		userHeader: userHeader,
		upstream:   upstream,
		limiter:    limiter,
		validator:  validator,
		logger:     logger,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Timeout + 5*time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(httputil.RequestID, httputil.Logging(s.logger), httputil.Metrics("gateway"))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, s.logger, domain.NotFound("no route for %s %s", r.Method, r.URL.Path))
	})

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.rateLimit)

	api.Handle("/users", s.forward()).Methods(http.MethodGet)
	api.Handle("/users", s.forward(s.body(func() any { return &userBody{} }))).Methods(http.MethodPost)
	api.Handle("/users/{id:[0-9]+}", s.forward()).Methods(http.MethodGet, http.MethodDelete)
	api.Handle("/users/{id:[0-9]+}", s.forward(s.body(func() any { return &userPatchBody{} }))).Methods(http.MethodPatch)

	api.Handle("/items", s.forward(s.identity)).Methods(http.MethodGet)
	api.Handle("/items", s.forward(s.identity, s.body(func() any { return &itemBody{} }))).Methods(http.MethodPost)
	api.Handle("/items/search", s.forward()).Methods(http.MethodGet)
	api.Handle("/items/{id:[0-9]+}", s.forward(s.optionalIdentity)).Methods(http.MethodGet)
	api.Handle("/items/{id:[0-9]+}", s.forward(s.identity, s.body(func() any { return &itemPatchBody{} }))).Methods(http.MethodPatch)
	api.Handle("/items/{id:[0-9]+}", s.forward(s.identity)).Methods(http.MethodDelete)
	api.Handle("/items/{id:[0-9]+}/comment", s.forward(s.identity, s.body(func() any { return &commentBody{} }))).Methods(http.MethodPost)

	api.Handle("/bookings", s.forward(s.identity, stateParam)).Methods(http.MethodGet)
	api.Handle("/bookings", s.forward(s.identity, s.body(func() any { return &bookingBody{} }))).Methods(http.MethodPost)
	api.Handle("/bookings/owner", s.forward(s.identity, stateParam)).Methods(http.MethodGet)
	api.Handle("/bookings/{id:[0-9]+}", s.forward(s.identity)).Methods(http.MethodGet)
	api.Handle("/bookings/{id:[0-9]+}", s.forward(s.identity, approvedParam)).Methods(http.MethodPatch)

	api.Handle("/requests", s.forward(s.identity)).Methods(http.MethodGet)
	api.Handle("/requests", s.forward(s.identity, s.body(func() any { return &requestBody{} }))).Methods(http.MethodPost)
	api.Handle("/requests/all", s.forward(s.identity)).Methods(http.MethodGet)
	api.Handle("/requests/{id:[0-9]+}", s.forward()).Methods(http.MethodGet)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("gateway listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// forward runs checks in order and relays the request upstream if all pass.
func (s *Server) forward(checks ...check) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err != nil {
			httputil.WriteError(w, r, s.logger, domain.Validation("failed to read request body"))
			return
		}

		for _, c := range checks {
			if err := c(r, body); err != nil {
				httputil.WriteError(w, r, s.logger, err)
				return
			}
		}

		resp, err := s.upstream.Forward(r.Context(), r, body)
		if err != nil {
			s.logger.Error().Err(err).Str("request_id", httputil.RequestIDFromContext(r.Context())).Msg("forward failed")
			httputil.WriteJSON(w, http.StatusBadGateway, httputil.ErrorBody{
				Error:       "bad gateway",
				Description: "core server is unavailable",
			})
			return
		}

		if resp.ContentType != "" {
			w.Header().Set("Content-Type", resp.ContentType)
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(resp.Body)
	})
}

func (s *Server) identity(r *http.Request, _ []byte) error {
	_, err := httputil.UserID(r, s.userHeader)
	return err
}

func (s *Server) optionalIdentity(r *http.Request, _ []byte) error {
	_, err := httputil.OptionalUserID(r, s.userHeader)
	return err
}

func (s *Server) body(newDst func() any) check {
	return func(_ *http.Request, body []byte) error {
		return s.validator.Body(body, newDst())
	}
}

func stateParam(r *http.Request, _ []byte) error {
	if _, err := models.ParseState(r.URL.Query().Get("state")); err != nil {
		return domain.Validation("%s", err.Error())
	}
	return nil
}

func approvedParam(r *http.Request, _ []byte) error {
	raw := r.URL.Query().Get("approved")
	if _, err := strconv.ParseBool(raw); err != nil {
		return domain.Validation("query parameter approved must be true or false, got %q", raw)
	}
	return nil
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := s.limiter.Allow(r.Context(), s.callerKey(r))
		if err != nil {
			s.logger.Warn().Err(err).Msg("rate limiter error, letting request through")
			allowed = true
		}
		if !allowed {
			metrics.IncRateLimited()
			httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorBody{
				Error:       "too many requests",
				Description: "rate limit exceeded",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// callerKey identifies the caller by identity header, falling back to the remote host.
func (s *Server) callerKey(r *http.Request) string {
	if id, err := httputil.UserID(r, s.userHeader); err == nil {
		return "user:" + strconv.FormatInt(id, 10)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return "ip:" + host
	}
	return "ip:unknown"
}
