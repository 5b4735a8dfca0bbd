package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/httputil"
	"shareit/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services bundles what the handlers call into.
type Services struct {
	Users    *service.UserService
	Items    *service.ItemService
	Bookings *service.BookingService
	Requests *service.RequestService
	Store    Pinger
}

// HTTPServer is the core ShareIt REST API.
type HTTPServer struct {
	cfg      config.ServerConfig
	services Services
	logger   *zerolog.Logger
	server   *http.Server
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func NewHTTPServer(cfg config.ServerConfig, services Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{cfg: cfg, services: services, logger: logger}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return srv
}

func (s *HTTPServer) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(httputil.RequestID, httputil.Logging(s.logger), httputil.Metrics("server"))
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, r, s.logger, domain.NotFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorBody{
			Error:       "method not allowed",
			Description: fmt.Sprintf("%s is not allowed on %s", r.Method, r.URL.Path),
		})
	})

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	users := r.PathPrefix("/users").Subrouter()
	users.Handle("", s.handle(s.listUsers)).Methods(http.MethodGet)
	users.Handle("", s.handle(s.createUser)).Methods(http.MethodPost)
	users.Handle("/{id:[0-9]+}", s.handle(s.getUser)).Methods(http.MethodGet)
	users.Handle("/{id:[0-9]+}", s.handle(s.updateUser)).Methods(http.MethodPatch)
	users.Handle("/{id:[0-9]+}", s.handle(s.deleteUser)).Methods(http.MethodDelete)

	items := r.PathPrefix("/items").Subrouter()
	items.Handle("", s.handle(s.listOwnerItems)).Methods(http.MethodGet)
	items.Handle("", s.handle(s.createItem)).Methods(http.MethodPost)
	items.Handle("/search", s.handle(s.searchItems)).Methods(http.MethodGet)
	items.Handle("/{id:[0-9]+}", s.handle(s.getItem)).Methods(http.MethodGet)
	items.Handle("/{id:[0-9]+}", s.handle(s.updateItem)).Methods(http.MethodPatch)
	items.Handle("/{id:[0-9]+}", s.handle(s.deleteItem)).Methods(http.MethodDelete)
	items.Handle("/{id:[0-9]+}/comment", s.handle(s.addComment)).Methods(http.MethodPost)

	bookings := r.PathPrefix("/bookings").Subrouter()
	bookings.Handle("", s.handle(s.listBookerBookings)).Methods(http.MethodGet)
	bookings.Handle("", s.handle(s.createBooking)).Methods(http.MethodPost)
	bookings.Handle("/owner", s.handle(s.listOwnerBookings)).Methods(http.MethodGet)
	bookings.Handle("/{id:[0-9]+}", s.handle(s.getBooking)).Methods(http.MethodGet)
	bookings.Handle("/{id:[0-9]+}", s.handle(s.approveBooking)).Methods(http.MethodPatch)

	requests := r.PathPrefix("/requests").Subrouter()
	requests.Handle("", s.handle(s.listOwnRequests)).Methods(http.MethodGet)
	requests.Handle("", s.handle(s.createRequest)).Methods(http.MethodPost)
	requests.Handle("/all", s.handle(s.listOtherRequests)).Methods(http.MethodGet)
	requests.Handle("/{id:[0-9]+}", s.handle(s.getRequest)).Methods(http.MethodGet)

	return r
}

// Handler exposes the routed handler, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handle(fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			httputil.WriteError(w, r, s.logger, err)
		}
	})
}

func (s *HTTPServer) userID(r *http.Request) (int64, error) {
	return httputil.UserID(r, s.cfg.UserHeader)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.services.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.services.Store.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
