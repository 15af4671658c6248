package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"roombook/internal/config"
	"roombook/internal/database"
	"roombook/internal/domain"
	"roombook/internal/metrics"
	"roombook/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the booking operations over HTTP.
type HTTPServer struct {
	cfg      config.APIConfig
	bookings domain.BookingService
	catalog  domain.RoomCatalog
	auth     *Authenticator
	limiter  *rateLimiter
	exports  config.ExportConfig
	server   *http.Server
	logger   *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookings domain.BookingService,
	catalog domain.RoomCatalog,
	exports config.ExportConfig,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		catalog:  catalog,
		auth:     NewAuthenticator(cfg.Auth),
		limiter:  newRateLimiter(cfg.RateLimit),
		exports:  exports,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/bookings", srv.authenticated("bookings:write", srv.handleCreateBooking))
	mux.HandleFunc("GET /api/v1/bookings", srv.authenticated("bookings:read", srv.handleListBookings))
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", srv.authenticated("bookings:write", srv.handleCancelBooking))
	mux.HandleFunc("GET /api/v1/bookings/export", srv.authenticated("bookings:export", srv.handleExportBookings))
	mux.HandleFunc("GET /api/v1/rooms", srv.authenticated("rooms:read", srv.handleRooms))
	mux.HandleFunc("GET /api/v1/rooms/{id}/availability", srv.authenticated("rooms:read", srv.handleRoomAvailability))
	mux.HandleFunc("GET /healthz", srv.handleHealth)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           srv.loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// Handler exposes the configured handler chain, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

type userIDKey struct{}

// authenticated wraps a handler with token auth, permission checks and
// per-token rate limiting, placing the verified user id into the context.
func (s *HTTPServer) authenticated(permission string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if !s.cfg.Auth.Enabled {
			next(w, r)
			return
		}

		userID, err := s.auth.Authenticate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if err := s.auth.Authorize(token, permission); err != nil {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		if err := s.limiter.allow(token); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
	}
}

func requestUserID(r *http.Request) int64 {
	if id, ok := r.Context().Value(userIDKey{}).(int64); ok {
		return id
	}
	return 0
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorStatus maps taxonomy errors to HTTP statuses. Every error stays
// distinct on the wire; nothing is silently downgraded.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInterval):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrSlotConflict):
		return http.StatusConflict
	case errors.Is(err, database.ErrAlreadyCancelled):
		return http.StatusConflict
	case errors.Is(err, database.ErrRoomNotFound),
		errors.Is(err, database.ErrUserNotFound),
		errors.Is(err, database.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
