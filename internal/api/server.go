package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/checkinapp/checkin/internal/account/controller"
	"github.com/checkinapp/checkin/internal/platform/id"
)

// requestIDHeader correlates a response and its log lines with one request.
const requestIDHeader = "X-Request-ID"

// Server hosts the account HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	handler    *Handler
}

// New creates a configured API server listening on addr.
func New(addr string, accounts *controller.Controller, tokens *TokenIssuer) (*Server, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account controller is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	handler := NewHandler(accounts, tokens)
	return &Server{
		listener:   listener,
		httpServer: &http.Server{Handler: handler.Router()},
		handler:    handler,
	}, nil
}

// Addr returns the listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve starts the API server and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	log.Printf("account API listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	shutdown := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}

	select {
	case <-ctx.Done():
		shutdown()
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

// Handler holds the route handlers and their dependencies.
type Handler struct {
	accounts *controller.Controller
	tokens   *TokenIssuer
}

// NewHandler creates the API handler set.
func NewHandler(accounts *controller.Controller, tokens *TokenIssuer) *Handler {
	return &Handler{accounts: accounts, tokens: tokens}
}

// withRequestID echoes the client's request id, or stamps a generated one
// when the client sent none.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(requestIDHeader)
		if rid == "" {
			generated, err := id.NewID()
			if err != nil {
				log.Printf("api: generate request id: %v", err)
			} else {
				rid = generated
			}
		}
		if rid != "" {
			w.Header().Set(requestIDHeader, rid)
		}
		next.ServeHTTP(w, r)
	})
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(withRequestID)
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/session", h.handleSession).Methods(http.MethodGet)
	v1.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	v1.HandleFunc("/login/instant", h.handleInstantLogin).Methods(http.MethodPost)
	v1.HandleFunc("/login/social", h.handleSocialLogin).Methods(http.MethodPost)
	v1.HandleFunc("/login/social/phone", h.handleSubmitPhone).Methods(http.MethodPost)
	v1.HandleFunc("/guest", h.handleGuest).Methods(http.MethodPost)
	v1.HandleFunc("/onboarding/skip", h.handleSkipOnboarding).Methods(http.MethodPost)

	authed := v1.NewRoute().Subrouter()
	authed.Use(h.requireSession)
	authed.HandleFunc("/profile/username", h.handleUpdateUsername).Methods(http.MethodPatch)
	authed.HandleFunc("/profile/name", h.handleUpdateName).Methods(http.MethodPatch)
	authed.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)

	return r
}
