// Package httpserver exposes the person accounts over REST.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/personauth/internal/logging"
	"github.com/dmitrijs2005/personauth/internal/server/auth"
	"github.com/dmitrijs2005/personauth/internal/server/models"
	"github.com/dmitrijs2005/personauth/internal/server/services"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// PersonService is the account logic the handlers call into.
type PersonService interface {
	FindAll(ctx context.Context) ([]models.Person, error)
	FindByID(ctx context.Context, id int64) (*models.Person, error)
	Create(ctx context.Context, p *models.Person) (*models.Person, error)
	Update(ctx context.Context, p *models.Person) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	PartialUpdate(ctx context.Context, patch models.PersonPatch) (bool, error)
}

// CredentialLoader resolves a login into its stored credential.
type CredentialLoader interface {
	LoadCredentials(ctx context.Context, login string) (*services.Credential, error)
}

type Options struct {
	Address      string
	AuthRequired bool
}

type HTTPServer struct {
	address      string
	persons      PersonService
	credentials  CredentialLoader
	hasher       auth.Hasher
	tokens       *auth.TokenIssuer
	authRequired bool
	logger       logging.Logger
}

func NewHTTPServer(opts Options, l logging.Logger, ps PersonService, cl CredentialLoader, h auth.Hasher, t *auth.TokenIssuer) *HTTPServer {
	return &HTTPServer{
		address:      opts.Address,
		persons:      ps,
		credentials:  cl,
		hasher:       h,
		tokens:       t,
		authRequired: opts.AuthRequired,
		logger:       l.With("module", "http_server"),
	}
}

// Router builds the route table. Fixed paths are registered before
// /person/{id} so they win the match.
func (s *HTTPServer) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestLogger)

	r.HandleFunc("/login", s.login).Methods(http.MethodPost)

	p := r.PathPrefix("/person").Subrouter()

	p.HandleFunc("/sign-up", s.create).Methods(http.MethodPost)
	p.HandleFunc("/", s.create).Methods(http.MethodPost)

	p.Handle("/all", s.guard(s.findAll)).Methods(http.MethodGet)
	p.Handle("/", s.guard(s.findAll)).Methods(http.MethodGet)
	p.Handle("/update", s.guard(s.update)).Methods(http.MethodPut)
	p.Handle("/", s.guard(s.update)).Methods(http.MethodPut)
	p.Handle("/partUpdate", s.guard(s.partialUpdate)).Methods(http.MethodPatch)
	p.Handle("/{id}", s.guard(s.findByID)).Methods(http.MethodGet)
	p.Handle("/{id}", s.guard(s.delete)).Methods(http.MethodDelete)

	return r
}

// guard wraps h with token verification when auth is required.
func (s *HTTPServer) guard(h http.HandlerFunc) http.Handler {
	if !s.authRequired {
		return h
	}
	return s.requireAuth(h)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
