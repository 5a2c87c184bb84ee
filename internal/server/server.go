package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"leaddesk/internal/auth"
	"leaddesk/internal/catalog"
	"leaddesk/internal/config"
	"leaddesk/internal/database"
	"leaddesk/internal/leads"
	"leaddesk/internal/metrics"
	"leaddesk/internal/models"
	"leaddesk/internal/proposals"
	"leaddesk/internal/repository"
	"leaddesk/internal/seed"
	"leaddesk/internal/storage"
	"leaddesk/internal/users"
)

type Server struct {
	port      int
	cfg       *config.Config
	log       *slog.Logger
	db        database.Service
	blobs     storage.BlobStore
	metrics   *metrics.Metrics
	passwords auth.Passwords
	providers []string

	leads      *leads.Service
	proposals  *proposals.Service
	templates  *catalog.Templates
	spareParts *catalog.SpareParts
	users      *users.Service
}

func (s *Server) GetDB() database.Service { return s.db }
func (s *Server) GetBlobStore() storage.BlobStore { return s.blobs }
func (s *Server) Logger() *slog.Logger { return s.log }
func (s *Server) Metrics() *metrics.Metrics { return s.metrics }
func (s *Server) Leads() *leads.Service { return s.leads }
func (s *Server) Proposals() *proposals.Service { return s.proposals }
func (s *Server) Templates() *catalog.Templates { return s.templates }
func (s *Server) SpareParts() *catalog.SpareParts { return s.spareParts }
func (s *Server) Users() *users.Service { return s.users }
func (s *Server) FrontendURL() string { return s.cfg.FrontendURL }
func (s *Server) OAuthProviders() []string { return s.providers }

// New opens the configured store and blob store and builds the services on
// top of them. The caller owns the returned Server and must Close it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := database.Open(ctx, cfg.StoreDriver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	blobs, err := storage.Open(ctx, cfg.BlobConfig())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	s, err := NewWithStores(cfg, db, blobs, logger, metrics.New())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if cfg.SeedOnStart {
		if _, err := s.Seed(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return s, nil
}

// NewWithStores builds a Server over already opened stores. m may be nil.
func NewWithStores(cfg *config.Config, db database.Service, blobs storage.BlobStore, logger *slog.Logger, m *metrics.Metrics) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	passwords, err := auth.NewPasswords(cfg.PasswordMode)
	if err != nil {
		return nil, err
	}

	leadRepo := repository.New[models.Lead](db, models.KeyLeads, "lead")
	proposalRepo := repository.New[models.Proposal](db, models.KeyProposals, "proposal")
	templateRepo := repository.New[models.ProposalTemplate](db, models.KeyProposalTemplates, "template")
	partRepo := repository.New[models.SparePart](db, models.KeySpareParts, "spare part")
	userRepo := repository.New[models.User](db, models.KeyUsers, "user")

	s := &Server{
		port:       cfg.Port,
		cfg:        cfg,
		log:        logger,
		db:         db,
		blobs:      blobs,
		metrics:    m,
		passwords:  passwords,
		leads:      leads.NewService(leadRepo, logger, m),
		templates:  catalog.NewTemplates(templateRepo, logger),
		spareParts: catalog.NewSpareParts(partRepo, logger),
		users:      users.NewService(userRepo, passwords, logger),
	}
	s.proposals = proposals.NewService(proposalRepo, leadRepo, templateRepo, logger, m)
	return s, nil
}

// Seed fills empty users, spare parts and templates collections with the
// embedded defaults.
func (s *Server) Seed(ctx context.Context) (seed.Result, error) {
	d, err := seed.Default()
	if err != nil {
		return seed.Result{}, err
	}
	return seed.Apply(ctx, seed.Targets{
		Users:      repository.New[models.User](s.db, models.KeyUsers, "user"),
		SpareParts: repository.New[models.SparePart](s.db, models.KeySpareParts, "spare part"),
		Templates:  repository.New[models.ProposalTemplate](s.db, models.KeyProposalTemplates, "template"),
	}, d, s.passwords, s.log)
}

// HTTPServer returns the http.Server serving the API on the configured port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := s.HTTPServer()
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down gracefully, press Ctrl+C again to force")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Close releases the store.
func (s *Server) Close() error {
	return s.db.Close()
}
