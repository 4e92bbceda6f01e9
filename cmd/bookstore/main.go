package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "bookstore/internal/adapter/http"
	"bookstore/internal/adapter/postgres"
	"bookstore/internal/app"
	"bookstore/internal/clock"
	"bookstore/internal/config"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close() }()

	clk := clock.NewSystem()
	eventRepo := postgres.NewEventRepo(db)
	bookRepo := postgres.NewBookRepo(db)

	codec := app.NewSessionCodec(cfg.SessionSecret, cfg.SessionTTL(), clk)
	authSvc := app.NewAuthService(db, codec, clk)
	projector := app.NewOwnershipProjector(db, eventRepo)
	orderSvc := app.NewOrderService(db, eventRepo, projector, clk)
	bookSvc := app.NewBookService(bookRepo, clk)

	var sso *adapthttp.SSOConfig
	if cfg.SSOEnabled() {
		sso, err = setupSSO(cfg)
		if err != nil {
			log.Fatalf("oidc setup: %v", err)
		}
		log.Printf("sso enabled issuer=%s", cfg.OIDCIssuer)
	}

	srv := adapthttp.New(authSvc, orderSvc, projector, bookSvc, sso)
	srv.SetCORSOrigins(cfg.CORSOrigins)
	handler := srv.Handler()

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	log.Printf("listening on %s", cfg.Addr)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}

func setupSSO(cfg config.Config) (*adapthttp.SSOConfig, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, cfg.OIDCIssuer)
	if err != nil {
		return nil, err
	}
	return &adapthttp.SSOConfig{
		Provider: provider,
		OAuth2: oauth2.Config{
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			RedirectURL:  cfg.OIDCRedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email"},
		},
	}, nil
}
