package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	n8nadapter "github.com/ericfisherdev/credmcp/internal/adapter/driven/n8n"
	sqliteadapter "github.com/ericfisherdev/credmcp/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/credmcp/internal/adapter/driving/http"
	mcphandler "github.com/ericfisherdev/credmcp/internal/adapter/driving/mcp"
	"github.com/ericfisherdev/credmcp/internal/application"
	"github.com/ericfisherdev/credmcp/internal/catalog"
	"github.com/ericfisherdev/credmcp/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// stdout carries the MCP stream in stdio mode, so logs always go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	slog.Info("config loaded",
		"transport", cfg.Transport,
		"db_path", cfg.DBPath,
		"catalog_file", cfg.CatalogFile,
		"n8n_configured", cfg.HasN8NAPI(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open catalog database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Seed the node catalog.
	catalogSvc := application.NewCatalogService(sqliteadapter.NewNodeCatalogRepo(db), logger)
	if err := seedCatalog(ctx, catalogSvc, cfg.CatalogFile); err != nil {
		return err
	}

	// 6. Create n8n client (nil service if the API is not configured).
	var credentialSvc *application.CredentialService
	if cfg.HasN8NAPI() {
		client, err := n8nadapter.NewClient(cfg.N8NAPIURL, cfg.N8NAPIKey, cfg.N8NAPITimeout)
		if err != nil {
			return fmt.Errorf("create n8n client: %w", err)
		}
		credentialSvc = application.NewCredentialService(client, logger)
		slog.Info("n8n client created", "url", cfg.N8NAPIURL)
	} else {
		slog.Info("no n8n API configured, serving catalog tools only")
	}

	// 7. Create MCP server with tools registered.
	server := mcphandler.NewServer(mcphandler.NewHandler(credentialSvc, catalogSvc, logger), version)

	slog.Info("credmcp started", "version", version, "transport", cfg.Transport)

	// 8. Serve until the client disconnects or a shutdown signal arrives.
	if cfg.Transport == config.TransportHTTP {
		var upstream httphandler.UpstreamChecker
		if credentialSvc != nil {
			upstream = credentialSvc
		}
		return serveHTTP(ctx, cfg.ListenAddr, server, upstream, logger)
	}

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	slog.Info("shutdown complete")
	return nil
}

// seedCatalog imports the embedded default catalog, then the optional
// catalog file on top of it.
func seedCatalog(ctx context.Context, svc *application.CatalogService, file string) error {
	defaults, err := catalog.Default()
	if err != nil {
		return err
	}
	if err := svc.ImportCatalog(ctx, defaults); err != nil {
		return err
	}

	if file == "" {
		return nil
	}
	extra, err := catalog.LoadFile(file)
	if err != nil {
		return err
	}
	return svc.ImportCatalog(ctx, extra)
}

func serveHTTP(ctx context.Context, addr string, server *mcp.Server, upstream httphandler.UpstreamChecker, logger *slog.Logger) error {
	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
	handler := httphandler.NewServeMux(mcpHandler, httphandler.NewHandler(upstream, logger), logger)

	// No WriteTimeout: streamable HTTP responses may stay open.
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", addr)
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
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	// Graceful shutdown with 10s timeout for in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
