// Matchd is a vehicle recommendation daemon.
//
// It turns free-text descriptions of what a buyer needs into ranked,
// justified vehicle matches backed by a Qdrant vector index.
//
// Configuration is loaded from a YAML file and environment variables.
// See internal/config for details.
//
// Usage:
//
//	# Start server with defaults
//	matchd
//
//	# Configure via file and environment
//	SERVER_HTTP_PORT=9180 matchd --config matchd.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/matchd/internal/config"
	"github.com/fyrsmithlabs/matchd/internal/embeddings"
	httpserver "github.com/fyrsmithlabs/matchd/internal/http"
	"github.com/fyrsmithlabs/matchd/internal/intent"
	"github.com/fyrsmithlabs/matchd/internal/llm"
	"github.com/fyrsmithlabs/matchd/internal/logging"
	"github.com/fyrsmithlabs/matchd/internal/qdrant"
	"github.com/fyrsmithlabs/matchd/internal/reasons"
	"github.com/fyrsmithlabs/matchd/internal/reclog"
	"github.com/fyrsmithlabs/matchd/internal/recommend"
	"github.com/fyrsmithlabs/matchd/internal/scoring"
	"github.com/fyrsmithlabs/matchd/internal/vehicles"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  matchd           Start the matchd daemon\n")
			fmt.Fprintf(os.Stderr, "  matchd version   Show version information\n")
			os.Exit(1)
		}
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("matchd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the matchd server and blocks until context is cancelled.
//
// This function initializes all dependencies and services:
//  1. Loads and validates configuration
//  2. Initializes the logger
//  3. Connects to infrastructure (Qdrant, Postgres)
//  4. Creates the completion and embedding providers
//  5. Wires the recommendation pipeline
//  6. Starts the HTTP server
//  7. Performs graceful shutdown on context cancellation
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("Starting matchd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout.Duration()))

	deps, err := initDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	logger.Info("Dependencies initialized",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("embeddings_provider", cfg.Embeddings.Provider),
		zap.Bool("recommendation_log", deps.recLog != nil))

	svc, err := initService(cfg, deps, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize recommendation service: %w", err)
	}

	srv, err := httpserver.NewServer(svc, deps.index, logger, &httpserver.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	logger.Info("Server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)),
		zap.String("recommend_endpoint", "/api/v1/recommend"),
		zap.String("metrics_endpoint", "/metrics"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// dependencies holds all infrastructure dependencies.
type dependencies struct {
	qdrantClient qdrant.Client
	index        *vehicles.Index
	completer    llm.Completer
	embedder     embeddings.Provider
	recLog       *reclog.Store
	logger       *zap.Logger
}

// Close releases all infrastructure resources.
func (d *dependencies) Close() {
	if d.recLog != nil {
		if err := d.recLog.Close(); err != nil {
			d.logger.Warn("failed to close recommendation log", zap.Error(err))
		}
	}
	if d.qdrantClient != nil {
		if err := d.qdrantClient.Close(); err != nil {
			d.logger.Warn("failed to close qdrant client", zap.Error(err))
		}
	}
}

// initDependencies connects matchd to its backing services.
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dependencies, error) {
	completer, err := llm.NewCompleter(cfg.LLM.Provider, llm.Config{
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey.Value(),
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout.Duration(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion provider: %w", err)
	}

	embedder, err := embeddings.NewProvider(cfg.Embeddings.Provider, embeddings.Config{
		Model:     cfg.Embeddings.Model,
		APIKey:    cfg.Embeddings.APIKey.Value(),
		BaseURL:   cfg.Embeddings.BaseURL,
		Dimension: cfg.Embeddings.Dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	qdrantClient, err := qdrant.NewGRPCClient(&qdrant.ClientConfig{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		UseTLS: cfg.Qdrant.UseTLS,
		APIKey: cfg.Qdrant.APIKey.Value(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	index, err := vehicles.NewIndex(qdrantClient, cfg.Qdrant.Collection, embedder.Dimension(), logger)
	if err != nil {
		qdrantClient.Close()
		return nil, fmt.Errorf("failed to create vehicle index: %w", err)
	}
	if err := index.EnsureCollection(ctx); err != nil {
		qdrantClient.Close()
		return nil, fmt.Errorf("failed to ensure vehicle collection: %w", err)
	}

	logger.Info("Vehicle index ready",
		zap.String("collection", cfg.Qdrant.Collection),
		zap.Int("dimension", embedder.Dimension()))

	// The recommendation log is optional infrastructure.
	var recLog *reclog.Store
	if dsn := cfg.RecLog.DSN.Value(); dsn != "" {
		recLog, err = reclog.New(dsn, logger)
		if err != nil {
			qdrantClient.Close()
			return nil, fmt.Errorf("failed to open recommendation log: %w", err)
		}
	}

	return &dependencies{
		qdrantClient: qdrantClient,
		index:        index,
		completer:    completer,
		embedder:     embedder,
		recLog:       recLog,
		logger:       logger,
	}, nil
}

// initService wires the recommendation pipeline.
func initService(cfg *config.Config, deps *dependencies, logger *zap.Logger) (*recommend.Service, error) {
	var recorder recommend.Recorder
	if deps.recLog != nil {
		recorder = deps.recLog
	}

	return recommend.NewService(recommend.Options{
		Extractor: intent.NewExtractor(deps.completer, logger),
		Reasoner:  reasons.NewGenerator(deps.completer, logger),
		Scorer: scoring.NewScorer(scoring.Weights{
			Persona:   cfg.Scoring.PersonaWeight,
			Heuristic: cfg.Scoring.HeuristicWeight,
			TopK:      cfg.Scoring.TopK,
		}),
		Embedder:  deps.embedder,
		Index:     deps.index,
		Recorder:  recorder,
		Metrics:   recommend.NewMetrics(),
		Logger:    logger,
		RetrieveK: cfg.Scoring.RetrieveK,
	})
}
