// Command metricsd serves named analytics queries over the change and event
// documents indexed from code review systems.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonesrussell/forge-metrics/internal/api"
	"github.com/jonesrussell/forge-metrics/internal/config"
	"github.com/jonesrussell/forge-metrics/internal/elasticsearch"
	"github.com/jonesrussell/forge-metrics/internal/logger"
	"github.com/jonesrussell/forge-metrics/internal/metrics"
	"github.com/jonesrussell/forge-metrics/internal/service"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	configPath := config.GetConfigPath("config.yml")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	// Add service name to all log entries
	log = log.With(logger.String("service", cfg.Service.Name))

	log.Info("Starting metrics service",
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port),
		logger.Bool("debug", cfg.Service.Debug),
	)

	// Initialize Elasticsearch client
	log.Info("Connecting to Elasticsearch",
		logger.String("url", cfg.Elasticsearch.URL),
		logger.String("index", cfg.Elasticsearch.IndexPattern),
	)
	store, err := elasticsearch.NewClient(&cfg.Elasticsearch, log)
	if err != nil {
		log.Error("Failed to create Elasticsearch client", logger.Error(err))
		return 1
	}
	log.Info("Successfully connected to Elasticsearch")

	// Build the metric catalog
	runner := service.NewRunner(store, log)
	catalog := service.NewCatalog(runner)
	log.Info("Query catalog initialized",
		logger.Int("queries", len(catalog.Names())),
	)

	// Create and start HTTP server
	m := metrics.New(cfg.Service.Name)
	handler := api.NewHandler(catalog, store, cfg, log)
	server := api.NewServer(handler, m, cfg, log)

	if runErr := server.Run(context.Background()); runErr != nil {
		log.Error("Server error", logger.Error(runErr))
		return 1
	}

	log.Info("Metrics service exited cleanly")
	return 0
}
