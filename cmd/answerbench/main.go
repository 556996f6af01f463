// Command answerbench compares financial answer services. In serve mode
// it exposes the HTTP API; with -query it runs one comparison against
// every configured source, prints a markdown report, and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/answerbench/answerbench/infrastructure/llm"
	"github.com/answerbench/answerbench/infrastructure/middleware"
	"github.com/answerbench/answerbench/infrastructure/scoring"
	"github.com/answerbench/answerbench/internal/api"
	"github.com/answerbench/answerbench/internal/application"
	"github.com/answerbench/answerbench/internal/config"
	"github.com/answerbench/answerbench/internal/ports"
)

func main() {
	var (
		query       = flag.String("query", "", "Run one query against every source, print a report, and exit")
		sourcesPath = flag.String("config", "", "Path to the sources YAML file (overrides SOURCES_FILE)")
		envPath     = flag.String("env", "", "Path to a dotenv file loaded before reading the environment")
	)
	flag.Parse()

	logrus.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logrus.SetOutput(os.Stdout)

	cfg, err := config.LoadFrom(*envPath, *sourcesPath)
	if err != nil {
		logrus.WithError(err).Fatal("configuration error")
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	metrics := middleware.NewPrometheusMetrics()

	judge, err := buildJudgeClient(cfg.Judge, metrics)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build judge client")
	}

	scorer, err := scoring.NewScorer(judge, metrics, scoring.DefaultConfig())
	if err != nil {
		logrus.WithError(err).Fatal("failed to build scorer")
	}

	orchestrator, err := application.NewOrchestrator(cfg.Sources, cfg.SourceTimeout(), scorer, metrics)
	if err != nil {
		logrus.WithError(err).Fatal("failed to build orchestrator")
	}

	if *query != "" {
		runOnce(orchestrator, *query)
		return
	}

	serve(cfg, orchestrator, scorer)
}

// buildJudgeClient assembles the judge LLM client with its middleware
// chain: metrics outermost, then rate limiting across all scoring
// calls, retries for transient provider trouble, and a per-attempt
// timeout innermost.
func buildJudgeClient(cfg config.JudgeConfig, collector ports.MetricsCollector) (*llm.Client, error) {
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return llm.NewClient(cfg.Provider, llm.ClientConfig{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		Middleware: []llm.Middleware{
			llm.MetricsMiddleware(collector, cfg.Provider),
			llm.RateLimitMiddleware(rate.Limit(cfg.RequestsPerSecond), burst),
			llm.RetryMiddleware(cfg.MaxRetries, 500*time.Millisecond, 10*time.Second),
			llm.TimeoutMiddleware(cfg.Timeout()),
		},
	})
}

// runOnce executes a single orchestrated query and prints the report.
func runOnce(orchestrator *application.Orchestrator, query string) {
	result, err := orchestrator.Run(context.Background(), query)
	if err != nil {
		logrus.WithError(err).Fatal("query failed")
	}
	fmt.Print(renderReport(result))
}

// serve runs the HTTP API until SIGINT or SIGTERM, then shuts down
// gracefully.
func serve(cfg *config.Config, orchestrator *application.Orchestrator, scorer ports.RelevancyScorer) {
	gin.SetMode(gin.ReleaseMode)
	router := api.NewServer(orchestrator, scorer).Router()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":    cfg.ListenAddr,
			"sources": len(cfg.Sources),
		}).Info("serving HTTP")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
}
