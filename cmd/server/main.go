package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skypulse-engine/internal/infrastructure/config"
	"skypulse-engine/internal/infrastructure/oauth"
	"skypulse-engine/internal/infrastructure/persistence"
	"skypulse-engine/internal/interface/gmail"
	"skypulse-engine/internal/interface/httpapi"
	"skypulse-engine/internal/interface/llm"
	"skypulse-engine/internal/interface/repository"
	"skypulse-engine/internal/usecase"
	"skypulse-engine/pkg/logger"
	"skypulse-engine/pkg/matching"
	"skypulse-engine/pkg/metrics"
	"skypulse-engine/pkg/pricing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting SkyPulse Engine")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}

	// Set up repositories
	subscriptionRepo := repository.NewGormSubscriptionRepository(gormDB)
	matchRepo := repository.NewMongoMatchRepository(db)
	pricePointRepo := repository.NewMongoPricePointRepository(db)
	alertRepo := repository.NewMongoAlertRepository(db)
	feedRepo := repository.NewMongoFeedMessageRepository(db)
	alertNotifier := repository.NewWebhookAlertNotifier(cfg.AlertWebhookURL, cfg.AlertWebhookToken, log)

	// Set up metrics
	m := metrics.NewMetrics("skypulse")

	// Set up the price intelligence engine
	history := pricing.NewHistory(cfg.RetentionDays)
	trendAnalyzer := pricing.NewTrendAnalyzer(history, cfg.TrendWindowDays, cfg.TrendShortWindow, cfg.TrendDeltaBand)
	holidays := cfg.HolidayRanges
	if len(holidays) == 0 {
		holidays = pricing.DefaultHolidayRanges
	}
	seasonalDetector := pricing.NewSeasonalDetector(history, holidays)
	recommender := pricing.NewRecommender(trendAnalyzer, seasonalDetector)
	alertManager := pricing.NewAlertManager()

	priceMonitor := usecase.NewPriceMonitor(
		history,
		trendAnalyzer,
		seasonalDetector,
		recommender,
		alertManager,
		pricePointRepo,
		alertRepo,
		alertNotifier,
		m,
		log,
	)

	// Rebuild in-memory state from the stores before accepting work
	if err := priceMonitor.WarmStart(ctx, cfg.RetentionDays); err != nil {
		log.Fatal("Failed to warm start price engine", "error", err)
	}

	// Set up the match scorer
	weights := matching.Weights{
		Destination: cfg.WeightDest,
		Price:       cfg.WeightPrice,
		Date:        cfg.WeightDate,
		Origin:      cfg.WeightOrigin,
	}
	scorer, err := matching.NewScorer(weights, cfg.MatchThreshold)
	if err != nil {
		log.Fatal("Invalid scoring configuration", "error", err)
	}

	// Set up the summary pipeline
	summarizer := llm.NewClaudeSummarizer(cfg.AnthropicAPIKey, cfg.ClaudeModel, cfg.SummaryTimeout, log)
	summaryWorker := usecase.NewSummaryWorker(summarizer, matchRepo, m, log, cfg.SummaryQueueSize, cfg.SummaryAttempts, cfg.SummaryBaseDelay)
	go summaryWorker.Start(ctx)

	dealProcessor := usecase.NewDealProcessor(
		feedRepo,
		subscriptionRepo,
		matchRepo,
		scorer,
		priceMonitor,
		summaryWorker,
		m,
		log,
		50,
	)

	// Set up Gmail OAuth
	gmailOAuth := oauth.NewGmailOAuth(
		cfg.GmailClientID,
		cfg.GmailClientSecret,
		cfg.GmailRefreshToken,
		log,
	)
	tokenSource := gmailOAuth.GetTokenSource(ctx)

	// Set up the deal feed
	feedService, err := gmail.NewFeedService(ctx, tokenSource, feedRepo, cfg.FeedSenders, log, cfg.GmailPollInterval)
	if err != nil {
		log.Fatal("Failed to create feed service", "error", err)
	}

	// Start feed polling and deal processing in goroutines
	go feedService.StartPolling(ctx)
	go dealProcessor.StartPolling(ctx, cfg.ProcessInterval)

	// Nightly retention prune
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.PruneSchedule, func() {
		priceMonitor.PruneAll(ctx)
	}); err != nil {
		log.Fatal("Invalid prune schedule", "schedule", cfg.PruneSchedule, "error", err)
	}
	scheduler.Start()

	// Set up HTTP server for the admin API and metrics
	mux := http.NewServeMux()
	httpapi.NewHandler(priceMonitor, log).Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	<-scheduler.Stop().Done()
	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("SkyPulse Engine stopped")
}
