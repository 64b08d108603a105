package main

import (
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"homescout/server/config"
	"homescout/server/internal/api"
	"homescout/server/internal/database"
	"homescout/server/internal/geocoding"
	"homescout/server/internal/ingest"
	"homescout/server/internal/listings"
	"homescout/server/internal/processor"
	"homescout/server/internal/queue"
	"homescout/server/internal/scheduler"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", cfg.Database.Path)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// The ingest path writes through gorm against the same file
	gormDB, err := gorm.Open(sqlite.Open(cfg.Database.Path), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open gorm connection")
	}

	// Initialize geocoder
	geocoder := geocoding.NewGeocoder(logger, cfg.Geocoding.CacheDir)

	// Wire the ingest pipeline: feed -> queue -> processor -> store
	listingQueue := queue.NewListingQueue(cfg.BatchProcessing.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(gormDB, listingQueue, cfg, logger)
	batchProcessor.Start()
	listingQueue.Start()
	defer batchProcessor.Stop()
	defer listingQueue.Close()

	feedSource := listings.NewHTTPSource(cfg.Feed.BaseURL, cfg.Feed.APIKey, cfg.Feed.RequestsPerSec, logger)
	feedClient := ingest.NewFeedClient(feedSource, listingQueue, cfg.Feed.PageSize, cfg.Feed.MaxPages, logger)

	sched := scheduler.NewScheduler(feedClient, logger, config.GetCityNames())
	sched.Start()
	defer sched.Stop()

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	api.SetupRoutes(router, db, geocoder, sched, logger)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
