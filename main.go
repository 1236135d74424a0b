// File: smartsched/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartsched/config"
	"smartsched/cron"
	"smartsched/database"
	historyRepo "smartsched/database/repository/history"
	"smartsched/handlers"
	"smartsched/routes"
	"smartsched/services/calendar"
	"smartsched/services/dialogue"
	ai "smartsched/services/intelligence"
	"smartsched/services/scheduling"
	"smartsched/services/timeparse"
	"smartsched/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.StartHealthMonitor(utils.GetSessionCacheClient(), database.MongoClient)

	// Calendar capability.
	var calProvider calendar.Provider
	switch config.AppConfig.CalendarProvider {
	case "google":
		gp, err := calendar.NewGoogleProvider(context.Background(),
			config.AppConfig.GoogleCredentialsFile, config.AppConfig.GoogleCalendarID)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize google calendar provider: %v", err)
		}
		calProvider = gp
	default:
		calProvider = calendar.NewStaticProvider()
	}

	// Extraction: Gemini when a key is configured, keyword fallback always.
	var primary ai.Extractor
	if key := config.AppConfig.GeminiAPIKey; key != "" {
		g, err := ai.NewGeminiExtractor(key)
		if err != nil {
			logger.Sugar().Warnf("main: gemini extractor unavailable, using keyword extraction only: %v", err)
		} else {
			primary = g
		}
	}
	extractor := ai.NewService(primary)

	// Core scheduling services.
	parser := timeparse.NewParser(timeparse.DayPartsFromConfig(config.AppConfig))
	parser.DefaultWindowDays = config.AppConfig.DefaultWindowDays

	availability := scheduling.NewAvailabilityResolver(calProvider, config.AppConfig.CalendarTimeout)
	matcher := scheduling.NewSlotMatcher(availability, scheduling.MatcherConfig{
		MaxOptions:      config.AppConfig.MaxOptions,
		WidenCapDays:    config.AppConfig.WidenCapDays,
		WorkHoursStart:  config.AppConfig.WorkHoursStart,
		WorkHoursEnd:    config.AppConfig.WorkHoursEnd,
		BufferMinutes:   config.AppConfig.BufferMinutes,
		RelaxationOrder: config.AppConfig.RelaxationOrder,
	})

	sessionStore := dialogue.NewRedisSessionStore(utils.GetSessionCacheClient(), config.AppConfig.SessionTTL)
	engine := dialogue.NewEngine(sessionStore, extractor, parser, matcher, calProvider)

	turnRepo := historyRepo.NewMongoTurnRepo()

	// Background inactivity sweeper.
	cron.InitSessionSweeper(engine, sessionStore)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := handlers.NewHandlerBundle(engine, turnRepo)
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	database.CloseDB()

	logger.Sugar().Info("main: server stopped gracefully")
}
