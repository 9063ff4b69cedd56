package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mwaldhauser/incentiva/internal/auth"
	"github.com/mwaldhauser/incentiva/internal/database"
	"github.com/mwaldhauser/incentiva/internal/errors"
	"github.com/mwaldhauser/incentiva/internal/frontend"
	"github.com/mwaldhauser/incentiva/internal/handlers"
	"github.com/mwaldhauser/incentiva/internal/incentive"
	"github.com/mwaldhauser/incentiva/internal/monitoring"
	"github.com/mwaldhauser/incentiva/internal/ratelimit"
	"github.com/mwaldhauser/incentiva/internal/studydb"
	"github.com/mwaldhauser/incentiva/internal/vignette"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment with defaults
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	port := getEnvOrDefault("PORT", "8080")
	jwtSecret := getEnvOrDefault("JWT_SECRET", "your-super-secret-jwt-key-change-in-production")
	adminPassword := getEnvOrDefault("ADMIN_PASSWORD", "change-me")
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	defaultStudyID := int64(getEnvIntOrDefault("DEFAULT_STUDY_ID", 1))
	cacheTTL := time.Duration(getEnvIntOrDefault("CACHE_TTL_SECONDS", 300)) * time.Second

	rateLimitConfig := ratelimit.DefaultConfig()
	rateLimitConfig.IPLimitPerMin = getEnvIntOrDefault("RATE_LIMIT_IP_PER_MIN", rateLimitConfig.IPLimitPerMin)
	rateLimitConfig.SubmissionsPerDay = getEnvIntOrDefault("RATE_LIMIT_SUBMISSIONS_PER_DAY", rateLimitConfig.SubmissionsPerDay)

	// Survey and study databases
	surveyDB, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize survey database", "error", err)
		os.Exit(1)
	}
	defer surveyDB.Close()
	surveys := database.NewRepository(surveyDB)

	studyDB, err := studydb.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize study database", "error", err)
		os.Exit(1)
	}
	defer studyDB.Close()
	studies := studydb.NewRepository(studyDB)

	// Monitoring
	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	// Rate limiting with Redis and in-memory fallback
	redisClient, err := ratelimit.NewRedisClient(redisAddr, redisPassword, 0)
	if err != nil {
		slog.Warn("Redis unavailable", "error", err)
	}
	defer redisClient.Close()
	limiter := ratelimit.NewRateLimiter(redisClient, rateLimitConfig, appMetrics)

	// Page templates
	pages, err := frontend.NewRenderer()
	if err != nil {
		slog.Error("Failed to load page templates", "error", err)
		os.Exit(1)
	}

	api := handlers.NewAPI(handlers.Config{
		Surveys:        surveys,
		Studies:        studies,
		Incentives:     incentive.NewService(surveys),
		Generator:      vignette.NewGenerator(studies),
		Auth:           auth.NewService(surveys, jwtSecret, adminPassword),
		Limiter:        limiter,
		Metrics:        appMetrics,
		Logger:         appLogger,
		Pages:          pages,
		DefaultStudyID: defaultStudyID,
		CacheTTL:       cacheTTL,
	})

	r := gin.New()
	r.Use(errors.RecoveryHandler())
	r.Use(errors.ErrorHandler())
	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(limiter.IPRateLimitMiddleware())

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	r.Use(cors.New(corsConfig))

	healthChecks := map[string]func() error{
		"survey_db": surveyDB.Ping,
		"study_db":  studyDB.Ping,
	}
	if redisClient.IsEnabled() {
		healthChecks["redis"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.HealthCheck(ctx)
		}
	}

	handlers.RegisterRoutes(r, api, healthChecks)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// Helper function for environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Invalid integer environment variable, using default", "key", key, "value", value)
		return defaultValue
	}
	return parsed
}
