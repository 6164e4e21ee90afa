package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"atlas-core-connect-layer/internal/application"
	"atlas-core-connect-layer/internal/config"
	"atlas-core-connect-layer/internal/domain"
	"atlas-core-connect-layer/internal/infrastructure/cache"
	"atlas-core-connect-layer/internal/infrastructure/gateway"
	"atlas-core-connect-layer/internal/infrastructure/repository"
	"atlas-core-connect-layer/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// Initialize logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("⚠️  Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Connect to MongoDB for the user store
	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoClient.Disconnect(context.Background())

	db := mongoClient.Database(cfg.MongoDatabase)
	userRepo := repository.NewMongoUserRepository(db)

	// Status/override stores: redis when configured, in-process otherwise
	var statusCache ports.StatusCache
	var overrides ports.OverrideStore
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid REDIS_URL")
		}
		rdb := redis.NewClient(redisOpts)
		statusCache = cache.NewRedisStatusCache(rdb)
		overrides = cache.NewRedisOverrideStore(rdb)
		logger.Info().Msg("Using redis-backed status cache")
	} else {
		statusCache = cache.NewMemoryStatusCache()
		overrides = cache.NewMemoryOverrideStore()
	}

	// Gateway client with retry policy
	gatewayClient := gateway.NewClientWithOptions(
		gateway.Config{
			BaseURL: cfg.GatewayBaseURL,
			APIKey:  cfg.GatewayAPIKey,
			Timeout: cfg.GatewayTimeout,
		},
		gateway.RetryConfig{
			MaxAttempts:  cfg.RetryMaxAttempts,
			InitialDelay: cfg.RetryInitialDelay,
		},
		logger,
	)

	// Application services
	registry := application.NewRegistryWithConnectors(cfg.Connectors)
	broker := application.NewStatusBrokerWithOptions(registry, gatewayClient, statusCache, overrides, logger, application.StatusBrokerOptions{
		StatusTTL:   cfg.StatusCacheTTL,
		OverrideTTL: cfg.OverrideTTL,
	})
	actions := application.NewActionMap()
	router := application.NewCommandRouter(registry, actions, broker, gatewayClient, userRepo, logger)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check - must be public for monitoring
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, "./docs/swagger.json")
	})

	// Integration routes
	r.Get("/integrations", listIntegrationsHandler(registry))
	r.Get("/integrations/{id}/status", statusHandler(broker, logger))
	r.Get("/integrations/{id}/auth-url", authURLHandler(broker, logger))
	r.Post("/integrations/{id}/disconnect", disconnectHandler(broker))

	// Command routes
	r.Post("/commands", processHandler(router))
	r.Post("/commands/batch", processBatchHandler(router))
	r.Post("/commands/quick", quickCommandHandler(router))

	logger.Info().Str("port", cfg.Port).Msg("Starting API server")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// listIntegrationsHandler returns the integration catalog
func listIntegrationsHandler(registry *application.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"integrations": registry.List()})
	}
}

// statusHandler resolves connectivity for one integration and user
func statusHandler(broker *application.StatusBroker, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		integrationID := chi.URLParam(r, "id")
		user := r.URL.Query().Get("user")
		if user == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "user parameter is required"})
			return
		}

		status := broker.GetStatus(r.Context(), integrationID, user)
		logger.Debug().
			Str("integration", integrationID).
			Bool("connected", status.Connected).
			Msg("Resolved connection status")

		writeJSON(w, http.StatusOK, map[string]any{
			"ok":        true,
			"connected": status.Connected,
			"account":   status.Account,
		})
	}
}

// authURLHandler resolves the OAuth authorization URL for an integration
func authURLHandler(broker *application.StatusBroker, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		integrationID := chi.URLParam(r, "id")
		user := r.URL.Query().Get("user")
		if user == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "user parameter is required"})
			return
		}

		authURL, err := broker.AuthURL(r.Context(), integrationID, user)
		if err != nil {
			logger.Error().Err(err).Str("integration", integrationID).Msg("Failed to resolve auth url")
			writeJSON(w, http.StatusBadGateway, map[string]any{"ok": false, "error": "failed to resolve auth url"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "url": authURL})
	}
}

// disconnectHandler installs a manual disconnect for an integration and user
func disconnectHandler(broker *application.StatusBroker) http.HandlerFunc {
	type request struct {
		User string `json:"user"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		integrationID := chi.URLParam(r, "id")

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "user is required"})
			return
		}

		receipt := broker.Disconnect(r.Context(), integrationID, req.User)
		status := http.StatusOK
		if !receipt.OK {
			status = http.StatusNotFound
		}
		writeJSON(w, status, receipt)
	}
}

// processHandler runs one structured command
func processHandler(router *application.CommandRouter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cmd domain.StructuredCommand
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			writeJSON(w, http.StatusBadRequest, domain.Failure("validation failed: malformed request body", ""))
			return
		}
		writeJSON(w, http.StatusOK, router.Process(r.Context(), cmd))
	}
}

// processBatchHandler runs a batch of structured commands concurrently
func processBatchHandler(router *application.CommandRouter) http.HandlerFunc {
	type request struct {
		Commands []domain.StructuredCommand `json:"commands"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request body"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"results": router.ProcessBatch(r.Context(), req.Commands)})
	}
}

// quickCommandHandler expands a shorthand and runs the resulting command
func quickCommandHandler(router *application.CommandRouter) http.HandlerFunc {
	type request struct {
		Name   string         `json:"name"`
		UserID string         `json:"userId"`
		Params map[string]any `json:"params"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, domain.Failure("validation failed: malformed request body", ""))
			return
		}

		cmd := router.CreateQuickCommand(req.Name, req.UserID, req.Params)
		if cmd == nil {
			writeJSON(w, http.StatusNotFound, domain.Failure("unknown quick command: "+req.Name, ""))
			return
		}
		writeJSON(w, http.StatusOK, router.Process(r.Context(), *cmd))
	}
}
