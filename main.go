package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/opsdeck/scenario-hub/authenticator"
	"github.com/opsdeck/scenario-hub/cache"
	"github.com/opsdeck/scenario-hub/config"
	"github.com/opsdeck/scenario-hub/controllers"
	"github.com/opsdeck/scenario-hub/database"
	"github.com/opsdeck/scenario-hub/events"
	appmiddleware "github.com/opsdeck/scenario-hub/middleware"
	"github.com/opsdeck/scenario-hub/models"
	"github.com/opsdeck/scenario-hub/repositories"
	"github.com/opsdeck/scenario-hub/security"
	"github.com/opsdeck/scenario-hub/services"
	"github.com/opsdeck/scenario-hub/storage"

	applogging "github.com/opsdeck/scenario-hub/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applogging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := database.InitializeDatabase(cfg.DatabasePath); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.CloseDB()

	repos := repositories.NewRepositories(database.GetDB())

	files, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Fatal("failed to initialize file store", zap.Error(err))
	}

	var statsCache *cache.StatsCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		statsCache = cache.NewStatsCache(client, cfg.StatsCacheTTL)
		logger.Info("stats cache enabled", zap.String("redis", cfg.RedisURL))
	}

	var publisher events.Publisher = events.NewNopPublisher()
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.Fatal("failed to initialize kafka publisher", zap.Error(err))
		}
		publisher = kafkaPublisher
		logger.Info("transition publisher enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	srvs := services.NewServices(repos, services.Deps{
		Files:      files,
		Publisher:  publisher,
		StatsCache: statsCache,
		Logger:     logger,
	})

	signer, err := buildSigner(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize token signer", zap.Error(err))
	}

	ctrl := controllers.NewControllers(srvs, signer, logger)
	ctrl.Auth.SetTokenTTL(cfg.JWTTokenTTL)

	var oidcProvider authenticator.Provider
	if cfg.OIDCEnabled() {
		oidcProvider, err = authenticator.NewOpenIDProvider(authenticator.OpenIDConfig{
			IssuerURL:    cfg.OIDCIssuerURL,
			ClientID:     cfg.OIDCClientID,
			ClientSecret: cfg.OIDCClientSecret,
			CallbackURL:  cfg.OIDCCallbackURL,
		})
		if err != nil {
			logger.Fatal("failed to initialize OIDC provider", zap.Error(err))
		}
	} else {
		logger.Warn("OIDC is not configured, only token login is available")
	}

	r, err := setupRouter(cfg, ctrl, oidcProvider, signer, repos, logger)
	if err != nil {
		logger.Fatal("failed to setup router", zap.Error(err))
	}

	logger.Info("scenario hub starting",
		zap.String("port", cfg.Port),
		zap.String("database", cfg.DatabasePath),
		zap.String("uploads", cfg.UploadDir))

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

// buildSigner uses the configured RSA keypair, falling back to an ephemeral
// in-memory keypair for development
func buildSigner(cfg config.Config, logger *zap.Logger) (*security.JWTSigner, error) {
	if cfg.JWTPrivateKeyPEM != "" && cfg.JWTPublicKeyPEM != "" {
		return security.NewJWTSigner(cfg.JWTPrivateKeyPEM, cfg.JWTPublicKeyPEM)
	}
	logger.Warn("no JWT keypair configured, issuing tokens with an ephemeral key")
	return security.NewEphemeralJWTSigner()
}

// setupRouter configures all routes
func setupRouter(
	cfg config.Config,
	ctrl *controllers.Controllers,
	oidcProvider authenticator.Provider,
	signer *security.JWTSigner,
	repos *repositories.Repositories,
	logger *zap.Logger,
) (*chi.Mux, error) {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(chimiddleware.Compress(5))

	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "scenariohub_session",
		Secure:         cfg.UseHTTPS,
		Gclifetime:     int64(cfg.SessionLifetime.Seconds()),
		Maxlifetime:    int64(cfg.SessionLifetime.Seconds()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	// PUBLIC ROUTES (no authentication required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status": "healthy", "service": "scenario-hub"}`)
	})

	if oidcProvider != nil {
		r.Get("/login", ctrl.Auth.Login(oidcProvider))
		r.Get("/callback", ctrl.Auth.Callback(oidcProvider))
	}
	r.Get("/logout", ctrl.Auth.Logout)
	r.Post("/api/auth/login", ctrl.Auth.TokenLogin)

	// PROTECTED ROUTES (authentication required)
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.RequireAuth(signer))
		r.Use(appmiddleware.ActivityLogger(repos.Activity, logger.Named("activity")))

		r.Get("/api/auth/me", ctrl.Auth.Me)

		r.Get("/api/dashboard/stats", ctrl.Dashboard.RequestStats)

		r.Route("/api/lookups", func(r chi.Router) {
			r.Get("/statuses", ctrl.Lookup.Statuses)
			r.Get("/feedback-categories", ctrl.Lookup.FeedbackCategories)
			r.Get("/file-kinds", ctrl.Lookup.FileKinds)
			r.Get("/roles", ctrl.Lookup.Roles)
		})

		r.Route("/api/requests", func(r chi.Router) {
			r.Get("/", ctrl.Request.List)
			r.Post("/", ctrl.Request.Create)
			r.Get("/{id}", ctrl.Request.Get)
			r.Put("/{id}", ctrl.Request.Update)
			r.Post("/{id}/transition", ctrl.Request.Transition)
			r.Post("/{id}/comments", ctrl.Request.AddComment)
			r.Post("/{id}/files/{kind}", ctrl.Request.UploadFile)
			r.Get("/{id}/files/{fileID}/content", ctrl.Request.DownloadFile)
			r.Get("/{id}/files/{fileID}/preview", ctrl.Request.PreviewFile)
		})

		r.Route("/api/domains", func(r chi.Router) {
			r.Get("/", ctrl.Domain.List)
			r.Get("/{id}", ctrl.Domain.Get)
		})

		r.Route("/api/scenarios", func(r chi.Router) {
			r.Get("/", ctrl.Scenario.List)
			r.Get("/{id}", ctrl.Scenario.Get)
			r.Get("/{id}/playboards", ctrl.Scenario.ListPlayboards)
		})

		r.Route("/api/playboards", func(r chi.Router) {
			r.Get("/{id}", ctrl.Scenario.GetPlayboard)
		})

		r.Route("/api/feedback", func(r chi.Router) {
			r.Get("/", ctrl.Feedback.List)
			r.Post("/", ctrl.Feedback.Submit)
		})

		// Editor routes: configuration changes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireRole(models.RoleEditor, models.RoleAdmin))

			r.Post("/api/domains", ctrl.Domain.Create)
			r.Put("/api/domains/{id}", ctrl.Domain.Update)

			r.Post("/api/scenarios", ctrl.Scenario.Create)
			r.Put("/api/scenarios/{id}", ctrl.Scenario.Update)

			r.Post("/api/playboards", ctrl.Scenario.CreatePlayboard)
			r.Put("/api/playboards/{id}", ctrl.Scenario.UpdatePlayboard)
			r.Delete("/api/playboards/{id}", ctrl.Scenario.DeletePlayboard)
		})

		// Admin routes: user administration, lists and logs
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.RequireRole(models.RoleAdmin))

			r.Route("/api/users", func(r chi.Router) {
				r.Get("/", ctrl.User.List)
				r.Post("/", ctrl.User.Create)
				r.Get("/{id}", ctrl.User.Get)
				r.Put("/{id}", ctrl.User.Update)
				r.Delete("/{id}", ctrl.User.Deactivate)
			})

			r.Route("/api/groups", func(r chi.Router) {
				r.Get("/", ctrl.User.ListGroups)
				r.Post("/", ctrl.User.CreateGroup)
				r.Get("/{id}", ctrl.User.GetGroup)
				r.Put("/{id}", ctrl.User.UpdateGroup)
				r.Delete("/{id}", ctrl.User.DeleteGroup)
			})

			r.Route("/api/distribution-lists", func(r chi.Router) {
				r.Get("/", ctrl.Distribution.List)
				r.Post("/", ctrl.Distribution.Create)
				r.Get("/{id}", ctrl.Distribution.Get)
				r.Put("/{id}", ctrl.Distribution.Update)
				r.Delete("/{id}", ctrl.Distribution.Delete)
			})

			r.Route("/api/logs", func(r chi.Router) {
				r.Get("/activity", ctrl.Log.Activity)
				r.Get("/errors", ctrl.Log.Errors)
			})
		})
	})

	return r, nil
}
