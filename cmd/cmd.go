package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groupbid-backend/internal/clock"
	"groupbid-backend/internal/config"
	"groupbid-backend/internal/handlers"
	"groupbid-backend/internal/middleware"
	"groupbid-backend/internal/repository"
	"groupbid-backend/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// stores bundles one repository per entity so Run can swap the whole
// persistence layer based on config.
type stores struct {
	users    repository.UserRepository
	auctions repository.AuctionRepository
	bids     repository.BidRepository
	groups   repository.GroupRepository
	liveFeed repository.LiveFeedRepository
	settings repository.SettingsRepository
}

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	clk := clock.Real{}

	var st stores
	switch cfg.Database.Driver {
	case "postgres":
		db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := db.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to ping database")
		}
		log.Info().Msg("Database connection established")

		st = stores{
			users:    repository.NewPostgresUserRepository(db),
			auctions: repository.NewPostgresAuctionRepository(db),
			bids:     repository.NewPostgresBidRepository(db),
			groups:   repository.NewPostgresGroupRepository(db),
			liveFeed: repository.NewPostgresLiveFeedRepository(db),
			settings: repository.NewPostgresSettingsRepository(db),
		}
	case "memory":
		mem := repository.NewMemory(clk)
		st = stores{
			users:    mem,
			auctions: mem,
			bids:     mem,
			groups:   mem,
			liveFeed: mem,
			settings: mem,
		}
		log.Info().Msg("Using in-memory store")
	default:
		log.Fatal().Str("driver", cfg.Database.Driver).Msg("Unknown database driver")
	}

	// Initialize services
	userService := services.NewUserService(st.users, st.settings, cfg.JWT.Secret)
	auctionService := services.NewAuctionService(st.auctions, st.bids, clk)
	bidService := services.NewBidService(st.auctions, st.bids)
	groupService := services.NewGroupService(st.groups)
	liveFeedService := services.NewLiveFeedService(st.liveFeed)
	imageService, err := services.NewImageService(cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create image service")
	}
	wsHub := services.NewWSHub()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, auctionService)
	auctionHandler := handlers.NewAuctionHandler(auctionService, wsHub)
	bidHandler := handlers.NewBidHandler(bidService, auctionService, wsHub)
	groupHandler := handlers.NewGroupHandler(groupService)
	liveFeedHandler := handlers.NewLiveFeedHandler(liveFeedService, wsHub)
	imageHandler := handlers.NewImageHandler(imageService)
	wsHandler := handlers.NewWebSocketHandler(wsHub)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes: registration, auction browsing, bid submission
		r.Post("/users", userHandler.Register)
		r.Get("/auctions", auctionHandler.List)
		r.Get("/auctions/{id}", auctionHandler.Get)
		r.Get("/auctions/{id}/bids", bidHandler.ListForAuction)
		r.Post("/bids", bidHandler.Place)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/users/me", userHandler.GetMe)
			r.Post("/users/me/facebook", userHandler.LinkFacebook)
			r.Get("/settings", userHandler.GetSettings)
			r.Put("/settings", userHandler.UpdateSettings)
			r.Get("/dashboard/stats", userHandler.GetDashboardStats)

			r.Post("/auctions", auctionHandler.Create)
			r.Put("/auctions/{id}", auctionHandler.Update)
			r.Delete("/auctions/{id}", auctionHandler.Delete)
			r.Get("/bids", bidHandler.ListMine)

			r.Post("/groups", groupHandler.Register)
			r.Get("/groups", groupHandler.List)
			r.Delete("/groups/{id}", groupHandler.Deactivate)

			r.Post("/live-feed/sessions", liveFeedHandler.CreateSession)
			r.Get("/live-feed/sessions", liveFeedHandler.ListSessions)
			r.Get("/live-feed/sessions/{id}", liveFeedHandler.GetSession)
			r.Post("/live-feed/sessions/{id}/activate", liveFeedHandler.ActivateSession)
			r.Post("/live-feed/sessions/{id}/advance", liveFeedHandler.AdvanceItem)
			r.Delete("/live-feed/sessions/{id}", liveFeedHandler.DeleteSession)
			r.Post("/live-feed/sessions/{id}/items", liveFeedHandler.AddItem)
			r.Put("/live-feed/items/{id}", liveFeedHandler.UpdateItem)
			r.Delete("/live-feed/items/{id}", liveFeedHandler.RemoveItem)

			r.Post("/images/upload-url", imageHandler.GetUploadURL)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
