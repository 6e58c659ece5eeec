package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saltmarshlabs/crossgate/board/internal/handlers"
	"github.com/saltmarshlabs/crossgate/board/internal/middleware"
	"github.com/saltmarshlabs/crossgate/board/internal/templates"
	"github.com/saltmarshlabs/crossgate/internal/config"
	"github.com/saltmarshlabs/crossgate/internal/domain/repositories"
	"github.com/saltmarshlabs/crossgate/internal/domain/services"
	"github.com/saltmarshlabs/crossgate/internal/infrastructure/database/memory"
	"github.com/saltmarshlabs/crossgate/internal/infrastructure/database/postgres"
	"github.com/saltmarshlabs/crossgate/internal/pkg/logger"
	"github.com/saltmarshlabs/crossgate/internal/sessionstore"
	"github.com/saltmarshlabs/crossgate/internal/token"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// An empty shared secret means the service would accept tokens
	// signed with an empty key. Refuse to start instead.
	if err := cfg.ValidateBridge(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	globalLogger, err := logger.SetupLogger(logger.Config{
		Level:       logger.ParseLevel(cfg.Logging.Level),
		LogToStderr: true,
		Format:      cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to setup logging: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(globalLogger)

	log := logger.WithComponent(slog.Default(), "board")
	log.Info("starting crossgate board service")

	codec, err := token.NewCodec(cfg.Bridge.Secret)
	if err != nil {
		log.Error("invalid bridge secret", slog.Any("error", err))
		os.Exit(1)
	}

	accountRepo, cleanup, err := buildAccountRepo(cfg, log)
	if err != nil {
		log.Error("failed to set up account storage", slog.Any("error", err))
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	sessions, err := buildSessionStore(cfg, log)
	if err != nil {
		log.Error("failed to set up session store", slog.Any("error", err))
		os.Exit(1)
	}

	accountSvc := services.NewAccountService(accountRepo)

	tmpl, err := templates.Load()
	if err != nil {
		log.Error("failed to load templates", slog.Any("error", err))
		os.Exit(1)
	}

	h := handlers.New(codec, accountSvc, sessions, tmpl, cfg.Board.SessionTTL, log)
	authMw := middleware.NewAuthMiddleware(sessions, accountSvc, log)

	router := createRouter(h, authMw, log)

	log.Info("listening", slog.String("address", cfg.Board.Listen))
	if err := http.ListenAndServe(cfg.Board.Listen, router); err != nil {
		log.Error("failed to start server", slog.Any("error", err))
		os.Exit(1)
	}
}

// buildAccountRepo selects postgres or the in-memory dev store
func buildAccountRepo(cfg *config.Config, log *slog.Logger) (repositories.AccountRepository, func(), error) {
	if cfg.Board.DevMode {
		log.Warn("dev mode: accounts are in-memory and will not survive restarts")
		return memory.NewAccountRepository(), nil, nil
	}

	conn, err := postgres.NewConnection(cfg.Board.Postgres.ConnectionString())
	if err != nil {
		return nil, nil, err
	}
	if err := conn.RunMigrations(); err != nil {
		conn.Close()
		return nil, nil, err
	}

	log.Info("connected to postgres",
		slog.String("host", cfg.Board.Postgres.Host),
		slog.String("database", cfg.Board.Postgres.Database))
	return postgres.NewAccountRepository(conn.DB), func() { conn.Close() }, nil
}

// buildSessionStore selects redis or the in-memory store
func buildSessionStore(cfg *config.Config, log *slog.Logger) (sessionstore.Store, error) {
	if cfg.Board.RedisURL == "" {
		log.Warn("no redis configured, sessions are in-memory")
		return sessionstore.NewMemoryStore(), nil
	}

	store, err := sessionstore.NewRedisStore(context.Background(), cfg.Board.RedisURL)
	if err != nil {
		return nil, err
	}
	log.Info("connected to redis session store")
	return store, nil
}

// createRouter sets up the HTTP router with all routes and middleware
func createRouter(h *handlers.Handler, authMw *middleware.AuthMiddleware, log *slog.Logger) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Bridge entry point and logout surfaces
	router.HandleFunc("/blind-auth", h.BlindAuth).Methods("GET")
	router.HandleFunc("/auth/logout", h.AuthLogout).Methods("GET")
	router.HandleFunc("/api/external-logout", h.ExternalLogout).Methods("POST")

	router.HandleFunc("/", h.Home).Methods("GET")

	return middleware.LogRequest("board", log, authMw.LoadSession(router))
}
