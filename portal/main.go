package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saltmarshlabs/crossgate/internal/config"
	"github.com/saltmarshlabs/crossgate/internal/pkg/logger"
	"github.com/saltmarshlabs/crossgate/internal/token"
	"github.com/saltmarshlabs/crossgate/portal/internal/handlers"
	"github.com/saltmarshlabs/crossgate/portal/internal/middleware"
	"github.com/saltmarshlabs/crossgate/portal/internal/session"
	"github.com/saltmarshlabs/crossgate/portal/internal/templates"
	"github.com/saltmarshlabs/crossgate/portal/internal/userdir"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// An empty shared secret means every token this service signs
	// would verify against an empty key. Refuse to start instead.
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

	log := logger.WithComponent(slog.Default(), "portal")
	log.Info("starting crossgate portal service")

	codec, err := token.NewCodec(cfg.Bridge.Secret)
	if err != nil {
		log.Error("invalid bridge secret", slog.Any("error", err))
		os.Exit(1)
	}
	builder := token.NewBuilder(cfg.Bridge.System, cfg.Bridge.TokenTTL)

	users := userdir.NewDirectory(cfg.Portal.Users)
	log.Info("loaded user directory", slog.Int("users", len(cfg.Portal.Users)))

	sessionKey, err := sessionSecret(cfg, log)
	if err != nil {
		log.Error("invalid session secret", slog.Any("error", err))
		os.Exit(1)
	}
	sessions := session.NewManager(sessionKey)

	tmpl, err := templates.Load()
	if err != nil {
		log.Error("failed to load templates", slog.Any("error", err))
		os.Exit(1)
	}

	boardURL := strings.TrimRight(cfg.Bridge.BoardURL, "/")
	h := handlers.New(users, sessions, builder, codec, boardURL, tmpl, log)

	router := createRouter(h, log)

	log.Info("listening", slog.String("address", cfg.Portal.Listen))
	if err := http.ListenAndServe(cfg.Portal.Listen, router); err != nil {
		log.Error("failed to start server", slog.Any("error", err))
		os.Exit(1)
	}
}

// sessionSecret decodes the configured cookie key, or generates an
// ephemeral one. Ephemeral keys invalidate portal logins on restart;
// the bridge secret itself is never used for cookies.
func sessionSecret(cfg *config.Config, log *slog.Logger) ([]byte, error) {
	if cfg.Portal.SessionSecret != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.Portal.SessionSecret)
		if err != nil {
			return nil, fmt.Errorf("portal.session_secret is not valid base64: %w", err)
		}
		return key, nil
	}

	log.Warn("no portal.session_secret configured, sessions will not survive restarts")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate session key: %w", err)
	}
	return key, nil
}

// createRouter sets up the HTTP router with all routes and middleware
func createRouter(h *handlers.Handler, log *slog.Logger) http.Handler {
	router := mux.NewRouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.HandleFunc("/login", h.LoginForm).Methods("GET")
	router.HandleFunc("/login", h.Login).Methods("POST")
	router.HandleFunc("/enter", h.Enter).Methods("GET")
	router.HandleFunc("/logout", h.Logout).Methods("GET")

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}).Methods("GET")

	return middleware.LogRequest(log, router)
}
