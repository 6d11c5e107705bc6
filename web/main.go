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
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devilmonastery/novel/internal/client"
	"github.com/devilmonastery/novel/internal/pkg/idgen"
	"github.com/devilmonastery/novel/internal/pkg/logger"
	"github.com/devilmonastery/novel/web/internal/config"
	"github.com/devilmonastery/novel/web/internal/handlers"
	"github.com/devilmonastery/novel/web/internal/middleware"
	"github.com/devilmonastery/novel/web/internal/render"
	"github.com/devilmonastery/novel/web/internal/session"
)

// setupWebLogging configures the global logger for the web service
func setupWebLogging(logLevel, logFormat string) error {
	cfg := logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogToStderr: true, // Web service always logs to stderr
		Format:      logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	// Set as default logger so all slog.Info/Warn/Error calls use our configured logger
	slog.SetDefault(globalLogger)

	return nil
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging (must be done before any logging calls)
	if err = setupWebLogging(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	log := slog.Default().With("component", "web")
	log.Info("starting novel web service", slog.String("version", render.Version))

	if err := idgen.Initialize(cfg.Server.NodeID); err != nil {
		log.Error("failed to initialize request ID generator", slog.Any("error", err))
		os.Exit(1)
	}

	templates, err := render.LoadTemplates(cfg.Templates.Path, cfg.Display.Timezone)
	if err != nil {
		log.Error("failed to load templates", slog.Any("error", err))
		os.Exit(1)
	}
	render.LogTemplateNames(templates)

	sessionMgr, err := session.NewManager(loadSessionSecret(cfg, log), session.Options{
		MaxAge: cfg.Session.MaxAgeDays * 24 * 60 * 60,
		Secure: cfg.Session.SecureCookie,
	})
	if err != nil {
		log.Error("failed to initialize sessions", slog.Any("error", err))
		os.Exit(1)
	}

	authMw := middleware.NewAuthMiddleware(sessionMgr, log)

	var clientOpts []client.Option
	if cfg.API.UserAgent != "" {
		clientOpts = append(clientOpts, client.WithUserAgent(cfg.API.UserAgent))
	}
	h := handlers.New(cfg.API.BasePath, sessionMgr, templates, cfg.Display, slog.Default(), clientOpts...)

	router := createRouter(h, authMw)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("listening",
		slog.String("address", addr),
		slog.String("api_base_path", cfg.API.BasePath))

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Error("failed to start server", slog.Any("error", err))
		os.Exit(1)
	}
}

// loadSessionSecret decodes the configured secret (SESSION_SECRET overrides
// the file). Without one a random secret is used and sessions die with the
// process.
func loadSessionSecret(cfg *config.WebServerConfig, log *slog.Logger) []byte {
	if cfg.Session.Secret != "" {
		secret, err := base64.StdEncoding.DecodeString(cfg.Session.Secret)
		if err == nil && len(secret) >= 32 {
			log.Info("using configured session secret (sessions will persist across restarts)")
			return secret
		}
		log.Warn("configured session secret is unusable, falling back to a random one",
			slog.Bool("decoded", err == nil),
			slog.Int("min_bytes", 32))
	}

	log.Warn("no session secret configured, generating random one (sessions won't persist)")
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		log.Error("failed to generate session secret", slog.Any("error", err))
		os.Exit(1)
	}
	return secret
}

// createRouter sets up the HTTP router with all routes and middleware
func createRouter(h *handlers.Handler, authMw *middleware.AuthMiddleware) http.Handler {
	router := mux.NewRouter()
	router.Use(middleware.Instrument)

	// Static files with version path: /static/{version}/...
	// Strip /static/{version}/ prefix and serve from web/static/
	staticDir := http.Dir("web/static")
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Unversioned paths (the cover placeholder) are served as-is
		parts := strings.SplitN(r.URL.Path, "/", 2)
		if len(parts) == 2 {
			r.URL.Path = "/" + parts[1]
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		http.FileServer(staticDir).ServeHTTP(w, r)
	})))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s"}`, render.Version)
	}).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public routes (no auth required)
	router.HandleFunc("/", h.Home).Methods("GET")
	router.HandleFunc("/login", h.LoginPage).Methods("GET")
	router.HandleFunc("/login", h.LoginSubmit).Methods("POST")
	router.HandleFunc("/register", h.RegisterPage).Methods("GET")
	router.HandleFunc("/register", h.RegisterSubmit).Methods("POST")
	router.HandleFunc("/logout", h.Logout).Methods("GET", "POST")
	router.HandleFunc("/stories/{id:[0-9]+}", h.StoryPage).Methods("GET")
	router.HandleFunc("/stories/{id:[0-9]+}/chapters/{chapterID:[0-9]+}", h.ChapterPage).Methods("GET")

	// Reader library (auth required)
	router.Handle("/favorites", authMw.RequireAuth(http.HandlerFunc(h.FavoritesPage))).Methods("GET")
	router.Handle("/favorites/{id:[0-9]+}", authMw.RequireAuth(http.HandlerFunc(h.AddFavorite))).Methods("POST")
	router.Handle("/favorites/{id:[0-9]+}/remove", authMw.RequireAuth(http.HandlerFunc(h.RemoveFavorite))).Methods("POST")
	router.Handle("/history", authMw.RequireAuth(http.HandlerFunc(h.HistoryPage))).Methods("GET")
	router.Handle("/stories/{id:[0-9]+}/rating", authMw.RequireAuth(http.HandlerFunc(h.RateStory))).Methods("POST")
	router.Handle("/stories/{id:[0-9]+}/comments", authMw.RequireAuth(http.HandlerFunc(h.PostComment))).Methods("POST")

	return middleware.LogRequest(router)
}
