package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/chefserge/chefsite-go/internal/config"
	"github.com/chefserge/chefsite-go/internal/handler"
	"github.com/chefserge/chefsite-go/internal/middleware"
	"github.com/chefserge/chefsite-go/internal/render"
	"github.com/chefserge/chefsite-go/internal/service"
	"github.com/chefserge/chefsite-go/internal/session"
	"github.com/chefserge/chefsite-go/internal/store"
	"github.com/chefserge/chefsite-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "chefsite - chef's blog, menus, and inquiries\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SESSION_SECRET     Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DATABASE_URL       Postgres DSN; empty selects SQLite\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DB_PATH            SQLite database path (default: ./data/chefsite.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PORT               Server port (default: 5001)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ENV                Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  RESEND_API_KEY     Resend API key for inquiry notifications (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CONTACT_TO_EMAIL   Inbox that receives inquiry notifications\n")
		_, _ = fmt.Fprintf(os.Stderr, "  DO_SEED            Seed the default admin account (default: false)\n")
	}

	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("chefsite %s (commit: %s)\n", appVersion, appGitCommit)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Open database: Postgres when DATABASE_URL is set, SQLite otherwise
	var db *sql.DB
	dialect := store.DialectSQLite
	if cfg.UsePostgres() {
		dialect = store.DialectPostgres
		slog.Info("initializing database", "backend", "postgres", "host", cfg.DatabaseHost())
		db, err = store.OpenPostgres(cfg.DatabaseDSN(), store.DefaultDBConfig(cfg.DBPoolRecycle))
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		slog.Info("initializing database", "backend", "sqlite", "path", cfg.DBPath)
		db, err = store.OpenSQLite(cfg.DBPath, store.DefaultDBConfig(cfg.DBPoolRecycle))
	}
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)
	store.SetDialect(dialect)

	slog.Info("running database migrations")
	if err := store.Migrate(db, dialect); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Session manager backed by the sessions table
	sessionManager := session.New(db, dialect, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Template renderer from the embedded templates
	renderer, err := render.New(render.Config{
		TemplatesFS:    web.Templates(),
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Services
	mailer := service.NewMailer(cfg.ResendAPIKey, cfg.ContactFromEmail)
	if !mailer.Enabled() {
		slog.Warn("mailer disabled: inquiry notifications will not be sent")
	}
	uploads, err := service.NewUploadService(cfg.UploadsDir)
	if err != nil {
		return fmt.Errorf("initializing upload service: %w", err)
	}

	// Handlers
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager)
	blogHandler := handler.NewBlogHandler(db, renderer, sessionManager)
	pagesHandler := handler.NewPagesHandler(renderer)
	catalogHandler := handler.NewCatalogHandler(db, renderer, uploads)
	contactHandler := handler.NewContactHandler(db, renderer, mailer, cfg)
	healthHandler := handler.NewHealthHandler(db, cfg)

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(sessionManager.LoadAndSave)

	csrfConfig := middleware.DefaultCSRFConfig(
		[]byte(cfg.SessionSecret), cfg.IsDevelopment(), strconv.Itoa(cfg.ServerPort))
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized")

	// Rate limit form POSTs per IP: auth and contact
	formRateLimiter := middleware.NewGlobalRateLimiter(2.0, 5)

	// Health probes
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/health", healthHandler.Health)

	// Public routes: the page adapts to a logged-in visitor but never
	// requires one
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalLoadUser(sessionManager, db))
		r.Use(csrfMiddleware)

		r.Get(handler.RouteRoot, blogHandler.Home)
		r.Get(handler.RoutePost, blogHandler.PostDetail)
		r.Post(handler.RoutePostComments, blogHandler.CreateComment)

		r.Get(handler.RouteAbout, pagesHandler.About)
		r.Get(handler.RouteServices, pagesHandler.Services)

		r.Get(handler.RouteMenus, catalogHandler.ListMenus)
		r.Get(handler.RouteMenuSlug, catalogHandler.MenuDetail)

		r.Get(handler.RouteContact, contactHandler.ContactForm)
		r.With(formRateLimiter.HTMLMiddleware()).Post(handler.RouteContact, contactHandler.SubmitContact)
	})

	// Auth routes
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(formRateLimiter.HTMLMiddleware())

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteRegister, authHandler.RegisterForm)
		r.Post(handler.RouteRegister, authHandler.Register)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Blog management keeps its legacy top-level URLs but is admin only
	r.Group(func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(middleware.RequireAdmin())

		r.Get(handler.RouteNewPost, blogHandler.NewPostForm)
		r.Post(handler.RouteNewPost, blogHandler.CreatePost)
		r.Get(handler.RouteEditPost, blogHandler.EditPostForm)
		r.Post(handler.RouteEditPost, blogHandler.UpdatePost)
		r.Post(handler.RouteDeletePost, blogHandler.DeletePost)
	})

	// Admin console
	r.Route("/admin", func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(middleware.RequireAdmin())

		r.Get(handler.RouteAdminMenus, catalogHandler.AdminMenus)
		r.Get(handler.RouteAdminMenus+"/new", catalogHandler.NewMenuForm)
		r.Post(handler.RouteAdminMenus+"/new", catalogHandler.CreateMenu)
		r.Get(handler.RouteAdminMenus+"/{id}/edit", catalogHandler.EditMenuForm)
		r.Post(handler.RouteAdminMenus+"/{id}/edit", catalogHandler.UpdateMenu)
		r.Post(handler.RouteAdminMenus+"/{id}/delete", catalogHandler.DeleteMenu)
		r.Post(handler.RouteAdminMenus+"/{id}/toggle", catalogHandler.ToggleMenu)
		r.Get(handler.RouteAdminMenus+"/{id}/sections/new", catalogHandler.NewSectionForm)
		r.Post(handler.RouteAdminMenus+"/{id}/sections/new", catalogHandler.CreateSection)

		r.Get("/sections/{id}/edit", catalogHandler.EditSectionForm)
		r.Post("/sections/{id}/edit", catalogHandler.UpdateSection)
		r.Post("/sections/{id}/delete", catalogHandler.DeleteSection)
		r.Get("/sections/{id}/items/new", catalogHandler.NewItemForm)
		r.Post("/sections/{id}/items/new", catalogHandler.CreateItem)

		r.Get("/items/{id}/edit", catalogHandler.EditItemForm)
		r.Post("/items/{id}/edit", catalogHandler.UpdateItem)
		r.Post("/items/{id}/delete", catalogHandler.DeleteItem)

		r.Get(handler.RouteAdminMessages, contactHandler.AdminMessages)
		r.Post(handler.RouteAdminMessages+"/{id}/toggle", contactHandler.ToggleMessageRead)
		r.Post(handler.RouteAdminMessages+"/{id}/delete", contactHandler.DeleteMessage)
	})

	// Uploaded images from disk, everything else from the embedded assets.
	// The uploads route is the more specific pattern, so chi matches it
	// before the embedded one.
	r.Handle("/static/uploads/*",
		http.StripPrefix("/static/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	r.Handle("/static/*",
		http.StripPrefix("/static/", http.FileServerFS(web.Static())))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		renderer.NotFound(w, req, middleware.GetUser(req))
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
