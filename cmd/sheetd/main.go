package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/mind-engage/mindengage-sheets/internal/api/http"
	auth "github.com/mind-engage/mindengage-sheets/internal/auth/middleware"
	"github.com/mind-engage/mindengage-sheets/internal/config"
	"github.com/mind-engage/mindengage-sheets/internal/content"
	"github.com/mind-engage/mindengage-sheets/internal/db"
	"github.com/mind-engage/mindengage-sheets/internal/exports"
	"github.com/mind-engage/mindengage-sheets/internal/logger"
	"github.com/mind-engage/mindengage-sheets/internal/rbac"
	"github.com/mind-engage/mindengage-sheets/internal/render"
	"github.com/mind-engage/mindengage-sheets/internal/session"
	"github.com/mind-engage/mindengage-sheets/internal/sheet"
	"github.com/mind-engage/mindengage-sheets/internal/storage"
	"github.com/mind-engage/mindengage-sheets/internal/typeset"
)

const sessionIdle = 2 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		lg.Fatal("db open failed", "driver", cfg.DBDriver, "error", err)
	}
	defer dbh.Close()

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		lg.Fatal("blob store", "path", cfg.BlobBasePath, "error", err)
	}

	// --- Sheet pipeline ---
	asm := sheet.Assembler{Builder: sheet.Builder{
		Layout: sheet.Layout{ImagesPerRow: cfg.Sheet.ImagesPerRow, OptionsPerRow: cfg.Sheet.OptionsPerRow},
		Images: sheet.ImageResolver{Cloud: cfg.CloudinaryCloud},
	}}
	rnd := render.New(render.WithColumns(cfg.Sheet.Columns), render.WithWatermark(cfg.Sheet.Watermark))

	var ts typeset.Typesetter = typeset.Unavailable{}
	if cfg.TypesetterURL != "" {
		ts = typeset.NewHTTPTypesetter(cfg.TypesetterURL)
	} else {
		lg.Warn("no TYPESETTER_URL configured; exports will carry raw math")
	}

	sessions := session.NewManager(
		session.WithAssembler(asm),
		session.WithRenderer(rnd),
		session.WithTypesetter(ts),
		session.WithTypesetTimeout(cfg.TypesetTimeout),
		session.WithLogger(lg.With("component", "session")),
	)
	go sweepSessions(ctx, sessions, lg)

	cc := content.NewClient(cfg.ContentAPIURL, cfg.ContentTimeout)
	deps := &api.Deps{
		Sessions:  sessions,
		Assembler: asm,
		Renderer:  rnd,
		Content:   cc,
		Catalog:   cc,
		Blobs:     bs,
		Exports:   exports.NewRepo(dbh),
		Defaults: session.HeaderDefaults{
			InstituteName: cfg.Sheet.InstituteName,
			Duration:      cfg.Sheet.Duration,
			DateLayout:    cfg.Sheet.DateLayout,
		},
		Log: lg.With("component", "api"),
	}

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	api.Mount(r, deps, authSvc, auth.Account{
		Username: cfg.AdminUser,
		PassHash: cfg.AdminPassHash,
		Role:     rbac.RoleAdmin,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	lg.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "typesetter", cfg.TypesetterURL != "")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("server", "error", err)
	}
}

func sweepSessions(ctx context.Context, m *session.Manager, lg *logger.Logger) {
	t := time.NewTicker(10 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := m.Sweep(now.Add(-sessionIdle)); n > 0 {
				lg.Info("idle sessions dropped", "count", n)
			}
		}
	}
}
