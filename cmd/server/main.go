package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/studio/backend/internal/config"
	"github.com/studio/backend/internal/handler"
	"github.com/studio/backend/internal/logging"
	"github.com/studio/backend/internal/repository"
	"github.com/studio/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("INFO", "json")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logging.Fatal("failed to create upload dir", "dir", cfg.UploadDir, "error", err)
	}

	contactRepo, err := repository.Open(context.Background(), cfg.StoreBackend, cfg.StoreTarget())
	if err != nil {
		logging.Fatal("failed to open contact store", "backend", cfg.StoreBackend, "error", err)
	}
	defer func() {
		if err := contactRepo.Close(); err != nil {
			slog.Error("close contact store", "error", err)
		}
	}()

	contactService := service.NewContactService(contactRepo)

	h := handler.New(cfg.ServiceName, cfg.CORSOrigin)
	contactHandler := handler.NewContactHandler(contactService)
	staticHandler := handler.NewStaticHandler(os.DirFS(cfg.StaticDir), hiddenFiles(cfg)...)

	mux := handler.NewRouter(h, contactHandler, staticHandler)

	var root http.Handler = mux
	root = handler.MaxBody(cfg.MaxBodyBytes)(root)
	root = h.CORS(root)
	root = handler.SecurityHeaders(root)
	root = handler.Recover(root)
	root = handler.RequestLogger(root)
	root = handler.RequestID(root)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      root,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening",
			"addr", server.Addr,
			"service", cfg.ServiceName,
			"store", cfg.StoreBackend,
			"static_dir", cfg.StaticDir,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

// hiddenFiles lists store files that live under the static root so they are
// never served. Paths are compared in absolute form.
func hiddenFiles(cfg config.Config) []string {
	root, err := filepath.Abs(cfg.StaticDir)
	if err != nil {
		return nil
	}
	var hidden []string
	for _, p := range []string{cfg.ContactsFile, cfg.BoltPath, ".env"} {
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		hidden = append(hidden, filepath.ToSlash(rel))
	}
	return hidden
}
