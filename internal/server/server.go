// Package server runs the preview server: an initial build, a static file
// server over the output directory, and a content watcher that rebuilds on
// change.
package server

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"folio/builder/config"
	"folio/internal/build"
)

// Run is the CLI entry point for `folio serve`.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	host := fs.String("host", "localhost", "host/IP to bind to")
	port := fs.String("port", "8080", "port to listen on")
	configPath := fs.String("config", "folio.yaml", "site configuration file")
	_ = fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	rebuild := func() {
		osFs := afero.NewOsFs()
		b, err := build.New(cfg, osFs, afero.NewBasePathFs(osFs, cfg.OutputDir))
		if err != nil {
			slog.Error("build setup failed", "error", err)
			return
		}
		if err := b.Build(ctx); err != nil {
			slog.Error("rebuild failed", "error", err)
			return
		}
		slog.Info("site rebuilt", "summary", b.Metrics().Summary())
	}
	rebuild()

	watcher, err := NewWatcher([]string{cfg.ContentDir, cfg.ThemeDir, *configPath}, func(Event) {
		rebuild()
	})
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	go watcher.Start(ctx)

	addr := *host + ":" + *port
	httpServer := &http.Server{
		Addr:    addr,
		Handler: fileHandler(cfg.OutputDir),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	fmt.Printf("Serving %s on http://%s\n", cfg.OutputDir, addr)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// fileHandler serves the output directory with a 404.html fallback and
// no-store headers on HTML so edits show up without a hard refresh.
func fileHandler(root string) http.Handler {
	fileServer := http.FileServer(http.Dir(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := filepath.Clean("/" + r.URL.Path)
		fullPath := filepath.Join(root, reqPath)

		info, err := os.Stat(fullPath)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			if content, readErr := os.ReadFile(filepath.Join(root, "404.html")); readErr == nil {
				_, _ = w.Write(content)
			} else {
				_, _ = w.Write([]byte("404 - not found"))
			}
			return
		}

		if info.IsDir() || strings.HasSuffix(reqPath, ".html") {
			w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		} else {
			w.Header().Set("Cache-Control", "public, max-age=60")
		}
		fileServer.ServeHTTP(w, r)
	})
}
