// Command kreuzbergd serves the HTTP surface of spec.md §6.2 over a
// kreuzberg.Core, grounded on the teacher's own daemon entry points
// (internal/cli/indexer_start.go, internal/cli/embed.go): load config,
// build the server, listen, and shut down gracefully on signal.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kreuzberg-go/kreuzberg"
	"github.com/kreuzberg-go/kreuzberg/internal/config"
	"github.com/kreuzberg-go/kreuzberg/internal/httpapi"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	cacheDir, err := defaultResultCacheDir()
	if err != nil {
		return fmt.Errorf("resolving cache directory: %w", err)
	}

	core, err := kreuzberg.New(kreuzberg.WithCache(cacheDir))
	if err != nil {
		return fmt.Errorf("building extraction core: %w", err)
	}
	defer core.Close()

	server := httpapi.NewServer(core, &cfg.Server)

	addr := listenAddr()
	httpServer := &http.Server{Addr: addr, Handler: server.Handler()}

	go func() {
		<-ctx.Done()
		log.Println("shutdown signal received, shutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("http server shutdown error: %v", err)
		}
	}()

	log.Printf("kreuzbergd listening on %s", addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// listenAddr honors KREUZBERG_LISTEN_ADDR, defaulting to :8080.
func listenAddr() string {
	if addr := os.Getenv("KREUZBERG_LISTEN_ADDR"); addr != "" {
		return addr
	}
	return ":8080"
}

// defaultResultCacheDir resolves "<cwd>/.kreuzberg" per spec.md §6.4.
func defaultResultCacheDir() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, ".kreuzberg"), nil
}
