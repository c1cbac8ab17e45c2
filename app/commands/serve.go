package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lysyi3m/wiki-api-connector/app/api"
	"github.com/lysyi3m/wiki-api-connector/app/unit"
)

type ServeCommand struct {
	app *App

	Config string `short:"c" long:"config" required:"true" description:"Unit configuration file (YAML)"`
	Port   string `short:"p" long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
}

func (c *ServeCommand) Execute(_ []string) error {
	registry, err := unit.Load(c.Config)
	if err != nil {
		return err
	}

	client, err := c.app.catalogClient()
	if err != nil {
		return err
	}

	var cache api.CacheStatsInterface
	if c.app.cache != nil {
		cache = c.app.cache
	}

	handler := api.NewHandler(registry, client, cache, c.app.cfg.Version)
	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * c.app.cfg.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", c.Port, "units", len(registry.Names()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-c.app.ctx.Done():
		slog.Info("Shutting down server gracefully...")
	case err := <-serverErrChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}
