package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-dock/internal/api/http"
	"github.com/i474232898/weather-dock/internal/config"
	"github.com/i474232898/weather-dock/internal/eventloop"
	"github.com/i474232898/weather-dock/internal/host"
	"github.com/i474232898/weather-dock/internal/panel"
	"github.com/i474232898/weather-dock/internal/scheduler"
	"github.com/i474232898/weather-dock/internal/settings"
	"github.com/i474232898/weather-dock/internal/weather"
	"github.com/i474232898/weather-dock/internal/weather/providers"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web map host with the weather panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func openStore(path string) (settings.Store, error) {
	if path == "" {
		log.Println("INFO: settings kept in memory")
		return settings.NewMemoryStore(), nil
	}
	return settings.NewSQLite(path)
}

func newForecaster(cfg *config.AppConfig) *weather.Service {
	// Shared HTTP client for outbound forecast calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	provider := providers.NewOpenMeteoProvider(httpClient, providers.WithBaseURL(cfg.ForecastAPIURL))
	return weather.NewService(provider)
}

func serve(cfg *config.AppConfig) error {
	store, err := openStore(cfg.SettingsDB)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Main control flow: panel, scheduler and host state live on this loop.
	// It outlives ctx so the panel can be detached during shutdown.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	loop := eventloop.New(64)
	go loop.Run(loopCtx)
	defer func() {
		stopLoop()
		<-loop.Done()
	}()

	webHost := host.NewWebHost()
	ctrl := panel.New(webHost, settings.NewPreferences(store), newForecaster(cfg), loop, panel.Options{
		QuietPeriod:  cfg.DebounceDelay,
		FetchTimeout: cfg.HTTPTimeout,
	})
	loop.Call(ctrl.Attach)
	defer loop.Call(ctrl.Detach)

	refresher := scheduler.NewRefresher(cfg.RefreshInterval, func() {
		loop.Post(ctrl.Refresh)
	})
	if err := refresher.Start(); err != nil {
		return err
	}
	defer refresher.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-dock",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-dock",
			"panel":   webHost.HasAction(panel.ShowActionID),
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{Loop: loop, Host: webHost, Dock: ctrl})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	return nil
}
