package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"watchstate/core/loader"
	"watchstate/core/logger"
	"watchstate/core/middleware/auth"
	"watchstate/core/middleware/rayid"
	"watchstate/core/storage"
	"watchstate/feature/backup"
	"watchstate/feature/history"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the HTTP server",
	Long:  `Starts the HTTP server and loads the history and backup features.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, logg, err := bootstrap()
		if err != nil {
			log.Fatal(err)
		}
		defer logg.Sync()

		if err := cfg.Server.Validate(); err != nil {
			logg.Fatal("Invalid server configuration", zap.Error(err))
		}

		st, err := openStore(ctx, cfg.Database)
		if err != nil {
			logg.Fatal("Failed to open state store", zap.Error(err))
		}

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		mgr := loader.NewManager(logg)
		mgr.Register(history.NewFeature(st, logg))

		// Snapshots are optional; a bad storage config only disables them.
		if client, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Storage unavailable, backup feature disabled", zap.Error(err))
		} else {
			mgr.Register(backup.NewFeature(backup.NewService(client, cfg.Storage, st, logg)))
		}

		// RayID first so every later log line carries it.
		app.Use(rayid.New())
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey, Public: []string{"/health"}}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout())
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
