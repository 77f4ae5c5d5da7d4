package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/i474232898/weather-vibe/internal/api/http"
	"github.com/i474232898/weather-vibe/internal/weather"
)

const serviceName = "weather-vibe"

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			ephemeral, _ := cmd.Flags().GetBool("ephemeral")
			svc, err := a.service(ephemeral)
			if err != nil {
				return err
			}

			addr, _ := cmd.Flags().GetString("addr")
			if addr == "" {
				addr = ":" + a.cfg.Port
			}

			app := newServer(svc, httpapi.Options{Defaults: a.cfg.Session(), TrendLimit: a.cfg.TrendLimit},
				fiberlogger.New(fiberlogger.Config{Output: cmd.ErrOrStderr()}))

			// Wait for termination signal
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				a.logger.Info("listening", "addr", addr, "provider", a.cfg.Provider, "data_dir", a.cfg.DataDir, "ephemeral", ephemeral)
				return app.Listen(addr)
			})
			g.Go(func() error {
				<-gctx.Done()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := app.ShutdownWithContext(shutdownCtx); err != nil {
					a.logger.Error("error during shutdown", "error", err)
					return err
				}
				a.logger.Info("server stopped")
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :PORT)")
	cmd.Flags().Bool("ephemeral", false, "keep favorites and history in memory only")
	return cmd
}

// newServer builds the Fiber app with the health endpoint and API routes.
// middleware runs after panic recovery and before every route.
func newServer(svc *weather.Service, opts httpapi.Options, middleware ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(recover.New())
	for _, m := range middleware {
		app.Use(m)
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	httpapi.RegisterRoutes(app, svc, opts)
	return app
}
