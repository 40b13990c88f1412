package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/guard"
	"github.com/coursedesk/sessiongate/logger"
	promexport "github.com/coursedesk/sessiongate/metrics/export/prometheus"
	"github.com/coursedesk/sessiongate/middleware"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd runs the guarded route table over HTTP.
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the guarded route table",
		Long: "Serve the top-level routes behind the session guard, the session API and " +
			"Prometheus metrics. The session resolves in the background; routes answer " +
			"503 until it does.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().String("api-prefix", "/session", "mount point of the session API")
	cmd.Flags().Bool("metrics", true, "expose /metrics")
	cmd.Flags().Bool("embedded-redis", false, "keep the session in an in-process redis")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.FromContext(ctx)

	if embedded, _ := cmd.Flags().GetBool("embedded-redis"); embedded {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start embedded redis: %w", err)
		}
		defer mr.Close()

		cfg, err := configFrom(ctx)
		if err != nil {
			return err
		}
		cfg.Store.Backend = sessiongate.BackendRedis
		cfg.Store.RedisAddr = mr.Addr()
		cfg.Store.RedisPassword = ""
		cfg.Store.RedisDB = 0
		ctx = withConfig(ctx, cfg)
		log.Info("Using embedded redis", "addr", mr.Addr())
	}

	notifier := sessiongate.NotifierFunc(func(_ context.Context, n sessiongate.Notification) {
		log.Info("Notification", "level", n.Level.String(), "message", n.Message)
	})
	// Redirects are issued by the HTTP middleware.
	mgr, err := buildManager(ctx, sessiongate.NoopNavigator, notifier)
	if err != nil {
		return err
	}
	defer mgr.Close()

	e := newEcho()
	middleware.Mount(e, guard.NewController(mgr), guard.NewGate(mgr), middleware.Screens{})
	prefix, _ := cmd.Flags().GetString("api-prefix")
	middleware.RegisterSessionAPI(e, prefix, mgr)
	if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics {
		exp, err := promexport.NewExporter(mgr)
		if err != nil {
			return err
		}
		e.GET("/metrics", echo.WrapHandler(exp.Handler()))
	}

	mgr.Start(ctx)

	addr, _ := cmd.Flags().GetString("addr")
	log.Info("Serving", "addr", addr, "api", prefix)
	return runEcho(ctx, e, addr)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

// runEcho serves e until ctx ends, then shuts it down.
func runEcho(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
