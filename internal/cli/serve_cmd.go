package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/taiwoajasa245/verse-courier/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the delivery scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, app)
		},
	}
}

func runServe(ctx context.Context, app *App) error {
	built, err := server.Build(ctx, app.Config, app.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := built.Close(); err != nil {
			app.Logger.Warn("closing resources", zap.Error(err))
		}
	}()

	srv := server.NewServer(built)
	httpServer := srv.HTTPServer()
	srv.StartBackgroundJobs()

	serveErr := make(chan error, 1)
	go func() {
		app.Logger.Info("server started", zap.String("addr", httpServer.Addr))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		app.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = httpServer.Shutdown(shutdownCtx)
	}
	srv.StopBackgroundJobs()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
