package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"panrgp/internal/adapters/regions"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve regions, exports and metrics over HTTP",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = a.withService(func(cmd *cobra.Command, _ []string) error {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return err
		}
		worker := regions.NewWorker(a.svc, nil)
		worker.Start()
		srv := &http.Server{Handler: a.httpHandler(worker), ReadHeaderTimeout: 10 * time.Second}
		_, _ = fmt.Fprintf(a.stdout, "listening on %s\n", ln.Addr())
		a.logger.Info("http server started", "addr", ln.Addr().String())

		errc := make(chan error, 1)
		go func() { errc <- srv.Serve(ln) }()
		select {
		case err = <-errc:
		case <-cmd.Context().Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			err = srv.Shutdown(shutdownCtx)
		}
		stopCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err = errors.Join(err, worker.Stop(stopCtx))
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().DurationVar(&timeout, "shutdown-timeout", 10*time.Second, "grace period for in-flight requests")
	return cmd
}

// httpHandler routes the region API and the Prometheus endpoint.
func (a *app) httpHandler(exports regions.ExportScheduler) http.Handler {
	api := regions.NewHandler(a.svc)
	api.Exports = exports
	mux := http.NewServeMux()
	mux.Handle("/api/", api)
	mux.Handle("/metrics", a.metrics.Handler())
	return mux
}
