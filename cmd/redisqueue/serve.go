package main

import (
	"context"
	"fmt"
	"net"
	gohttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/frenchie4111/redis-queue/pkg/endpoint"
	"github.com/frenchie4111/redis-queue/pkg/http"
	"github.com/frenchie4111/redis-queue/pkg/metrics"
	"github.com/frenchie4111/redis-queue/pkg/queuesubscribe"
)

// newConsumerID returns an identifier for this process in logs and metrics.
func newConsumerID() string {
	return uuid.New().String()
}

func newServeCommand(cfg *config, l log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Accept items over HTTP and log every message popped from the queue",
		Long: "Serve POST /enqueue, GET /metrics and GET /health, and monitor the queue, " +
			"logging every message.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, l)
		},
	}
}

func serve(ctx context.Context, cfg *config, l log.Logger) error {
	consumerID := newConsumerID()
	l = log.With(l, "CONSUMER", consumerID)

	q, client, err := openQueue(cfg, l)
	if err != nil {
		return err
	}
	defer client.Close()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg, metrics.Labels{ConsumerID: consumerID})
	if err != nil {
		return err
	}

	// Endpoints.
	enqueueEndpoint := endpoint.EnqueueMetrics(m, q.Name())(endpoint.MakeEnqueueEndpoint(q))
	messageEndpoint := endpoint.MakeLogMessageEndpoint(l)

	// Transports.
	mux := gohttp.NewServeMux()
	mux.Handle("/enqueue", http.NewEnqueueHTTPHandler(enqueueEndpoint, q.Mode(), nil))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if err := client.WithContext(r.Context()).Ping().Err(); err != nil {
			w.WriteHeader(gohttp.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(gohttp.StatusOK)
	})
	subscriber := queuesubscribe.MakeMonitorHandler(queuesubscribe.Config{
		Endpoint: messageEndpoint,
		Queue:    q,
		Log:      l,
		Metrics:  m,
	})

	server, err := serveHTTP(cfg.HTTPAddress, mux)
	if err != nil {
		return err
	}

	// Message loops.
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server(ctx, l)
	})
	group.Go(func() error {
		subscriber(ctx)
		return nil
	})
	return group.Wait()
}

func serveHTTP(address string, h gohttp.Handler) (func(context.Context, log.Logger) error, error) {
	// Separate listening and serving to capture listen errors.
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create TCP listener")
	}
	srv := &gohttp.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return func(ctx context.Context, logger log.Logger) error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = logger.Log("LEVEL", "WARN", "MESSAGE", err)
			}
		}()
		_ = logger.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Listening on %s", listener.Addr()))
		err := srv.Serve(listener)
		if err == gohttp.ErrServerClosed {
			return nil
		}
		return errors.WithStack(err)
	}, nil
}
