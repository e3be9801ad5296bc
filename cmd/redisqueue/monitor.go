package main

import (
	"os/signal"
	"syscall"

	"github.com/go-kit/kit/log"
	"github.com/spf13/cobra"

	"github.com/frenchie4111/redis-queue/pkg/endpoint"
	"github.com/frenchie4111/redis-queue/pkg/queuesubscribe"
)

func newMonitorCommand(cfg *config, l log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Print every message popped from the queue as a line of JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			q, client, err := openQueue(cfg, l)
			if err != nil {
				return err
			}
			defer client.Close()

			consumerID := newConsumerID()
			handler := queuesubscribe.MakeMonitorHandler(queuesubscribe.Config{
				Endpoint: endpoint.MakePrintMessageEndpoint(cmd.OutOrStdout()),
				Queue:    q,
				Log:      log.With(l, "CONSUMER", consumerID),
			})
			handler(ctx)
			return nil
		},
	}
}
