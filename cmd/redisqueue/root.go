package main

import (
	"github.com/go-kit/kit/log"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/frenchie4111/redis-queue/pkg/redisqueue"
	"github.com/frenchie4111/redis-queue/pkg/store"
)

func newRootCommand(l log.Logger) *cobra.Command {
	cfg := &config{}

	rootCmd := &cobra.Command{
		Use:           "redisqueue",
		Short:         "Push to and monitor queues stored in Redis lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.applyEnv(cmd.Flags()); err != nil {
				return err
			}
			return cfg.validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cfg.bindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newPushCommand(cfg))
	rootCmd.AddCommand(newMonitorCommand(cfg, l))
	rootCmd.AddCommand(newServeCommand(cfg, l))

	return rootCmd
}

// openQueue connects to Redis and returns the configured queue along with the
// client, which the caller must close.
func openQueue(cfg *config, l log.Logger) (*redisqueue.Queue, *redis.Client, error) {
	client, err := store.NewRedisClient(cfg.storeOptions())
	if err != nil {
		return nil, nil, errors.Wrap(err, "unable to connect to Redis")
	}
	q, err := redisqueue.New(redisqueue.Config{
		Store:      store.NewRedisAdapter(client),
		QueueName:  cfg.QueueName,
		Mode:       cfg.mode(),
		PopTimeout: cfg.PopTimeout,
		Log:        l,
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return q, client, nil
}
