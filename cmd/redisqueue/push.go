package main

import (
	"encoding/json"
	"fmt"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/frenchie4111/redis-queue/pkg/redisqueue"
)

func newPushCommand(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "push <item>",
		Short: "Push one item onto the queue",
		Long: "Push one item onto the queue. In object mode the item is parsed as JSON; " +
			"in raw mode it is pushed as it is.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := parseItem(args[0], cfg.mode())
			if err != nil {
				return err
			}

			q, client, err := openQueue(cfg, log.NewNopLogger())
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := q.Enqueue(cmd.Context(), item)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

// parseItem turns a command line argument into a payload for mode.
func parseItem(arg string, mode redisqueue.Mode) (interface{}, error) {
	if mode == redisqueue.RawMode {
		return arg, nil
	}
	var item interface{}
	if err := json.Unmarshal([]byte(arg), &item); err != nil {
		return nil, errors.Wrap(err, "item is not valid JSON")
	}
	return item, nil
}
