// Command redisqueue pushes to and monitors queues stored in Redis lists.
package main

import (
	"context"
	"os"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

func main() {
	l := log.NewJSONLogger(os.Stderr)
	cmd := newRootCommand(l)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if errors.Cause(err) != context.Canceled {
			_ = l.Log("LEVEL", "ERROR", "MESSAGE", err)
		}
		os.Exit(1)
	}
}
