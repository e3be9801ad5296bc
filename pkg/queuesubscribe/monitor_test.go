package queuesubscribe_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"

	"github.com/frenchie4111/redis-queue/pkg/endpoint"
	"github.com/frenchie4111/redis-queue/pkg/internal/storemock"
	"github.com/frenchie4111/redis-queue/pkg/queuesubscribe"
	"github.com/frenchie4111/redis-queue/pkg/redisqueue"
)

func TestMakeMonitorHandler(t *testing.T) {
	t.Parallel()

	var (
		count = 3
		s     = storemock.New()
		l     = log.NewNopLogger()

		// Use a weighted semaphore in place of a sync.WaitGroup to not have the
		// test block forever in the event of an error.
		sema = semaphore.NewWeighted(int64(count))

		mu       sync.Mutex
		received []interface{}

		ctx, cancel = context.WithTimeout(context.Background(), 2*time.Second)
	)
	defer cancel()

	q, err := redisqueue.New(redisqueue.Config{Store: s, QueueName: t.Name()})
	require.NoError(t, err)

	f := func(_ context.Context, request interface{}) (response interface{}, err error) {
		defer sema.Release(1)
		mu.Lock()
		received = append(received, request.(endpoint.MessageRequest).Payload)
		mu.Unlock()
		// Failures are logged and do not stop delivery.
		return nil, errors.New("endpoint failure")
	}

	handler := queuesubscribe.MakeMonitorHandler(queuesubscribe.Config{
		Endpoint: f,
		Queue:    q,
		Log:      l,
	})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		handler(ctx)
	}()

	require.NoError(t, sema.Acquire(ctx, int64(count)), "Semaphore acquisition should happen.")
	for i := 0; i < count; i++ {
		_, err := q.Enqueue(ctx, map[string]interface{}{"n": float64(i)})
		require.NoError(t, err, "Enqueue should not error.")
	}

	require.NoError(t, sema.Acquire(ctx, int64(count)), "Every message should reach the endpoint.")
	mu.Lock()
	assert.Equal(t, []interface{}{
		map[string]interface{}{"n": float64(0)},
		map[string]interface{}{"n": float64(1)},
		map[string]interface{}{"n": float64(2)},
	}, received, "Messages should arrive in push order.")
	mu.Unlock()

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Handler should return after cancellation.")
	}
}
