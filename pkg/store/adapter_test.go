package store_test

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/frenchie4111/redis-queue/pkg/store"
	"github.com/frenchie4111/redis-queue/pkg/internal/redistest"
)

var seedOnce sync.Once

func randString() string {
	seedOnce.Do(func() { rand.Seed(time.Now().UnixNano()) })
	i := rand.Int()
	return strconv.Itoa(i)
}

func TestRedisConnection(t *testing.T) {
	t.Parallel()
	client := redistest.Connect(t)
	assert.NoError(t, client.Ping().Err(), "Should be no error with Redis connection.")
}

func TestPushThenPop(t *testing.T) {
	t.Parallel()
	adapter := store.NewRedisAdapter(redistest.Connect(t))
	key := t.Name() + randString()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := adapter.PushLeft(ctx, key, `{"test":"v"}`)
	require.NoError(t, err, "Push should succeed.")
	assert.EqualValues(t, 1, n, "List should have one element.")

	n, err = adapter.PushLeft(ctx, key, "second")
	require.NoError(t, err, "Push should succeed.")
	assert.EqualValues(t, 2, n, "List should have two elements.")

	reply, err := adapter.BlockingPopRight(ctx, key, 0)
	require.NoError(t, err, "Pop should succeed.")
	assert.Equal(t, []string{key, `{"test":"v"}`}, reply, "First pushed value should be popped first.")

	reply, err = adapter.BlockingPopRight(ctx, key, 0)
	require.NoError(t, err, "Pop should succeed.")
	assert.Equal(t, []string{key, "second"}, reply, "Second pushed value should be popped second.")
}

func TestPopTimeout(t *testing.T) {
	t.Parallel()
	adapter := store.NewRedisAdapter(redistest.Connect(t))
	key := t.Name() + randString()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reply, err := adapter.BlockingPopRight(ctx, key, time.Second)
	assert.NoError(t, err, "A timed out pop should not be an error.")
	assert.Nil(t, reply, "A timed out pop should have no reply.")
}

func TestStoreErrors(t *testing.T) {
	t.Parallel()
	server, client := redistest.Server(t)
	adapter := store.NewRedisAdapter(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	server.SetError("ERR injected failure")
	_, err := adapter.PushLeft(ctx, "errors", "value")
	assert.Error(t, err, "Push should fail while the server returns errors.")
	_, err = adapter.BlockingPopRight(ctx, "errors", time.Second)
	assert.Error(t, err, "Pop should fail while the server returns errors.")

	server.SetError("")
	_, err = adapter.PushLeft(ctx, "errors", "value")
	assert.NoError(t, err, "Push should succeed once the server recovers.")
}

func TestCompetingConsumers(t *testing.T) {
	adapter := store.NewRedisAdapter(redistest.Connect(t))
	key := t.Name() + randString()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	group, ctx := errgroup.WithContext(ctx)

	// Wait on a channel to "burst" all requests as fast as possible.
	var ready sync.WaitGroup
	ready.Add(11)
	start := make(chan struct{})

	found := make(map[string]int)
	var foundMu sync.Mutex

	group.Go(func() error {
		ready.Done()
		<-start
		for i := 0; i < 10; i++ {
			if _, err := adapter.PushLeft(ctx, key, strconv.Itoa(i)); err != nil {
				return err
			}
		}
		return nil
	})

	for i := 0; i < 10; i++ {
		group.Go(func() error {
			ready.Done()
			<-start
			reply, err := adapter.BlockingPopRight(ctx, key, 0)
			if err != nil {
				return err
			}
			foundMu.Lock()
			found[reply[1]]++
			foundMu.Unlock()
			return nil
		})
	}

	ready.Wait()
	close(start)
	err := group.Wait()
	require.NoError(t, err, "Sending and receiving values should not error.")

	for i := 0; i < 10; i++ {
		iStr := strconv.Itoa(i)
		require.Equal(t, 1, found[iStr], "Value %s should be popped exactly once.", iStr)
	}
}
