// Package redisqueue implements a queue on top of a list in a shared store.
//
// Producers call Enqueue to push payloads onto the head of a named list. A
// Monitor pops from the tail of the same list in a loop and hands every popped
// payload to its message handlers. Failures never stop a Monitor; they are
// passed to its error handlers and the next pop is issued right away.
package redisqueue

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"

	"github.com/frenchie4111/redis-queue/pkg/store"
)

// DefaultQueueName is used when Config.QueueName is empty.
const DefaultQueueName = "redis_queue"

// Config contains the configuration of a Queue.
type Config struct {
	// Store is the list store the queue lives in. Required.
	Store store.Store
	// QueueName is the key of the list. Defaults to DefaultQueueName.
	QueueName string
	// Mode decides which payloads are accepted. Defaults to ObjectMode.
	Mode Mode
	// PopTimeout bounds each blocking pop of a Monitor. Zero blocks until a
	// message arrives. A timed out pop is not an error; the Monitor just
	// pops again. Cancellation is only observed between pops when the store
	// ignores ctx on a blocking read, as store.RedisAdapter does, so with a
	// zero timeout Monitor.Wait may not return until a message arrives.
	PopTimeout time.Duration
	// Log defaults to a no-op logger.
	Log log.Logger
}

// Queue is a named queue in a store.
//
// A Queue holds no messages itself. It is safe for concurrent use.
type Queue struct {
	s          store.Store
	name       string
	mode       Mode
	popTimeout time.Duration
	log        log.Logger
}

// New returns a Queue for conf.
func New(conf Config) (*Queue, error) {
	if conf.Store == nil {
		return nil, errors.New("redisqueue: nil store")
	}
	if conf.Mode != ObjectMode && conf.Mode != RawMode {
		return nil, errors.Errorf("redisqueue: invalid mode %d", conf.Mode)
	}
	if conf.PopTimeout < 0 {
		return nil, errors.Errorf("redisqueue: negative pop timeout %s", conf.PopTimeout)
	}
	name := conf.QueueName
	if name == "" {
		name = DefaultQueueName
	}
	l := conf.Log
	if l == nil {
		l = log.NewNopLogger()
	}
	return &Queue{
		s:          conf.Store,
		name:       name,
		mode:       conf.Mode,
		popTimeout: conf.PopTimeout,
		log:        l,
	}, nil
}

// Name returns the key of the list backing the queue.
func (q *Queue) Name() string {
	return q.name
}

// Mode returns the payload mode of the queue.
func (q *Queue) Mode() Mode {
	return q.mode
}

// Enqueue pushes item onto the queue and returns the new length of the queue.
//
// A *ShapeMismatchError is returned without touching the store when item does
// not fit the queue mode. Store failures are returned as a *StoreError.
func (q *Queue) Enqueue(ctx context.Context, item interface{}) (int64, error) {
	wire, err := Encode(item, q.mode)
	if err != nil {
		return 0, err
	}
	n, err := q.s.PushLeft(ctx, q.name, wire)
	if err != nil {
		return 0, &StoreError{Op: "push", Queue: q.name, Err: err}
	}
	return n, nil
}

// StartMonitoring creates a Monitor for the queue and starts it.
//
// Handlers registered on the returned Monitor only see events that happen
// after they are registered. Use NewMonitor to register handlers before the
// first pop.
func (q *Queue) StartMonitoring(ctx context.Context) *Monitor {
	return NewMonitor(q).Start(ctx)
}
