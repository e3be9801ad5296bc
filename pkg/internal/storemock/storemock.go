package storemock

import (
	"context"
	"sync"
	"time"

	"github.com/frenchie4111/redis-queue/pkg/store"
)

// Ensure StoreMock implements store.Store.
var _ store.Store = (*StoreMock)(nil)

// StoreMock is a mock implementation of the store.Store type.
//
// Each key is a buffered channel, which gives the same first in, first out
// order as pushing left and popping right. Intended for testing only.
type StoreMock struct {
	Data *sync.Map

	mu       sync.Mutex
	pushErr  error
	scripted map[string]chan Reply
	pushes   int
	pops     int
}

// Reply is a scripted result for BlockingPopRight.
type Reply struct {
	Values []string
	Err    error
}

// New returns a new StoreMock.
func New() *StoreMock {
	return &StoreMock{
		Data:     new(sync.Map),
		scripted: make(map[string]chan Reply),
	}
}

func (s *StoreMock) getChan(key string) chan string {
	var v interface{}
	var ok bool
	v, ok = s.Data.Load(key)
	if !ok {
		c := make(chan string, 100)
		v, _ = s.Data.LoadOrStore(key, c)
	}
	return v.(chan string)
}

func (s *StoreMock) getScripted(key string) chan Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.scripted[key]
	if !ok {
		c = make(chan Reply, 100)
		s.scripted[key] = c
	}
	return c
}

// FailPushes makes every following PushLeft return err. A nil err restores
// normal behaviour.
func (s *StoreMock) FailPushes(err error) {
	s.mu.Lock()
	s.pushErr = err
	s.mu.Unlock()
}

// Script queues a reply that the next BlockingPopRight on key returns instead
// of a pushed value.
func (s *StoreMock) Script(key string, r Reply) {
	s.getScripted(key) <- r
}

// Pushes returns the number of successful PushLeft calls.
func (s *StoreMock) Pushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pushes
}

// Pops returns the number of BlockingPopRight calls that have started.
func (s *StoreMock) Pops() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pops
}

// PushLeft pushes value to the given key.
func (s *StoreMock) PushLeft(ctx context.Context, key, value string) (int64, error) {
	s.mu.Lock()
	err := s.pushErr
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	c := s.getChan(key)
	select {
	case c <- value:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	s.mu.Lock()
	s.pushes++
	s.mu.Unlock()
	return int64(len(c)), nil
}

// BlockingPopRight pops the oldest value from the given key.
//
// Scripted replies take precedence over pushed values. If nothing is
// available the call blocks until something is, the timeout elapses or ctx is
// done.
func (s *StoreMock) BlockingPopRight(ctx context.Context, key string, timeout time.Duration) ([]string, error) {
	s.mu.Lock()
	s.pops++
	s.mu.Unlock()

	c := s.getChan(key)
	scripted := s.getScripted(key)
	select {
	case r := <-scripted:
		return r.Values, r.Err
	default:
	}

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop() // Don't leak the timer.
		expired = timer.C
	}

	select {
	case r := <-scripted:
		return r.Values, r.Err
	case v := <-c:
		return []string{key, v}, nil
	case <-expired:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
