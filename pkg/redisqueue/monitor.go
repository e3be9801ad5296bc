package redisqueue

import (
	"context"
	"fmt"
	"sync"
)

// MessageHandler receives every message popped by a Monitor.
type MessageHandler func(queueName string, payload interface{})

// ErrorHandler receives every failure seen by a Monitor.
type ErrorHandler func(err error)

// Monitor pops messages from a Queue in a loop.
//
// Only one pop is outstanding at a time, so handlers are called one at a time
// and in the order the events happened. Handlers run on the monitor goroutine;
// a slow handler delays the next pop.
type Monitor struct {
	q *Queue

	mu        sync.RWMutex
	onMessage []MessageHandler
	onError   []ErrorHandler
	startOnce sync.Once
	done      chan struct{}
}

// NewMonitor returns a Monitor for q that has not started popping yet.
func NewMonitor(q *Queue) *Monitor {
	return &Monitor{
		q:    q,
		done: make(chan struct{}),
	}
}

// OnMessage registers h for message events. It can be called at any time;
// events that happen before h is registered are not replayed.
func (m *Monitor) OnMessage(h MessageHandler) *Monitor {
	m.mu.Lock()
	m.onMessage = append(m.onMessage, h)
	m.mu.Unlock()
	return m
}

// OnError registers h for error events.
func (m *Monitor) OnError(h ErrorHandler) *Monitor {
	m.mu.Lock()
	m.onError = append(m.onError, h)
	m.mu.Unlock()
	return m
}

// Start starts popping in a new goroutine and returns immediately.
//
// The loop runs until ctx is done. Calling Start again has no effect.
func (m *Monitor) Start(ctx context.Context) *Monitor {
	m.startOnce.Do(func() {
		go m.run(ctx)
	})
	return m
}

// Done returns a channel that is closed once the loop has exited.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Wait blocks until the loop has exited.
func (m *Monitor) Wait() {
	<-m.done
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)
	_ = m.q.log.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Beginning monitoring for %s", m.q.name))

	for {
		// Check if the loop was stopped before issuing the next pop.
		select {
		case <-ctx.Done():
			_ = m.q.log.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Stopped monitoring for %s", m.q.name))
			return
		default:
		}
		m.cycle(ctx)
	}
}

// cycle performs a single pop and emits the events for it.
func (m *Monitor) cycle(ctx context.Context) {
	reply, err := m.q.s.BlockingPopRight(ctx, m.q.name, m.q.popTimeout)
	if err != nil {
		// A pop interrupted by cancellation is not a failure.
		if ctx.Err() != nil {
			return
		}
		m.emitError(&StoreError{Op: "pop", Queue: m.q.name, Err: err})
		return
	}
	if reply == nil {
		return
	}
	if len(reply) != 2 {
		m.emitError(&ProtocolError{Queue: m.q.name, Reply: reply})
		return
	}

	payload, err := Decode(reply[1], m.q.mode)
	if err != nil {
		m.emitError(err)
		return
	}
	m.emitMessage(reply[0], payload)
}

func (m *Monitor) emitMessage(queueName string, payload interface{}) {
	m.mu.RLock()
	handlers := m.onMessage
	m.mu.RUnlock()
	for _, h := range handlers {
		if err := m.callMessageHandler(h, queueName, payload); err != nil {
			m.emitError(err)
		}
	}
}

func (m *Monitor) callMessageHandler(h MessageHandler, queueName string, payload interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{Queue: m.q.name, Value: r}
		}
	}()
	h(queueName, payload)
	return nil
}

func (m *Monitor) emitError(err error) {
	m.mu.RLock()
	handlers := m.onError
	m.mu.RUnlock()
	// Nobody is listening; keep the failure visible in the logs.
	if len(handlers) == 0 {
		_ = m.q.log.Log("LEVEL", "ERROR", "MESSAGE", err.Error())
		return
	}
	for _, h := range handlers {
		m.callErrorHandler(h, err)
	}
}

func (m *Monitor) callErrorHandler(h ErrorHandler, err error) {
	defer func() {
		if r := recover(); r != nil {
			_ = m.q.log.Log("LEVEL", "ERROR", "MESSAGE", fmt.Sprintf("Error handler for %s panicked: %v", m.q.name, r))
		}
	}()
	h(err)
}
