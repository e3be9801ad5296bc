// Package queuesubscribe provides support for transport of messages from a
// monitored queue to an endpoint.
//
// This is analogous to the http package for the enqueue side.
package queuesubscribe

import (
	"context"
	"fmt"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"

	qendpoint "github.com/frenchie4111/redis-queue/pkg/endpoint"
	"github.com/frenchie4111/redis-queue/pkg/metrics"
	"github.com/frenchie4111/redis-queue/pkg/redisqueue"
)

// Config contains the configuration for delivering the messages of a queue
// to an endpoint.
type Config struct {
	Endpoint endpoint.Endpoint
	Queue    *redisqueue.Queue
	Log      log.Logger
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// MakeMonitorHandler returns a function that monitors the queue and passes
// every message to the endpoint until its context is done.
//
// Messages are handled one at a time, in the order they were popped. The
// returned function only returns once the monitor has stopped.
func MakeMonitorHandler(conf Config) func(context.Context) {
	l := conf.Log
	if l == nil {
		l = log.NewNopLogger()
	}
	return func(ctx context.Context) {
		m := redisqueue.NewMonitor(conf.Queue)
		if conf.Metrics != nil {
			conf.Metrics.Instrument(m, conf.Queue.Name())
		}
		m.OnMessage(func(queueName string, payload interface{}) {
			processMessage(ctx, qendpoint.MessageRequest{Queue: queueName, Payload: payload}, conf.Endpoint, l)
		}).OnError(func(err error) {
			_ = l.Log("LEVEL", "ERROR", "MESSAGE", err.Error(), "KIND", redisqueue.Kind(err))
		})

		_ = l.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Beginning subscription for %s", conf.Queue.Name()))
		m.Start(ctx).Wait()
	}
}

func processMessage(ctx context.Context, req qendpoint.MessageRequest, e endpoint.Endpoint, l log.Logger) {
	resp, err := e(ctx, req)
	if err != nil {
		_ = l.Log("LEVEL", "ERROR", "MESSAGE", err.Error())
		return
	}
	if v, ok := resp.(endpoint.Failer); ok && v.Failed() != nil {
		_ = l.Log("LEVEL", "ERROR", "MESSAGE", v.Failed().Error())
	}
}
