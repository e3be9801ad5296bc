// Package endpoint exposes queue operations as Go kit endpoints.
package endpoint

import (
	"context"
	"time"

	"github.com/go-kit/kit/endpoint"

	"github.com/frenchie4111/redis-queue/pkg/metrics"
)

// Enqueuer wraps the Enqueue method of a queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, item interface{}) (int64, error)
}

// EnqueueRequest contains an item to push onto a queue.
type EnqueueRequest struct {
	Item interface{}
}

// EnqueueResponse contains the length of the queue after a push and an error
// to indicate a failure in the business logic.
type EnqueueResponse struct {
	Length int64 `json:"length"`
	e      error
}

// Failed indicates if the push failed.
func (r EnqueueResponse) Failed() error {
	return r.e
}

// MakeEnqueueEndpoint creates an endpoint for pushing items onto a queue.
func MakeEnqueueEndpoint(q Enqueuer) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		req := request.(EnqueueRequest)
		n, err := q.Enqueue(ctx, req.Item)
		return EnqueueResponse{
			Length: n,
			e:      err,
		}, nil
	}
}

// EnqueueMetrics returns a middleware that records every enqueue on queue.
func EnqueueMetrics(m *metrics.Metrics, queue string) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			response, err := next(ctx, request)
			failure := err
			if f, ok := response.(endpoint.Failer); ok && failure == nil {
				failure = f.Failed()
			}
			m.ObserveEnqueue(queue, failure)
			return response, err
		}
	}
}
