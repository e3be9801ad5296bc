package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/pkg/errors"
)

// MessageRequest contains a message popped by a monitor.
type MessageRequest struct {
	Queue   string      `json:"queue"`
	Payload interface{} `json:"payload"`
}

// MessageResponse contains an error to indicate a failure while handling a
// message.
type MessageResponse struct {
	e error
}

// Failed indicates if handling the message failed.
func (r MessageResponse) Failed() error {
	return r.e
}

// MakeLogMessageEndpoint creates an endpoint that logs every message.
func MakeLogMessageEndpoint(l log.Logger) endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(MessageRequest)
		err := l.Log("LEVEL", "INFO", "MESSAGE", fmt.Sprintf("Received message on %s", req.Queue), "PAYLOAD", req.Payload)
		return MessageResponse{e: err}, nil
	}
}

// MakePrintMessageEndpoint creates an endpoint that writes every message to w
// as a line of JSON.
func MakePrintMessageEndpoint(w io.Writer) endpoint.Endpoint {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return func(_ context.Context, request interface{}) (interface{}, error) {
		req := request.(MessageRequest)
		mu.Lock()
		defer mu.Unlock()
		err := enc.Encode(req)
		return MessageResponse{e: errors.WithStack(err)}, nil
	}
}
