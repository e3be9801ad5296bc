// Package http makes the enqueue endpoint available via HTTP.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	gohttp "net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/transport/http"
	"github.com/pkg/errors"

	qendpoint "github.com/frenchie4111/redis-queue/pkg/endpoint"
	"github.com/frenchie4111/redis-queue/pkg/redisqueue"
)

// maxBodySize bounds the size of a single enqueued item.
const maxBodySize = 1 << 20

// NewEnqueueHTTPHandler returns a handler that accepts items for a queue with
// the given mode on POST /enqueue.
//
// In ObjectMode the request body is a JSON object or array. In RawMode the body
// is enqueued as it is.
func NewEnqueueHTTPHandler(e endpoint.Endpoint, mode redisqueue.Mode, options map[string][]http.ServerOption) gohttp.Handler {
	if options == nil {
		options = make(map[string][]http.ServerOption)
	}
	m := gohttp.NewServeMux()
	makeEnqueueHandler(m, e, mode, options["Enqueue"]...)
	return m
}

type errorResponse struct {
	Error string
}

// badRequestError is picked up by the Go kit default error encoder.
type badRequestError struct {
	error
}

func (badRequestError) StatusCode() int {
	return gohttp.StatusBadRequest
}

// tooLargeError rejects bodies over maxBodySize instead of cutting them off.
type tooLargeError struct {
	error
}

func (tooLargeError) StatusCode() int {
	return gohttp.StatusRequestEntityTooLarge
}

func encodeEnqueueResponse(_ context.Context, w gohttp.ResponseWriter, r interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if v, ok := r.(endpoint.Failer); ok && v.Failed() != nil {
		status := gohttp.StatusInternalServerError
		if redisqueue.Kind(v.Failed()) == "shape_mismatch" {
			status = gohttp.StatusBadRequest
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: v.Failed().Error()})
		return nil
	}
	err := json.NewEncoder(w).Encode(r)
	return errors.WithStack(err)
}

func makeDecodeEnqueueRequest(mode redisqueue.Mode) http.DecodeRequestFunc {
	return func(_ context.Context, req *gohttp.Request) (i interface{}, e error) {
		defer func() {
			err := req.Body.Close()
			if e != nil && err != nil {
				e = errors.Wrapf(e, "multiple errors: %s", err)
				return
			}
			if err != nil {
				e = err
			}
		}()
		body, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize+1))
		if err != nil {
			return nil, errors.Wrap(err, "unable to read request body")
		}
		if len(body) > maxBodySize {
			return nil, tooLargeError{errors.Errorf("request body exceeds %d bytes", maxBodySize)}
		}

		if mode == redisqueue.RawMode {
			return qendpoint.EnqueueRequest{Item: string(body)}, nil
		}
		var item interface{}
		if err := json.Unmarshal(body, &item); err != nil {
			return nil, badRequestError{errors.Wrap(err, "invalid JSON item")}
		}
		return qendpoint.EnqueueRequest{Item: item}, nil
	}
}

func makeEnqueueHandler(m *gohttp.ServeMux, e endpoint.Endpoint, mode redisqueue.Mode, options ...http.ServerOption) {
	handler := http.NewServer(e,
		makeDecodeEnqueueRequest(mode),
		encodeEnqueueResponse,
		options...)
	hf := func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if r.Method != gohttp.MethodPost {
			w.WriteHeader(gohttp.StatusMethodNotAllowed)
			_, _ = fmt.Fprintf(w, "Invalid request method %s", r.Method)
			return
		}
		handler.ServeHTTP(w, r)
	}
	m.Handle("/enqueue", gohttp.HandlerFunc(hf))
}
