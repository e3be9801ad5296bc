package redisqueue

import (
	"encoding/json"
	"reflect"

	"github.com/pkg/errors"
)

// Mode decides how payloads are checked and written to the store.
type Mode int

const (
	// ObjectMode queues carry structured values encoded as JSON.
	ObjectMode Mode = iota
	// RawMode queues carry strings written to the store as they are.
	RawMode
)

func (m Mode) String() string {
	switch m {
	case ObjectMode:
		return "object"
	case RawMode:
		return "raw"
	default:
		return "unknown"
	}
}

// IsStructured reports whether item is a structured value: a map, struct,
// slice or array, or a non-nil pointer to one. Byte slices count as raw data.
func IsStructured(item interface{}) bool {
	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map, reflect.Struct, reflect.Array:
		return true
	case reflect.Slice:
		return v.Type().Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}

// Encode checks item against mode and returns the message to store.
//
// Structured items are only accepted in ObjectMode and are stored as JSON.
// In RawMode strings and byte slices are stored as they are; other scalars
// are stored in their JSON form.
func Encode(item interface{}, mode Mode) (string, error) {
	structured := IsStructured(item)
	if structured != (mode == ObjectMode) {
		return "", &ShapeMismatchError{ObjectMode: mode == ObjectMode}
	}

	if mode == RawMode {
		switch v := item.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		}
	}

	b, err := json.Marshal(item)
	if err != nil {
		return "", errors.Wrap(err, "unable to encode payload as JSON")
	}
	return string(b), nil
}

// Decode turns a stored message back into a payload.
//
// In ObjectMode JSON objects decode to map[string]interface{} and arrays to
// []interface{}.
func Decode(wire string, mode Mode) (interface{}, error) {
	if mode == RawMode {
		return wire, nil
	}
	var payload interface{}
	if err := json.Unmarshal([]byte(wire), &payload); err != nil {
		return nil, &DecodeError{Err: errors.WithStack(err)}
	}
	return payload, nil
}
