package redisqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frenchie4111/redis-queue/pkg/redisqueue"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestIsStructured(t *testing.T) {
	t.Parallel()

	var nilMap *map[string]int
	cases := []struct {
		name string
		item interface{}
		want bool
	}{
		{"map", map[string]interface{}{"test": "v"}, true},
		{"struct", record{Name: "a"}, true},
		{"struct pointer", &record{Name: "a"}, true},
		{"slice", []interface{}{1, "two"}, true},
		{"array", [2]int{1, 2}, true},
		{"string", "plain", false},
		{"bytes", []byte("plain"), false},
		{"int", 5, false},
		{"bool", true, false},
		{"nil", nil, false},
		{"nil pointer", nilMap, false},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, c.want, redisqueue.IsStructured(c.item))
		})
	}
}

func TestObjectModeRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := []interface{}{
		map[string]interface{}{"test": "v"},
		map[string]interface{}{
			"nested": map[string]interface{}{"list": []interface{}{"a", true, nil, 1.5}},
			"empty":  map[string]interface{}{},
		},
		[]interface{}{"x", float64(2), map[string]interface{}{"k": "v"}},
	}
	for _, p := range payloads {
		wire, err := redisqueue.Encode(p, redisqueue.ObjectMode)
		require.NoError(t, err, "Structured payload should encode in object mode.")
		decoded, err := redisqueue.Decode(wire, redisqueue.ObjectMode)
		require.NoError(t, err, "Encoded payload should decode.")
		assert.Equal(t, p, decoded, "Payload should survive the round trip.")
	}
}

func TestObjectModeStructEncoding(t *testing.T) {
	t.Parallel()

	wire, err := redisqueue.Encode(record{Name: "a", Count: 2}, redisqueue.ObjectMode)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a","count":2}`, wire, "Structs should be stored as JSON.")

	decoded, err := redisqueue.Decode(wire, redisqueue.ObjectMode)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "a", "count": float64(2)}, decoded)
}

func TestRawModeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"plain", "", `{"looks":"like json"}`, "ünïcode\n"} {
		wire, err := redisqueue.Encode(s, redisqueue.RawMode)
		require.NoError(t, err, "Strings should encode in raw mode.")
		assert.Equal(t, s, wire, "Raw strings should be stored unchanged.")
		decoded, err := redisqueue.Decode(wire, redisqueue.RawMode)
		require.NoError(t, err)
		assert.Equal(t, s, decoded, "Raw strings should decode unchanged.")
	}

	wire, err := redisqueue.Encode([]byte("bytes"), redisqueue.RawMode)
	require.NoError(t, err)
	assert.Equal(t, "bytes", wire, "Byte slices should be stored as strings.")

	wire, err = redisqueue.Encode(42, redisqueue.RawMode)
	require.NoError(t, err)
	assert.Equal(t, "42", wire, "Other scalars should be stored in JSON form.")
}

func TestEncodeShapeMismatch(t *testing.T) {
	t.Parallel()

	_, err := redisqueue.Encode(map[string]string{"test": "v"}, redisqueue.RawMode)
	require.Error(t, err)
	assert.Regexp(t, "was object, when object_mode was false", err.Error())
	assert.Equal(t, "shape_mismatch", redisqueue.Kind(err))

	_, err = redisqueue.Encode("plain", redisqueue.ObjectMode)
	require.Error(t, err)
	assert.Regexp(t, "was not object, when object_mode was true", err.Error())

	var sme *redisqueue.ShapeMismatchError
	require.ErrorAs(t, err, &sme)
	assert.True(t, sme.ObjectMode)
}

func TestEncodeUnsupportedValue(t *testing.T) {
	t.Parallel()

	_, err := redisqueue.Encode(map[string]interface{}{"f": func() {}}, redisqueue.ObjectMode)
	assert.Error(t, err, "Values JSON cannot represent should fail to encode.")
}

func TestDecodeMalformed(t *testing.T) {
	t.Parallel()

	_, err := redisqueue.Decode("{not json", redisqueue.ObjectMode)
	require.Error(t, err)
	assert.ErrorIs(t, err, redisqueue.ErrDecode)
	assert.Equal(t, "decode", redisqueue.Kind(err))
}
