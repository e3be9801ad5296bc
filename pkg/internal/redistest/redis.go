// Package redistest implements support code for testing with Redis.
package redistest

import (
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
)

// RedisCredentials holds the credentials for connecting to Redis.
type RedisCredentials struct {
	Password string
	IP       string
}

// GetCredentials gets the Redis credentials from environment variables.
func GetCredentials() (rc RedisCredentials, ok bool) {
	p := os.Getenv("REDIS_PASS")
	i := os.Getenv("REDIS_IP")
	if len(i) > 0 {
		return RedisCredentials{
			Password: p,
			IP:       i,
		}, true
	}
	return RedisCredentials{}, false
}

// Connect connects to Redis and returns the Client object.
//
// A real server is used when REDIS_IP is set. Otherwise an in-process
// miniredis server is started for the duration of the test.
func Connect(t *testing.T) *redis.Client {
	t.Helper()
	creds, ok := GetCredentials()
	if !ok {
		s := miniredis.RunT(t)
		creds = RedisCredentials{IP: s.Addr()}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         creds.IP,
		Password:     creds.Password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     20,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Server starts an in-process miniredis server and a client connected to it.
//
// Tests that need to inject server failures use the returned server.
func Server(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr:        s.Addr(),
		MaxRetries:  0,
		DialTimeout: 2 * time.Second,
	})
	t.Cleanup(func() { _ = client.Close() })
	return s, client
}
