package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/frenchie4111/redis-queue/pkg/redisqueue"
	"github.com/frenchie4111/redis-queue/pkg/store"
)

// config contains all of the configuration for the commands.
//
// Every setting is a flag. Flags that are not given on the command line fall
// back to their environment variable, then to the flag default.
type config struct {
	RedisAddress  string
	RedisPassword string
	RedisDB       int
	QueueName     string
	ObjectMode    bool
	PopTimeout    time.Duration
	HTTPAddress   string
}

func (c *config) bindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.RedisAddress, "redis-address", "", "Redis address (REDIS_ADDRESS)")
	fs.StringVar(&c.RedisPassword, "redis-password", "", "Redis password (REDIS_PASSWORD)")
	fs.IntVar(&c.RedisDB, "redis-db", 0, "Redis database (REDIS_DB)")
	fs.StringVarP(&c.QueueName, "queue", "q", redisqueue.DefaultQueueName, "Queue name (QUEUE_NAME)")
	fs.BoolVar(&c.ObjectMode, "object-mode", true, "Queue carries JSON objects instead of raw strings (QUEUE_OBJECT_MODE)")
	fs.DurationVar(&c.PopTimeout, "pop-timeout", 5*time.Second, "Longest single blocking pop, 0 to block indefinitely (QUEUE_POP_TIMEOUT)")
	fs.StringVar(&c.HTTPAddress, "http-address", "0.0.0.0:8080", "Listen address of the serve command (HTTP_ADDRESS)")
}

// applyEnv fills every flag that was not set explicitly from its environment
// variable.
func (c *config) applyEnv(fs *pflag.FlagSet) error {
	envs := map[string]string{
		"redis-address":  "REDIS_ADDRESS",
		"redis-password": "REDIS_PASSWORD",
		"redis-db":       "REDIS_DB",
		"queue":          "QUEUE_NAME",
		"object-mode":    "QUEUE_OBJECT_MODE",
		"pop-timeout":    "QUEUE_POP_TIMEOUT",
		"http-address":   "HTTP_ADDRESS",
	}
	for flag, env := range envs {
		f := fs.Lookup(flag)
		if f == nil || f.Changed {
			continue
		}
		v, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		if err := f.Value.Set(v); err != nil {
			return errors.Wrapf(err, "invalid value %q for %s", v, env)
		}
	}
	return nil
}

func (c *config) validate() error {
	if c.RedisAddress == "" {
		return errors.New("missing Redis address")
	}
	if c.PopTimeout < 0 {
		return errors.New("pop timeout must not be negative")
	}
	return nil
}

func (c *config) mode() redisqueue.Mode {
	if c.ObjectMode {
		return redisqueue.ObjectMode
	}
	return redisqueue.RawMode
}

func (c *config) storeOptions() store.Options {
	return store.Options{
		Address:  c.RedisAddress,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}
