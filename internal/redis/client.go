// Package redis builds the go-redis client shared by the battle repository
// and the worker queue, behind an interface the tests can swap for
// miniredis.
package redis

import (
	"crypto/tls"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the connection pool. Zero values keep go-redis defaults or
// whatever the URL specified.
type Options struct {
	PoolSize        int
	MinIdleConns    int
	ConnMaxIdleTime time.Duration
	MaxRetries      int
	UseTLS          bool
}

func (o *Options) applyTo(ro *redis.Options) {
	if o == nil {
		return
	}
	if o.PoolSize > 0 {
		ro.PoolSize = o.PoolSize
	}
	if o.MinIdleConns > 0 {
		ro.MinIdleConns = o.MinIdleConns
	}
	if o.ConnMaxIdleTime > 0 {
		ro.ConnMaxIdleTime = o.ConnMaxIdleTime
	}
	if o.MaxRetries != 0 {
		ro.MaxRetries = o.MaxRetries
	}
	if o.UseTLS && ro.TLSConfig == nil {
		ro.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
}

// NewClient connects to a single node at host:port.
func NewClient(endpoint string, opts *Options) (Client, error) {
	if endpoint == "" {
		return nil, errors.New("redis: endpoint is required")
	}
	ro := &redis.Options{Addr: endpoint}
	opts.applyTo(ro)
	return redis.NewClient(ro), nil
}

// NewClientFromURL connects using a redis:// or rediss:// URL. Pool settings
// in opts override the ones parsed from the URL when set.
func NewClientFromURL(rawURL string, opts *Options) (Client, error) {
	if rawURL == "" {
		return nil, errors.New("redis: url is required")
	}
	ro, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	opts.applyTo(ro)
	return redis.NewClient(ro), nil
}
