package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client is the redis surface the repositories and the worker queue use.
// Battle state and the task queue must live on one node because their Lua
// scripts touch several keys at once.
type Client interface {
	redis.UniversalClient
}

// Nil is returned by reads of missing keys.
const Nil = redis.Nil
