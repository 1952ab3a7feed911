// Package lock provides a Redis-backed mutual exclusion lease shared by all
// API replicas.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned by Acquire when another holder owns the lease.
var ErrHeld = errors.New("lock is held by another process")

var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Redis hands out leases on single keys. A nil client grants every lease.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, prefix: "lock:"}
}

// Lease is an acquired lock. Release is safe to call more than once.
type Lease struct {
	r     *Redis
	key   string
	token string
}

// Acquire takes name for at most ttl. It does not wait.
func (r *Redis) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	if r == nil || r.client == nil {
		return &Lease{}, nil
	}
	lease := &Lease{r: r, key: r.prefix + name, token: uuid.NewString()}
	ok, err := r.client.SetNX(ctx, lease.key, lease.token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrHeld
	}
	return lease, nil
}

// Release deletes the key only if it still carries this lease's token.
func (l *Lease) Release(ctx context.Context) error {
	if l == nil || l.r == nil || l.r.client == nil {
		return nil
	}
	err := releaseScript.Run(ctx, l.r.client, []string{l.key}, l.token).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
