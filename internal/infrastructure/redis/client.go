package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client shared by the session store and the
// rate limiter.
type Client struct {
	rdb  *goredis.Client
	addr string
	pass string
	db   int
}

func New(addr, password string, db int) *Client {
	return &Client{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		addr: addr,
		pass: password,
		db:   db,
	}
}

func (c *Client) Ping(ctx context.Context) error {
	// short ping timeout is good in bootstrap
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

// Options exposes the connection settings so other Redis consumers
// (the asynq mail queue) can open their own pool against the same server.
func (c *Client) Options() (addr, password string, db int) {
	return c.addr, c.pass, c.db
}
