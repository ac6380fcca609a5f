package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// New creates a new Redis client.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// Embedded starts an in-process Redis and returns a client for it. The returned stop
// function closes the client and the server.
func Embedded(ctx context.Context) (*redis.Client, func(), error) {
	srv, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("platform/cache: embedded: %w", err)
	}
	client, err := New(ctx, srv.Addr())
	if err != nil {
		srv.Close()
		return nil, nil, err
	}
	stop := func() {
		_ = client.Close()
		srv.Close()
	}
	return client, stop, nil
}
