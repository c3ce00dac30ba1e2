package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/coursehub-web/pkg/config"
)

const pingTimeout = 5 * time.Second

// NewRedis dials Redis and verifies the connection before handing the client out.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(Options(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", Addr(cfg), err)
	}

	return client, nil
}

// Options maps the gateway config onto go-redis options.
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:         Addr(cfg),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  pingTimeout,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr renders host:port.
func Addr(cfg config.RedisConfig) string {
	return net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
}
