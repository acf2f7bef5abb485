// Package rediscache memoizes portfolio calculations in Redis. The
// aggregator is read-only over source records, so entries only need a TTL,
// no invalidation hooks.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"carbonledger/internal/domain"
	"carbonledger/internal/services/portfolio"
)

type PortfolioCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewPortfolioCache(addr string, ttl time.Duration, log *zap.Logger) *PortfolioCache {
	return &PortfolioCache{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: ttl,
		log: log,
	}
}

func (c *PortfolioCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func key(orgID string, year int, method domain.Method) string {
	return fmt.Sprintf("portfolio:%s:%d:%s", orgID, year, method)
}

func (c *PortfolioCache) Get(ctx context.Context, orgID string, year int, method domain.Method) (portfolio.Result, bool) {
	raw, err := c.rdb.Get(ctx, key(orgID, year, method)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("portfolio cache read failed", zap.Error(err))
		}
		return portfolio.Result{}, false
	}
	var res portfolio.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		return portfolio.Result{}, false
	}
	return res, true
}

func (c *PortfolioCache) Set(ctx context.Context, orgID string, year int, method domain.Method, res portfolio.Result) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(orgID, year, method), raw, c.ttl).Err(); err != nil {
		c.log.Warn("portfolio cache write failed", zap.Error(err))
	}
}
