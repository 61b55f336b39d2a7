// internal/cache/banks.go
package cache

import (
	"context"
	"encoding/json"
	"time"

	"giftwallet-service/internal/paystack"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const banksKey = "paystack:banks"

// BankCache keeps the provider's bank list in redis. The list is pure
// reference data and changes rarely, so a long TTL is fine.
type BankCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewBankCache(client *redis.Client, logger *zap.Logger) *BankCache {
	return &BankCache{client: client, ttl: 12 * time.Hour, logger: logger}
}

func (c *BankCache) Get(ctx context.Context) ([]paystack.Bank, bool) {
	raw, err := c.client.Get(ctx, banksKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("bank cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var banks []paystack.Bank
	if err := json.Unmarshal(raw, &banks); err != nil {
		c.logger.Warn("bank cache payload corrupt, dropping", zap.Error(err))
		c.client.Del(ctx, banksKey)
		return nil, false
	}
	return banks, true
}

func (c *BankCache) Set(ctx context.Context, banks []paystack.Bank) {
	raw, err := json.Marshal(banks)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, banksKey, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("bank cache write failed", zap.Error(err))
	}
}
