package repomanager

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessiongate/internal/dbx"
	"github.com/dmitrijs2005/sessiongate/internal/server/repositories/accounts"
	"github.com/redis/go-redis/v9"
)

// RedisRepositoryManager serves accounts stored in Redis. Token updates are
// atomic Lua scripts, so WithTx only sequences the calls.
type RedisRepositoryManager struct {
	client   redis.UniversalClient
	accounts *accounts.RedisRepository
}

func NewRedisRepositoryManager(client redis.UniversalClient) *RedisRepositoryManager {
	return &RedisRepositoryManager{
		client:   client,
		accounts: accounts.NewRedisRepository(client, ""),
	}
}

// OpenRedis connects to addr and pings it.
func OpenRedis(ctx context.Context, addr, password string, db int) (*RedisRepositoryManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisRepositoryManager(client), nil
}

func (m *RedisRepositoryManager) DB() dbx.DBTX { return nil }

func (m *RedisRepositoryManager) Accounts(dbx.DBTX) accounts.Repository { return m.accounts }

func (m *RedisRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	return fn(ctx, nil)
}

func (m *RedisRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *RedisRepositoryManager) Close() error {
	return m.client.Close()
}
