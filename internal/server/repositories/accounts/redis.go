package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessiongate/internal/common"
	"github.com/dmitrijs2005/sessiongate/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Each account is a hash under accountKey(id); usernameKey(username) holds
// the account id. A missing current_token field means NoSession.
const (
	fieldID           = "id"
	fieldUsername     = "username"
	fieldPasswordHash = "password_hash"
	fieldToken        = "current_token"
	fieldCreatedAt    = "created_at"
)

// KEYS: username index, account hash. ARGV: id, username, hash, created_at.
var createScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('HSET', KEYS[2], 'id', ARGV[1], 'username', ARGV[2], 'password_hash', ARGV[3], 'created_at', ARGV[4])
return 1
`)

// KEYS: account hash. ARGV: token, or "" to clear.
var setScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
if ARGV[1] == '' then
	redis.call('HDEL', KEYS[1], 'current_token')
else
	redis.call('HSET', KEYS[1], 'current_token', ARGV[1])
end
return 1
`)

// KEYS: account hash. ARGV: expected token, next token or "" to clear.
var swapScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'current_token')
if cur ~= ARGV[1] then
	return 0
end
if ARGV[2] == '' then
	redis.call('HDEL', KEYS[1], 'current_token')
else
	redis.call('HSET', KEYS[1], 'current_token', ARGV[2])
end
return 1
`)

type RedisRepository struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRepository stores accounts under keys starting with prefix; an
// empty prefix means "sessiongate:".
func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "sessiongate:"
	}
	return &RedisRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *RedisRepository) accountKey(id string) string {
	return r.prefix + "account:" + id
}

func (r *RedisRepository) usernameKey(username string) string {
	return r.prefix + "username:" + username
}

func (r *RedisRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	id := uuid.NewString()
	createdAt := r.now().UTC()

	ok, err := createScript.Run(ctx, r.client,
		[]string{r.usernameKey(account.Username), r.accountKey(id)},
		id, account.Username, account.PasswordHash, createdAt.Format(time.RFC3339Nano),
	).Int()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if ok == 0 {
		return nil, common.ErrorConflict
	}

	account.ID = id
	account.CreatedAt = createdAt
	account.Token = models.NoSession()
	return account, nil
}

func (r *RedisRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	id, err := r.client.Get(ctx, r.usernameKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *RedisRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	fields, err := r.client.HGetAll(ctx, r.accountKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		return nil, common.ErrorNotFound
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("redis error: bad %s: %w", fieldCreatedAt, err)
	}

	account := &models.Account{
		ID:           fields[fieldID],
		Username:     fields[fieldUsername],
		PasswordHash: fields[fieldPasswordHash],
		Token:        models.NoSession(),
		CreatedAt:    createdAt,
	}
	if tok, ok := fields[fieldToken]; ok {
		account.Token = models.ActiveToken(tok)
	}
	return account, nil
}

func (r *RedisRepository) SetToken(ctx context.Context, id string, token models.SessionToken) error {
	value, _ := token.Value()

	ok, err := setScript.Run(ctx, r.client, []string{r.accountKey(id)}, value).Int()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if ok == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *RedisRepository) SwapToken(ctx context.Context, id string, expected string, next models.SessionToken) (bool, error) {
	if expected == "" {
		return false, nil
	}
	value, _ := next.Value()

	ok, err := swapScript.Run(ctx, r.client, []string{r.accountKey(id)}, expected, value).Int()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return ok == 1, nil
}
