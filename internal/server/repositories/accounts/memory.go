package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessiongate/internal/common"
	"github.com/dmitrijs2005/sessiongate/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. It is safe for
// concurrent use; SwapToken is atomic under the repository lock.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.Account
	byUsername map[string]string
	now        func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*models.Account),
		byUsername: make(map[string]string),
		now:        time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[account.Username]; ok {
		return nil, common.ErrorConflict
	}

	account.ID = uuid.NewString()
	account.CreatedAt = r.now().UTC()
	account.Token = models.NoSession()

	stored := *account
	r.byID[stored.ID] = &stored
	r.byUsername[stored.Username] = stored.ID

	return account, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a := *r.byID[id]
	return &a, nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a := *stored
	return &a, nil
}

func (r *MemoryRepository) SetToken(ctx context.Context, id string, token models.SessionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Token = token
	return nil
}

func (r *MemoryRepository) SwapToken(ctx context.Context, id string, expected string, next models.SessionToken) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[id]
	if !ok || !stored.Token.Matches(expected) {
		return false, nil
	}
	stored.Token = next
	return true, nil
}
