package repomanager

import (
	"context"

	"github.com/dmitrijs2005/sessiongate/internal/dbx"
	"github.com/dmitrijs2005/sessiongate/internal/server/repositories/accounts"
)

// MemoryRepositoryManager serves a single process-local account store.
// WithTx gives no rollback; each repository call is atomic on its own.
type MemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{accounts: accounts.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) DB() dbx.DBTX { return nil }

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository { return m.accounts }

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn dbx.TxFunc) error {
	return fn(ctx, nil)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
