// Package repomanager hands out account repositories bound to a storage
// backend, together with the transaction and migration hooks that backend
// supports.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/sessiongate/internal/dbx"
	"github.com/dmitrijs2005/sessiongate/internal/server/repositories/accounts"
)

type RepositoryManager interface {
	// DB is the non-transactional handle; nil for backends without one.
	DB() dbx.DBTX
	// Accounts returns a repository bound to db (DB() or a tx from WithTx).
	Accounts(db dbx.DBTX) accounts.Repository
	// WithTx runs fn atomically where the backend supports it.
	WithTx(ctx context.Context, fn dbx.TxFunc) error
	RunMigrations(ctx context.Context) error
	Close() error
}
