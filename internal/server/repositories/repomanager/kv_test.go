package repomanager

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/sessiongate/internal/dbx"
	"github.com/dmitrijs2005/sessiongate/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryManager(t *testing.T) {
	var m RepositoryManager = NewMemoryRepositoryManager()
	ctx := context.Background()

	assert.Nil(t, m.DB())
	require.NoError(t, m.RunMigrations(ctx))

	// Repositories bound to the tx handle and the plain handle share state.
	var id string
	require.NoError(t, m.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		a, err := m.Accounts(tx).Create(ctx, &models.Account{Username: "alice", PasswordHash: "h"})
		if err != nil {
			return err
		}
		id = a.ID
		return nil
	}))

	got, err := m.Accounts(m.DB()).GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.WithTx(ctx, func(context.Context, dbx.DBTX) error { return boom }), boom)
	assert.NoError(t, m.Close())
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	m, err := OpenRedis(ctx, mr.Addr(), "", 0)
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.RunMigrations(ctx))
	assert.Nil(t, m.DB())

	a, err := m.Accounts(nil).Create(ctx, &models.Account{Username: "alice", PasswordHash: "h"})
	require.NoError(t, err)

	require.NoError(t, m.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		return m.Accounts(tx).SetToken(ctx, a.ID, models.ActiveToken("t1"))
	}))

	got, err := m.Accounts(m.DB()).GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, got.Token.Matches("t1"))
}

func TestOpenRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := OpenRedis(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
