// Package accounts is the credential store: one record per account holding
// its identity, password hash and at most one current session token.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/sessiongate/internal/server/models"
)

// Repository persists accounts.
//
// Create returns common.ErrorConflict when the username is taken. The Get
// methods and SetToken return common.ErrorNotFound for unknown accounts.
// SwapToken replaces the stored token with next only if the stored token is
// exactly expected; it reports whether the swap happened.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	SetToken(ctx context.Context, id string, token models.SessionToken) error
	SwapToken(ctx context.Context, id string, expected string, next models.SessionToken) (bool, error)
}
