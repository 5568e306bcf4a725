package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sessiongate/internal/common"
	"github.com/dmitrijs2005/sessiongate/internal/dbx"
	"github.com/dmitrijs2005/sessiongate/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (username, password_hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, account.Username, account.PasswordHash).
		Scan(&account.ID, &account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.Token = models.NoSession()
	return account, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query :=
		`SELECT id, username, password_hash, current_token, created_at FROM accounts
		 WHERE username = $1
		 `
	return r.get(ctx, query, username)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query :=
		`SELECT id, username, password_hash, current_token, created_at FROM accounts
		 WHERE id = $1
		 `
	return r.get(ctx, query, id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg string) (*models.Account, error) {
	account := &models.Account{}
	var token sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&account.ID, &account.Username, &account.PasswordHash, &token, &account.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.Token = models.SessionTokenFromNull(token)
	return account, nil
}

func (r *PostgresRepository) SetToken(ctx context.Context, id string, token models.SessionToken) error {
	query :=
		`UPDATE accounts SET current_token = $2
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, token.NullString())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SwapToken(ctx context.Context, id string, expected string, next models.SessionToken) (bool, error) {
	query :=
		`UPDATE accounts SET current_token = $3
		 WHERE id = $1 AND current_token = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, expected, next.NullString())
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}
