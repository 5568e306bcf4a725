// Package services contains server-side business logic. This file implements
// SessionService: registration, sign-in, token verification with rotation,
// and logout, enforcing at most one live session token per account.
package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"

	"github.com/dmitrijs2005/sessiongate/internal/common"
	"github.com/dmitrijs2005/sessiongate/internal/dbx"
	"github.com/dmitrijs2005/sessiongate/internal/logging"
	"github.com/dmitrijs2005/sessiongate/internal/server/auth"
	"github.com/dmitrijs2005/sessiongate/internal/server/config"
	"github.com/dmitrijs2005/sessiongate/internal/server/models"
	"github.com/dmitrijs2005/sessiongate/internal/server/passwords"
	"github.com/dmitrijs2005/sessiongate/internal/server/repositories/repomanager"
)

// Operation names reported to the Recorder.
const (
	OpRegister     = "register"
	OpAuthenticate = "authenticate"
	OpVerify       = "verify"
	OpTerminate    = "terminate"
)

// Session is what a successful Authenticate or Verify hands back: the token
// the caller must present next time, and who it belongs to.
type Session struct {
	Token   string
	Account models.AccountView
}

// Recorder receives one call per finished operation.
type Recorder interface {
	SessionOperation(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) SessionOperation(string, string) {}

// SessionService holds no per-account state; every call re-reads the account
// record before comparing or mutating it.
type SessionService struct {
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenManager
	hasher      passwords.Hasher
	adminSecret []byte
	logger      logging.Logger
	recorder    Recorder

	dummyOnce sync.Once
	dummyHash string
}

// NewSessionService wires the service. A nil logger or recorder is replaced
// by a no-op.
func NewSessionService(
	m repomanager.RepositoryManager,
	tokens *auth.TokenManager,
	hasher passwords.Hasher,
	cfg *config.Config,
	logger logging.Logger,
	recorder Recorder,
) *SessionService {
	if logger == nil {
		logger = logging.Nop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &SessionService{
		repomanager: m,
		tokens:      tokens,
		hasher:      hasher,
		adminSecret: []byte(cfg.AdminSecret),
		logger:      logger.With("module", "sessions"),
		recorder:    recorder,
	}
}

// Register creates an account with no session and returns its id. It needs
// the configured admin secret; an empty configured secret disables sign-up.
func (s *SessionService) Register(ctx context.Context, username, password, adminSecret string) (id string, err error) {
	defer func() { s.record(OpRegister, err) }()

	if !s.checkAdminSecret(adminSecret) {
		return "", common.ErrorUnauthorized
	}
	if username == "" || password == "" {
		return "", common.ErrValidation
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error(ctx, "password hash failed", "error", err)
		return "", common.ErrorInternal
	}

	account, err := s.repomanager.Accounts(s.repomanager.DB()).Create(ctx, &models.Account{
		Username:     username,
		PasswordHash: hash,
		Token:        models.NoSession(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return "", common.ErrorConflict
		}
		s.logger.Error(ctx, "create account failed", "error", err)
		return "", common.ErrorInternal
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return account.ID, nil
}

// Authenticate checks credentials and starts a new session, invalidating
// whatever session the account had before. Unknown usernames and wrong
// passwords fail identically.
func (s *SessionService) Authenticate(ctx context.Context, username, password string) (session *Session, err error) {
	defer func() { s.record(OpAuthenticate, err) }()

	account, err := s.repomanager.Accounts(s.repomanager.DB()).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnDummyVerify(password)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "load account failed", "error", err)
		return nil, common.ErrorInternal
	}

	ok, err := s.hasher.Verify(account.PasswordHash, password)
	if err != nil {
		s.logger.Error(ctx, "password verify failed", "account_id", account.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	token, _, err := s.tokens.Issue(account.ID)
	if err != nil {
		s.logger.Error(ctx, "issue token failed", "error", err)
		return nil, common.ErrorInternal
	}

	err = s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		if account.Token.IsActive() {
			if err := repo.SetToken(ctx, account.ID, models.NoSession()); err != nil {
				return err
			}
		}
		return repo.SetToken(ctx, account.ID, models.ActiveToken(token))
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "store token failed", "account_id", account.ID, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "session started", "account_id", account.ID, "superseded", account.Token.IsActive())
	return &Session{Token: token, Account: account.View()}, nil
}

// Verify accepts the account's current token exactly once: on success the
// presented token is replaced by a fresh one, which is returned.
func (s *SessionService) Verify(ctx context.Context, token string) (session *Session, err error) {
	defer func() { s.record(OpVerify, err) }()

	account, err := s.currentAccount(ctx, token)
	if err != nil {
		return nil, err
	}

	next, _, err := s.tokens.Issue(account.ID)
	if err != nil {
		s.logger.Error(ctx, "issue token failed", "error", err)
		return nil, common.ErrorInternal
	}

	if err := s.swap(ctx, account.ID, token, models.ActiveToken(next)); err != nil {
		return nil, err
	}

	return &Session{Token: next, Account: account.View()}, nil
}

// Terminate ends the session the token belongs to.
func (s *SessionService) Terminate(ctx context.Context, token string) (err error) {
	defer func() { s.record(OpTerminate, err) }()

	account, err := s.currentAccount(ctx, token)
	if err != nil {
		return err
	}

	if err := s.swap(ctx, account.ID, token, models.NoSession()); err != nil {
		return err
	}

	s.logger.Info(ctx, "session terminated", "account_id", account.ID)
	return nil
}

// currentAccount resolves a presented token to the account whose stored
// token it is.
func (s *SessionService) currentAccount(ctx context.Context, token string) (*models.Account, error) {
	userID, err := s.tokens.UserID(token)
	if err != nil {
		s.logger.Debug(ctx, "token rejected", "error", err)
		return nil, common.ErrorUnauthorized
	}

	account, err := s.repomanager.Accounts(s.repomanager.DB()).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "load account failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !account.Token.Matches(token) {
		return nil, common.ErrStaleSession
	}
	return account, nil
}

func (s *SessionService) swap(ctx context.Context, accountID, presented string, next models.SessionToken) error {
	ok, err := s.repomanager.Accounts(s.repomanager.DB()).SwapToken(ctx, accountID, presented, next)
	if err != nil {
		s.logger.Error(ctx, "swap token failed", "account_id", accountID, "error", err)
		return common.ErrorInternal
	}
	if !ok {
		return common.ErrStaleSession
	}
	return nil
}

func (s *SessionService) checkAdminSecret(candidate string) bool {
	if len(s.adminSecret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(s.adminSecret, []byte(candidate)) == 1
}

// burnDummyVerify spends the same work as a real password check.
func (s *SessionService) burnDummyVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("sessiongate-dummy-password")
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(s.dummyHash, password)
	}
}

func (s *SessionService) record(op string, err error) {
	s.recorder.SessionOperation(op, Outcome(err))
}

// Outcome is the metrics label for an operation result.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrStaleSession):
		return "stale"
	case errors.Is(err, common.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, common.ErrorUnauthorized):
		return "unauthorized"
	case errors.Is(err, common.ErrorConflict):
		return "conflict"
	case errors.Is(err, common.ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}
