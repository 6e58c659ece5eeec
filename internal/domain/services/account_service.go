package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gosimple/slug"

	"github.com/saltmarshlabs/crossgate/internal/domain/entities"
	"github.com/saltmarshlabs/crossgate/internal/domain/repositories"
	"github.com/saltmarshlabs/crossgate/internal/pkg/idgen"
	"github.com/saltmarshlabs/crossgate/internal/pkg/metrics"
	"github.com/saltmarshlabs/crossgate/internal/token"
)

// AccountService resolves bridged identities to board accounts
type AccountService struct {
	accounts repositories.AccountRepository
	log      *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accounts repositories.AccountRepository) *AccountService {
	return &AccountService{
		accounts: accounts,
		log:      slog.Default().With(slog.String("service", "account")),
	}
}

// ResolveExternal maps verified claims to a board account, provisioning
// one on first contact. The mapping key is (system, external_id); a
// replayed token within its TTL resolves to the same account, so the
// operation is idempotent per identity. Returns the account and whether
// it was freshly provisioned.
func (s *AccountService) ResolveExternal(ctx context.Context, claims *token.Claims) (*entities.Account, bool, error) {
	account, err := s.accounts.GetByExternalID(ctx, claims.System, claims.ExternalID)
	if err == nil {
		if err := s.accounts.TouchLastLogin(ctx, account.ID); err != nil {
			s.log.Warn("failed to touch last login",
				slog.String("account_id", account.ID),
				slog.Any("error", err))
		}
		return account, false, nil
	}
	if !errors.Is(err, repositories.ErrAccountNotFound) {
		return nil, false, fmt.Errorf("failed to look up account: %w", err)
	}

	account, err = s.provision(ctx, claims)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// GetByID returns the account for a board-local ID.
func (s *AccountService) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// GetByExternalID returns the account mapped to (system, external_id).
func (s *AccountService) GetByExternalID(ctx context.Context, system, externalID string) (*entities.Account, error) {
	return s.accounts.GetByExternalID(ctx, system, externalID)
}

func (s *AccountService) provision(ctx context.Context, claims *token.Claims) (*entities.Account, error) {
	fullName := claims.FullName
	if fullName == "" {
		fullName = claims.Username
	}

	username, err := s.pickUsername(ctx, claims)
	if err != nil {
		return nil, err
	}

	account := &entities.Account{
		ID:         idgen.GenerateID(),
		Username:   username,
		Email:      claims.Email,
		FullName:   fullName,
		System:     claims.System,
		ExternalID: claims.ExternalID,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		// Two handoffs for a brand-new identity can race to provision;
		// the loser resolves to whatever the winner created.
		if errors.Is(err, repositories.ErrDuplicateAccount) {
			existing, getErr := s.accounts.GetByExternalID(ctx, claims.System, claims.ExternalID)
			if getErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to provision account: %w", err)
	}

	metrics.AccountsProvisioned.WithLabelValues(claims.System).Inc()
	s.log.Info("provisioned board account",
		slog.String("account_id", account.ID),
		slog.String("identity", account.IdentityKey()),
		slog.String("username", account.Username))

	return account, nil
}

// pickUsername normalizes the claimed username and suffixes it with a
// slice of the external ID when the name is already taken.
func (s *AccountService) pickUsername(ctx context.Context, claims *token.Claims) (string, error) {
	username := slug.Make(claims.Username)
	if username == "" {
		username = "user"
	}

	_, err := s.accounts.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrAccountNotFound) {
		return username, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to check username: %w", err)
	}

	suffix := claims.ExternalID
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return username + "_" + slug.Make(suffix), nil
}
