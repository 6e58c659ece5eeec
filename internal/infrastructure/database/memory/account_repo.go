package memory

import (
	"context"
	"sync"
	"time"

	"github.com/saltmarshlabs/crossgate/internal/domain/entities"
	"github.com/saltmarshlabs/crossgate/internal/domain/repositories"
)

// AccountRepository is an in-memory account store for tests and the
// board's dev mode (no postgres required).
type AccountRepository struct {
	mu         sync.RWMutex
	byID       map[string]*entities.Account
	byIdentity map[string]string // system+":"+external_id -> id
	byUsername map[string]string
}

// NewAccountRepository creates an empty in-memory account repository
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:       make(map[string]*entities.Account),
		byIdentity: make(map[string]string),
		byUsername: make(map[string]string),
	}
}

// Create stores a new account
func (r *AccountRepository) Create(ctx context.Context, account *entities.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	identityKey := account.IdentityKey()
	if _, exists := r.byIdentity[identityKey]; exists {
		return repositories.ErrDuplicateAccount
	}
	if _, exists := r.byUsername[account.Username]; exists {
		return repositories.ErrDuplicateAccount
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	stored := *account
	r.byID[stored.ID] = &stored
	r.byIdentity[identityKey] = stored.ID
	r.byUsername[stored.Username] = stored.ID
	return nil
}

// GetByExternalID retrieves an account by (system, external_id)
func (r *AccountRepository) GetByExternalID(ctx context.Context, system, externalID string) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byIdentity[system+":"+externalID]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

// GetByID retrieves an account by board-local ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entities.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.byID[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

// TouchLastLogin records a successful handoff
func (r *AccountRepository) TouchLastLogin(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.byID[id]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	now := time.Now()
	account.LastLogin = &now
	account.UpdatedAt = now
	return nil
}
