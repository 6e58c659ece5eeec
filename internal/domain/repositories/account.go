package repositories

import (
	"context"
	"errors"

	"github.com/saltmarshlabs/crossgate/internal/domain/entities"
)

// Domain-specific repository errors
var (
	// ErrAccountNotFound is returned when an account cannot be found
	ErrAccountNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned when an account already exists for
	// the same (system, external_id) pair or username
	ErrDuplicateAccount = errors.New("account already exists")
)

// AccountRepository defines the interface for board account data access
type AccountRepository interface {
	// Create a new account
	Create(ctx context.Context, account *entities.Account) error

	// GetByExternalID retrieves an account by its (system, external_id)
	// linkage, the only lookup key for bridged identities
	GetByExternalID(ctx context.Context, system, externalID string) (*entities.Account, error)

	// GetByUsername retrieves an account by username. Used only for
	// collision checks during provisioning, never for identity mapping.
	GetByUsername(ctx context.Context, username string) (*entities.Account, error)

	// GetByID retrieves an account by its board-local ID
	GetByID(ctx context.Context, id string) (*entities.Account, error)

	// TouchLastLogin records a successful handoff for the account
	TouchLastLogin(ctx context.Context, id string) error
}
