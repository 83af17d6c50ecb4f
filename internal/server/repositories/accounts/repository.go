// Package accounts declares the account store contract and its PostgreSQL
// implementation. It is the only reader and writer of the users table.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/credkeeper/internal/server/models"
)

// Repository defines the persisted operations on accounts.
type Repository interface {
	// FindByEmail returns the account with exactly this email, or
	// common.ErrorNotFound.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// FindByEmailForUpdate is FindByEmail that also locks the row until the
	// surrounding transaction ends.
	FindByEmailForUpdate(ctx context.Context, email string) (*models.Account, error)

	// Insert stores a new account and returns its id. A duplicate email
	// yields common.ErrorConflict.
	Insert(ctx context.Context, account *models.Account) (string, error)

	// UpdateEmail changes the email of account id. A duplicate email yields
	// common.ErrorConflict, an unknown id common.ErrorNotFound.
	UpdateEmail(ctx context.Context, id, newEmail string) error

	// UpdatePassword replaces the stored password hash of account id.
	UpdatePassword(ctx context.Context, id, newHash string) error
}
