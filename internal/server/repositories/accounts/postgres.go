package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository works over dbx.DBTX, so it runs equally on the pool
// and inside a transaction.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectAccount = `SELECT id, firstname, lastname, email, password, created_at
		 FROM users
		 WHERE email = $1`

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.find(ctx, selectAccount, email)
}

func (r *PostgresRepository) FindByEmailForUpdate(ctx context.Context, email string) (*models.Account, error) {
	return r.find(ctx, selectAccount+"\n\t\t FOR UPDATE", email)
}

func (r *PostgresRepository) find(ctx context.Context, query, email string) (*models.Account, error) {
	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&a.ID, &a.FirstName, &a.LastName, &a.Email, &a.PasswordHash, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, account *models.Account) (string, error) {
	query :=
		`INSERT INTO users (id, firstname, lastname, email, password)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	if account.ID == "" {
		account.ID = uuid.NewString()
	}

	var id string
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.FirstName, account.LastName, account.Email, account.PasswordHash).Scan(&id)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return "", fmt.Errorf("%w: email exists", common.ErrorConflict)
		}
		return "", fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) UpdateEmail(ctx context.Context, id, newEmail string) error {
	query :=
		`UPDATE users SET email = $1
		 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, newEmail, id)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("%w: email exists", common.ErrorConflict)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, newHash string) error {
	query :=
		`UPDATE users SET password = $1
		 WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, newHash, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
