package auditlog

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) AppendLogin(ctx context.Context, accountID string) error {
	query :=
		`INSERT INTO login_logs (id, user_id)
		 VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AppendFieldChange(ctx context.Context, accountID, field, oldValue, newValue string) error {
	switch field {
	case common.FieldEmail:
	case common.FieldPassword:
		if oldValue != common.MaskedValue || newValue != common.MaskedValue {
			return fmt.Errorf("%w: password change values must be masked", common.ErrorInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: unknown audited field %q", common.ErrorInvalidArgument, field)
	}

	query :=
		`INSERT INTO update_logs (id, user_id, field_changed, old_value, new_value)
		 VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), accountID, field, oldValue, newValue); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) AppendReset(ctx context.Context, accountID, method string) error {
	if method == "" {
		method = common.DefaultResetMethod
	}

	query :=
		`INSERT INTO reset_logs (id, user_id, reset_method)
		 VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), accountID, method); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
