// Package auditlog appends the immutable audit records that accompany
// credential events. Records are only ever inserted; callers run the append
// in the same transaction as the mutation it describes.
package auditlog

import "context"

// Repository appends audit records.
type Repository interface {
	// AppendLogin records a successful login.
	AppendLogin(ctx context.Context, accountID string) error

	// AppendFieldChange records an email or password change. Password
	// values must already be masked.
	AppendFieldChange(ctx context.Context, accountID, field, oldValue, newValue string) error

	// AppendReset records a password reset made with the given method.
	AppendReset(ctx context.Context, accountID, method string) error
}
