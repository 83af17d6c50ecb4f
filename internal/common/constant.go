package common

// MaskedValue replaces password material in audit records.
const MaskedValue = "****"

// DefaultResetMethod tags password resets that did not name a method.
const DefaultResetMethod = "manual"

// Audited field names.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// ResetMethodToken tags resets proven with a signed reset token.
const ResetMethodToken = "token"
