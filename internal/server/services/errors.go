package services

import (
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/common"
)

// Detailed outcomes of AuthService. Each wraps one of the common kinds, so
// callers may match either the detail or the kind.
var (
	ErrInvalidEmail       = fmt.Errorf("%w: invalid email", common.ErrorInvalidArgument)
	ErrNameRequired       = fmt.Errorf("%w: first and last name are required", common.ErrorInvalidArgument)
	ErrSameEmail          = fmt.Errorf("%w: new email is the same as current", common.ErrorInvalidArgument)
	ErrEmailTaken         = fmt.Errorf("%w: email already exists", common.ErrorConflict)
	ErrNewEmailTaken      = fmt.Errorf("%w: new email already in use", common.ErrorConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", common.ErrorUnauthorized)
	ErrAccountNotFound    = fmt.Errorf("%w: account not found", common.ErrorNotFound)
)
