// Package common defines shared constants and sentinel errors used across
// the credkeeper server and client. Callers should use errors.Is to match
// these values; wrapped errors keep their kind.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")

	// Service-level errors.
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorInvalidArgument = errors.New("invalid argument")
	ErrorPersistence     = errors.New("persistence failure")

	// Reset token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
