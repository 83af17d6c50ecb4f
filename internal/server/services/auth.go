// Package services contains server-side business logic. This file implements
// AuthService: registration, login, email change, password change and
// password reset, each paired with its audit record in one transaction.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/cryptox"
	"github.com/dmitrijs2005/credkeeper/internal/dbx"
	"github.com/dmitrijs2005/credkeeper/internal/logging"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/repositories/repomanager"
)

const maxEmailLength = 254

// dummyPassword feeds the hash compared against when an email is unknown,
// so unknown and known accounts cost the same bcrypt work.
const dummyPassword = "credkeeper-dummy-password"

// AuthService owns the credential workflows.
type AuthService struct {
	db          dbx.Beginner
	repomanager repomanager.RepositoryManager
	hasher      cryptox.PasswordHasher
	logger      logging.Logger
	dummyHash   string
}

// NewAuthService constructs an AuthService. db is used only to begin
// transactions; every repository call goes through one.
func NewAuthService(db dbx.Beginner, m repomanager.RepositoryManager, hasher cryptox.PasswordHasher, logger logging.Logger) (*AuthService, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("error preparing dummy hash: %w", err)
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		logger:      logger.With("module", "auth"),
		dummyHash:   dummy,
	}, nil
}

// Register creates an account and returns its id. A taken email yields
// common.ErrorConflict.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password string) (string, error) {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return "", s.fail(ctx, "register", ErrNameRequired, "email", email)
	}
	if err := validateEmail(email); err != nil {
		return "", s.fail(ctx, "register", err, "email", email)
	}

	var id string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		_, err := repo.FindByEmail(ctx, email)
		switch {
		case err == nil:
			return ErrEmailTaken
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		hash, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}

		id, err = repo.Insert(ctx, &models.Account{
			FirstName:    firstName,
			LastName:     lastName,
			Email:        email,
			PasswordHash: hash,
		})
		return err
	})
	if err != nil {
		return "", s.fail(ctx, "register", err, "email", email)
	}

	s.logger.Info(ctx, "account registered", "account_id", id)
	return id, nil
}

// Login checks the credentials and records a login event. Unknown email and
// wrong password both yield common.ErrorUnauthorized.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Account, error) {
	var account *models.Account
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		acc, err := s.authenticate(ctx, tx, email, password, false)
		if err != nil {
			return err
		}
		if err := s.repomanager.Audit(tx).AppendLogin(ctx, acc.ID); err != nil {
			return err
		}
		account = acc
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "login", err, "email", email)
	}

	s.logger.Info(ctx, "login succeeded", "account_id", account.ID)
	return account, nil
}

// UpdateEmail moves an account from currentEmail to newEmail after checking
// its password.
func (s *AuthService) UpdateEmail(ctx context.Context, currentEmail, password, newEmail string) error {
	if err := validateEmail(newEmail); err != nil {
		return s.fail(ctx, "update email", err, "email", currentEmail)
	}

	var accountID string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		acc, err := s.authenticate(ctx, tx, currentEmail, password, true)
		if err != nil {
			return err
		}
		if newEmail == acc.Email {
			return ErrSameEmail
		}

		repo := s.repomanager.Accounts(tx)
		_, err = repo.FindByEmail(ctx, newEmail)
		switch {
		case err == nil:
			return ErrNewEmailTaken
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		if err := repo.UpdateEmail(ctx, acc.ID, newEmail); err != nil {
			return err
		}
		accountID = acc.ID
		return s.repomanager.Audit(tx).AppendFieldChange(ctx, acc.ID, common.FieldEmail, acc.Email, newEmail)
	})
	if err != nil {
		return s.fail(ctx, "update email", err, "email", currentEmail)
	}

	s.logger.Info(ctx, "email updated", "account_id", accountID)
	return nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *AuthService) UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	var accountID string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		acc, err := s.authenticate(ctx, tx, email, currentPassword, true)
		if err != nil {
			return err
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		if err := s.repomanager.Accounts(tx).UpdatePassword(ctx, acc.ID, hash); err != nil {
			return err
		}
		accountID = acc.ID
		return s.repomanager.Audit(tx).AppendFieldChange(ctx, acc.ID, common.FieldPassword, common.MaskedValue, common.MaskedValue)
	})
	if err != nil {
		return s.fail(ctx, "update password", err, "email", email)
	}

	s.logger.Info(ctx, "password updated", "account_id", accountID)
	return nil
}

// ResetPassword sets a new password without the current one. An empty
// method is recorded as common.DefaultResetMethod. Proof of identity is the
// caller's concern.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword, method string) error {
	if method == "" {
		method = common.DefaultResetMethod
	}

	var accountID string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		acc, err := repo.FindByEmailForUpdate(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		if err := repo.UpdatePassword(ctx, acc.ID, hash); err != nil {
			return err
		}
		accountID = acc.ID
		return s.repomanager.Audit(tx).AppendReset(ctx, acc.ID, method)
	})
	if err != nil {
		return s.fail(ctx, "reset password", err, "email", email)
	}

	s.logger.Info(ctx, "password reset", "account_id", accountID, "method", method)
	return nil
}

// authenticate loads the account by email and verifies password. With lock
// set the row stays locked until tx ends.
func (s *AuthService) authenticate(ctx context.Context, tx dbx.DBTX, email, password string, lock bool) (*models.Account, error) {
	repo := s.repomanager.Accounts(tx)

	find := repo.FindByEmail
	if lock {
		find = repo.FindByEmailForUpdate
	}

	acc, err := find(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, acc.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

// fail classifies err and logs it: business outcomes at Info, store failures
// at Error.
func (s *AuthService) fail(ctx context.Context, op string, err error, args ...any) error {
	err = classify(op, err)
	args = append(args, "error", err)
	if errors.Is(err, common.ErrorPersistence) {
		s.logger.Error(ctx, op+" failed", args...)
	} else {
		s.logger.Info(ctx, op+" rejected", args...)
	}
	return err
}

// classify keeps known kinds and turns everything else into
// common.ErrorPersistence.
func classify(op string, err error) error {
	for _, kind := range []error{
		common.ErrorInvalidArgument,
		common.ErrorUnauthorized,
		common.ErrorConflict,
		common.ErrorNotFound,
		common.ErrorPersistence,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", common.ErrorPersistence, op, err)
}

func validateEmail(email string) error {
	if email == "" || len(email) > maxEmailLength {
		return ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
