// Package auth issues and checks the short-lived tokens that prove control of
// an email address before a password reset.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// ResetPurpose is the audience carried by reset tokens.
const ResetPurpose = "password-reset"

// ResetClaims are the claims of a reset token. Subject is the account email.
type ResetClaims struct {
	jwt.RegisteredClaims
}

// GenerateResetToken signs an HS256 token for email valid for ttl. Each
// token carries a random ID.
func GenerateResetToken(email string, secretKey []byte, ttl time.Duration) (string, error) {
	jti, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   email,
			Audience:  jwt.ClaimStrings{ResetPurpose},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyResetToken checks signature, expiry and audience and returns the
// email the token was issued for. Expired tokens yield common.ErrTokenExpired,
// anything else common.ErrInvalidToken.
func VerifyResetToken(tokenString string, secretKey []byte) (string, error) {
	claims := &ResetClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(ResetPurpose),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
