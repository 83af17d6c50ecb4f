package rest

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/credkeeper/internal/common"
	"github.com/dmitrijs2005/credkeeper/internal/server/auth"
	"github.com/dmitrijs2005/credkeeper/internal/server/models"
	"github.com/dmitrijs2005/credkeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

// AuthService is the part of services.AuthService the handlers call.
type AuthService interface {
	Register(ctx context.Context, firstName, lastName, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*models.Account, error)
	UpdateEmail(ctx context.Context, currentEmail, password, newEmail string) error
	UpdatePassword(ctx context.Context, email, currentPassword, newPassword string) error
	ResetPassword(ctx context.Context, email, newPassword, method string) error
}

type registerRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	NewEmail string `json:"new_email"`
}

type updatePasswordRequest struct {
	Email           string `json:"email"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
	ResetMethod string `json:"reset_method"`
	ResetToken  string `json:"reset_token"`
}

// errorMessage is the client-facing text for one error kind.
type errorMessage struct {
	kind error
	text string
}

// AuthHandler serves the credential endpoints.
type AuthHandler struct {
	service     AuthService
	resetSecret []byte
}

// NewAuthHandler builds the handlers. A non-empty resetSecret makes
// /reset-password require a reset token signed with it.
func NewAuthHandler(service AuthService, resetSecret []byte) *AuthHandler {
	return &AuthHandler{service: service, resetSecret: resetSecret}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if _, err := h.service.Register(c.UserContext(), req.FirstName, req.LastName, req.Email, req.Password); err != nil {
		return respondError(c, err,
			errorMessage{services.ErrInvalidEmail, "Invalid email address."},
			errorMessage{services.ErrNameRequired, "First and last name are required."},
			errorMessage{common.ErrorConflict, "Email already exists."},
		)
	}

	return respondMessage(c, "Registration successful.")
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	account, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err,
			errorMessage{common.ErrorUnauthorized, "Invalid email or password."},
		)
	}

	return respondMessage(c, fmt.Sprintf("Login successful. Welcome, %s!", account.DisplayName()))
}

func (h *AuthHandler) UpdateEmail(c *fiber.Ctx) error {
	var req updateEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.service.UpdateEmail(c.UserContext(), req.Email, req.Password, req.NewEmail); err != nil {
		return respondError(c, err,
			errorMessage{services.ErrInvalidEmail, "Invalid new email address."},
			errorMessage{services.ErrSameEmail, "New email is the same as current."},
			errorMessage{common.ErrorConflict, "New email already in use."},
			errorMessage{common.ErrorUnauthorized, "Invalid email or password."},
		)
	}

	return respondMessage(c, "Email updated successfully.")
}

func (h *AuthHandler) UpdatePassword(c *fiber.Ctx) error {
	var req updatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.service.UpdatePassword(c.UserContext(), req.Email, req.CurrentPassword, req.NewPassword); err != nil {
		return respondError(c, err,
			errorMessage{common.ErrorUnauthorized, "Invalid email or current password."},
			errorMessage{common.ErrorInvalidArgument, "Invalid new password."},
		)
	}

	return respondMessage(c, "Password updated successfully.")
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	method := req.ResetMethod
	if len(h.resetSecret) > 0 {
		if err := h.checkResetToken(req.ResetToken, req.Email); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired reset token.",
			})
		}
		if method == "" {
			method = common.ResetMethodToken
		}
	}

	if err := h.service.ResetPassword(c.UserContext(), req.Email, req.NewPassword, method); err != nil {
		return respondError(c, err,
			errorMessage{common.ErrorNotFound, "Email not found."},
			errorMessage{common.ErrorInvalidArgument, "Invalid new password."},
		)
	}

	return respondMessage(c, "Password reset successfully.")
}

// checkResetToken accepts only a valid token issued for email.
func (h *AuthHandler) checkResetToken(token, email string) error {
	if token == "" {
		return common.ErrInvalidToken
	}
	subject, err := auth.VerifyResetToken(token, h.resetSecret)
	if err != nil {
		return err
	}
	if subject != email {
		return common.ErrInvalidToken
	}
	return nil
}

func respondMessage(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": msg})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body."})
}

// respondError writes the status for err's kind with the first matching
// message. Unmatched client errors carry err's text; server errors never do.
func respondError(c *fiber.Ctx, err error, messages ...errorMessage) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{"error": "Internal server error."})
	}

	text := err.Error()
	for _, m := range messages {
		if errors.Is(err, m.kind) {
			text = m.text
			break
		}
	}
	return c.Status(status).JSON(fiber.Map{"error": text})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorInvalidArgument), errors.Is(err, common.ErrorConflict):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
