package handler

import (
	"strings"

	"coinquest/internal/auth/models"
	dErrors "coinquest/pkg/domain-errors"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

func (r *RegisterRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.Username = strings.TrimSpace(r.Username)
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if err := models.ValidateEmail(models.NormalizeEmail(r.Email)); err != nil {
		return dErrors.InvariantToValidation(err)
	}
	if r.Username == "" {
		return dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if len(r.Password) < models.MinPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "Password must be at least 8 characters long")
	}
	if r.FullName != nil {
		trimmed := strings.TrimSpace(*r.FullName)
		if trimmed == "" {
			r.FullName = nil
		} else {
			r.FullName = &trimmed
		}
	}
	return nil
}

func (r *RegisterRequest) toModel() models.RegisterRequest {
	return models.RegisterRequest{
		Email:    r.Email,
		Username: r.Username,
		Password: r.Password,
		FullName: r.FullName,
	}
}

// LoginRequest is the body of POST /api/auth/login. "username" is accepted
// as an alias of "username_or_email".
type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	r.UsernameOrEmail = strings.TrimSpace(r.UsernameOrEmail)
	if r.UsernameOrEmail == "" {
		r.UsernameOrEmail = strings.TrimSpace(r.Username)
	}
	if r.UsernameOrEmail == "" {
		return dErrors.New(dErrors.CodeValidation, "username_or_email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshRequest) Validate() error {
	r.RefreshToken = strings.TrimSpace(r.RefreshToken)
	if r.RefreshToken == "" {
		return dErrors.New(dErrors.CodeValidation, "refresh_token is required")
	}
	return nil
}
