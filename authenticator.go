package sessiongate

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Credentials are the email and password submitted at login.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is what the authentication collaborator returns on success.
type LoginResponse struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// Authenticator is the backend that verifies credentials and issues tokens.
//
// Implementations should wrap credential faults in ErrCredentialsRejected and transport
// or server faults in ErrAuthUnavailable. Any other error is treated as unavailable.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (LoginResponse, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, creds Credentials) (LoginResponse, error)

func (f AuthenticatorFunc) Login(ctx context.Context, creds Credentials) (LoginResponse, error) {
	return f(ctx, creds)
}

var credentialValidator = validator.New(validator.WithRequiredStructEnabled())

func validateCredentials(creds Credentials) error {
	if err := credentialValidator.Struct(creds); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
			}
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return nil
}
