package ports

import (
	"context"

	"github.com/linguameet/linguameet-api/internal/core/domain"
)

// SignupInput carries the fields required to create an account.
type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// AuthService implements account creation, credential checks, and the
// one-shot onboarding update.
type AuthService interface {
	// Signup creates the account and returns the user plus a signed session
	// token.
	Signup(ctx context.Context, input SignupInput) (*domain.User, string, error)
	// Login verifies credentials and returns the user plus a signed session
	// token. Unknown email and wrong password are indistinguishable to the
	// caller.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// Onboard applies the profile fields and marks the user onboarded.
	Onboard(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error)
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}
