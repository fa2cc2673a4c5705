package ports

import (
	"context"

	"github.com/linguameet/linguameet-api/internal/core/domain"
)

// ProfileUpdate carries the onboarding fields applied to a user in one
// partial update. IsOnboarded is always set to true alongside.
type ProfileUpdate struct {
	FullName         string
	Bio              string
	NativeLanguage   string
	LearningLanguage string
	Location         string
}

// UserRepository defines persistence operations for the user directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// UpdateProfile applies the onboarding fields and flips is_onboarded,
	// returning the updated document.
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*domain.User, error)
	// AddFriend adds friendID to the user's friend set. Idempotent set-add.
	AddFriend(ctx context.Context, userID, friendID string) error
	// FindByIDs resolves a set of user ids to full documents. Missing ids
	// are silently skipped.
	FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	// FindRecommended returns onboarded users excluding selfID and every id
	// in excludeIDs, in natural store order.
	FindRecommended(ctx context.Context, selfID string, excludeIDs []string) ([]*domain.User, error)
}
