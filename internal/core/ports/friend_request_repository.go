package ports

import (
	"context"

	"github.com/linguameet/linguameet-api/internal/core/domain"
)

// FriendRequestRepository defines persistence operations for the friend
// request ledger.
type FriendRequestRepository interface {
	Create(ctx context.Context, req *domain.FriendRequest) (*domain.FriendRequest, error)
	FindByID(ctx context.Context, id string) (*domain.FriendRequest, error)
	// FindPendingBetween looks for a pending request between the unordered
	// pair {a, b} in either direction. Returns domain.ErrRequestNotFound
	// when none exists.
	FindPendingBetween(ctx context.Context, a, b string) (*domain.FriendRequest, error)
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error
	FindByRecipientAndStatus(ctx context.Context, recipient string, status domain.RequestStatus) ([]*domain.FriendRequest, error)
	FindBySenderAndStatus(ctx context.Context, sender string, status domain.RequestStatus) ([]*domain.FriendRequest, error)
}
