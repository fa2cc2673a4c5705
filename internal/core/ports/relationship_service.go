package ports

import (
	"context"
	"time"

	"github.com/linguameet/linguameet-api/internal/core/domain"
)

// UserCard is the public profile projection joined onto request and friend
// listings. Language fields are omitted where the source view does not
// surface them (accepted-request history only shows name and picture).
type UserCard struct {
	ID               string `json:"id"`
	FullName         string `json:"fullName"`
	ProfilePic       string `json:"profilePic"`
	NativeLanguage   string `json:"nativeLanguage,omitempty"`
	LearningLanguage string `json:"learningLanguage,omitempty"`
}

// RequestCard is a friend request joined with the counterpart's profile.
// Exactly one of Sender/Recipient is populated depending on the view.
type RequestCard struct {
	ID        string               `json:"id"`
	Sender    *UserCard            `json:"sender,omitempty"`
	Recipient *UserCard            `json:"recipient,omitempty"`
	Status    domain.RequestStatus `json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
}

// RequestsResult is returned by ListRequests: pending requests addressed to
// the caller, plus requests the caller sent that were accepted. The
// asymmetry (only sent-and-accepted surface here) mirrors the history view
// it feeds.
type RequestsResult struct {
	Incoming []RequestCard `json:"incomingRequests"`
	Accepted []RequestCard `json:"acceptedRequests"`
}

// RelationshipService mediates all friend-request state transitions and the
// derived friend-list mutations.
type RelationshipService interface {
	// RecommendUsers returns onboarded users excluding the caller and the
	// caller's existing friends, as full public documents.
	RecommendUsers(ctx context.Context, callerID string) ([]*domain.User, error)
	// ListFriends resolves the caller's friend set to public profiles.
	ListFriends(ctx context.Context, callerID string) ([]UserCard, error)
	// ProposeRequest creates a pending request from caller to recipient.
	ProposeRequest(ctx context.Context, callerID, recipientID string) (*domain.FriendRequest, error)
	// AcceptRequest transitions a pending request addressed to the caller
	// to accepted and makes the friendship mutual.
	AcceptRequest(ctx context.Context, callerID, requestID string) error
	ListRequests(ctx context.Context, callerID string) (*RequestsResult, error)
	// ListOutgoing returns the caller's pending sent requests joined with
	// recipient profiles.
	ListOutgoing(ctx context.Context, callerID string) ([]RequestCard, error)
}
