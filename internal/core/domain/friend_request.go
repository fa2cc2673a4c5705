package domain

import (
	"errors"
	"time"
)

// RequestStatus represents the lifecycle state of a friend request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
)

var ErrRequestNotFound = errors.New("friend request not found")
var ErrDuplicateRequest = errors.New("a pending friend request already exists between these users")
var ErrSelfRequest = errors.New("cannot send a friend request to yourself")
var ErrAlreadyFriends = errors.New("users are already friends")
var ErrNotRecipient = errors.New("only the recipient may accept this request")
var ErrRequestNotPending = errors.New("friend request is not pending")

// FriendRequest is a directed proposal from Sender to Recipient to become
// mutually connected. The only permitted transition is pending -> accepted;
// requests are never deleted.
type FriendRequest struct {
	ID        string        `json:"id" bson:"_id,omitempty"`
	Sender    string        `json:"sender" bson:"sender"`
	Recipient string        `json:"recipient" bson:"recipient"`
	Status    RequestStatus `json:"status" bson:"status"`
	// PairKey is the normalized unordered pair "min:max" of the two user
	// ids. A unique partial index on (pair_key, status=pending) guarantees
	// at most one pending request per pair regardless of direction.
	PairKey   string    `json:"-" bson:"pair_key"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// PairKeyFor returns the normalized unordered key for two user ids.
func PairKeyFor(a, b string) string {
	if a < b {
		return a + ":" + b
	}
	return b + ":" + a
}
