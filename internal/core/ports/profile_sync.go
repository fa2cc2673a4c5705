package ports

import "context"

// ProfileSyncInput is the DTO handed to the sync dispatcher after a local
// user mutation. It mirrors what the external communications platform needs
// to upsert the user on its side.
type ProfileSyncInput struct {
	UserID   string
	FullName string
	Image    string
}

// ProfileSyncer pushes a user profile to the external communications
// platform. Failures are best-effort: logged and counted, never propagated
// back into the mutation that triggered them.
type ProfileSyncer interface {
	Sync(ctx context.Context, input ProfileSyncInput) error
}

// ChatTokenProvider mints a user-scoped token for the external
// communications platform.
type ChatTokenProvider interface {
	UserToken(userID string) (string, error)
}
