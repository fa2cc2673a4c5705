package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/linguameet/linguameet-api/internal/api/metrics"
	"github.com/linguameet/linguameet-api/internal/core/ports"
)

// ChatUpserter abstracts the external communications platform's user upsert
// call.
type ChatUpserter interface {
	UpsertUser(ctx context.Context, userID, name, image string) error
}

type profileSyncService struct {
	chat ChatUpserter
	log  zerolog.Logger
}

// NewProfileSyncService returns a ports.ProfileSyncer that pushes profiles
// to the chat platform. Failures are logged and counted; the caller never
// rolls back the local mutation that triggered the sync.
func NewProfileSyncService(chat ChatUpserter, log zerolog.Logger) ports.ProfileSyncer {
	return &profileSyncService{chat: chat, log: log}
}

func (s *profileSyncService) Sync(ctx context.Context, in ports.ProfileSyncInput) error {
	if err := s.chat.UpsertUser(ctx, in.UserID, in.FullName, in.Image); err != nil {
		metrics.ProfileSyncTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("user_id", in.UserID).Msg("chat profile sync failed")
		return err
	}

	metrics.ProfileSyncTotal.WithLabelValues("ok").Inc()
	s.log.Debug().Str("user_id", in.UserID).Msg("chat profile synced")
	return nil
}
