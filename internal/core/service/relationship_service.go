package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/linguameet/linguameet-api/internal/api/metrics"
	"github.com/linguameet/linguameet-api/internal/core/domain"
	"github.com/linguameet/linguameet-api/internal/core/ports"
)

// RecommendationCache abstracts the short-TTL recommendation store (Redis).
// A nil cache disables caching entirely.
type RecommendationCache interface {
	Get(ctx context.Context, userID string) ([]*domain.User, bool, error)
	Set(ctx context.Context, userID string, users []*domain.User) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// RelationshipService mediates friend-request transitions and the derived
// friend-list mutations.
type RelationshipService struct {
	users    ports.UserRepository
	requests ports.FriendRequestRepository
	tx       ports.Transactor
	cache    RecommendationCache
	log      zerolog.Logger
}

func NewRelationshipService(
	users ports.UserRepository,
	requests ports.FriendRequestRepository,
	tx ports.Transactor,
	cache RecommendationCache,
	log zerolog.Logger,
) *RelationshipService {
	return &RelationshipService{
		users:    users,
		requests: requests,
		tx:       tx,
		cache:    cache,
		log:      log,
	}
}

// RecommendUsers returns onboarded users that are neither the caller nor
// already in the caller's friend set, in natural store order.
func (s *RelationshipService) RecommendUsers(ctx context.Context, callerID string) ([]*domain.User, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, callerID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", callerID).Msg("recommendation cache read failed, querying store")
		} else if hit {
			metrics.RecommendationCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		} else {
			metrics.RecommendationCacheTotal.WithLabelValues("miss").Inc()
		}
	}

	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	recommended, err := s.users.FindRecommended(ctx, callerID, caller.Friends)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, callerID, recommended); err != nil {
			s.log.Warn().Err(err).Str("user_id", callerID).Msg("recommendation cache write failed")
		}
	}
	return recommended, nil
}

// ListFriends resolves the caller's friend set to public profile cards.
func (s *RelationshipService) ListFriends(ctx context.Context, callerID string) ([]ports.UserCard, error) {
	caller, err := s.users.FindByID(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if len(caller.Friends) == 0 {
		return []ports.UserCard{}, nil
	}

	friends, err := s.users.FindByIDs(ctx, caller.Friends)
	if err != nil {
		return nil, err
	}

	cards := make([]ports.UserCard, 0, len(friends))
	for _, f := range friends {
		cards = append(cards, fullCard(f))
	}
	return cards, nil
}

// ProposeRequest creates a pending request from caller to recipient. The
// duplicate check and the insert run in one transaction; the unique
// pending-pair index backstops concurrent proposals from both directions.
func (s *RelationshipService) ProposeRequest(ctx context.Context, callerID, recipientID string) (*domain.FriendRequest, error) {
	if callerID == recipientID {
		return nil, domain.ErrSelfRequest
	}

	var created *domain.FriendRequest
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		recipient, err := s.users.FindByID(ctx, recipientID)
		if err != nil {
			return err
		}

		// Symmetry makes checking the recipient's set sufficient.
		if recipient.HasFriend(callerID) {
			return domain.ErrAlreadyFriends
		}

		_, err = s.requests.FindPendingBetween(ctx, callerID, recipientID)
		if err == nil {
			return domain.ErrDuplicateRequest
		}
		if !errors.Is(err, domain.ErrRequestNotFound) {
			return err
		}

		now := time.Now().UTC()
		created, err = s.requests.Create(ctx, &domain.FriendRequest{
			Sender:    callerID,
			Recipient: recipientID,
			Status:    domain.StatusPending,
			PairKey:   domain.PairKeyFor(callerID, recipientID),
			CreatedAt: now,
			UpdatedAt: now,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.FriendRequestsCreatedTotal.Inc()
	s.log.Info().
		Str("sender", callerID).
		Str("recipient", recipientID).
		Str("request_id", created.ID).
		Msg("friend request created")

	return created, nil
}

// AcceptRequest transitions a pending request to accepted and adds each
// user to the other's friend set. All three writes share one transaction so
// no reader ever observes a one-sided friendship.
func (s *RelationshipService) AcceptRequest(ctx context.Context, callerID, requestID string) error {
	var sender, recipient string
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		req, err := s.requests.FindByID(ctx, requestID)
		if err != nil {
			return err
		}
		if req.Recipient != callerID {
			return domain.ErrNotRecipient
		}
		if req.Status != domain.StatusPending {
			return domain.ErrRequestNotPending
		}

		if err := s.requests.UpdateStatus(ctx, req.ID, domain.StatusAccepted); err != nil {
			return err
		}
		if err := s.users.AddFriend(ctx, req.Sender, req.Recipient); err != nil {
			return err
		}
		if err := s.users.AddFriend(ctx, req.Recipient, req.Sender); err != nil {
			return err
		}

		sender, recipient = req.Sender, req.Recipient
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, sender, recipient); err != nil {
			s.log.Warn().Err(err).Msg("recommendation cache invalidation failed")
		}
	}

	metrics.FriendRequestsAcceptedTotal.Inc()
	s.log.Info().
		Str("sender", sender).
		Str("recipient", recipient).
		Str("request_id", requestID).
		Msg("friend request accepted")

	return nil
}

// ListRequests returns pending requests addressed to the caller plus
// requests the caller sent that were accepted, each joined with the
// counterpart's profile.
func (s *RelationshipService) ListRequests(ctx context.Context, callerID string) (*ports.RequestsResult, error) {
	incoming, err := s.requests.FindByRecipientAndStatus(ctx, callerID, domain.StatusPending)
	if err != nil {
		return nil, err
	}
	accepted, err := s.requests.FindBySenderAndStatus(ctx, callerID, domain.StatusAccepted)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(incoming)+len(accepted))
	for _, r := range incoming {
		ids = append(ids, r.Sender)
	}
	for _, r := range accepted {
		ids = append(ids, r.Recipient)
	}
	profiles, err := s.profilesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := &ports.RequestsResult{
		Incoming: make([]ports.RequestCard, 0, len(incoming)),
		Accepted: make([]ports.RequestCard, 0, len(accepted)),
	}
	for _, r := range incoming {
		card := ports.RequestCard{ID: r.ID, Status: r.Status, CreatedAt: r.CreatedAt}
		if u, ok := profiles[r.Sender]; ok {
			c := fullCard(u)
			card.Sender = &c
		}
		result.Incoming = append(result.Incoming, card)
	}
	for _, r := range accepted {
		card := ports.RequestCard{ID: r.ID, Status: r.Status, CreatedAt: r.CreatedAt}
		if u, ok := profiles[r.Recipient]; ok {
			c := briefCard(u)
			card.Recipient = &c
		}
		result.Accepted = append(result.Accepted, card)
	}
	return result, nil
}

// ListOutgoing returns the caller's pending sent requests joined with
// recipient profiles.
func (s *RelationshipService) ListOutgoing(ctx context.Context, callerID string) ([]ports.RequestCard, error) {
	outgoing, err := s.requests.FindBySenderAndStatus(ctx, callerID, domain.StatusPending)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(outgoing))
	for _, r := range outgoing {
		ids = append(ids, r.Recipient)
	}
	profiles, err := s.profilesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	cards := make([]ports.RequestCard, 0, len(outgoing))
	for _, r := range outgoing {
		card := ports.RequestCard{ID: r.ID, Status: r.Status, CreatedAt: r.CreatedAt}
		if u, ok := profiles[r.Recipient]; ok {
			c := fullCard(u)
			card.Recipient = &c
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func (s *RelationshipService) profilesByID(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	if len(ids) == 0 {
		return map[string]*domain.User{}, nil
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func fullCard(u *domain.User) ports.UserCard {
	return ports.UserCard{
		ID:               u.ID,
		FullName:         u.FullName,
		ProfilePic:       u.ProfilePic,
		NativeLanguage:   u.NativeLanguage,
		LearningLanguage: u.LearningLanguage,
	}
}

// briefCard is the reduced projection used for accepted-request history.
func briefCard(u *domain.User) ports.UserCard {
	return ports.UserCard{
		ID:         u.ID,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
	}
}
