package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/linguameet/linguameet-api/internal/core/domain"
	"github.com/linguameet/linguameet-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		clone := *u
		if clone.Friends == nil {
			clone.Friends = []string{}
		}
		r.users[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailExists
		}
	}
	clone := *u
	clone.ID = fmt.Sprintf("user_%d", len(r.users)+1)
	if clone.Friends == nil {
		clone.Friends = []string{}
	}
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, update ports.ProfileUpdate) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.FullName = update.FullName
	u.Bio = update.Bio
	u.NativeLanguage = update.NativeLanguage
	u.LearningLanguage = update.LearningLanguage
	u.Location = update.Location
	u.IsOnboarded = true
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) AddFriend(_ context.Context, userID, friendID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	for _, f := range u.Friends {
		if f == friendID {
			return nil
		}
	}
	u.Friends = append(u.Friends, friendID)
	return nil
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			clone := *u
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubUserRepo) FindRecommended(_ context.Context, selfID string, excludeIDs []string) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	excluded := map[string]struct{}{selfID: {}}
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}
	out := []*domain.User{}
	for _, u := range r.users {
		if _, skip := excluded[u.ID]; skip {
			continue
		}
		if !u.IsOnboarded {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	return out, nil
}

// stubRequestRepo enforces the unique pending-pair constraint the real
// Mongo partial index provides, so concurrency tests exercise the same
// guarantee.
type stubRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*domain.FriendRequest
	nextID   int
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{requests: make(map[string]*domain.FriendRequest)}
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.FriendRequest) (*domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if existing.PairKey == req.PairKey && existing.Status == domain.StatusPending {
			return nil, domain.ErrDuplicateRequest
		}
	}
	r.nextID++
	clone := *req
	clone.ID = fmt.Sprintf("req_%d", r.nextID)
	r.requests[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) FindPendingBetween(_ context.Context, a, b string) (*domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := domain.PairKeyFor(a, b)
	for _, req := range r.requests {
		if req.PairKey == key && req.Status == domain.StatusPending {
			clone := *req
			return &clone, nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (r *stubRequestRepo) UpdateStatus(_ context.Context, id string, status domain.RequestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return domain.ErrRequestNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *stubRequestRepo) FindByRecipientAndStatus(_ context.Context, recipient string, status domain.RequestStatus) ([]*domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.FriendRequest{}
	for _, req := range r.requests {
		if req.Recipient == recipient && req.Status == status {
			clone := *req
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *stubRequestRepo) FindBySenderAndStatus(_ context.Context, sender string, status domain.RequestStatus) ([]*domain.FriendRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*domain.FriendRequest{}
	for _, req := range r.requests {
		if req.Sender == sender && req.Status == status {
			clone := *req
			out = append(out, &clone)
		}
	}
	return out, nil
}

// passthroughTx runs the callback directly; the stub repos provide their
// own consistency.
type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubCache struct {
	mu          sync.Mutex
	entries     map[string][]*domain.User
	invalidated []string
}

func newStubCache() *stubCache {
	return &stubCache{entries: make(map[string][]*domain.User)}
}

func (c *stubCache) Get(_ context.Context, userID string) ([]*domain.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	users, ok := c.entries[userID]
	return users, ok, nil
}

func (c *stubCache) Set(_ context.Context, userID string, users []*domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = users
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, userIDs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range userIDs {
		delete(c.entries, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func onboardedUser(id, name string) *domain.User {
	return &domain.User{
		ID:               id,
		Email:            id + "@example.com",
		FullName:         name,
		ProfilePic:       "https://example.com/" + id + ".png",
		IsOnboarded:      true,
		NativeLanguage:   "english",
		LearningLanguage: "spanish",
		Friends:          []string{},
	}
}

func newTestService(users *stubUserRepo, requests *stubRequestRepo, cache RecommendationCache) *RelationshipService {
	return NewRelationshipService(users, requests, passthroughTx{}, cache, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// ProposeRequest
// ---------------------------------------------------------------------------

func TestProposeRequest_SelfReference(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"))
	svc := newTestService(users, newStubRequestRepo(), nil)

	_, err := svc.ProposeRequest(context.Background(), "a", "a")
	if !errors.Is(err, domain.ErrSelfRequest) {
		t.Fatalf("expected ErrSelfRequest, got %v", err)
	}
}

func TestProposeRequest_RecipientNotFound(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"))
	svc := newTestService(users, newStubRequestRepo(), nil)

	_, err := svc.ProposeRequest(context.Background(), "a", "missing")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestProposeRequest_AlreadyFriends(t *testing.T) {
	alice := onboardedUser("a", "Alice")
	bob := onboardedUser("b", "Bob")
	alice.Friends = []string{"b"}
	bob.Friends = []string{"a"}
	svc := newTestService(newStubUserRepo(alice, bob), newStubRequestRepo(), nil)

	_, err := svc.ProposeRequest(context.Background(), "a", "b")
	if !errors.Is(err, domain.ErrAlreadyFriends) {
		t.Fatalf("expected ErrAlreadyFriends, got %v", err)
	}
}

func TestProposeRequest_DuplicateEitherDirection(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"), onboardedUser("b", "Bob"))
	requests := newStubRequestRepo()
	svc := newTestService(users, requests, nil)

	if _, err := svc.ProposeRequest(context.Background(), "a", "b"); err != nil {
		t.Fatalf("first propose failed: %v", err)
	}

	// Same direction.
	if _, err := svc.ProposeRequest(context.Background(), "a", "b"); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
	// Reverse direction.
	if _, err := svc.ProposeRequest(context.Background(), "b", "a"); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest for reverse direction, got %v", err)
	}
}

func TestProposeRequest_Success(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"), onboardedUser("b", "Bob"))
	svc := newTestService(users, newStubRequestRepo(), nil)

	created, err := svc.ProposeRequest(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated request id")
	}
	if created.Sender != "a" || created.Recipient != "b" {
		t.Fatalf("unexpected endpoints: %s -> %s", created.Sender, created.Recipient)
	}
	if created.Status != domain.StatusPending {
		t.Fatalf("expected pending status, got %s", created.Status)
	}
	if created.PairKey != domain.PairKeyFor("a", "b") {
		t.Fatalf("unexpected pair key %q", created.PairKey)
	}

	// Proposal must not touch any friend set.
	alice, _ := users.FindByID(context.Background(), "a")
	bob, _ := users.FindByID(context.Background(), "b")
	if len(alice.Friends) != 0 || len(bob.Friends) != 0 {
		t.Fatal("propose must not mutate friend sets")
	}
}

func TestProposeRequest_ConcurrentBothDirections(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"), onboardedUser("b", "Bob"))
	requests := newStubRequestRepo()
	svc := newTestService(users, requests, nil)

	var wg sync.WaitGroup
	results := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, results[0] = svc.ProposeRequest(context.Background(), "a", "b")
	}()
	go func() {
		defer wg.Done()
		_, results[1] = svc.ProposeRequest(context.Background(), "b", "a")
	}()
	wg.Wait()

	pending, err := requests.FindPendingBetween(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("expected exactly one surviving pending request: %v", err)
	}
	if pending == nil {
		t.Fatal("expected a pending request")
	}

	succeeded := 0
	for _, res := range results {
		if res == nil {
			succeeded++
		} else if !errors.Is(res, domain.ErrDuplicateRequest) {
			t.Fatalf("unexpected error: %v", res)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one proposal to win, got %d", succeeded)
	}
}

// ---------------------------------------------------------------------------
// AcceptRequest
// ---------------------------------------------------------------------------

func TestAcceptRequest_NotFound(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"))
	svc := newTestService(users, newStubRequestRepo(), nil)

	err := svc.AcceptRequest(context.Background(), "a", "missing")
	if !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestAcceptRequest_OnlyRecipientMayAccept(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"), onboardedUser("b", "Bob"), onboardedUser("c", "Cara"))
	requests := newStubRequestRepo()
	svc := newTestService(users, requests, nil)

	created, err := svc.ProposeRequest(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	// The sender cannot self-accept.
	if err := svc.AcceptRequest(context.Background(), "a", created.ID); !errors.Is(err, domain.ErrNotRecipient) {
		t.Fatalf("expected ErrNotRecipient for sender, got %v", err)
	}
	// Nor can a third party.
	if err := svc.AcceptRequest(context.Background(), "c", created.ID); !errors.Is(err, domain.ErrNotRecipient) {
		t.Fatalf("expected ErrNotRecipient for third party, got %v", err)
	}

	// No friend set may have changed.
	for _, id := range []string{"a", "b", "c"} {
		u, _ := users.FindByID(context.Background(), id)
		if len(u.Friends) != 0 {
			t.Fatalf("friend set of %s mutated by failed accept", id)
		}
	}
}

func TestAcceptRequest_AlreadyAccepted(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"), onboardedUser("b", "Bob"))
	requests := newStubRequestRepo()
	svc := newTestService(users, requests, nil)

	created, err := svc.ProposeRequest(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if err := svc.AcceptRequest(context.Background(), "b", created.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	if err := svc.AcceptRequest(context.Background(), "b", created.ID); !errors.Is(err, domain.ErrRequestNotPending) {
		t.Fatalf("expected ErrRequestNotPending, got %v", err)
	}
}

func TestAcceptRequest_MakesFriendshipMutual(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"), onboardedUser("b", "Bob"))
	requests := newStubRequestRepo()
	cache := newStubCache()
	svc := newTestService(users, requests, cache)

	created, err := svc.ProposeRequest(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if err := svc.AcceptRequest(context.Background(), "b", created.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	alice, _ := users.FindByID(context.Background(), "a")
	bob, _ := users.FindByID(context.Background(), "b")
	if !alice.HasFriend("b") || !bob.HasFriend("a") {
		t.Fatal("friendship must be mutual after accept")
	}
	if alice.HasFriend("a") || bob.HasFriend("b") {
		t.Fatal("a user must never be in its own friend set")
	}

	stored, _ := requests.FindByID(context.Background(), created.ID)
	if stored.Status != domain.StatusAccepted {
		t.Fatalf("expected accepted status, got %s", stored.Status)
	}

	// Both users' recommendation caches are dropped.
	if len(cache.invalidated) != 2 {
		t.Fatalf("expected 2 cache invalidations, got %d", len(cache.invalidated))
	}
}

func TestProposeAcceptListFriends_EndToEnd(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"), onboardedUser("b", "Bob"))
	requests := newStubRequestRepo()
	svc := newTestService(users, requests, nil)

	created, err := svc.ProposeRequest(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if err := svc.AcceptRequest(context.Background(), "b", created.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	aliceFriends, err := svc.ListFriends(context.Background(), "a")
	if err != nil {
		t.Fatalf("list friends failed: %v", err)
	}
	bobFriends, err := svc.ListFriends(context.Background(), "b")
	if err != nil {
		t.Fatalf("list friends failed: %v", err)
	}

	if len(aliceFriends) != 1 || aliceFriends[0].ID != "b" {
		t.Fatalf("expected Bob in Alice's friends, got %+v", aliceFriends)
	}
	if len(bobFriends) != 1 || bobFriends[0].ID != "a" {
		t.Fatalf("expected Alice in Bob's friends, got %+v", bobFriends)
	}
	if aliceFriends[0].NativeLanguage == "" {
		t.Fatal("friend card must carry language fields")
	}
}

// ---------------------------------------------------------------------------
// RecommendUsers
// ---------------------------------------------------------------------------

func TestRecommendUsers_Filters(t *testing.T) {
	alice := onboardedUser("a", "Alice")
	alice.Friends = []string{"b"}
	bob := onboardedUser("b", "Bob")
	bob.Friends = []string{"a"}
	cara := onboardedUser("c", "Cara")
	dave := onboardedUser("d", "Dave")
	dave.IsOnboarded = false

	svc := newTestService(newStubUserRepo(alice, bob, cara, dave), newStubRequestRepo(), nil)

	recommended, err := svc.RecommendUsers(context.Background(), "a")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if len(recommended) != 1 || recommended[0].ID != "c" {
		ids := make([]string, 0, len(recommended))
		for _, u := range recommended {
			ids = append(ids, u.ID)
		}
		t.Fatalf("expected only Cara recommended, got %v", ids)
	}
}

func TestRecommendUsers_CacheHit(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"))
	cache := newStubCache()
	cached := []*domain.User{onboardedUser("z", "Zoe")}
	_ = cache.Set(context.Background(), "a", cached)

	svc := newTestService(users, newStubRequestRepo(), cache)

	recommended, err := svc.RecommendUsers(context.Background(), "a")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if len(recommended) != 1 || recommended[0].ID != "z" {
		t.Fatalf("expected cached list, got %+v", recommended)
	}
}

// ---------------------------------------------------------------------------
// Listings
// ---------------------------------------------------------------------------

func TestListRequests_IncomingAndAcceptedProjections(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"), onboardedUser("b", "Bob"), onboardedUser("c", "Cara"))
	requests := newStubRequestRepo()
	svc := newTestService(users, requests, nil)

	// Cara -> Alice stays pending; Alice -> Bob gets accepted.
	if _, err := svc.ProposeRequest(context.Background(), "c", "a"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	toBob, err := svc.ProposeRequest(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if err := svc.AcceptRequest(context.Background(), "b", toBob.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	result, err := svc.ListRequests(context.Background(), "a")
	if err != nil {
		t.Fatalf("list requests failed: %v", err)
	}

	if len(result.Incoming) != 1 {
		t.Fatalf("expected 1 incoming request, got %d", len(result.Incoming))
	}
	in := result.Incoming[0]
	if in.Sender == nil || in.Sender.ID != "c" {
		t.Fatalf("expected Cara as incoming sender, got %+v", in.Sender)
	}
	if in.Sender.NativeLanguage == "" {
		t.Fatal("incoming sender card must carry language fields")
	}

	if len(result.Accepted) != 1 {
		t.Fatalf("expected 1 accepted request, got %d", len(result.Accepted))
	}
	acc := result.Accepted[0]
	if acc.Recipient == nil || acc.Recipient.ID != "b" {
		t.Fatalf("expected Bob as accepted recipient, got %+v", acc.Recipient)
	}
	// History view only shows name and picture.
	if acc.Recipient.NativeLanguage != "" || acc.Recipient.LearningLanguage != "" {
		t.Fatal("accepted card must not carry language fields")
	}
}

func TestListOutgoing_PendingOnly(t *testing.T) {
	users := newStubUserRepo(onboardedUser("a", "Alice"), onboardedUser("b", "Bob"), onboardedUser("c", "Cara"))
	requests := newStubRequestRepo()
	svc := newTestService(users, requests, nil)

	if _, err := svc.ProposeRequest(context.Background(), "a", "b"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	toCara, err := svc.ProposeRequest(context.Background(), "a", "c")
	if err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if err := svc.AcceptRequest(context.Background(), "c", toCara.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	outgoing, err := svc.ListOutgoing(context.Background(), "a")
	if err != nil {
		t.Fatalf("list outgoing failed: %v", err)
	}
	if len(outgoing) != 1 {
		t.Fatalf("expected 1 pending outgoing request, got %d", len(outgoing))
	}
	if outgoing[0].Recipient == nil || outgoing[0].Recipient.ID != "b" {
		t.Fatalf("expected Bob as pending recipient, got %+v", outgoing[0].Recipient)
	}
}
