package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/linguameet/linguameet-api/internal/api/metrics"
	"github.com/linguameet/linguameet-api/internal/core/domain"
	"github.com/linguameet/linguameet-api/internal/core/ports"
)

// ProfileEnqueuer is the interface the auth service uses to hand profile
// updates to the background chat-sync dispatcher.
type ProfileEnqueuer interface {
	Enqueue(input ports.ProfileSyncInput)
}

// AuthService implements signup, login, and onboarding.
type AuthService struct {
	users     ports.UserRepository
	sync      ProfileEnqueuer
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sync ProfileEnqueuer, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthService{users: users, sync: sync, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Signup creates the account with a random avatar, pushes the profile to
// the chat platform best-effort, and returns a signed session token.
func (s *AuthService) Signup(ctx context.Context, input ports.SignupInput) (*domain.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", domain.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		FullName:     input.FullName,
		PasswordHash: string(hash),
		ProfilePic:   randomAvatar(),
		Friends:      []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	s.enqueueSync(created)

	token, err := s.sessionToken(created.ID)
	if err != nil {
		return nil, "", err
	}

	metrics.SignupsTotal.Inc()
	s.log.Info().Str("user_id", created.ID).Str("email", created.Email).Msg("account created")
	return created, token, nil
}

// Login verifies credentials. Unknown email and wrong password both return
// ErrInvalidCredentials so callers cannot probe for accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.sessionToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Onboard applies the profile fields, flips the onboarding flag, and pushes
// the updated profile to the chat platform best-effort.
func (s *AuthService) Onboard(ctx context.Context, userID string, update ports.ProfileUpdate) (*domain.User, error) {
	updated, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	s.enqueueSync(updated)

	s.log.Info().Str("user_id", updated.ID).Msg("onboarding completed")
	return updated, nil
}

func (s *AuthService) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) enqueueSync(u *domain.User) {
	if s.sync == nil {
		return
	}
	s.sync.Enqueue(ports.ProfileSyncInput{
		UserID:   u.ID,
		FullName: u.FullName,
		Image:    u.ProfilePic,
	})
}

func (s *AuthService) sessionToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// randomAvatar picks one of the hosted placeholder avatars.
func randomAvatar() string {
	idx := rand.Intn(100) + 1
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", idx)
}
