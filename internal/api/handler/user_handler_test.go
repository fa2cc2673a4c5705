package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/linguameet/linguameet-api/internal/core/domain"
	"github.com/linguameet/linguameet-api/internal/core/ports"
)

type stubRelationshipService struct {
	recommendFn    func(ctx context.Context, callerID string) ([]*domain.User, error)
	listFriendsFn  func(ctx context.Context, callerID string) ([]ports.UserCard, error)
	proposeFn      func(ctx context.Context, callerID, recipientID string) (*domain.FriendRequest, error)
	acceptFn       func(ctx context.Context, callerID, requestID string) error
	listRequestsFn func(ctx context.Context, callerID string) (*ports.RequestsResult, error)
	listOutgoingFn func(ctx context.Context, callerID string) ([]ports.RequestCard, error)
}

func (s *stubRelationshipService) RecommendUsers(ctx context.Context, callerID string) ([]*domain.User, error) {
	return s.recommendFn(ctx, callerID)
}

func (s *stubRelationshipService) ListFriends(ctx context.Context, callerID string) ([]ports.UserCard, error) {
	return s.listFriendsFn(ctx, callerID)
}

func (s *stubRelationshipService) ProposeRequest(ctx context.Context, callerID, recipientID string) (*domain.FriendRequest, error) {
	return s.proposeFn(ctx, callerID, recipientID)
}

func (s *stubRelationshipService) AcceptRequest(ctx context.Context, callerID, requestID string) error {
	return s.acceptFn(ctx, callerID, requestID)
}

func (s *stubRelationshipService) ListRequests(ctx context.Context, callerID string) (*ports.RequestsResult, error) {
	return s.listRequestsFn(ctx, callerID)
}

func (s *stubRelationshipService) ListOutgoing(ctx context.Context, callerID string) ([]ports.RequestCard, error) {
	return s.listOutgoingFn(ctx, callerID)
}

// authedContext builds an echo context with the authenticated user set the
// way the Auth middleware does.
func authedContext(e *echo.Echo, method, target string, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", user)
	c.Set("user_id", user.ID)
	return c, rec
}

func TestUserHandler_SendRequest_Success(t *testing.T) {
	e := echo.New()
	stub := &stubRelationshipService{
		proposeFn: func(ctx context.Context, callerID, recipientID string) (*domain.FriendRequest, error) {
			if callerID != "a" || recipientID != "b" {
				t.Fatalf("unexpected args: %s %s", callerID, recipientID)
			}
			return &domain.FriendRequest{ID: "req_1", Sender: "a", Recipient: "b", Status: domain.StatusPending}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := authedContext(e, http.MethodPost, "/api/user/friend-request/b", &domain.User{ID: "a"})
	c.SetParamNames("id")
	c.SetParamValues("b")

	if err := h.SendRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true {
		t.Fatalf("expected success=true, got %+v", resp)
	}
	fr, ok := resp["friendRequest"].(map[string]any)
	if !ok || fr["id"] != "req_1" || fr["status"] != "pending" {
		t.Fatalf("unexpected friendRequest payload: %+v", resp["friendRequest"])
	}
}

func TestUserHandler_SendRequest_ErrorsPropagate(t *testing.T) {
	e := echo.New()
	stub := &stubRelationshipService{
		proposeFn: func(ctx context.Context, callerID, recipientID string) (*domain.FriendRequest, error) {
			return nil, domain.ErrDuplicateRequest
		},
	}
	h := NewUserHandler(stub)

	c, _ := authedContext(e, http.MethodPost, "/api/user/friend-request/b", &domain.User{ID: "a"})
	c.SetParamNames("id")
	c.SetParamValues("b")

	if err := h.SendRequest(c); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest to propagate, got %v", err)
	}
}

func TestUserHandler_AcceptRequest_Success(t *testing.T) {
	e := echo.New()
	stub := &stubRelationshipService{
		acceptFn: func(ctx context.Context, callerID, requestID string) error {
			if callerID != "b" || requestID != "req_1" {
				t.Fatalf("unexpected args: %s %s", callerID, requestID)
			}
			return nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := authedContext(e, http.MethodPut, "/api/user/friend-request/req_1/accept", &domain.User{ID: "b"})
	c.SetParamNames("id")
	c.SetParamValues("req_1")

	if err := h.AcceptRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["success"] != true || resp["message"] != "friend request accepted" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestUserHandler_AcceptRequest_NotRecipient(t *testing.T) {
	e := echo.New()
	stub := &stubRelationshipService{
		acceptFn: func(ctx context.Context, callerID, requestID string) error {
			return domain.ErrNotRecipient
		},
	}
	h := NewUserHandler(stub)

	c, _ := authedContext(e, http.MethodPut, "/api/user/friend-request/req_1/accept", &domain.User{ID: "x"})
	c.SetParamNames("id")
	c.SetParamValues("req_1")

	if err := h.AcceptRequest(c); !errors.Is(err, domain.ErrNotRecipient) {
		t.Fatalf("expected ErrNotRecipient to propagate, got %v", err)
	}
}

func TestUserHandler_Recommended(t *testing.T) {
	e := echo.New()
	stub := &stubRelationshipService{
		recommendFn: func(ctx context.Context, callerID string) ([]*domain.User, error) {
			return []*domain.User{{ID: "c", FullName: "Cara", Friends: []string{}}}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := authedContext(e, http.MethodGet, "/api/user", &domain.User{ID: "a"})
	if err := h.Recommended(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var users []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(users) != 1 || users[0]["fullName"] != "Cara" {
		t.Fatalf("unexpected payload: %+v", users)
	}
	if _, leaked := users[0]["password"]; leaked {
		t.Fatal("password material must never serialize")
	}
}

func TestUserHandler_Requests_EnvelopeKeys(t *testing.T) {
	e := echo.New()
	stub := &stubRelationshipService{
		listRequestsFn: func(ctx context.Context, callerID string) (*ports.RequestsResult, error) {
			return &ports.RequestsResult{
				Incoming: []ports.RequestCard{{ID: "req_1", Status: domain.StatusPending, Sender: &ports.UserCard{ID: "c"}}},
				Accepted: []ports.RequestCard{},
			}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := authedContext(e, http.MethodGet, "/api/user/friend-requests", &domain.User{ID: "a"})
	if err := h.Requests(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	incoming, ok := resp["incomingRequests"].([]any)
	if !ok || len(incoming) != 1 {
		t.Fatalf("expected incomingRequests array, got %+v", resp)
	}
	accepted, ok := resp["acceptedRequests"].([]any)
	if !ok || len(accepted) != 0 {
		t.Fatalf("expected empty acceptedRequests array, got %+v", resp)
	}
}

func TestUserHandler_MissingIdentity(t *testing.T) {
	e := echo.New()
	h := NewUserHandler(&stubRelationshipService{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/friends", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Friends(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
