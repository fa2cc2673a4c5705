package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/linguameet/linguameet-api/internal/core/domain"
	"github.com/linguameet/linguameet-api/internal/core/ports"
)

// UserHandler handles the relationship endpoints: recommendations, friends,
// and the friend-request lifecycle. All domain errors propagate to the
// central error handler for status mapping.
type UserHandler struct {
	service ports.RelationshipService
}

func NewUserHandler(service ports.RelationshipService) *UserHandler {
	return &UserHandler{service: service}
}

type friendRequestResponse struct {
	Success       bool                  `json:"success"`
	FriendRequest *domain.FriendRequest `json:"friendRequest,omitempty"`
	Message       string                `json:"message,omitempty"`
}

// Recommended handles GET /api/user.
//
// @Summary      Recommended users
// @Tags         user
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/user [get]
func (h *UserHandler) Recommended(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	users, err := h.service.RecommendUsers(c.Request().Context(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// Friends handles GET /api/user/friends.
//
// @Summary      List friends
// @Tags         user
// @Produce      json
// @Success      200  {array}   ports.UserCard
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/user/friends [get]
func (h *UserHandler) Friends(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	friends, err := h.service.ListFriends(c.Request().Context(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, friends)
}

// SendRequest handles POST /api/user/friend-request/:id.
//
// @Summary      Send a friend request
// @Tags         user
// @Produce      json
// @Param        id  path  string  true  "Recipient user id"
// @Success      201  {object}  friendRequestResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/user/friend-request/{id} [post]
func (h *UserHandler) SendRequest(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	created, err := h.service.ProposeRequest(c.Request().Context(), caller.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, friendRequestResponse{Success: true, FriendRequest: created})
}

// AcceptRequest handles PUT /api/user/friend-request/:id/accept.
//
// @Summary      Accept a friend request
// @Tags         user
// @Produce      json
// @Param        id  path  string  true  "Friend request id"
// @Success      200  {object}  friendRequestResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /api/user/friend-request/{id}/accept [put]
func (h *UserHandler) AcceptRequest(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	if err := h.service.AcceptRequest(c.Request().Context(), caller.ID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, friendRequestResponse{Success: true, Message: "friend request accepted"})
}

// Requests handles GET /api/user/friend-requests.
//
// @Summary      Incoming and accepted friend requests
// @Tags         user
// @Produce      json
// @Success      200  {object}  ports.RequestsResult
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/user/friend-requests [get]
func (h *UserHandler) Requests(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	result, err := h.service.ListRequests(c.Request().Context(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// OutgoingRequests handles GET /api/user/outgoing-friend-requests.
//
// @Summary      Pending outgoing friend requests
// @Tags         user
// @Produce      json
// @Success      200  {array}   ports.RequestCard
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/user/outgoing-friend-requests [get]
func (h *UserHandler) OutgoingRequests(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	outgoing, err := h.service.ListOutgoing(c.Request().Context(), caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, outgoing)
}
