package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/linguameet/linguameet-api/internal/core/ports"
)

// ChatHandler issues user tokens for the external communications platform.
type ChatHandler struct {
	tokens ports.ChatTokenProvider
}

func NewChatHandler(tokens ports.ChatTokenProvider) *ChatHandler {
	return &ChatHandler{tokens: tokens}
}

type chatTokenResponse struct {
	Token string `json:"token"`
}

// Token handles GET /api/chat/token.
//
// @Summary      Chat platform user token
// @Tags         chat
// @Produce      json
// @Success      200  {object}  chatTokenResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/chat/token [get]
func (h *ChatHandler) Token(c echo.Context) error {
	caller, err := callerFrom(c)
	if err != nil {
		return err
	}

	token, err := h.tokens.UserToken(caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, chatTokenResponse{Token: token})
}
