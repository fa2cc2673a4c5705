package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/linguameet/linguameet-api/internal/api/middleware"
	"github.com/linguameet/linguameet-api/internal/core/ports"
)

const sessionMaxAge = 7 * 24 * time.Hour

// AuthHandler handles account endpoints: signup, login, logout, onboarding,
// and the current-user probe.
type AuthHandler struct {
	authService ports.AuthService
	// secureCookies marks session cookies Secure; enabled outside development.
	secureCookies bool
}

func NewAuthHandler(authService ports.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookies: secureCookies}
}

// Signup creates a new account and sets the session cookie.
//
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Signup details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, token)
	return c.JSON(http.StatusCreated, authResponse{Success: true, User: user})
}

// Login verifies credentials and sets the session cookie.
//
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, token)
	return c.JSON(http.StatusOK, authResponse{Success: true, User: user})
}

// Logout clears the session cookie.
//
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.clearSessionCookie(c)
	return c.JSON(http.StatusOK, authResponse{Success: true, Message: "logout successful"})
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  authResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := callerFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Success: true, User: user})
}

// Onboard completes the profile and flips the onboarding flag.
//
// @Summary      Complete onboarding
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      onboardingRequest  true  "Profile fields"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  onboardingErrorResponse
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/onboarding [post]
func (h *AuthHandler) Onboard(c echo.Context) error {
	user, err := callerFrom(c)
	if err != nil {
		return err
	}

	var req onboardingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if missing := req.missingFields(); len(missing) > 0 {
		return c.JSON(http.StatusBadRequest, onboardingErrorResponse{
			Message:       "all fields are required",
			MissingFields: missing,
		})
	}

	updated, err := h.authService.Onboard(c.Request().Context(), user.ID, ports.ProfileUpdate{
		FullName:         req.FullName,
		Bio:              req.Bio,
		NativeLanguage:   req.NativeLanguage,
		LearningLanguage: req.LearningLanguage,
		Location:         req.Location,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Success: true, User: updated})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		MaxAge:   int(sessionMaxAge.Seconds()),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookies,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookies,
	})
}
