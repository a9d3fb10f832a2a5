package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"postboard/internal/auth"
	apperrors "postboard/internal/errors"
	"postboard/internal/service"
	"postboard/internal/validation"
)

// AuthCookieName is the session cookie, named for the auth scheme it carries.
const AuthCookieName = "Authorization"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
	production  bool
}

// NewAuthHandler creates a new auth handler. production gates the cookie's
// Secure and HttpOnly attributes.
func NewAuthHandler(authService service.AuthService, production bool) *AuthHandler {
	return &AuthHandler{authService: authService, production: production}
}

// TokenResponse is the envelope for endpoints that mint a session token.
type TokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Signup godoc
// @Summary Create a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup data"
// @Success 201 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 409 {object} errors.Response
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var in service.SignupInput
	if err := c.Bind(&in); err != nil {
		return respondInvalidBody(c)
	}

	user, err := h.authService.Signup(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, apperrors.Response{
		Success: true,
		Message: "Your account has been created successfully",
		Data:    user,
	})
}

// Login godoc
// @Summary Authenticate and receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.LoginInput true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var in service.LoginInput
	if err := c.Bind(&in); err != nil {
		return respondInvalidBody(c)
	}

	token, _, err := h.authService.Login(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}

	c.SetCookie(h.sessionCookie(token))
	return c.JSON(http.StatusOK, TokenResponse{
		Success: true,
		Message: "Logged in successfully",
		Token:   token,
	})
}

// Logout godoc
// @Summary Revoke the session token and clear the cookie
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.authService.Logout(c.Request().Context(), claims); err != nil {
		return respondError(c, err)
	}

	c.SetCookie(h.expiredCookie())
	return c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Message: "Logged out successfully",
	})
}

// SendVerificationCode godoc
// @Summary Email a one-time verification code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SendCodeInput true "Target email"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /auth/send-verification-code [patch]
func (h *AuthHandler) SendVerificationCode(c echo.Context) error {
	var in service.SendCodeInput
	if err := c.Bind(&in); err != nil {
		return respondInvalidBody(c)
	}

	if err := h.authService.SendVerificationCode(c.Request().Context(), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Message: "Verification code sent",
	})
}

// VerifyVerificationCode godoc
// @Summary Confirm a verification code and mark the account verified
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.VerifyCodeInput true "Email and code"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /auth/verify-verification-code [patch]
func (h *AuthHandler) VerifyVerificationCode(c echo.Context) error {
	var in service.VerifyCodeInput
	if err := c.Bind(&in); err != nil {
		return respondInvalidBody(c)
	}

	token, err := h.authService.VerifyVerificationCode(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}

	// the fresh token asserts verified=true; re-set the cookie so the client
	// stops presenting the stale unverified one
	c.SetCookie(h.sessionCookie(token))
	return c.JSON(http.StatusOK, TokenResponse{
		Success: true,
		Message: "Your account has been verified",
		Token:   token,
	})
}

// ChangePassword godoc
// @Summary Replace the password of the authenticated user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ChangePasswordInput true "Old and new password"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 401 {object} errors.Response
// @Failure 403 {object} errors.Response
// @Router /auth/change-password [patch]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	var in service.ChangePasswordInput
	if err := c.Bind(&in); err != nil {
		return respondInvalidBody(c)
	}

	if err := h.authService.ChangePassword(c.Request().Context(), claims, in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Message: "Password updated successfully",
	})
}

// SendForgotPasswordCode godoc
// @Summary Email a one-time password reset code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SendCodeInput true "Target email"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /auth/send-forgot-password-code [patch]
func (h *AuthHandler) SendForgotPasswordCode(c echo.Context) error {
	var in service.SendCodeInput
	if err := c.Bind(&in); err != nil {
		return respondInvalidBody(c)
	}

	if err := h.authService.SendForgotPasswordCode(c.Request().Context(), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Message: "Forgot password code sent",
	})
}

// VerifyForgotPasswordCode godoc
// @Summary Redeem a reset code for a new password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.ResetPasswordInput true "Email, code and new password"
// @Success 200 {object} errors.Response
// @Failure 400 {object} errors.Response
// @Failure 404 {object} errors.Response
// @Router /auth/verify-forgot-password-code [patch]
func (h *AuthHandler) VerifyForgotPasswordCode(c echo.Context) error {
	var in service.ResetPasswordInput
	if err := c.Bind(&in); err != nil {
		return respondInvalidBody(c)
	}

	if err := h.authService.VerifyForgotPasswordCode(c.Request().Context(), in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, apperrors.Response{
		Success: true,
		Message: "Password has been reset",
	})
}

func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.SessionTokenExpiry),
		SameSite: http.SameSiteStrictMode,
		HttpOnly: h.production,
		Secure:   h.production,
	}
}

func (h *AuthHandler) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteStrictMode,
		HttpOnly: h.production,
		Secure:   h.production,
	}
}

// claimsFrom pulls the verified claims attached by the auth middleware.
func claimsFrom(c echo.Context) (*auth.Claims, error) {
	claims, ok := c.Get("user").(*auth.Claims)
	if !ok || claims == nil {
		return nil, auth.ErrTokenMissing
	}
	return claims, nil
}

func respondInvalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, apperrors.Response{
		Success: false,
		Message: "Invalid request body",
	})
}

// respondError maps validation and domain failures onto the uniform
// {success:false, message} envelope.
func respondError(c echo.Context, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return c.JSON(http.StatusBadRequest, apperrors.Response{Success: false, Message: verr.Message})
	}
	if errors.Is(err, auth.ErrTokenMissing) {
		return c.JSON(http.StatusUnauthorized, apperrors.Response{Success: false, Message: "No token provided"})
	}
	httpErr := apperrors.MapErrorToHTTP(err)
	return c.JSON(httpErr.StatusCode, apperrors.Response{Success: false, Message: httpErr.Message})
}
