package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"postboard/internal/auth"
	"postboard/internal/handler"
)

type stubTokenStore struct {
	denied map[string]bool
}

func (s *stubTokenStore) DenylistToken(_ context.Context, tokenID string, _ time.Duration) error {
	if s.denied == nil {
		s.denied = map[string]bool{}
	}
	s.denied[tokenID] = true
	return nil
}

func (s *stubTokenStore) IsTokenDenylisted(_ context.Context, tokenID string) (bool, error) {
	return s.denied[tokenID], nil
}

func newAuthTestServer(jwtService *auth.JWTService, store auth.TokenStoreInterface) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = httpErrorHandler
	e.GET("/protected", func(c echo.Context) error {
		claims := c.Get("user").(*auth.Claims)
		return c.String(http.StatusOK, claims.Email)
	}, bearerAuth(jwtService, store))
	return e
}

func TestBearerAuth_MissingToken(t *testing.T) {
	e := newAuthTestServer(auth.NewJWTService("secret"), &stubTokenStore{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No token provided")
}

func TestBearerAuth_HeaderToken(t *testing.T) {
	jwtService := auth.NewJWTService("secret")
	e := newAuthTestServer(jwtService, &stubTokenStore{})

	token, err := jwtService.IssueToken(1, "user@example.com", true)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user@example.com", rec.Body.String())
}

func TestBearerAuth_CookieToken(t *testing.T) {
	jwtService := auth.NewJWTService("secret")
	e := newAuthTestServer(jwtService, &stubTokenStore{})

	token, err := jwtService.IssueToken(1, "cookie@example.com", true)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: handler.AuthCookieName, Value: token})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cookie@example.com", rec.Body.String())
}

func TestBearerAuth_ExpiredToken(t *testing.T) {
	issuer := auth.NewJWTService("secret").WithClock(func() time.Time {
		return time.Now().Add(-auth.SessionTokenExpiry - time.Second)
	})
	e := newAuthTestServer(auth.NewJWTService("secret"), &stubTokenStore{})

	token, err := issuer.IssueToken(1, "late@example.com", false)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is expired")
}

func TestBearerAuth_DenylistedToken(t *testing.T) {
	jwtService := auth.NewJWTService("secret")
	store := &stubTokenStore{}
	e := newAuthTestServer(jwtService, store)

	token, err := jwtService.IssueToken(1, "out@example.com", true)
	assert.NoError(t, err)
	claims, err := jwtService.VerifyToken(token)
	assert.NoError(t, err)
	assert.NoError(t, store.DenylistToken(context.Background(), claims.ID, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid token")
}

func TestBearerAuth_MissingSecretRejectsButDoesNotCrash(t *testing.T) {
	e := newAuthTestServer(auth.NewJWTService(""), &stubTokenStore{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer some-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token secret is unavailable")
}
