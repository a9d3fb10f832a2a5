package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// SessionTokenExpiry is the fixed lifetime of issued session tokens.
const SessionTokenExpiry = 8 * time.Hour

var (
	// ErrTokenExpired is returned when the token's embedded expiry has passed.
	ErrTokenExpired = errors.New("token is expired")
	// ErrTokenInvalid is returned for malformed or badly signed tokens.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenMissing is returned when no token was supplied.
	ErrTokenMissing = errors.New("no token provided")
	// ErrSecretMissing is returned when the signing secret is not configured.
	// Every authenticated request fails, but the process stays up.
	ErrSecretMissing = errors.New("token secret is unavailable")
)

// Claims are the identity claims carried by a session token.
type Claims struct {
	UserID   uint   `json:"userId"`
	Email    string `json:"email"`
	Verified bool   `json:"verified"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies session tokens. One injectable clock drives
// both issuance and expiry checks, so expiry behaviour is testable without
// real-time offsets.
type JWTService struct {
	secret []byte
	now    func() time.Time
}

// NewJWTService creates a token service over the given signing secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the service clock. Intended for tests.
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// IssueToken signs a session token carrying the user's identity and current
// verification status, expiring SessionTokenExpiry from now. The jti is
// unique per token and keys the logout denylist.
func (s *JWTService) IssueToken(userID uint, email string, verified bool) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrSecretMissing
	}
	now := s.now()
	claims := &Claims{
		UserID:   userID,
		Email:    email,
		Verified: verified,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken validates the token signature and expiry and returns the
// claims. Expired and malformed tokens are reported as distinct errors; both
// read as unauthenticated at the boundary.
func (s *JWTService) VerifyToken(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrSecretMissing
	}
	if tokenString == "" {
		return nil, ErrTokenMissing
	}

	// claims validation is done here against the service clock, not the
	// library's wall clock
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}
	if s.now().After(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
