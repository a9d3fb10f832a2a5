package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"postboard/internal/auth"
	apperrors "postboard/internal/errors"
	"postboard/internal/mail"
	"postboard/internal/model"
	"postboard/internal/repository"
	"postboard/internal/validation"
)

// codeTTL is how long a one-time code stays redeemable after being emailed.
const codeTTL = time.Hour

// SignupInput is the payload for account creation.
type SignupInput struct {
	Email    string `json:"email" validate:"required,min=5,max=70,email"`
	Password string `json:"password" validate:"required,userpassword"`
}

// LoginInput is the payload for authentication.
type LoginInput struct {
	Email    string `json:"email" validate:"required,min=5,max=70,email"`
	Password string `json:"password" validate:"required"`
}

// SendCodeInput requests a one-time code for the given address.
type SendCodeInput struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyCodeInput submits a previously emailed verification code.
type VerifyCodeInput struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

// ChangePasswordInput replaces the password of an authenticated user.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,userpassword"`
}

// ResetPasswordInput redeems a forgot-password code for a new password.
type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,userpassword"`
}

// AuthService orchestrates the account lifecycle: signup, login, logout,
// email verification, password change and forgot-password reset.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, in LoginInput) (token string, user *model.User, err error)
	Logout(ctx context.Context, claims *auth.Claims) error
	SendVerificationCode(ctx context.Context, in SendCodeInput) error
	VerifyVerificationCode(ctx context.Context, in VerifyCodeInput) (token string, err error)
	ChangePassword(ctx context.Context, claims *auth.Claims, in ChangePasswordInput) error
	SendForgotPasswordCode(ctx context.Context, in SendCodeInput) error
	VerifyForgotPasswordCode(ctx context.Context, in ResetPasswordInput) error
}

type authService struct {
	users      repository.UserRepository
	hasher     *auth.PasswordHasher
	signer     *auth.CodeSigner
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	mailer     mail.Mailer
	mailFrom   string
	now        func() time.Time
}

// NewAuthService creates a new authentication service. The mailer is an
// injected capability, not process-wide state.
func NewAuthService(
	users repository.UserRepository,
	hasher *auth.PasswordHasher,
	signer *auth.CodeSigner,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	mailer mail.Mailer,
	mailFrom string,
) AuthService {
	return &authService{
		users:      users,
		hasher:     hasher,
		signer:     signer,
		jwtService: jwtService,
		tokenStore: tokenStore,
		mailer:     mailer,
		mailFrom:   mailFrom,
		now:        time.Now,
	}
}

// Signup creates a new unverified account with a hashed password.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	if err := validation.Validate(in); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashed, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:    email,
		Password: hashed,
		Verified: false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// lookupByEmail resolves an account, reserving ErrUserNotFound for a genuine
// miss. A store outage surfaces as a wrapped error and reads as a 500 at the
// boundary, not as a missing account.
func (s *authService) lookupByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// Login authenticates the user and issues a session token carrying the
// current verification status.
func (s *authService) Login(ctx context.Context, in LoginInput) (string, *model.User, error) {
	if err := validation.Validate(in); err != nil {
		return "", nil, err
	}

	user, err := s.lookupByEmail(ctx, in.Email)
	if err != nil {
		return "", nil, err
	}
	if !s.hasher.Compare(in.Password, user.Password) {
		return "", nil, apperrors.ErrWrongPassword
	}

	token, err := s.jwtService.IssueToken(user.ID, user.Email, user.Verified)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// Logout revokes the presented token for its remaining lifetime. With the
// denylist unreachable the token simply ages out at its natural expiry.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	return s.tokenStore.DenylistToken(ctx, claims.ID, ttl)
}

// SendVerificationCode emails a fresh one-time code and stores its signed
// form. The send happens first: a failed send leaves no pending code behind.
func (s *authService) SendVerificationCode(ctx context.Context, in SendCodeInput) error {
	if err := validation.Validate(in); err != nil {
		return err
	}

	user, err := s.lookupByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if user.Verified {
		return apperrors.ErrAlreadyVerified
	}

	code, err := auth.GenerateCode(auth.DefaultCodeLength)
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	if err := s.mailer.Send(ctx, mail.Message{
		From:     s.mailFrom,
		To:       user.Email,
		Subject:  "Verification code",
		HTMLBody: fmt.Sprintf("<h1>%s</h1>", code),
	}); err != nil {
		return apperrors.ErrMailNotSent
	}

	expiresAt := s.now().Add(codeTTL)
	if err := s.users.SetVerificationCode(ctx, user.ID, s.signer.Sign(code), expiresAt); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return nil
}

// VerifyVerificationCode checks the submitted code and, on success, marks
// the account verified and issues a fresh token asserting verified=true.
// Expiry is checked before the signed comparison: an expired but otherwise
// correct code reports expiry, not mismatch.
func (s *authService) VerifyVerificationCode(ctx context.Context, in VerifyCodeInput) (string, error) {
	if err := validation.Validate(in); err != nil {
		return "", err
	}

	user, err := s.lookupByEmail(ctx, in.Email)
	if err != nil {
		return "", err
	}
	if user.Verified {
		return "", apperrors.ErrAlreadyVerified
	}
	if user.VerificationCode == "" || user.VerificationCodeExpiresAt == nil {
		return "", apperrors.ErrNoPendingCode
	}
	if s.now().After(*user.VerificationCodeExpiresAt) {
		return "", apperrors.ErrCodeExpired
	}
	if !s.signer.Matches(in.Code, user.VerificationCode) {
		return "", apperrors.ErrCodeMismatch
	}

	consumed, err := s.users.ConsumeVerificationCode(ctx, user.ID, user.VerificationCode)
	if err != nil {
		return "", fmt.Errorf("consume verification code: %w", err)
	}
	if !consumed {
		return "", apperrors.ErrCodeConsumed
	}

	token, err := s.jwtService.IssueToken(user.ID, user.Email, true)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// ChangePassword replaces the password of a verified, authenticated user
// after re-checking the old one.
func (s *authService) ChangePassword(ctx context.Context, claims *auth.Claims, in ChangePasswordInput) error {
	if err := validation.Validate(in); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !user.Verified {
		return apperrors.ErrNotVerified
	}
	if !s.hasher.Compare(in.OldPassword, user.Password) {
		return apperrors.ErrWrongPassword
	}

	hashed, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hashed); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SendForgotPasswordCode mirrors SendVerificationCode on the forgot-password
// channel, using the numeric code variant.
func (s *authService) SendForgotPasswordCode(ctx context.Context, in SendCodeInput) error {
	if err := validation.Validate(in); err != nil {
		return err
	}

	user, err := s.lookupByEmail(ctx, in.Email)
	if err != nil {
		return err
	}

	code, err := auth.GenerateNumericCode()
	if err != nil {
		return fmt.Errorf("generate forgot password code: %w", err)
	}

	if err := s.mailer.Send(ctx, mail.Message{
		From:     s.mailFrom,
		To:       user.Email,
		Subject:  "Forgot password code",
		HTMLBody: fmt.Sprintf("<h1>%s</h1>", code),
	}); err != nil {
		return apperrors.ErrMailNotSent
	}

	expiresAt := s.now().Add(codeTTL)
	if err := s.users.SetForgotPasswordCode(ctx, user.ID, s.signer.Sign(code), expiresAt); err != nil {
		return fmt.Errorf("store forgot password code: %w", err)
	}
	return nil
}

// VerifyForgotPasswordCode redeems a forgot-password code for a new, re-hashed
// password. Same expiry-before-signature ordering as verification.
func (s *authService) VerifyForgotPasswordCode(ctx context.Context, in ResetPasswordInput) error {
	if err := validation.Validate(in); err != nil {
		return err
	}

	user, err := s.lookupByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if user.ForgotPasswordCode == "" || user.ForgotPasswordCodeExpiresAt == nil {
		return apperrors.ErrNoPendingCode
	}
	if s.now().After(*user.ForgotPasswordCodeExpiresAt) {
		return apperrors.ErrCodeExpired
	}
	if !s.signer.Matches(in.Code, user.ForgotPasswordCode) {
		return apperrors.ErrCodeMismatch
	}

	hashed, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	consumed, err := s.users.ResetPasswordWithCode(ctx, user.ID, user.ForgotPasswordCode, hashed)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if !consumed {
		return apperrors.ErrCodeConsumed
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
