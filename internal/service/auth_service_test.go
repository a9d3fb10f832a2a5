package service

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"postboard/internal/auth"
	apperrors "postboard/internal/errors"
	"postboard/internal/mail"
	"postboard/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) SetVerificationCode(ctx context.Context, id uint, signature string, expiresAt time.Time) error {
	args := m.Called(ctx, id, signature, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) ConsumeVerificationCode(ctx context.Context, id uint, signature string) (bool, error) {
	args := m.Called(ctx, id, signature)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SetForgotPasswordCode(ctx context.Context, id uint, signature string, expiresAt time.Time) error {
	args := m.Called(ctx, id, signature, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

func (m *MockUserRepository) ResetPasswordWithCode(ctx context.Context, id uint, signature, hashedPassword string) (bool, error) {
	args := m.Called(ctx, id, signature, hashedPassword)
	return args.Bool(0), args.Error(1)
}

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) DenylistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsTokenDenylisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newTestService(users *MockUserRepository, tokenStore *MockTokenStore, mailer *MockMailer) AuthService {
	return NewAuthService(
		users,
		auth.NewPasswordHasher(),
		auth.NewCodeSigner("hmac-test-key"),
		auth.NewJWTService("jwt-test-secret"),
		tokenStore,
		mailer,
		"noreply@example.com",
	)
}

func TestAuthService_Signup(t *testing.T) {
	tests := []struct {
		name          string
		input         SignupInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful signup",
			input: SignupInput{Email: "new@example.com", Password: "Passw0rd!"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
		},
		{
			name:  "duplicate email",
			input: SignupInput{Email: "taken@example.com", Password: "Passw0rd!"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{Email: "taken@example.com"}, nil)
			},
			expectedError: apperrors.ErrUserExists,
		},
		{
			name:          "weak password rejected before the store is touched",
			input:         SignupInput{Email: "new@example.com", Password: "short"},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: nil, // validation error, checked separately below
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
			user, err := svc.Signup(context.Background(), tt.input)

			switch tt.name {
			case "successful signup":
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.Equal(t, "new@example.com", user.Email)
				assert.False(t, user.Verified)
				assert.NotEqual(t, tt.input.Password, user.Password, "plaintext must never be stored")
				assert.True(t, auth.NewPasswordHasher().Compare(tt.input.Password, user.Password))
			case "duplicate email":
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			case "weak password rejected before the store is touched":
				assert.Error(t, err)
				assert.Nil(t, user)
				mockRepo.AssertNotCalled(t, "FindByEmail")
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Signup_LowercasesEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByEmail", mock.Anything, "mixed@example.com").Return(nil, gorm.ErrRecordNotFound)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
	user, err := svc.Signup(context.Background(), SignupInput{Email: "  MIXED@Example.com ", Password: "Passw0rd!"})

	assert.NoError(t, err)
	assert.Equal(t, "mixed@example.com", user.Email)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	hasher := auth.NewPasswordHasher()
	hashed, _ := hasher.Hash("Passw0rd!")
	jwtService := auth.NewJWTService("jwt-test-secret")

	tests := []struct {
		name          string
		input         LoginInput
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:  "successful login",
			input: LoginInput{Email: "user@example.com", Password: "Passw0rd!"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
					ID: 5, Email: "user@example.com", Password: hashed, Verified: false,
				}, nil)
			},
		},
		{
			name:  "unknown user",
			input: LoginInput{Email: "ghost@example.com", Password: "Passw0rd!"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
		{
			name:  "wrong password",
			input: LoginInput{Email: "user@example.com", Password: "Wrongpass1"},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
					ID: 5, Email: "user@example.com", Password: hashed,
				}, nil)
			},
			expectedError: apperrors.ErrWrongPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
			token, user, err := svc.Login(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotEmpty(t, token)
				claims, verr := jwtService.VerifyToken(token)
				assert.NoError(t, verr)
				assert.Equal(t, uint(5), claims.UserID)
				assert.False(t, claims.Verified, "fresh signup logs in unverified")
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	mockStore := new(MockTokenStore)
	mockStore.On("DenylistToken", mock.Anything, "jti-1", mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= auth.SessionTokenExpiry
	})).Return(nil)

	svc := newTestService(new(MockUserRepository), mockStore, new(MockMailer))

	claims := &auth.Claims{}
	claims.ID = "jti-1"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(4 * time.Hour))

	assert.NoError(t, svc.Logout(context.Background(), claims))
	mockStore.AssertExpectations(t)
}

var codeInHTML = regexp.MustCompile(`<h1>([0-9a-f]+)</h1>`)

func TestAuthService_SendVerificationCode(t *testing.T) {
	t.Run("already verified sends nothing and stores nothing", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "done@example.com").Return(&model.User{
			ID: 2, Email: "done@example.com", Verified: true,
		}, nil)
		mockMailer := new(MockMailer)

		svc := newTestService(mockRepo, new(MockTokenStore), mockMailer)
		err := svc.SendVerificationCode(context.Background(), SendCodeInput{Email: "done@example.com"})

		assert.ErrorIs(t, err, apperrors.ErrAlreadyVerified)
		mockMailer.AssertNotCalled(t, "Send")
		mockRepo.AssertNotCalled(t, "SetVerificationCode")
	})

	t.Run("failed send leaves no pending code", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
			ID: 2, Email: "user@example.com",
		}, nil)
		mockMailer := new(MockMailer)
		mockMailer.On("Send", mock.Anything, mock.AnythingOfType("mail.Message")).Return(assert.AnError)

		svc := newTestService(mockRepo, new(MockTokenStore), mockMailer)
		err := svc.SendVerificationCode(context.Background(), SendCodeInput{Email: "user@example.com"})

		assert.ErrorIs(t, err, apperrors.ErrMailNotSent)
		mockRepo.AssertNotCalled(t, "SetVerificationCode")
	})

	t.Run("stores the signed form of the emailed code", func(t *testing.T) {
		var sent mail.Message
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
			ID: 2, Email: "user@example.com",
		}, nil)
		mockMailer := new(MockMailer)
		mockMailer.On("Send", mock.Anything, mock.AnythingOfType("mail.Message")).
			Run(func(args mock.Arguments) { sent = args.Get(1).(mail.Message) }).
			Return(nil)

		var storedSignature string
		mockRepo.On("SetVerificationCode", mock.Anything, uint(2), mock.AnythingOfType("string"),
			mock.MatchedBy(func(expiry time.Time) bool { return time.Until(expiry) > 59*time.Minute })).
			Run(func(args mock.Arguments) { storedSignature = args.String(2) }).
			Return(nil)

		svc := newTestService(mockRepo, new(MockTokenStore), mockMailer)
		err := svc.SendVerificationCode(context.Background(), SendCodeInput{Email: "user@example.com"})

		assert.NoError(t, err)
		assert.Equal(t, "Verification code", sent.Subject)
		matches := codeInHTML.FindStringSubmatch(sent.HTMLBody)
		assert.Len(t, matches, 2, "mail body should carry the plaintext code")
		code := matches[1]
		assert.Len(t, code, auth.DefaultCodeLength)
		assert.Equal(t, auth.NewCodeSigner("hmac-test-key").Sign(code), storedSignature,
			"stored form must be the HMAC signature, never the plaintext")
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_VerifyVerificationCode(t *testing.T) {
	signer := auth.NewCodeSigner("hmac-test-key")
	signature := signer.Sign("abc123")
	future := time.Now().Add(30 * time.Minute)
	past := time.Now().Add(-time.Minute)

	pendingUser := func(expiry time.Time) *model.User {
		return &model.User{
			ID:                        9,
			Email:                     "user@example.com",
			VerificationCode:          signature,
			VerificationCodeExpiresAt: &expiry,
		}
	}

	tests := []struct {
		name          string
		input         VerifyCodeInput
		user          *model.User
		consumed      bool
		expectConsume bool
		expectedError error
	}{
		{
			name:          "expired but correct code reports expiry, not mismatch",
			input:         VerifyCodeInput{Email: "user@example.com", Code: "abc123"},
			user:          pendingUser(past),
			expectedError: apperrors.ErrCodeExpired,
		},
		{
			name:          "unexpired but wrong code reports mismatch",
			input:         VerifyCodeInput{Email: "user@example.com", Code: "zzz999"},
			user:          pendingUser(future),
			expectedError: apperrors.ErrCodeMismatch,
		},
		{
			name:          "no pending code",
			input:         VerifyCodeInput{Email: "user@example.com", Code: "abc123"},
			user:          &model.User{ID: 9, Email: "user@example.com"},
			expectedError: apperrors.ErrNoPendingCode,
		},
		{
			name:          "already verified",
			input:         VerifyCodeInput{Email: "user@example.com", Code: "abc123"},
			user:          &model.User{ID: 9, Email: "user@example.com", Verified: true},
			expectedError: apperrors.ErrAlreadyVerified,
		},
		{
			name:          "concurrent request consumed the code first",
			input:         VerifyCodeInput{Email: "user@example.com", Code: "abc123"},
			user:          pendingUser(future),
			expectConsume: true,
			consumed:      false,
			expectedError: apperrors.ErrCodeConsumed,
		},
		{
			name:          "successful verification",
			input:         VerifyCodeInput{Email: "user@example.com", Code: "abc123"},
			user:          pendingUser(future),
			expectConsume: true,
			consumed:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(tt.user, nil)
			if tt.expectConsume {
				mockRepo.On("ConsumeVerificationCode", mock.Anything, uint(9), signature).Return(tt.consumed, nil)
			}

			svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
			token, err := svc.VerifyVerificationCode(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				claims, verr := auth.NewJWTService("jwt-test-secret").VerifyToken(token)
				assert.NoError(t, verr)
				assert.True(t, claims.Verified, "fresh token must assert verified=true")
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	hasher := auth.NewPasswordHasher()
	oldHash, _ := hasher.Hash("Oldpass1!")

	claims := &auth.Claims{UserID: 3, Email: "user@example.com", Verified: true}

	t.Run("unverified user is refused", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{
			ID: 3, Password: oldHash, Verified: false,
		}, nil)

		svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
		err := svc.ChangePassword(context.Background(), claims, ChangePasswordInput{
			OldPassword: "Oldpass1!", NewPassword: "Newpass1!",
		})
		assert.ErrorIs(t, err, apperrors.ErrNotVerified)
		mockRepo.AssertNotCalled(t, "UpdatePassword")
	})

	t.Run("wrong old password", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{
			ID: 3, Password: oldHash, Verified: true,
		}, nil)

		svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
		err := svc.ChangePassword(context.Background(), claims, ChangePasswordInput{
			OldPassword: "Wrongold1", NewPassword: "Newpass1!",
		})
		assert.ErrorIs(t, err, apperrors.ErrWrongPassword)
	})

	t.Run("rehashes and stores the new password", func(t *testing.T) {
		var storedHash string
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(3)).Return(&model.User{
			ID: 3, Password: oldHash, Verified: true,
		}, nil)
		mockRepo.On("UpdatePassword", mock.Anything, uint(3), mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { storedHash = args.String(2) }).
			Return(nil)

		svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
		err := svc.ChangePassword(context.Background(), claims, ChangePasswordInput{
			OldPassword: "Oldpass1!", NewPassword: "Newpass1!",
		})
		assert.NoError(t, err)
		assert.NotEqual(t, "Newpass1!", storedHash)
		assert.True(t, hasher.Compare("Newpass1!", storedHash))
		mockRepo.AssertExpectations(t)
	})
}

func TestAuthService_StoreOutageReportsUpstreamFailure(t *testing.T) {
	// A store outage is not a missing account: it must never read as 404.
	outage := errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
	claims := &auth.Claims{UserID: 3, Email: "user@example.com", Verified: true}

	tests := []struct {
		name      string
		setupMock func(*MockUserRepository)
		call      func(svc AuthService) error
	}{
		{
			name: "login",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(nil, outage)
			},
			call: func(svc AuthService) error {
				_, _, err := svc.Login(context.Background(), LoginInput{Email: "user@example.com", Password: "Passw0rd!"})
				return err
			},
		},
		{
			name: "send verification code",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(nil, outage)
			},
			call: func(svc AuthService) error {
				return svc.SendVerificationCode(context.Background(), SendCodeInput{Email: "user@example.com"})
			},
		},
		{
			name: "verify verification code",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(nil, outage)
			},
			call: func(svc AuthService) error {
				_, err := svc.VerifyVerificationCode(context.Background(), VerifyCodeInput{Email: "user@example.com", Code: "abc123"})
				return err
			},
		},
		{
			name: "change password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(nil, outage)
			},
			call: func(svc AuthService) error {
				return svc.ChangePassword(context.Background(), claims, ChangePasswordInput{
					OldPassword: "Oldpass1!", NewPassword: "Newpass1!",
				})
			},
		},
		{
			name: "send forgot password code",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(nil, outage)
			},
			call: func(svc AuthService) error {
				return svc.SendForgotPasswordCode(context.Background(), SendCodeInput{Email: "user@example.com"})
			},
		},
		{
			name: "verify forgot password code",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "user@example.com").Return(nil, outage)
			},
			call: func(svc AuthService) error {
				return svc.VerifyForgotPasswordCode(context.Background(), ResetPasswordInput{
					Email: "user@example.com", Code: "004512", NewPassword: "Newpass1!",
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
			err := tt.call(svc)

			assert.Error(t, err)
			assert.NotErrorIs(t, err, apperrors.ErrUserNotFound)
			assert.ErrorIs(t, err, outage, "the cause must stay inspectable")
			assert.Equal(t, http.StatusInternalServerError, apperrors.MapErrorToHTTP(err).StatusCode)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_VerifyForgotPasswordCode(t *testing.T) {
	signer := auth.NewCodeSigner("hmac-test-key")
	signature := signer.Sign("004512")
	future := time.Now().Add(30 * time.Minute)
	past := time.Now().Add(-time.Minute)

	t.Run("expired code", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
			ID: 4, Email: "user@example.com",
			ForgotPasswordCode: signature, ForgotPasswordCodeExpiresAt: &past,
		}, nil)

		svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
		err := svc.VerifyForgotPasswordCode(context.Background(), ResetPasswordInput{
			Email: "user@example.com", Code: "004512", NewPassword: "Newpass1!",
		})
		assert.ErrorIs(t, err, apperrors.ErrCodeExpired)
		mockRepo.AssertNotCalled(t, "ResetPasswordWithCode")
	})

	t.Run("successful reset replaces the password", func(t *testing.T) {
		var storedHash string
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByEmail", mock.Anything, "user@example.com").Return(&model.User{
			ID: 4, Email: "user@example.com",
			ForgotPasswordCode: signature, ForgotPasswordCodeExpiresAt: &future,
		}, nil)
		mockRepo.On("ResetPasswordWithCode", mock.Anything, uint(4), signature, mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { storedHash = args.String(3) }).
			Return(true, nil)

		svc := newTestService(mockRepo, new(MockTokenStore), new(MockMailer))
		err := svc.VerifyForgotPasswordCode(context.Background(), ResetPasswordInput{
			Email: "user@example.com", Code: "004512", NewPassword: "Newpass1!",
		})
		assert.NoError(t, err)
		assert.True(t, auth.NewPasswordHasher().Compare("Newpass1!", storedHash))
		mockRepo.AssertExpectations(t)
	})
}
