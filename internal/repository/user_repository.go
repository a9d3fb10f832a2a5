package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"postboard/internal/model"
)

// UserRepository defines persistence operations on user records.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	SetVerificationCode(ctx context.Context, id uint, signature string, expiresAt time.Time) error
	// ConsumeVerificationCode flips verified and clears the code in one
	// conditional update. It reports false when the stored code no longer
	// matches, i.e. a concurrent request consumed it first.
	ConsumeVerificationCode(ctx context.Context, id uint, signature string) (bool, error)
	SetForgotPasswordCode(ctx context.Context, id uint, signature string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id uint, hashedPassword string) error
	// ResetPasswordWithCode replaces the password and clears the forgot
	// password code in one conditional update, same consumption contract as
	// ConsumeVerificationCode.
	ResetPasswordWithCode(ctx context.Context, id uint, signature, hashedPassword string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) SetVerificationCode(ctx context.Context, id uint, signature string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"verification_code":            signature,
			"verification_code_expires_at": expiresAt,
		}).Error
}

func (r *userRepository) ConsumeVerificationCode(ctx context.Context, id uint, signature string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND verification_code = ?", id, signature).
		Updates(map[string]interface{}{
			"verified":                     true,
			"verification_code":            "",
			"verification_code_expires_at": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) SetForgotPasswordCode(ctx context.Context, id uint, signature string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"forgot_password_code":            signature,
			"forgot_password_code_expires_at": expiresAt,
		}).Error
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uint, hashedPassword string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).
		Update("password", hashedPassword).Error
}

func (r *userRepository) ResetPasswordWithCode(ctx context.Context, id uint, signature, hashedPassword string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND forgot_password_code = ?", id, signature).
		Updates(map[string]interface{}{
			"password":                        hashedPassword,
			"forgot_password_code":            "",
			"forgot_password_code_expires_at": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
