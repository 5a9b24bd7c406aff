package repository

import (
	"context"

	"github.com/HD3-run/Rcommitra/internal/model"

	"gorm.io/gorm"
)

// UserRepository defines the data access contract for users and merchants.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type UserRepository interface {
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ListByMerchant(ctx context.Context, merchantID int64) ([]model.User, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error

	// Merchant-scoped writes return affected-rows so callers can map zero
	// rows to NotFound without confirming cross-tenant existence.
	UpdateRole(ctx context.Context, userID, merchantID int64, role string) (int64, error)
	// DeleteNonAdmin refuses to delete admin-role rows at the SQL level.
	DeleteNonAdmin(ctx context.Context, userID, merchantID int64) (int64, error)

	// ExistsInMerchant reports whether userID belongs to merchantID.
	ExistsInMerchant(ctx context.Context, userID, merchantID int64) (bool, error)

	// Used inside transactions — callers must pass the tx instance
	CreateTx(tx *gorm.DB, u *model.User) error
	UpdateProfileTx(tx *gorm.DB, userID int64, username, email, phone string) (*model.User, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ListByMerchant(ctx context.Context, merchantID int64) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *userRepo) Update(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *userRepo) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ?", userID).
		Update("password_hash", hash).Error
}

func (r *userRepo) UpdateRole(ctx context.Context, userID, merchantID int64, role string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ? AND merchant_id = ?", userID, merchantID).
		Update("role", role)
	return res.RowsAffected, res.Error
}

func (r *userRepo) DeleteNonAdmin(ctx context.Context, userID, merchantID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND merchant_id = ? AND role <> ?", userID, merchantID, model.RoleAdmin).
		Delete(&model.User{})
	return res.RowsAffected, res.Error
}

func (r *userRepo) ExistsInMerchant(ctx context.Context, userID, merchantID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("user_id = ? AND merchant_id = ?", userID, merchantID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepo) CreateTx(tx *gorm.DB, u *model.User) error {
	return tx.Create(u).Error
}

func (r *userRepo) UpdateProfileTx(tx *gorm.DB, userID int64, username, email, phone string) (*model.User, error) {
	res := tx.Model(&model.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"username":     username,
			"email":        email,
			"phone_number": phone,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var u model.User
	if err := tx.First(&u, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) DB() *gorm.DB { return r.db }
