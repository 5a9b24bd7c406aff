package repository

import (
	"context"

	"github.com/HD3-run/Rcommitra/internal/model"

	"gorm.io/gorm"
)

type MerchantRepository interface {
	FindByID(ctx context.Context, merchantID int64) (*model.Merchant, error)
	// FindByEmailTx / CreateTx run inside the registration transaction.
	FindByEmailTx(tx *gorm.DB, email string) (*model.Merchant, error)
	CreateTx(tx *gorm.DB, m *model.Merchant) error
	UpdateContactTx(tx *gorm.DB, merchantID int64, contactName, email, phone string) error
}

type merchantRepo struct{ db *gorm.DB }

func NewMerchantRepository(db *gorm.DB) MerchantRepository { return &merchantRepo{db: db} }

func (r *merchantRepo) FindByID(ctx context.Context, merchantID int64) (*model.Merchant, error) {
	var m model.Merchant
	err := r.db.WithContext(ctx).First(&m, "merchant_id = ?", merchantID).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *merchantRepo) FindByEmailTx(tx *gorm.DB, email string) (*model.Merchant, error) {
	var m model.Merchant
	err := tx.First(&m, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *merchantRepo) CreateTx(tx *gorm.DB, m *model.Merchant) error {
	return tx.Create(m).Error
}

func (r *merchantRepo) UpdateContactTx(tx *gorm.DB, merchantID int64, contactName, email, phone string) error {
	return tx.Model(&model.Merchant{}).
		Where("merchant_id = ?", merchantID).
		Updates(map[string]interface{}{
			"contact_person_name": contactName,
			"email":               email,
			"phone_number":        phone,
		}).Error
}
