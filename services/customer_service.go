package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-reservation/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerService struct {
	DB *gorm.DB
}

// NewCustomerService Constructor สำหรับ Dependency Injection
func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{DB: db}
}

// Get returns the local mirror of a verified user.
func (s *CustomerService) Get(ctx context.Context, id uint) (models.Customer, error) {
	var c models.Customer
	if err := s.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c, notFoundf("customer %d not found", id)
		}
		return c, fmt.Errorf("failed to load customer %d: %w", id, err)
	}
	return c, nil
}

// ensureCustomer creates the customer row keyed by the identity provider's
// user id if it does not exist yet. Existing rows keep their details.
func ensureCustomer(tx *gorm.DB, id uint, fullName, email, phone string) error {
	if id == 0 {
		return validationf("customer id is required")
	}
	c := models.Customer{
		Model:    gorm.Model{ID: id},
		FullName: strings.TrimSpace(fullName),
		Email:    strings.TrimSpace(email),
		Phone:    strings.TrimSpace(phone),
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&c).Error; err != nil {
		return fmt.Errorf("failed to ensure customer %d: %w", id, err)
	}
	return nil
}
