package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"nutriplan_backend/internal/models"
)

var (
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrSubscriptionPlanNotFound = errors.New("subscription plan not found")
	ErrPaymentNotFound          = errors.New("payment not found")
)

type SubscriptionRepository interface {
	// SubscriptionPlan operations
	CreatePlan(plan *models.SubscriptionPlan) error
	FindPlanByID(id string) (*models.SubscriptionPlan, error)
	FindActivePlans() ([]models.SubscriptionPlan, error)
	CountPlans() (int64, error)

	// Subscription operations
	CreateSubscription(subscription *models.Subscription) error
	FindSubscriptionByID(id string) (*models.Subscription, error)
	FindActiveByUser(userID string) (*models.Subscription, error)
	FindByExternalID(externalID string) (*models.Subscription, error)
	UpdateSubscription(subscription *models.Subscription) error
	ExpireOverdue(now time.Time) (int64, error)

	// Payment operations
	CreatePayment(payment *models.Payment) error
	FindPaymentByExternalID(externalID string) (*models.Payment, error)
	FindPaymentsByUser(userID string) ([]models.Payment, error)
	UpdatePayment(payment *models.Payment) error
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

// SubscriptionPlan operations

func (r *SubscriptionRepositoryImpl) CreatePlan(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

func (r *SubscriptionRepositoryImpl) FindPlanByID(id string) (*models.SubscriptionPlan, error) {
	if !validID(id) {
		return nil, ErrSubscriptionPlanNotFound
	}
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepositoryImpl) FindActivePlans() ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := r.db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepositoryImpl) CountPlans() (int64, error) {
	var count int64
	err := r.db.Model(&models.SubscriptionPlan{}).Count(&count).Error
	return count, err
}

// Subscription operations

func (r *SubscriptionRepositoryImpl) CreateSubscription(subscription *models.Subscription) error {
	return r.db.Create(subscription).Error
}

func (r *SubscriptionRepositoryImpl) FindSubscriptionByID(id string) (*models.Subscription, error) {
	if !validID(id) {
		return nil, ErrSubscriptionNotFound
	}
	var subscription models.Subscription
	err := r.db.Preload("Plan").First(&subscription, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

// FindActiveByUser returns the newest active or trial subscription,
// so stale rows left behind by earlier purchases never shadow the
// current one.
func (r *SubscriptionRepositoryImpl) FindActiveByUser(userID string) (*models.Subscription, error) {
	var subscription models.Subscription
	err := r.db.Preload("Plan").
		Where("user_id = ? AND status IN ?", userID,
			[]models.SubscriptionStatus{models.SubscriptionStatusActive, models.SubscriptionStatusTrial}).
		Order("start_date DESC").
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *SubscriptionRepositoryImpl) FindByExternalID(externalID string) (*models.Subscription, error) {
	var subscription models.Subscription
	err := r.db.Preload("Plan").
		Where("external_subscription_id = ?", externalID).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *SubscriptionRepositoryImpl) UpdateSubscription(subscription *models.Subscription) error {
	result := r.db.Model(subscription).Updates(map[string]interface{}{
		"plan_id":                  subscription.PlanID,
		"status":                   subscription.Status,
		"start_date":               subscription.StartDate,
		"end_date":                 subscription.EndDate,
		"auto_renew":               subscription.AutoRenew,
		"cancelled_at":             subscription.CancelledAt,
		"external_subscription_id": subscription.ExternalSubscriptionID,
		"updated_at":               time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ExpireOverdue flips active and trial subscriptions past their end date
// to expired. Returns the number of rows touched.
func (r *SubscriptionRepositoryImpl) ExpireOverdue(now time.Time) (int64, error) {
	result := r.db.Model(&models.Subscription{}).
		Where("status IN ? AND end_date < ?",
			[]models.SubscriptionStatus{models.SubscriptionStatusActive, models.SubscriptionStatusTrial}, now).
		Updates(map[string]interface{}{
			"status":     models.SubscriptionStatusExpired,
			"updated_at": now,
		})
	return result.RowsAffected, result.Error
}

// Payment operations

func (r *SubscriptionRepositoryImpl) CreatePayment(payment *models.Payment) error {
	return r.db.Create(payment).Error
}

func (r *SubscriptionRepositoryImpl) FindPaymentByExternalID(externalID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.Where("external_payment_id = ?", externalID).First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *SubscriptionRepositoryImpl) FindPaymentsByUser(userID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *SubscriptionRepositoryImpl) UpdatePayment(payment *models.Payment) error {
	result := r.db.Model(payment).Updates(map[string]interface{}{
		"status":              payment.Status,
		"amount":              payment.Amount,
		"subscription_id":     payment.SubscriptionID,
		"external_payment_id": payment.ExternalPaymentID,
		"metadata":            payment.Metadata,
		"updated_at":          time.Now(),
	})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
