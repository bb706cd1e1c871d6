package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionPlan keeps string IDs so the seeded catalog ("0" free,
// "1" premium) stays stable across environments.
type SubscriptionPlan struct {
	ID                string       `gorm:"primaryKey" json:"id"`
	Name              string       `gorm:"uniqueIndex;not null" json:"name"`
	Description       string       `json:"description"`
	Price             float64      `gorm:"not null" json:"price"`
	Interval          PlanInterval `gorm:"type:varchar(20);default:'monthly'" json:"interval"`
	IsDefault         bool         `gorm:"default:false" json:"isDefault"`
	IsActive          bool         `gorm:"default:true" json:"isActive"`
	ExternalPlanID    *string      `json:"externalPlanId,omitempty"`
	TrialDays         int          `gorm:"default:0" json:"trialDays"`
	MealPlanMaxDays   int          `gorm:"default:1" json:"mealPlanMaxDays"`
	MealPlansPerMonth int          `gorm:"default:2" json:"mealPlansPerMonth"`
	MaxPeopleCount    int          `gorm:"default:1" json:"maxPeopleCount"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *SubscriptionPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

type Subscription struct {
	BaseModel
	UserID                 string             `gorm:"type:uuid;not null;index" json:"userId"`
	PlanID                 string             `gorm:"not null;index" json:"planId"`
	Status                 SubscriptionStatus `gorm:"type:varchar(20);default:'trial'" json:"status"`
	StartDate              time.Time          `gorm:"not null" json:"startDate"`
	EndDate                time.Time          `gorm:"not null" json:"endDate"`
	AutoRenew              bool               `gorm:"default:true" json:"autoRenew"`
	CancelledAt            *time.Time         `json:"cancelledAt,omitempty"`
	ExternalSubscriptionID *string            `gorm:"index" json:"externalSubscriptionId,omitempty"`

	// Relations
	Plan SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan"`
}

type Payment struct {
	BaseModel
	UserID            string            `gorm:"type:uuid;not null;index" json:"userId"`
	SubscriptionID    *string           `gorm:"type:uuid;index" json:"subscriptionId,omitempty"`
	Amount            float64           `gorm:"not null" json:"amount"`
	Currency          string            `gorm:"default:'usd'" json:"currency"`
	Status            PaymentStatus     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Provider          PaymentProvider   `gorm:"type:varchar(20);default:'stripe'" json:"provider"`
	ExternalPaymentID *string           `gorm:"index" json:"externalPaymentId,omitempty"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
}
