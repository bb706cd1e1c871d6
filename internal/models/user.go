package models

import "time"

type User struct {
	BaseModel
	Email                string     `gorm:"uniqueIndex;not null" json:"email"`
	Password             string     `gorm:"not null" json:"-"`
	ProfileID            *string    `gorm:"type:uuid" json:"profileId,omitempty"`
	StripeCustomerID     *string    `json:"stripeCustomerId,omitempty"`
	ResetPasswordToken   *string    `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`

	// Relations
	Profile *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

type Profile struct {
	BaseModel
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	UserID    string  `gorm:"type:uuid;index" json:"userId"`
}
