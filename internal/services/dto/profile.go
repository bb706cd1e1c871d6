package dto

import "nutriplan_backend/internal/models"

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
}

type ProfileResponse struct {
	ID                    string               `json:"id"`
	Email                 string               `json:"email"`
	FirstName             *string              `json:"firstName,omitempty"`
	LastName              *string              `json:"lastName,omitempty"`
	HasActiveSubscription bool                 `json:"hasActiveSubscription"`
	Subscription          *models.Subscription `json:"subscription,omitempty"`
}
