package models

import "gorm.io/datatypes"

type MealPlan struct {
	BaseModel
	Name                 string             `gorm:"not null" json:"name"`
	DurationInDays       int                `gorm:"not null" json:"durationInDays"`
	MealCharacteristicID *string            `gorm:"type:uuid;index" json:"mealCharacteristicId,omitempty"`
	UserID               *string            `gorm:"type:uuid;index" json:"userId,omitempty"`
	AiGenerationStatus   AiGenerationStatus `gorm:"type:varchar(20);default:'none'" json:"aiGenerationStatus"`

	// Relations
	MealCharacteristic *MealCharacteristic `gorm:"foreignKey:MealCharacteristicID" json:"mealCharacteristic,omitempty"`
}

type AiGeneratedMealPlan struct {
	BaseModel
	MealPlanID    string         `gorm:"type:uuid;not null;index" json:"mealPlanId"`
	GeneratedPlan datatypes.JSON `gorm:"type:jsonb;not null" json:"generatedPlan"`
	ModelVersion  string         `json:"modelVersion"`
}
