package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type MealCharacteristic struct {
	BaseModel
	PlanName               string         `gorm:"not null" json:"planName"`
	Gender                 Gender         `gorm:"type:varchar(10);not null" json:"gender"`
	Age                    *int           `json:"age,omitempty"`
	Height                 *float64       `json:"height,omitempty"`
	Weight                 *float64       `json:"weight,omitempty"`
	ActivityLevel          *string        `json:"activityLevel,omitempty"`
	ActivityCalories       *float64       `json:"activityCalories,omitempty"`
	Goal                   *string        `json:"goal,omitempty"`
	TargetDailyCalories    *float64       `json:"targetDailyCalories,omitempty"`
	ProteinPercentage      *float64       `json:"proteinPercentage,omitempty"`
	FatPercentage          *float64       `json:"fatPercentage,omitempty"`
	CarbsPercentage        *float64       `json:"carbsPercentage,omitempty"`
	IncludeSnacks          bool           `gorm:"default:false" json:"includeSnacks"`
	MealsPerDay            int            `gorm:"default:3" json:"mealsPerDay"`
	MedicalConditions      datatypes.JSON `gorm:"type:jsonb" json:"medicalConditions,omitempty"`
	DietType               datatypes.JSON `gorm:"type:jsonb" json:"dietType,omitempty"`
	DietaryRestrictions    datatypes.JSON `gorm:"type:jsonb" json:"dietaryRestrictions,omitempty"`
	VitaminsAndMinerals    datatypes.JSON `gorm:"type:jsonb" json:"vitaminsAndMinerals,omitempty"`
	NutrientTargets        datatypes.JSON `gorm:"type:jsonb" json:"nutrientTargets,omitempty"`
	CookingComplexity      *string        `json:"cookingComplexity,omitempty"`
	AdditionalPreferences  datatypes.JSON `gorm:"type:jsonb" json:"additionalPreferences,omitempty"`
	UserID                 *string        `gorm:"type:uuid;index" json:"userId,omitempty"`
}

// StringList decodes a jsonb column holding a string array.
func StringList(data datatypes.JSON) []string {
	var out []string
	if len(data) > 0 {
		_ = json.Unmarshal(data, &out)
	}
	return out
}

// ToJSONList encodes a string slice for a jsonb column.
func ToJSONList(values []string) datatypes.JSON {
	data, _ := json.Marshal(values)
	return datatypes.JSON(data)
}
