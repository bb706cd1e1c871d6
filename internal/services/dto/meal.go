package dto

import "encoding/json"

type CreateMealCharacteristicRequest struct {
	PlanName              string          `json:"planName" validate:"required"`
	Gender                string          `json:"gender" validate:"required,is-gender"`
	Age                   *int            `json:"age,omitempty" validate:"omitempty,min=1,max=120"`
	Height                *float64        `json:"height,omitempty"`
	Weight                *float64        `json:"weight,omitempty"`
	ActivityLevel         *string         `json:"activityLevel,omitempty"`
	ActivityCalories      *float64        `json:"activityCalories,omitempty"`
	Goal                  *string         `json:"goal,omitempty"`
	TargetDailyCalories   *float64        `json:"targetDailyCalories,omitempty"`
	ProteinPercentage     *float64        `json:"proteinPercentage,omitempty"`
	FatPercentage         *float64        `json:"fatPercentage,omitempty"`
	CarbsPercentage       *float64        `json:"carbsPercentage,omitempty"`
	IncludeSnacks         *bool           `json:"includeSnacks,omitempty"`
	MealsPerDay           *int            `json:"mealsPerDay,omitempty" validate:"omitempty,min=1,max=10"`
	MedicalConditions     []string        `json:"medicalConditions,omitempty"`
	DietType              []string        `json:"dietType,omitempty"`
	DietaryRestrictions   []string        `json:"dietaryRestrictions,omitempty"`
	VitaminsAndMinerals   []string        `json:"vitaminsAndMinerals,omitempty"`
	NutrientTargets       json.RawMessage `json:"nutrientTargets,omitempty"`
	CookingComplexity     *string         `json:"cookingComplexity,omitempty"`
	AdditionalPreferences []string        `json:"additionalPreferences,omitempty"`
}

// UpdateMealCharacteristicRequest is a partial merge; nil fields are left
// untouched.
type UpdateMealCharacteristicRequest struct {
	PlanName              *string         `json:"planName,omitempty"`
	Gender                *string         `json:"gender,omitempty" validate:"omitempty,is-gender"`
	Age                   *int            `json:"age,omitempty" validate:"omitempty,min=1,max=120"`
	Height                *float64        `json:"height,omitempty"`
	Weight                *float64        `json:"weight,omitempty"`
	ActivityLevel         *string         `json:"activityLevel,omitempty"`
	ActivityCalories      *float64        `json:"activityCalories,omitempty"`
	Goal                  *string         `json:"goal,omitempty"`
	TargetDailyCalories   *float64        `json:"targetDailyCalories,omitempty"`
	ProteinPercentage     *float64        `json:"proteinPercentage,omitempty"`
	FatPercentage         *float64        `json:"fatPercentage,omitempty"`
	CarbsPercentage       *float64        `json:"carbsPercentage,omitempty"`
	IncludeSnacks         *bool           `json:"includeSnacks,omitempty"`
	MealsPerDay           *int            `json:"mealsPerDay,omitempty" validate:"omitempty,min=1,max=10"`
	MedicalConditions     []string        `json:"medicalConditions,omitempty"`
	DietType              []string        `json:"dietType,omitempty"`
	DietaryRestrictions   []string        `json:"dietaryRestrictions,omitempty"`
	VitaminsAndMinerals   []string        `json:"vitaminsAndMinerals,omitempty"`
	NutrientTargets       json.RawMessage `json:"nutrientTargets,omitempty"`
	CookingComplexity     *string         `json:"cookingComplexity,omitempty"`
	AdditionalPreferences []string        `json:"additionalPreferences,omitempty"`
}

type CreateMealPlanRequest struct {
	Name                 string  `json:"name" validate:"required"`
	DurationInDays       int     `json:"durationInDays" validate:"required,min=1,max=31"`
	MealCharacteristicID *string `json:"mealCharacteristicId,omitempty"`
}

type UpdateMealPlanRequest struct {
	Name                 *string `json:"name,omitempty"`
	DurationInDays       *int    `json:"durationInDays,omitempty" validate:"omitempty,min=1,max=31"`
	MealCharacteristicID *string `json:"mealCharacteristicId,omitempty"`
}
