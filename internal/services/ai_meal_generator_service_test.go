package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/services/dto"
	"nutriplan_backend/pkg/apperrors"
)

const aiPlanJSON = `{
  "days": [
    {
      "day": 1,
      "date": "2025-01-01",
      "meals": [
        {
          "type": "breakfast",
          "name": "Oatmeal with berries",
          "ingredients": [
            {"name": "Oats", "amount": 80, "unit": "g", "alternatives": ["buckwheat"]}
          ],
          "portions": 1,
          "preparationTime": 5,
          "cookingTime": 10,
          "instructions": ["Boil water", "Add oats"],
          "nutritionPerServing": {"calories": 350, "protein": 12, "carbs": 60, "fat": 6}
        }
      ],
      "dailyNutrition": {"calories": 1800, "protein": 110, "carbs": 170, "fat": 60}
    }
  ],
  "nutritionSummary": {"calories": 1800, "protein": 110, "carbs": 170, "fat": 60},
  "shoppingList": {
    "categories": [
      {"name": "Grains", "items": [{"name": "Oats", "amount": 80, "unit": "g"}]}
    ]
  },
  "notes": ["Drink water"]
}`

func createPlanWithCharacteristic(t *testing.T, db *gorm.DB, userID string) *models.MealPlan {
	t.Helper()

	mcSvc := NewMealCharacteristicService()
	planSvc := NewMealPlanService()
	ctx := context.Background()

	mc, err := mcSvc.Create(ctx, db, userID, &dto.CreateMealCharacteristicRequest{
		PlanName: "Generator input",
		Gender:   "female",
	})
	require.NoError(t, err)

	plan, err := planSvc.Create(ctx, db, userID, &dto.CreateMealPlanRequest{
		Name:                 "Generated week",
		DurationInDays:       1,
		MealCharacteristicID: &mc.ID,
	})
	require.NoError(t, err)
	return plan
}

func TestAiGenerator_GeneratesAndPersists(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	user := createTestUser(t, db)
	plan := createPlanWithCharacteristic(t, db, user.ID)

	ai := &fakeAiClient{response: aiPlanJSON}
	svc := NewAiMealGeneratorService(ai)

	generated, err := svc.GenerateMealPlan(context.Background(), db, plan.ID)
	require.NoError(t, err)
	require.Len(t, generated.Days, 1)
	assert.Equal(t, "Oatmeal with berries", generated.Days[0].Meals[0].Name)

	require.Len(t, ai.prompts, 1)
	assert.Contains(t, ai.prompts[0], "meal plan for 1 days")
	assert.Contains(t, ai.prompts[0], "Generator input")

	var record models.AiGeneratedMealPlan
	require.NoError(t, db.First(&record, "meal_plan_id = ?", plan.ID).Error)
	assert.Equal(t, "test-model", record.ModelVersion)
	assert.NotEmpty(t, record.GeneratedPlan)

	var refreshed models.MealPlan
	require.NoError(t, db.First(&refreshed, "id = ?", plan.ID).Error)
	assert.Equal(t, models.AiGenerationStatusCompleted, refreshed.AiGenerationStatus)
}

func TestAiGenerator_StripsCodeFences(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	user := createTestUser(t, db)
	plan := createPlanWithCharacteristic(t, db, user.ID)

	fenced := "```json\n" + aiPlanJSON + "\n```"
	svc := NewAiMealGeneratorService(&fakeAiClient{response: fenced})

	generated, err := svc.GenerateMealPlan(context.Background(), db, plan.ID)
	require.NoError(t, err)
	assert.Len(t, generated.Days, 1)
}

func TestAiGenerator_VendorFailureMarksFailed(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	user := createTestUser(t, db)
	plan := createPlanWithCharacteristic(t, db, user.ID)

	svc := NewAiMealGeneratorService(&fakeAiClient{err: fmt.Errorf("rate limited")})

	_, err := svc.GenerateMealPlan(context.Background(), db, plan.ID)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "Failed to generate meal plan from AI")

	var refreshed models.MealPlan
	require.NoError(t, db.First(&refreshed, "id = ?", plan.ID).Error)
	assert.Equal(t, models.AiGenerationStatusFailed, refreshed.AiGenerationStatus)
}

func TestAiGenerator_MalformedResponseMarksFailed(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	user := createTestUser(t, db)
	plan := createPlanWithCharacteristic(t, db, user.ID)

	svc := NewAiMealGeneratorService(&fakeAiClient{response: "not json at all"})

	_, err := svc.GenerateMealPlan(context.Background(), db, plan.ID)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Contains(t, appErr.Message, "Failed to parse AI-generated meal plan")

	var refreshed models.MealPlan
	require.NoError(t, db.First(&refreshed, "id = ?", plan.ID).Error)
	assert.Equal(t, models.AiGenerationStatusFailed, refreshed.AiGenerationStatus)
}

func TestAiGenerator_PlanWithoutCharacteristicIs404(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	user := createTestUser(t, db)
	planSvc := NewMealPlanService()

	plan, err := planSvc.Create(context.Background(), db, user.ID, &dto.CreateMealPlanRequest{
		Name:           "Bare",
		DurationInDays: 2,
	})
	require.NoError(t, err)

	svc := NewAiMealGeneratorService(&fakeAiClient{response: aiPlanJSON})

	_, err = svc.GenerateMealPlan(context.Background(), db, plan.ID)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
	assert.Contains(t, appErr.Message, "does not have any characteristics")
}

func TestAiGenerator_UnknownPlanIs404(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	svc := NewAiMealGeneratorService(&fakeAiClient{response: aiPlanJSON})

	_, err := svc.GenerateMealPlan(context.Background(), db, "missing-plan")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeNotFound, appErr.Code)
}
