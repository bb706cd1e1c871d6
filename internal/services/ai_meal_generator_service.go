package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/openai"
	"nutriplan_backend/internal/repositories"
	"nutriplan_backend/internal/services/dto"
	"nutriplan_backend/pkg/apperrors"
)

type AiMealGeneratorService interface {
	// GenerateMealPlan produces and persists an AI plan for the meal plan.
	GenerateMealPlan(ctx context.Context, db *gorm.DB, mealPlanID string) (*dto.AiMeal, error)
}

type AiMealGeneratorServiceImpl struct {
	aiClient openai.Client
}

func NewAiMealGeneratorService(aiClient openai.Client) AiMealGeneratorService {
	return &AiMealGeneratorServiceImpl{
		aiClient: aiClient,
	}
}

func (s *AiMealGeneratorServiceImpl) GenerateMealPlan(ctx context.Context, db *gorm.DB, mealPlanID string) (*dto.AiMeal, error) {
	repo := repositories.NewMealPlanRepository(db)

	plan, err := repo.FindByID(mealPlanID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrMealPlanNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "meal_plan",
				fmt.Sprintf("Meal plan with ID %s not found", mealPlanID))
		}
		return nil, apperrors.InternalError(err)
	}

	if plan.MealCharacteristicID == nil || plan.MealCharacteristic == nil {
		return nil, apperrors.ErrNotFoundMsg(nil, "meal_plan",
			"This meal plan does not have any characteristics associated")
	}

	if err := repo.SetAiGenerationStatus(plan.ID, models.AiGenerationStatusInProgress); err != nil {
		return nil, apperrors.InternalError(err)
	}

	prompt := buildMealPlanPrompt(plan.DurationInDays, plan.MealCharacteristic)

	rawText, err := s.aiClient.Complete(ctx, prompt)
	if err != nil {
		_ = repo.SetAiGenerationStatus(plan.ID, models.AiGenerationStatusFailed)
		logger.CtxWithError(ctx, "AI meal generation failed", err, "mealPlanId", plan.ID)
		return nil, apperrors.ErrExternalService(err, "ai_generator",
			"Failed to generate meal plan from AI")
	}

	var generated dto.AiMeal
	jsonStr := openai.ExtractJSON(rawText)
	if err := json.Unmarshal([]byte(jsonStr), &generated); err != nil {
		_ = repo.SetAiGenerationStatus(plan.ID, models.AiGenerationStatusFailed)
		logger.CtxWithError(ctx, "AI response was not valid JSON", err, "mealPlanId", plan.ID)
		return nil, apperrors.ErrExternalService(err, "ai_generator",
			"Failed to parse AI-generated meal plan")
	}

	record := &models.AiGeneratedMealPlan{
		MealPlanID:    plan.ID,
		GeneratedPlan: datatypes.JSON(jsonStr),
		ModelVersion:  s.aiClient.Model(),
	}
	if err := repo.CreateGenerated(record); err != nil {
		_ = repo.SetAiGenerationStatus(plan.ID, models.AiGenerationStatusFailed)
		return nil, apperrors.InternalError(err)
	}

	if err := repo.SetAiGenerationStatus(plan.ID, models.AiGenerationStatusCompleted); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "AI meal plan generated",
		"mealPlanId", plan.ID, "days", len(generated.Days), "model", s.aiClient.Model())
	return &generated, nil
}

func buildMealPlanPrompt(days int, mc *models.MealCharacteristic) string {
	characteristics, _ := json.MarshalIndent(mc, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a detailed meal plan for %d days based on the following characteristics:\n\n", days)
	b.WriteString(string(characteristics))
	b.WriteString(`

Please respond with a valid JSON object that follows this structure:
{
  "days": [
    {
      "day": 1,
      "date": "2023-06-01",
      "meals": [
        {
          "type": "breakfast",
          "name": "Meal name",
          "ingredients": [
            {"name": "Ingredient name", "amount": 100, "unit": "g", "alternatives": ["alternative 1"]}
          ],
          "portions": 1,
          "preparationTime": 15,
          "cookingTime": 30,
          "instructions": ["Step 1", "Step 2"],
          "nutritionPerServing": {"calories": 500, "protein": 30, "carbs": 40, "fat": 20}
        }
      ],
      "dailyNutrition": {"calories": 2000, "protein": 120, "carbs": 180, "fat": 70}
    }
  ],
  "nutritionSummary": {"calories": 2000, "protein": 120, "carbs": 180, "fat": 70},
  "shoppingList": {
    "categories": [
      {"name": "Vegetables", "items": [{"name": "Carrots", "amount": 500, "unit": "g"}]}
    ]
  },
  "notes": ["Note 1", "Note 2"]
}

Ensure the meal plan adheres to the dietary requirements and restrictions specified in the characteristics.
For each day, include breakfast, lunch, dinner, and snacks as needed based on mealsPerDay.
Provide detailed ingredients with measurements, cooking instructions, and nutritional information.`)

	return b.String()
}
