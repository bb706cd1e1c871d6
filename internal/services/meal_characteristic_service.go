package services

import (
	"context"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/repositories"
	"nutriplan_backend/internal/services/dto"
	"nutriplan_backend/pkg/apperrors"
)

type MealCharacteristicService interface {
	Create(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateMealCharacteristicRequest) (*models.MealCharacteristic, error)
	GetAll(ctx context.Context, db *gorm.DB) ([]models.MealCharacteristic, error)
	GetByUser(ctx context.Context, db *gorm.DB, userID string) ([]models.MealCharacteristic, error)
	GetByID(ctx context.Context, db *gorm.DB, id, userID string) (*models.MealCharacteristic, error)
	Update(ctx context.Context, db *gorm.DB, id, userID string, req *dto.UpdateMealCharacteristicRequest) (*models.MealCharacteristic, error)
	Delete(ctx context.Context, db *gorm.DB, id, userID string) error
}

type MealCharacteristicServiceImpl struct{}

func NewMealCharacteristicService() MealCharacteristicService {
	return &MealCharacteristicServiceImpl{}
}

func (s *MealCharacteristicServiceImpl) Create(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateMealCharacteristicRequest) (*models.MealCharacteristic, error) {
	repo := repositories.NewMealCharacteristicRepository(db)

	mc := &models.MealCharacteristic{
		PlanName:            req.PlanName,
		Gender:              models.Gender(req.Gender),
		Age:                 req.Age,
		Height:              req.Height,
		Weight:              req.Weight,
		ActivityLevel:       req.ActivityLevel,
		ActivityCalories:    req.ActivityCalories,
		Goal:                req.Goal,
		TargetDailyCalories: req.TargetDailyCalories,
		ProteinPercentage:   req.ProteinPercentage,
		FatPercentage:       req.FatPercentage,
		CarbsPercentage:     req.CarbsPercentage,
		MealsPerDay:         3,
		CookingComplexity:   req.CookingComplexity,
		UserID:              &userID,
	}
	if req.IncludeSnacks != nil {
		mc.IncludeSnacks = *req.IncludeSnacks
	}
	if req.MealsPerDay != nil {
		mc.MealsPerDay = *req.MealsPerDay
	}
	applyListFields(mc, req.MedicalConditions, req.DietType, req.DietaryRestrictions,
		req.VitaminsAndMinerals, req.AdditionalPreferences)
	if len(req.NutrientTargets) > 0 {
		mc.NutrientTargets = datatypes.JSON(req.NutrientTargets)
	}

	if err := repo.Create(mc); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "meal characteristic created", "id", mc.ID)
	return mc, nil
}

func (s *MealCharacteristicServiceImpl) GetAll(ctx context.Context, db *gorm.DB) ([]models.MealCharacteristic, error) {
	repo := repositories.NewMealCharacteristicRepository(db)

	items, err := repo.FindAll()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return items, nil
}

func (s *MealCharacteristicServiceImpl) GetByUser(ctx context.Context, db *gorm.DB, userID string) ([]models.MealCharacteristic, error) {
	repo := repositories.NewMealCharacteristicRepository(db)

	items, err := repo.FindByUser(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return items, nil
}

func (s *MealCharacteristicServiceImpl) GetByID(ctx context.Context, db *gorm.DB, id, userID string) (*models.MealCharacteristic, error) {
	repo := repositories.NewMealCharacteristicRepository(db)

	mc, err := repo.FindByIDAndUser(id, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrMealCharacteristicNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "meal_characteristic",
				fmt.Sprintf("Meal characteristic with ID %s not found", id))
		}
		return nil, apperrors.InternalError(err)
	}
	return mc, nil
}

func (s *MealCharacteristicServiceImpl) Update(ctx context.Context, db *gorm.DB, id, userID string, req *dto.UpdateMealCharacteristicRequest) (*models.MealCharacteristic, error) {
	repo := repositories.NewMealCharacteristicRepository(db)

	mc, err := s.GetByID(ctx, db, id, userID)
	if err != nil {
		return nil, err
	}

	if req.PlanName != nil {
		mc.PlanName = *req.PlanName
	}
	if req.Gender != nil {
		mc.Gender = models.Gender(*req.Gender)
	}
	if req.Age != nil {
		mc.Age = req.Age
	}
	if req.Height != nil {
		mc.Height = req.Height
	}
	if req.Weight != nil {
		mc.Weight = req.Weight
	}
	if req.ActivityLevel != nil {
		mc.ActivityLevel = req.ActivityLevel
	}
	if req.ActivityCalories != nil {
		mc.ActivityCalories = req.ActivityCalories
	}
	if req.Goal != nil {
		mc.Goal = req.Goal
	}
	if req.TargetDailyCalories != nil {
		mc.TargetDailyCalories = req.TargetDailyCalories
	}
	if req.ProteinPercentage != nil {
		mc.ProteinPercentage = req.ProteinPercentage
	}
	if req.FatPercentage != nil {
		mc.FatPercentage = req.FatPercentage
	}
	if req.CarbsPercentage != nil {
		mc.CarbsPercentage = req.CarbsPercentage
	}
	if req.IncludeSnacks != nil {
		mc.IncludeSnacks = *req.IncludeSnacks
	}
	if req.MealsPerDay != nil {
		mc.MealsPerDay = *req.MealsPerDay
	}
	if req.CookingComplexity != nil {
		mc.CookingComplexity = req.CookingComplexity
	}
	applyListFields(mc, req.MedicalConditions, req.DietType, req.DietaryRestrictions,
		req.VitaminsAndMinerals, req.AdditionalPreferences)
	if len(req.NutrientTargets) > 0 {
		mc.NutrientTargets = datatypes.JSON(req.NutrientTargets)
	}

	if err := repo.Update(mc); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return mc, nil
}

// Delete refuses to remove a characteristic while meal plans still
// reference it, reporting how many do.
func (s *MealCharacteristicServiceImpl) Delete(ctx context.Context, db *gorm.DB, id, userID string) error {
	repo := repositories.NewMealCharacteristicRepository(db)

	if _, err := s.GetByID(ctx, db, id, userID); err != nil {
		return err
	}

	count, err := repo.CountMealPlansReferencing(id)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if count > 0 {
		return apperrors.ErrConflict(nil, "meal_characteristic",
			fmt.Sprintf("Cannot delete meal characteristic: %d meal plan(s) still reference it", count))
	}

	if err := repo.Delete(id, userID); err != nil {
		if apperrors.Is(err, repositories.ErrMealCharacteristicNotFound) {
			return apperrors.ErrNotFoundMsg(err, "meal_characteristic",
				fmt.Sprintf("Meal characteristic with ID %s not found", id))
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "meal characteristic deleted", "id", id)
	return nil
}

func applyListFields(mc *models.MealCharacteristic, medical, dietType, restrictions, vitamins, preferences []string) {
	if medical != nil {
		mc.MedicalConditions = models.ToJSONList(medical)
	}
	if dietType != nil {
		mc.DietType = models.ToJSONList(dietType)
	}
	if restrictions != nil {
		mc.DietaryRestrictions = models.ToJSONList(restrictions)
	}
	if vitamins != nil {
		mc.VitaminsAndMinerals = models.ToJSONList(vitamins)
	}
	if preferences != nil {
		mc.AdditionalPreferences = models.ToJSONList(preferences)
	}
}
