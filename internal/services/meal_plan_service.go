package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"nutriplan_backend/internal/logger"
	"nutriplan_backend/internal/models"
	"nutriplan_backend/internal/repositories"
	"nutriplan_backend/internal/services/dto"
	"nutriplan_backend/pkg/apperrors"
)

type MealPlanService interface {
	Create(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateMealPlanRequest) (*models.MealPlan, error)
	GetAll(ctx context.Context, db *gorm.DB) ([]models.MealPlan, error)
	GetByUser(ctx context.Context, db *gorm.DB, userID string) ([]models.MealPlan, error)
	GetByID(ctx context.Context, db *gorm.DB, id string) (*models.MealPlan, error)
	Update(ctx context.Context, db *gorm.DB, id, userID string, req *dto.UpdateMealPlanRequest) (*models.MealPlan, error)
	Delete(ctx context.Context, db *gorm.DB, id, userID string) error
}

type MealPlanServiceImpl struct{}

func NewMealPlanService() MealPlanService {
	return &MealPlanServiceImpl{}
}

func (s *MealPlanServiceImpl) Create(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateMealPlanRequest) (*models.MealPlan, error) {
	repo := repositories.NewMealPlanRepository(db)

	plan := &models.MealPlan{
		Name:                 req.Name,
		DurationInDays:       req.DurationInDays,
		MealCharacteristicID: req.MealCharacteristicID,
		UserID:               &userID,
		AiGenerationStatus:   models.AiGenerationStatusNone,
	}

	if err := repo.Create(plan); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "meal plan created", "id", plan.ID, "days", plan.DurationInDays)
	return plan, nil
}

func (s *MealPlanServiceImpl) GetAll(ctx context.Context, db *gorm.DB) ([]models.MealPlan, error) {
	repo := repositories.NewMealPlanRepository(db)

	plans, err := repo.FindAll()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return plans, nil
}

func (s *MealPlanServiceImpl) GetByUser(ctx context.Context, db *gorm.DB, userID string) ([]models.MealPlan, error) {
	repo := repositories.NewMealPlanRepository(db)

	plans, err := repo.FindByUser(userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return plans, nil
}

func (s *MealPlanServiceImpl) GetByID(ctx context.Context, db *gorm.DB, id string) (*models.MealPlan, error) {
	repo := repositories.NewMealPlanRepository(db)

	plan, err := repo.FindByID(id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrMealPlanNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "meal_plan",
				fmt.Sprintf("Meal plan with ID %s not found", id))
		}
		return nil, apperrors.InternalError(err)
	}
	return plan, nil
}

func (s *MealPlanServiceImpl) Update(ctx context.Context, db *gorm.DB, id, userID string, req *dto.UpdateMealPlanRequest) (*models.MealPlan, error) {
	repo := repositories.NewMealPlanRepository(db)

	plan, err := repo.FindByIDAndUser(id, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrMealPlanNotFound) {
			return nil, apperrors.ErrNotFoundMsg(err, "meal_plan",
				fmt.Sprintf("Meal plan with ID %s not found", id))
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.DurationInDays != nil {
		plan.DurationInDays = *req.DurationInDays
	}
	if req.MealCharacteristicID != nil {
		plan.MealCharacteristicID = req.MealCharacteristicID
	}

	if err := repo.Update(plan); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return plan, nil
}

func (s *MealPlanServiceImpl) Delete(ctx context.Context, db *gorm.DB, id, userID string) error {
	repo := repositories.NewMealPlanRepository(db)

	if err := repo.Delete(id, userID); err != nil {
		if apperrors.Is(err, repositories.ErrMealPlanNotFound) {
			return apperrors.ErrNotFoundMsg(err, "meal_plan",
				fmt.Sprintf("Meal plan with ID %s not found", id))
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "meal plan deleted", "id", id)
	return nil
}
