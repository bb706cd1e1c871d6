package repositories

import (
	"errors"

	"gorm.io/gorm"

	"nutriplan_backend/internal/models"
)

var ErrMealPlanNotFound = errors.New("meal plan not found")

type MealPlanRepository interface {
	Create(plan *models.MealPlan) error
	FindAll() ([]models.MealPlan, error)
	FindByUser(userID string) ([]models.MealPlan, error)
	FindByID(id string) (*models.MealPlan, error)
	FindByIDAndUser(id, userID string) (*models.MealPlan, error)
	Update(plan *models.MealPlan) error
	SetAiGenerationStatus(id string, status models.AiGenerationStatus) error
	Delete(id, userID string) error

	CreateGenerated(generated *models.AiGeneratedMealPlan) error
	FindGeneratedByMealPlan(mealPlanID string) (*models.AiGeneratedMealPlan, error)
}

type MealPlanRepositoryImpl struct {
	db *gorm.DB
}

func NewMealPlanRepository(db *gorm.DB) MealPlanRepository {
	return &MealPlanRepositoryImpl{db: db}
}

func (r *MealPlanRepositoryImpl) Create(plan *models.MealPlan) error {
	return r.db.Create(plan).Error
}

func (r *MealPlanRepositoryImpl) FindAll() ([]models.MealPlan, error) {
	var plans []models.MealPlan
	err := r.db.Preload("MealCharacteristic").Order("created_at DESC").Find(&plans).Error
	return plans, err
}

func (r *MealPlanRepositoryImpl) FindByUser(userID string) ([]models.MealPlan, error) {
	var plans []models.MealPlan
	err := r.db.Preload("MealCharacteristic").
		Where("user_id = ?", userID).Order("created_at DESC").Find(&plans).Error
	return plans, err
}

func (r *MealPlanRepositoryImpl) FindByID(id string) (*models.MealPlan, error) {
	if !validID(id) {
		return nil, ErrMealPlanNotFound
	}
	var plan models.MealPlan
	err := r.db.Preload("MealCharacteristic").First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *MealPlanRepositoryImpl) FindByIDAndUser(id, userID string) (*models.MealPlan, error) {
	if !validID(id) {
		return nil, ErrMealPlanNotFound
	}
	var plan models.MealPlan
	err := r.db.Preload("MealCharacteristic").
		Where("id = ? AND user_id = ?", id, userID).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *MealPlanRepositoryImpl) Update(plan *models.MealPlan) error {
	return r.db.Save(plan).Error
}

func (r *MealPlanRepositoryImpl) SetAiGenerationStatus(id string, status models.AiGenerationStatus) error {
	result := r.db.Model(&models.MealPlan{}).Where("id = ?", id).
		Update("ai_generation_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMealPlanNotFound
	}
	return nil
}

func (r *MealPlanRepositoryImpl) Delete(id, userID string) error {
	if !validID(id) {
		return ErrMealPlanNotFound
	}
	result := r.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.MealPlan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMealPlanNotFound
	}
	return nil
}

func (r *MealPlanRepositoryImpl) CreateGenerated(generated *models.AiGeneratedMealPlan) error {
	return r.db.Create(generated).Error
}

func (r *MealPlanRepositoryImpl) FindGeneratedByMealPlan(mealPlanID string) (*models.AiGeneratedMealPlan, error) {
	var generated models.AiGeneratedMealPlan
	err := r.db.Where("meal_plan_id = ?", mealPlanID).
		Order("created_at DESC").First(&generated).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealPlanNotFound
		}
		return nil, err
	}
	return &generated, nil
}
