package repositories

import (
	"errors"

	"gorm.io/gorm"

	"nutriplan_backend/internal/models"
)

var ErrMealCharacteristicNotFound = errors.New("meal characteristic not found")

type MealCharacteristicRepository interface {
	Create(mc *models.MealCharacteristic) error
	FindAll() ([]models.MealCharacteristic, error)
	FindByUser(userID string) ([]models.MealCharacteristic, error)
	FindByIDAndUser(id, userID string) (*models.MealCharacteristic, error)
	Update(mc *models.MealCharacteristic) error
	Delete(id, userID string) error
	CountMealPlansReferencing(id string) (int64, error)
}

type MealCharacteristicRepositoryImpl struct {
	db *gorm.DB
}

func NewMealCharacteristicRepository(db *gorm.DB) MealCharacteristicRepository {
	return &MealCharacteristicRepositoryImpl{db: db}
}

func (r *MealCharacteristicRepositoryImpl) Create(mc *models.MealCharacteristic) error {
	return r.db.Create(mc).Error
}

func (r *MealCharacteristicRepositoryImpl) FindAll() ([]models.MealCharacteristic, error) {
	var items []models.MealCharacteristic
	err := r.db.Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *MealCharacteristicRepositoryImpl) FindByUser(userID string) ([]models.MealCharacteristic, error) {
	var items []models.MealCharacteristic
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&items).Error
	return items, err
}

func (r *MealCharacteristicRepositoryImpl) FindByIDAndUser(id, userID string) (*models.MealCharacteristic, error) {
	if !validID(id) {
		return nil, ErrMealCharacteristicNotFound
	}
	var mc models.MealCharacteristic
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&mc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMealCharacteristicNotFound
		}
		return nil, err
	}
	return &mc, nil
}

func (r *MealCharacteristicRepositoryImpl) Update(mc *models.MealCharacteristic) error {
	return r.db.Save(mc).Error
}

func (r *MealCharacteristicRepositoryImpl) Delete(id, userID string) error {
	if !validID(id) {
		return ErrMealCharacteristicNotFound
	}
	result := r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.MealCharacteristic{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMealCharacteristicNotFound
	}
	return nil
}

func (r *MealCharacteristicRepositoryImpl) CountMealPlansReferencing(id string) (int64, error) {
	var count int64
	err := r.db.Model(&models.MealPlan{}).
		Where("meal_characteristic_id = ?", id).Count(&count).Error
	return count, err
}
