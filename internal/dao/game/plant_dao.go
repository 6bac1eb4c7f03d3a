package game

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"capacitymarket/internal/models"
)

// PlantDAO handles database operations for power plants
type PlantDAO struct {
	db *gorm.DB
}

// NewPlantDAO creates a new plant DAO instance
func NewPlantDAO(db *gorm.DB) PlantDAOInterface {
	return &PlantDAO{
		db: db,
	}
}

// CreatePlant creates a new plant record
func (dao *PlantDAO) CreatePlant(plant *models.Plant) error {
	if err := dao.db.Create(plant).Error; err != nil {
		return createError("plant", err)
	}
	return nil
}

// CreatePlantWithFinancing creates the plant and saves its owner's finances in one transaction
func (dao *PlantDAO) CreatePlantWithFinancing(plant *models.Plant, utility *models.Utility) error {
	tx := dao.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	if err := tx.Create(plant).Error; err != nil {
		tx.Rollback()
		return createError("plant", err)
	}

	result := tx.Model(&models.Utility{}).
		Where("id = ?", utility.ID).
		Updates(map[string]interface{}{
			"budget": utility.Budget,
			"debt":   utility.Debt,
			"equity": utility.Equity,
		})
	if result.Error != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update utility finances: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return models.NotFoundError("utility", utility.ID)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit plant creation: %w", err)
	}

	log.Printf("Created plant %s (%s, %.0f MW) for utility %s", plant.ID, plant.PlantType, plant.CapacityMW, utility.ID)
	return nil
}

// GetPlant retrieves a plant within a session
func (dao *PlantDAO) GetPlant(sessionID, plantID string) (*models.Plant, error) {
	var plant models.Plant
	err := dao.db.Where("id = ? AND game_session_id = ?", plantID, sessionID).First(&plant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundError("plant", plantID)
		}
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}
	return &plant, nil
}

// ListPlants returns all plants in a session in creation order
func (dao *PlantDAO) ListPlants(sessionID string) ([]models.Plant, error) {
	var plants []models.Plant
	if err := dao.db.Where("game_session_id = ?", sessionID).Order("created_at ASC, id ASC").Find(&plants).Error; err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	return plants, nil
}

// UpdatePlant saves the plant's lifecycle status
func (dao *PlantDAO) UpdatePlant(plant *models.Plant) error {
	result := dao.db.Model(&models.Plant{}).
		Where("id = ?", plant.ID).
		Update("status", plant.Status)
	if result.Error != nil {
		return fmt.Errorf("failed to update plant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NotFoundError("plant", plant.ID)
	}
	return nil
}
