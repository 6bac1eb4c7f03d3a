package game

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"capacitymarket/internal/models"
)

// UtilityDAO handles database operations for utilities
type UtilityDAO struct {
	db *gorm.DB
}

// NewUtilityDAO creates a new utility DAO instance
func NewUtilityDAO(db *gorm.DB) UtilityDAOInterface {
	return &UtilityDAO{
		db: db,
	}
}

// CreateUtility creates a new utility record
func (dao *UtilityDAO) CreateUtility(utility *models.Utility) error {
	if err := dao.db.Create(utility).Error; err != nil {
		return createError("utility", err)
	}
	return nil
}

// GetUtility retrieves a utility by ID
func (dao *UtilityDAO) GetUtility(utilityID string) (*models.Utility, error) {
	var utility models.Utility
	if err := dao.db.Where("id = ?", utilityID).First(&utility).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundError("utility", utilityID)
		}
		return nil, fmt.Errorf("failed to get utility: %w", err)
	}
	return &utility, nil
}

// GetUtilityByUsername retrieves a utility by its unique username
func (dao *UtilityDAO) GetUtilityByUsername(username string) (*models.Utility, error) {
	var utility models.Utility
	if err := dao.db.Where("username = ?", username).First(&utility).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundError("utility", username)
		}
		return nil, fmt.Errorf("failed to get utility: %w", err)
	}
	return &utility, nil
}

// ListUtilities returns every utility ordered by username
func (dao *UtilityDAO) ListUtilities() ([]models.Utility, error) {
	var utilities []models.Utility
	if err := dao.db.Order("username ASC").Find(&utilities).Error; err != nil {
		return nil, fmt.Errorf("failed to list utilities: %w", err)
	}
	return utilities, nil
}

// UpdateUtility saves the utility's financial position
func (dao *UtilityDAO) UpdateUtility(utility *models.Utility) error {
	result := dao.db.Model(&models.Utility{}).
		Where("id = ?", utility.ID).
		Updates(map[string]interface{}{
			"budget": utility.Budget,
			"debt":   utility.Debt,
			"equity": utility.Equity,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update utility: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NotFoundError("utility", utility.ID)
	}
	return nil
}
