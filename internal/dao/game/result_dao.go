package game

import (
	"fmt"

	"gorm.io/gorm"

	"capacitymarket/internal/models"
)

// resultOrder sorts rows of one year in clearing order, since a batch shares created_at
const resultOrder = "year ASC, CASE period WHEN 'off_peak' THEN 0 WHEN 'shoulder' THEN 1 WHEN 'peak' THEN 2 ELSE 3 END ASC"

// MarketResultDAO handles database operations for market clearing results
type MarketResultDAO struct {
	db *gorm.DB
}

// NewMarketResultDAO creates a new market result DAO instance
func NewMarketResultDAO(db *gorm.DB) MarketResultDAOInterface {
	return &MarketResultDAO{
		db: db,
	}
}

// SaveResults replaces the session's results for year inside one transaction
func (dao *MarketResultDAO) SaveResults(sessionID string, year int, results []*models.MarketResult) error {
	return dao.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_session_id = ? AND year = ?", sessionID, year).Delete(&models.MarketResult{}).Error; err != nil {
			return fmt.Errorf("failed to clear previous market results: %w", err)
		}
		if len(results) == 0 {
			return nil
		}
		if err := tx.Create(&results).Error; err != nil {
			return fmt.Errorf("failed to save market results: %w", err)
		}
		return nil
	})
}

// ListResults returns results for one year, or all years when year is 0
func (dao *MarketResultDAO) ListResults(sessionID string, year int) ([]models.MarketResult, error) {
	var results []models.MarketResult
	query := dao.db.Where("game_session_id = ?", sessionID)
	if year != 0 {
		query = query.Where("year = ?", year)
	}
	if err := query.Order(resultOrder).Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list market results: %w", err)
	}
	return results, nil
}

// NewRepositories wires the gorm-backed DAOs to db
func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Sessions:  NewSessionDAO(db),
		Utilities: NewUtilityDAO(db),
		Plants:    NewPlantDAO(db),
		Bids:      NewBidDAO(db),
		Results:   NewMarketResultDAO(db),
	}
}
