package game

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"capacitymarket/internal/models"
)

// BidDAO handles database operations for yearly bids
type BidDAO struct {
	db *gorm.DB
}

// NewBidDAO creates a new bid DAO instance
func NewBidDAO(db *gorm.DB) BidDAOInterface {
	return &BidDAO{
		db: db,
	}
}

// UpsertBid inserts the bid or overwrites the quantities and prices of the
// existing bid for the same (session, plant, year)
func (dao *BidDAO) UpsertBid(bid *models.YearlyBid) error {
	bid.SubmittedAt = time.Now()

	err := dao.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "game_session_id"}, {Name: "plant_id"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"utility_id",
			"off_peak_quantity", "shoulder_quantity", "peak_quantity",
			"off_peak_price", "shoulder_price", "peak_price",
			"submitted_at", "updated_at",
		}),
	}).Create(bid).Error
	if err != nil {
		return fmt.Errorf("failed to upsert bid: %w", err)
	}

	// Reload so the caller sees the surviving row's ID after a conflict
	stored, err := dao.GetBid(bid.GameSessionID, bid.PlantID, bid.Year)
	if err != nil {
		return err
	}
	*bid = *stored
	return nil
}

// GetBid retrieves the bid for a plant in a given year
func (dao *BidDAO) GetBid(sessionID, plantID string, year int) (*models.YearlyBid, error) {
	var bid models.YearlyBid
	err := dao.db.Where("game_session_id = ? AND plant_id = ? AND year = ?", sessionID, plantID, year).First(&bid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundError("bid", fmt.Sprintf("%s/%d", plantID, year))
		}
		return nil, fmt.Errorf("failed to get bid: %w", err)
	}
	return &bid, nil
}

// ListBids returns the year's bids ordered by submission time
func (dao *BidDAO) ListBids(sessionID string, year int) ([]models.YearlyBid, error) {
	var bids []models.YearlyBid
	err := dao.db.Where("game_session_id = ? AND year = ?", sessionID, year).
		Order("submitted_at ASC, id ASC").
		Find(&bids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}
