package database

import (
	"log"

	"capacitymarket/internal/models"
)

func AutoMigrate() error {
	err := DB.AutoMigrate(
		&models.Utility{},
		&models.GameSession{},
		&models.Plant{},
		&models.YearlyBid{},
		&models.MarketResult{},
	)
	if err != nil {
		log.Printf("Failed to auto-migrate: %v", err)
		return err
	}

	if err := ensureResultIndexes(); err != nil {
		log.Printf("Failed to create market result indexes: %v", err)
		return err
	}

	log.Println("Database migration completed successfully")
	return nil
}

// ensureResultIndexes adds the lookup index used when listing a session's results by year
func ensureResultIndexes() error {
	return DB.Exec("CREATE INDEX IF NOT EXISTS idx_market_results_session_year ON market_results (game_session_id, year)").Error
}
