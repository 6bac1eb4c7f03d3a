package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type GameState string

const (
	GameStateSetup          GameState = "setup"
	GameStateYearPlanning   GameState = "year_planning"
	GameStateBiddingOpen    GameState = "bidding_open"
	GameStateMarketClearing GameState = "market_clearing"
	GameStateYearComplete   GameState = "year_complete"
	GameStateGameComplete   GameState = "game_complete"
)

// GameSession is one classroom simulation run over [StartYear, EndYear].
type GameSession struct {
	ID                string                                  `json:"id" gorm:"primaryKey"`
	Name              string                                  `json:"name" gorm:"not null"`
	OperatorID        string                                  `json:"operator_id" gorm:"index"`
	StartYear         int                                     `json:"start_year" gorm:"not null;default:2025"`
	EndYear           int                                     `json:"end_year" gorm:"not null;default:2035"`
	CurrentYear       int                                     `json:"current_year" gorm:"not null;default:2025"`
	State             GameState                               `json:"state" gorm:"not null;default:setup"`
	CarbonPricePerTon float64                                 `json:"carbon_price_per_ton" gorm:"not null;default:50"`
	DemandProfile     datatypes.JSONType[AnnualDemandProfile] `json:"demand_profile" gorm:"type:json"`
	FuelPrices        datatypes.JSONType[FuelPriceTable]      `json:"fuel_prices" gorm:"type:json"`
	CreatedAt         time.Time                               `json:"created_at"`
	UpdatedAt         time.Time                               `json:"updated_at"`
}

func (GameSession) TableName() string {
	return "game_sessions"
}

func (s *GameSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// YearOffset is the number of demand-growth years between StartYear and year.
func (s *GameSession) YearOffset(year int) int {
	return year - s.StartYear
}

func (s *GameSession) Demand() AnnualDemandProfile {
	return s.DemandProfile.Data()
}

// FuelPricesForYear resolves the fuel table for year (see FuelPriceTable.ForYear).
func (s *GameSession) FuelPricesForYear(year int) map[string]float64 {
	return s.FuelPrices.Data().ForYear(year)
}
