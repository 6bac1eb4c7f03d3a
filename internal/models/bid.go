package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoadPeriod string

const (
	LoadPeriodOffPeak  LoadPeriod = "off_peak"
	LoadPeriodShoulder LoadPeriod = "shoulder"
	LoadPeriodPeak     LoadPeriod = "peak"
)

// LoadPeriods lists the annual load periods in clearing order.
var LoadPeriods = []LoadPeriod{LoadPeriodOffPeak, LoadPeriodShoulder, LoadPeriodPeak}

// Rank is the period's position in LoadPeriods, or len(LoadPeriods) when unknown
func (p LoadPeriod) Rank() int {
	for i, period := range LoadPeriods {
		if period == p {
			return i
		}
	}
	return len(LoadPeriods)
}

func ParseLoadPeriod(s string) (LoadPeriod, error) {
	switch LoadPeriod(s) {
	case LoadPeriodOffPeak, LoadPeriodShoulder, LoadPeriodPeak:
		return LoadPeriod(s), nil
	}
	return "", fmt.Errorf("unknown load period %q", s)
}

// YearlyBid is a plant's supply offer for a whole year, split by load period.
// At most one bid exists per (session, plant, year); resubmission replaces it.
type YearlyBid struct {
	ID            string `json:"id" gorm:"primaryKey"`
	GameSessionID string `json:"game_session_id" gorm:"not null;uniqueIndex:idx_bid_session_plant_year"`
	UtilityID     string `json:"utility_id" gorm:"not null;index"`
	PlantID       string `json:"plant_id" gorm:"not null;uniqueIndex:idx_bid_session_plant_year"`
	Year          int    `json:"year" gorm:"not null;uniqueIndex:idx_bid_session_plant_year;index"`

	// MW offered per period
	OffPeakQuantity  float64 `json:"off_peak_quantity"`
	ShoulderQuantity float64 `json:"shoulder_quantity"`
	PeakQuantity     float64 `json:"peak_quantity"`

	// $/MWh per period
	OffPeakPrice  float64 `json:"off_peak_price"`
	ShoulderPrice float64 `json:"shoulder_price"`
	PeakPrice     float64 `json:"peak_price"`

	// SubmittedAt orders bids for tie-breaking; it moves forward on resubmission.
	SubmittedAt time.Time `json:"submitted_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (YearlyBid) TableName() string {
	return "yearly_bids"
}

func (b *YearlyBid) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// ForPeriod returns the quantity (MW) and price ($/MWh) offered for a period.
func (b *YearlyBid) ForPeriod(period LoadPeriod) (quantity, price float64) {
	switch period {
	case LoadPeriodOffPeak:
		return b.OffPeakQuantity, b.OffPeakPrice
	case LoadPeriodShoulder:
		return b.ShoulderQuantity, b.ShoulderPrice
	case LoadPeriodPeak:
		return b.PeakQuantity, b.PeakPrice
	}
	return 0, 0
}

// Validate rejects negative quantities. Charging (demand-side) offers are not modelled.
func (b *YearlyBid) Validate() error {
	if b.PlantID == "" {
		return fmt.Errorf("%w: plant_id is required", ErrInvalidBid)
	}
	for _, period := range LoadPeriods {
		if q, _ := b.ForPeriod(period); q < 0 {
			return fmt.Errorf("%w: %s quantity must be >= 0, got %.2f", ErrInvalidBid, period, q)
		}
	}
	return nil
}
