package models

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const HoursPerYear = 8760

// AnnualDemandProfile holds base demand (MW) and representative hours per load period.
type AnnualDemandProfile struct {
	OffPeakHours  int `json:"off_peak_hours" yaml:"off_peak_hours"`
	ShoulderHours int `json:"shoulder_hours" yaml:"shoulder_hours"`
	PeakHours     int `json:"peak_hours" yaml:"peak_hours"`

	OffPeakDemand  float64 `json:"off_peak_demand" yaml:"off_peak_demand"`
	ShoulderDemand float64 `json:"shoulder_demand" yaml:"shoulder_demand"`
	PeakDemand     float64 `json:"peak_demand" yaml:"peak_demand"`

	DemandGrowthRate float64 `json:"demand_growth_rate" yaml:"demand_growth_rate"`
}

func DefaultDemandProfile() AnnualDemandProfile {
	return AnnualDemandProfile{
		OffPeakHours:     5000,
		ShoulderHours:    2500,
		PeakHours:        1260,
		OffPeakDemand:    1200,
		ShoulderDemand:   1800,
		PeakDemand:       2400,
		DemandGrowthRate: 0.02,
	}
}

// GrowthFactor is (1+rate)^yearOffset.
func (d AnnualDemandProfile) GrowthFactor(yearOffset int) float64 {
	return math.Pow(1+d.DemandGrowthRate, float64(yearOffset))
}

// PeriodDemand returns base demand for the period compounded by yearOffset years of growth.
func (d AnnualDemandProfile) PeriodDemand(period LoadPeriod, yearOffset int) float64 {
	var base float64
	switch period {
	case LoadPeriodOffPeak:
		base = d.OffPeakDemand
	case LoadPeriodShoulder:
		base = d.ShoulderDemand
	case LoadPeriodPeak:
		base = d.PeakDemand
	}
	return base * d.GrowthFactor(yearOffset)
}

func (d AnnualDemandProfile) PeriodHours(period LoadPeriod) int {
	switch period {
	case LoadPeriodOffPeak:
		return d.OffPeakHours
	case LoadPeriodShoulder:
		return d.ShoulderHours
	case LoadPeriodPeak:
		return d.PeakHours
	}
	return 0
}

func (d AnnualDemandProfile) TotalHours() int {
	return d.OffPeakHours + d.ShoulderHours + d.PeakHours
}

// AnnualEnergy is the total MWh demanded over the year at yearOffset.
func (d AnnualDemandProfile) AnnualEnergy(yearOffset int) float64 {
	total := 0.0
	for _, period := range LoadPeriods {
		total += d.PeriodDemand(period, yearOffset) * float64(d.PeriodHours(period))
	}
	return total
}

// FuelPriceTable maps year -> fuel type -> $/MMBtu.
type FuelPriceTable map[int]map[string]float64

// ForYear returns the prices for year. Without an exact entry it falls back to the
// latest earlier year, then to the earliest configured year.
func (t FuelPriceTable) ForYear(year int) map[string]float64 {
	if prices, ok := t[year]; ok {
		return prices
	}
	years := make([]int, 0, len(t))
	for y := range t {
		years = append(years, y)
	}
	if len(years) == 0 {
		return map[string]float64{}
	}
	sort.Ints(years)
	chosen := years[0]
	for _, y := range years {
		if y <= year {
			chosen = y
		}
	}
	return t[chosen]
}

// MarketResult is the outcome of clearing one load period in one year.
type MarketResult struct {
	ID              string                      `json:"id" gorm:"primaryKey"`
	GameSessionID   string                      `json:"game_session_id" gorm:"not null;index:idx_result_session_year"`
	Year            int                         `json:"year" gorm:"not null;index:idx_result_session_year"`
	Period          LoadPeriod                  `json:"period" gorm:"not null"`
	ClearingPrice   float64                     `json:"clearing_price"`   // $/MWh
	ClearedQuantity float64                     `json:"cleared_quantity"` // MW
	TotalEnergy     float64                     `json:"total_energy"`     // MWh
	TargetDemand    float64                     `json:"target_demand"`    // MW
	AcceptedBidIDs  datatypes.JSONSlice[string] `json:"accepted_bid_ids" gorm:"type:json"`
	MarginalPlantID *string                     `json:"marginal_plant_id,omitempty"`
	Scarcity        bool                        `json:"scarcity"`
	CreatedAt       time.Time                   `json:"created_at"`
}

func (MarketResult) TableName() string {
	return "market_results"
}

func (r *MarketResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
