package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PlantType string
type PlantStatus string

const (
	PlantTypeCoal         PlantType = "coal"
	PlantTypeNaturalGasCC PlantType = "natural_gas_cc" // Combined cycle
	PlantTypeNaturalGasCT PlantType = "natural_gas_ct" // Combustion turbine
	PlantTypeNuclear      PlantType = "nuclear"
	PlantTypeSolar        PlantType = "solar"
	PlantTypeWindOnshore  PlantType = "wind_onshore"
	PlantTypeWindOffshore PlantType = "wind_offshore"
	PlantTypeBattery      PlantType = "battery"
	PlantTypeHydro        PlantType = "hydro"
	PlantTypeBiomass      PlantType = "biomass"

	PlantStatusPlanned           PlantStatus = "planned"
	PlantStatusUnderConstruction PlantStatus = "under_construction"
	PlantStatusOperating         PlantStatus = "operating"
	PlantStatusMaintenance       PlantStatus = "maintenance"
	PlantStatusRetired           PlantStatus = "retired"
)

// IsRenewable reports whether capacity of this type counts towards renewable penetration.
func (t PlantType) IsRenewable() bool {
	switch t {
	case PlantTypeSolar, PlantTypeWindOnshore, PlantTypeWindOffshore, PlantTypeHydro:
		return true
	default:
		return false
	}
}

// PlantTemplate is the static cost and operating profile of one plant type.
// Units:
// - OvernightCostPerKW: $/kW
// - HeatRate: BTU/kWh (nil for plants without fuel)
// - FixedOMPerKWYear: $/kW-year
// - VariableOMPerMWh: $/MWh
// - MinGenerationPct: fraction of capacity, negative means the unit can charge
// - CO2EmissionsTonsPerMWh: tCO2/MWh
type PlantTemplate struct {
	PlantType              PlantType `json:"plant_type" yaml:"plant_type"`
	Name                   string    `json:"name" yaml:"name"`
	OvernightCostPerKW     float64   `json:"overnight_cost_per_kw" yaml:"overnight_cost_per_kw"`
	ConstructionTimeYears  int       `json:"construction_time_years" yaml:"construction_time_years"`
	EconomicLifeYears      int       `json:"economic_life_years" yaml:"economic_life_years"`
	CapacityFactorBase     float64   `json:"capacity_factor_base" yaml:"capacity_factor_base"`
	HeatRate               *float64  `json:"heat_rate" yaml:"heat_rate"`
	FuelType               *string   `json:"fuel_type" yaml:"fuel_type"`
	FixedOMPerKWYear       float64   `json:"fixed_om_per_kw_year" yaml:"fixed_om_per_kw_year"`
	VariableOMPerMWh       float64   `json:"variable_om_per_mwh" yaml:"variable_om_per_mwh"`
	MinGenerationPct       float64   `json:"min_generation_pct" yaml:"min_generation_pct"`
	RampRatePctPerMin      float64   `json:"ramp_rate_pct_per_min" yaml:"ramp_rate_pct_per_min"`
	StartupCostPerMW       float64   `json:"startup_cost_per_mw" yaml:"startup_cost_per_mw"`
	CO2EmissionsTonsPerMWh float64   `json:"co2_emissions_tons_per_mwh" yaml:"co2_emissions_tons_per_mwh"`
}

// Plant is a generation unit owned by a utility within one game session.
// Operating parameters are copied from the template at creation time.
type Plant struct {
	ID                    string      `json:"id" gorm:"primaryKey"`
	GameSessionID         string      `json:"game_session_id" gorm:"index;not null"`
	UtilityID             string      `json:"utility_id" gorm:"index;not null"`
	Name                  string      `json:"name" gorm:"not null"`
	PlantType             PlantType   `json:"plant_type" gorm:"not null"`
	CapacityMW            float64     `json:"capacity_mw" gorm:"not null"`
	ConstructionStartYear int         `json:"construction_start_year" gorm:"not null"`
	CommissioningYear     int         `json:"commissioning_year" gorm:"not null"`
	RetirementYear        int         `json:"retirement_year" gorm:"not null"`
	Status                PlantStatus `json:"status" gorm:"not null;default:planned"`

	CapitalCostTotal       float64  `json:"capital_cost_total"`
	FixedOMAnnual          float64  `json:"fixed_om_annual"`
	VariableOMPerMWh       float64  `json:"variable_om_per_mwh"`
	CapacityFactor         float64  `json:"capacity_factor"`
	HeatRate               *float64 `json:"heat_rate,omitempty"`
	FuelType               *string  `json:"fuel_type,omitempty"`
	MinGenerationMW        float64  `json:"min_generation_mw"`
	CO2EmissionsTonsPerMWh float64  `json:"co2_emissions_tons_per_mwh"`

	MaintenanceYears datatypes.JSONSlice[int] `json:"maintenance_years" gorm:"type:json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Plant) TableName() string {
	return "power_plants"
}

func (p *Plant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsMaintenanceYear reports whether year is one of the plant's scheduled maintenance years.
func (p *Plant) IsMaintenanceYear(year int) bool {
	return slices.Contains(p.MaintenanceYears, year)
}

// HasFuel reports whether the plant burns a priced fuel.
func (p *Plant) HasFuel() bool {
	return p.FuelType != nil && *p.FuelType != "" && p.HeatRate != nil && *p.HeatRate > 0
}

// Clone returns a deep copy so callers can mutate status without aliasing stored records.
func (p Plant) Clone() Plant {
	out := p
	if p.MaintenanceYears != nil {
		out.MaintenanceYears = slices.Clone(p.MaintenanceYears)
	}
	if p.HeatRate != nil {
		hr := *p.HeatRate
		out.HeatRate = &hr
	}
	if p.FuelType != nil {
		ft := *p.FuelType
		out.FuelType = &ft
	}
	return out
}
