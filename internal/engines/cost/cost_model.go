package cost

import (
	"math"

	"capacitymarket/internal/engines/lifecycle"
	"capacitymarket/internal/models"
)

// periodMultipliers scales a technology's base capacity factor per load period.
// Technologies not listed use the base factor unchanged.
var periodMultipliers = map[models.PlantType]map[models.LoadPeriod]float64{
	models.PlantTypeSolar: {
		models.LoadPeriodOffPeak:  0.1,
		models.LoadPeriodShoulder: 1.2,
		models.LoadPeriodPeak:     1.4,
	},
	models.PlantTypeWindOnshore: {
		models.LoadPeriodOffPeak:  1.1,
		models.LoadPeriodShoulder: 0.9,
		models.LoadPeriodPeak:     1.0,
	},
	models.PlantTypeWindOffshore: {
		models.LoadPeriodOffPeak:  1.1,
		models.LoadPeriodShoulder: 0.9,
		models.LoadPeriodPeak:     1.0,
	},
}

// Breakdown splits a plant's marginal cost into its components, all in $/MWh
type Breakdown struct {
	VariableOM float64 `json:"variable_om"`
	FuelCost   float64 `json:"fuel_cost"`
	CarbonCost float64 `json:"carbon_cost"`
	Total      float64 `json:"total"`
}

// MarginalCostBreakdown computes variable O&M, fuel and carbon cost per MWh.
// fuelPrices maps fuel type to $/MMBtu for the year being priced.
func MarginalCostBreakdown(plant *models.Plant, fuelPrices map[string]float64, carbonPricePerTon float64) Breakdown {
	b := Breakdown{VariableOM: plant.VariableOMPerMWh}

	if plant.HasFuel() {
		// BTU/kWh * $/MMBtu / 1000 = $/MWh
		b.FuelCost = *plant.HeatRate * fuelPrices[*plant.FuelType] / 1000
	}
	if plant.CO2EmissionsTonsPerMWh > 0 {
		b.CarbonCost = plant.CO2EmissionsTonsPerMWh * carbonPricePerTon
	}

	b.Total = b.VariableOM + b.FuelCost + b.CarbonCost
	return b
}

// MarginalCost returns the short-run cost of one more MWh from plant
func MarginalCost(plant *models.Plant, fuelPrices map[string]float64, carbonPricePerTon float64) float64 {
	return MarginalCostBreakdown(plant, fuelPrices, carbonPricePerTon).Total
}

// PeriodMultiplier returns the capacity-factor multiplier for a technology in a period
func PeriodMultiplier(plantType models.PlantType, period models.LoadPeriod) float64 {
	if byPeriod, ok := periodMultipliers[plantType]; ok {
		if m, ok := byPeriod[period]; ok {
			return m
		}
	}
	return 1.0
}

// EffectiveCapacityFactor is the plant's expected output fraction in a period,
// zero when the plant is unavailable that year and never above 1.
func EffectiveCapacityFactor(plant *models.Plant, year int, period models.LoadPeriod) float64 {
	if !lifecycle.IsAvailable(plant, year) {
		return 0
	}
	return math.Min(1.0, plant.CapacityFactor*PeriodMultiplier(plant.PlantType, period))
}

// ExpectedOutputMW is capacity times the effective capacity factor
func ExpectedOutputMW(plant *models.Plant, year int, period models.LoadPeriod) float64 {
	return plant.CapacityMW * EffectiveCapacityFactor(plant, year, period)
}
