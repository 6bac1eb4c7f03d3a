package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"capacitymarket/internal/models"
)

func ptr[T any](v T) *T { return &v }

func operating(plantType models.PlantType, cf float64) *models.Plant {
	return &models.Plant{
		ID:                "p1",
		PlantType:         plantType,
		CapacityMW:        100,
		CommissioningYear: 2020,
		RetirementYear:    2050,
		Status:            models.PlantStatusOperating,
		CapacityFactor:    cf,
	}
}

func TestMarginalCost(t *testing.T) {
	fuel := map[string]float64{"coal": 2.5, "natural_gas": 4.0}

	t.Run("coal includes fuel and carbon", func(t *testing.T) {
		plant := operating(models.PlantTypeCoal, 0.85)
		plant.VariableOMPerMWh = 4.5
		plant.HeatRate = ptr(8800.0)
		plant.FuelType = ptr("coal")
		plant.CO2EmissionsTonsPerMWh = 0.95

		b := MarginalCostBreakdown(plant, fuel, 50)

		assert.InDelta(t, 4.5, b.VariableOM, 1e-9)
		assert.InDelta(t, 22.0, b.FuelCost, 1e-9)
		assert.InDelta(t, 47.5, b.CarbonCost, 1e-9)
		assert.InDelta(t, 74.0, b.Total, 1e-9)
		assert.InDelta(t, 74.0, MarginalCost(plant, fuel, 50), 1e-9)
	})

	t.Run("fuel free plant is variable O&M only", func(t *testing.T) {
		plant := operating(models.PlantTypeWindOnshore, 0.35)

		assert.Equal(t, 0.0, MarginalCost(plant, fuel, 50))
	})

	t.Run("missing heat rate means no fuel cost", func(t *testing.T) {
		plant := operating(models.PlantTypeBiomass, 0.8)
		plant.VariableOMPerMWh = 3
		plant.FuelType = ptr("natural_gas")

		assert.InDelta(t, 3.0, MarginalCost(plant, fuel, 50), 1e-9)
	})

	t.Run("unpriced fuel contributes zero", func(t *testing.T) {
		plant := operating(models.PlantTypeNuclear, 0.92)
		plant.VariableOMPerMWh = 2
		plant.HeatRate = ptr(10400.0)
		plant.FuelType = ptr("uranium")

		assert.InDelta(t, 2.0, MarginalCost(plant, fuel, 50), 1e-9)
	})
}

func TestEffectiveCapacityFactor(t *testing.T) {
	t.Run("solar peak", func(t *testing.T) {
		plant := operating(models.PlantTypeSolar, 0.27)
		assert.InDelta(t, 0.378, EffectiveCapacityFactor(plant, 2025, models.LoadPeriodPeak), 1e-9)
	})

	tests := []struct {
		plantType models.PlantType
		base      float64
		period    models.LoadPeriod
		want      float64
	}{
		{models.PlantTypeSolar, 0.27, models.LoadPeriodOffPeak, 0.027},
		{models.PlantTypeSolar, 0.27, models.LoadPeriodShoulder, 0.324},
		{models.PlantTypeWindOnshore, 0.35, models.LoadPeriodOffPeak, 0.385},
		{models.PlantTypeWindOffshore, 0.45, models.LoadPeriodShoulder, 0.405},
		{models.PlantTypeWindOffshore, 0.45, models.LoadPeriodPeak, 0.45},
		{models.PlantTypeCoal, 0.85, models.LoadPeriodPeak, 0.85},
		{models.PlantTypeSolar, 0.9, models.LoadPeriodPeak, 1.0},
		{models.PlantTypeWindOnshore, 0.95, models.LoadPeriodOffPeak, 1.0},
	}
	for _, tt := range tests {
		t.Run(string(tt.plantType)+"/"+string(tt.period), func(t *testing.T) {
			plant := operating(tt.plantType, tt.base)
			assert.InDelta(t, tt.want, EffectiveCapacityFactor(plant, 2025, tt.period), 1e-9)
		})
	}

	t.Run("unavailable plant is zero", func(t *testing.T) {
		plant := operating(models.PlantTypeSolar, 0.27)
		plant.Status = models.PlantStatusUnderConstruction
		assert.Equal(t, 0.0, EffectiveCapacityFactor(plant, 2025, models.LoadPeriodPeak))

		plant = operating(models.PlantTypeCoal, 0.85)
		plant.MaintenanceYears = []int{2025}
		assert.Equal(t, 0.0, ExpectedOutputMW(plant, 2025, models.LoadPeriodShoulder))
	})

	t.Run("expected output", func(t *testing.T) {
		plant := operating(models.PlantTypeCoal, 0.85)
		assert.InDelta(t, 85.0, ExpectedOutputMW(plant, 2025, models.LoadPeriodOffPeak), 1e-9)
	})
}
