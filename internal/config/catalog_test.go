package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capacitymarket/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	assert.Len(t, c.PlantTemplates, 8)
	assert.Equal(t, 2025, c.Defaults.StartYear)
	assert.Equal(t, 2035, c.Defaults.EndYear)
	assert.Equal(t, 50.0, c.Defaults.CarbonPricePerTon)
	assert.Equal(t, models.DefaultDemandProfile(), c.DemandProfile())
	assert.Equal(t, 8760, c.DemandProfile().TotalHours())

	coal, ok := c.Template(models.PlantTypeCoal)
	require.True(t, ok)
	require.NotNil(t, coal.HeatRate)
	assert.Equal(t, 8800.0, *coal.HeatRate)
	require.NotNil(t, coal.FuelType)
	assert.Equal(t, "coal", *coal.FuelType)

	solar, ok := c.Template(models.PlantTypeSolar)
	require.True(t, ok)
	assert.Nil(t, solar.HeatRate)
	assert.Nil(t, solar.FuelType)

	battery, _ := c.Template(models.PlantTypeBattery)
	assert.Equal(t, -1.0, battery.MinGenerationPct)

	_, ok = c.Template(models.PlantTypeHydro)
	assert.False(t, ok)

	assert.Equal(t, []int{2025, 2026, 2027, 2028, 2029, 2030}, c.FuelYears())
	assert.Equal(t, 4.5, c.FuelPrices[2027]["natural_gas"])
}

func TestLoadCatalogOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market.yaml")
	overlay := `
defaults:
  carbon_price_per_ton: 80
plant_templates:
  - plant_type: solar
    name: Cheap Solar
    overnight_cost_per_kw: 900
    construction_time_years: 1
    economic_life_years: 30
    capacity_factor_base: 0.3
    fixed_om_per_kw_year: 10
  - plant_type: hydro
    name: Run of River
    overnight_cost_per_kw: 3000
    construction_time_years: 5
    economic_life_years: 80
    capacity_factor_base: 0.5
    fixed_om_per_kw_year: 30
fuel_prices:
  2030: {natural_gas: 6.00}
  2031: {coal: 3.00, natural_gas: 6.10, uranium: 0.81}
`
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, 80.0, c.Defaults.CarbonPricePerTon)
	assert.Equal(t, 2025, c.Defaults.StartYear, "unset overlay fields keep defaults")
	assert.Len(t, c.PlantTemplates, 9)

	solar, _ := c.Template(models.PlantTypeSolar)
	assert.Equal(t, "Cheap Solar", solar.Name)
	_, ok := c.Template(models.PlantTypeHydro)
	assert.True(t, ok)

	assert.Equal(t, 6.0, c.FuelPrices[2030]["natural_gas"])
	assert.Equal(t, 2.75, c.FuelPrices[2030]["coal"], "per-fuel merge keeps other fuels")
	assert.Equal(t, 3.0, c.FuelPrices[2031]["coal"])

	table := c.FuelPriceTable()
	table[2031]["coal"] = 99
	assert.Equal(t, 3.0, c.FuelPrices[2031]["coal"], "FuelPriceTable returns a copy")
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Catalog)
	}{
		{"missing plant type", func(c *Catalog) { c.PlantTemplates[0].PlantType = "" }},
		{"unknown plant type", func(c *Catalog) { c.PlantTemplates[0].PlantType = "fusion" }},
		{"duplicate plant type", func(c *Catalog) { c.PlantTemplates[1].PlantType = c.PlantTemplates[0].PlantType }},
		{"negative cost", func(c *Catalog) { c.PlantTemplates[0].OvernightCostPerKW = -1 }},
		{"capacity factor above one", func(c *Catalog) { c.PlantTemplates[0].CapacityFactorBase = 1.2 }},
		{"inverted years", func(c *Catalog) { c.Defaults.EndYear = 2020 }},
		{"negative fuel price", func(c *Catalog) { c.FuelPrices[2025]["coal"] = -2 }},
		{"no demand profile", func(c *Catalog) { c.Defaults.DemandProfile = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DefaultCatalog()
			require.NoError(t, err)
			require.NoError(t, c.Validate())

			tt.mutate(c)

			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
