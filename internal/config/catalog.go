package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"capacitymarket/internal/models"
)

//go:embed market_defaults.yaml
var defaultCatalogYAML []byte

// Defaults are the starting parameters for new sessions and participants
type Defaults struct {
	StartYear         int                         `yaml:"start_year"`
	EndYear           int                         `yaml:"end_year"`
	CarbonPricePerTon float64                     `yaml:"carbon_price_per_ton"`
	UtilityBudget     float64                     `yaml:"utility_budget"`
	OperatorBudget    float64                     `yaml:"operator_budget"`
	DemandProfile     *models.AnnualDemandProfile `yaml:"demand_profile"`
}

// Catalog is the read-only market reference data: plant templates, fuel
// prices and session defaults.
type Catalog struct {
	Defaults       Defaults               `yaml:"defaults"`
	PlantTemplates []models.PlantTemplate `yaml:"plant_templates"`
	FuelPrices     models.FuelPriceTable  `yaml:"fuel_prices"`
}

var knownPlantTypes = map[models.PlantType]bool{
	models.PlantTypeCoal:         true,
	models.PlantTypeNaturalGasCC: true,
	models.PlantTypeNaturalGasCT: true,
	models.PlantTypeNuclear:      true,
	models.PlantTypeSolar:        true,
	models.PlantTypeWindOnshore:  true,
	models.PlantTypeWindOffshore: true,
	models.PlantTypeBattery:      true,
	models.PlantTypeHydro:        true,
	models.PlantTypeBiomass:      true,
}

// DefaultCatalog parses the embedded reference data
func DefaultCatalog() (*Catalog, error) {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		return nil, fmt.Errorf("embedded market defaults: %w", err)
	}
	return c, nil
}

// LoadCatalog returns the embedded catalog, overlaid with the YAML file at
// path when path is non-empty, and validated.
func LoadCatalog(path string) (*Catalog, error) {
	c, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read market config: %w", err)
		}
		overlay, err := ParseCatalog(raw)
		if err != nil {
			return nil, fmt.Errorf("market config %s: %w", path, err)
		}
		c.Merge(overlay)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ParseCatalog decodes a catalog without validating it
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Merge overlays non-zero defaults, replaces templates by plant type and
// merges fuel prices per year and fuel.
func (c *Catalog) Merge(overlay *Catalog) {
	if overlay == nil {
		return
	}
	d := overlay.Defaults
	if d.StartYear != 0 {
		c.Defaults.StartYear = d.StartYear
	}
	if d.EndYear != 0 {
		c.Defaults.EndYear = d.EndYear
	}
	if d.CarbonPricePerTon != 0 {
		c.Defaults.CarbonPricePerTon = d.CarbonPricePerTon
	}
	if d.UtilityBudget != 0 {
		c.Defaults.UtilityBudget = d.UtilityBudget
	}
	if d.OperatorBudget != 0 {
		c.Defaults.OperatorBudget = d.OperatorBudget
	}
	if d.DemandProfile != nil {
		profile := *d.DemandProfile
		c.Defaults.DemandProfile = &profile
	}

	for _, t := range overlay.PlantTemplates {
		replaced := false
		for i := range c.PlantTemplates {
			if c.PlantTemplates[i].PlantType == t.PlantType {
				c.PlantTemplates[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			c.PlantTemplates = append(c.PlantTemplates, t)
		}
	}

	if c.FuelPrices == nil && len(overlay.FuelPrices) > 0 {
		c.FuelPrices = make(models.FuelPriceTable)
	}
	for year, prices := range overlay.FuelPrices {
		if c.FuelPrices[year] == nil {
			c.FuelPrices[year] = make(map[string]float64)
		}
		for fuel, price := range prices {
			c.FuelPrices[year][fuel] = price
		}
	}
}

// Validate checks the catalog is usable by the engines
func (c *Catalog) Validate() error {
	if c == nil {
		return errors.New("market catalog is nil")
	}
	d := c.Defaults
	if d.StartYear <= 0 || d.EndYear < d.StartYear {
		return fmt.Errorf("defaults: invalid year range %d-%d", d.StartYear, d.EndYear)
	}
	if d.CarbonPricePerTon < 0 {
		return errors.New("defaults: carbon_price_per_ton must be >= 0")
	}
	if d.UtilityBudget < 0 || d.OperatorBudget < 0 {
		return errors.New("defaults: budgets must be >= 0")
	}
	if d.DemandProfile == nil {
		return errors.New("defaults: demand_profile is required")
	}
	if d.DemandProfile.TotalHours() <= 0 {
		return errors.New("defaults: demand_profile hours must sum to a positive value")
	}

	if len(c.PlantTemplates) == 0 {
		return errors.New("plant_templates: at least one template is required")
	}
	seen := make(map[models.PlantType]bool)
	for i, t := range c.PlantTemplates {
		if t.PlantType == "" {
			return fmt.Errorf("plant_templates[%d]: plant_type is required", i)
		}
		if !knownPlantTypes[t.PlantType] {
			return fmt.Errorf("plant_templates[%d]: unknown plant_type %q", i, t.PlantType)
		}
		if seen[t.PlantType] {
			return fmt.Errorf("plant_templates[%d]: duplicate plant_type %q", i, t.PlantType)
		}
		seen[t.PlantType] = true
		if t.OvernightCostPerKW < 0 || t.FixedOMPerKWYear < 0 || t.VariableOMPerMWh < 0 {
			return fmt.Errorf("plant_templates[%s]: costs must be >= 0", t.PlantType)
		}
		if t.CapacityFactorBase < 0 || t.CapacityFactorBase > 1 {
			return fmt.Errorf("plant_templates[%s]: capacity_factor_base must be within [0,1], got %v", t.PlantType, t.CapacityFactorBase)
		}
		if t.ConstructionTimeYears < 0 || t.EconomicLifeYears <= 0 {
			return fmt.Errorf("plant_templates[%s]: construction_time_years must be >= 0 and economic_life_years > 0", t.PlantType)
		}
	}

	for year, prices := range c.FuelPrices {
		for fuel, price := range prices {
			if price < 0 {
				return fmt.Errorf("fuel_prices[%d][%s]: price must be >= 0", year, fuel)
			}
		}
	}
	return nil
}

// Template returns the template for a plant type
func (c *Catalog) Template(plantType models.PlantType) (models.PlantTemplate, bool) {
	for _, t := range c.PlantTemplates {
		if t.PlantType == plantType {
			return t, true
		}
	}
	return models.PlantTemplate{}, false
}

// FuelPriceTable returns a deep copy of the configured fuel prices
func (c *Catalog) FuelPriceTable() models.FuelPriceTable {
	out := make(models.FuelPriceTable, len(c.FuelPrices))
	for year, prices := range c.FuelPrices {
		inner := make(map[string]float64, len(prices))
		for fuel, price := range prices {
			inner[fuel] = price
		}
		out[year] = inner
	}
	return out
}

// FuelYears returns the configured fuel price years in ascending order
func (c *Catalog) FuelYears() []int {
	years := make([]int, 0, len(c.FuelPrices))
	for y := range c.FuelPrices {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// DemandProfile returns a copy of the default demand profile
func (c *Catalog) DemandProfile() models.AnnualDemandProfile {
	if c.Defaults.DemandProfile == nil {
		return models.DefaultDemandProfile()
	}
	return *c.Defaults.DemandProfile
}
