package finance

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"capacitymarket/internal/engines/market"
	"capacitymarket/internal/models"
)

var (
	debtShare   = decimal.NewFromFloat(0.7)
	equityShare = decimal.NewFromFloat(0.3)
	kwPerMW     = decimal.NewFromInt(1000)
)

// Financing is the split of a plant's capital cost between debt and equity
type Financing struct {
	CapitalCost float64 `json:"capital_cost"`
	Debt        float64 `json:"debt"`
	Equity      float64 `json:"equity"`
}

// CapitalCost returns capacity (converted to kW) times the overnight cost per kW
func CapitalCost(capacityMW, overnightCostPerKW float64) float64 {
	return decimal.NewFromFloat(capacityMW).Mul(kwPerMW).Mul(decimal.NewFromFloat(overnightCostPerKW)).InexactFloat64()
}

// FixedOMAnnual returns the yearly fixed O&M bill for a plant of the given size
func FixedOMAnnual(capacityMW, fixedOMPerKWYear float64) float64 {
	return decimal.NewFromFloat(capacityMW).Mul(kwPerMW).Mul(decimal.NewFromFloat(fixedOMPerKWYear)).InexactFloat64()
}

// PlanFinancing splits capital 70% debt and 30% equity
func PlanFinancing(capital float64) Financing {
	c := decimal.NewFromFloat(capital)
	return Financing{
		CapitalCost: capital,
		Debt:        c.Mul(debtShare).InexactFloat64(),
		Equity:      c.Mul(equityShare).InexactFloat64(),
	}
}

// ApplyInvestment draws the equity share from the utility's budget and books the
// debt. The utility is left untouched when its budget cannot cover the equity.
func ApplyInvestment(utility *models.Utility, capital float64) (Financing, error) {
	f := PlanFinancing(capital)
	budget := decimal.NewFromFloat(utility.Budget)
	equity := decimal.NewFromFloat(f.Equity)

	if budget.LessThan(equity) {
		return f, fmt.Errorf("%w: need $%s equity, have $%s budget",
			models.ErrInsufficientFunds, equity.StringFixed(0), budget.StringFixed(0))
	}

	utility.Debt = decimal.NewFromFloat(utility.Debt).Add(decimal.NewFromFloat(f.Debt)).InexactFloat64()
	utility.Equity = decimal.NewFromFloat(utility.Equity).Sub(equity).InexactFloat64()
	utility.Budget = budget.Sub(equity).InexactFloat64()
	return f, nil
}

// InService reports whether year falls inside the plant's commissioning window
func InService(plant *models.Plant, year int) bool {
	return plant.CommissioningYear <= year && year < plant.RetirementYear
}

// UtilitySettlement is one utility's market outcome for a year. It is reported
// only; nothing here is deposited into the utility's budget.
type UtilitySettlement struct {
	UtilityID      string  `json:"utility_id"`
	UtilityName    string  `json:"utility_name"`
	Revenue        float64 `json:"total_revenue"`
	GenerationMWh  float64 `json:"total_generation_mwh"`
	CapacityMW     float64 `json:"total_capacity_mw"`
	CapacityFactor float64 `json:"capacity_factor"`
	FixedCosts     float64 `json:"total_fixed_costs"`
	GrossProfit    float64 `json:"gross_profit"`
	RevenuePerMWh  float64 `json:"revenue_per_mwh"`
	PlantCount     int     `json:"plant_count"`
}

type settlementAccumulator struct {
	revenue    decimal.Decimal
	generation decimal.Decimal
	capacity   decimal.Decimal
	fixed      decimal.Decimal
	plants     int
}

// Settle attributes accepted bids back to their owners. Each accepted bid earns
// clearing price times its full offered quantity times the period hours. Fixed
// O&M and capacity are charged for every owned plant whatever its status, so a
// plant under construction still costs its owner. Utilities with plants in the
// session but no accepted bids still appear.
func Settle(clearings []market.PeriodClearing, plants []models.Plant, utilityNames map[string]string) []UtilitySettlement {
	acc := make(map[string]*settlementAccumulator)
	get := func(utilityID string) *settlementAccumulator {
		a, ok := acc[utilityID]
		if !ok {
			a = &settlementAccumulator{}
			acc[utilityID] = a
		}
		return a
	}

	for i := range plants {
		a := get(plants[i].UtilityID)
		a.plants++
		a.capacity = a.capacity.Add(decimal.NewFromFloat(plants[i].CapacityMW))
		a.fixed = a.fixed.Add(decimal.NewFromFloat(plants[i].FixedOMAnnual))
	}

	for _, c := range clearings {
		price := decimal.NewFromFloat(c.ClearingPrice)
		hours := decimal.NewFromInt(int64(c.Hours))
		for _, bid := range c.Accepted {
			energy := decimal.NewFromFloat(bid.Quantity).Mul(hours)
			a := get(bid.UtilityID)
			a.generation = a.generation.Add(energy)
			a.revenue = a.revenue.Add(energy.Mul(price))
		}
	}

	out := make([]UtilitySettlement, 0, len(acc))
	for id, a := range acc {
		s := UtilitySettlement{
			UtilityID:     id,
			UtilityName:   utilityNames[id],
			Revenue:       a.revenue.InexactFloat64(),
			GenerationMWh: a.generation.InexactFloat64(),
			CapacityMW:    a.capacity.InexactFloat64(),
			FixedCosts:    a.fixed.InexactFloat64(),
			GrossProfit:   a.revenue.Sub(a.fixed).InexactFloat64(),
			PlantCount:    a.plants,
		}
		s.CapacityFactor = SafeDiv(s.GenerationMWh, s.CapacityMW*models.HoursPerYear)
		s.RevenuePerMWh = SafeDiv(s.Revenue, s.GenerationMWh)
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UtilityID < out[j].UtilityID })
	return out
}

// TotalRevenue sums price times energy across the cleared periods
func TotalRevenue(clearings []market.PeriodClearing) float64 {
	total := decimal.Zero
	for _, c := range clearings {
		total = total.Add(decimal.NewFromFloat(c.ClearingPrice).Mul(decimal.NewFromFloat(c.TotalEnergy)))
	}
	return total.InexactFloat64()
}

// SafeDiv returns a/b, or 0 when b is zero
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
