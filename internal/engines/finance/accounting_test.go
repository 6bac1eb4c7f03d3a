package finance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capacitymarket/internal/engines/market"
	"capacitymarket/internal/models"
)

func TestApplyInvestment(t *testing.T) {
	t.Run("splits 70/30 and draws equity from budget", func(t *testing.T) {
		utility := &models.Utility{Budget: 2_000_000_000, Equity: 2_000_000_000}
		capital := CapitalCost(100, 1200) // 120M

		f, err := ApplyInvestment(utility, capital)

		require.NoError(t, err)
		assert.InDelta(t, 120_000_000, f.CapitalCost, 1e-6)
		assert.InDelta(t, 84_000_000, f.Debt, 1e-6)
		assert.InDelta(t, 36_000_000, f.Equity, 1e-6)
		assert.InDelta(t, 84_000_000, utility.Debt, 1e-6)
		assert.InDelta(t, 1_964_000_000, utility.Equity, 1e-6)
		assert.InDelta(t, 1_964_000_000, utility.Budget, 1e-6)
	})

	t.Run("insufficient budget leaves state unchanged", func(t *testing.T) {
		utility := &models.Utility{Budget: 10_000_000, Debt: 5, Equity: 10_000_000}

		_, err := ApplyInvestment(utility, CapitalCost(1000, 8500))

		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrInsufficientFunds))
		assert.Equal(t, 10_000_000.0, utility.Budget)
		assert.Equal(t, 5.0, utility.Debt)
		assert.Equal(t, 10_000_000.0, utility.Equity)
	})

	t.Run("budget exactly covering equity succeeds", func(t *testing.T) {
		utility := &models.Utility{Budget: 30, Equity: 30}

		_, err := ApplyInvestment(utility, 100)

		require.NoError(t, err)
		assert.InDelta(t, 0, utility.Budget, 1e-9)
	})
}

func TestFixedOMAnnual(t *testing.T) {
	assert.InDelta(t, 27_000_000, FixedOMAnnual(600, 45), 1e-6)
}

func TestSettle(t *testing.T) {
	clearings := []market.PeriodClearing{
		{
			Period: models.LoadPeriodOffPeak, Hours: 5000, ClearingPrice: 40,
			Accepted: []market.PeriodBid{
				{BidID: "b1", PlantID: "p1", UtilityID: "u1", Price: 20, Quantity: 100},
				{BidID: "b2", PlantID: "p2", UtilityID: "u2", Price: 40, Quantity: 50},
			},
		},
		{
			Period: models.LoadPeriodPeak, Hours: 1260, ClearingPrice: 100,
			Accepted: []market.PeriodBid{
				{BidID: "b1", PlantID: "p1", UtilityID: "u1", Price: 30, Quantity: 100},
			},
		},
	}
	plants := []models.Plant{
		{ID: "p1", UtilityID: "u1", CapacityMW: 100, FixedOMAnnual: 1_000_000, CommissioningYear: 2020, RetirementYear: 2050},
		{ID: "p2", UtilityID: "u2", CapacityMW: 50, FixedOMAnnual: 500_000, CommissioningYear: 2020, RetirementYear: 2050},
		{ID: "p3", UtilityID: "u2", CapacityMW: 300, FixedOMAnnual: 9_000_000, CommissioningYear: 2030, RetirementYear: 2060},
		{ID: "p4", UtilityID: "u3", CapacityMW: 10, FixedOMAnnual: 1, CommissioningYear: 2000, RetirementYear: 2010},
	}

	out := Settle(clearings, plants, map[string]string{"u1": "north"})

	require.Len(t, out, 3)

	u1 := out[0]
	assert.Equal(t, "u1", u1.UtilityID)
	assert.Equal(t, "north", u1.UtilityName)
	assert.InDelta(t, 100*5000*40+100*1260*100, u1.Revenue, 1e-6)
	assert.InDelta(t, 100*5000+100*1260, u1.GenerationMWh, 1e-6)
	assert.InDelta(t, 100, u1.CapacityMW, 1e-9)
	assert.InDelta(t, u1.Revenue-1_000_000, u1.GrossProfit, 1e-6)
	assert.InDelta(t, 626000.0/(100*8760), u1.CapacityFactor, 1e-9)
	assert.InDelta(t, u1.Revenue/u1.GenerationMWh, u1.RevenuePerMWh, 1e-9)

	u2 := out[1]
	assert.Equal(t, 2, u2.PlantCount)
	assert.InDelta(t, 350, u2.CapacityMW, 1e-9, "plant not yet commissioned still counts")
	assert.InDelta(t, 9_500_000, u2.FixedCosts, 1e-9)
	assert.InDelta(t, 50*5000*40-9_500_000, u2.GrossProfit, 1e-6)
	assert.InDelta(t, 50*5000/(350*8760.0), u2.CapacityFactor, 1e-12)

	u3 := out[2]
	assert.Equal(t, 0.0, u3.Revenue)
	assert.Equal(t, 0.0, u3.CapacityFactor)
	assert.Equal(t, 0.0, u3.RevenuePerMWh)
	assert.Equal(t, 1.0, u3.FixedCosts, "retired plants are still owned")
	assert.Equal(t, -1.0, u3.GrossProfit)
}

func TestSettleChargesPlantsUnderConstruction(t *testing.T) {
	clearings := []market.PeriodClearing{{
		Period: models.LoadPeriodPeak, Hours: 1260, ClearingPrice: 50,
		Accepted: []market.PeriodBid{{BidID: "b1", PlantID: "op", UtilityID: "u1", Price: 50, Quantity: 100}},
	}}
	plants := []models.Plant{
		{ID: "op", UtilityID: "u1", CapacityMW: 100, FixedOMAnnual: 1_000_000, Status: models.PlantStatusOperating,
			CommissioningYear: 2020, RetirementYear: 2050},
		{ID: "build", UtilityID: "u1", CapacityMW: 400, FixedOMAnnual: 20_000_000, Status: models.PlantStatusUnderConstruction,
			CommissioningYear: 2029, RetirementYear: 2069},
	}

	out := Settle(clearings, plants, nil)
	require.Len(t, out, 1)
	assert.InDelta(t, 6_300_000, out[0].Revenue, 1e-6)
	assert.InDelta(t, 21_000_000, out[0].FixedCosts, 1e-6)
	assert.InDelta(t, -14_700_000, out[0].GrossProfit, 1e-6)
	assert.InDelta(t, 500, out[0].CapacityMW, 1e-9)
	assert.InDelta(t, 126_000/(500*8760.0), out[0].CapacityFactor, 1e-12)
}

func TestTotalRevenue(t *testing.T) {
	clearings := []market.PeriodClearing{
		{ClearingPrice: 40, TotalEnergy: 1000},
		{ClearingPrice: 0, TotalEnergy: 500},
		{ClearingPrice: 100, TotalEnergy: 10},
	}
	assert.InDelta(t, 41000, TotalRevenue(clearings), 1e-9)
	assert.Equal(t, 0.0, TotalRevenue(nil))
}

func TestSafeDiv(t *testing.T) {
	assert.Equal(t, 0.0, SafeDiv(10, 0))
	assert.Equal(t, 2.5, SafeDiv(5, 2))
}

func TestProjectInvestment(t *testing.T) {
	heat := 6400.0
	gas := "natural_gas"
	template := models.PlantTemplate{
		PlantType:             models.PlantTypeNaturalGasCC,
		OvernightCostPerKW:    1200,
		ConstructionTimeYears: 3,
		EconomicLifeYears:     30,
		CapacityFactorBase:    0.87,
		HeatRate:              &heat,
		FuelType:              &gas,
		FixedOMPerKWYear:      15,
	}

	p := ProjectInvestment(template, 100, 2026, models.Utility{Budget: 50_000_000})

	assert.Equal(t, 2029, p.CommissioningYear)
	assert.InDelta(t, 36_000_000, p.Financing.Equity, 1e-6)
	assert.InDelta(t, 14_000_000, p.PostInvestmentBudget, 1e-6)
	assert.InDelta(t, 100*0.87*8760, p.AnnualGenerationMWh, 1e-6)
	assert.InDelta(t, 1_500_000, p.AnnualFixedCosts, 1e-6)
	assert.InDelta(t, 84_000_000*0.06, p.AnnualDebtService, 1e-6)
	assert.True(t, p.BudgetSufficient)
	assert.Equal(t, "Proceed with investment", p.Recommendation)

	p = ProjectInvestment(template, 100, 2026, models.Utility{Budget: 1})
	assert.False(t, p.BudgetSufficient)
	assert.Equal(t, "Consider alternative financing or smaller capacity", p.Recommendation)
}
