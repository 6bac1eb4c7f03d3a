package finance

import (
	"github.com/shopspring/decimal"

	"capacitymarket/internal/models"
)

const (
	// Flat price assumption for a what-if revenue projection, $/MWh
	projectedPricePerMWh = 55.0
	debtInterestRate     = 0.06
)

// InvestmentProjection is a what-if view of a plant investment. Nothing is booked.
type InvestmentProjection struct {
	PlantType         models.PlantType `json:"plant_type"`
	CapacityMW        float64          `json:"capacity_mw"`
	ConstructionStart int              `json:"construction_start"`
	CommissioningYear int              `json:"commissioning_year"`
	EconomicLife      int              `json:"economic_life"`

	Financing Financing `json:"financing"`

	PostInvestmentBudget float64 `json:"post_investment_budget"`
	PostInvestmentDebt   float64 `json:"post_investment_debt"`
	BudgetSufficient     bool    `json:"budget_sufficient"`

	AnnualGenerationMWh float64 `json:"annual_generation_mwh"`
	AnnualRevenue       float64 `json:"annual_revenue_projection"`
	AnnualFixedCosts    float64 `json:"annual_fixed_costs"`
	AnnualEBITDA        float64 `json:"annual_ebitda"`
	AnnualDebtService   float64 `json:"annual_debt_service"`
	AnnualCashFlow      float64 `json:"annual_cash_flow"`

	Recommendation string `json:"recommendation"`
}

// ProjectInvestment estimates the financial impact of building capacityMW of
// the template's technology for utility, starting construction in constructionStart.
func ProjectInvestment(template models.PlantTemplate, capacityMW float64, constructionStart int, utility models.Utility) InvestmentProjection {
	financing := PlanFinancing(CapitalCost(capacityMW, template.OvernightCostPerKW))
	fixed := FixedOMAnnual(capacityMW, template.FixedOMPerKWYear)

	generation := decimal.NewFromFloat(capacityMW).
		Mul(decimal.NewFromFloat(template.CapacityFactorBase)).
		Mul(decimal.NewFromInt(models.HoursPerYear))
	revenue := generation.Mul(decimal.NewFromFloat(projectedPricePerMWh))
	ebitda := revenue.Sub(decimal.NewFromFloat(fixed))
	debtService := decimal.NewFromFloat(financing.Debt).Mul(decimal.NewFromFloat(debtInterestRate))
	cashFlow := ebitda.Sub(debtService)

	p := InvestmentProjection{
		PlantType:            template.PlantType,
		CapacityMW:           capacityMW,
		ConstructionStart:    constructionStart,
		CommissioningYear:    constructionStart + template.ConstructionTimeYears,
		EconomicLife:         template.EconomicLifeYears,
		Financing:            financing,
		PostInvestmentBudget: utility.Budget - financing.Equity,
		PostInvestmentDebt:   utility.Debt + financing.Debt,
		AnnualGenerationMWh:  generation.InexactFloat64(),
		AnnualRevenue:        revenue.InexactFloat64(),
		AnnualFixedCosts:     fixed,
		AnnualEBITDA:         ebitda.InexactFloat64(),
		AnnualDebtService:    debtService.InexactFloat64(),
		AnnualCashFlow:       cashFlow.InexactFloat64(),
	}
	p.BudgetSufficient = p.PostInvestmentBudget >= 0

	if p.BudgetSufficient && p.AnnualCashFlow > 0 {
		p.Recommendation = "Proceed with investment"
	} else {
		p.Recommendation = "Consider alternative financing or smaller capacity"
	}
	return p
}
