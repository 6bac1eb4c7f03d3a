package gameflow

import (
	"fmt"
	"log"
	"strings"

	"capacitymarket/internal/engines/finance"
	"capacitymarket/internal/engines/lifecycle"
	"capacitymarket/internal/models"
	"capacitymarket/internal/types"
)

// PlantInvestment is a utility's request to build a new plant.
// CommissioningYear and RetirementYear default from the template when zero.
type PlantInvestment struct {
	UtilityID             string           `json:"utility_id" binding:"required"`
	Name                  string           `json:"name" binding:"required"`
	PlantType             models.PlantType `json:"plant_type" binding:"required"`
	CapacityMW            float64          `json:"capacity_mw" binding:"required"`
	ConstructionStartYear int              `json:"construction_start_year" binding:"required"`
	CommissioningYear     int              `json:"commissioning_year"`
	RetirementYear        int              `json:"retirement_year"`
}

// InvestmentResult is the created plant and how it was paid for
type InvestmentResult struct {
	Plant     models.Plant      `json:"plant"`
	Financing finance.Financing `json:"financing"`
	Utility   models.Utility    `json:"utility"`
}

// InvestInPlant builds a plant from its type template, finances it 70% debt and
// 30% equity from the utility's budget, and stores both atomically. On
// insufficient funds nothing is written.
func (e *GameFlowEngine) InvestInPlant(req PlantInvestment) (*InvestmentResult, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	if session.State == models.GameStateGameComplete {
		return nil, &models.InvalidStateError{
			Operation: "invest in plant",
			Current:   session.State,
			Expected: []models.GameState{
				models.GameStateSetup, models.GameStateYearPlanning, models.GameStateBiddingOpen,
				models.GameStateMarketClearing, models.GameStateYearComplete,
			},
		}
	}

	template, ok := e.catalog.Template(req.PlantType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown plant type %q", models.ErrInvalidPlant, req.PlantType)
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidPlant)
	}
	if req.CapacityMW <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %.2f", models.ErrInvalidPlant, req.CapacityMW)
	}
	if req.CommissioningYear == 0 {
		req.CommissioningYear = req.ConstructionStartYear + template.ConstructionTimeYears
	}
	if req.RetirementYear == 0 {
		req.RetirementYear = req.CommissioningYear + template.EconomicLifeYears
	}
	if req.ConstructionStartYear > req.CommissioningYear {
		return nil, fmt.Errorf("%w: construction start %d is after commissioning %d",
			models.ErrInvalidPlant, req.ConstructionStartYear, req.CommissioningYear)
	}
	if req.CommissioningYear > req.RetirementYear {
		return nil, fmt.Errorf("%w: commissioning %d is after retirement %d",
			models.ErrInvalidPlant, req.CommissioningYear, req.RetirementYear)
	}

	utility, err := e.repos.Utilities.GetUtility(req.UtilityID)
	if err != nil {
		return nil, err
	}

	plant := &models.Plant{
		GameSessionID:          session.ID,
		UtilityID:              utility.ID,
		Name:                   req.Name,
		PlantType:              template.PlantType,
		CapacityMW:             req.CapacityMW,
		ConstructionStartYear:  req.ConstructionStartYear,
		CommissioningYear:      req.CommissioningYear,
		RetirementYear:         req.RetirementYear,
		CapitalCostTotal:       finance.CapitalCost(req.CapacityMW, template.OvernightCostPerKW),
		FixedOMAnnual:          finance.FixedOMAnnual(req.CapacityMW, template.FixedOMPerKWYear),
		VariableOMPerMWh:       template.VariableOMPerMWh,
		CapacityFactor:         template.CapacityFactorBase,
		HeatRate:               template.HeatRate,
		FuelType:               template.FuelType,
		MinGenerationMW:        req.CapacityMW * template.MinGenerationPct,
		CO2EmissionsTonsPerMWh: template.CO2EmissionsTonsPerMWh,
		MaintenanceYears:       lifecycle.ScheduleMaintenance(req.CommissioningYear, req.RetirementYear, e.rng),
	}
	plant.Status = lifecycle.InitialStatus(plant, session.CurrentYear)

	financing, err := finance.ApplyInvestment(utility, plant.CapitalCostTotal)
	if err != nil {
		log.Printf("Session %s: investment by %s rejected: %v", session.ID, utility.ID, err)
		return nil, err
	}
	if err := e.repos.Plants.CreatePlantWithFinancing(plant, utility); err != nil {
		return nil, err
	}

	log.Printf("Session %s: %s invested in %s (%.0f MW %s), equity $%.0f, debt $%.0f",
		session.ID, utility.Username, plant.Name, plant.CapacityMW, plant.PlantType, financing.Equity, financing.Debt)

	result := &InvestmentResult{Plant: plant.Clone(), Financing: financing, Utility: *utility}
	e.notify(types.PlantCreated, session, session.CurrentYear, result)
	return result, nil
}

// SubmitBid records a utility's yearly bid for one of its plants. A second
// submission for the same plant and year replaces the first.
func (e *GameFlowEngine) SubmitBid(bid models.YearlyBid) (*models.YearlyBid, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	if err := requireState(session, "submit bid", models.GameStateBiddingOpen); err != nil {
		return nil, err
	}
	if err := requireCurrentYear(session, bid.Year); err != nil {
		return nil, err
	}
	if err := bid.Validate(); err != nil {
		return nil, err
	}

	plant, err := e.repos.Plants.GetPlant(session.ID, bid.PlantID)
	if err != nil {
		return nil, err
	}
	if bid.UtilityID == "" {
		bid.UtilityID = plant.UtilityID
	}
	if plant.UtilityID != bid.UtilityID {
		return nil, fmt.Errorf("%w: plant %s is not owned by utility %s", models.ErrInvalidBid, plant.ID, bid.UtilityID)
	}
	if !lifecycle.IsAvailable(plant, bid.Year) {
		return nil, fmt.Errorf("%w: plant %s is not available in %d (status %s)",
			models.ErrInvalidBid, plant.ID, bid.Year, plant.Status)
	}

	bid.GameSessionID = session.ID
	if err := e.repos.Bids.UpsertBid(&bid); err != nil {
		return nil, err
	}
	log.Printf("Session %s: bid %s for plant %s in %d stored", session.ID, bid.ID, plant.ID, bid.Year)
	e.notify(types.BidSubmitted, session, bid.Year, bid)
	return &bid, nil
}
