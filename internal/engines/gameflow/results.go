package gameflow

import (
	"capacitymarket/internal/engines/finance"
	"capacitymarket/internal/engines/lifecycle"
	"capacitymarket/internal/models"
)

const (
	StatusYearPlanningStarted  = "year_planning_started"
	StatusAnnualBiddingOpen    = "annual_bidding_open"
	StatusAnnualMarketsCleared = "annual_markets_cleared"
	StatusNoBidsSubmitted      = "no_bids_submitted"
	StatusYearCompleted        = "year_completed"
)

// DemandForecast is the grown per-period demand (MW) for a year
type DemandForecast struct {
	OffPeak           float64 `json:"off_peak"`
	Shoulder          float64 `json:"shoulder"`
	Peak              float64 `json:"peak"`
	GrowthRate        float64 `json:"growth_rate"`
	TotalAnnualEnergy float64 `json:"total_annual_energy"`
}

type PlanningResult struct {
	Status                  string                 `json:"status"`
	Year                    int                    `json:"year"`
	Message                 string                 `json:"message"`
	DemandForecast          DemandForecast         `json:"demand_forecast"`
	FuelPrices              map[string]float64     `json:"fuel_prices"`
	MarketEvents            []MarketEvent          `json:"market_events"`
	PlantUpdates            []lifecycle.Transition `json:"plant_updates"`
	InvestmentOpportunities []models.PlantTemplate `json:"investment_opportunities"`
}

type LoadPeriodInfo struct {
	Hours       int    `json:"hours"`
	Description string `json:"description"`
}

type AvailablePlant struct {
	PlantID          string                        `json:"plant_id"`
	PlantName        string                        `json:"plant_name"`
	UtilityID        string                        `json:"utility_id"`
	PlantType        models.PlantType              `json:"plant_type"`
	CapacityMW       float64                       `json:"capacity_mw"`
	FuelType         *string                       `json:"fuel_type"`
	ExpectedOutputMW map[models.LoadPeriod]float64 `json:"expected_output_mw"`
}

type BidRange struct {
	Minimum     float64 `json:"minimum"`
	Competitive float64 `json:"competitive"`
	Premium     float64 `json:"premium"`
}

// BidGuidance suggests prices around a plant's marginal cost, all in $/MWh
type BidGuidance struct {
	MarginalCost        float64  `json:"marginal_cost"`
	RecommendedBidRange BidRange `json:"recommended_bid_range"`
	FuelCostComponent   float64  `json:"fuel_cost_component"`
	CarbonCostComponent float64  `json:"carbon_cost_component"`
}

type BiddingResult struct {
	Status          string                               `json:"status"`
	Year            int                                  `json:"year"`
	Message         string                               `json:"message"`
	LoadPeriods     map[models.LoadPeriod]LoadPeriodInfo `json:"load_periods"`
	AvailablePlants []AvailablePlant                     `json:"available_plants"`
	BidGuidance     map[string]BidGuidance               `json:"bid_guidance"`
}

// PeriodOutcome is the presentation view of one cleared period
type PeriodOutcome struct {
	ClearingPrice   float64 `json:"clearing_price"`
	ClearedQuantity float64 `json:"cleared_quantity"`
	TotalEnergy     float64 `json:"total_energy"`
	TargetDemand    float64 `json:"target_demand"`
	AcceptedBids    int     `json:"accepted_bids"`
	MarginalPlant   string  `json:"marginal_plant,omitempty"`
	Scarcity        bool    `json:"scarcity"`
}

type MarketSummary struct {
	TotalMarketRevenue   float64 `json:"total_market_revenue"`
	AveragePriceWeighted float64 `json:"average_price_weighted"`
	CapacityUtilization  float64 `json:"capacity_utilization"`
	RenewablePenetration float64 `json:"renewable_penetration"`
}

type ClearingResult struct {
	Status             string                              `json:"status"`
	Year               int                                 `json:"year"`
	Message            string                              `json:"message,omitempty"`
	Results            map[models.LoadPeriod]PeriodOutcome `json:"results"`
	Summary            MarketSummary                       `json:"summary"`
	UtilityPerformance []finance.UtilitySettlement         `json:"utility_performance"`
	MarketInsights     []string                            `json:"market_insights"`
	DiscardedBids      int                                 `json:"discarded_bids"`
}

type YearPreview struct {
	Year           int                `json:"year"`
	DemandForecast DemandForecast     `json:"demand_forecast"`
	FuelPrices     map[string]float64 `json:"fuel_prices"`
}

// Ranking is a utility's cumulative standing at the end of the game
type Ranking struct {
	Rank                  int     `json:"rank"`
	UtilityID             string  `json:"utility_id"`
	UtilityName           string  `json:"utility_name"`
	CumulativeRevenue     float64 `json:"cumulative_revenue"`
	CumulativeFixedCosts  float64 `json:"cumulative_fixed_costs"`
	CumulativeGrossProfit float64 `json:"cumulative_gross_profit"`
	Budget                float64 `json:"budget"`
	Equity                float64 `json:"equity"`
	Debt                  float64 `json:"debt"`
}

type CompletionResult struct {
	Status           string           `json:"status"`
	Year             int              `json:"year"`
	Message          string           `json:"message"`
	State            models.GameState `json:"state"`
	NextYearPreview  *YearPreview     `json:"next_year_preview,omitempty"`
	NextYearPlanning *PlanningResult  `json:"next_year_planning,omitempty"`
	FinalRankings    []Ranking        `json:"final_rankings,omitempty"`
}

type FlowStatus struct {
	SessionID      string           `json:"session_id"`
	State          models.GameState `json:"state"`
	CurrentYear    int              `json:"current_year"`
	StartYear      int              `json:"start_year"`
	EndYear        int              `json:"end_year"`
	YearsRemaining int              `json:"years_remaining"`
	MarketEvents   int              `json:"market_events"`
}

type AnnualSummary struct {
	TotalEnergyMWh       float64 `json:"total_energy_mwh"`
	WeightedAveragePrice float64 `json:"weighted_average_price"`
	TotalMarketValue     float64 `json:"total_market_value"`
	CapacityUtilization  float64 `json:"capacity_utilization"`
	RenewablePenetration float64 `json:"renewable_penetration"`
}

type YearlySummary struct {
	Year          int                                 `json:"year"`
	PeriodResults map[models.LoadPeriod]PeriodOutcome `json:"period_results"`
	AnnualSummary AnnualSummary                       `json:"annual_summary"`
}

type YearTrendPoint struct {
	TotalEnergy          float64 `json:"total_energy"`
	AveragePrice         float64 `json:"average_price"`
	CapacityUtilization  float64 `json:"capacity_utilization"`
	RenewablePenetration float64 `json:"renewable_penetration"`
}

type Trends struct {
	PriceTrendPerYear      float64 `json:"price_trend_per_year"`
	RenewableGrowthPerYear float64 `json:"renewable_growth_per_year"`
	YearsAnalyzed          int     `json:"years_analyzed"`
}

type MultiYearAnalysis struct {
	SessionID      string                 `json:"session_id"`
	YearlyData     map[int]YearTrendPoint `json:"yearly_data"`
	Trends         *Trends                `json:"trends,omitempty"`
	MarketEvents   []MarketEvent          `json:"market_events"`
	AnalysisPeriod string                 `json:"analysis_period"`
}
