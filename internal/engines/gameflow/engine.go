package gameflow

import (
	"fmt"
	"log"
	"sort"
	"time"

	"capacitymarket/internal/config"
	gameDAO "capacitymarket/internal/dao/game"
	"capacitymarket/internal/engines/cost"
	"capacitymarket/internal/engines/finance"
	"capacitymarket/internal/engines/lifecycle"
	"capacitymarket/internal/engines/market"
	"capacitymarket/internal/interfaces"
	"capacitymarket/internal/models"
	"capacitymarket/internal/types"
)

// GameFlowEngine drives one game session through its yearly cycle.
// It holds no locks: callers must serialise calls for the same session.
type GameFlowEngine struct {
	sessionID string
	repos     gameDAO.Repositories
	catalog   *config.Catalog
	clearing  *market.ClearingEngine
	rng       RandomSource
	hub       interfaces.WebSocketHub

	marketEvents []MarketEvent
}

// NewGameFlowEngine creates a flow engine for sessionID. hub may be nil.
func NewGameFlowEngine(sessionID string, repos gameDAO.Repositories, catalog *config.Catalog, rng RandomSource, hub interfaces.WebSocketHub) *GameFlowEngine {
	return &GameFlowEngine{
		sessionID: sessionID,
		repos:     repos,
		catalog:   catalog,
		clearing:  market.NewClearingEngine(),
		rng:       rng,
		hub:       hub,
	}
}

// SessionID returns the session this engine drives
func (e *GameFlowEngine) SessionID() string {
	return e.sessionID
}

// MarketEvents returns every event generated so far, oldest first
func (e *GameFlowEngine) MarketEvents() []MarketEvent {
	return append([]MarketEvent(nil), e.marketEvents...)
}

func (e *GameFlowEngine) loadSession() (*models.GameSession, error) {
	session, err := e.repos.Sessions.GetSession(e.sessionID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

func requireState(session *models.GameSession, operation string, expected ...models.GameState) error {
	for _, s := range expected {
		if session.State == s {
			return nil
		}
	}
	return &models.InvalidStateError{Operation: operation, Current: session.State, Expected: expected}
}

func requireCurrentYear(session *models.GameSession, year int) error {
	if year != session.CurrentYear {
		return fmt.Errorf("%w: %d is not the current year %d", models.ErrInvalidYear, year, session.CurrentYear)
	}
	return nil
}

func (e *GameFlowEngine) setState(session *models.GameSession, state models.GameState, year int) error {
	from := session.State
	session.State = state
	session.CurrentYear = year
	if err := e.repos.Sessions.UpdateSession(session); err != nil {
		return fmt.Errorf("failed to update session state: %w", err)
	}
	log.Printf("Session %s: %s -> %s (year %d)", session.ID, from, state, year)
	return nil
}

func (e *GameFlowEngine) notify(msgType types.MessageType, session *models.GameSession, year int, payload interface{}) {
	if e.hub == nil {
		return
	}
	e.hub.BroadcastMessageString(string(msgType), types.FlowEventData{
		SessionID: session.ID,
		Year:      year,
		State:     string(session.State),
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
}

// StartYearPlanning opens the planning phase for year: it rolls market events,
// advances every plant's lifecycle and forecasts demand and fuel prices.
func (e *GameFlowEngine) StartYearPlanning(year int) (*PlanningResult, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	if err := requireState(session, "start year planning", models.GameStateSetup, models.GameStateYearComplete); err != nil {
		return nil, err
	}
	if year < session.StartYear || year > session.EndYear {
		return nil, fmt.Errorf("%w: %d is outside %d-%d", models.ErrInvalidYear, year, session.StartYear, session.EndYear)
	}

	result, err := e.runPlanning(session, year)
	if err != nil {
		return nil, err
	}
	e.notify(types.YearPlanningStarted, session, year, result)
	return result, nil
}

func (e *GameFlowEngine) runPlanning(session *models.GameSession, year int) (*PlanningResult, error) {
	events := GenerateMarketEvents(year, e.rng)
	e.marketEvents = append(e.marketEvents, events...)

	plants, err := e.repos.Plants.ListPlants(session.ID)
	if err != nil {
		return nil, err
	}
	updates := []lifecycle.Transition{}
	for i := range plants {
		transitions := lifecycle.Advance(&plants[i], year)
		if len(transitions) == 0 {
			continue
		}
		if err := e.repos.Plants.UpdatePlant(&plants[i]); err != nil {
			return nil, fmt.Errorf("failed to update plant status: %w", err)
		}
		updates = append(updates, transitions...)
	}

	if err := e.setState(session, models.GameStateYearPlanning, year); err != nil {
		return nil, err
	}

	return &PlanningResult{
		Status:                  StatusYearPlanningStarted,
		Year:                    year,
		Message:                 fmt.Sprintf("Year %d planning phase is open", year),
		DemandForecast:          forecastDemand(session.Demand(), session.YearOffset(year)),
		FuelPrices:              session.FuelPricesForYear(year),
		MarketEvents:            events,
		PlantUpdates:            updates,
		InvestmentOpportunities: append([]models.PlantTemplate(nil), e.catalog.PlantTemplates...),
	}, nil
}

// OpenAnnualBidding opens bidding for all three load periods of year and
// returns the plants eligible to bid with price guidance for each.
func (e *GameFlowEngine) OpenAnnualBidding(year int) (*BiddingResult, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	if err := requireState(session, "open annual bidding", models.GameStateYearPlanning); err != nil {
		return nil, err
	}
	if err := requireCurrentYear(session, year); err != nil {
		return nil, err
	}

	plants, err := e.repos.Plants.ListPlants(session.ID)
	if err != nil {
		return nil, err
	}

	fuelPrices := session.FuelPricesForYear(year)
	profile := session.Demand()

	available := []AvailablePlant{}
	guidance := make(map[string]BidGuidance)
	for i := range plants {
		plant := &plants[i]
		if !lifecycle.IsAvailable(plant, year) {
			continue
		}
		output := make(map[models.LoadPeriod]float64, len(models.LoadPeriods))
		for _, period := range models.LoadPeriods {
			output[period] = cost.ExpectedOutputMW(plant, year, period)
		}
		available = append(available, AvailablePlant{
			PlantID:          plant.ID,
			PlantName:        plant.Name,
			UtilityID:        plant.UtilityID,
			PlantType:        plant.PlantType,
			CapacityMW:       plant.CapacityMW,
			FuelType:         plant.FuelType,
			ExpectedOutputMW: output,
		})
		guidance[plant.ID] = guidanceFor(plant, fuelPrices, session.CarbonPricePerTon)
	}

	periods := make(map[models.LoadPeriod]LoadPeriodInfo, len(models.LoadPeriods))
	for _, period := range models.LoadPeriods {
		periods[period] = LoadPeriodInfo{Hours: profile.PeriodHours(period), Description: periodDescriptions[period]}
	}

	if err := e.setState(session, models.GameStateBiddingOpen, year); err != nil {
		return nil, err
	}

	result := &BiddingResult{
		Status:          StatusAnnualBiddingOpen,
		Year:            year,
		Message:         fmt.Sprintf("Submit bids for all load periods in %d", year),
		LoadPeriods:     periods,
		AvailablePlants: available,
		BidGuidance:     guidance,
	}
	e.notify(types.AnnualBiddingOpen, session, year, result)
	return result, nil
}

// ClearAnnualMarkets clears off-peak, shoulder and peak for year, stores the
// results and reports utility performance. A year without bids completes
// with a zero-activity result.
func (e *GameFlowEngine) ClearAnnualMarkets(year int) (*ClearingResult, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	if err := requireState(session, "clear annual markets", models.GameStateBiddingOpen); err != nil {
		return nil, err
	}
	if err := requireCurrentYear(session, year); err != nil {
		return nil, err
	}

	bids, err := e.repos.Bids.ListBids(session.ID, year)
	if err != nil {
		return nil, err
	}

	if len(bids) == 0 {
		if err := e.setState(session, models.GameStateYearComplete, year); err != nil {
			return nil, err
		}
		result := &ClearingResult{
			Status:             StatusNoBidsSubmitted,
			Year:               year,
			Message:            fmt.Sprintf("No bids were submitted for year %d. Markets cannot clear without bids.", year),
			Results:            map[models.LoadPeriod]PeriodOutcome{},
			UtilityPerformance: []finance.UtilitySettlement{},
			MarketInsights:     append([]string(nil), noBidsInsights...),
		}
		e.notify(types.NoBidsSubmitted, session, year, result)
		return result, nil
	}

	plants, err := e.repos.Plants.ListPlants(session.ID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*models.Plant, len(plants))
	for i := range plants {
		byID[plants[i].ID] = &plants[i]
	}

	eligible := make([]models.YearlyBid, 0, len(bids))
	for _, bid := range bids {
		plant, ok := byID[bid.PlantID]
		if !ok || !lifecycle.IsAvailable(plant, year) {
			log.Printf("Session %s: discarding bid %s, plant %s unavailable in %d", session.ID, bid.ID, bid.PlantID, year)
			continue
		}
		eligible = append(eligible, bid)
	}

	clearings := e.clearing.ClearYear(eligible, session.Demand(), year, session.YearOffset(year))

	records := make([]*models.MarketResult, 0, len(clearings))
	outcomes := make(map[models.LoadPeriod]PeriodOutcome, len(clearings))
	totalEnergy := 0.0
	for _, c := range clearings {
		records = append(records, c.ToModel(session.ID))
		outcomes[c.Period] = outcomeOf(c)
		totalEnergy += c.TotalEnergy
		log.Printf("Session %s %d %s: price %.2f $/MWh, cleared %.1f of %.1f MW, %d bids accepted, scarcity=%t",
			session.ID, year, c.Period, c.ClearingPrice, c.ClearedQuantity, c.TargetDemand, len(c.Accepted), c.Scarcity)
	}
	if err := e.repos.Results.SaveResults(session.ID, year, records); err != nil {
		return nil, err
	}

	if err := e.setState(session, models.GameStateMarketClearing, year); err != nil {
		return nil, err
	}

	names, err := e.utilityNames()
	if err != nil {
		return nil, err
	}
	revenue := finance.TotalRevenue(clearings)

	result := &ClearingResult{
		Status:  StatusAnnualMarketsCleared,
		Year:    year,
		Results: outcomes,
		Summary: MarketSummary{
			TotalMarketRevenue:   revenue,
			AveragePriceWeighted: finance.SafeDiv(revenue, totalEnergy),
			CapacityUtilization:  capacityUtilization(totalEnergy, plants, year),
			RenewablePenetration: renewablePenetration(plants, year),
		},
		UtilityPerformance: finance.Settle(clearings, plants, names),
		MarketInsights:     marketInsights(clearings, plants, year),
		DiscardedBids:      len(bids) - len(eligible),
	}
	e.notify(types.AnnualMarketsCleared, session, year, result)
	return result, nil
}

// CompleteYear closes year. At the horizon the game ends with final rankings;
// otherwise planning for the next year starts immediately.
func (e *GameFlowEngine) CompleteYear(year int) (*CompletionResult, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	if err := requireState(session, "complete year", models.GameStateMarketClearing, models.GameStateYearComplete); err != nil {
		return nil, err
	}
	if err := requireCurrentYear(session, year); err != nil {
		return nil, err
	}

	if year >= session.EndYear {
		if err := e.setState(session, models.GameStateGameComplete, year); err != nil {
			return nil, err
		}
		rankings, err := e.FinalRankings()
		if err != nil {
			return nil, err
		}
		result := &CompletionResult{
			Status:        StatusYearCompleted,
			Year:          year,
			Message:       fmt.Sprintf("Game completed! Final results for %d-%d", session.StartYear, session.EndYear),
			State:         models.GameStateGameComplete,
			FinalRankings: rankings,
		}
		e.notify(types.GameCompleted, session, year, result)
		return result, nil
	}

	next := year + 1
	planning, err := e.runPlanning(session, next)
	if err != nil {
		return nil, err
	}
	result := &CompletionResult{
		Status:  StatusYearCompleted,
		Year:    year,
		Message: fmt.Sprintf("Year %d completed. Planning open for %d", year, next),
		State:   models.GameStateYearPlanning,
		NextYearPreview: &YearPreview{
			Year:           next,
			DemandForecast: planning.DemandForecast,
			FuelPrices:     planning.FuelPrices,
		},
		NextYearPlanning: planning,
	}
	e.notify(types.YearCompleted, session, year, result)
	return result, nil
}

// Status reports where the session is in its cycle
func (e *GameFlowEngine) Status() (*FlowStatus, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	return &FlowStatus{
		SessionID:      session.ID,
		State:          session.State,
		CurrentYear:    session.CurrentYear,
		StartYear:      session.StartYear,
		EndYear:        session.EndYear,
		YearsRemaining: max(0, session.EndYear-session.CurrentYear),
		MarketEvents:   len(e.marketEvents),
	}, nil
}

func (e *GameFlowEngine) utilityNames() (map[string]string, error) {
	utilities, err := e.repos.Utilities.ListUtilities()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(utilities))
	for _, u := range utilities {
		names[u.ID] = u.Username
	}
	return names, nil
}

// storedSettlement rebuilds a year's settlement from persisted results and bids
func (e *GameFlowEngine) storedSettlement(session *models.GameSession, year int, plants []models.Plant, names map[string]string) ([]finance.UtilitySettlement, bool, error) {
	results, err := e.repos.Results.ListResults(session.ID, year)
	if err != nil {
		return nil, false, err
	}
	if len(results) == 0 {
		return nil, false, nil
	}
	bids, err := e.repos.Bids.ListBids(session.ID, year)
	if err != nil {
		return nil, false, err
	}
	bidsByID := make(map[string]models.YearlyBid, len(bids))
	for _, b := range bids {
		bidsByID[b.ID] = b
	}

	profile := session.Demand()
	clearings := make([]market.PeriodClearing, 0, len(results))
	for _, r := range results {
		c := market.PeriodClearing{
			Year:          r.Year,
			Period:        r.Period,
			Hours:         profile.PeriodHours(r.Period),
			ClearingPrice: r.ClearingPrice,
			TotalEnergy:   r.TotalEnergy,
		}
		for _, id := range r.AcceptedBidIDs {
			bid, ok := bidsByID[id]
			if !ok {
				continue
			}
			qty, price := bid.ForPeriod(r.Period)
			c.Accepted = append(c.Accepted, market.PeriodBid{
				BidID:     bid.ID,
				PlantID:   bid.PlantID,
				UtilityID: bid.UtilityID,
				Price:     price,
				Quantity:  qty,
			})
		}
		clearings = append(clearings, c)
	}
	return finance.Settle(clearings, plants, names), true, nil
}

// FinalRankings ranks utilities by gross profit accumulated over every cleared year
func (e *GameFlowEngine) FinalRankings() ([]Ranking, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	plants, err := e.repos.Plants.ListPlants(session.ID)
	if err != nil {
		return nil, err
	}
	names, err := e.utilityNames()
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*Ranking)
	for year := session.StartYear; year <= session.CurrentYear; year++ {
		settlements, ok, err := e.storedSettlement(session, year, plants, names)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for _, s := range settlements {
			r, exists := totals[s.UtilityID]
			if !exists {
				r = &Ranking{UtilityID: s.UtilityID, UtilityName: s.UtilityName}
				totals[s.UtilityID] = r
			}
			r.CumulativeRevenue += s.Revenue
			r.CumulativeFixedCosts += s.FixedCosts
			r.CumulativeGrossProfit += s.GrossProfit
		}
	}

	rankings := make([]Ranking, 0, len(totals))
	for _, r := range totals {
		if u, err := e.repos.Utilities.GetUtility(r.UtilityID); err == nil {
			r.Budget = u.Budget
			r.Equity = u.Equity
			r.Debt = u.Debt
		}
		rankings = append(rankings, *r)
	}
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].CumulativeGrossProfit != rankings[j].CumulativeGrossProfit {
			return rankings[i].CumulativeGrossProfit > rankings[j].CumulativeGrossProfit
		}
		return rankings[i].UtilityID < rankings[j].UtilityID
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}
	return rankings, nil
}

// YearlySummary summarises the stored results for year
func (e *GameFlowEngine) YearlySummary(year int) (*YearlySummary, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	results, err := e.repos.Results.ListResults(session.ID, year)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, models.NotFoundError("market results for year", fmt.Sprint(year))
	}
	plants, err := e.repos.Plants.ListPlants(session.ID)
	if err != nil {
		return nil, err
	}

	outcomes := make(map[models.LoadPeriod]PeriodOutcome, len(results))
	for _, r := range results {
		outcomes[r.Period] = outcomeFromModel(r)
	}
	energy, value := energyAndValue(results)

	return &YearlySummary{
		Year:          year,
		PeriodResults: outcomes,
		AnnualSummary: AnnualSummary{
			TotalEnergyMWh:       energy,
			WeightedAveragePrice: finance.SafeDiv(value, energy),
			TotalMarketValue:     value,
			CapacityUtilization:  capacityUtilization(energy, plants, year),
			RenewablePenetration: renewablePenetration(plants, year),
		},
	}, nil
}

// MultiYearAnalysis reports price and renewable trends across cleared years
func (e *GameFlowEngine) MultiYearAnalysis() (*MultiYearAnalysis, error) {
	session, err := e.loadSession()
	if err != nil {
		return nil, err
	}
	results, err := e.repos.Results.ListResults(session.ID, 0)
	if err != nil {
		return nil, err
	}
	plants, err := e.repos.Plants.ListPlants(session.ID)
	if err != nil {
		return nil, err
	}

	byYear := make(map[int][]models.MarketResult)
	for _, r := range results {
		byYear[r.Year] = append(byYear[r.Year], r)
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	data := make(map[int]YearTrendPoint, len(years))
	for _, y := range years {
		energy, value := energyAndValue(byYear[y])
		data[y] = YearTrendPoint{
			TotalEnergy:          energy,
			AveragePrice:         finance.SafeDiv(value, energy),
			CapacityUtilization:  capacityUtilization(energy, plants, y),
			RenewablePenetration: renewablePenetration(plants, y),
		}
	}

	analysis := &MultiYearAnalysis{
		SessionID:      session.ID,
		YearlyData:     data,
		MarketEvents:   e.MarketEvents(),
		AnalysisPeriod: "N/A - N/A",
	}
	if len(years) > 0 {
		analysis.AnalysisPeriod = fmt.Sprintf("%d - %d", years[0], years[len(years)-1])
	}
	if len(years) > 1 {
		first, last := data[years[0]], data[years[len(years)-1]]
		n := float64(len(years))
		analysis.Trends = &Trends{
			PriceTrendPerYear:      (last.AveragePrice - first.AveragePrice) / n,
			RenewableGrowthPerYear: (last.RenewablePenetration - first.RenewablePenetration) / n,
			YearsAnalyzed:          len(years),
		}
	}
	return analysis, nil
}
