package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"gorm.io/datatypes"

	"capacitymarket/internal/config"
	gameDAO "capacitymarket/internal/dao/game"
	"capacitymarket/internal/engines/finance"
	"capacitymarket/internal/models"
)

// CreateUtilityRequest registers a participant. Budget defaults by user type.
type CreateUtilityRequest struct {
	Username string          `json:"username" binding:"required"`
	UserType models.UserType `json:"user_type"`
	Budget   *float64        `json:"budget"`
}

// CreateSessionRequest opens a new game. Zero values take the catalog defaults.
type CreateSessionRequest struct {
	ID                string   `json:"id"`
	Name              string   `json:"name" binding:"required"`
	OperatorID        string   `json:"operator_id"`
	StartYear         int      `json:"start_year"`
	EndYear           int      `json:"end_year"`
	CarbonPricePerTon *float64 `json:"carbon_price_per_ton"`
}

// ProjectionRequest asks for a what-if view of an investment
type ProjectionRequest struct {
	UtilityID             string           `json:"utility_id" binding:"required"`
	PlantType             models.PlantType `json:"plant_type" binding:"required"`
	CapacityMW            float64          `json:"capacity_mw" binding:"required"`
	ConstructionStartYear int              `json:"construction_start_year" binding:"required"`
}

// FinancialSummary is a utility's position and portfolio within one session
type FinancialSummary struct {
	UtilityID           string                       `json:"utility_id"`
	Username            string                       `json:"username"`
	Budget              float64                      `json:"budget"`
	Debt                float64                      `json:"debt"`
	Equity              float64                      `json:"equity"`
	PlantCount          int                          `json:"plant_count"`
	PlantsByStatus      map[models.PlantStatus]int   `json:"plants_by_status"`
	TotalCapacityMW     float64                      `json:"total_capacity_mw"`
	OperatingCapacity   float64                      `json:"operating_capacity_mw"`
	CapitalInvested     float64                      `json:"capital_invested"`
	AnnualFixedCosts    float64                      `json:"annual_fixed_costs"`
	DebtToEquityRatio   float64                      `json:"debt_to_equity_ratio"`
	CapacityByPlantType map[models.PlantType]float64 `json:"capacity_by_plant_type"`
}

// GameService covers the participant and session records around the flow engine
type GameService struct {
	repos    gameDAO.Repositories
	catalog  *config.Catalog
	registry *SessionRegistry
}

// NewGameService creates a new game service
func NewGameService(repos gameDAO.Repositories, catalog *config.Catalog, registry *SessionRegistry) *GameService {
	return &GameService{
		repos:    repos,
		catalog:  catalog,
		registry: registry,
	}
}

// Registry returns the session registry flow calls go through
func (s *GameService) Registry() *SessionRegistry {
	return s.registry
}

// Catalog returns the market reference data
func (s *GameService) Catalog() *config.Catalog {
	return s.catalog
}

// CreateUtility registers a utility or operator with a unique username
func (s *GameService) CreateUtility(req CreateUtilityRequest) (*models.Utility, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", models.ErrInvalidInput)
	}
	if existing, err := s.repos.Utilities.GetUtilityByUsername(username); err == nil {
		return nil, fmt.Errorf("utility %s: %w", existing.Username, models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	userType := req.UserType
	if userType == "" {
		userType = models.UserTypeUtility
	}
	budget := s.catalog.Defaults.UtilityBudget
	if userType == models.UserTypeOperator {
		budget = s.catalog.Defaults.OperatorBudget
	}
	if req.Budget != nil {
		budget = *req.Budget
	}

	utility := &models.Utility{
		Username: username,
		UserType: userType,
		Budget:   budget,
		Equity:   budget,
	}
	if err := s.repos.Utilities.CreateUtility(utility); err != nil {
		return nil, err
	}
	log.Printf("Created %s %s with budget $%.0f", userType, utility.Username, budget)
	return utility, nil
}

// GetUtility returns a utility by ID
func (s *GameService) GetUtility(utilityID string) (*models.Utility, error) {
	return s.repos.Utilities.GetUtility(utilityID)
}

// ListUtilities returns every registered participant
func (s *GameService) ListUtilities() ([]models.Utility, error) {
	return s.repos.Utilities.ListUtilities()
}

// CreateSession opens a new game in the setup state
func (s *GameService) CreateSession(req CreateSessionRequest) (*models.GameSession, error) {
	defaults := s.catalog.Defaults
	startYear := req.StartYear
	if startYear == 0 {
		startYear = defaults.StartYear
	}
	endYear := req.EndYear
	if endYear == 0 {
		endYear = defaults.EndYear
	}
	if endYear < startYear {
		return nil, fmt.Errorf("%w: end year %d is before start year %d", models.ErrInvalidYear, endYear, startYear)
	}
	carbon := defaults.CarbonPricePerTon
	if req.CarbonPricePerTon != nil {
		carbon = *req.CarbonPricePerTon
	}
	if carbon < 0 {
		return nil, fmt.Errorf("%w: carbon price must be >= 0", models.ErrInvalidInput)
	}

	session := &models.GameSession{
		ID:                req.ID,
		Name:              req.Name,
		OperatorID:        req.OperatorID,
		StartYear:         startYear,
		EndYear:           endYear,
		CurrentYear:       startYear,
		State:             models.GameStateSetup,
		CarbonPricePerTon: carbon,
		DemandProfile:     datatypes.NewJSONType(s.catalog.DemandProfile()),
		FuelPrices:        datatypes.NewJSONType(s.catalog.FuelPriceTable()),
	}
	if err := s.repos.Sessions.CreateSession(session); err != nil {
		return nil, err
	}
	log.Printf("Created game session %s (%s) for %d-%d", session.ID, session.Name, startYear, endYear)
	return session, nil
}

// GetSession returns a session by ID
func (s *GameService) GetSession(sessionID string) (*models.GameSession, error) {
	return s.repos.Sessions.GetSession(sessionID)
}

// ListSessions returns every session, newest first
func (s *GameService) ListSessions() ([]models.GameSession, error) {
	return s.repos.Sessions.ListSessions()
}

// ListPlants returns the session's plants, optionally for one utility
func (s *GameService) ListPlants(sessionID, utilityID string) ([]models.Plant, error) {
	if _, err := s.repos.Sessions.GetSession(sessionID); err != nil {
		return nil, err
	}
	plants, err := s.repos.Plants.ListPlants(sessionID)
	if err != nil {
		return nil, err
	}
	if utilityID == "" {
		return plants, nil
	}
	owned := make([]models.Plant, 0, len(plants))
	for _, p := range plants {
		if p.UtilityID == utilityID {
			owned = append(owned, p)
		}
	}
	return owned, nil
}

// GetPlant returns one plant in the session
func (s *GameService) GetPlant(sessionID, plantID string) (*models.Plant, error) {
	return s.repos.Plants.GetPlant(sessionID, plantID)
}

// ListBids returns the session's bids for year
func (s *GameService) ListBids(sessionID string, year int) ([]models.YearlyBid, error) {
	if _, err := s.repos.Sessions.GetSession(sessionID); err != nil {
		return nil, err
	}
	return s.repos.Bids.ListBids(sessionID, year)
}

// ListResults returns stored market results for year, or every year when year is 0
func (s *GameService) ListResults(sessionID string, year int) ([]models.MarketResult, error) {
	if _, err := s.repos.Sessions.GetSession(sessionID); err != nil {
		return nil, err
	}
	return s.repos.Results.ListResults(sessionID, year)
}

// PlantTemplates returns the available plant technologies
func (s *GameService) PlantTemplates() []models.PlantTemplate {
	return append([]models.PlantTemplate(nil), s.catalog.PlantTemplates...)
}

// PlantTemplate returns the template for one plant type
func (s *GameService) PlantTemplate(plantType models.PlantType) (models.PlantTemplate, error) {
	t, ok := s.catalog.Template(plantType)
	if !ok {
		return models.PlantTemplate{}, models.NotFoundError("plant template", string(plantType))
	}
	return t, nil
}

// ProjectInvestment estimates an investment's financials without booking anything
func (s *GameService) ProjectInvestment(req ProjectionRequest) (*finance.InvestmentProjection, error) {
	template, ok := s.catalog.Template(req.PlantType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown plant type %q", models.ErrInvalidPlant, req.PlantType)
	}
	if req.CapacityMW <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive", models.ErrInvalidPlant)
	}
	utility, err := s.repos.Utilities.GetUtility(req.UtilityID)
	if err != nil {
		return nil, err
	}
	projection := finance.ProjectInvestment(template, req.CapacityMW, req.ConstructionStartYear, *utility)
	return &projection, nil
}

// FinancialSummary reports a utility's position and its portfolio in the session
func (s *GameService) FinancialSummary(sessionID, utilityID string) (*FinancialSummary, error) {
	session, err := s.repos.Sessions.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	utility, err := s.repos.Utilities.GetUtility(utilityID)
	if err != nil {
		return nil, err
	}
	plants, err := s.ListPlants(sessionID, utilityID)
	if err != nil {
		return nil, err
	}

	summary := &FinancialSummary{
		UtilityID:           utility.ID,
		Username:            utility.Username,
		Budget:              utility.Budget,
		Debt:                utility.Debt,
		Equity:              utility.Equity,
		PlantCount:          len(plants),
		PlantsByStatus:      make(map[models.PlantStatus]int),
		CapacityByPlantType: make(map[models.PlantType]float64),
		DebtToEquityRatio:   finance.SafeDiv(utility.Debt, utility.Equity),
	}
	for i := range plants {
		p := &plants[i]
		summary.PlantsByStatus[p.Status]++
		summary.TotalCapacityMW += p.CapacityMW
		summary.CapacityByPlantType[p.PlantType] += p.CapacityMW
		summary.CapitalInvested += p.CapitalCostTotal
		if finance.InService(p, session.CurrentYear) {
			summary.AnnualFixedCosts += p.FixedOMAnnual
		}
		if p.Status == models.PlantStatusOperating {
			summary.OperatingCapacity += p.CapacityMW
		}
	}
	return summary, nil
}
