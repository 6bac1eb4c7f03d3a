package game

import (
	"capacitymarket/internal/models"
)

// SessionDAOInterface defines the contract for game session data access
type SessionDAOInterface interface {
	CreateSession(session *models.GameSession) error
	GetSession(sessionID string) (*models.GameSession, error)
	ListSessions() ([]models.GameSession, error)
	UpdateSession(session *models.GameSession) error
}

// UtilityDAOInterface defines the contract for utility data access
type UtilityDAOInterface interface {
	CreateUtility(utility *models.Utility) error
	GetUtility(utilityID string) (*models.Utility, error)
	GetUtilityByUsername(username string) (*models.Utility, error)
	ListUtilities() ([]models.Utility, error)
	UpdateUtility(utility *models.Utility) error
}

// PlantDAOInterface defines the contract for power plant data access
type PlantDAOInterface interface {
	CreatePlant(plant *models.Plant) error
	// CreatePlantWithFinancing stores the plant and the owner's updated
	// financial position atomically.
	CreatePlantWithFinancing(plant *models.Plant, utility *models.Utility) error
	GetPlant(sessionID, plantID string) (*models.Plant, error)
	ListPlants(sessionID string) ([]models.Plant, error)
	UpdatePlant(plant *models.Plant) error
}

// BidDAOInterface defines the contract for yearly bid data access
type BidDAOInterface interface {
	// UpsertBid stores bid, replacing an existing bid for the same session,
	// plant and year. On return bid carries the stored ID.
	UpsertBid(bid *models.YearlyBid) error
	GetBid(sessionID, plantID string, year int) (*models.YearlyBid, error)
	// ListBids returns the year's bids in submission order
	ListBids(sessionID string, year int) ([]models.YearlyBid, error)
}

// MarketResultDAOInterface defines the contract for market result data access
type MarketResultDAOInterface interface {
	// SaveResults replaces any results already stored for the session and year
	SaveResults(sessionID string, year int, results []*models.MarketResult) error
	// ListResults returns results for year, or for every year when year is 0
	ListResults(sessionID string, year int) ([]models.MarketResult, error)
}

// Repositories bundles the DAOs a game session needs
type Repositories struct {
	Sessions  SessionDAOInterface
	Utilities UtilityDAOInterface
	Plants    PlantDAOInterface
	Bids      BidDAOInterface
	Results   MarketResultDAOInterface
}
