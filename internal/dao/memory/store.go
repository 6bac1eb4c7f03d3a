package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	gameDAO "capacitymarket/internal/dao/game"
	"capacitymarket/internal/engines/market"
	"capacitymarket/internal/models"
)

// Store keeps every game record in process memory. It implements all of the
// game DAO interfaces and hands out copies, so callers never alias stored rows.
type Store struct {
	mu sync.RWMutex

	sessions  map[string]models.GameSession
	utilities map[string]models.Utility
	plants    map[string]models.Plant
	plantSeq  []string // creation order
	bids      map[string]*market.BidBook
	results   map[string][]models.MarketResult
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]models.GameSession),
		utilities: make(map[string]models.Utility),
		plants:    make(map[string]models.Plant),
		bids:      make(map[string]*market.BidBook),
		results:   make(map[string][]models.MarketResult),
	}
}

// NewRepositories returns DAO bundles backed by a fresh in-memory store
func NewRepositories() gameDAO.Repositories {
	return NewStore().Repositories()
}

// Repositories exposes the store through the DAO interfaces
func (s *Store) Repositories() gameDAO.Repositories {
	return gameDAO.Repositories{
		Sessions:  s,
		Utilities: s,
		Plants:    s,
		Bids:      s,
		Results:   s,
	}
}

func stamp(created *time.Time, updated *time.Time) {
	now := time.Now()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// CreateSession stores a new game session
func (s *Store) CreateSession(session *models.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("failed to create game session %s: %w", session.ID, models.ErrAlreadyExists)
	}
	stamp(&session.CreatedAt, &session.UpdatedAt)
	s.sessions[session.ID] = *session
	return nil
}

// GetSession returns a copy of the session
func (s *Store) GetSession(sessionID string) (*models.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, models.NotFoundError("game session", sessionID)
	}
	return &session, nil
}

// ListSessions returns all sessions, newest first
func (s *Store) ListSessions() ([]models.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.GameSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateSession saves the session's year, state and carbon price
func (s *Store) UpdateSession(session *models.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[session.ID]
	if !ok {
		return models.NotFoundError("game session", session.ID)
	}
	stored.CurrentYear = session.CurrentYear
	stored.State = session.State
	stored.CarbonPricePerTon = session.CarbonPricePerTon
	stored.UpdatedAt = time.Now()
	s.sessions[session.ID] = stored
	return nil
}

// CreateUtility stores a new utility; usernames are unique
func (s *Store) CreateUtility(utility *models.Utility) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.utilities {
		if existing.Username == utility.Username {
			return fmt.Errorf("failed to create utility %q: %w", utility.Username, models.ErrAlreadyExists)
		}
	}
	if utility.ID == "" {
		utility.ID = uuid.NewString()
	}
	stamp(&utility.CreatedAt, &utility.UpdatedAt)
	s.utilities[utility.ID] = *utility
	return nil
}

// GetUtility returns a copy of the utility
func (s *Store) GetUtility(utilityID string) (*models.Utility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	utility, ok := s.utilities[utilityID]
	if !ok {
		return nil, models.NotFoundError("utility", utilityID)
	}
	return &utility, nil
}

// GetUtilityByUsername looks a utility up by username
func (s *Store) GetUtilityByUsername(username string) (*models.Utility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, utility := range s.utilities {
		if utility.Username == username {
			u := utility
			return &u, nil
		}
	}
	return nil, models.NotFoundError("utility", username)
}

// ListUtilities returns every utility ordered by username
func (s *Store) ListUtilities() ([]models.Utility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Utility, 0, len(s.utilities))
	for _, utility := range s.utilities {
		out = append(out, utility)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// UpdateUtility saves the utility's financial position
func (s *Store) UpdateUtility(utility *models.Utility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateUtilityLocked(utility)
}

func (s *Store) updateUtilityLocked(utility *models.Utility) error {
	stored, ok := s.utilities[utility.ID]
	if !ok {
		return models.NotFoundError("utility", utility.ID)
	}
	stored.Budget = utility.Budget
	stored.Debt = utility.Debt
	stored.Equity = utility.Equity
	stored.UpdatedAt = time.Now()
	s.utilities[utility.ID] = stored
	return nil
}

// CreatePlant stores a new plant
func (s *Store) CreatePlant(plant *models.Plant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createPlantLocked(plant)
}

func (s *Store) createPlantLocked(plant *models.Plant) error {
	if plant.ID == "" {
		plant.ID = uuid.NewString()
	}
	if _, exists := s.plants[plant.ID]; exists {
		return fmt.Errorf("failed to create plant %s: %w", plant.ID, models.ErrAlreadyExists)
	}
	stamp(&plant.CreatedAt, &plant.UpdatedAt)
	s.plants[plant.ID] = plant.Clone()
	s.plantSeq = append(s.plantSeq, plant.ID)
	return nil
}

// CreatePlantWithFinancing stores the plant and the owner's finances together
func (s *Store) CreatePlantWithFinancing(plant *models.Plant, utility *models.Utility) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.utilities[utility.ID]; !ok {
		return models.NotFoundError("utility", utility.ID)
	}
	if err := s.createPlantLocked(plant); err != nil {
		return err
	}
	return s.updateUtilityLocked(utility)
}

// GetPlant returns a copy of a plant in the session
func (s *Store) GetPlant(sessionID, plantID string) (*models.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plant, ok := s.plants[plantID]
	if !ok || plant.GameSessionID != sessionID {
		return nil, models.NotFoundError("plant", plantID)
	}
	out := plant.Clone()
	return &out, nil
}

// ListPlants returns the session's plants in creation order
func (s *Store) ListPlants(sessionID string) ([]models.Plant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Plant, 0)
	for _, id := range s.plantSeq {
		if plant := s.plants[id]; plant.GameSessionID == sessionID {
			out = append(out, plant.Clone())
		}
	}
	return out, nil
}

// UpdatePlant saves the plant's lifecycle status
func (s *Store) UpdatePlant(plant *models.Plant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.plants[plant.ID]
	if !ok {
		return models.NotFoundError("plant", plant.ID)
	}
	stored.Status = plant.Status
	stored.UpdatedAt = time.Now()
	s.plants[plant.ID] = stored
	return nil
}

// UpsertBid stores the bid in the session's bid book
func (s *Store) UpsertBid(bid *models.YearlyBid) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, ok := s.bids[bid.GameSessionID]
	if !ok {
		book = market.NewBidBook()
		s.bids[bid.GameSessionID] = book
	}

	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	bid.SubmittedAt = time.Now()
	stamp(&bid.CreatedAt, &bid.UpdatedAt)

	stored, _ := book.Upsert(*bid)
	*bid = stored
	return nil
}

// GetBid returns the bid for a plant and year
func (s *Store) GetBid(sessionID, plantID string, year int) (*models.YearlyBid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if book, ok := s.bids[sessionID]; ok {
		if bid, ok := book.Get(plantID, year); ok {
			return &bid, nil
		}
	}
	return nil, models.NotFoundError("bid", fmt.Sprintf("%s/%d", plantID, year))
}

// ListBids returns the year's bids in submission order
func (s *Store) ListBids(sessionID string, year int) ([]models.YearlyBid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.bids[sessionID]
	if !ok {
		return []models.YearlyBid{}, nil
	}
	return book.ForYear(year), nil
}

// SaveResults replaces the session's results for year
func (s *Store) SaveResults(sessionID string, year int, results []*models.MarketResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]models.MarketResult, 0, len(s.results[sessionID])+len(results))
	for _, r := range s.results[sessionID] {
		if r.Year != year {
			kept = append(kept, r)
		}
	}
	now := time.Now()
	for _, r := range results {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		stored := *r
		stored.AcceptedBidIDs = append([]string(nil), r.AcceptedBidIDs...)
		kept = append(kept, stored)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Year != kept[j].Year {
			return kept[i].Year < kept[j].Year
		}
		return kept[i].Period.Rank() < kept[j].Period.Rank()
	})
	s.results[sessionID] = kept
	return nil
}

// ListResults returns results for year, or for every year when year is 0
func (s *Store) ListResults(sessionID string, year int) ([]models.MarketResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MarketResult, 0)
	for _, r := range s.results[sessionID] {
		if year == 0 || r.Year == year {
			out = append(out, r)
		}
	}
	return out, nil
}
