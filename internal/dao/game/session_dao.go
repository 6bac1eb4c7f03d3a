package game

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"capacitymarket/internal/models"
)

// SessionDAO handles database operations for game sessions
type SessionDAO struct {
	db *gorm.DB
}

// NewSessionDAO creates a new session DAO instance
func NewSessionDAO(db *gorm.DB) SessionDAOInterface {
	return &SessionDAO{
		db: db,
	}
}

// CreateSession creates a new game session record
func (dao *SessionDAO) CreateSession(session *models.GameSession) error {
	if err := dao.db.Create(session).Error; err != nil {
		return createError("game session", err)
	}
	return nil
}

// GetSession retrieves a game session by ID
func (dao *SessionDAO) GetSession(sessionID string) (*models.GameSession, error) {
	var session models.GameSession
	if err := dao.db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NotFoundError("game session", sessionID)
		}
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	return &session, nil
}

// ListSessions returns all game sessions, newest first
func (dao *SessionDAO) ListSessions() ([]models.GameSession, error) {
	var sessions []models.GameSession
	if err := dao.db.Order("created_at DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list game sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSession saves the session's year and state
func (dao *SessionDAO) UpdateSession(session *models.GameSession) error {
	result := dao.db.Model(&models.GameSession{}).
		Where("id = ?", session.ID).
		Updates(map[string]interface{}{
			"current_year":         session.CurrentYear,
			"state":                session.State,
			"carbon_price_per_ton": session.CarbonPricePerTon,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update game session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NotFoundError("game session", session.ID)
	}
	return nil
}
