package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserType string

const (
	UserTypeOperator UserType = "operator"
	UserTypeUtility  UserType = "utility"
)

// Utility is a market participant (or the operator) with its financial position.
// Budget is not hard-limited at zero; investments check it before drawing equity.
type Utility struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"uniqueIndex;not null"`
	UserType  UserType  `json:"user_type" gorm:"not null;default:utility"`
	Budget    float64   `json:"budget" gorm:"not null;default:0"`
	Debt      float64   `json:"debt" gorm:"not null;default:0"`
	Equity    float64   `json:"equity" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Utility) TableName() string {
	return "utilities"
}

func (u *Utility) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
