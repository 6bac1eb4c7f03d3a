package game

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"capacitymarket/internal/models"
)

// createError wraps a failed insert. Duplicate keys surface as ErrAlreadyExists
// when the connection runs with TranslateError.
func createError(kind string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to create %s: %w", kind, models.ErrAlreadyExists)
	}
	return fmt.Errorf("failed to create %s: %w", kind, err)
}
