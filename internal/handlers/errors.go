package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"capacitymarket/internal/models"
)

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidState), errors.Is(err, models.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrInvalidBid), errors.Is(err, models.ErrInvalidPlant),
		errors.Is(err, models.ErrInvalidYear), errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var stateErr *models.InvalidStateError
	if errors.As(err, &stateErr) {
		body["current_state"] = stateErr.Current
		body["expected_states"] = stateErr.Expected
	}
	c.JSON(status, body)
}

// Recovery turns panics into a JSON 500 response
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": message,
			},
		})
	})
}
