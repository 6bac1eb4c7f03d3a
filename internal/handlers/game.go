package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"capacitymarket/internal/engines/gameflow"
	"capacitymarket/internal/models"
	"capacitymarket/internal/services"
)

type GameHandler struct {
	svc *services.GameService
}

func NewGameHandler(svc *services.GameService) *GameHandler {
	return &GameHandler{svc: svc}
}

// SubmitBidRequest carries one plant's offers for all three load periods
type SubmitBidRequest struct {
	UtilityID        string  `json:"utility_id" binding:"required"`
	PlantID          string  `json:"plant_id" binding:"required"`
	Year             int     `json:"year" binding:"required"`
	OffPeakQuantity  float64 `json:"off_peak_quantity"`
	OffPeakPrice     float64 `json:"off_peak_price"`
	ShoulderQuantity float64 `json:"shoulder_quantity"`
	ShoulderPrice    float64 `json:"shoulder_price"`
	PeakQuantity     float64 `json:"peak_quantity"`
	PeakPrice        float64 `json:"peak_price"`
}

func yearQuery(c *gin.Context, required bool) (int, error) {
	raw := c.Query("year")
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%w: year query parameter is required", models.ErrInvalidYear)
		}
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a year", models.ErrInvalidYear, raw)
	}
	return year, nil
}

// POST /api/v1/users
func (h *GameHandler) CreateUtility(c *gin.Context) {
	var req services.CreateUtilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	utility, err := h.svc.CreateUtility(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utility)
}

// GET /api/v1/users
func (h *GameHandler) ListUtilities(c *gin.Context) {
	utilities, err := h.svc.ListUtilities()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utilities)
}

// GET /api/v1/users/:id
func (h *GameHandler) GetUtility(c *gin.Context) {
	utility, err := h.svc.GetUtility(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utility)
}

// GET /api/v1/plant-templates
func (h *GameHandler) ListPlantTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.PlantTemplates())
}

// GET /api/v1/plant-templates/:type
func (h *GameHandler) GetPlantTemplate(c *gin.Context) {
	template, err := h.svc.PlantTemplate(models.PlantType(c.Param("type")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// POST /api/v1/game-sessions
func (h *GameHandler) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	session, err := h.svc.CreateSession(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GET /api/v1/game-sessions
func (h *GameHandler) ListSessions(c *gin.Context) {
	sessions, err := h.svc.ListSessions()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessions)
}

// GET /api/v1/game-sessions/:id
func (h *GameHandler) GetSession(c *gin.Context) {
	session, err := h.svc.GetSession(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GET /api/v1/game-sessions/:id/plants
func (h *GameHandler) ListPlants(c *gin.Context) {
	plants, err := h.svc.ListPlants(c.Param("id"), c.Query("utility_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plants)
}

// GET /api/v1/game-sessions/:id/plants/:plant_id
func (h *GameHandler) GetPlant(c *gin.Context) {
	plant, err := h.svc.GetPlant(c.Param("id"), c.Param("plant_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plant)
}

// POST /api/v1/game-sessions/:id/plants
func (h *GameHandler) InvestInPlant(c *gin.Context) {
	var req gameflow.PlantInvestment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var result *gameflow.InvestmentResult
	err := h.svc.Registry().WithSession(c.Param("id"), func(engine *gameflow.GameFlowEngine) error {
		var err error
		result, err = engine.InvestInPlant(req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// POST /api/v1/game-sessions/:id/investment-projection
func (h *GameHandler) ProjectInvestment(c *gin.Context) {
	var req services.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := h.svc.GetSession(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	projection, err := h.svc.ProjectInvestment(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projection)
}

// POST /api/v1/game-sessions/:id/bids
func (h *GameHandler) SubmitBid(c *gin.Context) {
	var req SubmitBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bid := models.YearlyBid{
		UtilityID:        req.UtilityID,
		PlantID:          req.PlantID,
		Year:             req.Year,
		OffPeakQuantity:  req.OffPeakQuantity,
		OffPeakPrice:     req.OffPeakPrice,
		ShoulderQuantity: req.ShoulderQuantity,
		ShoulderPrice:    req.ShoulderPrice,
		PeakQuantity:     req.PeakQuantity,
		PeakPrice:        req.PeakPrice,
	}

	var stored *models.YearlyBid
	err := h.svc.Registry().WithSession(c.Param("id"), func(engine *gameflow.GameFlowEngine) error {
		var err error
		stored, err = engine.SubmitBid(bid)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stored)
}

// GET /api/v1/game-sessions/:id/bids?year=
func (h *GameHandler) ListBids(c *gin.Context) {
	year, err := yearQuery(c, true)
	if err != nil {
		respondError(c, err)
		return
	}
	bids, err := h.svc.ListBids(c.Param("id"), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bids)
}

// GET /api/v1/game-sessions/:id/market-results?year=
func (h *GameHandler) ListMarketResults(c *gin.Context) {
	year, err := yearQuery(c, false)
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := h.svc.ListResults(c.Param("id"), year)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// GET /api/v1/game-sessions/:id/utilities/:utility_id/financial-summary
func (h *GameHandler) FinancialSummary(c *gin.Context) {
	summary, err := h.svc.FinancialSummary(c.Param("id"), c.Param("utility_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// POST /api/v1/sample-data
func (h *GameHandler) SeedSampleData(c *gin.Context) {
	data, err := h.svc.SeedSampleData()
	if err != nil {
		respondError(c, err)
		return
	}
	if data == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Sample data already present", "game_session_id": services.SampleSessionID})
		return
	}
	c.JSON(http.StatusCreated, data)
}
