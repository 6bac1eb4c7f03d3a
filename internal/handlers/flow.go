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

// FlowHandler exposes the yearly game cycle of a session
type FlowHandler struct {
	registry *services.SessionRegistry
}

func NewFlowHandler(registry *services.SessionRegistry) *FlowHandler {
	return &FlowHandler{registry: registry}
}

func yearParam(c *gin.Context) (int, error) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a year", models.ErrInvalidYear, c.Param("year"))
	}
	return year, nil
}

// run executes fn under the session lock and writes its result
func (h *FlowHandler) run(c *gin.Context, fn func(engine *gameflow.GameFlowEngine) (interface{}, error)) {
	var result interface{}
	err := h.registry.WithSession(c.Param("id"), func(engine *gameflow.GameFlowEngine) error {
		var err error
		result, err = fn(engine)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *FlowHandler) runYear(c *gin.Context, fn func(engine *gameflow.GameFlowEngine, year int) (interface{}, error)) {
	year, err := yearParam(c)
	if err != nil {
		respondError(c, err)
		return
	}
	h.run(c, func(engine *gameflow.GameFlowEngine) (interface{}, error) {
		return fn(engine, year)
	})
}

// POST /api/v1/game-sessions/:id/start-year-planning/:year
func (h *FlowHandler) StartYearPlanning(c *gin.Context) {
	h.runYear(c, func(engine *gameflow.GameFlowEngine, year int) (interface{}, error) {
		return engine.StartYearPlanning(year)
	})
}

// POST /api/v1/game-sessions/:id/open-annual-bidding/:year
func (h *FlowHandler) OpenAnnualBidding(c *gin.Context) {
	h.runYear(c, func(engine *gameflow.GameFlowEngine, year int) (interface{}, error) {
		return engine.OpenAnnualBidding(year)
	})
}

// POST /api/v1/game-sessions/:id/clear-annual-markets/:year
func (h *FlowHandler) ClearAnnualMarkets(c *gin.Context) {
	h.runYear(c, func(engine *gameflow.GameFlowEngine, year int) (interface{}, error) {
		return engine.ClearAnnualMarkets(year)
	})
}

// POST /api/v1/game-sessions/:id/complete-year/:year
func (h *FlowHandler) CompleteYear(c *gin.Context) {
	h.runYear(c, func(engine *gameflow.GameFlowEngine, year int) (interface{}, error) {
		return engine.CompleteYear(year)
	})
}

// GET /api/v1/game-sessions/:id/flow-status
func (h *FlowHandler) GetStatus(c *gin.Context) {
	h.run(c, func(engine *gameflow.GameFlowEngine) (interface{}, error) {
		return engine.Status()
	})
}

// GET /api/v1/game-sessions/:id/yearly-summary/:year
func (h *FlowHandler) YearlySummary(c *gin.Context) {
	h.runYear(c, func(engine *gameflow.GameFlowEngine, year int) (interface{}, error) {
		return engine.YearlySummary(year)
	})
}

// GET /api/v1/game-sessions/:id/multi-year-analysis
func (h *FlowHandler) MultiYearAnalysis(c *gin.Context) {
	h.run(c, func(engine *gameflow.GameFlowEngine) (interface{}, error) {
		return engine.MultiYearAnalysis()
	})
}

// GET /api/v1/game-sessions/:id/market-events
func (h *FlowHandler) MarketEvents(c *gin.Context) {
	h.run(c, func(engine *gameflow.GameFlowEngine) (interface{}, error) {
		return engine.MarketEvents(), nil
	})
}

// GET /api/v1/game-sessions/:id/final-rankings
func (h *FlowHandler) FinalRankings(c *gin.Context) {
	h.run(c, func(engine *gameflow.GameFlowEngine) (interface{}, error) {
		return engine.FinalRankings()
	})
}

// DELETE /api/v1/game-sessions/:id/engine
func (h *FlowHandler) DisposeEngine(c *gin.Context) {
	if !h.registry.Dispose(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active engine for session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Engine disposed", "session_id": c.Param("id")})
}

// GET /api/v1/engines
func (h *FlowHandler) ActiveEngines(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.registry.Active()})
}
