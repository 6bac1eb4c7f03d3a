package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterGameRoutes registers participant, catalog and session routes
func RegisterGameRoutes(router *gin.RouterGroup, handler *GameHandler) {
	users := router.Group("/users")
	{
		users.POST("", handler.CreateUtility)
		users.GET("", handler.ListUtilities)
		users.GET("/:id", handler.GetUtility)
	}

	templates := router.Group("/plant-templates")
	{
		templates.GET("", handler.ListPlantTemplates)
		templates.GET("/:type", handler.GetPlantTemplate)
	}

	router.POST("/sample-data", handler.SeedSampleData)

	sessions := router.Group("/game-sessions")
	{
		sessions.POST("", handler.CreateSession)
		sessions.GET("", handler.ListSessions)
		sessions.GET("/:id", handler.GetSession)
		sessions.GET("/:id/plants", handler.ListPlants)
		sessions.POST("/:id/plants", handler.InvestInPlant)
		sessions.GET("/:id/plants/:plant_id", handler.GetPlant)
		sessions.POST("/:id/investment-projection", handler.ProjectInvestment)
		sessions.POST("/:id/bids", handler.SubmitBid)
		sessions.GET("/:id/bids", handler.ListBids)
		sessions.GET("/:id/market-results", handler.ListMarketResults)
		sessions.GET("/:id/utilities/:utility_id/financial-summary", handler.FinancialSummary)
	}
}

// RegisterFlowRoutes registers the yearly game cycle routes
func RegisterFlowRoutes(router *gin.RouterGroup, handler *FlowHandler) {
	router.GET("/engines", handler.ActiveEngines)

	sessions := router.Group("/game-sessions/:id")
	{
		sessions.POST("/start-year-planning/:year", handler.StartYearPlanning)
		sessions.POST("/open-annual-bidding/:year", handler.OpenAnnualBidding)
		sessions.POST("/clear-annual-markets/:year", handler.ClearAnnualMarkets)
		sessions.POST("/complete-year/:year", handler.CompleteYear)
		sessions.GET("/flow-status", handler.GetStatus)
		sessions.GET("/yearly-summary/:year", handler.YearlySummary)
		sessions.GET("/multi-year-analysis", handler.MultiYearAnalysis)
		sessions.GET("/market-events", handler.MarketEvents)
		sessions.GET("/final-rankings", handler.FinalRankings)
		sessions.DELETE("/engine", handler.DisposeEngine)
	}
}
