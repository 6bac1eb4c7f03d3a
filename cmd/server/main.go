package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"gorm.io/gorm"

	"capacitymarket/internal/config"
	gameDAO "capacitymarket/internal/dao/game"
	"capacitymarket/internal/dao/memory"
	"capacitymarket/internal/database"
	"capacitymarket/internal/handlers"
	"capacitymarket/internal/handlers/websocket"
	"capacitymarket/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	catalog, err := config.LoadCatalog(cfg.MarketConfigPath)
	if err != nil {
		log.Fatalf("Failed to load market configuration: %v", err)
	}

	repos, db := openStorage(cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), handlers.Recovery())

	// Game flow engines publish their lifecycle events through the websocket hub
	wsHandler := websocket.NewWebSocketHandler()
	registry := services.NewSessionRegistry(repos, catalog, wsHandler.GetHub(), cfg.RandomSeed)
	gameService := services.NewGameService(repos, catalog, registry)
	wsHandler.SetFlowHandler(websocket.NewFlowEventHandler(registry))

	healthHandler := handlers.NewHealthHandler(db)
	gameHandler := handlers.NewGameHandler(gameService)
	flowHandler := handlers.NewFlowHandler(registry)

	r.GET("/health", healthHandler.Health)
	r.GET("/ws", wsHandler.HandleWebSocket)

	api := r.Group("/api/v1")
	{
		api.GET("/health", healthHandler.Health)
		handlers.RegisterGameRoutes(api, gameHandler)
		handlers.RegisterFlowRoutes(api, flowHandler)
	}

	if cfg.SeedSampleData {
		if _, err := gameService.SeedSampleData(); err != nil {
			log.Fatalf("Failed to seed sample data: %v", err)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	log.Printf("Server starting on port %s (storage: %s)", cfg.Port, cfg.Storage)
	if err := http.ListenAndServe(":"+cfg.Port, c.Handler(r)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openStorage returns the repositories for the configured backend. The db is
// nil when running in memory.
func openStorage(cfg *config.Config) (gameDAO.Repositories, *gorm.DB) {
	if cfg.Storage == config.StorageMemory {
		log.Println("Using in-memory storage, state is lost on restart")
		return memory.NewRepositories(), nil
	}

	if err := database.Connect(cfg.DatabaseURL, cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	db := database.GetDB()
	return gameDAO.NewRepositories(db), db
}
