package main

import (
	"log"

	"github.com/babaearn/Pnl-sharing-card-bot/internal/config"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/database"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/handlers"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/middleware"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/services"
	"github.com/babaearn/Pnl-sharing-card-bot/internal/telegram"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg := config.Load()
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	db := database.Connect(cfg)
	database.AutoMigrate(db)

	settingService := services.NewSettingService(db)
	if err := settingService.InitDefaults(); err != nil {
		log.Fatalf("failed to seed settings: %v", err)
	}

	participantService := services.NewParticipantService(db)
	submissionService := services.NewSubmissionService(db)
	ledgerService := services.NewLedgerService(db)
	leaderboardService := services.NewLeaderboardService(db)
	weekService := services.NewWeekService(db)
	winnerService := services.NewWinnerService(db, leaderboardService)
	statsService := services.NewStatsService(db)
	fraudService := services.NewFraudService(db, cfg.FraudDetection)

	client := telegram.NewClient(cfg.BotToken)
	coordinator := telegram.NewForwardCoordinator(
		client, participantService, submissionService, leaderboardService, fraudService)
	updateHandler := telegram.NewUpdateHandler(
		cfg, client, coordinator,
		participantService, submissionService, ledgerService, leaderboardService,
		weekService, winnerService, statsService, settingService, fraudService)
	bot := telegram.NewBot(cfg.BotToken, cfg.WebhookBaseURL, cfg.WebhookSecret, client, updateHandler)

	healthHandler := handlers.NewHealthHandler(db)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, winnerService, weekService)
	statsHandler := handlers.NewStatsHandler(statsService)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Bot-API-Key"},
		AllowCredentials: true,
	}))

	r.GET("/healthz", healthHandler.Healthz)
	r.POST("/webhook/bot/:secret", bot.HandleWebhook)

	api := r.Group("/api/v1")
	api.Use(middleware.BotAuth(cfg.BotAPIKey))
	{
		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
		api.GET("/winners/:week", leaderboardHandler.GetWinners)
		api.GET("/stats", statsHandler.GetStats)
	}

	if cfg.WebhookBaseURL != "" {
		if err := bot.Start(); err != nil {
			log.Fatalf("failed to start bot: %v", err)
		}
		defer bot.Stop()
	} else {
		log.Println("WEBHOOK_BASE_URL not set, webhook registration skipped")
	}

	log.Printf("server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
