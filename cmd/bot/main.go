package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"cadetbot/internal/bot"
	"cadetbot/internal/config"
	"cadetbot/internal/database"
	"cadetbot/internal/handler"
	"cadetbot/internal/middleware"
	"cadetbot/internal/obs"
	"cadetbot/internal/repository"
	"cadetbot/internal/service"
	"cadetbot/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration failed: %v", err)
	}

	db, err := database.NewConnection(cfg.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	obs.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	sftRepo := repository.NewSFTRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	medicalRepo := repository.NewMedicalRepository(db)
	maintenanceRepo := repository.NewMaintenanceRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	accountRepo := repository.NewDashboardAccountRepository(db)

	clock := service.NewClock(cfg.Location())
	userService := service.NewUserService(userRepo)
	sftService := service.NewSFTService(sftRepo, auditRepo, txManager, clock)
	gate := service.NewApprovalGate(approvalRepo, auditRepo, txManager, clock, cfg.ApprovalWindow)
	movementService := service.NewMovementService(movementRepo)
	medicalService := service.NewMedicalService(medicalRepo, userRepo, txManager, clock)
	paradeService := service.NewParadeService(userRepo, medicalRepo, clock)
	maintenanceService := service.NewMaintenanceService(gate, maintenanceRepo)
	importService := service.NewImportService(userRepo, maintenanceRepo, auditRepo, txManager, clock)
	dashboardService := service.NewDashboardService(accountRepo)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := dashboardService.EnsureAccount(ctx, cfg.AdminUsername, cfg.AdminPassword, "admin"); err != nil {
			log.Fatalf("Failed to seed dashboard account: %v", err)
		}
	}

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService, dashboardService, importService)
	sftHandler := handler.NewSFTHandler(sftService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService, auditRepo)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Prometheus endpoint
	router.GET("/metrics", gin.WrapH(obs.Handler()))

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	sftHandler.RegisterRoutes(router.Group(""))
	maintenanceHandler.RegisterRoutes(router.Group(""))

	// Telegram bot
	if cfg.TelegramToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
		if err != nil {
			log.Fatalf("Telegram bot initialization failed: %v", err)
		}
		tgBot := bot.New(
			api,
			bot.Config{
				BroadcastChatID: cfg.BroadcastChatID,
				Activities:      cfg.SFTActivities,
				Locations:       cfg.MovementLocations,
			},
			wsHub,
			userService,
			sftService,
			movementService,
			medicalService,
			paradeService,
			maintenanceService,
			importService,
			clock,
		)
		go tgBot.Run(ctx)
	} else {
		log.Println("TELEGRAM_TOKEN not set, running API only")
	}

	log.Printf("Server starting on port %s...", cfg.HTTPPort)
	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
