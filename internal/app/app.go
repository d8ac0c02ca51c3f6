package app

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "dealdesk/docs"
	"dealdesk/internal/config"
	"dealdesk/internal/handlers"
	"dealdesk/internal/middleware"
	"dealdesk/internal/notify"
	"dealdesk/internal/pdf"
	"dealdesk/internal/repositories"
	"dealdesk/internal/routes"
	"dealdesk/internal/services"
)

func Run() {
	cfg := config.LoadConfig()

	if cfg.Auth.JWTSecret != "" {
		middleware.JWTKey = []byte(cfg.Auth.JWTSecret)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("db connect: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("db close: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	clientRepo := repositories.NewClientRepository(db)
	dealRepo := repositories.NewDealRepository(db)
	estimationRepo := repositories.NewEstimationRepository(db)
	orderRepo := repositories.NewSalesOrderRepository(db)
	policyRepo := repositories.NewDiscountPolicyRepository(db)
	activityRepo := repositories.NewActivityRepository(db)

	// === Notifications (боковой канал; падения только в лог) ===
	notifiers := notify.Multi{notify.LogNotifier{}}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("telegram notifier disabled: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}
	if cfg.Email.SMTPHost != "" && len(cfg.Email.NotifyTo) > 0 {
		notifiers = append(notifiers, notify.NewEmailNotifier(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
			cfg.Email.NotifyTo,
		))
	}

	pdfGen := pdf.NewDocumentGenerator(cfg.Files.RootDir)

	// === Services ===
	authService := services.NewAuthService()
	userService := services.NewUserService(userRepo, authService)
	clientService := services.NewClientService(clientRepo)
	dealService := services.NewDealService(dealRepo, activityRepo)
	estimationService := services.NewEstimationService(estimationRepo, dealRepo)
	discountService := services.NewDiscountService(estimationRepo, policyRepo, notifiers)
	orderService := services.NewSalesOrderService(orderRepo, dealRepo, estimationRepo, notifiers, pdfGen)
	reportService := services.NewReportService(dealRepo)

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(userService, authService)
	userHandler := handlers.NewUserHandler(userService)
	clientHandler := handlers.NewClientHandler(clientService)
	dealHandler := handlers.NewDealHandler(dealService)
	estimationHandler := handlers.NewEstimationHandler(estimationService, discountService)
	orderHandler := handlers.NewSalesOrderHandler(orderService)
	reportHandler := handlers.NewReportHandler(reportService)

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/healthz", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		clientHandler,
		dealHandler,
		estimationHandler,
		orderHandler,
		reportHandler,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
