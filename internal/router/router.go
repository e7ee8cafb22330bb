package router

import (
	"os"
	"time"

	"github.com/raakesh-m/autosendr-backend/internal/database/repository"
	"github.com/raakesh-m/autosendr-backend/internal/handlers"
	"github.com/raakesh-m/autosendr-backend/internal/middleware"
	"github.com/raakesh-m/autosendr-backend/internal/services"
	"github.com/raakesh-m/autosendr-backend/internal/services/auth"
	"github.com/raakesh-m/autosendr-backend/internal/services/excel"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies carries the shared infrastructure the router wires handlers to
type Dependencies struct {
	DB         *gorm.DB
	AuthSvc    *auth.AuthService
	AIKeySvc   *services.AIKeyService
	Tracker    *services.ProgressTracker
	Hub        *services.ProgressHub
	RabbitMQ   *services.RabbitMQService // nil when the broker is not configured
}

// SetupRouter configures the Gin router with all API routes
func SetupRouter(deps *Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	db := deps.DB

	// Repositories
	templateRepo := repository.NewTemplateRepository(db)
	contactRepo := repository.NewContactRepository(db)
	smtpRepo := repository.NewSMTPConfigRepository(db)
	sendLogRepo := repository.NewSendLogRepository(db)
	fileRepo := repository.NewFileRepository(db)

	// Services
	aiService := services.NewAIService(deps.AIKeySvc)
	enhancementService := services.NewEnhancementService(aiService)
	mailerService := services.NewMailerService(smtpRepo)
	templateService := services.NewTemplateService(templateRepo)
	contactService := services.NewContactService(contactRepo)
	smtpService := services.NewSMTPConfigService(smtpRepo)
	sendLogService := services.NewSendLogService(sendLogRepo)
	excelService := excel.NewExcelService()

	baseURL := os.Getenv("APP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	fileService := services.NewFileService(fileRepo, baseURL)

	campaignService := services.NewCampaignService(
		templateRepo,
		sendLogRepo,
		fileRepo,
		enhancementService,
		mailerService,
		deps.Tracker,
		deps.Hub,
		deps.RabbitMQ,
	)

	// Middleware
	bearerTokenMiddleware := middleware.NewBearerTokenMiddleware(deps.AuthSvc)

	// Handlers
	authHandler := handlers.NewAuthHandler(deps.AuthSvc)
	aiKeyHandler := handlers.NewAIKeyHandler(deps.AIKeySvc)
	templateHandler := handlers.NewTemplateHandler(templateService)
	contactHandler := handlers.NewContactHandler(contactService, excelService)
	campaignHandler := handlers.NewCampaignHandler(campaignService, deps.Tracker, deps.Hub)
	emailHandler := handlers.NewEmailHandler(campaignService, aiService)
	smtpHandler := handlers.NewSMTPConfigHandler(smtpService, mailerService)
	fileHandler := handlers.NewFileHandler(fileService)
	sendLogHandler := handlers.NewSendLogHandler(sendLogService)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})

		// Auth routes (public)
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh", authHandler.RefreshToken)
		}

		// Provider catalog is static and public
		api.GET("/ai-keys/providers", aiKeyHandler.GetProviders)

		// Downloads accept either a bearer token or a signed ?token= query
		// parameter, so auth here is optional rather than enforced
		api.GET("/files/:id/download", bearerTokenMiddleware.OptionalBearerTokenMiddleware(), fileHandler.DownloadFile)

		protected := api.Group("")
		protected.Use(bearerTokenMiddleware.BearerTokenAuthMiddleware())
		{
			authProtected := protected.Group("/auth")
			{
				authProtected.POST("/logout", authHandler.Logout)
				authProtected.GET("/me", authHandler.Me)
				authProtected.POST("/change-password", authHandler.ChangePassword)
			}

			aiKeys := protected.Group("/ai-keys")
			{
				aiKeys.POST("", aiKeyHandler.CreateKey)
				aiKeys.GET("", aiKeyHandler.GetKeys)
				aiKeys.GET("/preferences", aiKeyHandler.GetPreferences)
				aiKeys.PUT("/preferences", aiKeyHandler.UpdatePreferences)
				aiKeys.PUT("/:id", aiKeyHandler.UpdateKey)
				aiKeys.DELETE("/:id", aiKeyHandler.DeleteKey)
			}

			templates := protected.Group("/templates")
			{
				templates.POST("", templateHandler.CreateTemplate)
				templates.GET("", templateHandler.GetTemplates)
				templates.GET("/:id", templateHandler.GetTemplate)
				templates.PUT("/:id", templateHandler.UpdateTemplate)
				templates.DELETE("/:id", templateHandler.DeleteTemplate)
			}

			contacts := protected.Group("/contacts")
			{
				contacts.POST("", contactHandler.CreateContact)
				contacts.GET("", contactHandler.GetContacts)
				contacts.POST("/import", contactHandler.ImportContacts)
				contacts.PUT("/:id", contactHandler.UpdateContact)
				contacts.DELETE("/:id", contactHandler.DeleteContact)
			}

			campaigns := protected.Group("/campaigns")
			{
				campaigns.POST("/run", campaignHandler.RunCampaign)
				campaigns.GET("/:session_id/progress", campaignHandler.GetProgress)
				campaigns.GET("/:session_id/stream", campaignHandler.StreamProgressSSE)
			}

			emails := protected.Group("/emails")
			{
				emails.POST("/send", emailHandler.SendEmail)
			}

			ai := protected.Group("/ai")
			{
				ai.POST("/generate", emailHandler.GenerateContent)
			}

			smtp := protected.Group("/smtp")
			{
				smtp.GET("", smtpHandler.GetConfig)
				smtp.PUT("", smtpHandler.UpsertConfig)
				smtp.DELETE("", smtpHandler.DeleteConfig)
				smtp.POST("/test", smtpHandler.TestConnection)
			}

			files := protected.Group("/files")
			{
				files.POST("", fileHandler.UploadFile)
				files.GET("", fileHandler.GetFiles)
				files.GET("/usage", fileHandler.GetStorageUsage)
				files.GET("/:id/signed-url", fileHandler.GetSignedURL)
				files.DELETE("/:id", fileHandler.DeleteFile)
			}

			sendLogs := protected.Group("/send-logs")
			{
				sendLogs.GET("", sendLogHandler.GetLogs)
			}
		}
	}

	return r
}
