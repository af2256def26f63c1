package router

import (
	"time"

	"carehub/config"
	"carehub/internal/domain"
	"carehub/internal/handler"
	"carehub/internal/middleware"
	"carehub/internal/repository"
	"carehub/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers into the route table.
// rdb and pusher may be nil: rate limiting then stays in memory and
// notifications are stored without a device push.
func Setup(cfg *config.Config, db *gorm.DB, rdb *redis.Client, pusher service.Pusher, log *zap.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if cfg.RateLimit.Requests > 0 {
		var limiter middleware.RateLimiter
		if rdb != nil {
			limiter = middleware.NewRedisRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		} else {
			limiter = middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		}
		r.Use(middleware.RateLimit(limiter, log))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	facilityRepo := repository.NewFacilityRepository(db)
	residentRepo := repository.NewResidentRepository(db)
	linkRepo := repository.NewFamilyLinkRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	recordRepo := repository.NewMedicalRecordRepository(db)
	postRepo := repository.NewPostRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, linkRepo, pusher, log)
	visibility := service.NewVisibilityService(linkRepo)
	connectionSvc := service.NewConnectionService(linkRepo, residentRepo, notifSvc, log)
	residentSvc := service.NewResidentService(residentRepo, visibility)
	recordSvc := service.NewRecordService(recordRepo, postRepo, linkRepo, residentSvc, notifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, auditRepo, log)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc, auditRepo, log)
	meHandler := handler.NewMeHandler(authSvc, log)
	notificationHandler := handler.NewNotificationHandler(notifSvc, log)
	facilityHandler := handler.NewFacilityHandler(facilityRepo, log)
	residentHandler := handler.NewResidentHandler(residentSvc, log)
	familyHandler := handler.NewFamilyRequestHandler(connectionSvc, auditRepo, log)
	recordHandler := handler.NewRecordHandler(recordSvc, log)
	adminHandler := handler.NewAdminHandler(adminRepo, userRepo, log)
	healthHandler := handler.NewHealthHandler(db, rdb)

	authMw := middleware.AuthRequired(&cfg.JWT)
	staffMw := middleware.StaffRequired()

	r.GET("/health", healthHandler.Check)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("", meHandler.GetProfile)
			me.POST("/fcm-token", meHandler.RegisterFCMToken)
			me.GET("/notifications", notificationHandler.List)
			me.GET("/notifications/unread-count", notificationHandler.UnreadCount)
			me.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.DELETE("/notifications/:id", notificationHandler.Delete)
		}

		api.GET("/facilities", authMw, facilityHandler.List)
		api.GET("/facilities/:id", authMw, facilityHandler.Get)

		residents := api.Group("/residents")
		residents.Use(authMw)
		{
			residents.POST("", staffMw, residentHandler.Create)
			residents.GET("", residentHandler.List)
			residents.GET("/:id", residentHandler.Get)
			residents.POST("/:id/family-requests", middleware.RequireRole(domain.RoleFamily), familyHandler.Create)
			residents.DELETE("/:id/family/:userId", familyHandler.Unlink)
			residents.POST("/:id/medical-records", staffMw, recordHandler.CreateMedicalRecord)
			residents.GET("/:id/medical-records", recordHandler.ListMedicalRecords)
		}

		requests := api.Group("/family-requests")
		requests.Use(authMw)
		{
			requests.GET("", familyHandler.List)
			requests.PATCH("/:id", staffMw, familyHandler.Resolve)
		}

		posts := api.Group("/posts")
		posts.Use(authMw)
		{
			posts.POST("", staffMw, recordHandler.CreatePost)
			posts.GET("", recordHandler.ListPosts)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/staff", adminHandler.ListStaff)
			admin.POST("/staff", authHandler.CreateStaff)
		}
	}
	return r
}
