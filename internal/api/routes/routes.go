package routes

import (
	"strings"
	"time"

	"classroom-live/internal/adapters/kafka"
	"classroom-live/internal/api/handlers"
	"classroom-live/internal/api/middleware"
	"classroom-live/internal/realtime"
	"classroom-live/internal/repositories/postgres"
	"classroom-live/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Router struct {
	engine              *gin.Engine
	wsHandler           *handlers.WSHandler
	messageHandler      *handlers.MessageHandler
	presenceHandler     *handlers.PresenceHandler
	gradeHandler        *handlers.GradeHandler
	notificationHandler *handlers.NotificationHandler
	rateLimitMW         *middleware.RateLimitMiddleware
	jwtSecret           string
}

func NewRouter(
	registry *realtime.Registry,
	redisService *services.RedisService,
	publisher *kafka.NotificationPublisher,
	db *gorm.DB,
	jwtSecret string,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	messageRepo := postgres.NewMessageRepository(db)
	gradeRepo := postgres.NewGradeRepository(db)

	return &Router{
		engine:              engine,
		wsHandler:           handlers.NewWSHandler(registry),
		messageHandler:      handlers.NewMessageHandler(messageRepo),
		presenceHandler:     handlers.NewPresenceHandler(registry.Presence(), redisService),
		gradeHandler:        handlers.NewGradeHandler(gradeRepo, publisher),
		notificationHandler: handlers.NewNotificationHandler(publisher),
		rateLimitMW:         middleware.NewRateLimitMiddleware(redisService),
		jwtSecret:           jwtSecret,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// WebSocket endpoints. Intent is decided here, per route, once.
	ws := r.engine.Group("/ws")
	ws.Use(middleware.WSAuth(r.jwtSecret))
	ws.Use(r.rateLimitMW.WebSocketRateLimit(5, time.Minute))
	{
		ws.GET("/chat/:courseId", r.wsHandler.HandleChat)
		ws.GET("/presence/:courseId", r.wsHandler.HandlePresence)
		ws.GET("/notifications", r.wsHandler.HandleNotifications)
	}

	// Any other /ws path is rejected with a protocol error rather than
	// silently leaking an unclassified connection.
	r.engine.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/ws/") {
			r.wsHandler.HandleUnknown(c)
			return
		}
		c.JSON(404, gin.H{"error": "not found"})
	})

	api := r.engine.Group("/api/v1")
	api.Use(middleware.RequireAuth(r.jwtSecret))
	{
		courses := api.Group("/courses")
		courses.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			courses.GET("/:courseId/messages", r.messageHandler.GetCourseMessages)
			courses.GET("/:courseId/presence", r.presenceHandler.GetCoursePresence)
		}

		grades := api.Group("/grades")
		grades.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			grades.POST("/", r.gradeHandler.CreateGrade)
		}

		notifications := api.Group("/notifications")
		notifications.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			notifications.POST("/", r.notificationHandler.PushNotification)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
