package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"tripchat-service/internal/auth"
	"tripchat-service/internal/config"
	"tripchat-service/internal/db"
	"tripchat-service/internal/handlers"
	"tripchat-service/internal/middleware"
	"tripchat-service/internal/observability"
	"tripchat-service/internal/presence"
	"tripchat-service/internal/rabbitmq"
	"tripchat-service/internal/repositories"
	"tripchat-service/internal/telemetry"
	"tripchat-service/internal/ws"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := observability.SetupTracing(context.Background(), "tripchat-service", cfg.OTLPAddr)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	eventPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange)
	if err != nil {
		log.Printf("event publishing disabled: %v", err)
	} else {
		observability.SetPublisher(eventPublisher)
		defer eventPublisher.Close()
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.Exchange)
	defer auditPublisher.Close()
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit_log.tripchat", "tripchat-service", cfg.Environment)

	var validator auth.Validator
	requireToken := cfg.AuthURL != ""
	if requireToken {
		validator = auth.NewHTTPClient(cfg.AuthURL)
	} else {
		log.Printf("auth service not configured, using dev validator")
		validator = auth.DevValidator{}
	}

	tracker := presence.NewTracker(cfg.RedisAddr)

	groupRepo := repositories.NewGroupRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	checkInRepo := repositories.NewCheckInRepo(database)
	tripRepo := repositories.NewTripRepo(database)
	userRepo := repositories.NewUserRepo(database)

	hub := ws.NewHub()

	messageHandler := handlers.NewMessageHandler(groupRepo, messageRepo, userRepo, hub, audit)
	checkInHandler := handlers.NewCheckInHandler(tripRepo, checkInRepo, groupRepo, hub, audit)
	rosterHandler := handlers.NewRosterHandler(userRepo, tracker)
	wsHandler := ws.NewHandler(hub, groupRepo, validator, tracker, requireToken)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("tripchat-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(validator)

	api := router.Group("/api", authMiddleware)
	api.GET("/groups", messageHandler.ListGroups)
	api.GET("/groups/:group_id/messages", messageHandler.GetGroupMessages)
	api.POST("/groups/:group_id/messages", messageHandler.PostGroupMessage)
	api.GET("/trips/:trip_id", checkInHandler.GetTrip)
	api.GET("/trips/:trip_id/check-in-status", checkInHandler.GetCheckInStatus)
	api.GET("/trips/:trip_id/check-ins/user/:user_id", checkInHandler.GetUserCheckIn)
	api.POST("/trips/:trip_id/check-ins", checkInHandler.PostCheckIn)
	api.GET("/users", rosterHandler.ListUsers)

	router.GET("/ws", wsHandler.Handle)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, audit, cfg.Debug, cfg.DevToken)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
