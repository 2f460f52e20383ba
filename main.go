package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/auth"
	"messenger-service/internal/config"
	"messenger-service/internal/db"
	"messenger-service/internal/handlers"
	"messenger-service/internal/logger"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/rabbitmq"
	"messenger-service/internal/repositories"
	"messenger-service/internal/sweeper"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.EnableTracing {
		shutdownTracing, err := observability.SetupTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to set up tracing")
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				log.Error().Err(err).Msg("tracing shutdown error")
			}
		}()
	}

	database, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}
	defer database.Close()

	if cfg.AMQPURL != "" {
		eventsPublisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Warn().Err(err).Msg("event publisher unavailable, ws events disabled")
		} else {
			observability.SetPublisher(eventsPublisher)
			defer eventsPublisher.Close()
		}
	}

	auditPublisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	defer auditPublisher.Close()
	log.Info().Str("mode", rabbitmq.PublisherMode(auditPublisher)).Msg("audit publisher ready")
	audit := telemetry.NewAuditEmitter(auditPublisher, "audit.messenger", cfg.ServiceName, cfg.Environment, log)

	var verifier auth.Verifier
	if cfg.AuthEnabled {
		jwksVerifier, err := auth.NewJWKSVerifier(ctx, cfg.AuthJWKSURL, cfg.AuthIssuer, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize jwks verifier")
		}
		verifier = jwksVerifier
	} else {
		log.Warn().Msg("auth disabled, bearer tokens are trusted as identity ids")
		verifier = auth.InsecureVerifier{}
	}

	userRepo := repositories.NewUserRepo(database)
	convRepo := repositories.NewConversationRepo(database)
	msgRepo := repositories.NewMessageRepo(database)
	presenceRepo := repositories.NewPresenceRepo(database)
	typingRepo := repositories.NewTypingRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)
	readRepo := repositories.NewReadStatusRepo(database)

	hub := ws.NewHub(log)

	userHandler := handlers.NewUserHandler(userRepo)
	convHandler := handlers.NewConversationHandler(convRepo, userRepo, audit)
	msgHandler := handlers.NewMessageHandler(convRepo, msgRepo, hub, audit)
	presenceHandler := handlers.NewPresenceHandler(presenceRepo, cfg.PresenceThreshold)
	typingHandler := handlers.NewTypingHandler(typingRepo, hub, cfg.TypingTTL)
	reactionHandler := handlers.NewReactionHandler(msgRepo, reactionRepo, hub)
	readHandler := handlers.NewReadStatusHandler(readRepo)
	convWS := ws.NewConversationWebSocketHandler(hub, convRepo, verifier)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(otelgin.Middleware(cfg.ServiceName))

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/users/sync", requireAuth, userHandler.SyncUser)
	router.PATCH("/users/me", requireAuth, userHandler.UpdateProfile)
	router.GET("/users", userHandler.ListUsers)
	router.GET("/users/:clerk_id", userHandler.GetByClerkID)

	router.POST("/conversations/direct", requireAuth, convHandler.StartDirect)
	router.POST("/conversations/group", requireAuth, convHandler.CreateGroup)
	router.GET("/conversations", requireAuth, convHandler.List)
	router.GET("/conversations/:conversation_id", requireAuth, convHandler.GetByID)

	router.POST("/conversations/:conversation_id/messages", requireAuth, msgHandler.Send)
	router.GET("/conversations/:conversation_id/messages", requireAuth, msgHandler.List)
	router.DELETE("/messages/:message_id", requireAuth, msgHandler.Delete)

	router.POST("/presence/heartbeat", optionalAuth, presenceHandler.Heartbeat)
	router.POST("/presence/offline", optionalAuth, presenceHandler.GoOffline)
	router.GET("/presence", presenceHandler.OnlineUsers)
	router.GET("/presence/:clerk_id", presenceHandler.IsOnline)

	router.POST("/conversations/:conversation_id/typing", optionalAuth, typingHandler.SetTyping)
	router.DELETE("/conversations/:conversation_id/typing", optionalAuth, typingHandler.ClearTyping)
	router.GET("/conversations/:conversation_id/typing", optionalAuth, typingHandler.WhoIsTyping)
	router.GET("/typing", requireAuth, typingHandler.TypingConversations)

	router.POST("/messages/:message_id/reactions", requireAuth, reactionHandler.Toggle)
	router.POST("/reactions/query", requireAuth, reactionHandler.GetForMessages)

	router.POST("/conversations/:conversation_id/read", requireAuth, readHandler.MarkRead)
	router.GET("/unread-counts", requireAuth, readHandler.UnreadCounts)

	router.GET("/ws/conversations/:conversation_id", convWS.Handle)

	handlers.RegisterDebugRoutes(router, audit, cfg.DebugRoutes)

	sweep := sweeper.New(presenceRepo, cfg.PresenceSweep, cfg.PresenceThreshold, log)
	go sweep.Run(ctx)

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown error")
	}
	log.Info().Msg("server stopped")
}
