package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/booktime/backend/internal/application/catalog"
	identityapp "github.com/booktime/backend/internal/application/identity"
	orderapp "github.com/booktime/backend/internal/application/order"
	supportapp "github.com/booktime/backend/internal/application/support"
	"github.com/booktime/backend/internal/infrastructure/auth"
	"github.com/booktime/backend/internal/infrastructure/config"
	"github.com/booktime/backend/internal/infrastructure/logger"
	"github.com/booktime/backend/internal/infrastructure/persistence"
	"github.com/booktime/backend/internal/interfaces/http/handler"
	"github.com/booktime/backend/internal/interfaces/http/middleware"
	"github.com/booktime/backend/internal/interfaces/http/router"
	"github.com/booktime/backend/internal/interfaces/ws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting booktime backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Token blacklist: Redis when configured, in-memory otherwise. The
	// in-memory fallback loses revocations on restart; fine for dev only.
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisBlacklist.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		blacklist = redisBlacklist
		log.Info("Redis token blacklist enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis not configured, using in-memory token blacklist")
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	productService := catalogapp.NewProductService(productRepo, log)
	orderService := orderapp.NewOrderService(orderRepo, log)
	chatService := supportapp.NewChatService(orderRepo, cfg.Chat.SendBuffer, log)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService, userRepo)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(orderService)
	supportHandler := handler.NewSupportHandler(chatService)
	systemHandler := handler.NewSystemHandler(db, version)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Probes live outside the versioned API and skip authentication
	systemHandler.RegisterRoutes(engine)

	// Versioned API
	r := router.NewRouter(engine)
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log
	// Storefront browsing is public
	jwtConfig.SkipPathPrefixes = append(jwtConfig.SkipPathPrefixes, "/api/v1/products")
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	r.Register(authHandler.Routes()).
		Register(productHandler.Routes()).
		Register(orderHandler.Routes()).
		Register(supportHandler.Routes())
	r.Setup()

	// Websocket endpoints accept the token from the query string, since
	// browsers cannot set headers on upgrade requests
	wsHandler := ws.NewHandler(chatService, cfg.Chat, log)
	wsGroup := engine.Group("/ws", middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:      jwtService,
		TokenBlacklist:  blacklist,
		AllowQueryToken: true,
		Logger:          log,
	}))
	wsHandler.RegisterRoutes(wsGroup)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
