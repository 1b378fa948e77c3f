package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"munhub/config"
	"munhub/controllers"
	"munhub/db"
	"munhub/internal/logging"
	"munhub/internal/ratelimit"
	"munhub/middlewares"
	"munhub/routes"
	"munhub/services"
	"munhub/store"
	"munhub/store/memstore"
	"munhub/store/mongostore"
	"munhub/utils"
	"munhub/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "./config/config.prod.yml", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if _, err := maxprocs.Set(maxprocs.Logger(logger.Sugar().Infof)); err != nil {
		logger.Warn("failed to set GOMAXPROCS", zap.Error(err))
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := utils.SeedAdmin(ctx, st.Users, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword, logger); err != nil {
		return err
	}

	limiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	hub := websocket.NewHub(logger, reg)

	svc := services.New(services.Deps{
		Store:  st,
		Notify: hub,
		Logger: logger,
	}, services.AuthOptions{
		Tokens:  utils.NewTokenManager(cfg.JWT.Secret, cfg.TokenExpiry()),
		Limiter: limiter,
	})

	router := setupRouter(cfg, svc, hub, reg, logger)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Server.Port))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openStore returns the MongoDB store, or the in-process one for memory://.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*store.Store, func(), error) {
	if cfg.UsesMemoryStore() {
		logger.Warn("using in-memory store; data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	client, database, err := db.Connect(ctx, cfg.Database.URI, cfg.Database.Name, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
		}
	}
	if err := db.EnsureIndexes(ctx, database, logger); err != nil {
		closeFn()
		return nil, nil, err
	}
	return mongostore.New(database), closeFn, nil
}

func newLimiter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ratelimit.Limiter, error) {
	rl := ratelimit.Config{Attempts: cfg.RateLimit.LoginAttempts, Window: cfg.RateLimit.Window}
	if cfg.Redis.Addr == "" {
		return ratelimit.NewMemoryLimiter(rl), nil
	}
	rdb, err := ratelimit.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	return ratelimit.NewRedisLimiter(rdb, rl), nil
}

func setupRouter(cfg *config.Config, svc *services.Services, hub *websocket.Hub, reg *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middlewares.RequestID(), middlewares.RequestLogger(logger))

	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies", zap.Error(err))
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "liveCommittees": hub.Committees()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	ws := websocket.NewHandler(hub, svc.Auth.Verify, cfg.Server.AllowedOrigins, logger)
	router.GET("/ws/committees/:committeeId", ws.ServeCommittee)

	routes.Setup(router, controllers.New(svc, logger), middlewares.AuthMiddleware(svc.Auth.Verify))
	return router
}
