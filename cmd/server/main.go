package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"book-order-service/internal/auth"
	"book-order-service/internal/broadcast"
	"book-order-service/internal/cache"
	"book-order-service/internal/config"
	ctrl "book-order-service/internal/controllers/http"
	"book-order-service/internal/infra/mongodb"
	mmysql "book-order-service/internal/infra/mysql"
	"book-order-service/internal/infra/rabbitmq"
	"book-order-service/internal/pricing"
	"book-order-service/internal/repository"
	mongorepo "book-order-service/internal/repository/mongo"
	mysqlrepo "book-order-service/internal/repository/mysql"
	"book-order-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	var closers []func()

	var (
		orderRepo   repository.OrderRepository
		settingRepo repository.SettingRepository
	)
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := mmysql.NewMySQL(cfg.MySQL)
		if err != nil {
			log.Fatalf("db: connect: %v", err)
		}
		closers = append(closers, func() {
			if err := mmysql.Close(db); err != nil {
				log.Printf("db: close: %v", err)
			}
		})
		orderRepo = mysqlrepo.NewOrderRepository(db)
		settingRepo = mysqlrepo.NewSettingRepository(db)
	default:
		db, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			log.Fatalf("db: connect: %v", err)
		}
		closers = append(closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(dctx)
		})
		orderRepo = mongorepo.NewOrderRepository(db)
		settingRepo = mongorepo.NewSettingRepository(db)
		if ix, ok := orderRepo.(interface{ CreateIndexes(context.Context) error }); ok {
			if err := ix.CreateIndexes(ctx); err != nil {
				log.Printf("Failed to create order indexes: %v", err)
			}
		}
	}
	log.Printf("Using %s store", cfg.StoreDriver)

	var settingCache cache.SettingCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     50,
			MinIdleConns: 5,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable, settings cache disabled: %v", err)
			_ = redisClient.Close()
		} else {
			settingCache = cache.NewRedisCache(redisClient, cfg.Redis.TTL)
			closers = append(closers, func() { _ = redisClient.Close() })
		}
	}

	var publisher rabbitmq.PublisherInterface = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("failed to init publisher: %v", err)
		}
		publisher = p
		closers = append(closers, p.Close)
	}

	prices, err := pricing.NewTable(pricing.Tier(cfg.Pricing.Tier))
	if err != nil {
		log.Fatalf("pricing: %v", err)
	}

	if cfg.Admin.Password == "" {
		log.Printf("ADMIN_PASSWORD is not set, admin login is disabled")
	}
	sessions := auth.NewSessionStore(cfg.Admin.Username, cfg.Admin.Password, cfg.Admin.SessionTTL)

	settingService := services.NewSettingService(settingRepo, settingCache, cfg.StoreTimeout)
	registry := broadcast.NewRegistry(settingService,
		broadcast.WithHeartbeat(cfg.Stream.Heartbeat),
		broadcast.WithBuffer(cfg.Stream.Buffer),
	)
	orderService := services.NewOrderService(orderRepo, prices, publisher, cfg.StoreTimeout)
	adminService := services.NewAdminService(sessions, settingService, orderService, registry)

	handler := ctrl.NewHandler(orderService, settingService, adminService, registry, ctrl.Options{
		SessionTTL: cfg.Admin.SessionTTL,
		LoginRate:  rate.Limit(cfg.Login.Rate),
		LoginBurst: cfg.Login.Burst,
	})

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipPaths: []string{"/healthz"}}))

	handler.RegisterRoutes(r)

	sweepDone := make(chan struct{})
	go func() {
		t := time.NewTicker(time.Hour)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				if n := sessions.Sweep(); n > 0 {
					log.Printf("Expired %d admin sessions", n)
				}
			case <-sweepDone:
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting book order service on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server run: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down")

	close(sweepDone)
	registry.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	log.Println("Server stopped")
}
