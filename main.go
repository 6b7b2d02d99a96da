package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/utils"

	"akademiku_backend/internals/configs"
	database "akademiku_backend/internals/databases"
	"akademiku_backend/internals/events"
	helper "akademiku_backend/internals/helpers"
	middlewares "akademiku_backend/internals/middlewares"
	routes "akademiku_backend/internals/route"
	routeDetails "akademiku_backend/internals/route/details"
)

func main() {
	configs.LoadEnv()
	settings := configs.LoadPaymentSettings()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ErrorHandler:            helper.FiberErrorHandler,
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	// 🔎 Request-ID + timeout guard
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		// selaras dengan statement_timeout di DB; gateway call bisa lebih lama dari query biasa
		ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrate + warm-up
	database.ConnectDB()
	database.TunePool()
	if err := database.Migrate(database.DB); err != nil {
		log.Fatalf("❌ Migrasi gagal: %v", err)
	}
	database.WarmUpQueries()

	rdb := database.ConnectRedis()

	// 📣 Kafka opsional: tanpa broker, event payment.paid tidak dikirim
	deps := routeDetails.FinanceDeps{DB: database.DB, Redis: rdb, Settings: settings}
	var producer *events.Producer
	if len(settings.KafkaBrokers) > 0 {
		p, err := events.NewProducer(settings.KafkaBrokers, settings.KafkaTopic, 5, 2*time.Second)
		if err != nil {
			log.Printf("⚠️ Kafka tidak tersedia, event payment.paid dimatikan: %v", err)
		} else {
			producer = p
			deps.Publisher = p
		}
	}

	finance := routeDetails.NewFinanceModule(deps)
	routes.SetupRoutes(app, database.DB, finance)

	// ⏱ sweeper setelah DB siap
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	go finance.Sweeper.Start(sweepCtx)

	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	stopSweeper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close err: %v", err)
		}
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
