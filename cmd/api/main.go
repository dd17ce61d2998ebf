package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/application/reason"
	domaininv "github.com/jhoicas/Inventario-kardex/internal/domain/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/cache"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/metrics"
	httpRouter "github.com/jhoicas/Inventario-kardex/internal/interfaces/http"
	"github.com/jhoicas/Inventario-kardex/pkg/config"
	"github.com/jhoicas/Inventario-kardex/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Inventory.Store).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer store.close()

	policy, err := domaininv.NewAlertPolicy(cfg.Inventory.LowStockMultiplier)
	if err != nil {
		log.Fatal().Err(err).Msg("política de alertas")
	}

	m := metrics.NewMetrics()
	m.Registerer().MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	opts := []inventory.Option{
		inventory.WithAlertPolicy(policy),
		inventory.WithMetrics(m),
		inventory.WithLogger(log),
	}
	if cfg.Inventory.EnforceDirectory {
		opts = append(opts, inventory.WithDirectory(store.directory))
	}

	// Caché de alertas (opcional): sin REDIS_ADDR GetAlerts consulta siempre el almacén.
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no responde; la caché reintentará por petición")
		}
		alertsCache := cache.NewAlertsCache(rdb, cfg.Redis.TTL, log.Zerolog())
		alertsCache.ListenForInvalidation(ctx)
		opts = append(opts, inventory.WithAlertsCache(alertsCache))
	}

	engine := inventory.NewStockEngine(store.txRunner, store.stock, store.ledger, store.reasons, opts...)
	reasonUC := reason.NewUseCase(store.reasons, store.ledger, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:         engine,
		Reasons:        reasonUC,
		JWTSecret:      cfg.JWT.Secret,
		ServiceName:    cfg.App.Name,
		MetricsHandler: m.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
