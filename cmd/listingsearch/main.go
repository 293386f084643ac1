package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	config "github.com/davicafu/listingsearch/internal/config"
	infraEvents "github.com/davicafu/listingsearch/internal/infra/events"
	infraRelayer "github.com/davicafu/listingsearch/internal/infra/relayer"
	listingApp "github.com/davicafu/listingsearch/internal/listing/application"
	"github.com/davicafu/listingsearch/internal/listing/application/search"
	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	listingEvents "github.com/davicafu/listingsearch/internal/listing/infra/inbound/events"
	listingHttp "github.com/davicafu/listingsearch/internal/listing/infra/inbound/http"
	listingAnalytics "github.com/davicafu/listingsearch/internal/listing/infra/outbound/analytics/clickhouse"
	listingCache "github.com/davicafu/listingsearch/internal/listing/infra/outbound/cache"
	"github.com/davicafu/listingsearch/pkg/logger"
	sharedBus "github.com/davicafu/listingsearch/shared/platform/bus"
	sharedCache "github.com/davicafu/listingsearch/shared/platform/cache"
)

// ---------------- Main ----------------
func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.LogLevel) // inicializa zap
	log := logger.Logger()
	defer log.Sync() // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- DB ----------------
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open storage", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer store.close()

	healthChecks := map[string]listingHttp.HealthCheck{"db": store.ping}

	// ---------------- Cache ----------------
	var cacheInstance sharedCache.Cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("⚠️ Redis no disponible, cache en memoria", zap.Error(err))
		memCache := listingCache.NewInMemoryCache(cfg.CacheTTL, 3*cfg.CacheTTL)
		defer memCache.Stop()
		cacheInstance = memCache
	} else {
		redisCache := listingCache.NewRedisCache(rdb, "listingsearch", cfg.CacheTTL)
		cacheInstance = redisCache
		healthChecks["cache"] = redisCache.Ping
		log.Info("✅ Redis conectado, cache habilitado")
	}
	defer rdb.Close()

	// ---------------- Analytics ----------------
	var (
		analytics listingDomain.SearchAnalyticsRepository
		stats     listingDomain.SearchAnalyticsReader
	)
	if cfg.ClickHouseAddr != "" {
		searchLog, err := listingAnalytics.NewSearchLogRepo(cfg.ClickHouseAddr, cfg.ClickHouseDB)
		if err == nil {
			err = searchLog.InitSchema()
		}
		if err != nil {
			log.Warn("⚠️ ClickHouse no disponible, analítica desactivada", zap.Error(err))
		} else {
			defer searchLog.Close()
			analytics, stats = searchLog, searchLog
			log.Info("✅ ClickHouse conectado, analítica de búsquedas habilitada")
		}
	}

	// --------------- Servicios --------------
	listingService := listingApp.NewListingService(store.listings, cacheInstance, int(cfg.CacheTTL.Seconds()), log)
	selector := search.DefaultSelector(store.listings, log)
	searchService := listingApp.NewSearchService(selector, analytics, log)

	// ---------------- Events ---------------
	var publisher sharedBus.EventPublisher
	consumer := listingEvents.NewListingConsumer(cacheInstance, log)

	if cfg.UseKafka {
		log.Info("🚀 Usando Kafka como bus de eventos", zap.String("topic", cfg.KafkaTopic))

		writer := infraEvents.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		kafkaPublisher := infraEvents.NewKafkaPublisher(writer, log)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher

		reader := infraEvents.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		infraEvents.NewConsumerAdapter(reader, consumer, log).Start(ctx)
	} else {
		log.Info("⚡️ Usando bus de eventos en memoria (canales de Go)")

		bus := infraEvents.NewInMemoryEventBus(listingDomain.ListingTopic)
		publisher = bus

		log.Info("🎧 Iniciando listener en memoria para eventos de listing")
		infraEvents.Consume(ctx, bus.Subscribe(100), consumer)
	}

	// ------------ Outbox Worker ------------
	worker := infraRelayer.NewOutboxWorker(store.outbox, publisher, listingDomain.NewEventRegistry(), cfg.OutboxPeriod, cfg.OutboxLimit, log)
	go worker.Start(ctx)

	// ---------------- HTTP ----------------
	router := gin.Default()
	handler := listingHttp.NewListingHandler(listingService, searchService, stats, listingHttp.PageLimits{
		DefaultSize: cfg.DefaultPageSize,
		MaxSize:     cfg.MaxPageSize,
	}, log)
	listingHttp.RegisterListingRoutes(router, handler)
	listingHttp.RegisterHealthRoute(router, healthChecks)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Info("🚀 Server running", zap.String("url", "http://localhost:"+cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("🛑 Apagando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}
