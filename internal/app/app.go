package app

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	httpapi "github.com/mauriciocucco/margaritas-warehouse-service/internal/api/http"
	"github.com/mauriciocucco/margaritas-warehouse-service/internal/config"
	eventkafka "github.com/mauriciocucco/margaritas-warehouse-service/internal/event/kafka"
	mongorepo "github.com/mauriciocucco/margaritas-warehouse-service/internal/repository/mongo"
	"github.com/mauriciocucco/margaritas-warehouse-service/internal/repository/postgres"
	redisrepo "github.com/mauriciocucco/margaritas-warehouse-service/internal/repository/redis"
	"github.com/mauriciocucco/margaritas-warehouse-service/internal/service"
	"github.com/mauriciocucco/margaritas-warehouse-service/internal/supplier"
	platformlogging "github.com/mauriciocucco/margaritas-warehouse-service/platform/logging"
	platformobservability "github.com/mauriciocucco/margaritas-warehouse-service/platform/observability"
	platformshutdown "github.com/mauriciocucco/margaritas-warehouse-service/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown Warehouse Service
type App struct {
	logger      *zap.Logger
	consumer    *eventkafka.Consumer
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Warehouse Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "warehouse",
		Env:         string(cfg.AppEnv),
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
	})
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("op", op))
	logger.Info("Building Warehouse service",
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Strings("kafka_brokers", cfg.KafkaBrokers),
		zap.String("request_topic", cfg.RequestTopic),
		zap.String("reduce_topic", cfg.ReduceTopic),
		zap.String("status_topic", cfg.StatusTopic),
		zap.String("dlq_topic", cfg.DLQTopic),
	)

	// OpenTelemetry: traces + metrics (noop если OTEL_ENABLED=false)
	otelCfg := platformobservability.Config{
		Enabled:               cfg.OTelEnabled,
		OTLPEndpoint:          cfg.OTelEndpoint,
		SamplingRatio:         cfg.OTelSamplingRatio,
		ServiceName:           "warehouse",
		DeploymentEnvironment: string(cfg.AppEnv),
	}
	otelShutdown, err := platformobservability.Init(context.Background(), otelCfg)
	if err != nil {
		return nil, err
	}

	// Подключаемся к MongoDB (остатки склада)
	logger.Info("Connecting to MongoDB")
	ctxMongo, cancelMongo := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelMongo()
	mongoClient, err := mongo.Connect(ctxMongo, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, err
	}
	if err := mongoClient.Ping(ctxMongo, nil); err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}
	logger.Info("MongoDB connection established")

	// Подключаемся к PostgreSQL (журнал закупок)
	logger.Info("Connecting to PostgreSQL")
	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}
	logger.Info("PostgreSQL connection established")

	// Применяем миграции
	logger.Info("Applying database migrations")
	db, err := goose.OpenDBWithDriver("pgx", cfg.PostgresDSN)
	if err != nil {
		pool.Close()
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}
	defer db.Close()

	wd, err := os.Getwd()
	if err != nil {
		pool.Close()
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}
	migrationsDir := filepath.Join(wd, "migrations")

	if err := goose.Up(db, migrationsDir); err != nil {
		pool.Close()
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}
	logger.Info("Database migrations applied successfully")

	// Подключаемся к Redis (дедупликация событий)
	logger.Info("Connecting to Redis", zap.String("addr", cfg.RedisAddr))
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	ctxRedis, cancelRedis := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelRedis()
	if err := redisClient.Ping(ctxRedis).Err(); err != nil {
		pool.Close()
		_ = mongoClient.Disconnect(context.Background())
		return nil, err
	}
	logger.Info("Redis connection established")

	// Репозитории
	inventoryRepo := mongorepo.NewRepository(mongoClient, cfg.MongoDBName)
	ledgerRepo := postgres.NewRepository(pool)
	processedStore := redisrepo.NewProcessedEventsStore(redisClient, logger)

	// Клиент поставщика (farmers market)
	supplierClient := supplier.NewClient(logger, cfg.FarmersMarketURL)

	// Kafka publisher для статусов заказов
	statusNotifier := eventkafka.NewKafkaStatusNotifier(logger, cfg.KafkaBrokers, cfg.StatusTopic)

	// DLQ publisher
	dlqPublisher := eventkafka.NewDLQPublisher(logger, cfg.KafkaBrokers, cfg.DLQTopic)

	// Service слой
	warehouseService := service.NewService(
		logger,
		inventoryRepo,
		ledgerRepo,
		supplierClient,
		statusNotifier,
		processedStore,
		service.ProcurementConfig{
			BackoffDelay: cfg.ProcurementBackoffDelay,
			MaxAttempts:  cfg.ProcurementMaxAttempts,
			MaxElapsed:   cfg.ProcurementMaxElapsed,
		},
		cfg.IdempotencyTTL,
	)

	// Kafka consumer: оба топика в одной consumer group, dispatch по топику
	consumer := eventkafka.NewConsumer(
		logger,
		cfg.KafkaBrokers,
		cfg.ConsumerGroupID,
		[]string{cfg.RequestTopic, cfg.ReduceTopic},
		dlqPublisher,
		cfg.RetryMaxAttempts,
		cfg.RetryBackoffBase,
	)
	consumer.Register(cfg.RequestTopic, eventkafka.NewRequestIngredientsHandler(logger, warehouseService))
	consumer.Register(cfg.ReduceTopic, eventkafka.NewReduceIngredientsHandler(logger, warehouseService))

	// HTTP read API
	readiness := func() bool {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			return false
		}
		return mongoClient.Ping(ctx, nil) == nil
	}
	apiHandler := httpapi.NewHandler(logger, warehouseService)
	router := httpapi.NewRouter(apiHandler, readiness, logger, cfg.GatewayHeader, cfg.GatewayKey)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("Warehouse HTTP server configured", zap.String("addr", cfg.HTTPAddr))

	// Создаём shutdown manager
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	// Регистрируем shutdown функции в обратном порядке выполнения
	shutdownMgr.Add("otel", otelShutdown)
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))
	shutdownMgr.Add("kafka_consumer", platformshutdown.Close(consumer))
	shutdownMgr.Add("kafka_status_publisher", platformshutdown.Close(statusNotifier))
	shutdownMgr.Add("kafka_dlq_publisher", platformshutdown.Close(dlqPublisher))
	shutdownMgr.Add("redis_client", platformshutdown.Close(redisClient))
	shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))
	shutdownMgr.Add("mongo_client", platformshutdown.DisconnectMongo(mongoClient))

	return &App{
		logger:      logger,
		consumer:    consumer,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run() error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Warehouse service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Запускаем consumer в отдельной горутине
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.consumer.Start(ctx); err != nil {
			a.logger.Error("kafka consumer error", zap.Error(err))
		}
	}()

	// Запускаем HTTP сервер
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait()

	cancel()
	a.wg.Wait()

	a.logger.Info("Warehouse service stopped")
	return nil
}
