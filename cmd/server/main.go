package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/datenknoten/freundebuch/config"
	collectiverepo "github.com/datenknoten/freundebuch/internal/repositories/collective"
	friendrepo "github.com/datenknoten/freundebuch/internal/repositories/friend"
	parentrepo "github.com/datenknoten/freundebuch/internal/repositories/parent"
	relationshiprepo "github.com/datenknoten/freundebuch/internal/repositories/relationship"
	relationshiptyperepo "github.com/datenknoten/freundebuch/internal/repositories/relationshiptype"
	"github.com/datenknoten/freundebuch/pkg/catalog"
	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/events"
	"github.com/datenknoten/freundebuch/pkg/graph"
	"github.com/datenknoten/freundebuch/pkg/kafka"
	"github.com/datenknoten/freundebuch/pkg/middleware"
	"github.com/datenknoten/freundebuch/pkg/network"
	"github.com/datenknoten/freundebuch/pkg/redis"
	"github.com/datenknoten/freundebuch/pkg/relationships"
	collectiveroutes "github.com/datenknoten/freundebuch/pkg/routes/collective"
	contactfieldroutes "github.com/datenknoten/freundebuch/pkg/routes/contactfield"
	friendroutes "github.com/datenknoten/freundebuch/pkg/routes/friend"
	"github.com/datenknoten/freundebuch/pkg/routes/health"
	networkroutes "github.com/datenknoten/freundebuch/pkg/routes/network"
	relationshiproutes "github.com/datenknoten/freundebuch/pkg/routes/relationship"
	relationshiptyperoutes "github.com/datenknoten/freundebuch/pkg/routes/relationshiptype"
	"github.com/datenknoten/freundebuch/pkg/startup"
	"github.com/datenknoten/freundebuch/pkg/tracing"
	"github.com/datenknoten/freundebuch/pkg/tracing/exporters"
)

const version = "0.1.0"

// dependency adapts a pair of closures to the startup.Dependency interface.
type dependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *dependency) GetName() string     { return d.name }
func (d *dependency) DependsOn() []string { return d.dependsOn }

func (d *dependency) Start(ctx context.Context) error {
	if d.start == nil {
		return nil
	}
	return d.start(ctx)
}

func (d *dependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var zapLogger *zap.Logger
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)
	ctx := context.Background()

	fatal := func(msg string, err error) {
		logger.WithError(err).Error(msg)
		os.Exit(1)
	}

	if cfg.TracingEnabled {
		exporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingOTLPEndpoint,
			Protocol: cfg.TracingOTLPProtocol,
			Insecure: true,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			fatal("failed to create trace exporter", err)
		}
		tp := tracing.Setup(cfg.AppName, exporter)
		defer func() { _ = tp.Shutdown(ctx) }()
	} else {
		tracing.Setup(cfg.AppName, nil)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost, cfg.DatabasePort, cfg.DatabaseUserName, cfg.DatabasePassword, cfg.DatabaseName, cfg.DatabaseSSLMode)

	sqlxDB, err := sqlx.Open(cfg.DatabaseDriver, dsn)
	if err != nil {
		fatal("failed to open database", err)
	}
	sqlxDB.SetMaxOpenConns(cfg.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(cfg.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(cfg.DatabaseConnMaxLifetime)

	db := database.NewDatabaseInstance(sqlxDB, logger)

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	boot.AddDependency(&dependency{
		name: "postgres",
		start: func(ctx context.Context) error {
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			driver, err := migratepg.WithInstance(sqlxDB.DB, &migratepg.Config{})
			if err != nil {
				return err
			}
			migrations := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
				AutoRollback:        cfg.DatabaseMigrationAutoRollback,
			})
			return migrations.Migrate(cfg.DatabaseName, driver)
		},
		stop: func(ctx context.Context) error {
			return db.Close()
		},
	})

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		boot.AddDependency(&dependency{
			name:  "redis",
			start: redisClient.Ping,
			stop: func(ctx context.Context) error {
				return redisClient.Close()
			},
		})
	}

	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		boot.AddDependency(&dependency{
			name: "kafka",
			stop: func(ctx context.Context) error {
				return producer.Close()
			},
		})
	}

	var graphClient *graph.Client
	if cfg.GraphDBEnabled {
		graphClient, err = graph.NewClient(graph.Config{
			Host:     cfg.GraphDBHost,
			Port:     cfg.GraphDBPort,
			Username: cfg.GraphDBUser,
			Password: cfg.GraphDBPassword,
		}, logger)
		if err != nil {
			fatal("failed to create graph client", err)
		}
		boot.AddDependency(&dependency{
			name:  "graph",
			start: graphClient.VerifyConnectivity,
			stop:  graphClient.Close,
		})
	}

	if err := boot.Start(ctx); err != nil {
		fatal("startup failed", err)
	}

	e, checker, err := buildServer(ctx, cfg, db, logger, redisClient, producer, graphClient)
	if err != nil {
		fatal("failed to build server", err)
	}

	checker.SetReady(true)

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			fatal("server stopped unexpectedly", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to shut down http server")
	}
	if err := boot.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("failed to stop dependencies")
	}
}

func buildServer(
	ctx context.Context,
	cfg *config.Config,
	db database.DB,
	logger ectologger.Logger,
	redisClient *redis.Client,
	producer *kafka.Producer,
	graphClient *graph.Client,
) (*echo.Echo, *health.Checker, error) {
	var publisher events.Publisher
	if producer != nil {
		publisher = producer
	}
	emitter := events.NewEmitter(publisher, logger)

	mirror := graph.NewMirror(graphClient, logger)

	var cache network.Cache
	if redisClient != nil {
		cache = redisClient
	}

	cat, err := catalog.Load(ctx, relationshiptyperepo.NewRepository(db, logger))
	if err != nil {
		return nil, nil, err
	}

	friendRepo := friendrepo.NewRepository(db, logger)
	collectiveRepo := collectiverepo.NewRepository(db, logger)
	parentRepo := parentrepo.NewRepository(db, logger)
	relRepo := relationshiprepo.NewRepository(db, logger)

	networkService := network.NewService(friendRepo, relRepo, cache, cfg.NetworkCacheTTL, logger)
	relService := relationships.NewService(db, relRepo, friendRepo, cat, emitter, networkService, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.HTTPErrorHandler = middleware.Error(logger)
	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	if cfg.AuthEnabled {
		auth, err := middleware.Authentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID)
		if err != nil {
			return nil, nil, err
		}
		e.Use(auth)
	}

	var redisPing interface{ Ping(ctx context.Context) error }
	if redisClient != nil {
		redisPing = redisClient
	}
	checker := health.NewChecker(db, redisPing, version)
	checker.RegisterRoutes(e)

	api := e.Group("/api/v1")

	friendHandler := friendroutes.NewHandler(friendRepo, relService, db, mirror, emitter, networkService, logger)
	friendHandler.Register(api.Group("/friends"))

	collectiveHandler := collectiveroutes.NewHandler(collectiveRepo, emitter)
	collectiveHandler.Register(api.Group("/collectives"))

	contactHandlers := contactfieldroutes.NewHandlers(db, parentRepo, emitter, logger)
	contactHandlers.Register(api.Group("/friends/:friendId"))
	contactHandlers.Register(api.Group("/collectives/:collectiveId"))

	relationshipHandler := relationshiproutes.NewHandler(relService, cat, mirror)
	relationshipHandler.Register(api.Group("/friends/:friendId/relationships"))

	relationshiptyperoutes.NewHandler(cat).Register(api.Group("/relationship-types"))
	networkroutes.NewHandler(networkService).Register(api.Group("/network"))

	return e, checker, nil
}
