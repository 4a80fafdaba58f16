package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gamelinkApi "gamelink-suite/api"
	gamelinkConfig "gamelink-suite/config"
	gamelinkAPIHelper "gamelink-suite/utils/api"
	gamelinkDatabaseManager "gamelink-suite/utils/database"
	gamelinkMongo "gamelink-suite/utils/database/mongo"
	gamelinkPostgres "gamelink-suite/utils/database/postgresql"
	gamelinkRedis "gamelink-suite/utils/database/redis"
	gamelinkLogger "gamelink-suite/utils/logger"
	gamelinkOAuth "gamelink-suite/utils/oauth"
	gamelinkVersion "gamelink-suite/version"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		gamelinkLogger.Errorf("%v", err)
		os.Exit(1)
	}
}

// run returns instead of exiting so every deferred Close runs on failure.
func run() error {
	if err := gamelinkConfig.Load(gamelinkConfig.Path()); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := gamelinkConfig.Cfg

	var loggerWriter io.Writer = os.Stdout
	if cfg.Backend.MainLogFile != "" {
		logFile, err := os.OpenFile(cfg.Backend.MainLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to open main log file: %w", err)
		}
		loggerWriter = io.MultiWriter(os.Stdout, logFile)
		defer func(logFile *os.File) {
			_ = logFile.Close()
		}(logFile)
	}
	gamelinkLogger.SetDefault(gamelinkLogger.NewLogger("Suite", cfg.Backend.LogLevel, loggerWriter))
	mainLogger := gamelinkLogger.NewLogger("Main", cfg.Backend.LogLevel, loggerWriter)
	mainLogger.Infof("========================= GameLink Suite %s =========================", gamelinkVersion.Version)

	ctx := context.Background()

	storeType, err := gamelinkOAuth.ParseStoreType(cfg.OAuth.TokenStore)
	if err != nil {
		return err
	}

	db, err := gamelinkPostgres.Open(ctx, cfg.PostgreSQL)
	if err != nil {
		return fmt.Errorf("failed to init PostgreSQL: %w", err)
	}
	var redisManager *gamelinkRedis.GameLinkRedisManager
	if storeType == gamelinkOAuth.StoreTypeRedis || cfg.UserSystem.SessionCheckRedis {
		redisManager = gamelinkRedis.NewRedisClient(cfg.Redis)
	}
	dbMgr := gamelinkDatabaseManager.NewGameLinkDBManager(db, redisManager, nil)
	defer func() {
		if err := dbMgr.Close(context.Background()); err != nil {
			mainLogger.Warnf("error closing databases: %v", err)
		}
	}()

	var recorder gamelinkOAuth.GrantRecorder
	if cfg.MongoDB.URL != "" {
		mongoManager, err := gamelinkMongo.NewMongoDBManager(ctx, cfg.MongoDB.URL, cfg.MongoDB.DB, cfg.MongoDB.GrantEvents)
		if err != nil {
			return fmt.Errorf("failed to init MongoDB: %w", err)
		}
		dbMgr.Mongo = mongoManager
		if err := mongoManager.EnsureIndexes(ctx); err != nil {
			mainLogger.Warnf("Failed to create grant event indexes: %v", err)
		}
		recorder = mongoManager
	} else {
		mainLogger.Infof("MongoDB not configured, grant event log disabled")
	}

	store, err := gamelinkOAuth.NewTokenStore(storeType, redisManager, gamelinkOAuth.StoreOptions{
		RequestTTL:    cfg.OAuth.RequestTTL(),
		AccessTTL:     cfg.OAuth.AccessTTL(),
		SweepInterval: cfg.OAuth.Sweep(),
	})
	if err != nil {
		return fmt.Errorf("failed to init token store: %w", err)
	}
	defer func() { _ = store.Close() }()
	mainLogger.Infof("Using %s token store, request ttl %s, access ttl %s", storeType, cfg.OAuth.RequestTTL(), cfg.OAuth.AccessTTL())

	flow := gamelinkOAuth.NewFlow(store,
		gamelinkPostgres.NewClientRepository(db),
		gamelinkPostgres.NewUserRepository(db),
		gamelinkOAuth.WithRequestTTL(cfg.OAuth.RequestTTL()),
		gamelinkOAuth.WithGrantRecorder(recorder),
		gamelinkOAuth.WithLogger(gamelinkLogger.NewLogger("OAuth", cfg.Backend.LogLevel, loggerWriter)),
	)

	var sessionRedis *redis.Client
	if redisManager != nil {
		sessionRedis = redisManager.Redis
	}
	sessionHandler, err := gamelinkAPIHelper.NewSessionHandler(sessionRedis, cfg.UserSystem.SessionSignToken, cfg.UserSystem.SessionCheckRedis)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	if len(cfg.Backend.AllowCORS) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.Backend.AllowCORS, ","),
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
			AllowMethods:     "GET, POST, OPTIONS",
			AllowCredentials: true,
		}))
	}

	if cfg.Backend.AccessLog != "" {
		loggerConfig := logger.Config{Format: cfg.Backend.AccessLog}
		if cfg.Backend.AccessLogPath != "" {
			accessLogFile, err := os.OpenFile(cfg.Backend.AccessLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return fmt.Errorf("failed to open access log file: %w", err)
			}
			defer func(accessLogFile *os.File) {
				_ = accessLogFile.Close()
			}(accessLogFile)
			loggerConfig.Output = accessLogFile
		}
		app.Use(logger.New(loggerConfig))
	}

	apiHelper := gamelinkAPIHelper.NewGameLinkRouterHelpers(
		app,
		dbMgr,
		sessionHandler,
		flow,
		gamelinkPostgres.NewProjectRepository(db),
	)
	if dbMgr.Mongo != nil {
		apiHelper.GrantEvents = dbMgr.Mongo
	}
	gamelinkApi.RegisterRoutes(apiHelper)
	if cfg.Backend.EnableDebug {
		gamelinkApi.RegisterDebugRoutes(apiHelper, cfg.Backend.PprofAddr)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Backend.Host, cfg.Backend.Port)
	serverErr := make(chan error, 1)
	go func() {
		if cfg.Backend.SSL {
			mainLogger.Infof("SSL enabled, starting HTTPS server at %s", addr)
			serverErr <- app.ListenTLS(addr, cfg.Backend.SSLCert, cfg.Backend.SSLKey)
			return
		}
		mainLogger.Infof("Starting HTTP server at %s", addr)
		serverErr <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
	case sig := <-quit:
		mainLogger.Infof("Received %s, shutting down", sig)
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			mainLogger.Errorf("graceful shutdown failed: %v", err)
		}
	}
	return nil
}
