package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/memory/v2"
	"github.com/gofiber/storage/redis/v3"
	"github.com/ptavares/socialspaces/internal/audit"
	"github.com/ptavares/socialspaces/internal/auth"
	"github.com/ptavares/socialspaces/internal/common"
	"github.com/ptavares/socialspaces/internal/config"
	"github.com/ptavares/socialspaces/internal/handlers/api"
	"github.com/ptavares/socialspaces/internal/messages"
	"github.com/ptavares/socialspaces/internal/middlewares"
	"github.com/ptavares/socialspaces/internal/render"
	"github.com/ptavares/socialspaces/internal/spaces"
	"github.com/ptavares/socialspaces/internal/store"
	"github.com/ptavares/socialspaces/internal/token"
	"github.com/ptavares/socialspaces/internal/users"
	"github.com/ptavares/socialspaces/model"
	"github.com/ptavares/socialspaces/params"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

var (
	app       *cli.App
	gitCommit string
	gitDate   string
)

var (
	configFileFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "YAML config file",
		Value: "config.yaml",
	}
	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Enable debug logging",
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "socialspaces - A multi-tenant social spaces server with a request audit trail"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(params.VersionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
	}
	app.Action = run
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.MySQLConfig) *gorm.DB {
	db, err := gorm.Open(mysql.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: dbConfig.TablePrefix,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if dbConfig.ReplicaDsn != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{mysql.Open(dbConfig.ReplicaDsn)},
		}))
		if err != nil {
			slog.Error("Failed to register read replica", "error", err)
			os.Exit(1)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to access database pool", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	}
	if dbConfig.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(time.Duration(dbConfig.ConnMaxIdleTime) * time.Second)
	}
	if dbConfig.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Second)
	}

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	return db
}

func mustInitRedisStorage(redisCfg config.RedisConfig) *redis.Storage {
	return redis.New(redis.Config{
		URL:           redisCfg.URL,
		PoolSize:      redisCfg.PoolSize,
		IsClusterMode: redisCfg.ClusterMode,
	})
}

// mustInitRateLimitStorage picks the limiter counter backend. Counters fall
// back to process memory when configured so or when no redis is available.
func mustInitRateLimitStorage(cfg config.RateLimitConfig, redisStorage *redis.Storage) fiber.Storage {
	if cfg.Backend == config.RateLimitBackendMem || redisStorage == nil {
		return memory.New()
	}
	return redisStorage
}

func mustInitEventRepository(auditCfg config.AuditConfig, db *gorm.DB) audit.EventRepository {
	switch auditCfg.Backend {
	case config.AuditBackendMySQL:
		return audit.NewEventRepository(db)
	case config.AuditBackendMemory:
		return audit.NewMemoryEventRepository()
	}
	slog.Error("Unsupported audit backend", "backend", auditCfg.Backend)
	os.Exit(1)
	return nil
}

func mustInitJWTSecret(authCfg config.AuthConfig) string {
	if authCfg.JWTSecret != "" {
		return authCfg.JWTSecret
	}
	secret, err := common.GenerateSecret(32)
	if err != nil {
		slog.Error("Failed to generate JWT secret", "error", err)
		os.Exit(1)
	}
	slog.Warn("No JWT secret configured, using a generated one. Sessions will not survive a restart.")
	return secret
}

func setupAPIRoutes(
	router fiber.Router,
	rateLimitCfg config.RateLimitConfig,
	rateLimitStorage fiber.Storage,
	allocator *audit.Allocator,
	recorder *audit.Recorder,
	auditService *audit.Service,
	permRepo auth.PermissionRepository,
	userService *users.UserService,
	tokenService *token.Service,
	spaceService *spaces.SpaceService,
	messageService *messages.MessageService) {

	// handlers
	var (
		auditHandler    = api.NewAuditHandler(auditService)
		usersHandler    = api.NewUsersHandler(userService)
		sessionsHandler = api.NewSessionsHandler(tokenService)
		spacesHandler   = api.NewSpacesHandler(spaceService, messageService)
		messagesHandler = api.NewMessagesHandler(messageService)
	)

	// the correlation middleware wraps everything below it, the interceptor
	// records AUTH_INFO and END on the way back out
	router.Use(middlewares.Correlate(allocator, recorder))
	router.Use(middlewares.AuditInterceptor(recorder))
	router.Use(middlewares.RateLimit(rateLimitCfg, rateLimitStorage))

	// public routes
	router.Post("/users", usersHandler.PostUser)
	router.Get("/audit", auditHandler.GetAllLogs)
	router.Get("/audit/logs", auditHandler.GetLogs)
	router.Get("/audit/logs/summary", auditHandler.GetLogsSummary)
	router.Get("/audit/view", auditHandler.GetView)

	// authenticated routes
	router.Use(auth.Authenticate(userService, tokenService))
	router.Post("/sessions", sessionsHandler.PostSession)
	router.Delete("/sessions", sessionsHandler.DeleteSession)
	router.Get("/users", usersHandler.GetUsers)
	router.Post("/spaces", spacesHandler.PostSpace)
	router.Get("/spaces", spacesHandler.GetSpaces)
	router.Put("/spaces/:spaceId",
		auth.RequirePermission(permRepo, fiber.MethodPut, "w"), spacesHandler.PutSpace)
	router.Delete("/spaces/:spaceId",
		auth.RequirePermission(permRepo, fiber.MethodDelete, "d"), spacesHandler.DeleteSpace)
	router.Post("/spaces/:spaceId/messages",
		auth.RequirePermission(permRepo, fiber.MethodPost, "w"), messagesHandler.PostMessage)
	router.Get("/spaces/:spaceId/messages",
		auth.RequirePermission(permRepo, fiber.MethodGet, "r"), messagesHandler.GetMessages)
	router.Get("/spaces/:spaceId/messages/:messageId",
		auth.RequirePermission(permRepo, fiber.MethodGet, "r"), messagesHandler.GetMessage)
	router.Delete("/spaces/:spaceId/messages/:messageId",
		auth.RequirePermission(permRepo, fiber.MethodDelete, "d"), messagesHandler.DeleteMessage)
}

func run(ctx *cli.Context) error {
	config, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(config.Debug || ctx.IsSet(debugFlag.Name))

	globalVars := fiber.Map{
		"siteName": config.SiteName,
		"baseURL":  config.BaseURL,
	}
	if err := render.Initialize(globalVars, config.TemplateDir); err != nil {
		slog.Error("Failed to load templates", "error", err)
		return err
	}

	db := mustInitDatabase(config.MySQL)

	var (
		redisStorage   *redis.Storage
		revokedStorage store.Storage
	)
	if config.Redis.URL != "" {
		redisStorage = mustInitRedisStorage(config.Redis)
		revokedStorage = store.NewRedisStorage(redisStorage.Conn())
	} else {
		revokedStorage = store.NewMemoryStorage()
	}
	rateLimitStorage := mustInitRateLimitStorage(config.RateLimit, redisStorage)

	// repositories
	var (
		eventRepo   = mustInitEventRepository(config.Audit, db)
		userRepo    = users.NewUserRepository(db)
		permRepo    = auth.NewPermissionRepository(db)
		spaceRepo   = spaces.NewSpaceRepository(db)
		messageRepo = messages.NewMessageRepository(db)
	)

	revokedTokens := store.New[token.RevokedToken](revokedStorage, params.RevokedTokenKeyPrefix)

	// services
	var (
		allocator      = audit.NewAllocator(eventRepo)
		recorder       = audit.NewRecorder(eventRepo)
		auditService   = audit.NewService(eventRepo)
		userService    = users.NewUserService(userRepo, permRepo, config.Auth.BcryptCost)
		tokenService   = token.NewService(mustInitJWTSecret(config.Auth), config.Auth.TokenTTL, revokedTokens)
		spaceService   = spaces.NewSpaceService(config.BaseURL, spaceRepo, permRepo)
		messageService = messages.NewMessageService(messageRepo)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.ErrorHandler,
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(config.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupAPIRoutes(
		router,
		config.RateLimit,
		rateLimitStorage,
		allocator,
		recorder,
		auditService,
		permRepo,
		userService,
		tokenService,
		spaceService,
		messageService,
	)

	if redisStorage != nil {
		go startHealthCheckServer(params.HealthCheckServerAddr, redisStorage.Conn(), db)
	} else {
		go startHealthCheckServer(params.HealthCheckServerAddr, nil, db)
	}
	return router.Listen(config.ListenAddr)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
