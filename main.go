package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/edustack/campusaudit/internal/audit"
	"github.com/edustack/campusaudit/internal/auth"
	"github.com/edustack/campusaudit/internal/common"
	"github.com/edustack/campusaudit/internal/config"
	"github.com/edustack/campusaudit/internal/handlers/api"
	"github.com/edustack/campusaudit/internal/mail"
	"github.com/edustack/campusaudit/internal/middlewares"
	"github.com/edustack/campusaudit/internal/store"
	"github.com/edustack/campusaudit/internal/students"
	"github.com/edustack/campusaudit/model"
	"github.com/edustack/campusaudit/params"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage/redis/v3"
	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/postgres"
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
	retentionDaysFlag = &cli.IntFlag{
		Name:  "retention-days",
		Usage: "Delete audit events older than this many days (floor 30)",
		Value: params.RetentionFloorDays,
	}
	usernameFlag = &cli.StringFlag{
		Name:     "username",
		Required: true,
	}
	passwordFlag = &cli.StringFlag{
		Name:     "password",
		Required: true,
	}
	rolesFlag = &cli.StringFlag{
		Name:  "roles",
		Usage: "Comma-joined role list",
		Value: auth.RoleStaff,
	}
)

func init() {
	app = cli.NewApp()
	app.EnableBashCompletion = true
	app.Usage = "campusaudit - audit event recorder for the student management system"
	app.Flags = []cli.Flag{
		configFileFlag,
		debugFlag,
	}
	app.Commands = []*cli.Command{
		{
			Name: "version",
			Action: func(ctx *cli.Context) error {
				fmt.Println(versionWithCommit(gitCommit, gitDate))
				return nil
			},
		},
		{
			Name:   "cleanup",
			Usage:  "Run retention cleanup once and exit",
			Flags:  []cli.Flag{retentionDaysFlag},
			Action: runCleanup,
		},
		{
			Name:   "useradd",
			Usage:  "Create an admin API user",
			Flags:  []cli.Flag{usernameFlag, passwordFlag, rolesFlag},
			Action: runUserAdd,
		},
	}
	app.Action = run
}

func versionWithCommit(commit string, date string) string {
	version := params.DefaultAppVersion
	if commit != "" {
		version += "-" + commit
	}
	if date != "" {
		version += " (" + date + ")"
	}
	return version
}

func mustInitLogger(debug bool) {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

func mustInitDatabase(dbConfig config.PostgresConfig) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dbConfig.Dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   dbConfig.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if len(dbConfig.ReplicaDsns) > 0 {
		var replicas []gorm.Dialector
		for _, dsn := range dbConfig.ReplicaDsns {
			replicas = append(replicas, postgres.Open(dsn))
		}
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			slog.Error("Failed to register read replicas", "error", err)
			os.Exit(1)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("Failed to access connection pool", "error", err)
		os.Exit(1)
	}
	if dbConfig.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	}
	if dbConfig.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
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

func mustInitAlerter(alertCfg config.AlertConfig) audit.Alerter {
	if !alertCfg.Enabled {
		return nil
	}
	sender, err := mail.NewSMTPMailSender(alertCfg.SMTP, alertCfg.SMTP.From)
	if err != nil {
		slog.Error("Failed to initialize alert mail sender", "error", err)
		os.Exit(1)
	}
	return mail.NewRiskAlerter(sender, alertCfg.Recipients)
}

func setupAPIRoutes(
	router fiber.Router,
	authService *auth.AuthService,
	recorder *audit.Recorder,
	queryService *audit.QueryService,
	studentService *students.StudentService) {

	// handlers
	var (
		authHandler    = api.NewAuthHandler(authService, recorder)
		auditHandler   = api.NewAuditHandler(queryService)
		studentHandler = api.NewStudentHandler(studentService)
	)

	apiv1 := router.Group("/api/v1")
	apiv1.Post("/auth/login", authHandler.PostLogin)

	auditGroup := apiv1.Group("/audit", middlewares.RequireRole(authService, auth.RoleSuperAdmin))
	auditGroup.Get("/events", auditHandler.GetEvents)
	auditGroup.Get("/summary", auditHandler.GetSummary)
	auditGroup.Get("/users/:userId", auditHandler.GetUserHistory)
	auditGroup.Post("/cleanup", auditHandler.PostCleanup)
	auditGroup.Get("/export", auditHandler.GetExport)

	studentGroup := apiv1.Group("/students", middlewares.RequireRole(authService, auth.RoleStaff))
	studentGroup.Post("/", studentHandler.PostStudent)
	studentGroup.Post("/import", studentHandler.PostImport)
	studentGroup.Get("/:id", studentHandler.GetStudent)
	studentGroup.Delete("/:id", studentHandler.DeleteStudent)
}

func run(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}

	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.Postgres)

	var cacheStorage store.Storage
	var redisStorage *redis.Storage
	if cfg.Redis.URL != "" {
		redisStorage = mustInitRedisStorage(cfg.Redis)
		cacheStorage = store.NewRedisStorage(redisStorage.Conn())
	} else {
		cacheStorage = store.NewMemoryStorage()
	}

	// repositories
	var (
		auditRepo = audit.NewAuditEventRepository(db)
		userRepo  = auth.NewAdminUserRepository(db)
		stuRepo   = students.NewStudentRepository(db)
	)

	// services
	var (
		alerter        = mustInitAlerter(cfg.Alert)
		recorder       = audit.NewRecorder(auditRepo, cfg.ServerName, cfg.AppVersion, alerter)
		summaryCache   = store.New[audit.SummaryStats](cacheStorage, params.SummaryCacheKeyPrefix)
		queryService   = audit.NewQueryService(auditRepo, recorder, summaryCache)
		authService    = auth.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		studentService = students.NewStudentService(db, stuRepo, recorder)
	)

	router := fiber.New(fiber.Config{
		Prefork:       false,
		CaseSensitive: true,
		BodyLimit:     params.ServerBodyLimit,
		IdleTimeout:   params.ServerIdleTimeout,
		ReadTimeout:   params.ServerReadTimeout,
		WriteTimeout:  params.ServerWriteTimeout,
		ErrorHandler:  middlewares.NewErrorHandler(cfg.Debug),
	})

	router.Use(recover.New())
	router.Use(logger.New())
	router.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	setupAPIRoutes(router, authService, recorder, queryService, studentService)

	healthCheckCtx, term := context.WithCancel(ctx.Context)
	done := make(chan struct{})
	var rdb goredis.UniversalClient
	if redisStorage != nil {
		rdb = redisStorage.Conn()
	}
	go common.StartHealthCheckServer(healthCheckCtx, done, rdb, db)
	defer func() {
		term()
		<-done
	}()
	return router.Listen(cfg.ListenAddr)
}

func runCleanup(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}
	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.Postgres)
	auditRepo := audit.NewAuditEventRepository(db)
	recorder := audit.NewRecorder(auditRepo, cfg.ServerName, cfg.AppVersion, nil)
	queryService := audit.NewQueryService(auditRepo, recorder, nil)

	deleted, err := queryService.Cleanup(ctx.Context, ctx.Int(retentionDaysFlag.Name), "cli", nil)
	if err != nil {
		return err
	}
	fmt.Printf("Deleted %d audit events\n", deleted)
	return nil
}

func runUserAdd(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFileFlag.Name))
	if err != nil {
		slog.Error("Could not load config file.", "error", err)
		return err
	}
	mustInitLogger(cfg.Debug || ctx.IsSet(debugFlag.Name))

	db := mustInitDatabase(cfg.Postgres)
	authService := auth.NewAuthService(auth.NewAdminUserRepository(db), cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	roles := strings.Split(ctx.String(rolesFlag.Name), ",")
	user, err := authService.CreateUser(ctx.Context, ctx.String(usernameFlag.Name), ctx.String(passwordFlag.Name), roles)
	if err != nil {
		return err
	}
	fmt.Printf("Created admin user %s with roles %s\n", user.Username, user.Roles)
	return nil
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
