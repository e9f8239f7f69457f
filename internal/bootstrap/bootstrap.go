package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/jobboard/internal/app/auth"
	appControllers "github.com/yigit/jobboard/internal/app/controllers"
	appMigrations "github.com/yigit/jobboard/internal/app/migrations"
	appRepos "github.com/yigit/jobboard/internal/app/repositories"
	appRoutes "github.com/yigit/jobboard/internal/app/routes"
	appServices "github.com/yigit/jobboard/internal/app/services"
	"github.com/yigit/jobboard/internal/config"
	"github.com/yigit/jobboard/internal/db"
	appMiddleware "github.com/yigit/jobboard/internal/middleware"
	pkgAuth "github.com/yigit/jobboard/internal/pkg/auth"
	"github.com/yigit/jobboard/internal/pkg/email"
	"github.com/yigit/jobboard/internal/pkg/logger"
	"github.com/yigit/jobboard/internal/pkg/oauth"
	"github.com/yigit/jobboard/internal/pkg/ratelimit"
	"github.com/yigit/jobboard/internal/pkg/realtime"
	"github.com/yigit/jobboard/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	Hasher         pkgAuth.PasswordHasher
	AuthzService   *appAuth.AuthorizationService
	AuthMiddleware *appMiddleware.AuthMiddleware
	AuthLimiter    *ratelimit.Limiter // requests per client IP on the auth routes
	LoginFailures  *ratelimit.Limiter // wrong passwords per client IP and email

	Hub    *realtime.Hub
	Broker *realtime.RedisBroker // nil without Redis

	AuthService         appServices.AuthService
	JobService          appServices.JobService
	ApprovalService     appServices.ApprovalService
	ApplicationService  appServices.ApplicationService
	NotificationService appServices.NotificationService
	AdminService        appServices.AdminService

	Controllers appRoutes.Controllers
	Logger      zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Strs("envOverrides", cfg.EnvOverrides).
		Msg("Configuration loaded")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// SetupRedis connects to Redis when enabled. A nil client means realtime
// delivery stays in-process and auth rate limiting is off.
func SetupRedis(cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled; using in-process notification delivery")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established")
	return rdb, nil
}

func oauthProviders(cfg *config.Config) []oauth.Provider {
	google := cfg.GoogleClient()
	linkedin := cfg.LinkedInClient()
	client := oauth.WithHTTPClient(&http.Client{Timeout: 10 * time.Second})
	return []oauth.Provider{
		oauth.NewGoogleProvider(oauth.ClientConfig{
			ClientID:     google.ClientID,
			ClientSecret: google.ClientSecret,
			RedirectURL:  google.RedirectURL,
		}, client),
		oauth.NewLinkedInProvider(oauth.ClientConfig{
			ClientID:     linkedin.ClientID,
			ClientSecret: linkedin.ClientSecret,
			RedirectURL:  linkedin.RedirectURL,
		}, client),
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
// rdb may be nil.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, rdb *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	tokenTTL, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		return nil, fmt.Errorf("invalid jwt expiration: %w", err)
	}
	authWindow, err := time.ParseDuration(cfg.RateLimit.AuthWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit window: %w", err)
	}
	smtpTimeout, err := time.ParseDuration(cfg.SMTP.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp timeout: %w", err)
	}

	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenTTL:    tokenTTL,
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.Hasher = pkgAuth.NewBcryptHasher(pkgAuth.BcryptCost)
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.JobRepository)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.AuthLimiter = ratelimit.New(rdb, "auth", cfg.RateLimit.AuthMaxAttempts, authWindow)
	deps.LoginFailures = ratelimit.New(rdb, "login_failures", cfg.RateLimit.LoginMaxFailures, authWindow)

	deps.Hub = realtime.NewHub(logger.Component(lgr, "realtime"))
	var publisher realtime.Publisher = deps.Hub
	if rdb != nil {
		deps.Broker = realtime.NewRedisBroker(rdb, deps.Hub, logger.Component(lgr, "broker"))
		publisher = deps.Broker
	}

	mailer := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.SMTP.BaseURL,
		Timeout:   smtpTimeout,
	}, lgr)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.JWTService,
		deps.Hasher,
		mailer,
		oauthProviders(cfg),
		lgr,
	)
	deps.JobService = appServices.NewJobService(deps.Repos.JobRepository, deps.AuthzService, lgr)
	deps.ApprovalService = appServices.NewApprovalService(
		deps.Repos.JobRepository,
		deps.Repos.UserRepository,
		deps.Repos.NotificationRepository,
		deps.AuthzService,
		publisher,
		mailer,
		lgr,
	)
	deps.ApplicationService = appServices.NewApplicationService(
		deps.Repos.ApplicationRepository,
		deps.Repos.JobRepository,
		deps.AuthzService,
		lgr,
	)
	deps.NotificationService = appServices.NewNotificationService(deps.Repos.NotificationRepository, lgr)
	deps.AdminService = appServices.NewAdminService(
		deps.Repos.UserRepository,
		deps.Repos.JobRepository,
		deps.Repos.ApplicationRepository,
		deps.AuthzService,
		lgr,
	)

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, deps.LoginFailures, lgr),
		Jobs:         appControllers.NewJobController(deps.JobService, lgr),
		Approvals:    appControllers.NewApprovalController(deps.ApprovalService),
		Applications: appControllers.NewApplicationController(deps.ApplicationService),
		Notify:       appControllers.NewNotificationController(deps.NotificationService),
		Admin:        appControllers.NewAdminController(deps.AdminService, lgr),
		Realtime:     appControllers.NewRealtimeController(deps.Hub, cfg.Origins(), lgr),
	}

	return deps, nil
}

// SeedDefaultData creates the default admin. Failures are logged and startup continues.
func SeedDefaultData(cfg *config.Config, deps *Dependencies) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	admin := seed.AdminAccount{
		Email:    cfg.Seed.AdminEmail,
		Password: cfg.Seed.AdminPassword,
		Name:     cfg.Seed.AdminName,
	}
	if err := seed.CreateDefaultData(ctx, deps.Repos.UserRepository, deps.Hasher, admin, deps.Logger); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	requestTimeout, _ := time.ParseDuration(cfg.Server.RequestTimeout)

	router := gin.New()
	router.Use(
		appMiddleware.RequestLogger(),
		appMiddleware.Recovery(),
		appMiddleware.CORS(cfg.Origins()),
		appMiddleware.Timeout(requestTimeout),
	)

	appRoutes.RegisterValidator()
	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.AuthLimiter)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
