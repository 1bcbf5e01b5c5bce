package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairjudge_backend/internal/config"
	"pairjudge_backend/internal/controller"
	"pairjudge_backend/internal/repository"
	"pairjudge_backend/internal/service"
	"pairjudge_backend/internal/util"
	"pairjudge_backend/pkg/configwatcher"
	"pairjudge_backend/pkg/database"
	"pairjudge_backend/pkg/logger"
	"pairjudge_backend/pkg/monitoring"
	"pairjudge_backend/pkg/security"
	"pairjudge_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user          *repository.UserRepository
	questionnaire *repository.QuestionnaireRepository
	question      *repository.QuestionRepository
	dimension     *repository.DimensionRepository
	response      *repository.ResponseRepository
	draft         *repository.DraftRepository
	analytics     *repository.AnalyticsRepository
}

type services struct {
	auth          *service.AuthService
	user          *service.UserService
	captcha       *service.CaptchaService
	storage       *service.StorageService
	questionnaire *service.QuestionnaireService
	draft         *service.DraftService
	tracking      *service.TrackingService
	response      *service.ResponseService
	analytics     *service.AnalyticsService
	export        *service.ExportService
}

type controllers struct {
	auth          *controller.AuthController
	user          *controller.UserController
	questionnaire *controller.QuestionnaireController
	tracking      *controller.TrackingController
	response      *controller.ResponseController
	analytics     *controller.AnalyticsController
	health        *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:          repository.NewUserRepository(db),
		questionnaire: repository.NewQuestionnaireRepository(db),
		question:      repository.NewQuestionRepository(db),
		dimension:     repository.NewDimensionRepository(db),
		response:      repository.NewResponseRepository(db),
		draft:         repository.NewDraftRepository(db),
		analytics:     repository.NewAnalyticsRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.captcha = service.NewCaptchaService(rdb, cfg)
	s.questionnaire = service.NewQuestionnaireService(repos.questionnaire, repos.question, repos.response)
	s.draft = service.NewDraftService(repos.draft)
	s.tracking = service.NewTrackingService(repos.question, repos.questionnaire, repos.dimension, repos.response, s.draft, cfg)
	s.response = service.NewResponseService(repos.response, repos.question, repos.questionnaire, s.tracking, s.captcha)
	s.analytics = service.NewAnalyticsService(repos.analytics, repos.questionnaire, repos.question, repos.dimension)
	s.export = service.NewExportService(repos.response, repos.questionnaire, repos.dimension)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth, s.captcha, a.Config.Server.Mode == "release"),
		user:          controller.NewUserController(s.user),
		questionnaire: controller.NewQuestionnaireController(s.questionnaire, s.storage, s.export),
		tracking:      controller.NewTrackingController(s.tracking),
		response:      controller.NewResponseController(s.response, s.draft, s.captcha),
		analytics:     controller.NewAnalyticsController(s.analytics),
		health:        controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("pairjudge-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 配置文件热更新：标注流程参数改动无需重启即可生效
	err := configwatcher.Watch("configs/config.yaml", func(cfg *config.Config) {
		a.services.tracking.ApplySurveyConfig(cfg.Survey)
		logger.Log.Info("Config reloaded, survey parameters applied")
	})
	if err != nil {
		logger.Log.Warn("Config hot reload unavailable", zap.Error(err))
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 结算所有进行中的答题会话并保存草稿
	if a.services != nil && a.services.tracking != nil {
		a.services.tracking.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
