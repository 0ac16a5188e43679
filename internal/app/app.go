package app

import (
	"context"
	"course_platform/internal/config"
	"course_platform/internal/controller"
	"course_platform/internal/repository"
	"course_platform/internal/service"
	"course_platform/pkg/database"
	"course_platform/pkg/logger"
	"course_platform/pkg/monitoring"
	"course_platform/pkg/security"
	"course_platform/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	tracerTP *sdktrace.TracerProvider
}

type repositories struct {
	user     *repository.UserRepository
	course   *repository.CourseRepository
	lecture  *repository.LectureRepository
	progress *repository.ProgressRepository
	purchase *repository.PurchaseRepository
	lock     *repository.LockRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	storage    *service.StorageService
	media      *service.MediaService
	course     *service.CourseService
	progress   *service.ProgressService
	purchase   *service.PurchaseService
	enrollment *service.EnrollmentService
	dashboard  *service.DashboardService
	payments   service.PaymentProvider
}

type controllers struct {
	auth     *controller.AuthController
	user     *controller.UserController
	course   *controller.CourseController
	progress *controller.ProgressController
	purchase *controller.PurchaseController
	media    *controller.MediaController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		user:     repository.NewUserRepository(db),
		course:   repository.NewCourseRepository(db),
		lecture:  repository.NewLectureRepository(db),
		progress: repository.NewProgressRepository(db),
		purchase: repository.NewPurchaseRepository(db),
	}
	if rdb != nil {
		repos.lock = repository.NewLockRepository(rdb)
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	storage := service.NewStorageService(cfg)
	payments := service.NewStripeProvider(&cfg.Payment)

	// 接口变量不能直接持有 nil 指针，否则 Locker != nil 判断失效
	var locker service.Locker
	if repos.lock != nil {
		locker = repos.lock
	}

	return &services{
		auth:       service.NewAuthService(repos.user, &cfg.JWT),
		user:       service.NewUserService(repos.user, storage),
		storage:    storage,
		media:      service.NewMediaService(storage),
		course:     service.NewCourseService(repos.course, repos.lecture, storage),
		progress:   service.NewProgressService(repos.course, repos.progress),
		purchase:   service.NewPurchaseService(repos.course, repos.purchase, payments, &cfg.Payment),
		enrollment: service.NewEnrollmentService(repos.purchase, repos.user, repos.course, repos.lecture, locker),
		dashboard:  service.NewDashboardService(repos.course, repos.purchase),
		payments:   payments,
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth, a.Config.JWT.ExpireTime, a.Config.Server.Mode == gin.ReleaseMode),
		user:     controller.NewUserController(s.user),
		course:   controller.NewCourseController(s.course),
		progress: controller.NewProgressController(s.progress),
		purchase: controller.NewPurchaseController(s.purchase, s.enrollment, s.dashboard, s.payments),
		media:    controller.NewMediaController(s.media),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewApp 初始化依赖并装配路由。cfg.MigrateOnly 时只完成迁移
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	// Redis 仅用于回调加锁，未配置或连接失败时不加锁运行
	if cfg.Redis.Host != "" {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, webhook reconciliation runs without lock", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	repos := app.initRepositories(db, app.Redis)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services, db, app.Redis)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerTP = tp
	}

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracerTP != nil {
		if err := a.tracerTP.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
