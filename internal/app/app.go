package app

import (
	"context"
	"learnly_backend/internal/config"
	"learnly_backend/internal/controller"
	"learnly_backend/internal/repository"
	"learnly_backend/internal/service"
	"learnly_backend/pkg/database"
	"learnly_backend/pkg/logger"
	"learnly_backend/pkg/monitoring"
	"learnly_backend/pkg/security"
	"learnly_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	profile    *repository.ProfileRepository
	course     *repository.CourseRepository
	unit       *repository.UnitRepository
	enrollment *repository.EnrollmentRepository
	question   *repository.QuestionRepository
	placement  *repository.PlacementRepository
	competence *repository.CompetenceRepository
	plan       *repository.PlanRepository
	task       *repository.TaskRepository
}

type services struct {
	auth        *service.AuthService
	user        *service.UserService
	course      *service.CourseService
	progression *service.ProgressionService
	plan        *service.PlanService
	competence  *service.CompetenceService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	course     *controller.CourseController
	plan       *controller.PlanController
	competence *controller.CompetenceController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		profile:    repository.NewProfileRepository(db),
		course:     repository.NewCourseRepository(db),
		unit:       repository.NewUnitRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		question:   repository.NewQuestionRepository(db),
		placement:  repository.NewPlacementRepository(db),
		competence: repository.NewCompetenceRepository(db),
		plan:       repository.NewPlanRepository(db),
		task:       repository.NewTaskRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	generator := service.NewAIService(cfg.AI)

	s.auth = service.NewAuthService(repos.user, repos.profile, cfg)
	s.user = service.NewUserService(repos.user, repos.profile)
	s.course = service.NewCourseService(repos.course, repos.unit)
	s.progression = service.NewProgressionService(
		repos.course,
		repos.unit,
		repos.enrollment,
		repos.question,
		repos.placement,
		repos.profile,
		repos.plan,
		repos.task,
		generator,
		rdb,
	)
	s.plan = service.NewPlanService(db, repos.plan, repos.task, repos.course, repos.unit, repos.enrollment, s.progression)
	s.competence = service.NewCompetenceService(repos.competence, repos.profile, generator)

	return s
}

func (a *App) initControllers(s *services, repos *repositories, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		course:     controller.NewCourseController(s.course, s.progression, repos.user),
		plan:       controller.NewPlanController(s.plan),
		competence: controller.NewCompetenceController(s.competence),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 10000
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, repos, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("learnly-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
