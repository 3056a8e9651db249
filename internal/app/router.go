package app

import (
	"learnly_backend/docs"
	"learnly_backend/internal/config"
	"learnly_backend/internal/middleware"
	"learnly_backend/internal/model"
	"learnly_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.Health)

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.user.GetProfile)
		authGroup.PUT("/profile", c.user.UpdateProfile)

		// 课程与选课进度
		authGroup.GET("/courses", c.course.ListCourses)
		authGroup.GET("/courses/:id", c.course.GetCourse)
		authGroup.POST("/courses/:id/enroll", c.course.Enroll)
		authGroup.GET("/courses/:id/outline", c.course.Outline)
		authGroup.GET("/courses/:id/next", c.course.NextUnit)
		authGroup.POST("/courses/:id/units/:unitId/quiz", c.course.SubmitQuiz)
		authGroup.GET("/courses/:id/placement", c.course.GetPlacement)
		authGroup.POST("/courses/:id/placement", c.course.SubmitPlacement)
		authGroup.GET("/enrollments", c.course.MyEnrollments)

		// 学科能力测试
		authGroup.GET("/competence/test", c.competence.GetCompetenceTest)
		authGroup.POST("/competence/test", c.competence.SubmitCompetenceTest)

		// 学习计划
		authGroup.POST("/plans", c.plan.GeneratePlan)
		authGroup.GET("/plans/active", c.plan.ActivePlan)
		authGroup.POST("/plans/reschedule", c.plan.Reschedule)
		authGroup.POST("/tasks/:id/complete", c.plan.CompleteTask)
		authGroup.POST("/tasks/:id/skip", c.plan.SkipTask)
	}

	// 管理员接口
	adminGroup := router.Group("/api")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		adminGroup.POST("/courses", c.course.CreateCourse)
		adminGroup.DELETE("/courses/:id", c.course.DeleteCourse)
		adminGroup.GET("/courses/:id/enrollments", c.course.CourseEnrollments)
		adminGroup.POST("/competence/questions", c.competence.GenerateCompetenceQuestions)
	}
}
