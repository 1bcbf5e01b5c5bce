package app

import (
	"pairjudge_backend/docs"
	"pairjudge_backend/internal/config"
	"pairjudge_backend/internal/middleware"
	"pairjudge_backend/internal/model"
	"pairjudge_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)

		captcha := public.Group("/auth/captcha")
		{
			captcha.POST("/verify", c.auth.VerifyCaptcha)
			captcha.GET("/check-skip", c.auth.CheckCaptchaSkip)
		}
	}

	// 标注端接口
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.GET("/questionnaires", c.questionnaire.ListForAnnotator)
		authGroup.GET("/questionnaires/:id/questions", c.questionnaire.QuestionsForAnnotator)
		authGroup.GET("/drafts", c.response.MyDrafts)

		question := authGroup.Group("/questions/:questionId")
		{
			question.POST("/session", c.tracking.StartSession)
			question.DELETE("/session", c.tracking.EndSession)
			question.POST("/events", c.tracking.ReportEvent)
			question.POST("/verification", c.tracking.SetVerificationCode)
			question.PUT("/judgments", c.tracking.SetJudgment)
			question.PUT("/overall-winner", c.tracking.SetOverallWinner)
			question.GET("/eligibility", c.tracking.GetEligibility)
			question.GET("/visits/:linkId", c.tracking.GetVisitStatus)
			question.POST("/submit", c.response.Submit)
			question.GET("/response", c.response.MyResponse)
		}
	}

	// 管理端接口
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/annotators", c.user.ListAnnotators)
		admin.PUT("/annotators/:id/disabled", c.user.SetDisabled)

		admin.POST("/questionnaires", c.questionnaire.Create)
		admin.GET("/questionnaires", c.questionnaire.List)
		admin.GET("/questionnaires/:id", c.questionnaire.Get)
		admin.PUT("/questionnaires/:id", c.questionnaire.Update)
		admin.PUT("/questionnaires/:id/status", c.questionnaire.SetStatus)
		admin.DELETE("/questionnaires/:id", c.questionnaire.Delete)
		admin.POST("/questionnaires/:id/questions", c.questionnaire.AddQuestion)
		admin.GET("/questionnaires/:id/export", c.questionnaire.Export)

		admin.PUT("/questions/:questionId", c.questionnaire.UpdateQuestion)
		admin.DELETE("/questions/:questionId", c.questionnaire.DeleteQuestion)
		admin.POST("/questions/:questionId/screenshot", c.questionnaire.UploadScreenshot)

		admin.GET("/questionnaires/:id/analytics/overview", c.analytics.Overview)
		admin.GET("/questionnaires/:id/analytics/winners", c.analytics.WinnerShares)
		admin.GET("/questionnaires/:id/analytics/annotators", c.analytics.AnnotatorQuality)
		admin.GET("/questionnaires/:id/analytics/durations", c.analytics.DurationHistogram)
		admin.GET("/questions/:questionId/analytics/dimensions", c.analytics.DimensionBreakdown)
	}
}
