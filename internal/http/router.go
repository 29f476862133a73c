package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/mindcheck-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mindcheck-backend/internal/http/middleware"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	ConsultationHandler *httpH.ConsultationHandler
	AdminHandler        *httpH.AdminHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Consultations
		if cfg.ConsultationHandler != nil {
			protected.POST("/consultations", cfg.ConsultationHandler.Start)
			protected.GET("/consultations", cfg.ConsultationHandler.List)
			protected.GET("/consultations/:id/next-question", cfg.ConsultationHandler.NextQuestion)
			protected.POST("/consultations/:id/answers", cfg.ConsultationHandler.SubmitAnswer)
			protected.POST("/consultations/:id/abandon", cfg.ConsultationHandler.Abandon)
			protected.GET("/consultations/:id/summary", cfg.ConsultationHandler.Summary)
			protected.GET("/diagnoses", cfg.ConsultationHandler.ListDiagnoses)
		}
	}

	admin := protected.Group("/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	{
		if cfg.AdminHandler != nil {
			admin.GET("/symptoms", cfg.AdminHandler.ListSymptoms)
			admin.POST("/symptoms", cfg.AdminHandler.CreateSymptom)
			admin.PUT("/symptoms/:id", cfg.AdminHandler.UpdateSymptom)
			admin.DELETE("/symptoms/:id", cfg.AdminHandler.DeleteSymptom)

			admin.GET("/disorders", cfg.AdminHandler.ListDisorders)
			admin.POST("/disorders", cfg.AdminHandler.CreateDisorder)
			admin.PUT("/disorders/:id", cfg.AdminHandler.UpdateDisorder)
			admin.DELETE("/disorders/:id", cfg.AdminHandler.DeleteDisorder)

			admin.GET("/rules", cfg.AdminHandler.ListRules)
			admin.POST("/rules", cfg.AdminHandler.CreateRule)
			admin.GET("/rules/:id", cfg.AdminHandler.GetRule)
			admin.PUT("/rules/:id", cfg.AdminHandler.UpdateRule)
			admin.DELETE("/rules/:id", cfg.AdminHandler.DeleteRule)
			admin.POST("/rules/:id/test", cfg.AdminHandler.TestRule)

			admin.GET("/categories", cfg.AdminHandler.Categories)
		}
	}

	return r
}
