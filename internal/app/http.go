package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/mindcheck-backend/internal/http"
	httpH "github.com/yungbote/mindcheck-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mindcheck-backend/internal/http/middleware"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Consultation *httpH.ConsultationHandler
	Admin        *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(db),
		Consultation: httpH.NewConsultationHandler(services.Consultation),
		Admin:        httpH.NewAdminHandler(services.KnowledgeBase),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *http.Server {
	serviceName := ""
	if cfg.OTel.Enabled {
		serviceName = cfg.OTel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:                 log,
		ServiceName:         serviceName,
		CORSOrigins:         cfg.CORSAllowedOrigins,
		AuthMiddleware:      middleware.Auth,
		ConsultationHandler: handlers.Consultation,
		AdminHandler:        handlers.Admin,
		HealthHandler:       handlers.Health,
	})
}
