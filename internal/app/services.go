package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/mindcheck-backend/internal/clients/redis"
	"github.com/yungbote/mindcheck-backend/internal/engine"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
	"github.com/yungbote/mindcheck-backend/internal/services"
)

type Services struct {
	Engine        *engine.Engine
	Auth          services.AuthService
	KBCache       services.KnowledgeBaseCache
	KnowledgeBase services.KnowledgeBaseService
	Consultation  services.ConsultationService
	SessionLocker services.SessionLocker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	eng := engine.New(cfg.Policy)
	p := eng.Policy()
	log.Info("Consultation policy",
		"firing_threshold", p.FiringThreshold,
		"finalize_threshold", p.FinalizeThreshold,
		"min_questions", p.MinQuestions,
		"discrimination_margin", p.DiscriminationMargin,
	)

	var locker services.SessionLocker
	if clients.Redis != nil {
		locker = redis.NewSessionLocker(log, clients.Redis, cfg.SessionLockTTL)
	} else {
		log.Warn("REDIS_ADDR not set, consultation locks are process-local")
		locker = services.NewLocalSessionLocker()
	}

	cache := services.NewKnowledgeBaseCache(log, repos.Symptom, repos.Disorder, repos.Rule, cfg.KBCacheTTL)

	return Services{
		Engine:        eng,
		Auth:          services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		KBCache:       cache,
		KnowledgeBase: services.NewKnowledgeBaseService(db, log, repos.Symptom, repos.Disorder, repos.Rule, repos.Answer, repos.Diagnosis, cache, eng),
		Consultation: services.NewConsultationService(db, log, eng, cache, locker, cfg.SessionLockTTL,
			repos.Consultation, repos.Answer, repos.Diagnosis, repos.Symptom),
		SessionLocker: locker,
	}
}
