package services

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/mindcheck-backend/internal/data/repos"
	types "github.com/yungbote/mindcheck-backend/internal/domain"
	"github.com/yungbote/mindcheck-backend/internal/engine"
	"github.com/yungbote/mindcheck-backend/internal/platform/dbctx"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
)

// KnowledgeBaseCache serves validated knowledge base snapshots to
// consultations. Snapshots are immutable; admin writes call Invalidate.
type KnowledgeBaseCache interface {
	Snapshot(ctx context.Context) (*engine.KnowledgeBase, error)
	Invalidate()
}

type knowledgeBaseCache struct {
	log          *logger.Logger
	symptomRepo  repos.SymptomRepo
	disorderRepo repos.DisorderRepo
	ruleRepo     repos.RuleRepo
	ttl          time.Duration
	loadTimeout  time.Duration
	now          func() time.Time

	group singleflight.Group

	mu         sync.RWMutex
	snapshot   *engine.KnowledgeBase
	loadedAt   time.Time
	generation uint64
}

// NewKnowledgeBaseCache caches for ttl; ttl <= 0 reloads on every call.
func NewKnowledgeBaseCache(
	log *logger.Logger,
	symptomRepo repos.SymptomRepo,
	disorderRepo repos.DisorderRepo,
	ruleRepo repos.RuleRepo,
	ttl time.Duration,
) KnowledgeBaseCache {
	return &knowledgeBaseCache{
		log:          log.With("service", "KnowledgeBaseCache"),
		symptomRepo:  symptomRepo,
		disorderRepo: disorderRepo,
		ruleRepo:     ruleRepo,
		ttl:          ttl,
		loadTimeout:  15 * time.Second,
		now:          time.Now,
	}
}

func (c *knowledgeBaseCache) Snapshot(ctx context.Context) (*engine.KnowledgeBase, error) {
	c.mu.RLock()
	kb, loadedAt, gen := c.snapshot, c.loadedAt, c.generation
	c.mu.RUnlock()
	if kb != nil && c.ttl > 0 && c.now().Sub(loadedAt) < c.ttl {
		return kb, nil
	}

	// Collapsed callers share one load, so it must not inherit the first
	// caller's cancellation. Each caller still stops waiting on its own ctx.
	ch := c.group.DoChan("kb", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()
		kb, err := c.load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// An Invalidate during the load means kb may predate the write.
		if c.generation == gen {
			c.snapshot = kb
			c.loadedAt = c.now()
		}
		c.mu.Unlock()
		return kb, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*engine.KnowledgeBase), nil
	}
}

func (c *knowledgeBaseCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.generation++
	c.mu.Unlock()
	c.group.Forget("kb")
}

func (c *knowledgeBaseCache) load(ctx context.Context) (*engine.KnowledgeBase, error) {
	var (
		symptoms  []*types.Symptom
		disorders []*types.MentalDisorder
		rules     []*types.DiagnosisRule
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}
	g.Go(func() error {
		var err error
		symptoms, err = c.symptomRepo.List(dbc)
		return err
	})
	g.Go(func() error {
		var err error
		disorders, err = c.disorderRepo.List(dbc)
		return err
	})
	g.Go(func() error {
		var err error
		rules, err = c.ruleRepo.List(dbc, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	kb, err := engine.NewKnowledgeBase(symptoms, disorders, rules)
	if err != nil {
		c.log.Error("knowledge base rejected", "error", err)
		return nil, err
	}
	c.log.Debug("knowledge base loaded", "symptoms", len(symptoms), "disorders", len(disorders), "rules", len(rules))
	return kb, nil
}
