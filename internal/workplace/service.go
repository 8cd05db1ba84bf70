package workplace

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/nekogravitycat/workplace-booking/internal/cache"
)

type Service interface {
	// List returns the resources of a branch in floor-plan order.
	// An unknown branch yields an empty list rather than an error.
	List(ctx context.Context, branch Branch) ([]Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)

	// SeedCatalogue inserts the demo floor plans of every branch.
	SeedCatalogue(ctx context.Context) error
}

type service struct {
	repo     Repository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewService(repo Repository, c cache.Cache, cacheTTL time.Duration, logger *slog.Logger) Service {
	if c == nil {
		c = cache.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		repo:     repo,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger.With("service", "workplace"),
	}
}

func cacheKey(branch Branch) string {
	return "workplaces:" + string(branch)
}

func (s *service) List(ctx context.Context, branch Branch) ([]Resource, error) {
	if !branch.Valid() {
		return []Resource{}, nil
	}

	key := cacheKey(branch)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached []Resource
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		s.logger.Warn("discarding undecodable cache entry", "key", key)
	} else if !errors.Is(err, cache.ErrMiss) {
		// Cache outages degrade to direct reads.
		s.logger.Warn("workplace cache read failed", "key", key, "error", err)
	}

	list, err := s.repo.ListByBranch(ctx, branch)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(list); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
			s.logger.Warn("workplace cache write failed", "key", key, "error", err)
		}
	}
	return list, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) SeedCatalogue(ctx context.Context) error {
	keys := make([]string, 0, len(Branches))
	for _, b := range Branches {
		n, err := s.repo.Seed(ctx, Catalogue(b))
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info("seeded workplaces", "branch", b, "count", n)
		}
		keys = append(keys, cacheKey(b))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("workplace cache invalidation failed", "error", err)
	}
	return nil
}
