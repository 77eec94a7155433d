package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	rosterModel "lw-rpg-backend/internal/domains/roster/model"
	"lw-rpg-backend/pkg/cache"
)

const latestCacheKey = "roster:snapshot:latest"

// CachedRepository: read-through cache cho LoadLatest.
// Lỗi cache chỉ được log, không làm fail request.
type CachedRepository struct {
	next  Repository
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedRepository(next Repository, c cache.Cache, ttl time.Duration) *CachedRepository {
	return &CachedRepository{next: next, cache: c, ttl: ttl}
}

func (r *CachedRepository) Save(ctx context.Context, s rosterModel.Snapshot) error {
	if err := r.next.Save(ctx, s); err != nil {
		return err
	}
	if err := r.cache.Set(ctx, latestCacheKey, s, r.ttl); err != nil {
		log.Warn().Err(err).Msg("roster cache: set latest failed")
		r.invalidate(ctx)
	}
	return nil
}

func (r *CachedRepository) LoadLatest(ctx context.Context) (*rosterModel.Snapshot, error) {
	var cached rosterModel.Snapshot
	found, err := r.cache.Get(ctx, latestCacheKey, &cached)
	if err != nil {
		log.Warn().Err(err).Msg("roster cache: get latest failed")
	}
	if found {
		return &cached, nil
	}

	s, err := r.next.LoadLatest(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, latestCacheKey, s, r.ttl); err != nil {
		log.Warn().Err(err).Msg("roster cache: set latest failed")
	}
	return s, nil
}

func (r *CachedRepository) Prune(ctx context.Context, keep int) (int, error) {
	return r.next.Prune(ctx, keep)
}

func (r *CachedRepository) invalidate(ctx context.Context) {
	if err := r.cache.Delete(ctx, latestCacheKey); err != nil {
		log.Warn().Err(err).Msg("roster cache: invalidate failed")
	}
}
