package cached

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-fixture-service/internal/adapter/cache"
	domain "user-fixture-service/internal/domain/user"
	"user-fixture-service/internal/usecase/user"
)

// UserStore implements user.Repository with cache-aside lookups.
// Records are append-only and the first match for an ID never changes once
// it exists, so a cached hit always equals what the backing store returns.
// Misses are never cached.
type UserStore struct {
	backing user.Repository
	cache   cache.UserCache
	log     *zap.Logger
	group   singleflight.Group
}

// NewUserStore wraps backing with cache. A nil cache disables caching.
func NewUserStore(backing user.Repository, cache cache.UserCache, log *zap.Logger) *UserStore {
	return &UserStore{
		backing: backing,
		cache:   cache,
		log:     log,
	}
}

// Add delegates to the backing store.
func (s *UserStore) Add(ctx context.Context, u *domain.User) error {
	return s.backing.Add(ctx, u)
}

// FindByID checks the cache first and collapses concurrent misses for the
// same ID into a single backing lookup. A caller whose ctx ends stops waiting
// without cancelling the shared lookup.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if s.cache != nil {
		cachedUser, err := s.cache.Get(ctx, id)
		if err != nil {
			s.log.Warn("cache get error, falling back to store", zap.Int64("id", id), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	key := fmt.Sprintf("user:%d", id)
	ch := s.group.DoChan(key, func() (any, error) {
		// Shared by every waiter, so one caller giving up must not fail the rest.
		loadCtx := context.WithoutCancel(ctx)

		u, err := s.backing.FindByID(loadCtx, id)
		if err != nil {
			return nil, err
		}

		if s.cache != nil {
			if err := s.cache.Set(loadCtx, u); err != nil {
				s.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
		}
		return u, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	u := *res.Val.(*domain.User)
	if res.Shared {
		s.log.Debug("user lookup shared with concurrent caller", zap.Int64("id", id))
	}
	return &u, nil
}

// List delegates to the backing store.
func (s *UserStore) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	return s.backing.List(ctx, query, page, limit)
}
