package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "user-fixture-service/internal/domain/user"
	apperrors "user-fixture-service/pkg/errors"
	"user-fixture-service/pkg/textutil"
)

// UserStore keeps user records in insertion order in memory.
// Records are appended and never removed or mutated. Lookups scan the
// sequence front to back, so the first record added with a given ID wins.
type UserStore struct {
	mu         sync.RWMutex
	users      []domain.User
	generation string
	log        *zap.Logger
}

// NewUserStore creates an empty store.
func NewUserStore(log *zap.Logger) *UserStore {
	return &UserStore{generation: uuid.NewString(), log: log}
}

// Generation identifies this store instance. Its contents die with the
// process, so every instance gets a fresh value.
func (s *UserStore) Generation() string {
	return s.generation
}

// Add appends a copy of u. IDs are not checked for uniqueness.
func (s *UserStore) Add(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.users = append(s.users, *u)
	n := len(s.users)
	s.mu.Unlock()

	s.log.Debug("user appended", zap.Int64("id", u.ID), zap.Int("records", n))
	return nil
}

// FindByID returns a copy of the first record with the given ID.
// Absence is reported as *errors.NotFoundError.
func (s *UserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u, nil
		}
	}

	s.log.Debug("user not found", zap.Int64("id", id))
	return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
}

// List returns one page of records whose name or email contains query
// under Unicode case folding, in insertion order, plus the total match count.
func (s *UserStore) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	needle := textutil.FoldCase(query)

	s.mu.RLock()
	matched := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		if needle == "" ||
			strings.Contains(textutil.FoldCase(u.Name), needle) ||
			strings.Contains(textutil.FoldCase(u.Email), needle) {
			matched = append(matched, u)
		}
	}
	s.mu.RUnlock()

	total := int64(len(matched))
	start := domain.Offset(page, limit)
	if start >= total {
		return []domain.User{}, total, nil
	}
	end := total
	if limit > 0 && limit < total-start {
		end = start + limit
	}

	return matched[start:end], total, nil
}

// Len returns the number of stored records.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
