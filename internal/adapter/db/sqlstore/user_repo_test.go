package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-fixture-service/internal/domain/user"
	apperrors "user-fixture-service/pkg/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := filepath.Join(t.TempDir(), "users.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func setupRepo(t *testing.T, users ...user.User) *UserRepo {
	repo := NewUserRepo(setupTestDB(t), zaptest.NewLogger(t))
	for i := range users {
		require.NoError(t, repo.Add(context.Background(), &users[i]))
	}
	return repo
}

func TestUserRepo_FindByID(t *testing.T) {
	repo := setupRepo(t,
		user.User{ID: 1, Name: "John Doe", Email: "john@example.com"},
		user.User{ID: 2, Name: "Jane Roe"},
	)

	u, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, user.User{ID: 1, Name: "John Doe", Email: "john@example.com"}, *u)

	u, err = repo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, u.HasEmail())
}

func TestUserRepo_FindByID_NotFound(t *testing.T) {
	repo := setupRepo(t, user.User{ID: 1, Name: "John Doe"})

	u, err := repo.FindByID(context.Background(), 99)
	assert.Nil(t, u)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserRepo_DuplicateIDsReturnFirst(t *testing.T) {
	repo := setupRepo(t,
		user.User{ID: 5, Name: "first"},
		user.User{ID: 5, Name: "second"},
		user.NewAdmin(),
	)

	u, err := repo.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "first", u.Name)

	admin, err := repo.FindByID(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, user.NewAdmin(), *admin)
}

func TestUserRepo_Add_Nil(t *testing.T) {
	repo := setupRepo(t)

	err := repo.Add(context.Background(), nil)
	assert.Error(t, err)
}

func TestUserRepo_List(t *testing.T) {
	repo := setupRepo(t,
		user.User{ID: 3, Name: "Charlie", Email: "charlie@example.com"},
		user.User{ID: 1, Name: "Alice", Email: "alice@example.com"},
		user.User{ID: 2, Name: "Bob_Smith"},
		user.User{ID: 4, Name: "Bobs"},
	)

	tests := []struct {
		name    string
		query   string
		page    int64
		limit   int64
		wantIDs []int64
		total   int64
	}{
		{name: "insertion order", page: 1, limit: 10, wantIDs: []int64{3, 1, 2, 4}, total: 4},
		{name: "paged", page: 2, limit: 2, wantIDs: []int64{2, 4}, total: 4},
		{name: "page beyond int64 offsets", page: 1_000_000_000_000_000_000, limit: 10, wantIDs: []int64{}, total: 4},
		{name: "case-insensitive name", query: "CHAR", page: 1, limit: 10, wantIDs: []int64{3}, total: 1},
		{name: "email fragment", query: "example", page: 1, limit: 10, wantIDs: []int64{3, 1}, total: 2},
		{name: "underscore is literal", query: "b_s", page: 1, limit: 10, wantIDs: []int64{2}, total: 1},
		{name: "no match", query: "zed", page: 1, limit: 10, wantIDs: []int64{}, total: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(context.Background(), tt.query, tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)

			ids := make([]int64, len(users))
			for i, u := range users {
				ids[i] = u.ID
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestUserRepo_Generation(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)

	gen, err := NewUserRepo(db, zaptest.NewLogger(t)).Generation(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, gen)

	again, err := NewUserRepo(db, zaptest.NewLogger(t)).Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen, again)

	other, err := setupRepo(t).Generation(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, gen, other)
}

func TestUserRepo_List_UnicodeCaseFolding(t *testing.T) {
	repo := setupRepo(t,
		user.User{ID: 1, Name: "Élodie Martin", Email: "elodie@example.fr"},
		user.User{ID: 2, Name: "Hans Straße"},
		user.User{ID: 3, Name: "ΣΟΦΙΑ"},
	)

	for query, want := range map[string][]int64{
		"ÉLODIE":  {1},
		"élodie":  {1},
		"STRASSE": {2},
		"σοφια":   {3},
		"elodie":  {1},
	} {
		users, _, err := repo.List(context.Background(), query, 1, 10)
		require.NoError(t, err)
		ids := make([]int64, len(users))
		for i, u := range users {
			ids[i] = u.ID
		}
		assert.Equal(t, want, ids, query)
	}
}

func TestMigrate_BackfillsSearchKeys(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.Create(&UserSchema{UserID: 1, Name: "ÉLODIE", Email: "E@X.IO"}).Error)

	require.NoError(t, Migrate(db))

	var row UserSchema
	require.NoError(t, db.Where("user_id = ?", 1).Take(&row).Error)
	assert.Equal(t, "élodie", row.NameKey)
	assert.Equal(t, "e@x.io", row.EmailKey)

	users, total, err := NewUserRepo(db, zaptest.NewLogger(t)).List(context.Background(), "élodie", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, users, 1)
}
