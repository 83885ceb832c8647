package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"user-fixture-service/internal/adapter/repository/memory"
	"user-fixture-service/internal/config"
	"user-fixture-service/internal/usecase/user"
	apperrors "user-fixture-service/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newSeeder(t *testing.T) (*Seeder, *memory.UserStore) {
	log := zaptest.NewLogger(t)
	store := memory.NewUserStore(log)
	return NewSeeder(user.New(store, config.NewLoader(""), log), log), store
}

func TestDecode(t *testing.T) {
	f, err := Decode(strings.NewReader(`
users:
  - id: 1
    name: Alice
    email: alice@example.com
  - id: 2
    name: Bob
`))
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob"},
	}, f.Users)

	f, err = Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Users)

	_, err = Decode(strings.NewReader("users:\n  - id: 1\n    nickname: x\n"))
	assert.Error(t, err)
}

func TestSeeder_Run(t *testing.T) {
	s, store := newSeeder(t)
	path := writeSeed(t, "users:\n  - id: 1\n    name: Alice\n  - id: 1\n    name: Alicia\n")

	added, err := s.Run(context.Background(), true, path)
	require.NoError(t, err)
	assert.Equal(t, 3, added)
	assert.Equal(t, 3, store.Len())

	admin, err := store.FindByID(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Name)

	// Duplicate ids keep file order; the first wins.
	first, err := store.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", first.Name)
}

func TestSeeder_AdminOnly(t *testing.T) {
	s, store := newSeeder(t)

	added, err := s.Run(context.Background(), true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, store.Len())
}

func TestSeeder_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		s, _ := newSeeder(t)
		_, err := s.Run(context.Background(), false, filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid record stops the run", func(t *testing.T) {
		s, store := newSeeder(t)
		path := writeSeed(t, "users:\n  - id: 1\n    name: Alice\n  - id: 2\n    name: Bob\n    email: not-an-email\n  - id: 3\n    name: Carol\n")

		added, err := s.Run(context.Background(), false, path)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, 1, added)
		assert.Equal(t, 1, store.Len())
	})
}
