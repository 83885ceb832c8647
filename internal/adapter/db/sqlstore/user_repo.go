package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-fixture-service/internal/domain/user"
	apperrors "user-fixture-service/pkg/errors"
	"user-fixture-service/pkg/security"
	"user-fixture-service/pkg/textutil"
)

// UserRepo persists user records through GORM. It works with any dialector;
// the service ships with PostgreSQL and SQLite.
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents a row of the users table.
// Seq keeps insertion order; UserID may repeat. NameKey and EmailKey hold
// the case-folded name and email that list filters match against, so every
// dialect filters exactly like the in-memory store.
type UserSchema struct {
	Seq      int64  `gorm:"primaryKey;autoIncrement"` // Insertion sequence
	UserID   int64  `gorm:"not null;index"`           // Record identifier, unique by convention only
	Name     string `gorm:"not null"`                 // User's name
	Email    string // Optional contact address, empty when absent
	NameKey  string `gorm:"not null;default:''"`
	EmailKey string `gorm:"not null;default:''"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// StoreMeta holds key/value facts about the database itself.
type StoreMeta struct {
	Name  string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

// TableName specifies the table name for the StoreMeta model.
func (StoreMeta) TableName() string {
	return "store_meta"
}

const generationMeta = "generation"

// Migrate creates or updates the users and store_meta tables and fills the
// search keys of rows written before they existed.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserSchema{}, &StoreMeta{}); err != nil {
		return err
	}

	var stale []UserSchema
	if err := db.Where("name_key = ? AND name <> ?", "", "").Find(&stale).Error; err != nil {
		return fmt.Errorf("failed to find rows without search keys: %w", err)
	}
	for _, m := range stale {
		err := db.Model(&UserSchema{}).Where("seq = ?", m.Seq).Updates(map[string]any{
			"name_key":  textutil.FoldCase(m.Name),
			"email_key": textutil.FoldCase(m.Email),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to backfill search keys: %w", err)
		}
	}
	return nil
}

// Generation returns the identifier of this database, creating it on first
// use. A new database gets a new identifier, while reopening the same one
// returns the stored value.
func (r *UserRepo) Generation(ctx context.Context) (string, error) {
	meta := StoreMeta{Name: generationMeta, Value: uuid.NewString()}
	err := r.db.WithContext(ctx).
		Where(StoreMeta{Name: generationMeta}).
		FirstOrCreate(&meta).Error
	if err != nil {
		r.log.Error("failed to load store generation", zap.Error(err))
		return "", fmt.Errorf("failed to load store generation: %w", err)
	}
	return meta.Value, nil
}

func (m UserSchema) toDomain() user.User {
	return user.User{ID: m.UserID, Name: m.Name, Email: m.Email}
}

// Add inserts a new row. Existing rows with the same UserID are left alone.
func (r *UserRepo) Add(ctx context.Context, u *user.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	model := UserSchema{
		UserID:   u.ID,
		Name:     u.Name,
		Email:    u.Email,
		NameKey:  textutil.FoldCase(u.Name),
		EmailKey: textutil.FoldCase(u.Email),
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to add user in db", zap.Error(err), zap.Int64("id", u.ID))
		return fmt.Errorf("failed to add user: %w", err)
	}

	r.log.Info("user added in db", zap.Int64("id", u.ID), zap.Int64("seq", model.Seq))
	return nil
}

// FindByID returns the earliest inserted row with the given UserID.
func (r *UserRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		Order("seq ASC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.Int64("id", id))
			return nil, apperrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := model.toDomain()
	return &u, nil
}

// List returns one page of rows whose name or email contains query under
// Unicode case folding, ordered by insertion, plus the total match count.
func (r *UserRepo) List(ctx context.Context, query string, page, limit int64) ([]user.User, int64, error) {
	filtered := func() *gorm.DB {
		tx := r.db.WithContext(ctx).Model(&UserSchema{})
		if query != "" {
			pattern := "%" + security.EscapeLike(textutil.FoldCase(query)) + "%"
			tx = tx.Where(`name_key LIKE ? ESCAPE '\' OR email_key LIKE ? ESCAPE '\'`, pattern, pattern)
		}
		return tx
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err), zap.String("query", query))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	offset := user.Offset(page, limit)
	if offset >= total {
		return []user.User{}, total, nil
	}

	var models []UserSchema
	err := filtered().
		Order("seq ASC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&models).Error
	if err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", query), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}

	return users, total, nil
}
