package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-fixture-service/internal/domain/user"
	apperrors "user-fixture-service/pkg/errors"
	"user-fixture-service/pkg/logger"
	"user-fixture-service/pkg/security"
	"user-fixture-service/pkg/textutil"
)

// Repository defines the interface for user record storage.
// Implementations keep insertion order and never enforce ID uniqueness.
type Repository interface {
	Add(ctx context.Context, u *domain.User) error                                           // Append a record
	FindByID(ctx context.Context, id int64) (*domain.User, error)                             // First record with the ID, or *errors.NotFoundError
	List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) // Filtered page plus total match count
}

// Service implements Usecase on top of a Repository.
type Service struct {
	repo     Repository          // Repository for record storage
	config   ConfigSource        // Source for LoadConfig
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

var _ Usecase = (*Service)(nil)

// New creates a new Service. The validator knows the "address" tag, which
// applies textutil.ValidateEmail.
func New(r Repository, cfg ConfigSource, log *zap.Logger) *Service {
	return &Service{repo: r, config: cfg, log: log, validate: NewValidator()}
}

// NewValidator returns a validator with the service's custom tags registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		return textutil.ValidateEmail(fl.Field().String())
	})
	return v
}

// formatValidationError converts validator.ValidationErrors into a *errors.ValidationError
// with one violation per failing field.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	violations := make([]apperrors.FieldViolation, 0, len(validationErrors))
	for _, e := range validationErrors {
		var msg string
		switch e.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", e.Field())
		case "address", "email":
			msg = fmt.Sprintf("%s must be a valid email address", e.Field())
		case "gte":
			msg = fmt.Sprintf("%s must be greater than or equal to %s", e.Field(), e.Param())
		case "min":
			msg = fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
		default:
			msg = fmt.Sprintf("%s is invalid", e.Field())
		}
		messages = append(messages, msg)
		violations = append(violations, apperrors.FieldViolation{Field: e.Field(), Description: msg})
	}

	return apperrors.NewValidationError("", strings.Join(messages, ", ")).WithViolations(violations...)
}

// AddUser validates the request and appends a record.
func (s *Service) AddUser(ctx context.Context, in AddUserRequest) (*AddUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("adding user", zap.Int64("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := s.repo.Add(ctx, &domain.User{ID: in.ID, Name: in.Name, Email: in.Email}); err != nil {
		log.Error("failed to add user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to add user", err)
	}

	return &AddUserResponse{ID: in.ID}, nil
}

// SeedAdmin appends the built-in administrator record.
func (s *Service) SeedAdmin(ctx context.Context) (*AddUserResponse, error) {
	admin := domain.NewAdmin()
	return s.AddUser(ctx, AddUserRequest{ID: admin.ID, Name: admin.Name, Email: admin.Email})
}

// FetchUser returns the first record stored with the requested ID.
func (s *Service) FetchUser(ctx context.Context, in FetchUserRequest) (*FetchUserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	u, err := s.repo.FindByID(ctx, in.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			log.Debug("user not found", zap.Int64("id", in.ID))
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Error("failed to fetch user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to fetch user", err)
	}

	return &FetchUserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		DisplayName: displayName(u.Name),
	}, nil
}

// displayName formats a stored name: the first word as the first name and
// the remaining words as the last name.
func displayName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSpace(textutil.FormatName(fields[0], strings.Join(fields[1:], " ")))
}

// ListUsers retrieves a page of records in insertion order.
func (s *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, s.log)

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, apperrors.NewValidationError("Query", err.Error())
	}
	page, limit := domain.NormalizePage(in.Page, in.Limit)

	log.Info("listing users", zap.String("query", query), zap.Int64("page", page), zap.Int64("limit", limit))

	domainUsers, total, err := s.repo.List(ctx, query, page, limit)
	if err != nil {
		log.Error("failed to list users", zap.String("query", query), zap.Int64("page", page), zap.Int64("limit", limit), zap.Error(err))
		return nil, apperrors.NewInternalError("failed to list users", err)
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = User{
			ID:    du.ID,
			Name:  du.Name,
			Email: du.Email,
		}
	}

	return &ListUsersResponse{
		Users:      users,
		Pagination: domain.NewPagination(total, page, limit),
	}, nil
}

// ValidateEmail reports whether the address is well formed. It never fails.
func (s *Service) ValidateEmail(_ context.Context, in ValidateEmailRequest) (*ValidateEmailResponse, error) {
	return &ValidateEmailResponse{Address: in.Address, Valid: textutil.ValidateEmail(in.Address)}, nil
}

// FormatName title-cases and joins the name parts. It never fails.
func (s *Service) FormatName(_ context.Context, in FormatNameRequest) (*FormatNameResponse, error) {
	return &FormatNameResponse{FullName: textutil.FormatName(in.First, in.Last)}, nil
}

// LoadConfig returns the settings of the configured source.
func (s *Service) LoadConfig(ctx context.Context) (*LoadConfigResponse, error) {
	if s.config == nil {
		logger.WithContext(ctx, s.log).Error("load config called without a config source")
		return nil, apperrors.NewInternalError("config source not configured", nil)
	}
	return &LoadConfigResponse{Settings: s.config.Load()}, nil
}
