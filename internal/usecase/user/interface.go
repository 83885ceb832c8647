package user

import "context"

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	AddUser(ctx context.Context, in AddUserRequest) (*AddUserResponse, error)
	FetchUser(ctx context.Context, in FetchUserRequest) (*FetchUserResponse, error)
	ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error)
	SeedAdmin(ctx context.Context) (*AddUserResponse, error)
	ValidateEmail(ctx context.Context, in ValidateEmailRequest) (*ValidateEmailResponse, error)
	FormatName(ctx context.Context, in FormatNameRequest) (*FormatNameResponse, error)
	LoadConfig(ctx context.Context) (*LoadConfigResponse, error)
}

// ConfigSource supplies the settings returned by LoadConfig.
type ConfigSource interface {
	Load() map[string]any
}
