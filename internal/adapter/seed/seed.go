package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"user-fixture-service/internal/usecase/user"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Record is one user entry of a seed file.
type Record struct {
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"`
	Email string `yaml:"email,omitempty"`
}

// File is the seed file layout:
//
//	users:
//	  - id: 1
//	    name: Alice
//	    email: alice@example.com
type File struct {
	Users []Record `yaml:"users"`
}

// Decode parses a seed document. Unknown keys are rejected.
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &f, nil
}

// Seeder appends startup records through the usecase.
type Seeder struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewSeeder creates a Seeder.
func NewSeeder(uc user.Usecase, log *zap.Logger) *Seeder {
	return &Seeder{uc: uc, log: log}
}

// Run appends the admin record when admin is set, then every record of the
// file at path in file order. An empty path skips the file. It stops at the
// first record the usecase rejects and returns how many were appended.
func (s *Seeder) Run(ctx context.Context, admin bool, path string) (int, error) {
	added := 0

	if admin {
		if _, err := s.uc.SeedAdmin(ctx); err != nil {
			return added, fmt.Errorf("failed to seed admin: %w", err)
		}
		added++
	}

	if path == "" {
		s.log.Info("seeding complete", zap.Int("added", added))
		return added, nil
	}

	fh, err := os.Open(path)
	if err != nil {
		return added, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer fh.Close()

	f, err := Decode(fh)
	if err != nil {
		return added, err
	}

	for i, r := range f.Users {
		if _, err := s.uc.AddUser(ctx, user.AddUserRequest{ID: r.ID, Name: r.Name, Email: r.Email}); err != nil {
			return added, fmt.Errorf("seed record %d (id=%d): %w", i, r.ID, err)
		}
		added++
	}

	s.log.Info("seeding complete", zap.Int("added", added), zap.String("file", path))
	return added, nil
}
