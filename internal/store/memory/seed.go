package memory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roosthq/roost/internal/store"
)

// SeedUser is one entry in a YAML seed file.
type SeedUser struct {
	Username  string `yaml:"username"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// LoadSeedFile reads a YAML fixture file and creates each user in the store.
// Intended for development mode so the memory store starts with known accounts.
func (s *UserStore) LoadSeedFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for i, u := range f.Users {
		_, err := s.Create(ctx, store.NewUser{
			Username:  u.Username,
			Email:     u.Email,
			Password:  u.Password,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
		if err != nil {
			return i, fmt.Errorf("seed user %q: %w", u.Username, err)
		}
	}

	return len(f.Users), nil
}
