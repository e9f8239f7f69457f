package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/jobboard/internal/app/models"
	appRepos "github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/auth"
)

// AdminAccount describes the administrator created on first start
type AdminAccount struct {
	Email    string
	Password string
	Name     string
}

// CreateDefaultData creates the default admin account if it doesn't exist.
// An empty password skips seeding so no guessable account is ever created.
func CreateDefaultData(ctx context.Context, userRepo appRepos.IUserRepository, hasher auth.PasswordHasher, admin AdminAccount, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		lgr.Warn().Msg("Seed admin credentials not configured, skipping default admin")
		return nil
	}

	existing, err := userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != appModels.RoleAdmin {
			lgr.Warn().Str("email", email).Str("role", string(existing.Role)).Msg("Seed admin email belongs to a non-admin account")
		}
		lgr.Debug().Str("email", email).Msg("Default admin already exists")
		return nil
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return fmt.Errorf("failed to look up seed admin: %w", err)
	}

	hash, err := hasher.Hash(admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}

	name := strings.TrimSpace(admin.Name)
	if name == "" {
		name = "Administrator"
	}

	created, err := userRepo.Create(ctx, appModels.NewUser{
		Email:         email,
		PasswordHash:  &hash,
		Name:          name,
		Role:          appModels.RoleAdmin,
		EmailVerified: true,
		AuthProvider:  appModels.ProviderLocal,
	})
	if err != nil {
		// Another instance may have seeded concurrently
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		return fmt.Errorf("failed to create seed admin: %w", err)
	}

	lgr.Info().Int64("userID", created.ID).Str("email", email).Msg("Default admin account created")
	return nil
}
