package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/repositories/memstore"
	"github.com/yigit/jobboard/internal/pkg/auth"
	"github.com/yigit/jobboard/internal/pkg/helpers"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateDefaultData(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	users := store.Users()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	admin := AdminAccount{Email: " Admin@Example.com ", Password: "change-me-now", Name: "Root"}

	if err := CreateDefaultData(ctx, users, hasher, admin, zerolog.Nop()); err != nil {
		t.Fatalf("CreateDefaultData() error = %v", err)
	}
	u, err := users.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("seeded admin missing: %v", err)
	}
	if u.Role != appModels.RoleAdmin || u.PasswordHash == nil || !hasher.Compare("change-me-now", *u.PasswordHash) {
		t.Fatalf("seeded admin = %+v", u)
	}

	// second start is a no-op
	if err := CreateDefaultData(ctx, users, hasher, admin, zerolog.Nop()); err != nil {
		t.Fatalf("second CreateDefaultData() error = %v", err)
	}
	list, total, err := users.List(ctx, appModels.UserFilter{Role: appModels.RoleAdmin}, helpers.NormalizePage(1, 10))
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("admins = %d (%v)", total, err)
	}
}

func TestCreateDefaultData_SkipsWithoutPassword(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	err := CreateDefaultData(ctx, store.Users(), auth.NewBcryptHasher(bcrypt.MinCost), AdminAccount{Email: "admin@example.com"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("CreateDefaultData() error = %v", err)
	}
	if _, err := store.Users().GetByEmail(ctx, "admin@example.com"); err == nil {
		t.Fatal("admin created without a password")
	}
}
