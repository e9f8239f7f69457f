package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/dberrors"
	"github.com/yigit/jobboard/internal/pkg/helpers"
	"github.com/yigit/jobboard/internal/pkg/logger"
)

// ErrProviderAlreadyLinked is returned when an OAuth identity belongs to another account
var ErrProviderAlreadyLinked = apperrors.NewConflictError("This provider account is already linked to another user")

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	// Credential store
	Create(ctx context.Context, user models.NewUser) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByProvider(ctx context.Context, provider models.AuthProvider, providerID string) (*models.User, error)
	LinkProvider(ctx context.Context, id int64, provider models.AuthProvider, providerID string, emailVerified bool, avatarURL *string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateFields(ctx context.Context, id int64, update models.UserUpdate) error

	// Profile
	GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.UserProfile, error)

	// Administration
	List(ctx context.Context, filter models.UserFilter, page helpers.Page) ([]models.User, int64, error)
	UpdateRole(ctx context.Context, id int64, role models.RoleType) error
	Delete(ctx context.Context, id int64) error
	CountByRole(ctx context.Context) (map[models.RoleType]int64, error)
}

// UserRepository handles database operations for users and profiles
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var userColumns = []string{
	"id", "email", "password_hash", "name", "role", "email_verified",
	"auth_provider", "provider_id", "avatar_url", "created_at", "updated_at",
}

var profileColumns = []string{"user_id", "phone", "bio", "location", "resume_url", "skills", "updated_at"}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.EmailVerified,
		&u.AuthProvider, &u.ProviderID, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	p := &models.UserProfile{}
	if err := row.Scan(&p.UserID, &p.Phone, &p.Bio, &p.Location, &p.ResumeURL, &p.Skills, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return p, nil
}

// Create inserts a credential record. The email is stored normalized; the
// unique index on LOWER(email) is the authoritative duplicate guard.
func (r *UserRepository) Create(ctx context.Context, nu models.NewUser) (*models.User, error) {
	query, args, err := r.sb.Insert("users").
		Columns("email", "password_hash", "name", "role", "email_verified", "auth_provider", "provider_id", "avatar_url").
		Values(models.NormalizeEmail(nu.Email), nu.PasswordHash, nu.Name, nu.Role, nu.EmailVerified, nu.AuthProvider, nu.ProviderID, nu.AvatarURL).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return nil, fmt.Errorf("failed to build create user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, dberrors.UsersEmailKey):
			return nil, apperrors.ErrEmailAlreadyExists
		case dberrors.IsDuplicateConstraintError(err, dberrors.UsersProviderKey):
			return nil, ErrProviderAlreadyLinked
		}
		logger.Error().Err(err).Str("email", nu.Email).Msg("Error executing create user query")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) getOne(ctx context.Context, pred squirrel.Sqlizer) (*models.User, error) {
	query, args, err := r.sb.Select(userColumns...).From("users").Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error executing get user query")
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by case-insensitive email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Expr("LOWER(email) = ?", models.NormalizeEmail(email)))
}

// GetByProvider retrieves a user by external identity
func (r *UserRepository) GetByProvider(ctx context.Context, provider models.AuthProvider, providerID string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"auth_provider": provider, "provider_id": providerID})
}

func (r *UserRepository) execUpdate(ctx context.Context, id int64, b squirrel.UpdateBuilder, what string) error {
	query, args, err := b.Set("updated_at", squirrel.Expr("NOW()")).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build %s query: %w", what, err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, dberrors.UsersProviderKey) {
			return ErrProviderAlreadyLinked
		}
		logger.Error().Err(err).Int64("userID", id).Msgf("Error executing %s query", what)
		return fmt.Errorf("failed to %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// LinkProvider attaches an external identity to an existing account. A verified
// flag is never cleared by linking.
func (r *UserRepository) LinkProvider(ctx context.Context, id int64, provider models.AuthProvider, providerID string, emailVerified bool, avatarURL *string) error {
	b := r.sb.Update("users").
		Set("auth_provider", provider).
		Set("provider_id", providerID).
		Set("email_verified", squirrel.Expr("email_verified OR ?", emailVerified))
	if avatarURL != nil {
		b = b.Set("avatar_url", squirrel.Expr("COALESCE(avatar_url, ?)", *avatarURL))
	}
	return r.execUpdate(ctx, id, b, "link provider")
}

// UpdatePassword replaces the password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.execUpdate(ctx, id, r.sb.Update("users").Set("password_hash", passwordHash), "update password")
}

// UpdateFields updates the allow-listed user columns that are set
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, update models.UserUpdate) error {
	b := r.sb.Update("users")
	changed := false
	if update.Name != nil {
		b = b.Set("name", *update.Name)
		changed = true
	}
	if update.AvatarURL != nil {
		b = b.Set("avatar_url", *update.AvatarURL)
		changed = true
	}
	if !changed {
		return nil
	}
	return r.execUpdate(ctx, id, b, "update user")
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.RoleType) error {
	return r.execUpdate(ctx, id, r.sb.Update("users").Set("role", role), "update role")
}

// Delete removes a non-admin user. Dependent rows go with it via ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Delete("users").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.NotEq{"role": models.RoleAdmin}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing delete user query")
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// UserListPredicate builds the WHERE clause of the admin user listing
func UserListPredicate(filter models.UserFilter) squirrel.And {
	pred := squirrel.And{}
	if filter.Search != "" {
		pattern := LikePattern(filter.Search)
		pred = append(pred, squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}
	if filter.Role != "" {
		pred = append(pred, squirrel.Eq{"role": filter.Role})
	}
	return pred
}

// List returns a page of users and the total matching count
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter, page helpers.Page) ([]models.User, int64, error) {
	pred := UserListPredicate(filter)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("users").Where(pred).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count users query")
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query, args, err := r.sb.Select(userColumns...).From("users").Where(pred).
		OrderBy("created_at DESC", "id DESC").
		Limit(page.Limit()).Offset(page.Offset()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning user row")
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, total, nil
}

// CountByRole returns the number of users per role
func (r *UserRepository) CountByRole(ctx context.Context) (map[models.RoleType]int64, error) {
	query, args, err := r.sb.Select("role", "COUNT(*)").From("users").GroupBy("role").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count by role query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing count by role query")
		return nil, fmt.Errorf("failed to count users by role: %w", err)
	}
	defer rows.Close()

	counts := map[models.RoleType]int64{}
	for rows.Next() {
		var role models.RoleType
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("failed to scan role count: %w", err)
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

// GetProfile returns the user's profile, or nil when none has been saved
func (r *UserRepository) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	query, args, err := r.sb.Select(profileColumns...).From("user_profiles").Where(squirrel.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	profile, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing get profile query")
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// UpsertProfile creates the profile row or updates only the fields that are set
func (r *UserRepository) UpsertProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.UserProfile, error) {
	columns := []string{"user_id"}
	values := []interface{}{userID}
	add := func(col string, v interface{}) {
		columns = append(columns, col)
		values = append(values, v)
	}
	if update.Phone != nil {
		add("phone", *update.Phone)
	}
	if update.Bio != nil {
		add("bio", *update.Bio)
	}
	if update.Location != nil {
		add("location", *update.Location)
	}
	if update.ResumeURL != nil {
		add("resume_url", *update.ResumeURL)
	}
	if update.Skills != nil {
		add("skills", update.Skills)
	}

	set := "updated_at = NOW()"
	for _, col := range columns[1:] {
		set += fmt.Sprintf(", %s = EXCLUDED.%s", col, col)
	}

	query, args, err := r.sb.Insert("user_profiles").
		Columns(columns...).
		Values(values...).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET " + set + " RETURNING " + joinColumns(profileColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upsert profile query: %w", err)
	}

	profile, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing upsert profile query")
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return profile, nil
}
