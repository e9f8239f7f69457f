package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/helpers"
)

// UserRepository is the in-memory repositories.IUserRepository
type UserRepository struct {
	s *Store
}

var _ repositories.IUserRepository = (*UserRepository)(nil)

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *UserRepository) providerTaken(provider models.AuthProvider, providerID string, exceptID int64) bool {
	for _, u := range r.s.users {
		if u.ID != exceptID && u.AuthProvider == provider && u.ProviderID != nil && *u.ProviderID == providerID {
			return true
		}
	}
	return false
}

// Create inserts a user, enforcing the case-insensitive email and provider uniqueness
func (r *UserRepository) Create(ctx context.Context, nu models.NewUser) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := models.NormalizeEmail(nu.Email)
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
	}
	if nu.ProviderID != nil && r.providerTaken(nu.AuthProvider, *nu.ProviderID, 0) {
		return nil, repositories.ErrProviderAlreadyLinked
	}

	r.s.nextUser++
	now := r.s.tick()
	u := &models.User{
		ID:            r.s.nextUser,
		Email:         email,
		PasswordHash:  nu.PasswordHash,
		Name:          nu.Name,
		Role:          nu.Role,
		EmailVerified: nu.EmailVerified,
		AuthProvider:  nu.AuthProvider,
		ProviderID:    nu.ProviderID,
		AvatarURL:     nu.AvatarURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.AuthProvider == "" {
		u.AuthProvider = models.ProviderLocal
	}
	r.s.users[u.ID] = u
	return copyUser(u), nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByEmail retrieves a user by case-insensitive email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := models.NormalizeEmail(email)
	for _, u := range r.s.users {
		if strings.ToLower(u.Email) == key {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// GetByProvider retrieves a user by external identity
func (r *UserRepository) GetByProvider(ctx context.Context, provider models.AuthProvider, providerID string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.AuthProvider == provider && u.ProviderID != nil && *u.ProviderID == providerID {
			return copyUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) mutate(id int64, fn func(u *models.User) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if err := fn(u); err != nil {
		return err
	}
	u.UpdatedAt = r.s.tick()
	return nil
}

// LinkProvider attaches an external identity to an existing account
func (r *UserRepository) LinkProvider(ctx context.Context, id int64, provider models.AuthProvider, providerID string, emailVerified bool, avatarURL *string) error {
	return r.mutate(id, func(u *models.User) error {
		if r.providerTaken(provider, providerID, id) {
			return repositories.ErrProviderAlreadyLinked
		}
		u.AuthProvider = provider
		u.ProviderID = &providerID
		u.EmailVerified = u.EmailVerified || emailVerified
		if u.AvatarURL == nil && avatarURL != nil {
			v := *avatarURL
			u.AvatarURL = &v
		}
		return nil
	})
}

// UpdatePassword replaces the password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.mutate(id, func(u *models.User) error {
		u.PasswordHash = &passwordHash
		return nil
	})
}

// UpdateFields updates the allow-listed user columns that are set
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, update models.UserUpdate) error {
	if update.Name == nil && update.AvatarURL == nil {
		return nil
	}
	return r.mutate(id, func(u *models.User) error {
		if update.Name != nil {
			u.Name = *update.Name
		}
		if update.AvatarURL != nil {
			v := *update.AvatarURL
			u.AvatarURL = &v
		}
		return nil
	})
}

// UpdateRole changes a user's role
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.RoleType) error {
	return r.mutate(id, func(u *models.User) error {
		u.Role = role
		return nil
	})
}

// Delete removes a non-admin user and cascades like the schema does
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || u.Role == models.RoleAdmin {
		return apperrors.ErrUserNotFound
	}
	delete(r.s.users, id)
	delete(r.s.profiles, id)

	for jobID, j := range r.s.jobs {
		if j.CreatedBy == id {
			delete(r.s.jobs, jobID)
			for nid, n := range r.s.notifications {
				if n.RelatedJobID != nil && *n.RelatedJobID == jobID {
					r.s.notifications[nid].RelatedJobID = nil
				}
			}
		}
	}
	for appID, a := range r.s.applications {
		if _, jobExists := r.s.jobs[a.JobID]; a.UserID == id || !jobExists {
			delete(r.s.applications, appID)
		}
	}
	for nid, n := range r.s.notifications {
		if n.UserID == id {
			delete(r.s.notifications, nid)
		}
	}
	return nil
}

func matchUser(u *models.User, f models.UserFilter) bool {
	if f.Search != "" {
		q := strings.ToLower(strings.TrimSpace(f.Search))
		if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			return false
		}
	}
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	return true
}

// List returns a page of users and the total matching count
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter, page helpers.Page) ([]models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := []models.User{}
	for _, u := range r.s.users {
		if matchUser(u, filter) {
			matched = append(matched, *u)
		}
	}
	newestFirst(matched, func(u models.User) (t time.Time, id int64) { return u.CreatedAt, u.ID })
	return paginate(matched, page.Offset(), page.Limit()), int64(len(matched)), nil
}

// CountByRole returns the number of users per role
func (r *UserRepository) CountByRole(ctx context.Context) (map[models.RoleType]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[models.RoleType]int64{}
	for _, u := range r.s.users {
		counts[u.Role]++
	}
	return counts, nil
}

// GetProfile returns the user's profile, or nil when none has been saved
func (r *UserRepository) GetProfile(ctx context.Context, userID int64) (*models.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	c := *p
	c.Skills = cloneStrings(p.Skills)
	return &c, nil
}

// UpsertProfile creates the profile or updates only the fields that are set
func (r *UserRepository) UpsertProfile(ctx context.Context, userID int64, update models.ProfileUpdate) (*models.UserProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return nil, apperrors.ErrUserNotFound
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		p = &models.UserProfile{UserID: userID, Skills: []string{}}
		r.s.profiles[userID] = p
	}
	if update.Phone != nil {
		p.Phone = strPtr(*update.Phone)
	}
	if update.Bio != nil {
		p.Bio = strPtr(*update.Bio)
	}
	if update.Location != nil {
		p.Location = strPtr(*update.Location)
	}
	if update.ResumeURL != nil {
		p.ResumeURL = strPtr(*update.ResumeURL)
	}
	if update.Skills != nil {
		p.Skills = cloneStrings(update.Skills)
	}
	p.UpdatedAt = r.s.tick()

	c := *p
	c.Skills = cloneStrings(p.Skills)
	return &c, nil
}
