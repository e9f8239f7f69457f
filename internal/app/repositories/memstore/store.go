// Package memstore holds in-memory repositories with the same uniqueness,
// visibility and ownership rules as the PostgreSQL ones. Services and route
// tests run against it without a database.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/repositories"
)

// Store is the shared state behind every in-memory repository, so joins
// and cascades behave like the relational schema.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users         map[int64]*models.User
	profiles      map[int64]*models.UserProfile
	jobs          map[int64]*models.Job
	applications  map[int64]*models.JobApplication
	notifications map[int64]*models.Notification

	nextUser, nextJob, nextApplication, nextNotification int64

	userRepo         *UserRepository
	jobRepo          *JobRepository
	applicationRepo  *ApplicationRepository
	notificationRepo *NotificationRepository
}

// New creates an empty store
func New() *Store {
	s := &Store{
		now:           time.Now,
		users:         map[int64]*models.User{},
		profiles:      map[int64]*models.UserProfile{},
		jobs:          map[int64]*models.Job{},
		applications:  map[int64]*models.JobApplication{},
		notifications: map[int64]*models.Notification{},
	}
	s.userRepo = &UserRepository{s: s}
	s.jobRepo = &JobRepository{s: s}
	s.applicationRepo = &ApplicationRepository{s: s}
	s.notificationRepo = &NotificationRepository{s: s}
	return s
}

// Users returns the user repository
func (s *Store) Users() *UserRepository { return s.userRepo }

// Jobs returns the job repository
func (s *Store) Jobs() *JobRepository { return s.jobRepo }

// Applications returns the application repository
func (s *Store) Applications() *ApplicationRepository { return s.applicationRepo }

// Notifications returns the notification repository
func (s *Store) Notifications() *NotificationRepository { return s.notificationRepo }

// Repositories bundles the store the way bootstrap bundles the SQL repositories
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		UserRepository:         s.userRepo,
		JobRepository:          s.jobRepo,
		ApplicationRepository:  s.applicationRepo,
		NotificationRepository: s.notificationRepo,
	}
}

// tick reads the store clock; ties in listings are broken by id
func (s *Store) tick() time.Time {
	return s.now().UTC()
}

func paginate[T any](items []T, offset, limit uint64) []T {
	if offset >= uint64(len(items)) {
		return []T{}
	}
	end := offset + limit
	if end > uint64(len(items)) {
		end = uint64(len(items))
	}
	return items[offset:end]
}

// newestFirst orders by created timestamp then id, both descending
func newestFirst[T any](items []T, key func(T) (time.Time, int64)) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func strPtr(s string) *string { return &s }
