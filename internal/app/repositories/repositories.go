package repositories

import (
	"github.com/yigit/jobboard/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         IUserRepository
	JobRepository          IJobRepository
	ApplicationRepository  IApplicationRepository
	NotificationRepository INotificationRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(database.Pool),
		JobRepository:          NewJobRepository(database),
		ApplicationRepository:  NewApplicationRepository(database.Pool),
		NotificationRepository: NewNotificationRepository(database.Pool),
	}
}
