package memstore

import (
	"context"
	"time"

	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
)

// ApplicationRepository is the in-memory repositories.IApplicationRepository
type ApplicationRepository struct {
	s *Store
}

var _ repositories.IApplicationRepository = (*ApplicationRepository)(nil)

// Create inserts an application; a second one for the same (job, user) pair conflicts
func (r *ApplicationRepository) Create(ctx context.Context, app models.NewApplication) (*models.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.jobs[app.JobID]; !ok {
		return nil, apperrors.ErrJobNotFound
	}
	if _, ok := r.s.users[app.UserID]; !ok {
		return nil, apperrors.ErrUserNotFound
	}
	for _, a := range r.s.applications {
		if a.JobID == app.JobID && a.UserID == app.UserID {
			return nil, apperrors.ErrAlreadyApplied
		}
	}

	r.s.nextApplication++
	now := r.s.tick()
	a := &models.JobApplication{
		ID:          r.s.nextApplication,
		JobID:       app.JobID,
		UserID:      app.UserID,
		CoverLetter: app.CoverLetter,
		ResumeURL:   app.ResumeURL,
		Status:      models.ApplicationPending,
		AppliedAt:   now,
		UpdatedAt:   now,
	}
	r.s.applications[a.ID] = a
	c := *a
	return &c, nil
}

// GetByID retrieves an application by its ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.applications[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	c := *a
	return &c, nil
}

func byApplied(a models.JobApplication) (time.Time, int64) { return a.AppliedAt, a.ID }

// ListForUser returns the user's applications with a summary of each job, newest first
func (r *ApplicationRepository) ListForUser(ctx context.Context, userID int64) ([]models.ApplicationWithJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []models.ApplicationWithJob{}
	for _, a := range r.s.applications {
		j, ok := r.s.jobs[a.JobID]
		if a.UserID != userID || !ok {
			continue
		}
		out = append(out, models.ApplicationWithJob{
			JobApplication: *a,
			Job: models.JobSummary{
				Title:    j.Title,
				Company:  j.Company,
				Location: j.Location,
				JobType:  j.JobType,
				IsActive: j.IsActive,
			},
		})
	}
	newestFirst(out, func(a models.ApplicationWithJob) (time.Time, int64) { return byApplied(a.JobApplication) })
	return out, nil
}

// ListForJob returns a job's applications with the applicant's contact details, newest first
func (r *ApplicationRepository) ListForJob(ctx context.Context, jobID int64) ([]models.ApplicationWithApplicant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []models.ApplicationWithApplicant{}
	for _, a := range r.s.applications {
		u, ok := r.s.users[a.UserID]
		if a.JobID != jobID || !ok {
			continue
		}
		item := models.ApplicationWithApplicant{
			JobApplication: *a,
			Applicant:      models.ApplicantSummary{Name: u.Name, Email: u.Email},
		}
		if p, ok := r.s.profiles[a.UserID]; ok {
			item.Applicant.Phone = p.Phone
			item.Applicant.ResumeURL = p.ResumeURL
		}
		out = append(out, item)
	}
	newestFirst(out, func(a models.ApplicationWithApplicant) (time.Time, int64) { return byApplied(a.JobApplication) })
	return out, nil
}

// UpdateStatus changes the status of an application that belongs to jobID
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id, jobID int64, status models.ApplicationStatus) (*models.JobApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.applications[id]
	if !ok || a.JobID != jobID {
		return nil, apperrors.ErrApplicationNotFound
	}
	a.Status = status
	a.UpdatedAt = r.s.tick()
	c := *a
	return &c, nil
}

// CountByStatus returns the number of applications per status
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	counts := map[models.ApplicationStatus]int64{}
	for _, a := range r.s.applications {
		counts[a.Status]++
	}
	return counts, nil
}
