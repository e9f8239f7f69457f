package memstore

import (
	"context"
	"strings"
	"time"

	"github.com/yigit/jobboard/internal/app/approval"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/repositories"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/helpers"
)

// JobRepository is the in-memory repositories.IJobRepository
type JobRepository struct {
	s *Store
}

var _ repositories.IJobRepository = (*JobRepository)(nil)

// copyJob must be called with the store lock held
func (r *JobRepository) copyJob(j *models.Job, withSubmitter bool) models.Job {
	c := *j
	c.Requirements = cloneStrings(j.Requirements)
	c.SubmitterName, c.SubmitterEmail = "", ""
	if withSubmitter {
		if u, ok := r.s.users[j.CreatedBy]; ok {
			c.SubmitterName, c.SubmitterEmail = u.Name, u.Email
		}
	}
	return c
}

// Create inserts a job. It always starts pending and inactive.
func (r *JobRepository) Create(ctx context.Context, job models.NewJob, ownerID int64) (*models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[ownerID]; !ok {
		return nil, apperrors.ErrUserNotFound
	}

	r.s.nextJob++
	now := r.s.tick()
	j := &models.Job{
		ID:              r.s.nextJob,
		Title:           job.Title,
		Company:         job.Company,
		Location:        job.Location,
		Description:     job.Description,
		Requirements:    cloneStrings(job.Requirements),
		SalaryMin:       job.SalaryMin,
		SalaryMax:       job.SalaryMax,
		JobType:         job.JobType,
		WorkStyle:       job.WorkStyle,
		ExperienceLevel: job.ExperienceLevel,
		CreatedBy:       ownerID,
		IsActive:        false,
		ApprovalStatus:  approval.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.s.jobs[j.ID] = j
	c := r.copyJob(j, false)
	return &c, nil
}

// InsertLegacy stores a job whose approval column is NULL, as rows from before
// the approval workflow are. Only tests need to create one.
func (r *JobRepository) InsertLegacy(job models.NewJob, ownerID int64, active bool) *models.Job {
	created, err := r.Create(context.Background(), job, ownerID)
	if err != nil {
		panic(err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	j := r.s.jobs[created.ID]
	j.ApprovalStatus = approval.StatusLegacyApproved
	j.IsActive = active
	c := r.copyJob(j, false)
	return &c
}

// GetByID retrieves a job regardless of its visibility
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	c := r.copyJob(j, true)
	return &c, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}

func atLeast(v *int32, floor int32) bool { return v != nil && *v >= floor }
func atMost(v *int32, ceil int32) bool   { return v != nil && *v <= ceil }

// matchJob mirrors repositories.JobFilterPredicate
func matchJob(j *models.Job, f models.JobFilter) bool {
	if f.PublicOnly && !approval.IsPubliclyVisible(j.IsActive, j.ApprovalStatus) {
		return false
	}
	if f.Keyword != "" && !containsFold(j.Title, f.Keyword) && !containsFold(j.Company, f.Keyword) && !containsFold(j.Description, f.Keyword) {
		return false
	}
	if f.Location != "" && !containsFold(j.Location, f.Location) {
		return false
	}
	if f.JobType != "" && j.JobType != f.JobType {
		return false
	}
	if f.WorkStyle != "" && j.WorkStyle != f.WorkStyle {
		return false
	}
	if f.ExperienceLevel != "" && j.ExperienceLevel != f.ExperienceLevel {
		return false
	}
	if f.SalaryMin != nil && !atLeast(j.SalaryMin, *f.SalaryMin) && !atLeast(j.SalaryMax, *f.SalaryMin) {
		return false
	}
	if f.SalaryMax != nil && !atMost(j.SalaryMin, *f.SalaryMax) && !atMost(j.SalaryMax, *f.SalaryMax) {
		return false
	}
	if f.CreatedBy != nil && j.CreatedBy != *f.CreatedBy {
		return false
	}
	if f.ApprovalStatus != nil && j.ApprovalStatus != *f.ApprovalStatus {
		return false
	}
	if f.IsActive != nil && j.IsActive != *f.IsActive {
		return false
	}
	return true
}

func (r *JobRepository) collect(pred func(*models.Job) bool, withSubmitter bool) []models.Job {
	out := []models.Job{}
	for _, j := range r.s.jobs {
		if pred(j) {
			out = append(out, r.copyJob(j, withSubmitter))
		}
	}
	newestFirst(out, func(j models.Job) (time.Time, int64) { return j.CreatedAt, j.ID })
	return out
}

// List returns a page of jobs newest first and the total count under the same filter
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter, page helpers.Page) ([]models.Job, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := r.collect(func(j *models.Job) bool { return matchJob(j, filter) }, filter.IncludeSubmitter)
	return paginate(matched, page.Offset(), page.Limit()), int64(len(matched)), nil
}

// ListPending returns every pending job with its submitter, newest first
func (r *JobRepository) ListPending(ctx context.Context) ([]models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.collect(func(j *models.Job) bool { return j.ApprovalStatus == approval.StatusPending }, true), nil
}

// Update writes the allow-listed patch and returns the updated job
func (r *JobRepository) Update(ctx context.Context, id int64, patch models.JobPatch) (*models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	if !patch.IsEmpty() {
		patch.ApplyTo(j)
		j.Requirements = cloneStrings(j.Requirements)
		j.UpdatedAt = r.s.tick()
	}
	c := r.copyJob(j, false)
	return &c, nil
}

// SoftDelete deactivates a job; the row is kept
func (r *JobRepository) SoftDelete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return apperrors.ErrJobNotFound
	}
	j.IsActive = false
	j.UpdatedAt = r.s.tick()
	return nil
}

// Decide holds the store lock for the whole decision, like the row lock in SQL
func (r *JobRepository) Decide(ctx context.Context, id int64, fn repositories.DecideFunc) (*models.Job, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	j, ok := r.s.jobs[id]
	if !ok {
		return nil, apperrors.ErrJobNotFound
	}
	locked := r.copyJob(j, false)
	update, err := fn(&locked)
	if err != nil {
		return nil, err
	}
	update.ApplyTo(j)
	j.UpdatedAt = r.s.tick()

	c := r.copyJob(j, false)
	return &c, nil
}

// Stats counts jobs per approval status
func (r *JobRepository) Stats(ctx context.Context) (models.JobStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stats := models.JobStats{ByStatus: map[string]int64{}}
	for _, j := range r.s.jobs {
		stats.Total++
		if j.IsActive {
			stats.Active++
		}
		stats.ByStatus[string(j.ApprovalStatus)]++
	}
	return stats, nil
}
