package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/jobboard/internal/app/approval"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/db"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
	"github.com/yigit/jobboard/internal/pkg/dberrors"
	"github.com/yigit/jobboard/internal/pkg/helpers"
	"github.com/yigit/jobboard/internal/pkg/logger"
)

// DecideFunc inspects the locked job and returns the approval state to persist
type DecideFunc func(job *models.Job) (models.ApprovalUpdate, error)

// IJobRepository defines the interface for job-related database operations
type IJobRepository interface {
	Create(ctx context.Context, job models.NewJob, ownerID int64) (*models.Job, error)
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter, page helpers.Page) ([]models.Job, int64, error)
	ListPending(ctx context.Context) ([]models.Job, error)
	Update(ctx context.Context, id int64, patch models.JobPatch) (*models.Job, error)
	SoftDelete(ctx context.Context, id int64) error

	// Decide locks the job row, lets fn validate the transition and persists the result atomically
	Decide(ctx context.Context, id int64, fn DecideFunc) (*models.Job, error)

	Stats(ctx context.Context) (models.JobStats, error)
}

// JobRepository handles database operations for jobs
type JobRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(database *db.PostgresDB) *JobRepository {
	return &JobRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var jobColumns = []string{
	"id", "title", "company", "location", "description", "requirements",
	"salary_min", "salary_max", "job_type", "work_style", "experience_level",
	"created_by", "is_active", "approval_status", "approved_by", "approved_at",
	"rejection_reason", "created_at", "updated_at",
}

func scanJob(row pgx.Row, withSubmitter bool) (*models.Job, error) {
	j := &models.Job{}
	var status *string
	dest := []interface{}{
		&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.Requirements,
		&j.SalaryMin, &j.SalaryMax, &j.JobType, &j.WorkStyle, &j.ExperienceLevel,
		&j.CreatedBy, &j.IsActive, &status, &j.ApprovedBy, &j.ApprovedAt,
		&j.RejectionReason, &j.CreatedAt, &j.UpdatedAt,
	}
	if withSubmitter {
		dest = append(dest, &j.SubmitterName, &j.SubmitterEmail)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	j.ApprovalStatus = approval.FromColumn(status)
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	return j, nil
}

func (r *JobRepository) selectJobs(withSubmitter bool) squirrel.SelectBuilder {
	cols := prefixColumns("j", jobColumns)
	b := r.sb.Select(cols...).From("jobs j")
	if withSubmitter {
		b = b.Columns("COALESCE(u.name, '')", "COALESCE(u.email, '')").
			LeftJoin("users u ON u.id = j.created_by")
	}
	return b
}

// statusPredicate matches a stored approval status; the legacy state is the NULL column
func statusPredicate(s approval.Status) squirrel.Sqlizer {
	if s == approval.StatusLegacyApproved {
		return squirrel.Eq{"j.approval_status": nil}
	}
	return squirrel.Eq{"j.approval_status": string(s)}
}

// JobFilterPredicate builds the AND-composed WHERE clause shared by the listing and its count
func JobFilterPredicate(f models.JobFilter) squirrel.And {
	pred := squirrel.And{}

	if f.PublicOnly {
		pred = append(pred,
			squirrel.Eq{"j.is_active": true},
			squirrel.Or{
				squirrel.Eq{"j.approval_status": string(approval.StatusApproved)},
				squirrel.Eq{"j.approval_status": nil},
			},
		)
	}
	if f.Keyword != "" {
		pattern := LikePattern(f.Keyword)
		pred = append(pred, squirrel.Or{
			squirrel.ILike{"j.title": pattern},
			squirrel.ILike{"j.company": pattern},
			squirrel.ILike{"j.description": pattern},
		})
	}
	if f.Location != "" {
		pred = append(pred, squirrel.ILike{"j.location": LikePattern(f.Location)})
	}
	if f.JobType != "" {
		pred = append(pred, squirrel.Eq{"j.job_type": string(f.JobType)})
	}
	if f.WorkStyle != "" {
		pred = append(pred, squirrel.Eq{"j.work_style": string(f.WorkStyle)})
	}
	if f.ExperienceLevel != "" {
		pred = append(pred, squirrel.Eq{"j.experience_level": string(f.ExperienceLevel)})
	}
	// Either bound may satisfy the salary filters
	if f.SalaryMin != nil {
		pred = append(pred, squirrel.Or{
			squirrel.GtOrEq{"j.salary_min": *f.SalaryMin},
			squirrel.GtOrEq{"j.salary_max": *f.SalaryMin},
		})
	}
	if f.SalaryMax != nil {
		pred = append(pred, squirrel.Or{
			squirrel.LtOrEq{"j.salary_min": *f.SalaryMax},
			squirrel.LtOrEq{"j.salary_max": *f.SalaryMax},
		})
	}
	if f.CreatedBy != nil {
		pred = append(pred, squirrel.Eq{"j.created_by": *f.CreatedBy})
	}
	if f.ApprovalStatus != nil {
		pred = append(pred, statusPredicate(*f.ApprovalStatus))
	}
	if f.IsActive != nil {
		pred = append(pred, squirrel.Eq{"j.is_active": *f.IsActive})
	}
	return pred
}

// Create inserts a job. It always starts pending and inactive.
func (r *JobRepository) Create(ctx context.Context, job models.NewJob, ownerID int64) (*models.Job, error) {
	requirements := job.Requirements
	if requirements == nil {
		requirements = []string{}
	}

	query, args, err := r.sb.Insert("jobs").
		Columns("title", "company", "location", "description", "requirements", "salary_min", "salary_max",
			"job_type", "work_style", "experience_level", "created_by", "is_active", "approval_status").
		Values(job.Title, job.Company, job.Location, job.Description, requirements, job.SalaryMin, job.SalaryMax,
			string(job.JobType), string(job.WorkStyle), string(job.ExperienceLevel), ownerID, false, string(approval.StatusPending)).
		Suffix("RETURNING " + joinColumns(jobColumns)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create job SQL")
		return nil, fmt.Errorf("failed to build create job query: %w", err)
	}

	created, err := scanJob(r.db.Pool.QueryRow(ctx, query, args...), false)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Int64("ownerID", ownerID).Msg("Error executing create job query")
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

// GetByID retrieves a job regardless of its visibility
func (r *JobRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	query, args, err := r.selectJobs(true).Where(squirrel.Eq{"j.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get job query: %w", err)
	}

	job, err := scanJob(r.db.Pool.QueryRow(ctx, query, args...), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobNotFound
		}
		logger.Error().Err(err).Int64("jobID", id).Msg("Error executing get job query")
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// List returns a page of jobs newest first and the total count under the same predicate
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter, page helpers.Page) ([]models.Job, int64, error) {
	pred := JobFilterPredicate(filter)

	countSQL, countArgs, err := r.sb.Select("COUNT(*)").From("jobs j").Where(pred).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count jobs SQL")
		return nil, 0, fmt.Errorf("failed to build count jobs query: %w", err)
	}
	var total int64
	if err := r.db.Pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count jobs query")
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	query, args, err := r.selectJobs(filter.IncludeSubmitter).Where(pred).
		OrderBy("j.created_at DESC", "j.id DESC").
		Limit(page.Limit()).Offset(page.Offset()).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list jobs SQL")
		return nil, 0, fmt.Errorf("failed to build list jobs query: %w", err)
	}

	jobs, err := r.queryJobs(ctx, query, args, filter.IncludeSubmitter)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListPending returns every pending job with its submitter, newest first
func (r *JobRepository) ListPending(ctx context.Context) ([]models.Job, error) {
	query, args, err := r.selectJobs(true).
		Where(statusPredicate(approval.StatusPending)).
		OrderBy("j.created_at DESC", "j.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list pending jobs query: %w", err)
	}
	return r.queryJobs(ctx, query, args, true)
}

func (r *JobRepository) queryJobs(ctx context.Context, query string, args []interface{}, withSubmitter bool) ([]models.Job, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list jobs query")
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []models.Job{}
	for rows.Next() {
		job, err := scanJob(rows, withSubmitter)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning job row")
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error after iterating through job rows")
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return jobs, nil
}

// JobPatchSetMap converts the allow-listed patch into column assignments
func JobPatchSetMap(patch models.JobPatch) map[string]interface{} {
	set := map[string]interface{}{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Company != nil {
		set["company"] = *patch.Company
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Requirements != nil {
		set["requirements"] = patch.Requirements
	}
	if patch.SalaryMin != nil {
		set["salary_min"] = *patch.SalaryMin
	}
	if patch.SalaryMax != nil {
		set["salary_max"] = *patch.SalaryMax
	}
	if patch.JobType != nil {
		set["job_type"] = string(*patch.JobType)
	}
	if patch.WorkStyle != nil {
		set["work_style"] = string(*patch.WorkStyle)
	}
	if patch.ExperienceLevel != nil {
		set["experience_level"] = string(*patch.ExperienceLevel)
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}
	return set
}

// Update writes the allow-listed patch and returns the updated job
func (r *JobRepository) Update(ctx context.Context, id int64, patch models.JobPatch) (*models.Job, error) {
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	query, args, err := r.sb.Update("jobs").
		SetMap(JobPatchSetMap(patch)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(jobColumns)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update job SQL")
		return nil, fmt.Errorf("failed to build update job query: %w", err)
	}

	job, err := scanJob(r.db.Pool.QueryRow(ctx, query, args...), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJobNotFound
		}
		logger.Error().Err(err).Int64("jobID", id).Msg("Error executing update job query")
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

// SoftDelete deactivates a job; the row is kept
func (r *JobRepository) SoftDelete(ctx context.Context, id int64) error {
	query, args, err := r.sb.Update("jobs").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete job query: %w", err)
	}

	tag, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("jobID", id).Msg("Error executing delete job query")
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrJobNotFound
	}
	return nil
}

// Decide runs an approval decision under a row lock so concurrent decisions serialize
func (r *JobRepository) Decide(ctx context.Context, id int64, fn DecideFunc) (*models.Job, error) {
	var decided *models.Job

	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		query, args, err := r.selectJobs(false).Where(squirrel.Eq{"j.id": id}).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return fmt.Errorf("failed to build lock job query: %w", err)
		}

		job, err := scanJob(tx.QueryRow(ctx, query, args...), false)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrJobNotFound
			}
			return fmt.Errorf("failed to lock job: %w", err)
		}

		update, err := fn(job)
		if err != nil {
			return err
		}

		query, args, err = r.sb.Update("jobs").
			Set("approval_status", update.Status.Column()).
			Set("is_active", update.IsActive).
			Set("approved_by", update.ApprovedBy).
			Set("approved_at", update.ApprovedAt).
			Set("rejection_reason", update.RejectionReason).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build decide job query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			logger.Error().Err(err).Int64("jobID", id).Msg("Error executing decide job query")
			return fmt.Errorf("failed to persist decision: %w", err)
		}

		update.ApplyTo(job)
		decided = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

// Stats counts jobs per approval status
func (r *JobRepository) Stats(ctx context.Context) (models.JobStats, error) {
	stats := models.JobStats{ByStatus: map[string]int64{}}

	query, args, err := r.sb.
		Select(
			fmt.Sprintf("COALESCE(approval_status, '%s')", approval.StatusLegacyApproved),
			"COUNT(*)",
			"COUNT(*) FILTER (WHERE is_active)",
		).
		From("jobs").
		GroupBy("1").
		ToSql()
	if err != nil {
		return stats, fmt.Errorf("failed to build job stats query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing job stats query")
		return stats, fmt.Errorf("failed to count jobs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var total, active int64
		if err := rows.Scan(&status, &total, &active); err != nil {
			return stats, fmt.Errorf("failed to scan job stats: %w", err)
		}
		stats.ByStatus[status] = total
		stats.Total += total
		stats.Active += active
	}
	return stats, rows.Err()
}
