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
	"github.com/yigit/jobboard/internal/pkg/logger"
)

// IApplicationRepository defines the interface for job application database operations
type IApplicationRepository interface {
	Create(ctx context.Context, app models.NewApplication) (*models.JobApplication, error)
	GetByID(ctx context.Context, id int64) (*models.JobApplication, error)
	ListForUser(ctx context.Context, userID int64) ([]models.ApplicationWithJob, error)
	ListForJob(ctx context.Context, jobID int64) ([]models.ApplicationWithApplicant, error)
	UpdateStatus(ctx context.Context, id, jobID int64, status models.ApplicationStatus) (*models.JobApplication, error)
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error)
}

// ApplicationRepository handles database operations for job applications
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var applicationColumns = []string{
	"id", "job_id", "user_id", "cover_letter", "resume_url", "status", "applied_at", "updated_at",
}

func applicationDest(a *models.JobApplication) []interface{} {
	return []interface{}{
		&a.ID, &a.JobID, &a.UserID, &a.CoverLetter, &a.ResumeURL, &a.Status, &a.AppliedAt, &a.UpdatedAt,
	}
}

func scanApplication(row pgx.Row) (*models.JobApplication, error) {
	a := &models.JobApplication{}
	if err := row.Scan(applicationDest(a)...); err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts an application. The (job_id, user_id) unique constraint is the authoritative duplicate guard.
func (r *ApplicationRepository) Create(ctx context.Context, app models.NewApplication) (*models.JobApplication, error) {
	query, args, err := r.sb.Insert("job_applications").
		Columns("job_id", "user_id", "cover_letter", "resume_url", "status").
		Values(app.JobID, app.UserID, app.CoverLetter, app.ResumeURL, models.ApplicationPending).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create application SQL")
		return nil, fmt.Errorf("failed to build create application query: %w", err)
	}

	created, err := scanApplication(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, dberrors.ApplicationsUniqueKey):
			return nil, apperrors.ErrAlreadyApplied
		case dberrors.IsForeignKeyViolation(err):
			return nil, apperrors.ErrJobNotFound
		}
		logger.Error().Err(err).
			Int64("jobID", app.JobID).
			Int64("userID", app.UserID).
			Msg("Error executing create application query")
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return created, nil
}

// GetByID retrieves an application by its ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.JobApplication, error) {
	query, args, err := r.sb.Select(applicationColumns...).From("job_applications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error executing get application query")
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// ListForUser returns the user's applications with a summary of each job, newest first
func (r *ApplicationRepository) ListForUser(ctx context.Context, userID int64) ([]models.ApplicationWithJob, error) {
	cols := append(prefixColumns("a", applicationColumns), "j.title", "j.company", "j.location", "j.job_type", "j.is_active")
	query, args, err := r.sb.Select(cols...).
		From("job_applications a").
		Join("jobs j ON j.id = a.job_id").
		Where(squirrel.Eq{"a.user_id": userID}).
		OrderBy("a.applied_at DESC", "a.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list user applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error executing list user applications query")
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []models.ApplicationWithJob{}
	for rows.Next() {
		var item models.ApplicationWithJob
		dest := append(applicationDest(&item.JobApplication),
			&item.Job.Title, &item.Job.Company, &item.Job.Location, &item.Job.JobType, &item.Job.IsActive)
		if err := rows.Scan(dest...); err != nil {
			logger.Error().Err(err).Msg("Error scanning application row")
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}

// ListForJob returns a job's applications with the applicant's contact details, newest first
func (r *ApplicationRepository) ListForJob(ctx context.Context, jobID int64) ([]models.ApplicationWithApplicant, error) {
	cols := append(prefixColumns("a", applicationColumns), "u.name", "u.email", "p.phone", "p.resume_url")
	query, args, err := r.sb.Select(cols...).
		From("job_applications a").
		Join("users u ON u.id = a.user_id").
		LeftJoin("user_profiles p ON p.user_id = a.user_id").
		Where(squirrel.Eq{"a.job_id": jobID}).
		OrderBy("a.applied_at DESC", "a.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list job applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Int64("jobID", jobID).Msg("Error executing list job applications query")
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := []models.ApplicationWithApplicant{}
	for rows.Next() {
		var item models.ApplicationWithApplicant
		dest := append(applicationDest(&item.JobApplication),
			&item.Applicant.Name, &item.Applicant.Email, &item.Applicant.Phone, &item.Applicant.ResumeURL)
		if err := rows.Scan(dest...); err != nil {
			logger.Error().Err(err).Msg("Error scanning application row")
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	return apps, nil
}

// UpdateStatus changes the status of an application that belongs to jobID
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id, jobID int64, status models.ApplicationStatus) (*models.JobApplication, error) {
	query, args, err := r.sb.Update("job_applications").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "job_id": jobID}).
		Suffix("RETURNING " + joinColumns(applicationColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update application status query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error executing update application status query")
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	return app, nil
}

// CountByStatus returns the number of applications per status
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	query, args, err := r.sb.Select("status", "COUNT(*)").From("job_applications").GroupBy("status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing count applications query")
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}
	defer rows.Close()

	counts := map[models.ApplicationStatus]int64{}
	for rows.Next() {
		var status models.ApplicationStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan application count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
