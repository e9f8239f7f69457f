package services

import (
	"context"
	"testing"

	appauth "github.com/yigit/jobboard/internal/app/auth"
	"github.com/yigit/jobboard/internal/app/approval"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
)

func int64p(v int64) *int64 { return &v }
func boolp(v bool) *bool    { return &v }
func strp(v string) *string { return &v }

// ── Create ─────────────────────────────────────────────────────

func TestCreateJob_SanitizesAndStartsPending(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", models.RoleEmployer)

	req := jobRequest("<b>Senior</b> Go Developer")
	req.Requirements = []string{" Go ", "<p></p>", "Kubernetes"}
	job, err := f.jobs.Create(context.Background(), owner, req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if job.Title != "Senior Go Developer" {
		t.Errorf("title = %q", job.Title)
	}
	if len(job.Requirements) != 2 || job.Requirements[0] != "Go" {
		t.Errorf("requirements = %v", job.Requirements)
	}
	if job.ApprovalStatus != approval.StatusPending || job.IsActive || job.CreatedBy != owner.ID {
		t.Errorf("job = %+v", job)
	}
}

func TestCreateJob_Validation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", models.RoleEmployer)
	ctx := context.Background()

	blank := jobRequest("<script></script>")
	_, err := f.jobs.Create(ctx, owner, blank)
	assertErrorIs(t, err, apperrors.ErrValidationFailed)

	inverted := jobRequest("Backend")
	inverted.SalaryMin = int64p(90000)
	inverted.SalaryMax = int64p(50000)
	_, err = f.jobs.Create(ctx, owner, inverted)
	assertErrorIs(t, err, apperrors.ErrValidationFailed)
}

// ── Get / List ─────────────────────────────────────────────────

func TestGetJob_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	other := f.user(t, "Other", models.RoleUser)
	admin := f.user(t, "Admin", models.RoleAdmin)
	job := f.submitJob(t, owner, "Pending Job")

	tests := []struct {
		name      string
		viewer    *models.Identity
		wantErr   error
		wantEmail bool
	}{
		{"anonymous", nil, apperrors.ErrJobNotFound, false},
		{"other user", &other, apperrors.ErrJobNotFound, false},
		{"owner", &owner, nil, false},
		{"admin", &admin, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.jobs.Get(ctx, tt.viewer, job.ID)
			if tt.wantErr != nil {
				assertErrorIs(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if (got.SubmitterEmail != "") != tt.wantEmail {
				t.Errorf("submitter email = %q", got.SubmitterEmail)
			}
		})
	}
}

func TestListJobs_FiltersAndPaginates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)

	for _, title := range []string{"Go Developer", "Rust Developer", "Go SRE"} {
		f.approvedJob(t, owner, admin, title)
	}
	f.submitJob(t, owner, "Go Pending")

	all, err := f.jobs.List(ctx, &dto.JobListQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Pagination.TotalItems != 3 {
		t.Fatalf("total = %d, want 3", all.Pagination.TotalItems)
	}
	jobs := all.Items.([]models.Job)
	if jobs[0].Title != "Go SRE" {
		t.Errorf("first = %q, want newest first", jobs[0].Title)
	}

	page, err := f.jobs.List(ctx, &dto.JobListQuery{Keyword: "go", PageQuery: dto.PageQuery{Page: 2, Size: 1}})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Pagination.TotalItems != 2 || page.Pagination.TotalPages != 2 {
		t.Fatalf("pagination = %+v", page.Pagination)
	}
	if got := page.Items.([]models.Job); len(got) != 1 || got[0].Title != "Go Developer" {
		t.Fatalf("page 2 = %+v", got)
	}
}

func TestListMine_IncludesEveryState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	f.submitJob(t, owner, "Pending")
	f.approvedJob(t, owner, admin, "Approved")
	f.submitJob(t, admin, "Someone else's")

	mine, err := f.jobs.ListMine(ctx, owner, &dto.PageQuery{})
	if err != nil {
		t.Fatalf("ListMine() error = %v", err)
	}
	if mine.Pagination.TotalItems != 2 {
		t.Fatalf("total = %d, want 2", mine.Pagination.TotalItems)
	}
}

// ── Update / Delete ────────────────────────────────────────────

func TestUpdateJob_Ownership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	stranger := f.user(t, "Stranger", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	job := f.submitJob(t, owner, "Original")

	_, err := f.jobs.Update(ctx, stranger, job.ID, &dto.UpdateJobRequest{Title: strp("Hijacked")})
	assertErrorIs(t, err, appauth.ErrNotJobOwner)

	updated, err := f.jobs.Update(ctx, owner, job.ID, &dto.UpdateJobRequest{Title: strp("Renamed")})
	if err != nil {
		t.Fatalf("owner Update() error = %v", err)
	}
	if updated.Title != "Renamed" || updated.Company != "Acme" {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := f.jobs.Update(ctx, admin, job.ID, &dto.UpdateJobRequest{Location: strp("Remote")}); err != nil {
		t.Fatalf("admin Update() error = %v", err)
	}

	_, err = f.jobs.Update(ctx, owner, 999, &dto.UpdateJobRequest{Title: strp("x")})
	assertErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestUpdateJob_Rules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	pending := f.submitJob(t, owner, "Pending")

	_, err := f.jobs.Update(ctx, owner, pending.ID, &dto.UpdateJobRequest{})
	assertErrorIs(t, err, ErrNothingToUpdate)

	_, err = f.jobs.Update(ctx, owner, pending.ID, &dto.UpdateJobRequest{IsActive: boolp(true)})
	assertErrorIs(t, err, ErrActivationRequiresApproval)

	withSalary := jobRequest("Salaried")
	withSalary.SalaryMax = int64p(60000)
	salaried, err := f.jobs.Create(ctx, owner, withSalary)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err = f.jobs.Update(ctx, owner, salaried.ID, &dto.UpdateJobRequest{SalaryMin: int64p(70000)})
	assertErrorIs(t, err, apperrors.ErrValidationFailed)

	approved := f.approvedJob(t, owner, admin, "Approved")
	if _, err := f.jobs.Update(ctx, owner, approved.ID, &dto.UpdateJobRequest{IsActive: boolp(false)}); err != nil {
		t.Fatalf("deactivate error = %v", err)
	}
	reactivated, err := f.jobs.Update(ctx, owner, approved.ID, &dto.UpdateJobRequest{IsActive: boolp(true)})
	if err != nil {
		t.Fatalf("reactivate error = %v", err)
	}
	if !reactivated.IsActive || reactivated.ApprovalStatus != approval.StatusApproved {
		t.Errorf("reactivated = %+v", reactivated)
	}
}

func TestDeleteJob_IsSoft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	stranger := f.user(t, "Stranger", models.RoleUser)
	admin := f.user(t, "Admin", models.RoleAdmin)
	job := f.approvedJob(t, owner, admin, "Doomed")

	assertErrorIs(t, f.jobs.Delete(ctx, stranger, job.ID), appauth.ErrNotJobOwner)

	if err := f.jobs.Delete(ctx, owner, job.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	_, err := f.jobs.Get(ctx, nil, job.ID)
	assertErrorIs(t, err, apperrors.ErrJobNotFound)

	kept, err := f.jobs.Get(ctx, &owner, job.ID)
	if err != nil {
		t.Fatalf("owner should still see the row: %v", err)
	}
	if kept.IsActive {
		t.Fatalf("job still active after delete")
	}
}
