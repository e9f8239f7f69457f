package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/yigit/jobboard/internal/app/approval"
	appauth "github.com/yigit/jobboard/internal/app/auth"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/pkg/apperrors"
)

// ── Approve ────────────────────────────────────────────────────

func TestApprove_PendingJobBecomesVisible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)

	job := f.submitJob(t, owner, "Backend Engineer")
	if job.ApprovalStatus != approval.StatusPending || job.IsActive {
		t.Fatalf("new job = (%s, active=%v), want pending and inactive", job.ApprovalStatus, job.IsActive)
	}

	approved, err := f.approvals.Approve(ctx, admin, job.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if approved.ApprovalStatus != approval.StatusApproved || !approved.IsActive {
		t.Fatalf("approved job = (%s, active=%v), want approved and active", approved.ApprovalStatus, approved.IsActive)
	}
	if approved.ApprovedBy == nil || *approved.ApprovedBy != admin.ID || approved.ApprovedAt == nil {
		t.Fatalf("approved_by/approved_at not recorded: %+v", approved)
	}

	list, err := f.jobs.List(ctx, &dto.JobListQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if list.Pagination.TotalItems != 1 {
		t.Fatalf("public listing total = %d, want 1", list.Pagination.TotalItems)
	}
}

func TestApprove_NotifiesOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)

	job := f.approvedJob(t, owner, admin, "Data Engineer")

	inbox, err := f.notifications.List(ctx, owner, &dto.NotificationListQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(inbox.Items) != 1 || inbox.UnreadCount != 1 {
		t.Fatalf("inbox = %d items, %d unread; want 1 and 1", len(inbox.Items), inbox.UnreadCount)
	}
	n := inbox.Items[0]
	if n.Type != models.NotificationJobApproved {
		t.Errorf("type = %s, want %s", n.Type, models.NotificationJobApproved)
	}
	if n.RelatedJobID == nil || *n.RelatedJobID != job.ID {
		t.Errorf("related job = %v, want %d", n.RelatedJobID, job.ID)
	}
	if !strings.Contains(n.Message, "Data Engineer") {
		t.Errorf("message %q does not name the job", n.Message)
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].userID != owner.ID || f.publisher.events[0].event.Type != EventNotification {
		t.Errorf("published events = %+v, want one notification for the owner", f.publisher.events)
	}
	if len(f.mailer.decisions) != 1 || !f.mailer.decisions[0].decision.Approved || f.mailer.decisions[0].to != "owner@example.com" {
		t.Errorf("decision emails = %+v", f.mailer.decisions)
	}
}

func TestApprove_RequiresAdmin(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", models.RoleEmployer)
	job := f.submitJob(t, owner, "Backend Engineer")

	_, err := f.approvals.Approve(context.Background(), owner, job.ID)
	assertErrorIs(t, err, appauth.ErrAdminRequired)
	assertErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestApprove_UnknownJob(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "Admin", models.RoleAdmin)

	_, err := f.approvals.Approve(context.Background(), admin, 404)
	assertErrorIs(t, err, apperrors.ErrJobNotFound)
}

// ── Transitions ────────────────────────────────────────────────

func TestDecisions_RepeatAndOppositeAreRefused(t *testing.T) {
	const reason = "Missing salary information"

	tests := []struct {
		name   string
		first  string
		second string
		want   error
	}{
		{"approve twice", "approve", "approve", apperrors.ErrAlreadyInState},
		{"reject twice", "reject", "reject", apperrors.ErrAlreadyInState},
		{"reject after approve", "approve", "reject", apperrors.ErrInvalidTransition},
		{"approve after reject", "reject", "approve", apperrors.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			owner := f.user(t, "Owner", models.RoleEmployer)
			admin := f.user(t, "Admin", models.RoleAdmin)
			job := f.submitJob(t, owner, "Backend Engineer")

			decide := func(d string) (*models.Job, error) {
				if d == "approve" {
					return f.approvals.Approve(ctx, admin, job.ID)
				}
				return f.approvals.Reject(ctx, admin, job.ID, reason)
			}

			first, err := decide(tt.first)
			if err != nil {
				t.Fatalf("first decision error = %v", err)
			}
			_, err = decide(tt.second)
			assertErrorIs(t, err, tt.want)
			assertErrorIs(t, err, apperrors.ErrConflict)

			stored, err := f.store.Jobs().GetByID(ctx, job.ID)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if stored.ApprovalStatus != first.ApprovalStatus || stored.IsActive != first.IsActive {
				t.Fatalf("state changed by refused decision: %s/%v -> %s/%v",
					first.ApprovalStatus, first.IsActive, stored.ApprovalStatus, stored.IsActive)
			}
			if attempts := f.store.Notifications().CreateAttempts(); attempts != 1 {
				t.Fatalf("notification inserts = %d, want 1", attempts)
			}
		})
	}
}

func TestDecisions_LegacyJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)

	legacy := f.store.Jobs().InsertLegacy(jobRequest("Old Posting").ToModel(), owner.ID, true)

	_, err := f.approvals.Approve(ctx, admin, legacy.ID)
	assertErrorIs(t, err, apperrors.ErrAlreadyInState)

	_, err = f.approvals.Reject(ctx, admin, legacy.ID, "No longer acceptable content")
	assertErrorIs(t, err, apperrors.ErrInvalidTransition)

	got, err := f.jobs.Get(ctx, nil, legacy.ID)
	if err != nil {
		t.Fatalf("legacy job should stay public: %v", err)
	}
	if got.ApprovalStatus != approval.StatusLegacyApproved {
		t.Fatalf("status = %s, want %s", got.ApprovalStatus, approval.StatusLegacyApproved)
	}
}

func TestDecisions_ConcurrentApproveHasOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	job := f.submitJob(t, owner, "Backend Engineer")

	const racers = 8
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.approvals.Approve(ctx, admin, job.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, already int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperrors.ErrAlreadyInState):
			already++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || already != racers-1 {
		t.Fatalf("winners = %d, already-in-state = %d", ok, already)
	}
	if attempts := f.store.Notifications().CreateAttempts(); attempts != 1 {
		t.Fatalf("notification inserts = %d, want 1", attempts)
	}
}

// ── Reject ─────────────────────────────────────────────────────

func TestReject_RecordsReasonAndStaysHidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	job := f.submitJob(t, owner, "Backend Engineer")

	rejected, err := f.approvals.Reject(ctx, admin, job.ID, "  Insufficient detail provided  ")
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.ApprovalStatus != approval.StatusRejected || rejected.IsActive {
		t.Fatalf("rejected job = (%s, active=%v)", rejected.ApprovalStatus, rejected.IsActive)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != "Insufficient detail provided" {
		t.Fatalf("reason = %v", rejected.RejectionReason)
	}

	_, err = f.jobs.Get(ctx, nil, job.ID)
	assertErrorIs(t, err, apperrors.ErrJobNotFound)

	inbox, err := f.notifications.List(ctx, owner, &dto.NotificationListQuery{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(inbox.Items) != 1 || inbox.Items[0].Type != models.NotificationJobRejected {
		t.Fatalf("inbox = %+v", inbox.Items)
	}
	if !strings.Contains(inbox.Items[0].Message, "Insufficient detail provided") {
		t.Errorf("message %q does not carry the reason", inbox.Items[0].Message)
	}
}

func TestReject_ShortReasonChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	job := f.submitJob(t, owner, "Backend Engineer")

	for _, reason := range []string{"", "too short", "   bad      "} {
		_, err := f.approvals.Reject(ctx, admin, job.ID, reason)
		assertErrorIs(t, err, apperrors.ErrValidationFailed)
	}

	stored, _ := f.store.Jobs().GetByID(ctx, job.ID)
	if stored.ApprovalStatus != approval.StatusPending {
		t.Fatalf("status = %s, want pending", stored.ApprovalStatus)
	}
	if attempts := f.store.Notifications().CreateAttempts(); attempts != 0 {
		t.Fatalf("notification inserts = %d, want 0", attempts)
	}
}

// ── Notification saga ──────────────────────────────────────────

func TestApprove_RetriesNotificationInsert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	job := f.submitJob(t, owner, "Backend Engineer")

	f.store.Notifications().FailCreates(NotificationAttempts-1, errors.New("connection reset"))

	if _, err := f.approvals.Approve(ctx, admin, job.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if attempts := f.store.Notifications().CreateAttempts(); attempts != NotificationAttempts {
		t.Fatalf("attempts = %d, want %d", attempts, NotificationAttempts)
	}
	unread, _ := f.notifications.UnreadCount(ctx, owner)
	if unread != 1 {
		t.Fatalf("unread = %d, want 1", unread)
	}
}

func TestApprove_DecisionStandsWhenNotificationFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	job := f.submitJob(t, owner, "Backend Engineer")

	f.store.Notifications().FailCreates(NotificationAttempts+5, errors.New("database unavailable"))

	approved, err := f.approvals.Approve(ctx, admin, job.ID)
	if err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if approved.ApprovalStatus != approval.StatusApproved {
		t.Fatalf("status = %s, want approved", approved.ApprovalStatus)
	}
	if attempts := f.store.Notifications().CreateAttempts(); attempts != NotificationAttempts {
		t.Fatalf("attempts = %d, want %d", attempts, NotificationAttempts)
	}
	if len(f.publisher.events) != 0 || len(f.mailer.decisions) != 0 {
		t.Fatalf("follow-up steps ran without a notification row")
	}
}

func TestApprove_CancelledRequestStillNotifies(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)
	job := f.submitJob(t, owner, "Backend Engineer")

	f.store.Notifications().FailCreates(1, errors.New("timeout"))
	f.publisher.err = errors.New("redis down")
	f.mailer.err = errors.New("smtp down")

	// The in-memory store ignores ctx, so only the retry loop could observe the cancellation
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.approvals.Approve(ctx, admin, job.ID); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if attempts := f.store.Notifications().CreateAttempts(); attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if unread, _ := f.notifications.UnreadCount(context.Background(), owner); unread != 1 {
		t.Fatalf("unread = %d, want 1", unread)
	}
}

// ── ListPending ────────────────────────────────────────────────

func TestListPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "Owner", models.RoleEmployer)
	admin := f.user(t, "Admin", models.RoleAdmin)

	f.submitJob(t, owner, "First")
	f.submitJob(t, owner, "Second")
	f.approvedJob(t, owner, admin, "Third")

	pending, err := f.approvals.ListPending(ctx, admin)
	if err != nil {
		t.Fatalf("ListPending() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}
	for _, j := range pending {
		if j.SubmitterEmail != "owner@example.com" {
			t.Errorf("submitter email = %q", j.SubmitterEmail)
		}
	}

	_, err = f.approvals.ListPending(ctx, owner)
	assertErrorIs(t, err, appauth.ErrAdminRequired)
}
