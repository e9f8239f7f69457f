package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/jobboard/internal/app/auth"
	"github.com/yigit/jobboard/internal/app/models"
	"github.com/yigit/jobboard/internal/app/models/dto"
	"github.com/yigit/jobboard/internal/app/repositories/memstore"
	"github.com/yigit/jobboard/internal/pkg/auth"
	"github.com/yigit/jobboard/internal/pkg/email"
	"github.com/yigit/jobboard/internal/pkg/oauth"
	"github.com/yigit/jobboard/internal/pkg/realtime"
)

// plainHasher keeps tests fast; bcrypt is covered in pkg/auth
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Compare(password, hash string) bool  { return hash == "hashed:"+password }

type sentDecision struct {
	to       string
	decision email.JobDecision
}

type recordingMailer struct {
	mu        sync.Mutex
	welcomed  []string
	decisions []sentDecision
	err       error
}

func (m *recordingMailer) SendWelcomeEmail(toEmail, toName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomed = append(m.welcomed, toEmail)
	return m.err
}

func (m *recordingMailer) SendJobDecisionEmail(toEmail, toName string, decision email.JobDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, sentDecision{to: toEmail, decision: decision})
	return m.err
}

type publishedEvent struct {
	userID int64
	event  realtime.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, userID int64, event realtime.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{userID: userID, event: event})
	return p.err
}

// stubProvider resolves every credential to a fixed profile
type stubProvider struct {
	name    models.AuthProvider
	enabled bool
	profile oauth.Profile
	err     error
}

func (p *stubProvider) Name() models.AuthProvider { return p.name }
func (p *stubProvider) Enabled() bool             { return p.enabled }

func (p *stubProvider) Resolve(ctx context.Context, cred oauth.Credential) (*oauth.Profile, error) {
	if p.err != nil {
		return nil, p.err
	}
	if cred.Code == "" && cred.AccessToken == "" {
		return nil, oauth.ErrNoCredential
	}
	profile := p.profile
	profile.Provider = p.name
	return &profile, nil
}

type fixture struct {
	store     *memstore.Store
	jwt       *auth.JWTService
	mailer    *recordingMailer
	publisher *recordingPublisher
	google    *stubProvider

	auth          AuthService
	jobs          JobService
	approvals     ApprovalService
	applications  ApplicationService
	notifications NotificationService
	admin         AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:     memstore.New(),
		jwt:       auth.NewJWTService(auth.JWTConfig{SecretKey: "services-test-secret", TokenIssuer: "test"}),
		mailer:    &recordingMailer{},
		publisher: &recordingPublisher{},
		google: &stubProvider{
			name:    models.ProviderGoogle,
			enabled: true,
			profile: oauth.Profile{ProviderID: "g-123", Email: "oauth@example.com", EmailVerified: true, Name: "OAuth User"},
		},
	}
	linkedin := &stubProvider{name: models.ProviderLinkedIn}

	log := zerolog.Nop()
	repos := f.store.Repositories()
	authz := appauth.NewAuthorizationService(repos.JobRepository)

	f.auth = NewAuthService(repos.UserRepository, f.jwt, plainHasher{}, f.mailer, []oauth.Provider{f.google, linkedin}, log)
	f.jobs = NewJobService(repos.JobRepository, authz, log)
	f.approvals = NewApprovalService(
		repos.JobRepository,
		repos.UserRepository,
		repos.NotificationRepository,
		authz,
		f.publisher,
		f.mailer,
		log,
		WithRetryInterval(time.Millisecond),
	)
	f.applications = NewApplicationService(repos.ApplicationRepository, repos.JobRepository, authz, log)
	f.notifications = NewNotificationService(repos.NotificationRepository, log)
	f.admin = NewAdminService(repos.UserRepository, repos.JobRepository, repos.ApplicationRepository, authz, log)
	return f
}

// user registers an account and returns its identity
func (f *fixture) user(t *testing.T, name string, role models.RoleType) models.Identity {
	t.Helper()
	hash := "hashed:password123"
	u, err := f.store.Users().Create(context.Background(), models.NewUser{
		Email:        strings.ToLower(name) + "@example.com",
		PasswordHash: &hash,
		Name:         name,
		Role:         role,
		AuthProvider: models.ProviderLocal,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u.Identity()
}

func jobRequest(title string) *dto.CreateJobRequest {
	return &dto.CreateJobRequest{
		Title:           title,
		Company:         "Acme",
		Location:        "Berlin",
		Description:     "Build and run the platform",
		Requirements:    []string{"Go", "PostgreSQL"},
		JobType:         string(models.JobTypeFullTime),
		WorkStyle:       string(models.WorkStyleRemote),
		ExperienceLevel: string(models.ExperienceMid),
	}
}

func (f *fixture) submitJob(t *testing.T, owner models.Identity, title string) *models.Job {
	t.Helper()
	job, err := f.jobs.Create(context.Background(), owner, jobRequest(title))
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func (f *fixture) approvedJob(t *testing.T, owner, admin models.Identity, title string) *models.Job {
	t.Helper()
	job := f.submitJob(t, owner, title)
	approved, err := f.approvals.Approve(context.Background(), admin, job.ID)
	if err != nil {
		t.Fatalf("approve job: %v", err)
	}
	return approved
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}
