package models

import "time"

// ApplicationStatus is the review state of a job application
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationReviewed ApplicationStatus = "reviewed"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// ApplicationStatuses lists the bounded status vocabulary
func ApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected}
}

// Valid reports whether s belongs to the status vocabulary
func (s ApplicationStatus) Valid() bool {
	for _, v := range ApplicationStatuses() {
		if s == v {
			return true
		}
	}
	return false
}

// JobApplication defines the application model based on the 'job_applications' table
type JobApplication struct {
	ID          int64             `json:"id" db:"id"`
	JobID       int64             `json:"job_id" db:"job_id"`
	UserID      int64             `json:"user_id" db:"user_id"`
	CoverLetter *string           `json:"cover_letter,omitempty" db:"cover_letter"`
	ResumeURL   *string           `json:"resume_url,omitempty" db:"resume_url"`
	Status      ApplicationStatus `json:"status" db:"status"`
	AppliedAt   time.Time         `json:"applied_at" db:"applied_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// JobSummary is the job side of an applicant's application listing
type JobSummary struct {
	Title    string  `json:"title"`
	Company  string  `json:"company"`
	Location string  `json:"location"`
	JobType  JobType `json:"job_type"`
	IsActive bool    `json:"is_active"`
}

// ApplicationWithJob is an application joined with its job summary
type ApplicationWithJob struct {
	JobApplication
	Job JobSummary `json:"job"`
}

// ApplicantSummary is the applicant side of an owner's application listing
type ApplicantSummary struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	ResumeURL *string `json:"resume_url,omitempty"`
}

// ApplicationWithApplicant is an application joined with applicant contact details
type ApplicationWithApplicant struct {
	JobApplication
	Applicant ApplicantSummary `json:"applicant"`
}

// NewApplication carries the fields of an apply request
type NewApplication struct {
	JobID       int64
	UserID      int64
	CoverLetter *string
	ResumeURL   *string
}
