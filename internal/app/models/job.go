package models

import (
	"time"

	"github.com/yigit/jobboard/internal/app/approval"
)

// JobType enumerates employment types
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
	JobTypeInternship JobType = "internship"
)

// WorkStyle enumerates where the work happens
type WorkStyle string

const (
	WorkStyleRemote WorkStyle = "remote"
	WorkStyleHybrid WorkStyle = "hybrid"
	WorkStyleOnsite WorkStyle = "onsite"
)

// ExperienceLevel enumerates seniority levels
type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceExecutive ExperienceLevel = "executive"
)

// Job defines the job posting model based on the 'jobs' table
type Job struct {
	ID              int64           `json:"id" db:"id"`
	Title           string          `json:"title" db:"title"`
	Company         string          `json:"company" db:"company"`
	Location        string          `json:"location" db:"location"`
	Description     string          `json:"description" db:"description"`
	Requirements    []string        `json:"requirements" db:"requirements"`
	SalaryMin       *int32          `json:"salary_min,omitempty" db:"salary_min"`
	SalaryMax       *int32          `json:"salary_max,omitempty" db:"salary_max"`
	JobType         JobType         `json:"job_type" db:"job_type"`
	WorkStyle       WorkStyle       `json:"work_style" db:"work_style"`
	ExperienceLevel ExperienceLevel `json:"experience_level" db:"experience_level"`
	CreatedBy       int64           `json:"created_by" db:"created_by"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	ApprovalStatus  approval.Status `json:"approval_status" db:"approval_status"`
	ApprovedBy      *int64          `json:"approved_by,omitempty" db:"approved_by"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	RejectionReason *string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	// Populated by listings that join the submitter
	SubmitterName  string `json:"submitter_name,omitempty"`
	SubmitterEmail string `json:"submitter_email,omitempty"`
}

// IsPubliclyVisible reports whether the job may appear in the public listing
func (j *Job) IsPubliclyVisible() bool {
	return approval.IsPubliclyVisible(j.IsActive, j.ApprovalStatus)
}

// NewJob carries caller-supplied fields for a job submission.
// Activity and approval state are not caller controlled.
type NewJob struct {
	Title           string
	Company         string
	Location        string
	Description     string
	Requirements    []string
	SalaryMin       *int32
	SalaryMax       *int32
	JobType         JobType
	WorkStyle       WorkStyle
	ExperienceLevel ExperienceLevel
}

// JobPatch is the allow-list of columns an owner may update; nil fields are left alone
type JobPatch struct {
	Title           *string
	Company         *string
	Location        *string
	Description     *string
	Requirements    []string
	SalaryMin       *int32
	SalaryMax       *int32
	JobType         *JobType
	WorkStyle       *WorkStyle
	ExperienceLevel *ExperienceLevel
	IsActive        *bool
}

// IsEmpty reports whether the patch changes nothing
func (p JobPatch) IsEmpty() bool {
	return p.Title == nil && p.Company == nil && p.Location == nil && p.Description == nil &&
		p.Requirements == nil && p.SalaryMin == nil && p.SalaryMax == nil && p.JobType == nil &&
		p.WorkStyle == nil && p.ExperienceLevel == nil && p.IsActive == nil
}

// ApplyTo copies the patch onto job, used to validate the merged result
func (p JobPatch) ApplyTo(job *Job) {
	if p.Title != nil {
		job.Title = *p.Title
	}
	if p.Company != nil {
		job.Company = *p.Company
	}
	if p.Location != nil {
		job.Location = *p.Location
	}
	if p.Description != nil {
		job.Description = *p.Description
	}
	if p.Requirements != nil {
		job.Requirements = p.Requirements
	}
	if p.SalaryMin != nil {
		job.SalaryMin = p.SalaryMin
	}
	if p.SalaryMax != nil {
		job.SalaryMax = p.SalaryMax
	}
	if p.JobType != nil {
		job.JobType = *p.JobType
	}
	if p.WorkStyle != nil {
		job.WorkStyle = *p.WorkStyle
	}
	if p.ExperienceLevel != nil {
		job.ExperienceLevel = *p.ExperienceLevel
	}
	if p.IsActive != nil {
		job.IsActive = *p.IsActive
	}
}

// JobFilter is the AND-composed filter set of the job listing
type JobFilter struct {
	Keyword         string
	Location        string
	JobType         JobType
	WorkStyle       WorkStyle
	ExperienceLevel ExperienceLevel
	// SalaryMin matches jobs whose min OR max is at least the value
	SalaryMin *int32
	// SalaryMax matches jobs whose min OR max is at most the value
	SalaryMax *int32

	// PublicOnly forces is_active and an approved (or legacy) status
	PublicOnly bool
	// Scope filters used by owner and admin listings
	CreatedBy      *int64
	ApprovalStatus *approval.Status
	IsActive       *bool

	// IncludeSubmitter joins the submitter's name and email (admin listings only)
	IncludeSubmitter bool
}

// ApprovalUpdate is the state written by an approval decision
type ApprovalUpdate struct {
	Status          approval.Status
	IsActive        bool
	ApprovedBy      int64
	ApprovedAt      time.Time
	RejectionReason *string
}

// ApplyTo copies the decision onto job
func (u ApprovalUpdate) ApplyTo(job *Job) {
	job.ApprovalStatus = u.Status
	job.IsActive = u.IsActive
	approvedBy := u.ApprovedBy
	approvedAt := u.ApprovedAt
	job.ApprovedBy = &approvedBy
	job.ApprovedAt = &approvedAt
	job.RejectionReason = u.RejectionReason
}
