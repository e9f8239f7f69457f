package dto

import (
	"github.com/yigit/jobboard/internal/app/models"
)

// CreateJobRequest represents a job submission.
// is_active and approval_status are not accepted; new jobs always start pending and inactive.
type CreateJobRequest struct {
	Title           string   `json:"title" binding:"required,notblank,max=200" example:"Backend Engineer"`
	Company         string   `json:"company" binding:"required,notblank,max=200" example:"Acme"`
	Location        string   `json:"location" binding:"required,notblank,max=200" example:"Berlin"`
	Description     string   `json:"description" binding:"required,notblank,max=20000"`
	Requirements    []string `json:"requirements" binding:"omitempty,max=50,dive,notblank,max=500"`
	SalaryMin       *int64   `json:"salary_min" binding:"omitempty,min=0,max=2147483647"`
	SalaryMax       *int64   `json:"salary_max" binding:"omitempty,min=0,max=2147483647"`
	JobType         string   `json:"job_type" binding:"required,oneof=full-time part-time contract internship"`
	WorkStyle       string   `json:"work_style" binding:"required,oneof=remote hybrid onsite"`
	ExperienceLevel string   `json:"experience_level" binding:"required,oneof=entry mid senior executive"`
}

// ToModel converts the request into a NewJob
func (r *CreateJobRequest) ToModel() models.NewJob {
	return models.NewJob{
		Title:           r.Title,
		Company:         r.Company,
		Location:        r.Location,
		Description:     r.Description,
		Requirements:    r.Requirements,
		SalaryMin:       toInt32(r.SalaryMin),
		SalaryMax:       toInt32(r.SalaryMax),
		JobType:         models.JobType(r.JobType),
		WorkStyle:       models.WorkStyle(r.WorkStyle),
		ExperienceLevel: models.ExperienceLevel(r.ExperienceLevel),
	}
}

// UpdateJobRequest lists the job fields an owner may change
type UpdateJobRequest struct {
	Title           *string  `json:"title" binding:"omitempty,notblank,max=200"`
	Company         *string  `json:"company" binding:"omitempty,notblank,max=200"`
	Location        *string  `json:"location" binding:"omitempty,notblank,max=200"`
	Description     *string  `json:"description" binding:"omitempty,notblank,max=20000"`
	Requirements    []string `json:"requirements" binding:"omitempty,max=50,dive,notblank,max=500"`
	SalaryMin       *int64   `json:"salary_min" binding:"omitempty,min=0,max=2147483647"`
	SalaryMax       *int64   `json:"salary_max" binding:"omitempty,min=0,max=2147483647"`
	JobType         *string  `json:"job_type" binding:"omitempty,oneof=full-time part-time contract internship"`
	WorkStyle       *string  `json:"work_style" binding:"omitempty,oneof=remote hybrid onsite"`
	ExperienceLevel *string  `json:"experience_level" binding:"omitempty,oneof=entry mid senior executive"`
	IsActive        *bool    `json:"is_active"`
}

// ToPatch converts the request into the allow-listed JobPatch
func (r *UpdateJobRequest) ToPatch() models.JobPatch {
	patch := models.JobPatch{
		Title:        r.Title,
		Company:      r.Company,
		Location:     r.Location,
		Description:  r.Description,
		Requirements: r.Requirements,
		SalaryMin:    toInt32(r.SalaryMin),
		SalaryMax:    toInt32(r.SalaryMax),
		IsActive:     r.IsActive,
	}
	if r.JobType != nil {
		v := models.JobType(*r.JobType)
		patch.JobType = &v
	}
	if r.WorkStyle != nil {
		v := models.WorkStyle(*r.WorkStyle)
		patch.WorkStyle = &v
	}
	if r.ExperienceLevel != nil {
		v := models.ExperienceLevel(*r.ExperienceLevel)
		patch.ExperienceLevel = &v
	}
	return patch
}

// JobListQuery mirrors the public listing filter set
type JobListQuery struct {
	PageQuery
	Keyword         string `form:"keyword" binding:"omitempty,max=200"`
	Location        string `form:"location" binding:"omitempty,max=200"`
	JobType         string `form:"job_type" binding:"omitempty,oneof=full-time part-time contract internship"`
	WorkStyle       string `form:"work_style" binding:"omitempty,oneof=remote hybrid onsite"`
	ExperienceLevel string `form:"experience_level" binding:"omitempty,oneof=entry mid senior executive"`
	SalaryMin       *int64 `form:"salary_min" binding:"omitempty,min=0,max=2147483647"`
	SalaryMax       *int64 `form:"salary_max" binding:"omitempty,min=0,max=2147483647"`
}

// ToFilter converts the query into a JobFilter
func (q *JobListQuery) ToFilter() models.JobFilter {
	return models.JobFilter{
		Keyword:         q.Keyword,
		Location:        q.Location,
		JobType:         models.JobType(q.JobType),
		WorkStyle:       models.WorkStyle(q.WorkStyle),
		ExperienceLevel: models.ExperienceLevel(q.ExperienceLevel),
		SalaryMin:       toInt32(q.SalaryMin),
		SalaryMax:       toInt32(q.SalaryMax),
	}
}

// RejectJobRequest carries the reason shown to the job owner
type RejectJobRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required" example:"Insufficient detail provided"`
}

// toInt32 narrows a bounded request integer; binding tags already limit the range
func toInt32(v *int64) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
