package dto

import (
	"github.com/yigit/jobboard/internal/app/approval"
	"github.com/yigit/jobboard/internal/app/models"
)

// AdminUserQuery filters the admin user listing
type AdminUserQuery struct {
	PageQuery
	Search string `form:"search" binding:"omitempty,max=200"`
	Role   string `form:"role" binding:"omitempty,oneof=user employer admin"`
}

// ToFilter converts the query into a UserFilter
func (q *AdminUserQuery) ToFilter() models.UserFilter {
	return models.UserFilter{Search: q.Search, Role: models.RoleType(q.Role)}
}

// AdminJobQuery filters the admin job listing
type AdminJobQuery struct {
	PageQuery
	Search         string `form:"search" binding:"omitempty,max=200"`
	ApprovalStatus string `form:"approval_status" binding:"omitempty,oneof=pending approved rejected"`
	IsActive       *bool  `form:"is_active"`
}

// ToFilter converts the query into a JobFilter without public visibility rules
func (q *AdminJobQuery) ToFilter() models.JobFilter {
	f := models.JobFilter{Keyword: q.Search, IsActive: q.IsActive, IncludeSubmitter: true}
	if q.ApprovalStatus != "" {
		s := approval.Status(q.ApprovalStatus)
		f.ApprovalStatus = &s
	}
	return f
}

// UpdateRoleRequest changes a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user employer admin"`
}
