package models

// DashboardStats aggregates counts for the admin dashboard
type DashboardStats struct {
	TotalUsers           int64                       `json:"total_users"`
	UsersByRole          map[RoleType]int64          `json:"users_by_role"`
	TotalJobs            int64                       `json:"total_jobs"`
	ActiveJobs           int64                       `json:"active_jobs"`
	PendingJobs          int64                       `json:"pending_jobs"`
	JobsByStatus         map[string]int64            `json:"jobs_by_status"`
	TotalApplications    int64                       `json:"total_applications"`
	ApplicationsByStatus map[ApplicationStatus]int64 `json:"applications_by_status"`
}

// JobStats summarizes job rows by approval status
type JobStats struct {
	Total    int64
	Active   int64
	ByStatus map[string]int64
}
