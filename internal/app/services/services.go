// Package services holds the business rules of the job board.
//
// Services defined in this package:
//   - AuthService: registration, password and OAuth sign-in, profile and password changes
//   - JobService: job submission, listing, owner updates and soft delete
//   - ApprovalService: admin decisions on pending jobs and the owner notification that follows
//   - ApplicationService: applying to jobs and reviewing applications
//   - NotificationService: the per-user notification inbox
//   - AdminService: dashboard, user administration and job activity toggles
//
// Services return apperrors values; controllers map them to HTTP responses.
package services
