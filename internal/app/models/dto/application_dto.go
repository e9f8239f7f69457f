package dto

// ApplyRequest represents an application to a job
type ApplyRequest struct {
	CoverLetter *string `json:"cover_letter" binding:"omitempty,max=10000"`
	ResumeURL   *string `json:"resume_url" binding:"omitempty,url,max=2048" example:"https://cdn.example.com/cv.pdf"`
}

// UpdateApplicationStatusRequest moves an application to a new review state
type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending reviewed accepted rejected" example:"accepted"`
}
