package dto

// CreateApplicationRequest represents the application create input
type CreateApplicationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}
