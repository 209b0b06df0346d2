package dto

// CreateContactRequest is the payload for adding a contact
type CreateContactRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name"`
}

// UpdateContactRequest carries partial contact updates; empty fields are kept
type UpdateContactRequest struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ListResponse wraps paginated collections
type ListResponse struct {
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}
