package dto

// ActivityListRequest filters the caller's activity trail.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	Action     string
	EntityType string
}

// PaginationMeta describes the page returned by list endpoints.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// ActivityListResponse is one page of the activity trail.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}
