package request

import (
	"github.com/google/uuid"

	"reqdesk/internal/domain/request"
)

// DefaultPageSize is the fixed pagination window shared by the endpoint and
// its clients.
const DefaultPageSize = 10

// ListQuery represents a paginated list request. Status is the raw filter
// value; empty means all statuses.
type ListQuery struct {
	Status string
	Page   int
}

// ListResponse represents one page of requests. HasNext is derived from the
// filter-wide total, not from the number of items on the page.
type ListResponse struct {
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	Total    int                `json:"total"`
	HasNext  bool               `json:"hasNext"`
	Items    []*request.Request `json:"items"`
}

// DeleteResponse reports how many records a batch delete removed
type DeleteResponse struct {
	DeletedCount int `json:"deletedCount"`
}

// InvalidInputError marks malformed or missing request parameters.
// Caller error; never retried.
type InvalidInputError struct {
	Msg string
}

func (e *InvalidInputError) Error() string { return e.Msg }

// NotFoundError marks a referenced record that does not exist
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string { return "request not found" }

// ServiceError wraps any store or domain fault. The boundary reports these
// generically, without detail.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return "request service " + e.Op + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
