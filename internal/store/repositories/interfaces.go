package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"reqdesk/internal/domain/request"
)

// ErrNotFound is returned when a referenced record does not exist
var ErrNotFound = errors.New("record not found")

// Filter narrows a listing to a single status. A nil Status means all statuses.
type Filter struct {
	Status *request.Status
}

// BulkResult summarizes an unordered bulk status write. The write is
// non-atomic across records; only aggregate counts are reported.
type BulkResult struct {
	Matched  int `json:"matchedCount"`
	Modified int `json:"modifiedCount"`
}

// RequestRepository defines the contract for item-request data access
type RequestRepository interface {
	// List returns records matching the filter, sorted by creation date
	// descending, windowed by limit/offset.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*request.Request, error)
	// Count returns the number of records matching the filter, independent
	// of any pagination window.
	Count(ctx context.Context, filter Filter) (int, error)
	// Insert persists a new record and assigns its ID.
	Insert(ctx context.Context, r *request.Request) error
	// UpdateStatus sets the status of one record, refreshes its edit time
	// and returns the updated record. Returns ErrNotFound if absent.
	UpdateStatus(ctx context.Context, id uuid.UUID, status request.Status) (*request.Request, error)
	// UpdateStatusBulk applies the status to each id independently, with no
	// ordering or atomicity across records.
	UpdateStatusBulk(ctx context.Context, ids []uuid.UUID, status request.Status) (BulkResult, error)
	// DeleteMany removes every record whose id is in ids and returns the
	// count actually deleted. Missing ids are not an error.
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error)
}
