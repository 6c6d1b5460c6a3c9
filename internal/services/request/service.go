package request

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"reqdesk/internal/domain/request"
	"reqdesk/internal/store/repositories"
)

// Service implements the synchronization endpoint operations over the store
type Service struct {
	repo     repositories.RequestRepository
	pageSize int
}

// NewService creates a request service. pageSize <= 0 selects DefaultPageSize.
func NewService(repo repositories.RequestRepository, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Service{repo: repo, pageSize: pageSize}
}

// PageSize returns the fixed page size the service paginates with
func (s *Service) PageSize() int { return s.pageSize }

// List returns one page of requests matching the query's status filter,
// sorted by creation date descending, with a window-independent total.
func (s *Service) List(ctx context.Context, q ListQuery) (*ListResponse, error) {
	if q.Page < 1 {
		return nil, &InvalidInputError{Msg: "page must be a positive integer"}
	}

	var filter repositories.Filter
	if q.Status != "" {
		status, err := request.ParseStatus(q.Status)
		if err != nil {
			return nil, &InvalidInputError{Msg: "status must be one of pending, approved, completed, rejected"}
		}
		filter.Status = &status
	}

	items, err := s.repo.List(ctx, filter, s.pageSize, (q.Page-1)*s.pageSize)
	if err != nil {
		return nil, &ServiceError{Op: "list", Err: err}
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, &ServiceError{Op: "count", Err: err}
	}
	if items == nil {
		items = []*request.Request{}
	}

	return &ListResponse{
		Page:     q.Page,
		PageSize: s.pageSize,
		Total:    total,
		HasNext:  q.Page*s.pageSize < total,
		Items:    items,
	}, nil
}

// Create stores a new pending request. Field constraint violations surface
// the same way store faults do; the caller sees no separate category.
func (s *Service) Create(ctx context.Context, requestorName, itemRequested string) (*request.Request, error) {
	req, err := request.New(requestorName, itemRequested)
	if err != nil {
		return nil, &ServiceError{Op: "create", Err: err}
	}
	if err := s.repo.Insert(ctx, req); err != nil {
		return nil, &ServiceError{Op: "insert", Err: err}
	}
	return req, nil
}

// UpdateOne sets the status of a single request and returns the updated record
func (s *Service) UpdateOne(ctx context.Context, id, status string) (*request.Request, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return nil, &InvalidInputError{Msg: "id must be a well-formed identifier"}
	}
	st, err := request.ParseStatus(status)
	if err != nil {
		return nil, &InvalidInputError{Msg: "status must be one of pending, approved, completed, rejected"}
	}

	updated, err := s.repo.UpdateStatus(ctx, rid, st)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &NotFoundError{ID: rid}
	}
	if err != nil {
		return nil, &ServiceError{Op: "update_status", Err: err}
	}
	return updated, nil
}

// UpdateMany applies one status to a set of requests as an unordered,
// non-atomic bulk write and returns aggregate counts only.
func (s *Service) UpdateMany(ctx context.Context, ids []string, status string) (repositories.BulkResult, error) {
	if status == "" {
		return repositories.BulkResult{}, &InvalidInputError{Msg: "status is required for batch updates"}
	}
	st, err := request.ParseStatus(status)
	if err != nil {
		return repositories.BulkResult{}, &InvalidInputError{Msg: "status must be one of pending, approved, completed, rejected"}
	}

	rids, err := parseIDs(ids)
	if err != nil {
		return repositories.BulkResult{}, &ServiceError{Op: "batch_update", Err: err}
	}
	res, err := s.repo.UpdateStatusBulk(ctx, rids, st)
	if err != nil {
		return repositories.BulkResult{}, &ServiceError{Op: "batch_update", Err: err}
	}
	return res, nil
}

// DeleteMany removes the identified requests. Ids that no longer exist are
// skipped silently; the returned count reflects records actually deleted.
func (s *Service) DeleteMany(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, &InvalidInputError{Msg: "ids must be a non-empty list"}
	}
	rids, err := parseIDs(ids)
	if err != nil {
		return 0, &ServiceError{Op: "batch_delete", Err: err}
	}
	deleted, err := s.repo.DeleteMany(ctx, rids)
	if err != nil {
		return 0, &ServiceError{Op: "batch_delete", Err: err}
	}
	return deleted, nil
}

func parseIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
