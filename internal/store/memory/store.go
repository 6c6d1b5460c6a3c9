package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"reqdesk/internal/domain/request"
	"reqdesk/internal/store/repositories"
)

// Store implements repositories.RequestRepository with in-memory storage.
// Used by tests and as a dependency-free backend for local development.
type Store struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*request.Request
	seq     map[uuid.UUID]int // insertion order, tiebreak for equal timestamps
	next    int
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		records: make(map[uuid.UUID]*request.Request),
		seq:     make(map[uuid.UUID]int),
	}
}

func clone(r *request.Request) *request.Request {
	cp := *r
	if r.LastEditedDate != nil {
		t := *r.LastEditedDate
		cp.LastEditedDate = &t
	}
	return &cp
}

func (s *Store) matching(filter repositories.Filter) []*request.Request {
	out := make([]*request.Request, 0, len(s.records))
	for _, r := range s.records {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedDate.Equal(out[j].CreatedDate) {
			return out[i].CreatedDate.After(out[j].CreatedDate)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out
}

// List returns matching records sorted by creation date descending
func (s *Store) List(ctx context.Context, filter repositories.Filter, limit, offset int) ([]*request.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.matching(filter)
	if offset >= len(all) {
		return []*request.Request{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	out := make([]*request.Request, len(all))
	for i, r := range all {
		out[i] = clone(r)
	}
	return out, nil
}

// Count returns the number of matching records
func (s *Store) Count(ctx context.Context, filter repositories.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(filter)), nil
}

// Insert assigns an ID and stores the record
func (s *Store) Insert(ctx context.Context, r *request.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.ID = uuid.New()
	s.records[r.ID] = clone(r)
	s.seq[r.ID] = s.next
	s.next++
	return nil
}

// UpdateStatus sets the status of one record and refreshes its edit time
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status request.Status) (*request.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	now := time.Now().UTC()
	r.Status = status
	r.LastEditedDate = &now
	return clone(r), nil
}

// UpdateStatusBulk applies the status to each id independently
func (s *Store) UpdateStatusBulk(ctx context.Context, ids []uuid.UUID, status request.Status) (repositories.BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res repositories.BulkResult
	for _, id := range ids {
		r, ok := s.records[id]
		if !ok {
			continue
		}
		res.Matched++
		if r.Status != status {
			res.Modified++
		}
		now := time.Now().UTC()
		r.Status = status
		r.LastEditedDate = &now
	}
	return res, nil
}

// DeleteMany removes matching records and returns the count deleted
func (s *Store) DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := s.records[id]; ok {
			delete(s.records, id)
			delete(s.seq, id)
			deleted++
		}
	}
	return deleted, nil
}
