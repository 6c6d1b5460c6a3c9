package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"reqdesk/internal/domain/request"
	"reqdesk/internal/store/repositories"
)

const requestColumns = `id, requestor_name, item_requested, status, created_date, last_edited_date`

// requestRepository implements repositories.RequestRepository over a lazily
// connected pool. Every operation acquires the shared connection first.
type requestRepository struct {
	conn *Lazy
}

// NewRequestRepository creates a request repository over the lazy connector
func NewRequestRepository(conn *Lazy) *requestRepository {
	return &requestRepository{conn: conn}
}

// List finds requests matching the filter with pagination
func (r *requestRepository) List(ctx context.Context, filter repositories.Filter, limit, offset int) ([]*request.Request, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + requestColumns + `
		FROM requests
		ORDER BY created_date DESC
		LIMIT $1 OFFSET $2`
	args := []any{limit, offset}
	if filter.Status != nil {
		query = `
			SELECT ` + requestColumns + `
			FROM requests
			WHERE status = $1
			ORDER BY created_date DESC
			LIMIT $2 OFFSET $3`
		args = []any{string(*filter.Status), limit, offset}
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*request.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// Count returns the number of requests matching the filter
func (r *requestRepository) Count(ctx context.Context, filter repositories.Filter) (int, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	if filter.Status != nil {
		err = db.QueryRow(ctx, `SELECT count(*) FROM requests WHERE status = $1`, string(*filter.Status)).Scan(&n)
	} else {
		err = db.QueryRow(ctx, `SELECT count(*) FROM requests`).Scan(&n)
	}
	return n, err
}

// Insert creates a new request record and assigns its ID
func (r *requestRepository) Insert(ctx context.Context, req *request.Request) error {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return err
	}

	return db.QueryRow(ctx, `
		INSERT INTO requests (requestor_name, item_requested, status, created_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		req.RequestorName, req.ItemRequested, string(req.Status), req.CreatedDate).Scan(&req.ID)
}

// UpdateStatus sets one request's status and refreshes its edit time
func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status request.Status) (*request.Request, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(ctx, `
		UPDATE requests
		SET status = $1, last_edited_date = now()
		WHERE id = $2
		RETURNING `+requestColumns,
		string(status), id.String())

	req, err := scanRequest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repositories.ErrNotFound
	}
	return req, err
}

// UpdateStatusBulk applies the status to every matching id in one unordered
// write. Postgres reports one affected-row count, so matched and modified
// carry the same value.
func (r *requestRepository) UpdateStatusBulk(ctx context.Context, ids []uuid.UUID, status request.Status) (repositories.BulkResult, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return repositories.BulkResult{}, err
	}

	tag, err := db.Exec(ctx, `
		UPDATE requests
		SET status = $1, last_edited_date = now()
		WHERE id = ANY($2::uuid[])`,
		string(status), idStrings(ids))
	if err != nil {
		return repositories.BulkResult{}, err
	}
	n := int(tag.RowsAffected())
	return repositories.BulkResult{Matched: n, Modified: n}, nil
}

// DeleteMany removes matching requests and returns the count deleted
func (r *requestRepository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	db, err := r.conn.Acquire(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := db.Exec(ctx, `DELETE FROM requests WHERE id = ANY($1::uuid[])`, idStrings(ids))
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func scanRequest(row pgx.Row) (*request.Request, error) {
	var req request.Request
	var status string
	var lastEdited sql.NullTime

	err := row.Scan(&req.ID, &req.RequestorName, &req.ItemRequested, &status, &req.CreatedDate, &lastEdited)
	if err != nil {
		return nil, err
	}

	req.Status = request.Status(status)
	if lastEdited.Valid {
		t := lastEdited.Time
		req.LastEditedDate = &t
	}
	return &req, nil
}
