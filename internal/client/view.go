package client

import (
	"context"
	"time"

	"reqdesk/internal/domain/request"
	requestsvc "reqdesk/internal/services/request"
)

// Fixed messages surfaced when a mutation fails and is rolled back
const (
	msgUpdateFailed      = "Failed to update status"
	msgBatchUpdateFailed = "Failed to batch update status"
	msgBatchDeleteFailed = "Failed to batch delete"
)

// View keeps a rendered page of requests synchronized with the endpoint.
// Status changes, batch updates and batch deletes are applied to the local
// snapshot immediately and reconciled against a fresh fetch once the call
// resolves: on success the authoritative page replaces the guess, on failure
// the refetch rolls the guess back and a fixed error message is set.
//
// View models a single-threaded event loop and is not safe for concurrent
// use. Overlapping loads are not deduplicated; the last load to complete
// wins.
type View struct {
	api *Client

	filter  request.Status // "" means all statuses
	page    int
	data    *requestsvc.ListResponse
	loading bool
	errMsg  string
	sel     *Selection
}

// NewView creates a view over the given endpoint client, positioned on the
// first page with no filter. Call Load to populate it.
func NewView(api *Client) *View {
	return &View{
		api:  api,
		page: 1,
		sel:  NewSelection(),
	}
}

// Load fetches the current page/filter combination and replaces the snapshot
// with the authoritative result. The previous snapshot stays in place while
// the fetch is in flight.
func (v *View) Load(ctx context.Context) error {
	v.loading = true
	v.errMsg = ""
	defer func() { v.loading = false }()

	return v.refetch(ctx)
}

// refetch pulls the current page and prunes the selection to the ids on it
func (v *View) refetch(ctx context.Context) error {
	data, err := v.api.ListRequests(ctx, v.page, v.filter)
	if err != nil {
		v.errMsg = err.Error()
		return err
	}
	v.data = data
	v.sel.Prune(v.pageIDs())
	return nil
}

// SetFilter switches the active status filter, resets to the first page,
// clears the selection and reloads.
func (v *View) SetFilter(ctx context.Context, filter request.Status) error {
	v.filter = filter
	v.page = 1
	v.sel.Clear()
	return v.Load(ctx)
}

// SetPage moves to the given page (floored at 1) and reloads
func (v *View) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	v.page = page
	return v.Load(ctx)
}

// ChangeStatus applies a status change to one record optimistically, then
// reconciles. Under the all-statuses filter the patched snapshot already
// matches what a refetch would return, so the success path skips the fetch.
func (v *View) ChangeStatus(ctx context.Context, id string, status request.Status) error {
	v.patchStatus(func(r *request.Request) bool { return r.ID.String() == id }, status)

	if _, err := v.api.UpdateStatus(ctx, id, status); err != nil {
		if rbErr := v.refetch(ctx); rbErr != nil {
			return rbErr
		}
		v.errMsg = msgUpdateFailed
		return err
	}
	if v.filter != "" {
		return v.refetch(ctx)
	}
	return nil
}

// BatchChangeStatus applies a status change to every selected record
// optimistically, then reconciles. The selection is cleared on success.
func (v *View) BatchChangeStatus(ctx context.Context, status request.Status) error {
	if v.sel.Len() == 0 {
		return nil
	}
	ids := v.sel.IDs()
	v.patchStatus(func(r *request.Request) bool { return v.sel.Has(r.ID.String()) }, status)

	if err := v.api.BatchUpdateStatus(ctx, ids, status); err != nil {
		if rbErr := v.refetch(ctx); rbErr != nil {
			return rbErr
		}
		v.errMsg = msgBatchUpdateFailed
		return err
	}
	if err := v.refetch(ctx); err != nil {
		return err
	}
	v.sel.Clear()
	return nil
}

// BatchDelete removes every selected record optimistically, then reconciles.
// The selection is cleared on success.
func (v *View) BatchDelete(ctx context.Context) error {
	if v.sel.Len() == 0 {
		return nil
	}
	ids := v.sel.IDs()
	if v.data != nil {
		kept := v.data.Items[:0]
		for _, r := range v.data.Items {
			if !v.sel.Has(r.ID.String()) {
				kept = append(kept, r)
			}
		}
		v.data.Items = kept
	}

	if err := v.api.BatchDelete(ctx, ids); err != nil {
		if rbErr := v.refetch(ctx); rbErr != nil {
			return rbErr
		}
		v.errMsg = msgBatchDeleteFailed
		return err
	}
	if err := v.refetch(ctx); err != nil {
		return err
	}
	v.sel.Clear()
	return nil
}

func (v *View) patchStatus(match func(*request.Request) bool, status request.Status) {
	if v.data == nil {
		return
	}
	now := time.Now().UTC()
	for _, r := range v.data.Items {
		if match(r) {
			r.Status = status
			r.LastEditedDate = &now
		}
	}
}

func (v *View) pageIDs() []string {
	if v.data == nil {
		return nil
	}
	ids := make([]string, 0, len(v.data.Items))
	for _, r := range v.data.Items {
		ids = append(ids, r.ID.String())
	}
	return ids
}

// ToggleOne flips selection of a single record
func (v *View) ToggleOne(id string) { v.sel.ToggleOne(id) }

// ToggleAllOnPage selects or deselects every record on the current page
func (v *View) ToggleAllOnPage() { v.sel.ToggleAllOnPage(v.pageIDs()) }

// Data returns the last-fetched snapshot, nil before the first load
func (v *View) Data() *requestsvc.ListResponse { return v.data }

// Loading reports whether a fetch is in flight
func (v *View) Loading() bool { return v.loading }

// Err returns the current error message, empty when the last operation
// succeeded
func (v *View) Err() string { return v.errMsg }

// Page returns the current 1-based page number
func (v *View) Page() int { return v.page }

// Filter returns the active status filter, empty for all statuses
func (v *View) Filter() request.Status { return v.filter }

// Selection exposes the selection tracker
func (v *View) Selection() *Selection { return v.sel }
