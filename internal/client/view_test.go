package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"reqdesk/internal/domain/request"
	httpx "reqdesk/internal/http"
	requestsvc "reqdesk/internal/services/request"
	"reqdesk/internal/store/memory"
	"reqdesk/internal/store/repositories"
)

var errStoreDown = errors.New("store down")

// flakyRepo wraps the memory store so individual operations can be forced
// to fail, exercising the rollback paths.
type flakyRepo struct {
	repositories.RequestRepository
	failUpdate bool
	failBulk   bool
	failDelete bool
}

func (f *flakyRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status request.Status) (*request.Request, error) {
	if f.failUpdate {
		return nil, errStoreDown
	}
	return f.RequestRepository.UpdateStatus(ctx, id, status)
}

func (f *flakyRepo) UpdateStatusBulk(ctx context.Context, ids []uuid.UUID, status request.Status) (repositories.BulkResult, error) {
	if f.failBulk {
		return repositories.BulkResult{}, errStoreDown
	}
	return f.RequestRepository.UpdateStatusBulk(ctx, ids, status)
}

func (f *flakyRepo) DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	if f.failDelete {
		return 0, errStoreDown
	}
	return f.RequestRepository.DeleteMany(ctx, ids)
}

type viewFixture struct {
	repo  *flakyRepo
	svc   *requestsvc.Service
	api   *Client
	view  *View
	lists *atomic.Int32
}

func newViewFixture(t *testing.T, pageSize int) *viewFixture {
	t.Helper()

	repo := &flakyRepo{RequestRepository: memory.New()}
	svc := requestsvc.NewService(repo, pageSize)
	router := httpx.NewRouter(httpx.RouterDependencies{RequestService: svc})

	var lists atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/api/request" {
			lists.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	api := New(srv.URL)
	return &viewFixture{
		repo:  repo,
		svc:   svc,
		api:   api,
		view:  NewView(api),
		lists: &lists,
	}
}

func (f *viewFixture) seed(t *testing.T, n int) []*request.Request {
	t.Helper()
	out := make([]*request.Request, 0, n)
	for i := 0; i < n; i++ {
		r, err := f.svc.Create(context.Background(), fmt.Sprintf("Requestor %02d", i), fmt.Sprintf("Item %02d", i))
		if err != nil {
			t.Fatalf("seed create %d: %v", i, err)
		}
		out = append(out, r)
	}
	return out
}

func TestViewStateAccessors(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 2)

	if f.view.Loading() {
		t.Fatal("view must start idle")
	}
	if f.view.Filter() != "" {
		t.Fatalf("view must start on the all filter, got %q", f.view.Filter())
	}
	if f.view.Data() != nil {
		t.Fatal("view must start without a snapshot")
	}

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.view.Loading() {
		t.Fatal("loading flag must be cleared after a completed load")
	}

	if err := f.view.SetFilter(context.Background(), request.StatusPending); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if f.view.Filter() != request.StatusPending {
		t.Fatalf("expected pending filter, got %q", f.view.Filter())
	}
}

func TestViewFailedLoadClearsLoadingFlag(t *testing.T) {
	// Unroutable endpoint: the fetch fails, the loading flag must still
	// reset and the error message must be surfaced.
	view := NewView(New("http://127.0.0.1:1"))

	if err := view.Load(context.Background()); err == nil {
		t.Fatal("expected the load to fail")
	}
	if view.Loading() {
		t.Fatal("loading flag must be cleared after a failed load")
	}
	if view.Err() == "" {
		t.Fatal("expected an error message after a failed load")
	}
	if view.Data() != nil {
		t.Fatal("failed first load must not install a snapshot")
	}
}

func TestViewLoadAndPaginate(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 12)

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	data := f.view.Data()
	if data == nil || len(data.Items) != 5 || data.Total != 12 || !data.HasNext {
		t.Fatalf("unexpected first page: %+v", data)
	}

	if err := f.view.SetPage(context.Background(), 3); err != nil {
		t.Fatalf("page 3: %v", err)
	}
	data = f.view.Data()
	if len(data.Items) != 2 || data.HasNext {
		t.Fatalf("unexpected last page: items=%d hasNext=%v", len(data.Items), data.HasNext)
	}

	// Page numbers are floored at 1.
	if err := f.view.SetPage(context.Background(), 0); err != nil {
		t.Fatalf("page 0: %v", err)
	}
	if f.view.Page() != 1 {
		t.Fatalf("expected page 1, got %d", f.view.Page())
	}
}

func TestViewFilterChangeResetsPageAndSelection(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 12)

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := f.view.SetPage(context.Background(), 2); err != nil {
		t.Fatalf("page 2: %v", err)
	}
	f.view.ToggleAllOnPage()
	if f.view.Selection().Len() == 0 {
		t.Fatal("expected a non-empty selection")
	}

	if err := f.view.SetFilter(context.Background(), request.StatusPending); err != nil {
		t.Fatalf("filter: %v", err)
	}
	if f.view.Page() != 1 {
		t.Fatalf("filter change must reset to page 1, got %d", f.view.Page())
	}
	if f.view.Selection().Len() != 0 {
		t.Fatal("filter change must clear the selection")
	}
}

func TestViewLoadPrunesSelection(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 7)

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	f.view.ToggleAllOnPage()

	// Delete two of the selected records behind the view's back; the next
	// load must prune them while preserving the rest.
	onPage := f.view.Data().Items
	gone := []string{onPage[0].ID.String(), onPage[1].ID.String()}
	if _, err := f.svc.DeleteMany(context.Background(), gone); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	sel := f.view.Selection()
	for _, id := range gone {
		if sel.Has(id) {
			t.Fatalf("selection still references deleted record %s", id)
		}
	}
	if sel.Len() != 3 {
		t.Fatalf("expected 3 surviving selections, got %d", sel.Len())
	}
}

func TestViewChangeStatusOptimisticUnderAllFilter(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 3)

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	target := f.view.Data().Items[1]
	listsBefore := f.lists.Load()

	if err := f.view.ChangeStatus(context.Background(), target.ID.String(), request.StatusApproved); err != nil {
		t.Fatalf("change status: %v", err)
	}

	// Under the all-statuses filter the success path keeps the optimistic
	// snapshot without a refetch.
	if got := f.lists.Load(); got != listsBefore {
		t.Fatalf("expected no refetch under all filter, saw %d extra", got-listsBefore)
	}
	if target.Status != request.StatusApproved {
		t.Fatalf("expected optimistic status, got %s", target.Status)
	}
	if target.LastEditedDate == nil {
		t.Fatal("optimistic patch must stamp lastEditedDate")
	}

	// The server really did apply it.
	fresh, err := f.api.ListRequests(context.Background(), 1, request.StatusApproved)
	if err != nil {
		t.Fatalf("fresh list: %v", err)
	}
	if fresh.Total != 1 {
		t.Fatalf("expected 1 approved on server, got %d", fresh.Total)
	}
}

func TestViewChangeStatusRefetchesUnderActiveFilter(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 3)

	if err := f.view.SetFilter(context.Background(), request.StatusPending); err != nil {
		t.Fatalf("filter: %v", err)
	}
	target := f.view.Data().Items[0]

	if err := f.view.ChangeStatus(context.Background(), target.ID.String(), request.StatusApproved); err != nil {
		t.Fatalf("change status: %v", err)
	}

	// The record left the pending filter, so the authoritative refetch
	// drops it from the snapshot.
	data := f.view.Data()
	if data.Total != 2 || len(data.Items) != 2 {
		t.Fatalf("expected record to leave the filtered page, total=%d items=%d", data.Total, len(data.Items))
	}
	for _, it := range data.Items {
		if it.ID == target.ID {
			t.Fatal("moved record still on the filtered page")
		}
	}
}

func TestViewUpdateRollbackMatchesFreshList(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 3)

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	target := f.view.Data().Items[0]

	f.repo.failUpdate = true
	if err := f.view.ChangeStatus(context.Background(), target.ID.String(), request.StatusRejected); err == nil {
		t.Fatal("expected the update to fail")
	}
	f.repo.failUpdate = false

	if f.view.Err() != msgUpdateFailed {
		t.Fatalf("expected %q, got %q", msgUpdateFailed, f.view.Err())
	}

	// Rolled-back state must equal a fresh authoritative fetch, never the
	// optimistic guess.
	fresh, err := f.api.ListRequests(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("fresh list: %v", err)
	}
	data := f.view.Data()
	if len(data.Items) != len(fresh.Items) {
		t.Fatalf("snapshot diverged: %d vs %d items", len(data.Items), len(fresh.Items))
	}
	for i := range fresh.Items {
		if data.Items[i].ID != fresh.Items[i].ID || data.Items[i].Status != fresh.Items[i].Status {
			t.Fatalf("item %d diverged after rollback", i)
		}
		if data.Items[i].Status == request.StatusRejected {
			t.Fatal("optimistic guess survived the rollback")
		}
	}
}

func TestViewBatchStatusClearsSelectionAndReconciles(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 4)

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	f.view.ToggleOne(f.view.Data().Items[0].ID.String())
	f.view.ToggleOne(f.view.Data().Items[2].ID.String())

	if err := f.view.BatchChangeStatus(context.Background(), request.StatusCompleted); err != nil {
		t.Fatalf("batch status: %v", err)
	}
	if f.view.Selection().Len() != 0 {
		t.Fatal("selection must be cleared after a successful batch")
	}

	completed := 0
	for _, it := range f.view.Data().Items {
		if it.Status == request.StatusCompleted {
			completed++
		}
	}
	if completed != 2 {
		t.Fatalf("expected 2 completed after reconcile, got %d", completed)
	}
}

func TestViewBatchStatusRollbackKeepsSelection(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 4)

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	f.view.ToggleAllOnPage()
	selectedBefore := f.view.Selection().Len()

	f.repo.failBulk = true
	if err := f.view.BatchChangeStatus(context.Background(), request.StatusCompleted); err == nil {
		t.Fatal("expected the batch update to fail")
	}

	if f.view.Err() != msgBatchUpdateFailed {
		t.Fatalf("expected %q, got %q", msgBatchUpdateFailed, f.view.Err())
	}
	for _, it := range f.view.Data().Items {
		if it.Status != request.StatusPending {
			t.Fatalf("optimistic status survived rollback: %s", it.Status)
		}
	}
	// Records are all still on the page, so the prune keeps the selection.
	if f.view.Selection().Len() != selectedBefore {
		t.Fatalf("selection changed across a failed batch: %d vs %d", f.view.Selection().Len(), selectedBefore)
	}
}

func TestViewBatchDelete(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 4)

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	victim := f.view.Data().Items[1].ID
	f.view.ToggleOne(victim.String())

	if err := f.view.BatchDelete(context.Background()); err != nil {
		t.Fatalf("batch delete: %v", err)
	}
	if f.view.Selection().Len() != 0 {
		t.Fatal("selection must be cleared after a successful delete")
	}
	data := f.view.Data()
	if data.Total != 3 || len(data.Items) != 3 {
		t.Fatalf("expected 3 remaining, total=%d items=%d", data.Total, len(data.Items))
	}
	for _, it := range data.Items {
		if it.ID == victim {
			t.Fatal("deleted record still on the page")
		}
	}
}

func TestViewBatchDeleteRollback(t *testing.T) {
	f := newViewFixture(t, 5)
	f.seed(t, 4)

	if err := f.view.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	f.view.ToggleOne(f.view.Data().Items[0].ID.String())

	f.repo.failDelete = true
	if err := f.view.BatchDelete(context.Background()); err == nil {
		t.Fatal("expected the batch delete to fail")
	}

	if f.view.Err() != msgBatchDeleteFailed {
		t.Fatalf("expected %q, got %q", msgBatchDeleteFailed, f.view.Err())
	}
	if got := len(f.view.Data().Items); got != 4 {
		t.Fatalf("optimistically removed records not restored, got %d items", got)
	}
}
