package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	requestsvc "reqdesk/internal/services/request"
)

// ListRequests handles paginated listing with an optional status filter
func ListRequests(svc *requestsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := requestsvc.ListQuery{
			Status: r.URL.Query().Get("status"),
			Page:   1,
		}
		if v := r.URL.Query().Get("page"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, &requestsvc.InvalidInputError{Msg: "page must be a positive integer"})
				return
			}
			q.Page = n
		}

		resp, err := svc.List(r.Context(), q)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// CreateRequest handles request creation. Status is always forced to pending.
func CreateRequest(svc *requestsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RequestorName string `json:"requestorName"`
			ItemRequested string `json:"itemRequested"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, &requestsvc.InvalidInputError{Msg: "invalid JSON"})
			return
		}

		created, err := svc.Create(r.Context(), body.RequestorName, body.ItemRequested)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

// UpdateStatus handles status changes. A body carrying an "ids" array is a
// batch update; otherwise it is a single-record update.
func UpdateStatus(svc *requestsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ID     string   `json:"id"`
			IDs    []string `json:"ids"`
			Status string   `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, &requestsvc.InvalidInputError{Msg: "invalid JSON"})
			return
		}

		if body.IDs != nil {
			res, err := svc.UpdateMany(r.Context(), body.IDs, body.Status)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
			return
		}

		updated, err := svc.UpdateOne(r.Context(), body.ID, body.Status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteRequests handles batch deletion by id set
func DeleteRequests(svc *requestsvc.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			IDs []string `json:"ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, &requestsvc.InvalidInputError{Msg: "invalid JSON"})
			return
		}

		deleted, err := svc.DeleteMany(r.Context(), body.IDs)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, requestsvc.DeleteResponse{DeletedCount: deleted})
	}
}
