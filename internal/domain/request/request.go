package request

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status represents the workflow state of an item request
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
)

// Statuses lists every representable status, in workflow order.
func Statuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusCompleted, StatusRejected}
}

// ParseStatus validates a raw string against the closed status set
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusCompleted, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether the status belongs to the closed set
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// Field length constraints enforced at creation
const (
	RequestorNameMin = 3
	RequestorNameMax = 30
	ItemRequestedMin = 2
	ItemRequestedMax = 100
)

// Request represents an item request record
type Request struct {
	ID             uuid.UUID  `json:"id"`
	RequestorName  string     `json:"requestorName"`
	ItemRequested  string     `json:"itemRequested"`
	Status         Status     `json:"status"`
	CreatedDate    time.Time  `json:"createdDate"`
	LastEditedDate *time.Time `json:"lastEditedDate,omitempty"`
}

// New creates a pending request with validated, trimmed fields.
// The store assigns the ID on insert.
func New(requestorName, itemRequested string) (*Request, error) {
	requestorName = strings.TrimSpace(requestorName)
	itemRequested = strings.TrimSpace(itemRequested)

	// Constraints count characters, not bytes.
	if n := utf8.RuneCountInString(requestorName); n < RequestorNameMin || n > RequestorNameMax {
		return nil, fmt.Errorf("requestorName must be %d-%d characters, got %d", RequestorNameMin, RequestorNameMax, n)
	}
	if n := utf8.RuneCountInString(itemRequested); n < ItemRequestedMin || n > ItemRequestedMax {
		return nil, fmt.Errorf("itemRequested must be %d-%d characters, got %d", ItemRequestedMin, ItemRequestedMax, n)
	}

	return &Request{
		RequestorName: requestorName,
		ItemRequested: itemRequested,
		Status:        StatusPending,
		CreatedDate:   time.Now().UTC(),
	}, nil
}

// SetStatus transitions the request to a new status and stamps the edit time
func (r *Request) SetStatus(s Status) error {
	if !s.Valid() {
		return fmt.Errorf("unknown status %q", s)
	}
	now := time.Now().UTC()
	r.Status = s
	r.LastEditedDate = &now
	return nil
}
