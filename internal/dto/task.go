package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DueDate parses due_date from JSON as an RFC3339 timestamp, fractional
// seconds allowed ("2023-12-01T10:00:00.000Z"). null or "" means no due date.
// Set records whether the key was present at all, so PUT can tell
// "clear the date" from "leave it alone".
type DueDate struct {
	set bool
	t   *time.Time
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	d.set = true
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("due_date: must be a string or null")
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		d.t = nil
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(*raw))
	if err != nil {
		return fmt.Errorf("due_date: use RFC3339 datetime, e.g. 2006-01-02T15:04:05.000Z")
	}
	parsed = parsed.UTC()
	d.t = &parsed
	return nil
}

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

// Set reports whether due_date appeared in the request body.
func (d DueDate) Set() bool { return d.set }

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=100"`
	Description *string `json:"description" binding:"required,max=255"`
	Completed   bool    `json:"completed"`
	DueDate     DueDate `json:"due_date"` // optional, RFC3339
	Priority    string  `json:"priority"` // low | medium | high, default low
}

type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=255"`
	Completed   *bool   `json:"completed"`
	DueDate     DueDate `json:"due_date"` // absent = keep, null = clear
	Priority    *string `json:"priority"`
}

type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"due_date"`
	Priority    string     `json:"priority"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
