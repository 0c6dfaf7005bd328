// Package models defines the client-side task, session and change-event types.
package models

import (
	"strings"
	"time"
)

// Task mirrors one backend row. ImageURL and ImagePath are nil when no image
// is attached.
type Task struct {
	ID          string
	Title       string
	Description string
	Email       string
	ImageURL    *string
	ImagePath   *string
	CreatedAt   time.Time
}

// Clone returns a copy that shares no pointers with t.
func (t *Task) Clone() *Task {
	c := *t
	if t.ImageURL != nil {
		v := *t.ImageURL
		c.ImageURL = &v
	}
	if t.ImagePath != nil {
		v := *t.ImagePath
		c.ImagePath = &v
	}
	return &c
}

// HasImage reports whether a stored object is linked to the task.
func (t *Task) HasImage() bool {
	return t.ImagePath != nil && *t.ImagePath != ""
}

// Draft is the in-progress new-task form.
type Draft struct {
	Title       string
	Description string
	// ImageFile is a local file path; empty means no image.
	ImageFile string
}

// Clear resets title and description. The selected file is left to the caller.
func (d *Draft) Clear() {
	d.Title = ""
	d.Description = ""
}

// Validate reports whether the draft can be submitted.
func (d *Draft) Validate() bool {
	return strings.TrimSpace(d.Title) != ""
}

// UploadTicket is what the backend returns for a prepared upload.
type UploadTicket struct {
	UploadURL string
	PublicURL string
	Path      string
}
