package models

import "time"

// Task is one row of the tasks table. ImageURL and ImagePath are nil when
// no image is attached.
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
