package models

// EventType is the kind of row change carried by a TaskEvent.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// TaskEvent is one change pushed by the backend. For EventDelete only
// Task.ID and Task.Email are set.
type TaskEvent struct {
	Type EventType
	Task Task
}
