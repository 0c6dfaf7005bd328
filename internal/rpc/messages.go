package rpc

import "time"

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// Credentials are used by both SignUp and SignIn.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is returned by every call that establishes or renews a session.
type Session struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutResponse struct{}

// Task mirrors one row of the tasks table.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Email       string    `json:"email"`
	ImageURL    *string   `json:"image_url"`
	ImagePath   *string   `json:"image_path"`
	CreatedAt   time.Time `json:"created_at"`
}

type InsertTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Email       string  `json:"email"`
	ImageURL    *string `json:"image_url,omitempty"`
	ImagePath   *string `json:"image_path,omitempty"`
}

type TaskResponse struct {
	Task Task `json:"task"`
}

type ListTasksRequest struct {
	Email string `json:"email"`
}

type ListTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

type GetTaskRequest struct {
	ID string `json:"id"`
}

// UpdateTaskRequest changes the description of one task and nothing else.
type UpdateTaskRequest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

type DeleteTaskRequest struct {
	ID string `json:"id"`
}

type DeleteTaskResponse struct{}

type PrepareUploadRequest struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type,omitempty"`
}

type PrepareUploadResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Path      string `json:"path"`
}

type RemoveObjectsRequest struct {
	Paths []string `json:"paths"`
}

type RemoveObjectsResponse struct{}

type SubscribeRequest struct {
	Email string `json:"email"`
}

// EventType names a row-level change on the tasks collection.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// TaskEvent is pushed on the Subscribe stream. For DELETE only Task.ID and
// Task.Email are set.
type TaskEvent struct {
	Type EventType `json:"type"`
	Task Task      `json:"task"`
}
