package models

// Session is the signed-in principal. Email is the ownership key for tasks.
type Session struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

// AuthEvent names a session transition.
type AuthEvent string

const (
	AuthSignedIn       AuthEvent = "SIGNED_IN"
	AuthSignedOut      AuthEvent = "SIGNED_OUT"
	AuthTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)
