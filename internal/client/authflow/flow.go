// Package authflow collects credentials and submits them as a sign-in or a
// sign-up, depending on the selected mode.
package authflow

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

type Mode int

const (
	ModeSignIn Mode = iota
	ModeSignUp
)

func (m Mode) String() string {
	if m == ModeSignUp {
		return "sign up"
	}
	return "sign in"
}

var ErrEmptyField = errors.New("email and password are required")

type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
}

// Flow is not safe for concurrent use; it belongs to one prompt.
type Flow struct {
	auth     Authenticator
	logger   logging.Logger
	mode     Mode
	email    string
	password []byte
}

func New(a Authenticator, l logging.Logger) *Flow {
	return &Flow{auth: a, logger: l.With("module", "authflow")}
}

func (f *Flow) Mode() Mode { return f.mode }

// Toggle flips between sign-in and sign-up and returns the new mode.
func (f *Flow) Toggle() Mode {
	if f.mode == ModeSignIn {
		f.mode = ModeSignUp
	} else {
		f.mode = ModeSignIn
	}
	return f.mode
}

func (f *Flow) Email() string { return f.email }

func (f *Flow) SetEmail(email string) { f.email = email }

// SetPassword takes ownership of p; it is wiped after a successful submit.
func (f *Flow) SetPassword(p []byte) {
	f.wipePassword()
	f.password = p
}

func (f *Flow) HasPassword() bool { return len(f.password) > 0 }

func (f *Flow) wipePassword() {
	for i := range f.password {
		f.password[i] = 0
	}
	f.password = nil
}

// Clear empties both fields.
func (f *Flow) Clear() {
	f.email = ""
	f.wipePassword()
}

// Submit sends the credentials. On success both fields are cleared; on
// failure they are kept and the collaborator's error is returned unchanged.
func (f *Flow) Submit(ctx context.Context) (*models.Session, error) {
	if strings.TrimSpace(f.email) == "" || len(f.password) == 0 {
		return nil, ErrEmptyField
	}

	var (
		sess *models.Session
		err  error
	)
	switch f.mode {
	case ModeSignUp:
		sess, err = f.auth.SignUp(ctx, f.email, string(f.password))
	default:
		sess, err = f.auth.SignInWithPassword(ctx, f.email, string(f.password))
	}

	if err != nil {
		f.logger.Warn(ctx, "auth failed", "mode", f.mode.String(), "email", f.email, "error", err.Error())
		return nil, err
	}

	f.Clear()
	return sess, nil
}
