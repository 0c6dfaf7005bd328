package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophtasks/internal/client/authflow"
)

// SignIn prompts for credentials and signs in.
func (a *App) SignIn(ctx context.Context) error {
	a.selectMode(authflow.ModeSignIn)
	return a.Authenticate(ctx)
}

// SignUp prompts for credentials and creates an account.
func (a *App) SignUp(ctx context.Context) error {
	a.selectMode(authflow.ModeSignUp)
	return a.Authenticate(ctx)
}

func (a *App) selectMode(m authflow.Mode) {
	if a.flow.Mode() != m {
		a.flow.Toggle()
	}
}

// ToggleMode switches what Authenticate does.
func (a *App) ToggleMode(ctx context.Context) error {
	m := a.flow.Toggle()
	fmt.Fprintf(a.out, "Mode: %s\n", m)
	return nil
}

// Authenticate submits credentials in the current mode. A failed attempt
// keeps the entered values so Enter reuses them next time.
func (a *App) Authenticate(ctx context.Context) error {
	email, err := GetTextWithDefault(a.reader, "Enter email", a.flow.Email(), a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	a.flow.SetEmail(email)

	pw, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}
	if len(pw) > 0 || !a.flow.HasPassword() {
		a.flow.SetPassword(pw)
	}

	sess, err := a.flow.Submit(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", err.Error())
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", sess.Email)
	return nil
}

// Logout ends the session. It always succeeds locally.
func (a *App) Logout(ctx context.Context) error {
	a.session.SignOut(ctx)
	fmt.Fprintln(a.out, "Signed out")
	return nil
}
