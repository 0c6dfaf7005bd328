package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. The real App
// satisfies it; tests provide a lightweight stub.
type execIface interface {
	isSignedIn() bool

	SignIn(ctx context.Context) error
	SignUp(ctx context.Context) error
	Authenticate(ctx context.Context) error
	ToggleMode(ctx context.Context) error

	List(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Update(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
}

func readLine(r *bufio.Reader) (string, bool) {
	line, err := r.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", false
	}
	return strings.TrimSpace(line), true
}

// runREPL reads one command per line and dispatches it to a. The accepted
// commands depend on a.isSignedIn(); anything else is reported as unknown.
// The loop ends on EOF or "exit"/"quit".
//
// Handler errors are not acted on here: handlers print their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("gt %s > ", statusFn()))
		line, ok := readLine(reader)
		if !ok {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if cmd == "help" {
			if a.isSignedIn() {
				printlnFn("Available commands: (l)ist, add, edit <id>, update <id>, delete <id>, refresh, logout, exit")
			} else {
				printlnFn("Available commands: signin, signup, mode, auth, exit")
			}
			continue
		}

		if a.isSignedIn() {
			dispatchSignedIn(ctx, a, cmd, args)
		} else {
			dispatchSignedOut(ctx, a, cmd)
		}
	}
}

func dispatchSignedOut(ctx context.Context, a execIface, cmd string) {
	switch cmd {
	case "signin", "login":
		_ = a.SignIn(ctx)
	case "signup", "register":
		_ = a.SignUp(ctx)
	case "auth":
		_ = a.Authenticate(ctx)
	case "mode":
		_ = a.ToggleMode(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}

func dispatchSignedIn(ctx context.Context, a execIface, cmd string, args []string) {
	withID := func(fn func(context.Context, string) error) {
		if len(args) == 0 {
			printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
			return
		}
		_ = fn(ctx, args[0])
	}

	switch cmd {
	case "l", "list":
		_ = a.List(ctx)
	case "add":
		_ = a.Add(ctx)
	case "edit":
		withID(a.Edit)
	case "update":
		withID(a.Update)
	case "delete":
		withID(a.Delete)
	case "refresh":
		_ = a.Refresh(ctx)
	case "logout":
		_ = a.Logout(ctx)
	default:
		printlnFn("Unknown command:", cmd)
	}
}
