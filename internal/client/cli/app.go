package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/auth"
	"github.com/dmitrijs2005/gophtasks/internal/client/authflow"
	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/client/images"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/session"
	"github.com/dmitrijs2005/gophtasks/internal/client/tasks"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	pingTimeout  = 3 * time.Second
	mountTimeout = 10 * time.Second
)

// Pinger reports whether the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	session *session.Store
	flow    *authflow.Flow
	store   *tasks.Store
	editor  *tasks.Editor
	pinger  Pinger
	closers []func() error

	reader *bufio.Reader
	out    io.Writer

	mu      sync.Mutex
	mode    Mode
	email   string
	release func()
	draft   models.Draft
}

// deps bundles everything the App drives; NewApp builds the real ones.
type deps struct {
	logger  logging.Logger
	session *session.Store
	flow    *authflow.Flow
	store   *tasks.Store
	editor  *tasks.Editor
	pinger  Pinger
	closers []func() error
	in      io.Reader
	out     io.Writer
}

func newApp(c *config.Config, d deps) *App {
	return &App{
		config:  c,
		logger:  d.logger,
		session: d.session,
		flow:    d.flow,
		store:   d.store,
		editor:  d.editor,
		pinger:  d.pinger,
		closers: d.closers,
		reader:  bufio.NewReader(d.in),
		out:     d.out,
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelWarn
	}
	return l
}

// NewApp opens the local database, connects to the backend and wires the
// session, auth and task components together.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, parseLevel(c.LogLevel))

	db, err := client.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err.Error())
		return nil, err
	}

	api, err := client.NewGRPCClient(c.ServerEndpointAddr, c.MaxMessageSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	authService := auth.NewService(api, db, logger)
	store := tasks.NewStore(api, logger)
	img := images.NewHandler(api, logger)

	return newApp(c, deps{
		logger:  logger,
		session: session.NewStore(authService, logger),
		flow:    authflow.New(authService, logger),
		store:   store,
		editor:  tasks.NewEditor(api, img, store, logger),
		pinger:  api,
		closers: []func() error{api.Close, db.Close},
		in:      os.Stdin,
		out:     os.Stdout,
	}), nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) isSignedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.email != ""
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ""
	if a.email != "" {
		s = a.email + " "
	} else {
		s = a.flow.Mode().String() + " "
	}
	if a.mode != "" {
		s += string(a.mode)
	}
	return fmt.Sprintf("(%s)", s)
}

// StartOnlineStatusWatcher pings the backend every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.pinger.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// onAuthChange follows session transitions: a sign-in loads the user's tasks
// and opens the change feed, a sign-out tears both down.
func (a *App) onAuthChange(event models.AuthEvent, sess *models.Session) {
	switch event {
	case models.AuthSignedIn:
		if sess == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), mountTimeout)
		defer cancel()
		a.mount(ctx, sess.Email)
	case models.AuthSignedOut:
		a.unmount()
	}
}

// mount loads email's tasks and opens the change feed. ctx bounds the load
// only.
func (a *App) mount(ctx context.Context, email string) {
	a.mu.Lock()
	same := a.email == email && a.release != nil
	a.mu.Unlock()
	if same {
		return
	}
	a.unmount()

	a.mu.Lock()
	a.email = email
	a.mu.Unlock()

	if _, err := a.store.FetchAll(ctx, email); err != nil {
		fmt.Fprintln(a.out, "Could not load tasks:", err.Error())
	}

	// the feed lives until unmount releases it, not until ctx ends
	release, err := a.store.Subscribe(context.WithoutCancel(ctx), email)
	if err != nil {
		fmt.Fprintln(a.out, "Live updates unavailable:", err.Error())
	}

	a.mu.Lock()
	a.release = release
	a.mu.Unlock()
}

func (a *App) unmount() {
	a.mu.Lock()
	release := a.release
	a.release = nil
	a.email = ""
	a.draft = models.Draft{}
	a.mu.Unlock()

	if release != nil {
		release()
	}
	a.store.Cache().Reset()
	a.editor.Edits.Reset()
}

// Run restores the session, starts the watcher and blocks in the REPL until
// the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to gophtasks (type 'help' for commands)")

	if sess := a.session.Start(ctx); sess != nil {
		a.mount(ctx, sess.Email)
		fmt.Fprintf(a.out, "Signed in as %s\n", sess.Email)
	}
	unsubscribe := a.session.Subscribe(a.onAuthChange)
	defer unsubscribe()

	a.checkOnline(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the feed and the backend connection.
func (a *App) Close() {
	a.unmount()
	a.store.Close()
	a.session.Close()

	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if err := errors.Join(errs...); err != nil {
		a.logger.Warn(context.Background(), "close failed", "error", err.Error())
	}
	a.closers = nil
}
