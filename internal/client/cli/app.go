package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/peermirror/internal/client/channel"
	"github.com/dmitrijs2005/peermirror/internal/client/client"
	"github.com/dmitrijs2005/peermirror/internal/client/config"
	"github.com/dmitrijs2005/peermirror/internal/client/events"
	"github.com/dmitrijs2005/peermirror/internal/client/notify"
	"github.com/dmitrijs2005/peermirror/internal/client/projections"
	"github.com/dmitrijs2005/peermirror/internal/client/rooms"
	"github.com/dmitrijs2005/peermirror/internal/client/services"
	"github.com/dmitrijs2005/peermirror/internal/client/state"
	"github.com/dmitrijs2005/peermirror/internal/client/tokenstore"
	"github.com/dmitrijs2005/peermirror/internal/logging"
)

type Mode string

const (
	ModeGuest     Mode = "guest"
	ModeInactive  Mode = "inactive"
	ModeActivated Mode = "active"
)

type App struct {
	config *config.Config
	log    logging.Logger

	store      *state.Store
	rooms      *rooms.Store
	session    services.SessionService
	query      services.QueryService
	dispatcher *events.Dispatcher
	channel    events.Channel
	bell       *notify.Bell

	closers []io.Closer

	modeMu sync.Mutex
	mode   Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and wires the state store, API client,
// event channel and services from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, err := logging.New(os.Stderr, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := state.NewStore(state.WithLogger(log))
	api, err := client.NewHTTPClient(c.APIBaseURL,
		client.WithTokenSource(store.Token),
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	tokens := tokenstore.New(db, tokenstore.WithSecret(c.TokenSecret), tokenstore.WithLogger(log))
	console := notify.NewConsole(os.Stdout, log)
	bell := notify.NewBell(os.Stdout, false, log)
	roomStore := rooms.NewStore()

	ch := channel.NewWSChannel(c.ChannelURL,
		channel.WithReconnectInterval(c.ReconnectInterval),
		channel.WithLogger(log),
		channel.WithHeader(func() http.Header { return bearer(store.Token()) }),
	)

	return &App{
		config:     c,
		log:        log,
		store:      store,
		rooms:      roomStore,
		session:    services.NewSessionService(api, store, tokens, console, roomStore, bell, log),
		query:      services.NewQueryService(api, store, console, log),
		dispatcher: events.NewDispatcher(store, events.WithLogger(log), events.WithSoundPlayer(bell)),
		channel:    ch,
		bell:       bell,
		closers:    []io.Closer{api, dbCloser{db}},
		reader:     bufio.NewReader(os.Stdin),
		out:        os.Stdout,
	}, nil
}

func bearer(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

type dbCloser struct{ db *sql.DB }

func (d dbCloser) Close() error { return d.db.Close() }

// Run restores a persisted session, starts the event subscription and the
// session watcher, then blocks in the REPL until the user exits or ctx ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.session.Me(ctx)
	a.refreshMode()

	go func() {
		err := a.dispatcher.Subscribe(ctx, a.channel)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error(ctx, "event subscription ended", "err", err)
		}
	}()
	go a.StartSessionWatcher(ctx, time.Minute)

	a.Root(ctx)
}

// Close releases the API client and the database.
func (a *App) Close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return projections.IsAuthenticated(a.store.Snapshot())
}

// Mode returns the current prompt mode. The session watcher updates it from
// its own goroutine.
func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(context.Background(), "mode changed", "mode", string(mode))
	}
}

// refreshMode derives the prompt mode from the session.
func (a *App) refreshMode() {
	sess := a.store.Snapshot()
	switch {
	case projections.IsActivated(sess):
		a.setMode(ModeActivated)
	case projections.IsAuthenticated(sess):
		a.setMode(ModeInactive)
	default:
		a.setMode(ModeGuest)
	}
}

// StartSessionWatcher ends the session once its token has expired. Tokens
// without a readable expiry are never expired here.
func (a *App) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkExpiry(ctx, time.Now())
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkExpiry(ctx context.Context, now time.Time) bool {
	exp, ok := projections.TokenExpiry(a.store.Token())
	if !ok || now.Before(exp) {
		return false
	}
	a.log.Warn(ctx, "session token expired", "expired_at", exp)
	a.session.Logout(ctx)
	a.refreshMode()
	return true
}

func (a *App) getStatus() string {
	s := ""
	if u := a.store.Snapshot().User; u != nil && u.Username != "" {
		s = u.Username + " "
	}
	if mode := a.Mode(); mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
