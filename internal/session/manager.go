package session

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/jask/taskpad/internal/logging"
	"github.com/jask/taskpad/internal/tokenstore"
)

// State is the coarse authentication state.
type State int

const (
	Uninitialized State = iota
	Unauthenticated
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// Snapshot is a copy of the session at one point in time.
// An empty Token means no token is held.
type Snapshot struct {
	Token   string
	Loading bool
}

func (s Snapshot) State() State {
	switch {
	case s.Loading:
		return Uninitialized
	case s.Token == "":
		return Unauthenticated
	default:
		return Authenticated
	}
}

func (s Snapshot) Authenticated() bool { return s.State() == Authenticated }

// Reason says which operation produced a Change.
type Reason string

const (
	ReasonBoot   Reason = "boot"
	ReasonLogin  Reason = "login"
	ReasonLogout Reason = "logout"
)

// Change is published to subscribers after every transition.
type Change struct {
	From   Snapshot
	To     Snapshot
	Reason Reason
}

// Listener receives changes synchronously, in subscription order.
type Listener func(Change)

type subscription struct {
	id uint64
	fn Listener
}

// Manager owns the Session. Create one per process and pass it to whatever
// needs it. The mutex only keeps snapshot reads safe; callers must not run
// Login and Logout concurrently.
type Manager struct {
	store   tokenstore.Store
	log     *slog.Logger
	timeout time.Duration

	mu          sync.RWMutex
	snap        Snapshot
	initialized bool
	subs        []subscription
	nextID      uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = logging.Component(l, "session") }
}

// WithStoreTimeout bounds every token store call. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// NewManager returns a Manager in the Uninitialized state.
func NewManager(store tokenstore.Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		log:   logging.Component(nil, "session"),
		snap:  Snapshot{Loading: true},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot returns the current session.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// Subscribe registers fn for every future change and returns a function
// removing it.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.subs = append(m.subs, subscription{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, s := range m.subs {
			if s.id == id {
				m.subs = append(m.subs[:i:i], m.subs[i+1:]...)
				return
			}
		}
	}
}

// Initialize reads the stored token once. Loading becomes false when the read
// completes, whatever its outcome. A failed read leaves the session
// unauthenticated and returns an error wrapping ErrStorageRead. Later calls
// do nothing.
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return nil
	}
	m.initialized = true
	m.mu.Unlock()

	ctx, cancel := m.storeContext(ctx)
	token, ok, err := m.store.Get(ctx)
	cancel()

	next := Snapshot{}
	if err != nil {
		m.log.Warn("token read failed, starting unauthenticated", slog.Any("err", err))
		err = fmt.Errorf("%w: %w", ErrStorageRead, err)
	} else if ok {
		next.Token = token
	}

	prev := m.set(next)
	m.log.Info("session initialized", slog.String("state", next.State().String()))
	m.publish(Change{From: prev, To: next, Reason: ReasonBoot})
	return err
}

// Login persists token and, once the store confirms it, marks the session
// authenticated. On any storage failure the session is left untouched and the
// error wraps ErrStorageWrite.
func (m *Manager) Login(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if m.Snapshot().Loading {
		return ErrNotInitialized
	}

	ctx, cancel := m.storeContext(ctx)
	defer cancel()

	if err := m.store.Set(ctx, token); err != nil {
		m.log.Error("token write failed, login not applied", slog.Any("err", err))
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	stored, ok, err := m.store.Get(ctx)
	if err != nil {
		m.log.Error("token write could not be confirmed", slog.Any("err", err))
		return fmt.Errorf("%w: confirm: %w", ErrStorageWrite, err)
	}
	if !ok || stored != token {
		m.log.Error("token write not observed on read-back", slog.Bool("present", ok))
		return fmt.Errorf("%w: stored value does not match", ErrStorageWrite)
	}

	next := Snapshot{Token: token}
	prev := m.set(next)
	m.log.Info("logged in", slog.String("from", prev.State().String()))
	m.publish(Change{From: prev, To: next, Reason: ReasonLogin})
	return nil
}

// Logout forgets the token. The in-memory session is cleared even when the
// store removal fails; that failure is logged and returned wrapping
// ErrStorageWrite.
func (m *Manager) Logout(ctx context.Context) error {
	if m.Snapshot().Loading {
		return ErrNotInitialized
	}

	ctx, cancel := m.storeContext(ctx)
	removeErr := m.store.Remove(ctx)
	cancel()
	if removeErr != nil {
		m.log.Warn("token removal failed, clearing session anyway", slog.Any("err", removeErr))
		removeErr = fmt.Errorf("%w: remove: %w", ErrStorageWrite, removeErr)
	}

	next := Snapshot{}
	prev := m.set(next)
	m.log.Info("logged out", slog.String("from", prev.State().String()))
	m.publish(Change{From: prev, To: next, Reason: ReasonLogout})
	return removeErr
}

// Token makes the Manager an oauth2.TokenSource for bearer injection.
func (m *Manager) Token() (*oauth2.Token, error) {
	snap := m.Snapshot()
	if !snap.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: snap.Token, TokenType: "Bearer"}, nil
}

var _ oauth2.TokenSource = (*Manager)(nil)

func (m *Manager) set(next Snapshot) (prev Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev = m.snap
	m.snap = next
	return prev
}

func (m *Manager) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout > 0 {
		return context.WithTimeout(ctx, m.timeout)
	}
	return context.WithCancel(ctx)
}

func (m *Manager) publish(c Change) {
	m.mu.RLock()
	subs := make([]subscription, len(m.subs))
	copy(subs, m.subs)
	m.mu.RUnlock()

	for _, s := range subs {
		m.safeCall(s.fn, c)
	}
}

// safeCall keeps one failing listener from starving the rest.
func (m *Manager) safeCall(fn Listener, c Change) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("session listener panicked",
				slog.Any("panic", r), slog.String("reason", string(c.Reason)), slog.String("stack", string(debug.Stack())))
		}
	}()
	fn(c)
}
