package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/flotacare/fleet-console/internal/core/domain"
	"github.com/flotacare/fleet-console/internal/core/ports"
	"github.com/flotacare/fleet-console/internal/pkg/clock"
)

// storeTimeout bounds one credential store mutation. Mutations run
// detached from the caller's cancellation so a dropped request cannot
// leave storage out of step with the session.
const storeTimeout = 5 * time.Second

// DefaultIdleTimeout is how long an authenticated session may go without
// activity before the idle confirmation prompt opens.
const DefaultIdleTimeout = 5 * time.Minute

// SessionOption customises a Session at construction time.
type SessionOption func(*Session)

// WithClock sets the time source for the idle countdown.
func WithClock(c clock.Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

// WithIdleTimeout overrides DefaultIdleTimeout. Non-positive values are ignored.
func WithIdleTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.idleTimeout = d
		}
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(log zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

type observer struct {
	id int
	fn func(domain.Snapshot)
}

// Session owns the current user, the idle countdown and the idle
// confirmation flow of one running console. It is the only writer of the
// credential store.
//
// A Session starts in the initializing state and leaves it through
// Initialize, Login or Logout. Network calls are made without holding the
// lock; storage writes and state changes happen together under it, so a
// Snapshot never observes half a transition.
type Session struct {
	api         ports.AuthAPI
	store       ports.CredentialStore
	clock       clock.Clock
	idleTimeout time.Duration
	log         zerolog.Logger

	mu           sync.Mutex
	user         *domain.User
	loading      bool
	initStarted  bool
	idleDeadline time.Time
	awaiting     bool
	timer        *clock.Timer
	generation   uint64
	closed       bool
	unsubscribe  func()
	observers    []observer
	nextObserver int
	version      uint64

	// notifyMu orders deliveries; delivered is the last version handed
	// to observers. Observers must not call back into mutating methods.
	notifyMu  sync.Mutex
	delivered uint64
}

// NewSession returns a Session in the initializing state.
func NewSession(api ports.AuthAPI, store ports.CredentialStore, opts ...SessionOption) *Session {
	s := &Session{
		api:         api,
		store:       store,
		clock:       clock.Real(),
		idleTimeout: DefaultIdleTimeout,
		log:         zerolog.Nop(),
		loading:     true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IdleTimeout returns the configured countdown length.
func (s *Session) IdleTimeout() time.Duration { return s.idleTimeout }

// Snapshot returns a consistent copy of the current state.
func (s *Session) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Initialize attempts silent re-authentication from the stored token. It
// makes a single attempt; any failure clears the stored credentials and
// leaves the session anonymous without returning an error.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return domain.ErrSessionClosed
	case s.initStarted:
		s.mu.Unlock()
		return domain.ErrAlreadyInitialized
	}
	s.initStarted = true
	s.mu.Unlock()

	token, err := s.store.Get(ctx, ports.KeyToken)
	if err != nil {
		if !errors.Is(err, domain.ErrCredentialNotFound) {
			s.log.Warn().Err(err).Msg("read stored token failed")
		}
		s.finishInitialize(ctx, nil, false)
		return nil
	}

	user, err := s.api.Me(ctx, token)
	if err == nil {
		err = user.Validate()
	}
	if err != nil {
		s.log.Info().Err(err).Msg("silent re-authentication failed")
		s.finishInitialize(ctx, nil, true)
		return nil
	}

	s.finishInitialize(ctx, user, true)
	return nil
}

func (s *Session) finishInitialize(ctx context.Context, user *domain.User, hadToken bool) {
	s.mu.Lock()
	if s.closed || !s.loading {
		// Login, Logout or Close won the race; the late result is stale.
		s.mu.Unlock()
		s.log.Debug().Msg("discarding stale re-authentication result")
		return
	}

	s.loading = false
	if user == nil {
		if hadToken {
			if err := s.clearCredentialsLocked(ctx); err != nil {
				s.log.Warn().Err(err).Msg("clear rejected credentials failed")
			}
		}
	} else {
		s.user = cloneUser(user)
		if err := s.writeUserLocked(ctx, user); err != nil {
			s.log.Warn().Err(err).Msg("refresh stored user failed")
		}
		s.restartTimerLocked()
		s.log.Info().Str("user_id", user.ID).Str("rol", string(user.Rol)).Msg("session restored")
	}
	snap, version := s.transitionLocked()
	s.mu.Unlock()

	s.notify(snap, version)
}

// Login authenticates against the backend. Any failure returns
// domain.ErrAuthenticationFailed and leaves state and storage untouched.
func (s *Session) Login(ctx context.Context, correo, password string) (*domain.User, error) {
	if correo == "" || password == "" {
		return nil, domain.ErrAuthenticationFailed
	}
	if s.isClosed() {
		return nil, domain.ErrSessionClosed
	}

	token, user, err := s.api.Login(ctx, correo, password)
	if err == nil && token == "" {
		err = errors.New("empty token")
	}
	if err == nil {
		err = user.Validate()
	}
	if err != nil {
		s.log.Debug().Err(err).Msg("login rejected")
		return nil, domain.ErrAuthenticationFailed
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, domain.ErrSessionClosed
	}
	if err := s.writeRecordLocked(ctx, token, user); err != nil {
		s.mu.Unlock()
		s.log.Error().Err(err).Msg("persist credentials failed")
		return nil, domain.ErrAuthenticationFailed
	}
	s.user = cloneUser(user)
	s.loading = false
	s.awaiting = false
	s.restartTimerLocked()
	snap, version := s.transitionLocked()
	s.mu.Unlock()

	s.log.Info().Str("user_id", user.ID).Str("rol", string(user.Rol)).Msg("session started")
	s.notify(snap, version)
	return cloneUser(user), nil
}

// Logout ends the session unconditionally. Storage errors are returned
// but never prevent the transition. Calling it again is a no-op.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	changed, err := s.logoutLocked(ctx)
	snap, version := s.transitionLocked()
	s.mu.Unlock()

	if changed {
		s.notify(snap, version)
	}
	return err
}

func (s *Session) logoutLocked(ctx context.Context) (bool, error) {
	changed := s.user != nil || s.loading
	err := s.clearCredentialsLocked(ctx)
	s.user = nil
	s.loading = false
	s.awaiting = false
	s.stopTimerLocked()
	if changed {
		s.log.Info().Msg("session ended")
	}
	return changed, err
}

// UpdateUser replaces the cached user and the stored copy. The token is
// not touched.
func (s *Session) UpdateUser(ctx context.Context, user domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return domain.ErrNotAuthenticated
	}
	if err := s.writeUserLocked(ctx, &user); err != nil {
		s.mu.Unlock()
		return err
	}
	s.user = cloneUser(&user)
	snap, version := s.transitionLocked()
	s.mu.Unlock()

	s.notify(snap, version)
	return nil
}

// RecordActivity restarts the idle countdown. It is ignored unless the
// session is authenticated and no confirmation prompt is open.
func (s *Session) RecordActivity(kind domain.ActivityKind) {
	if !kind.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.user == nil || s.awaiting {
		return
	}
	s.restartTimerLocked()
}

// ResolveIdle answers the idle confirmation prompt.
func (s *Session) ResolveIdle(ctx context.Context, choice domain.IdleChoice) error {
	if choice != domain.IdleContinue && choice != domain.IdleEnd {
		return domain.ErrInvalidIdleChoice
	}

	s.mu.Lock()
	if !s.awaiting {
		s.mu.Unlock()
		return domain.ErrNoPendingConfirmation
	}

	var err error
	if choice == domain.IdleContinue {
		s.awaiting = false
		s.restartTimerLocked()
		s.log.Debug().Msg("idle prompt dismissed")
	} else {
		_, err = s.logoutLocked(ctx)
	}
	snap, version := s.transitionLocked()
	s.mu.Unlock()

	s.notify(snap, version)
	return err
}

// Attach subscribes the session to src. A previous subscription is
// replaced. The subscription is released by Close.
func (s *Session) Attach(src ports.ActivitySource) error {
	if s.isClosed() {
		return domain.ErrSessionClosed
	}
	unsubscribe := src.Subscribe(func(ev domain.ActivityEvent) {
		s.RecordActivity(ev.Kind)
	})

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
		return domain.ErrSessionClosed
	}
	prev := s.unsubscribe
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
	return nil
}

// Watch registers fn to receive a snapshot after every transition. The
// returned func removes it.
func (s *Session) Watch(fn func(domain.Snapshot)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, observer{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Close releases the timer, the activity subscription and all observers.
// Stored credentials are kept so the next process can restore the
// session. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopTimerLocked()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.observers = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// restartTimerLocked cancels the outstanding countdown and schedules a new
// one. The generation guard drops a callback that was already running
// when it was cancelled.
func (s *Session) restartTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.generation++
	gen := s.generation
	s.idleDeadline = s.clock.Now().Add(s.idleTimeout)
	s.timer = s.clock.AfterFunc(s.idleTimeout, func() { s.onIdle(gen) })
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
	s.idleDeadline = time.Time{}
}

func (s *Session) onIdle(gen uint64) {
	s.mu.Lock()
	if s.closed || gen != s.generation || s.user == nil || s.awaiting {
		s.mu.Unlock()
		return
	}
	s.awaiting = true
	s.timer = nil
	s.idleDeadline = time.Time{}
	snap, version := s.transitionLocked()
	s.mu.Unlock()

	s.log.Info().Str("user_id", snap.User.ID).Msg("session idle, awaiting confirmation")
	s.notify(snap, version)
}

// notify hands snap to the observers unless a later transition has
// already been delivered.
func (s *Session) notify(snap domain.Snapshot, version uint64) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if version <= s.delivered {
		return
	}
	s.delivered = version

	s.mu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(s.observers))
	for _, o := range s.observers {
		fns = append(fns, o.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// transitionLocked snapshots the state and stamps it with a new version.
func (s *Session) transitionLocked() (domain.Snapshot, uint64) {
	s.version++
	return s.snapshotLocked(), s.version
}

func (s *Session) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		User:                 cloneUser(s.user),
		Loading:              s.loading,
		IdleDeadline:         s.idleDeadline,
		AwaitingConfirmation: s.awaiting,
	}
}

// writeRecordLocked stores token and user. On failure the previous record
// is put back so a failed login leaves storage as it was.
func (s *Session) writeRecordLocked(ctx context.Context, token string, user *domain.User) error {
	ctx, cancel := storeContext(ctx)
	defer cancel()

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	prevToken, tokenErr := s.store.Get(ctx, ports.KeyToken)
	prevUser, userErr := s.store.Get(ctx, ports.KeyUser)
	restore := func() {
		s.restoreKey(ctx, ports.KeyToken, prevToken, tokenErr)
		s.restoreKey(ctx, ports.KeyUser, prevUser, userErr)
	}

	if err := s.store.Set(ctx, ports.KeyToken, token); err != nil {
		restore()
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.store.Set(ctx, ports.KeyUser, string(raw)); err != nil {
		restore()
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (s *Session) restoreKey(ctx context.Context, key, prev string, readErr error) {
	var err error
	switch {
	case readErr == nil:
		err = s.store.Set(ctx, key, prev)
	case errors.Is(readErr, domain.ErrCredentialNotFound):
		err = s.store.Remove(ctx, key)
	default:
		return
	}
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("restore credential failed")
	}
}

func (s *Session) writeUserLocked(ctx context.Context, user *domain.User) error {
	ctx, cancel := storeContext(ctx)
	defer cancel()

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, ports.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (s *Session) clearCredentialsLocked(ctx context.Context) error {
	ctx, cancel := storeContext(ctx)
	defer cancel()

	return errors.Join(
		s.store.Remove(ctx, ports.KeyToken),
		s.store.Remove(ctx, ports.KeyUser),
	)
}

func storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}
