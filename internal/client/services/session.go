package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/nikbrowser/nikbrowser/internal/client/client"
	"github.com/nikbrowser/nikbrowser/internal/client/models"
	"github.com/nikbrowser/nikbrowser/internal/client/store"
	"github.com/nikbrowser/nikbrowser/internal/common"
	"github.com/nikbrowser/nikbrowser/internal/logging"
)

// Phase is the session lifecycle stage.
type Phase int

const (
	PhaseAnonymous Phase = iota
	PhaseVerifying
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseVerifying:
		return "verifying"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// SessionState is what subscribers observe. Identity is nil when anonymous
// and may be a cached (unverified) copy while verifying.
type SessionState struct {
	Phase    Phase
	Identity *models.Identity
}

type SessionOptions struct {
	// KeepSessionOnVerifyOutage keeps a cached session when verification
	// fails only because the auth service is unreachable. An explicit
	// rejection always ends the session.
	KeepSessionOnVerifyOutage bool

	Now func() time.Time
}

// SessionManager is the single owner of the current identity and token.
// The two are always set and cleared together, in memory and in the store.
type SessionManager struct {
	auth  client.AuthClient
	store *store.Store
	log   logging.Logger
	opts  SessionOptions

	mu      sync.Mutex
	state   SessionState
	token   string
	expires time.Time
	busy    bool
	// gen changes on every committed transition; an in-flight verification
	// started under an older gen is discarded.
	gen     uint64
	subs    map[int]func(SessionState)
	nextSub int
}

func NewSessionManager(auth client.AuthClient, st *store.Store, log logging.Logger, opts SessionOptions) *SessionManager {
	if log == nil {
		log = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SessionManager{
		auth:  auth,
		store: st,
		log:   log.With("component", "session"),
		opts:  opts,
		subs:  make(map[int]func(SessionState)),
	}
}

// State returns a copy of the current state. A session whose token has
// expired is ended first, so an identity is never reported without a live
// token.
func (m *SessionManager) State() SessionState {
	m.endIfExpired()

	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.state)
}

// CurrentIdentity returns the in-memory identity or nil.
func (m *SessionManager) CurrentIdentity() *models.Identity {
	return m.State().Identity
}

// Token returns the session token unless there is none or it has expired.
func (m *SessionManager) Token() (string, bool) {
	m.endIfExpired()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", false
	}
	return m.token, true
}

// endIfExpired moves to the anonymous state, clearing identity, token and
// expiry in memory and in the store, once the token's expiry has passed.
// m.mu must not be held.
func (m *SessionManager) endIfExpired() {
	m.mu.Lock()
	if m.token == "" || !m.expired(m.expires) {
		m.mu.Unlock()
		return
	}

	ctx := context.Background()
	expires := m.expires
	m.gen++
	err := m.clearLocked(ctx)
	state, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.log.Info(ctx, "session expired", "expires_at", expires)
	if err != nil {
		m.log.Error(ctx, "failed to clear expired session", "err", err)
	}
	m.notify(state, subs)
}

// Subscribe registers fn to be called after every state transition.
// The returned function removes the subscription.
func (m *SessionManager) Subscribe(fn func(SessionState)) (cancel func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Start runs Bootstrap in the background. The returned channel is closed
// once verification has settled.
func (m *SessionManager) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := m.Bootstrap(ctx); err != nil {
			m.log.Error(ctx, "session bootstrap failed", "err", err)
		}
	}()
	return done
}

// afterCacheRead runs between Bootstrap's store reads and its first state
// change. Tests replace it to interleave other transitions.
var afterCacheRead = func() {}

// Bootstrap restores the cached session, if any, and verifies it with the
// auth service. While the call is in flight the state is PhaseVerifying
// with the cached identity. The returned error reports storage failures
// only; verification failures end the session silently.
func (m *SessionManager) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	gen := m.gen
	m.mu.Unlock()

	token, ok := store.Get[string](ctx, m.store, store.KeySession)
	if !ok || token == "" {
		if _, stale := store.Get[models.Identity](ctx, m.store, store.KeyUser); stale {
			m.log.Warn(ctx, "dropping cached identity without session token")
			return m.settle(gen, func() error { return m.clearLocked(ctx) })
		}
		return nil
	}

	cached, hasCached := store.Get[models.Identity](ctx, m.store, store.KeyUser)
	expires, _ := store.Get[time.Time](ctx, m.store, store.KeySessionExpires)
	afterCacheRead()
	if m.expired(expires) {
		m.log.Info(ctx, "cached session expired", "expires_at", expires)
		return m.settle(gen, func() error { return m.clearLocked(ctx) })
	}

	m.mu.Lock()
	if m.gen != gen {
		// A login, logout or reset committed while the cache was read.
		m.mu.Unlock()
		return nil
	}
	m.gen++
	gen = m.gen
	m.token = token
	m.expires = expires
	m.state = SessionState{Phase: PhaseVerifying}
	if hasCached {
		m.state.Identity = &cached
	}
	state, subs := m.snapshotLocked()
	m.mu.Unlock()
	m.notify(state, subs)

	identity, err := m.auth.VerifySession(ctx, token)
	if err != nil {
		if m.opts.KeepSessionOnVerifyOutage && hasCached && errors.Is(err, client.ErrUnavailable) {
			m.log.Warn(ctx, "auth service unreachable, keeping cached session", "err", err)
			return m.settle(gen, func() error {
				m.state = SessionState{Phase: PhaseAuthenticated, Identity: &cached}
				return nil
			})
		}

		m.log.Info(ctx, "session verification failed, signing out", "err", err)
		return m.settle(gen, func() error {
			return m.clearLocked(ctx)
		})
	}

	return m.settle(gen, func() error {
		if err := m.store.Set(ctx, store.KeyUser, identity); err != nil {
			m.log.Error(ctx, "failed to persist verified identity", "err", err)
		}
		m.state = SessionState{Phase: PhaseAuthenticated, Identity: identity}
		return nil
	})
}

// settle applies fn under the lock if no other transition happened since
// gen was taken, then notifies subscribers.
func (m *SessionManager) settle(gen uint64, fn func() error) error {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return nil
	}
	m.gen++
	err := fn()
	state, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(state, subs)
	return err
}

// Register creates an account and signs in with it.
func (m *SessionManager) Register(ctx context.Context, creds models.Credentials) error {
	return m.authenticate(ctx, "register", creds, m.auth.Register)
}

// Login signs in with an email or phone and a password.
func (m *SessionManager) Login(ctx context.Context, creds models.Credentials) error {
	return m.authenticate(ctx, "login", creds, m.auth.Login)
}

func (m *SessionManager) authenticate(
	ctx context.Context,
	op string,
	creds models.Credentials,
	call func(context.Context, models.Credentials) (*client.AuthResult, error),
) error {
	if err := ValidateCredentials(creds); err != nil {
		return err
	}

	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return ErrBusy
	}
	m.busy = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.busy = false
		m.mu.Unlock()
	}()

	res, err := call(ctx, creds)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	m.mu.Lock()
	err = m.store.Batch(ctx, func(w store.Writer) error {
		if err := w.Set(ctx, store.KeyUser, res.Identity); err != nil {
			return err
		}
		if err := w.Set(ctx, store.KeySession, res.Token); err != nil {
			return err
		}
		if res.ExpiresAt.IsZero() {
			return w.Remove(ctx, store.KeySessionExpires)
		}
		return w.Set(ctx, store.KeySessionExpires, res.ExpiresAt)
	})
	if err != nil {
		m.mu.Unlock()
		return fmt.Errorf("%s: persist session: %w", op, err)
	}

	identity := res.Identity
	m.gen++
	m.token = res.Token
	m.expires = res.ExpiresAt
	m.state = SessionState{Phase: PhaseAuthenticated, Identity: &identity}
	state, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.log.Info(ctx, "signed in", "nikmail", identity.Nikmail)
	m.notify(state, subs)
	return nil
}

// Logout tells the auth service the session is over and then clears it
// locally no matter what the service answered.
func (m *SessionManager) Logout(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	if token != "" {
		if err := m.auth.Logout(ctx, token); err != nil {
			m.log.Warn(ctx, "remote logout failed", "err", err)
		}
	}
	return m.DropLocal(ctx)
}

// DropLocal forces the anonymous state and removes the identity, token and
// expiry from the store without contacting the auth service.
func (m *SessionManager) DropLocal(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	err := m.clearLocked(ctx)
	state, subs := m.snapshotLocked()
	m.mu.Unlock()

	m.notify(state, subs)
	return err
}

// clearLocked resets memory even when the store write fails.
func (m *SessionManager) clearLocked(ctx context.Context) error {
	m.token = ""
	m.expires = time.Time{}
	m.state = SessionState{Phase: PhaseAnonymous}

	err := m.store.Batch(ctx, func(w store.Writer) error {
		for _, key := range []string{store.KeyUser, store.KeySession, store.KeySessionExpires} {
			if err := w.Remove(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *SessionManager) expired(expires time.Time) bool {
	return !expires.IsZero() && !m.opts.Now().Before(expires)
}

func (m *SessionManager) snapshotLocked() (SessionState, []func(SessionState)) {
	subs := make([]func(SessionState), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	return copyState(m.state), subs
}

func (m *SessionManager) notify(state SessionState, subs []func(SessionState)) {
	for _, fn := range subs {
		fn(state)
	}
}

func copyState(s SessionState) SessionState {
	if s.Identity != nil {
		id := *s.Identity
		s.Identity = &id
	}
	return s
}

// ValidateCredentials checks credentials before they are sent anywhere:
// exactly one of email or phone, and a password of at least
// common.MinPasswordLength characters.
func ValidateCredentials(c models.Credentials) error {
	hasEmail := !common.IsBlank(c.Email)
	hasPhone := !common.IsBlank(c.Phone)

	switch {
	case hasEmail == hasPhone:
		return fmt.Errorf("%w: provide either an email or a phone number", ErrValidation)
	case utf8.RuneCount(c.Password) < common.MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, common.MinPasswordLength)
	}
	return nil
}
