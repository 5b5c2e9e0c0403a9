package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/localstore"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/model"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/syncer"
)

// API is the backend surface the session context needs: authentication plus
// the write endpoints routed through writeThrough in data.go.
type API interface {
	SetToken(token string)
	Login(ctx context.Context, email, password string) (model.Session, error)
	Register(ctx context.Context, email, password, name string) (model.Session, error)
	Logout(ctx context.Context) error
	CreateAttendance(ctx context.Context, record model.AttendanceRecord) (model.AttendanceRecord, error)
	CreateSubject(ctx context.Context, name string, targetPercent int) (model.Subject, error)
	PutSchedule(ctx context.Context, entries []model.ScheduleEntry) error
	AwardPoints(ctx context.Context, delta int, reason string) (model.PointsState, error)
	CreateTodo(ctx context.Context, todo model.Todo) (model.Todo, error)
	PutSettings(ctx context.Context, settings model.NotificationSettings) (model.NotificationSettings, error)
}

// Synchronizer refreshes the local cache from the server.
type Synchronizer interface {
	FullSync(ctx context.Context, userID string) syncer.Result
}

// OfflineMode is the slice of the offline controller the session consults.
type OfflineMode interface {
	Enabled() bool
	Enable()
}

// AuthResult is the structured outcome of a sign-in or registration
// attempt. Error is a user-presentable message, empty on success.
type AuthResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Context holds the signed-in user and routes reads and writes between the
// backend and the local cache.
type Context struct {
	api     API
	store   *localstore.Store
	sync    Synchronizer
	offline OfflineMode
	logger  zerolog.Logger

	mu      sync.RWMutex
	current model.Session
}

func New(api API, store *localstore.Store, sync Synchronizer, offline OfflineMode, logger zerolog.Logger) *Context {
	return &Context{
		api:     api,
		store:   store,
		sync:    sync,
		offline: offline,
		logger:  logger,
	}
}

// Restore loads a persisted session after a restart. It reports whether a
// usable session was found; the token may still be rejected server-side on
// the next request.
func (c *Context) Restore() bool {
	var session model.Session
	if !c.store.Get(localstore.KeySession, &session) || !session.Valid() {
		return false
	}
	c.mu.Lock()
	c.current = session
	c.mu.Unlock()
	c.api.SetToken(session.Token)
	c.logger.Info().Str("user", session.Email).Msg("session restored")
	return true
}

// Current returns the signed-in session; the zero value when signed out.
func (c *Context) Current() model.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// SignIn authenticates against the backend and installs the session.
func (c *Context) SignIn(ctx context.Context, email, password string) AuthResult {
	session, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", email).Msg("sign-in failed")
		return AuthResult{Error: err.Error()}
	}
	c.install(ctx, session)
	return AuthResult{Success: true}
}

// SignUp creates an account and installs the resulting session.
func (c *Context) SignUp(ctx context.Context, email, password, name string) AuthResult {
	session, err := c.api.Register(ctx, email, password, name)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", email).Msg("registration failed")
		return AuthResult{Error: err.Error()}
	}
	c.install(ctx, session)
	return AuthResult{Success: true}
}

func (c *Context) install(ctx context.Context, session model.Session) {
	c.mu.Lock()
	c.current = session
	c.mu.Unlock()
	c.api.SetToken(session.Token)
	if err := c.store.Set(localstore.KeySession, session); err != nil {
		c.logger.Error().Err(err).Msg("persist session")
	}
	c.seedPoints(session.UserID)
	if c.sync != nil {
		c.sync.FullSync(ctx, session.UserID)
	}
	c.logger.Info().Str("user", session.Email).Msg("signed in")
}

// seedPoints grants the starting balance locally so the points screen works
// before the first successful sync. The server value replaces it on sync.
func (c *Context) seedPoints(userID string) {
	var state model.PointsState
	if c.store.Get(localstore.KeyPoints(userID), &state) {
		return
	}
	state.Balance = model.DefaultPointsBalance
	if err := c.store.Set(localstore.KeyPoints(userID), state); err != nil {
		c.logger.Error().Err(err).Msg("seed points")
	}
}

// SignOut revokes the token server-side when possible and always wipes the
// local state. Calling it while signed out is a no-op.
func (c *Context) SignOut(ctx context.Context) {
	c.mu.Lock()
	session := c.current
	c.current = model.Session{}
	c.mu.Unlock()

	if session.Valid() && (c.offline == nil || !c.offline.Enabled()) {
		if err := c.api.Logout(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("server-side logout failed")
		}
	}
	c.api.SetToken("")
	if err := c.store.Clear(); err != nil {
		c.logger.Error().Err(err).Msg("clear local store")
	}
	if session.Valid() {
		c.logger.Info().Str("user", session.Email).Msg("signed out")
	}
}

// Sync runs a full pull for the signed-in user.
func (c *Context) Sync(ctx context.Context) syncer.Result {
	session := c.Current()
	if !session.Valid() {
		return syncer.Result{Errors: []string{"no signed-in user"}}
	}
	if c.sync == nil {
		return syncer.Result{Errors: []string{"synchronizer not configured"}}
	}
	return c.sync.FullSync(ctx, session.UserID)
}
