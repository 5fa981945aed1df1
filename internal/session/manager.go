// Package session owns the authentication lifecycle: token acquisition,
// decoding, expiry checks, persistence and restoration. UI layers only ever
// see the derived state and claims, never the raw token.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"campusbuzz/internal/models"
	"campusbuzz/internal/observability"
	"campusbuzz/internal/tokenstore"
)

// State is the session lifecycle state.
type State string

const (
	Unauthenticated State = "unauthenticated"
	Authenticating  State = "authenticating"
	AwaitingOtp     State = "awaiting_otp"
	Authenticated   State = "authenticated"
	Restoring       State = "restoring"
)

// gateway is the slice of the API client the manager needs. The login,
// register and OTP endpoints are all unauthenticated JSON POSTs.
type gateway interface {
	PostJSON(ctx context.Context, path string, payload, out any) error
}

// Manager drives the session state machine. All methods are safe for
// concurrent use; a failed transition leaves both the state and the token
// store exactly as they were.
type Manager struct {
	mu     sync.Mutex
	state  State
	claims *Claims

	api    gateway
	tokens tokenstore.Store
	log    *observability.OpLogger
	now    func() time.Time
}

// NewManager builds a session manager starting in Unauthenticated. Call
// Restore to pick up a persisted token.
func NewManager(api gateway, tokens tokenstore.Store, logger *observability.Logger) *Manager {
	return &Manager{
		state:  Unauthenticated,
		api:    api,
		tokens: tokens,
		log:    observability.NewOpLogger("session", logger),
		now:    time.Now,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Claims returns the decoded identity when authenticated.
func (m *Manager) Claims() (Claims, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claims == nil {
		return Claims{}, false
	}
	return *m.claims, true
}

// IsBroadcaster reports whether the current session may create announcements.
func (m *Manager) IsBroadcaster() bool {
	claims, ok := m.Claims()
	return ok && claims.IsBroadcaster()
}

// Restore reads the token store on launch. A stored token that decodes and is
// unexpired yields Authenticated; an expired or undecodable token is purged
// silently and the session ends Unauthenticated. Only storage failures are
// reported.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Restoring

	token, err := m.tokens.Read(ctx)
	if errors.Is(err, tokenstore.ErrNotFound) {
		m.state = Unauthenticated
		return nil
	}
	if err != nil {
		m.state = Unauthenticated
		m.log.LogError(ctx, "restore", err)
		return err
	}

	claims, err := decodeClaims(token, m.now())
	if err != nil {
		// Expected on expiry; purge and fall back without surfacing.
		if clearErr := m.tokens.Clear(ctx); clearErr != nil {
			m.log.LogError(ctx, "restore", clearErr)
		}
		m.state = Unauthenticated
		m.claims = nil
		return nil
	}

	m.state = Authenticated
	m.claims = claims
	return nil
}

// SignIn exchanges credentials for an access token. The token is persisted
// only after it decodes and passes the expiry check.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return models.NewValidationError("email and password are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.state
	m.state = Authenticating
	m.log.LogStart(ctx, "sign_in", map[string]interface{}{"email": email})

	var resp struct {
		Access string `json:"access"`
	}
	payload := map[string]string{"email": email, "password": password}
	if err := m.api.PostJSON(ctx, "user/login/", payload, &resp); err != nil {
		m.state = prev
		m.log.LogError(ctx, "sign_in", err)
		return err
	}
	if resp.Access == "" {
		m.state = prev
		return models.NewDecodeError(errors.New("no access token in login response"))
	}

	claims, err := decodeClaims(resp.Access, m.now())
	if err != nil {
		m.state = prev
		m.log.LogError(ctx, "sign_in", err)
		return err
	}
	if err := m.tokens.Save(ctx, resp.Access); err != nil {
		m.state = prev
		m.log.LogError(ctx, "sign_in", err)
		return err
	}

	m.state = Authenticated
	m.claims = claims
	return nil
}

// SignUp registers a new account. A 2xx response means the server has sent an
// OTP out-of-band and the session is awaiting its confirmation.
func (m *Manager) SignUp(ctx context.Context, email, username, password, confirmPassword string) error {
	if email == "" || username == "" || password == "" || confirmPassword == "" {
		return models.NewValidationError("all fields are required")
	}
	if password != confirmPassword {
		return models.NewValidationError("passwords do not match")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.state
	m.state = Authenticating
	m.log.LogStart(ctx, "sign_up", map[string]interface{}{"email": email, "username": username})

	payload := map[string]string{
		"email":            email,
		"username":         username,
		"password":         password,
		"confirm_password": confirmPassword,
	}
	if err := m.api.PostJSON(ctx, "user/register/", payload, nil); err != nil {
		m.state = prev
		m.log.LogError(ctx, "sign_up", err)
		return err
	}

	m.state = AwaitingOtp
	return nil
}

// VerifyOTP confirms account creation. When the response carries a token the
// session becomes Authenticated directly; otherwise the user signs in
// separately and the session returns to Unauthenticated.
func (m *Manager) VerifyOTP(ctx context.Context, email, otp string) error {
	if otp == "" {
		return models.NewValidationError("OTP is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.state
	m.log.LogStart(ctx, "verify_otp", map[string]interface{}{"email": email})

	var resp struct {
		Token string `json:"token"`
	}
	payload := map[string]string{"email": email, "otp": otp}
	if err := m.api.PostJSON(ctx, "user/verify-otp/", payload, &resp); err != nil {
		m.state = prev
		m.log.LogError(ctx, "verify_otp", err)
		return err
	}

	if resp.Token == "" {
		m.state = Unauthenticated
		m.claims = nil
		return nil
	}

	claims, err := decodeClaims(resp.Token, m.now())
	if err != nil {
		m.state = prev
		m.log.LogError(ctx, "verify_otp", err)
		return err
	}
	if err := m.tokens.Save(ctx, resp.Token); err != nil {
		m.state = prev
		m.log.LogError(ctx, "verify_otp", err)
		return err
	}

	m.state = Authenticated
	m.claims = claims
	return nil
}

// Logout clears the token store and local claims unconditionally. Calling it
// on an already-unauthenticated session is a no-op success.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.tokens.Clear(ctx); err != nil {
		m.log.LogError(ctx, "logout", err)
		return err
	}
	m.state = Unauthenticated
	m.claims = nil
	return nil
}
