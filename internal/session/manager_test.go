package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusbuzz/internal/models"
	"campusbuzz/internal/tokenstore"
)

// gatewayStub is a stub for the API gateway client.
type gatewayStub struct {
	calls      int
	postJSONFn func(ctx context.Context, path string, payload, out any) error
}

func (s *gatewayStub) PostJSON(ctx context.Context, path string, payload, out any) error {
	s.calls++
	if s.postJSONFn == nil {
		return nil
	}
	return s.postJSONFn(ctx, path, payload, out)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func respondJSON(t *testing.T, out any, body string) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out))
}

func TestManager_Restore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no stored token", func(t *testing.T) {
		t.Parallel()
		m := NewManager(&gatewayStub{}, tokenstore.NewMemoryStore(), nil)
		require.NoError(t, m.Restore(ctx))
		assert.Equal(t, Unauthenticated, m.State())
	})

	t.Run("valid token with role", func(t *testing.T) {
		t.Parallel()
		tokens := tokenstore.NewMemoryStore()
		token := signToken(t, jwt.MapClaims{
			"sub":  "17",
			"role": "broadcaster",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		require.NoError(t, tokens.Save(ctx, token))

		m := NewManager(&gatewayStub{}, tokens, nil)
		require.NoError(t, m.Restore(ctx))
		assert.Equal(t, Authenticated, m.State())
		assert.True(t, m.IsBroadcaster())

		claims, ok := m.Claims()
		require.True(t, ok)
		assert.Equal(t, "17", claims.Subject)
	})

	t.Run("token without exp is valid", func(t *testing.T) {
		t.Parallel()
		tokens := tokenstore.NewMemoryStore()
		require.NoError(t, tokens.Save(ctx, signToken(t, jwt.MapClaims{"sub": "3"})))

		m := NewManager(&gatewayStub{}, tokens, nil)
		require.NoError(t, m.Restore(ctx))
		assert.Equal(t, Authenticated, m.State())
		assert.False(t, m.IsBroadcaster())
	})

	t.Run("expired token purged silently", func(t *testing.T) {
		t.Parallel()
		tokens := tokenstore.NewMemoryStore()
		token := signToken(t, jwt.MapClaims{
			"sub": "17",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		require.NoError(t, tokens.Save(ctx, token))

		m := NewManager(&gatewayStub{}, tokens, nil)
		require.NoError(t, m.Restore(ctx))
		assert.Equal(t, Unauthenticated, m.State())

		_, err := tokens.Read(ctx)
		assert.ErrorIs(t, err, tokenstore.ErrNotFound)
	})

	t.Run("undecodable token purged silently", func(t *testing.T) {
		t.Parallel()
		tokens := tokenstore.NewMemoryStore()
		require.NoError(t, tokens.Save(ctx, "not-a-jwt"))

		m := NewManager(&gatewayStub{}, tokens, nil)
		require.NoError(t, m.Restore(ctx))
		assert.Equal(t, Unauthenticated, m.State())

		_, err := tokens.Read(ctx)
		assert.ErrorIs(t, err, tokenstore.ErrNotFound)
	})
}

func TestManager_SignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty fields fail fast without network call", func(t *testing.T) {
		t.Parallel()
		gw := &gatewayStub{}
		m := NewManager(gw, tokenstore.NewMemoryStore(), nil)

		err := m.SignIn(ctx, "", "pw")
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
		err = m.SignIn(ctx, "a@b.com", "")
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
		assert.Zero(t, gw.calls)
		assert.Equal(t, Unauthenticated, m.State())
	})

	t.Run("success stores token and authenticates", func(t *testing.T) {
		t.Parallel()
		token := signToken(t, jwt.MapClaims{
			"sub":  "9",
			"role": "broadcaster",
			"exp":  time.Now().Add(time.Hour).Unix(),
		})
		gw := &gatewayStub{postJSONFn: func(_ context.Context, path string, payload, out any) error {
			assert.Equal(t, "user/login/", path)
			respondJSON(t, out, `{"access": "`+token+`"}`)
			return nil
		}}
		tokens := tokenstore.NewMemoryStore()
		m := NewManager(gw, tokens, nil)

		require.NoError(t, m.SignIn(ctx, "a@b.com", "pw"))
		assert.Equal(t, Authenticated, m.State())
		assert.True(t, m.IsBroadcaster())

		stored, err := tokens.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, token, stored)
	})

	t.Run("request failure does not advance state", func(t *testing.T) {
		t.Parallel()
		gw := &gatewayStub{postJSONFn: func(_ context.Context, _ string, _, _ any) error {
			return models.NewRequestFailedError(401, `{"detail": "bad credentials"}`)
		}}
		tokens := tokenstore.NewMemoryStore()
		m := NewManager(gw, tokens, nil)

		err := m.SignIn(ctx, "a@b.com", "wrong")
		assert.Equal(t, models.CodeRequestFailed, models.CodeOf(err))
		assert.Equal(t, Unauthenticated, m.State())

		_, err = tokens.Read(ctx)
		assert.ErrorIs(t, err, tokenstore.ErrNotFound)
	})

	t.Run("missing access token is a decode error", func(t *testing.T) {
		t.Parallel()
		gw := &gatewayStub{postJSONFn: func(_ context.Context, _ string, _, out any) error {
			respondJSON(t, out, `{}`)
			return nil
		}}
		m := NewManager(gw, tokenstore.NewMemoryStore(), nil)

		err := m.SignIn(ctx, "a@b.com", "pw")
		assert.Equal(t, models.CodeDecode, models.CodeOf(err))
		assert.Equal(t, Unauthenticated, m.State())
	})

	t.Run("expired token in response never persisted", func(t *testing.T) {
		t.Parallel()
		token := signToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Minute).Unix()})
		gw := &gatewayStub{postJSONFn: func(_ context.Context, _ string, _, out any) error {
			respondJSON(t, out, `{"access": "`+token+`"}`)
			return nil
		}}
		tokens := tokenstore.NewMemoryStore()
		m := NewManager(gw, tokens, nil)

		err := m.SignIn(ctx, "a@b.com", "pw")
		assert.Equal(t, models.CodeTokenExpired, models.CodeOf(err))
		assert.Equal(t, Unauthenticated, m.State())

		_, err = tokens.Read(ctx)
		assert.ErrorIs(t, err, tokenstore.ErrNotFound)
	})
}

func TestManager_SignUp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("password mismatch fails fast", func(t *testing.T) {
		t.Parallel()
		gw := &gatewayStub{}
		m := NewManager(gw, tokenstore.NewMemoryStore(), nil)

		err := m.SignUp(ctx, "a@b.com", "alice", "pw1", "pw2")
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
		assert.Zero(t, gw.calls)
	})

	t.Run("success awaits OTP", func(t *testing.T) {
		t.Parallel()
		gw := &gatewayStub{postJSONFn: func(_ context.Context, path string, payload, _ any) error {
			assert.Equal(t, "user/register/", path)
			body := payload.(map[string]string)
			assert.Equal(t, "pw", body["confirm_password"])
			return nil
		}}
		m := NewManager(gw, tokenstore.NewMemoryStore(), nil)

		require.NoError(t, m.SignUp(ctx, "a@b.com", "alice", "pw", "pw"))
		assert.Equal(t, AwaitingOtp, m.State())
	})
}

func TestManager_VerifyOTP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty otp fails fast", func(t *testing.T) {
		t.Parallel()
		gw := &gatewayStub{}
		m := NewManager(gw, tokenstore.NewMemoryStore(), nil)
		err := m.VerifyOTP(ctx, "a@b.com", "")
		assert.Equal(t, models.CodeValidation, models.CodeOf(err))
		assert.Zero(t, gw.calls)
	})

	t.Run("token in response authenticates directly", func(t *testing.T) {
		t.Parallel()
		token := signToken(t, jwt.MapClaims{"sub": "4", "exp": time.Now().Add(time.Hour).Unix()})
		gw := &gatewayStub{postJSONFn: func(_ context.Context, path string, _, out any) error {
			assert.Equal(t, "user/verify-otp/", path)
			respondJSON(t, out, `{"token": "`+token+`"}`)
			return nil
		}}
		tokens := tokenstore.NewMemoryStore()
		m := NewManager(gw, tokens, nil)

		require.NoError(t, m.VerifyOTP(ctx, "a@b.com", "123456"))
		assert.Equal(t, Authenticated, m.State())

		stored, err := tokens.Read(ctx)
		require.NoError(t, err)
		assert.Equal(t, token, stored)
	})

	t.Run("no token means sign in separately", func(t *testing.T) {
		t.Parallel()
		gw := &gatewayStub{postJSONFn: func(_ context.Context, _ string, _, out any) error {
			respondJSON(t, out, `{}`)
			return nil
		}}
		m := NewManager(gw, tokenstore.NewMemoryStore(), nil)

		require.NoError(t, m.VerifyOTP(ctx, "a@b.com", "123456"))
		assert.Equal(t, Unauthenticated, m.State())
	})
}

func TestManager_Logout_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tokens := tokenstore.NewMemoryStore()
	require.NoError(t, tokens.Save(ctx, signToken(t, jwt.MapClaims{"sub": "1"})))

	m := NewManager(&gatewayStub{}, tokens, nil)
	require.NoError(t, m.Restore(ctx))
	require.Equal(t, Authenticated, m.State())

	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, Unauthenticated, m.State())
	_, ok := m.Claims()
	assert.False(t, ok)

	// Second logout is still a no-op success.
	require.NoError(t, m.Logout(ctx))
	assert.Equal(t, Unauthenticated, m.State())
}
