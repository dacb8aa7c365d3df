package service

import (
	"testing"

	"go-resale-ledger/internal/ws"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthEnv(t *testing.T) (*testEnv, AuthService) {
	t.Helper()
	env := newTestEnv(t)
	hub := ws.NewHub()
	go hub.Run()
	return env, NewAuthService(env.userRepo, hub)
}

func TestLoginAndValidate(t *testing.T) {
	env, auth := newAuthEnv(t)
	_, admin := env.seedAdmin(t)

	resp, err := auth.Login(admin.Email, "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, admin.Email, resp.User.Email)
	assert.True(t, resp.User.IsAdmin)

	validated, err := auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, validated.User.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	env, auth := newAuthEnv(t)
	_, admin := env.seedAdmin(t)

	_, err := auth.Login(admin.Email, "wrong")
	require.Error(t, err)

	_, err = auth.Login("nobody@example.com", "secret123")
	require.Error(t, err)
}

func TestLoginInactiveAccount(t *testing.T) {
	env, auth := newAuthEnv(t)
	seller := env.seedSeller(t, "Alice")
	seller.IsActive = false
	require.NoError(t, env.userRepo.Update(seller))

	_, err := auth.Login(seller.Email, "secret123")
	require.Error(t, err)
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	env, auth := newAuthEnv(t)
	_, admin := env.seedAdmin(t)

	first, err := auth.Login(admin.Email, "secret123")
	require.NoError(t, err)
	second, err := auth.Login(admin.Email, "secret123")
	require.NoError(t, err)

	_, err = auth.ValidateToken(first.Token)
	require.Error(t, err)

	_, err = auth.ValidateToken(second.Token)
	require.NoError(t, err)
}

func TestResetPasswordEndsSessions(t *testing.T) {
	env, auth := newAuthEnv(t)
	_, admin := env.seedAdmin(t)

	session, err := auth.Login(admin.Email, "secret123")
	require.NoError(t, err)

	require.NoError(t, auth.ResetPassword(admin.Email, "secret123", "newsecret"))

	_, err = auth.ValidateToken(session.Token)
	require.Error(t, err)

	_, err = auth.Login(admin.Email, "newsecret")
	require.NoError(t, err)
}

func TestHeartbeatWithoutHub(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuthService(env.userRepo, nil)
	_, admin := env.seedAdmin(t)

	// A hub-less construction must still record the heartbeat.
	require.NoError(t, auth.Heartbeat(admin.ID))

	refreshed, err := env.userRepo.FindByID(admin.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.LastSeenAt)
}

func TestResetPasswordWrongCurrent(t *testing.T) {
	env, auth := newAuthEnv(t)
	_, admin := env.seedAdmin(t)

	err := auth.ResetPassword(admin.Email, "wrong", "newsecret")
	require.Error(t, err)
}
