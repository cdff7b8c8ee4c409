package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_Login(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m.DB, "alice", "alice@x.com", "password123", true)

	access, refresh, loggedIn, err := m.Login("alice", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, user.ID, loggedIn.ID)

	// The refresh half is persisted and retrievable.
	rec, err := m.Store.FindActive(m.DB, refresh)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, user.ID, rec.UserID)

	resolved, err := m.ResolveCurrentUser(access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
}

func TestSessionManager_Login_UniformRejection(t *testing.T) {
	m := newTestManager(t)
	createTestUser(t, m.DB, "alice", "alice@x.com", "password123", true)

	// Unknown username and wrong password yield the identical error value.
	_, _, _, errUnknown := m.Login("mallory", "password123")
	_, _, _, errWrongPW := m.Login("alice", "wrong-password")
	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPW, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPW)
}

func TestSessionManager_Login_Disabled(t *testing.T) {
	m := newTestManager(t)
	createTestUser(t, m.DB, "alice", "alice@x.com", "password123", false)

	_, _, _, err := m.Login("alice", "password123")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestSessionManager_Refresh_Rotation(t *testing.T) {
	m := newTestManager(t)
	createTestUser(t, m.DB, "alice", "alice@x.com", "password123", true)

	_, refresh1, _, err := m.Login("alice", "password123")
	require.NoError(t, err)

	access2, refresh2, err := m.Refresh(refresh1)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEqual(t, refresh1, refresh2)

	// The consumed token is retired, never deleted.
	old, err := m.Store.FindActive(m.DB, refresh1)
	require.NoError(t, err)
	assert.Nil(t, old)

	// Replay of the consumed token always fails.
	_, _, err = m.Refresh(refresh1)
	assert.ErrorIs(t, err, ErrInvalidSession)

	// The rotated token keeps working.
	_, refresh3, err := m.Refresh(refresh2)
	require.NoError(t, err)
	assert.NotEmpty(t, refresh3)
}

func TestSessionManager_Refresh_NeverIssued(t *testing.T) {
	m := newTestManager(t)
	createTestUser(t, m.DB, "alice", "alice@x.com", "password123", true)

	// Cryptographically valid but never persisted.
	unstored, err := m.Codec.Encode("alice", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, _, err = m.Refresh(unstored)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionManager_Refresh_ExpiredTokenStillActiveInStore(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m.DB, "alice", "alice@x.com", "password123", true)

	// Store state and cryptographic state diverge: the row is active but
	// the token itself has expired.
	expired, err := m.Codec.Encode("alice", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = m.Store.Record(m.DB, user.ID, expired, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, _, err = m.Refresh(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionManager_Refresh_DisabledUser(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m.DB, "alice", "alice@x.com", "password123", true)

	_, refresh, _, err := m.Login("alice", "password123")
	require.NoError(t, err)

	require.NoError(t, m.DB.Model(user).Update("is_active", false).Error)

	_, _, err = m.Refresh(refresh)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestSessionManager_Logout(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m.DB, "alice", "alice@x.com", "password123", true)

	_, refresh1, _, err := m.Login("alice", "password123")
	require.NoError(t, err)
	access2, refresh2, _, err := m.Login("alice", "password123")
	require.NoError(t, err)

	require.NoError(t, m.Logout(user))

	// Every pre-logout refresh token is dead.
	for _, token := range []string{refresh1, refresh2} {
		_, _, err := m.Refresh(token)
		assert.ErrorIs(t, err, ErrInvalidSession)
	}

	// Access tokens stay valid until natural expiration.
	resolved, err := m.ResolveCurrentUser(access2)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	// Nothing left to revoke.
	err = m.Logout(user)
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestSessionManager_ResolveCurrentUser_DisabledMidSession(t *testing.T) {
	m := newTestManager(t)
	user := createTestUser(t, m.DB, "alice", "alice@x.com", "password123", true)

	access, _, _, err := m.Login("alice", "password123")
	require.NoError(t, err)

	require.NoError(t, m.DB.Model(user).Update("is_active", false).Error)

	// The token itself still decodes; the gate rejects on the user state.
	claims, err := m.Codec.Decode(access)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)

	_, err = m.ResolveCurrentUser(access)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestSessionManager_ResolveCurrentUser_MissingUser(t *testing.T) {
	m := newTestManager(t)

	// A validly signed token whose subject does not exist resolves the
	// same way as a disabled account.
	access, err := m.Codec.Encode("ghost", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = m.ResolveCurrentUser(access)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestSessionManager_ResolveCurrentUser_InvalidToken(t *testing.T) {
	m := newTestManager(t)
	createTestUser(t, m.DB, "alice", "alice@x.com", "password123", true)

	_, err := m.ResolveCurrentUser("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
