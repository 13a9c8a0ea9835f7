package chat

import (
	"testing"
	"time"

	userservice "LuxRelay/module/user/service"
	errs "LuxRelay/tools/errs"
	security "LuxRelay/tools/security"

	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, userID, role string, ttl time.Duration) string {
	t.Helper()
	opts := security.DefaultOptions([]byte(secret))
	opts.TTL = ttl
	token, _, err := security.Generate(opts, userID, role)
	require.NoError(t, err)
	return token
}

func TestGatekeeper_Admit(t *testing.T) {
	req := require.New(t)
	users := userservice.NewMemStore(seedUsers()...)
	gate := NewGatekeeper([]byte("test-secret"), users)

	userID, role, err := gate.Admit(testCtx(), signToken(t, "test-secret", "alice", "user", time.Minute))
	req.NoError(err)
	req.Equal("alice", userID)
	req.Equal("user", role)
}

func TestGatekeeper_RoleFallsBackToProfile(t *testing.T) {
	req := require.New(t)
	users := userservice.NewMemStore(seedUsers()...)
	gate := NewGatekeeper([]byte("test-secret"), users)

	// token has no role claim; marta's profile says admin
	userID, role, err := gate.Admit(testCtx(), signToken(t, "test-secret", "marta", "", time.Minute))
	req.NoError(err)
	req.Equal("marta", userID)
	req.Equal("admin", role)
}

func TestGatekeeper_Rejections(t *testing.T) {
	req := require.New(t)
	users := userservice.NewMemStore(seedUsers()...)
	gate := NewGatekeeper([]byte("test-secret"), users)

	_, _, err := gate.Admit(testCtx(), "")
	req.ErrorIs(err, errs.ErrCredentialRequired)

	_, _, err = gate.Admit(testCtx(), "not-a-jwt")
	req.ErrorIs(err, errs.ErrInvalidCredential)

	// valid signature, wrong secret
	_, _, err = gate.Admit(testCtx(), signToken(t, "other-secret", "alice", "user", time.Minute))
	req.ErrorIs(err, errs.ErrInvalidCredential)

	// expired
	_, _, err = gate.Admit(testCtx(), signToken(t, "test-secret", "alice", "user", -time.Minute))
	req.ErrorIs(err, errs.ErrInvalidCredential)

	// token fine, user gone
	_, _, err = gate.Admit(testCtx(), signToken(t, "test-secret", "phantom", "user", time.Minute))
	req.ErrorIs(err, errs.ErrUnknownUser)
}
