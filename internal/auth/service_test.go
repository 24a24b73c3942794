package auth

import (
	"testing"

	"github.com/minhngocdo/herbamart-storefront/pkg/config"
	pkgerrors "github.com/minhngocdo/herbamart-storefront/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "herbamart-test", ExpirationMinutes: 15},
		Password: config.PasswordConfig{
			ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16,
		},
	})
	require.NoError(t, err)
	return svc
}

func TestLoginIssuesTokenAndProfile(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Login(t.Context(), LoginRequest{Email: "QUANLY@herbamart.vn", Password: "quanly123"})
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, []string{"admin"}, result.Profile.Roles)
	assert.NotEmpty(t, result.Profile.ID)
}

func TestLoginCustomerHasNoRoles(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Login(t.Context(), LoginRequest{Email: "khach@herbamart.vn", Password: "khach123"})
	require.NoError(t, err)
	assert.Empty(t, result.Profile.Roles)
	assert.NotNil(t, result.Profile.Roles, "roles must serialize as [], not null")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(t.Context(), LoginRequest{Email: "khach@herbamart.vn", Password: "wrong"})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(t.Context(), LoginRequest{Email: "nobody@herbamart.vn", Password: "x"})
	require.Error(t, err)
}

func TestNewServiceRequiresJWTSecret(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}
