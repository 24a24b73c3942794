package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/minhngocdo/herbamart-storefront/api/middleware"
	"github.com/minhngocdo/herbamart-storefront/internal/auth"
	"github.com/minhngocdo/herbamart-storefront/pkg/auth/session"
	"github.com/minhngocdo/herbamart-storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthController(t *testing.T) *AuthController {
	t.Helper()
	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "herbamart-test", ExpirationMinutes: 15},
		Password: config.PasswordConfig{
			ArgonMemoryKB: 8, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 8, ArgonKeyLen: 16,
		},
	}
	svc, err := auth.NewService(auth.ServiceParams{JWT: cfg.JWT, Password: cfg.Password})
	require.NoError(t, err)
	return NewAuthController(svc, cfg, nil)
}

func cookieNames(rec *httptest.ResponseRecorder) []string {
	res := rec.Result()
	defer res.Body.Close()
	names := make([]string, 0, 2)
	for _, c := range res.Cookies() {
		names = append(names, c.Name)
	}
	return names
}

func TestLoginSetsIdentityCookiePair(t *testing.T) {
	controller := newAuthController(t)

	body := strings.NewReader(`{"email":"khach@herbamart.vn","password":"khach123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	rec := httptest.NewRecorder()
	controller.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"access_token", "user_information"}, cookieNames(rec))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	controller := newAuthController(t)

	body := strings.NewReader(`{"email":"khach@herbamart.vn","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	rec := httptest.NewRecorder()
	controller.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, cookieNames(rec), "no cookies on failed login")
}

func TestLoginValidatesBody(t *testing.T) {
	controller := newAuthController(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
	rec := httptest.NewRecorder()
	controller.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutExpiresCookies(t *testing.T) {
	controller := newAuthController(t)

	rec := httptest.NewRecorder()
	controller.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	res := rec.Result()
	defer res.Body.Close()
	require.Len(t, res.Cookies(), 2)
	for _, c := range res.Cookies() {
		assert.Less(t, c.MaxAge, 0)
	}
}

func TestProfileEchoesSeededIdentity(t *testing.T) {
	controller := newAuthController(t)

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	id := session.Identity{Token: "tok", Profile: session.Profile{ID: "u1", Email: "khach@herbamart.vn", Roles: []string{}}}
	req = req.WithContext(middleware.WithIdentity(req.Context(), id))

	rec := httptest.NewRecorder()
	controller.Profile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "khach@herbamart.vn")
}

func TestProfileRequiresIdentity(t *testing.T) {
	controller := newAuthController(t)

	rec := httptest.NewRecorder()
	controller.Profile(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
