package controllers

import (
	"net/http"

	"github.com/minhngocdo/herbamart-storefront/api/middleware"
	"github.com/minhngocdo/herbamart-storefront/api/responses"
	"github.com/minhngocdo/herbamart-storefront/api/validators"
	"github.com/minhngocdo/herbamart-storefront/internal/auth"
	"github.com/minhngocdo/herbamart-storefront/pkg/auth/session"
	"github.com/minhngocdo/herbamart-storefront/pkg/config"
	pkgerrors "github.com/minhngocdo/herbamart-storefront/pkg/errors"
	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
)

type AuthController struct {
	service auth.Service
	jwt     config.JWTConfig
	secure  bool
	logg    *logger.Logger
}

func NewAuthController(service auth.Service, cfg *config.Config, logg *logger.Logger) *AuthController {
	return &AuthController{
		service: service,
		jwt:     cfg.JWT,
		secure:  cfg.App.IsProd(),
		logg:    logg,
	}
}

// Login verifies credentials and sets the identity cookie pair.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req auth.LoginRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	result, err := c.service.Login(ctx, req)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	if err := session.Write(w, result.AccessToken, result.Profile, c.jwt.AccessTokenTTL(), c.secure); err != nil {
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "writing session"))
		return
	}

	responses.WriteSuccess(w, result)
}

// Logout expires the identity cookie pair. Always succeeds.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	session.Clear(w)
	responses.WriteSuccess(w, map[string]any{"signed_out": true})
}

// Profile echoes the identity the gate seeded into the request context.
func (c *AuthController) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := middleware.IdentityFromContext(ctx)
	if !id.SignedIn() {
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not signed in"))
		return
	}

	responses.WriteSuccess(w, id.Profile)
}
