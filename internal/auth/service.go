package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgauth "github.com/minhngocdo/herbamart-storefront/pkg/auth"
	"github.com/minhngocdo/herbamart-storefront/pkg/auth/session"
	"github.com/minhngocdo/herbamart-storefront/pkg/config"
	pkgerrors "github.com/minhngocdo/herbamart-storefront/pkg/errors"
	"github.com/minhngocdo/herbamart-storefront/pkg/security"
)

// Service verifies credentials against the seeded directory and issues the
// identity pair (access token + profile snapshot). Token validation and real
// account management live upstream; this directory is the mocked login flow.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	AccessToken string          `json:"-"`
	Profile     session.Profile `json:"profile"`
}

// ServiceParams carries the configuration the service depends on.
type ServiceParams struct {
	JWT      config.JWTConfig
	Password config.PasswordConfig
}

type service struct {
	jwt   config.JWTConfig
	users map[string]directoryUser
}

type directoryUser struct {
	id           uuid.UUID
	email        string
	fullName     string
	roles        []string
	passwordHash string
}

type seedUser struct {
	email    string
	fullName string
	roles    []string
	password string
}

var seedUsers = []seedUser{
	{email: "khach@herbamart.vn", fullName: "Nguyễn Văn Khách", roles: nil, password: "khach123"},
	{email: "nhanvien@herbamart.vn", fullName: "Trần Thị Nhân Viên", roles: []string{"staff"}, password: "nhanvien123"},
	{email: "quanly@herbamart.vn", fullName: "Lê Quản Lý", roles: []string{"admin"}, password: "quanly123"},
}

func NewService(params ServiceParams) (Service, error) {
	if params.JWT.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "jwt config required")
	}

	users := make(map[string]directoryUser, len(seedUsers))
	for _, seed := range seedUsers {
		hash, err := security.HashPassword(seed.password, params.Password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "seed directory")
		}
		users[normalizeEmail(seed.email)] = directoryUser{
			id:           uuid.New(),
			email:        seed.email,
			fullName:     seed.fullName,
			roles:        seed.roles,
			passwordHash: hash,
		}
	}

	return &service{jwt: params.JWT, users: users}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, ok := s.users[normalizeEmail(req.Email)]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	match, err := security.VerifyPassword(req.Password, user.passwordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	token, err := pkgauth.MintAccessToken(s.jwt, time.Now(), pkgauth.AccessTokenPayload{
		UserID: user.id,
		Roles:  user.roles,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	roles := user.roles
	if roles == nil {
		roles = []string{}
	}
	return &LoginResult{
		AccessToken: token,
		Profile: session.Profile{
			ID:       user.id.String(),
			Email:    user.email,
			FullName: user.fullName,
			Roles:    roles,
		},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
