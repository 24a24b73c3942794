// Package session owns the identity cookie pair. Login and logout write
// through it and the gate reads through it, so no second persisted copy of
// the identity ever exists.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
)

const (
	accessTokenCookie = "access_token"
	profileCookie     = "user_information"
)

// Profile is the snapshot of the signed-in user carried in the profile cookie.
type Profile struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

// Identity is what the gate sees for an inbound request. A malformed profile
// cookie degrades to an empty profile, never an error.
type Identity struct {
	Token   string
	Profile Profile
}

// SignedIn reports whether any recognized identity signal is present.
func (id Identity) SignedIn() bool {
	return id.Token != "" || len(id.Profile.Roles) > 0
}

// HasRole reports exact role membership. There is no role hierarchy.
func (id Identity) HasRole(role string) bool {
	return slices.Contains(id.Profile.Roles, role)
}

// Read extracts the identity from the request cookies.
func Read(ctx context.Context, r *http.Request, logg *logger.Logger) Identity {
	var id Identity

	if c, err := r.Cookie(accessTokenCookie); err == nil {
		id.Token = c.Value
	}

	c, err := r.Cookie(profileCookie)
	if err != nil {
		return id
	}

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		raw = c.Value
	}

	var profile Profile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		if logg != nil {
			logg.Warn(logg.WithField(ctx, "cookie", profileCookie), "malformed profile cookie, treating as anonymous")
		}
		return id
	}

	id.Profile = profile
	return id
}

// Write sets both identity cookies in one step.
func Write(w http.ResponseWriter, token string, profile Profile, ttl time.Duration, secure bool) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	maxAge := int(ttl / time.Second)

	http.SetCookie(w, &http.Cookie{
		Name:     accessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	// Readable by the client-side cart islands, so not HttpOnly.
	http.SetCookie(w, &http.Cookie{
		Name:     profileCookie,
		Value:    url.QueryEscape(string(raw)),
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear expires both identity cookies.
func Clear(w http.ResponseWriter) {
	for _, name := range []string{accessTokenCookie, profileCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}
