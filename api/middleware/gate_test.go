package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/minhngocdo/herbamart-storefront/pkg/auth/session"
	"github.com/minhngocdo/herbamart-storefront/pkg/config"
)

func testGateConfig() config.GateConfig {
	return config.GateConfig{
		LegacyLoginPath:    "/signin",
		CanonicalLoginPath: "/login",
		HomePath:           "/",
		AdminPrefixes:      []string{"/admin"},
		AdminLoginPath:     "/admin/login",
		StaffPrefixes:      []string{"/staff"},
		StaffLoginPath:     "/staff/login",
		GuestOnlyPaths:     []string{"/login", "/register"},
		AuthOnlyPrefixes:   []string{"/profile", "/orders"},
		BypassPrefixes:     []string{"/metrics"},
	}
}

func newTestGate() *Gate {
	return NewGate(testGateConfig(), nil, nil)
}

func identityWith(token string, roles ...string) session.Identity {
	return session.Identity{
		Token:   token,
		Profile: session.Profile{ID: "u-1", Roles: roles},
	}
}

func TestAdminPrefixRequiresAdminRole(t *testing.T) {
	gate := newTestGate()

	paths := []string{"/admin", "/admin/orders", "/admin/products/42"}
	for _, p := range paths {
		// A staff role alone must not open the admin area.
		d := gate.Evaluate(p, identityWith("tok", "staff"))
		if !d.Redirect || d.Location != "/admin/login" {
			t.Fatalf("path %s: expected admin login redirect, got %+v", p, d)
		}

		d = gate.Evaluate(p, identityWith("", "admin"))
		if !d.Redirect {
			t.Fatalf("path %s: role without token must still redirect", p)
		}

		d = gate.Evaluate(p, identityWith("tok", "admin"))
		if d.Redirect {
			t.Fatalf("path %s: admin with token should pass, got %+v", p, d)
		}
	}
}

func TestStaffPrefixRequiresStaffRole(t *testing.T) {
	gate := newTestGate()

	// Admin does not implicitly hold staff access.
	d := gate.Evaluate("/staff/orders", identityWith("tok", "admin"))
	if !d.Redirect || d.Location != "/staff/login" {
		t.Fatalf("expected staff login redirect, got %+v", d)
	}

	d = gate.Evaluate("/staff/orders", identityWith("tok", "staff"))
	if d.Redirect {
		t.Fatalf("staff with token should pass, got %+v", d)
	}
}

func TestLegacyLoginAlwaysRedirects(t *testing.T) {
	gate := newTestGate()

	identities := []session.Identity{
		{},
		identityWith("tok", "admin"),
		identityWith("tok", "staff", "admin"),
	}
	for _, id := range identities {
		d := gate.Evaluate("/signin", id)
		if !d.Redirect || d.Location != "/login" || d.Status != http.StatusMovedPermanently {
			t.Fatalf("expected permanent redirect to /login, got %+v", d)
		}
	}
}

func TestAdminLoginPageIsExemptFromAdminGuard(t *testing.T) {
	gate := newTestGate()
	if d := gate.Evaluate("/admin/login", session.Identity{}); d.Redirect {
		t.Fatalf("admin login page must be reachable, got %+v", d)
	}
}

func TestGuestOnlyPagesRedirectAnyIdentity(t *testing.T) {
	gate := newTestGate()

	// Token alone counts as an identity signal.
	d := gate.Evaluate("/login", identityWith("tok"))
	if !d.Redirect || d.Location != "/" {
		t.Fatalf("expected home redirect, got %+v", d)
	}

	// So do roles without a token.
	d = gate.Evaluate("/register", identityWith("", "staff"))
	if !d.Redirect || d.Location != "/" {
		t.Fatalf("expected home redirect, got %+v", d)
	}

	if d := gate.Evaluate("/login", session.Identity{}); d.Redirect {
		t.Fatalf("anonymous visitor must reach login, got %+v", d)
	}
}

func TestAuthOnlyPagesRequireToken(t *testing.T) {
	gate := newTestGate()

	d := gate.Evaluate("/profile", session.Identity{})
	if !d.Redirect || d.Location != "/login" {
		t.Fatalf("expected login redirect, got %+v", d)
	}

	if d := gate.Evaluate("/profile", identityWith("tok")); d.Redirect {
		t.Fatalf("token holder should pass, got %+v", d)
	}
}

func TestUnmatchedPathsPassThrough(t *testing.T) {
	gate := newTestGate()
	for _, p := range []string{"/", "/products/vitamin-c", "/administrator"} {
		if d := gate.Evaluate(p, session.Identity{}); d.Redirect {
			t.Fatalf("path %s should pass, got %+v", p, d)
		}
	}
}

func serveGate(t *testing.T, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	handler := newTestGate().Handler()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandlerStampsCacheControlByPathClass(t *testing.T) {
	cases := map[string]string{
		"/static/app.css":    "public, max-age=31536000, immutable",
		"/images/banner.JPG": "public, max-age=31536000, immutable",
		"/api/cart":          "no-store",
		"/products":          "public, max-age=60, stale-while-revalidate=300",
	}

	for target, want := range cases {
		rec := serveGate(t, target)
		values := rec.Result().Header.Values("Cache-Control")
		if len(values) != 1 {
			t.Fatalf("path %s: expected exactly one Cache-Control, got %v", target, values)
		}
		if values[0] != want {
			t.Fatalf("path %s: expected %q, got %q", target, want, values[0])
		}
	}
}

func TestHandlerStampsSecurityHeaders(t *testing.T) {
	rec := serveGate(t, "/products")

	expected := map[string]string{
		"X-DNS-Prefetch-Control": "on",
		"X-XSS-Protection":       "1; mode=block",
		"X-Frame-Options":        "SAMEORIGIN",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for name, want := range expected {
		if got := rec.Result().Header.Get(name); got != want {
			t.Fatalf("header %s: expected %q, got %q", name, want, got)
		}
	}
}

func TestHandlerRedirectPreservesOrigin(t *testing.T) {
	rec := serveGate(t, "http://shop.example.com/admin/orders")

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Result().Header.Get("Location"); loc != "/admin/login" {
		t.Fatalf("expected path-only location, got %q", loc)
	}
	// Authorization redirects carry no page caching directives.
	if cc := rec.Result().Header.Get("Cache-Control"); cc != "" {
		t.Fatalf("redirect should not carry gate cache headers, got %q", cc)
	}
}

func TestHandlerMalformedProfileCookieFailsClosed(t *testing.T) {
	rec := serveGate(t, "/admin/orders",
		&http.Cookie{Name: "access_token", Value: "tok"},
		&http.Cookie{Name: "user_information", Value: "%%%not-json"},
	)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect for unparseable roles, got %d", rec.Code)
	}

	// The same broken cookie must not break public pages.
	rec = serveGate(t, "/products",
		&http.Cookie{Name: "user_information", Value: "%%%not-json"},
	)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
}

func TestHandlerSeedsIdentityContext(t *testing.T) {
	var gotUserID string
	handler := newTestGate().Handler()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "tok"})
	// Quotes are illegal in cookie values, so transport the JSON the same way
	// session.Write does: URL-escaped.
	req.AddCookie(&http.Cookie{Name: "user_information", Value: url.QueryEscape(`{"id":"u-9","roles":[]}`)})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if gotUserID != "u-9" {
		t.Fatalf("expected seeded user id, got %q", gotUserID)
	}
}

func TestHandlerBypassSkipsEvaluation(t *testing.T) {
	rec := serveGate(t, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pass-through, got %d", rec.Code)
	}
	if cc := rec.Result().Header.Get("Cache-Control"); cc != "" {
		t.Fatalf("bypassed paths must stay unstamped, got %q", cc)
	}
}
