package middleware

import (
	"net/http"
	"path"
	"strings"

	"github.com/minhngocdo/herbamart-storefront/pkg/auth/session"
	"github.com/minhngocdo/herbamart-storefront/pkg/config"
	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
	"github.com/minhngocdo/herbamart-storefront/pkg/metrics"
)

// capability tags what a route rule demands from the caller's identity.
type capability int

const (
	capAlias capability = iota
	capAdmin
	capStaff
	capGuestOnly
	capAuthenticated
)

type gateRule struct {
	exact      string
	prefix     string
	exemptions []string
	capability capability
	redirectTo string
	status     int
	outcome    string
}

// Decision is the gate's verdict for a single request.
type Decision struct {
	Redirect bool
	Location string
	Status   int
	Outcome  string
}

// Gate is the route-protection layer. It compiles the static configuration
// into an ordered rule table evaluated once per request, redirects or passes,
// and stamps cache/security headers on pass-through responses. It holds no
// per-request state.
type Gate struct {
	rules  []gateRule
	bypass []string
	logg   *logger.Logger
	m      *metrics.GateMetrics
}

func NewGate(cfg config.GateConfig, logg *logger.Logger, m *metrics.GateMetrics) *Gate {
	var rules []gateRule

	// Precedence is fixed: legacy alias, admin, staff, guest-only,
	// authenticated-only. The alias outranks authorization because it is a
	// permanent move, not an access decision.
	if cfg.LegacyLoginPath != "" {
		rules = append(rules, gateRule{
			exact:      cfg.LegacyLoginPath,
			capability: capAlias,
			redirectTo: cfg.CanonicalLoginPath,
			status:     http.StatusMovedPermanently,
			outcome:    "redirect_legacy_alias",
		})
	}
	for _, prefix := range cfg.AdminPrefixes {
		rules = append(rules, gateRule{
			prefix:     prefix,
			exemptions: []string{cfg.AdminLoginPath},
			capability: capAdmin,
			redirectTo: cfg.AdminLoginPath,
			status:     http.StatusFound,
			outcome:    "redirect_admin_login",
		})
	}
	for _, prefix := range cfg.StaffPrefixes {
		rules = append(rules, gateRule{
			prefix:     prefix,
			exemptions: []string{cfg.StaffLoginPath},
			capability: capStaff,
			redirectTo: cfg.StaffLoginPath,
			status:     http.StatusFound,
			outcome:    "redirect_staff_login",
		})
	}
	for _, p := range cfg.GuestOnlyPaths {
		rules = append(rules, gateRule{
			exact:      p,
			capability: capGuestOnly,
			redirectTo: cfg.HomePath,
			status:     http.StatusFound,
			outcome:    "redirect_home",
		})
	}
	for _, prefix := range cfg.AuthOnlyPrefixes {
		rules = append(rules, gateRule{
			prefix:     prefix,
			capability: capAuthenticated,
			redirectTo: cfg.CanonicalLoginPath,
			status:     http.StatusFound,
			outcome:    "redirect_login",
		})
	}

	return &Gate{
		rules:  rules,
		bypass: cfg.BypassPrefixes,
		logg:   logg,
		m:      m,
	}
}

// Evaluate resolves the allow/redirect decision for a path and identity.
func (g *Gate) Evaluate(pathname string, id session.Identity) Decision {
	for _, rule := range g.rules {
		if !rule.matches(pathname) {
			continue
		}
		switch rule.capability {
		case capAlias:
			return Decision{Redirect: true, Location: rule.redirectTo, Status: rule.status, Outcome: rule.outcome}
		case capAdmin:
			if id.Token == "" || !id.HasRole("admin") {
				return Decision{Redirect: true, Location: rule.redirectTo, Status: rule.status, Outcome: rule.outcome}
			}
			return Decision{Outcome: "allow"}
		case capStaff:
			if id.Token == "" || !id.HasRole("staff") {
				return Decision{Redirect: true, Location: rule.redirectTo, Status: rule.status, Outcome: rule.outcome}
			}
			return Decision{Outcome: "allow"}
		case capGuestOnly:
			if id.SignedIn() {
				return Decision{Redirect: true, Location: rule.redirectTo, Status: rule.status, Outcome: rule.outcome}
			}
			return Decision{Outcome: "allow"}
		case capAuthenticated:
			if id.Token == "" {
				return Decision{Redirect: true, Location: rule.redirectTo, Status: rule.status, Outcome: rule.outcome}
			}
			return Decision{Outcome: "allow"}
		}
	}
	return Decision{Outcome: "allow"}
}

// Handler adapts the gate into chi middleware. The identity is seeded into
// the request context on pass-through so handlers can resolve the current
// user without re-reading cookies.
func (g *Gate) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range g.bypass {
				if pathMatchesPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := r.Context()
			id := session.Read(ctx, r, g.logg)
			decision := g.Evaluate(r.URL.Path, id)
			g.m.IncDecision(decision.Outcome)

			if decision.Redirect {
				if g.logg != nil {
					ctx = g.logg.WithFields(ctx, map[string]any{
						"path":     r.URL.Path,
						"location": decision.Location,
					})
					g.logg.Debug(ctx, "gate.redirect")
				}
				// Location is path-only so the original origin is preserved.
				http.Redirect(w, r, decision.Location, decision.Status)
				return
			}

			stampHeaders(w.Header(), r.URL.Path)

			ctx = WithIdentity(ctx, id)
			if g.logg != nil && id.Profile.ID != "" {
				ctx = g.logg.WithUserID(ctx, id.Profile.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (r gateRule) matches(pathname string) bool {
	if r.exact != "" {
		return pathname == r.exact
	}
	if r.prefix == "" {
		return false
	}
	for _, exemption := range r.exemptions {
		if exemption != "" && pathname == exemption {
			return false
		}
	}
	return pathMatchesPrefix(pathname, r.prefix)
}

// pathMatchesPrefix is segment aware: "/admin" matches "/admin" and
// "/admin/orders" but not "/administrator".
func pathMatchesPrefix(pathname, prefix string) bool {
	if prefix == "" {
		return false
	}
	return pathname == prefix || strings.HasPrefix(pathname, prefix+"/")
}

var staticAssetExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".png": {}, ".jpg": {}, ".jpeg": {}, ".svg": {},
	".gif": {}, ".ico": {}, ".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
}

var securityHeaders = [...][2]string{
	{"X-DNS-Prefetch-Control", "on"},
	{"X-XSS-Protection", "1; mode=block"},
	{"X-Frame-Options", "SAMEORIGIN"},
	{"X-Content-Type-Options", "nosniff"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
}

// stampHeaders attaches the path-class cache directive and the constant
// security headers. Only pass-through responses are stamped.
func stampHeaders(h http.Header, pathname string) {
	h.Set("Cache-Control", cacheControlFor(pathname))
	for _, pair := range securityHeaders {
		h.Set(pair[0], pair[1])
	}
}

func cacheControlFor(pathname string) string {
	ext := strings.ToLower(path.Ext(pathname))
	if _, ok := staticAssetExtensions[ext]; ok {
		return "public, max-age=31536000, immutable"
	}
	if pathMatchesPrefix(pathname, "/api") {
		return "no-store"
	}
	return "public, max-age=60, stale-while-revalidate=300"
}
