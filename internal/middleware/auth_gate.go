package middleware

import (
	"net/http"
	"net/url"
	"strings"
)

// publicPaths need no session at all: login, registration, health and
// metrics. Matched by prefix.
var publicPaths = []string{
	"/login",
	"/register",
	"/health",
	"/metrics",
	"/api/auth/login",
	"/api/auth/register",
}

// AuthGate is the first gate: the request must carry a valid session unless
// the path is public. Denials preserve the originally requested URL as a
// callback target so the login page can return the user there.
type AuthGate struct{}

func (AuthGate) Name() string { return "auth" }

func (AuthGate) Evaluate(req *Request) Verdict {
	for _, p := range publicPaths {
		if strings.HasPrefix(req.Path, p) {
			return Allow()
		}
	}

	if req.Claims == nil {
		if req.IsAPI() {
			return DenyJSON(http.StatusUnauthorized, "authentication required")
		}
		return Redirect("/login?callbackUrl=" + url.QueryEscape(req.Path))
	}

	return Allow()
}
