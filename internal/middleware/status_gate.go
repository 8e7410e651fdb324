package middleware

import (
	"net/http"
	"strings"

	"salon-service/internal/permission"
)

// pendingAllowedPaths are reachable by authenticated users whose account is
// not yet approved, so they can finish (or abandon) onboarding.
var pendingAllowedPaths = []string{
	"/onboarding/profile-setup",
	"/api/owner/profile",
	"/api/auth/logout",
}

// StatusGate enforces that only ACTIVE accounts reach the full system. A
// pending owner is limited to the onboarding paths until an administrator
// approves them, regardless of role.
type StatusGate struct{}

func (StatusGate) Name() string { return "status" }

func (StatusGate) Evaluate(req *Request) Verdict {
	if req.Claims == nil {
		// Public path let through by the auth gate.
		return Allow()
	}

	status := req.Claims.Status
	if status == permission.StatusActive {
		return Allow()
	}

	// Closed enumeration: an unrecognized status value is never allowed.
	if !permission.IsKnownStatus(status) {
		if req.IsAPI() {
			return DenyJSON(http.StatusForbidden, "account status not recognized")
		}
		return Redirect("/unauthorized")
	}

	for _, p := range pendingAllowedPaths {
		if strings.HasPrefix(req.Path, p) {
			return Allow()
		}
	}

	if req.IsAPI() {
		return DenyJSON(http.StatusForbidden, "account pending approval")
	}
	return Redirect("/onboarding/profile-setup")
}
