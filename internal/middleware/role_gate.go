package middleware

import (
	"net/http"
	"strings"

	"salon-service/internal/permission"
)

// RoleGate applies resource-specific rules by path prefix. Each rule either
// allows, redirects to a safe page, or returns a 403 for API paths. An
// unrecognized or empty role never passes a gated prefix.
type RoleGate struct{}

func (RoleGate) Name() string { return "role" }

func (RoleGate) Evaluate(req *Request) Verdict {
	if req.Claims == nil {
		return Allow()
	}

	role := req.Claims.Role
	if role == "" {
		if req.IsAPI() {
			return DenyJSON(http.StatusForbidden, "permission denied")
		}
		return Redirect("/unauthorized")
	}

	// Customers cannot see the dashboard.
	if strings.HasPrefix(req.Path, "/dashboard") && role == permission.RoleUser {
		return Redirect("/profile")
	}

	// Platform administration is SUPER_ADMIN only.
	if strings.HasPrefix(req.Path, "/admin") || strings.HasPrefix(req.Path, "/api/admin") {
		if role != permission.RoleSuperAdmin {
			if req.IsAPI() {
				return DenyJSON(http.StatusForbidden, "permission denied")
			}
			return Redirect("/unauthorized")
		}
	}

	// Finance pages need finance:view; send the unauthorized to a safe page.
	if strings.HasPrefix(req.Path, "/dashboard/finance") && !req.Claims.HasPermission(permission.FinanceView) {
		return Redirect("/dashboard/schedule")
	}

	// The POS view is used by cashiers; no access means a hard 403.
	if strings.HasPrefix(req.Path, "/dashboard/pos") && !req.Claims.HasPermission(permission.POSAccess) {
		return DenyJSON(http.StatusForbidden, "no POS access")
	}

	// Staff management needs staff:manage.
	if strings.HasPrefix(req.Path, "/dashboard/employees/manage") && !req.Claims.HasPermission(permission.StaffManage) {
		return Redirect("/dashboard")
	}

	return Allow()
}
