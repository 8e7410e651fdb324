package middleware

import (
	"net/http"
	"net/url"
	"testing"

	"salon-service/internal/permission"
	"salon-service/pkg/jwtutil"

	"github.com/stretchr/testify/assert"
)

func claimsFor(role, status string, perms ...string) *jwtutil.SessionClaims {
	salonID := uint(1)
	claims := &jwtutil.SessionClaims{
		UserID:      10,
		Email:       "someone@salon.test",
		Role:        role,
		Status:      status,
		Permissions: perms,
	}
	if role != permission.RoleSuperAdmin {
		claims.SalonID = &salonID
	}
	return claims
}

func evaluate(path string, claims *jwtutil.SessionClaims) (Verdict, string) {
	pipeline := NewPipeline()
	return pipeline.Evaluate(&Request{Method: http.MethodGet, Path: path, Claims: claims})
}

func TestNoTokenOnProtectedPathRedirectsToLogin(t *testing.T) {
	paths := []string{"/dashboard", "/dashboard/pos", "/onboarding/profile-setup", "/profile"}
	for _, path := range paths {
		verdict, gate := evaluate(path, nil)
		assert.False(t, verdict.Allowed, "path %s must not pass without a token", path)
		assert.Equal(t, "auth", gate)
		assert.Equal(t, "/login?callbackUrl="+url.QueryEscape(path), verdict.RedirectTo)
	}
}

func TestNoTokenOnAPIPathReturns401(t *testing.T) {
	verdict, gate := evaluate("/api/branches", nil)
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "auth", gate)
	assert.Equal(t, http.StatusUnauthorized, verdict.Status)
	assert.Empty(t, verdict.RedirectTo)
}

func TestPublicPathsPassWithoutToken(t *testing.T) {
	for _, path := range []string{"/login", "/register", "/health", "/metrics", "/api/auth/login", "/api/auth/register"} {
		verdict, _ := evaluate(path, nil)
		assert.True(t, verdict.Allowed, "public path %s must pass", path)
	}
}

func TestPendingStatusRedirectsToOnboardingRegardlessOfRole(t *testing.T) {
	roles := []string{permission.RoleSalonOwner, permission.RoleSuperAdmin, "Cashier"}
	statuses := []string{permission.StatusPendingDetails, permission.StatusPendingApproval}

	for _, role := range roles {
		for _, status := range statuses {
			verdict, gate := evaluate("/dashboard", claimsFor(role, status))
			assert.False(t, verdict.Allowed, "role %s status %s must not reach the dashboard", role, status)
			assert.Equal(t, "status", gate)
			assert.Equal(t, "/onboarding/profile-setup", verdict.RedirectTo)
		}
	}
}

func TestPendingStatusAllowedOnOnboardingPaths(t *testing.T) {
	claims := claimsFor(permission.RoleSalonOwner, permission.StatusPendingDetails)
	for _, path := range []string{"/onboarding/profile-setup", "/api/owner/profile", "/api/auth/logout"} {
		verdict, _ := evaluate(path, claims)
		assert.True(t, verdict.Allowed, "pending owner must reach %s", path)
	}
}

func TestPendingStatusOnAPIPathReturns403(t *testing.T) {
	verdict, gate := evaluate("/api/branches", claimsFor(permission.RoleSalonOwner, permission.StatusPendingApproval))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "status", gate)
	assert.Equal(t, http.StatusForbidden, verdict.Status)
}

func TestUnknownStatusIsDenied(t *testing.T) {
	verdict, gate := evaluate("/dashboard", claimsFor(permission.RoleSalonOwner, "TOTALLY_NEW_STATUS"))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "status", gate)
}

func TestCustomerCannotSeeDashboard(t *testing.T) {
	verdict, gate := evaluate("/dashboard", claimsFor(permission.RoleUser, permission.StatusActive))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "role", gate)
	assert.Equal(t, "/profile", verdict.RedirectTo)
}

func TestAdminPrefixRequiresSuperAdmin(t *testing.T) {
	verdict, gate := evaluate("/admin", claimsFor(permission.RoleSalonOwner, permission.StatusActive))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "role", gate)
	assert.Equal(t, "/unauthorized", verdict.RedirectTo)

	verdict, _ = evaluate("/api/admin/requests", claimsFor(permission.RoleSalonOwner, permission.StatusActive))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, http.StatusForbidden, verdict.Status)

	verdict, _ = evaluate("/admin", claimsFor(permission.RoleSuperAdmin, permission.StatusActive))
	assert.True(t, verdict.Allowed)
}

func TestFinanceNeedsFinanceView(t *testing.T) {
	verdict, _ := evaluate("/dashboard/finance", claimsFor("Cashier", permission.StatusActive, permission.POSAccess))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "/dashboard/schedule", verdict.RedirectTo)

	verdict, _ = evaluate("/dashboard/finance", claimsFor("Manager", permission.StatusActive, permission.FinanceView))
	assert.True(t, verdict.Allowed)
}

func TestPOSNeedsPOSAccess(t *testing.T) {
	verdict, gate := evaluate("/dashboard/pos", claimsFor("Stylist", permission.StatusActive, permission.AppointmentView))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "role", gate)
	assert.Equal(t, http.StatusForbidden, verdict.Status)

	verdict, _ = evaluate("/dashboard/pos", claimsFor("Cashier", permission.StatusActive, permission.POSAccess))
	assert.True(t, verdict.Allowed)
}

func TestStaffManagementNeedsStaffManage(t *testing.T) {
	verdict, _ := evaluate("/dashboard/employees/manage", claimsFor("Stylist", permission.StatusActive))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "/dashboard", verdict.RedirectTo)

	verdict, _ = evaluate("/dashboard/employees/manage", claimsFor("Manager", permission.StatusActive, permission.StaffManage))
	assert.True(t, verdict.Allowed)
}

func TestOwnerHoldsFullCatalogueThroughGates(t *testing.T) {
	claims := claimsFor(permission.RoleSalonOwner, permission.StatusActive, permission.Catalogue()...)
	for _, path := range []string{"/dashboard", "/dashboard/finance", "/dashboard/pos", "/dashboard/employees/manage", "/api/branches"} {
		verdict, gate := evaluate(path, claims)
		assert.True(t, verdict.Allowed, "owner must reach %s (denied by %s)", path, gate)
	}
}

func TestEmptyRoleIsDenied(t *testing.T) {
	verdict, gate := evaluate("/dashboard", claimsFor("", permission.StatusActive))
	assert.False(t, verdict.Allowed)
	assert.Equal(t, "role", gate)
}

func TestGateOrderingAuthBeforeStatusBeforeRole(t *testing.T) {
	// No token: the auth gate must win even on a role-gated path.
	_, gate := evaluate("/admin", nil)
	assert.Equal(t, "auth", gate)

	// Pending customer: the status gate must win before the role gate.
	_, gate = evaluate("/dashboard", claimsFor(permission.RoleUser, permission.StatusPendingDetails))
	assert.Equal(t, "status", gate)
}
