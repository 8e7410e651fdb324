// Package permission defines the fixed system roles, account statuses and
// the permission catalogue, and resolves a role into its effective
// permission set.
package permission

// System roles. Any role string outside this set is treated as the name of a
// salon-scoped custom role.
const (
	RoleSuperAdmin = "SUPER_ADMIN" // the platform administrator
	RoleSalonOwner = "SALON_OWNER" // the business owner
	RoleUser       = "USER"        // the client/customer
)

// Account statuses for the onboarding workflow. SUSPENDED exists in the data
// model but no transition reaches it; it is kept for schema compatibility.
const (
	StatusPendingDetails  = "PENDING_DETAILS"
	StatusPendingApproval = "PENDING_APPROVAL"
	StatusActive          = "ACTIVE"
	StatusRejected        = "REJECTED"
	StatusSuspended       = "SUSPENDED"
)

// Salon statuses.
const (
	SalonPending  = "PENDING"
	SalonActive   = "ACTIVE"
	SalonRejected = "REJECTED"
)

// Permissions are the building blocks owners mix into custom roles
// (e.g. "Manager" = appointment:manage + staff:manage).
const (
	AppointmentView   = "appointment:view"
	AppointmentCreate = "appointment:create"
	AppointmentManage = "appointment:manage"

	POSAccess     = "pos:access"
	FinanceView   = "finance:view"
	FinanceExport = "finance:export"

	StaffView    = "staff:view"
	StaffManage  = "staff:manage"
	StaffPayroll = "staff:payroll"

	// ProfileUpdate is the baseline every authenticated staff identity holds.
	ProfileUpdate = "profile:update"
)

// Catalogue returns the full permission catalogue. SUPER_ADMIN and
// SALON_OWNER implicitly hold all of it within their scope.
func Catalogue() []string {
	return []string{
		AppointmentView,
		AppointmentCreate,
		AppointmentManage,
		POSAccess,
		FinanceView,
		FinanceExport,
		StaffView,
		StaffManage,
		StaffPayroll,
		ProfileUpdate,
	}
}

// IsKnown reports whether perm belongs to the catalogue. Custom roles may
// only bundle known permissions.
func IsKnown(perm string) bool {
	for _, p := range Catalogue() {
		if p == perm {
			return true
		}
	}
	return false
}

// IsSystemRole reports whether role is one of the fixed system roles.
func IsSystemRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleSalonOwner, RoleUser:
		return true
	}
	return false
}

// IsKnownStatus reports whether status is part of the closed status
// enumeration. Unrecognized values must be treated as denial.
func IsKnownStatus(status string) bool {
	switch status {
	case StatusPendingDetails, StatusPendingApproval, StatusActive, StatusRejected, StatusSuspended:
		return true
	}
	return false
}
