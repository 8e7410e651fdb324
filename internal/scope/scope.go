// Package scope applies the multi-tenant data access rules: which rows of a
// salon-scoped table a given identity may read or write.
package scope

import (
	"errors"

	"salon-service/internal/permission"
	"salon-service/pkg/jwtutil"
	"salon-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrPermissionDenied is returned when the identity's role grants no access
// to the resource at all.
var ErrPermissionDenied = errors.New("permission denied")

// ForRead returns the query scoped for list/read operations.
//
//   - SUPER_ADMIN reads across all tenants, or a single tenant when viewAs is
//     set (a read-only support capability; every use is audited).
//   - SALON_OWNER and custom-role staff read only their own salon's rows.
//   - Anything else is denied.
func ForRead(db *gorm.DB, claims *jwtutil.SessionClaims, viewAs *uint, log *zap.Logger) (*gorm.DB, error) {
	if claims == nil {
		return nil, ErrPermissionDenied
	}

	switch {
	case claims.Role == permission.RoleSuperAdmin:
		if viewAs != nil {
			prometheus.RecordAdminViewAs()
			log.Info("Administrator reading as tenant",
				zap.Uint("admin_id", claims.UserID),
				zap.Uint("salon_id", *viewAs))
			return db.Where("salon_id = ?", *viewAs), nil
		}
		return db, nil

	case claims.Role == permission.RoleSalonOwner, isStaffRole(claims.Role):
		if claims.SalonID == nil {
			return nil, ErrPermissionDenied
		}
		return db.Where("salon_id = ?", *claims.SalonID), nil
	}

	return nil, ErrPermissionDenied
}

// ForWrite returns the query scoped for create/update/delete operations.
// There is no view-as override for writes.
func ForWrite(db *gorm.DB, claims *jwtutil.SessionClaims) (*gorm.DB, error) {
	if claims == nil {
		return nil, ErrPermissionDenied
	}

	switch {
	case claims.Role == permission.RoleSuperAdmin:
		return db, nil

	case claims.Role == permission.RoleSalonOwner, isStaffRole(claims.Role):
		if claims.SalonID == nil {
			return nil, ErrPermissionDenied
		}
		return db.Where("salon_id = ?", *claims.SalonID), nil
	}

	return nil, ErrPermissionDenied
}

// SalonIDForCreate returns the salon id new tenant-scoped records must carry.
// The administrator may create on behalf of any salon (target), everyone
// else creates inside their own.
func SalonIDForCreate(claims *jwtutil.SessionClaims, target *uint) (uint, error) {
	if claims == nil {
		return 0, ErrPermissionDenied
	}

	if claims.Role == permission.RoleSuperAdmin {
		if target == nil {
			return 0, ErrPermissionDenied
		}
		return *target, nil
	}

	if (claims.Role == permission.RoleSalonOwner || isStaffRole(claims.Role)) && claims.SalonID != nil {
		return *claims.SalonID, nil
	}

	return 0, ErrPermissionDenied
}

// CanAssignRole enforces the privilege escalation guard: a salon owner may
// not create or elevate an identity to SALON_OWNER or SUPER_ADMIN. The
// platform administrator is unrestricted.
func CanAssignRole(requesterRole, targetRole string) bool {
	if requesterRole == permission.RoleSuperAdmin {
		return true
	}
	if requesterRole == permission.RoleSalonOwner {
		switch targetRole {
		case permission.RoleSuperAdmin, permission.RoleSalonOwner:
			return false
		}
		return true
	}
	return false
}

// isStaffRole reports whether role names a salon-scoped custom role. The
// customer role is excluded: customers hold no tenant data access.
func isStaffRole(role string) bool {
	return role != "" && !permission.IsSystemRole(role)
}
