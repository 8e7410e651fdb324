package permission

import (
	"errors"

	"salon-service/internal/model"

	"gorm.io/gorm"
)

// ErrRoleNotFound is returned by a RoleSource when no custom role record
// matches the (name, salon id) pair.
var ErrRoleNotFound = errors.New("custom role not found")

// RoleSource looks up the permission set of a salon-scoped custom role.
type RoleSource interface {
	RolePermissions(name string, salonID uint) ([]string, error)
}

// GormRoleSource reads custom roles from the roles table.
type GormRoleSource struct {
	DB *gorm.DB
}

func NewGormRoleSource(db *gorm.DB) *GormRoleSource {
	return &GormRoleSource{DB: db}
}

func (s *GormRoleSource) RolePermissions(name string, salonID uint) ([]string, error) {
	var role model.Role
	result := s.DB.Where("name = ? AND salon_id = ?", name, salonID).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}
	return role.Permissions, nil
}

// Resolver computes the effective permission set for a role. Resolution
// happens once at session issuance; the result is cached in the token.
type Resolver struct {
	Roles RoleSource
}

func NewResolver(roles RoleSource) *Resolver {
	return &Resolver{Roles: roles}
}

// Resolve returns the effective permission set for the given role.
//
//   - System roles SUPER_ADMIN and SALON_OWNER get the full catalogue.
//   - USER (the customer role) gets nothing.
//   - Any other role name is looked up as a custom role scoped to the salon;
//     a hit yields the stored set plus the profile:update baseline, a miss
//     yields the empty set. Missing records fail closed, never open.
func (r *Resolver) Resolve(role string, salonID *uint) ([]string, error) {
	switch role {
	case RoleSuperAdmin, RoleSalonOwner:
		return Catalogue(), nil
	case RoleUser:
		return nil, nil
	}

	// Custom roles only exist inside a salon.
	if salonID == nil {
		return nil, nil
	}

	perms, err := r.Roles.RolePermissions(role, *salonID)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return appendBaseline(perms), nil
}

func appendBaseline(perms []string) []string {
	for _, p := range perms {
		if p == ProfileUpdate {
			return perms
		}
	}
	return append(perms, ProfileUpdate)
}
