package permission

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoleSource struct {
	perms map[string][]string
	err   error
}

func (s *stubRoleSource) RolePermissions(name string, salonID uint) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	if perms, ok := s.perms[name]; ok {
		return perms, nil
	}
	return nil, ErrRoleNotFound
}

func TestResolveSystemRoles(t *testing.T) {
	resolver := NewResolver(&stubRoleSource{})
	salonID := uint(1)

	for _, role := range []string{RoleSuperAdmin, RoleSalonOwner} {
		perms, err := resolver.Resolve(role, &salonID)
		require.NoError(t, err)
		assert.ElementsMatch(t, Catalogue(), perms, "role %s should hold the full catalogue", role)
	}
}

func TestResolveCustomerRoleIsEmpty(t *testing.T) {
	resolver := NewResolver(&stubRoleSource{perms: map[string][]string{
		"USER": {POSAccess}, // must never be consulted for the system USER role
	}})
	salonID := uint(1)

	perms, err := resolver.Resolve(RoleUser, &salonID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestResolveCustomRoleAddsBaseline(t *testing.T) {
	resolver := NewResolver(&stubRoleSource{perms: map[string][]string{
		"Cashier": {POSAccess, AppointmentView},
	}})
	salonID := uint(3)

	perms, err := resolver.Resolve("Cashier", &salonID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{POSAccess, AppointmentView, ProfileUpdate}, perms)
}

func TestResolveCustomRoleBaselineNotDuplicated(t *testing.T) {
	resolver := NewResolver(&stubRoleSource{perms: map[string][]string{
		"Manager": {StaffManage, ProfileUpdate},
	}})
	salonID := uint(3)

	perms, err := resolver.Resolve("Manager", &salonID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{StaffManage, ProfileUpdate}, perms)
}

func TestResolveMissingCustomRoleFailsClosed(t *testing.T) {
	resolver := NewResolver(&stubRoleSource{})
	salonID := uint(3)

	perms, err := resolver.Resolve("Ghost Role", &salonID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestResolveCustomRoleWithoutSalon(t *testing.T) {
	resolver := NewResolver(&stubRoleSource{perms: map[string][]string{
		"Cashier": {POSAccess},
	}})

	perms, err := resolver.Resolve("Cashier", nil)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	resolver := NewResolver(&stubRoleSource{err: storeErr})
	salonID := uint(3)

	_, err := resolver.Resolve("Cashier", &salonID)
	assert.ErrorIs(t, err, storeErr)
}
