package scope

import (
	"testing"

	"salon-service/internal/model"
	"salon-service/internal/permission"
	"salon-service/pkg/jwtutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func ownerClaims(salonID uint) *jwtutil.SessionClaims {
	return &jwtutil.SessionClaims{
		UserID:  2,
		Role:    permission.RoleSalonOwner,
		SalonID: &salonID,
		Status:  permission.StatusActive,
	}
}

func adminClaims() *jwtutil.SessionClaims {
	return &jwtutil.SessionClaims{
		UserID: 1,
		Role:   permission.RoleSuperAdmin,
		Status: permission.StatusActive,
	}
}

func TestForReadFiltersOwnerToOwnSalon(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "branches" WHERE salon_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "salon_id", "name"}).AddRow(1, 7, "Main"))

	scoped, err := ForRead(db, ownerClaims(7), nil, zap.NewNop())
	require.NoError(t, err)

	var branches []model.Branch
	require.NoError(t, scoped.Find(&branches).Error)
	require.Len(t, branches, 1)
	assert.Equal(t, uint(7), branches[0].SalonID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForReadFiltersStaffToOwnSalon(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "branches" WHERE salon_id = \$1`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"id", "salon_id", "name"}))

	salonID := uint(9)
	staff := &jwtutil.SessionClaims{UserID: 5, Role: "Cashier", SalonID: &salonID, Status: permission.StatusActive}

	scoped, err := ForRead(db, staff, nil, zap.NewNop())
	require.NoError(t, err)

	var branches []model.Branch
	require.NoError(t, scoped.Find(&branches).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForReadAdminIsUnfiltered(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`^SELECT \* FROM "branches"$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "salon_id", "name"}).
			AddRow(1, 7, "Main").
			AddRow(2, 9, "Outlet"))

	scoped, err := ForRead(db, adminClaims(), nil, zap.NewNop())
	require.NoError(t, err)

	var branches []model.Branch
	require.NoError(t, scoped.Find(&branches).Error)
	assert.Len(t, branches, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForReadAdminViewAsFiltersToTarget(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "branches" WHERE salon_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "salon_id", "name"}))

	viewAs := uint(7)
	scoped, err := ForRead(db, adminClaims(), &viewAs, zap.NewNop())
	require.NoError(t, err)

	var branches []model.Branch
	require.NoError(t, scoped.Find(&branches).Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForReadDeniesCustomerRole(t *testing.T) {
	db, _ := newMockDB(t)

	salonID := uint(7)
	customer := &jwtutil.SessionClaims{UserID: 3, Role: permission.RoleUser, SalonID: &salonID, Status: permission.StatusActive}

	_, err := ForRead(db, customer, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestForReadDeniesTenantRoleWithoutSalon(t *testing.T) {
	db, _ := newMockDB(t)

	unlinked := &jwtutil.SessionClaims{UserID: 3, Role: permission.RoleSalonOwner, Status: permission.StatusActive}
	_, err := ForRead(db, unlinked, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = ForRead(db, nil, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestForWriteFiltersOwner(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "branches" WHERE salon_id = \$1 AND "branches"\."id" = \$2`).
		WithArgs(7, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	scoped, err := ForWrite(db, ownerClaims(7))
	require.NoError(t, err)

	result := scoped.Delete(&model.Branch{}, 1)
	require.NoError(t, result.Error)
	assert.Equal(t, int64(1), result.RowsAffected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestForWriteDeniesCustomer(t *testing.T) {
	db, _ := newMockDB(t)

	customer := &jwtutil.SessionClaims{UserID: 3, Role: permission.RoleUser, Status: permission.StatusActive}
	_, err := ForWrite(db, customer)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSalonIDForCreate(t *testing.T) {
	target := uint(12)

	// Admin must name a target salon.
	id, err := SalonIDForCreate(adminClaims(), &target)
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	_, err = SalonIDForCreate(adminClaims(), nil)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Owners always create inside their own salon, whatever they ask for.
	id, err = SalonIDForCreate(ownerClaims(7), &target)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
}

func TestCanAssignRoleEscalationGuard(t *testing.T) {
	// An owner may not mint owners or administrators.
	assert.False(t, CanAssignRole(permission.RoleSalonOwner, permission.RoleSuperAdmin))
	assert.False(t, CanAssignRole(permission.RoleSalonOwner, permission.RoleSalonOwner))
	assert.True(t, CanAssignRole(permission.RoleSalonOwner, "Cashier"))
	assert.True(t, CanAssignRole(permission.RoleSalonOwner, permission.RoleUser))

	// The administrator is unrestricted.
	assert.True(t, CanAssignRole(permission.RoleSuperAdmin, permission.RoleSalonOwner))
	assert.True(t, CanAssignRole(permission.RoleSuperAdmin, permission.RoleSuperAdmin))

	// Staff cannot create identities at all.
	assert.False(t, CanAssignRole("Cashier", permission.RoleUser))
}
