package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salon-service/internal/permission"
	"salon-service/pkg/config"
	"salon-service/pkg/jwtutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func newRequest(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func setClaims(c echo.Context, claims *jwtutil.SessionClaims) {
	c.Set("claims", claims)
}

func ownerClaims(salonID uint) *jwtutil.SessionClaims {
	return &jwtutil.SessionClaims{
		UserID:      2,
		Email:       "owner@example.com",
		Role:        permission.RoleSalonOwner,
		SalonID:     &salonID,
		Status:      permission.StatusActive,
		Permissions: permission.Catalogue(),
	}
}

func newAuthHandler(db *gorm.DB) *AuthHandler {
	jwt := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})
	resolver := permission.NewResolver(permission.NewGormRoleSource(db))
	return NewAuthHandler(db, jwt, resolver)
}

func TestLoginUnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	db, mock := newMockDB(t)
	h := newAuthHandler(db)

	// Unknown email.
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	c, rec := newRequest(t, http.MethodPost, "/api/auth/login",
		`{"email":"nobody@example.com","password":"whatever"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	unknownEmailBody := rec.Body.String()

	// Known email, wrong password.
	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-password"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "role", "status"}).
			AddRow(1, "owner@example.com", string(hash), permission.RoleSalonOwner, permission.StatusActive))

	c, rec = newRequest(t, http.MethodPost, "/api/auth/login",
		`{"email":"owner@example.com","password":"guess"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Identical body either way, so a caller cannot probe which emails exist.
	assert.Equal(t, unknownEmailBody, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffCreateEscalationBlocked(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewStaffHandler(db)

	c, rec := newRequest(t, http.MethodPost, "/api/staff",
		`{"email":"mole@example.com","password":"pw","role":"SALON_OWNER"}`)
	setClaims(c, ownerClaims(1))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The guard fires before any database work: no row may exist afterwards.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStaffCreateAdminEscalationAllowed(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewStaffHandler(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	c, rec := newRequest(t, http.MethodPost, "/api/staff",
		`{"email":"newowner@example.com","password":"pw","role":"SALON_OWNER","salon_id":1}`)
	setClaims(c, &jwtutil.SessionClaims{
		UserID:      1,
		Role:        permission.RoleSuperAdmin,
		Status:      permission.StatusActive,
		Permissions: permission.Catalogue(),
	})

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectDeletesThenSecondRejectNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewOnboardingHandler(db)

	// First reject: owner pending approval, salon 5 linked.
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "status", "salon_id"}).
			AddRow(7, "pending@example.com", permission.RoleSalonOwner, permission.StatusPendingApproval, 5))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "salons"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "users"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newRequest(t, http.MethodPost, "/api/admin/requests/7/reject", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Second reject: the rows are gone for good.
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	c, rec = newRequest(t, http.MethodPost, "/api/admin/requests/7/reject", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectActiveOwnerRefused(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewOnboardingHandler(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "status", "salon_id"}).
			AddRow(7, "active@example.com", permission.RoleSalonOwner, permission.StatusActive, 5))

	c, rec := newRequest(t, http.MethodPost, "/api/admin/requests/7/reject", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Reject(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveAlreadyActiveIsIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewOnboardingHandler(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "status", "salon_id"}).
			AddRow(7, "active@example.com", permission.RoleSalonOwner, permission.StatusActive, 5))

	c, rec := newRequest(t, http.MethodPost, "/api/admin/requests/7/approve", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// No transaction ran: a second approval never rewrites anything.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveActivatesUserAndSalon(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewOnboardingHandler(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "status", "salon_id"}).
			AddRow(7, "pending@example.com", permission.RoleSalonOwner, permission.StatusPendingApproval, 5))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "users" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "salons" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	c, rec := newRequest(t, http.MethodPost, "/api/admin/requests/7/approve", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	require.NoError(t, h.Approve(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBranchListScopedToOwnSalon(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewBranchHandler(db)

	// The filter is part of the SQL itself, not post-hoc filtering.
	mock.ExpectQuery(`SELECT \* FROM "branches" WHERE salon_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "salon_id", "name"}).
			AddRow(10, 1, "Downtown"))

	c, rec := newRequest(t, http.MethodGet, "/api/branches", "")
	setClaims(c, ownerClaims(1))

	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Downtown")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleCreateRejectsUnknownPermission(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewRoleHandler(db)

	c, rec := newRequest(t, http.MethodPost, "/api/roles",
		`{"name":"Manager","permissions":["root:everything"]}`)
	setClaims(c, ownerClaims(1))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleDeleteProtectsSystemRoles(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewRoleHandler(db)

	mock.ExpectQuery(`SELECT \* FROM "roles" WHERE salon_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "salon_id", "name", "is_system_role"}).
			AddRow(3, 1, "SALON_OWNER", true))

	c, rec := newRequest(t, http.MethodDelete, "/api/roles/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")
	setClaims(c, ownerClaims(1))

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentCreateCopiesServiceDuration(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAppointmentHandler(db)

	mock.ExpectQuery(`SELECT \* FROM "services" WHERE salon_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "salon_id", "name", "duration_minutes"}).
			AddRow(4, 1, "Haircut", 45))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "appointments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20))
	mock.ExpectCommit()

	c, rec := newRequest(t, http.MethodPost, "/api/appointments",
		`{"customer_id":11,"staff_id":12,"service_id":4,"scheduled_at":"2026-09-02T10:00:00Z"}`)
	setClaims(c, ownerClaims(1))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"duration_minutes":45`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentCreateForeignServiceNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewAppointmentHandler(db)

	mock.ExpectQuery(`SELECT \* FROM "services" WHERE salon_id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	c, rec := newRequest(t, http.MethodPost, "/api/appointments",
		`{"customer_id":11,"staff_id":12,"service_id":999,"scheduled_at":"2026-09-02T10:00:00Z"}`)
	setClaims(c, ownerClaims(1))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
