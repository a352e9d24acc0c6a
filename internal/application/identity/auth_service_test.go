package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vansales/backend/internal/domain/identity"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/auth"
	"github.com/vansales/backend/internal/infrastructure/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupAuth(t *testing.T) (*AuthService, *gorm.DB, *auth.InMemoryTokenBlacklist) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&identity.User{}, &identity.Branch{}))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-characters",
		AccessTokenExpiration: time.Hour,
		Issuer:                "vansales-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	return NewAuthService(db, jwtService, blacklist), db, blacklist
}

func seedUser(t *testing.T, db *gorm.DB, tenantID uuid.UUID, username, password string, role shared.Role) *identity.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	user, err := identity.NewUser(tenantID, username, hash, role)
	require.NoError(t, err)
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestAuthService_Login(t *testing.T) {
	svc, db, _ := setupAuth(t)
	ctx := context.Background()
	tenantID := uuid.New()
	seedUser(t, db, tenantID, "driver1", "password123", shared.RoleDriver)

	resp, err := svc.Login(ctx, LoginRequest{TenantID: tenantID, Username: "driver1", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "driver", resp.Role)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, db, _ := setupAuth(t)
	ctx := context.Background()
	tenantID := uuid.New()
	user := seedUser(t, db, tenantID, "driver2", "password123", shared.RoleDriver)

	_, err := svc.Login(ctx, LoginRequest{TenantID: tenantID, Username: "driver2", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{TenantID: tenantID, Username: "nobody", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// same username under another tenant does not match
	_, err = svc.Login(ctx, LoginRequest{TenantID: uuid.New(), Username: "driver2", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user.Disable()
	require.NoError(t, db.Save(user).Error)
	_, err = svc.Login(ctx, LoginRequest{TenantID: tenantID, Username: "driver2", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LogoutBlacklistsToken(t *testing.T) {
	svc, db, blacklist := setupAuth(t)
	ctx := context.Background()
	tenantID := uuid.New()
	seedUser(t, db, tenantID, "driver3", "password123", shared.RoleDriver)

	resp, err := svc.Login(ctx, LoginRequest{TenantID: tenantID, Username: "driver3", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, resp.Token))

	claims, err := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-characters",
		AccessTokenExpiration: time.Hour,
		Issuer:                "vansales-test",
	}).ValidateToken(resp.Token)
	require.NoError(t, err)

	listed, err := blacklist.IsBlacklisted(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, listed)
}

func TestHashPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)

	hash, err := HashPassword("long-enough-password")
	require.NoError(t, err)
	assert.NotEqual(t, "long-enough-password", hash)
}

func TestUserService_CreateUser(t *testing.T) {
	_, db, _ := setupAuth(t)
	svc := NewUserService(db)
	ctx := context.Background()
	tenantID := uuid.New()

	adminCtx, err := shared.NewTenantContext(tenantID, uuid.New(), shared.RoleAdmin, nil)
	require.NoError(t, err)

	created, err := svc.CreateUser(ctx, adminCtx, CreateUserRequest{
		Username: "NewDriver",
		Password: "password123",
		Role:     "driver",
	})
	require.NoError(t, err)
	assert.Equal(t, "newdriver", created.Username)

	_, err = svc.CreateUser(ctx, adminCtx, CreateUserRequest{
		Username: "newdriver", Password: "password123", Role: "driver",
	})
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)

	managerCtx, err := shared.NewTenantContext(tenantID, uuid.New(), shared.RoleManager, nil)
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, managerCtx, CreateUserRequest{
		Username: "x", Password: "password123", Role: "driver",
	})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestUserService_Branches(t *testing.T) {
	_, db, _ := setupAuth(t)
	svc := NewUserService(db)
	ctx := context.Background()

	adminCtx, err := shared.NewTenantContext(uuid.New(), uuid.New(), shared.RoleAdmin, nil)
	require.NoError(t, err)

	created, err := svc.CreateBranch(ctx, adminCtx, CreateBranchRequest{Code: "north", Name: "North Depot"})
	require.NoError(t, err)
	assert.Equal(t, "NORTH", created.Code)

	_, err = svc.CreateBranch(ctx, adminCtx, CreateBranchRequest{Code: "NORTH", Name: "Dup"})
	assert.Error(t, err)

	list, err := svc.ListBranches(ctx, adminCtx, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
