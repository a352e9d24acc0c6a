package scope

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func mockScope(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *Scope {
	t.Helper()
	tctx, err := shared.NewTenantContext(tenantID, uuid.New(), shared.RoleAdmin, nil)
	require.NoError(t, err)
	s, err := New(db, tctx)
	require.NoError(t, err)
	return s
}

func TestRepository_FindByID_EmitsTenantFilter(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	s := mockScope(t, db, tenantID)
	repo, err := NewRepository[partner.Customer](s, KindCustomer)
	require.NoError(t, err)

	// First binds the LIMIT as a third placeholder on postgres
	rowID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY "customers"\."id" LIMIT \$3`).
		WithArgs(tenantID.String(), rowID.String(), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code", "name"}))

	_, err = repo.FindByID(context.Background(), rowID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete_EmitsTenantFilter(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	s := mockScope(t, db, tenantID)
	repo, err := NewRepository[partner.Customer](s, KindCustomer)
	require.NoError(t, err)

	rowID := uuid.New()
	mock.ExpectExec(`DELETE FROM "customers" WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(tenantID.String(), rowID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(context.Background(), rowID)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Count_EmitsTenantFilter(t *testing.T) {
	db, mock, mockDB := setupMockDB(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	s := mockScope(t, db, tenantID)
	repo, err := NewRepository[partner.Customer](s, KindCustomer)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "customers" WHERE tenant_id = \$1`).
		WithArgs(tenantID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}
