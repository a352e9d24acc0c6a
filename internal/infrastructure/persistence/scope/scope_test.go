package scope

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vansales/backend/internal/domain/partner"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/domain/trade"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&partner.Customer{}, &trade.Order{}, &trade.OrderLine{}))
	return db
}

func newScope(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *Scope {
	t.Helper()
	tctx, err := shared.NewTenantContext(tenantID, uuid.New(), shared.RoleAdmin, nil)
	require.NoError(t, err)
	s, err := New(db, tctx)
	require.NoError(t, err)
	return s
}

func customerRepo(t *testing.T, s *Scope) *Repository[partner.Customer] {
	t.Helper()
	repo, err := NewRepository[partner.Customer](s, KindCustomer)
	require.NoError(t, err)
	return repo
}

func TestNew_RequiresTenantContext(t *testing.T) {
	db := setupDB(t)

	_, err := New(db, shared.TenantContext{})
	assert.ErrorIs(t, err, ErrTenantIDRequired)
}

func TestNewRepository_KindValidation(t *testing.T) {
	db := setupDB(t)
	s := newScope(t, db, uuid.New())

	_, err := NewRepository[partner.Customer](s, EntityKind("gadget"))
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = NewRepository[trade.OrderLine](s, KindOrderLine)
	assert.ErrorIs(t, err, ErrKindNotTenantOwned)

	_, err = NewPassThrough[trade.OrderLine](s, KindOrderLine)
	assert.NoError(t, err)
}

func TestRepository_Create_StampsTenant(t *testing.T) {
	db := setupDB(t)
	tenantID := uuid.New()
	s := newScope(t, db, tenantID)
	repo := customerRepo(t, s)

	// caller pre-sets a foreign tenant id, the scope must override it
	customer, err := partner.NewCustomer(uuid.New(), "C-001", "North Market")
	require.NoError(t, err)

	require.NoError(t, repo.Create(context.Background(), customer))

	assert.Equal(t, tenantID, customer.TenantID)
	require.NotNil(t, customer.CreatedBy)
	assert.Equal(t, s.UserID(), *customer.CreatedBy)

	found, err := repo.FindByID(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Equal(t, tenantID, found.TenantID)
}

func TestRepository_Reads_IsolateTenants(t *testing.T) {
	db := setupDB(t)
	tenantA := uuid.New()
	tenantB := uuid.New()
	scopeA := newScope(t, db, tenantA)
	scopeB := newScope(t, db, tenantB)
	repoA := customerRepo(t, scopeA)
	repoB := customerRepo(t, scopeB)
	ctx := context.Background()

	ca, err := partner.NewCustomer(tenantA, "C-A", "Alpha Store")
	require.NoError(t, err)
	require.NoError(t, repoA.Create(ctx, ca))

	cb, err := partner.NewCustomer(tenantB, "C-B", "Beta Store")
	require.NoError(t, err)
	require.NoError(t, repoB.Create(ctx, cb))

	listA, err := repoA.FindMany(ctx, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, listA, 1)
	assert.Equal(t, "C-A", listA[0].Code)

	// B's row is invisible through A's scope even when queried by id
	_, err = repoA.FindByID(ctx, cb.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	count, err := repoA.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// extra conditions cannot widen the scope
	listWide, err := repoA.FindMany(ctx, shared.DefaultFilter(), "tenant_id IS NOT NULL")
	require.NoError(t, err)
	assert.Len(t, listWide, 1)
}

func TestRepository_Update_GuardsCrossTenant(t *testing.T) {
	db := setupDB(t)
	tenantA := uuid.New()
	tenantB := uuid.New()
	scopeA := newScope(t, db, tenantA)
	scopeB := newScope(t, db, tenantB)
	repoA := customerRepo(t, scopeA)
	repoB := customerRepo(t, scopeB)
	ctx := context.Background()

	cb, err := partner.NewCustomer(tenantB, "C-B", "Beta Store")
	require.NoError(t, err)
	require.NoError(t, repoB.Create(ctx, cb))

	// entity stamped with B handed to A's scope
	err = repoA.Update(ctx, cb)
	assert.ErrorIs(t, err, ErrCrossTenantWrite)

	// entity forged to claim A's tenant but targeting B's row
	forged := *cb
	forged.TenantID = tenantA
	forged.Name = "Hijacked"
	err = repoA.Update(ctx, &forged)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	stored, err := repoB.FindByID(ctx, cb.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beta Store", stored.Name)
}

func TestRepository_Update_PersistsWithinTenant(t *testing.T) {
	db := setupDB(t)
	tenantID := uuid.New()
	s := newScope(t, db, tenantID)
	repo := customerRepo(t, s)
	ctx := context.Background()

	c, err := partner.NewCustomer(tenantID, "C-001", "North Market")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))

	c.Name = "North Market Renamed"
	c.Status = partner.CustomerStatusInactive
	require.NoError(t, repo.Update(ctx, c))

	stored, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "North Market Renamed", stored.Name)
	assert.Equal(t, partner.CustomerStatusInactive, stored.Status)
}

func TestRepository_Delete_IsolatesTenants(t *testing.T) {
	db := setupDB(t)
	tenantA := uuid.New()
	tenantB := uuid.New()
	scopeA := newScope(t, db, tenantA)
	scopeB := newScope(t, db, tenantB)
	repoA := customerRepo(t, scopeA)
	repoB := customerRepo(t, scopeB)
	ctx := context.Background()

	cb, err := partner.NewCustomer(tenantB, "C-B", "Beta Store")
	require.NoError(t, err)
	require.NoError(t, repoB.Create(ctx, cb))

	err = repoA.Delete(ctx, cb.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repoB.FindByID(ctx, cb.ID)
	assert.NoError(t, err)

	require.NoError(t, repoB.Delete(ctx, cb.ID))
	_, err = repoB.FindByID(ctx, cb.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRepository_UpdateMany_ScopedAndStripped(t *testing.T) {
	db := setupDB(t)
	tenantA := uuid.New()
	tenantB := uuid.New()
	scopeA := newScope(t, db, tenantA)
	scopeB := newScope(t, db, tenantB)
	repoA := customerRepo(t, scopeA)
	repoB := customerRepo(t, scopeB)
	ctx := context.Background()

	for _, code := range []string{"C-1", "C-2"} {
		c, err := partner.NewCustomer(tenantA, code, "Store "+code)
		require.NoError(t, err)
		require.NoError(t, repoA.Create(ctx, c))
	}
	cb, err := partner.NewCustomer(tenantB, "C-B", "Beta Store")
	require.NoError(t, err)
	require.NoError(t, repoB.Create(ctx, cb))

	rows, err := repoA.UpdateMany(ctx, map[string]any{
		"status":    "inactive",
		"tenant_id": tenantB, // must be stripped, not applied
	}, "status = ?", "active")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	countA, err := repoA.Count(ctx, "status = ?", "inactive")
	require.NoError(t, err)
	assert.Equal(t, int64(2), countA)

	// B untouched
	stored, err := repoB.FindByID(ctx, cb.ID)
	require.NoError(t, err)
	assert.Equal(t, partner.CustomerStatusActive, stored.Status)
}

func TestRepository_DeleteMany_Scoped(t *testing.T) {
	db := setupDB(t)
	tenantA := uuid.New()
	tenantB := uuid.New()
	scopeA := newScope(t, db, tenantA)
	scopeB := newScope(t, db, tenantB)
	repoA := customerRepo(t, scopeA)
	repoB := customerRepo(t, scopeB)
	ctx := context.Background()

	ca, err := partner.NewCustomer(tenantA, "C-A", "Alpha")
	require.NoError(t, err)
	require.NoError(t, repoA.Create(ctx, ca))
	cb, err := partner.NewCustomer(tenantB, "C-B", "Beta")
	require.NoError(t, err)
	require.NoError(t, repoB.Create(ctx, cb))

	rows, err := repoA.DeleteMany(ctx, "status = ?", "active")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	countB, err := repoB.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), countB)
}

func TestRepository_Upsert(t *testing.T) {
	db := setupDB(t)
	tenantID := uuid.New()
	s := newScope(t, db, tenantID)
	repo := customerRepo(t, s)
	ctx := context.Background()

	c, err := partner.NewCustomer(tenantID, "C-001", "North Market")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, c, []string{"tenant_id", "code"}, []string{"name", "updated_at"}))

	dup, err := partner.NewCustomer(tenantID, "C-001", "North Market v2")
	require.NoError(t, err)
	require.NoError(t, repo.Upsert(ctx, dup, []string{"tenant_id", "code"}, []string{"name", "updated_at"}))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stored, err := repo.FindOne(ctx, "code = ?", "C-001")
	require.NoError(t, err)
	assert.Equal(t, "North Market v2", stored.Name)
}

func TestPassThrough_FindMany(t *testing.T) {
	db := setupDB(t)
	tenantID := uuid.New()
	s := newScope(t, db, tenantID)
	ctx := context.Background()

	orders, err := NewRepository[trade.Order](s, KindOrder)
	require.NoError(t, err)

	order, err := trade.NewOrder(tenantID, uuid.New(), "SO-0001")
	require.NoError(t, err)
	require.NoError(t, order.AddLine("SKU-1", "Water", decimal.NewFromInt(2), decimal.NewFromInt(3)))
	require.NoError(t, orders.Create(ctx, order))

	lines, err := NewPassThrough[trade.OrderLine](s, KindOrderLine)
	require.NoError(t, err)

	got, err := lines.FindMany(ctx, "order_id = ?", order.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SKU-1", got[0].SKU)
}

func TestScope_Transaction(t *testing.T) {
	db := setupDB(t)
	tenantID := uuid.New()
	s := newScope(t, db, tenantID)
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx *Scope) error {
		repo, err := NewRepository[partner.Customer](tx, KindCustomer)
		if err != nil {
			return err
		}
		c, err := partner.NewCustomer(tenantID, "C-TX", "Tx Store")
		if err != nil {
			return err
		}
		return repo.Create(ctx, c)
	})
	require.NoError(t, err)

	repo := customerRepo(t, s)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
