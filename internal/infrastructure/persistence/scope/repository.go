package scope

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TenantScoped is implemented by every tenant-owned entity. Creation stamping
// and the cross-tenant write guard go through it.
type TenantScoped interface {
	GetID() uuid.UUID
	GetTenantID() uuid.UUID
	SetTenantID(uuid.UUID)
	SetCreatedBy(*uuid.UUID)
}

// Repository provides tenant-scoped CRUD for one entity kind. The operation
// set is closed: callers cannot compose raw queries that bypass the tenant
// filter.
type Repository[T any] struct {
	scope *Scope
	kind  EntityKind
}

// NewRepository constructs a repository for a tenant-owned kind. The entity
// type must implement TenantScoped through its pointer receiver.
func NewRepository[T any](s *Scope, kind EntityKind) (*Repository[T], error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if !kind.TenantOwned() {
		return nil, fmt.Errorf("%w: %q", ErrKindNotTenantOwned, kind)
	}
	if _, ok := any(new(T)).(TenantScoped); !ok {
		return nil, fmt.Errorf("entity type %T does not implement TenantScoped", new(T))
	}
	return &Repository[T]{scope: s, kind: kind}, nil
}

// Kind returns the entity kind the repository serves
func (r *Repository[T]) Kind() EntityKind {
	return r.kind
}

// FindByID fetches one row by primary key within the tenant
func (r *Repository[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var entity T
	err := r.scope.scoped(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// FindOne fetches the first row matching the condition within the tenant
func (r *Repository[T]) FindOne(ctx context.Context, query string, args ...any) (*T, error) {
	var entity T
	err := r.scope.scoped(ctx).Where(query, args...).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entity, nil
}

// FindMany lists rows within the tenant, with optional extra conditions,
// ordering and pagination from the filter
func (r *Repository[T]) FindMany(ctx context.Context, filter shared.Filter, conds ...any) ([]T, error) {
	db := r.scope.scoped(ctx).Model(new(T))
	db = applyConds(db, conds)
	for field, value := range filter.Filters {
		if !isSafeColumn(field) {
			continue
		}
		db = db.Where(fmt.Sprintf("%s = ?", field), value)
	}
	db = applyOrder(db, filter)
	db = applyPagination(db, filter)

	var entities []T
	if err := db.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

// Count counts rows within the tenant matching the optional condition
func (r *Repository[T]) Count(ctx context.Context, conds ...any) (int64, error) {
	db := r.scope.scoped(ctx).Model(new(T))
	db = applyConds(db, conds)
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create inserts a row, stamping the scope's tenant id and acting user over
// whatever the caller set
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	r.stamp(entity)
	return r.scope.raw(ctx).Create(entity).Error
}

// CreateMany inserts a batch, stamping every row
func (r *Repository[T]) CreateMany(ctx context.Context, entities []*T) error {
	if len(entities) == 0 {
		return nil
	}
	for _, e := range entities {
		r.stamp(e)
	}
	return r.scope.raw(ctx).Create(entities).Error
}

// Update persists a full entity. The entity must already belong to the
// scope's tenant; the row is matched on both id and tenant_id so a forged id
// cannot touch another tenant's data.
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	ts := any(entity).(TenantScoped)
	if ts.GetTenantID() != r.scope.TenantID() {
		return ErrCrossTenantWrite
	}
	res := r.scope.scoped(ctx).
		Model(entity).
		Select("*").
		Omit("id", "tenant_id", "created_at", "created_by").
		Updates(entity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateMany applies a column update to all tenant rows matching the
// condition. Identity columns are stripped from the update set.
func (r *Repository[T]) UpdateMany(ctx context.Context, fields map[string]any, conds ...any) (int64, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	delete(fields, "id")
	delete(fields, "tenant_id")
	delete(fields, "created_at")
	delete(fields, "created_by")

	db := r.scope.scoped(ctx).Model(new(T))
	db = applyConds(db, conds)
	res := db.Updates(fields)
	return res.RowsAffected, res.Error
}

// Delete removes one row by primary key within the tenant
func (r *Repository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.scope.scoped(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteMany removes all tenant rows matching the condition
func (r *Repository[T]) DeleteMany(ctx context.Context, query string, args ...any) (int64, error) {
	res := r.scope.scoped(ctx).Where(query, args...).Delete(new(T))
	return res.RowsAffected, res.Error
}

// Upsert inserts the row or, on a conflict over the given columns, updates
// the listed columns. The insert path is stamped like Create; the update
// path never touches identity columns.
func (r *Repository[T]) Upsert(ctx context.Context, entity *T, conflictColumns, updateColumns []string) error {
	r.stamp(entity)

	cols := make([]clause.Column, 0, len(conflictColumns))
	for _, c := range conflictColumns {
		cols = append(cols, clause.Column{Name: c})
	}
	assignments := make([]string, 0, len(updateColumns))
	for _, c := range updateColumns {
		switch c {
		case "id", "tenant_id", "created_at", "created_by":
			continue
		}
		assignments = append(assignments, c)
	}

	return r.scope.raw(ctx).Clauses(clause.OnConflict{
		Columns:   cols,
		DoUpdates: clause.AssignmentColumns(assignments),
	}).Create(entity).Error
}

// stamp forces the scope's tenant and acting user onto the entity
func (r *Repository[T]) stamp(entity *T) {
	ts := any(entity).(TenantScoped)
	ts.SetTenantID(r.scope.TenantID())
	userID := r.scope.UserID()
	ts.SetCreatedBy(&userID)
}

// PassThrough provides read access for kinds outside the tenant-owned set.
// Rows of these kinds are reached through a tenant-owned parent, so no tenant
// filter applies here.
type PassThrough[T any] struct {
	scope *Scope
	kind  EntityKind
}

// NewPassThrough constructs a pass-through repository for a non-tenant kind
func NewPassThrough[T any](s *Scope, kind EntityKind) (*PassThrough[T], error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if kind.TenantOwned() {
		return nil, fmt.Errorf("kind %q is tenant-owned, use NewRepository", kind)
	}
	return &PassThrough[T]{scope: s, kind: kind}, nil
}

// FindMany lists rows matching the condition
func (r *PassThrough[T]) FindMany(ctx context.Context, query string, args ...any) ([]T, error) {
	var entities []T
	err := r.scope.raw(ctx).Where(query, args...).Find(&entities).Error
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// Count counts rows matching the condition
func (r *PassThrough[T]) Count(ctx context.Context, query string, args ...any) (int64, error) {
	var count int64
	err := r.scope.raw(ctx).Model(new(T)).Where(query, args...).Count(&count).Error
	return count, err
}

func applyConds(db *gorm.DB, conds []any) *gorm.DB {
	if len(conds) == 0 {
		return db
	}
	query, ok := conds[0].(string)
	if !ok || query == "" {
		return db
	}
	return db.Where(query, conds[1:]...)
}

func applyOrder(db *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if orderBy == "" || !isSafeColumn(orderBy) {
		orderBy = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(filter.OrderDir), "asc") {
		dir = "ASC"
	}
	return db.Order(fmt.Sprintf("%s %s", orderBy, dir))
}

func applyPagination(db *gorm.DB, filter shared.Filter) *gorm.DB {
	return db.Offset(filter.Offset()).Limit(filter.Limit())
}

// isSafeColumn accepts plain snake_case identifiers only, keeping
// caller-supplied column names out of SQL injection territory
func isSafeColumn(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}
