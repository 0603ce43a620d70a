package store

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	// ErrNoTenant is returned when a tenant-scoped operation is attempted
	// before a tenant id has been resolved. No query runs in that case.
	ErrNoTenant = errors.New("no tenant resolved for this operation")

	// ErrNotFound is returned when the target row does not exist within the
	// caller's tenant. A row owned by another tenant is indistinguishable
	// from a missing one.
	ErrNotFound = errors.New("record not found")
)

// identifier guards column names supplied by callers before they are
// interpolated into a WHERE or ORDER BY clause
var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	cacheTTL        = 5 * time.Minute
)

// TenantRecord is the hand-maintained schema contract every tenant-scoped
// model implements. The generic helpers refuse to work with anything else,
// so there is no untyped escape hatch around the tenant filter.
type TenantRecord interface {
	TableName() string
	GetTenantID() uuid.UUID
	SetTenantID(uuid.UUID)
}

// QueryOptions describe one tenant-scoped read
type QueryOptions struct {
	Filters  map[string]interface{} // equality filters, column -> value
	OrderBy  string                 // column name, defaults to created_at
	OrderDir string                 // "asc" or "desc", defaults to desc
	Page     int                    // 1-based, defaults to 1
	PageSize int                    // defaults to 20, capped at 100
}

// Result is one page of rows plus the unpaginated row count
type Result[T any] struct {
	Rows  []T
	Count int64
}

// Store wraps the database with tenant scoping and a per-table read cache.
// Every write bumps the owning table's generation counter, which is mixed
// into every cache key, so stale pages become unreachable immediately.
type Store struct {
	db    *gorm.DB
	cache *ristretto.Cache[string, any]
	gens  sync.Map // table name -> *atomic.Uint64
}

// New creates a tenant-scoped store over db
func New(db *gorm.DB) (*Store, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, any]{
		NumCounters: 1e5,
		MaxCost:     1 << 26, // 64 MB of cached result pages
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	return &Store{db: db, cache: cache}, nil
}

// DB exposes the underlying handle for callers that need transactions
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Wait blocks until buffered cache writes have been applied. Ristretto
// admits entries asynchronously; tests call this before asserting on hits.
func (s *Store) Wait() {
	s.cache.Wait()
}

// Invalidate discards all cached pages for a table. Called automatically by
// the write helpers; exposed for callers that write through transactions.
func (s *Store) Invalidate(table string) {
	s.generation(table).Add(1)
}

func (s *Store) generation(table string) *atomic.Uint64 {
	if g, ok := s.gens.Load(table); ok {
		return g.(*atomic.Uint64)
	}
	g, _ := s.gens.LoadOrStore(table, new(atomic.Uint64))
	return g.(*atomic.Uint64)
}

func (s *Store) cacheKey(table string, tenantID uuid.UUID, opts QueryOptions) string {
	return fmt.Sprintf("%s:g%d:%s:%+v", table, s.generation(table).Load(), tenantID, opts)
}

// Query runs a tenant-scoped paginated read. It refuses to execute until a
// tenant id is available: an unscoped query must never reach the database.
func Query[T any, PT interface {
	*T
	TenantRecord
}](s *Store, tenantID *uuid.UUID, opts QueryOptions) (*Result[T], error) {
	if tenantID == nil {
		return nil, ErrNoTenant
	}

	table := PT(new(T)).TableName()
	key := s.cacheKey(table, *tenantID, opts)
	if v, ok := s.cache.Get(key); ok {
		if res, ok := v.(*Result[T]); ok {
			return res, nil
		}
	}

	db := s.db.Model(new(T)).Where("tenant_id = ?", *tenantID)
	for col, val := range opts.Filters {
		if !identifier.MatchString(col) {
			return nil, fmt.Errorf("invalid filter column %q", col)
		}
		db = db.Where(col+" = ?", val)
	}

	var count int64
	if err := db.Count(&count).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"table": table, "op": "query"}).Error("count failed")
		return nil, err
	}

	orderBy := opts.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	if !identifier.MatchString(orderBy) {
		return nil, fmt.Errorf("invalid order column %q", orderBy)
	}
	orderDir := "desc"
	if opts.OrderDir == "asc" {
		orderDir = "asc"
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var rows []T
	err := db.Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"table": table, "op": "query"}).Error("select failed")
		return nil, err
	}

	res := &Result[T]{Rows: rows, Count: count}
	s.cache.SetWithTTL(key, res, 1, cacheTTL)
	return res, nil
}

// Get fetches a single row by primary key within the caller's tenant
func Get[T any, PT interface {
	*T
	TenantRecord
}](s *Store, tenantID *uuid.UUID, id uuid.UUID) (*T, error) {
	if tenantID == nil {
		return nil, ErrNoTenant
	}

	table := PT(new(T)).TableName()
	var row T
	err := s.db.First(&row, "id = ? AND tenant_id = ?", id, *tenantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		logrus.WithError(err).WithFields(logrus.Fields{"table": table, "op": "get"}).Error("select failed")
		return nil, err
	}
	return &row, nil
}

// Create stamps the caller's tenant id onto the record and inserts it. The
// stamp overwrites whatever the caller put in the payload.
func Create[T any, PT interface {
	*T
	TenantRecord
}](s *Store, tenantID *uuid.UUID, record PT) error {
	if tenantID == nil {
		return ErrNoTenant
	}

	table := record.TableName()
	record.SetTenantID(*tenantID)

	if err := s.db.Create(record).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"table": table, "op": "create"}).Error("insert failed")
		return err
	}

	s.Invalidate(table)
	return nil
}

// Update applies a partial update filtered by both primary key and tenant
// id. Even if the caller supplies a foreign row's id, the tenant filter
// keeps the mutation inside the caller's tenant: zero rows are affected and
// ErrNotFound is returned.
func Update[T any, PT interface {
	*T
	TenantRecord
}](s *Store, tenantID *uuid.UUID, id uuid.UUID, updates map[string]interface{}) (*T, error) {
	if tenantID == nil {
		return nil, ErrNoTenant
	}

	table := PT(new(T)).TableName()
	res := s.db.Model(new(T)).
		Where("id = ? AND tenant_id = ?", id, *tenantID).
		Updates(updates)
	if res.Error != nil {
		logrus.WithError(res.Error).WithFields(logrus.Fields{"table": table, "op": "update"}).Error("update failed")
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}

	s.Invalidate(table)
	return Get[T, PT](s, tenantID, id)
}

// Delete removes a row filtered by both primary key and tenant id
func Delete[T any, PT interface {
	*T
	TenantRecord
}](s *Store, tenantID *uuid.UUID, id uuid.UUID) error {
	if tenantID == nil {
		return ErrNoTenant
	}

	table := PT(new(T)).TableName()
	res := s.db.Where("id = ? AND tenant_id = ?", id, *tenantID).Delete(new(T))
	if res.Error != nil {
		logrus.WithError(res.Error).WithFields(logrus.Fields{"table": table, "op": "delete"}).Error("delete failed")
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	s.Invalidate(table)
	return nil
}

var storeInstance *Store

// InitStore initializes the global store instance
func InitStore(db *gorm.DB) (*Store, error) {
	s, err := New(db)
	if err != nil {
		return nil, err
	}
	storeInstance = s
	return s, nil
}

// GetStore returns the initialized store instance
func GetStore() *Store {
	return storeInstance
}

// SetStore sets the store instance (primarily for testing)
func SetStore(s *Store) {
	storeInstance = s
}
