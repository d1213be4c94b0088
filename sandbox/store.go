package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Alp4ka/gcpro/keyset"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidCursor = errors.New("invalid cursor")
	ErrDuplicateKey  = errors.New("duplicate key")
)

// Record is a stored API resource. Body holds the resource JSON exactly as
// it is served. IdempotencyKey is NULL for records created without a key.
type Record struct {
	Seq            uint64  `gorm:"primaryKey;autoIncrement"`
	ID             string  `gorm:"size:32;uniqueIndex"`
	Resource       string  `gorm:"size:64;uniqueIndex:idx_records_idempotency,priority:1"`
	Status         string  `gorm:"size:64"`
	IdempotencyKey *string `gorm:"size:128;uniqueIndex:idx_records_idempotency,priority:2"`
	Body           string  `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var _recordGetters = keyset.Getters[Record]{
	"seq": func(r Record) any { return r.Seq },
}

// Open connects to a postgres or mysql database.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver '%s'", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	return db, nil
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Record{})
}

// Insert stores rec. A reused idempotency key is reported as ErrDuplicateKey.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}

	return err
}

func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	return false
}

func (s *Store) Get(ctx context.Context, resource, id string) (*Record, error) {
	return s.first(ctx, "resource = ? AND id = ?", resource, id)
}

// ByIdempotencyKey returns the record created with key, if any.
func (s *Store) ByIdempotencyKey(ctx context.Context, resource, key string) (*Record, error) {
	return s.first(ctx, "resource = ? AND idempotency_key = ?", resource, key)
}

func (s *Store) first(ctx context.Context, query string, args ...any) (*Record, error) {
	rec := new(Record)
	err := s.db.WithContext(ctx).Where(query, args...).First(rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// Update persists the status and body of rec.
func (s *Store) Update(ctx context.Context, rec *Record) error {
	return s.db.WithContext(ctx).Model(rec).Select("status", "body", "updated_at").Updates(rec).Error
}

func (s *Store) Delete(ctx context.Context, rec *Record) error {
	return s.db.WithContext(ctx).Delete(rec).Error
}

// ListQuery selects one page of a resource collection.
type ListQuery struct {
	Resource string
	After    string
	Limit    int
	Status   []string
}

// List returns the records of one page and the token of the following page,
// empty on the last page.
func (s *Store) List(ctx context.Context, q ListQuery) ([]Record, string, error) {
	pager, err := keyset.Decode(q.Limit, q.After, keyset.Asc("seq"))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}

	db := s.db.WithContext(ctx).Model(&Record{}).Where("resource = ?", q.Resource)
	if len(q.Status) > 0 {
		db = db.Where("status IN ?", q.Status)
	}

	db, err = pager.WithLookahead().Paginate(db)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidCursor, err)
	}

	var rows []Record
	if err = db.Find(&rows).Error; err != nil {
		return nil, "", err
	}

	rows, next, err := keyset.Next(pager, rows, _recordGetters)
	if err != nil {
		return nil, "", err
	}

	return rows, next.String(), nil
}
