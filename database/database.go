package database

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"barrot/models"
)

// DefaultPath is used when no storage file is configured.
var DefaultPath = filepath.Join("data", "barrot.db")

var (
	// ErrConflict reports a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrNotFound reports a lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrStorage covers every other failure of the underlying database.
	ErrStorage = errors.New("storage error")
)

// Store is the single-file relational store shared by all handlers.
// 功能: 封装 gorm，错误统一归为 ErrConflict / ErrNotFound / ErrStorage。
type Store struct {
	db *gorm.DB
}

// Query narrows a read. Filter keys are column names matched by equality.
type Query struct {
	Filter  map[string]any
	OrderBy string
	Limit   int
}

// Open opens (creating if needed) the sqlite file at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrapf(err, "database.Open.MkdirAll %s", path)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrapf(err, "database.Open %s", path)
	}
	// one connection: sqlite serializes writes anyway and :memory: is per-connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "database.Open.DB")
	}
	sqlDB.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

// EnsureSchema creates the four tables when absent. Safe on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return classify(err, "database.EnsureSchema")
	}
	return nil
}

// Insert stores record; gorm fills its primary key.
func (s *Store) Insert(ctx context.Context, record any) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return classify(err, "database.Insert")
	}
	return nil
}

// Get loads the row with the given id into dest.
func (s *Store) Get(ctx context.Context, dest any, id uint) error {
	if err := s.db.WithContext(ctx).First(dest, id).Error; err != nil {
		return classify(err, "database.Get")
	}
	return nil
}

// Find runs q and scans the rows into dest, which must be a slice pointer.
func (s *Store) Find(ctx context.Context, dest any, q Query) error {
	tx := s.db.WithContext(ctx)
	for column, value := range q.Filter {
		tx = tx.Where(column+" = ?", value)
	}
	if q.OrderBy != "" {
		tx = tx.Order(q.OrderBy)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if err := tx.Find(dest).Error; err != nil {
		return classify(err, "database.Find")
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return classify(err, "database.Close")
	}
	if err := sqlDB.Close(); err != nil {
		return classify(err, "database.Close")
	}
	return nil
}

// classify maps a driver error onto one of the store's error kinds while
// keeping the original cause in the message.
func classify(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return &kindError{kind: ErrConflict, cause: errors.Wrap(err, op)}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &kindError{kind: ErrNotFound, cause: errors.Wrap(err, op)}
	default:
		return &kindError{kind: ErrStorage, cause: errors.Wrap(err, op)}
	}
}

type kindError struct {
	kind  error
	cause error
}

func (e *kindError) Error() string { return e.kind.Error() + ": " + e.cause.Error() }

func (e *kindError) Is(target error) bool { return target == e.kind }

func (e *kindError) Unwrap() error { return e.cause }
