package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart-todo/internal/model"
)

// DefaultDSN is used when no database URL is configured.
const DefaultDSN = "smart_todo.db"

// models are migrated in order; categories come first so the task foreign
// key has a table to point at.
var models = []any{
	&model.Category{},
	&model.Task{},
	&model.ContextEntry{},
}

// sqlitePragmas are appended to every DSN that does not set them already.
// Writers wait up to five seconds for the database lock.
var sqlitePragmas = [][2]string{
	{"_foreign_keys", "1"},
	{"_busy_timeout", "5000"},
}

// NewDB opens the SQLite database at dsn and migrates the schema. Slow and
// failed queries are reported through log; a nil log discards them.
func NewDB(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	if err := ensureDirForSQLite(dsn); err != nil {
		return nil, err
	}

	db, err := gorm.Open(sqlite.Open(withPragmas(dsn)), &gorm.Config{
		Logger: gormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return db, nil
}

func gormLogger(log *zap.Logger) logger.Interface {
	if log == nil {
		return logger.Discard
	}
	std, err := zap.NewStdLogAt(log.Named("gorm"), zap.WarnLevel)
	if err != nil {
		return logger.Discard
	}
	return logger.New(
		std,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

func withPragmas(dsn string) string {
	var missing []string
	for _, p := range sqlitePragmas {
		if !strings.Contains(dsn, p[0]+"=") {
			missing = append(missing, p[0]+"="+p[1])
		}
	}
	if len(missing) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(missing, "&")
}

// ensureDirForSQLite creates the parent directory of a file database.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	path, _, _ := strings.Cut(strings.TrimPrefix(dsn, "file:"), "?")
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
