package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recepti/backend/internal/model"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrNothingToRollback is returned by Rollback when no migration is applied
var ErrNothingToRollback = errors.New("no applied migrations")

// Migration is one versioned schema change
type Migration struct {
	Name string
	Up   string
	Down string
}

// Migrations returns the embedded migrations ordered by name
func Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byName := make(map[string]*Migration)
	for _, entry := range entries {
		file := entry.Name()
		var name string
		var up bool
		switch {
		case strings.HasSuffix(file, ".up.sql"):
			name, up = strings.TrimSuffix(file, ".up.sql"), true
		case strings.HasSuffix(file, ".down.sql"):
			name = strings.TrimSuffix(file, ".down.sql")
		default:
			continue
		}

		content, err := fs.ReadFile(migrationFiles, "migrations/"+file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		m, ok := byName[name]
		if !ok {
			m = &Migration{Name: name}
			byName[name] = m
		}
		if up {
			m.Up = string(content)
		} else {
			m.Down = string(content)
		}
	}

	out := make([]Migration, 0, len(byName))
	for _, m := range byName {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %s has no up script", m.Name)
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Migrator applies the embedded SQL migrations to a PostgreSQL database
type Migrator struct {
	db  *sql.DB
	log *zap.Logger
}

// NewMigrator creates a Migrator. db may come from lib/pq or from gorm.
func NewMigrator(db *sql.DB, log *zap.Logger) *Migrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Migrator{db: db, log: log}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// Applied returns the names of applied migrations in order
func (m *Migrator) Applied(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := m.db.QueryContext(ctx, `SELECT name FROM schema_migrations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Up applies every pending migration, each in its own transaction, and
// returns how many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	migrations, err := Migrations()
	if err != nil {
		return 0, err
	}
	applied, err := m.Applied(ctx)
	if err != nil {
		return 0, err
	}
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}

	count := 0
	for _, mig := range migrations {
		if done[mig.Name] {
			m.log.Debug("skipping migration (already applied)", zap.String("name", mig.Name))
			continue
		}
		err := m.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, mig.Up); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", mig.Name, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, mig.Name); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", mig.Name, err)
			}
			return nil
		})
		if err != nil {
			return count, err
		}
		m.log.Info("applied migration", zap.String("name", mig.Name))
		count++
	}
	return count, nil
}

// Rollback reverts the most recently applied migration and returns its name
func (m *Migrator) Rollback(ctx context.Context) (string, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return "", err
	}
	if len(applied) == 0 {
		return "", ErrNothingToRollback
	}
	last := applied[len(applied)-1]

	migrations, err := Migrations()
	if err != nil {
		return "", err
	}
	var down string
	for _, mig := range migrations {
		if mig.Name == last {
			down = mig.Down
		}
	}
	if down == "" {
		return "", fmt.Errorf("migration %s has no down script", last)
	}

	err = m.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, down); err != nil {
			return fmt.Errorf("failed to roll back migration %s: %w", last, err)
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE name = $1`, last)
		return err
	})
	if err != nil {
		return "", err
	}
	m.log.Info("rolled back migration", zap.String("name", last))
	return last, nil
}

func (m *Migrator) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// RunMigrations prepares the schema for db. SQLite, used for development and
// tests, is migrated from the model; PostgreSQL runs the SQL migrations.
func RunMigrations(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("using GORM auto-migration for SQLite")
		return db.WithContext(ctx).AutoMigrate(&model.Recipe{})
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	_, err = NewMigrator(sqlDB, log).Up(ctx)
	return err
}
