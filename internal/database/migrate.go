package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"ecg-academy/internal/logger"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const createMigrationsTableSQL = `CREATE TABLE schema_migrations (
    version    NUMBER(19) PRIMARY KEY,
    name       VARCHAR2(255) NOT NULL,
    applied_at TIMESTAMP NOT NULL
)`

// Migration is one ordered up-migration read from the embedded source.
type Migration struct {
	Version uint
	Name    string
	SQL     string
}

// LoadMigrations returns every embedded up-migration in version order.
func LoadMigrations() ([]Migration, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not open embedded migrations: %w", err)
	}
	defer src.Close()
	return readMigrations(src)
}

func readMigrations(src source.Driver) ([]Migration, error) {
	var out []Migration
	version, err := src.First()
	for err == nil {
		r, name, readErr := src.ReadUp(version)
		if readErr != nil {
			return nil, fmt.Errorf("could not read migration %d: %w", version, readErr)
		}
		body, readErr := io.ReadAll(r)
		r.Close()
		if readErr != nil {
			return nil, fmt.Errorf("could not read migration %d: %w", version, readErr)
		}
		out = append(out, Migration{Version: version, Name: name, SQL: string(body)})
		version, err = src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not iterate migrations: %w", err)
	}
	return out, nil
}

// SplitStatements splits a migration body on ";" and drops empty and comment-only pieces.
// Oracle rejects a trailing semicolon on a single executed statement.
func SplitStatements(body string) []string {
	var out []string
	for _, part := range strings.Split(body, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, strings.TrimRight(line, " \t\r"))
		}
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, "\n"))
		}
	}
	return out
}

// RunMigrations applies pending migrations and records each one in schema_migrations.
// It returns the number of migrations applied by this call.
func RunMigrations(ctx context.Context, db *sqlx.DB, migrations []Migration) (int, error) {
	l := logger.Get()

	if _, err := db.ExecContext(ctx, createMigrationsTableSQL); err != nil {
		// ORA-00955: name is already used by an existing object
		if !strings.Contains(err.Error(), "ORA-00955") {
			return 0, fmt.Errorf("could not create schema_migrations: %w", err)
		}
	}

	var applied []uint
	if err := db.SelectContext(ctx, &applied, "SELECT version FROM schema_migrations ORDER BY version"); err != nil {
		return 0, fmt.Errorf("could not read applied migrations: %w", err)
	}
	done := make(map[uint]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	count := 0
	for _, m := range migrations {
		if done[m.Version] {
			continue
		}
		for i, stmt := range SplitStatements(m.SQL) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return count, fmt.Errorf("could not execute migration %d_%s (statement %d): %w", m.Version, m.Name, i+1, err)
			}
		}
		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (:1, :2, :3)",
			m.Version, m.Name, time.Now().UTC()); err != nil {
			return count, fmt.Errorf("could not record migration %d: %w", m.Version, err)
		}
		l.Info("Executed migration", zap.Uint("version", m.Version), zap.String("name", m.Name))
		count++
	}

	l.Info("Migrations completed successfully", zap.Int("applied", count))
	return count, nil
}
