package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"

	"github.com/hay-kot/toastq/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Latest is the target passed to Migrate to apply every known migration.
const Latest = -1

var migrationName = regexp.MustCompile(`^(\d{4})_([a-z0-9_]+)\.(up|down)\.sql$`)

// Migration is one schema step. The schema version is stored in sqlite's
// user_version pragma and equals the Version of the last applied step.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// loadMigrations reads the embedded files. Versions must be contiguous from 1
// and every step needs both an up and a down file.
func loadMigrations() ([]Migration, error) {
	files, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, f := range files {
		version, name, direction, err := parseFilename(f.Name())
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", f.Name(), err)
		}

		body, err := migrationsFS.ReadFile(path.Join("migrations", f.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if m.Name != name {
			return nil, fmt.Errorf("version %04d has conflicting names %q and %q", version, m.Name, name)
		}

		dst := &m.Up
		if direction == "down" {
			dst = &m.Down
		}
		if *dst != "" {
			return nil, fmt.Errorf("duplicate %s file for version %04d", direction, version)
		}
		*dst = string(body)
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" || m.Down == "" {
			return nil, fmt.Errorf("version %04d needs both up and down files", m.Version)
		}
		migrations = append(migrations, *m)
	}

	slices.SortFunc(migrations, func(a, b Migration) int { return a.Version - b.Version })
	for i, m := range migrations {
		if m.Version != i+1 {
			return nil, fmt.Errorf("missing migration version %04d", i+1)
		}
	}

	return migrations, nil
}

// parseFilename splits "NNNN_name.up.sql" into its parts.
func parseFilename(filename string) (version int, name, direction string, err error) {
	match := migrationName.FindStringSubmatch(filename)
	if match == nil {
		return 0, "", "", fmt.Errorf("expected NNNN_name.{up,down}.sql")
	}

	version, _ = strconv.Atoi(match[1])
	if version == 0 {
		return 0, "", "", fmt.Errorf("version must be positive")
	}

	return version, match[2], match[3], nil
}

// SchemaVersion returns the version of the last applied migration, 0 for an
// empty database.
func SchemaVersion(ctx context.Context, conn *sql.DB) (int, error) {
	var v int
	if err := conn.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Migrate moves the schema up or down until it reaches target. Pass Latest
// to apply everything. Each step runs in its own transaction.
func Migrate(ctx context.Context, conn *sql.DB, target int) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	if target == Latest {
		target = len(migrations)
	}
	if target < 0 || target > len(migrations) {
		return fmt.Errorf("target version %d out of range 0..%d", target, len(migrations))
	}

	current, err := SchemaVersion(ctx, conn)
	if err != nil {
		return err
	}
	if current > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this binary (%d)", current, len(migrations))
	}

	logger := logging.Component("db")

	for current < target {
		m := migrations[current]
		logger.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")
		if err := step(ctx, conn, m.Up, m.Version); err != nil {
			return fmt.Errorf("migration %04d (%s): %w", m.Version, m.Name, err)
		}
		current++
	}

	for current > target {
		m := migrations[current-1]
		logger.Info().Int("version", m.Version).Str("name", m.Name).Msg("reverting migration")
		if err := step(ctx, conn, m.Down, m.Version-1); err != nil {
			return fmt.Errorf("revert %04d (%s): %w", m.Version, m.Name, err)
		}
		current--
	}

	return nil
}

func migrateUp(ctx context.Context, conn *sql.DB) error {
	return Migrate(ctx, conn, Latest)
}

// step runs one migration body and records the resulting version.
func step(ctx context.Context, conn *sql.DB, body string, version int) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}

	// PRAGMA does not accept bound parameters.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}

	return tx.Commit()
}
