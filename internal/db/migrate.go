package db

import (
	"context"
	"embed"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every *.up.sql file not yet recorded in
// schema_migrations, in file name order. It returns the applied names.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	files, err := migrationsFS.ReadDir("migrations")
	if err != nil { return nil, err }
	_, err = pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version text PRIMARY KEY)`)
	if err != nil { return nil, err }

	names := make([]string, 0, len(files))
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".up.sql") { names = append(names, f.Name()) }
	}
	sort.Strings(names)

	var applied []string
	for _, name := range names {
		var exists bool
		if err := pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, name).Scan(&exists); err != nil {
			return applied, err
		}
		if exists { continue }

		b, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil { return applied, err }

		// no arguments: pgx sends it over the simple protocol, so one file may hold many statements
		if _, err := pool.Exec(ctx, string(b)); err != nil { return applied, err }
		if _, err := pool.Exec(ctx, `INSERT INTO schema_migrations(version) VALUES($1)`, name); err != nil { return applied, err }
		slog.Info("migration applied", "version", name)
		applied = append(applied, name)
	}
	return applied, nil
}
