// Package pg connects to PostgreSQL with pgx, applies goose migrations from an
// fs.FS and classifies common driver errors.
//
// Connect retries with a linearly growing delay and pings before returning
// the pool:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, storage.Migrations, storage.MigrationsDir, cfg, log); err != nil {
//		return err // errors.Is(err, pg.ErrFailedToApplyMigrations)
//	}
//
// Healthcheck returns a probe for httpserver readiness checks.
// IsNotFoundError, IsDuplicateKeyError and IsForeignKeyViolationError let
// stores map driver errors to domain errors without importing pgconn.
package pg
