package surrealoverlay

import (
	"context"
	"fmt"
)

// Migrate creates or updates the schema of the configured backend.
// It is refused in read-only mode.
func (a *App) Migrate(ctx context.Context, _ *MigrateCommand) error {
	a.log.Info().Str("store", string(a.config.Store)).Msg("running database migrations")
	if err := a.store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	a.log.Info().Msg("migrations completed successfully")
	return nil
}
