package surrealoverlay

import (
	"context"
	"fmt"
)

// Main is the entry point of the overlay binary. It parses args, builds the
// App and runs the selected command until ctx is cancelled.
//
// # Environment Variables
//
//	OVERLAY_STORE    - backend: surrealdb (default), postgres, memory
//	PORT             - server port (default: 8080)
//	POSTGRES_DSN     - PostgreSQL connection string
//	SURREALDB_URL    - SurrealDB WebSocket URL (default: ws://localhost:8000/rpc)
//	SURREALDB_NS     - SurrealDB namespace (default: surrealoverlay)
//	SURREALDB_DB     - SurrealDB database (default: surrealoverlay)
//	SURREALDB_USER   - SurrealDB username (default: root)
//	SURREALDB_PASS   - SurrealDB password (default: root)
//	LOG_LEVEL        - debug, info, warn, error (default: info)
//	LOG_FORMAT       - json or console (default: json)
func Main(ctx context.Context, args []string) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}

	app, err := New(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *MigrateCommand:
		if err := app.Migrate(ctx, c); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	case *RunCommand:
		if err := app.Run(ctx, c); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}

	return nil
}
