package surrealoverlay

// Command is one sub-command of the overlay binary. Parse produces it and
// Main dispatches on its concrete type.
type Command interface {
	// Name returns the CLI sub-command name.
	Name() string
}

// MigrateCommand creates or updates the schema of the configured backend.
// It is safe to run repeatedly.
//
//	surrealoverlay -store postgres migrate
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

// RunCommand serves the overlay HTTP API until the context is cancelled.
//
//	surrealoverlay run
//	surrealoverlay -store memory -port 9000 run
type RunCommand struct {
	// Migrate applies the schema before serving.
	Migrate bool
}

func (c *RunCommand) Name() string {
	return "run"
}
