package surrealoverlay

import (
	"flag"
	"fmt"
	"io"
)

const usage = `subcommand required

Usage: surrealoverlay [flags] <command>

Commands:
  run       Start the overlay server
  migrate   Create or update the backend schema

Examples:
  surrealoverlay run                          # SurrealDB at $SURREALDB_URL
  surrealoverlay -store memory run            # In-process store, nothing persisted
  surrealoverlay -store postgres migrate      # Apply PostgreSQL migrations
  surrealoverlay -config overlay.yaml run     # Settings from a YAML file
  surrealoverlay -port=8090 -read-only run    # Start in maintenance mode`

// Parse parses command line arguments and returns the command to execute and
// the configuration shared by all commands.
//
// Settings are layered: defaults, then the -config file, then environment
// variables, then flags given explicitly on the command line.
func Parse(args []string) (Command, *Config, error) {
	flagSet := flag.NewFlagSet("surrealoverlay", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var (
		configPath = flagSet.String("config", "", "Path to a YAML config file")
		storeKind  = flagSet.String("store", "", "Backend: surrealdb, postgres or memory")
		port       = flagSet.String("port", "", "Server port")
		readOnly   = flagSet.Bool("read-only", false, "Start in read-only mode")
		logLevel   = flagSet.String("log-level", "", "Log level: debug, info, warn, error")
		logFormat  = flagSet.String("log-format", "", "Log format: json or console")
		logFile    = flagSet.String("log-file", "", "Append logs to this file instead of stdout")
		migrate    = flagSet.Bool("migrate", false, "Apply the schema before serving (run only)")
	)

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}

	remainingArgs := flagSet.Args()
	if len(remainingArgs) == 0 {
		return nil, nil, fmt.Errorf("%s", usage)
	}

	var cmd Command
	switch remainingArgs[0] {
	case "run":
		cmd = &RunCommand{Migrate: *migrate}
	case "migrate":
		cmd = &MigrateCommand{}
	default:
		return nil, nil, fmt.Errorf("unknown command: %s\n\nValid commands: run, migrate", remainingArgs[0])
	}

	config := DefaultConfig()
	if *configPath != "" {
		if err := LoadConfigFile(*configPath, config); err != nil {
			return nil, nil, err
		}
	}
	applyEnv(config)

	flagSet.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "store":
			config.Store = StoreKind(*storeKind)
		case "port":
			config.ServerPort = *port
		case "read-only":
			config.ReadOnly = *readOnly
		case "log-level":
			config.Log.Level = *logLevel
		case "log-format":
			config.Log.Format = *logFormat
		case "log-file":
			config.Log.File = *logFile
		}
	})

	if !config.Store.Valid() {
		return nil, nil, fmt.Errorf("invalid store: %q (must be surrealdb, postgres or memory)", config.Store)
	}

	return cmd, config, nil
}
