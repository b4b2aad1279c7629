package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gtfsreview/backend/internal/infrastructure/config"
	"github.com/gtfsreview/backend/internal/infrastructure/logger"
	"github.com/gtfsreview/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// command is one migrate subcommand. Commands without a migrator work on
// the migrations directory only and never open the database.
type command struct {
	usage   string
	args    int
	offline func(env *env, args []string) error
	online  func(env *env, m *migration.Migrator, args []string) error
}

type env struct {
	log  *zap.Logger
	path string
}

var commands = map[string]command{
	"up": {
		usage: "up                    Apply all pending migrations",
		online: func(_ *env, m *migration.Migrator, _ []string) error {
			return m.Up()
		},
	},
	"down": {
		usage: "down                  Roll back all migrations",
		online: func(_ *env, m *migration.Migrator, _ []string) error {
			return m.Down()
		},
	},
	"step": {
		usage: "step <n>              Apply n migrations, negative n rolls back",
		args:  1,
		online: func(_ *env, m *migration.Migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		},
	},
	"goto": {
		usage: "goto <version>        Migrate up or down to a version",
		args:  1,
		online: func(_ *env, m *migration.Migrator, args []string) error {
			version, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(version))
		},
	},
	"version": {
		usage: "version               Show the applied version",
		online: func(e *env, m *migration.Migrator, _ []string) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if version == 0 {
				e.log.Info("No migrations applied")
				return nil
			}
			e.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
			return nil
		},
	},
	"force": {
		usage: "force <version>       Mark a version as applied after a manual fix",
		args:  1,
		online: func(_ *env, m *migration.Migrator, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(version)
		},
	},
	"drop": {
		usage: "drop -confirm         Drop every table, reviews included",
		args:  1,
		online: func(_ *env, m *migration.Migrator, args []string) error {
			if args[0] != "-confirm" && args[0] != "--confirm" {
				return errors.New("drop cancelled, pass -confirm")
			}
			return m.Drop()
		},
	},
	"create": {
		usage: "create <name> [desc]  Scaffold the next numbered migration pair",
		args:  1,
		offline: func(e *env, args []string) error {
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			mf, err := migration.CreateMigration(e.path, args[0], description)
			if err != nil {
				return err
			}
			e.log.Info("Migration created",
				zap.String("version", mf.Version),
				zap.String("up_file", mf.UpPath),
				zap.String("down_file", mf.DownPath),
			)
			return nil
		},
	},
	"list": {
		usage: "list                  List migrations on disk",
		offline: func(e *env, _ []string) error {
			names, err := migration.ListMigrations(e.path)
			if err != nil {
				return err
			}
			e.log.Info("Available migrations", zap.Int("count", len(names)))
			for _, name := range names {
				fmt.Println("  -", name)
			}
			return nil
		},
	},
}

func main() {
	var migrationsPath, logLevel string
	flag.StringVar(&migrationsPath, "path", "", "migrations directory (default: database.migrations_path)")
	flag.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	cmd, ok := commands[args[0]]
	if !ok || len(args)-1 < cmd.args {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync(log) }()

	if err := run(log, cmd, args, migrationsPath); err != nil {
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(log *zap.Logger, cmd command, args []string, migrationsPath string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if migrationsPath == "" {
		migrationsPath = resolveMigrationsPath(cfg.Database.MigrationsPath)
	}
	if migrationsPath, err = filepath.Abs(migrationsPath); err != nil {
		return err
	}
	e := &env{log: log, path: migrationsPath}
	log.Info("Migration CLI started", zap.String("command", args[0]), zap.String("migrations_path", migrationsPath))

	if cmd.offline != nil {
		return cmd.offline(e, args[1:])
	}

	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("driver %q has no SQL migrations, the server creates SQLite schemas on startup", cfg.Database.Driver)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _ = m.Close() }()
	return cmd.online(e, m, args[1:])
}

// resolveMigrationsPath returns path when it exists, otherwise the same
// path relative to the repository root when running a built binary from bin/
func resolveMigrationsPath(path string) string {
	if _, err := os.Stat(path); err == nil || filepath.IsAbs(path) {
		return path
	}
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), "..", path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}

func printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(os.Stderr, "GTFS Review database migration tool\n\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:")
	for _, name := range names {
		fmt.Fprintln(os.Stderr, "  "+commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, `
The database connection comes from the GTFSREVIEW_DATABASE_* environment
variables or the config file, as for the server.`)
}
