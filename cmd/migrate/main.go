// Standalone migration runner for deployments where the server is not
// allowed to migrate on boot.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/example/moviefav/internal/config"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, version, force")
		steps   = flag.Int("steps", 0, "Number of migration steps (for up/down)")
		version = flag.Uint("version", 0, "Target version (for force command)")
		dir     = flag.String("dir", "./migrations", "Migrations directory")
	)
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if cfg.DBAdapter != "postgres" {
		log.Fatalf("Migrations only work with PostgreSQL. Current adapter: %s", cfg.DBAdapter)
	}

	m, cleanup, err := newMigrator(*dir, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Migrate setup failed: %v", err)
	}
	defer cleanup()

	switch *command {
	case "up":
		err = run(m, *steps)
		if err == nil {
			fmt.Println("Migrations applied successfully")
		}
	case "down":
		if *steps > 0 {
			err = noChange(m.Steps(-*steps))
		} else {
			err = noChange(m.Down())
		}
		if err == nil {
			fmt.Println("Migrations rolled back successfully")
		}
	case "version":
		v, dirty, verr := m.Version()
		if verr == migrate.ErrNilVersion {
			fmt.Println("No migrations applied yet")
			return
		}
		if verr != nil {
			log.Fatalf("Failed to get version: %v", verr)
		}
		if dirty {
			fmt.Printf("Database is in a dirty state (version %d)\n", v)
			os.Exit(1)
		}
		fmt.Printf("Current migration version: %d\n", v)
	case "force":
		if *version == 0 {
			log.Fatal("Version required for force command (use -version flag)")
		}
		err = m.Force(int(*version))
		if err == nil {
			fmt.Printf("Forced database to version %d\n", *version)
		}
	default:
		log.Fatalf("Unknown command: %s (supported: up, down, version, force)", *command)
	}

	if err != nil {
		log.Fatalf("Migration %s failed: %v", *command, err)
	}
}

// run applies steps migrations upward; steps == 0 means all the way up.
func run(m *migrate.Migrate, steps int) error {
	if steps > 0 {
		return noChange(m.Steps(steps))
	}
	return noChange(m.Up())
}

func noChange(err error) error {
	if err == migrate.ErrNoChange {
		return nil
	}
	return err
}

func newMigrator(dir, dsn string) (*migrate.Migrate, func(), error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database ping failed: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("creating migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("creating migrate instance: %w", err)
	}

	return m, func() { db.Close() }, nil
}
