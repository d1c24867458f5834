package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"

	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

// Применяет SQL миграции из каталога migrations.
// Использование: migrate [-config config.toml] up|down|status
func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	steps := flag.Int("steps", 0, "max migrations to apply, 0 means all (down defaults to 1)")
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	source := &migrate.FileMigrationSource{Dir: cfg.Database.MigrationsDir}

	switch command {
	case "up":
		n, err := migrate.ExecMax(db, "postgres", source, migrate.Up, *steps)
		if err != nil {
			log.Fatal("Failed to apply migrations: %v", err)
		}
		log.Info("Applied %d migrations", n)

	case "down":
		limit := *steps
		if limit == 0 {
			limit = 1
		}
		n, err := migrate.ExecMax(db, "postgres", source, migrate.Down, limit)
		if err != nil {
			log.Fatal("Failed to roll back migrations: %v", err)
		}
		log.Info("Rolled back %d migrations", n)

	case "status":
		records, err := migrate.GetMigrationRecords(db, "postgres")
		if err != nil {
			log.Fatal("Failed to read migration records: %v", err)
		}
		for _, rec := range records {
			log.Info("%s applied at %s", rec.Id, rec.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		log.Info("%d migrations applied", len(records))

	default:
		log.Fatal("Unknown command %q, expected up, down or status", command)
	}
}
