package main

import (
	"context"
	"flag"
	"log"
	"os"

	"ojttracker.com/ojttracker/config"
	"ojttracker.com/ojttracker/core"
	ojt "ojttracker.com/ojttracker/ojt/core"
	"ojttracker.com/ojttracker/ojt/store"
)

func main() {
	file := flag.String("file", "", "roster CSV")
	dryRun := flag.Bool("dry-run", false, "parse only")
	flag.Parse()
	if *file == "" {
		log.Fatal("-file is required")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	students, err := ojt.ParseRoster(f)
	if err != nil {
		log.Fatalf("invalid roster: %v", err)
	}
	log.Printf("parsed %d students", len(students))
	if *dryRun {
		return
	}

	cfg := config.MustLoad(".env")
	db, err := core.ConnectDB(cfg.DB.Driver, cfg.DB.DSN, core.ParseLogLevel(cfg.DB.LogLevel))
	if err != nil {
		log.Fatal(err)
	}
	if err := store.New(db).UpsertStudents(context.Background(), students); err != nil {
		log.Fatalf("failed to import roster: %v", err)
	}
	log.Printf("imported %d students", len(students))
}
