package main

import (
	"context"
	"log"

	"github.com/google/uuid"

	"ojttracker.com/ojttracker/config"
	"ojttracker.com/ojttracker/core"
	"ojttracker.com/ojttracker/ojt/model"
	"ojttracker.com/ojttracker/ojt/store"
	"ojttracker.com/ojttracker/utils"
)

func main() {
	cfg := config.MustLoad(".env")
	if cfg.DB.Driver == "inmem" {
		log.Fatal("seed needs a real database, set OJT_DB_DRIVER")
	}

	db, err := core.ConnectDB(cfg.DB.Driver, cfg.DB.DSN, core.LogLevelInfo)
	if err != nil {
		log.Fatal(err)
	}

	if err := store.AutoMigrate(db); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	students := []model.Student{
		{StudentNumber: "2021-0001", FirstName: "Juan", LastName: "Dela Cruz", MiddleName: utils.Ptr("Santos"), UserEmail: "juan@example.net", Department: "CCS", ShiftType: model.StudentShiftRegular, IsAccepted: true, IsActive: true},
		{StudentNumber: "2021-0002", FirstName: "Maria", LastName: "Reyes", UserEmail: "maria@example.net", Department: "CCS", ShiftType: model.StudentShiftGraveyard, IsAccepted: true, IsActive: true},
		{StudentNumber: "2021-0003", FirstName: "Pedro", LastName: "Garcia", UserEmail: "pedro@example.net", Department: "CBA", ShiftType: model.StudentShiftRegular, IsActive: true},
	}
	for i := range students {
		students[i].ID = uuid.NewString()
	}

	if err := store.New(db).UpsertStudents(context.Background(), students); err != nil {
		log.Fatalf("failed to seed students: %v", err)
	}
	log.Printf("seeded %d students", len(students))
}
