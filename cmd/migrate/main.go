package main

import (
	"context"
	"log"

	"delivery-scheduler-be/internal/config"
	"delivery-scheduler-be/internal/constant"
	"delivery-scheduler-be/internal/entity"
	"delivery-scheduler-be/internal/model"
	"delivery-scheduler-be/internal/repository/unitofwork"
	"delivery-scheduler-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "production", database.DefaultPool())
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Step 1: Setting up extensions...")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	log.Println("Step 2: Running AutoMigrate...")
	models := []interface{}{
		&model.SchedulePolicy{},
		&model.SchedulePolicyAudit{},
		&model.Subscription{},
		&model.AdminPauseRecord{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Step 3: Seeding default schedule policies...")
	ctx := context.Background()
	repo := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).SchedulePolicyRepository()
	for _, category := range constant.Categories {
		policy, _ := entity.DefaultSchedulePolicy(category)
		created, err := repo.CreateIfMissing(ctx, &policy)
		if err != nil {
			log.Fatalf("Error: Failed to seed %s policy: %v", category, err)
		}
		if created {
			log.Printf("Seeded %s policy (gap %d, daily %t)", category, policy.GapDays, policy.IsDaily)
		}
	}

	log.Println("Success: Database migration completed.")
}
