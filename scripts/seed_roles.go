package main

import (
	"log"

	"github.com/google/uuid"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/repositories"
)

func main() {
	log.Println("🚀 Starting job role seeding...")

	// Load configuration
	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	roleRepo := repositories.NewJobRoleRepository(db)

	roles := []models.JobRole{
		{
			Name:        "Backend Engineer",
			Description: "Designs and operates server-side systems: APIs, databases, queues, caching and cloud deployment.",
		},
		{
			Name:        "Frontend Engineer",
			Description: "Builds user-facing web applications with a focus on accessibility, performance and component architecture.",
		},
		{
			Name:        "Data Analyst",
			Description: "Turns raw data into decisions: SQL, dashboards, experiment analysis and stakeholder communication.",
		},
		{
			Name:        "Machine Learning Engineer",
			Description: "Ships ML systems to production: feature pipelines, model training, evaluation and serving infrastructure.",
		},
		{
			Name:        "Product Manager",
			Description: "Owns product outcomes: discovery, prioritization, roadmaps and cross-functional execution.",
		},
	}

	successCount := 0
	skipCount := 0

	for _, role := range roles {
		role.ID = uuid.New()

		if err := roleRepo.Create(&role); err != nil {
			// Most likely a duplicate name from a previous run
			log.Printf("⚠️  Skipping role '%s': %v", role.Name, err)
			skipCount++
			continue
		}

		log.Printf("✅ Seeded role: %s", role.Name)
		successCount++
	}

	log.Printf("🎉 Seeding finished: %d created, %d skipped\n", successCount, skipCount)
}
