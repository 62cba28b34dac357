package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/cmlabs-hris/absence-backend-go/internal/config"
	"github.com/cmlabs-hris/absence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/absence-backend-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/absence-backend-go/internal/seed"
	serviceAuth "github.com/cmlabs-hris/absence-backend-go/internal/service/auth"
)

func main() {
	path := flag.String("file", "db/seed/example.yaml", "seed YAML file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("failed to open seed file: %v", err)
	}
	data, err := seed.Load(f)
	f.Close()
	if err != nil {
		log.Fatalf("failed to read seed file: %v", err)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), 2, 1)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	seeder := &seed.Seeder{
		Transactor:   postgresql.NewTransactor(db),
		Districts:    postgresql.NewDistrictRepository(db),
		Teams:        postgresql.NewTeamRepository(db),
		Workers:      postgresql.NewWorkerRepository(db),
		Memberships:  postgresql.NewTeamMembershipRepository(db),
		Users:        postgresql.NewUserRepository(db),
		HashPassword: serviceAuth.HashPassword,
	}

	sum, err := seeder.Run(context.Background(), data)
	if err != nil {
		log.Fatalf("seed failed: %v", err)
	}
	log.Printf("seeded %d districts, %d teams, %d users, %d workers", sum.Districts, sum.Teams, sum.Users, sum.Workers)
}
