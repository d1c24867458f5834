package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

var specializations = []string{
	"Cardiology",
	"Dermatology",
	"General Medicine",
	"Neurology",
	"Pediatrics",
	"Orthopedics",
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Заполняет справочник врачей тестовыми данными для локальной разработки.
func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	count := flag.Int("count", 10, "number of doctors to create")
	hospitalID := flag.String("hospital", "H001", "hospital ID")
	departments := flag.Int("departments", 3, "number of departments")
	seed := flag.Uint64("seed", 0, "random seed, 0 for random")
	flag.Parse()

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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	repo := doctorRepo.NewRepository(client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.DoctorsCollection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		log.Fatal("Failed to ensure indexes: %v", err)
	}

	faker := gofakeit.New(*seed)
	for i := 0; i < *count; i++ {
		d := fakeDoctor(faker, *hospitalID, fmt.Sprintf("D%03d", i%*departments+1))
		if err := repo.Upsert(ctx, d); err != nil {
			log.Fatal("Failed to upsert doctor: %v", err)
		}
		log.Info("Doctor seeded: id=%s, name=%s, department=%s, days=%v", d.ID, d.FullName, d.DepartmentID, d.AvailableDays)
	}

	log.Info("Seeded %d doctors into %s.%s", *count, cfg.Mongo.Database, cfg.Mongo.DoctorsCollection)
}

func fakeDoctor(faker *gofakeit.Faker, hospitalID, departmentID string) *domain.Doctor {
	days := make([]string, 0, len(weekdays))
	for _, day := range weekdays {
		if faker.Bool() {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		days = append(days, weekdays[0])
	}

	return &domain.Doctor{
		ID:             primitive.NewObjectID().Hex(),
		FullName:       "Dr. " + faker.Name(),
		Specialization: faker.RandomString(specializations),
		HospitalID:     hospitalID,
		DepartmentID:   departmentID,
		AvailableDays:  days,
	}
}
