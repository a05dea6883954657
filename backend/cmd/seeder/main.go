package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"resultportal/backend/internal/curriculum"
	"resultportal/backend/internal/result"
	"resultportal/backend/internal/shared"
	"resultportal/backend/internal/student"
)

// StudentSeed holds one demo student row
type StudentSeed struct {
	Name       string
	RollNo     string
	Email      string
	Department string
	Batch      string
}

// ResultSeed holds one demo result submission
type ResultSeed struct {
	RollNo   string
	Semester int32
	Subjects []shared.SubjectGrade
}

type curriculumSource struct {
	svc *curriculum.Service
}

func (c *curriculumSource) Get(ctx context.Context, department string, semester int32) ([]shared.SubjectDefinition, error) {
	return c.svc.Get(ctx, department, semester)
}

type resultCascade struct {
	svc *result.Service
}

func (c *resultCascade) DeleteForStudent(ctx context.Context, studentID string) (int64, error) {
	return c.svc.DeleteForStudent(ctx, studentID)
}

func main() {
	log.Println("Starting database seeder...")

	shared.LoadEnv(".env")

	cfg, err := shared.LoadServiceConfig("seeder")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, db, err := shared.ConnectMongoDB(&cfg.MongoDB)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer shared.DisconnectMongoDB(client)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Clean start.
	if err := db.Drop(ctx); err != nil {
		log.Fatalf("Failed to drop database: %v", err)
	}
	if err := shared.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	log.Println("Database cleared.")

	logger := zap.NewNop()

	source := &curriculumSource{}
	cascade := &resultCascade{}

	studentSvc := student.NewService(student.NewMongoStore(db, cfg.QueryTimeout), cascade, logger)
	resultSvc := result.NewService(result.NewMongoStore(db, cfg.QueryTimeout), studentSvc, source, logger)
	curriculumSvc := curriculum.NewService(curriculum.NewMongoStore(db, cfg.QueryTimeout), resultSvc, logger)

	source.svc = curriculumSvc
	cascade.svc = resultSvc

	// --- 1. Students ---
	studentSeeds := []StudentSeed{
		{"Asha Verma", "21CS042", "asha.verma@example.com", "CSE", "2022"},
		{"Ravi Kumar", "21CS043", "ravi.kumar@example.com", "CSE", "2022"},
		{"Meena Iyer", "21EC010", "meena.iyer@example.com", "ECE", "2022"},
	}
	for _, seed := range studentSeeds {
		if _, err := studentSvc.Create(ctx, &shared.Student{
			Name:       seed.Name,
			RollNo:     seed.RollNo,
			Email:      seed.Email,
			Department: seed.Department,
			Batch:      seed.Batch,
		}); err != nil {
			log.Fatalf("Failed to seed student %s: %v", seed.RollNo, err)
		}
	}
	log.Printf("Seeded %d students.", len(studentSeeds))

	// --- 2. Curriculum (CSE semester 3) ---
	if _, err := curriculumSvc.Upsert(ctx, "CSE", 3, []shared.SubjectDefinition{
		{Name: "Data Structures", Code: "CS201", Credits: 4},
		{Name: "Computer Organization", Code: "CS202", Credits: 3},
		{Name: "Discrete Mathematics", Code: "MA201", Credits: 4},
	}); err != nil {
		log.Fatalf("Failed to seed curriculum: %v", err)
	}
	log.Println("Seeded CSE semester 3 curriculum.")

	// --- 3. Results (codes and credits prefilled from the curriculum) ---
	resultSeeds := []ResultSeed{
		{"21CS042", 3, []shared.SubjectGrade{
			{SubjectName: "Data Structures", Grade: "A"},
			{SubjectName: "Computer Organization", Grade: "B+"},
			{SubjectName: "Discrete Mathematics", Grade: "O"},
		}},
		{"21CS043", 3, []shared.SubjectGrade{
			{SubjectName: "Data Structures", Grade: "B"},
			{SubjectName: "Computer Organization", Grade: "U"},
			{SubjectName: "Discrete Mathematics", Grade: "C"},
		}},
		{"21EC010", 3, []shared.SubjectGrade{
			{SubjectName: "Signals and Systems", SubjectCode: "EC201", Credits: 4, Grade: "A+"},
			{SubjectName: "Network Theory", SubjectCode: "EC202", Credits: 3, Grade: "A"},
		}},
	}

	var firstID string
	for _, seed := range resultSeeds {
		rec, err := resultSvc.Upsert(ctx, seed.RollNo, seed.Semester, seed.Subjects)
		if err != nil {
			log.Fatalf("Failed to seed result for %s: %v", seed.RollNo, err)
		}
		if firstID == "" {
			firstID = rec.ID
		}
		log.Printf("Seeded result %s: GPA %.2f overall %s", seed.RollNo, rec.GPA, rec.OverallGrade)
	}

	// --- 4. Publish one record so the student route has something to show ---
	if _, err := resultSvc.Toggle(ctx, firstID); err != nil {
		log.Fatalf("Failed to publish seeded result: %v", err)
	}
	log.Println("Published one seeded result.")

	log.Println("Seeding complete.")
}
