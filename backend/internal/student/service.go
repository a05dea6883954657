// Package student manages the student records the result store references.
// Results are not owned here; deleting a student hands referential integrity
// to the result cascade.
package student

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resultportal/backend/internal/shared"
)

// Repository is the persistence contract for students
type Repository interface {
	// Insert stores a new student; shared.ErrConflict on a duplicate roll.
	Insert(ctx context.Context, s *shared.Student) error

	// InsertMany stores a batch, continuing past duplicate rolls. Returns
	// the number inserted and the roll numbers that conflicted.
	InsertMany(ctx context.Context, students []shared.Student) (int, []string, error)

	// FindByID returns the student, or shared.ErrNotFound.
	FindByID(ctx context.Context, id string) (*shared.Student, error)

	// FindByRoll returns the student with the given roll number, or
	// shared.ErrNotFound.
	FindByRoll(ctx context.Context, rollNo string) (*shared.Student, error)

	// FindAll returns every student.
	FindAll(ctx context.Context) ([]shared.Student, error)

	// Update rewrites the student's mutable fields by ID.
	Update(ctx context.Context, s *shared.Student) error

	// Delete removes the student, or shared.ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// ResultCascade removes the result records owned by a deleted student
type ResultCascade interface {
	DeleteForStudent(ctx context.Context, studentID string) (int64, error)
}

// Update carries the mutable student fields for an admin edit; empty fields
// are left unchanged
type Update struct {
	Name       string
	Email      string
	Department string
	Batch      string
}

// BulkReport summarizes a bulk enrollment
type BulkReport struct {
	Inserted  int      `json:"inserted"`
	Skipped   int      `json:"skipped"`
	Conflicts []string `json:"conflicts,omitempty"`
}

// Service implements student management
type Service struct {
	repo    Repository
	results ResultCascade
	logger  *zap.Logger
}

// NewService creates a student Service
func NewService(repo Repository, results ResultCascade, logger *zap.Logger) *Service {
	return &Service{repo: repo, results: results, logger: logger}
}

// Create registers a new student with normalized identifiers
func (s *Service) Create(ctx context.Context, in *shared.Student) (*shared.Student, error) {
	student, err := normalize(in)
	if err != nil {
		return nil, err
	}
	student.ID = uuid.NewString()

	if err := s.repo.Insert(ctx, student); err != nil {
		return nil, err
	}

	s.logger.Info("student registered",
		zap.String("roll_no", student.RollNo),
		zap.String("department", student.Department))

	return student, nil
}

// BulkCreate registers a batch of students, skipping entries that fail
// normalization and continuing past duplicate roll numbers
func (s *Service) BulkCreate(ctx context.Context, in []shared.Student) (*BulkReport, error) {
	report := &BulkReport{}

	toInsert := make([]shared.Student, 0, len(in))
	for i := range in {
		student, err := normalize(&in[i])
		if err != nil {
			report.Skipped++
			continue
		}
		student.ID = uuid.NewString()
		toInsert = append(toInsert, *student)
	}

	if len(toInsert) == 0 {
		if report.Skipped > 0 {
			return nil, shared.Invalidf("no valid student entries in upload")
		}
		return nil, shared.Invalidf("student list is empty")
	}

	inserted, conflicts, err := s.repo.InsertMany(ctx, toInsert)
	if err != nil {
		return nil, err
	}
	report.Inserted = inserted
	report.Conflicts = conflicts

	s.logger.Info("bulk enrollment completed",
		zap.Int("inserted", report.Inserted),
		zap.Int("skipped", report.Skipped),
		zap.Int("duplicates", len(conflicts)))

	return report, nil
}

// UpdateStudent applies the non-empty fields of an admin edit
func (s *Service) UpdateStudent(ctx context.Context, id string, upd Update) (*shared.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(upd.Name); v != "" {
		student.Name = v
	}
	if v := shared.NormalizeEmail(upd.Email); v != "" {
		student.Email = v
	}
	if v := shared.NormalizeDepartment(upd.Department); v != "" {
		student.Department = v
	}
	if v := strings.TrimSpace(upd.Batch); v != "" {
		student.Batch = v
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Resolve returns the student for a roll number. This is the collaborator
// contract the result store depends on.
func (s *Service) Resolve(ctx context.Context, rollNo string) (*shared.Student, error) {
	return s.repo.FindByRoll(ctx, shared.NormalizeRollNo(rollNo))
}

// Lookup returns the student by ID
func (s *Service) Lookup(ctx context.Context, id string) (*shared.Student, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns every student
func (s *Service) List(ctx context.Context) ([]shared.Student, error) {
	return s.repo.FindAll(ctx)
}

// Delete removes the student and cascades to their result records, so no
// orphaned results remain
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	if _, err := s.results.DeleteForStudent(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("student and their results removed", zap.String("student_id", id))
	return nil
}

func normalize(in *shared.Student) (*shared.Student, error) {
	student := &shared.Student{
		Name:       strings.TrimSpace(in.Name),
		RollNo:     shared.NormalizeRollNo(in.RollNo),
		Email:      shared.NormalizeEmail(in.Email),
		Department: shared.NormalizeDepartment(in.Department),
		Batch:      strings.TrimSpace(in.Batch),
	}

	switch {
	case student.Name == "":
		return nil, shared.Invalidf("student name is required")
	case student.RollNo == "":
		return nil, shared.Invalidf("roll number is required")
	case student.Department == "":
		return nil, shared.Invalidf("department is required")
	case student.Batch == "":
		return nil, shared.Invalidf("batch is required")
	}

	return student, nil
}
