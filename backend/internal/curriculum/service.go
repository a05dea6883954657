// Package curriculum owns the authoritative mapping from a (department,
// semester) pair to its ordered subject list.
package curriculum

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"resultportal/backend/internal/shared"
)

// Repository is the persistence contract for curriculum maps
type Repository interface {
	// Upsert replaces the subject list for (department, semester), creating
	// the map when absent, and returns the stored document.
	Upsert(ctx context.Context, m *shared.CurriculumMap) (*shared.CurriculumMap, error)

	// Find returns the map for (department, semester), or shared.ErrNotFound.
	Find(ctx context.Context, department string, semester int32) (*shared.CurriculumMap, error)

	// FindAll returns every map sorted by department then semester.
	FindAll(ctx context.Context) ([]shared.CurriculumMap, error)
}

// SyncReport aggregates the outcome of one synchronization sweep
type SyncReport struct {
	Matched int `json:"matched"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// Synchronizer reconciles stored result records after a curriculum change.
// It is an explicit contract rather than an inline side effect so the
// registry stays decoupled from result storage; the call remains synchronous
// within the upsert request.
type Synchronizer interface {
	SyncCurriculum(ctx context.Context, department string, semester int32, subjects []shared.SubjectDefinition) (SyncReport, error)
}

// Service implements the curriculum registry
type Service struct {
	repo   Repository
	sync   Synchronizer
	logger *zap.Logger
}

// NewService creates a curriculum Service
func NewService(repo Repository, sync Synchronizer, logger *zap.Logger) *Service {
	return &Service{repo: repo, sync: sync, logger: logger}
}

// Upsert stores the subject list for (department, semester), fully replacing
// any previous list, then synchronizes existing result records against it
// before reporting success. Stored results are therefore never observably
// stale relative to a committed curriculum.
func (s *Service) Upsert(ctx context.Context, department string, semester int32, subjects []shared.SubjectDefinition) (*shared.CurriculumMap, error) {
	dept := shared.NormalizeDepartment(department)
	if dept == "" {
		return nil, shared.Invalidf("department is required")
	}
	if !shared.IsValidSemester(semester) {
		return nil, shared.Invalidf("semester %d out of range %d..%d", semester, shared.MinSemester, shared.MaxSemester)
	}

	clean := normalizeSubjects(subjects)

	updated, err := s.repo.Upsert(ctx, &shared.CurriculumMap{
		Department: dept,
		Semester:   semester,
		Subjects:   clean,
	})
	if err != nil {
		s.logger.Error("curriculum upsert failed",
			zap.String("department", dept),
			zap.Int32("semester", semester),
			zap.Error(err))
		return nil, err
	}

	report, err := s.sync.SyncCurriculum(ctx, dept, semester, clean)
	if err != nil {
		s.logger.Error("curriculum synchronization failed",
			zap.String("department", dept),
			zap.Int32("semester", semester),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("curriculum updated and synced",
		zap.String("department", dept),
		zap.Int32("semester", semester),
		zap.Int("subjects", len(clean)),
		zap.Int("results_matched", report.Matched),
		zap.Int("results_updated", report.Updated),
		zap.Int("results_failed", report.Failed))

	return updated, nil
}

// Get returns the subject list for (department, semester). An unmapped pair
// yields an empty list, not an error; callers use that to warn about missing
// mappings instead of failing.
func (s *Service) Get(ctx context.Context, department string, semester int32) ([]shared.SubjectDefinition, error) {
	m, err := s.repo.Find(ctx, shared.NormalizeDepartment(department), semester)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return []shared.SubjectDefinition{}, nil
		}
		return nil, err
	}
	return m.Subjects, nil
}

// List returns every curriculum map
func (s *Service) List(ctx context.Context) ([]shared.CurriculumMap, error) {
	return s.repo.FindAll(ctx)
}

// normalizeSubjects trims names, uppercases codes, clamps credits, and drops
// entries with an empty name
func normalizeSubjects(subjects []shared.SubjectDefinition) []shared.SubjectDefinition {
	clean := make([]shared.SubjectDefinition, 0, len(subjects))
	for _, sub := range subjects {
		name := shared.SubjectNameKey(sub.Name)
		if name == "" {
			continue
		}

		credits := sub.Credits
		if credits < 0 {
			credits = 0
		}

		clean = append(clean, shared.SubjectDefinition{
			Name:    strings.TrimSpace(sub.Name),
			Code:    shared.NormalizeCode(sub.Code),
			Credits: credits,
		})
	}
	return clean
}
