// Package result owns persisted per-student per-semester result records: the
// result store, the curriculum synchronization sweep, and the publication
// controller.
package result

import (
	"context"

	"go.uber.org/zap"

	"resultportal/backend/internal/grading"
	"resultportal/backend/internal/shared"
)

// Repository is the persistence contract for result records
type Repository interface {
	// FindByID returns the record, or shared.ErrNotFound.
	FindByID(ctx context.Context, id string) (*shared.ResultRecord, error)

	// FindByStudent returns every record for a student, newest semester first.
	FindByStudent(ctx context.Context, studentID string) ([]shared.ResultRecord, error)

	// FindByDepartmentSemester returns every record in the targeted cohort.
	FindByDepartmentSemester(ctx context.Context, department string, semester int32) ([]shared.ResultRecord, error)

	// FindAll returns every record.
	FindAll(ctx context.Context) ([]shared.ResultRecord, error)

	// Upsert writes the record keyed on (student_id, semester), fully
	// replacing subjects and summary while preserving the published flag and
	// creation time of an existing record. Returns the stored document.
	Upsert(ctx context.Context, rec *shared.ResultRecord) (*shared.ResultRecord, error)

	// Replace rewrites an existing record's semester, subjects, and summary
	// by ID. The published flag is never touched.
	Replace(ctx context.Context, rec *shared.ResultRecord) error

	// SetPublished flips the visibility flag on one record.
	SetPublished(ctx context.Context, id string, published bool) error

	// PublishWhere sets published=true on every record matching batch and
	// semester, and department unless department is empty (match any).
	// Returns the number of records modified.
	PublishWhere(ctx context.Context, department, batch string, semester int32) (int64, error)

	// Delete removes one record by ID, or shared.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// DeleteByStudent removes every record for a student and returns the
	// count removed.
	DeleteByStudent(ctx context.Context, studentID string) (int64, error)
}

// StudentDirectory is the collaborator contract with student management
type StudentDirectory interface {
	// Resolve returns the student for a roll number, or shared.ErrNotFound.
	Resolve(ctx context.Context, rollNo string) (*shared.Student, error)

	// Lookup returns the student by ID, or shared.ErrNotFound.
	Lookup(ctx context.Context, id string) (*shared.Student, error)
}

// CurriculumSource provides the current subject list for a cohort; a missing
// mapping yields an empty list
type CurriculumSource interface {
	Get(ctx context.Context, department string, semester int32) ([]shared.SubjectDefinition, error)
}

// Service implements the result store
type Service struct {
	repo      Repository
	students  StudentDirectory
	curricula CurriculumSource
	logger    *zap.Logger
}

// NewService creates a result Service
func NewService(repo Repository, students StudentDirectory, curricula CurriculumSource, logger *zap.Logger) *Service {
	return &Service{repo: repo, students: students, curricula: curricula, logger: logger}
}

// Upsert records the subject grades for a student's semester, replacing any
// previous submission for the same (student, semester). The summary is
// computed at write time; no record is ever stored with a stale summary.
// Department and batch are copied from the student for later filtering. The
// published flag defaults to false on first creation and is preserved on
// re-submission.
func (s *Service) Upsert(ctx context.Context, rollNo string, semester int32, subjects []shared.SubjectGrade) (*shared.ResultRecord, error) {
	if !shared.IsValidSemester(semester) {
		return nil, shared.Invalidf("semester %d out of range %d..%d", semester, shared.MinSemester, shared.MaxSemester)
	}

	student, err := s.students.Resolve(ctx, shared.NormalizeRollNo(rollNo))
	if err != nil {
		return nil, err
	}

	clean := grading.Sanitize(subjects)
	if len(clean) == 0 {
		return nil, shared.Invalidf("at least one graded subject is required")
	}
	s.warnUnrecognizedGrades(clean)

	s.prefillFromCurriculum(ctx, student.Department, semester, clean)

	summary, err := grading.ComputeSummary(clean)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.Upsert(ctx, &shared.ResultRecord{
		StudentID:    student.ID,
		Semester:     semester,
		Department:   student.Department,
		Batch:        student.Batch,
		Subjects:     clean,
		TotalPoints:  summary.TotalPoints,
		GPA:          summary.GPA,
		OverallGrade: summary.OverallGrade,
	})
	if err != nil {
		s.logger.Error("result upsert failed",
			zap.String("roll_no", student.RollNo),
			zap.Int32("semester", semester),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("result saved",
		zap.String("roll_no", student.RollNo),
		zap.Int32("semester", semester),
		zap.Float64("gpa", stored.GPA),
		zap.String("overall_grade", stored.OverallGrade))

	return stored, nil
}

// Update re-enters the marks of an existing record by ID, recomputing the
// summary. Publication state is untouched.
func (s *Service) Update(ctx context.Context, id string, semester int32, subjects []shared.SubjectGrade) (*shared.ResultRecord, error) {
	if !shared.IsValidSemester(semester) {
		return nil, shared.Invalidf("semester %d out of range %d..%d", semester, shared.MinSemester, shared.MaxSemester)
	}

	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	clean := grading.Sanitize(subjects)
	if len(clean) == 0 {
		return nil, shared.Invalidf("at least one graded subject is required")
	}
	s.warnUnrecognizedGrades(clean)

	summary, err := grading.ComputeSummary(clean)
	if err != nil {
		return nil, err
	}

	rec.Semester = semester
	rec.Subjects = clean
	rec.TotalPoints = summary.TotalPoints
	rec.GPA = summary.GPA
	rec.OverallGrade = summary.OverallGrade

	if err := s.repo.Replace(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// Get returns one record by ID
func (s *Service) Get(ctx context.Context, id string) (*shared.ResultRecord, error) {
	return s.repo.FindByID(ctx, id)
}

// ListForStudent returns every record for the student with the given roll
// number. No visibility filter is applied here; callers that serve the
// student-facing read path filter on Published themselves.
func (s *Service) ListForStudent(ctx context.Context, rollNo string) ([]shared.ResultRecord, error) {
	student, err := s.students.Resolve(ctx, shared.NormalizeRollNo(rollNo))
	if err != nil {
		return nil, err
	}
	return s.repo.FindByStudent(ctx, student.ID)
}

// ListAll returns every record with denormalized student name and roll number
// for admin listings
func (s *Service) ListAll(ctx context.Context) ([]shared.ResultWithStudent, error) {
	records, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]shared.ResultWithStudent, 0, len(records))
	for _, rec := range records {
		entry := shared.ResultWithStudent{ResultRecord: rec}
		if student, err := s.students.Lookup(ctx, rec.StudentID); err == nil {
			entry.StudentName = student.Name
			entry.RollNo = student.RollNo
		}
		out = append(out, entry)
	}
	return out, nil
}

// Delete removes one record by ID
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// DeleteForStudent removes every record for the student. Student management
// invokes this when the student entity is deleted; referential integrity for
// results lives here, not in the student collaborator.
func (s *Service) DeleteForStudent(ctx context.Context, studentID string) (int64, error) {
	count, err := s.repo.DeleteByStudent(ctx, studentID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("cascade-deleted results for student",
			zap.String("student_id", studentID),
			zap.Int64("count", count))
	}
	return count, nil
}

// warnUnrecognizedGrades logs each grade token outside the letter-grade set.
// Unknown tokens are stored and score zero rather than being rejected, so the
// warning is the only trace of a likely data-entry mistake.
func (s *Service) warnUnrecognizedGrades(subjects []shared.SubjectGrade) {
	for _, sub := range subjects {
		if !shared.IsRecognizedGrade(sub.Grade) {
			s.logger.Warn("unrecognized grade token scores zero",
				zap.String("subject", sub.SubjectName),
				zap.String("grade", sub.Grade))
		}
	}
}

// prefillFromCurriculum fills in missing codes and credits from the current
// curriculum map, matching by subject name. Caller-supplied values win; a
// missing mapping only produces a warning, since the synchronization sweep
// will reconcile the record once the curriculum is submitted.
func (s *Service) prefillFromCurriculum(ctx context.Context, department string, semester int32, subjects []shared.SubjectGrade) {
	defs, err := s.curricula.Get(ctx, department, semester)
	if err != nil {
		s.logger.Warn("curriculum lookup failed, storing caller-supplied subject metadata",
			zap.String("department", department),
			zap.Int32("semester", semester),
			zap.Error(err))
		return
	}
	if len(defs) == 0 {
		s.logger.Warn("no subjects mapped for cohort",
			zap.String("department", department),
			zap.Int32("semester", semester))
		return
	}

	byName := make(map[string]shared.SubjectDefinition, len(defs))
	for _, def := range defs {
		byName[shared.SubjectNameKey(def.Name)] = def
	}

	for i := range subjects {
		def, ok := byName[shared.SubjectNameKey(subjects[i].SubjectName)]
		if !ok {
			continue
		}
		if subjects[i].SubjectCode == "" {
			subjects[i].SubjectCode = def.Code
		}
		if subjects[i].Credits == 0 {
			subjects[i].Credits = def.Credits
		}
	}
}
