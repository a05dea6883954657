package result

import (
	"context"

	"go.uber.org/zap"

	"resultportal/backend/internal/curriculum"
	"resultportal/backend/internal/grading"
	"resultportal/backend/internal/shared"
)

// SyncCurriculum reconciles every stored result in the (department, semester)
// cohort against a freshly committed curriculum. Implements
// curriculum.Synchronizer.
//
// For each record, stored subjects are matched to curriculum entries by
// case-insensitive trimmed name. A match overwrites differing code and
// credits with the curriculum's values; the grade is never altered by a
// curriculum edit. An unmatched subject keeps its grade and gets the
// placeholder code if it has none, so every stored subject always carries a
// non-empty code. Only records that actually changed are recomputed and
// persisted; a second run with the same curriculum is a no-op.
//
// One record's failure never aborts the sweep: failures are logged, counted
// in the report, and the remaining cohort is still synchronized. The sweep is
// not transactional; a crash mid-sweep is tolerable because re-running it is
// idempotent.
func (s *Service) SyncCurriculum(ctx context.Context, department string, semester int32, subjects []shared.SubjectDefinition) (curriculum.SyncReport, error) {
	var report curriculum.SyncReport

	records, err := s.repo.FindByDepartmentSemester(ctx, department, semester)
	if err != nil {
		return report, err
	}
	report.Matched = len(records)

	defs := make(map[string]shared.SubjectDefinition, len(subjects))
	for _, def := range subjects {
		defs[shared.SubjectNameKey(def.Name)] = def
	}

	for i := range records {
		rec := records[i]

		reconciled, dirty := reconcileSubjects(rec.Subjects, defs)
		if !dirty {
			continue
		}

		summary, err := grading.ComputeSummary(reconciled)
		if err != nil {
			s.logger.Warn("skipping malformed result during sync",
				zap.String("result_id", rec.ID),
				zap.Error(err))
			report.Failed++
			continue
		}

		rec.Subjects = reconciled
		rec.TotalPoints = summary.TotalPoints
		rec.GPA = summary.GPA
		rec.OverallGrade = summary.OverallGrade

		if err := s.repo.Replace(ctx, &rec); err != nil {
			s.logger.Error("failed to persist synced result",
				zap.String("result_id", rec.ID),
				zap.Error(err))
			report.Failed++
			continue
		}
		report.Updated++
	}

	return report, nil
}

// reconcileSubjects returns the subject list aligned with the curriculum map
// and whether anything changed. Entries with no subject name are malformed
// legacy data and are dropped.
func reconcileSubjects(subjects []shared.SubjectGrade, defs map[string]shared.SubjectDefinition) ([]shared.SubjectGrade, bool) {
	out := make([]shared.SubjectGrade, 0, len(subjects))
	dirty := false

	for _, sub := range subjects {
		key := shared.SubjectNameKey(sub.SubjectName)
		if key == "" {
			dirty = true
			continue
		}

		if def, ok := defs[key]; ok {
			if sub.SubjectCode != def.Code || sub.Credits != def.Credits {
				sub.SubjectCode = def.Code
				sub.Credits = def.Credits
				dirty = true
			}
		} else if sub.SubjectCode == "" {
			// Subject dropped from the curriculum or predating it: grade
			// stays, but it must not be left without a code.
			sub.SubjectCode = shared.PlaceholderCode
			dirty = true
		}

		out = append(out, sub)
	}

	return out, dirty
}
