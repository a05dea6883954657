package result

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"resultportal/backend/internal/shared"
)

// Publication controller: a result record is either DRAFT (published=false,
// staff-only) or LIVE (published=true, exposed to the student read path).
// Batch publish only moves records toward LIVE; the single-record toggle is
// the only transition back to DRAFT.

// Toggle flips the publication state of one record and returns the new state
func (s *Service) Toggle(ctx context.Context, id string) (bool, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, err
	}

	published := !rec.Published
	if err := s.repo.SetPublished(ctx, id, published); err != nil {
		return false, err
	}

	s.logger.Info("result publication toggled",
		zap.String("result_id", id),
		zap.Bool("published", published))

	return published, nil
}

// BatchPublish sets published=true on every record matching batch and
// semester, and department unless it is the "ALL" sentinel. Returns the
// number of records transitioned; records already live are unaffected no-ops.
func (s *Service) BatchPublish(ctx context.Context, department, batch string, semester int32) (int64, error) {
	cleanBatch := strings.ToUpper(strings.TrimSpace(batch))
	if cleanBatch == "" {
		return 0, shared.Invalidf("batch is required")
	}
	if !shared.IsValidSemester(semester) {
		return 0, shared.Invalidf("semester %d out of range %d..%d", semester, shared.MinSemester, shared.MaxSemester)
	}

	dept := shared.NormalizeDepartment(department)
	if dept == shared.DepartmentAll {
		dept = "" // match any department
	}

	count, err := s.repo.PublishWhere(ctx, dept, cleanBatch, semester)
	if err != nil {
		s.logger.Error("batch publish failed",
			zap.String("department", department),
			zap.String("batch", cleanBatch),
			zap.Int32("semester", semester),
			zap.Error(err))
		return 0, err
	}

	s.logger.Info("results published",
		zap.String("department", department),
		zap.String("batch", cleanBatch),
		zap.Int32("semester", semester),
		zap.Int64("count", count))

	return count, nil
}
