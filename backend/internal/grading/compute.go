// Package grading computes the per-semester grade-point summary for a list of
// subject grades. It is pure: no storage access, no side effects, identical
// input always yields an identical summary.
package grading

import (
	"math"
	"strings"

	"resultportal/backend/internal/shared"
)

// Summary is the derived grade-point summary for one semester's subjects
type Summary struct {
	TotalPoints  float64
	GPA          float64
	OverallGrade string
}

// Sanitize returns a cleaned copy of the incoming subjects: names trimmed,
// codes and grades uppercase-trimmed, a missing grade defaulted to the failing
// marker, and credits clamped to non-negative. Subjects with an empty name are
// dropped.
func Sanitize(subjects []shared.SubjectGrade) []shared.SubjectGrade {
	cleaned := make([]shared.SubjectGrade, 0, len(subjects))
	for _, s := range subjects {
		name := shared.SubjectNameKey(s.SubjectName)
		if name == "" {
			continue
		}

		credits := s.Credits
		if credits < 0 {
			credits = 0
		}

		cleaned = append(cleaned, shared.SubjectGrade{
			SubjectName: strings.TrimSpace(s.SubjectName),
			SubjectCode: shared.NormalizeCode(s.SubjectCode),
			Credits:     credits,
			Grade:       shared.NormalizeGrade(s.Grade),
		})
	}
	return cleaned
}

// ComputeSummary derives the weighted total, GPA, and overall grade band for a
// non-empty subject list.
//
// The GPA is the credit-weighted average of grade points rounded to two
// decimals; an all-zero-credit list yields GPA 0 rather than a division error.
// Any failing grade (U, RA, SA) forces the overall grade to FAIL regardless of
// GPA. An unrecognized grade token scores zero points; it is not rejected.
func ComputeSummary(subjects []shared.SubjectGrade) (Summary, error) {
	if len(subjects) == 0 {
		return Summary{}, shared.Invalidf("subject list is empty")
	}

	var totalPoints, totalCredits float64
	hasFailed := false

	for _, s := range subjects {
		grade := shared.NormalizeGrade(s.Grade)
		points := shared.GradePoints(grade)
		credits := float64(s.Credits)

		totalPoints += points * credits
		totalCredits += credits

		if shared.IsFailingGrade(grade) {
			hasFailed = true
		}
	}

	gpa := 0.0
	if totalCredits > 0 {
		gpa = round2(totalPoints / totalCredits)
	}

	return Summary{
		TotalPoints:  totalPoints,
		GPA:          gpa,
		OverallGrade: overallGrade(gpa, hasFailed),
	}, nil
}

// overallGrade bands the rounded GPA, unless a failing subject already decided
// the outcome. An all-zero-credit passing list bands its GPA of 0 to "C";
// that quirk is intentional and matched by the stored data.
func overallGrade(gpa float64, hasFailed bool) string {
	if hasFailed {
		return shared.OverallFail
	}

	switch {
	case gpa >= 9:
		return shared.GradeO
	case gpa >= 8:
		return shared.GradeAP
	case gpa >= 7:
		return shared.GradeA
	case gpa >= 6:
		return shared.GradeBP
	case gpa >= 5:
		return shared.GradeB
	default:
		return shared.GradeC
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
