// ============================================================================
// backend/internal/shared/models.go
// Shared data models and structs for MongoDB documents
// ============================================================================

package shared

import (
	"strings"
	"time"
)

// ============================================================================
// Student Models
// ============================================================================

// Student represents an enrolled student record
type Student struct {
	ID         string    `bson:"_id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	RollNo     string    `bson:"roll_no" json:"roll_no"`
	Email      string    `bson:"email" json:"email"`
	Department string    `bson:"department" json:"department"`
	Batch      string    `bson:"batch" json:"batch"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ============================================================================
// Curriculum Models
// ============================================================================

// SubjectDefinition is a single subject entry in a curriculum map
type SubjectDefinition struct {
	Name    string `bson:"name" json:"name"`
	Code    string `bson:"code" json:"code"`
	Credits int32  `bson:"credits" json:"credits"`
}

// CurriculumMap is the authoritative subject list for a (department, semester)
// pair. At most one map exists per pair; re-submissions replace the subject
// list wholesale.
type CurriculumMap struct {
	ID         string              `bson:"_id" json:"id"`
	Department string              `bson:"department" json:"department"`
	Semester   int32               `bson:"semester" json:"semester"`
	Subjects   []SubjectDefinition `bson:"subjects" json:"subjects"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ============================================================================
// Result Models
// ============================================================================

// SubjectGrade is one graded subject inside a result record
type SubjectGrade struct {
	SubjectName string `bson:"subject_name" json:"subject_name"`
	SubjectCode string `bson:"subject_code" json:"subject_code"`
	Credits     int32  `bson:"credits" json:"credits"`
	Grade       string `bson:"grade" json:"grade"` // O, A+, A, B+, B, C, U, RA, SA, W
}

// ResultRecord is a student's result for one semester, with the derived
// summary. GPA and overall grade are always recomputed from the subjects,
// never edited independently.
type ResultRecord struct {
	ID           string         `bson:"_id" json:"id"`
	StudentID    string         `bson:"student_id" json:"student_id"`
	Semester     int32          `bson:"semester" json:"semester"`
	Department   string         `bson:"department" json:"department"` // copied from student, used for filtering
	Batch        string         `bson:"batch" json:"batch"`           // copied from student, used for filtering
	Subjects     []SubjectGrade `bson:"subjects" json:"subjects"`
	TotalPoints  float64        `bson:"total_points" json:"total_points"`
	GPA          float64        `bson:"gpa" json:"gpa"`
	OverallGrade string         `bson:"overall_grade" json:"overall_grade"`
	Published    bool           `bson:"published" json:"published"`
	CreatedAt    time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ResultWithStudent extends ResultRecord with denormalized student info for
// admin listings
type ResultWithStudent struct {
	ResultRecord
	StudentName string `json:"student_name,omitempty"`
	RollNo      string `json:"roll_no,omitempty"`
}

// ============================================================================
// Grade Constants
// ============================================================================

const (
	GradeO  = "O"
	GradeAP = "A+"
	GradeA  = "A"
	GradeBP = "B+"
	GradeB  = "B"
	GradeC  = "C"
	GradeU  = "U"  // Fail
	GradeRA = "RA" // Reassessment
	GradeSA = "SA" // Shortage of attendance
	GradeW  = "W"  // Withdrawn

	OverallFail = "FAIL"

	// PlaceholderCode is assigned to stored subjects that predate the
	// curriculum map and carry no code.
	PlaceholderCode = "---"

	// DepartmentAll is the batch-publish sentinel matching any department.
	DepartmentAll = "ALL"

	MinSemester = 1
	MaxSemester = 8
)

var gradePoints = map[string]float64{
	GradeO:  10,
	GradeAP: 9,
	GradeA:  8,
	GradeBP: 7,
	GradeB:  6,
	GradeC:  5,
	GradeU:  0,
	GradeRA: 0,
	GradeSA: 0,
	GradeW:  0,
}

var failingGrades = map[string]bool{
	GradeU:  true,
	GradeRA: true,
	GradeSA: true,
}

// GradePoints returns the point value for a letter grade. An unrecognized
// token scores zero, same as the lowest failing grade, rather than erroring.
func GradePoints(grade string) float64 {
	if points, exists := gradePoints[grade]; exists {
		return points
	}
	return 0
}

// IsRecognizedGrade checks if grade is in the letter-grade set
func IsRecognizedGrade(grade string) bool {
	_, exists := gradePoints[grade]
	return exists
}

// IsFailingGrade checks if a grade forces an overall FAIL
func IsFailingGrade(grade string) bool {
	return failingGrades[grade]
}

// IsValidSemester checks if semester is in the supported 1..8 range
func IsValidSemester(semester int32) bool {
	return semester >= MinSemester && semester <= MaxSemester
}

// ============================================================================
// Normalization Helpers
// ============================================================================
// Every entry boundary to the registry and the result store runs identifiers
// through these instead of trimming ad hoc at call sites.

// NormalizeDepartment returns the canonical uppercase-trimmed department
func NormalizeDepartment(department string) string {
	return strings.ToUpper(strings.TrimSpace(department))
}

// NormalizeRollNo returns the canonical uppercase-trimmed roll number
func NormalizeRollNo(rollNo string) string {
	return strings.ToUpper(strings.TrimSpace(rollNo))
}

// NormalizeCode returns the canonical uppercase-trimmed subject code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeGrade returns the canonical uppercase-trimmed grade token,
// defaulting a missing grade to the failing marker
func NormalizeGrade(grade string) string {
	g := strings.ToUpper(strings.TrimSpace(grade))
	if g == "" {
		return GradeU
	}
	return g
}

// NormalizeEmail returns the canonical lowercase-trimmed email
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SubjectNameKey returns the case-insensitive match key used when reconciling
// stored subjects against a curriculum map
func SubjectNameKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// CanonicalizeSubjects converts legacy subject entries onto the single graded
// shape: a missing grade becomes the failing marker and negative credits are
// clamped to zero. Records written under the old marks-only scheme decode
// with empty grades; canonicalizing at the store boundary keeps read paths
// free of field-presence branching.
func CanonicalizeSubjects(subjects []SubjectGrade) []SubjectGrade {
	for i := range subjects {
		subjects[i].Grade = NormalizeGrade(subjects[i].Grade)
		if subjects[i].Credits < 0 {
			subjects[i].Credits = 0
		}
	}
	return subjects
}
