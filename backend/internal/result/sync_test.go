package result

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resultportal/backend/internal/shared"
)

func seedRecord(repo *memRepo, id string, rec shared.ResultRecord) {
	rec.ID = id
	repo.records[id] = &rec
}

func TestSync_BackPropagatesCurriculumMetadata(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	seedRecord(repo, "res-legacy", shared.ResultRecord{
		StudentID:  "stu-001",
		Semester:   3,
		Department: "CSE",
		Batch:      "2022",
		Subjects: []shared.SubjectGrade{
			{SubjectName: "Data Structures", SubjectCode: "---", Credits: 0, Grade: "A"},
		},
		TotalPoints:  0,
		GPA:          0,
		OverallGrade: "C",
	})

	report, err := svc.SyncCurriculum(ctx, "CSE", 3, []shared.SubjectDefinition{
		{Name: "Data Structures", Code: "CS201", Credits: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Matched)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 0, report.Failed)

	rec := repo.records["res-legacy"]
	require.Len(t, rec.Subjects, 1)
	assert.Equal(t, "CS201", rec.Subjects[0].SubjectCode)
	assert.Equal(t, int32(4), rec.Subjects[0].Credits)
	// Student performance is never altered by a curriculum edit.
	assert.Equal(t, "A", rec.Subjects[0].Grade)
	// Summary recomputed with credits=4: 8*4/4.
	assert.Equal(t, 32.0, rec.TotalPoints)
	assert.Equal(t, 8.0, rec.GPA)
	assert.Equal(t, "A+", rec.OverallGrade)
}

func TestSync_Idempotent(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	seedRecord(repo, "res-001", shared.ResultRecord{
		StudentID: "stu-001", Semester: 3, Department: "CSE", Batch: "2022",
		Subjects: []shared.SubjectGrade{
			{SubjectName: "Data Structures", SubjectCode: "---", Credits: 0, Grade: "A"},
		},
	})

	curriculum := []shared.SubjectDefinition{{Name: "Data Structures", Code: "CS201", Credits: 4}}

	first, err := svc.SyncCurriculum(ctx, "CSE", 3, curriculum)
	require.NoError(t, err)
	require.Equal(t, 1, first.Updated)

	callsAfterFirst := repo.replaceCalls

	second, err := svc.SyncCurriculum(ctx, "CSE", 3, curriculum)
	require.NoError(t, err)

	// The second sweep finds nothing dirty and writes nothing.
	assert.Equal(t, 1, second.Matched)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, callsAfterFirst, repo.replaceCalls)
}

func TestSync_MissingCodeGetsPlaceholder(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	seedRecord(repo, "res-001", shared.ResultRecord{
		StudentID: "stu-001", Semester: 3, Department: "CSE", Batch: "2022",
		Subjects: []shared.SubjectGrade{
			// Dropped from the curriculum; no code on record.
			{SubjectName: "Pascal Programming", SubjectCode: "", Credits: 3, Grade: "B"},
		},
	})

	report, err := svc.SyncCurriculum(ctx, "CSE", 3, []shared.SubjectDefinition{
		{Name: "Data Structures", Code: "CS201", Credits: 4},
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)

	sub := repo.records["res-001"].Subjects[0]
	assert.Equal(t, shared.PlaceholderCode, sub.SubjectCode)
	assert.Equal(t, "B", sub.Grade)
	assert.Equal(t, int32(3), sub.Credits)
}

func TestSync_TouchesOnlyTargetedCohort(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	seedRecord(repo, "res-cse", shared.ResultRecord{
		StudentID: "stu-001", Semester: 3, Department: "CSE", Batch: "2022",
		Subjects: []shared.SubjectGrade{
			{SubjectName: "Data Structures", SubjectCode: "---", Credits: 0, Grade: "A"},
		},
	})
	seedRecord(repo, "res-ece", shared.ResultRecord{
		StudentID: "stu-002", Semester: 3, Department: "ECE", Batch: "2022",
		Subjects: []shared.SubjectGrade{
			{SubjectName: "Data Structures", SubjectCode: "---", Credits: 0, Grade: "A"},
		},
	})

	report, err := svc.SyncCurriculum(ctx, "CSE", 3, []shared.SubjectDefinition{
		{Name: "Data Structures", Code: "CS201", Credits: 4},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Matched)

	assert.Equal(t, "CS201", repo.records["res-cse"].Subjects[0].SubjectCode)
	assert.Equal(t, "---", repo.records["res-ece"].Subjects[0].SubjectCode)
}

func TestSync_NeverTouchesPublished(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	seedRecord(repo, "res-live", shared.ResultRecord{
		StudentID: "stu-001", Semester: 3, Department: "CSE", Batch: "2022",
		Published: true,
		Subjects: []shared.SubjectGrade{
			{SubjectName: "Data Structures", SubjectCode: "---", Credits: 0, Grade: "A"},
		},
	})

	_, err := svc.SyncCurriculum(ctx, "CSE", 3, []shared.SubjectDefinition{
		{Name: "Data Structures", Code: "CS201", Credits: 4},
	})
	require.NoError(t, err)

	assert.True(t, repo.records["res-live"].Published)
}

func TestSync_OneFailureDoesNotAbortSweep(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	for _, id := range []string{"res-a", "res-b", "res-c"} {
		seedRecord(repo, id, shared.ResultRecord{
			StudentID: "stu-" + id, Semester: 3, Department: "CSE", Batch: "2022",
			Subjects: []shared.SubjectGrade{
				{SubjectName: "Data Structures", SubjectCode: "---", Credits: 0, Grade: "A"},
			},
		})
	}
	repo.replaceErrOn["res-b"] = errors.New("write failed")

	report, err := svc.SyncCurriculum(ctx, "CSE", 3, []shared.SubjectDefinition{
		{Name: "Data Structures", Code: "CS201", Credits: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Matched)
	assert.Equal(t, 2, report.Updated)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "CS201", repo.records["res-a"].Subjects[0].SubjectCode)
	assert.Equal(t, "CS201", repo.records["res-c"].Subjects[0].SubjectCode)
}

func TestSync_CaseInsensitiveNameMatch(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	seedRecord(repo, "res-001", shared.ResultRecord{
		StudentID: "stu-001", Semester: 3, Department: "CSE", Batch: "2022",
		Subjects: []shared.SubjectGrade{
			{SubjectName: "data structures ", SubjectCode: "OLD01", Credits: 3, Grade: "B+"},
		},
	})

	report, err := svc.SyncCurriculum(ctx, "CSE", 3, []shared.SubjectDefinition{
		{Name: "Data Structures", Code: "CS201", Credits: 4},
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)

	sub := repo.records["res-001"].Subjects[0]
	assert.Equal(t, "CS201", sub.SubjectCode)
	assert.Equal(t, int32(4), sub.Credits)
	assert.Equal(t, "B+", sub.Grade)
}
