package result

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"resultportal/backend/internal/shared"
)

func TestUpsert_ComputesSummaryAtWriteTime(t *testing.T) {
	svc, _, _ := newTestService(testStudent())
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, "21cs042 ", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", SubjectCode: "cs301", Credits: 4, Grade: "a"},
		{SubjectName: "Networks", SubjectCode: "CS302", Credits: 3, Grade: "B+"},
	})
	require.NoError(t, err)

	assert.Equal(t, "stu-001", rec.StudentID)
	assert.Equal(t, "CSE", rec.Department)
	assert.Equal(t, "2022", rec.Batch)
	assert.Equal(t, 53.0, rec.TotalPoints)
	assert.Equal(t, 7.57, rec.GPA)
	assert.Equal(t, "A", rec.OverallGrade)
	assert.False(t, rec.Published)
	assert.Equal(t, "CS301", rec.Subjects[0].SubjectCode)
	assert.Equal(t, "A", rec.Subjects[0].Grade)
}

func TestUpsert_UnknownStudent(t *testing.T) {
	svc, repo, _ := newTestService(testStudent())

	_, err := svc.Upsert(context.Background(), "99XX000", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", Credits: 4, Grade: "A"},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, repo.records)
}

func TestUpsert_RejectsBeforePersisting(t *testing.T) {
	svc, repo, _ := newTestService(testStudent())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "21CS042", 3, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Upsert(ctx, "21CS042", 0, []shared.SubjectGrade{{SubjectName: "X", Grade: "A"}})
	assert.ErrorIs(t, err, shared.ErrValidation)

	// Subjects whose names sanitize away leave an empty list.
	_, err = svc.Upsert(ctx, "21CS042", 3, []shared.SubjectGrade{{SubjectName: "   ", Grade: "A"}})
	assert.ErrorIs(t, err, shared.ErrValidation)

	assert.Empty(t, repo.records)
}

func TestUpsert_PrefillsFromCurriculum(t *testing.T) {
	svc, _, curricula := newTestService(testStudent())
	curricula.set("CSE", 3, []shared.SubjectDefinition{
		{Name: "Data Structures", Code: "CS201", Credits: 4},
	})

	rec, err := svc.Upsert(context.Background(), "21CS042", 3, []shared.SubjectGrade{
		{SubjectName: "data structures", Grade: "A"},
	})
	require.NoError(t, err)

	require.Len(t, rec.Subjects, 1)
	assert.Equal(t, "CS201", rec.Subjects[0].SubjectCode)
	assert.Equal(t, int32(4), rec.Subjects[0].Credits)
	assert.Equal(t, 8.0, rec.GPA)
}

func TestUpsert_CallerSuppliedValuesWin(t *testing.T) {
	svc, _, curricula := newTestService(testStudent())
	curricula.set("CSE", 3, []shared.SubjectDefinition{
		{Name: "Data Structures", Code: "CS201", Credits: 4},
	})

	rec, err := svc.Upsert(context.Background(), "21CS042", 3, []shared.SubjectGrade{
		{SubjectName: "Data Structures", SubjectCode: "CS201A", Credits: 3, Grade: "A"},
	})
	require.NoError(t, err)

	assert.Equal(t, "CS201A", rec.Subjects[0].SubjectCode)
	assert.Equal(t, int32(3), rec.Subjects[0].Credits)
}

func TestUpsert_UnrecognizedGradeStoredWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := newMemRepo()
	svc := NewService(repo, newFakeStudents(testStudent()), newFakeCurricula(), zap.New(core))

	rec, err := svc.Upsert(context.Background(), "21CS042", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", SubjectCode: "CS301", Credits: 4, Grade: "X"},
		{SubjectName: "Networks", SubjectCode: "CS302", Credits: 3, Grade: "A"},
	})
	require.NoError(t, err)

	// The unknown token is kept and scores zero; it is not rejected.
	assert.Equal(t, "X", rec.Subjects[0].Grade)
	assert.Equal(t, 24.0, rec.TotalPoints)

	entries := logs.FilterMessage("unrecognized grade token scores zero").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "X", entries[0].ContextMap()["grade"])
}

func TestUpsert_ResubmissionReplacesAndKeepsPublished(t *testing.T) {
	svc, repo, _ := newTestService(testStudent())
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "21CS042", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", SubjectCode: "CS301", Credits: 4, Grade: "C"},
	})
	require.NoError(t, err)

	published, err := svc.Toggle(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, published)

	second, err := svc.Upsert(ctx, "21CS042", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", SubjectCode: "CS301", Credits: 4, Grade: "O"},
	})
	require.NoError(t, err)

	// Same record, replaced marks, visibility preserved.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 10.0, second.GPA)
	assert.True(t, repo.records[second.ID].Published)
	assert.Len(t, repo.records, 1)
}

func TestUpdate_RecomputesSummary(t *testing.T) {
	svc, _, _ := newTestService(testStudent())
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, "21CS042", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", SubjectCode: "CS301", Credits: 4, Grade: "U"},
	})
	require.NoError(t, err)
	require.Equal(t, "FAIL", rec.OverallGrade)

	updated, err := svc.Update(ctx, rec.ID, 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", SubjectCode: "CS301", Credits: 4, Grade: "B"},
	})
	require.NoError(t, err)

	assert.Equal(t, 6.0, updated.GPA)
	assert.Equal(t, "B+", updated.OverallGrade)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _, _ := newTestService(testStudent())

	_, err := svc.Update(context.Background(), "missing", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", Grade: "A"},
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListForStudent(t *testing.T) {
	svc, _, _ := newTestService(testStudent())
	ctx := context.Background()

	for sem := int32(1); sem <= 3; sem++ {
		_, err := svc.Upsert(ctx, "21CS042", sem, []shared.SubjectGrade{
			{SubjectName: "Subject", SubjectCode: "S101", Credits: 3, Grade: "A"},
		})
		require.NoError(t, err)
	}

	records, err := svc.ListForStudent(ctx, "21cs042")
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = svc.ListForStudent(ctx, "99XX000")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListAll_DenormalizesStudentInfo(t *testing.T) {
	svc, _, _ := newTestService(testStudent())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "21CS042", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", SubjectCode: "CS301", Credits: 4, Grade: "A"},
	})
	require.NoError(t, err)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Asha Verma", all[0].StudentName)
	assert.Equal(t, "21CS042", all[0].RollNo)
}

func TestDeleteForStudent_Cascades(t *testing.T) {
	other := &shared.Student{ID: "stu-002", RollNo: "21CS043", Department: "CSE", Batch: "2022"}
	svc, repo, _ := newTestService(testStudent(), other)
	ctx := context.Background()

	for sem := int32(1); sem <= 2; sem++ {
		_, err := svc.Upsert(ctx, "21CS042", sem, []shared.SubjectGrade{
			{SubjectName: "Subject", SubjectCode: "S101", Credits: 3, Grade: "A"},
		})
		require.NoError(t, err)
	}
	kept, err := svc.Upsert(ctx, "21CS043", 1, []shared.SubjectGrade{
		{SubjectName: "Subject", SubjectCode: "S101", Credits: 3, Grade: "B"},
	})
	require.NoError(t, err)

	count, err := svc.DeleteForStudent(ctx, "stu-001")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// No orphans for the deleted student; the other student's record stays.
	require.Len(t, repo.records, 1)
	_, ok := repo.records[kept.ID]
	assert.True(t, ok)
}

func TestGet(t *testing.T) {
	svc, _, _ := newTestService(testStudent())
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, "21CS042", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", SubjectCode: "CS301", Credits: 4, Grade: "A"},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestService(testStudent())
	ctx := context.Background()

	rec, err := svc.Upsert(ctx, "21CS042", 3, []shared.SubjectGrade{
		{SubjectName: "Algorithms", SubjectCode: "CS301", Credits: 4, Grade: "A"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rec.ID))
	assert.Empty(t, repo.records)
	assert.ErrorIs(t, svc.Delete(ctx, rec.ID), shared.ErrNotFound)
}
