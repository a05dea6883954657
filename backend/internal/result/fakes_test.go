package result

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"resultportal/backend/internal/shared"
)

// memRepo is an in-memory Repository used by the package tests
type memRepo struct {
	records      map[string]*shared.ResultRecord
	seq          int
	replaceCalls int
	replaceErrOn map[string]error // inject per-record failures
}

func newMemRepo() *memRepo {
	return &memRepo{
		records:      make(map[string]*shared.ResultRecord),
		replaceErrOn: make(map[string]error),
	}
}

func (m *memRepo) FindByID(_ context.Context, id string) (*shared.ResultRecord, error) {
	if rec, ok := m.records[id]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, shared.NotFoundf("result %s", id)
}

func (m *memRepo) FindByStudent(_ context.Context, studentID string) ([]shared.ResultRecord, error) {
	var out []shared.ResultRecord
	for _, rec := range m.records {
		if rec.StudentID == studentID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memRepo) FindByDepartmentSemester(_ context.Context, department string, semester int32) ([]shared.ResultRecord, error) {
	var out []shared.ResultRecord
	for _, rec := range m.records {
		if rec.Department == department && rec.Semester == semester {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memRepo) FindAll(_ context.Context) ([]shared.ResultRecord, error) {
	var out []shared.ResultRecord
	for _, rec := range m.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (m *memRepo) Upsert(_ context.Context, rec *shared.ResultRecord) (*shared.ResultRecord, error) {
	for _, existing := range m.records {
		if existing.StudentID == rec.StudentID && existing.Semester == rec.Semester {
			existing.Department = rec.Department
			existing.Batch = rec.Batch
			existing.Subjects = rec.Subjects
			existing.TotalPoints = rec.TotalPoints
			existing.GPA = rec.GPA
			existing.OverallGrade = rec.OverallGrade
			cp := *existing
			return &cp, nil
		}
	}

	m.seq++
	stored := *rec
	stored.ID = fmt.Sprintf("res-%03d", m.seq)
	stored.Published = false
	m.records[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (m *memRepo) Replace(_ context.Context, rec *shared.ResultRecord) error {
	m.replaceCalls++
	if err, ok := m.replaceErrOn[rec.ID]; ok {
		return err
	}
	existing, ok := m.records[rec.ID]
	if !ok {
		return shared.NotFoundf("result %s", rec.ID)
	}
	existing.Semester = rec.Semester
	existing.Subjects = rec.Subjects
	existing.TotalPoints = rec.TotalPoints
	existing.GPA = rec.GPA
	existing.OverallGrade = rec.OverallGrade
	return nil
}

func (m *memRepo) SetPublished(_ context.Context, id string, published bool) error {
	rec, ok := m.records[id]
	if !ok {
		return shared.NotFoundf("result %s", id)
	}
	rec.Published = published
	return nil
}

func (m *memRepo) PublishWhere(_ context.Context, department, batch string, semester int32) (int64, error) {
	var count int64
	for _, rec := range m.records {
		if rec.Batch != batch || rec.Semester != semester {
			continue
		}
		if department != "" && rec.Department != department {
			continue
		}
		if !rec.Published {
			rec.Published = true
			count++
		}
	}
	return count, nil
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.records[id]; !ok {
		return shared.NotFoundf("result %s", id)
	}
	delete(m.records, id)
	return nil
}

func (m *memRepo) DeleteByStudent(_ context.Context, studentID string) (int64, error) {
	var count int64
	for id, rec := range m.records {
		if rec.StudentID == studentID {
			delete(m.records, id)
			count++
		}
	}
	return count, nil
}

// fakeStudents is an in-memory StudentDirectory
type fakeStudents struct {
	byRoll map[string]*shared.Student
}

func newFakeStudents(students ...*shared.Student) *fakeStudents {
	f := &fakeStudents{byRoll: make(map[string]*shared.Student)}
	for _, s := range students {
		f.byRoll[s.RollNo] = s
	}
	return f
}

func (f *fakeStudents) Resolve(_ context.Context, rollNo string) (*shared.Student, error) {
	if s, ok := f.byRoll[rollNo]; ok {
		return s, nil
	}
	return nil, shared.NotFoundf("student %s", rollNo)
}

func (f *fakeStudents) Lookup(_ context.Context, id string) (*shared.Student, error) {
	for _, s := range f.byRoll {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, shared.NotFoundf("student %s", id)
}

// fakeCurricula is an in-memory CurriculumSource
type fakeCurricula struct {
	subjects map[string][]shared.SubjectDefinition
}

func newFakeCurricula() *fakeCurricula {
	return &fakeCurricula{subjects: make(map[string][]shared.SubjectDefinition)}
}

func (f *fakeCurricula) set(department string, semester int32, defs []shared.SubjectDefinition) {
	f.subjects[fmt.Sprintf("%s/%d", department, semester)] = defs
}

func (f *fakeCurricula) Get(_ context.Context, department string, semester int32) ([]shared.SubjectDefinition, error) {
	return f.subjects[fmt.Sprintf("%s/%d", department, semester)], nil
}

func newTestService(students ...*shared.Student) (*Service, *memRepo, *fakeCurricula) {
	repo := newMemRepo()
	curricula := newFakeCurricula()
	svc := NewService(repo, newFakeStudents(students...), curricula, zap.NewNop())
	return svc, repo, curricula
}

func testStudent() *shared.Student {
	return &shared.Student{
		ID:         "stu-001",
		Name:       "Asha Verma",
		RollNo:     "21CS042",
		Email:      "asha@example.com",
		Department: "CSE",
		Batch:      "2022",
	}
}
