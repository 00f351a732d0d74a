package students_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/shared"
	"github.com/pelita-edu/pelita/internal/students"
	_ "github.com/pelita-edu/pelita/testing"
)

type fakeRepo struct {
	nextID     int64
	rows       map[int64]students.Student
	grades     map[int64][]students.GradeEntry
	attendance map[int64][]students.AttendanceEntry
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID:     1,
		rows:       map[int64]students.Student{},
		grades:     map[int64][]students.GradeEntry{},
		attendance: map[int64][]students.AttendanceEntry{},
	}
}

func (f *fakeRepo) Get(_ context.Context, id int64) (students.Student, error) {
	s, ok := f.rows[id]
	if !ok {
		return students.Student{}, shared.ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) ListBySchool(_ context.Context, schoolID int64) ([]students.Student, error) {
	var out []students.Student
	for _, s := range f.rows {
		if s.SchoolID == schoolID && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByIDs(_ context.Context, ids []int64) ([]students.Student, error) {
	var out []students.Student
	for _, id := range ids {
		if s, ok := f.rows[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) Create(_ context.Context, s students.Student) (students.Student, error) {
	s.ID = f.nextID
	s.IsActive = true
	f.rows[s.ID] = s
	f.nextID++
	return s, nil
}

func (f *fakeRepo) Update(_ context.Context, s students.Student) (students.Student, error) {
	if _, ok := f.rows[s.ID]; !ok {
		return students.Student{}, shared.ErrNotFound
	}
	f.rows[s.ID] = s
	return s, nil
}

func (f *fakeRepo) ListGrades(_ context.Context, studentID int64) ([]students.GradeEntry, error) {
	return f.grades[studentID], nil
}

func (f *fakeRepo) AddGrade(_ context.Context, g students.GradeEntry) (students.GradeEntry, error) {
	g.ID = f.nextID
	f.nextID++
	f.grades[g.StudentID] = append(f.grades[g.StudentID], g)
	return g, nil
}

func (f *fakeRepo) ListAttendance(_ context.Context, studentID int64, _, _ time.Time) ([]students.AttendanceEntry, error) {
	return f.attendance[studentID], nil
}

func (f *fakeRepo) MarkAttendance(_ context.Context, a students.AttendanceEntry) (students.AttendanceEntry, error) {
	a.ID = f.nextID
	f.nextID++
	f.attendance[a.StudentID] = append(f.attendance[a.StudentID], a)
	return a, nil
}

type linkStore struct {
	grants   map[int64][]int64
	children map[int64][]int64
	rosters  map[int64][]int64
}

func (l *linkStore) ActiveSchoolGrants(_ context.Context, directorID int64) ([]int64, error) {
	return l.grants[directorID], nil
}

func (l *linkStore) ChildrenOfParent(_ context.Context, parentID int64) ([]int64, error) {
	return l.children[parentID], nil
}

func (l *linkStore) RosterStudentsOfTeacher(_ context.Context, teacherID int64) ([]int64, error) {
	return l.rosters[teacherID], nil
}

func newTestService(repo students.RepositoryPort, links *linkStore) *students.Service {
	if links == nil {
		links = &linkStore{}
	}
	return students.NewService(repo, authz.NewEngine(links, links, nil, nil), nil)
}

func seedStudent(repo *fakeRepo, id, schoolID int64, name string) {
	repo.rows[id] = students.Student{ID: id, SchoolID: schoolID, Name: name, IsActive: true}
	if id >= repo.nextID {
		repo.nextID = id + 1
	}
}

func ptr(v int64) *int64 { return &v }

func TestCreateNormalizesName(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	staff := authz.Actor{ID: 5, Role: authz.RoleStaff, HomeSchoolID: ptr(100)}

	s, err := svc.Create(context.Background(), staff, 100, "  bUDI   santoso ", " 5A ")
	require.NoError(t, err)
	require.Equal(t, "Budi Santoso", s.Name)
	require.Equal(t, "5A", s.ClassName)
}

func TestCreateOutsideHomeSchoolDenied(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	staff := authz.Actor{ID: 5, Role: authz.RoleStaff, HomeSchoolID: ptr(100)}

	_, err := svc.Create(context.Background(), staff, 200, "Budi", "")
	require.ErrorIs(t, err, shared.ErrAccessDenied)
	require.Empty(t, repo.rows)
}

func TestParentReadsLinkedChildOnly(t *testing.T) {
	repo := newFakeRepo()
	seedStudent(repo, 1, 200, "Anak Satu")
	seedStudent(repo, 2, 200, "Anak Lain")
	links := &linkStore{children: map[int64][]int64{30: {1}}}
	svc := newTestService(repo, links)
	parent := authz.Actor{ID: 30, Role: authz.RoleParent, HomeSchoolID: ptr(100)}

	s, err := svc.Get(context.Background(), parent, 1)
	require.NoError(t, err)
	require.Equal(t, "Anak Satu", s.Name)

	_, err = svc.Get(context.Background(), parent, 2)
	require.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestParentCannotWriteLinkedChild(t *testing.T) {
	repo := newFakeRepo()
	seedStudent(repo, 1, 200, "Anak Satu")
	links := &linkStore{children: map[int64][]int64{30: {1}}}
	svc := newTestService(repo, links)
	parent := authz.Actor{ID: 30, Role: authz.RoleParent, HomeSchoolID: ptr(100)}

	_, err := svc.Update(context.Background(), parent, 1, "Nama Baru", "", true)
	require.ErrorIs(t, err, shared.ErrAccessDenied)

	_, err = svc.AddGrade(context.Background(), parent, 1, "Matematika", "2026-1", 90)
	require.ErrorIs(t, err, shared.ErrAccessDenied)

	_, err = svc.MarkAttendance(context.Background(), parent, 1, time.Now(), students.AttendancePresent)
	require.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestParentReadsGradesAndAttendance(t *testing.T) {
	repo := newFakeRepo()
	seedStudent(repo, 1, 200, "Anak Satu")
	repo.grades[1] = []students.GradeEntry{{ID: 9, StudentID: 1, Subject: "IPA", Score: 85}}
	links := &linkStore{children: map[int64][]int64{30: {1}}}
	svc := newTestService(repo, links)
	parent := authz.Actor{ID: 30, Role: authz.RoleParent, HomeSchoolID: ptr(100)}

	grades, err := svc.ListGrades(context.Background(), parent, 1)
	require.NoError(t, err)
	require.Len(t, grades, 1)

	_, err = svc.ListAttendance(context.Background(), parent, 1, time.Now().AddDate(0, -1, 0), time.Now())
	require.NoError(t, err)
}

func TestTeacherWritesGradesForHomeSchoolOnly(t *testing.T) {
	repo := newFakeRepo()
	seedStudent(repo, 1, 100, "Siswa Sini")
	seedStudent(repo, 2, 200, "Siswa Sana")
	links := &linkStore{rosters: map[int64][]int64{7: {1, 2}}}
	svc := newTestService(repo, links)
	teacher := authz.Actor{ID: 7, Role: authz.RoleTeacher, HomeSchoolID: ptr(100)}

	_, err := svc.AddGrade(context.Background(), teacher, 1, "Bahasa", "2026-1", 78)
	require.NoError(t, err)

	// Cross-school roster link grants reads, never writes.
	_, err = svc.AddGrade(context.Background(), teacher, 2, "Bahasa", "2026-1", 78)
	require.ErrorIs(t, err, shared.ErrAccessDenied)

	_, err = svc.Get(context.Background(), teacher, 2)
	require.NoError(t, err)
}

func TestListBySchoolNarrowsForParents(t *testing.T) {
	repo := newFakeRepo()
	seedStudent(repo, 1, 200, "Anak Satu")
	seedStudent(repo, 2, 200, "Anak Lain")
	seedStudent(repo, 3, 300, "Anak Jauh")
	links := &linkStore{children: map[int64][]int64{30: {1, 3}}}
	svc := newTestService(repo, links)
	parent := authz.Actor{ID: 30, Role: authz.RoleParent, HomeSchoolID: ptr(100)}

	rows, err := svc.ListBySchool(context.Background(), parent, 200)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, int64(1), rows[0].ID)
}

func TestListBySchoolFullRosterForMembers(t *testing.T) {
	repo := newFakeRepo()
	seedStudent(repo, 1, 100, "Siswa A")
	seedStudent(repo, 2, 100, "Siswa B")
	svc := newTestService(repo, nil)
	staff := authz.Actor{ID: 5, Role: authz.RoleStaff, HomeSchoolID: ptr(100)}

	rows, err := svc.ListBySchool(context.Background(), staff, 100)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	_, err = svc.ListBySchool(context.Background(), staff, 200)
	require.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestListLinkedRequiresRelationshipRole(t *testing.T) {
	repo := newFakeRepo()
	seedStudent(repo, 1, 200, "Anak Satu")
	links := &linkStore{children: map[int64][]int64{30: {1}}}
	svc := newTestService(repo, links)

	rows, err := svc.ListLinked(context.Background(), authz.Actor{ID: 30, Role: authz.RoleParent})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = svc.ListLinked(context.Background(), authz.Actor{ID: 5, Role: authz.RoleStaff, HomeSchoolID: ptr(100)})
	require.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestDirectorGrantReachesStudents(t *testing.T) {
	repo := newFakeRepo()
	seedStudent(repo, 1, 200, "Siswa Cabang")
	links := &linkStore{grants: map[int64][]int64{10: {200}}}
	svc := newTestService(repo, links)
	director := authz.Actor{ID: 10, Role: authz.RoleSchoolDirector, HomeSchoolID: ptr(100)}

	_, err := svc.Update(context.Background(), director, 1, "Siswa Cabang", "6B", true)
	require.NoError(t, err)

	// Without grants the director reaches nothing, including the home school.
	links.grants = map[int64][]int64{}
	_, err = svc.Get(context.Background(), director, 1)
	require.ErrorIs(t, err, shared.ErrAccessDenied)
}
