package enrollment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/enrollment"
	"github.com/pelita-edu/pelita/internal/shared"
	_ "github.com/pelita-edu/pelita/testing"
)

type pair struct{ a, b int64 }

type fakeRepo struct {
	nextID    int64
	classes   map[int64]enrollment.Class
	teachers  map[pair]bool
	rosters   map[pair]bool
	guardians map[pair]bool
	students  map[int64]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID:    1,
		classes:   map[int64]enrollment.Class{},
		teachers:  map[pair]bool{},
		rosters:   map[pair]bool{},
		guardians: map[pair]bool{},
		students:  map[int64]int64{},
	}
}

func (f *fakeRepo) CreateClass(_ context.Context, c enrollment.Class) (enrollment.Class, error) {
	c.ID = f.nextID
	f.classes[c.ID] = c
	f.nextID++
	return c, nil
}

func (f *fakeRepo) GetClass(_ context.Context, id int64) (enrollment.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return enrollment.Class{}, shared.ErrNotFound
	}
	return c, nil
}

func (f *fakeRepo) ListClassesBySchool(_ context.Context, schoolID int64) ([]enrollment.Class, error) {
	var out []enrollment.Class
	for _, c := range f.classes {
		if c.SchoolID == schoolID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeRepo) AssignTeacher(_ context.Context, teacherID, classID int64) error {
	f.teachers[pair{teacherID, classID}] = true
	return nil
}

func (f *fakeRepo) UnassignTeacher(_ context.Context, teacherID, classID int64) error {
	delete(f.teachers, pair{teacherID, classID})
	return nil
}

func (f *fakeRepo) AddToRoster(_ context.Context, classID, studentID int64) error {
	f.rosters[pair{classID, studentID}] = true
	return nil
}

func (f *fakeRepo) RemoveFromRoster(_ context.Context, classID, studentID int64) error {
	delete(f.rosters, pair{classID, studentID})
	return nil
}

func (f *fakeRepo) LinkGuardian(_ context.Context, parentID, studentID int64) error {
	f.guardians[pair{parentID, studentID}] = true
	return nil
}

func (f *fakeRepo) UnlinkGuardian(_ context.Context, parentID, studentID int64) error {
	delete(f.guardians, pair{parentID, studentID})
	return nil
}

func (f *fakeRepo) ListGuardians(_ context.Context, studentID int64) ([]int64, error) {
	var out []int64
	for p := range f.guardians {
		if p.b == studentID {
			out = append(out, p.a)
		}
	}
	return out, nil
}

func (f *fakeRepo) StudentSchool(_ context.Context, studentID int64) (int64, error) {
	schoolID, ok := f.students[studentID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	return schoolID, nil
}

type emptyStore struct{}

func (emptyStore) ActiveSchoolGrants(context.Context, int64) ([]int64, error)      { return nil, nil }
func (emptyStore) ChildrenOfParent(context.Context, int64) ([]int64, error)        { return nil, nil }
func (emptyStore) RosterStudentsOfTeacher(context.Context, int64) ([]int64, error) { return nil, nil }

func newTestService(repo enrollment.RepositoryPort) *enrollment.Service {
	return enrollment.NewService(repo, authz.NewEngine(emptyStore{}, emptyStore{}, nil, nil), nil, nil)
}

func ptr(v int64) *int64 { return &v }

func TestClassAdministrationBoundToSchool(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	member := authz.Actor{ID: 5, Role: authz.RoleStaff, HomeSchoolID: ptr(100)}

	c, err := svc.CreateClass(context.Background(), member, 100, " 5A ")
	require.NoError(t, err)
	require.Equal(t, "5A", c.Name)

	_, err = svc.CreateClass(context.Background(), member, 200, "6B")
	require.ErrorIs(t, err, shared.ErrAccessDenied)

	classes, err := svc.ListClasses(context.Background(), member, 100)
	require.NoError(t, err)
	require.Len(t, classes, 1)
}

func TestRosterRejectsCrossSchoolStudents(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	admin := authz.Actor{ID: 1, Role: authz.RolePlatformAdmin}

	c, err := svc.CreateClass(context.Background(), admin, 100, "5A")
	require.NoError(t, err)
	repo.students[1] = 100
	repo.students[2] = 200

	require.NoError(t, svc.AddToRoster(context.Background(), admin, c.ID, 1))
	require.ErrorIs(t, svc.AddToRoster(context.Background(), admin, c.ID, 2), shared.ErrAccessDenied)
}

func TestGuardianLinkLifecycle(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	member := authz.Actor{ID: 5, Role: authz.RoleStaff, HomeSchoolID: ptr(100)}
	repo.students[1] = 100

	require.NoError(t, svc.LinkGuardian(context.Background(), member, 30, 1))

	parents, err := svc.ListGuardians(context.Background(), member, 1)
	require.NoError(t, err)
	require.Equal(t, []int64{30}, parents)

	require.NoError(t, svc.UnlinkGuardian(context.Background(), member, 30, 1))

	parents, err = svc.ListGuardians(context.Background(), member, 1)
	require.NoError(t, err)
	require.Empty(t, parents)
}

func TestGuardianLinkOutsideSchoolDenied(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	member := authz.Actor{ID: 5, Role: authz.RoleStaff, HomeSchoolID: ptr(100)}
	repo.students[2] = 200

	require.ErrorIs(t, svc.LinkGuardian(context.Background(), member, 30, 2), shared.ErrAccessDenied)
}

func TestTeacherAssignmentLifecycle(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	member := authz.Actor{ID: 5, Role: authz.RoleStaff, HomeSchoolID: ptr(100)}

	c, err := svc.CreateClass(context.Background(), member, 100, "5A")
	require.NoError(t, err)

	require.NoError(t, svc.AssignTeacher(context.Background(), member, 7, c.ID))
	require.True(t, repo.teachers[pair{7, c.ID}])

	require.NoError(t, svc.UnassignTeacher(context.Background(), member, 7, c.ID))
	require.False(t, repo.teachers[pair{7, c.ID}])
}
