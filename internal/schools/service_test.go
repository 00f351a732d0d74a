package schools_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/schools"
	"github.com/pelita-edu/pelita/internal/shared"
	_ "github.com/pelita-edu/pelita/testing"
)

type fakeRepo struct {
	schools  map[int64]schools.School
	students map[int64]int64
	staff    map[int64]int64
	classes  map[int64]int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		schools:  map[int64]schools.School{},
		students: map[int64]int64{},
		staff:    map[int64]int64{},
		classes:  map[int64]int64{},
	}
}

func (f *fakeRepo) List(context.Context) ([]schools.School, error) {
	var out []schools.School
	for _, s := range f.schools {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeRepo) ListByIDs(_ context.Context, ids []int64) ([]schools.School, error) {
	var out []schools.School
	for _, id := range ids {
		if s, ok := f.schools[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (schools.School, error) {
	s, ok := f.schools[id]
	if !ok {
		return schools.School{}, shared.ErrNotFound
	}
	return s, nil
}

func (f *fakeRepo) CountStudents(_ context.Context, id int64) (int64, error) {
	return f.students[id], nil
}

func (f *fakeRepo) CountStaff(_ context.Context, id int64) (int64, error) {
	return f.staff[id], nil
}

func (f *fakeRepo) CountClasses(_ context.Context, id int64) (int64, error) {
	return f.classes[id], nil
}

type grantOnlyStore struct {
	grants map[int64][]int64
}

func (g grantOnlyStore) ActiveSchoolGrants(_ context.Context, directorID int64) ([]int64, error) {
	return g.grants[directorID], nil
}

func (grantOnlyStore) ChildrenOfParent(context.Context, int64) ([]int64, error) { return nil, nil }

func (grantOnlyStore) RosterStudentsOfTeacher(context.Context, int64) ([]int64, error) {
	return nil, nil
}

func newTestService(repo schools.RepositoryPort, grants map[int64][]int64) *schools.Service {
	store := grantOnlyStore{grants: grants}
	return schools.NewService(repo, authz.NewEngine(store, store, nil, nil), nil)
}

func seedSchools(repo *fakeRepo, ids ...int64) {
	for _, id := range ids {
		repo.schools[id] = schools.School{ID: id, Name: "Sekolah", IsActive: true}
	}
}

func TestListVisibleNarrowsByGrants(t *testing.T) {
	repo := newFakeRepo()
	seedSchools(repo, 100, 200, 300)
	svc := newTestService(repo, map[int64][]int64{10: {100, 200}})

	home := int64(300)
	director := authz.Actor{ID: 10, Role: authz.RoleSchoolDirector, HomeSchoolID: &home}

	visible, err := svc.ListVisible(context.Background(), director)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	for _, s := range visible {
		require.NotEqual(t, int64(300), s.ID, "home school is not implicit reach for directors")
	}
}

func TestListVisiblePlatformSeesAll(t *testing.T) {
	repo := newFakeRepo()
	seedSchools(repo, 100, 200, 300)
	svc := newTestService(repo, nil)

	visible, err := svc.ListVisible(context.Background(), authz.Actor{ID: 1, Role: authz.RolePlatformAdmin})
	require.NoError(t, err)
	require.Len(t, visible, 3)
}

func TestListVisibleAnonymousIsEmpty(t *testing.T) {
	repo := newFakeRepo()
	seedSchools(repo, 100)
	svc := newTestService(repo, nil)

	visible, err := svc.ListVisible(context.Background(), authz.Actor{})
	require.NoError(t, err)
	require.Empty(t, visible)
}

func TestDashboardRequiresSchoolAccess(t *testing.T) {
	repo := newFakeRepo()
	seedSchools(repo, 100, 200)
	repo.students[100] = 250
	repo.staff[100] = 30
	repo.classes[100] = 12
	svc := newTestService(repo, nil)

	home := int64(100)
	teacher := authz.Actor{ID: 7, Role: authz.RoleTeacher, HomeSchoolID: &home}

	dash, level, err := svc.GetDashboard(context.Background(), teacher, 100)
	require.NoError(t, err)
	require.Equal(t, authz.AccessLevelHome, level)
	require.Equal(t, int64(250), dash.Students)
	require.Equal(t, int64(30), dash.Staff)
	require.Equal(t, int64(12), dash.Classes)

	_, _, err = svc.GetDashboard(context.Background(), teacher, 200)
	require.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestDashboardAccessLevels(t *testing.T) {
	repo := newFakeRepo()
	seedSchools(repo, 100)
	svc := newTestService(repo, map[int64][]int64{10: {100}})

	_, level, err := svc.GetDashboard(context.Background(), authz.Actor{ID: 1, Role: authz.RolePlatformSuper}, 100)
	require.NoError(t, err)
	require.Equal(t, authz.AccessLevelPlatform, level)

	_, level, err = svc.GetDashboard(context.Background(), authz.Actor{ID: 10, Role: authz.RoleSchoolDirector}, 100)
	require.NoError(t, err)
	require.Equal(t, authz.AccessLevelGrant, level)
}
