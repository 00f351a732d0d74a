package staff_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/shared"
	"github.com/pelita-edu/pelita/internal/staff"
	_ "github.com/pelita-edu/pelita/testing"
)

type fakeRepo struct {
	nextID  int64
	members map[int64]staff.Member
	leave   map[int64]staff.LeaveRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, members: map[int64]staff.Member{}, leave: map[int64]staff.LeaveRequest{}}
}

func (f *fakeRepo) Get(_ context.Context, id int64) (staff.Member, error) {
	m, ok := f.members[id]
	if !ok {
		return staff.Member{}, shared.ErrNotFound
	}
	return m, nil
}

func (f *fakeRepo) ListBySchool(_ context.Context, schoolID int64) ([]staff.Member, error) {
	var out []staff.Member
	for _, m := range f.members {
		if m.SchoolID == schoolID && m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) Create(_ context.Context, m staff.Member) (staff.Member, error) {
	m.ID = f.nextID
	m.IsActive = true
	f.members[m.ID] = m
	f.nextID++
	return m, nil
}

func (f *fakeRepo) Update(_ context.Context, m staff.Member) (staff.Member, error) {
	if _, ok := f.members[m.ID]; !ok {
		return staff.Member{}, shared.ErrNotFound
	}
	f.members[m.ID] = m
	return m, nil
}

func (f *fakeRepo) GetLeave(_ context.Context, id int64) (staff.LeaveRequest, error) {
	lr, ok := f.leave[id]
	if !ok {
		return staff.LeaveRequest{}, shared.ErrNotFound
	}
	return lr, nil
}

func (f *fakeRepo) ListLeaveBySchool(_ context.Context, schoolID int64) ([]staff.LeaveRequest, error) {
	var out []staff.LeaveRequest
	for _, lr := range f.leave {
		if lr.SchoolID == schoolID {
			out = append(out, lr)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateLeave(_ context.Context, lr staff.LeaveRequest) (staff.LeaveRequest, error) {
	lr.ID = f.nextID
	lr.Status = staff.LeavePending
	f.leave[lr.ID] = lr
	f.nextID++
	return lr, nil
}

func (f *fakeRepo) SetLeaveStatus(_ context.Context, id int64, status string) (staff.LeaveRequest, error) {
	lr, ok := f.leave[id]
	if !ok {
		return staff.LeaveRequest{}, shared.ErrNotFound
	}
	lr.Status = status
	f.leave[id] = lr
	return lr, nil
}

type emptyStore struct{}

func (emptyStore) ActiveSchoolGrants(context.Context, int64) ([]int64, error)      { return nil, nil }
func (emptyStore) ChildrenOfParent(context.Context, int64) ([]int64, error)        { return nil, nil }
func (emptyStore) RosterStudentsOfTeacher(context.Context, int64) ([]int64, error) { return nil, nil }

func newTestService(repo staff.RepositoryPort) *staff.Service {
	return staff.NewService(repo, authz.NewEngine(emptyStore{}, emptyStore{}, nil, nil), nil)
}

func ptr(v int64) *int64 { return &v }

func TestStaffRecordsReachableByHomeSchoolMembers(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	member := authz.Actor{ID: 5, Role: authz.RoleStaff, HomeSchoolID: ptr(100)}

	m, err := svc.Create(context.Background(), member, staff.Member{
		UserID: 9, SchoolID: 100, Name: " Siti Aminah ", Position: " Bendahara ",
	})
	require.NoError(t, err)
	require.Equal(t, "Siti Aminah", m.Name)
	require.Equal(t, "Bendahara", m.Position)

	_, err = svc.Create(context.Background(), member, staff.Member{UserID: 9, SchoolID: 200, Name: "X Y", Position: "Guru"})
	require.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestStaffRecordsAdminGatedAcrossSchools(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	admin := authz.Actor{ID: 1, Role: authz.RolePlatformAdmin}

	m, err := svc.Create(context.Background(), admin, staff.Member{UserID: 9, SchoolID: 300, Name: "Pak Joko", Position: "Kepala TU"})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), admin, m.ID)
	require.NoError(t, err)
	require.Equal(t, int64(300), got.SchoolID)
}

func TestParentCannotReachStaffRecords(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	admin := authz.Actor{ID: 1, Role: authz.RolePlatformAdmin}
	m, err := svc.Create(context.Background(), admin, staff.Member{UserID: 9, SchoolID: 100, Name: "Pak Joko", Position: "Guru"})
	require.NoError(t, err)

	parent := authz.Actor{ID: 30, Role: authz.RoleParent, HomeSchoolID: ptr(100)}
	_, err = svc.Get(context.Background(), parent, m.ID)
	require.ErrorIs(t, err, shared.ErrAccessDenied)
}

func TestLeaveFlowWithinHomeSchool(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	admin := authz.Actor{ID: 1, Role: authz.RolePlatformAdmin}
	m, err := svc.Create(context.Background(), admin, staff.Member{UserID: 9, SchoolID: 100, Name: "Bu Rina", Position: "Guru"})
	require.NoError(t, err)

	member := authz.Actor{ID: 9, Role: authz.RoleStaff, HomeSchoolID: ptr(100)}
	lr, err := svc.RequestLeave(context.Background(), member, staff.LeaveRequest{
		StaffID:  m.ID,
		FromDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		ToDate:   time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC),
		Reason:   "keperluan keluarga",
	})
	require.NoError(t, err)
	require.Equal(t, staff.LeavePending, lr.Status)
	require.Equal(t, int64(100), lr.SchoolID)

	decided, err := svc.DecideLeave(context.Background(), member, lr.ID, staff.LeaveApproved)
	require.NoError(t, err)
	require.Equal(t, staff.LeaveApproved, decided.Status)

	outsider := authz.Actor{ID: 11, Role: authz.RoleStaff, HomeSchoolID: ptr(200)}
	_, err = svc.DecideLeave(context.Background(), outsider, lr.ID, staff.LeaveRejected)
	require.ErrorIs(t, err, shared.ErrAccessDenied)
}
