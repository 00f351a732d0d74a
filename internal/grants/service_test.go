package grants_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/grants"
	"github.com/pelita-edu/pelita/internal/shared"
	_ "github.com/pelita-edu/pelita/testing"
)

type fakeRepo struct {
	nextID int64
	rows   map[int64]grants.SchoolGrant
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{nextID: 1, rows: map[int64]grants.SchoolGrant{}}
}

func (f *fakeRepo) ListByDirector(_ context.Context, directorID int64) ([]grants.SchoolGrant, error) {
	var out []grants.SchoolGrant
	for _, g := range f.rows {
		if g.DirectorID == directorID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id int64) (grants.SchoolGrant, error) {
	g, ok := f.rows[id]
	if !ok {
		return grants.SchoolGrant{}, shared.ErrNotFound
	}
	return g, nil
}

func (f *fakeRepo) Upsert(_ context.Context, directorID, schoolID, grantedBy int64) (grants.SchoolGrant, error) {
	for id, g := range f.rows {
		if g.DirectorID == directorID && g.SchoolID == schoolID {
			g.IsActive = true
			g.GrantedBy = grantedBy
			f.rows[id] = g
			return g, nil
		}
	}
	g := grants.SchoolGrant{ID: f.nextID, DirectorID: directorID, SchoolID: schoolID, IsActive: true, GrantedBy: grantedBy}
	f.rows[g.ID] = g
	f.nextID++
	return g, nil
}

func (f *fakeRepo) Revoke(_ context.Context, id int64) (grants.SchoolGrant, error) {
	g, ok := f.rows[id]
	if !ok {
		return grants.SchoolGrant{}, shared.ErrNotFound
	}
	g.IsActive = false
	f.rows[id] = g
	return g, nil
}

type emptyStore struct{}

func (emptyStore) ActiveSchoolGrants(context.Context, int64) ([]int64, error)      { return nil, nil }
func (emptyStore) ChildrenOfParent(context.Context, int64) ([]int64, error)        { return nil, nil }
func (emptyStore) RosterStudentsOfTeacher(context.Context, int64) ([]int64, error) { return nil, nil }

type captureAudit struct {
	logs []shared.AuditLog
}

func (c *captureAudit) Record(_ context.Context, log shared.AuditLog) error {
	c.logs = append(c.logs, log)
	return nil
}

func newTestService(repo grants.RepositoryPort, audit shared.AuditSink) *grants.Service {
	engine := authz.NewEngine(emptyStore{}, emptyStore{}, nil, nil)
	return grants.NewService(repo, engine, audit, nil)
}

func TestPlatformAdminManagesGrants(t *testing.T) {
	repo := newFakeRepo()
	audit := &captureAudit{}
	svc := newTestService(repo, audit)
	admin := authz.Actor{ID: 1, Role: authz.RolePlatformAdmin}

	g, err := svc.Create(context.Background(), admin, 10, 100)
	require.NoError(t, err)
	require.True(t, g.IsActive)
	require.Equal(t, int64(1), g.GrantedBy)

	listed, err := svc.ListByDirector(context.Background(), admin, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	revoked, err := svc.Revoke(context.Background(), admin, g.ID)
	require.NoError(t, err)
	require.False(t, revoked.IsActive)

	require.Len(t, audit.logs, 2)
	require.Equal(t, "grant.create", audit.logs[0].Action)
	require.Equal(t, "grant.revoke", audit.logs[1].Action)
	require.Equal(t, "school_grant", audit.logs[0].Entity)
}

func TestNonPlatformRolesCannotTouchGrants(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	home := int64(100)

	for _, actor := range []authz.Actor{
		{ID: 10, Role: authz.RoleSchoolDirector, HomeSchoolID: &home},
		{ID: 20, Role: authz.RoleTeacher, HomeSchoolID: &home},
		{ID: 30, Role: authz.RoleParent, HomeSchoolID: &home},
		{ID: 40, Role: authz.RoleStaff, HomeSchoolID: &home},
		{},
	} {
		_, err := svc.Create(context.Background(), actor, 10, 100)
		require.ErrorIs(t, err, shared.ErrAccessDenied, "role %q must not create grants", actor.Role)

		_, err = svc.ListByDirector(context.Background(), actor, 10)
		require.ErrorIs(t, err, shared.ErrAccessDenied, "role %q must not list grants", actor.Role)
	}
	require.Empty(t, repo.rows)
}

func TestRegrantReactivatesExistingRow(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, nil)
	super := authz.Actor{ID: 2, Role: authz.RolePlatformSuper}

	g, err := svc.Create(context.Background(), super, 10, 100)
	require.NoError(t, err)

	_, err = svc.Revoke(context.Background(), super, g.ID)
	require.NoError(t, err)

	again, err := svc.Create(context.Background(), super, 10, 100)
	require.NoError(t, err)
	require.Equal(t, g.ID, again.ID)
	require.True(t, again.IsActive)
}

func TestRevokeUnknownGrant(t *testing.T) {
	svc := newTestService(newFakeRepo(), nil)
	super := authz.Actor{ID: 2, Role: authz.RolePlatformSuper}

	_, err := svc.Revoke(context.Background(), super, 999)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
