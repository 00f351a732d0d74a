package authz

import "context"

// GrantStore reads director school grants. Implementations must reflect
// current state on every call; the engine never caches a resolved set.
type GrantStore interface {
	ActiveSchoolGrants(ctx context.Context, directorID int64) ([]int64, error)
}

// LinkStore reads relationship links derived from enrollment and class
// assignment records. Read-only to the engine.
type LinkStore interface {
	ChildrenOfParent(ctx context.Context, parentID int64) ([]int64, error)
	RosterStudentsOfTeacher(ctx context.Context, teacherID int64) ([]int64, error)
}

// ActorStore resolves an authenticated user id into actor facts.
type ActorStore interface {
	FindActor(ctx context.Context, userID int64) (Actor, error)
}
