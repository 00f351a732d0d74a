package authz

import "context"

// Role is the closed enumeration stored on user accounts.
type Role string

const (
	RolePlatformSuper  Role = "platform_super"
	RolePlatformAdmin  Role = "platform_admin"
	RoleSchoolDirector Role = "school_director"
	RoleTeacher        Role = "teacher"
	RoleParent         Role = "parent"
	RoleStaff          Role = "staff"
)

// Actor is the authenticated party reduced to the facts a decision needs.
// It is constructed once per request and never persisted.
type Actor struct {
	ID           int64
	Role         Role
	HomeSchoolID *int64
}

// Capability is the coarse category derived from a role.
type Capability int

const (
	CapAnonymous Capability = iota
	CapStandard
	CapParent
	CapTeacher
	CapDirector
	CapPlatformAdmin
	CapPlatformSuper
)

// String returns the capability label used in logs.
func (c Capability) String() string {
	switch c {
	case CapStandard:
		return "standard"
	case CapParent:
		return "parent"
	case CapTeacher:
		return "teacher"
	case CapDirector:
		return "director"
	case CapPlatformAdmin:
		return "platform_admin"
	case CapPlatformSuper:
		return "platform_super"
	default:
		return "anonymous"
	}
}

// Classify maps an actor's role to its capability class. It is the single
// source of truth for "what kind of actor is this"; no other package
// inspects role strings. Unknown or empty roles classify as anonymous.
func Classify(actor Actor) Capability {
	switch actor.Role {
	case RolePlatformSuper:
		return CapPlatformSuper
	case RolePlatformAdmin:
		return CapPlatformAdmin
	case RoleSchoolDirector:
		return CapDirector
	case RoleTeacher:
		return CapTeacher
	case RoleParent:
		return CapParent
	case RoleStaff:
		return CapStandard
	default:
		return CapAnonymous
	}
}

type actorContextKey struct{}

// ContextWithActor stores the resolved actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor placed by the resolution middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
