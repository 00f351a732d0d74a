package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrActorNotFound indicates the authenticated user no longer resolves to
// an active account.
var ErrActorNotFound = errors.New("authz: actor not found")

// Reason explains which rule produced a decision. Reasons are for audit
// logging only and must never be surfaced to the requesting client.
type Reason string

const (
	ReasonPlatformOverride  Reason = "platform_override"
	ReasonOwnerMatch        Reason = "owner_match"
	ReasonSchoolMatch       Reason = "school_match"
	ReasonRelationshipMatch Reason = "relationship_match"
	ReasonNoMatchingRule    Reason = "no_matching_rule"
)

// Decision is the outcome of one CanAccess evaluation.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// AccessLevel communicates how school access was derived, for audit use.
type AccessLevel string

const (
	AccessLevelPlatform AccessLevel = "platform_override"
	AccessLevelHome     AccessLevel = "home_school"
	AccessLevelGrant    AccessLevel = "director_grant"
	AccessLevelNone     AccessLevel = "none"
)

// SchoolAccess answers the coarse "may this actor act within this school
// at all" question.
type SchoolAccess struct {
	HasAccess bool
	Level     AccessLevel
}

// Recorder receives one event per evaluated decision.
type Recorder interface {
	RecordDecision(reason string, allowed bool)
}

// Engine composes school-level and relationship-level reach into per
// resource decisions. It performs no writes, holds no locks and keeps no
// state across decisions, so concurrent invocation is safe and grant or
// roster revocations take effect on the very next call.
type Engine struct {
	grants   GrantStore
	links    LinkStore
	logger   *slog.Logger
	recorder Recorder
}

// NewEngine constructs an Engine. The recorder may be nil.
func NewEngine(grants GrantStore, links LinkStore, logger *slog.Logger, recorder Recorder) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{grants: grants, links: links, logger: logger, recorder: recorder}
}

// CanAccess decides whether the actor may perform op on the resource.
// Rules are evaluated in fixed precedence; the first match wins. Lookup
// failures are returned as errors and are never converted into an allow
// or a deny.
func (e *Engine) CanAccess(ctx context.Context, actor Actor, res Resource, op Operation) (Decision, error) {
	spec, known := specFor(res.Type)
	if !known {
		return e.record(actor, res, op, Decision{Allowed: false, Reason: ReasonNoMatchingRule}), nil
	}

	capability := Classify(actor)

	// Rule 1: platform super passes everything. Operability requirement,
	// narrower rules must never block incident response.
	if capability == CapPlatformSuper {
		return e.record(actor, res, op, Decision{Allowed: true, Reason: ReasonPlatformOverride}), nil
	}

	// Rule 2: functional platform admins pass administratively gated types.
	if capability == CapPlatformAdmin && spec.adminGated {
		return e.record(actor, res, op, Decision{Allowed: true, Reason: ReasonPlatformOverride}), nil
	}

	// Rule 3: user-owned resources answer to their owner alone.
	if spec.class == ClassUserOwned {
		if res.OwnerID != nil && *res.OwnerID == actor.ID {
			return e.record(actor, res, op, Decision{Allowed: true, Reason: ReasonOwnerMatch}), nil
		}
		return e.record(actor, res, op, Decision{Allowed: false, Reason: ReasonNoMatchingRule}), nil
	}

	if spec.class == ClassSchoolScoped {
		// A school-scoped row without a school id is a caller-side
		// configuration error; deny rather than guess.
		if res.SchoolID == nil {
			e.logger.Warn("authz: school-scoped resource missing school id",
				slog.String("resource_type", string(res.Type)))
			return e.record(actor, res, op, Decision{Allowed: false, Reason: ReasonNoMatchingRule}), nil
		}

		// Rule 4: home school, director grants, or platform-wide reach.
		schools, err := e.ResolveSchools(ctx, actor)
		if err != nil {
			return Decision{}, err
		}
		if schools.Contains(*res.SchoolID) {
			return e.record(actor, res, op, Decision{Allowed: true, Reason: ReasonSchoolMatch}), nil
		}

		// Rule 5: relationship reach is an additive, strictly narrower,
		// read-only carve-out. Writes never pass this path.
		if !op.IsWrite() && spec.relation == RelationStudent && res.StudentID != nil {
			linked, applicable, err := e.resolveRelation(ctx, actor, capability)
			if err != nil {
				return Decision{}, err
			}
			if applicable {
				if _, ok := linked[*res.StudentID]; ok {
					return e.record(actor, res, op, Decision{Allowed: true, Reason: ReasonRelationshipMatch}), nil
				}
			}
		}
	}

	return e.record(actor, res, op, Decision{Allowed: false, Reason: ReasonNoMatchingRule}), nil
}

// ResolveSchools returns the set of schools the actor may touch. The set
// is computed fresh on every call.
func (e *Engine) ResolveSchools(ctx context.Context, actor Actor) (SchoolSet, error) {
	switch Classify(actor) {
	case CapPlatformSuper, CapPlatformAdmin:
		return AllSchools(), nil
	case CapDirector:
		ids, err := e.grants.ActiveSchoolGrants(ctx, actor.ID)
		if err != nil {
			return SchoolSet{}, fmt.Errorf("authz: resolve grants: %w", err)
		}
		return Schools(ids...), nil
	case CapStandard, CapTeacher, CapParent:
		if actor.HomeSchoolID == nil {
			return NoSchools(), nil
		}
		return Schools(*actor.HomeSchoolID), nil
	default:
		return NoSchools(), nil
	}
}

// ValidateSchoolAccess is the coarse pre-check used to gate whole sections
// before any specific resource is loaded. Implemented purely in terms of
// ResolveSchools.
func (e *Engine) ValidateSchoolAccess(ctx context.Context, actor Actor, schoolID int64) (SchoolAccess, error) {
	schools, err := e.ResolveSchools(ctx, actor)
	if err != nil {
		return SchoolAccess{}, err
	}
	if !schools.Contains(schoolID) {
		return SchoolAccess{HasAccess: false, Level: AccessLevelNone}, nil
	}
	switch {
	case schools.All():
		return SchoolAccess{HasAccess: true, Level: AccessLevelPlatform}, nil
	case Classify(actor) == CapDirector:
		return SchoolAccess{HasAccess: true, Level: AccessLevelGrant}, nil
	default:
		return SchoolAccess{HasAccess: true, Level: AccessLevelHome}, nil
	}
}

// VisibleStudents returns the student ids a parent or teacher can reach
// through relationship links, so listings can narrow rows the same way
// per-resource decisions do. The second result is false when relationship
// access does not apply to the actor.
func (e *Engine) VisibleStudents(ctx context.Context, actor Actor) ([]int64, bool, error) {
	linked, applicable, err := e.resolveRelation(ctx, actor, Classify(actor))
	if err != nil || !applicable {
		return nil, applicable, err
	}
	ids := make([]int64, 0, len(linked))
	for id := range linked {
		ids = append(ids, id)
	}
	return ids, true, nil
}

func (e *Engine) resolveRelation(ctx context.Context, actor Actor, capability Capability) (map[int64]struct{}, bool, error) {
	var (
		ids []int64
		err error
	)
	switch capability {
	case CapParent:
		ids, err = e.links.ChildrenOfParent(ctx, actor.ID)
	case CapTeacher:
		ids, err = e.links.RosterStudentsOfTeacher(ctx, actor.ID)
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, fmt.Errorf("authz: resolve relation links: %w", err)
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, true, nil
}

func (e *Engine) record(actor Actor, res Resource, op Operation, d Decision) Decision {
	if e.recorder != nil {
		e.recorder.RecordDecision(string(d.Reason), d.Allowed)
	}
	if !d.Allowed {
		e.logger.Debug("authz: denied",
			slog.Int64("actor_id", actor.ID),
			slog.String("capability", Classify(actor).String()),
			slog.String("resource_type", string(res.Type)),
			slog.String("operation", string(op)))
	}
	return d
}
