package authz

import "context"

// Resolver turns an authenticated user id into an Actor. It looks the
// account up fresh on every request so role or home-school changes are
// picked up without an invalidation protocol.
type Resolver struct {
	store ActorStore
}

// NewResolver constructs a Resolver.
func NewResolver(store ActorStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve fetches the actor facts for the given user id.
func (r *Resolver) Resolve(ctx context.Context, userID int64) (Actor, error) {
	return r.store.FindActor(ctx, userID)
}
