package grants

import "context"

// RepositoryPort defines data access methods for school grants.
type RepositoryPort interface {
	ListByDirector(ctx context.Context, directorID int64) ([]SchoolGrant, error)
	Get(ctx context.Context, id int64) (SchoolGrant, error)
	Upsert(ctx context.Context, directorID, schoolID, grantedBy int64) (SchoolGrant, error)
	Revoke(ctx context.Context, id int64) (SchoolGrant, error)
}
