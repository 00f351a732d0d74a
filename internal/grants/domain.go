package grants

import "time"

// SchoolGrant records that a director may access one additional school.
// Grants and the guardian/roster links are the only sources of
// cross-tenant reach beyond an actor's home school.
type SchoolGrant struct {
	ID         int64
	DirectorID int64
	SchoolID   int64
	IsActive   bool
	GrantedBy  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
