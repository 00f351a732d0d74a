package schools

import "time"

// School is one tenant on the platform.
type School struct {
	ID        int64
	Name      string
	City      string
	IsActive  bool
	CreatedAt time.Time
}

// Dashboard aggregates the headline numbers for one school.
type Dashboard struct {
	School   School
	Students int64
	Staff    int64
	Classes  int64
}
