package enrollment

import "time"

// Class is one teaching group inside a school.
type Class struct {
	ID        int64
	SchoolID  int64
	Name      string
	CreatedAt time.Time
}

// TeacherAssignment binds a teacher to a class. Roster reads for the
// teacher flow through these rows.
type TeacherAssignment struct {
	TeacherID int64
	ClassID   int64
}

// RosterEntry places a student in a class.
type RosterEntry struct {
	ClassID   int64
	StudentID int64
}

// GuardianLink binds a parent account to a student. Parent reads flow
// through these rows.
type GuardianLink struct {
	ParentID  int64
	StudentID int64
}
