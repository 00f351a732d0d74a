package students

import "time"

// Student is one enrolled learner, always attached to a single school.
type Student struct {
	ID        int64
	SchoolID  int64
	Name      string
	ClassName string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GradeEntry is a single graded result for a student.
type GradeEntry struct {
	ID        int64
	StudentID int64
	SchoolID  int64
	Subject   string
	Term      string
	Score     float64
	EnteredBy int64
	CreatedAt time.Time
}

// AttendanceEntry records presence for one student on one day.
type AttendanceEntry struct {
	ID        int64
	StudentID int64
	SchoolID  int64
	Date      time.Time
	Status    string
	CreatedAt time.Time
}

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceExcused = "excused"
	AttendanceLate    = "late"
)
