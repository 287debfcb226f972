package roster

import (
	"context"
	"errors"
	"time"
)

// Roster data is owned by the registrar system; this engine only reads it.

var (
	ErrNoCourseBound = errors.New("no course bound to classroom")
	ErrNoSchedule    = errors.New("course has no schedule")
)

// Role is resolved once at this boundary instead of re-deriving it from
// free-text fields per call.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleStaff      Role = "staff"
)

// Enrollment is one (student, course, classroom) registration tuple.
type Enrollment struct {
	RollID      int64
	StudentID   string
	CourseID    string
	ClassroomID string
	Role        Role
}

// Schedule defines the scheduled meeting pattern of a course.
type Schedule struct {
	CourseID  string
	StartDate time.Time
	EndDate   time.Time
	Weekdays  []time.Weekday
}

// ContainsWeekday reports whether d's weekday is a scheduled meeting day.
func (s Schedule) ContainsWeekday(d time.Time) bool {
	for _, wd := range s.Weekdays {
		if d.Weekday() == wd {
			return true
		}
	}
	return false
}

// Lookup is the read-only view of the registrar the attendance engine needs.
type Lookup interface {
	// EnrollmentsByStudent returns the student's enrollment tuples in stored
	// order. An empty slice is not an error.
	EnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error)
	// CourseForClassroom resolves the course currently bound to a classroom,
	// failing with ErrNoCourseBound when the room has none.
	CourseForClassroom(ctx context.Context, classroomID string) (string, error)
	// ScheduleForCourse fails with ErrNoSchedule when no pattern is defined.
	ScheduleForCourse(ctx context.Context, courseID string) (Schedule, error)
}
