package attendance

import "errors"

// Validation failures are surfaced to the caller as typed errors, never
// silently corrected; the operator resolves the real-world condition.
var (
	ErrSessionNotFound   = errors.New("qr session not found")
	ErrSessionEnded      = errors.New("qr session has ended")
	ErrNotEnrolled       = errors.New("student has no active enrollment")
	ErrCourseMismatch    = errors.New("course does not match any of the student's enrollments")
	ErrClassroomMismatch = errors.New("classroom does not match the student's enrollment for this course")
	ErrAlreadyCheckedIn  = errors.New("attendance already open for today")
	ErrAlreadyCompleted  = errors.New("attendance already completed for today")
	ErrNoOpenAttendance  = errors.New("no open attendance interval for today")

	// ErrOpenConflict is returned by stores when the open-interval uniqueness
	// constraint rejects an insert (a concurrent check-in won the race).
	ErrOpenConflict = errors.New("concurrent check-in conflict")
)
