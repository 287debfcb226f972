package httpapi

import (
	"errors"
	"net/http"

	"rollcall/internal/attendance"
	"rollcall/internal/roster"
)

// Domain errors cross the boundary as stable codes plus an HTTP status, so
// every failure stays a distinct, user-actionable outcome.
var errTable = []struct {
	err    error
	status int
	code   string
}{
	{attendance.ErrSessionNotFound, http.StatusNotFound, "SessionNotFound"},
	{roster.ErrNoCourseBound, http.StatusNotFound, "NoCourseBound"},
	{attendance.ErrNotEnrolled, http.StatusNotFound, "StudentNotEnrolled"},
	{attendance.ErrNoOpenAttendance, http.StatusNotFound, "NoOpenAttendance"},
	{attendance.ErrSessionEnded, http.StatusConflict, "SessionEnded"},
	{attendance.ErrAlreadyCheckedIn, http.StatusConflict, "AlreadyCheckedIn"},
	{attendance.ErrAlreadyCompleted, http.StatusConflict, "AlreadyCompleted"},
	{attendance.ErrOpenConflict, http.StatusConflict, "AlreadyCheckedIn"},
	{attendance.ErrCourseMismatch, http.StatusUnprocessableEntity, "CourseMismatch"},
	{attendance.ErrClassroomMismatch, http.StatusUnprocessableEntity, "ClassroomMismatch"},
}

// classify maps a domain error onto (status, code); unknown errors are
// internal.
func classify(err error) (int, string) {
	for _, e := range errTable {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "Internal"
}
