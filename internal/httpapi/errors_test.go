package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"rollcall/internal/attendance"
	"rollcall/internal/roster"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{attendance.ErrSessionNotFound, http.StatusNotFound, "SessionNotFound"},
		{roster.ErrNoCourseBound, http.StatusNotFound, "NoCourseBound"},
		{attendance.ErrNotEnrolled, http.StatusNotFound, "StudentNotEnrolled"},
		{attendance.ErrNoOpenAttendance, http.StatusNotFound, "NoOpenAttendance"},
		{attendance.ErrAlreadyCheckedIn, http.StatusConflict, "AlreadyCheckedIn"},
		{attendance.ErrAlreadyCompleted, http.StatusConflict, "AlreadyCompleted"},
		{attendance.ErrSessionEnded, http.StatusConflict, "SessionEnded"},
		{attendance.ErrCourseMismatch, http.StatusUnprocessableEntity, "CourseMismatch"},
		{attendance.ErrClassroomMismatch, http.StatusUnprocessableEntity, "ClassroomMismatch"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal"},
	}
	for _, tt := range tests {
		status, code := classify(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("classify(%v) = %d/%s, want %d/%s", tt.err, status, code, tt.status, tt.code)
		}
	}

	// Wrapped errors still classify by kind.
	status, code := classify(fmt.Errorf("check in: %w", attendance.ErrAlreadyCheckedIn))
	if status != http.StatusConflict || code != "AlreadyCheckedIn" {
		t.Errorf("wrapped classify = %d/%s", status, code)
	}
}
