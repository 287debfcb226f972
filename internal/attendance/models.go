package attendance

import "time"

// Canonical status labels stored on attendance records.
const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusLate    = "LATE"
)

// Record is one attendance interval for a student on one lecture date.
// Storage keeps the nullable-timestamp shape; transition legality is decided
// on the derived State, not on scattered nil checks.
type Record struct {
	ID           string     `json:"id"`
	StudentID    string     `json:"student_id"`
	CourseID     string     `json:"course_id"`
	ClassroomID  *string    `json:"classroom_id,omitempty"`
	LectureDate  time.Time  `json:"lecture_date"`
	CheckInAt    *time.Time `json:"check_in_at,omitempty"`
	CheckOutAt   *time.Time `json:"check_out_at,omitempty"`
	Status       string     `json:"status"`
	Note         string     `json:"note,omitempty"`
	ExcuseReason *string    `json:"excuse_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// State of the check-in/check-out machine for one (student, course, date).
type State int

const (
	StateNone State = iota
	StateCheckedIn
	StateCheckedOut
)

func (s State) String() string {
	switch s {
	case StateCheckedIn:
		return "CHECKED_IN"
	case StateCheckedOut:
		return "CHECKED_OUT"
	default:
		return "NONE"
	}
}

// StateOf derives the machine state from the stored timestamps.
func (r *Record) StateOf() State {
	switch {
	case r == nil || r.CheckInAt == nil:
		return StateNone
	case r.CheckOutAt == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// Action hints returned by TodayStatus so clients can pick the affordance.
const (
	ActionCheckIn           = "CHECK_IN"
	ActionCheckOut          = "CHECK_OUT"
	ActionAlreadyCheckedOut = "ALREADY_CHECKED_OUT"
)

// TodayStatus is the read-only view of today's machine state.
type TodayStatus struct {
	State  State   `json:"state"`
	Action string  `json:"action"`
	Record *Record `json:"record,omitempty"`
}

// Session is a classroom-scoped QR code for one course offering.
type Session struct {
	ID          string    `json:"id"`
	ClassroomID string    `json:"classroom_id"`
	CourseID    string    `json:"course_id"`
	URL         string    `json:"url"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
