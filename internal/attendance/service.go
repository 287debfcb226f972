package attendance

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"rollcall/internal/roster"
)

// Service drives the check-in/check-out state machine:
// NONE -> CHECKED_IN -> CHECKED_OUT, terminal once checked out.
type Service struct {
	records  RecordStore
	sessions SessionStore
	roster   roster.Lookup
	loc      *time.Location
	locks    *keyedMutex
	now      func() time.Time
	log      *zap.SugaredLogger
}

func NewService(records RecordStore, sessions SessionStore, lookup roster.Lookup, loc *time.Location, log *zap.SugaredLogger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		records:  records,
		sessions: sessions,
		roster:   lookup,
		loc:      loc,
		locks:    newKeyedMutex(),
		now:      time.Now,
		log:      log,
	}
}

// CheckInQR records attendance for a scanned session. The session must be
// live and its classroom must match the student's enrollment for the course.
func (s *Service) CheckInQR(ctx context.Context, studentID, sessionID string) (Record, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	if !sess.Active {
		return Record{}, ErrSessionEnded
	}
	return s.checkIn(ctx, studentID, sess.CourseID, sess.ClassroomID, true, time.Time{})
}

// CheckInDesk records attendance entered at a PC. The caller resolves the
// classroom itself, so the classroom match is deliberately not re-checked
// here; only the QR path validates it.
func (s *Service) CheckInDesk(ctx context.Context, studentID, courseID, classroomID string, at time.Time) (Record, error) {
	return s.checkIn(ctx, studentID, courseID, classroomID, false, at)
}

func (s *Service) checkIn(ctx context.Context, studentID, courseID, classroomID string, enforceClassroom bool, at time.Time) (Record, error) {
	enr, err := s.matchEnrollment(ctx, studentID, courseID)
	if err != nil {
		return Record{}, err
	}
	if enforceClassroom && enr.ClassroomID != classroomID {
		return Record{}, ErrClassroomMismatch
	}

	if at.IsZero() {
		at = s.now()
	}
	// "today" follows the check-in timestamp, so a scan just after midnight
	// lands on the new date.
	day := dateOnly(at.In(s.loc))

	unlock := s.locks.lock(dayKey(studentID, courseID, day))
	defer unlock()

	existing, err := s.records.ForDay(ctx, studentID, courseID, day)
	if err != nil {
		return Record{}, err
	}
	switch existing.StateOf() {
	case StateCheckedIn:
		return Record{}, ErrAlreadyCheckedIn
	case StateCheckedOut:
		return Record{}, ErrAlreadyCompleted
	}

	rec := Record{
		StudentID:   studentID,
		CourseID:    courseID,
		LectureDate: day,
		CheckInAt:   &at,
		Status:      StatusPresent,
	}
	if classroomID != "" {
		rec.ClassroomID = &classroomID
	}

	created, err := s.records.Insert(ctx, rec)
	if errors.Is(err, ErrOpenConflict) {
		// A concurrent check-in won the insert race; re-read once and report
		// the state it left behind.
		again, rerr := s.records.ForDay(ctx, studentID, courseID, day)
		if rerr == nil && again.StateOf() == StateCheckedOut {
			return Record{}, ErrAlreadyCompleted
		}
		return Record{}, ErrAlreadyCheckedIn
	}
	if err != nil {
		return Record{}, err
	}
	s.log.Infow("checked in", "student_id", studentID, "course_id", courseID, "record_id", created.ID)
	return created, nil
}

// CheckOut closes today's open interval. Enrollment is re-validated; the
// classroom is not.
func (s *Service) CheckOut(ctx context.Context, studentID, courseID string) (Record, error) {
	if _, err := s.matchEnrollment(ctx, studentID, courseID); err != nil {
		return Record{}, err
	}

	at := s.now()
	day := dateOnly(at.In(s.loc))

	unlock := s.locks.lock(dayKey(studentID, courseID, day))
	defer unlock()

	existing, err := s.records.ForDay(ctx, studentID, courseID, day)
	if err != nil {
		return Record{}, err
	}
	switch existing.StateOf() {
	case StateNone:
		return Record{}, ErrNoOpenAttendance
	case StateCheckedOut:
		return Record{}, ErrAlreadyCompleted
	}

	closed, err := s.records.Close(ctx, existing.ID, at, "checked out at "+at.Format(time.RFC3339))
	if err != nil {
		return Record{}, err
	}
	s.log.Infow("checked out", "student_id", studentID, "course_id", courseID, "record_id", closed.ID)
	return closed, nil
}

// TodayStatus is a pure read used by clients to pick the next affordance.
func (s *Service) TodayStatus(ctx context.Context, studentID, courseID string) (TodayStatus, error) {
	day := dateOnly(s.now().In(s.loc))
	rec, err := s.records.ForDay(ctx, studentID, courseID, day)
	if err != nil {
		return TodayStatus{}, err
	}
	st := rec.StateOf()
	action := ActionCheckIn
	switch st {
	case StateCheckedIn:
		action = ActionCheckOut
	case StateCheckedOut:
		action = ActionAlreadyCheckedOut
	}
	return TodayStatus{State: st, Action: action, Record: rec}, nil
}

// matchEnrollment applies the two validation shapes: the student must hold a
// learner enrollment at all, and one of those tuples must carry the course.
// On duplicate tuples for the same course the first by stored order wins.
func (s *Service) matchEnrollment(ctx context.Context, studentID, courseID string) (roster.Enrollment, error) {
	enrs, err := s.roster.EnrollmentsByStudent(ctx, studentID)
	if err != nil {
		return roster.Enrollment{}, err
	}
	learner := false
	for _, e := range enrs {
		if e.Role != roster.RoleStudent {
			continue
		}
		learner = true
		if e.CourseID == courseID {
			return e, nil
		}
	}
	if !learner {
		return roster.Enrollment{}, ErrNotEnrolled
	}
	return roster.Enrollment{}, ErrCourseMismatch
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayKey(studentID, courseID string, day time.Time) string {
	return studentID + "|" + courseID + "|" + day.Format("2006-01-02")
}
