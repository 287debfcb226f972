package attendance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rollcall/internal/roster"
)

// In-memory fakes implementing the store interfaces, so the services are
// exercised without a database while keeping the uniqueness semantics the
// Postgres schema enforces.

type fakeRecordStore struct {
	mu   sync.Mutex
	recs []Record
	seq  int
}

func newFakeRecordStore() *fakeRecordStore { return &fakeRecordStore{} }

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func (f *fakeRecordStore) ForDay(_ context.Context, studentID, courseID string, day time.Time) (*Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.recs) - 1; i >= 0; i-- {
		r := f.recs[i]
		if r.StudentID == studentID && r.CourseID == courseID && sameDay(r.LectureDate, day) {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRecordStore) Insert(_ context.Context, rec Record) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.recs {
		if r.StudentID == rec.StudentID && r.CourseID == rec.CourseID &&
			sameDay(r.LectureDate, rec.LectureDate) && r.CheckOutAt == nil {
			return Record{}, ErrOpenConflict
		}
	}
	f.seq++
	rec.ID = fmt.Sprintf("rec-%d", f.seq)
	rec.CreatedAt = time.Now()
	f.recs = append(f.recs, rec)
	return rec, nil
}

func (f *fakeRecordStore) Close(_ context.Context, id string, at time.Time, note string) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.recs {
		if f.recs[i].ID == id {
			f.recs[i].CheckOutAt = &at
			if f.recs[i].Note == "" {
				f.recs[i].Note = note
			} else {
				f.recs[i].Note += "; " + note
			}
			return f.recs[i], nil
		}
	}
	return Record{}, ErrNoOpenAttendance
}

func (f *fakeRecordStore) CountPresent(_ context.Context, studentID, courseID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.recs {
		if r.StudentID == studentID && r.CourseID == courseID && r.Status == StatusPresent {
			n++
		}
	}
	return n, nil
}

func (f *fakeRecordStore) List(_ context.Context, studentID, courseID string, limit, offset int) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Record
	for _, r := range f.recs {
		if (studentID == "" || r.StudentID == studentID) && (courseID == "" || r.CourseID == courseID) {
			out = append(out, r)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]Session)}
}

func (f *fakeSessionStore) Get(_ context.Context, id string) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionStore) ReplaceActive(_ context.Context, s Session) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, prev := range f.sessions {
		if prev.ClassroomID == s.ClassroomID && prev.Active {
			prev.Active = false
			f.sessions[id] = prev
		}
	}
	s.Active = true
	s.CreatedAt = time.Now()
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionStore) Deactivate(_ context.Context, id string) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	s.Active = false
	f.sessions[id] = s
	return s, nil
}

func (f *fakeSessionStore) activeFor(classroomID string) []Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Session
	for _, s := range f.sessions {
		if s.ClassroomID == classroomID && s.Active {
			out = append(out, s)
		}
	}
	return out
}

type fakeRoster struct {
	enrollments map[string][]roster.Enrollment
	bindings    map[string]string
	schedules   map[string]roster.Schedule
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{
		enrollments: make(map[string][]roster.Enrollment),
		bindings:    make(map[string]string),
		schedules:   make(map[string]roster.Schedule),
	}
}

func (f *fakeRoster) enroll(studentID, courseID, classroomID string, role roster.Role) {
	f.enrollments[studentID] = append(f.enrollments[studentID], roster.Enrollment{
		RollID:      int64(len(f.enrollments[studentID]) + 1),
		StudentID:   studentID,
		CourseID:    courseID,
		ClassroomID: classroomID,
		Role:        role,
	})
}

func (f *fakeRoster) EnrollmentsByStudent(_ context.Context, studentID string) ([]roster.Enrollment, error) {
	return f.enrollments[studentID], nil
}

func (f *fakeRoster) CourseForClassroom(_ context.Context, classroomID string) (string, error) {
	course, ok := f.bindings[classroomID]
	if !ok || course == "" {
		return "", roster.ErrNoCourseBound
	}
	return course, nil
}

func (f *fakeRoster) ScheduleForCourse(_ context.Context, courseID string) (roster.Schedule, error) {
	sched, ok := f.schedules[courseID]
	if !ok {
		return roster.Schedule{}, roster.ErrNoSchedule
	}
	return sched, nil
}
