package attendance

import (
	"context"
	"time"
)

// RecordStore persists attendance records. Implementations must enforce the
// at-most-one-open-interval constraint and report violations as
// ErrOpenConflict.
type RecordStore interface {
	// ForDay returns the record for (student, course) on the given lecture
	// date, or nil when none exists.
	ForDay(ctx context.Context, studentID, courseID string, day time.Time) (*Record, error)
	Insert(ctx context.Context, rec Record) (Record, error)
	// Close sets the check-out timestamp and appends a note fragment.
	Close(ctx context.Context, id string, at time.Time, note string) (Record, error)
	// CountPresent counts records with status PRESENT for (student, course).
	CountPresent(ctx context.Context, studentID, courseID string) (int, error)
	List(ctx context.Context, studentID, courseID string, limit, offset int) ([]Record, error)
}

// SessionStore persists QR sessions. ReplaceActive must deactivate every
// active session for the classroom and insert the new one as a single atomic
// unit; no reader may observe two active sessions for one room.
type SessionStore interface {
	Get(ctx context.Context, id string) (Session, error)
	ReplaceActive(ctx context.Context, s Session) (Session, error)
	// Deactivate flips active to false. Deactivating an already-inactive
	// session is not an error.
	Deactivate(ctx context.Context, id string) (Session, error)
}
