package attendance

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rollcall/internal/roster"
)

// SessionManager owns the QR session lifecycle. A classroom has at most one
// live session; creating a new one supersedes the previous session instead of
// rejecting the create, matching the instructor workflow of restarting a
// session per lecture.
type SessionManager struct {
	store   SessionStore
	roster  roster.Lookup
	baseURL string
	log     *zap.SugaredLogger
}

func NewSessionManager(store SessionStore, lookup roster.Lookup, baseURL string, log *zap.SugaredLogger) *SessionManager {
	return &SessionManager{store: store, roster: lookup, baseURL: baseURL, log: log}
}

// Create resolves the course bound to the classroom and atomically replaces
// any live session for that room. Superseded sessions stay inert for audit.
func (m *SessionManager) Create(ctx context.Context, classroomID string) (Session, error) {
	courseID, err := m.roster.CourseForClassroom(ctx, classroomID)
	if err != nil {
		return Session{}, err
	}

	s := Session{
		ID:          uuid.NewString(),
		ClassroomID: classroomID,
		CourseID:    courseID,
	}
	s.URL = m.baseURL + "/q/" + s.ID

	created, err := m.store.ReplaceActive(ctx, s)
	if err != nil {
		return Session{}, err
	}
	m.log.Infow("qr session created", "session_id", created.ID, "classroom_id", classroomID, "course_id", courseID)
	return created, nil
}

// Get is a pure read.
func (m *SessionManager) Get(ctx context.Context, id string) (Session, error) {
	return m.store.Get(ctx, id)
}

// End deactivates a session. Ending an already-ended session is a no-op.
func (m *SessionManager) End(ctx context.Context, id string) (Session, error) {
	s, err := m.store.Deactivate(ctx, id)
	if err != nil {
		return Session{}, err
	}
	m.log.Infow("qr session ended", "session_id", id)
	return s, nil
}
