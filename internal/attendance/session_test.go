package attendance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"rollcall/internal/roster"
)

func newSessionFixture() (*SessionManager, *fakeSessionStore, *fakeRoster) {
	sessions := newFakeSessionStore()
	ro := newFakeRoster()
	mgr := NewSessionManager(sessions, ro, "http://localhost:8081", zap.NewNop().Sugar())
	return mgr, sessions, ro
}

func TestCreateSessionResolvesCourseAndURL(t *testing.T) {
	mgr, _, ro := newSessionFixture()
	ro.bindings["C1"] = "MATH101"

	s, err := mgr.Create(context.Background(), "C1")
	if err != nil {
		t.Fatal(err)
	}
	if s.CourseID != "MATH101" || s.ClassroomID != "C1" {
		t.Fatalf("got %s/%s", s.ClassroomID, s.CourseID)
	}
	if !s.Active {
		t.Fatal("new session must be active")
	}
	if !strings.HasSuffix(s.URL, "/q/"+s.ID) {
		t.Fatalf("url %q does not embed session id", s.URL)
	}
}

func TestCreateSessionSupersedesActive(t *testing.T) {
	mgr, sessions, ro := newSessionFixture()
	ro.bindings["C1"] = "MATH101"
	ctx := context.Background()

	s1, err := mgr.Create(ctx, "C1")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := mgr.Create(ctx, "C1")
	if err != nil {
		t.Fatal(err)
	}

	got1, _ := sessions.Get(ctx, s1.ID)
	got2, _ := sessions.Get(ctx, s2.ID)
	if got1.Active {
		t.Fatal("superseded session still active")
	}
	if !got2.Active {
		t.Fatal("new session not active")
	}
	if n := len(sessions.activeFor("C1")); n != 1 {
		t.Fatalf("active sessions for C1 = %d, want 1", n)
	}
}

func TestCreateSessionNoCourseBound(t *testing.T) {
	mgr, _, _ := newSessionFixture()

	_, err := mgr.Create(context.Background(), "empty-room")
	if !errors.Is(err, roster.ErrNoCourseBound) {
		t.Fatalf("err = %v, want ErrNoCourseBound", err)
	}
}

func TestEndSessionIdempotent(t *testing.T) {
	mgr, _, ro := newSessionFixture()
	ro.bindings["C1"] = "MATH101"
	ctx := context.Background()

	s, err := mgr.Create(ctx, "C1")
	if err != nil {
		t.Fatal(err)
	}

	ended, err := mgr.End(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ended.Active {
		t.Fatal("session still active after end")
	}

	again, err := mgr.End(ctx, s.ID)
	if err != nil {
		t.Fatalf("second end errored: %v", err)
	}
	if again.Active {
		t.Fatal("session re-activated")
	}
}

func TestGetSessionMissing(t *testing.T) {
	mgr, _, _ := newSessionFixture()

	if _, err := mgr.Get(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if _, err := mgr.End(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("end err = %v, want ErrSessionNotFound", err)
	}
}
