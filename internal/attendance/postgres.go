package attendance

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// Repository persists attendance records and QR sessions in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordCols = `id, student_id, course_id, classroom_id, lecture_date, check_in_at, check_out_at, status, note, excuse_reason, created_at`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.CourseID, &rec.ClassroomID, &rec.LectureDate,
		&rec.CheckInAt, &rec.CheckOutAt, &rec.Status, &rec.Note, &rec.ExcuseReason, &rec.CreatedAt)
	return rec, err
}

// ForDay returns the attendance record for the lecture date, nil when absent.
func (r *Repository) ForDay(ctx context.Context, studentID, courseID string, day time.Time) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordCols+`
		FROM attendance_records
		WHERE student_id = $1 AND course_id = $2 AND lecture_date = $3
		ORDER BY created_at DESC
		LIMIT 1
	`, studentID, courseID, day.Format("2006-01-02"))
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert writes a new record; the partial unique index on open intervals
// turns a lost race into ErrOpenConflict.
func (r *Repository) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, student_id, course_id, classroom_id, lecture_date, check_in_at, check_out_at, status, note, excuse_reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at
	`, rec.ID, rec.StudentID, rec.CourseID, rec.ClassroomID, rec.LectureDate.Format("2006-01-02"),
		rec.CheckInAt, rec.CheckOutAt, rec.Status, rec.Note, rec.ExcuseReason)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return Record{}, ErrOpenConflict
		}
		return Record{}, err
	}
	return rec, nil
}

// Close stamps the check-out time and appends the note fragment.
func (r *Repository) Close(ctx context.Context, id string, at time.Time, note string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE attendance_records
		SET check_out_at = $2,
		    note = CASE WHEN note = '' THEN $3 ELSE note || '; ' || $3 END
		WHERE id = $1
		RETURNING `+recordCols+`
	`, id, at, note)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoOpenAttendance
	}
	return rec, err
}

// CountPresent counts PRESENT records for the student/course pair.
func (r *Repository) CountPresent(ctx context.Context, studentID, courseID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM attendance_records
		WHERE student_id = $1 AND course_id = $2 AND status = $3
	`, studentID, courseID, StatusPresent).Scan(&n)
	return n, err
}

// List returns records with basic filters, newest first.
func (r *Repository) List(ctx context.Context, studentID, courseID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + recordCols + ` FROM attendance_records`
	args := []any{}
	clauses := []string{}
	if studentID != "" {
		clauses = append(clauses, "student_id")
		args = append(args, studentID)
	}
	if courseID != "" {
		clauses = append(clauses, "course_id")
		args = append(args, courseID)
	}
	for i, col := range clauses {
		if i == 0 {
			query += " WHERE "
		} else {
			query += " AND "
		}
		query += col + " = $" + itoa(i+1)
	}
	query += " ORDER BY lecture_date DESC, created_at DESC LIMIT $" + itoa(len(args)+1) + " OFFSET $" + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// Get returns a session by id.
func (r *Repository) Get(ctx context.Context, id string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, classroom_id, course_id, url, active, created_at
		FROM qr_sessions WHERE id = $1
	`, id)
	var s Session
	err := row.Scan(&s.ID, &s.ClassroomID, &s.CourseID, &s.URL, &s.Active, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	return s, err
}

// ReplaceActive deactivates the classroom's live sessions and inserts the new
// one in one transaction, so the swap is never observed half-done.
func (r *Repository) ReplaceActive(ctx context.Context, s Session) (Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		UPDATE qr_sessions SET active = FALSE
		WHERE classroom_id = $1 AND active
	`, s.ClassroomID); err != nil {
		return Session{}, err
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO qr_sessions (id, classroom_id, course_id, url, active)
		VALUES ($1,$2,$3,$4,TRUE)
		RETURNING created_at
	`, s.ID, s.ClassroomID, s.CourseID, s.URL)
	if err := row.Scan(&s.CreatedAt); err != nil {
		return Session{}, err
	}
	s.Active = true
	return s, tx.Commit()
}

// Deactivate ends a session; already-inactive sessions pass through untouched.
func (r *Repository) Deactivate(ctx context.Context, id string) (Session, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE qr_sessions SET active = FALSE
		WHERE id = $1
		RETURNING id, classroom_id, course_id, url, active, created_at
	`, id)
	var s Session
	err := row.Scan(&s.ID, &s.ClassroomID, &s.CourseID, &s.URL, &s.Active, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	return s, err
}

func itoa(i int) string { return strconv.Itoa(i) }
