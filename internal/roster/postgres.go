package roster

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

// PostgresLookup reads roster tables maintained by the registrar.
type PostgresLookup struct {
	db *sql.DB
}

func NewPostgresLookup(db *sql.DB) *PostgresLookup {
	return &PostgresLookup{db: db}
}

func (l *PostgresLookup) EnrollmentsByStudent(ctx context.Context, studentID string) ([]Enrollment, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT e.id, e.student_id, e.course_id, e.classroom_id, s.role
		FROM enrollments e
		JOIN students s ON s.id = e.student_id
		WHERE e.student_id = $1
		ORDER BY e.id
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Enrollment
	for rows.Next() {
		var e Enrollment
		var role string
		if err := rows.Scan(&e.RollID, &e.StudentID, &e.CourseID, &e.ClassroomID, &role); err != nil {
			return nil, err
		}
		e.Role = Role(role)
		res = append(res, e)
	}
	return res, rows.Err()
}

func (l *PostgresLookup) CourseForClassroom(ctx context.Context, classroomID string) (string, error) {
	var courseID sql.NullString
	err := l.db.QueryRowContext(ctx,
		`SELECT course_id FROM classrooms WHERE id = $1`, classroomID).Scan(&courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoCourseBound
	}
	if err != nil {
		return "", err
	}
	if !courseID.Valid || courseID.String == "" {
		return "", ErrNoCourseBound
	}
	return courseID.String, nil
}

func (l *PostgresLookup) ScheduleForCourse(ctx context.Context, courseID string) (Schedule, error) {
	var sched Schedule
	var weekdays string
	err := l.db.QueryRowContext(ctx, `
		SELECT course_id, start_date, end_date, weekdays
		FROM course_schedules WHERE course_id = $1
	`, courseID).Scan(&sched.CourseID, &sched.StartDate, &sched.EndDate, &weekdays)
	if errors.Is(err, sql.ErrNoRows) {
		return Schedule{}, ErrNoSchedule
	}
	if err != nil {
		return Schedule{}, err
	}
	sched.Weekdays, err = parseWeekdays(weekdays)
	return sched, err
}

// parseWeekdays decodes the stored '1,3,5' form into time.Weekday values.
func parseWeekdays(s string) ([]time.Weekday, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			return nil, errors.New("bad weekday " + p)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}
