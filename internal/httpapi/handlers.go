package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rollcall/internal/attendance"
	"rollcall/internal/metrics"
	"rollcall/internal/observability"
	"rollcall/internal/queue"
)

// API wires the attendance engine to its HTTP boundary.
type API struct {
	sessions *attendance.SessionManager
	svc      *attendance.Service
	rate     *attendance.RateCalculator
	records  attendance.RecordStore
	q        queue.Queue
	log      *zap.SugaredLogger
}

func New(sessions *attendance.SessionManager, svc *attendance.Service, rate *attendance.RateCalculator,
	records attendance.RecordStore, q queue.Queue, log *zap.SugaredLogger) *API {
	return &API{sessions: sessions, svc: svc, rate: rate, records: records, q: q, log: log}
}

// Register mounts the routes. Scan dereference stays outside the auth group
// so a freshly scanned code resolves before the student app authenticates.
func (a *API) Register(r *gin.Engine, authmw gin.HandlerFunc) {
	r.GET("/q/:sessionID", a.resolveScan)

	v1 := r.Group("/v1", authmw)
	v1.POST("/classrooms/:classroomID/qr-sessions", a.createSession)
	v1.GET("/qr-sessions/:sessionID", a.getSession)
	v1.DELETE("/qr-sessions/:sessionID", a.endSession)
	v1.POST("/checkins/qr", a.checkInQR)
	v1.POST("/checkins/desk", a.checkInDesk)
	v1.POST("/checkouts", a.checkOut)
	v1.GET("/attendance/today", a.todayStatus)
	v1.GET("/attendance/rate", a.attendanceRate)
	v1.GET("/attendance", a.listAttendance)
}

func (a *API) fail(c *gin.Context, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		a.log.Errorw("request failed", "path", c.FullPath(), "err", err)
		observability.CaptureErr(err)
	}
	c.JSON(status, gin.H{"error": code})
}

func (a *API) publish(c *gin.Context, evt queue.Event) {
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	if err := a.q.Publish(c.Request.Context(), evt); err != nil {
		a.log.Warnw("queue publish failed", "kind", evt.Kind, "err", err)
	}
}

func sessionStatus(s attendance.Session) string {
	if s.Active {
		return "ACTIVE"
	}
	return "ENDED"
}

func (a *API) createSession(c *gin.Context) {
	classroomID := c.Param("classroomID")
	s, err := a.sessions.Create(c.Request.Context(), classroomID)
	if err != nil {
		a.fail(c, err)
		return
	}
	metrics.SessionsCreated.Inc()
	a.publish(c, queue.Event{Kind: "session_created", SessionID: s.ID, ClassroomID: s.ClassroomID, CourseID: s.CourseID})
	c.JSON(http.StatusCreated, gin.H{
		"session_id":   s.ID,
		"classroom_id": s.ClassroomID,
		"course_id":    s.CourseID,
		"url":          s.URL,
		"status":       sessionStatus(s),
	})
}

func (a *API) getSession(c *gin.Context) {
	s, err := a.sessions.Get(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id":   s.ID,
		"classroom_id": s.ClassroomID,
		"course_id":    s.CourseID,
		"status":       sessionStatus(s),
	})
}

// resolveScan is the dereference target embedded in the QR URL; scanning is
// this lookup followed by a QR check-in.
func (a *API) resolveScan(c *gin.Context) {
	a.getSession(c)
}

func (a *API) endSession(c *gin.Context) {
	id := c.Param("sessionID")
	s, err := a.sessions.End(c.Request.Context(), id)
	if err != nil {
		a.fail(c, err)
		return
	}
	metrics.SessionsEnded.Inc()
	a.publish(c, queue.Event{Kind: "session_ended", SessionID: s.ID, ClassroomID: s.ClassroomID, CourseID: s.CourseID})
	c.JSON(http.StatusOK, gin.H{"session_id": s.ID, "status": sessionStatus(s)})
}

func (a *API) checkInQR(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id" binding:"required"`
		SessionID string `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.svc.CheckInQR(c.Request.Context(), req.StudentID, req.SessionID)
	if err != nil {
		_, code := classify(err)
		metrics.CheckIns.WithLabelValues("qr", code).Inc()
		a.fail(c, err)
		return
	}
	metrics.CheckIns.WithLabelValues("qr", "ok").Inc()
	a.publish(c, queue.Event{Kind: "check_in", StudentID: rec.StudentID, CourseID: rec.CourseID, SessionID: req.SessionID, RecordID: rec.ID})
	c.JSON(http.StatusCreated, gin.H{
		"attendance_id": rec.ID,
		"status":        rec.Status,
		"check_in_time": rec.CheckInAt,
	})
}

func (a *API) checkInDesk(c *gin.Context) {
	var req struct {
		StudentID   string    `json:"student_id" binding:"required"`
		CourseID    string    `json:"course_id" binding:"required"`
		ClassroomID string    `json:"classroom_id"`
		CheckInTime time.Time `json:"check_in_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.svc.CheckInDesk(c.Request.Context(), req.StudentID, req.CourseID, req.ClassroomID, req.CheckInTime)
	if err != nil {
		_, code := classify(err)
		metrics.CheckIns.WithLabelValues("desk", code).Inc()
		a.fail(c, err)
		return
	}
	metrics.CheckIns.WithLabelValues("desk", "ok").Inc()
	a.publish(c, queue.Event{Kind: "check_in", StudentID: rec.StudentID, CourseID: rec.CourseID, RecordID: rec.ID})
	c.JSON(http.StatusCreated, gin.H{
		"attendance_id": rec.ID,
		"status":        rec.Status,
		"check_in_time": rec.CheckInAt,
	})
}

func (a *API) checkOut(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id" binding:"required"`
		CourseID  string `json:"course_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := a.svc.CheckOut(c.Request.Context(), req.StudentID, req.CourseID)
	if err != nil {
		_, code := classify(err)
		metrics.CheckOuts.WithLabelValues(code).Inc()
		a.fail(c, err)
		return
	}
	metrics.CheckOuts.WithLabelValues("ok").Inc()
	a.publish(c, queue.Event{Kind: "check_out", StudentID: rec.StudentID, CourseID: rec.CourseID, RecordID: rec.ID})
	c.JSON(http.StatusOK, gin.H{
		"attendance_id":  rec.ID,
		"check_out_time": rec.CheckOutAt,
	})
}

func (a *API) todayStatus(c *gin.Context) {
	studentID, courseID := c.Query("student_id"), c.Query("course_id")
	if studentID == "" || courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and course_id required"})
		return
	}
	st, err := a.svc.TodayStatus(c.Request.Context(), studentID, courseID)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"state":  st.State.String(),
		"action": st.Action,
		"record": st.Record,
	})
}

func (a *API) attendanceRate(c *gin.Context) {
	studentID, courseID := c.Query("student_id"), c.Query("course_id")
	if studentID == "" || courseID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and course_id required"})
		return
	}
	start := time.Now()
	rate, err := a.rate.ComputeRate(c.Request.Context(), studentID, courseID)
	if err != nil {
		a.fail(c, err)
		return
	}
	metrics.RateCalc.Observe(time.Since(start).Seconds())
	c.JSON(http.StatusOK, gin.H{"student_id": studentID, "course_id": courseID, "rate": rate})
}

func (a *API) listAttendance(c *gin.Context) {
	limit, offset := 50, 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	recs, err := a.records.List(c.Request.Context(), c.Query("student_id"), c.Query("course_id"), limit, offset)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": recs})
}
