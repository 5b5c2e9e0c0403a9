package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/model"
)

// Attendance

type createAttendanceRequest struct {
	SubjectID string `json:"subjectId"`
	Date      string `json:"date"`
	Status    string `json:"status"`
}

type patchAttendanceRequest struct {
	Status *string `json:"status"`
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	records, err := s.store.ListAttendance(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, records)
}

func (s *Server) handleCreateAttendance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req createAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.SubjectID == "" || req.Date == "" || req.Status == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if _, err := uuid.Parse(req.SubjectID); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_subject")
		return
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date")
		return
	}
	status, err := normalizeAttendanceStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	now := time.Now().UTC()
	record := model.AttendanceRecord{
		ID:        uuid.NewString(),
		UserID:    claims.UserID,
		SubjectID: req.SubjectID,
		Date:      req.Date,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateAttendance(r.Context(), record); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				writeError(w, http.StatusConflict, "record_exists")
				return
			case "23503":
				writeError(w, http.StatusNotFound, "subject_not_found")
				return
			}
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusCreated, record)
}

func (s *Server) handlePatchAttendance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	recordID := chi.URLParam(r, "recordId")

	var req patchAttendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Status == nil {
		writeError(w, http.StatusBadRequest, "missing_status")
		return
	}
	status, err := normalizeAttendanceStatus(*req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	if err := s.store.UpdateAttendanceStatus(r.Context(), claims.UserID, recordID, status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "record_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	record, err := s.store.GetAttendance(r.Context(), claims.UserID, recordID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, record)
}

func (s *Server) handleDeleteAttendance(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	recordID := chi.URLParam(r, "recordId")

	deleted, err := s.store.DeleteAttendance(r.Context(), claims.UserID, recordID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "record_not_found")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func normalizeAttendanceStatus(status string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(status)) {
	case model.AttendancePresent:
		return model.AttendancePresent, nil
	case model.AttendanceAbsent:
		return model.AttendanceAbsent, nil
	case model.AttendanceCancelled:
		return model.AttendanceCancelled, nil
	default:
		return "", errors.New("unknown status")
	}
}

// Subjects

type createSubjectRequest struct {
	Name          string `json:"name"`
	TargetPercent *int   `json:"targetPercent"`
}

type patchSubjectRequest struct {
	Name          *string `json:"name"`
	TargetPercent *int    `json:"targetPercent"`
}

func (s *Server) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	summaries, err := s.store.ListSubjectSummaries(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, summaries)
}

func (s *Server) handleCreateSubject(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req createSubjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing_name")
		return
	}
	target := 75
	if req.TargetPercent != nil {
		if *req.TargetPercent < 0 || *req.TargetPercent > 100 {
			writeError(w, http.StatusBadRequest, "invalid_target")
			return
		}
		target = *req.TargetPercent
	}

	subject := model.Subject{
		ID:            uuid.NewString(),
		UserID:        claims.UserID,
		Name:          req.Name,
		TargetPercent: target,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.CreateSubject(r.Context(), subject); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusCreated, subject)
}

func (s *Server) handlePatchSubject(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	subjectID := chi.URLParam(r, "subjectId")

	var req patchSubjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.TargetPercent != nil && (*req.TargetPercent < 0 || *req.TargetPercent > 100) {
		writeError(w, http.StatusBadRequest, "invalid_target")
		return
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "missing_name")
			return
		}
		req.Name = &trimmed
	}

	if err := s.store.UpdateSubject(r.Context(), claims.UserID, subjectID, req.Name, req.TargetPercent); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "subject_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteSubject(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	subjectID := chi.URLParam(r, "subjectId")

	deleted, err := s.store.DeleteSubject(r.Context(), claims.UserID, subjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "subject_not_found")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Schedule

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	entries, err := s.store.GetSchedule(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, entries)
}

func (s *Server) handlePutSchedule(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var entries []model.ScheduleEntry
	if err := decodeJSON(r, &entries); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	for _, entry := range entries {
		if entry.Weekday < 0 || entry.Weekday > 6 {
			writeError(w, http.StatusBadRequest, "invalid_weekday")
			return
		}
		for _, subjectID := range entry.SubjectIDs {
			if _, err := uuid.Parse(subjectID); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_subject")
				return
			}
		}
	}

	if err := s.store.ReplaceSchedule(r.Context(), claims.UserID, entries); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Points

type awardPointsRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

func (s *Server) handleGetPoints(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	state, err := s.store.GetPoints(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Accounts created before points existed get seeded on first read.
			if err := s.store.SeedPoints(r.Context(), claims.UserID, model.DefaultPointsBalance); err != nil {
				writeError(w, http.StatusInternalServerError, "server_error")
				return
			}
			state, err = s.store.GetPoints(r.Context(), claims.UserID)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "server_error")
				return
			}
			writeData(w, http.StatusOK, state)
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, state)
}

func (s *Server) handleAwardPoints(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req awardPointsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "missing_delta")
		return
	}
	if strings.TrimSpace(req.Reason) == "" {
		writeError(w, http.StatusBadRequest, "missing_reason")
		return
	}

	state, err := s.store.AwardPoints(r.Context(), model.PointsEvent{
		ID:     uuid.NewString(),
		UserID: claims.UserID,
		Delta:  req.Delta,
		Reason: strings.TrimSpace(req.Reason),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "points_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, state)
}

// Todos

type createTodoRequest struct {
	Title   string  `json:"title"`
	DueDate *string `json:"dueDate"`
}

type patchTodoRequest struct {
	Title *string `json:"title"`
	Done  *bool   `json:"done"`
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	todos, err := s.store.ListTodos(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, todos)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var req createTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "missing_title")
		return
	}
	if req.DueDate != nil {
		if _, err := time.Parse("2006-01-02", *req.DueDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date")
			return
		}
	}

	now := time.Now().UTC()
	todo := model.Todo{
		ID:        uuid.NewString(),
		UserID:    claims.UserID,
		Title:     req.Title,
		DueDate:   req.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateTodo(r.Context(), todo); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusCreated, todo)
}

func (s *Server) handlePatchTodo(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	todoID := chi.URLParam(r, "todoId")

	var req patchTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Title == nil && req.Done == nil {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			writeError(w, http.StatusBadRequest, "missing_title")
			return
		}
		req.Title = &trimmed
	}

	if err := s.store.UpdateTodo(r.Context(), claims.UserID, todoID, req.Title, req.Done); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "todo_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	todoID := chi.URLParam(r, "todoId")

	deleted, err := s.store.DeleteTodo(r.Context(), claims.UserID, todoID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "todo_not_found")
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Settings

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	settings, err := s.store.GetSettings(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeData(w, http.StatusOK, model.NotificationSettings{UserID: claims.UserID, ReminderHour: 18})
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	var settings model.NotificationSettings
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if settings.ReminderHour < 0 || settings.ReminderHour > 23 {
		writeError(w, http.StatusBadRequest, "invalid_hour")
		return
	}
	settings.UserID = claims.UserID

	if err := s.store.PutSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeData(w, http.StatusOK, settings)
}
