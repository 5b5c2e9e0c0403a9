package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/model"
)

// Attendance

func (s *Store) CreateAttendance(ctx context.Context, record model.AttendanceRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO attendance_records (id, user_id, subject_id, date, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.UserID, record.SubjectID, record.Date, record.Status, record.CreatedAt, record.UpdatedAt)
	return err
}

func (s *Store) GetAttendance(ctx context.Context, userID, recordID string) (model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, subject_id, date, status, created_at, updated_at
		FROM attendance_records
		WHERE id = $1 AND user_id = $2
	`, recordID, userID)
	err := row.Scan(&record.ID, &record.UserID, &record.SubjectID, &record.Date, &record.Status, &record.CreatedAt, &record.UpdatedAt)
	return record, err
}

func (s *Store) ListAttendance(ctx context.Context, userID string) ([]model.AttendanceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, subject_id, date, status, created_at, updated_at
		FROM attendance_records
		WHERE user_id = $1
		ORDER BY date, created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.AttendanceRecord, 0)
	for rows.Next() {
		var record model.AttendanceRecord
		if err := rows.Scan(&record.ID, &record.UserID, &record.SubjectID, &record.Date, &record.Status, &record.CreatedAt, &record.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) UpdateAttendanceStatus(ctx context.Context, userID, recordID, status string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE attendance_records SET status = $1, updated_at = $2 WHERE id = $3 AND user_id = $4
	`, status, time.Now().UTC(), recordID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteAttendance(ctx context.Context, userID, recordID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM attendance_records WHERE id = $1 AND user_id = $2
	`, recordID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Subjects

func (s *Store) CreateSubject(ctx context.Context, subject model.Subject) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subjects (id, user_id, name, target_percent, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, subject.ID, subject.UserID, subject.Name, subject.TargetPercent, subject.CreatedAt)
	return err
}

// ListSubjectSummaries joins attendance counters in so the percentage is
// computed server-side rather than per-client.
func (s *Store) ListSubjectSummaries(ctx context.Context, userID string) ([]model.SubjectSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.user_id, s.name, s.target_percent, s.created_at,
			COUNT(a.id) FILTER (WHERE a.status = 'present') AS attended,
			COUNT(a.id) FILTER (WHERE a.status <> 'cancelled') AS total
		FROM subjects s
		LEFT JOIN attendance_records a ON a.subject_id = s.id AND a.user_id = s.user_id
		WHERE s.user_id = $1
		GROUP BY s.id
		ORDER BY s.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]model.SubjectSummary, 0)
	for rows.Next() {
		var summary model.SubjectSummary
		if err := rows.Scan(&summary.ID, &summary.UserID, &summary.Name, &summary.TargetPercent, &summary.CreatedAt, &summary.Attended, &summary.Total); err != nil {
			return nil, err
		}
		if summary.Total > 0 {
			summary.Percent = float64(summary.Attended) / float64(summary.Total) * 100
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func (s *Store) UpdateSubject(ctx context.Context, userID, subjectID string, name *string, targetPercent *int) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE subjects
		SET name = COALESCE($1, name), target_percent = COALESCE($2, target_percent)
		WHERE id = $3 AND user_id = $4
	`, name, targetPercent, subjectID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteSubject(ctx context.Context, userID, subjectID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM subjects WHERE id = $1 AND user_id = $2
	`, subjectID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Schedule

func (s *Store) GetSchedule(ctx context.Context, userID string) ([]model.ScheduleEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT weekday, subject_id
		FROM schedule_entries
		WHERE user_id = $1
		ORDER BY weekday, position
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byDay := make(map[int][]string)
	for rows.Next() {
		var weekday int
		var subjectID string
		if err := rows.Scan(&weekday, &subjectID); err != nil {
			return nil, err
		}
		byDay[weekday] = append(byDay[weekday], subjectID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]model.ScheduleEntry, 0, 7)
	for weekday := 0; weekday < 7; weekday++ {
		if subjectIDs, ok := byDay[weekday]; ok {
			entries = append(entries, model.ScheduleEntry{Weekday: weekday, SubjectIDs: subjectIDs})
		}
	}
	return entries, nil
}

// ReplaceSchedule swaps the whole weekly schedule in one transaction; the
// schedule is always written as a unit by clients.
func (s *Store) ReplaceSchedule(ctx context.Context, userID string, entries []model.ScheduleEntry) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_entries WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, entry := range entries {
		for position, subjectID := range entry.SubjectIDs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO schedule_entries (user_id, weekday, subject_id, position)
				VALUES ($1, $2, $3, $4)
			`, userID, entry.Weekday, subjectID, position); err != nil {
				return err
			}
		}
	}
	return tx.Commit(ctx)
}

// Points

func (s *Store) GetPoints(ctx context.Context, userID string) (model.PointsState, error) {
	var state model.PointsState
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, balance, updated_at FROM points WHERE user_id = $1
	`, userID)
	err := row.Scan(&state.UserID, &state.Balance, &state.UpdatedAt)
	return state, err
}

func (s *Store) SeedPoints(ctx context.Context, userID string, balance int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO points (user_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, balance, time.Now().UTC())
	return err
}

func (s *Store) AwardPoints(ctx context.Context, event model.PointsEvent) (model.PointsState, error) {
	var state model.PointsState
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return state, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	row := tx.QueryRow(ctx, `
		UPDATE points SET balance = balance + $1, updated_at = $2
		WHERE user_id = $3
		RETURNING user_id, balance, updated_at
	`, event.Delta, now, event.UserID)
	if err := row.Scan(&state.UserID, &state.Balance, &state.UpdatedAt); err != nil {
		return state, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO points_events (id, user_id, delta, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, event.ID, event.UserID, event.Delta, event.Reason, now); err != nil {
		return state, err
	}
	return state, tx.Commit(ctx)
}

// Todos

func (s *Store) CreateTodo(ctx context.Context, todo model.Todo) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO todos (id, user_id, title, done, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, todo.ID, todo.UserID, todo.Title, todo.Done, todo.DueDate, todo.CreatedAt, todo.UpdatedAt)
	return err
}

func (s *Store) ListTodos(ctx context.Context, userID string) ([]model.Todo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, done, due_date, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		var todo model.Todo
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Done, &todo.DueDate, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

func (s *Store) UpdateTodo(ctx context.Context, userID, todoID string, title *string, done *bool) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE todos
		SET title = COALESCE($1, title), done = COALESCE($2, done), updated_at = $3
		WHERE id = $4 AND user_id = $5
	`, title, done, time.Now().UTC(), todoID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) DeleteTodo(ctx context.Context, userID, todoID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM todos WHERE id = $1 AND user_id = $2
	`, todoID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Notification settings

func (s *Store) GetSettings(ctx context.Context, userID string) (model.NotificationSettings, error) {
	var settings model.NotificationSettings
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, email_enabled, push_enabled, reminder_hour
		FROM notification_settings
		WHERE user_id = $1
	`, userID)
	err := row.Scan(&settings.UserID, &settings.EmailEnabled, &settings.PushEnabled, &settings.ReminderHour)
	return settings, err
}

func (s *Store) PutSettings(ctx context.Context, settings model.NotificationSettings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO notification_settings (user_id, email_enabled, push_enabled, reminder_hour)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET email_enabled = $2, push_enabled = $3, reminder_hour = $4
	`, settings.UserID, settings.EmailEnabled, settings.PushEnabled, settings.ReminderHour)
	return err
}
