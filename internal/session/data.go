package session

import (
	"context"
	"errors"
	"net"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/localstore"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/model"
)

// ErrSignedOut is returned by data operations when no user is signed in.
var ErrSignedOut = errors.New("no signed-in user")

// isNetworkError separates unreachable-backend failures, which trigger the
// offline fallback, from server rejections, which do not.
func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func (c *Context) userID() (string, error) {
	session := c.Current()
	if !session.Valid() {
		return "", ErrSignedOut
	}
	return session.UserID, nil
}

// Reads are served from the local cache. The synchronizer keeps the cache
// current while connected, so a read never blocks on the network.

func (c *Context) Attendance() ([]model.AttendanceRecord, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	records := []model.AttendanceRecord{}
	c.store.Get(localstore.KeyAttendance(userID), &records)
	return records, nil
}

func (c *Context) Subjects() ([]model.SubjectSummary, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	subjects := []model.SubjectSummary{}
	c.store.Get(localstore.KeySubjects(userID), &subjects)
	return subjects, nil
}

func (c *Context) Schedule() ([]model.ScheduleEntry, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	entries := []model.ScheduleEntry{}
	c.store.Get(localstore.KeySchedule(userID), &entries)
	return entries, nil
}

func (c *Context) Points() (model.PointsState, error) {
	userID, err := c.userID()
	if err != nil {
		return model.PointsState{}, err
	}
	state := model.PointsState{Balance: model.DefaultPointsBalance}
	c.store.Get(localstore.KeyPoints(userID), &state)
	return state, nil
}

func (c *Context) Todos() ([]model.Todo, error) {
	userID, err := c.userID()
	if err != nil {
		return nil, err
	}
	todos := []model.Todo{}
	c.store.Get(localstore.KeyTodos(userID), &todos)
	return todos, nil
}

func (c *Context) Settings() (model.NotificationSettings, error) {
	userID, err := c.userID()
	if err != nil {
		return model.NotificationSettings{}, err
	}
	settings := model.NotificationSettings{ReminderHour: 18}
	c.store.Get(localstore.KeySettings(userID), &settings)
	return settings, nil
}

// Writes go to the backend first. When offline mode is active, or the
// backend turns out to be unreachable, the write lands in the local cache
// instead so no user action is lost; an unreachable backend also flips
// offline mode on.

func (c *Context) offlineWrite() bool {
	return c.offline != nil && c.offline.Enabled()
}

func (c *Context) fallBackOffline(err error) bool {
	if !isNetworkError(err) {
		return false
	}
	c.logger.Warn().Err(err).Msg("backend unreachable, saving locally")
	if c.offline != nil {
		c.offline.Enable()
	}
	return true
}

// MarkAttendance records attendance for a subject on a date.
func (c *Context) MarkAttendance(ctx context.Context, subjectID, date, status string) (model.AttendanceRecord, error) {
	userID, err := c.userID()
	if err != nil {
		return model.AttendanceRecord{}, err
	}
	record := model.AttendanceRecord{
		SubjectID: subjectID,
		Date:      date,
		Status:    status,
	}

	if !c.offlineWrite() {
		created, err := c.api.CreateAttendance(ctx, record)
		if err == nil {
			c.appendAttendance(userID, created)
			return created, nil
		}
		if !c.fallBackOffline(err) {
			return model.AttendanceRecord{}, err
		}
	}

	now := time.Now().UTC()
	record.ID = uuid.NewString()
	record.CreatedAt = now
	record.UpdatedAt = now
	c.appendAttendance(userID, record)
	return record, nil
}

func (c *Context) appendAttendance(userID string, record model.AttendanceRecord) {
	records := []model.AttendanceRecord{}
	c.store.Get(localstore.KeyAttendance(userID), &records)
	records = append(records, record)
	if err := c.store.Set(localstore.KeyAttendance(userID), records); err != nil {
		c.logger.Error().Err(err).Msg("cache attendance")
	}
}

// AddSubject creates a subject with a target attendance percentage.
func (c *Context) AddSubject(ctx context.Context, name string, targetPercent int) (model.Subject, error) {
	userID, err := c.userID()
	if err != nil {
		return model.Subject{}, err
	}

	if !c.offlineWrite() {
		created, err := c.api.CreateSubject(ctx, name, targetPercent)
		if err == nil {
			c.appendSubject(userID, model.SubjectSummary{Subject: created})
			return created, nil
		}
		if !c.fallBackOffline(err) {
			return model.Subject{}, err
		}
	}

	subject := model.Subject{
		ID:            uuid.NewString(),
		Name:          name,
		TargetPercent: targetPercent,
		CreatedAt:     time.Now().UTC(),
	}
	c.appendSubject(userID, model.SubjectSummary{Subject: subject})
	return subject, nil
}

func (c *Context) appendSubject(userID string, summary model.SubjectSummary) {
	subjects := []model.SubjectSummary{}
	c.store.Get(localstore.KeySubjects(userID), &subjects)
	subjects = append(subjects, summary)
	if err := c.store.Set(localstore.KeySubjects(userID), subjects); err != nil {
		c.logger.Error().Err(err).Msg("cache subjects")
	}
}

// SaveSchedule replaces the whole weekly schedule.
func (c *Context) SaveSchedule(ctx context.Context, entries []model.ScheduleEntry) error {
	userID, err := c.userID()
	if err != nil {
		return err
	}

	if !c.offlineWrite() {
		err := c.api.PutSchedule(ctx, entries)
		if err == nil {
			c.cacheSchedule(userID, entries)
			return nil
		}
		if !c.fallBackOffline(err) {
			return err
		}
	}

	c.cacheSchedule(userID, entries)
	return nil
}

func (c *Context) cacheSchedule(userID string, entries []model.ScheduleEntry) {
	if err := c.store.Set(localstore.KeySchedule(userID), entries); err != nil {
		c.logger.Error().Err(err).Msg("cache schedule")
	}
}

// AwardPoints adjusts the gamification balance. While offline the delta is
// applied to the cached balance; the server total wins on the next sync.
func (c *Context) AwardPoints(ctx context.Context, delta int, reason string) (model.PointsState, error) {
	userID, err := c.userID()
	if err != nil {
		return model.PointsState{}, err
	}

	if !c.offlineWrite() {
		state, err := c.api.AwardPoints(ctx, delta, reason)
		if err == nil {
			c.cachePoints(userID, state)
			return state, nil
		}
		if !c.fallBackOffline(err) {
			return model.PointsState{}, err
		}
	}

	state := model.PointsState{Balance: model.DefaultPointsBalance}
	c.store.Get(localstore.KeyPoints(userID), &state)
	state.Balance += delta
	state.UpdatedAt = time.Now().UTC()
	c.cachePoints(userID, state)
	return state, nil
}

func (c *Context) cachePoints(userID string, state model.PointsState) {
	if err := c.store.Set(localstore.KeyPoints(userID), state); err != nil {
		c.logger.Error().Err(err).Msg("cache points")
	}
}

// AddTodo creates a task.
func (c *Context) AddTodo(ctx context.Context, title string, dueDate *string) (model.Todo, error) {
	userID, err := c.userID()
	if err != nil {
		return model.Todo{}, err
	}
	todo := model.Todo{Title: title, DueDate: dueDate}

	if !c.offlineWrite() {
		created, err := c.api.CreateTodo(ctx, todo)
		if err == nil {
			c.appendTodo(userID, created)
			return created, nil
		}
		if !c.fallBackOffline(err) {
			return model.Todo{}, err
		}
	}

	now := time.Now().UTC()
	todo.ID = uuid.NewString()
	todo.CreatedAt = now
	todo.UpdatedAt = now
	c.appendTodo(userID, todo)
	return todo, nil
}

func (c *Context) appendTodo(userID string, todo model.Todo) {
	todos := []model.Todo{}
	c.store.Get(localstore.KeyTodos(userID), &todos)
	todos = append(todos, todo)
	if err := c.store.Set(localstore.KeyTodos(userID), todos); err != nil {
		c.logger.Error().Err(err).Msg("cache todos")
	}
}

// SaveSettings updates notification preferences.
func (c *Context) SaveSettings(ctx context.Context, settings model.NotificationSettings) (model.NotificationSettings, error) {
	userID, err := c.userID()
	if err != nil {
		return model.NotificationSettings{}, err
	}

	if !c.offlineWrite() {
		updated, err := c.api.PutSettings(ctx, settings)
		if err == nil {
			c.cacheSettings(userID, updated)
			return updated, nil
		}
		if !c.fallBackOffline(err) {
			return model.NotificationSettings{}, err
		}
	}

	c.cacheSettings(userID, settings)
	return settings, nil
}

func (c *Context) cacheSettings(userID string, settings model.NotificationSettings) {
	if err := c.store.Set(localstore.KeySettings(userID), settings); err != nil {
		c.logger.Error().Err(err).Msg("cache settings")
	}
}
