package syncer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/localstore"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/model"
)

// API is the slice of the backend client the synchronizer pulls from.
type API interface {
	ListAttendance(ctx context.Context) ([]model.AttendanceRecord, error)
	ListSubjects(ctx context.Context) ([]model.SubjectSummary, error)
	GetSchedule(ctx context.Context) ([]model.ScheduleEntry, error)
	GetPoints(ctx context.Context) (model.PointsState, error)
	ListTodos(ctx context.Context) ([]model.Todo, error)
	GetSettings(ctx context.Context) (model.NotificationSettings, error)
}

// Result reports the outcome of one sync pass. Success means every
// collection was refreshed; a partial failure lists the collections that
// could not be pulled while the rest are still updated.
type Result struct {
	Success bool `json:"success"`
	Pulled  int  `json:"pulled"`
	// Pushed is always zero: sync is pull-only, so local edits made while
	// offline are replaced by the server copy rather than uploaded.
	Pushed int      `json:"pushed"`
	Errors []string `json:"errors,omitempty"`
}

// Syncer refreshes the local cache from the server. The server copy is
// authoritative: each pulled collection replaces the cached one wholesale,
// so running a sync twice in a row is a no-op for the second run.
type Syncer struct {
	api       API
	store     *localstore.Store
	connected func() bool
	logger    zerolog.Logger
}

func New(api API, store *localstore.Store, connected func() bool, logger zerolog.Logger) *Syncer {
	return &Syncer{api: api, store: store, connected: connected, logger: logger}
}

// FullSync pulls every collection for userID. It requires connectivity;
// without it nothing is touched and the result carries a single error.
func (s *Syncer) FullSync(ctx context.Context, userID string) Result {
	if userID == "" {
		return Result{Errors: []string{"no signed-in user"}}
	}
	if s.connected != nil && !s.connected() {
		return Result{Errors: []string{"not connected"}}
	}

	var result Result
	pull := func(name string, key localstore.Key, fetch func() (interface{}, error)) {
		value, err := fetch()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			s.logger.Error().Err(err).Str("collection", name).Msg("sync pull failed")
			return
		}
		if err := s.store.Set(key, value); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			s.logger.Error().Err(err).Str("collection", name).Msg("sync write failed")
			return
		}
		result.Pulled++
	}

	pull("attendance", localstore.KeyAttendance(userID), func() (interface{}, error) {
		return s.api.ListAttendance(ctx)
	})
	pull("subjects", localstore.KeySubjects(userID), func() (interface{}, error) {
		return s.api.ListSubjects(ctx)
	})
	pull("schedule", localstore.KeySchedule(userID), func() (interface{}, error) {
		return s.api.GetSchedule(ctx)
	})
	pull("points", localstore.KeyPoints(userID), func() (interface{}, error) {
		return s.api.GetPoints(ctx)
	})
	pull("todos", localstore.KeyTodos(userID), func() (interface{}, error) {
		return s.api.ListTodos(ctx)
	})
	pull("settings", localstore.KeySettings(userID), func() (interface{}, error) {
		return s.api.GetSettings(ctx)
	})

	result.Success = len(result.Errors) == 0
	s.logger.Info().
		Bool("success", result.Success).
		Int("pulled", result.Pulled).
		Int("errors", len(result.Errors)).
		Msg("sync finished")
	return result
}
