package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/localstore"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/model"
)

type fakeAPI struct {
	attendance    []model.AttendanceRecord
	subjects      []model.SubjectSummary
	schedule      []model.ScheduleEntry
	points        model.PointsState
	todos         []model.Todo
	settings      model.NotificationSettings
	attendanceErr error
	todosErr      error
}

func (f *fakeAPI) ListAttendance(ctx context.Context) ([]model.AttendanceRecord, error) {
	return f.attendance, f.attendanceErr
}
func (f *fakeAPI) ListSubjects(ctx context.Context) ([]model.SubjectSummary, error) {
	return f.subjects, nil
}
func (f *fakeAPI) GetSchedule(ctx context.Context) ([]model.ScheduleEntry, error) {
	return f.schedule, nil
}
func (f *fakeAPI) GetPoints(ctx context.Context) (model.PointsState, error) {
	return f.points, nil
}
func (f *fakeAPI) ListTodos(ctx context.Context) ([]model.Todo, error) {
	return f.todos, f.todosErr
}
func (f *fakeAPI) GetSettings(ctx context.Context) (model.NotificationSettings, error) {
	return f.settings, nil
}

func openTestStore(t *testing.T) *localstore.Store {
	t.Helper()
	store, err := localstore.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestFullSyncPullsEveryCollection(t *testing.T) {
	store := openTestStore(t)
	api := &fakeAPI{
		attendance: []model.AttendanceRecord{{ID: "r1", SubjectID: "s1", Date: "2026-03-02", Status: "present"}},
		points:     model.PointsState{Balance: 120},
	}
	s := New(api, store, func() bool { return true }, zerolog.Nop())

	result := s.FullSync(context.Background(), "user-1")
	if !result.Success || result.Pulled != 6 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Pushed != 0 {
		t.Fatalf("expected pull-only sync to push nothing, got %d", result.Pushed)
	}

	var records []model.AttendanceRecord
	if !store.Get(localstore.KeyAttendance("user-1"), &records) || len(records) != 1 {
		t.Fatalf("expected attendance cached, got %+v", records)
	}
	var points model.PointsState
	if !store.Get(localstore.KeyPoints("user-1"), &points) || points.Balance != 120 {
		t.Fatalf("expected points cached, got %+v", points)
	}
}

func TestFullSyncIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	api := &fakeAPI{
		attendance: []model.AttendanceRecord{{ID: "r1", SubjectID: "s1", Date: "2026-03-02", Status: "present"}},
	}
	s := New(api, store, func() bool { return true }, zerolog.Nop())

	first := s.FullSync(context.Background(), "user-1")
	second := s.FullSync(context.Background(), "user-1")
	if !first.Success || !second.Success {
		t.Fatalf("expected both passes to succeed: %+v %+v", first, second)
	}

	var records []model.AttendanceRecord
	if !store.Get(localstore.KeyAttendance("user-1"), &records) {
		t.Fatalf("expected attendance cached")
	}
	if len(records) != 1 || records[0].ID != "r1" {
		t.Fatalf("second pass changed data: %+v", records)
	}
}

func TestServerCopyWins(t *testing.T) {
	store := openTestStore(t)
	// Stale local edit that never reached the server.
	if err := store.Set(localstore.KeyTodos("user-1"), []model.Todo{{ID: "local-only", Title: "stale"}}); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	api := &fakeAPI{todos: []model.Todo{{ID: "t1", Title: "from server"}}}
	s := New(api, store, func() bool { return true }, zerolog.Nop())

	if result := s.FullSync(context.Background(), "user-1"); !result.Success {
		t.Fatalf("sync failed: %+v", result)
	}

	var todos []model.Todo
	if !store.Get(localstore.KeyTodos("user-1"), &todos) {
		t.Fatalf("expected todos cached")
	}
	if len(todos) != 1 || todos[0].ID != "t1" {
		t.Fatalf("expected server copy to replace local edit, got %+v", todos)
	}
}

func TestPartialFailureKeepsGoing(t *testing.T) {
	store := openTestStore(t)
	api := &fakeAPI{
		attendanceErr: errors.New("boom"),
		todos:         []model.Todo{{ID: "t1", Title: "ok"}},
	}
	s := New(api, store, func() bool { return true }, zerolog.Nop())

	result := s.FullSync(context.Background(), "user-1")
	if result.Success {
		t.Fatalf("expected failure result")
	}
	if result.Pulled != 5 || len(result.Errors) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if !strings.HasPrefix(result.Errors[0], "attendance:") {
		t.Fatalf("expected attendance error, got %v", result.Errors)
	}

	var todos []model.Todo
	if !store.Get(localstore.KeyTodos("user-1"), &todos) || len(todos) != 1 {
		t.Fatalf("expected todos still pulled, got %+v", todos)
	}
}

func TestSyncRequiresConnectivity(t *testing.T) {
	store := openTestStore(t)
	s := New(&fakeAPI{}, store, func() bool { return false }, zerolog.Nop())

	result := s.FullSync(context.Background(), "user-1")
	if result.Success || result.Pulled != 0 || result.Pushed != 0 {
		t.Fatalf("expected no-op result, got %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0] != "not connected" {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
}

func TestResultShapeOnTheWire(t *testing.T) {
	raw, err := json.Marshal(Result{Errors: []string{"not connected"}})
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	got := string(raw)
	for _, field := range []string{`"success":false`, `"pulled":0`, `"pushed":0`, `"errors":["not connected"]`} {
		if !strings.Contains(got, field) {
			t.Fatalf("expected %s in %s", field, got)
		}
	}
}

func TestSyncRequiresUser(t *testing.T) {
	store := openTestStore(t)
	s := New(&fakeAPI{}, store, func() bool { return true }, zerolog.Nop())

	result := s.FullSync(context.Background(), "")
	if result.Success || len(result.Errors) != 1 {
		t.Fatalf("expected error result, got %+v", result)
	}
}
