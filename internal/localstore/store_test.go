package localstore

import (
	"testing"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSetGetRoundTrip(t *testing.T) {
	store := openTestStore(t)

	records := []model.AttendanceRecord{
		{ID: "r1", SubjectID: "s1", Date: "2026-02-02", Status: "present"},
		{ID: "r2", SubjectID: "s1", Date: "2026-02-03", Status: "absent"},
	}
	if err := store.Set(KeyAttendance("user-1"), records); err != nil {
		t.Fatalf("set error: %v", err)
	}

	var got []model.AttendanceRecord
	if !store.Get(KeyAttendance("user-1"), &got) {
		t.Fatalf("expected key to exist")
	}
	if len(got) != 2 || got[0].ID != "r1" || got[1].Status != "absent" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestGetMissingKeepsDefault(t *testing.T) {
	store := openTestStore(t)

	balance := 100
	if store.Get(KeyPoints("user-1"), &balance) {
		t.Fatalf("expected missing key")
	}
	if balance != 100 {
		t.Fatalf("expected default preserved, got %d", balance)
	}
}

func TestGetCorruptValueKeepsDefault(t *testing.T) {
	store := openTestStore(t)

	if err := store.putRaw(KeyTodos("user-1"), "{not json"); err != nil {
		t.Fatalf("putRaw error: %v", err)
	}

	todos := []model.Todo{{ID: "default"}}
	if store.Get(KeyTodos("user-1"), &todos) {
		t.Fatalf("expected corrupt value to be rejected")
	}
	if len(todos) != 1 || todos[0].ID != "default" {
		t.Fatalf("expected default preserved, got %+v", todos)
	}
}

func TestSetOverwrites(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set(KeyOfflineMode, true); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if err := store.Set(KeyOfflineMode, false); err != nil {
		t.Fatalf("set error: %v", err)
	}

	enabled := true
	if !store.Get(KeyOfflineMode, &enabled) {
		t.Fatalf("expected key to exist")
	}
	if enabled {
		t.Fatalf("expected last write to win")
	}
}

func TestClearRemovesEverything(t *testing.T) {
	store := openTestStore(t)

	for _, key := range DomainKeys("user-1") {
		if err := store.Set(key, map[string]string{"k": "v"}); err != nil {
			t.Fatalf("set error: %v", err)
		}
	}
	if err := store.Set(KeySession, model.Session{UserID: "user-1", Token: "tok"}); err != nil {
		t.Fatalf("set error: %v", err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear error: %v", err)
	}

	for _, key := range DomainKeys("user-1") {
		var out map[string]string
		if store.Get(key, &out) {
			t.Fatalf("expected %s to be cleared", key)
		}
	}
	var session model.Session
	if store.Get(KeySession, &session) {
		t.Fatalf("expected session to be cleared")
	}
}

func TestDeleteSubset(t *testing.T) {
	store := openTestStore(t)

	if err := store.Set(KeyTodos("user-1"), []string{"a"}); err != nil {
		t.Fatalf("set error: %v", err)
	}
	if err := store.Set(KeyOfflineMode, true); err != nil {
		t.Fatalf("set error: %v", err)
	}

	if err := store.Delete(KeyTodos("user-1")); err != nil {
		t.Fatalf("delete error: %v", err)
	}

	var todos []string
	if store.Get(KeyTodos("user-1"), &todos) {
		t.Fatalf("expected todos key removed")
	}
	enabled := false
	if !store.Get(KeyOfflineMode, &enabled) || !enabled {
		t.Fatalf("expected offline flag untouched")
	}
}
