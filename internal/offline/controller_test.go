package offline

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/localstore"
)

type recordingNotifier struct {
	events []string
}

func (n *recordingNotifier) Notify(event, message string) {
	n.events = append(n.events, event)
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

func TestEnableAlwaysSucceedsAndPersists(t *testing.T) {
	store := openTestStore(t)
	notifier := &recordingNotifier{}
	c := New(store, func(ctx context.Context) bool { return false }, notifier, zerolog.Nop())

	c.Enable()
	if !c.Enabled() {
		t.Fatalf("expected offline mode enabled")
	}

	// A fresh controller over the same store sees the persisted flag.
	again := New(store, nil, nil, zerolog.Nop())
	if !again.Enabled() {
		t.Fatalf("expected persisted flag to survive restart")
	}
	if len(notifier.events) != 1 || notifier.events[0] != "offline" {
		t.Fatalf("unexpected notifications: %v", notifier.events)
	}
}

func TestEnableIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	notifier := &recordingNotifier{}
	c := New(store, nil, notifier, zerolog.Nop())

	c.Enable()
	c.Enable()
	if len(notifier.events) != 1 {
		t.Fatalf("expected one notification, got %v", notifier.events)
	}
}

func TestEnableRepersistsAfterStoreWipe(t *testing.T) {
	store := openTestStore(t)
	c := New(store, nil, nil, zerolog.Nop())
	c.Enable()

	// Sign-out wipes the whole store while the controller keeps its
	// in-memory flag.
	if err := store.Clear(); err != nil {
		t.Fatalf("clear store: %v", err)
	}

	c.Enable()
	restarted := New(store, nil, nil, zerolog.Nop())
	if !restarted.Enabled() {
		t.Fatalf("expected flag re-persisted after store wipe")
	}
}

func TestDisableGatedOnConnectivity(t *testing.T) {
	store := openTestStore(t)
	reachable := false
	c := New(store, func(ctx context.Context) bool { return reachable }, nil, zerolog.Nop())
	c.Enable()

	if c.Disable(context.Background()) {
		t.Fatalf("expected disable to fail while unreachable")
	}
	if !c.Enabled() {
		t.Fatalf("expected flag untouched after failed disable")
	}

	reachable = true
	if !c.Disable(context.Background()) {
		t.Fatalf("expected disable to succeed once reachable")
	}
	if c.Enabled() {
		t.Fatalf("expected offline mode off")
	}
}

func TestForceDisableSkipsCheck(t *testing.T) {
	store := openTestStore(t)
	c := New(store, func(ctx context.Context) bool { return false }, nil, zerolog.Nop())
	c.Enable()

	c.ForceDisable()
	if c.Enabled() {
		t.Fatalf("expected offline mode off")
	}

	var persisted bool
	if !store.Get(localstore.KeyOfflineMode, &persisted) || persisted {
		t.Fatalf("expected persisted flag false")
	}
}
