package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLoginDecodesSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"tok-1","expiresAt":1767225600,"user":{"id":"u1","email":"a@b.c","name":"Ada","role":"student"}}}`))
	}))
	defer ts.Close()

	client := New(ts.URL)
	session, err := client.Login(context.Background(), "a@b.c", "secret")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	if session.UserID != "u1" || session.Token != "tok-1" || session.Role != "student" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.ExpiresAt != time.Unix(1767225600, 0).UTC() {
		t.Fatalf("unexpected expiry: %v", session.ExpiresAt)
	}
}

func TestUnauthorizedIsTyped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	client := New(ts.URL)
	if _, err := client.ListTodos(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestErrorEnvelopeSurfacesMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"message":"record_exists"}`))
	}))
	defer ts.Close()

	client := New(ts.URL)
	_, err := client.ListAttendance(context.Background())
	if err == nil || err.Error() != "record_exists" {
		t.Fatalf("expected record_exists, got %v", err)
	}
}

func TestTokenAttachedAsBearer(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer ts.Close()

	client := New(ts.URL)
	client.SetToken("tok-9")
	if _, err := client.ListSubjects(context.Background()); err != nil {
		t.Fatalf("list error: %v", err)
	}
	if gotAuth != "Bearer tok-9" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestHealthRejectsNonOK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := New(ts.URL)
	if err := client.Health(context.Background()); err == nil {
		t.Fatalf("expected health failure")
	}
}
