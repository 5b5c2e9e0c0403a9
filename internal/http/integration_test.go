package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type authData struct {
	Token string `json:"token"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func doReq(t *testing.T, method, url, token string, payload interface{}) envelope {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestAttendanceFlow(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") != "1" {
		t.Skip("set INTEGRATION_TESTS=1 to run")
	}
	baseURL := getenv("TRACKLY_HTTP_ADDR", "http://127.0.0.1:8080")

	email := fmt.Sprintf("student-%d@demo.local", time.Now().UnixNano())
	env := doReq(t, http.MethodPost, baseURL+"/auth/register", "", map[string]string{
		"email":    email,
		"password": "dev-password",
		"name":     "Demo Student",
	})
	if !env.Success {
		t.Fatalf("register failed: %s", env.Message)
	}
	var creds authData
	if err := json.Unmarshal(env.Data, &creds); err != nil {
		t.Fatalf("decode auth data: %v", err)
	}

	// Fresh accounts carry the default points balance.
	env = doReq(t, http.MethodGet, baseURL+"/points", creds.Token, nil)
	if !env.Success {
		t.Fatalf("points fetch failed: %s", env.Message)
	}
	var points struct {
		Balance int `json:"balance"`
	}
	if err := json.Unmarshal(env.Data, &points); err != nil {
		t.Fatalf("decode points: %v", err)
	}
	if points.Balance != 100 {
		t.Fatalf("expected seeded balance 100, got %d", points.Balance)
	}

	env = doReq(t, http.MethodPost, baseURL+"/subjects", creds.Token, map[string]interface{}{
		"name":          "Operating Systems",
		"targetPercent": 80,
	})
	if !env.Success {
		t.Fatalf("subject create failed: %s", env.Message)
	}
	var subject struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(env.Data, &subject); err != nil {
		t.Fatalf("decode subject: %v", err)
	}

	env = doReq(t, http.MethodPost, baseURL+"/attendance", creds.Token, map[string]string{
		"subjectId": subject.ID,
		"date":      "2026-02-02",
		"status":    "present",
	})
	if !env.Success {
		t.Fatalf("attendance create failed: %s", env.Message)
	}

	// Duplicate day+subject is rejected.
	env = doReq(t, http.MethodPost, baseURL+"/attendance", creds.Token, map[string]string{
		"subjectId": subject.ID,
		"date":      "2026-02-02",
		"status":    "absent",
	})
	if env.Success || env.Message != "record_exists" {
		t.Fatalf("expected record_exists, got success=%v message=%s", env.Success, env.Message)
	}

	env = doReq(t, http.MethodGet, baseURL+"/subjects", creds.Token, nil)
	if !env.Success {
		t.Fatalf("subject list failed: %s", env.Message)
	}
	var summaries []struct {
		Attended int     `json:"attended"`
		Total    int     `json:"total"`
		Percent  float64 `json:"percent"`
	}
	if err := json.Unmarshal(env.Data, &summaries); err != nil {
		t.Fatalf("decode summaries: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Attended != 1 || summaries[0].Total != 1 {
		t.Fatalf("unexpected summary: %+v", summaries)
	}

	// Logout revokes the token.
	env = doReq(t, http.MethodPost, baseURL+"/auth/logout", creds.Token, nil)
	if !env.Success {
		t.Fatalf("logout failed: %s", env.Message)
	}
	env = doReq(t, http.MethodGet, baseURL+"/auth/me", creds.Token, nil)
	if env.Success {
		t.Fatalf("expected revoked token to be rejected")
	}
}
