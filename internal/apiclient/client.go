package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/model"
)

// ErrUnauthorized marks a 401 from the server: the token is no longer
// trusted and the caller should drop to the login flow.
var ErrUnauthorized = errors.New("unauthorized")

// Client talks to the TrackLy backend. Every response is wrapped in the
// `{success, data}` / `{success:false, message}` envelope.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// Callers pass a context for tighter bounds; this caps requests
		// that forget to.
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		if env.Message == "" {
			return fmt.Errorf("request failed with status %d", resp.StatusCode)
		}
		return errors.New(env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// Health checks backend reachability. Any transport error, timeout, or
// non-ok status is a failure.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}

// Auth

type authData struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (d authData) session() model.Session {
	return model.Session{
		UserID:    d.User.ID,
		Email:     d.User.Email,
		Name:      d.User.Name,
		Role:      d.User.Role,
		Token:     d.Token,
		ExpiresAt: time.Unix(d.ExpiresAt, 0).UTC(),
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (model.Session, error) {
	var data authData
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &data)
	if err != nil {
		return model.Session{}, err
	}
	return data.session(), nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (model.Session, error) {
	var data authData
	err := c.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
		"name":     name,
	}, &data)
	if err != nil {
		return model.Session{}, err
	}
	return data.session(), nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Collections

func (c *Client) ListAttendance(ctx context.Context) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := c.do(ctx, http.MethodGet, "/attendance", nil, &records)
	return records, err
}

func (c *Client) CreateAttendance(ctx context.Context, record model.AttendanceRecord) (model.AttendanceRecord, error) {
	var created model.AttendanceRecord
	err := c.do(ctx, http.MethodPost, "/attendance", map[string]string{
		"subjectId": record.SubjectID,
		"date":      record.Date,
		"status":    record.Status,
	}, &created)
	return created, err
}

func (c *Client) ListSubjects(ctx context.Context) ([]model.SubjectSummary, error) {
	var subjects []model.SubjectSummary
	err := c.do(ctx, http.MethodGet, "/subjects", nil, &subjects)
	return subjects, err
}

func (c *Client) CreateSubject(ctx context.Context, name string, targetPercent int) (model.Subject, error) {
	var created model.Subject
	err := c.do(ctx, http.MethodPost, "/subjects", map[string]interface{}{
		"name":          name,
		"targetPercent": targetPercent,
	}, &created)
	return created, err
}

func (c *Client) GetSchedule(ctx context.Context) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := c.do(ctx, http.MethodGet, "/schedule", nil, &entries)
	return entries, err
}

func (c *Client) PutSchedule(ctx context.Context, entries []model.ScheduleEntry) error {
	return c.do(ctx, http.MethodPut, "/schedule", entries, nil)
}

func (c *Client) GetPoints(ctx context.Context) (model.PointsState, error) {
	var state model.PointsState
	err := c.do(ctx, http.MethodGet, "/points", nil, &state)
	return state, err
}

func (c *Client) AwardPoints(ctx context.Context, delta int, reason string) (model.PointsState, error) {
	var state model.PointsState
	err := c.do(ctx, http.MethodPost, "/points/award", map[string]interface{}{
		"delta":  delta,
		"reason": reason,
	}, &state)
	return state, err
}

func (c *Client) ListTodos(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	err := c.do(ctx, http.MethodGet, "/todos", nil, &todos)
	return todos, err
}

func (c *Client) CreateTodo(ctx context.Context, todo model.Todo) (model.Todo, error) {
	payload := map[string]interface{}{"title": todo.Title}
	if todo.DueDate != nil {
		payload["dueDate"] = *todo.DueDate
	}
	var created model.Todo
	err := c.do(ctx, http.MethodPost, "/todos", payload, &created)
	return created, err
}

func (c *Client) GetSettings(ctx context.Context) (model.NotificationSettings, error) {
	var settings model.NotificationSettings
	err := c.do(ctx, http.MethodGet, "/settings", nil, &settings)
	return settings, err
}

func (c *Client) PutSettings(ctx context.Context, settings model.NotificationSettings) (model.NotificationSettings, error) {
	var updated model.NotificationSettings
	err := c.do(ctx, http.MethodPut, "/settings", settings, &updated)
	return updated, err
}
