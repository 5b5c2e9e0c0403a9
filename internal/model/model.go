package model

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// AttendanceRecord is a single class attendance entry for one subject on one day.
type AttendanceRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	SubjectID string    `json:"subjectId"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	AttendancePresent   = "present"
	AttendanceAbsent    = "absent"
	AttendanceCancelled = "cancelled"
)

type Subject struct {
	ID            string    `json:"id"`
	UserID        string    `json:"-"`
	Name          string    `json:"name"`
	TargetPercent int       `json:"targetPercent"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SubjectSummary is a subject with its attendance counters filled in.
type SubjectSummary struct {
	Subject
	Attended int     `json:"attended"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
}

// ScheduleEntry maps a weekday (0=Sunday..6=Saturday) to the subjects taught that day.
type ScheduleEntry struct {
	Weekday    int      `json:"weekday"`
	SubjectIDs []string `json:"subjectIds"`
}

type PointsState struct {
	UserID    string    `json:"-"`
	Balance   int       `json:"balance"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultPointsBalance is granted once when an account first syncs.
const DefaultPointsBalance = 100

type PointsEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"createdAt"`
}

type Todo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	DueDate   *string   `json:"dueDate,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NotificationSettings struct {
	UserID       string `json:"-"`
	EmailEnabled bool   `json:"emailEnabled"`
	PushEnabled  bool   `json:"pushEnabled"`
	ReminderHour int    `json:"reminderHour"`
}

// Session is the authenticated user context held by the agent.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Valid() bool {
	return s.UserID != "" && s.Token != ""
}
