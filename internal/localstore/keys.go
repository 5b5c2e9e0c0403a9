package localstore

// Key identifies a cached record. Domain collections are namespaced by user
// id so that two accounts signing in on the same device never see each
// other's cache.
type Key string

const (
	KeySession     Key = "session"
	KeyOfflineMode Key = "offline_mode"
)

func KeyAttendance(userID string) Key { return Key("attendance:" + userID) }
func KeySubjects(userID string) Key   { return Key("subjects:" + userID) }
func KeySchedule(userID string) Key   { return Key("schedule:" + userID) }
func KeyPoints(userID string) Key     { return Key("points:" + userID) }
func KeyTodos(userID string) Key      { return Key("todos:" + userID) }
func KeySettings(userID string) Key   { return Key("settings:" + userID) }

// DomainKeys lists every cached collection for a user; used on sign-out.
func DomainKeys(userID string) []Key {
	return []Key{
		KeyAttendance(userID),
		KeySubjects(userID),
		KeySchedule(userID),
		KeyPoints(userID),
		KeyTodos(userID),
		KeySettings(userID),
	}
}
