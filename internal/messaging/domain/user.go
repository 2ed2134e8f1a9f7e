package domain

// User definition the session/current-user shape consumed by every operation
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Roles known to the school system
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// IsBound report whether a real session is behind this user.
// A nil or empty user means "no active session": every inbound
// operation becomes a no-op rather than an error.
func (u *User) IsBound() bool {
	return u != nil && u.ID != ""
}
