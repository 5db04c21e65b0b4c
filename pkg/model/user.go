package model

type Role string

const (
	RoleDriver Role = "driver"
	RoleHost   Role = "host"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleDriver || r == RoleHost || r == RoleAdmin
}

// User holds the display fields bookings needs from the identity service.
type User struct {
	ID       string `json:"id" bson:"_id,omitempty"`
	Username string `json:"username" bson:"username"`
	Email    string `json:"email" bson:"email"`
	Role     Role   `json:"role" bson:"role"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Requester is the authenticated caller of a booking operation.
type Requester struct {
	UserID string
	Role   Role
}

func (r Requester) IsAdmin() bool {
	return r.Role == RoleAdmin
}
