package models

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDriver Role = "driver"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDriver
}

// UserRole holds at most one role per user. Rows are updated, never deleted.
type UserRole struct {
	Base
	UserID string `json:"user_id" gorm:"type:uuid;uniqueIndex;not null"`
	Role   Role   `json:"role" gorm:"type:varchar(16);not null"`
}
