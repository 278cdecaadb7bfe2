package models

// User is the authenticated principal. Roles live in UserRole, not here.
type User struct {
	Base
	Name     string  `json:"name"`
	Email    string  `json:"email" gorm:"uniqueIndex;not null"`
	Password string  `json:"-" gorm:"not null"`
	Phone    *string `json:"phone,omitempty"`
}
