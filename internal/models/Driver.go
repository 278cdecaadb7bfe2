// internal/models/driver.go
package models

type Driver struct {
	Base
	UserID        string  `json:"user_id" gorm:"type:uuid;index;not null"` // Foreign key to User
	Name          string  `json:"name" gorm:"not null"`
	LicenseNumber string  `json:"license_number" gorm:"not null"`
	Phone         *string `json:"phone,omitempty"`
	IsActive      bool    `json:"is_active" gorm:"not null;default:true"`
}

// DriverPatch carries the fields an admin may change. Nil fields are left alone.
type DriverPatch struct {
	Name          *string `json:"name"`
	LicenseNumber *string `json:"license_number"`
	Phone         *string `json:"phone"`
	IsActive      *bool   `json:"is_active"`
}

func (p DriverPatch) Apply(d *Driver) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.LicenseNumber != nil {
		d.LicenseNumber = *p.LicenseNumber
	}
	if p.Phone != nil {
		d.Phone = p.Phone
	}
	if p.IsActive != nil {
		d.IsActive = *p.IsActive
	}
}
