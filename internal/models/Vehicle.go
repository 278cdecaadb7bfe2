// internal/models/vehicle.go
package models

type Vehicle struct {
	Base
	PlateNumber string `json:"plate_number" gorm:"index;not null"`
	Model       string `json:"model" gorm:"not null"`
	Capacity    *int   `json:"capacity,omitempty"`
	IsActive    bool   `json:"is_active" gorm:"not null;default:true"`
}

type VehiclePatch struct {
	PlateNumber *string `json:"plate_number"`
	Model       *string `json:"model"`
	Capacity    *int    `json:"capacity"`
	IsActive    *bool   `json:"is_active"`
}

func (p VehiclePatch) Apply(v *Vehicle) {
	if p.PlateNumber != nil {
		v.PlateNumber = *p.PlateNumber
	}
	if p.Model != nil {
		v.Model = *p.Model
	}
	if p.Capacity != nil {
		v.Capacity = p.Capacity
	}
	if p.IsActive != nil {
		v.IsActive = *p.IsActive
	}
}
