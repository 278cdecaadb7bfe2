// internal/models/trip_entry.go
package models

type TripEntry struct {
	Base
	ReportID         string   `json:"report_id" gorm:"type:uuid;not null;index"`
	OrderNumber      *string  `json:"order_number,omitempty"`
	PickupLocation   string   `json:"pickup_location" gorm:"not null"`
	DeliveryLocation string   `json:"delivery_location" gorm:"not null"`
	StartTime        *string  `json:"start_time,omitempty"`
	EndTime          *string  `json:"end_time,omitempty"`
	Distance         *float64 `json:"distance,omitempty"`
	WaitingTime      *int     `json:"waiting_time,omitempty"` // minutes
	Notes            *string  `json:"notes,omitempty"`
	Sequence         int      `json:"sequence" gorm:"not null"`
}

type TripEntryPatch struct {
	OrderNumber      *string  `json:"order_number"`
	PickupLocation   *string  `json:"pickup_location"`
	DeliveryLocation *string  `json:"delivery_location"`
	StartTime        *string  `json:"start_time"`
	EndTime          *string  `json:"end_time"`
	Distance         *float64 `json:"distance"`
	WaitingTime      *int     `json:"waiting_time"`
	Notes            *string  `json:"notes"`
}

func (p TripEntryPatch) Apply(e *TripEntry) {
	if p.OrderNumber != nil {
		e.OrderNumber = p.OrderNumber
	}
	if p.PickupLocation != nil {
		e.PickupLocation = *p.PickupLocation
	}
	if p.DeliveryLocation != nil {
		e.DeliveryLocation = *p.DeliveryLocation
	}
	if p.StartTime != nil {
		e.StartTime = p.StartTime
	}
	if p.EndTime != nil {
		e.EndTime = p.EndTime
	}
	if p.Distance != nil {
		e.Distance = p.Distance
	}
	if p.WaitingTime != nil {
		e.WaitingTime = p.WaitingTime
	}
	if p.Notes != nil {
		e.Notes = p.Notes
	}
}
