// internal/models/daily_report.go
package models

import "time"

type ReportStatus string

const (
	StatusNormal      ReportStatus = "normal"
	StatusTrouble     ReportStatus = "trouble"
	StatusAccident    ReportStatus = "accident"
	StatusDelay       ReportStatus = "delay"
	StatusMaintenance ReportStatus = "maintenance"
)

// ReportStatuses lists every status in display order.
var ReportStatuses = []ReportStatus{StatusNormal, StatusTrouble, StatusAccident, StatusDelay, StatusMaintenance}

func (s ReportStatus) Valid() bool {
	for _, v := range ReportStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DailyReport is one driver's summary for one date. TotalDistance and
// TotalWorkingHours are derived from the report's trip entries.
type DailyReport struct {
	Base
	Date              string       `json:"date" gorm:"type:varchar(10);not null;index;uniqueIndex:idx_report_date_driver,priority:1"`
	DriverID          string       `json:"driver_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_report_date_driver,priority:2"`
	VehicleID         string       `json:"vehicle_id" gorm:"type:uuid;not null;index"`
	DepartureTime     *string      `json:"departure_time,omitempty"`
	ReturnTime        *string      `json:"return_time,omitempty"`
	TotalDistance     float64      `json:"total_distance" gorm:"not null;default:0"`
	TotalWorkingHours float64      `json:"total_working_hours" gorm:"not null;default:0"`
	Status            ReportStatus `json:"status" gorm:"type:varchar(16);not null"`
	SpecialNotes      *string      `json:"special_notes,omitempty"`
	IsApproved        bool         `json:"is_approved" gorm:"not null;default:false"`
	ApprovedAt        *time.Time   `json:"approved_at,omitempty"`
	ApprovedBy        *string      `json:"approved_by,omitempty" gorm:"type:uuid"`
}

// ReportPatch holds the fields an owner or admin may change. Totals are not
// patchable.
type ReportPatch struct {
	DepartureTime *string       `json:"departure_time"`
	ReturnTime    *string       `json:"return_time"`
	Status        *ReportStatus `json:"status"`
	SpecialNotes  *string       `json:"special_notes"`
}

func (p ReportPatch) Apply(r *DailyReport) {
	if p.DepartureTime != nil {
		r.DepartureTime = p.DepartureTime
	}
	if p.ReturnTime != nil {
		r.ReturnTime = p.ReturnTime
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.SpecialNotes != nil {
		r.SpecialNotes = p.SpecialNotes
	}
}
