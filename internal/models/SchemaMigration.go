package models

import "time"

type SchemaMigration struct {
	Version   int       `json:"version" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"not null"`
	AppliedAt time.Time `json:"applied_at" gorm:"not null"`
}
