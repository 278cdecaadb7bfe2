package models

// Attachment points at a blob held by external storage.
type Attachment struct {
	Base
	ReportID    string  `json:"report_id" gorm:"type:uuid;not null;index"`
	StorageID   string  `json:"storage_id" gorm:"not null"`
	Filename    string  `json:"filename" gorm:"not null"`
	FileType    string  `json:"file_type" gorm:"not null"`
	Description *string `json:"description,omitempty"`
}
