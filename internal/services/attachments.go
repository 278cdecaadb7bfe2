package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"daily_report/internal/models"
	"daily_report/internal/repository"
)

// NewAttachment describes a blob already uploaded to external storage.
type NewAttachment struct {
	StorageID   string  `json:"storage_id" binding:"required"`
	Filename    string  `json:"filename" binding:"required"`
	FileType    string  `json:"file_type" binding:"required"`
	Description *string `json:"description"`
}

type AttachmentService struct {
	store    repository.Store
	identity *IdentityService
}

func NewAttachmentService(store repository.Store, identity *IdentityService) *AttachmentService {
	return &AttachmentService{store: store, identity: identity}
}

func (s *AttachmentService) Add(ctx context.Context, p Principal, reportID string, in NewAttachment) (*models.Attachment, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	for field, v := range map[string]string{"storage_id": in.StorageID, "filename": in.Filename, "file_type": in.FileType} {
		if strings.TrimSpace(v) == "" {
			return nil, invalid("%s cannot be empty", field)
		}
	}
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, notFound(err, "report")
	}
	if err := s.identity.authorizeReport(ctx, s.store, p, report); err != nil {
		return nil, err
	}
	a := &models.Attachment{
		ReportID:    reportID,
		StorageID:   in.StorageID,
		Filename:    in.Filename,
		FileType:    in.FileType,
		Description: in.Description,
	}
	if err := s.store.CreateAttachment(ctx, a); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"report_id": reportID, "attachment_id": a.ID}).Info("attachment added")
	return a, nil
}

// Delete removes the metadata row. The blob itself is left to the storage
// backend.
func (s *AttachmentService) Delete(ctx context.Context, p Principal, attachmentID string) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	a, err := s.store.GetAttachment(ctx, attachmentID)
	if err != nil {
		return notFound(err, "attachment")
	}
	report, err := s.store.GetReport(ctx, a.ReportID)
	if err != nil {
		return notFound(err, "report")
	}
	if err := s.identity.authorizeReport(ctx, s.store, p, report); err != nil {
		return err
	}
	if err := s.store.DeleteAttachment(ctx, attachmentID); err != nil {
		return notFound(err, "attachment")
	}
	logrus.WithFields(logrus.Fields{"report_id": a.ReportID, "attachment_id": attachmentID}).Info("attachment deleted")
	return nil
}
