package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily_report/internal/models"
)

func TestAttachments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	r := f.report(t, f.owner, "2024-03-01")

	in := NewAttachment{StorageID: "kg2abc", Filename: "receipt.jpg", FileType: "image/jpeg"}
	a, err := f.svc.Attachments.Add(ctx, f.owner, r.ID, in)
	require.NoError(t, err)
	assert.Equal(t, r.ID, a.ReportID)

	_, err = f.svc.Attachments.Add(ctx, f.other, r.ID, in)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Attachments.Add(ctx, f.owner, models.NewID(), in)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Attachments.Add(ctx, f.owner, r.ID, NewAttachment{StorageID: "x", Filename: "", FileType: "text/plain"})
	assert.ErrorIs(t, err, ErrInvalid)

	detail, err := f.svc.Reports.Get(ctx, f.owner, r.ID)
	require.NoError(t, err)
	require.Len(t, detail.Attachments, 1)
	assert.Equal(t, "receipt.jpg", detail.Attachments[0].Filename)

	assert.ErrorIs(t, f.svc.Attachments.Delete(ctx, f.other, a.ID), ErrForbidden)
	require.NoError(t, f.svc.Attachments.Delete(ctx, f.owner, a.ID))
	assert.ErrorIs(t, f.svc.Attachments.Delete(ctx, f.owner, a.ID), ErrNotFound)
}
