package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"daily_report/internal/metrics"
	"daily_report/internal/models"
	"daily_report/internal/repository"
)

// NewTripEntry is the input for adding a line item to a report.
type NewTripEntry struct {
	OrderNumber      *string  `json:"order_number"`
	PickupLocation   string   `json:"pickup_location" binding:"required"`
	DeliveryLocation string   `json:"delivery_location" binding:"required"`
	StartTime        *string  `json:"start_time"`
	EndTime          *string  `json:"end_time"`
	Distance         *float64 `json:"distance"`
	WaitingTime      *int     `json:"waiting_time"`
	Notes            *string  `json:"notes"`
}

// TripService owns trip entries. Every mutation locks the parent report and
// recomputes its totals in the same transaction.
type TripService struct {
	store    repository.Store
	identity *IdentityService
}

func NewTripService(store repository.Store, identity *IdentityService) *TripService {
	return &TripService{store: store, identity: identity}
}

func validateEntryFields(pickup, delivery *string, distance *float64, waiting *int) error {
	if pickup != nil && strings.TrimSpace(*pickup) == "" {
		return invalid("pickup_location cannot be empty")
	}
	if delivery != nil && strings.TrimSpace(*delivery) == "" {
		return invalid("delivery_location cannot be empty")
	}
	if distance != nil && *distance < 0 {
		return invalid("distance must be non-negative")
	}
	if waiting != nil && *waiting < 0 {
		return invalid("waiting_time must be non-negative")
	}
	return nil
}

// Add appends an entry numbered one past the report's highest sequence. With
// no deletions that is the entry count plus one.
func (s *TripService) Add(ctx context.Context, p Principal, reportID string, in NewTripEntry) (*models.TripEntry, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateEntryFields(&in.PickupLocation, &in.DeliveryLocation, in.Distance, in.WaitingTime); err != nil {
		return nil, err
	}

	var entry *models.TripEntry
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		report, err := tx.LockReport(ctx, reportID)
		if err != nil {
			return notFound(err, "report")
		}
		if err := s.identity.authorizeReport(ctx, tx, p, report); err != nil {
			return err
		}
		last, err := tx.MaxTripSequence(ctx, reportID)
		if err != nil {
			return err
		}
		entry = &models.TripEntry{
			ReportID:         reportID,
			OrderNumber:      in.OrderNumber,
			PickupLocation:   in.PickupLocation,
			DeliveryLocation: in.DeliveryLocation,
			StartTime:        in.StartTime,
			EndTime:          in.EndTime,
			Distance:         in.Distance,
			WaitingTime:      in.WaitingTime,
			Notes:            in.Notes,
			Sequence:         last + 1,
		}
		if err := tx.CreateTripEntry(ctx, entry); err != nil {
			return err
		}
		_, err = recalcTotals(ctx, tx, reportID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TripEntryMutations.WithLabelValues("add").Inc()
	logrus.WithFields(logrus.Fields{
		"report_id": reportID,
		"entry_id":  entry.ID,
		"sequence":  entry.Sequence,
	}).Info("trip entry added")
	return entry, nil
}

// Update patches an entry. The sequence never changes.
func (s *TripService) Update(ctx context.Context, p Principal, entryID string, patch models.TripEntryPatch) (*models.TripEntry, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateEntryFields(patch.PickupLocation, patch.DeliveryLocation, patch.Distance, patch.WaitingTime); err != nil {
		return nil, err
	}

	var entry *models.TripEntry
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		entry, err = s.lockEntry(ctx, tx, p, entryID)
		if err != nil {
			return err
		}
		patch.Apply(entry)
		if err := tx.SaveTripEntry(ctx, entry); err != nil {
			return err
		}
		_, err = recalcTotals(ctx, tx, entry.ReportID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.TripEntryMutations.WithLabelValues("update").Inc()
	logrus.WithFields(logrus.Fields{"report_id": entry.ReportID, "entry_id": entryID}).Info("trip entry updated")
	return entry, nil
}

// Delete removes an entry. Remaining entries keep their sequence numbers.
func (s *TripService) Delete(ctx context.Context, p Principal, entryID string) error {
	if err := requireAuth(p); err != nil {
		return err
	}

	var reportID string
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		entry, err := s.lockEntry(ctx, tx, p, entryID)
		if err != nil {
			return err
		}
		reportID = entry.ReportID
		if err := tx.DeleteTripEntry(ctx, entryID); err != nil {
			return notFound(err, "trip entry")
		}
		_, err = recalcTotals(ctx, tx, reportID)
		return err
	})
	if err != nil {
		return err
	}

	metrics.TripEntryMutations.WithLabelValues("delete").Inc()
	logrus.WithFields(logrus.Fields{"report_id": reportID, "entry_id": entryID}).Info("trip entry deleted")
	return nil
}

// lockEntry loads an entry, locks its report and checks ownership.
func (s *TripService) lockEntry(ctx context.Context, tx repository.Store, p Principal, entryID string) (*models.TripEntry, error) {
	entry, err := tx.GetTripEntry(ctx, entryID)
	if err != nil {
		return nil, notFound(err, "trip entry")
	}
	report, err := tx.LockReport(ctx, entry.ReportID)
	if err != nil {
		return nil, notFound(err, "report")
	}
	if err := s.identity.authorizeReport(ctx, tx, p, report); err != nil {
		return nil, err
	}
	return entry, nil
}
