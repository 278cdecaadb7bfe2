package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"daily_report/internal/models"
	"daily_report/internal/repository"
)

type NewDriver struct {
	UserID        string  `json:"user_id" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	LicenseNumber string  `json:"license_number" binding:"required"`
	Phone         *string `json:"phone"`
}

// DriverService is the admin-only driver registry.
type DriverService struct {
	store    repository.Store
	identity *IdentityService
}

func NewDriverService(store repository.Store, identity *IdentityService) *DriverService {
	return &DriverService{store: store, identity: identity}
}

// List returns active drivers.
func (s *DriverService) List(ctx context.Context, p Principal) ([]models.Driver, error) {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	return s.store.ListActiveDrivers(ctx)
}

// Create registers a driver for a user and gives the user the driver role if
// it has no role yet. An existing role is never overwritten.
func (s *DriverService) Create(ctx context.Context, p Principal, in NewDriver) (*models.Driver, error) {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name cannot be empty")
	}
	if strings.TrimSpace(in.LicenseNumber) == "" {
		return nil, invalid("license_number cannot be empty")
	}

	var d *models.Driver
	roleCreated := false
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.GetUser(ctx, in.UserID); err != nil {
			return notFound(err, "user")
		}
		existing, err := tx.GetDriverByUser(ctx, in.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if existing != nil && existing.IsActive {
			return fmt.Errorf("%w: user already has an active driver record", ErrConflict)
		}

		d = &models.Driver{
			UserID:        in.UserID,
			Name:          in.Name,
			LicenseNumber: in.LicenseNumber,
			Phone:         in.Phone,
			IsActive:      true,
		}
		if err := tx.CreateDriver(ctx, d); err != nil {
			return err
		}

		_, err = tx.GetUserRole(ctx, in.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			roleCreated = true
			return tx.SaveUserRole(ctx, &models.UserRole{UserID: in.UserID, Role: models.RoleDriver})
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if roleCreated {
		s.identity.remember(ctx, in.UserID, models.RoleDriver)
	}

	logrus.WithFields(logrus.Fields{
		"driver_id":    d.ID,
		"user_id":      d.UserID,
		"role_created": roleCreated,
	}).Info("driver created")
	return d, nil
}

func (s *DriverService) Update(ctx context.Context, p Principal, driverID string, patch models.DriverPatch) (*models.Driver, error) {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("name cannot be empty")
	}
	if patch.LicenseNumber != nil && strings.TrimSpace(*patch.LicenseNumber) == "" {
		return nil, invalid("license_number cannot be empty")
	}

	var d *models.Driver
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		d, err = tx.GetDriver(ctx, driverID)
		if err != nil {
			return notFound(err, "driver")
		}
		if patch.IsActive != nil && *patch.IsActive && !d.IsActive {
			other, err := tx.GetDriverByUser(ctx, d.UserID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if other != nil && other.IsActive && other.ID != d.ID {
				return fmt.Errorf("%w: user already has an active driver record", ErrConflict)
			}
		}
		patch.Apply(d)
		return tx.SaveDriver(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("driver_id", driverID).Info("driver updated")
	return d, nil
}

// Delete deactivates the driver; the row and its reports are kept.
func (s *DriverService) Delete(ctx context.Context, p Principal, driverID string) error {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return err
	}
	d, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		return notFound(err, "driver")
	}
	d.IsActive = false
	if err := s.store.SaveDriver(ctx, d); err != nil {
		return err
	}
	logrus.WithField("driver_id", driverID).Info("driver deactivated")
	return nil
}
