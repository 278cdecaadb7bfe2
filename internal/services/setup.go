package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"daily_report/internal/models"
	"daily_report/internal/repository"
)

type SetupResult struct {
	VehiclesCreated int    `json:"vehicles_created"`
	DriverCreated   bool   `json:"driver_created"`
	AdminGranted    bool   `json:"admin_granted"`
	Message         string `json:"message"`
}

var sampleVehicles = []NewVehicle{
	{PlateNumber: "品川 500 あ 1234", Model: "いすゞ エルフ", Capacity: intPtr(2)},
	{PlateNumber: "品川 500 あ 5678", Model: "三菱 キャンター", Capacity: intPtr(3)},
	{PlateNumber: "品川 500 あ 9012", Model: "日野 デュトロ", Capacity: intPtr(4)},
}

func intPtr(v int) *int { return &v }

type SetupService struct {
	store    repository.Store
	identity *IdentityService
}

func NewSetupService(store repository.Store, identity *IdentityService) *SetupService {
	return &SetupService{store: store, identity: identity}
}

// SampleData seeds vehicles and a driver record for the caller. The first
// caller on an instance with no administrator becomes one; after that only
// administrators may run it. Running it twice changes nothing.
func (s *SetupService) SampleData(ctx context.Context, p Principal) (*SetupResult, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}

	res := &SetupResult{}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		// Concurrent first callers would otherwise both see zero admins.
		if err := tx.LockSetup(ctx); err != nil {
			return err
		}
		admin, err := s.identity.isAdmin(ctx, tx, p)
		if err != nil {
			return err
		}
		if !admin {
			n, err := tx.CountAdmins(ctx)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("%w: administrator role required", ErrForbidden)
			}
			role, err := tx.GetUserRole(ctx, p.UserID)
			if errors.Is(err, repository.ErrNotFound) {
				role = &models.UserRole{UserID: p.UserID}
			} else if err != nil {
				return err
			}
			role.Role = models.RoleAdmin
			if err := tx.SaveUserRole(ctx, role); err != nil {
				return err
			}
			res.AdminGranted = true
		}

		count, err := tx.CountVehicles(ctx)
		if err != nil {
			return err
		}
		if count == 0 {
			for _, in := range sampleVehicles {
				v := &models.Vehicle{PlateNumber: in.PlateNumber, Model: in.Model, Capacity: in.Capacity, IsActive: true}
				if err := tx.CreateVehicle(ctx, v); err != nil {
					return err
				}
				res.VehiclesCreated++
			}
		}

		_, err = tx.GetDriverByUser(ctx, p.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			phone := "090-1234-5678"
			d := &models.Driver{
				UserID:        p.UserID,
				Name:          "テスト運転手",
				LicenseNumber: "123456789012",
				Phone:         &phone,
				IsActive:      true,
			}
			if err := tx.CreateDriver(ctx, d); err != nil {
				return err
			}
			res.DriverCreated = true
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.AdminGranted {
		s.identity.remember(ctx, p.UserID, models.RoleAdmin)
	}

	res.Message = "sample data created"
	if res.VehiclesCreated == 0 && !res.DriverCreated && !res.AdminGranted {
		res.Message = "sample data already present"
	}
	logrus.WithFields(logrus.Fields{
		"user_id":          p.UserID,
		"vehicles_created": res.VehiclesCreated,
		"driver_created":   res.DriverCreated,
		"admin_granted":    res.AdminGranted,
	}).Info("sample data setup")
	return res, nil
}
