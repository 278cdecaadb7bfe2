package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"daily_report/internal/models"
	"daily_report/internal/repository"
)

type NewVehicle struct {
	PlateNumber string `json:"plate_number" binding:"required"`
	Model       string `json:"model" binding:"required"`
	Capacity    *int   `json:"capacity"`
}

type VehicleService struct {
	store    repository.Store
	identity *IdentityService
}

func NewVehicleService(store repository.Store, identity *IdentityService) *VehicleService {
	return &VehicleService{store: store, identity: identity}
}

// List returns active vehicles to any authenticated caller; drivers pick
// from it when writing a report.
func (s *VehicleService) List(ctx context.Context, p Principal) ([]models.Vehicle, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	return s.store.ListActiveVehicles(ctx)
}

func validateVehicleFields(plate, model *string, capacity *int) error {
	if plate != nil && strings.TrimSpace(*plate) == "" {
		return invalid("plate_number cannot be empty")
	}
	if model != nil && strings.TrimSpace(*model) == "" {
		return invalid("model cannot be empty")
	}
	if capacity != nil && *capacity < 0 {
		return invalid("capacity must be non-negative")
	}
	return nil
}

func (s *VehicleService) Create(ctx context.Context, p Principal, in NewVehicle) (*models.Vehicle, error) {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	if err := validateVehicleFields(&in.PlateNumber, &in.Model, in.Capacity); err != nil {
		return nil, err
	}
	v := &models.Vehicle{
		PlateNumber: in.PlateNumber,
		Model:       in.Model,
		Capacity:    in.Capacity,
		IsActive:    true,
	}
	if err := s.store.CreateVehicle(ctx, v); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"vehicle_id": v.ID, "plate_number": v.PlateNumber}).Info("vehicle created")
	return v, nil
}

func (s *VehicleService) Update(ctx context.Context, p Principal, vehicleID string, patch models.VehiclePatch) (*models.Vehicle, error) {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	if err := validateVehicleFields(patch.PlateNumber, patch.Model, patch.Capacity); err != nil {
		return nil, err
	}
	v, err := s.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, notFound(err, "vehicle")
	}
	patch.Apply(v)
	if err := s.store.SaveVehicle(ctx, v); err != nil {
		return nil, err
	}
	logrus.WithField("vehicle_id", vehicleID).Info("vehicle updated")
	return v, nil
}

// Delete deactivates the vehicle.
func (s *VehicleService) Delete(ctx context.Context, p Principal, vehicleID string) error {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return err
	}
	v, err := s.store.GetVehicle(ctx, vehicleID)
	if err != nil {
		return notFound(err, "vehicle")
	}
	v.IsActive = false
	if err := s.store.SaveVehicle(ctx, v); err != nil {
		return err
	}
	logrus.WithField("vehicle_id", vehicleID).Info("vehicle deactivated")
	return nil
}
