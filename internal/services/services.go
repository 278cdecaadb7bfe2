// Package services implements the report, trip entry, driver, vehicle and
// role operations. Every operation takes the calling Principal explicitly.
package services

import (
	"time"

	"daily_report/internal/repository"
)

type Options struct {
	// RoleCache is optional.
	RoleCache RoleCache
	Tokens    TokenIssuer
	// PasswordCost overrides bcrypt.DefaultCost when non-zero.
	PasswordCost int
	Now          func() time.Time
}

type Services struct {
	Identity    *IdentityService
	Drivers     *DriverService
	Vehicles    *VehicleService
	Trips       *TripService
	Reports     *ReportService
	Attachments *AttachmentService
	Users       *UserService
	Setup       *SetupService
}

func New(store repository.Store, opts Options) *Services {
	identity := NewIdentityService(store, opts.RoleCache)
	return &Services{
		Identity:    identity,
		Drivers:     NewDriverService(store, identity),
		Vehicles:    NewVehicleService(store, identity),
		Trips:       NewTripService(store, identity),
		Reports:     NewReportService(store, identity, opts.Now),
		Attachments: NewAttachmentService(store, identity),
		Users:       NewUserService(store, identity, opts.Tokens, opts.PasswordCost),
		Setup:       NewSetupService(store, identity),
	}
}
