package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"daily_report/internal/metrics"
	"daily_report/internal/models"
	"daily_report/internal/repository"
)

// Principal is the caller of an operation as resolved by the transport layer.
// The zero value is an unauthenticated caller.
type Principal struct {
	UserID string
}

func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

// RoleCache memoizes role lookups. Implementations must tolerate misses and
// backend failures by reporting a miss. Fill only writes an absent key so a
// reader holding an old value cannot overwrite a role change; Set always
// overwrites and is called after the change commits.
type RoleCache interface {
	Get(ctx context.Context, userID string) (models.Role, bool)
	Fill(ctx context.Context, userID string, role models.Role)
	Set(ctx context.Context, userID string, role models.Role)
}

// IdentityService resolves principals to roles and driver records and applies
// the authorization policy shared by every other service.
type IdentityService struct {
	store repository.Store
	cache RoleCache
}

func NewIdentityService(store repository.Store, cache RoleCache) *IdentityService {
	return &IdentityService{store: store, cache: cache}
}

// CurrentRole returns nil when the caller is unauthenticated or has no role.
func (s *IdentityService) CurrentRole(ctx context.Context, p Principal) (*models.Role, error) {
	if !p.Authenticated() {
		return nil, nil
	}
	role, err := s.roleOf(ctx, s.store, p.UserID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, nil
	}
	return &role, nil
}

// CurrentDriver returns nil when the caller is unauthenticated or has no
// driver record.
func (s *IdentityService) CurrentDriver(ctx context.Context, p Principal) (*models.Driver, error) {
	if !p.Authenticated() {
		return nil, nil
	}
	d, err := s.store.GetDriverByUser(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// roleOf returns "" when the user has no role row.
func (s *IdentityService) roleOf(ctx context.Context, store repository.Store, userID string) (models.Role, error) {
	if s.cache != nil {
		if role, ok := s.cache.Get(ctx, userID); ok {
			return role, nil
		}
	}
	r, err := store.GetUserRole(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		s.cache.Fill(ctx, userID, r.Role)
	}
	return r.Role, nil
}

// remember publishes a committed role change to the cache.
func (s *IdentityService) remember(ctx context.Context, userID string, role models.Role) {
	if s.cache != nil {
		s.cache.Set(ctx, userID, role)
	}
}

func requireAuth(p Principal) error {
	if !p.Authenticated() {
		metrics.AuthorizationFailures.WithLabelValues("unauthenticated").Inc()
		return ErrUnauthenticated
	}
	return nil
}

func (s *IdentityService) isAdmin(ctx context.Context, store repository.Store, p Principal) (bool, error) {
	role, err := s.roleOf(ctx, store, p.UserID)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}

func (s *IdentityService) requireAdmin(ctx context.Context, store repository.Store, p Principal) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	admin, err := s.isAdmin(ctx, store, p)
	if err != nil {
		return err
	}
	if !admin {
		metrics.AuthorizationFailures.WithLabelValues("not_admin").Inc()
		return fmt.Errorf("%w: administrator role required", ErrForbidden)
	}
	return nil
}

// authorizeReport lets admins through and otherwise requires the report to
// belong to the caller's own driver record.
func (s *IdentityService) authorizeReport(ctx context.Context, store repository.Store, p Principal, report *models.DailyReport) error {
	if err := requireAuth(p); err != nil {
		return err
	}
	admin, err := s.isAdmin(ctx, store, p)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}
	d, err := store.GetDriverByUser(ctx, p.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if d == nil || d.ID != report.DriverID {
		metrics.AuthorizationFailures.WithLabelValues("not_owner").Inc()
		logrus.WithFields(logrus.Fields{
			"user_id":   p.UserID,
			"report_id": report.ID,
		}).Warn("report access denied")
		return fmt.Errorf("%w: report belongs to another driver", ErrForbidden)
	}
	return nil
}
