// Package repotest provides an in-memory repository.Store for tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"daily_report/internal/models"
	"daily_report/internal/repository"
)

// MemStore keeps every table in maps. Transactions are serialized but not
// rolled back on error, and must not be nested.
type MemStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users       map[string]models.User
	roles       map[string]models.UserRole // keyed by user id
	drivers     map[string]models.Driver
	vehicles    map[string]models.Vehicle
	reports     map[string]models.DailyReport
	entries     map[string]models.TripEntry
	attachments map[string]models.Attachment

	now func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:       map[string]models.User{},
		roles:       map[string]models.UserRole{},
		drivers:     map[string]models.Driver{},
		vehicles:    map[string]models.Vehicle{},
		reports:     map[string]models.DailyReport{},
		entries:     map[string]models.TripEntry{},
		attachments: map[string]models.Attachment{},
		now:         time.Now,
	}
}

func (s *MemStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(s)
}

func (s *MemStore) stamp(b *models.Base, create bool) {
	now := s.now()
	if b.ID == "" {
		b.ID = models.NewID()
	}
	if create || b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// --- users ---

func (s *MemStore) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	s.stamp(&u.Base, true)
	s.users[u.ID] = *u
	return nil
}

func (s *MemStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *MemStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// --- roles ---

func (s *MemStore) GetUserRole(ctx context.Context, userID string) (*models.UserRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.roles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *MemStore) ListUserRoles(ctx context.Context) ([]models.UserRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.UserRole, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	return out, nil
}

// LockSetup is a no-op: WithTx already runs one transaction at a time.
func (s *MemStore) LockSetup(ctx context.Context) error {
	return nil
}

func (s *MemStore) CountAdmins(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.roles {
		if r.Role == models.RoleAdmin {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) SaveUserRole(ctx context.Context, r *models.UserRole) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.roles[r.UserID]; ok && existing.ID != r.ID {
		return repository.ErrDuplicate
	}
	s.stamp(&r.Base, false)
	s.roles[r.UserID] = *r
	return nil
}

// --- drivers ---

func (s *MemStore) CreateDriver(ctx context.Context, d *models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&d.Base, true)
	s.drivers[d.ID] = *d
	return nil
}

func (s *MemStore) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (s *MemStore) GetDriverByUser(ctx context.Context, userID string) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Driver
	for _, d := range s.drivers {
		if d.UserID != userID {
			continue
		}
		d := d
		switch {
		case found == nil:
			found = &d
		case d.IsActive && !found.IsActive:
			found = &d
		case d.IsActive == found.IsActive && d.CreatedAt.Before(found.CreatedAt):
			found = &d
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (s *MemStore) ListActiveDrivers(ctx context.Context) ([]models.Driver, error) {
	all, _ := s.ListDrivers(ctx)
	out := all[:0]
	for _, d := range all {
		if d.IsActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *MemStore) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) SaveDriver(ctx context.Context, d *models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&d.Base, false)
	s.drivers[d.ID] = *d
	return nil
}

// --- vehicles ---

func (s *MemStore) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&v.Base, true)
	s.vehicles[v.ID] = *v
	return nil
}

func (s *MemStore) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (s *MemStore) ListActiveVehicles(ctx context.Context) ([]models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if v.IsActive {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlateNumber < out[j].PlateNumber })
	return out, nil
}

func (s *MemStore) CountVehicles(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.vehicles)), nil
}

func (s *MemStore) SaveVehicle(ctx context.Context, v *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&v.Base, false)
	s.vehicles[v.ID] = *v
	return nil
}

// --- reports ---

func (s *MemStore) CreateReport(ctx context.Context, r *models.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reports {
		if existing.Date == r.Date && existing.DriverID == r.DriverID {
			return repository.ErrDuplicate
		}
	}
	s.stamp(&r.Base, true)
	s.reports[r.ID] = *r
	return nil
}

func (s *MemStore) GetReport(ctx context.Context, id string) (*models.DailyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *MemStore) LockReport(ctx context.Context, id string) (*models.DailyReport, error) {
	return s.GetReport(ctx, id)
}

func (s *MemStore) FindReportByDateDriver(ctx context.Context, date, driverID string) (*models.DailyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.Date == date && r.DriverID == driverID {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemStore) ListReports(ctx context.Context, q repository.ReportQuery) (*repository.ReportPage, error) {
	limit := repository.ClampLimit(q.Limit)
	var cursor *repository.Cursor
	if q.Cursor != "" {
		c, err := repository.DecodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		cursor = &c
	}

	all, _ := s.AllReports(ctx)
	var rows []models.DailyReport
	for _, r := range all {
		switch {
		case q.DriverID != "" && r.DriverID != q.DriverID:
			continue
		case q.DriverID == "" && q.VehicleID != "" && r.VehicleID != q.VehicleID:
			continue
		case cursor != nil && !cursor.After(r.Date, r.ID):
			continue
		}
		rows = append(rows, r)
		if len(rows) == limit+1 {
			break
		}
	}

	page := &repository.ReportPage{IsDone: len(rows) <= limit}
	if !page.IsDone {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.ContinueCursor = repository.EncodeCursor(repository.Cursor{Date: last.Date, ID: last.ID})
	}
	page.Reports = rows
	return page, nil
}

// AllReports returns reports in (date desc, id desc) order.
func (s *MemStore) AllReports(ctx context.Context) ([]models.DailyReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.DailyReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *MemStore) SaveReport(ctx context.Context, r *models.DailyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&r.Base, false)
	s.reports[r.ID] = *r
	return nil
}

func (s *MemStore) UpdateReportTotals(ctx context.Context, id string, distance, hours float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.TotalDistance = distance
	r.TotalWorkingHours = hours
	r.UpdatedAt = s.now()
	s.reports[id] = r
	return nil
}

// --- trip entries ---

func (s *MemStore) CreateTripEntry(ctx context.Context, e *models.TripEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&e.Base, true)
	s.entries[e.ID] = *e
	return nil
}

func (s *MemStore) GetTripEntry(ctx context.Context, id string) (*models.TripEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (s *MemStore) ListTripEntries(ctx context.Context, reportID string) ([]models.TripEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.TripEntry
	for _, e := range s.entries {
		if e.ReportID == reportID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (s *MemStore) MaxTripSequence(ctx context.Context, reportID string) (int, error) {
	entries, _ := s.ListTripEntries(ctx, reportID)
	if len(entries) == 0 {
		return 0, nil
	}
	return entries[len(entries)-1].Sequence, nil
}

func (s *MemStore) SaveTripEntry(ctx context.Context, e *models.TripEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&e.Base, false)
	s.entries[e.ID] = *e
	return nil
}

func (s *MemStore) DeleteTripEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// --- attachments ---

func (s *MemStore) CreateAttachment(ctx context.Context, a *models.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stamp(&a.Base, true)
	s.attachments[a.ID] = *a
	return nil
}

func (s *MemStore) GetAttachment(ctx context.Context, id string) (*models.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attachments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *MemStore) ListAttachments(ctx context.Context, reportID string) ([]models.Attachment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Attachment
	for _, a := range s.attachments {
		if a.ReportID == reportID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) DeleteAttachment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attachments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.attachments, id)
	return nil
}

var _ repository.Store = (*MemStore)(nil)
