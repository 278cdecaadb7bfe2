package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"daily_report/internal/models"
)

const (
	pgUniqueViolation = "23505"
	pgInvalidText     = "22P02"

	// setupLockKey names the transaction-scoped advisory lock taken by LockSetup.
	setupLockKey int64 = 0x64726570 // "drep"
)

// GormStore implements Store on top of gorm and Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB exposes the underlying handle for migrations.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

// translate maps driver errors onto the package's sentinel errors. Both the
// pgx and lib/pq drivers can sit under the postgres dialector.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgInvalidText:
			return ErrNotFound
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return ErrDuplicate
		case pgInvalidText:
			return ErrNotFound
		}
	}
	return err
}

func (s *GormStore) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *GormStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) first(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return translate(s.conn(ctx).Where(query, args...).First(dest).Error)
}

// --- users ---

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	return translate(s.conn(ctx).Create(u).Error)
}

func (s *GormStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.first(ctx, &u, "id = ?", id); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.first(ctx, &u, "LOWER(email) = LOWER(?)", email); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).Order("created_at ASC").Find(&users).Error
	return users, translate(err)
}

// --- roles ---

func (s *GormStore) GetUserRole(ctx context.Context, userID string) (*models.UserRole, error) {
	var r models.UserRole
	if err := s.first(ctx, &r, "user_id = ?", userID); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) ListUserRoles(ctx context.Context) ([]models.UserRole, error) {
	var roles []models.UserRole
	err := s.conn(ctx).Find(&roles).Error
	return roles, translate(err)
}

func (s *GormStore) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.UserRole{}).Where("role = ?", models.RoleAdmin).Count(&n).Error
	return n, translate(err)
}

func (s *GormStore) LockSetup(ctx context.Context) error {
	return translate(s.conn(ctx).Exec("SELECT pg_advisory_xact_lock(?)", setupLockKey).Error)
}

func (s *GormStore) SaveUserRole(ctx context.Context, r *models.UserRole) error {
	return translate(s.conn(ctx).Save(r).Error)
}

// --- drivers ---

func (s *GormStore) CreateDriver(ctx context.Context, d *models.Driver) error {
	return translate(s.conn(ctx).Create(d).Error)
}

func (s *GormStore) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	var d models.Driver
	if err := s.first(ctx, &d, "id = ?", id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *GormStore) GetDriverByUser(ctx context.Context, userID string) (*models.Driver, error) {
	var d models.Driver
	err := s.conn(ctx).
		Where("user_id = ?", userID).
		Order("is_active DESC").
		Order("created_at ASC").
		First(&d).Error
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *GormStore) ListActiveDrivers(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	err := s.conn(ctx).Where("is_active = ?", true).Order("name ASC").Find(&drivers).Error
	return drivers, translate(err)
}

func (s *GormStore) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	var drivers []models.Driver
	err := s.conn(ctx).Order("name ASC").Find(&drivers).Error
	return drivers, translate(err)
}

func (s *GormStore) SaveDriver(ctx context.Context, d *models.Driver) error {
	return translate(s.conn(ctx).Save(d).Error)
}

// --- vehicles ---

func (s *GormStore) CreateVehicle(ctx context.Context, v *models.Vehicle) error {
	return translate(s.conn(ctx).Create(v).Error)
}

func (s *GormStore) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := s.first(ctx, &v, "id = ?", id); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *GormStore) ListActiveVehicles(ctx context.Context) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := s.conn(ctx).Where("is_active = ?", true).Order("plate_number ASC").Find(&vehicles).Error
	return vehicles, translate(err)
}

func (s *GormStore) CountVehicles(ctx context.Context) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.Vehicle{}).Count(&n).Error
	return n, translate(err)
}

func (s *GormStore) SaveVehicle(ctx context.Context, v *models.Vehicle) error {
	return translate(s.conn(ctx).Save(v).Error)
}

// --- reports ---

func (s *GormStore) CreateReport(ctx context.Context, r *models.DailyReport) error {
	return translate(s.conn(ctx).Create(r).Error)
}

func (s *GormStore) GetReport(ctx context.Context, id string) (*models.DailyReport, error) {
	var r models.DailyReport
	if err := s.first(ctx, &r, "id = ?", id); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) LockReport(ctx context.Context, id string) (*models.DailyReport, error) {
	var r models.DailyReport
	err := s.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *GormStore) FindReportByDateDriver(ctx context.Context, date, driverID string) (*models.DailyReport, error) {
	var r models.DailyReport
	if err := s.first(ctx, &r, "date = ? AND driver_id = ?", date, driverID); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) ListReports(ctx context.Context, q ReportQuery) (*ReportPage, error) {
	limit := ClampLimit(q.Limit)
	tx := s.conn(ctx).Model(&models.DailyReport{})
	switch {
	case q.DriverID != "":
		tx = tx.Where("driver_id = ?", q.DriverID)
	case q.VehicleID != "":
		tx = tx.Where("vehicle_id = ?", q.VehicleID)
	}
	if q.Cursor != "" {
		c, err := DecodeCursor(q.Cursor)
		if err != nil {
			return nil, err
		}
		tx = tx.Where("(date < ? OR (date = ? AND id < ?))", c.Date, c.Date, c.ID)
	}

	var rows []models.DailyReport
	if err := tx.Order("date DESC").Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return buildPage(rows, limit), nil
}

// buildPage trims a limit+1 fetch down to one page.
func buildPage(rows []models.DailyReport, limit int) *ReportPage {
	page := &ReportPage{IsDone: len(rows) <= limit}
	if !page.IsDone {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.ContinueCursor = EncodeCursor(Cursor{Date: last.Date, ID: last.ID})
	}
	page.Reports = rows
	return page
}

func (s *GormStore) AllReports(ctx context.Context) ([]models.DailyReport, error) {
	var reports []models.DailyReport
	err := s.conn(ctx).Order("date DESC").Order("id DESC").Find(&reports).Error
	return reports, translate(err)
}

func (s *GormStore) SaveReport(ctx context.Context, r *models.DailyReport) error {
	return translate(s.conn(ctx).Save(r).Error)
}

func (s *GormStore) UpdateReportTotals(ctx context.Context, id string, distance, hours float64) error {
	res := s.conn(ctx).Model(&models.DailyReport{}).Where("id = ?", id).Updates(map[string]interface{}{
		"total_distance":      distance,
		"total_working_hours": hours,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- trip entries ---

func (s *GormStore) CreateTripEntry(ctx context.Context, e *models.TripEntry) error {
	return translate(s.conn(ctx).Create(e).Error)
}

func (s *GormStore) GetTripEntry(ctx context.Context, id string) (*models.TripEntry, error) {
	var e models.TripEntry
	if err := s.first(ctx, &e, "id = ?", id); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *GormStore) ListTripEntries(ctx context.Context, reportID string) ([]models.TripEntry, error) {
	var entries []models.TripEntry
	err := s.conn(ctx).Where("report_id = ?", reportID).Order("sequence ASC").Find(&entries).Error
	return entries, translate(err)
}

func (s *GormStore) MaxTripSequence(ctx context.Context, reportID string) (int, error) {
	var n int
	err := s.conn(ctx).Model(&models.TripEntry{}).
		Where("report_id = ?", reportID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&n).Error
	return n, translate(err)
}

func (s *GormStore) SaveTripEntry(ctx context.Context, e *models.TripEntry) error {
	return translate(s.conn(ctx).Save(e).Error)
}

func (s *GormStore) DeleteTripEntry(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.TripEntry{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- attachments ---

func (s *GormStore) CreateAttachment(ctx context.Context, a *models.Attachment) error {
	return translate(s.conn(ctx).Create(a).Error)
}

func (s *GormStore) GetAttachment(ctx context.Context, id string) (*models.Attachment, error) {
	var a models.Attachment
	if err := s.first(ctx, &a, "id = ?", id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) ListAttachments(ctx context.Context, reportID string) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := s.conn(ctx).Where("report_id = ?", reportID).Order("created_at ASC").Find(&attachments).Error
	return attachments, translate(err)
}

func (s *GormStore) DeleteAttachment(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.Attachment{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*GormStore)(nil)
