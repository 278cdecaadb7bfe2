package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"daily_report/internal/metrics"
	"daily_report/internal/models"
	"daily_report/internal/repository"
)

const dateLayout = "2006-01-02"

// ReportFilter narrows a report listing. Date range, status and keyword are
// applied to the fetched page, so a page may come back shorter than Limit.
type ReportFilter struct {
	DateFrom  string
	DateTo    string
	DriverID  string
	VehicleID string
	Status    string
	Keyword   string
	Cursor    string
	Limit     int
}

// ReportWithRefs is a report with its driver and vehicle resolved. Either may
// be nil if the referenced row is gone.
type ReportWithRefs struct {
	models.DailyReport
	Driver  *models.Driver  `json:"driver"`
	Vehicle *models.Vehicle `json:"vehicle"`
}

type ReportDetail struct {
	ReportWithRefs
	TripEntries []models.TripEntry  `json:"trip_entries"`
	Attachments []models.Attachment `json:"attachments"`
}

type ReportList struct {
	Page           []ReportWithRefs `json:"page"`
	ContinueCursor string           `json:"continue_cursor"`
	IsDone         bool             `json:"is_done"`
}

type NewReport struct {
	Date          string              `json:"date" binding:"required"`
	VehicleID     string              `json:"vehicle_id" binding:"required"`
	Status        models.ReportStatus `json:"status" binding:"required"`
	DepartureTime *string             `json:"departure_time"`
	ReturnTime    *string             `json:"return_time"`
	SpecialNotes  *string             `json:"special_notes"`
}

type ReportStats struct {
	TotalReports      int                         `json:"total_reports"`
	ApprovedReports   int                         `json:"approved_reports"`
	UnapprovedReports int                         `json:"unapproved_reports"`
	TroubleReports    int                         `json:"trouble_reports"`
	StatusCounts      map[models.ReportStatus]int `json:"status_counts"`
}

type ReportService struct {
	store    repository.Store
	identity *IdentityService
	now      func() time.Time
}

func NewReportService(store repository.Store, identity *IdentityService, now func() time.Time) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{store: store, identity: identity, now: now}
}

func validateDate(field, v string) error {
	if _, err := time.Parse(dateLayout, v); err != nil {
		return invalid("%s must be YYYY-MM-DD", field)
	}
	return nil
}

func inDateRange(date, from, to string) bool {
	if from != "" && date < from {
		return false
	}
	if to != "" && date > to {
		return false
	}
	return true
}

// List returns one page of reports, newest date first. Drivers only ever see
// their own reports whatever DriverID they pass.
func (s *ReportService) List(ctx context.Context, p Principal, f ReportFilter) (*ReportList, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	for field, v := range map[string]string{"date_from": f.DateFrom, "date_to": f.DateTo} {
		if v != "" {
			if err := validateDate(field, v); err != nil {
				return nil, err
			}
		}
	}
	if f.Status != "" && !models.ReportStatus(f.Status).Valid() {
		return nil, invalid("unknown status %q", f.Status)
	}
	for field, v := range map[string]string{"driver_id": f.DriverID, "vehicle_id": f.VehicleID} {
		if v != "" {
			if _, err := uuid.Parse(v); err != nil {
				return nil, invalid("%s is not a valid id", field)
			}
		}
	}

	admin, err := s.identity.isAdmin(ctx, s.store, p)
	if err != nil {
		return nil, err
	}
	q := repository.ReportQuery{Cursor: f.Cursor, Limit: f.Limit}
	vehicleFilter := ""
	if admin {
		q.DriverID = f.DriverID
		q.VehicleID = f.VehicleID
		if q.DriverID != "" {
			vehicleFilter = f.VehicleID
		}
	} else {
		d, err := s.store.GetDriverByUser(ctx, p.UserID)
		if err != nil {
			return nil, notFound(err, "driver profile")
		}
		q.DriverID = d.ID
		vehicleFilter = f.VehicleID
	}

	page, err := s.store.ListReports(ctx, q)
	if errors.Is(err, repository.ErrInvalidCursor) {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err != nil {
		return nil, err
	}

	keyword := strings.ToLower(f.Keyword)
	refs := newRefResolver(s.store)
	out := make([]ReportWithRefs, 0, len(page.Reports))
	for _, r := range page.Reports {
		if !inDateRange(r.Date, f.DateFrom, f.DateTo) {
			continue
		}
		if f.Status != "" && string(r.Status) != f.Status {
			continue
		}
		if vehicleFilter != "" && r.VehicleID != vehicleFilter {
			continue
		}
		item, err := refs.resolve(ctx, r)
		if err != nil {
			return nil, err
		}
		if keyword != "" && !strings.Contains(searchText(item), keyword) {
			continue
		}
		out = append(out, item)
	}

	return &ReportList{
		Page:           out,
		ContinueCursor: page.ContinueCursor,
		IsDone:         page.IsDone,
	}, nil
}

// searchText is the lower-cased haystack for keyword search: notes, driver
// name, plate and model joined by single spaces, missing parts left empty.
func searchText(r ReportWithRefs) string {
	parts := make([]string, 4)
	if r.SpecialNotes != nil {
		parts[0] = *r.SpecialNotes
	}
	if r.Driver != nil {
		parts[1] = r.Driver.Name
	}
	if r.Vehicle != nil {
		parts[2] = r.Vehicle.PlateNumber
		parts[3] = r.Vehicle.Model
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// refResolver caches driver and vehicle lookups for the length of one call.
type refResolver struct {
	store    repository.Store
	drivers  map[string]*models.Driver
	vehicles map[string]*models.Vehicle
}

func newRefResolver(store repository.Store) *refResolver {
	return &refResolver{
		store:    store,
		drivers:  map[string]*models.Driver{},
		vehicles: map[string]*models.Vehicle{},
	}
}

func (r *refResolver) resolve(ctx context.Context, report models.DailyReport) (ReportWithRefs, error) {
	out := ReportWithRefs{DailyReport: report}

	d, ok := r.drivers[report.DriverID]
	if !ok {
		var err error
		d, err = r.store.GetDriver(ctx, report.DriverID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return out, err
		}
		r.drivers[report.DriverID] = d
	}
	v, ok := r.vehicles[report.VehicleID]
	if !ok {
		var err error
		v, err = r.store.GetVehicle(ctx, report.VehicleID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return out, err
		}
		r.vehicles[report.VehicleID] = v
	}
	out.Driver = d
	out.Vehicle = v
	return out, nil
}

// Get returns a report with its entries in sequence order and its attachments.
func (s *ReportService) Get(ctx context.Context, p Principal, reportID string) (*ReportDetail, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, notFound(err, "report")
	}
	if err := s.identity.authorizeReport(ctx, s.store, p, report); err != nil {
		return nil, err
	}

	withRefs, err := newRefResolver(s.store).resolve(ctx, *report)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ListTripEntries(ctx, reportID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.store.ListAttachments(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.TripEntry{}
	}
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	return &ReportDetail{
		ReportWithRefs: withRefs,
		TripEntries:    entries,
		Attachments:    attachments,
	}, nil
}

// Create files a report for the caller's own driver record. Totals start at
// zero and only change through trip entries.
func (s *ReportService) Create(ctx context.Context, p Principal, in NewReport) (*models.DailyReport, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if err := validateDate("date", in.Date); err != nil {
		return nil, err
	}
	if !in.Status.Valid() {
		return nil, invalid("unknown status %q", in.Status)
	}

	d, err := s.store.GetDriverByUser(ctx, p.UserID)
	if err != nil {
		return nil, notFound(err, "driver profile")
	}
	v, err := s.store.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, notFound(err, "vehicle")
	}
	if !v.IsActive {
		return nil, fmt.Errorf("%w: vehicle is inactive", ErrNotFound)
	}

	_, err = s.store.FindReportByDateDriver(ctx, in.Date, d.ID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: a report for %s already exists", ErrConflict, in.Date)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	r := &models.DailyReport{
		Date:          in.Date,
		DriverID:      d.ID,
		VehicleID:     in.VehicleID,
		DepartureTime: in.DepartureTime,
		ReturnTime:    in.ReturnTime,
		Status:        in.Status,
		SpecialNotes:  in.SpecialNotes,
	}
	if err := s.store.CreateReport(ctx, r); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a report for %s already exists", ErrConflict, in.Date)
		}
		return nil, err
	}

	metrics.ReportsCreated.Inc()
	logrus.WithFields(logrus.Fields{
		"report_id": r.ID,
		"driver_id": r.DriverID,
		"date":      r.Date,
	}).Info("report created")
	return r, nil
}

// Update patches a report. It never touches the derived totals.
func (s *ReportService) Update(ctx context.Context, p Principal, reportID string, patch models.ReportPatch) (*models.DailyReport, error) {
	if err := requireAuth(p); err != nil {
		return nil, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, invalid("unknown status %q", *patch.Status)
	}

	var r *models.DailyReport
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		r, err = tx.LockReport(ctx, reportID)
		if err != nil {
			return notFound(err, "report")
		}
		if err := s.identity.authorizeReport(ctx, tx, p, r); err != nil {
			return err
		}
		patch.Apply(r)
		return tx.SaveReport(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("report_id", reportID).Info("report updated")
	return r, nil
}

// Approve records or withdraws an administrator's approval.
func (s *ReportService) Approve(ctx context.Context, p Principal, reportID string, approved bool) (*models.DailyReport, error) {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}

	var r *models.DailyReport
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		r, err = tx.LockReport(ctx, reportID)
		if err != nil {
			return notFound(err, "report")
		}
		r.IsApproved = approved
		if approved {
			at := s.now().UTC()
			by := p.UserID
			r.ApprovedAt = &at
			r.ApprovedBy = &by
		} else {
			r.ApprovedAt = nil
			r.ApprovedBy = nil
		}
		return tx.SaveReport(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"report_id": reportID,
		"approved":  approved,
		"by":        p.UserID,
	}).Info("report approval changed")
	return r, nil
}

// Stats aggregates every report within the optional date range.
func (s *ReportService) Stats(ctx context.Context, p Principal, dateFrom, dateTo string) (*ReportStats, error) {
	if err := s.identity.requireAdmin(ctx, s.store, p); err != nil {
		return nil, err
	}
	for field, v := range map[string]string{"date_from": dateFrom, "date_to": dateTo} {
		if v != "" {
			if err := validateDate(field, v); err != nil {
				return nil, err
			}
		}
	}

	reports, err := s.store.AllReports(ctx)
	if err != nil {
		return nil, err
	}
	stats := &ReportStats{StatusCounts: map[models.ReportStatus]int{}}
	for _, r := range reports {
		if !inDateRange(r.Date, dateFrom, dateTo) {
			continue
		}
		stats.TotalReports++
		if r.IsApproved {
			stats.ApprovedReports++
		}
		if r.Status != models.StatusNormal {
			stats.TroubleReports++
		}
		stats.StatusCounts[r.Status]++
	}
	stats.UnapprovedReports = stats.TotalReports - stats.ApprovedReports
	return stats, nil
}
