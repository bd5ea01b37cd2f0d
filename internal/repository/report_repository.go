package repository

import (
	"database/sql"
	"fmt"
	"time"

	"trashbeta-service/internal/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const reportColumns = `id, tracking_id, category, state, lga, address, description, images,
	contact_name, contact_phone, contact_email, priority, status,
	created_by, assigned_to, notification_preference, created_at, updated_at`

func (r *ReportRepository) Create(report *model.Report) error {
	query := `
		INSERT INTO reports (id, tracking_id, category, state, lga, address, description, images,
			contact_name, contact_phone, contact_email, priority, status,
			created_by, assigned_to, notification_preference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := r.db.Exec(query,
		report.ID,
		report.TrackingID,
		report.Category,
		report.State,
		report.LGA,
		report.Address,
		report.Description,
		pq.Array(report.Images),
		report.ContactDetails.Name,
		report.ContactDetails.Phone,
		report.ContactDetails.Email,
		report.Priority,
		report.Status,
		report.CreatedBy,
		report.AssignedTo,
		report.NotificationPreference,
		report.CreatedAt,
		report.UpdatedAt,
	)
	return err
}

func (r *ReportRepository) ExistsTrackingID(trackingID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reports WHERE tracking_id = $1)`
	var exists bool
	err := r.db.QueryRow(query, trackingID).Scan(&exists)
	return exists, err
}

// FindByID returns (nil, nil) when no report matches.
func (r *ReportRepository) FindByID(id uuid.UUID) (*model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	return r.scanOne(r.db.QueryRow(query, id))
}

// FindByTrackingID returns (nil, nil) when no report matches.
func (r *ReportRepository) FindByTrackingID(trackingID string) (*model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE tracking_id = $1`
	return r.scanOne(r.db.QueryRow(query, trackingID))
}

func (r *ReportRepository) FindByCreator(creatorID uuid.UUID) ([]model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE created_by = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *ReportRepository) FindByAssignee(assigneeID uuid.UUID) ([]model.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE assigned_to = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(query, assigneeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// FindAll returns one page of reports plus the unpaginated total count.
func (r *ReportRepository) FindAll(filter model.ListFilter) ([]model.Report, int, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`
	countQuery := `SELECT COUNT(*) FROM reports`
	args := []interface{}{}
	countArgs := []interface{}{}

	if filter.Category != "" {
		query += ` WHERE category = $1`
		countQuery += ` WHERE category = $1`
		args = append(args, filter.Category)
		countArgs = append(countArgs, filter.Category)
	}

	offset := (filter.Page - 1) * filter.Limit
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reports, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

// Assign sets the assignee and flips status to ASSIGNED in a single
// atomic update. Priority is only touched when provided.
func (r *ReportRepository) Assign(id uuid.UUID, assigneeID uuid.UUID, priority *model.Priority) error {
	query := `UPDATE reports SET assigned_to = $1, status = $2, updated_at = NOW()`
	args := []interface{}{assigneeID, model.StatusAssigned}

	if priority != nil {
		query += fmt.Sprintf(", priority = $%d", len(args)+1)
		args = append(args, *priority)
	}

	query += fmt.Sprintf(" WHERE id = $%d", len(args)+1)
	args = append(args, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *ReportRepository) UpdateStatus(id uuid.UUID, status model.ReportStatus) error {
	query := `UPDATE reports SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.Exec(query, status, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *ReportRepository) Delete(id uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

// Stats aggregates the admin dashboard counters relative to now.
func (r *ReportRepository) Stats(now time.Time) (*model.ReportStats, error) {
	startOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfLastMonth := startOfThisMonth.AddDate(0, -1, 0)

	stats := &model.ReportStats{}

	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM reports WHERE created_at >= $1`,
		startOfThisMonth,
	).Scan(&stats.ThisMonthReports)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM reports WHERE created_at >= $1 AND created_at < $2`,
		startOfLastMonth, startOfThisMonth,
	).Scan(&stats.LastMonthReports)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM reports WHERE status = ANY($1)`,
		pq.Array([]string{string(model.StatusPending), string(model.StatusAssigned), string(model.StatusInProgress)}),
	).Scan(&stats.TotalActive)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM reports WHERE status = $1`, model.StatusPending,
	).Scan(&stats.Pending)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM reports WHERE status = $1`, model.StatusInProgress,
	).Scan(&stats.InProgress)
	if err != nil {
		return nil, err
	}

	if stats.LastMonthReports == 0 {
		stats.PercentChange = 100
	} else {
		change := float64(stats.ThisMonthReports-stats.LastMonthReports) / float64(stats.LastMonthReports) * 100
		stats.PercentChange = change
	}

	return stats, nil
}

func (r *ReportRepository) scanOne(row *sql.Row) (*model.Report, error) {
	report := &model.Report{}
	var description, contactPhone sql.NullString
	var assignedTo sql.NullString

	err := row.Scan(
		&report.ID,
		&report.TrackingID,
		&report.Category,
		&report.State,
		&report.LGA,
		&report.Address,
		&description,
		pq.Array(&report.Images),
		&report.ContactDetails.Name,
		&contactPhone,
		&report.ContactDetails.Email,
		&report.Priority,
		&report.Status,
		&report.CreatedBy,
		&assignedTo,
		&report.NotificationPreference,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	applyNullables(report, description, contactPhone, assignedTo)
	return report, nil
}

func (r *ReportRepository) scanAll(rows *sql.Rows) ([]model.Report, error) {
	var reports []model.Report
	for rows.Next() {
		report := model.Report{}
		var description, contactPhone sql.NullString
		var assignedTo sql.NullString

		err := rows.Scan(
			&report.ID,
			&report.TrackingID,
			&report.Category,
			&report.State,
			&report.LGA,
			&report.Address,
			&description,
			pq.Array(&report.Images),
			&report.ContactDetails.Name,
			&contactPhone,
			&report.ContactDetails.Email,
			&report.Priority,
			&report.Status,
			&report.CreatedBy,
			&assignedTo,
			&report.NotificationPreference,
			&report.CreatedAt,
			&report.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		applyNullables(&report, description, contactPhone, assignedTo)
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func applyNullables(report *model.Report, description, contactPhone, assignedTo sql.NullString) {
	if description.Valid {
		report.Description = description.String
	}
	if contactPhone.Valid {
		report.ContactDetails.Phone = contactPhone.String
	}
	if assignedTo.Valid {
		if uid, err := uuid.Parse(assignedTo.String); err == nil {
			report.AssignedTo = &uid
		}
	}
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("report not found")
	}
	return nil
}
