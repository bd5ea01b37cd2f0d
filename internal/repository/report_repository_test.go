package repository

import (
	"regexp"
	"testing"
	"time"

	"trashbeta-service/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*ReportRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReportRepository(db), mock
}

func reportRow(report *model.Report) *sqlmock.Rows {
	var assignedTo interface{}
	if report.AssignedTo != nil {
		assignedTo = report.AssignedTo.String()
	}
	return sqlmock.NewRows([]string{
		"id", "tracking_id", "category", "state", "lga", "address", "description", "images",
		"contact_name", "contact_phone", "contact_email", "priority", "status",
		"created_by", "assigned_to", "notification_preference", "created_at", "updated_at",
	}).AddRow(
		report.ID.String(), report.TrackingID, string(report.Category), report.State,
		report.LGA, report.Address, report.Description, "{https://img.example/a.jpg,https://img.example/b.jpg}",
		report.ContactDetails.Name, report.ContactDetails.Phone, report.ContactDetails.Email,
		string(report.Priority), string(report.Status),
		report.CreatedBy.String(), assignedTo, string(report.NotificationPreference),
		report.CreatedAt, report.UpdatedAt,
	)
}

func sampleReport() *model.Report {
	now := time.Now().Truncate(time.Second)
	return &model.Report{
		ID:         uuid.New(),
		TrackingID: "ABCD2345",
		Category:   model.CategoryOverflowing,
		State:      "Lagos",
		LGA:        "Ikeja",
		Address:    "12 Allen Ave",
		Images:     []string{"https://img.example/a.jpg", "https://img.example/b.jpg"},
		ContactDetails: model.ContactDetails{
			Name:  "Ada Obi",
			Phone: "+2348012345678",
			Email: "ada@x.com",
		},
		Priority:               model.PriorityLow,
		Status:                 model.StatusPending,
		CreatedBy:              uuid.New(),
		NotificationPreference: model.PreferEmail,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func TestCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	report := sampleReport()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reports`)).
		WithArgs(
			report.ID, report.TrackingID, report.Category, report.State, report.LGA,
			report.Address, report.Description, sqlmock.AnyArg(),
			report.ContactDetails.Name, report.ContactDetails.Phone, report.ContactDetails.Email,
			report.Priority, report.Status, report.CreatedBy, report.AssignedTo,
			report.NotificationPreference, report.CreatedAt, report.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(report))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsTrackingID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM reports WHERE tracking_id = $1)`)).
		WithArgs("ABCD2345").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsTrackingID("ABCD2345")
	require.NoError(t, err)
	assert.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	want := sampleReport()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+reportColumns+` FROM reports WHERE id = $1`)).
		WithArgs(want.ID).
		WillReturnRows(reportRow(want))

	got, err := repo.FindByID(want.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.TrackingID, got.TrackingID)
	assert.Equal(t, want.Images, got.Images)
	assert.Equal(t, want.ContactDetails, got.ContactDetails)
	assert.Nil(t, got.AssignedTo)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDNoRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+reportColumns+` FROM reports WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	got, err := repo.FindByID(id)
	require.NoError(t, err, "a missing report is not an error at this layer")
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByTrackingID(t *testing.T) {
	repo, mock := newMockRepo(t)
	want := sampleReport()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+reportColumns+` FROM reports WHERE tracking_id = $1`)).
		WithArgs(want.TrackingID).
		WillReturnRows(reportRow(want))

	got, err := repo.FindByTrackingID(want.TrackingID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.ID, got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAll(t *testing.T) {
	repo, mock := newMockRepo(t)
	want := sampleReport()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+reportColumns+` FROM reports WHERE category = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`)).
		WithArgs(model.CategoryOverflowing, 10, 0).
		WillReturnRows(reportRow(want))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM reports WHERE category = $1`)).
		WithArgs(model.CategoryOverflowing).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))

	reports, total, err := repo.FindAll(model.ListFilter{Category: model.CategoryOverflowing, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, 23, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignWithPriority(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	assignee := uuid.New()
	priority := model.PriorityHigh

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reports SET assigned_to = $1, status = $2, updated_at = NOW(), priority = $3 WHERE id = $4`)).
		WithArgs(assignee, model.StatusAssigned, priority, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Assign(id, assignee, &priority))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	assignee := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reports SET assigned_to = $1, status = $2, updated_at = NOW() WHERE id = $3`)).
		WithArgs(assignee, model.StatusAssigned, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Assign(id, assignee, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reports SET status = $1, updated_at = NOW() WHERE id = $2`)).
		WithArgs(model.StatusInProgress, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(id, model.StatusInProgress))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM reports WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	require.NoError(t, mock.ExpectationsWereMet())
}
