package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockOutbox(t *testing.T) (*OutboxRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewOutboxRepository(db), mock
}

func TestEnqueue(t *testing.T) {
	repo, mock := newMockOutbox(t)

	mock.ExpectExec(`INSERT INTO outbox_messages`).
		WithArgs(sqlmock.AnyArg(), "report.created", []byte(`{"tracking_id":"ABCD2345"}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Enqueue("report.created", map[string]string{"tracking_id": "ABCD2345"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnqueueUnmarshalablePayload(t *testing.T) {
	repo, _ := newMockOutbox(t)

	err := repo.Enqueue("report.created", func() {})
	assert.Error(t, err, "a payload that cannot marshal never reaches the database")
}

func TestGetPending(t *testing.T) {
	repo, mock := newMockOutbox(t)
	id := uuid.New()
	created := time.Now()

	rows := sqlmock.NewRows([]string{"id", "routing_key", "payload", "created_at", "retry_count", "status"}).
		AddRow(id.String(), "report.assigned", []byte(`{"tracking_id":"ABCD2345"}`), created, 2, "pending")

	mock.ExpectQuery(`SELECT id, routing_key, payload, created_at, retry_count, status\s+FROM outbox_messages`).
		WithArgs(50).
		WillReturnRows(rows)

	messages, err := repo.GetPending(50)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	msg := messages[0]
	assert.Equal(t, id, msg.ID)
	assert.Equal(t, "report.assigned", msg.RoutingKey)
	assert.Equal(t, json.RawMessage(`{"tracking_id":"ABCD2345"}`), msg.Payload)
	assert.Equal(t, 2, msg.RetryCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPublished(t *testing.T) {
	repo, mock := newMockOutbox(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE outbox_messages\s+SET status = 'published'`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkPublished(id))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailed(t *testing.T) {
	repo, mock := newMockOutbox(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE outbox_messages\s+SET retry_count = retry_count \+ 1`).
		WithArgs(id, "broker unreachable").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(id, "broker unreachable"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePublished(t *testing.T) {
	repo, mock := newMockOutbox(t)

	mock.ExpectExec(`DELETE FROM outbox_messages\s+WHERE status = 'published'`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := repo.DeletePublished(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
