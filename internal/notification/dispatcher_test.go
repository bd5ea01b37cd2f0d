package notification

import (
	"errors"
	"sync"
	"testing"
	"time"

	"trashbeta-service/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEmailSender struct {
	mu       sync.Mutex
	sent     []string
	failures int
}

func (s *recordingEmailSender) Send(to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("smtp unavailable")
	}
	s.sent = append(s.sent, to)
	return nil
}

func (s *recordingEmailSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

type recordingSMSSender struct {
	mu   sync.Mutex
	sent []string
}

func (s *recordingSMSSender) Send(to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	return nil
}

func (s *recordingSMSSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *recordingEmailSender, *recordingSMSSender) {
	t.Helper()
	email := &recordingEmailSender{}
	sms := &recordingSMSSender{}
	d := NewDispatcher(email, sms, 1, 16)
	d.Start()
	t.Cleanup(d.Stop)
	return d, email, sms
}

func testRecipient() *model.User {
	phone := "+2348012345678"
	return &model.User{
		ID:                     uuid.New(),
		Email:                  "user@x.com",
		Phone:                  &phone,
		NotificationPreference: model.PreferEmail,
	}
}

func TestNotifyExplicitPreferenceWins(t *testing.T) {
	d, email, sms := newTestDispatcher(t)

	// Stored preference is EMAIL, the delivery asks for SMS.
	d.Notify(testRecipient(), ReportCreated("ABCD2345"), model.PreferSMS)

	assert.Eventually(t, func() bool { return sms.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, email.count())
	assert.Equal(t, []string{"+2348012345678"}, sms.sent)
}

func TestNotifyFallsBackToStoredPreference(t *testing.T) {
	d, email, sms := newTestDispatcher(t)

	user := testRecipient()
	user.NotificationPreference = model.PreferSMS
	d.Notify(user, ReportCreated("ABCD2345"), "")

	assert.Eventually(t, func() bool { return sms.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, email.count())
}

func TestNotifyDefaultsToEmail(t *testing.T) {
	d, email, sms := newTestDispatcher(t)

	user := testRecipient()
	user.NotificationPreference = ""
	d.Notify(user, ReportCreated("ABCD2345"), "")

	assert.Eventually(t, func() bool { return email.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, sms.count())
}

func TestNotifyBothChannelsAreIsolated(t *testing.T) {
	d, email, sms := newTestDispatcher(t)
	email.failures = maxSendAttempts // exhaust every retry

	d.Notify(testRecipient(), ReportAssigned("ABCD2345"), model.PreferBoth)

	assert.Eventually(t, func() bool { return sms.count() == 1 }, 10*time.Second, 25*time.Millisecond,
		"sms must go out even when the email channel keeps failing")
	assert.Equal(t, 0, email.count())
}

func TestNotifySkipsMissingContact(t *testing.T) {
	d, email, sms := newTestDispatcher(t)

	user := testRecipient()
	user.Email = ""
	user.Phone = nil
	d.Notify(user, ReportCreated("ABCD2345"), model.PreferBoth)

	// Give the worker a moment, then confirm nothing was attempted.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, email.count())
	assert.Equal(t, 0, sms.count())
}

func TestNotifyRetriesTransientFailure(t *testing.T) {
	d, email, _ := newTestDispatcher(t)
	email.failures = 1

	d.Notify(testRecipient(), ReportCompleted("ABCD2345"), model.PreferEmail)

	assert.Eventually(t, func() bool { return email.count() == 1 }, 5*time.Second, 50*time.Millisecond)
}

func TestNotifyNilUser(t *testing.T) {
	d, _, _ := newTestDispatcher(t)
	require.NotPanics(t, func() { d.Notify(nil, ReportCreated("ABCD2345"), model.PreferEmail) })
}
