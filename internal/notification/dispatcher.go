package notification

import (
	"sync"
	"time"

	"trashbeta-service/internal/model"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"
)

const (
	maxSendAttempts = 3
	initialDelay    = 1 * time.Second
	maxDelay        = 30 * time.Second
)

type task struct {
	user       *model.User
	template   Template
	preference model.NotificationPreference
}

// Dispatcher delivers notifications from a buffered queue so that
// lifecycle operations enqueue and return without waiting. Send
// failures are retried with backoff, logged, and never surfaced to the
// operation that triggered them.
type Dispatcher struct {
	email   EmailSender
	sms     SMSSender
	queue   chan task
	done    chan struct{}
	wg      sync.WaitGroup
	workers int
}

func NewDispatcher(email EmailSender, sms SMSSender, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 64
	}
	return &Dispatcher{
		email:   email,
		sms:     sms,
		queue:   make(chan task, queueSize),
		done:    make(chan struct{}),
		workers: workers,
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	logrus.Infof("dispatcher: started %d workers", d.workers)
}

func (d *Dispatcher) Stop() {
	close(d.done)
	d.wg.Wait()
	logrus.Info("dispatcher: stopped")
}

// Notify enqueues a delivery without blocking. The report-level
// preference wins over the recipient's stored preference, which wins
// over the EMAIL default. A full queue drops the task with a warning
// rather than stalling the caller.
func (d *Dispatcher) Notify(user *model.User, template Template, preference model.NotificationPreference) {
	if user == nil {
		return
	}

	channel := preference
	if !channel.Valid() {
		channel = user.NotificationPreference
	}
	if !channel.Valid() {
		channel = model.PreferEmail
	}

	select {
	case d.queue <- task{user: user, template: template, preference: channel}:
	default:
		logrus.Warnf("dispatcher: queue full, dropping notification for user %s", user.ID)
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case t := <-d.queue:
			d.deliver(t)
		}
	}
}

// deliver fans out to the resolved channels. Each channel is isolated:
// an email failure never suppresses the SMS attempt.
func (d *Dispatcher) deliver(t task) {
	switch t.preference {
	case model.PreferEmail:
		d.sendEmail(t)
	case model.PreferSMS:
		d.sendSMS(t)
	case model.PreferBoth:
		d.sendEmail(t)
		d.sendSMS(t)
	}
}

func (d *Dispatcher) sendEmail(t task) {
	if t.user.Email == "" {
		return
	}

	err := retry.Do(
		func() error {
			return d.email.Send(t.user.Email, t.template.EmailSubject, t.template.EmailHTML)
		},
		retry.Attempts(maxSendAttempts),
		retry.Delay(initialDelay),
		retry.MaxDelay(maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		logrus.Warnf("dispatcher: email to %s failed: %v", t.user.Email, err)
	}
}

func (d *Dispatcher) sendSMS(t task) {
	if t.user.Phone == nil || *t.user.Phone == "" {
		return
	}

	phone, err := FormatPhone(*t.user.Phone)
	if err != nil {
		logrus.Warnf("dispatcher: skipping sms for user %s: %v", t.user.ID, err)
		return
	}

	err = retry.Do(
		func() error {
			return d.sms.Send(phone, t.template.SMS)
		},
		retry.Attempts(maxSendAttempts),
		retry.Delay(initialDelay),
		retry.MaxDelay(maxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		logrus.Warnf("dispatcher: sms to %s failed: %v", phone, err)
	}
}
