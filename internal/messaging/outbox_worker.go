package messaging

import (
	"sync"
	"time"

	"trashbeta-service/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	workerInterval     = 1 * time.Second
	batchSize          = 50
	cleanupInterval    = 1 * time.Hour
	publishedRetention = 24 * time.Hour
)

// OutboxWorker drains pending lifecycle events from the outbox table
// and publishes them to the integration exchange. Publishing is decoupled
// from the request path: a broker outage delays events, it never fails
// a report operation.
type OutboxWorker struct {
	outboxRepo *repository.OutboxRepository
	publisher  *Publisher
	done       chan struct{}
	wg         sync.WaitGroup
}

func NewOutboxWorker(outboxRepo *repository.OutboxRepository, publisher *Publisher) *OutboxWorker {
	return &OutboxWorker{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		done:       make(chan struct{}),
	}
}

func (w *OutboxWorker) Start() {
	w.wg.Add(2)
	go w.processLoop()
	go w.cleanupLoop()
	logrus.Info("outbox: started")
}

func (w *OutboxWorker) Stop() {
	close(w.done)
	w.wg.Wait()
	logrus.Info("outbox: stopped")
}

func (w *OutboxWorker) processLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(workerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

func (w *OutboxWorker) processPending() {
	messages, err := w.outboxRepo.GetPending(batchSize)
	if err != nil {
		logrus.Warnf("outbox: get pending: %v", err)
		return
	}

	for _, msg := range messages {
		if err := w.publisher.Publish(msg.ID.String(), msg.RoutingKey, msg.Payload); err != nil {
			logrus.Warnf("outbox: publish %s: %v", msg.ID, err)
			if err := w.outboxRepo.MarkFailed(msg.ID, err.Error()); err != nil {
				logrus.Warnf("outbox: mark failed %s: %v", msg.ID, err)
			}
			continue
		}

		if err := w.outboxRepo.MarkPublished(msg.ID); err != nil {
			logrus.Warnf("outbox: mark published %s: %v", msg.ID, err)
		}
	}
}

func (w *OutboxWorker) cleanupLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			deleted, err := w.outboxRepo.DeletePublished(publishedRetention)
			if err != nil {
				logrus.Warnf("outbox: cleanup: %v", err)
			} else if deleted > 0 {
				logrus.Infof("outbox: cleaned %d old messages", deleted)
			}
		}
	}
}
