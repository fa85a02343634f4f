package alerts

import (
	"context"

	"github.com/anstrom/netsentinel/internal/errors"
	"github.com/anstrom/netsentinel/internal/logging"
	"github.com/anstrom/netsentinel/internal/metrics"
	"github.com/anstrom/netsentinel/internal/models"
	"github.com/anstrom/netsentinel/internal/store"
)

//go:generate mockgen -destination=mocks/mock_dispatcher.go -package=mocks github.com/anstrom/netsentinel/internal/alerts Dispatcher

// Dispatcher delivers alerts to an external channel. A nil error means every
// alert in the batch was delivered.
type Dispatcher interface {
	Dispatch(ctx context.Context, alerts []models.Alert) error
}

// retryBatch bounds how many unnotified alerts one Retry call sends.
const retryBatch = 100

// Publisher persists alerts and forwards them to a Dispatcher. Alerts are
// marked notified only after the dispatcher reports success, so failed
// deliveries stay queued for Retry.
type Publisher struct {
	store      store.AlertStore
	dispatcher Dispatcher
	metrics    metrics.Recorder
	logger     *logging.Logger
}

// NewPublisher creates a publisher. A nil dispatcher stores alerts without
// sending them.
func NewPublisher(s store.AlertStore, d Dispatcher, m metrics.Recorder, logger *logging.Logger) *Publisher {
	return &Publisher{
		store:      s,
		dispatcher: d,
		metrics:    metrics.OrNop(m),
		logger:     logging.OrDefault(logger).WithComponent("alerts"),
	}
}

// Publish stores alerts and attempts delivery. It returns the stored alerts
// with their final notified state. A dispatch failure is logged and reported
// through the returned alerts, not as an error; only a store failure is.
func (p *Publisher) Publish(ctx context.Context, alerts []models.Alert) ([]models.Alert, error) {
	if len(alerts) == 0 {
		return []models.Alert{}, nil
	}

	stored, err := p.store.InsertAlerts(ctx, alerts)
	if err != nil {
		return nil, errors.ErrPersistence(err)
	}
	for _, a := range stored {
		p.metrics.AlertGenerated(string(a.AlertType))
	}

	p.deliver(ctx, stored)
	return stored, nil
}

// Retry re-sends alerts that were never delivered and returns how many were
// marked notified.
func (p *Publisher) Retry(ctx context.Context) (int, error) {
	pending, err := p.store.ListUnnotified(ctx, retryBatch)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}
	if p.dispatcher == nil {
		return 0, errors.ErrNotification("dispatcher", errors.ErrConfigMissing("notify.discord.webhook_url"))
	}
	if err := p.dispatch(ctx, pending); err != nil {
		return 0, err
	}
	return len(pending), nil
}

// Pending returns the number of alerts awaiting delivery.
func (p *Publisher) Pending(ctx context.Context) (int, error) {
	return p.store.CountUnnotified(ctx)
}

func (p *Publisher) deliver(ctx context.Context, stored []models.Alert) {
	if p.dispatcher == nil {
		p.logger.Debug("No dispatcher configured, alerts left unnotified", "count", len(stored))
		return
	}
	if err := p.dispatch(ctx, stored); err != nil {
		p.logger.Warn("Alert dispatch failed, alerts left for retry",
			"count", len(stored), "error", err)
		return
	}
	for i := range stored {
		stored[i].Notified = true
	}
}

func (p *Publisher) dispatch(ctx context.Context, batch []models.Alert) error {
	if err := p.dispatcher.Dispatch(ctx, batch); err != nil {
		p.metrics.AlertsDispatched(metrics.StatusError, len(batch))
		return err
	}
	p.metrics.AlertsDispatched(metrics.StatusSuccess, len(batch))

	ids := make([]int64, len(batch))
	for i, a := range batch {
		ids[i] = a.ID
	}
	if err := p.store.MarkNotified(ctx, ids); err != nil {
		p.logger.Error("Failed to mark alerts notified", "count", len(ids), "error", err)
		return errors.ErrPersistence(err)
	}
	return nil
}
