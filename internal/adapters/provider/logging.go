package provider

import (
	"context"
	"errors"
	"time"

	"multicurrency/internal/adapters"
	"multicurrency/internal/domain"
	"multicurrency/internal/platform/metrics"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type logged struct {
	next    adapters.RateProvider
	metrics *metrics.Metrics
}

// WithLogging logs and meters every fetch made through p.
func WithLogging(p adapters.RateProvider, m *metrics.Metrics) adapters.RateProvider {
	return &logged{next: p, metrics: m}
}

func (l *logged) Name() string { return l.next.Name() }

func (l *logged) Fetch(ctx context.Context, base string, targets []string) (map[string]decimal.Decimal, error) {
	start := time.Now()
	rates, err := l.next.Fetch(ctx, base, targets)
	took := time.Since(start)

	entry := logrus.WithFields(logrus.Fields{
		"provider": l.next.Name(),
		"base":     base,
		"rates":    len(rates),
		"took":     took.String(),
	})

	var fetchErr *domain.FetchError
	switch {
	case err == nil:
		l.metrics.ObserveFetch(l.next.Name(), "success", took)
		entry.Debug("Rates fetched")
	case errors.As(err, &fetchErr) && len(fetchErr.Missing) > 0:
		l.metrics.ObserveFetch(l.next.Name(), "partial", took)
		entry.WithField("missing", fetchErr.Missing).Warn("Rates fetched partially")
	default:
		l.metrics.ObserveFetch(l.next.Name(), "error", took)
		entry.WithError(err).Error("Rates fetch failed")
	}
	return rates, err
}
