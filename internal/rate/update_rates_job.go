package rate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"multicurrency/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const numWorkers = 5

// UpdateResult describes one update cycle.
type UpdateResult struct {
	ExecID     string            `json:"exec_id"`
	Scope      string            `json:"scope,omitempty"`
	Source     string            `json:"source"`
	State      State             `json:"state"`
	Updated    int               `json:"updated"`
	Skipped    int               `json:"skipped"`
	Rejected   map[string]string `json:"rejected,omitempty"`
	Failed     map[string]string `json:"failed,omitempty"`
	Error      string            `json:"error,omitempty"`
	Err        error             `json:"-"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

type applyOutcome struct {
	code string
	err  error
}

// cycle fetches rates for scope from the configured provider and applies them
// one currency at a time through the store.
func (s *UpdateScheduler) cycle(ctx context.Context, scope string) (res UpdateResult) {
	set := s.settings.Current()
	source := string(set.RateSource)
	res = UpdateResult{
		ExecID:    uuid.NewString(),
		Scope:     scope,
		Source:    source,
		Rejected:  map[string]string{},
		Failed:    map[string]string{},
		StartedAt: s.clock.Now().UTC(),
	}
	log := logrus.WithFields(logrus.Fields{"exec_id": res.ExecID, "source": source})
	defer func() {
		res.FinishedAt = s.clock.Now().UTC()
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
	}()
	fail := func(err error) UpdateResult {
		res.State = StateFailed
		res.Err = err
		return res
	}

	// STEP 1: resolving which currencies this cycle covers
	targets, err := s.targets(ctx, scope, set.BaseCurrency)
	if err != nil {
		return fail(err)
	}
	if len(targets) == 0 {
		log.Info("Nothing to update this time")
		res.State = StateCommitted
		return res
	}

	provider, err := s.provider(set.RateSource)
	if err != nil {
		return fail(err)
	}

	// STEP 2: fetching all targets in one provider call.
	// We are using context with timeout as we better fail this cycle and wait for the next one rather than hang!
	s.setState(StateFetching)
	log.Infof("Fetching %d rates against %s", len(targets), set.BaseCurrency)
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	rates, err := provider.Fetch(fetchCtx, set.BaseCurrency, targets)
	cancel()

	var fetchErr *domain.FetchError
	if err != nil && !(errors.As(err, &fetchErr) && len(fetchErr.Missing) > 0) {
		// nothing usable came back, every target gets a failed attempt in history
		for _, code := range targets {
			s.recordFailure(ctx, code, source, err.Error(), &res)
		}
		return fail(fmt.Errorf("failed to fetch rates from %s: %w", provider.Name(), err))
	}

	// STEP 3: currencies the provider didn't quote are recorded as failed, never defaulted
	present := make([]string, 0, len(targets))
	for _, code := range targets {
		if _, ok := rates[code]; ok {
			present = append(present, code)
			continue
		}
		s.recordFailure(ctx, code, source, fmt.Sprintf("%s: rate not available", provider.Name()), &res)
	}

	// STEP 4: validating and committing every rate in parallel using workers pool
	s.setState(StateValidating)
	for _, o := range applyInParallel(ctx, s.store, set.BaseCurrency, present, rates, source) {
		var rejection *domain.RejectionError
		switch {
		case o.err == nil:
			res.Updated++
		case errors.Is(o.err, domain.ErrRateUnchanged):
			res.Skipped++
		case errors.As(o.err, &rejection):
			res.Rejected[o.code] = rejection.Reason
		default:
			res.Failed[o.code] = o.err.Error()
			log.WithError(o.err).WithField("currency", o.code).Error("Rate wasn't applied")
		}
	}

	if res.Updated+res.Skipped == 0 {
		if len(res.Rejected) > 0 {
			return fail(fmt.Errorf("%w: no rate was accepted", domain.ErrValidationRejected))
		}
		return fail(fmt.Errorf("%w: no rate was accepted", domain.ErrFetchFailed))
	}
	res.State = StateCommitted
	return res
}

func (s *UpdateScheduler) targets(ctx context.Context, scope, base string) ([]string, error) {
	if scope != "" {
		if scope == base {
			return nil, fmt.Errorf("%w: %s rate is fixed", domain.ErrBaseCurrency, scope)
		}
		c, err := s.store.GetCurrency(ctx, scope)
		if err != nil {
			return nil, err
		}
		if !c.IsActive {
			return nil, fmt.Errorf("%w: %s is inactive", domain.ErrUnknownCurrency, scope)
		}
		return []string{scope}, nil
	}

	active, err := s.store.ActiveRates(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(active))
	for _, c := range active {
		if c.Code != base {
			codes = append(codes, c.Code)
		}
	}
	return codes, nil
}

func (s *UpdateScheduler) recordFailure(ctx context.Context, code, source, reason string, res *UpdateResult) {
	res.Failed[code] = reason
	if _, err := s.store.RecordFailure(ctx, code, source, reason); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"exec_id": res.ExecID, "currency": code}).Error("Failed attempt wasn't recorded")
	}
}

// applyInParallel runs workers, which push every rate through the store
func applyInParallel(ctx context.Context, store rateApplier, base string, codes []string, rates map[string]decimal.Decimal, source string) []applyOutcome {
	workQueue := make(chan string, len(codes))
	for _, code := range codes {
		workQueue <- code
	}
	close(workQueue)

	outcomes := make(chan applyOutcome, len(codes))
	var wg sync.WaitGroup
	for i := 0; i < min(numWorkers, len(codes)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for code := range workQueue {
				_, err := store.ApplyQuoted(ctx, base, code, rates[code], source)
				outcomes <- applyOutcome{code: code, err: err}
			}
		}()
	}
	wg.Wait()
	close(outcomes)

	result := make([]applyOutcome, 0, len(codes))
	for o := range outcomes {
		result = append(result, o)
	}
	return result
}

type rateApplier interface {
	ApplyQuoted(ctx context.Context, base, code string, rate decimal.Decimal, source string) (domain.HistoryEntry, error)
}

var _ rateApplier = (*RateStore)(nil)
