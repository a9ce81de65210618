package rate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"multicurrency/internal/adapters"
	"multicurrency/internal/domain"
	"multicurrency/internal/platform/metrics"
	"multicurrency/internal/settings"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTickInterval = 30 * time.Second
	defaultFetchTimeout = 10 * time.Second

	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

type State string

const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateValidating State = "validating"
	StateCommitted  State = "committed"
	StateFailed     State = "failed"
)

// Status is a snapshot of the scheduler for operators.
type Status struct {
	State       State         `json:"state"`
	LastRun     *time.Time    `json:"last_run,omitempty"`
	LastSuccess *time.Time    `json:"last_success,omitempty"`
	NextDue     *time.Time    `json:"next_due,omitempty"`
	LastError   string        `json:"last_error,omitempty"`
	Last        *UpdateResult `json:"last,omitempty"`
}

// UpdateScheduler runs update cycles on a cadence and on demand. At most one
// cycle is in flight at any time.
type UpdateScheduler struct {
	store        *RateStore
	providers    adapters.ProviderRegistry
	settings     *settings.Holder
	metrics      *metrics.Metrics
	clock        clockwork.Clock
	tickInterval time.Duration
	fetchTimeout time.Duration

	group singleflight.Group
	runMu sync.Mutex

	mu          sync.RWMutex
	state       State
	lastRun     time.Time
	lastSuccess time.Time
	// lastFullRun drives the cadence; single-currency triggers don't move it.
	lastFullRun time.Time
	last        *UpdateResult

	sched gocron.Scheduler
}

func (s *UpdateScheduler) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler(gocron.WithClock(s.clock))
	if err != nil {
		return err
	}
	s.sched = scheduler

	job := func(jobCtx context.Context) {
		s.Tick(jobCtx)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(s.tickInterval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	scheduler.Start()

	// Stop scheduler when the provided context is canceled.
	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			logrus.Errorf("Scheduler shutdown error: %v", sdErr)
		}
	}()
	return nil
}

func (s *UpdateScheduler) Shutdown() error {
	s.mu.Lock()
	sched := s.sched
	s.sched = nil
	s.mu.Unlock()
	if sched == nil {
		return nil
	}
	return sched.Shutdown()
}

// Tick runs a full update cycle when one is due. It reports whether a cycle ran.
func (s *UpdateScheduler) Tick(ctx context.Context) bool {
	set := s.settings.Current()
	if !set.AutoUpdate || set.RateSource == domain.SourceManual || set.UpdateFrequency == domain.FrequencyManual {
		return false
	}
	now := s.clock.Now()
	if due, ok := s.nextDue(set); ok && now.Before(due) {
		return false
	}
	s.run(ctx, "", TriggerScheduled)
	return true
}

// Trigger runs an update cycle for one currency, or for all of them when scope
// is empty. A trigger that arrives while a cycle for the same scope is running
// gets that cycle's result.
func (s *UpdateScheduler) Trigger(ctx context.Context, scope string) (UpdateResult, error) {
	if s.settings.Current().RateSource == domain.SourceManual {
		return UpdateResult{}, fmt.Errorf("%w: rates are entered by hand", domain.ErrManualSource)
	}
	if scope != "" {
		if err := ValidateCode(scope); err != nil {
			return UpdateResult{}, err
		}
	}
	res := s.run(ctx, scope, TriggerManual)
	return res, res.Err
}

func (s *UpdateScheduler) run(ctx context.Context, scope, trigger string) UpdateResult {
	v, _, _ := s.group.Do(scope, func() (any, error) {
		// the cycle outlives a single caller giving up
		runCtx := context.WithoutCancel(ctx)
		s.runMu.Lock()
		defer s.runMu.Unlock()
		res := s.cycle(runCtx, scope)
		s.finish(res, trigger)
		return res, nil
	})
	return v.(UpdateResult)
}

func (s *UpdateScheduler) Status() Status {
	set := s.settings.Current()

	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{State: s.state, Last: s.last}
	if !s.lastRun.IsZero() {
		t := s.lastRun
		st.LastRun = &t
	}
	if !s.lastSuccess.IsZero() {
		t := s.lastSuccess
		st.LastSuccess = &t
	}
	if set.AutoUpdate && set.RateSource != domain.SourceManual && set.UpdateFrequency != domain.FrequencyManual {
		due := s.clock.Now()
		if !s.lastFullRun.IsZero() {
			due = s.lastFullRun.Add(set.UpdateFrequency.Interval())
		}
		st.NextDue = &due
	}
	if s.last != nil {
		st.LastError = s.last.Error
	}
	return st
}

func (s *UpdateScheduler) nextDue(set domain.Settings) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastFullRun.IsZero() {
		return time.Time{}, false
	}
	return s.lastFullRun.Add(set.UpdateFrequency.Interval()), true
}

func (s *UpdateScheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *UpdateScheduler) finish(res UpdateResult, trigger string) {
	s.mu.Lock()
	s.state = StateIdle
	s.lastRun = res.StartedAt
	if res.Scope == "" {
		s.lastFullRun = res.StartedAt
	}
	if res.State == StateCommitted {
		s.lastSuccess = res.FinishedAt
	}
	s.last = &res
	s.mu.Unlock()

	s.metrics.UpdateCycle(trigger, string(res.State))
	entry := logrus.WithFields(logrus.Fields{
		"exec_id":  res.ExecID,
		"trigger":  trigger,
		"source":   res.Source,
		"updated":  res.Updated,
		"skipped":  res.Skipped,
		"rejected": len(res.Rejected),
		"failed":   len(res.Failed),
	})
	if res.State == StateFailed {
		entry.WithError(res.Err).Warn("Update cycle failed")
		return
	}
	entry.Info("Update cycle committed")
}

func (s *UpdateScheduler) provider(source domain.RateSource) (adapters.RateProvider, error) {
	p, err := s.providers.For(source)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider for %s: %w", source, err)
	}
	return p, nil
}

// SchedulerDeps groups the collaborators of an UpdateScheduler.
type SchedulerDeps struct {
	Store        *RateStore
	Providers    adapters.ProviderRegistry
	Settings     *settings.Holder
	Metrics      *metrics.Metrics
	Clock        clockwork.Clock
	TickInterval time.Duration
	FetchTimeout time.Duration
}

func NewUpdateScheduler(deps SchedulerDeps) *UpdateScheduler {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.TickInterval <= 0 {
		deps.TickInterval = defaultTickInterval
	}
	if deps.FetchTimeout <= 0 {
		deps.FetchTimeout = defaultFetchTimeout
	}
	return &UpdateScheduler{
		store:        deps.Store,
		providers:    deps.Providers,
		settings:     deps.Settings,
		metrics:      deps.Metrics,
		clock:        deps.Clock,
		tickInterval: deps.TickInterval,
		fetchTimeout: deps.FetchTimeout,
		state:        StateIdle,
	}
}
