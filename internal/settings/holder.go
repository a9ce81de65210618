// Package settings holds the conversion policy of the running instance.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"multicurrency/internal/adapters"
	"multicurrency/internal/domain"

	"github.com/sirupsen/logrus"
)

// Holder is loaded once at startup and reloaded only on explicit change.
type Holder struct {
	mu      sync.RWMutex
	current domain.Settings
	repo    adapters.SettingsRepository
}

func (h *Holder) Current() domain.Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload replaces the in-memory settings with the persisted ones.
func (h *Holder) Reload(ctx context.Context) error {
	s, err := h.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload settings: %w", err)
	}
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
	return nil
}

// Update persists s and makes it current.
func (h *Holder) Update(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := h.repo.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"base":      s.BaseCurrency,
		"source":    s.RateSource,
		"frequency": s.UpdateFrequency,
	}).Info("Settings updated")
	return nil
}

// Apply makes s current without writing it. The caller has already persisted s,
// as a rebase does together with the rates.
func (h *Holder) Apply(s domain.Settings) {
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
	if static, ok := h.repo.(*staticRepo); ok {
		_ = static.Save(context.Background(), s)
	}
	logrus.WithField("base", s.BaseCurrency).Info("Settings applied")
}

// Load reads persisted settings, seeding the repository with defaults on first start.
func Load(ctx context.Context, repo adapters.SettingsRepository, defaults domain.Settings) (*Holder, error) {
	s, err := repo.Get(ctx)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		if err = defaults.Validate(); err != nil {
			return nil, fmt.Errorf("invalid default settings: %w", err)
		}
		if err = repo.Save(ctx, defaults); err != nil {
			return nil, fmt.Errorf("failed to seed settings: %w", err)
		}
		s = defaults
	} else if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &Holder{current: s, repo: repo}, nil
}

// NewStatic returns a holder that is not backed by a repository. Update and Reload
// keep working against an in-process copy.
func NewStatic(s domain.Settings) *Holder {
	return &Holder{current: s, repo: &staticRepo{s: s}}
}

type staticRepo struct {
	mu sync.Mutex
	s  domain.Settings
}

func (r *staticRepo) Get(context.Context) (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.s, nil
}

func (r *staticRepo) Save(_ context.Context, s domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s = s
	return nil
}
