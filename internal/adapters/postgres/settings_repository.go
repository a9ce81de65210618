package postgres

import (
	"context"
	"errors"
	"fmt"

	"multicurrency/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository stores the single settings row of the instance.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

func (r *SettingsRepository) Get(ctx context.Context) (domain.Settings, error) {
	const q = `
		select base_currency, rate_source, update_frequency, auto_update, round_to_decimals,
		       show_both_currencies, allow_multi_currency_payment, max_deviation_percent::text, history_continuity
		from currency_settings where id;
	`

	var (
		s         domain.Settings
		deviation string
	)
	err := r.pool.QueryRow(ctx, q).Scan(&s.BaseCurrency, &s.RateSource, &s.UpdateFrequency, &s.AutoUpdate, &s.RoundToDecimals,
		&s.ShowBothCurrencies, &s.AllowMultiCurrencyPayment, &deviation, &s.HistoryContinuity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Settings{}, domain.ErrSettingsNotFound
		}
		return domain.Settings{}, fmt.Errorf("failed to select settings: %w", err)
	}
	if s.MaxDeviationPercent, err = parseDecimal(deviation, "max_deviation_percent"); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, s domain.Settings) error {
	return saveSettings(ctx, r.pool, s)
}

func saveSettings(ctx context.Context, db querier, s domain.Settings) error {
	const q = `
		insert into currency_settings (id, base_currency, rate_source, update_frequency, auto_update, round_to_decimals,
		                               show_both_currencies, allow_multi_currency_payment, max_deviation_percent, history_continuity, updated_at)
		values (true, $1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, now())
		on conflict (id) do update
		set base_currency = excluded.base_currency, rate_source = excluded.rate_source,
		    update_frequency = excluded.update_frequency, auto_update = excluded.auto_update,
		    round_to_decimals = excluded.round_to_decimals, show_both_currencies = excluded.show_both_currencies,
		    allow_multi_currency_payment = excluded.allow_multi_currency_payment,
		    max_deviation_percent = excluded.max_deviation_percent, history_continuity = excluded.history_continuity,
		    updated_at = now();
	`

	_, err := db.Exec(ctx, q, s.BaseCurrency, string(s.RateSource), string(s.UpdateFrequency), s.AutoUpdate, s.RoundToDecimals,
		s.ShowBothCurrencies, s.AllowMultiCurrencyPayment, s.MaxDeviationPercent.String(), s.HistoryContinuity)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// persistedBase returns the stored base currency, or "" before settings are seeded.
func persistedBase(ctx context.Context, db querier) (string, error) {
	var base string
	err := db.QueryRow(ctx, `select base_currency from currency_settings where id`).Scan(&base)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to select base currency: %w", err)
	}
	return base, nil
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}
