package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"multicurrency/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const currencyColumns = `code, name, symbol, rate::text, decimal_places, sort_order, is_active, last_updated, created_at`

type CurrencyRepository struct {
	pool *pgxpool.Pool
}

func scanCurrency(row pgx.Row) (domain.Currency, error) {
	var (
		c    domain.Currency
		rate string
	)
	if err := row.Scan(&c.Code, &c.Name, &c.Symbol, &rate, &c.DecimalPlaces, &c.SortOrder, &c.IsActive, &c.LastUpdated, &c.CreatedAt); err != nil {
		return domain.Currency{}, err
	}
	var err error
	if c.Rate, err = parseDecimal(rate, "rate"); err != nil {
		return domain.Currency{}, err
	}
	c.LastUpdated = utcPtr(c.LastUpdated)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, nil
}

func (r *CurrencyRepository) Get(ctx context.Context, code string) (domain.Currency, error) {
	q := `select ` + currencyColumns + ` from currencies where code = $1 and deleted_at is null`

	c, err := scanCurrency(r.pool.QueryRow(ctx, q, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Currency{}, domain.ErrUnknownCurrency
		}
		return domain.Currency{}, fmt.Errorf("failed to select currency %q: %w", code, err)
	}
	return c, nil
}

func (r *CurrencyRepository) List(ctx context.Context, activeOnly bool) ([]domain.Currency, error) {
	q := `
		select ` + currencyColumns + `
		from currencies
		where deleted_at is null and (not $1 or is_active)
		order by sort_order, code;
	`

	rows, err := r.pool.Query(ctx, q, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	list := make([]domain.Currency, 0, 16)
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currency: %w", err)
		}
		list = append(list, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currencies: %w", err)
	}
	return list, nil
}

// Create inserts a currency together with its initial history entry. A
// soft-deleted currency with the same code is brought back.
func (r *CurrencyRepository) Create(ctx context.Context, c domain.Currency) (domain.Currency, error) {
	const q = `
		insert into currencies (code, name, symbol, rate, decimal_places, sort_order, is_active, last_updated, created_at)
		values ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $8)
		on conflict (code) do update
		set name = excluded.name, symbol = excluded.symbol, rate = excluded.rate,
		    decimal_places = excluded.decimal_places, sort_order = excluded.sort_order,
		    is_active = excluded.is_active, last_updated = excluded.last_updated,
		    created_at = excluded.created_at, deleted_at = null
		where currencies.deleted_at is not null
		returning ` + currencyColumns

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Currency{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	at := c.CreatedAt.UTC()
	created, err := scanCurrency(tx.QueryRow(ctx, q, c.Code, c.Name, c.Symbol, c.Rate.String(), c.DecimalPlaces, c.SortOrder, c.IsActive, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Currency{}, domain.ErrCurrencyExists
		}
		return domain.Currency{}, fmt.Errorf("failed to insert currency %q: %w", c.Code, err)
	}

	if _, err = appendHistory(ctx, tx, domain.HistoryEntry{
		Currency:   c.Code,
		NewRate:    c.Rate,
		Source:     string(domain.SourceManual),
		RecordedAt: at,
	}); err != nil {
		return domain.Currency{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return domain.Currency{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

func (r *CurrencyRepository) UpdateDetails(ctx context.Context, code string, d domain.CurrencyDetails) (domain.Currency, error) {
	q := `
		update currencies set name = $2, symbol = $3, decimal_places = $4, sort_order = $5
		where code = $1 and deleted_at is null
		returning ` + currencyColumns

	c, err := scanCurrency(r.pool.QueryRow(ctx, q, code, d.Name, d.Symbol, d.DecimalPlaces, d.SortOrder))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Currency{}, domain.ErrUnknownCurrency
		}
		return domain.Currency{}, fmt.Errorf("failed to update currency %q: %w", code, err)
	}
	return c, nil
}

func (r *CurrencyRepository) SetActive(ctx context.Context, code string, active bool) (domain.Currency, error) {
	q := `update currencies set is_active = $2 where code = $1 and deleted_at is null returning ` + currencyColumns

	c, err := scanCurrency(r.pool.QueryRow(ctx, q, code, active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Currency{}, domain.ErrUnknownCurrency
		}
		return domain.Currency{}, fmt.Errorf("failed to toggle currency %q: %w", code, err)
	}
	return c, nil
}

func (r *CurrencyRepository) Delete(ctx context.Context, code string) error {
	const q = `
		update currencies set deleted_at = now()
		where code = $1 and deleted_at is null
		  and not exists (select 1 from currency_payments where currency = $1)
		returning code;
	`

	var deleted string
	err := r.pool.QueryRow(ctx, q, code).Scan(&deleted)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to delete currency %q: %w", code, err)
	}

	// nothing updated: either the currency is gone or it has payments
	if _, err = r.Get(ctx, code); err != nil {
		return err
	}
	return domain.ErrCurrencyInUse
}

// ApplyRate locks the currency row, checks it against the last accepted history
// entry and persists whatever decide returns.
func (r *CurrencyRepository) ApplyRate(ctx context.Context, change domain.RateChange, decide domain.DecideFunc) (domain.HistoryEntry, domain.Decision, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.HistoryEntry{}, domain.Decision{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := `select ` + currencyColumns + ` from currencies where code = $1 and deleted_at is null for update`
	current, err := scanCurrency(tx.QueryRow(ctx, q, change.Code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HistoryEntry{}, domain.Decision{}, domain.ErrUnknownCurrency
		}
		return domain.HistoryEntry{}, domain.Decision{}, fmt.Errorf("failed to lock currency %q: %w", change.Code, err)
	}

	// a rebase commits while holding every currency row, so this read sees its result
	if change.Base != "" {
		base, err := persistedBase(ctx, tx)
		if err != nil {
			return domain.HistoryEntry{}, domain.Decision{}, err
		}
		if base != "" && base != change.Base {
			return domain.HistoryEntry{}, domain.Decision{}, fmt.Errorf("%w: %s quoted against %s, base is %s",
				domain.ErrBaseChanged, change.Code, change.Base, base)
		}
	}

	last, err := lastAccepted(ctx, tx, change.Code)
	if err != nil {
		return domain.HistoryEntry{}, domain.Decision{}, err
	}
	if last != nil && !last.NewRate.Equal(current.Rate) {
		return domain.HistoryEntry{}, domain.Decision{}, fmt.Errorf("%w: %s rate %s differs from last history rate %s",
			domain.ErrInconsistentState, change.Code, current.Rate, last.NewRate)
	}

	decision := decide(current, last)
	old := current.Rate
	entry := domain.HistoryEntry{
		Currency:   change.Code,
		OldRate:    &old,
		NewRate:    change.Rate,
		Source:     change.Source,
		RecordedAt: change.At.UTC(),
	}
	switch decision.Outcome {
	case domain.OutcomeAccept:
		const upd = `update currencies set rate = $2::numeric, last_updated = $3 where code = $1`
		if _, err = tx.Exec(ctx, upd, change.Code, change.Rate.String(), entry.RecordedAt); err != nil {
			return domain.HistoryEntry{}, domain.Decision{}, fmt.Errorf("failed to update rate for %q: %w", change.Code, err)
		}
	case domain.OutcomeReject:
		entry.FailureReason = decision.Reason
	default:
		return domain.HistoryEntry{}, decision, nil
	}

	if entry, err = appendHistory(ctx, tx, entry); err != nil {
		return domain.HistoryEntry{}, domain.Decision{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return domain.HistoryEntry{}, domain.Decision{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return entry, decision, nil
}

// Rebase re-expresses the rates of all live currencies against next.BaseCurrency
// and saves next as the settings in the same transaction.
func (r *CurrencyRepository) Rebase(ctx context.Context, next domain.Settings, at time.Time) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	newBase := next.BaseCurrency
	rows, err := tx.Query(ctx, `select code, rate::text from currencies where deleted_at is null order by code for update`)
	if err != nil {
		return fmt.Errorf("failed to lock currencies: %w", err)
	}
	type locked struct {
		code string
		rate string
	}
	var (
		all    []locked
		factor string
	)
	for rows.Next() {
		var l locked
		if err = rows.Scan(&l.code, &l.rate); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan currency: %w", err)
		}
		if l.code == newBase {
			factor = l.rate
		}
		all = append(all, l)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating currencies: %w", err)
	}
	if factor == "" {
		return domain.ErrUnknownCurrency
	}

	base, err := parseDecimal(factor, "rate")
	if err != nil {
		return err
	}
	stamp := at.UTC()
	for _, l := range all {
		old, err := parseDecimal(l.rate, "rate")
		if err != nil {
			return err
		}
		next := old.DivRound(base, domain.RatePlaces)
		if l.code == newBase {
			next = domain.One
		}
		if _, err = tx.Exec(ctx, `update currencies set rate = $2::numeric, last_updated = $3 where code = $1`, l.code, next.String(), stamp); err != nil {
			return fmt.Errorf("failed to rebase %q: %w", l.code, err)
		}
		if _, err = appendHistory(ctx, tx, domain.HistoryEntry{
			Currency:   l.code,
			OldRate:    &old,
			NewRate:    next,
			Source:     string(domain.SourceRebase),
			RecordedAt: stamp,
		}); err != nil {
			return err
		}
	}
	if err = saveSettings(ctx, tx, next); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}
