package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"multicurrency/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const historyColumns = `id, currency, old_rate::text, new_rate::text, source, recorded_at, failure_reason`

type HistoryRepository struct {
	pool *pgxpool.Pool
}

func scanHistory(row pgx.Row) (domain.HistoryEntry, error) {
	var (
		e       domain.HistoryEntry
		oldRate *string
		newRate string
	)
	if err := row.Scan(&e.ID, &e.Currency, &oldRate, &newRate, &e.Source, &e.RecordedAt, &e.FailureReason); err != nil {
		return domain.HistoryEntry{}, err
	}
	var err error
	if e.OldRate, err = parseOptionalDecimal(oldRate, "old_rate"); err != nil {
		return domain.HistoryEntry{}, err
	}
	if e.NewRate, err = parseDecimal(newRate, "new_rate"); err != nil {
		return domain.HistoryEntry{}, err
	}
	e.RecordedAt = e.RecordedAt.UTC()
	return e, nil
}

func appendHistory(ctx context.Context, q querier, e domain.HistoryEntry) (domain.HistoryEntry, error) {
	const ins = `
		insert into rate_history (currency, old_rate, new_rate, source, recorded_at, failure_reason)
		values ($1, $2::numeric, $3::numeric, $4, $5, $6)
		returning id;
	`

	var oldRate *string
	if e.OldRate != nil {
		s := e.OldRate.String()
		oldRate = &s
	}
	e.RecordedAt = e.RecordedAt.UTC()
	if err := q.QueryRow(ctx, ins, e.Currency, oldRate, e.NewRate.String(), e.Source, e.RecordedAt, e.FailureReason).Scan(&e.ID); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("failed to insert history entry for %q: %w", e.Currency, err)
	}
	return e, nil
}

// lastAccepted returns nil when the currency has no accepted entry yet.
func lastAccepted(ctx context.Context, q querier, code string) (*domain.HistoryEntry, error) {
	sel := `
		select ` + historyColumns + `
		from rate_history
		where currency = $1 and failure_reason = ''
		order by id desc
		limit 1;
	`

	e, err := scanHistory(q.QueryRow(ctx, sel, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to select last history entry for %q: %w", code, err)
	}
	return &e, nil
}

func (r *HistoryRepository) Append(ctx context.Context, entry domain.HistoryEntry) (domain.HistoryEntry, error) {
	return appendHistory(ctx, r.pool, entry)
}

func (r *HistoryRepository) RateAt(ctx context.Context, code string, at time.Time) (domain.HistoryEntry, error) {
	q := `
		select ` + historyColumns + `
		from rate_history
		where currency = $1 and failure_reason = '' and recorded_at <= $2
		order by recorded_at desc, id desc
		limit 1;
	`

	e, err := scanHistory(r.pool.QueryRow(ctx, q, code, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.HistoryEntry{}, domain.ErrRateNotFound
		}
		return domain.HistoryEntry{}, fmt.Errorf("failed to select rate for %q at %s: %w", code, at.Format(time.RFC3339), err)
	}
	return e, nil
}

func (r *HistoryRepository) List(ctx context.Context, filter domain.HistoryFilter) (domain.HistoryPage, error) {
	filter = filter.Normalize()

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter.Currency != "" {
		where = append(where, "currency = "+arg(filter.Currency))
	}
	if !filter.From.IsZero() {
		where = append(where, "recorded_at >= "+arg(filter.From))
	}
	if !filter.To.IsZero() {
		where = append(where, "recorded_at < "+arg(filter.To))
	}
	cond := ""
	if len(where) > 0 {
		cond = " where " + strings.Join(where, " and ")
	}

	page := domain.HistoryPage{Page: filter.Page, PerPage: filter.PerPage}
	if err := r.pool.QueryRow(ctx, `select count(*) from rate_history`+cond, args...).Scan(&page.Total); err != nil {
		return domain.HistoryPage{}, fmt.Errorf("failed to count history: %w", err)
	}

	order := "recorded_at desc, id desc"
	if filter.Order == domain.OrderChronological {
		order = "recorded_at, id"
	}
	q := `select ` + historyColumns + ` from rate_history` + cond +
		` order by ` + order + ` limit ` + arg(filter.PerPage) + ` offset ` + arg(filter.Offset())

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return domain.HistoryPage{}, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	page.Entries = make([]domain.HistoryEntry, 0, filter.PerPage)
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return domain.HistoryPage{}, fmt.Errorf("failed to scan history entry: %w", err)
		}
		page.Entries = append(page.Entries, e)
	}
	if err = rows.Err(); err != nil {
		return domain.HistoryPage{}, fmt.Errorf("error iterating history: %w", err)
	}
	return page, nil
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}
