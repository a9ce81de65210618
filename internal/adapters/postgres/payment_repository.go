package postgres

import (
	"context"
	"errors"
	"fmt"

	"multicurrency/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const paymentColumns = `id, sale_id, currency, original_amount::text, rate_used::text, base_amount::text, payment_date, reversal_of`

type PaymentRepository struct {
	pool *pgxpool.Pool
}

func scanPayment(row pgx.Row) (domain.CurrencyPayment, error) {
	var (
		p                        domain.CurrencyPayment
		amount, rate, baseAmount string
	)
	if err := row.Scan(&p.ID, &p.SaleID, &p.Currency, &amount, &rate, &baseAmount, &p.PaymentDate, &p.ReversalOf); err != nil {
		return domain.CurrencyPayment{}, err
	}
	var err error
	if p.OriginalAmount, err = parseDecimal(amount, "original_amount"); err != nil {
		return domain.CurrencyPayment{}, err
	}
	if p.RateUsed, err = parseDecimal(rate, "rate_used"); err != nil {
		return domain.CurrencyPayment{}, err
	}
	if p.BaseAmount, err = parseDecimal(baseAmount, "base_amount"); err != nil {
		return domain.CurrencyPayment{}, err
	}
	p.PaymentDate = p.PaymentDate.UTC()
	return p, nil
}

func (r *PaymentRepository) Save(ctx context.Context, p domain.CurrencyPayment) error {
	const q = `
		insert into currency_payments (id, sale_id, currency, original_amount, rate_used, base_amount, payment_date, reversal_of)
		values ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7, $8);
	`

	_, err := r.pool.Exec(ctx, q, p.ID, p.SaleID, p.Currency,
		p.OriginalAmount.String(), p.RateUsed.String(), p.BaseAmount.String(), p.PaymentDate.UTC(), p.ReversalOf)
	if err != nil {
		// reversal_of is unique, a concurrent reversal got there first
		var pgErr *pgconn.PgError
		if p.ReversalOf != nil && errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrPaymentReversed
		}
		return fmt.Errorf("failed to insert payment %s: %w", p.ID, err)
	}
	return nil
}

func (r *PaymentRepository) Get(ctx context.Context, id uuid.UUID) (domain.CurrencyPayment, error) {
	q := `select ` + paymentColumns + ` from currency_payments where id = $1`

	p, err := scanPayment(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CurrencyPayment{}, domain.ErrPaymentNotFound
		}
		return domain.CurrencyPayment{}, fmt.Errorf("failed to select payment %s: %w", id, err)
	}
	return p, nil
}

func (r *PaymentRepository) ListBySale(ctx context.Context, saleID string) ([]domain.CurrencyPayment, error) {
	q := `select ` + paymentColumns + ` from currency_payments where sale_id = $1 order by payment_date, id`

	rows, err := r.pool.Query(ctx, q, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	list := make([]domain.CurrencyPayment, 0, 4)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		list = append(list, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return list, nil
}

func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}
