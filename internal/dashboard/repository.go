package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brasa-analytics/brasa/internal/filters"
)

// salesJoin is the base relation every dashboard aggregate runs against. The
// aliases (s, c, st) are the vocabulary the filter compiler emits.
const salesJoin = `FROM sales s
JOIN channels c ON s.channel_id = c.id
JOIN stores st ON s.store_id = st.id`

// PGRepository provides the read-only PostgreSQL aggregates for the dashboard.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// SummaryRow is the single aggregate row of the metrics query. Sums and
// averages are pointers because an empty result set returns NULLs.
type SummaryRow struct {
	Pedidos       int64
	Faturamento   *float64
	TicketMedio   *float64
	Clientes      int64
	TaxasEntrega  *float64
	Descontos     *float64
	TempoProducao *float64
	TempoEntrega  *float64
}

// TotalsRow carries the two aggregates recomputed for the previous period.
type TotalsRow struct {
	Pedidos     int64
	Faturamento *float64
}

// MetricsSummary runs the eight-aggregate metrics query under the clause.
func (r *PGRepository) MetricsSummary(ctx context.Context, clause filters.Clause) (SummaryRow, error) {
	query := fmt.Sprintf(`SELECT
	COUNT(DISTINCT s.id),
	SUM(s.total_amount),
	AVG(s.total_amount),
	COUNT(DISTINCT s.customer_id),
	SUM(s.delivery_fee),
	SUM(s.total_discount),
	AVG(s.production_seconds),
	AVG(s.delivery_seconds)
%s
%s`, salesJoin, clause.SQL)

	var row SummaryRow
	err := r.pool.QueryRow(ctx, query, clause.Args...).Scan(
		&row.Pedidos,
		&row.Faturamento,
		&row.TicketMedio,
		&row.Clientes,
		&row.TaxasEntrega,
		&row.Descontos,
		&row.TempoProducao,
		&row.TempoEntrega,
	)
	if err != nil {
		return SummaryRow{}, fmt.Errorf("dashboard: metrics summary: %w", err)
	}
	return row, nil
}

// ComparisonTotals runs the reduced aggregate for the previous window.
func (r *PGRepository) ComparisonTotals(ctx context.Context, clause filters.Clause) (TotalsRow, error) {
	query := fmt.Sprintf(`SELECT
	COUNT(DISTINCT s.id),
	SUM(s.total_amount)
%s
%s`, salesJoin, clause.SQL)

	var row TotalsRow
	if err := r.pool.QueryRow(ctx, query, clause.Args...).Scan(&row.Pedidos, &row.Faturamento); err != nil {
		return TotalsRow{}, fmt.Errorf("dashboard: comparison totals: %w", err)
	}
	return row, nil
}

// TimelineRow is one day of revenue before presentation formatting.
type TimelineRow struct {
	Date    time.Time
	Value   *float64
	Pedidos int64
}

// RevenueTimeline returns daily revenue and order counts in ascending order.
func (r *PGRepository) RevenueTimeline(ctx context.Context, clause filters.Clause) ([]TimelineRow, error) {
	query := fmt.Sprintf(`SELECT
	DATE_TRUNC('day', s.created_at) AS date,
	SUM(s.total_amount) AS value,
	COUNT(*) AS pedidos
%s
%s
GROUP BY DATE_TRUNC('day', s.created_at)
ORDER BY date ASC`, salesJoin, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: revenue timeline: %w", err)
	}
	defer rows.Close()

	var out []TimelineRow
	for rows.Next() {
		var row TimelineRow
		if err := rows.Scan(&row.Date, &row.Value, &row.Pedidos); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ChannelRow is one channel's aggregates before share computation.
type ChannelRow struct {
	Name        string
	Type        string
	Pedidos     int64
	Receita     *float64
	TicketMedio *float64
}

// ChannelDistribution aggregates orders and revenue per channel.
func (r *PGRepository) ChannelDistribution(ctx context.Context, clause filters.Clause) ([]ChannelRow, error) {
	query := fmt.Sprintf(`SELECT
	c.name,
	c.type,
	COUNT(*) AS pedidos,
	SUM(s.total_amount) AS receita,
	AVG(s.total_amount) AS ticket_medio
%s
%s
GROUP BY c.id, c.name, c.type
ORDER BY receita DESC`, salesJoin, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: channel distribution: %w", err)
	}
	defer rows.Close()

	var out []ChannelRow
	for rows.Next() {
		var row ChannelRow
		if err := rows.Scan(&row.Name, &row.Type, &row.Pedidos, &row.Receita, &row.TicketMedio); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// StoreRow is one store's aggregates.
type StoreRow struct {
	Name          string
	City          *string
	State         *string
	Pedidos       int64
	Receita       *float64
	TicketMedio   *float64
	TempoProducao *float64
}

// StorePerformance aggregates orders, revenue and production time per store.
func (r *PGRepository) StorePerformance(ctx context.Context, clause filters.Clause) ([]StoreRow, error) {
	query := fmt.Sprintf(`SELECT
	st.name,
	st.city,
	st.state,
	COUNT(*) AS pedidos,
	SUM(s.total_amount) AS receita,
	AVG(s.total_amount) AS ticket_medio,
	AVG(s.production_seconds) AS tempo_medio_producao
%s
%s
GROUP BY st.id, st.name, st.city, st.state
ORDER BY receita DESC`, salesJoin, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: store performance: %w", err)
	}
	defer rows.Close()

	var out []StoreRow
	for rows.Next() {
		var row StoreRow
		if err := rows.Scan(&row.Name, &row.City, &row.State, &row.Pedidos, &row.Receita, &row.TicketMedio, &row.TempoProducao); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// HourRow is one weekday/hour bucket of the heatmap.
type HourRow struct {
	DiaSemana int
	Hora      int
	Pedidos   int64
	Receita   *float64
}

// SalesByHour buckets orders by weekday and hour.
func (r *PGRepository) SalesByHour(ctx context.Context, clause filters.Clause) ([]HourRow, error) {
	query := fmt.Sprintf(`SELECT
	EXTRACT(DOW FROM s.created_at)::int AS dia_semana,
	EXTRACT(HOUR FROM s.created_at)::int AS hora,
	COUNT(*) AS pedidos,
	SUM(s.total_amount) AS receita
%s
%s
GROUP BY dia_semana, hora
ORDER BY dia_semana, hora`, salesJoin, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: sales by hour: %w", err)
	}
	defer rows.Close()

	var out []HourRow
	for rows.Next() {
		var row HourRow
		if err := rows.Scan(&row.DiaSemana, &row.Hora, &row.Pedidos, &row.Receita); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// PaymentRow aggregates one payment type.
type PaymentRow struct {
	Metodo     string
	Online     bool
	Transacoes int64
	Valor      *float64
}

// PaymentMethods aggregates transaction counts and totals per payment type.
func (r *PGRepository) PaymentMethods(ctx context.Context, clause filters.Clause) ([]PaymentRow, error) {
	query := fmt.Sprintf(`SELECT
	pt.description AS metodo,
	p.is_online,
	COUNT(DISTINCT p.sale_id) AS transacoes,
	SUM(p.value) AS valor_total
FROM payments p
JOIN payment_types pt ON p.payment_type_id = pt.id
JOIN sales s ON p.sale_id = s.id
JOIN channels c ON s.channel_id = c.id
JOIN stores st ON s.store_id = st.id
%s
GROUP BY pt.description, p.is_online
ORDER BY valor_total DESC`, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: payment methods: %w", err)
	}
	defer rows.Close()

	var out []PaymentRow
	for rows.Next() {
		var row PaymentRow
		if err := rows.Scan(&row.Metodo, &row.Online, &row.Transacoes, &row.Valor); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CouponRow aggregates one coupon code.
type CouponRow struct {
	Code          string
	DiscountType  string
	Usos          int64
	DescontoTotal *float64
	TicketMedio   *float64
}

// CouponPerformance aggregates redemptions per coupon. Channels keep the `c`
// alias the compiler expects; coupons use `cp`.
func (r *PGRepository) CouponPerformance(ctx context.Context, clause filters.Clause) ([]CouponRow, error) {
	query := fmt.Sprintf(`SELECT
	cp.code,
	cp.discount_type,
	COUNT(DISTINCT cs.sale_id) AS usos,
	SUM(cs.value) AS desconto_total,
	AVG(s.total_amount) AS ticket_medio_com_cupom
FROM coupon_sales cs
JOIN coupons cp ON cs.coupon_id = cp.id
JOIN sales s ON cs.sale_id = s.id
JOIN channels c ON s.channel_id = c.id
JOIN stores st ON s.store_id = st.id
%s
GROUP BY cp.id, cp.code, cp.discount_type
ORDER BY usos DESC
LIMIT 20`, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: coupon performance: %w", err)
	}
	defer rows.Close()

	var out []CouponRow
	for rows.Next() {
		var row CouponRow
		if err := rows.Scan(&row.Code, &row.DiscountType, &row.Usos, &row.DescontoTotal, &row.TicketMedio); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListStores returns the store filter options ordered by name.
func (r *PGRepository) ListStores(ctx context.Context) ([]StoreOption, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, COALESCE(city, ''), COALESCE(state, ''), is_active FROM stores ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list stores: %w", err)
	}
	defer rows.Close()

	var out []StoreOption
	for rows.Next() {
		var opt StoreOption
		if err := rows.Scan(&opt.ID, &opt.Name, &opt.City, &opt.State, &opt.IsActive); err != nil {
			return nil, err
		}
		out = append(out, opt)
	}
	return out, rows.Err()
}

// ListChannels returns the channel filter options ordered by name.
func (r *PGRepository) ListChannels(ctx context.Context) ([]ChannelOption, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, type FROM channels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list channels: %w", err)
	}
	defer rows.Close()

	var out []ChannelOption
	for rows.Next() {
		var opt ChannelOption
		if err := rows.Scan(&opt.ID, &opt.Name, &opt.Type); err != nil {
			return nil, err
		}
		out = append(out, opt)
	}
	return out, rows.Err()
}

// ListSubBrands returns the sub-brand filter options ordered by name.
func (r *PGRepository) ListSubBrands(ctx context.Context) ([]SubBrandOption, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM sub_brands ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("dashboard: list sub-brands: %w", err)
	}
	defer rows.Close()

	var out []SubBrandOption
	for rows.Next() {
		var opt SubBrandOption
		if err := rows.Scan(&opt.ID, &opt.Name); err != nil {
			return nil, err
		}
		out = append(out, opt)
	}
	return out, rows.Err()
}
