package operations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brasa-analytics/brasa/internal/filters"
)

const salesJoin = `FROM sales s
JOIN channels c ON s.channel_id = c.id
JOIN stores st ON s.store_id = st.id`

const cancelledCase = "CASE WHEN s.sale_status_desc IN ('CANCELADO', 'CANCELLED') THEN 1 END"

// PGRepository provides the read-only PostgreSQL aggregates for operational
// analytics.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// MetricsRow is the single operational summary row.
type MetricsRow struct {
	TempoProducao      *float64
	TempoEntrega       *float64
	TaxaCancelamento   *float64
	TotalCancelamentos int64
	PedidosPorHora     *float64
	EficienciaGeral    *float64
}

// Metrics computes the operational summary. Efficiency scores average
// production time against a 20-minute target and floors at zero.
func (r *PGRepository) Metrics(ctx context.Context, clause filters.Clause) (MetricsRow, error) {
	query := fmt.Sprintf(`SELECT
	AVG(s.production_seconds) AS tempo_medio_producao,
	AVG(s.delivery_seconds) AS tempo_medio_entrega,
	COUNT(%[1]s)::decimal / NULLIF(COUNT(*), 0) AS taxa_cancelamento,
	COUNT(%[1]s) AS total_cancelamentos,
	COUNT(*) / GREATEST(EXTRACT(EPOCH FROM (MAX(s.created_at) - MIN(s.created_at))) / 3600, 1) AS pedidos_por_hora,
	CASE
		WHEN AVG(s.production_seconds) > 0
		THEN GREATEST(0, 1 - (AVG(s.production_seconds) - 1200) / 1200)
		ELSE 0.8
	END AS eficiencia_geral
%[2]s
%[3]s`, cancelledCase, salesJoin, clause.SQL)

	var row MetricsRow
	err := r.pool.QueryRow(ctx, query, clause.Args...).Scan(
		&row.TempoProducao,
		&row.TempoEntrega,
		&row.TaxaCancelamento,
		&row.TotalCancelamentos,
		&row.PedidosPorHora,
		&row.EficienciaGeral,
	)
	if err != nil {
		return MetricsRow{}, fmt.Errorf("operations: metrics: %w", err)
	}
	return row, nil
}

// HourRow is one hour bucket before coercion.
type HourRow struct {
	Hora          int
	TempoProducao *float64
	TempoEntrega  *float64
	TotalPedidos  int64
	Cancelamentos int64
}

// ByHour buckets production and delivery times by hour of day.
func (r *PGRepository) ByHour(ctx context.Context, clause filters.Clause) ([]HourRow, error) {
	query := fmt.Sprintf(`SELECT
	EXTRACT(HOUR FROM s.created_at)::int AS hora,
	AVG(s.production_seconds) AS tempo_medio_producao,
	AVG(s.delivery_seconds) AS tempo_medio_entrega,
	COUNT(*) AS total_pedidos,
	COUNT(%s) AS cancelamentos
%s
%s
GROUP BY EXTRACT(HOUR FROM s.created_at)
ORDER BY hora`, cancelledCase, salesJoin, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("operations: by hour: %w", err)
	}
	defer rows.Close()

	var out []HourRow
	for rows.Next() {
		var row HourRow
		if err := rows.Scan(&row.Hora, &row.TempoProducao, &row.TempoEntrega, &row.TotalPedidos, &row.Cancelamentos); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CancellationRow is the cancellation summary with its JSON breakdowns.
type CancellationRow struct {
	TotalPedidos       int64
	TotalCancelamentos int64
	TaxaGeral          *float64
	PorMotivo          []CancelReason
	PorHora            []CancelHour
}

// Cancellations computes the cancellation summary plus per-reason and
// per-hour breakdowns in one round trip; the breakdowns come back as
// json_agg columns.
func (r *PGRepository) Cancellations(ctx context.Context, clause filters.Clause) (CancellationRow, error) {
	query := fmt.Sprintf(`WITH base_data AS (
	SELECT s.*
	%[2]s
	%[3]s
),
metricas_gerais AS (
	SELECT
		COUNT(*) AS total_pedidos,
		COUNT(%[1]s) AS total_cancelamentos,
		COUNT(%[1]s)::decimal / NULLIF(COUNT(*), 0) AS taxa_cancelamento_geral
	FROM base_data s
),
cancelamentos_por_motivo AS (
	SELECT
		COALESCE(s.discount_reason, 'Sem motivo informado') AS motivo,
		COUNT(*) AS quantidade
	FROM base_data s
	WHERE s.sale_status_desc IN ('CANCELADO', 'CANCELLED')
	GROUP BY s.discount_reason
	ORDER BY quantidade DESC
	LIMIT 10
),
cancelamentos_por_hora AS (
	SELECT
		EXTRACT(HOUR FROM s.created_at)::integer AS hora,
		COUNT(*) AS total_hora,
		COUNT(%[1]s) AS cancelamentos_hora,
		COUNT(%[1]s)::decimal / NULLIF(COUNT(*), 0) AS taxa_cancelamento
	FROM base_data s
	GROUP BY EXTRACT(HOUR FROM s.created_at)
	ORDER BY hora
)
SELECT
	mg.total_pedidos,
	mg.total_cancelamentos,
	mg.taxa_cancelamento_geral,
	COALESCE(
		(SELECT json_agg(json_build_object('motivo', motivo, 'quantidade', quantidade))
		 FROM cancelamentos_por_motivo),
		'[]'::json
	) AS cancelamentos_por_motivo,
	COALESCE(
		(SELECT json_agg(json_build_object(
			'hora', hora,
			'total_hora', total_hora,
			'cancelamentos_hora', cancelamentos_hora,
			'taxa_cancelamento', taxa_cancelamento
		)) FROM cancelamentos_por_hora),
		'[]'::json
	) AS cancelamentos_por_hora
FROM metricas_gerais mg`, cancelledCase, salesJoin, clause.SQL)

	var row CancellationRow
	err := r.pool.QueryRow(ctx, query, clause.Args...).Scan(
		&row.TotalPedidos,
		&row.TotalCancelamentos,
		&row.TaxaGeral,
		&row.PorMotivo,
		&row.PorHora,
	)
	if err != nil {
		return CancellationRow{}, fmt.Errorf("operations: cancellations: %w", err)
	}
	return row, nil
}
