package customers

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brasa-analytics/brasa/internal/filters"
)

// PGRepository provides the read-only PostgreSQL aggregates for customer
// analytics. Customers are aliased cu throughout so the channel alias c the
// filter compiler emits stays unambiguous.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// MetricsRow is the single recency-bucket aggregate row.
type MetricsRow struct {
	TotalClientes    int64
	ClientesAtivos7d int64
	ClientesAtivos15 int64
	ClientesAtivos30 int64
	ClientesAtivos90 int64
	ClientesInativos int64
	ClientesAtivos   int64
	TicketMedioGeral *float64
	FrequenciaMedia  *float64
}

// Metrics buckets customers by the age of their last non-cancelled purchase.
// The buckets are exclusive windows: 0-7, 8-15, 16-30 and 31-90 days.
func (r *PGRepository) Metrics(ctx context.Context, clause filters.Clause) (MetricsRow, error) {
	query := fmt.Sprintf(`WITH customer_last_purchase AS (
	SELECT
		cu.id,
		MAX(s.created_at) AS ultima_compra
	FROM customers cu
	LEFT JOIN sales s ON cu.id = s.customer_id
	LEFT JOIN channels c ON s.channel_id = c.id
	LEFT JOIN stores st ON s.store_id = st.id
	%s
	GROUP BY cu.id
)
SELECT
	COUNT(DISTINCT clp.id) AS total_clientes,
	COUNT(DISTINCT CASE
		WHEN clp.ultima_compra >= NOW() - INTERVAL '7 days'
		THEN clp.id
	END) AS clientes_ativos_7d,
	COUNT(DISTINCT CASE
		WHEN clp.ultima_compra >= NOW() - INTERVAL '15 days'
		AND clp.ultima_compra < NOW() - INTERVAL '7 days'
		THEN clp.id
	END) AS clientes_ativos_15d,
	COUNT(DISTINCT CASE
		WHEN clp.ultima_compra >= NOW() - INTERVAL '30 days'
		AND clp.ultima_compra < NOW() - INTERVAL '15 days'
		THEN clp.id
	END) AS clientes_ativos_30d,
	COUNT(DISTINCT CASE
		WHEN clp.ultima_compra >= NOW() - INTERVAL '90 days'
		AND clp.ultima_compra < NOW() - INTERVAL '30 days'
		THEN clp.id
	END) AS clientes_ativos_90d,
	COUNT(DISTINCT CASE
		WHEN clp.ultima_compra IS NULL OR clp.ultima_compra < NOW() - INTERVAL '90 days'
		THEN clp.id
	END) AS clientes_inativos,
	COUNT(DISTINCT CASE
		WHEN clp.ultima_compra >= NOW() - INTERVAL '30 days'
		THEN clp.id
	END) AS clientes_ativos,
	AVG(s.total_amount) AS ticket_medio_geral,
	CASE
		WHEN COUNT(DISTINCT cu.id) > 0
		THEN COUNT(DISTINCT s.id)::decimal / COUNT(DISTINCT cu.id)
		ELSE 0
	END AS frequencia_media
FROM customer_last_purchase clp
LEFT JOIN customers cu ON clp.id = cu.id
LEFT JOIN sales s ON cu.id = s.customer_id
	AND s.sale_status_desc NOT IN ('CANCELADO', 'CANCELLED')`, clause.SQL)

	var row MetricsRow
	err := r.pool.QueryRow(ctx, query, clause.Args...).Scan(
		&row.TotalClientes,
		&row.ClientesAtivos7d,
		&row.ClientesAtivos15,
		&row.ClientesAtivos30,
		&row.ClientesAtivos90,
		&row.ClientesInativos,
		&row.ClientesAtivos,
		&row.TicketMedioGeral,
		&row.FrequenciaMedia,
	)
	if err != nil {
		return MetricsRow{}, fmt.Errorf("customers: metrics: %w", err)
	}
	return row, nil
}

// TopCustomerRow is one spending ranking row.
type TopCustomerRow struct {
	ID                int64
	Name              *string
	Email             *string
	Phone             *string
	TotalPedidos      int64
	TotalGasto        *float64
	TicketMedio       *float64
	UltimaCompra      time.Time
	LojasFrequentadas int64
}

// TopCustomers ranks customers by total spend under the clause.
func (r *PGRepository) TopCustomers(ctx context.Context, clause filters.Clause, limit int) ([]TopCustomerRow, error) {
	args := append(append([]any{}, clause.Args...), limit)
	query := fmt.Sprintf(`SELECT
	cu.id,
	cu.customer_name,
	cu.email,
	cu.phone_number,
	COUNT(DISTINCT s.id) AS total_pedidos,
	SUM(s.total_amount) AS total_gasto,
	AVG(s.total_amount) AS ticket_medio,
	MAX(s.created_at) AS ultima_compra,
	COUNT(DISTINCT st.id) AS lojas_frequentadas
FROM customers cu
JOIN sales s ON cu.id = s.customer_id
JOIN channels c ON s.channel_id = c.id
JOIN stores st ON s.store_id = st.id
%s
GROUP BY cu.id, cu.customer_name, cu.email, cu.phone_number
ORDER BY total_gasto DESC
LIMIT $%d`, clause.SQL, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("customers: top customers: %w", err)
	}
	defer rows.Close()

	var out []TopCustomerRow
	for rows.Next() {
		var row TopCustomerRow
		if err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Email,
			&row.Phone,
			&row.TotalPedidos,
			&row.TotalGasto,
			&row.TicketMedio,
			&row.UltimaCompra,
			&row.LojasFrequentadas,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SegmentRow is one segmentation grid cell.
type SegmentRow struct {
	Segmento           string
	StatusAtivo        string
	QuantidadeClientes int64
	MediaPedidos       *float64
	MediaGasto         *float64
}

// Segmentation groups customers into frequency segments (Novo, Ocasional,
// Frequente, VIP) crossed with recency status.
func (r *PGRepository) Segmentation(ctx context.Context, clause filters.Clause) ([]SegmentRow, error) {
	query := fmt.Sprintf(`WITH customer_stats AS (
	SELECT
		cu.id,
		cu.customer_name,
		COUNT(DISTINCT s.id) AS total_pedidos,
		SUM(s.total_amount) AS total_gasto,
		MAX(s.created_at) AS ultima_compra,
		CASE
			WHEN COUNT(DISTINCT s.id) >= 10 THEN 'VIP'
			WHEN COUNT(DISTINCT s.id) >= 5 THEN 'Frequente'
			WHEN COUNT(DISTINCT s.id) >= 2 THEN 'Ocasional'
			ELSE 'Novo'
		END AS segmento,
		CASE
			WHEN MAX(s.created_at) >= NOW() - INTERVAL '7 days' THEN 'Muito Ativo'
			WHEN MAX(s.created_at) >= NOW() - INTERVAL '15 days' THEN 'Ativo'
			WHEN MAX(s.created_at) >= NOW() - INTERVAL '30 days' THEN 'Inativo Recente'
			ELSE 'Inativo'
		END AS status_ativo
	FROM customers cu
	JOIN sales s ON cu.id = s.customer_id
	JOIN channels c ON s.channel_id = c.id
	JOIN stores st ON s.store_id = st.id
	%s
	GROUP BY cu.id, cu.customer_name
)
SELECT
	segmento,
	status_ativo,
	COUNT(*) AS quantidade_clientes,
	AVG(total_pedidos) AS media_pedidos,
	AVG(total_gasto) AS media_gasto
FROM customer_stats
GROUP BY segmento, status_ativo
ORDER BY segmento, status_ativo`, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("customers: segmentation: %w", err)
	}
	defer rows.Close()

	var out []SegmentRow
	for rows.Next() {
		var row SegmentRow
		if err := rows.Scan(&row.Segmento, &row.StatusAtivo, &row.QuantidadeClientes, &row.MediaPedidos, &row.MediaGasto); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
