package products

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brasa-analytics/brasa/internal/filters"
)

// productSalesJoin anchors product aggregates on the sale items table while
// keeping the s/c/st aliases the filter compiler emits.
const productSalesJoin = `FROM product_sales ps
JOIN products p ON ps.product_id = p.id
LEFT JOIN categories cat ON p.category_id = cat.id
JOIN sales s ON ps.sale_id = s.id
JOIN channels c ON s.channel_id = c.id
JOIN stores st ON s.store_id = st.id`

// PGRepository provides the read-only PostgreSQL aggregates for product
// analytics.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func limitClause(clause filters.Clause, limit int) (string, []any) {
	args := append(append([]any{}, clause.Args...), limit)
	return fmt.Sprintf("LIMIT $%d", len(args)), args
}

// TopProductRow is one product ranking row before presentation coercion.
type TopProductRow struct {
	Name       string
	Categoria  *string
	Vendas     int64
	Quantidade *float64
	Receita    *float64
	PrecoMedio *float64
}

// TopProducts ranks products by revenue under the clause.
func (r *PGRepository) TopProducts(ctx context.Context, clause filters.Clause, limit int) ([]TopProductRow, error) {
	limitSQL, args := limitClause(clause, limit)
	query := fmt.Sprintf(`SELECT
	p.name,
	cat.name AS categoria,
	COUNT(DISTINCT ps.sale_id) AS num_vendas,
	SUM(ps.quantity) AS quantidade_total,
	SUM(ps.total_price) AS receita_total,
	AVG(ps.total_price) AS preco_medio
%s
%s
GROUP BY p.id, p.name, cat.name
ORDER BY receita_total DESC
%s`, productSalesJoin, clause.SQL, limitSQL)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("products: top products: %w", err)
	}
	defer rows.Close()

	var out []TopProductRow
	for rows.Next() {
		var row TopProductRow
		if err := rows.Scan(&row.Name, &row.Categoria, &row.Vendas, &row.Quantidade, &row.Receita, &row.PrecoMedio); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopItemRow is one add-on ranking row.
type TopItemRow struct {
	Name            string
	Grupo           *string
	VezesAdicionado int64
	Quantidade      *float64
	Receita         *float64
}

// TopItems ranks add-on items by revenue under the clause.
func (r *PGRepository) TopItems(ctx context.Context, clause filters.Clause, limit int) ([]TopItemRow, error) {
	limitSQL, args := limitClause(clause, limit)
	query := fmt.Sprintf(`SELECT
	i.name,
	og.name AS grupo_opcao,
	COUNT(*) AS vezes_adicionado,
	SUM(ips.quantity) AS quantidade_total,
	SUM(ips.price) AS receita_total
FROM item_product_sales ips
JOIN items i ON ips.item_id = i.id
LEFT JOIN option_groups og ON ips.option_group_id = og.id
JOIN product_sales ps ON ips.product_sale_id = ps.id
JOIN sales s ON ps.sale_id = s.id
JOIN channels c ON s.channel_id = c.id
JOIN stores st ON s.store_id = st.id
%s
GROUP BY i.id, i.name, og.name
ORDER BY receita_total DESC
%s`, clause.SQL, limitSQL)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("products: top items: %w", err)
	}
	defer rows.Close()

	var out []TopItemRow
	for rows.Next() {
		var row TopItemRow
		if err := rows.Scan(&row.Name, &row.Grupo, &row.VezesAdicionado, &row.Quantidade, &row.Receita); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// ProfitableRow carries a ranked product with its category share.
type ProfitableRow struct {
	Ranking             int64
	Name                string
	Categoria           string
	Vendas              int64
	Quantidade          *float64
	Receita             *float64
	PrecoMedio          *float64
	PercentualCategoria *float64
}

// ProfitableProducts ranks products by revenue and computes each product's
// share of its category revenue.
func (r *PGRepository) ProfitableProducts(ctx context.Context, clause filters.Clause, limit int) ([]ProfitableRow, error) {
	limitSQL, args := limitClause(clause, limit)
	query := fmt.Sprintf(`WITH produto_dados AS (
	SELECT
		p.id,
		p.name,
		COALESCE(cat.name, 'Sem Categoria') AS categoria,
		COUNT(DISTINCT ps.sale_id) AS vendas,
		SUM(ps.quantity) AS quantidade,
		SUM(ps.total_price) AS receita,
		AVG(ps.total_price) AS preco_medio
	%s
	%s
	GROUP BY p.id, p.name, cat.name
),
categoria_receitas AS (
	SELECT categoria, SUM(receita) AS receita_categoria
	FROM produto_dados
	GROUP BY categoria
)
SELECT
	ROW_NUMBER() OVER (ORDER BY pd.receita DESC) AS ranking,
	pd.name,
	pd.categoria,
	pd.vendas,
	pd.quantidade,
	pd.receita,
	pd.preco_medio,
	COALESCE(pd.receita / NULLIF(cr.receita_categoria, 0), 0) AS percentual_categoria
FROM produto_dados pd
LEFT JOIN categoria_receitas cr ON pd.categoria = cr.categoria
ORDER BY pd.receita DESC
%s`, productSalesJoin, clause.SQL, limitSQL)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("products: profitable products: %w", err)
	}
	defer rows.Close()

	var out []ProfitableRow
	for rows.Next() {
		var row ProfitableRow
		if err := rows.Scan(&row.Ranking, &row.Name, &row.Categoria, &row.Vendas, &row.Quantidade, &row.Receita, &row.PrecoMedio, &row.PercentualCategoria); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SeasonalityRow is one day of the per-product sales series.
type SeasonalityRow struct {
	Periodo        time.Time
	ProdutosUnicos int64
	Quantidade     *float64
	Receita        *float64
	Vendas         int64
}

// SeasonalityTimeSeries buckets product sales by day.
func (r *PGRepository) SeasonalityTimeSeries(ctx context.Context, clause filters.Clause) ([]SeasonalityRow, error) {
	query := fmt.Sprintf(`SELECT
	DATE_TRUNC('day', s.created_at) AS periodo,
	COUNT(DISTINCT ps.product_id) AS produtos_unicos,
	SUM(ps.quantity) AS quantidade_total,
	SUM(ps.total_price) AS receita_total,
	COUNT(DISTINCT ps.sale_id) AS total_pedidos
%s
%s
GROUP BY DATE_TRUNC('day', s.created_at)
ORDER BY periodo`, productSalesJoin, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("products: seasonality series: %w", err)
	}
	defer rows.Close()

	var out []SeasonalityRow
	for rows.Next() {
		var row SeasonalityRow
		if err := rows.Scan(&row.Periodo, &row.ProdutosUnicos, &row.Quantidade, &row.Receita, &row.Vendas); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// SeasonalProductRow is one high-variation product.
type SeasonalProductRow struct {
	Nome     string
	Variacao *float64
}

// SeasonalProducts returns the products whose daily quantities swing the
// most, measured as (max-min)/mean over days with at least two data points.
func (r *PGRepository) SeasonalProducts(ctx context.Context, clause filters.Clause) ([]SeasonalProductRow, error) {
	query := fmt.Sprintf(`WITH produto_periodos AS (
	SELECT
		p.name AS nome,
		DATE_TRUNC('day', s.created_at) AS periodo,
		SUM(ps.quantity) AS quantidade
	%s
	%s
	GROUP BY p.name, DATE_TRUNC('day', s.created_at)
),
produto_stats AS (
	SELECT
		nome,
		AVG(quantidade) AS media,
		STDDEV(quantidade) AS desvio,
		MAX(quantidade) AS maximo,
		MIN(quantidade) AS minimo
	FROM produto_periodos
	GROUP BY nome
	HAVING COUNT(*) >= 2 AND STDDEV(quantidade) > 0
)
SELECT
	nome,
	COALESCE((maximo - minimo) / NULLIF(media, 0), 0) AS variacao
FROM produto_stats
WHERE media > 0
ORDER BY variacao DESC
LIMIT 10`, productSalesJoin, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("products: seasonal products: %w", err)
	}
	defer rows.Close()

	var out []SeasonalProductRow
	for rows.Next() {
		var row SeasonalProductRow
		if err := rows.Scan(&row.Nome, &row.Variacao); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CombinationRow is one product pair with its financial aggregates.
type CombinationRow struct {
	ProdutoPrincipal      string
	ItemCombinado         string
	Frequencia            int64
	PercentualPedidos     *float64
	ReceitaTotal          *float64
	TicketMedioCombinacao *float64
	PrecoMedioPrincipal   *float64
	PrecoMedioCombinado   *float64
	IncrementoTicket      *float64
	Score                 *float64
}

// Combinations mines product pairs sold within the same order. The pair join
// keys on product_id ordering so each pair appears once.
func (r *PGRepository) Combinations(ctx context.Context, clause filters.Clause, limit int) ([]CombinationRow, error) {
	limitSQL, args := limitClause(clause, limit)
	query := fmt.Sprintf(`WITH pedidos_validos AS (
	SELECT DISTINCT s.id AS sale_id
	FROM sales s
	JOIN channels c ON s.channel_id = c.id
	JOIN stores st ON s.store_id = st.id
	%s
),
combinacoes AS (
	SELECT
		p1.name AS produto_principal,
		p2.name AS item_combinado,
		COUNT(DISTINCT ps1.sale_id) AS frequencia,
		SUM(ps1.total_price + ps2.total_price) AS receita_total,
		AVG(ps1.total_price + ps2.total_price) AS ticket_medio_combinacao
	FROM product_sales ps1
	JOIN products p1 ON ps1.product_id = p1.id
	JOIN product_sales ps2 ON ps1.sale_id = ps2.sale_id AND ps1.product_id < ps2.product_id
	JOIN products p2 ON ps2.product_id = p2.id
	JOIN pedidos_validos pv ON ps1.sale_id = pv.sale_id
	GROUP BY p1.name, p2.name
	HAVING COUNT(DISTINCT ps1.sale_id) > 1
),
total_pedidos AS (
	SELECT COUNT(*) AS total FROM pedidos_validos
),
produto_stats AS (
	SELECT p.name AS produto, AVG(ps.total_price) AS preco_medio_individual
	FROM product_sales ps
	JOIN products p ON ps.product_id = p.id
	JOIN pedidos_validos pv ON ps.sale_id = pv.sale_id
	GROUP BY p.name
)
SELECT
	cb.produto_principal,
	cb.item_combinado,
	cb.frequencia,
	COALESCE(cb.frequencia::decimal / NULLIF(tp.total, 0), 0) AS percentual_pedidos,
	cb.receita_total,
	cb.ticket_medio_combinacao,
	ps1.preco_medio_individual AS preco_medio_principal,
	ps2.preco_medio_individual AS preco_medio_combinado,
	(cb.ticket_medio_combinacao - COALESCE(ps1.preco_medio_individual, 0) - COALESCE(ps2.preco_medio_individual, 0)) AS incremento_ticket,
	(cb.frequencia * 0.6 + (cb.receita_total / 100) * 0.4) AS score_combinacao
FROM combinacoes cb
CROSS JOIN total_pedidos tp
LEFT JOIN produto_stats ps1 ON cb.produto_principal = ps1.produto
LEFT JOIN produto_stats ps2 ON cb.item_combinado = ps2.produto
ORDER BY cb.receita_total DESC, cb.frequencia DESC
%s`, clause.SQL, limitSQL)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("products: combinations: %w", err)
	}
	defer rows.Close()

	var out []CombinationRow
	for rows.Next() {
		var row CombinationRow
		if err := rows.Scan(
			&row.ProdutoPrincipal,
			&row.ItemCombinado,
			&row.Frequencia,
			&row.PercentualPedidos,
			&row.ReceitaTotal,
			&row.TicketMedioCombinacao,
			&row.PrecoMedioPrincipal,
			&row.PrecoMedioCombinado,
			&row.IncrementoTicket,
			&row.Score,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CategoryRow aggregates one category of the product mix.
type CategoryRow struct {
	Categoria         string
	ProdutosUnicos    int64
	Quantidade        *float64
	Pedidos           int64
	Receita           *float64
	TicketMedio       *float64
	PercentualReceita *float64
}

// CategoryPerformance aggregates the product mix per category including each
// category's revenue share.
func (r *PGRepository) CategoryPerformance(ctx context.Context, clause filters.Clause) ([]CategoryRow, error) {
	query := fmt.Sprintf(`WITH categoria_dados AS (
	SELECT
		COALESCE(cat.name, 'Sem Categoria') AS categoria,
		COUNT(DISTINCT ps.product_id) AS produtos_unicos,
		SUM(ps.quantity) AS quantidade,
		COUNT(DISTINCT ps.sale_id) AS pedidos,
		SUM(ps.total_price) AS receita,
		AVG(ps.total_price) AS ticket_medio
	%s
	%s
	GROUP BY cat.name
),
receita_total AS (
	SELECT SUM(receita) AS total FROM categoria_dados
)
SELECT
	cd.categoria,
	cd.produtos_unicos,
	cd.quantidade,
	cd.pedidos,
	cd.receita,
	cd.ticket_medio,
	COALESCE(cd.receita / NULLIF(rt.total, 0), 0) AS percentual_receita
FROM categoria_dados cd
CROSS JOIN receita_total rt
ORDER BY cd.receita DESC`, productSalesJoin, clause.SQL)

	rows, err := r.pool.Query(ctx, query, clause.Args...)
	if err != nil {
		return nil, fmt.Errorf("products: category performance: %w", err)
	}
	defer rows.Close()

	var out []CategoryRow
	for rows.Next() {
		var row CategoryRow
		if err := rows.Scan(&row.Categoria, &row.ProdutosUnicos, &row.Quantidade, &row.Pedidos, &row.Receita, &row.TicketMedio, &row.PercentualReceita); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
